package stores

// BuiltInStoreType keys the store adapters shipped with this package
type BuiltInStoreType = string

const (
	MemoryStoreType BuiltInStoreType = "memory"
	DirStoreType    BuiltInStoreType = "dir"
	BillyStoreType  BuiltInStoreType = "billy"
	HTTPStoreType   BuiltInStoreType = "http"
	S3StoreType     BuiltInStoreType = "s3"
)

// RegisterBuiltins registers all built-in stores on r by default
// or only the specific ones if keys are provided
func RegisterBuiltins(r *Registry, stores ...BuiltInStoreType) {
	if len(stores) == 0 {
		stores = []BuiltInStoreType{MemoryStoreType, DirStoreType, BillyStoreType, HTTPStoreType, S3StoreType}
	}

	for _, key := range stores {
		switch key {
		case MemoryStoreType:
			r.Register(key, MemoryProvider{})
		case DirStoreType:
			r.Register(key, DirProvider{})
		case BillyStoreType:
			r.Register(key, BillyProvider{})
		case HTTPStoreType:
			r.Register(key, &HTTPProvider{})
		case S3StoreType:
			r.Register(key, S3Provider{})
		}
	}
}
