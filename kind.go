package assetfs

import "github.com/pkg/errors"

// Kind is the three-way classification of an asset path
type Kind uint8

const (
	// Invalid means the path resolves to nothing usable: missing, unreadable,
	// or an empty directory
	Invalid Kind = iota
	// File means the path opens as a readable resource
	File
	// Directory means the path is a container with at least one entry
	Directory
)

var kindNames = [...]string{
	Invalid:   "invalid",
	File:      "file",
	Directory: "directory",
}

func (k Kind) String() string {
	if int(k) < len(kindNames) {
		return kindNames[k]
	}
	return "invalid"
}

// Info converts the classification into node metadata
func (k Kind) Info() Info {
	return Info{
		Exists:   k != Invalid,
		IsDir:    k == Directory,
		ReadOnly: true,
	}
}

func (k Kind) MarshalText() ([]byte, error) {
	return []byte(k.String()), nil
}

func (k *Kind) UnmarshalText(text []byte) error {
	for i, name := range kindNames {
		if name == string(text) {
			*k = Kind(i)
			return nil
		}
	}
	return errors.Errorf("unknown kind %q", text)
}
