package mocks

import (
	"io"

	"github.com/brettbedarf/assetfs"
	"github.com/stretchr/testify/mock"
)

// MockAssetStore implements assetfs.AssetStore for testing across packages
type MockAssetStore struct {
	mock.Mock
}

func (m *MockAssetStore) OpenForRead(path string) (io.ReadCloser, error) {
	args := m.Called(path)

	// Handle function return types (for complex tests)
	if fn, ok := args.Get(0).(func(string) io.ReadCloser); ok {
		return fn(path), args.Error(1)
	}

	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(io.ReadCloser), args.Error(1)
}

func (m *MockAssetStore) ListChildren(path string) ([]string, error) {
	args := m.Called(path)

	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]string), args.Error(1)
}

var _ assetfs.AssetStore = (*MockAssetStore)(nil)

// MockStoreProvider implements assetfs.StoreProvider for testing across packages
type MockStoreProvider struct {
	mock.Mock
}

func (m *MockStoreProvider) NewStore(raw []byte) (assetfs.AssetStore, error) {
	args := m.Called(raw)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(assetfs.AssetStore), args.Error(1)
}

var _ assetfs.StoreProvider = (*MockStoreProvider)(nil)

// TrackingCloser is an io.ReadCloser that records whether Close was called
type TrackingCloser struct {
	io.Reader
	Closed   bool
	CloseErr error
}

func (t *TrackingCloser) Close() error {
	t.Closed = true
	return t.CloseErr
}
