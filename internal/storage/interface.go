package storage

// Provider is the key-value persistence capability the catalog and the day
// store sit on. Two independent blobs are kept (catalog, scorecard) so either
// can be recovered without the other.
//
// Concurrency note:
//   - A Provider is not safe for concurrent use by multiple goroutines without
//     external synchronization.
//   - Running multiple scorecard processes against the same path at the same
//     time is not supported and may lead to data loss.
type Provider interface {
	// Lifecycle
	Init() error
	Load() error
	Close() error

	// Blobs
	GetBlob(key string) (data []byte, ok bool, err error)
	SetBlob(key string, data []byte) error

	// Utils
	Path() string
}
