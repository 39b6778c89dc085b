package storageports

import "context"

// Locker serialises mutations of the data directory across processes
type Locker interface {
	// Lock blocks until the lock is held or ctx ends
	Lock(ctx context.Context) (unlock func() error, err error)
}
