package database

import "errors"

// ErrStorage marks failures of the backing store itself.
var ErrStorage = errors.New("storage error")

// StorageError is a backing-store failure of the named operation.
type StorageError struct {
	Op  string
	Err error
}

func (e *StorageError) Error() string {
	return e.Op + ": " + ErrStorage.Error() + ": " + e.Err.Error()
}

func (e *StorageError) Unwrap() error { return e.Err }

// Is makes every StorageError match ErrStorage.
func (e *StorageError) Is(target error) bool { return target == ErrStorage }

// Wrap tags err as a storage failure for op. Nil stays nil.
func Wrap(op string, err error) error {
	if err == nil {
		return nil
	}
	return &StorageError{Op: op, Err: err}
}
