package cldf

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/gofrs/flock"
	"github.com/google/uuid"
)

// ErrLocked is returned when another run holds the dataset lock
var ErrLocked = errors.New("dataset is locked by another run")

// LockPath returns the lock file guarding the dataset. It lives in the
// system temp directory so that runs leave the dataset directory untouched;
// the name is derived from the absolute dataset path.
func (d *Dataset) LockPath() string {
	dir, err := filepath.Abs(d.dir)
	if err != nil {
		dir = d.dir
	}
	id := uuid.NewSHA1(uuid.NameSpaceURL, []byte("file://"+filepath.ToSlash(dir)))
	return filepath.Join(os.TempDir(), "lexstatcldf-"+id.String()+".lock")
}

// Lock takes the advisory lock of the dataset. The returned function
// releases it.
func (d *Dataset) Lock() (func() error, error) {
	lockPath := d.LockPath()
	lock := flock.New(lockPath)

	ok, err := lock.TryLock()
	if err != nil {
		return nil, fmt.Errorf("acquire lock %s: %w", lockPath, err)
	}
	if !ok {
		return nil, fmt.Errorf("%s (%s): %w", d.dir, lockPath, ErrLocked)
	}

	return lock.Unlock, nil
}
