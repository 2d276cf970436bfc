package out

import (
	"dojo/internal/platform/clock"
	"dojo/internal/platform/tx"
)

// NewFileStoreWithCrash returns a store whose writes call crash right before
// the temp file replaces the document.
func NewFileStoreWithCrash(path string, lock tx.Manager, clk clock.Clock, crash func(tmpPath string) error) *FileStore {
	s := newFileStore(path, lock, clk)
	s.beforeRename = crash
	return s
}
