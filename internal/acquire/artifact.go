package acquire

import (
	"context"
	"os"

	"github.com/nguyentantai21042004/vidscribe/internal/logger"
)

// Artifact is a handle to a downloaded audio file in transient storage.
// The owner must call Release on every exit path.
type Artifact struct {
	Path   string
	Format string
}

// Release deletes the temporary audio file. Safe to call more than once.
func (a *Artifact) Release(ctx context.Context, log logger.Logger) {
	if a == nil || a.Path == "" {
		return
	}
	if err := os.Remove(a.Path); err != nil && !os.IsNotExist(err) {
		log.Warn(ctx, "Failed to cleanup audio artifact %s: %v", a.Path, err)
		return
	}
	log.Debug(ctx, "Released audio artifact: %s", a.Path)
	a.Path = ""
}
