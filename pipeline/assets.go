package pipeline

import (
	"os"

	"github.com/rs/zerolog"
)

// runAssets records the files a single run created so they can be removed
// however the run ends. Paths are released in the order they were tracked.
type runAssets struct {
	runID  string
	paths  []string
	seen   map[string]bool
	logger zerolog.Logger
}

func newRunAssets(runID string, logger zerolog.Logger) *runAssets {
	return &runAssets{
		runID:  runID,
		seen:   make(map[string]bool),
		logger: logger,
	}
}

// Track marks path as owned by this run. Empty and repeated paths are ignored.
func (a *runAssets) Track(path string) {
	if path == "" || a.seen[path] {
		return
	}
	a.seen[path] = true
	a.paths = append(a.paths, path)
}

// Release deletes every tracked file and returns the ones actually removed.
// Files already gone are not an error.
func (a *runAssets) Release() []string {
	var removed []string
	for _, p := range a.paths {
		err := os.Remove(p)
		switch {
		case err == nil:
			removed = append(removed, p)
		case os.IsNotExist(err):
		default:
			a.logger.Warn().Err(err).Str("file", p).Msg("could not remove run file")
		}
	}
	if len(removed) > 0 {
		a.logger.Debug().Strs("files", removed).Msg("run files removed")
	}
	a.paths = nil
	a.seen = make(map[string]bool)
	return removed
}
