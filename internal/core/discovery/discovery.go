package discovery

import (
	"context"
	"path/filepath"
	"sync"

	"github.com/spf13/afero"
	"golang.org/x/sync/errgroup"
)

// scanLimit bounds the number of roots read concurrently
const scanLimit = 4

// ListGames scans every recognised root and returns candidate game folders
// keyed by absolute path, valued by folder name. Empty folders, plain files
// and unreadable roots are skipped. Only cancellation of ctx is an error.
func ListGames(ctx context.Context, fs afero.Fs, roots []string) (map[string]string, error) {
	var (
		mu    sync.Mutex
		games = map[string]string{}
	)

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(scanLimit)

	for _, root := range roots {
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			found := scanRoot(fs, root)

			mu.Lock()
			defer mu.Unlock()
			for path, name := range found {
				games[path] = name
			}
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}
	return games, nil
}

func scanRoot(fs afero.Fs, root string) map[string]string {
	found := map[string]string{}
	for _, lib := range Recognise(fs, root) {
		entries, err := afero.ReadDir(fs, lib.Games)
		if err != nil {
			continue
		}
		for _, entry := range entries {
			if !entry.IsDir() {
				continue
			}
			path := filepath.Join(lib.Games, entry.Name())
			if empty, err := afero.IsEmpty(fs, path); err != nil || empty {
				continue
			}
			found[path] = entry.Name()
		}
	}
	return found
}
