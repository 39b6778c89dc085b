package plugininfra

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/flytam/filenamify"
	getter "github.com/hashicorp/go-getter"
	"github.com/spf13/afero"

	"switcherforgames.com/cli/internal/core/mirror"
)

// GoGetterFetcher fetches plugin sources with go-getter, so any local
// folder, archive URL or git repository understood by it can be installed.
type GoGetterFetcher struct {
	pwd string
}

// NewGoGetterFetcher creates a fetcher resolving relative sources against pwd
func NewGoGetterFetcher(pwd string) *GoGetterFetcher {
	return &GoGetterFetcher{pwd: pwd}
}

// Fetch downloads src into dst
func (f *GoGetterFetcher) Fetch(ctx context.Context, src, dst string) error {
	c := &getter.Client{
		Ctx:     ctx,
		Src:     src,
		Dst:     dst,
		Pwd:     f.pwd,
		Mode:    getter.ClientModeAny,
		Options: []getter.ClientOption{},
	}
	if err := c.Get(); err != nil {
		return fmt.Errorf("unable to fetch plugin from %s: %w", src, err)
	}
	if err := materialize(dst); err != nil {
		return fmt.Errorf("unable to copy plugin from %s: %w", src, err)
	}
	return nil
}

// materialize replaces dst with a copy of its target when go-getter linked a
// local folder (a symlink, or a junction on windows) instead of copying it.
func materialize(dst string) error {
	info, err := os.Lstat(dst)
	if err != nil {
		return err
	}
	if info.Mode()&(os.ModeSymlink|os.ModeIrregular) == 0 {
		return nil
	}
	src, err := filepath.EvalSymlinks(dst)
	if err != nil {
		return err
	}
	if err := os.Remove(dst); err != nil {
		return err
	}
	return mirror.CopyTree(afero.NewOsFs(), src, dst)
}

// StagingName returns a folder name derived from src that is safe on every platform
func StagingName(src string) (string, error) {
	name, err := filenamify.Filenamify(src, filenamify.Options{
		Replacement: "_",
	})
	if err != nil {
		return "", fmt.Errorf("failed to derive staging name for %s: %w", src, err)
	}
	return name, nil
}
