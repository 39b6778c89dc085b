package plugininfra

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/spf13/afero"

	plugindomain "switcherforgames.com/cli/internal/core/domain/plugin"
	"switcherforgames.com/cli/internal/core/mirror"
	pluginports "switcherforgames.com/cli/internal/core/ports/plugin"
)

// FileSystemInstaller places plugin folders into the plugins directory
type FileSystemInstaller struct {
	fs         afero.Fs
	targetDir  string
	stagingDir string
	fetcher    pluginports.Fetcher

	mu    sync.Mutex
	locks map[string]*sync.Mutex
}

// NewFileSystemInstaller creates an installer writing into targetDir and
// staging downloads below stagingDir.
func NewFileSystemInstaller(fs afero.Fs, targetDir, stagingDir string, fetcher pluginports.Fetcher) *FileSystemInstaller {
	return &FileSystemInstaller{
		fs:         fs,
		targetDir:  targetDir,
		stagingDir: stagingDir,
		fetcher:    fetcher,
		locks:      map[string]*sync.Mutex{},
	}
}

// InstallFromSource fetches src, validates the plugin it contains and
// replaces any installed plugin with the same uid.
func (i *FileSystemInstaller) InstallFromSource(ctx context.Context, src string) (*plugindomain.Descriptor, error) {
	name, err := StagingName(src)
	if err != nil {
		return nil, err
	}
	if err := i.fs.MkdirAll(i.stagingDir, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create staging folder: %w", err)
	}
	work, err := afero.TempDir(i.fs, i.stagingDir, name+"-")
	if err != nil {
		return nil, fmt.Errorf("failed to create staging folder: %w", err)
	}
	defer i.fs.RemoveAll(work)

	// the fetcher creates the folder itself
	staging := filepath.Join(work, "src")
	if err := i.fetcher.Fetch(ctx, src, staging); err != nil {
		return nil, err
	}

	root, err := i.descriptorRoot(staging)
	if err != nil {
		return nil, err
	}
	desc, err := ReadDescriptor(i.fs, root)
	if err != nil {
		return nil, err
	}

	target, err := i.replace(desc.UID, func(dst string) error {
		return mirror.CopyTree(i.fs, root, dst)
	})
	if err != nil {
		return nil, err
	}
	desc.Dir = target
	return desc, nil
}

// InstallYAML validates a descriptor and installs it as a codeless plugin
func (i *FileSystemInstaller) InstallYAML(ctx context.Context, data []byte) (*plugindomain.Descriptor, error) {
	desc, err := plugindomain.ParseDescriptor(data)
	if err != nil {
		return nil, err
	}

	target, err := i.replace(desc.UID, func(dst string) error {
		if err := i.fs.MkdirAll(dst, 0o755); err != nil {
			return err
		}
		return afero.WriteFile(i.fs, filepath.Join(dst, plugindomain.DescriptorFiles[0]), data, 0o644)
	})
	if err != nil {
		return nil, err
	}
	desc.Dir = target
	return desc, nil
}

// Uninstall removes the folder of an installed plugin
func (i *FileSystemInstaller) Uninstall(ctx context.Context, uid string) error {
	target, err := i.pluginDir(uid)
	if err != nil {
		return err
	}
	defer i.lock(uid)()

	if ok, _ := afero.DirExists(i.fs, target); !ok {
		return fmt.Errorf("%w: %s", plugindomain.ErrPluginNotFound, uid)
	}
	if err := i.fs.RemoveAll(target); err != nil {
		return fmt.Errorf("failed to remove plugin %s: %w", uid, err)
	}
	return nil
}

// replace fills a fresh folder with write and, only when that succeeds,
// renames it over the plugin's folder. The previous folder is moved aside
// first and put back when the swap fails.
func (i *FileSystemInstaller) replace(uid string, write func(dst string) error) (string, error) {
	target, err := i.pluginDir(uid)
	if err != nil {
		return "", err
	}
	if err := i.fs.MkdirAll(i.targetDir, 0o755); err != nil {
		return "", fmt.Errorf("failed to create plugins directory: %w", err)
	}
	defer i.lock(uid)()

	next, old := target+".new", target+".old"
	if err := i.fs.RemoveAll(next); err != nil {
		return "", fmt.Errorf("failed to clear %s: %w", next, err)
	}
	defer i.fs.RemoveAll(next)
	if err := write(next); err != nil {
		return "", fmt.Errorf("failed to write plugin %s: %w", uid, err)
	}

	if err := i.fs.RemoveAll(old); err != nil {
		return "", fmt.Errorf("failed to clear %s: %w", old, err)
	}
	existed, err := afero.Exists(i.fs, target)
	if err != nil {
		return "", fmt.Errorf("failed to inspect plugin %s: %w", uid, err)
	}
	if existed {
		if err := i.fs.Rename(target, old); err != nil {
			return "", fmt.Errorf("failed to move previous plugin %s aside: %w", uid, err)
		}
	}
	if err := i.fs.Rename(next, target); err != nil {
		if existed {
			_ = i.fs.Rename(old, target)
		}
		return "", fmt.Errorf("failed to install plugin %s: %w", uid, err)
	}
	_ = i.fs.RemoveAll(old)
	return target, nil
}

// lock serializes changes to one plugin folder and returns the unlock func
func (i *FileSystemInstaller) lock(uid string) func() {
	i.mu.Lock()
	l, ok := i.locks[uid]
	if !ok {
		l = &sync.Mutex{}
		i.locks[uid] = l
	}
	i.mu.Unlock()

	l.Lock()
	return l.Unlock
}

// descriptorRoot returns staging itself, or its only sub-folder, when it holds a descriptor
func (i *FileSystemInstaller) descriptorRoot(staging string) (string, error) {
	if _, err := FindDescriptor(i.fs, staging); err == nil {
		return staging, nil
	}

	entries, err := afero.ReadDir(i.fs, staging)
	if err != nil {
		return "", fmt.Errorf("failed to read fetched plugin: %w", err)
	}
	var dirs []os.FileInfo
	for _, e := range entries {
		if e.IsDir() {
			dirs = append(dirs, e)
		}
	}
	if len(dirs) == 1 {
		nested := filepath.Join(staging, dirs[0].Name())
		if _, err := FindDescriptor(i.fs, nested); err == nil {
			return nested, nil
		}
	}
	return "", fmt.Errorf("%w: fetched source holds no plugin descriptor", plugindomain.ErrInvalidDescriptor)
}

func (i *FileSystemInstaller) pluginDir(uid string) (string, error) {
	target := filepath.Join(i.targetDir, uid)

	// Security: prevent path traversal
	base := filepath.Clean(i.targetDir) + string(filepath.Separator)
	if uid == "" || filepath.Clean(target) == filepath.Clean(i.targetDir) ||
		!strings.HasPrefix(filepath.Clean(target)+string(filepath.Separator), base) {
		return "", fmt.Errorf("unsafe plugin uid: %q", uid)
	}
	return target, nil
}
