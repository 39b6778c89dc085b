package pluginports

import (
	"context"

	plugindomain "switcherforgames.com/cli/internal/core/domain/plugin"
)

// Plugin is a loaded plugin able to locate and verify its game
type Plugin interface {
	// Descriptor returns the immutable descriptor the plugin was loaded from
	Descriptor() *plugindomain.Descriptor

	// Identify reports whether gamePath is exactly the root folder of the game
	Identify(gamePath string) bool

	// Verify returns plugindomain.ErrVerificationFailed unless gamePath is a valid game root
	Verify(gamePath string) error

	// Executable returns the path of the game executable under gamePath
	Executable(gamePath string) (string, error)

	// Fragments returns the evaluated path fragments of a feature on the current platform
	Fragments(feature plugindomain.Feature) ([]string, error)
}

// Loader builds a Plugin from a plugin folder
type Loader interface {
	LoadDir(dir string) (Plugin, error)
}

// Fetcher downloads a plugin source into a local folder
type Fetcher interface {
	// Fetch copies src (a local folder, archive URL or repository) to dst
	Fetch(ctx context.Context, src, dst string) error
}

// Installer places plugin folders into the plugins directory
type Installer interface {
	// InstallFromSource fetches src and installs the plugin it contains
	InstallFromSource(ctx context.Context, src string) (*plugindomain.Descriptor, error)

	// InstallYAML installs a codeless plugin from its descriptor
	InstallYAML(ctx context.Context, data []byte) (*plugindomain.Descriptor, error)

	// Uninstall removes an installed plugin folder
	Uninstall(ctx context.Context, uid string) error
}

// Registry persists where installed plugins came from
type Registry interface {
	// Load returns every install record keyed by uid
	Load(ctx context.Context) (map[string]plugindomain.InstallRecord, error)

	// Save replaces the stored records
	Save(ctx context.Context, records map[string]plugindomain.InstallRecord) error

	// Add records or replaces the install record of a plugin
	Add(ctx context.Context, record plugindomain.InstallRecord) error

	// Remove forgets the install record of a plugin
	Remove(ctx context.Context, uid string) error
}
