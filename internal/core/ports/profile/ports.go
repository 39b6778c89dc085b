package profileports

import (
	"context"

	profiledomain "switcherforgames.com/cli/internal/core/domain/profile"
)

// Store persists profile records and locates the folders holding their data
type Store interface {
	// Dir returns the folder of a profile
	Dir(pluginUID, id string) string

	// Write stores the record of a profile, creating its folder
	Write(ctx context.Context, p *profiledomain.Profile) error

	// Get reads one profile; profiledomain.ErrNotFound when missing
	Get(ctx context.Context, pluginUID, id string) (*profiledomain.Profile, error)

	// List returns the profiles of a plugin, newest first
	List(ctx context.Context, pluginUID string) ([]*profiledomain.Profile, error)

	// Delete removes a profile with all its data
	Delete(ctx context.Context, pluginUID, id string) error

	// Size returns the number of bytes stored for a profile
	Size(ctx context.Context, pluginUID, id string) (int64, error)
}
