package plugindomain

import (
	"errors"
	"time"
)

var (
	// ErrPluginNotFound is returned when no loaded plugin has the requested uid
	ErrPluginNotFound = errors.New("plugin not found")
	// ErrVerificationFailed is returned when a folder is not a valid game root
	ErrVerificationFailed = errors.New("game path verification failed")
	// ErrFeatureNotDeclared is returned when a feature is used that the plugin does not declare
	ErrFeatureNotDeclared = errors.New("feature not declared by plugin")
)

// InstallRecord remembers where an installed plugin came from
type InstallRecord struct {
	UID         string    `json:"uid"`
	Source      string    `json:"source"`
	InstalledAt time.Time `json:"installed_at"`
}
