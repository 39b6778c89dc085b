package pathvar

import (
	"os"

	"github.com/adrg/xdg"
	"github.com/mitchellh/go-homedir"
)

// Environment supplies the raw values variables are evaluated from
type Environment interface {
	Getenv(key string) string
	HomeDir() (string, error)
}

// OSEnvironment reads the environment of the running process
type OSEnvironment struct{}

// NewOSEnvironment creates an environment backed by the process
func NewOSEnvironment() OSEnvironment {
	return OSEnvironment{}
}

// Getenv returns the value of an environment variable.
// XDG_DOCUMENTS_DIR falls back to the user-dirs configuration.
func (OSEnvironment) Getenv(key string) string {
	v := os.Getenv(key)
	if v == "" && key == "XDG_DOCUMENTS_DIR" {
		return xdg.UserDirs.Documents
	}
	return v
}

// HomeDir returns the home directory of the current user
func (OSEnvironment) HomeDir() (string, error) {
	return homedir.Dir()
}

// MapEnvironment is a fixed environment, mostly useful in tests
type MapEnvironment struct {
	Vars map[string]string
	Home string
}

// Getenv returns the mapped value for key
func (m MapEnvironment) Getenv(key string) string {
	return m.Vars[key]
}

// HomeDir returns the configured home directory
func (m MapEnvironment) HomeDir() (string, error) {
	if m.Home == "" {
		return "", os.ErrNotExist
	}
	return m.Home, nil
}
