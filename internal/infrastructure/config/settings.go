package config

import (
	"fmt"
	"path/filepath"

	"github.com/caarlos0/env/v11"
	"github.com/mitchellh/go-homedir"

	"switcherforgames.com/cli/internal/core/domain/platform"
	"switcherforgames.com/cli/internal/core/pathvar"
)

const (
	// SettingsFile is the settings file name inside the home directory
	SettingsFile = "settings.yaml"
	// LogFile is the log file name inside the home directory
	LogFile = "switcher.log"
	// SettingsVersion is the current settings format version
	SettingsVersion = 1

	DefaultLogLevel     = "info"
	DefaultWebsiteURL   = "https://switcherforgames.com"
	DefaultGitHubAPIURL = "https://api.github.com"
)

// Data sub-folders. Only these are moved when the data directory changes.
const (
	PluginsFolder  = "plugins"
	ProfilesFolder = "profiles"
	stagingFolder  = ".staging"
)

// Settings is the persisted content of settings.yaml
type Settings struct {
	Version        int               `yaml:"version"`
	DataDir        string            `yaml:"switcher_directory"`
	GamePaths      map[string]string `yaml:"game_paths"`
	LibraryFolders []string          `yaml:"library_folders"`
	LogLevel       string            `yaml:"log_level"`
	WebsiteURL     string            `yaml:"website_url"`
	GitHubAPIURL   string            `yaml:"github_api_url"`
}

// DefaultSettings returns the settings written on first start
func DefaultSettings(home string) Settings {
	return Settings{
		Version:        SettingsVersion,
		DataDir:        home,
		GamePaths:      map[string]string{},
		LibraryFolders: []string{},
		LogLevel:       DefaultLogLevel,
		WebsiteURL:     DefaultWebsiteURL,
		GitHubAPIURL:   DefaultGitHubAPIURL,
	}
}

// clone returns a deep copy so callers cannot alias stored maps and slices
func (s Settings) clone() Settings {
	out := s
	out.GamePaths = make(map[string]string, len(s.GamePaths))
	for k, v := range s.GamePaths {
		out.GamePaths[k] = v
	}
	out.LibraryFolders = append([]string{}, s.LibraryFolders...)
	return out
}

// withDefaults fills the fields an older or hand-edited file may lack
func (s Settings) withDefaults(home string) Settings {
	d := DefaultSettings(home)
	if s.Version == 0 {
		s.Version = d.Version
	}
	if s.DataDir == "" {
		s.DataDir = d.DataDir
	}
	if s.GamePaths == nil {
		s.GamePaths = d.GamePaths
	}
	if s.LibraryFolders == nil {
		s.LibraryFolders = d.LibraryFolders
	}
	if s.LogLevel == "" {
		s.LogLevel = d.LogLevel
	}
	if s.WebsiteURL == "" {
		s.WebsiteURL = d.WebsiteURL
	}
	if s.GitHubAPIURL == "" {
		s.GitHubAPIURL = d.GitHubAPIURL
	}
	return s
}

// EnvOverrides are settings taken from the environment for one run only
type EnvOverrides struct {
	Home         string `env:"SWITCHER_HOME"`
	DataDir      string `env:"SWITCHER_DATA_DIR"`
	LogLevel     string `env:"SWITCHER_LOG_LEVEL"`
	WebsiteURL   string `env:"SWITCHER_WEBSITE_URL"`
	GitHubAPIURL string `env:"SWITCHER_GITHUB_API_URL"`
}

// ParseEnv reads overrides from environ, or from the process environment when nil
func ParseEnv(environ map[string]string) (EnvOverrides, error) {
	var o EnvOverrides
	opts := env.Options{}
	if environ != nil {
		opts.Environment = environ
	}
	if err := env.ParseWithOptions(&o, opts); err != nil {
		return o, fmt.Errorf("parse env: %w", err)
	}
	return o, nil
}

func (o EnvOverrides) apply(s Settings) (Settings, error) {
	if o.DataDir != "" {
		dir, err := homedir.Expand(o.DataDir)
		if err != nil {
			return s, fmt.Errorf("SWITCHER_DATA_DIR: %w", err)
		}
		s.DataDir = dir
	}
	if o.LogLevel != "" {
		s.LogLevel = o.LogLevel
	}
	if o.WebsiteURL != "" {
		s.WebsiteURL = o.WebsiteURL
	}
	if o.GitHubAPIURL != "" {
		s.GitHubAPIURL = o.GitHubAPIURL
	}
	return s, nil
}

// ResolveHome returns the switcher home directory: the SWITCHER_HOME
// override, else %APPDATA%\Switcher on windows and ~/.switcher elsewhere.
func ResolveHome(o EnvOverrides, eval *pathvar.Evaluator) (string, error) {
	if o.Home != "" {
		home, err := homedir.Expand(o.Home)
		if err != nil {
			return "", fmt.Errorf("SWITCHER_HOME: %w", err)
		}
		return filepath.Clean(home), nil
	}

	tmpl := "{home}/.switcher"
	if eval.Platform() == platform.Windows {
		tmpl = "{appdata}/Switcher"
	}
	home, err := eval.Evaluate(tmpl)
	if err != nil {
		return "", fmt.Errorf("failed to locate switcher home: %w", err)
	}
	return home, nil
}

// Paths locates the files and folders of one switcher installation
type Paths struct {
	Home string
	Data string
}

func (p Paths) Settings() string { return filepath.Join(p.Home, SettingsFile) }
func (p Paths) Log() string      { return filepath.Join(p.Home, LogFile) }
func (p Paths) Plugins() string  { return filepath.Join(p.Data, PluginsFolder) }
func (p Paths) Profiles() string { return filepath.Join(p.Data, ProfilesFolder) }
func (p Paths) Staging() string  { return filepath.Join(p.Data, stagingFolder) }

// DataFolders lists the sub-folders holding switcher data
func DataFolders() []string {
	return []string{PluginsFolder, ProfilesFolder}
}
