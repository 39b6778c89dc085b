package config

import (
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"strings"

	"github.com/hashicorp/go-multierror"
	"github.com/mitchellh/go-homedir"
	"go.uber.org/zap/zapcore"
)

// ConfigValidator validates configuration values
type ConfigValidator struct{}

// NewConfigValidator creates a new configuration validator
func NewConfigValidator() *ConfigValidator {
	return &ConfigValidator{}
}

// ValidateURL validates a service base URL
func (v *ConfigValidator) ValidateURL(endpoint string) error {
	if endpoint == "" {
		return fmt.Errorf("URL cannot be empty")
	}

	u, err := url.Parse(endpoint)
	if err != nil {
		return fmt.Errorf("invalid URL format: %w", err)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return fmt.Errorf("unsupported URL scheme: %s (must be http or https)", u.Scheme)
	}
	if u.Host == "" {
		return fmt.Errorf("URL must include host")
	}
	return nil
}

// logLevels are the levels a user may pick for the log file
var logLevels = map[zapcore.Level]bool{
	zapcore.DebugLevel: true,
	zapcore.InfoLevel:  true,
	zapcore.WarnLevel:  true,
	zapcore.ErrorLevel: true,
}

// ValidateLogLevel validates log level value
func (v *ConfigValidator) ValidateLogLevel(level string) error {
	trimmed := strings.ToLower(strings.TrimSpace(level))
	lvl, err := zapcore.ParseLevel(trimmed)
	if trimmed == "" || err != nil || !logLevels[lvl] {
		return fmt.Errorf("invalid log level: %q (valid levels: debug, info, warn, error)", level)
	}
	return nil
}

// ValidateDataDir validates a data directory path; it must be absolute
func (v *ConfigValidator) ValidateDataDir(path string) error {
	if path == "" {
		return fmt.Errorf("data directory cannot be empty")
	}
	expanded, err := homedir.Expand(path)
	if err != nil {
		return fmt.Errorf("invalid data directory: %w", err)
	}
	if !filepath.IsAbs(expanded) {
		return fmt.Errorf("data directory must be absolute: %s", path)
	}
	return nil
}

// ValidateWritableDir checks that path is, or can become, a writable directory
func (v *ConfigValidator) ValidateWritableDir(path string) error {
	if err := v.ValidateDataDir(path); err != nil {
		return err
	}

	info, err := os.Stat(path)
	if err != nil {
		if os.IsNotExist(err) {
			dir := filepath.Dir(path)
			if _, err := os.Stat(dir); err != nil {
				return fmt.Errorf("parent directory does not exist: %s", dir)
			}
			return nil
		}
		return fmt.Errorf("failed to check directory: %w", err)
	}
	if !info.IsDir() {
		return fmt.Errorf("path exists but is not a directory: %s", path)
	}

	testFile := filepath.Join(path, ".switcher-write-test")
	if err := os.WriteFile(testFile, []byte("test"), 0o644); err != nil {
		return fmt.Errorf("directory is not writable: %w", err)
	}
	os.Remove(testFile)
	return nil
}

// ValidateSettings validates every field, reporting all problems at once
func (v *ConfigValidator) ValidateSettings(s Settings) error {
	var result *multierror.Error
	add := func(field string, err error) {
		if err != nil {
			result = multierror.Append(result, fmt.Errorf("%s: %w", field, err))
		}
	}

	if s.Version > SettingsVersion {
		add("version", fmt.Errorf("settings version %d is newer than supported version %d", s.Version, SettingsVersion))
	}
	add("switcher_directory", v.ValidateDataDir(s.DataDir))
	add("log_level", v.ValidateLogLevel(s.LogLevel))
	add("website_url", v.ValidateURL(s.WebsiteURL))
	add("github_api_url", v.ValidateURL(s.GitHubAPIURL))
	for uid, p := range s.GamePaths {
		if p == "" {
			add("game_paths."+uid, fmt.Errorf("path cannot be empty"))
		}
	}
	for i, f := range s.LibraryFolders {
		if strings.TrimSpace(f) == "" {
			add(fmt.Sprintf("library_folders[%d]", i), fmt.Errorf("folder cannot be empty"))
		}
	}

	if result != nil {
		result.ErrorFormat = listFormat
	}
	return result.ErrorOrNil()
}

func listFormat(errs []error) string {
	parts := make([]string, 0, len(errs))
	for _, err := range errs {
		parts = append(parts, err.Error())
	}
	return "invalid settings: " + strings.Join(parts, "; ")
}
