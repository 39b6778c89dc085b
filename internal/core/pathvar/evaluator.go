// Package pathvar substitutes symbolic placeholders such as {home} or
// {documents} in plugin supplied paths with concrete, platform specific values.
package pathvar

import (
	"errors"
	"fmt"
	"regexp"
	"sort"
	"strings"

	"switcherforgames.com/cli/internal/core/domain/platform"
)

var (
	// ErrUnknownVariable is returned for placeholders no platform knows about
	ErrUnknownVariable = errors.New("unknown path variable")
	// ErrUnsupportedVariable is returned when a variable has no evaluator on the platform
	ErrUnsupportedVariable = errors.New("path variable not supported on platform")
	// ErrUnresolved is returned when the environment yields no value for a variable
	ErrUnresolved = errors.New("path variable could not be resolved")
)

// VariableError describes a placeholder that failed to evaluate
type VariableError struct {
	Name     string
	Platform platform.Platform
	Err      error
}

func (e *VariableError) Error() string {
	return fmt.Sprintf("{%s} on %s: %v", e.Name, e.Platform, e.Err)
}

func (e *VariableError) Unwrap() error {
	return e.Err
}

const (
	Home         = "home"
	Username     = "username"
	Documents    = "documents"
	AppData      = "appdata"
	LocalAppData = "localappdata"
	XDGConfig    = "xdg_config"
	XDGData      = "xdg_data"
	Library      = "library"
	AppSupport   = "app_support"
)

var placeholder = regexp.MustCompile(`\{([a-z_]+)\}`)

type resolver func(e *Evaluator) (string, error)

// variables maps a variable name to its evaluator on each platform.
// A platform missing from the inner map cannot evaluate that variable.
// It is filled in init since several resolvers evaluate Home through Value.
var variables map[string]map[platform.Platform]resolver

func init() {
	variables = map[string]map[platform.Platform]resolver{
		Home: {
			platform.Windows: func(e *Evaluator) (string, error) {
				if v := e.env.Getenv("USERPROFILE"); v != "" {
					return v, nil
				}
				return e.env.HomeDir()
			},
			platform.Linux: homeDir,
			platform.MacOS: homeDir,
		},
		Username: {
			platform.Windows: firstEnv("USERNAME", "USER"),
			platform.Linux:   firstEnv("USER", "USERNAME"),
			platform.MacOS:   firstEnv("USER", "USERNAME"),
		},
		Documents: {
			platform.Windows: underHome("Documents"),
			platform.Linux:   envOrHome("XDG_DOCUMENTS_DIR", "Documents"),
			platform.MacOS:   underHome("Documents"),
		},
		AppData: {
			platform.Windows: envOrHome("APPDATA", "AppData", "Roaming"),
		},
		LocalAppData: {
			platform.Windows: envOrHome("LOCALAPPDATA", "AppData", "Local"),
		},
		XDGConfig: {
			platform.Linux: envOrHome("XDG_CONFIG_HOME", ".config"),
		},
		XDGData: {
			platform.Linux: envOrHome("XDG_DATA_HOME", ".local", "share"),
		},
		Library: {
			platform.MacOS: underHome("Library"),
		},
		AppSupport: {
			platform.MacOS: underHome("Library", "Application Support"),
		},
	}
}

func homeDir(e *Evaluator) (string, error) {
	return e.env.HomeDir()
}

func firstEnv(keys ...string) resolver {
	return func(e *Evaluator) (string, error) {
		for _, k := range keys {
			if v := e.env.Getenv(k); v != "" {
				return v, nil
			}
		}
		return "", ErrUnresolved
	}
}

func underHome(elems ...string) resolver {
	return func(e *Evaluator) (string, error) {
		home, err := e.Value(Home)
		if err != nil {
			return "", err
		}
		return e.platform.Join(append([]string{home}, elems...)...), nil
	}
}

func envOrHome(key string, elems ...string) resolver {
	under := underHome(elems...)
	return func(e *Evaluator) (string, error) {
		if v := e.env.Getenv(key); v != "" {
			return v, nil
		}
		return under(e)
	}
}

// Variables lists the variable names the platform can evaluate, sorted
func Variables(p platform.Platform) []string {
	var names []string
	for name, byPlatform := range variables {
		if _, ok := byPlatform[p]; ok {
			names = append(names, name)
		}
	}
	sort.Strings(names)
	return names
}

// Evaluator resolves path variables for one platform and environment
type Evaluator struct {
	platform platform.Platform
	env      Environment
}

// NewEvaluator creates an evaluator for the given platform
func NewEvaluator(p platform.Platform, env Environment) *Evaluator {
	return &Evaluator{platform: p, env: env}
}

// Platform returns the platform the evaluator targets
func (e *Evaluator) Platform() platform.Platform {
	return e.platform
}

// Value returns the concrete value of a single variable
func (e *Evaluator) Value(name string) (string, error) {
	byPlatform, ok := variables[name]
	if !ok {
		return "", &VariableError{Name: name, Platform: e.platform, Err: ErrUnknownVariable}
	}
	resolve, ok := byPlatform[e.platform]
	if !ok {
		return "", &VariableError{Name: name, Platform: e.platform, Err: ErrUnsupportedVariable}
	}

	v, err := resolve(e)
	if err != nil {
		var verr *VariableError
		if errors.As(err, &verr) {
			return "", err
		}
		if !errors.Is(err, ErrUnresolved) {
			err = fmt.Errorf("%w: %v", ErrUnresolved, err)
		}
		return "", &VariableError{Name: name, Platform: e.platform, Err: err}
	}
	if v == "" {
		return "", &VariableError{Name: name, Platform: e.platform, Err: ErrUnresolved}
	}
	if name == Username {
		return v, nil
	}
	return e.platform.Join(v), nil
}

// Evaluate replaces every placeholder in s and returns a cleaned path using
// the platform separator. The first failing placeholder aborts evaluation.
func (e *Evaluator) Evaluate(s string) (string, error) {
	var firstErr error
	out := placeholder.ReplaceAllStringFunc(s, func(m string) string {
		if firstErr != nil {
			return m
		}
		name := m[1 : len(m)-1]
		v, err := e.Value(name)
		if err != nil {
			firstErr = err
			return m
		}
		return e.platform.ToSlash(v)
	})
	if firstErr != nil {
		return "", firstErr
	}
	return e.platform.Join(out), nil
}

// Symbolize rewrites a concrete path so its longest matching directory
// variable prefix becomes a placeholder. The result always uses forward
// slashes. Paths that match no variable are returned cleaned.
func (e *Evaluator) Symbolize(concrete string) string {
	clean := e.platform.ToSlash(e.platform.Join(concrete))

	bestName, bestValue := "", ""
	for _, name := range Variables(e.platform) {
		if name == Username {
			continue
		}
		v, err := e.Value(name)
		if err != nil {
			continue
		}
		v = e.platform.ToSlash(v)
		if len(v) <= len(bestValue) {
			continue
		}
		if clean == v || strings.HasPrefix(clean, strings.TrimSuffix(v, "/")+"/") {
			bestName, bestValue = name, v
		}
	}

	if bestName == "" {
		return clean
	}
	rest := strings.TrimPrefix(strings.TrimPrefix(clean, bestValue), "/")
	if rest == "" {
		return "{" + bestName + "}"
	}
	return "{" + bestName + "}/" + rest
}
