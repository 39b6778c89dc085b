package plugininfra

import (
	"errors"
	"fmt"
	"go/ast"
	"go/parser"
	"go/token"
	"strconv"

	"github.com/traefik/yaegi/interp"
	"github.com/traefik/yaegi/stdlib"
)

// ScriptFile is the optional Go source overriding a plugin's behaviour
const ScriptFile = "plugin.go"

var (
	// ErrForbiddenImport is returned when a script imports a package outside the allowed set
	ErrForbiddenImport = errors.New("import not allowed in plugin script")
	// ErrScriptSignature is returned when a known script function has the wrong type
	ErrScriptSignature = errors.New("plugin script function has wrong signature")
)

// scriptPackages are the stdlib packages a plugin script may import,
// keyed by import path and valued by yaegi symbol key.
var scriptPackages = map[string]string{
	"fmt":           "fmt/fmt",
	"os":            "os/os",
	"path":          "path/path",
	"path/filepath": "path/filepath/filepath",
	"regexp":        "regexp/regexp",
	"strconv":       "strconv/strconv",
	"strings":       "strings/strings",
	"unicode":       "unicode/unicode",
}

// ScriptedPlugin is a codeless plugin whose Identify and Executable may be
// replaced by functions of an interpreted Go script.
type ScriptedPlugin struct {
	*CodelessPlugin

	identify   func(string) bool
	executable func(string) string
}

// NewScriptedPlugin interprets src and binds the functions it defines on top of base
func NewScriptedPlugin(base *CodelessPlugin, src []byte) (*ScriptedPlugin, error) {
	file, err := parser.ParseFile(token.NewFileSet(), ScriptFile, src, parser.SkipObjectResolution)
	if err != nil {
		return nil, fmt.Errorf("failed to parse %s: %w", ScriptFile, err)
	}
	if err := checkImports(file); err != nil {
		return nil, err
	}

	i := interp.New(interp.Options{})
	if err := i.Use(restrictedStdlib()); err != nil {
		return nil, fmt.Errorf("failed to load script symbols: %w", err)
	}
	if _, err := i.Eval(string(src)); err != nil {
		return nil, fmt.Errorf("failed to evaluate %s: %w", ScriptFile, err)
	}

	p := &ScriptedPlugin{CodelessPlugin: base}
	pkg := file.Name.Name
	declared := topLevelFuncs(file)

	if declared["Identify"] {
		fn, err := lookup[func(string) bool](i, pkg, "Identify")
		if err != nil {
			return nil, err
		}
		p.identify = fn
	}
	if declared["Executable"] {
		fn, err := lookup[func(string) string](i, pkg, "Executable")
		if err != nil {
			return nil, err
		}
		p.executable = fn
	}
	return p, nil
}

// Identify uses the script's Identify when defined
func (p *ScriptedPlugin) Identify(gamePath string) (ok bool) {
	if p.identify == nil {
		return p.CodelessPlugin.Identify(gamePath)
	}
	defer func() {
		if recover() != nil {
			ok = false
		}
	}()
	return p.identify(gamePath)
}

// Executable uses the script's Executable when defined and non-empty
func (p *ScriptedPlugin) Executable(gamePath string) (string, error) {
	if p.executable != nil {
		if exe := p.callExecutable(gamePath); exe != "" {
			return resolve(gamePath, exe), nil
		}
	}
	return p.CodelessPlugin.Executable(gamePath)
}

func (p *ScriptedPlugin) callExecutable(gamePath string) (exe string) {
	defer func() {
		if recover() != nil {
			exe = ""
		}
	}()
	return p.executable(gamePath)
}

func lookup[F any](i *interp.Interpreter, pkg, name string) (F, error) {
	var zero F
	v, err := i.Eval(pkg + "." + name)
	if err != nil {
		return zero, fmt.Errorf("failed to look up %s: %w", name, err)
	}
	fn, ok := v.Interface().(F)
	if !ok {
		return zero, fmt.Errorf("%w: %s is %s", ErrScriptSignature, name, v.Type())
	}
	return fn, nil
}

func checkImports(file *ast.File) error {
	for _, imp := range file.Imports {
		path, err := strconv.Unquote(imp.Path.Value)
		if err != nil {
			return fmt.Errorf("bad import %s: %w", imp.Path.Value, err)
		}
		if _, ok := scriptPackages[path]; !ok {
			return fmt.Errorf("%w: %s", ErrForbiddenImport, path)
		}
	}
	return nil
}

func topLevelFuncs(file *ast.File) map[string]bool {
	out := map[string]bool{}
	for _, decl := range file.Decls {
		if fn, ok := decl.(*ast.FuncDecl); ok && fn.Recv == nil {
			out[fn.Name.Name] = true
		}
	}
	return out
}

func restrictedStdlib() interp.Exports {
	restricted := interp.Exports{}
	for _, key := range scriptPackages {
		if syms, ok := stdlib.Symbols[key]; ok {
			restricted[key] = syms
		}
	}
	return restricted
}
