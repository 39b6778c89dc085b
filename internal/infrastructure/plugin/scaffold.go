package plugininfra

import (
	"fmt"
	"path/filepath"
	"regexp"
	"strconv"
	"strings"

	"github.com/flytam/filenamify"
	"github.com/infinytum/raymond/v2"
	"github.com/spf13/afero"

	"switcherforgames.com/cli/internal/core/discovery"
	plugindomain "switcherforgames.com/cli/internal/core/domain/plugin"
	"switcherforgames.com/cli/internal/core/domain/platform"
)

const descriptorTemplate = `uid: {{{quote uid}}}
game: {{{quote game}}}
author: {{{quote author}}}
api: {{api}}
features:
{{#each features}}
  - {{this}}
{{/each}}
{{#each fragments}}
{{key}}:
  {{../platform}}: {{{quote value}}}
{{/each}}
gameDirectory: {{{quote folder}}}
{{#if executable}}
executable:
  {{platform}}: {{{quote executable}}}
{{/if}}
`

var (
	uidUnsafe  = regexp.MustCompile(`[^a-z0-9._-]+`)
	uidHyphens = regexp.MustCompile(`-{2,}`)
)

// ScaffoldOptions controls the descriptor skeleton produced by Scaffold
type ScaffoldOptions struct {
	Author   string
	Features plugindomain.FeatureSet
	Platform platform.Platform
}

// Scaffold renders a descriptor skeleton for the game installed in gameDir.
// Fragments are placeholders to be edited; the executable is detected.
func Scaffold(fs afero.Fs, gameDir string, opts ScaffoldOptions) ([]byte, error) {
	if ok, _ := afero.DirExists(fs, gameDir); !ok {
		return nil, fmt.Errorf("%s is not a folder", gameDir)
	}

	folder := filepath.Base(filepath.Clean(gameDir))
	uid, err := ScaffoldUID(folder)
	if err != nil {
		return nil, err
	}

	features := opts.Features.Normalize()
	if features.IsEmpty() {
		features = plugindomain.NewFeatureSet(plugindomain.FeatureGraphics)
	}
	author := opts.Author
	if author == "" {
		author = "unknown"
	}

	fragments := make([]map[string]string, 0, len(features))
	for _, f := range features {
		fragments = append(fragments, map[string]string{
			"key":   configKey(f),
			"value": "{documents}/" + folder,
		})
	}

	executable := ""
	if exe, err := discovery.FindExecutable(fs, gameDir, folder, opts.Platform); err == nil {
		if rel, err := filepath.Rel(gameDir, exe); err == nil {
			executable = filepath.ToSlash(rel)
		}
	}

	tmpl, err := raymond.Parse(descriptorTemplate)
	if err != nil {
		return nil, fmt.Errorf("error parsing template: %w", err)
	}
	tmpl.RegisterHelpers(map[string]interface{}{
		"quote": func(in string) string {
			return strconv.Quote(in)
		},
	})

	out, err := tmpl.Exec(map[string]interface{}{
		"uid":        uid,
		"game":       folder,
		"author":     author,
		"api":        plugindomain.APILevel,
		"features":   features.Strings(),
		"fragments":  fragments,
		"folder":     folder,
		"executable": executable,
		"platform":   opts.Platform.String(),
	})
	if err != nil {
		return nil, fmt.Errorf("error processing template: %w", err)
	}
	return []byte(out), nil
}

// ScaffoldUID derives a valid plugin uid from a game folder name
func ScaffoldUID(folder string) (string, error) {
	name, err := filenamify.Filenamify(folder, filenamify.Options{
		Replacement: "-",
	})
	if err != nil {
		return "", fmt.Errorf("failed to derive uid from %q: %w", folder, err)
	}
	uid := uidUnsafe.ReplaceAllString(strings.ToLower(name), "-")
	uid = uidHyphens.ReplaceAllString(uid, "-")
	uid = strings.Trim(uid, "-._")
	if uid == "" {
		return "", fmt.Errorf("cannot derive a uid from %q", folder)
	}
	return uid, nil
}

func configKey(f plugindomain.Feature) string {
	switch f {
	case plugindomain.FeatureKeymap:
		return "keymapConfig"
	case plugindomain.FeatureSaves:
		return "savesConfig"
	default:
		return "graphicsConfig"
	}
}
