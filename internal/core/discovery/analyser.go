// Package discovery finds installed games by inspecting launcher library
// folders and guesses the executable of a game folder.
package discovery

import (
	"path/filepath"
	"strings"

	"github.com/spf13/afero"
)

// Analyser recognises the library folder of one launcher
type Analyser struct {
	Launcher string

	// Matches reports whether a folder base name belongs to the launcher
	Matches func(name string) bool

	// GamesFolder returns the folder holding the games of a library
	GamesFolder func(fs afero.Fs, library string) string
}

// Analysers returns the analysers for every supported launcher
func Analysers() []Analyser {
	return []Analyser{
		{
			Launcher: "steam",
			Matches:  containsFold("steam"),
			GamesFolder: func(_ afero.Fs, library string) string {
				return filepath.Join(library, "steamapps", "common")
			},
		},
		{
			Launcher:    "ubisoft",
			Matches:     containsFold("ubisoft", "uplay"),
			GamesFolder: childIfExists("games"),
		},
		{
			Launcher: "gog",
			Matches: func(name string) bool {
				return strings.Contains(name, "GOGLibrary") || strings.Contains(name, "GOG Galaxy")
			},
			GamesFolder: childIfExists("Games"),
		},
		{
			Launcher: "epic",
			Matches:  containsFold("epic"),
			GamesFolder: func(_ afero.Fs, library string) string {
				return library
			},
		},
	}
}

// Library is a folder recognised by an analyser
type Library struct {
	Launcher string
	Folder   string
	Games    string
}

// Recognise returns the libraries a folder is recognised as; a folder
// may match several launchers, e.g. "Epic Steam Mods".
func Recognise(fs afero.Fs, folder string) []Library {
	name := filepath.Base(folder)
	var out []Library
	for _, a := range Analysers() {
		if !a.Matches(name) {
			continue
		}
		out = append(out, Library{
			Launcher: a.Launcher,
			Folder:   folder,
			Games:    a.GamesFolder(fs, folder),
		})
	}
	return out
}

func containsFold(needles ...string) func(string) bool {
	return func(name string) bool {
		lower := strings.ToLower(name)
		for _, n := range needles {
			if strings.Contains(lower, n) {
				return true
			}
		}
		return false
	}
}

func childIfExists(child string) func(afero.Fs, string) string {
	return func(fs afero.Fs, library string) string {
		p := filepath.Join(library, child)
		if ok, _ := afero.DirExists(fs, p); ok {
			return p
		}
		return library
	}
}
