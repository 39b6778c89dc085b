package discovery

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/spf13/afero"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"

	"switcherforgames.com/cli/internal/core/domain/platform"
	"switcherforgames.com/cli/internal/core/pathvar"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

func abs(t testing.TB, p string) string {
	t.Helper()
	a, err := filepath.Abs(filepath.FromSlash(p))
	require.NoError(t, err)
	return a
}

func touch(t testing.TB, fs afero.Fs, path string, mode os.FileMode) {
	t.Helper()
	require.NoError(t, fs.MkdirAll(filepath.Dir(path), 0o755))
	require.NoError(t, afero.WriteFile(fs, path, []byte("x"), mode))
}

func TestListGames(t *testing.T) {
	fs := afero.NewMemMapFs()
	steam := abs(t, "/lib/SteamLibrary")
	ubisoft := abs(t, "/lib/Ubisoft Game Launcher")
	gog := abs(t, "/lib/GOG Galaxy")
	epic := abs(t, "/lib/Epic Games")
	other := abs(t, "/lib/Random")

	touch(t, fs, filepath.Join(steam, "steamapps", "common", "War Thunder", "aces.exe"), 0o644)
	require.NoError(t, fs.MkdirAll(filepath.Join(steam, "steamapps", "common", "Empty"), 0o755))
	touch(t, fs, filepath.Join(steam, "steamapps", "common", "notes.txt"), 0o644)
	touch(t, fs, filepath.Join(ubisoft, "games", "Far Cry 5", "fc.exe"), 0o644)
	touch(t, fs, filepath.Join(gog, "Games", "Witcher 3", "w3.exe"), 0o644)
	touch(t, fs, filepath.Join(epic, "Fortnite", "f.exe"), 0o644)
	touch(t, fs, filepath.Join(other, "Foo", "foo.exe"), 0o644)

	roots := []string{steam, ubisoft, gog, epic, other, abs(t, "/lib/missing steam")}
	games, err := ListGames(context.Background(), fs, roots)
	require.NoError(t, err)

	want := map[string]string{
		filepath.Join(steam, "steamapps", "common", "War Thunder"): "War Thunder",
		filepath.Join(ubisoft, "games", "Far Cry 5"):               "Far Cry 5",
		filepath.Join(gog, "Games", "Witcher 3"):                   "Witcher 3",
		filepath.Join(epic, "Fortnite"):                            "Fortnite",
	}
	if diff := cmp.Diff(want, games); diff != "" {
		t.Fatalf("ListGames mismatch (-want +got):\n%s", diff)
	}
}

func TestListGamesUbisoftWithoutGamesFolder(t *testing.T) {
	fs := afero.NewMemMapFs()
	uplay := abs(t, "/lib/Uplay")
	touch(t, fs, filepath.Join(uplay, "Anno", "anno.exe"), 0o644)

	games, err := ListGames(context.Background(), fs, []string{uplay})
	require.NoError(t, err)
	assert.Equal(t, map[string]string{filepath.Join(uplay, "Anno"): "Anno"}, games)
}

func TestListGamesCancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := ListGames(ctx, afero.NewMemMapFs(), []string{abs(t, "/lib/Steam")})
	assert.ErrorIs(t, err, context.Canceled)
}

func TestRecognise(t *testing.T) {
	fs := afero.NewMemMapFs()
	tests := []struct {
		folder    string
		launchers []string
	}{
		{"/x/Steam", []string{"steam"}},
		{"/x/SteamLibrary", []string{"steam"}},
		{"/x/Ubisoft", []string{"ubisoft"}},
		{"/x/uplay", []string{"ubisoft"}},
		{"/x/GOGLibrary", []string{"gog"}},
		{"/x/goglibrary", nil},
		{"/x/Epic Games", []string{"epic"}},
		{"/x/Documents", nil},
	}

	for _, tt := range tests {
		t.Run(tt.folder, func(t *testing.T) {
			var got []string
			for _, lib := range Recognise(fs, abs(t, tt.folder)) {
				got = append(got, lib.Launcher)
			}
			assert.Equal(t, tt.launchers, got)
		})
	}
}

func TestDefaultRootsLinux(t *testing.T) {
	fs := afero.NewMemMapFs()
	home := abs(t, "/home/sam")
	env := pathvar.MapEnvironment{Home: home}

	require.NoError(t, fs.MkdirAll(filepath.Join(home, ".local", "share", "Steam"), 0o755))
	require.NoError(t, fs.MkdirAll(filepath.Join(home, "Games", "Heroic"), 0o755))
	extra := abs(t, "/mnt/SteamLibrary")
	require.NoError(t, fs.MkdirAll(extra, 0o755))

	roots := DefaultRoots(platform.Linux, env, fs, []string{extra, extra, abs(t, "/mnt/gone")})
	assert.Equal(t, []string{
		filepath.Join(home, ".local", "share", "Steam"),
		filepath.Join(home, "Games", "Heroic"),
		extra,
	}, roots)
}

func TestDefaultRootsMacOS(t *testing.T) {
	fs := afero.NewMemMapFs()
	home := abs(t, "/Users/sam")
	steam := filepath.Join(home, "Library", "Application Support", "Steam")
	require.NoError(t, fs.MkdirAll(steam, 0o755))

	roots := DefaultRoots(platform.MacOS, pathvar.MapEnvironment{Home: home}, fs, nil)
	assert.Equal(t, []string{steam}, roots)
}

func TestDefaultRootsWithoutHome(t *testing.T) {
	roots := DefaultRoots(platform.Linux, pathvar.MapEnvironment{}, afero.NewMemMapFs(), nil)
	assert.Empty(t, roots)
}

func TestDefaultRootsWindows(t *testing.T) {
	fs := afero.NewMemMapFs()
	programs := filepath.Join(`C:\`, "Program Files (x86)")
	steam := filepath.Join(programs, "Steam")
	library := filepath.Join(`D:\`, "SteamLibrary")

	touch(t, fs, filepath.Join(steam, "steamapps", "common", "War Thunder", "aces.exe"), 0o644)
	touch(t, fs, filepath.Join(library, "steamapps", "common", "Half-Life Alyx", "hlvr.exe"), 0o644)
	touch(t, fs, filepath.Join(`C:\`, "pagefile.sys"), 0o644)

	roots := DefaultRoots(platform.Windows, pathvar.MapEnvironment{}, fs, nil)
	assert.Equal(t, []string{programs, steam, library}, roots, "drive children and Program Files children")

	games, err := ListGames(context.Background(), fs, roots)
	require.NoError(t, err)
	want := map[string]string{
		filepath.Join(steam, "steamapps", "common", "War Thunder"):      "War Thunder",
		filepath.Join(library, "steamapps", "common", "Half-Life Alyx"): "Half-Life Alyx",
	}
	if diff := cmp.Diff(want, games); diff != "" {
		t.Fatalf("ListGames mismatch (-want +got):\n%s", diff)
	}
}
