package manifest

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
)

func TestLoadManifest(t *testing.T) {
	// Create a temporary directory with a psl.toml
	dir := t.TempDir()
	tomlContent := `
[project]
name = "profile-app"

[source]
dirs = ["dataqwik/procedure", "psl"]

[core]
dir = "psl/core"

[tables]
dir = "dataqwik/table"

[lint]
include = ["*.PROC", "*.psl"]
exclude = ["Generated*"]
disable = ["member-length"]

[index]
path = "cache/index.db"
`
	if err := os.WriteFile(filepath.Join(dir, FileName), []byte(tomlContent), 0644); err != nil {
		t.Fatal(err)
	}

	m, err := Load(dir)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}

	if m.Project.Name != "profile-app" {
		t.Errorf("project name = %q, want profile-app", m.Project.Name)
	}
	if len(m.Source.Dirs) != 2 {
		t.Errorf("source dirs count = %d, want 2", len(m.Source.Dirs))
	}
	if m.CoreDir() != filepath.Join(m.Dir, "psl", "core") {
		t.Errorf("core dir = %q", m.CoreDir())
	}
	if m.TableDir() != filepath.Join(m.Dir, "dataqwik", "table") {
		t.Errorf("table dir = %q", m.TableDir())
	}
	if len(m.Lint.Disable) != 1 || m.Lint.Disable[0] != "member-length" {
		t.Errorf("lint disable = %v, want [member-length]", m.Lint.Disable)
	}
	if m.IndexPath() != filepath.Join(m.Dir, "cache", "index.db") {
		t.Errorf("index path = %q", m.IndexPath())
	}
}

func TestLoadManifestDefaults(t *testing.T) {
	dir := t.TempDir()
	tomlContent := `
[project]
name = "minimal"
`
	if err := os.WriteFile(filepath.Join(dir, FileName), []byte(tomlContent), 0644); err != nil {
		t.Fatal(err)
	}

	m, err := Load(dir)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}

	if len(m.Source.Dirs) != 1 || m.Source.Dirs[0] != "." {
		t.Errorf("default source dirs = %v, want [.]", m.Source.Dirs)
	}
	if m.Core.Dir != "core" {
		t.Errorf("default core dir = %q, want core", m.Core.Dir)
	}
	if m.Tables.Dir != "table" {
		t.Errorf("default tables dir = %q, want table", m.Tables.Dir)
	}
	if m.IndexPath() != filepath.Join(m.Dir, ".pslkit", "index.db") {
		t.Errorf("default index path = %q", m.IndexPath())
	}
}

func TestLoadManifestInvalid(t *testing.T) {
	dir := t.TempDir()
	if err := os.WriteFile(filepath.Join(dir, FileName), []byte("[project\nname ="), 0644); err != nil {
		t.Fatal(err)
	}
	if _, err := Load(dir); err == nil {
		t.Error("Load should fail on malformed TOML")
	}
}

func TestFindAndLoad(t *testing.T) {
	// Create nested directory structure
	dir := t.TempDir()
	subDir := filepath.Join(dir, "a", "b", "c")
	if err := os.MkdirAll(subDir, 0755); err != nil {
		t.Fatal(err)
	}

	tomlContent := `[project]
name = "found-project"
`
	if err := os.WriteFile(filepath.Join(dir, FileName), []byte(tomlContent), 0644); err != nil {
		t.Fatal(err)
	}

	// Should find manifest when starting from a deep subdirectory
	m, err := FindAndLoad(subDir)
	if err != nil {
		t.Fatalf("FindAndLoad failed: %v", err)
	}
	if m.Project.Name != "found-project" {
		t.Errorf("project name = %q, want found-project", m.Project.Name)
	}
}

func TestFindAndLoadNotFound(t *testing.T) {
	dir := t.TempDir()
	m, err := FindAndLoad(dir)
	if !errors.Is(err, ErrNoManifest) {
		t.Fatalf("FindAndLoad error = %v, want ErrNoManifest", err)
	}
	if m != nil {
		t.Error("expected nil manifest when no psl.toml exists")
	}

	m, err = LoadOrDefault(dir)
	if err != nil {
		t.Fatalf("LoadOrDefault error: %v", err)
	}
	if m.Core.Dir != "core" {
		t.Errorf("LoadOrDefault core dir = %q, want core", m.Core.Dir)
	}
}

func TestSourceDirPaths(t *testing.T) {
	m := &Manifest{
		Dir: "/app",
		Source: Source{
			Dirs: []string{"src", "/abs/lib"},
		},
	}

	paths := m.SourceDirPaths()
	if len(paths) != 2 {
		t.Fatalf("expected 2 paths, got %d", len(paths))
	}
	if paths[0] != "/app/src" {
		t.Errorf("paths[0] = %q, want /app/src", paths[0])
	}
	if paths[1] != "/abs/lib" {
		t.Errorf("paths[1] = %q, want /abs/lib", paths[1])
	}
}

func TestFinderPaths(t *testing.T) {
	m := &Manifest{
		Dir:    "/app",
		Source: Source{Dirs: []string{"src", "lib"}},
		Core:   Dir{Dir: "core"},
		Tables: Dir{Dir: "table"},
	}

	paths := m.FinderPaths("/app/src/Account.psl")
	if paths.ActiveFile != "/app/src/Account.psl" {
		t.Errorf("active file = %q", paths.ActiveFile)
	}
	want := []string{"/app/src", "/app/lib"}
	if len(paths.ProjectRoots) != len(want) {
		t.Fatalf("project roots = %v, want %v", paths.ProjectRoots, want)
	}
	for i := range want {
		if paths.ProjectRoots[i] != want[i] {
			t.Errorf("project roots[%d] = %q, want %q", i, paths.ProjectRoots[i], want[i])
		}
	}
	if paths.CoreRoot != "/app/core" || paths.TableRoot != "/app/table" {
		t.Errorf("core = %q tables = %q", paths.CoreRoot, paths.TableRoot)
	}
}

func TestShouldLint(t *testing.T) {
	m := &Manifest{Lint: Lint{
		Include: []string{"*.PROC", "*.psl"},
		Exclude: []string{"Gen*"},
	}}

	tests := []struct {
		file string
		want bool
	}{
		{"/app/src/Account.psl", true},
		{"/app/src/BATCH.PROC", true},
		{"/app/src/notes.txt", false},
		{"/app/src/Generated.psl", false},
	}
	for _, tc := range tests {
		if got := m.ShouldLint(tc.file); got != tc.want {
			t.Errorf("ShouldLint(%q) = %v, want %v", tc.file, got, tc.want)
		}
	}

	if !(&Manifest{}).ShouldLint("anything") {
		t.Error("empty include should match everything")
	}
}
