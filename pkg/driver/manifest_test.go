package driver

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"pywasm/compiler-go/pkg/compiler"
)

func writeManifest(t *testing.T, contents string) string {
	t.Helper()
	dir := t.TempDir()
	path := filepath.Join(dir, ManifestName)
	if err := os.WriteFile(path, []byte(strings.TrimLeft(contents, "\n")), 0o600); err != nil {
		t.Fatalf("write manifest: %v", err)
	}
	return path
}

func TestLoadManifestBasic(t *testing.T) {
	path := writeManifest(t, `
name: demo
entry: src/main.py
output: out
emit: [WASM, wat, wasm]
stamp_revision: true
`)
	manifest, err := LoadManifest(path)
	if err != nil {
		t.Fatalf("LoadManifest returned error: %v", err)
	}
	dir := filepath.Dir(path)
	if manifest.Path != path || manifest.Dir != dir {
		t.Fatalf("Path/Dir = %q/%q, want %q/%q", manifest.Path, manifest.Dir, path, dir)
	}
	if manifest.Name != "demo" {
		t.Fatalf("Name = %q, want demo", manifest.Name)
	}
	if got, want := manifest.Entry, filepath.Join(dir, "src", "main.py"); got != want {
		t.Fatalf("Entry = %q, want %q", got, want)
	}
	if got, want := manifest.Output, filepath.Join(dir, "out"); got != want {
		t.Fatalf("Output = %q, want %q", got, want)
	}
	if len(manifest.Emit) != 2 || manifest.Emit[0] != compiler.ArtifactWasm || manifest.Emit[1] != compiler.ArtifactWAT {
		t.Fatalf("Emit = %v, want [wasm wat]", manifest.Emit)
	}
	if !manifest.StampRevision {
		t.Fatalf("StampRevision = false, want true")
	}
	if got := manifest.ArtifactName(); got != "demo" {
		t.Fatalf("ArtifactName = %q, want demo", got)
	}
}

func TestLoadManifestDefaults(t *testing.T) {
	path := writeManifest(t, "entry: app.py\n")
	manifest, err := LoadManifest(filepath.Dir(path))
	if err != nil {
		t.Fatalf("LoadManifest returned error: %v", err)
	}
	if got, want := manifest.Output, filepath.Join(filepath.Dir(path), "build"); got != want {
		t.Fatalf("Output = %q, want %q", got, want)
	}
	if len(manifest.Emit) != 2 {
		t.Fatalf("Emit = %v, want both artifacts", manifest.Emit)
	}
	if manifest.StampRevision {
		t.Fatalf("StampRevision should default to false")
	}
	if got := manifest.ArtifactName(); got != "app" {
		t.Fatalf("ArtifactName = %q, want app", got)
	}
}

func TestLoadManifestErrors(t *testing.T) {
	cases := []struct {
		name     string
		contents string
		fragment string
	}{
		{"missing entry", "name: demo\n", "entry is required"},
		{"unknown field", "entry: a.py\ntarget: wasm32\n", "field target not found"},
		{"bad emit", "entry: a.py\nemit: [wat, exe]\n", `unknown emit value "exe"`},
		{"bad yaml", "entry: [a.py\n", "manifest: parse"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := LoadManifest(writeManifest(t, tc.contents))
			if err == nil || !strings.Contains(err.Error(), tc.fragment) {
				t.Fatalf("expected error containing %q, got %v", tc.fragment, err)
			}
		})
	}
}

func TestLoadManifestMissingFile(t *testing.T) {
	if _, err := LoadManifest(filepath.Join(t.TempDir(), ManifestName)); err == nil {
		t.Fatalf("expected error for missing manifest")
	}
}
