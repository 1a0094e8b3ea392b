package driver

import (
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/pkg/errors"
	"gopkg.in/yaml.v3"

	"pywasm/compiler-go/pkg/compiler"
)

// ManifestName is the file name LoadManifest looks for in a project directory.
const ManifestName = "pywasm.yml"

const defaultOutput = "build"

// Manifest models pywasm.yml. Paths are absolute once loaded.
type Manifest struct {
	Path          string
	Dir           string
	Name          string
	Entry         string
	Output        string
	Emit          []compiler.Artifact
	StampRevision bool
}

type manifestDisk struct {
	Name          string   `yaml:"name"`
	Entry         string   `yaml:"entry"`
	Output        string   `yaml:"output"`
	Emit          []string `yaml:"emit"`
	StampRevision bool     `yaml:"stamp_revision"`
}

// LoadManifest parses a manifest file, or the pywasm.yml inside path when
// path is a directory.
func LoadManifest(path string) (*Manifest, error) {
	if path == "" {
		return nil, errors.New("manifest: empty path")
	}
	abs, err := filepath.Abs(path)
	if err != nil {
		return nil, errors.Wrapf(err, "manifest: resolve %s", path)
	}
	if info, err := os.Stat(abs); err == nil && info.IsDir() {
		abs = filepath.Join(abs, ManifestName)
	}
	file, err := os.Open(abs)
	if err != nil {
		return nil, errors.Wrap(err, "manifest")
	}
	defer file.Close()

	var raw manifestDisk
	decoder := yaml.NewDecoder(file)
	decoder.KnownFields(true)
	if err := decoder.Decode(&raw); err != nil {
		return nil, errors.Wrapf(err, "manifest: parse %s", abs)
	}
	manifest, err := raw.toManifest(filepath.Dir(abs))
	if err != nil {
		return nil, errors.Wrapf(err, "manifest: %s", abs)
	}
	manifest.Path = abs
	return manifest, nil
}

func (d manifestDisk) toManifest(dir string) (*Manifest, error) {
	entry := strings.TrimSpace(d.Entry)
	if entry == "" {
		return nil, errors.New("entry is required")
	}
	output := strings.TrimSpace(d.Output)
	if output == "" {
		output = defaultOutput
	}
	emit, err := normalizeEmit(d.Emit)
	if err != nil {
		return nil, err
	}
	return &Manifest{
		Dir:           dir,
		Name:          strings.TrimSpace(d.Name),
		Entry:         resolvePath(dir, entry),
		Output:        resolvePath(dir, output),
		Emit:          emit,
		StampRevision: d.StampRevision,
	}, nil
}

func resolvePath(dir, path string) string {
	if filepath.IsAbs(path) {
		return filepath.Clean(path)
	}
	return filepath.Join(dir, filepath.FromSlash(path))
}

// normalizeEmit lower-cases, validates, de-duplicates and sorts emit values.
func normalizeEmit(values []string) ([]compiler.Artifact, error) {
	if len(values) == 0 {
		return []compiler.Artifact{compiler.ArtifactWasm, compiler.ArtifactWAT}, nil
	}
	seen := make(map[compiler.Artifact]bool)
	var out []compiler.Artifact
	for _, value := range values {
		artifact := compiler.Artifact(strings.ToLower(strings.TrimSpace(value)))
		switch artifact {
		case compiler.ArtifactWAT, compiler.ArtifactWasm:
		default:
			return nil, errors.Errorf("unknown emit value %q (want wat or wasm)", value)
		}
		if seen[artifact] {
			continue
		}
		seen[artifact] = true
		out = append(out, artifact)
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out, nil
}

// ArtifactName is the base name of the files a build writes: the manifest
// name when set, otherwise the entry file name without its extension.
func (m *Manifest) ArtifactName() string {
	if m.Name != "" {
		return m.Name
	}
	base := filepath.Base(m.Entry)
	return strings.TrimSuffix(base, filepath.Ext(base))
}
