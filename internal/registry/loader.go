package registry

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"predictord/internal/common/fsutil"
)

// Artifact formats understood by the model loader.
const (
	FormatNative = "native"
	FormatONNX   = "onnx"
)

// Artifact is a resolved, on-disk model artifact.
type Artifact struct {
	ID        string
	Path      string
	Format    string
	SizeBytes int64
}

var extFormats = map[string]string{
	".prdm": FormatNative,
	".onnx": FormatONNX,
}

// FormatOf reports the artifact format implied by a file name, or "".
func FormatOf(name string) string {
	return extFormats[strings.ToLower(filepath.Ext(name))]
}

// Scan lists every recognised artifact in dir, sorted by file name.
// ID is the filename without extension.
func Scan(dir string) ([]Artifact, error) {
	base, err := fsutil.ExpandHome(dir)
	if err != nil {
		return nil, err
	}
	abs, err := filepath.Abs(base)
	if err != nil {
		return nil, fmt.Errorf("abs path: %w", err)
	}
	entries, err := os.ReadDir(abs)
	if err != nil {
		return nil, fmt.Errorf("read dir: %w", err)
	}
	var out []Artifact
	for _, e := range entries {
		if e.IsDir() {
			continue
		}
		name := e.Name()
		format := FormatOf(name)
		if format == "" {
			continue
		}
		info, err := e.Info()
		if err != nil {
			return nil, fmt.Errorf("stat %s: %w", name, err)
		}
		out = append(out, Artifact{
			ID:        strings.TrimSuffix(name, filepath.Ext(name)),
			Path:      filepath.Join(abs, name),
			Format:    format,
			SizeBytes: info.Size(),
		})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Path < out[j].Path })
	return out, nil
}

// Resolve turns the server's artifact argument into exactly one artifact.
// A file path must carry a known extension; a directory must contain exactly
// one artifact.
func Resolve(path string) (Artifact, error) {
	if strings.TrimSpace(path) == "" {
		return Artifact{}, fmt.Errorf("empty artifact path")
	}
	p, err := fsutil.ExpandHome(path)
	if err != nil {
		return Artifact{}, err
	}
	abs, err := filepath.Abs(p)
	if err != nil {
		return Artifact{}, fmt.Errorf("abs path: %w", err)
	}
	fi, err := os.Stat(abs)
	if err != nil {
		return Artifact{}, err
	}
	if fi.IsDir() {
		found, err := Scan(abs)
		if err != nil {
			return Artifact{}, err
		}
		switch len(found) {
		case 0:
			return Artifact{}, fmt.Errorf("no model artifact in %s", abs)
		case 1:
			return found[0], nil
		default:
			return Artifact{}, fmt.Errorf("%d model artifacts in %s; pass a file", len(found), abs)
		}
	}
	format := FormatOf(abs)
	if format == "" {
		return Artifact{}, fmt.Errorf("unrecognised artifact extension %q", filepath.Ext(abs))
	}
	name := filepath.Base(abs)
	return Artifact{
		ID:        strings.TrimSuffix(name, filepath.Ext(name)),
		Path:      abs,
		Format:    format,
		SizeBytes: fi.Size(),
	}, nil
}
