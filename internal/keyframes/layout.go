package keyframes

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"keyframer/internal/media"
)

// Layout selects how an input maps to its output directory.
type Layout string

const (
	// LayoutStem names the directory after the file stem: out/clip for a/clip.mp4.
	LayoutStem Layout = "stem"
	// LayoutRelative keys the directory by the full file path below the input
	// root, extension included: out/a/clip.mp4 for a/clip.mp4. Input file
	// paths are never ancestors of one another, so neither are these
	// directories.
	LayoutRelative Layout = "relative"
)

// CompletionMarkerName is written into an output directory once the decoder
// has exited cleanly, when completion markers are enabled.
const CompletionMarkerName = ".keyframer-complete"

// ParseLayout converts a configuration value into a Layout.
func ParseLayout(value string) (Layout, error) {
	switch Layout(strings.ToLower(strings.TrimSpace(value))) {
	case "", LayoutStem:
		return LayoutStem, nil
	case LayoutRelative:
		return LayoutRelative, nil
	default:
		return "", fmt.Errorf("unsupported layout %q", value)
	}
}

// OutputDir derives the deterministic output directory for input under
// outputRoot. It fails with ErrInvalidName when the file has no usable stem.
func OutputDir(input media.InputSpec, outputRoot string, layout Layout) (string, error) {
	name := filepath.Base(input.Path)
	stem := strings.TrimSuffix(name, filepath.Ext(name))
	if !usableStem(stem) {
		return "", wrap(ErrInvalidName, input.Path, fmt.Sprintf("no usable stem in %q", name), nil)
	}
	if layout != LayoutRelative {
		return filepath.Join(outputRoot, stem), nil
	}

	rel := input.Rel
	if rel == "" {
		rel = name
	}
	key := filepath.Clean(rel)
	if !filepath.IsLocal(key) {
		return "", wrap(ErrInvalidName, input.Path, fmt.Sprintf("relative path %q escapes the output root", rel), nil)
	}
	return filepath.Join(outputRoot, key), nil
}

func usableStem(stem string) bool {
	trimmed := strings.TrimSpace(stem)
	return trimmed != "" && trimmed != "." && trimmed != ".."
}

// AlreadyDone reports whether work for dir has completed. Without markers a
// directory's existence is the sole signal; with markers the directory must
// also contain CompletionMarkerName. The check is point-in-time and unlocked.
func AlreadyDone(dir string, requireMarker bool) bool {
	info, err := os.Stat(dir)
	if err != nil || !info.IsDir() {
		return false
	}
	if !requireMarker {
		return true
	}
	marker, err := os.Stat(filepath.Join(dir, CompletionMarkerName))
	return err == nil && marker.Mode().IsRegular()
}
