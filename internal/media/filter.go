package media

import (
	"io/fs"
	"os"
	"path/filepath"
	"slices"
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

// InputSpec describes one discovered video file.
type InputSpec struct {
	// Path is the file path as produced by walking the input root.
	Path string
	// Rel is Path relative to the input root.
	Rel string
	// Extension is the lower-cased extension without the leading dot.
	Extension string
}

// ExtensionSet is an allow-list of lower-cased extensions without dots.
type ExtensionSet map[string]struct{}

// NewExtensionSet builds a set from raw extensions such as "MP4" or ".mov".
// Empty values are ignored.
func NewExtensionSet(exts ...string) ExtensionSet {
	set := make(ExtensionSet, len(exts))
	for _, ext := range exts {
		if normalized := NormalizeExtension(ext); normalized != "" {
			set[normalized] = struct{}{}
		}
	}
	return set
}

// Contains reports whether ext (in any case, with or without a dot) is allowed.
func (s ExtensionSet) Contains(ext string) bool {
	if len(s) == 0 {
		return false
	}
	_, ok := s[NormalizeExtension(ext)]
	return ok
}

// Sorted returns the set members in lexical order.
func (s ExtensionSet) Sorted() []string {
	out := make([]string, 0, len(s))
	for ext := range s {
		out = append(out, ext)
	}
	slices.Sort(out)
	return out
}

func (s ExtensionSet) String() string {
	return strings.Join(s.Sorted(), ",")
}

// NormalizeExtension trims whitespace and a leading dot and lower-cases the
// result using Unicode case mapping.
func NormalizeExtension(ext string) string {
	ext = strings.TrimPrefix(strings.TrimSpace(ext), ".")
	if ext == "" {
		return ""
	}
	return cases.Lower(language.Und).String(ext)
}

// ExtensionOf returns the normalized extension of path, or "" when it has none.
// A dotfile such as ".mp4" has no extension.
func ExtensionOf(path string) string {
	return NormalizeExtension(rawExtension(filepath.Base(path)))
}

func rawExtension(name string) string {
	ext := filepath.Ext(name)
	if strings.TrimSuffix(name, ext) == "" {
		return ""
	}
	return ext
}

// IsEligible reports whether the entry at path is a regular file whose
// extension is allowed. Symlinks are resolved with a single stat; broken
// links and links to non-regular files are ineligible.
func IsEligible(path string, entry fs.DirEntry, allowed ExtensionSet) bool {
	if entry == nil || !allowed.Contains(rawExtension(entry.Name())) {
		return false
	}
	mode := entry.Type()
	switch {
	case mode.IsRegular():
		return true
	case mode&fs.ModeSymlink != 0:
		info, err := os.Stat(path)
		return err == nil && info.Mode().IsRegular()
	default:
		return false
	}
}
