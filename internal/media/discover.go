package media

import (
	"io/fs"
	"iter"
	"path/filepath"
)

// Discover lazily walks root and yields every eligible file. Entries that
// cannot be read are skipped silently, and an unreadable directory skips its
// subtree. Order follows filepath.WalkDir (lexical within a directory) but
// callers must not rely on it. Each range over the sequence performs a fresh
// walk.
func Discover(root string, allowed ExtensionSet) iter.Seq[InputSpec] {
	return func(yield func(InputSpec) bool) {
		_ = filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
			if err != nil {
				if d != nil && d.IsDir() && path != root {
					return filepath.SkipDir
				}
				return nil
			}
			if d.IsDir() {
				return nil
			}
			if !IsEligible(path, d, allowed) {
				return nil
			}
			rel, relErr := filepath.Rel(root, path)
			if relErr != nil {
				rel = filepath.Base(path)
			}
			spec := InputSpec{
				Path:      path,
				Rel:       rel,
				Extension: ExtensionOf(path),
			}
			if !yield(spec) {
				return filepath.SkipAll
			}
			return nil
		})
	}
}
