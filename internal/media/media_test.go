package media_test

import (
	"os"
	"path/filepath"
	"runtime"
	"slices"
	"testing"

	"keyframer/internal/media"
	"keyframer/internal/testsupport"
)

func TestNewExtensionSetNormalizes(t *testing.T) {
	set := media.NewExtensionSet("MP4", " .mov ", "", ".")
	if got := set.String(); got != "mov,mp4" {
		t.Fatalf("unexpected set %q", got)
	}
	for _, ext := range []string{"mp4", ".MP4", "Mov"} {
		if !set.Contains(ext) {
			t.Fatalf("expected %q to be allowed", ext)
		}
	}
	if set.Contains("mkv") {
		t.Fatal("mkv should not be allowed")
	}
}

func TestDiscoverMatchesExtensionsCaseInsensitively(t *testing.T) {
	root := t.TempDir()
	testsupport.WriteTree(t, root,
		"VIDEO.MP4",
		"a/clip.mov",
		"a/b/deep.Mkv",
		"a/notes.txt",
		"noext",
		"b/archive.mp4.bak",
		".mp4",
		"a/.MOV",
	)
	if err := os.MkdirAll(filepath.Join(root, "dir.mp4"), 0o755); err != nil {
		t.Fatalf("mkdir: %v", err)
	}

	specs := slices.Collect(media.Discover(root, media.NewExtensionSet("mp4", "mov", "mkv")))
	got := make([]string, 0, len(specs))
	for _, spec := range specs {
		got = append(got, spec.Rel)
	}
	slices.Sort(got)

	want := []string{
		"VIDEO.MP4",
		filepath.Join("a", "b", "deep.Mkv"),
		filepath.Join("a", "clip.mov"),
	}
	slices.Sort(want)
	if !slices.Equal(got, want) {
		t.Fatalf("discovered %v, want %v", got, want)
	}

	for _, spec := range specs {
		if spec.Path != filepath.Join(root, spec.Rel) {
			t.Fatalf("path %q does not match rel %q", spec.Path, spec.Rel)
		}
		if spec.Extension != media.ExtensionOf(spec.Path) || spec.Extension == "" {
			t.Fatalf("unexpected extension %q for %s", spec.Extension, spec.Path)
		}
	}
}

func TestExtensionOf(t *testing.T) {
	tests := []struct {
		path string
		want string
	}{
		{"clip.MP4", "mp4"},
		{filepath.Join("a", "b.mov"), "mov"},
		{"my.holiday.Mkv", "mkv"},
		{".mp4", ""},
		{filepath.Join("a", ".mov"), ""},
		{"noext", ""},
		{"..mp4", "mp4"},
	}
	for _, tt := range tests {
		if got := media.ExtensionOf(tt.path); got != tt.want {
			t.Fatalf("ExtensionOf(%q) = %q want %q", tt.path, got, tt.want)
		}
	}
}

func TestDiscoverEmptyTree(t *testing.T) {
	root := t.TempDir()
	testsupport.WriteTree(t, root, "readme.md")
	count := 0
	for range media.Discover(root, media.NewExtensionSet("mp4")) {
		count++
	}
	if count != 0 {
		t.Fatalf("expected no inputs, got %d", count)
	}
}

func TestDiscoverMissingRootYieldsNothing(t *testing.T) {
	missing := filepath.Join(t.TempDir(), "missing")
	if specs := slices.Collect(media.Discover(missing, media.NewExtensionSet("mp4"))); len(specs) != 0 {
		t.Fatalf("expected empty sequence, got %v", specs)
	}
}

func TestDiscoverStopsWhenConsumerBreaks(t *testing.T) {
	root := t.TempDir()
	testsupport.WriteTree(t, root, "a.mp4", "b.mp4", "c.mp4")
	seen := 0
	for range media.Discover(root, media.NewExtensionSet("mp4")) {
		seen++
		break
	}
	if seen != 1 {
		t.Fatalf("expected iteration to stop after one item, got %d", seen)
	}
}

func TestDiscoverSymlinks(t *testing.T) {
	if runtime.GOOS == "windows" {
		t.Skip("symlinks require privileges on windows")
	}
	root := t.TempDir()
	outside := t.TempDir()
	testsupport.WriteTree(t, outside, "target.mp4", "sub/inner.mp4")

	if err := os.Symlink(filepath.Join(outside, "target.mp4"), filepath.Join(root, "link.mp4")); err != nil {
		t.Fatalf("symlink: %v", err)
	}
	if err := os.Symlink(filepath.Join(outside, "gone.mp4"), filepath.Join(root, "broken.mp4")); err != nil {
		t.Fatalf("symlink: %v", err)
	}
	if err := os.Symlink(filepath.Join(outside, "sub"), filepath.Join(root, "dirlink")); err != nil {
		t.Fatalf("symlink: %v", err)
	}
	// A loop back to the root must not cause infinite traversal.
	if err := os.Symlink(root, filepath.Join(root, "loop")); err != nil {
		t.Fatalf("symlink: %v", err)
	}

	specs := slices.Collect(media.Discover(root, media.NewExtensionSet("mp4")))
	if len(specs) != 1 || specs[0].Rel != "link.mp4" {
		t.Fatalf("expected only the valid file symlink, got %+v", specs)
	}
}

func TestDiscoverSkipsUnreadableDirectories(t *testing.T) {
	if runtime.GOOS == "windows" || os.Geteuid() == 0 {
		t.Skip("permission bits are not enforced")
	}
	root := t.TempDir()
	testsupport.WriteTree(t, root, "ok.mp4", "locked/hidden.mp4")
	locked := filepath.Join(root, "locked")
	if err := os.Chmod(locked, 0o000); err != nil {
		t.Fatalf("chmod: %v", err)
	}
	t.Cleanup(func() { _ = os.Chmod(locked, 0o755) })

	specs := slices.Collect(media.Discover(root, media.NewExtensionSet("mp4")))
	if len(specs) != 1 || specs[0].Rel != "ok.mp4" {
		t.Fatalf("expected unreadable directory to be skipped, got %+v", specs)
	}
}
