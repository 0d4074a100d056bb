package testsupport

import (
	"os"
	"path/filepath"
	"runtime"
	"testing"
)

// stubFFmpegScript imitates the keyframe invocation: it answers -version,
// appends each input to a call log, fails for inputs containing "corrupt",
// and otherwise writes two frames next to the output pattern.
const stubFFmpegScript = `#!/bin/sh
if [ "$1" = "-version" ]; then
	echo "ffmpeg version stub"
	exit 0
fi
log="$(dirname "$0")/calls.log"
in=""
prev=""
out=""
for arg in "$@"; do
	if [ "$prev" = "-i" ]; then
		in="$arg"
	fi
	prev="$arg"
	out="$arg"
done
echo "$in" >> "$log"
case "$in" in
	*corrupt*)
		echo "$in: Invalid data found when processing input" >&2
		exit 1
		;;
esac
dir="$(dirname "$out")"
: > "$dir/keyframe_00001.jpg"
: > "$dir/keyframe_00002.jpg"
exit 0
`

// WriteStubFFmpeg writes the stub decoder into dir and returns its path and
// the path of the call log it appends to. Tests using it are skipped on
// Windows.
func WriteStubFFmpeg(t testing.TB, dir string) (string, string) {
	t.Helper()

	if runtime.GOOS == "windows" {
		t.Skip("stub ffmpeg requires a POSIX shell")
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		t.Fatalf("mkdir stub dir: %v", err)
	}
	bin := filepath.Join(dir, "ffmpeg")
	if err := os.WriteFile(bin, []byte(stubFFmpegScript), 0o755); err != nil {
		t.Fatalf("write stub ffmpeg: %v", err)
	}
	return bin, filepath.Join(dir, "calls.log")
}
