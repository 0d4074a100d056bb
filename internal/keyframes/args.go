package keyframes

import (
	"path/filepath"
	"strconv"
)

// OutputPattern is the numbered-sequence file name the decoder writes into
// each output directory.
const OutputPattern = "keyframe_%05d.jpg"

const (
	keyframeFilter = `select=eq(pict_type\,I)`
	decodeThreads  = "2"
)

// BuildArgs returns the decoder argument list for one input. The order and
// values are fixed so any ffmpeg-compatible replacement sees identical
// arguments; quality is passed through unvalidated.
func BuildArgs(inputPath, outputDir string, quality int) []string {
	return []string{
		"-hwaccel", "auto",
		"-i", inputPath,
		"-vf", keyframeFilter,
		"-vsync", "vfr",
		"-q:v", strconv.Itoa(quality),
		"-threads", decodeThreads,
		"-loglevel", "error",
		filepath.Join(outputDir, OutputPattern),
	}
}
