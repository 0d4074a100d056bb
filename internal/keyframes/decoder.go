package keyframes

import (
	"context"
	"errors"
	"os/exec"
	"strings"
	"unicode/utf8"
)

// stderrTailBytes bounds how much decoder error output is kept per task.
const stderrTailBytes = 4096

// DecodeResult is the outcome of one decoder process.
type DecodeResult struct {
	ExitStatus int
	Stderr     string
}

// Decoder runs the external keyframe decoder. A non-nil error means the
// process could not be started; a process that ran and failed reports a
// non-zero ExitStatus with a nil error.
type Decoder interface {
	Decode(ctx context.Context, args []string) (DecodeResult, error)
}

// DecoderFunc adapts a function to the Decoder interface.
type DecoderFunc func(ctx context.Context, args []string) (DecodeResult, error)

func (f DecoderFunc) Decode(ctx context.Context, args []string) (DecodeResult, error) {
	return f(ctx, args)
}

// FFmpeg runs an ffmpeg binary as a child process and waits for it to exit.
type FFmpeg struct {
	binary string
}

// NewFFmpeg returns a decoder that executes binary, which may be a bare
// command name resolved through PATH or a path to an executable.
func NewFFmpeg(binary string) *FFmpeg {
	binary = strings.TrimSpace(binary)
	if binary == "" {
		binary = "ffmpeg"
	}
	return &FFmpeg{binary: binary}
}

// Binary returns the configured executable.
func (f *FFmpeg) Binary() string {
	return f.binary
}

func (f *FFmpeg) Decode(ctx context.Context, args []string) (DecodeResult, error) {
	cmd := exec.CommandContext(ctx, f.binary, args...)

	stderr := &tailBuffer{limit: stderrTailBytes}
	cmd.Stderr = stderr

	if err := cmd.Start(); err != nil {
		return DecodeResult{ExitStatus: -1}, err
	}
	err := cmd.Wait()
	result := DecodeResult{Stderr: stderr.String()}
	if err == nil {
		return result, nil
	}
	var exitErr *exec.ExitError
	if errors.As(err, &exitErr) {
		result.ExitStatus = exitErr.ExitCode()
		return result, nil
	}
	result.ExitStatus = -1
	return result, err
}

// tailBuffer keeps only the last limit bytes written to it.
type tailBuffer struct {
	limit int
	buf   []byte
}

func (t *tailBuffer) Write(p []byte) (int, error) {
	n := len(p)
	if n >= t.limit {
		t.buf = append(t.buf[:0], p[n-t.limit:]...)
		return n, nil
	}
	t.buf = append(t.buf, p...)
	if over := len(t.buf) - t.limit; over > 0 {
		t.buf = append(t.buf[:0], t.buf[over:]...)
	}
	return n, nil
}

// String returns the retained bytes, dropping a rune cut by the limit.
func (t *tailBuffer) String() string {
	b := t.buf
	for len(b) > 0 && !utf8.RuneStart(b[0]) {
		b = b[1:]
	}
	return string(b)
}
