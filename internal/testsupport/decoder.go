package testsupport

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"keyframer/internal/keyframes"
)

// RecordingDecoder is an in-process keyframes.Decoder. It records every
// argument list, tracks how many decodes overlap, and writes placeholder
// frames into the requested output directory on success.
type RecordingDecoder struct {
	// Frames is the number of frames written per successful decode (default 2).
	Frames int
	// Delay holds each decode open for the given duration.
	Delay time.Duration
	// FailWhen returns a non-zero exit status for inputs it matches.
	FailWhen func(input string) int
	// SpawnErr, when set, is returned as a process start failure.
	SpawnErr error

	mu          sync.Mutex
	calls       [][]string
	inFlight    int
	maxInFlight int
}

var _ keyframes.Decoder = (*RecordingDecoder)(nil)

func (d *RecordingDecoder) Decode(ctx context.Context, args []string) (keyframes.DecodeResult, error) {
	d.mu.Lock()
	d.calls = append(d.calls, append([]string(nil), args...))
	d.inFlight++
	if d.inFlight > d.maxInFlight {
		d.maxInFlight = d.inFlight
	}
	d.mu.Unlock()

	defer func() {
		d.mu.Lock()
		d.inFlight--
		d.mu.Unlock()
	}()

	if d.SpawnErr != nil {
		return keyframes.DecodeResult{ExitStatus: -1}, d.SpawnErr
	}

	if d.Delay > 0 {
		select {
		case <-time.After(d.Delay):
		case <-ctx.Done():
			return keyframes.DecodeResult{ExitStatus: -1, Stderr: "killed"}, nil
		}
	}

	input := ArgAfter(args, "-i")
	if d.FailWhen != nil {
		if status := d.FailWhen(input); status != 0 {
			return keyframes.DecodeResult{ExitStatus: status, Stderr: "Invalid data found when processing input\n"}, nil
		}
	}

	pattern := args[len(args)-1]
	frames := d.Frames
	if frames <= 0 {
		frames = 2
	}
	for i := 1; i <= frames; i++ {
		name := filepath.Join(filepath.Dir(pattern), fmt.Sprintf(filepath.Base(pattern), i))
		if err := os.WriteFile(name, []byte("frame "+filepath.Base(input)), 0o644); err != nil {
			return keyframes.DecodeResult{ExitStatus: 1, Stderr: err.Error()}, nil
		}
	}
	return keyframes.DecodeResult{}, nil
}

// Calls returns a copy of every recorded argument list.
func (d *RecordingDecoder) Calls() [][]string {
	d.mu.Lock()
	defer d.mu.Unlock()
	out := make([][]string, len(d.calls))
	copy(out, d.calls)
	return out
}

// Inputs returns the -i value of every recorded call.
func (d *RecordingDecoder) Inputs() []string {
	calls := d.Calls()
	out := make([]string, 0, len(calls))
	for _, args := range calls {
		out = append(out, ArgAfter(args, "-i"))
	}
	return out
}

// MaxInFlight reports the largest number of overlapping Decode calls observed.
func (d *RecordingDecoder) MaxInFlight() int {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.maxInFlight
}

// FailContaining returns a FailWhen func that fails inputs whose path
// contains substr with exit status 1.
func FailContaining(substr string) func(string) int {
	return func(input string) int {
		if strings.Contains(input, substr) {
			return 1
		}
		return 0
	}
}

// ArgAfter returns the argument following flag, or "".
func ArgAfter(args []string, flag string) string {
	for i := 0; i+1 < len(args); i++ {
		if args[i] == flag {
			return args[i+1]
		}
	}
	return ""
}
