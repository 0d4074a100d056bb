package keyframes

import (
	"context"
	"errors"
	"fmt"
	"strings"
)

var (
	ErrInvalidName     = errors.New("invalid file name")
	ErrDirectoryCreate = errors.New("create output directory")
	ErrDecoder         = errors.New("decoder failed")
	ErrProcessSpawn    = errors.New("start decoder")
	ErrMarkerWrite     = errors.New("write completion marker")
)

// DecoderError reports a decoder process that exited unsuccessfully.
type DecoderError struct {
	ExitStatus int
	// Stderr holds the tail of the decoder's error output, if any.
	Stderr string
}

func (e *DecoderError) Error() string {
	msg := fmt.Sprintf("decoder exited with status %d", e.ExitStatus)
	if line := lastLine(e.Stderr); line != "" {
		msg += ": " + line
	}
	return msg
}

func (e *DecoderError) Is(target error) bool {
	return target == ErrDecoder
}

// TaskError attributes a failure to the input that caused it.
type TaskError struct {
	Path string
	Err  error
}

func (e *TaskError) Error() string {
	return fmt.Sprintf("%s: %v", e.Path, e.Err)
}

func (e *TaskError) Unwrap() error {
	return e.Err
}

// wrap tags err with a marker and attaches the input path.
func wrap(marker error, path, detail string, err error) error {
	var inner error
	switch {
	case err != nil && detail != "":
		inner = fmt.Errorf("%w: %s: %w", marker, detail, err)
	case err != nil:
		inner = fmt.Errorf("%w: %w", marker, err)
	case detail != "":
		inner = fmt.Errorf("%w: %s", marker, detail)
	default:
		inner = marker
	}
	return &TaskError{Path: path, Err: inner}
}

// Kind classifies an extraction error for reporting. Unknown errors map to
// "internal".
func Kind(err error) string {
	switch {
	case err == nil:
		return ""
	case errors.Is(err, ErrInvalidName):
		return "invalid_name"
	case errors.Is(err, ErrDirectoryCreate):
		return "directory_create"
	case errors.Is(err, ErrDecoder):
		return "decoder"
	case errors.Is(err, ErrProcessSpawn):
		return "process_spawn"
	case errors.Is(err, ErrMarkerWrite):
		return "marker_write"
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		return "canceled"
	default:
		return "internal"
	}
}

func lastLine(s string) string {
	s = strings.TrimSpace(s)
	if idx := strings.LastIndexByte(s, '\n'); idx >= 0 {
		s = s[idx+1:]
	}
	return strings.TrimSpace(s)
}
