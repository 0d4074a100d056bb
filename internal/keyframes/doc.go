// Package keyframes performs the unit of work for one video: it derives the
// output directory, consults the idempotency gate, and runs the decoder with
// a fixed argument contract that selects only intra-coded frames.
//
// The decoder is an interface so tests can substitute a fake and assert on
// the exact argument list. FFmpeg is the exec-backed implementation.
//
// Idempotency rests on the output directory's existence. A decode that fails
// part way leaves its directory behind, and a later run will skip it unless
// completion markers are enabled, in which case only directories carrying
// the marker count as done.
package keyframes
