// Command keyframer extracts the keyframes of every video file below a
// directory tree into one image directory per file.
//
// Usage:
//
//	keyframer extract --input ~/videos --output ./frames --threads 4
//	keyframer check
//	keyframer history
//	keyframer config show
package main
