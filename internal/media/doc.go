// Package media discovers candidate video files below an input root.
//
// Eligibility is a case-insensitive extension match against an allow-list
// applied to regular files (symlinks to regular files count; directory
// symlinks are never followed). Discovery is a lazy sequence so dispatch can
// begin before the walk finishes.
package media
