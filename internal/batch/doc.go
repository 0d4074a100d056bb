// Package batch fans discovered inputs out to a bounded pool of keyframe
// extractions and aggregates their outcomes.
//
// A Dispatcher owns a single pass over a discovery sequence. Each input is
// submitted to the Pool, which caps how many extractions run at once. Tasks
// never report errors to the pool itself, so one failing input does not
// cancel its siblings; failures are collected into the Result instead.
package batch
