// Package preflight provides readiness checks for the filesystem paths and
// external binaries a keyframe batch depends on.
//
// These checks run in two contexts:
//   - The extract command calls RunAll before discovery and refuses to start
//     when a required check fails, so a misconfigured run fails once instead
//     of once per input.
//   - The CLI "keyframer check" command renders every Result as a table.
//
// The ledger check is gated by its config toggle.
package preflight
