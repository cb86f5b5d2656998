// Package ffmpeg builds and executes ffmpeg commands and classifies their
// failures.
//
//   - builder.go: Build(format, Job) maps an output format and the derived
//     encode parameters to the literal argv for that format.
//   - executor.go: Executor runs one argv under a per-run timeout and keeps
//     the tail of stderr for diagnostics.
//   - errors.go: Error tags every per-file failure with a Kind (probe,
//     process, filesystem, config) and the step that failed.
//   - retry.go: RetryState decides whether a failed run is repeated. Only
//     transient process failures qualify, and the default budget is zero.
package ffmpeg
