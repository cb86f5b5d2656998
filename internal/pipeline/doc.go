// Package pipeline converts source files into every requested format.
//
// Converter applies the per-file protocol: probe with mediainfo, derive
// encode parameters, then per format transcode into a temp file beside the
// source, optionally rotate the previous output to .bak, and move the temp
// file into place. Run discovers a directory tree and feeds each file
// through a bounded worker pool in sorted order, mirroring the input tree
// into the output root; RunSingle converts one file.
//
// Files: discover.go (tree walk, plan), convert.go (per-file protocol),
// fsops.go (filesystem mutations, dry-run), runner.go (batch and single
// entry points), stats.go, report.go, metrics.go.
package pipeline
