// Package naming owns the filesystem naming rules for converted outputs:
// which source names are eligible, where the temp, final and backup files
// live, how the input tree is mirrored into the output tree, and per-path
// locking for concurrent workers.
package naming
