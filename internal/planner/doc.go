// Package planner derives the encode parameters shared by every output
// format of one source file: the aspect-preserving resize, the
// scale-and-letterbox filter, and the policy-capped frame, bit and sample
// rates. It performs no I/O.
package planner
