// Package probe runs mediainfo against a source file and exposes the
// properties the encode planner needs.
//
// mediainfo prints plain text: a section header line ("Video", "Audio")
// followed by "Label : value" lines. [Parse] flattens that into a [Media]
// map keyed "<section>_<label>", e.g. "video_width" or
// "audio_sampling_rate". The typed accessors strip units and report
// absent or malformed values with [ErrMissingProperty] and
// [ErrMalformedProperty].
package probe
