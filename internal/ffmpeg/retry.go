package ffmpeg

// RetryState tracks retries of one transcode step. The zero MaxRetries
// (the default) never retries, so every failure is final.
type RetryState struct {
	Attempt    int // Retries already granted.
	MaxRetries int
}

// NewRetryState returns a state allowing up to maxRetries repeats.
func NewRetryState(maxRetries int) *RetryState {
	if maxRetries < 0 {
		maxRetries = 0
	}
	return &RetryState{MaxRetries: maxRetries}
}

// Advance inspects a failed attempt's error and reports whether another
// attempt should run. Only retryable errors (see [Error.Retryable]) count,
// and at most MaxRetries are granted.
func (s *RetryState) Advance(err error) bool {
	if err == nil || !IsRetryable(err) {
		return false
	}
	if s.Attempt >= s.MaxRetries {
		return false
	}
	s.Attempt++
	return true
}
