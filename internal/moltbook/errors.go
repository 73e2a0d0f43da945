package moltbook

import (
	"errors"
	"fmt"
)

// RateLimitError reports a 429 from the platform. The client never retries or
// sleeps on its own; callers decide what to do with the hint.
type RateLimitError struct {
	RetryAfterMinutes int
	RetryAfterSeconds int
}

func (e *RateLimitError) Error() string {
	if e.RetryAfterMinutes > 0 {
		return fmt.Sprintf("rate limited: retry after %d min", e.RetryAfterMinutes)
	}
	return fmt.Sprintf("rate limited: retry after %d sec", e.RetryAfterSeconds)
}

// VerificationError reports a write action that succeeded but whose anti-bot
// verification step failed. This is distinct from the write failing outright:
// the post/comment exists on the platform, it is just unverified.
type VerificationError struct {
	Challenge string
	Answer    string
	Reason    string
}

func (e *VerificationError) Error() string {
	return fmt.Sprintf("created but verification failed: %s (answer was %s, challenge: %s)",
		e.Reason, e.Answer, e.Challenge)
}

// IsRateLimited reports whether err is a rate-limit condition.
func IsRateLimited(err error) bool {
	var rl *RateLimitError
	return errors.As(err, &rl)
}

// IsUnverified reports whether err means the write landed but verification
// failed.
func IsUnverified(err error) bool {
	var ve *VerificationError
	return errors.As(err, &ve)
}
