package facebook

import (
	"context"
	"fmt"
	"time"
)

// Attemptable 是可被重试器包装的动作能力接口。
type Attemptable interface {
	Attempt(ctx context.Context) Result
}

// AttemptFunc adapts a plain function to the Attemptable interface.
type AttemptFunc func(ctx context.Context) Result

// Attempt calls f.
func (f AttemptFunc) Attempt(ctx context.Context) Result {
	return f(ctx)
}

// Retrier re-invokes an action until it succeeds or the attempt budget is
// exhausted. First success wins; the wait between attempts is a timed
// suspension scoped to this execution and cancellable through the context.
type Retrier struct {
	MaxAttempts int
	Delay       time.Duration
}

// Execute runs the action up to MaxAttempts times (default 3) with Delay
// between failed attempts (default 2s). The returned Result carries the
// number of attempts consumed.
func (r Retrier) Execute(ctx context.Context, action Attemptable) Result {
	maxAttempts := r.MaxAttempts
	if maxAttempts <= 0 {
		maxAttempts = 3
	}
	delay := r.Delay
	if delay <= 0 {
		delay = 2 * time.Second
	}

	lastError := ""
	for attempt := 1; attempt <= maxAttempts; attempt++ {
		result := action.Attempt(ctx)
		if result.Success {
			result.Attempts = attempt
			return result
		}

		lastError = result.Error
		if lastError == "" {
			lastError = "unknown error"
		}

		if attempt < maxAttempts {
			select {
			case <-ctx.Done():
				return exhausted(attempt, lastError)
			case <-time.After(delay):
			}
		}
	}

	return exhausted(maxAttempts, lastError)
}

// Publish wraps a PublishAction invocation with the retry policy.
func (r Retrier) Publish(ctx context.Context, action *PublishAction, title, content, imagePath string) Result {
	return r.Execute(ctx, AttemptFunc(func(ctx context.Context) Result {
		return action.Execute(ctx, title, content, imagePath)
	}))
}

// Delete wraps a DeleteAction invocation with the retry policy.
func (r Retrier) Delete(ctx context.Context, action *DeleteAction, remotePostID string) Result {
	return r.Execute(ctx, AttemptFunc(func(ctx context.Context) Result {
		return action.Execute(ctx, remotePostID)
	}))
}

func exhausted(attempts int, lastError string) Result {
	return Result{
		Success:  false,
		Error:    fmt.Sprintf("Failed after %d attempts. Last error: %s", attempts, lastError),
		Attempts: attempts,
	}
}
