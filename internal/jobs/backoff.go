package jobs

import "time"

// CalculateNextRetry returns when a job that just failed its executionCount-th
// attempt should run again: base * 2^executionCount, capped. The count is
// incremented before scheduling, so the first retry waits twice the base.
func CalculateNextRetry(now time.Time, executionCount int, baseDelay, maxDelay time.Duration) time.Time {
	if executionCount < 1 {
		executionCount = 1
	}

	delay := baseDelay
	for i := 0; i < executionCount; i++ {
		delay *= 2
		if delay >= maxDelay {
			delay = maxDelay
			break
		}
	}
	if delay > maxDelay {
		delay = maxDelay
	}

	return now.Add(delay)
}
