package testgames

import "time"

// Enqueue retry configuration.
const (
	EnqueueRetryDelay = time.Millisecond
)

// Reporting constants.
const (
	PercentageMultiplier = 100
)
