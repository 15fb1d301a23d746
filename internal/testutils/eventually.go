package test

import "time"

// Default timeouts for require.Eventually style assertions.
const (
	WaitDuration = 2 * time.Second
	WaitTick     = 20 * time.Millisecond
)
