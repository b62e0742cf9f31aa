package tasks

import "time"

// Config tunes the reminder worker pool and its sqlite-backed queue.
type Config struct {
	Workers    int
	MaxRetries int
	RetryDelay time.Duration

	// TaskTimeout bounds a single due check or audit cleanup.
	TaskTimeout time.Duration
	// ReleaseAfter hands a claimed task back to the queue if its worker vanished.
	ReleaseAfter time.Duration

	CleanupInterval   time.Duration
	RetentionDuration time.Duration // completed tasks
}

// DefaultConfig is a single worker that retries a failed check three times.
func DefaultConfig() Config {
	return Config{
		Workers:           1,
		MaxRetries:        3,
		RetryDelay:        time.Minute,
		TaskTimeout:       5 * time.Minute,
		ReleaseAfter:      15 * time.Minute,
		CleanupInterval:   time.Hour,
		RetentionDuration: 24 * time.Hour,
	}
}

// Merge returns c with every positive field of o applied on top.
func (c Config) Merge(o Config) Config {
	if o.Workers > 0 {
		c.Workers = o.Workers
	}
	if o.MaxRetries > 0 {
		c.MaxRetries = o.MaxRetries
	}
	if o.RetryDelay > 0 {
		c.RetryDelay = o.RetryDelay
	}
	if o.TaskTimeout > 0 {
		c.TaskTimeout = o.TaskTimeout
	}
	if o.ReleaseAfter > 0 {
		c.ReleaseAfter = o.ReleaseAfter
	}
	if o.CleanupInterval > 0 {
		c.CleanupInterval = o.CleanupInterval
	}
	if o.RetentionDuration > 0 {
		c.RetentionDuration = o.RetentionDuration
	}
	return c
}
