package feed

import "time"

// Defaults for candidate pages and the swipe feed.
const (
	DefaultPageLimit       = 20
	DefaultMaxPageLimit    = 50
	DefaultSnapshotSize    = 200
	DefaultLiveSampleSize  = 100
	DefaultNewWindow       = 7 * 24 * time.Hour
	DefaultRefillThreshold = 20
	DefaultRefillSize      = 50
	DefaultMaxBatch        = 50
	DefaultWait            = 2 * time.Second
	DefaultPollInterval    = 100 * time.Millisecond
	DefaultLockTTL         = 30 * time.Second
	DefaultExhaustedTTL    = 5 * time.Minute
)

// Config tunes the feed reader.
type Config struct {
	PageLimit      int
	MaxPageLimit   int
	SnapshotSize   int           // max candidates frozen per view snapshot
	LiveSampleSize int           // profiles sampled for the live tier
	NewWindow      time.Duration // age limit for the "new" view

	RefillThreshold int // refill when fewer cards remain
	RefillSize      int // cards added per refill
	MaxBatch        int
	Wait            time.Duration // how long an empty read waits for a refill
	PollInterval    time.Duration
	LockTTL         time.Duration // refill de-duplication window
	ExhaustedTTL    time.Duration
}

func (c *Config) applyDefaults() {
	setInt := func(v *int, d int) {
		if *v <= 0 {
			*v = d
		}
	}
	setDur := func(v *time.Duration, d time.Duration) {
		if *v <= 0 {
			*v = d
		}
	}
	setInt(&c.PageLimit, DefaultPageLimit)
	setInt(&c.MaxPageLimit, DefaultMaxPageLimit)
	setInt(&c.SnapshotSize, DefaultSnapshotSize)
	setInt(&c.LiveSampleSize, DefaultLiveSampleSize)
	setDur(&c.NewWindow, DefaultNewWindow)
	setInt(&c.RefillThreshold, DefaultRefillThreshold)
	setInt(&c.RefillSize, DefaultRefillSize)
	setInt(&c.MaxBatch, DefaultMaxBatch)
	setDur(&c.Wait, DefaultWait)
	setDur(&c.PollInterval, DefaultPollInterval)
	setDur(&c.LockTTL, DefaultLockTTL)
	setDur(&c.ExhaustedTTL, DefaultExhaustedTTL)
}
