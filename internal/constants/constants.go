package constants

import "time"

const (
	HistoryWindowSize     = 20
	ApplyWorkers          = 8
	DefaultStartingRating = 1000
	DecayIdleThreshold    = 30 * 24 * time.Hour
)

const (
	UpstreamAPITimeout = 10 * time.Second
	DatabaseTimeout    = 5 * time.Second
	ApplyTimeout       = 60 * time.Second
	RequestTimeout     = 30 * time.Second
)

const (
	DBMaxOpenConns    = 100
	DBMaxIdleConns    = 10
	DBConnMaxLifetime = 1 * time.Hour
	DBMaxIdleTime     = 10 * time.Minute
	DBBatchSize       = 100
)

const (
	ShutdownTimeout = 5 * time.Second
)
