package domain

import (
	"time"
)

type Player struct {
	PlayerID    string
	Name        string
	Rating      int
	EventsRated int
	LastEventAt time.Time
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

type Tournament struct {
	TournamentID string
	Name         string
	EventType    string // "turbo", "deepstack", "freeroll", "guarantee", "satellite", "knockout" or ""
	BuyIn        int
	PrizePool    int
	FieldSize    int
	Payouts      []int  // prize per paid place, best first
	Status       string // "scheduled", "running", "finalized", "applied"
	StartedAt    time.Time
	FinalizedAt  time.Time
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// TournamentResult is one participant's finalized outcome. Position is
// trusted as-is from the tournament system; the engine never re-derives
// it from other stored data.
type TournamentResult struct {
	TournamentID string
	PlayerID     string
	Position     int
	Rebuys       int
	Addons       int
	PrizeAmount  int
	LateEntry    bool
	Duration     time.Duration
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

type RatingHistory struct {
	ID           string // nanoid
	PlayerID     string
	TournamentID string
	Position     int
	RatingDelta  int
	RatingAfter  int
	Confidence   float64
	OpponentMean int
	Date         time.Time
	CreatedAt    time.Time
}

type RatingProfile struct {
	ProfileID  string
	Name       string
	ConfigJSON string
	Active     bool
	CreatedAt  time.Time
	UpdatedAt  time.Time
}
