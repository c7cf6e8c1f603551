package service

import (
	"context"
	"testing"
	"time"

	"tourney-rating/internal/domain"
	"tourney-rating/internal/rating"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeIdleStore struct {
	idle    []domain.Player
	updated map[string]int
}

func (f *fakeIdleStore) IdleSince(context.Context, time.Time) ([]domain.Player, error) {
	return f.idle, nil
}

func (f *fakeIdleStore) SetRating(_ context.Context, playerID string, ratingValue int) error {
	f.updated[playerID] = ratingValue
	return nil
}

func TestDecayDisabledByProfile(t *testing.T) {
	store := &fakeIdleStore{
		idle:    []domain.Player{{PlayerID: "p1", Rating: 1500}},
		updated: make(map[string]int),
	}
	svc := NewDecayService(&fakeConfigSource{cfg: rating.Defaults()}, store, zerolog.Nop())

	decayed, err := svc.Run(context.Background())
	require.NoError(t, err)
	assert.Zero(t, decayed)
	assert.Empty(t, store.updated)
}

func TestDecayPullsIdlePlayersTowardFloor(t *testing.T) {
	cfg := rating.Defaults()
	cfg.RatingDecay = true
	cfg.DecayRate = 0.1
	cfg.MinRating = 500

	store := &fakeIdleStore{
		idle: []domain.Player{
			{PlayerID: "p1", Rating: 1500},
			{PlayerID: "p2", Rating: 500}, // already at the floor
		},
		updated: make(map[string]int),
	}
	svc := NewDecayService(&fakeConfigSource{cfg: cfg}, store, zerolog.Nop())

	decayed, err := svc.Run(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 1, decayed)
	assert.Equal(t, 1400, store.updated["p1"])
	assert.NotContains(t, store.updated, "p2")
}
