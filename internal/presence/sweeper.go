// Package presence evicts participants whose heartbeat has gone stale and
// announces their departure to the room.
package presence

import (
	"context"
	"log/slog"
	"time"

	"batepapo/internal/models"
	"batepapo/internal/storage"

	"github.com/samber/lo"
)

const departureText = "sai da sala..."

type Sweeper struct {
	participants storage.ParticipantStore
	messages     storage.MessageStore
	log          *slog.Logger
	interval     time.Duration
	staleAfter   time.Duration
}

func NewSweeper(
	participants storage.ParticipantStore,
	messages storage.MessageStore,
	log *slog.Logger,
	interval time.Duration,
	staleAfter time.Duration,
) *Sweeper {
	return &Sweeper{
		participants: participants,
		messages:     messages,
		log:          log,
		interval:     interval,
		staleAfter:   staleAfter,
	}
}

// Run sweeps on a fixed interval until the context is canceled. A failed
// cycle never stops the loop.
func (s *Sweeper) Run(ctx context.Context) error {
	s.log.Info("starting presence sweeper", "interval", s.interval, "staleAfter", s.staleAfter)
	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
			s.Sweep(ctx)
		}
	}
}

// Sweep runs one eviction cycle. Eviction is decided on a single snapshot of
// the participant set: a heartbeat landing between the read and the delete
// does not rescue its participant. Registrations and heartbeats are not
// blocked while this runs; liveness here is polled, not exact.
func (s *Sweeper) Sweep(ctx context.Context) {
	cutoff := time.Now().Add(-s.staleAfter).UnixMilli()

	participants, err := s.participants.ListParticipants(ctx)
	if err != nil {
		s.log.Error("sweep failed to list participants", "err", err)
		return
	}

	stale := lo.Filter(participants, func(p models.Participant, _ int) bool {
		return p.LastStatus < cutoff
	})
	if len(stale) == 0 {
		return
	}

	names := lo.Map(stale, func(p models.Participant, _ int) string { return p.Name })
	if err := s.participants.DeleteParticipants(ctx, names); err != nil {
		s.log.Error("sweep failed to evict participants", "names", names, "err", err)
		return
	}
	s.log.Info("evicted stale participants", "names", names)

	for _, p := range stale {
		if err := s.messages.InsertMessage(ctx, models.StatusNotice(p.Name, departureText)); err != nil {
			s.log.Error("failed to record departure notice", "participant", p.Name, "err", err)
		}
	}
}
