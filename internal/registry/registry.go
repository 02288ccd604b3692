// Package registry tracks who is in the room: registration, listing and
// heartbeat liveness updates.
package registry

import (
	"context"
	"log/slog"
	"time"

	"batepapo/internal/content"
	"batepapo/internal/models"
	"batepapo/internal/storage"
)

const arrivalText = "entra na sala..."

// heartbeatTimeout bounds the detached lastStatus write; the HTTP response
// has already been sent by the time it applies.
const heartbeatTimeout = 5 * time.Second

type Registry struct {
	participants storage.ParticipantStore
	messages     storage.MessageStore
	log          *slog.Logger
}

func New(participants storage.ParticipantStore, messages storage.MessageStore, log *slog.Logger) *Registry {
	return &Registry{participants: participants, messages: messages, log: log}
}

// Register inserts a new participant and announces the arrival to the room.
// The two writes are not atomic: a failure after the participant insert
// leaves a member without a join notice, which is accepted.
func (r *Registry) Register(ctx context.Context, name string) error {
	name = content.Clean(name)
	if name == "" {
		return &models.ValidationError{Problems: []string{"name must not be blank"}}
	}

	p := models.Participant{Name: name, LastStatus: time.Now().UnixMilli()}
	if err := r.participants.InsertParticipant(ctx, p); err != nil {
		return err
	}

	if err := r.messages.InsertMessage(ctx, models.StatusNotice(name, arrivalText)); err != nil {
		r.log.Error("failed to record arrival notice", "participant", name, "err", err)
		return err
	}
	return nil
}

// List returns every registered participant. Order follows the store's
// natural collection order and is not contractual.
func (r *Registry) List(ctx context.Context) ([]models.Participant, error) {
	return r.participants.ListParticipants(ctx)
}

// Heartbeat checks that the participant exists and schedules the lastStatus
// update without waiting for it. The caller's success response must not
// depend on the write; a failed write is logged and otherwise swallowed.
func (r *Registry) Heartbeat(ctx context.Context, name string) error {
	if _, err := r.participants.FindParticipant(ctx, name); err != nil {
		return err
	}

	now := time.Now().UnixMilli()
	go func() {
		writeCtx, cancel := context.WithTimeout(context.Background(), heartbeatTimeout)
		defer cancel()

		if err := r.participants.SetLastStatus(writeCtx, name, now); err != nil {
			r.log.Error("heartbeat write failed", "participant", name, "err", err)
		}
	}()
	return nil
}
