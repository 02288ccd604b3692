// Package chat owns the message log: posting with server-derived types,
// visibility-filtered listing and owner-scoped deletion.
package chat

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"batepapo/internal/content"
	"batepapo/internal/models"
	"batepapo/internal/storage"

	"github.com/go-playground/validator/v10"
	"github.com/samber/lo"
)

var validate = validator.New()

func init() {
	// "required" accepts whitespace-only strings; the room does not.
	_ = validate.RegisterValidation("notblank", func(fl validator.FieldLevel) bool {
		return strings.TrimSpace(fl.Field().String()) != ""
	})
}

// PostRequest is the client payload for posting a message. Type is optional;
// when present it must name a user message kind, but the stored type is
// always derived from the recipient.
type PostRequest struct {
	To   string `json:"to" validate:"notblank"`
	Text string `json:"text" validate:"notblank"`
	Type string `json:"type" validate:"omitempty,oneof=message private_message"`
}

type Service struct {
	participants storage.ParticipantStore
	messages     storage.MessageStore
	log          *slog.Logger
}

func New(participants storage.ParticipantStore, messages storage.MessageStore, log *slog.Logger) *Service {
	return &Service{participants: participants, messages: messages, log: log}
}

// Post appends one user message. The sender must be registered; to and text
// must be non-blank; the type is message for broadcasts and private_message
// otherwise, regardless of what the client sent.
func (s *Service) Post(ctx context.Context, from string, req PostRequest) (models.Message, error) {
	if _, err := s.participants.FindParticipant(ctx, from); err != nil {
		if errors.Is(err, models.ErrNotFound) {
			return models.Message{}, models.ErrNotRegistered
		}
		return models.Message{}, err
	}

	req.Text = content.Clean(req.Text)
	if problems := validatePost(req); len(problems) > 0 {
		return models.Message{}, &models.ValidationError{Problems: problems}
	}

	typ := models.TypePrivate
	if req.To == models.BroadcastRecipient {
		typ = models.TypeMessage
	}

	m := models.Message{
		From: from,
		To:   req.To,
		Text: req.Text,
		Type: typ,
		Time: time.Now().Format(models.TimeLayout),
	}
	if err := s.messages.InsertMessage(ctx, m); err != nil {
		return models.Message{}, err
	}
	return m, nil
}

// validatePost collects every violated constraint instead of stopping at the
// first, so a payload missing both fields reports both.
func validatePost(req PostRequest) []string {
	err := validate.Struct(req)
	if err == nil {
		return nil
	}

	var fieldErrs validator.ValidationErrors
	if !errors.As(err, &fieldErrs) {
		return []string{err.Error()}
	}
	return lo.Map(fieldErrs, func(fe validator.FieldError, _ int) string {
		return fieldProblem(fe)
	})
}

func fieldProblem(fe validator.FieldError) string {
	field := strings.ToLower(fe.Field())
	switch fe.Tag() {
	case "notblank":
		return fmt.Sprintf("%s must not be blank", field)
	case "oneof":
		return fmt.Sprintf("%s must be one of message, private_message", field)
	default:
		return fmt.Sprintf("%s is invalid", field)
	}
}

// List returns the messages visible to user, oldest first. A positive limit
// selects the newest limit entries of the visible set, still returned in
// chronological order.
func (s *Service) List(ctx context.Context, user string, limit int64) ([]models.Message, error) {
	if _, err := s.participants.FindParticipant(ctx, user); err != nil {
		if errors.Is(err, models.ErrNotFound) {
			return nil, models.ErrNotRegistered
		}
		return nil, err
	}
	return s.messages.MessagesFor(ctx, user, limit)
}

// Delete removes a message by id, only for its sender. There is no admin
// override.
func (s *Service) Delete(ctx context.Context, user, id string) error {
	m, err := s.messages.FindMessage(ctx, id)
	if err != nil {
		return err
	}
	if m.From != user {
		return models.ErrNotOwner
	}
	return s.messages.DeleteMessage(ctx, id)
}
