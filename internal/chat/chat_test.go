package chat

import (
	"context"
	"log/slog"
	"testing"
	"time"

	"batepapo/internal/models"
	"batepapo/internal/storage/storagetest"

	"github.com/samber/lo"
	"github.com/stretchr/testify/require"
)

func newTestService(t *testing.T, names ...string) (*Service, *storagetest.Store) {
	t.Helper()
	store := storagetest.New()
	for _, name := range names {
		err := store.InsertParticipant(context.Background(), models.Participant{
			Name:       name,
			LastStatus: time.Now().UnixMilli(),
		})
		require.NoError(t, err)
	}
	return New(store, store, slog.New(slog.DiscardHandler)), store
}

func texts(msgs []models.Message) []string {
	return lo.Map(msgs, func(m models.Message, _ int) string { return m.Text })
}

func TestPost_BroadcastDerivesMessageType(t *testing.T) {
	req := require.New(t)
	svc, _ := newTestService(t, "Alice")

	m, err := svc.Post(context.Background(), "Alice", PostRequest{To: models.BroadcastRecipient, Text: "hi"})
	req.NoError(err)
	req.Equal(models.TypeMessage, m.Type)
	req.Equal("Alice", m.From)
	req.NotEmpty(m.Time)
}

func TestPost_DirectDerivesPrivateType(t *testing.T) {
	req := require.New(t)
	svc, _ := newTestService(t, "Alice", "Bob")

	m, err := svc.Post(context.Background(), "Alice", PostRequest{To: "Bob", Text: "hey"})
	req.NoError(err)
	req.Equal(models.TypePrivate, m.Type)
}

func TestPost_ClientTypeIsOverridden(t *testing.T) {
	req := require.New(t)
	svc, _ := newTestService(t, "Alice", "Bob")

	// The client claims broadcast; the recipient says otherwise.
	m, err := svc.Post(context.Background(), "Alice", PostRequest{To: "Bob", Text: "hey", Type: "message"})
	req.NoError(err)
	req.Equal(models.TypePrivate, m.Type)
}

func TestPost_UnregisteredSender(t *testing.T) {
	req := require.New(t)
	svc, _ := newTestService(t)

	_, err := svc.Post(context.Background(), "Eve", PostRequest{To: models.BroadcastRecipient, Text: "hi"})
	req.ErrorIs(err, models.ErrNotRegistered)
}

func TestPost_CollectsEveryViolation(t *testing.T) {
	req := require.New(t)
	svc, _ := newTestService(t, "Alice")

	_, err := svc.Post(context.Background(), "Alice", PostRequest{To: "", Text: "   "})

	var validationErr *models.ValidationError
	req.ErrorAs(err, &validationErr)
	req.Len(validationErr.Problems, 2)
	req.Contains(validationErr.Problems, "to must not be blank")
	req.Contains(validationErr.Problems, "text must not be blank")
}

func TestPost_RejectsStatusType(t *testing.T) {
	req := require.New(t)
	svc, _ := newTestService(t, "Alice")

	// status is server-authored only.
	_, err := svc.Post(context.Background(), "Alice", PostRequest{To: models.BroadcastRecipient, Text: "hi", Type: "status"})

	var validationErr *models.ValidationError
	req.ErrorAs(err, &validationErr)
	req.Contains(validationErr.Problems, "type must be one of message, private_message")
}

func TestPost_StripsMarkupFromText(t *testing.T) {
	req := require.New(t)
	svc, _ := newTestService(t, "Alice")

	m, err := svc.Post(context.Background(), "Alice", PostRequest{To: models.BroadcastRecipient, Text: "<script>x</script> hello "})
	req.NoError(err)
	req.Equal("hello", m.Text)
}

func TestList_Visibility(t *testing.T) {
	req := require.New(t)
	svc, _ := newTestService(t, "Alice", "Bob", "Carol")
	ctx := context.Background()

	_, err := svc.Post(ctx, "Alice", PostRequest{To: models.BroadcastRecipient, Text: "to everyone"})
	req.NoError(err)
	_, err = svc.Post(ctx, "Alice", PostRequest{To: "Bob", Text: "just for bob"})
	req.NoError(err)

	aliceView, err := svc.List(ctx, "Alice", 0)
	req.NoError(err)
	req.Contains(texts(aliceView), "just for bob", "sender sees their own private message")

	bobView, err := svc.List(ctx, "Bob", 0)
	req.NoError(err)
	req.Contains(texts(bobView), "to everyone")
	req.Contains(texts(bobView), "just for bob")

	carolView, err := svc.List(ctx, "Carol", 0)
	req.NoError(err)
	req.Contains(texts(carolView), "to everyone")
	req.NotContains(texts(carolView), "just for bob", "third parties never see private messages")
}

func TestList_UnregisteredRequester(t *testing.T) {
	req := require.New(t)
	svc, _ := newTestService(t, "Alice")

	_, err := svc.List(context.Background(), "Eve", 0)
	req.ErrorIs(err, models.ErrNotRegistered)
}

func TestList_LimitKeepsNewestInChronologicalOrder(t *testing.T) {
	req := require.New(t)
	svc, _ := newTestService(t, "Alice")
	ctx := context.Background()

	for _, text := range []string{"m1", "m2", "m3", "m4", "m5"} {
		_, err := svc.Post(ctx, "Alice", PostRequest{To: models.BroadcastRecipient, Text: text})
		req.NoError(err)
	}

	window, err := svc.List(ctx, "Alice", 3)
	req.NoError(err)
	req.Equal([]string{"m3", "m4", "m5"}, texts(window))

	full, err := svc.List(ctx, "Alice", 0)
	req.NoError(err)
	req.Equal([]string{"m1", "m2", "m3", "m4", "m5"}, texts(full))
}

func TestDelete_OwnerOnly(t *testing.T) {
	req := require.New(t)
	svc, store := newTestService(t, "Alice", "Bob")
	ctx := context.Background()

	_, err := svc.Post(ctx, "Alice", PostRequest{To: models.BroadcastRecipient, Text: "hi"})
	req.NoError(err)
	id := store.Messages()[0].ID.Hex()

	req.ErrorIs(svc.Delete(ctx, "Bob", id), models.ErrNotOwner)
	_, err = store.FindMessage(ctx, id)
	req.NoError(err, "message survives a non-owner delete")

	req.NoError(svc.Delete(ctx, "Alice", id))
	_, err = store.FindMessage(ctx, id)
	req.ErrorIs(err, models.ErrNotFound)
}

func TestDelete_UnknownMessage(t *testing.T) {
	req := require.New(t)
	svc, _ := newTestService(t, "Alice")

	req.ErrorIs(svc.Delete(context.Background(), "Alice", "64f000000000000000000000"), models.ErrNotFound)
}
