package storage

import (
	"context"
	"errors"
	"fmt"

	"batepapo/internal/models"

	"github.com/samber/lo"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

const (
	collParticipants = "participants"
	collMessages     = "messages"
)

// ParticipantStore is the slice of the document store the participant
// registry and the presence sweeper depend on.
type ParticipantStore interface {
	InsertParticipant(ctx context.Context, p models.Participant) error
	FindParticipant(ctx context.Context, name string) (models.Participant, error)
	ListParticipants(ctx context.Context) ([]models.Participant, error)
	SetLastStatus(ctx context.Context, name string, ts int64) error
	DeleteParticipants(ctx context.Context, names []string) error
}

// MessageStore is the slice of the document store the message log depends on.
type MessageStore interface {
	InsertMessage(ctx context.Context, m models.Message) error
	// MessagesFor returns the messages visible to user in chronological
	// order: broadcast chat, messages user sent, messages addressed to user
	// and messages addressed to everyone. A positive limit keeps only the
	// newest limit entries of that set.
	MessagesFor(ctx context.Context, user string, limit int64) ([]models.Message, error)
	FindMessage(ctx context.Context, id string) (models.Message, error)
	DeleteMessage(ctx context.Context, id string) error
}

type MongoStorage struct {
	client       *mongo.Client
	participants *mongo.Collection
	messages     *mongo.Collection
}

// NewMongoStorage connects to the document store, verifies the connection
// and ensures the unique index backing the one-participant-per-name rule.
func NewMongoStorage(ctx context.Context, uri, dbName string) (*MongoStorage, error) {
	client, err := mongo.Connect(ctx, options.Client().ApplyURI(uri))
	if err != nil {
		return nil, fmt.Errorf("failed to connect to mongo: %w", err)
	}
	if err := client.Ping(ctx, nil); err != nil {
		_ = client.Disconnect(ctx)
		return nil, fmt.Errorf("mongo unreachable: %w", err)
	}

	db := client.Database(dbName)
	s := &MongoStorage{
		client:       client,
		participants: db.Collection(collParticipants),
		messages:     db.Collection(collMessages),
	}

	_, err = s.participants.Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys:    bson.D{{Key: "name", Value: 1}},
		Options: options.Index().SetUnique(true),
	})
	if err != nil {
		_ = client.Disconnect(ctx)
		return nil, fmt.Errorf("failed to ensure participant name index: %w", err)
	}

	return s, nil
}

func (s *MongoStorage) Close(ctx context.Context) error {
	return s.client.Disconnect(ctx)
}

func (s *MongoStorage) InsertParticipant(ctx context.Context, p models.Participant) error {
	err := s.participants.FindOne(ctx, bson.M{"name": p.Name}).Err()
	if err == nil {
		return models.ErrNameTaken
	}
	if !errors.Is(err, mongo.ErrNoDocuments) {
		return err
	}

	_, err = s.participants.InsertOne(ctx, p)
	if mongo.IsDuplicateKeyError(err) {
		// Lost the race against a concurrent registration; the index has
		// the final word.
		return models.ErrNameTaken
	}
	return err
}

func (s *MongoStorage) FindParticipant(ctx context.Context, name string) (models.Participant, error) {
	var p models.Participant
	err := s.participants.FindOne(ctx, bson.M{"name": name}).Decode(&p)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return models.Participant{}, models.ErrNotFound
	}
	return p, err
}

func (s *MongoStorage) ListParticipants(ctx context.Context) ([]models.Participant, error) {
	cursor, err := s.participants.Find(ctx, bson.M{})
	if err != nil {
		return nil, err
	}

	participants := []models.Participant{}
	if err := cursor.All(ctx, &participants); err != nil {
		return nil, err
	}
	return participants, nil
}

func (s *MongoStorage) SetLastStatus(ctx context.Context, name string, ts int64) error {
	res, err := s.participants.UpdateOne(ctx,
		bson.M{"name": name},
		bson.M{"$set": bson.M{"lastStatus": ts}},
	)
	if err != nil {
		return err
	}
	if res.MatchedCount == 0 {
		return models.ErrNotFound
	}
	return nil
}

func (s *MongoStorage) DeleteParticipants(ctx context.Context, names []string) error {
	if len(names) == 0 {
		return nil
	}
	_, err := s.participants.DeleteMany(ctx, bson.M{"name": bson.M{"$in": names}})
	return err
}

func (s *MongoStorage) InsertMessage(ctx context.Context, m models.Message) error {
	_, err := s.messages.InsertOne(ctx, m)
	return err
}

func (s *MongoStorage) MessagesFor(ctx context.Context, user string, limit int64) ([]models.Message, error) {
	filter := bson.M{"$or": bson.A{
		bson.M{"type": models.TypeMessage},
		bson.M{"from": user},
		bson.M{"to": user},
		bson.M{"to": models.BroadcastRecipient},
	}}

	// Insertion order is the _id order. With a limit the newest entries are
	// fetched first and the page is flipped back to chronological order.
	opts := options.Find().SetSort(bson.D{{Key: "_id", Value: 1}})
	if limit > 0 {
		opts = options.Find().SetSort(bson.D{{Key: "_id", Value: -1}}).SetLimit(limit)
	}

	cursor, err := s.messages.Find(ctx, filter, opts)
	if err != nil {
		return nil, err
	}

	messages := []models.Message{}
	if err := cursor.All(ctx, &messages); err != nil {
		return nil, err
	}
	if limit > 0 {
		messages = lo.Reverse(messages)
	}
	return messages, nil
}

func (s *MongoStorage) FindMessage(ctx context.Context, id string) (models.Message, error) {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return models.Message{}, models.ErrNotFound
	}

	var m models.Message
	err = s.messages.FindOne(ctx, bson.M{"_id": oid}).Decode(&m)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return models.Message{}, models.ErrNotFound
	}
	return m, err
}

func (s *MongoStorage) DeleteMessage(ctx context.Context, id string) error {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return models.ErrNotFound
	}

	res, err := s.messages.DeleteOne(ctx, bson.M{"_id": oid})
	if err != nil {
		return err
	}
	if res.DeletedCount == 0 {
		return models.ErrNotFound
	}
	return nil
}
