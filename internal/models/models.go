package models

import (
	"errors"
	"strings"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

var (
	ErrNotFound      = errors.New("not found")
	ErrNameTaken     = errors.New("participant name already taken")
	ErrNotRegistered = errors.New("participant not registered")
	ErrNotOwner      = errors.New("message belongs to another participant")
)

// ValidationError reports every violated field constraint of a payload,
// not just the first one found.
type ValidationError struct {
	Problems []string
}

func (e *ValidationError) Error() string {
	return strings.Join(e.Problems, "; ")
}

// BroadcastRecipient is the reserved "to" value addressing every participant.
const BroadcastRecipient = "Todos"

// TimeLayout is the wall-clock format stamped on every stored message.
const TimeLayout = "15:04:05"

type MessageType string

const (
	TypeMessage MessageType = "message"
	TypePrivate MessageType = "private_message"
	TypeStatus  MessageType = "status"
)

// Participant is a registered chat member. LastStatus holds the Unix
// millisecond timestamp of the last heartbeat; registration counts as one.
type Participant struct {
	ID         primitive.ObjectID `bson:"_id,omitempty" json:"_id,omitempty"`
	Name       string             `bson:"name" json:"name"`
	LastStatus int64              `bson:"lastStatus" json:"lastStatus"`
}

// Message is a single entry of the chat log. From is a soft reference to a
// participant name; evicting the sender does not remove their history.
type Message struct {
	ID   primitive.ObjectID `bson:"_id,omitempty" json:"_id,omitempty"`
	From string             `bson:"from" json:"from"`
	To   string             `bson:"to" json:"to"`
	Text string             `bson:"text" json:"text"`
	Type MessageType        `bson:"type" json:"type"`
	Time string             `bson:"time" json:"time"`
}

// StatusNotice builds a server-authored join/leave announcement from the
// given participant, addressed to everyone and stamped with the current time.
func StatusNotice(name, text string) Message {
	return Message{
		From: name,
		To:   BroadcastRecipient,
		Text: text,
		Type: TypeStatus,
		Time: time.Now().Format(TimeLayout),
	}
}
