package domain

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Media kinds accepted on sendMedia events.
const (
	MediaImage = "image"
	MediaVideo = "video"
)

// Message is a single chat message, stored in MongoDB. Immutable once
// persisted except for the Delivered flag. The JSON field names are the wire
// contract with the client and must not change.
type Message struct {
	ID           primitive.ObjectID `bson:"_id,omitempty" json:"_id"`
	Username     string             `bson:"username" json:"username"`
	Receivername string             `bson:"receivername" json:"receivername"`
	Text         string             `bson:"text,omitempty" json:"text,omitempty"`
	MediaURL     string             `bson:"mediaUrl,omitempty" json:"mediaUrl,omitempty"`
	MediaType    string             `bson:"mediaType,omitempty" json:"mediaType,omitempty"`
	Timestamp    time.Time          `bson:"timestamp" json:"timestamp"`
	Delivered    bool               `bson:"delivered" json:"delivered"`
}
