package mongo

import (
	"context"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/Rifaque/ZeroLink/internal/domain"
)

const messageCollection = "messages"

// MessageRepository handles database operations for the message log.
type MessageRepository struct {
	DB *mongo.Database
}

// NewMessageRepository creates a new MessageRepository.
func NewMessageRepository(db *mongo.Database) *MessageRepository {
	return &MessageRepository{DB: db}
}

// InsertMessage appends a message to the log. The timestamp is assigned here,
// at persistence time; it is the only ordering signal for history replay.
func (r *MessageRepository) InsertMessage(ctx context.Context, message *domain.Message) error {
	if message.Timestamp.IsZero() {
		message.Timestamp = time.Now()
	}
	res, err := r.DB.Collection(messageCollection).InsertOne(ctx, message)
	if err != nil {
		return err
	}
	if oid, ok := res.InsertedID.(primitive.ObjectID); ok {
		message.ID = oid
	}
	return nil
}

// FindGlobalMessages retrieves every message addressed to the global room,
// ascending by timestamp.
func (r *MessageRepository) FindGlobalMessages(ctx context.Context) ([]*domain.Message, error) {
	filter := bson.M{"receivername": domain.GlobalRoomID}
	return r.find(ctx, filter)
}

// FindThreadMessages retrieves the full bidirectional thread between a and b,
// ascending by timestamp.
func (r *MessageRepository) FindThreadMessages(ctx context.Context, a, b string) ([]*domain.Message, error) {
	return r.find(ctx, threadFilter(a, b))
}

// LatestGlobalMessage returns the most recent global message, or nil if the
// room is empty.
func (r *MessageRepository) LatestGlobalMessage(ctx context.Context) (*domain.Message, error) {
	return r.findLatest(ctx, bson.M{"receivername": domain.GlobalRoomID})
}

// LatestThreadMessage returns the most recent message in either direction
// between a and b, or nil if they have never talked.
func (r *MessageRepository) LatestThreadMessage(ctx context.Context, a, b string) (*domain.Message, error) {
	return r.findLatest(ctx, threadFilter(a, b))
}

// CountUndeliveredGlobal counts undelivered messages addressed to the global
// room.
func (r *MessageRepository) CountUndeliveredGlobal(ctx context.Context) (int64, error) {
	filter := bson.M{"receivername": domain.GlobalRoomID, "delivered": false}
	return r.DB.Collection(messageCollection).CountDocuments(ctx, filter)
}

// CountUndeliveredFrom counts undelivered messages sent to uid by from.
func (r *MessageRepository) CountUndeliveredFrom(ctx context.Context, from, to string) (int64, error) {
	filter := bson.M{"username": from, "receivername": to, "delivered": false}
	return r.DB.Collection(messageCollection).CountDocuments(ctx, filter)
}

// ListAllMessages retrieves the entire log, ascending by timestamp.
func (r *MessageRepository) ListAllMessages(ctx context.Context) ([]*domain.Message, error) {
	return r.find(ctx, bson.M{})
}

func (r *MessageRepository) find(ctx context.Context, filter bson.M) ([]*domain.Message, error) {
	opts := options.Find().SetSort(bson.D{{Key: "timestamp", Value: 1}})
	cursor, err := r.DB.Collection(messageCollection).Find(ctx, filter, opts)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	var messages []*domain.Message
	if err = cursor.All(ctx, &messages); err != nil {
		return nil, err
	}
	return messages, nil
}

func (r *MessageRepository) findLatest(ctx context.Context, filter bson.M) (*domain.Message, error) {
	opts := options.FindOne().SetSort(bson.D{{Key: "timestamp", Value: -1}})
	message := &domain.Message{}
	err := r.DB.Collection(messageCollection).FindOne(ctx, filter, opts).Decode(message)
	if err != nil {
		if err == mongo.ErrNoDocuments {
			return nil, nil // Empty room is not an application error
		}
		return nil, err
	}
	return message, nil
}

func threadFilter(a, b string) bson.M {
	return bson.M{"$or": bson.A{
		bson.M{"username": a, "receivername": b},
		bson.M{"username": b, "receivername": a},
	}}
}
