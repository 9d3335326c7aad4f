package repository

import (
	"context"
	"errors"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"notes-server/models"
)

// ErrNoteNotFound covers both a missing document and an id that cannot
// refer to one. Ownership mismatches are mapped onto it one layer up so a
// caller never learns whether a foreign note exists.
var ErrNoteNotFound = errors.New("note not found")

type NoteRepositoryInterface interface {
	InsertNote(ctx context.Context, note models.Note) (string, error)
	FindNoteByID(ctx context.Context, id string) (models.Note, error)
	FindNotesByUserID(ctx context.Context, userID string) ([]models.Note, error)
	UpdateNoteFields(ctx context.Context, id string, fields map[string]interface{}) error
	DeleteNoteByID(ctx context.Context, id string) error
}

type NoteRepository struct {
	collection *mongo.Collection
}

func NewNoteRepository(collection *mongo.Collection) *NoteRepository {
	return &NoteRepository{collection: collection}
}

func (r *NoteRepository) InsertNote(ctx context.Context, note models.Note) (string, error) {
	note.ID = primitive.NewObjectID()
	if _, err := r.collection.InsertOne(ctx, note); err != nil {
		return "", err
	}
	return note.ID.Hex(), nil
}

func (r *NoteRepository) FindNoteByID(ctx context.Context, id string) (models.Note, error) {
	var note models.Note
	objectID, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return note, ErrNoteNotFound
	}
	err = r.collection.FindOne(ctx, bson.M{"_id": objectID}).Decode(&note)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return note, ErrNoteNotFound
	}
	return note, err
}

// FindNotesByUserID fetches every note of one owner. Search and ordering
// happen in memory on top of this, so the cost of a listing is
// O(owner's total notes); pushing the compound sort into Mongo would
// require extra index provisioning and is deliberately not done here.
func (r *NoteRepository) FindNotesByUserID(ctx context.Context, userID string) ([]models.Note, error) {
	cursor, err := r.collection.Find(ctx, bson.M{"user_id": userID})
	if err != nil {
		return nil, err
	}
	var notes []models.Note
	if err = cursor.All(ctx, &notes); err != nil {
		return nil, err
	}
	return notes, nil
}

func (r *NoteRepository) UpdateNoteFields(ctx context.Context, id string, fields map[string]interface{}) error {
	objectID, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return ErrNoteNotFound
	}
	filter := bson.M{"_id": objectID}
	update := bson.M{"$set": bson.M(fields)}
	res, err := r.collection.UpdateOne(ctx, filter, update, options.Update().SetUpsert(false))
	if err != nil {
		return err
	}
	if res.MatchedCount == 0 {
		return ErrNoteNotFound
	}
	return nil
}

func (r *NoteRepository) DeleteNoteByID(ctx context.Context, id string) error {
	objectID, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return ErrNoteNotFound
	}
	res, err := r.collection.DeleteOne(ctx, bson.M{"_id": objectID})
	if err != nil {
		return err
	}
	if res.DeletedCount == 0 {
		return ErrNoteNotFound
	}
	return nil
}
