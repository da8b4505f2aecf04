package recordsRepo

import (
	"context"
	"errors"

	"stayhub/database"
	"stayhub/models"

	"go.mongodb.org/mongo-driver/mongo"
)

// ErrNotFound means no booking record matches the given id.
var ErrNotFound = errors.New("booking record not found")

// BookingRecordRepository archives the immutable outcome of booking
// transactions and answers lookups by booking id.
type BookingRecordRepository interface {
	Create(ctx context.Context, record models.BookingRecord) (string, error)
	GetByID(ctx context.Context, id string) (*models.BookingRecord, error)
	GetByGuestEmail(ctx context.Context, email string) ([]models.BookingRecord, error)
	DeleteByID(ctx context.Context, id string) error
}

type mongoRecordRepo struct {
	coll *mongo.Collection
}

// NewMongoRecordRepo returns a new BookingRecordRepository instance using MongoDB.
func NewMongoRecordRepo() BookingRecordRepository {
	db := database.MongoClient.Database("stayhub")
	return &mongoRecordRepo{
		coll: db.Collection("booking_records"),
	}
}
