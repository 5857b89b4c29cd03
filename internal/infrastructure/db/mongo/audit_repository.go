package mongo

import (
	"context"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"

	"github.com/microloans/loan-system/internal/core/domain"
	"github.com/microloans/loan-system/internal/core/ports"
)

// AuditRepository implements ports.AuditRepository using MongoDB.
type AuditRepository struct {
	db *mongo.Database
}

// NewAuditRepository creates a new AuditRepository.
func NewAuditRepository(db *mongo.Database) ports.AuditRepository {
	return &AuditRepository{db: db}
}

// InsertEvent persists a lifecycle event to the payment_events audit
// collection.
func (r *AuditRepository) InsertEvent(ctx context.Context, event *domain.PaymentEvent) error {
	doc := bson.M{
		"kind":         string(event.Kind),
		"loan_id":      event.LoanID,
		"user_id":      event.UserID,
		"amount":       event.Amount,
		"timestamp":    event.Timestamp.UTC(),
		"processed_at": time.Now().UTC(),
	}
	if event.InstallmentID != "" {
		doc["installment_id"] = event.InstallmentID
	}

	_, err := r.db.Collection("payment_events").InsertOne(ctx, doc)
	return err
}
