package mongo

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/microloans/loan-system/internal/core/domain"
)

const installmentsCollection = "installments"

type InstallmentRepository struct {
	col *mongo.Collection
}

func NewInstallmentRepository(db *mongo.Database) *InstallmentRepository {
	return &InstallmentRepository{col: db.Collection(installmentsCollection)}
}

type mongoInstallment struct {
	ID            primitive.ObjectID `bson:"_id,omitempty"`
	LoanID        string             `bson:"loan_id"`
	UserID        string             `bson:"user_id"`
	Amount        float64            `bson:"amount"`
	DueDate       time.Time          `bson:"due_date"`
	PaymentStatus string             `bson:"payment_status"`
}

func (mi mongoInstallment) toDomain() *domain.Installment {
	return &domain.Installment{
		ID:            mi.ID.Hex(),
		LoanID:        mi.LoanID,
		UserID:        mi.UserID,
		Amount:        mi.Amount,
		DueDate:       mi.DueDate.UTC(),
		PaymentStatus: domain.InstallmentStatus(mi.PaymentStatus),
	}
}

// CreateMany persists a freshly generated payment schedule in one bulk
// insert.
func (r *InstallmentRepository) CreateMany(ctx context.Context, installments []*domain.Installment) error {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	docs := make([]interface{}, len(installments))
	for i, inst := range installments {
		docs[i] = mongoInstallment{
			LoanID:        inst.LoanID,
			UserID:        inst.UserID,
			Amount:        inst.Amount,
			DueDate:       inst.DueDate.UTC(),
			PaymentStatus: string(inst.PaymentStatus),
		}
	}

	if _, err := r.col.InsertMany(ctx, docs); err != nil {
		return fmt.Errorf("insert installments: %w", err)
	}
	return nil
}

// FindByID retrieves an installment scoped to its owner.
func (r *InstallmentRepository) FindByID(ctx context.Context, id string, userID string) (*domain.Installment, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return nil, domain.ErrInstallmentNotFound
	}

	filter := bson.M{"_id": oid}
	if userID != "" {
		filter["user_id"] = userID
	}

	var mi mongoInstallment
	if err := r.col.FindOne(ctx, filter).Decode(&mi); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, domain.ErrInstallmentNotFound
		}
		return nil, fmt.Errorf("find installment: %w", err)
	}
	return mi.toDomain(), nil
}

// MarkPaid flips a pending installment to paid. The status filter makes the
// update a compare-and-set: a second writer matches nothing and gets
// ErrInstallmentNotFound.
func (r *InstallmentRepository) MarkPaid(ctx context.Context, id string) error {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return domain.ErrInstallmentNotFound
	}

	filter := bson.M{
		"_id":            oid,
		"payment_status": string(domain.InstallmentPending),
	}
	update := bson.M{"$set": bson.M{"payment_status": string(domain.InstallmentPaid)}}

	res, err := r.col.UpdateOne(ctx, filter, update)
	if err != nil {
		return fmt.Errorf("mark installment paid: %w", err)
	}
	if res.MatchedCount == 0 {
		return domain.ErrInstallmentNotFound
	}
	return nil
}

// ListByLoan returns every installment of a loan, ordered by due date.
func (r *InstallmentRepository) ListByLoan(ctx context.Context, loanID string) ([]*domain.Installment, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	opts := options.Find().SetSort(bson.D{{Key: "due_date", Value: 1}})
	cur, err := r.col.Find(ctx, bson.M{"loan_id": loanID}, opts)
	if err != nil {
		return nil, fmt.Errorf("list installments: %w", err)
	}
	defer cur.Close(ctx)

	var installments []*domain.Installment
	for cur.Next(ctx) {
		var mi mongoInstallment
		if err := cur.Decode(&mi); err != nil {
			return nil, fmt.Errorf("decode installment: %w", err)
		}
		installments = append(installments, mi.toDomain())
	}
	if err := cur.Err(); err != nil {
		return nil, fmt.Errorf("list installments: %w", err)
	}
	return installments, nil
}

// DeleteByLoan removes every installment of a loan.
func (r *InstallmentRepository) DeleteByLoan(ctx context.Context, loanID string) error {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	if _, err := r.col.DeleteMany(ctx, bson.M{"loan_id": loanID}); err != nil {
		return fmt.Errorf("delete installments: %w", err)
	}
	return nil
}

// NextPending returns the caller's pending installment with the earliest
// due date after the given instant.
func (r *InstallmentRepository) NextPending(ctx context.Context, userID string, after time.Time) (*domain.Installment, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	filter := bson.M{
		"user_id":        userID,
		"payment_status": string(domain.InstallmentPending),
		"due_date":       bson.M{"$gt": after.UTC()},
	}
	opts := options.FindOne().SetSort(bson.D{{Key: "due_date", Value: 1}})

	var mi mongoInstallment
	if err := r.col.FindOne(ctx, filter, opts).Decode(&mi); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, domain.ErrInstallmentNotFound
		}
		return nil, fmt.Errorf("next pending installment: %w", err)
	}
	return mi.toDomain(), nil
}

// EnsureIndexes creates necessary indexes on the installments collection.
func (r *InstallmentRepository) EnsureIndexes(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, 30*time.Second)
	defer cancel()

	indexes := []mongo.IndexModel{
		{Keys: bson.D{{Key: "loan_id", Value: 1}}},
		{Keys: bson.D{{Key: "user_id", Value: 1}, {Key: "payment_status", Value: 1}, {Key: "due_date", Value: 1}}},
	}

	_, err := r.col.Indexes().CreateMany(ctx, indexes)
	return err
}
