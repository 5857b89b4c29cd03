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
	"github.com/microloans/loan-system/internal/core/ports"
)

const loansCollection = "loans"

type LoanRepository struct {
	col *mongo.Collection
}

func NewLoanRepository(db *mongo.Database) *LoanRepository {
	return &LoanRepository{col: db.Collection(loansCollection)}
}

type mongoLoan struct {
	ID        primitive.ObjectID `bson:"_id,omitempty"`
	Amount    int64              `bson:"amount"`
	Terms     int                `bson:"terms"`
	StartDate time.Time          `bson:"start_date"`
	Status    string             `bson:"status"`
	UserID    string             `bson:"user_id"`
}

func (ml mongoLoan) toDomain() *domain.Loan {
	return &domain.Loan{
		ID:        ml.ID.Hex(),
		Amount:    ml.Amount,
		Terms:     ml.Terms,
		StartDate: ml.StartDate.UTC(),
		Status:    domain.LoanStatus(ml.Status),
		UserID:    ml.UserID,
	}
}

// Create inserts a new loan document and returns it with its assigned ID.
func (r *LoanRepository) Create(ctx context.Context, l *domain.Loan) (*domain.Loan, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	doc := mongoLoan{
		Amount:    l.Amount,
		Terms:     l.Terms,
		StartDate: l.StartDate.UTC(),
		Status:    string(l.Status),
		UserID:    l.UserID,
	}

	res, err := r.col.InsertOne(ctx, doc)
	if err != nil {
		return nil, fmt.Errorf("insert loan: %w", err)
	}

	oid, ok := res.InsertedID.(primitive.ObjectID)
	if !ok {
		return nil, fmt.Errorf("insert loan: unexpected id type %T", res.InsertedID)
	}
	doc.ID = oid
	return doc.toDomain(), nil
}

// FindByID retrieves a loan by id. When userID is non-empty, an additional
// filter by user_id is applied (for RBAC).
func (r *LoanRepository) FindByID(ctx context.Context, id string, userID string) (*domain.Loan, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return nil, domain.ErrLoanNotFound
	}

	filter := bson.M{"_id": oid}
	if userID != "" {
		filter["user_id"] = userID
	}

	var ml mongoLoan
	if err := r.col.FindOne(ctx, filter).Decode(&ml); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, domain.ErrLoanNotFound
		}
		return nil, fmt.Errorf("find loan: %w", err)
	}
	return ml.toDomain(), nil
}

// UpdateStatus sets the loan status. With a non-empty from status the update
// is a compare-and-set: it matches only while the stored status still equals
// from, and reports ErrLoanAlreadyDecided when another writer got there
// first.
func (r *LoanRepository) UpdateStatus(ctx context.Context, id string, from, to domain.LoanStatus) error {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return domain.ErrLoanNotFound
	}

	filter := bson.M{"_id": oid}
	if from != "" {
		filter["status"] = string(from)
	}

	res, err := r.col.UpdateOne(ctx, filter, bson.M{"$set": bson.M{"status": string(to)}})
	if err != nil {
		return fmt.Errorf("update loan status: %w", err)
	}
	if res.MatchedCount == 0 {
		if from != "" {
			return domain.ErrLoanAlreadyDecided
		}
		return domain.ErrLoanNotFound
	}
	return nil
}

// List returns a page of loans matching filter and the total count.
func (r *LoanRepository) List(ctx context.Context, filter ports.ListLoansFilter) ([]*domain.Loan, int64, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	query := bson.M{}
	if filter.UserID != "" {
		query["user_id"] = filter.UserID
	}
	if filter.Status != "" {
		query["status"] = filter.Status
	}

	total, err := r.col.CountDocuments(ctx, query)
	if err != nil {
		return nil, 0, fmt.Errorf("count loans: %w", err)
	}

	opts := options.Find().
		SetSort(bson.D{{Key: "start_date", Value: -1}}).
		SetSkip(int64((filter.Page - 1) * filter.Limit)).
		SetLimit(int64(filter.Limit))

	cur, err := r.col.Find(ctx, query, opts)
	if err != nil {
		return nil, 0, fmt.Errorf("list loans: %w", err)
	}
	defer cur.Close(ctx)

	var loans []*domain.Loan
	for cur.Next(ctx) {
		var ml mongoLoan
		if err := cur.Decode(&ml); err != nil {
			return nil, 0, fmt.Errorf("decode loan: %w", err)
		}
		loans = append(loans, ml.toDomain())
	}
	if err := cur.Err(); err != nil {
		return nil, 0, fmt.Errorf("list loans: %w", err)
	}
	return loans, total, nil
}

// EnsureIndexes creates necessary indexes on the loans collection.
func (r *LoanRepository) EnsureIndexes(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, 30*time.Second)
	defer cancel()

	indexes := []mongo.IndexModel{
		{Keys: bson.D{{Key: "user_id", Value: 1}}},
		{Keys: bson.D{{Key: "status", Value: 1}}},
	}

	_, err := r.col.Indexes().CreateMany(ctx, indexes)
	return err
}
