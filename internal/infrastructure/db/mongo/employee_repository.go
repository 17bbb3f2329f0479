package mongo

import (
	"context"
	"errors"
	"fmt"
	"math"
	"regexp"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/employee-portal/employee-api/internal/core/domain"
	"github.com/employee-portal/employee-api/internal/core/ports"
)

type EmployeeRepository struct {
	col *mongo.Collection
}

func NewEmployeeRepository(db *mongo.Database) *EmployeeRepository {
	return &EmployeeRepository{col: db.Collection(collectionEmployees)}
}

type mongoEmployee struct {
	ID         primitive.ObjectID  `bson:"_id,omitempty"`
	Name       string              `bson:"name"`
	Email      string              `bson:"email"`
	Department string              `bson:"department"`
	UserID     *primitive.ObjectID `bson:"userId,omitempty"`
	CreatedAt  time.Time           `bson:"createdAt"`
}

func (m mongoEmployee) toDomain() *domain.Employee {
	e := &domain.Employee{
		ID:         m.ID.Hex(),
		Name:       m.Name,
		Email:      m.Email,
		Department: m.Department,
		CreatedAt:  m.CreatedAt.UTC(),
	}
	if m.UserID != nil {
		e.OwnerID = m.UserID.Hex()
	}
	return e
}

// Create inserts a new employee document.
func (r *EmployeeRepository) Create(ctx context.Context, e *domain.Employee) (*domain.Employee, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	doc := mongoEmployee{
		ID:         primitive.NewObjectID(),
		Name:       e.Name,
		Email:      e.Email,
		Department: e.Department,
		CreatedAt:  e.CreatedAt,
	}
	if e.OwnerID != "" {
		oid, err := parseID(e.OwnerID)
		if err != nil {
			return nil, domain.ErrOwnerNotFound
		}
		doc.UserID = &oid
	}

	if _, err := r.col.InsertOne(ctx, doc); err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return nil, domain.ErrEmailExists
		}
		return nil, fmt.Errorf("insert employee: %w", err)
	}
	return doc.toDomain(), nil
}

// FindByID retrieves an employee; malformed ids are reported as not found.
func (r *EmployeeRepository) FindByID(ctx context.Context, id string) (*domain.Employee, error) {
	oid, err := parseID(id)
	if err != nil {
		return nil, domain.ErrEmployeeNotFound
	}
	return r.findOne(ctx, bson.M{"_id": oid}, nil)
}

// FindByOwner retrieves the oldest employee linked to ownerID.
func (r *EmployeeRepository) FindByOwner(ctx context.Context, ownerID string) (*domain.Employee, error) {
	oid, err := parseID(ownerID)
	if err != nil {
		return nil, domain.ErrEmployeeNotFound
	}
	return r.findOne(ctx, bson.M{"userId": oid}, options.FindOne().SetSort(bson.D{{Key: "_id", Value: 1}}))
}

// List returns a page of employees matching filter and the total count.
func (r *EmployeeRepository) List(ctx context.Context, f ports.EmployeeListFilter) ([]*domain.Employee, int64, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	filter := bson.M{}
	if f.Search != "" {
		pattern := primitive.Regex{Pattern: regexp.QuoteMeta(f.Search), Options: "i"}
		filter["$or"] = bson.A{
			bson.M{"name": pattern},
			bson.M{"email": pattern},
		}
	}
	if f.OwnerID != "" {
		oid, err := parseID(f.OwnerID)
		if err != nil {
			// No document can reference a malformed id.
			return []*domain.Employee{}, 0, nil
		}
		filter["userId"] = oid
	}

	page := f.Page
	if page < 1 {
		page = 1
	}
	opts := options.Find().SetSort(bson.D{{Key: "createdAt", Value: -1}, {Key: "_id", Value: -1}})
	if f.Limit > 0 {
		opts.SetSkip(skipFor(page, f.Limit)).SetLimit(int64(f.Limit))
	}

	cur, err := r.col.Find(ctx, filter, opts)
	if err != nil {
		return nil, 0, fmt.Errorf("find employees: %w", err)
	}
	var docs []mongoEmployee
	if err := cur.All(ctx, &docs); err != nil {
		return nil, 0, fmt.Errorf("decode employees: %w", err)
	}

	total, err := r.col.CountDocuments(ctx, filter)
	if err != nil {
		return nil, 0, fmt.Errorf("count employees: %w", err)
	}

	out := make([]*domain.Employee, 0, len(docs))
	for _, d := range docs {
		out = append(out, d.toDomain())
	}
	return out, total, nil
}

// Update applies patch atomically and returns the stored document.
func (r *EmployeeRepository) Update(ctx context.Context, id string, patch domain.EmployeePatch) (*domain.Employee, error) {
	oid, err := parseID(id)
	if err != nil {
		return nil, domain.ErrEmployeeNotFound
	}

	set := bson.M{}
	unset := bson.M{}
	if patch.Name != nil {
		set["name"] = *patch.Name
	}
	if patch.Email != nil {
		set["email"] = *patch.Email
	}
	if patch.Department != nil {
		set["department"] = *patch.Department
	}
	if patch.OwnerID != nil {
		if *patch.OwnerID == "" {
			unset["userId"] = ""
		} else {
			owner, err := parseID(*patch.OwnerID)
			if err != nil {
				return nil, domain.ErrOwnerNotFound
			}
			set["userId"] = owner
		}
	}

	update := bson.M{}
	if len(set) > 0 {
		update["$set"] = set
	}
	if len(unset) > 0 {
		update["$unset"] = unset
	}
	if len(update) == 0 {
		return r.FindByID(ctx, id)
	}

	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	var doc mongoEmployee
	err = r.col.FindOneAndUpdate(ctx, bson.M{"_id": oid}, update,
		options.FindOneAndUpdate().SetReturnDocument(options.After),
	).Decode(&doc)
	if err != nil {
		switch {
		case errors.Is(err, mongo.ErrNoDocuments):
			return nil, domain.ErrEmployeeNotFound
		case mongo.IsDuplicateKeyError(err):
			return nil, domain.ErrEmailExists
		}
		return nil, fmt.Errorf("update employee: %w", err)
	}
	return doc.toDomain(), nil
}

func (r *EmployeeRepository) Delete(ctx context.Context, id string) error {
	oid, err := parseID(id)
	if err != nil {
		return domain.ErrEmployeeNotFound
	}

	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	res, err := r.col.DeleteOne(ctx, bson.M{"_id": oid})
	if err != nil {
		return fmt.Errorf("delete employee: %w", err)
	}
	if res.DeletedCount == 0 {
		return domain.ErrEmployeeNotFound
	}
	return nil
}

func (r *EmployeeRepository) findOne(ctx context.Context, filter bson.M, opts *options.FindOneOptions) (*domain.Employee, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	if opts == nil {
		opts = options.FindOne()
	}

	var doc mongoEmployee
	if err := r.col.FindOne(ctx, filter, opts).Decode(&doc); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, domain.ErrEmployeeNotFound
		}
		return nil, fmt.Errorf("find employee: %w", err)
	}
	return doc.toDomain(), nil
}

// skipFor returns the offset of page, saturating instead of overflowing.
func skipFor(page, limit int) int64 {
	n := int64(page - 1)
	if n > math.MaxInt64/int64(limit) {
		return math.MaxInt64
	}
	return n * int64(limit)
}
