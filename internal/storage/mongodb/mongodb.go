// Package mongodb implements storage.Storage on a MongoDB collection.
//
// Documents use the field names the service has always written:
//
//	{ _id: ObjectId, name, gender, age, createdAt, updatedAt }
//
// so an existing studentDB.studentdetails collection can be served as-is.
package mongodb

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/aanand-mishra/studentdb-api/internal/config"
	"github.com/aanand-mishra/studentdb-api/internal/storage"
	"github.com/aanand-mishra/studentdb-api/internal/types"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

const defaultConnectTimeout = 10 * time.Second

// studentDocument is the BSON shape of a student.
type studentDocument struct {
	ID        primitive.ObjectID `bson:"_id,omitempty"`
	Name      string             `bson:"name"`
	Gender    string             `bson:"gender"`
	Age       string             `bson:"age"`
	CreatedAt time.Time          `bson:"createdAt"`
	UpdatedAt time.Time          `bson:"updatedAt"`
}

func (d studentDocument) toStudent() types.Student {
	return types.Student{
		ID:        d.ID.Hex(),
		Name:      d.Name,
		Gender:    d.Gender,
		Age:       d.Age,
		CreatedAt: d.CreatedAt.UTC(),
		UpdatedAt: d.UpdatedAt.UTC(),
	}
}

// Mongo is a storage.Storage backed by one collection.
type Mongo struct {
	client     *mongo.Client
	collection *mongo.Collection

	now func() time.Time
}

// New connects to cfg.URI and verifies the deployment answers a ping
// within cfg.ConnectTimeout. Failure to reach the server wraps
// storage.ErrUnavailable.
func New(ctx context.Context, cfg config.Mongo) (*Mongo, error) {
	if cfg.ConnectTimeout <= 0 {
		cfg.ConnectTimeout = defaultConnectTimeout
	}

	opts := options.Client().
		ApplyURI(cfg.URI).
		SetConnectTimeout(cfg.ConnectTimeout).
		SetServerSelectionTimeout(cfg.ConnectTimeout)

	client, err := mongo.Connect(ctx, opts)
	if err != nil {
		return nil, fmt.Errorf("mongodb.New: connect: %w", errors.Join(storage.ErrUnavailable, err))
	}

	pingCtx, cancel := context.WithTimeout(ctx, cfg.ConnectTimeout)
	defer cancel()
	if err := client.Ping(pingCtx, nil); err != nil {
		_ = client.Disconnect(ctx)
		return nil, fmt.Errorf("mongodb.New: ping %s: %w", cfg.URI, errors.Join(storage.ErrUnavailable, err))
	}

	return &Mongo{
		client:     client,
		collection: client.Database(cfg.Database).Collection(cfg.Collection),
		now:        func() time.Time { return time.Now().UTC().Truncate(time.Millisecond) },
	}, nil
}

// objectID parses a hex id. Anything that is not a valid ObjectID cannot
// name a document, so it is reported as storage.ErrNotFound.
func objectID(id string) (primitive.ObjectID, error) {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return primitive.NilObjectID, storage.ErrNotFound
	}
	return oid, nil
}

// patchUpdate builds the pipeline update for a partial update. Supplied
// values are wrapped in $literal so a leading "$" is never read as a field
// path. updatedAt becomes the later of now and the stored value plus one
// millisecond.
func patchUpdate(patch types.StudentPatch, now time.Time) mongo.Pipeline {
	var set bson.D
	for _, f := range []struct {
		key   string
		value *types.Text
	}{
		{"name", patch.Name},
		{"gender", patch.Gender},
		{"age", patch.Age},
	} {
		if f.value != nil {
			set = append(set, bson.E{Key: f.key, Value: bson.D{{Key: "$literal", Value: f.value.String()}}})
		}
	}
	set = append(set, bson.E{Key: "updatedAt", Value: bson.D{{Key: "$max", Value: bson.A{
		now,
		bson.D{{Key: "$add", Value: bson.A{"$updatedAt", 1}}},
	}}}})

	return mongo.Pipeline{{{Key: "$set", Value: set}}}
}

// CreateStudent inserts a new document with a fresh ObjectID.
func (m *Mongo) CreateStudent(ctx context.Context, in types.StudentInput) (types.Student, error) {
	now := m.now()
	doc := studentDocument{
		ID:        primitive.NewObjectID(),
		Name:      in.Name.String(),
		Gender:    in.Gender.String(),
		Age:       in.Age.String(),
		CreatedAt: now,
		UpdatedAt: now,
	}

	if _, err := m.collection.InsertOne(ctx, doc); err != nil {
		return types.Student{}, fmt.Errorf("CreateStudent: insert: %w", err)
	}

	return doc.toStudent(), nil
}

// GetStudents returns every document in _id order, which is insertion order.
func (m *Mongo) GetStudents(ctx context.Context) ([]types.Student, error) {
	cur, err := m.collection.Find(ctx, bson.M{}, options.Find().SetSort(bson.D{{Key: "_id", Value: 1}}))
	if err != nil {
		return nil, fmt.Errorf("GetStudents: find: %w", err)
	}

	var docs []studentDocument
	if err := cur.All(ctx, &docs); err != nil {
		return nil, fmt.Errorf("GetStudents: decode: %w", err)
	}

	students := make([]types.Student, 0, len(docs))
	for _, doc := range docs {
		students = append(students, doc.toStudent())
	}
	return students, nil
}

// GetStudentByID finds one document by its hex ObjectID.
func (m *Mongo) GetStudentByID(ctx context.Context, id string) (types.Student, error) {
	oid, err := objectID(id)
	if err != nil {
		return types.Student{}, err
	}

	var doc studentDocument
	if err := m.collection.FindOne(ctx, bson.M{"_id": oid}).Decode(&doc); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return types.Student{}, storage.ErrNotFound
		}
		return types.Student{}, fmt.Errorf("GetStudentByID: find: %w", err)
	}

	return doc.toStudent(), nil
}

// UpdateStudentByID applies patch and returns the document after the update.
func (m *Mongo) UpdateStudentByID(ctx context.Context, id string, patch types.StudentPatch) (types.Student, error) {
	oid, err := objectID(id)
	if err != nil {
		return types.Student{}, err
	}

	var doc studentDocument
	err = m.collection.FindOneAndUpdate(ctx,
		bson.M{"_id": oid},
		patchUpdate(patch, m.now()),
		options.FindOneAndUpdate().SetReturnDocument(options.After),
	).Decode(&doc)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return types.Student{}, storage.ErrNotFound
		}
		return types.Student{}, fmt.Errorf("UpdateStudentByID: find and update: %w", err)
	}

	return doc.toStudent(), nil
}

// DeleteStudentByID removes a document and returns it as it was.
func (m *Mongo) DeleteStudentByID(ctx context.Context, id string) (types.Student, error) {
	oid, err := objectID(id)
	if err != nil {
		return types.Student{}, err
	}

	var doc studentDocument
	if err := m.collection.FindOneAndDelete(ctx, bson.M{"_id": oid}).Decode(&doc); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return types.Student{}, storage.ErrNotFound
		}
		return types.Student{}, fmt.Errorf("DeleteStudentByID: find and delete: %w", err)
	}

	return doc.toStudent(), nil
}

// Ping checks that the deployment still answers.
func (m *Mongo) Ping(ctx context.Context) error {
	return m.client.Ping(ctx, nil)
}

// Close disconnects the client.
func (m *Mongo) Close(ctx context.Context) error {
	return m.client.Disconnect(ctx)
}
