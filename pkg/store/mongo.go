package store

import (
	"context"
	"errors"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.mongodb.org/mongo-driver/mongo/readpref"

	errs "github.com/matzehuels/layerstack/pkg/errors"
	pkgio "github.com/matzehuels/layerstack/pkg/io"
)

// MongoConfig configures a [MongoStore].
type MongoConfig struct {
	URI        string
	Database   string // default "layerstack"
	Collection string // default "styles"
}

// MongoStore keeps one BSON document per style, keyed by name in _id.
type MongoStore struct {
	client *mongo.Client
	coll   *mongo.Collection
}

// mongoRecord is the persisted shape: the document inlined next to its key.
type mongoRecord struct {
	ID             string `bson:"_id"`
	pkgio.Document `bson:",inline"`
}

// NewMongoStore connects to MongoDB and verifies the connection with a ping
// against the primary.
func NewMongoStore(ctx context.Context, cfg MongoConfig) (*MongoStore, error) {
	if cfg.URI == "" {
		return nil, errs.New(errs.ErrCodeInvalidInput, "mongo store requires a URI")
	}
	if cfg.Database == "" {
		cfg.Database = "layerstack"
	}
	if cfg.Collection == "" {
		cfg.Collection = "styles"
	}

	// Nested paint and layout objects decode as maps rather than bson.D so
	// they serialize back to JSON objects.
	opts := options.Client().
		ApplyURI(cfg.URI).
		SetBSONOptions(&options.BSONOptions{DefaultDocumentM: true}).
		SetConnectTimeout(10 * time.Second)

	client, err := mongo.Connect(ctx, opts)
	if err != nil {
		return nil, unavailable(err, "connect to mongo")
	}
	if err := client.Ping(ctx, readpref.Primary()); err != nil {
		_ = client.Disconnect(context.Background())
		return nil, unavailable(err, "ping mongo")
	}
	return &MongoStore{
		client: client,
		coll:   client.Database(cfg.Database).Collection(cfg.Collection),
	}, nil
}

func (s *MongoStore) Get(ctx context.Context, name string) (*pkgio.Document, error) {
	if err := errs.ValidateDocumentName(name); err != nil {
		return nil, err
	}

	var rec mongoRecord
	err := RetryWithBackoff(ctx, func() error {
		return mongoRetryable(s.coll.FindOne(ctx, bson.M{"_id": name}).Decode(&rec))
	})
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, notFound(name)
	}
	if err != nil {
		return nil, unavailable(err, "get %q", name)
	}
	doc := rec.Document
	return &doc, nil
}

func (s *MongoStore) Put(ctx context.Context, name string, doc *pkgio.Document) error {
	if err := validate(name, doc); err != nil {
		return err
	}
	expected := doc.Revision
	rec := mongoRecord{ID: name, Document: *stamp(name, doc)}

	err := RetryWithBackoff(ctx, func() error {
		return mongoRetryable(s.put(ctx, name, expected, rec))
	})
	if err != nil {
		doc.Revision = expected
		if errs.GetCode(err) == "" {
			err = unavailable(err, "put %q", name)
		}
		return err
	}
	return nil
}

func (s *MongoStore) put(ctx context.Context, name, expected string, rec mongoRecord) error {
	if expected == "" {
		_, err := s.coll.ReplaceOne(ctx, bson.M{"_id": name}, rec, options.Replace().SetUpsert(true))
		return err
	}

	res, err := s.coll.ReplaceOne(ctx, bson.M{"_id": name, "revision": expected}, rec)
	if err != nil {
		return err
	}
	if res.MatchedCount > 0 {
		return nil
	}

	// Either the document does not exist yet or it is at another revision.
	_, err = s.coll.InsertOne(ctx, rec)
	if mongo.IsDuplicateKeyError(err) {
		var cur mongoRecord
		if err := s.coll.FindOne(ctx, bson.M{"_id": name}).Decode(&cur); err != nil {
			return err
		}
		return conflict(name, expected, cur.Revision)
	}
	return err
}

func (s *MongoStore) Delete(ctx context.Context, name string) error {
	if err := errs.ValidateDocumentName(name); err != nil {
		return err
	}
	err := RetryWithBackoff(ctx, func() error {
		_, err := s.coll.DeleteOne(ctx, bson.M{"_id": name})
		return mongoRetryable(err)
	})
	if err != nil {
		return unavailable(err, "delete %q", name)
	}
	return nil
}

func (s *MongoStore) List(ctx context.Context) ([]string, error) {
	var recs []struct {
		ID string `bson:"_id"`
	}
	err := RetryWithBackoff(ctx, func() error {
		opts := options.Find().SetProjection(bson.M{"_id": 1}).SetSort(bson.M{"_id": 1})
		cur, err := s.coll.Find(ctx, bson.M{}, opts)
		if err != nil {
			return mongoRetryable(err)
		}
		return mongoRetryable(cur.All(ctx, &recs))
	})
	if err != nil {
		return nil, unavailable(err, "list documents")
	}
	names := make([]string, len(recs))
	for i, r := range recs {
		names[i] = r.ID
	}
	return sortedNames(names), nil
}

// Close disconnects the client.
func (s *MongoStore) Close() error {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	return s.client.Disconnect(ctx)
}

// mongoRetryable marks network errors and server timeouts as retryable.
func mongoRetryable(err error) error {
	if err != nil && (mongo.IsNetworkError(err) || mongo.IsTimeout(err)) {
		return Retryable(err)
	}
	return err
}

var _ Store = (*MongoStore)(nil)
