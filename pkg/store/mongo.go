package store

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/matzehuels/budgetbubbles/pkg/graph"
)

// MongoCollection names the collection holding saved states.
const MongoCollection = "saved_states"

// MongoStore keeps states in MongoDB. The document is stored as its JSON
// text so that field order and number formatting survive unchanged.
type MongoStore struct {
	client *mongo.Client
	coll   *mongo.Collection
	now    func() time.Time
}

type mongoRecord struct {
	ID        string    `bson:"_id"`
	VisID     string    `bson:"vis_id"`
	CreatedAt time.Time `bson:"created_at"`
	Size      int       `bson:"size"`
	State     string    `bson:"state,omitempty"`
}

// ConnectMongo connects to uri and ensures the listing index exists.
func ConnectMongo(ctx context.Context, uri, database string) (*MongoStore, error) {
	if database == "" {
		database = "budgetbubbles"
	}
	client, err := mongo.Connect(ctx, options.Client().ApplyURI(uri))
	if err != nil {
		return nil, fmt.Errorf("connect mongo: %w", err)
	}
	if err := client.Ping(ctx, nil); err != nil {
		_ = client.Disconnect(ctx)
		return nil, fmt.Errorf("ping mongo: %w", err)
	}
	coll := client.Database(database).Collection(MongoCollection)
	_, err = coll.Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys: bson.D{{Key: "vis_id", Value: 1}, {Key: "created_at", Value: -1}},
	})
	if err != nil {
		_ = client.Disconnect(ctx)
		return nil, fmt.Errorf("create index: %w", err)
	}
	return &MongoStore{client: client, coll: coll, now: time.Now}, nil
}

func (s *MongoStore) Save(ctx context.Context, visID string, doc graph.StateDocument) (string, error) {
	if err := validateIDs(visID); err != nil {
		return "", err
	}
	now := s.now()
	data, err := encode(doc, now)
	if err != nil {
		return "", err
	}
	rec := mongoRecord{
		ID:        newStateID(),
		VisID:     visID,
		CreatedAt: now.UTC().Truncate(time.Millisecond),
		Size:      len(data),
		State:     string(data),
	}
	if _, err := s.coll.InsertOne(ctx, rec); err != nil {
		return "", fmt.Errorf("insert state: %w", err)
	}
	return rec.ID, nil
}

func (s *MongoStore) Load(ctx context.Context, visID, stateID string) (graph.StateDocument, error) {
	if err := validateIDs(visID, stateID); err != nil {
		return graph.StateDocument{}, err
	}
	var rec mongoRecord
	err := s.coll.FindOne(ctx, bson.M{"_id": stateID, "vis_id": visID}).Decode(&rec)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return graph.StateDocument{}, notFound(visID, stateID)
	}
	if err != nil {
		return graph.StateDocument{}, fmt.Errorf("find state: %w", err)
	}
	return decode([]byte(rec.State))
}

func (s *MongoStore) List(ctx context.Context, visID string) ([]Summary, error) {
	if err := validateIDs(visID); err != nil {
		return nil, err
	}
	opts := options.Find().
		SetSort(bson.D{{Key: "created_at", Value: -1}, {Key: "_id", Value: 1}}).
		SetProjection(bson.M{"state": 0})
	cur, err := s.coll.Find(ctx, bson.M{"vis_id": visID}, opts)
	if err != nil {
		return nil, fmt.Errorf("find states: %w", err)
	}
	var recs []mongoRecord
	if err := cur.All(ctx, &recs); err != nil {
		return nil, fmt.Errorf("decode states: %w", err)
	}
	out := make([]Summary, len(recs))
	for i, r := range recs {
		out[i] = Summary{ID: r.ID, VisualizationID: r.VisID, CreatedAt: r.CreatedAt, Size: r.Size}
	}
	return out, nil
}

func (s *MongoStore) Close() error {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	return s.client.Disconnect(ctx)
}

var _ Store = (*MongoStore)(nil)
