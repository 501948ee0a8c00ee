package mongo

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/viant/contentflow/model"
	"github.com/viant/contentflow/service/dao"
	"github.com/viant/contentflow/service/dao/criteria"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// Service stores one document per item. Saves are conditional on the
// previous revision so that two processes sharing a collection cannot
// overwrite each other; a stale write fails with model.ErrConcurrencyConflict.
type Service struct {
	collection *mongo.Collection
}

var _ dao.Service[string, model.ContentItem] = (*Service)(nil)

// Connect opens a client against uri and pings it.
func Connect(ctx context.Context, uri string) (*mongo.Client, error) {
	if uri == "" {
		return nil, fmt.Errorf("mongo connection uri is empty")
	}
	clientOptions := options.Client().ApplyURI(uri).
		SetConnectTimeout(5 * time.Second).
		SetSocketTimeout(10 * time.Second)
	client, err := mongo.Connect(ctx, clientOptions)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to MongoDB: %w", err)
	}
	pingCtx, cancel := context.WithTimeout(ctx, 2*time.Second)
	defer cancel()
	if err = client.Ping(pingCtx, nil); err != nil {
		_ = client.Disconnect(context.Background())
		return nil, fmt.Errorf("failed to ping MongoDB: %w", err)
	}
	return client, nil
}

// New creates a repository over database.collection.
func New(client *mongo.Client, database, collection string) *Service {
	return &Service{collection: client.Database(database).Collection(collection)}
}

// Save inserts the first revision and replaces later ones only when the
// stored revision is the one the caller loaded.
func (s *Service) Save(ctx context.Context, item *model.ContentItem) error {
	if item == nil {
		return dao.ErrNilEntity
	}
	if item.ID == "" {
		return dao.ErrInvalidID
	}
	if item.Revision <= 1 {
		_, err := s.collection.InsertOne(ctx, item)
		if mongo.IsDuplicateKeyError(err) {
			return fmt.Errorf("item %s already exists: %w", item.ID, dao.ErrStale)
		}
		if err != nil {
			return fmt.Errorf("failed to insert item %s: %w", item.ID, err)
		}
		return nil
	}
	result, err := s.collection.ReplaceOne(ctx, revisionFilter(item.ID, item.Revision-1), item)
	if err != nil {
		return fmt.Errorf("failed to replace item %s: %w", item.ID, err)
	}
	if result.MatchedCount == 0 {
		return fmt.Errorf("item %s revision %d: %w", item.ID, item.Revision-1, dao.ErrStale)
	}
	return nil
}

// Load fetches an item by id.
func (s *Service) Load(ctx context.Context, id string) (*model.ContentItem, error) {
	if id == "" {
		return nil, dao.ErrInvalidID
	}
	var item model.ContentItem
	err := s.collection.FindOne(ctx, bson.M{"_id": id}).Decode(&item)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, fmt.Errorf("item %s: %w", id, dao.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load item %s: %w", id, err)
	}
	return &item, nil
}

// Delete removes an item by id.
func (s *Service) Delete(ctx context.Context, id string) error {
	if id == "" {
		return dao.ErrInvalidID
	}
	result, err := s.collection.DeleteOne(ctx, bson.M{"_id": id})
	if err != nil {
		return fmt.Errorf("failed to delete item %s: %w", id, err)
	}
	if result.DeletedCount == 0 {
		return fmt.Errorf("item %s: %w", id, dao.ErrNotFound)
	}
	return nil
}

// List returns items matching parameters, oldest first.
func (s *Service) List(ctx context.Context, parameters ...*dao.Parameter) ([]*model.ContentItem, error) {
	findOptions := options.Find().SetSort(bson.D{{Key: "createdAt", Value: 1}, {Key: "_id", Value: 1}})
	cursor, err := s.collection.Find(ctx, Filter(parameters), findOptions)
	if err != nil {
		return nil, fmt.Errorf("failed to list items: %w", err)
	}
	var items []*model.ContentItem
	if err = cursor.All(ctx, &items); err != nil {
		return nil, fmt.Errorf("failed to decode items: %w", err)
	}
	return items, nil
}

func revisionFilter(id string, revision int64) bson.M {
	return bson.M{"_id": id, "revision": revision}
}

// Filter translates list parameters into a query document.
func Filter(parameters []*dao.Parameter) bson.M {
	filter := bson.M{}
	for _, parameter := range parameters {
		if parameter == nil {
			continue
		}
		values := parameter.Values()
		if len(values) == 0 {
			continue
		}
		switch parameter.Name {
		case criteria.Status, criteria.ClientID, criteria.CampaignID, criteria.AssignedTo, criteria.LinkToken, criteria.LinkID:
			filter[parameter.Name] = bson.M{"$in": values}
		}
	}
	return filter
}
