// Package mongo keeps each entry collection in a MongoDB collection of the
// same name, one BSON document per entry with a string _id.
package mongo

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.mongodb.org/mongo-driver/mongo/readpref"

	"financas/internal/core"
	"financas/internal/docstore"
)

var _ docstore.Store = (*Store)(nil)

var mongoOps = map[core.Op]string{
	core.OpGTE: "$gte",
	core.OpLTE: "$lte",
	core.OpEQ:  "$eq",
}

type Store struct {
	client *mongo.Client
	db     *mongo.Database
}

// Connect dials uri and verifies the primary is reachable.
func Connect(ctx context.Context, uri, database string) (*Store, error) {
	opts := options.Client().
		ApplyURI(uri).
		SetBSONOptions(&options.BSONOptions{DefaultDocumentM: true})

	client, err := mongo.Connect(ctx, opts)
	if err != nil {
		return nil, fmt.Errorf("connect mongo: %w", err)
	}

	pingCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()
	if err := client.Ping(pingCtx, readpref.Primary()); err != nil {
		_ = client.Disconnect(context.Background())
		return nil, fmt.Errorf("ping mongo: %w", err)
	}
	return &Store{client: client, db: client.Database(database)}, nil
}

func (s *Store) Close(ctx context.Context) error {
	return s.client.Disconnect(ctx)
}

func (s *Store) Ping(ctx context.Context) error {
	return s.client.Ping(ctx, readpref.Primary())
}

func (s *Store) Get(ctx context.Context, collection string, filters ...core.Filter) ([]core.Document, error) {
	clauses := make(bson.A, 0, len(filters))
	for _, f := range filters {
		op, ok := mongoOps[f.Op]
		if !ok {
			return nil, fmt.Errorf("filter on %s: %w", f.Field, core.ErrUnsupportedOp)
		}
		// Comparison operators only match values of the same BSON type.
		clauses = append(clauses, bson.M{f.Field: bson.M{op: f.Value}})
	}
	query := bson.M{}
	if len(clauses) > 0 {
		query["$and"] = clauses
	}

	cur, err := s.db.Collection(collection).Find(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("find %s: %w", collection, err)
	}
	var raw []bson.M
	if err := cur.All(ctx, &raw); err != nil {
		return nil, fmt.Errorf("decode %s: %w", collection, err)
	}

	docs := make([]core.Document, 0, len(raw))
	for _, m := range raw {
		docs = append(docs, toDocument(m))
	}
	return docs, nil
}

func (s *Store) Set(ctx context.Context, collection, id string, fields core.Fields) (string, error) {
	coll := s.db.Collection(collection)
	body := bson.M(fields.Clone())

	if id == "" {
		body["_id"] = uuid.NewString()
		if _, err := coll.InsertOne(ctx, body); err != nil {
			return "", fmt.Errorf("insert into %s: %w", collection, err)
		}
		return body["_id"].(string), nil
	}

	body["_id"] = id
	_, err := coll.ReplaceOne(ctx, bson.M{"_id": id}, body, options.Replace().SetUpsert(true))
	if err != nil {
		return "", fmt.Errorf("replace %s/%s: %w", collection, id, err)
	}
	return id, nil
}

func (s *Store) Update(ctx context.Context, collection, id string, partial core.Fields) (core.Fields, error) {
	coll := s.db.Collection(collection)
	set := bson.M(partial.Clone())

	var res *mongo.SingleResult
	if len(set) == 0 {
		res = coll.FindOne(ctx, bson.M{"_id": id})
	} else {
		res = coll.FindOneAndUpdate(ctx, bson.M{"_id": id}, bson.M{"$set": set},
			options.FindOneAndUpdate().SetReturnDocument(options.After))
	}

	var m bson.M
	if err := res.Decode(&m); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, fmt.Errorf("update %s/%s: %w", collection, id, core.ErrNotFound)
		}
		return nil, fmt.Errorf("update %s/%s: %w", collection, id, err)
	}
	return toDocument(m).Fields, nil
}

func (s *Store) Delete(ctx context.Context, collection, id string) error {
	res, err := s.db.Collection(collection).DeleteOne(ctx, bson.M{"_id": id})
	if err != nil {
		return fmt.Errorf("delete %s/%s: %w", collection, id, err)
	}
	if res.DeletedCount == 0 {
		return fmt.Errorf("delete %s/%s: %w", collection, id, core.ErrNotFound)
	}
	return nil
}

func toDocument(m bson.M) core.Document {
	doc := core.Document{Fields: make(core.Fields, len(m))}
	for k, v := range m {
		if k == "_id" {
			doc.ID = fmt.Sprint(v)
			continue
		}
		doc.Fields[k] = plain(v)
	}
	return doc
}

// plain unwraps the driver's named map and slice types.
func plain(v any) any {
	switch t := v.(type) {
	case bson.M:
		out := make(map[string]any, len(t))
		for k, inner := range t {
			out[k] = plain(inner)
		}
		return out
	case bson.A:
		out := make([]any, len(t))
		for i, inner := range t {
			out[i] = plain(inner)
		}
		return out
	default:
		return v
	}
}
