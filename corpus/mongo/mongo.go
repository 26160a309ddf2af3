// Package mongo loads documents from a MongoDB collection so an existing
// document store can back the question-answering index without a filesystem
// export step.
package mongo

import (
	"context"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/sweetpotato0/docqa/corpus"
)

// Config holds MongoDB source settings.
type Config struct {
	URI        string
	Database   string
	Collection string
	Timeout    time.Duration
}

// Option configures the source.
type Option func(*Config)

// WithDatabase sets the database name.
func WithDatabase(name string) Option {
	return func(c *Config) {
		if name != "" {
			c.Database = name
		}
	}
}

// WithCollection sets the collection name.
func WithCollection(name string) Option {
	return func(c *Config) {
		if name != "" {
			c.Collection = name
		}
	}
}

// WithTimeout sets the per-operation timeout.
func WithTimeout(d time.Duration) Option {
	return func(c *Config) {
		if d > 0 {
			c.Timeout = d
		}
	}
}

// Source reads documents from a MongoDB collection.
type Source struct {
	client *mongo.Client
	coll   *mongo.Collection
	cfg    Config
}

type record struct {
	ID       string         `bson:"_id"`
	Title    string         `bson:"title,omitempty"`
	Content  string         `bson:"content"`
	Metadata map[string]any `bson:"metadata,omitempty"`
}

// New connects to MongoDB and returns a document source.
func New(ctx context.Context, uri string, opts ...Option) (*Source, error) {
	cfg := Config{
		URI:        uri,
		Database:   "docqa",
		Collection: "documents",
		Timeout:    10 * time.Second,
	}
	for _, opt := range opts {
		opt(&cfg)
	}

	connectCtx, cancel := context.WithTimeout(ctx, cfg.Timeout)
	defer cancel()

	client, err := mongo.Connect(connectCtx, options.Client().ApplyURI(cfg.URI))
	if err != nil {
		return nil, fmt.Errorf("connect mongodb: %w", err)
	}
	if err := client.Ping(connectCtx, nil); err != nil {
		return nil, fmt.Errorf("ping mongodb: %w", err)
	}

	return &Source{
		client: client,
		coll:   client.Database(cfg.Database).Collection(cfg.Collection),
		cfg:    cfg,
	}, nil
}

// Load returns every document in the collection.
func (s *Source) Load(ctx context.Context) ([]corpus.Document, error) {
	opCtx, cancel := context.WithTimeout(ctx, s.cfg.Timeout)
	defer cancel()

	cur, err := s.coll.Find(opCtx, bson.M{})
	if err != nil {
		return nil, fmt.Errorf("find documents: %w", err)
	}
	defer cur.Close(opCtx)

	var docs []corpus.Document
	for cur.Next(opCtx) {
		var rec record
		if err := cur.Decode(&rec); err != nil {
			return nil, fmt.Errorf("decode document: %w", err)
		}
		docs = append(docs, corpus.Document{
			ID:       rec.ID,
			Title:    rec.Title,
			Content:  rec.Content,
			Metadata: rec.Metadata,
		})
	}
	if err := cur.Err(); err != nil {
		return nil, fmt.Errorf("iterate documents: %w", err)
	}
	return docs, nil
}

// Store upserts a document by ID.
func (s *Source) Store(ctx context.Context, doc corpus.Document) error {
	opCtx, cancel := context.WithTimeout(ctx, s.cfg.Timeout)
	defer cancel()

	corpus.EnsureDocumentID(&doc)
	rec := record{ID: doc.ID, Title: doc.Title, Content: doc.Content, Metadata: doc.Metadata}
	_, err := s.coll.ReplaceOne(opCtx, bson.M{"_id": doc.ID}, rec, options.Replace().SetUpsert(true))
	if err != nil {
		return fmt.Errorf("store document %s: %w", doc.ID, err)
	}
	return nil
}

// Close disconnects the underlying client.
func (s *Source) Close(ctx context.Context) error {
	return s.client.Disconnect(ctx)
}
