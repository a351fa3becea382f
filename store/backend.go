// Package store persists the bot's state documents. A Backend moves
// named JSON documents in and out of durable storage; the typed stores
// on top guard their document with a mutex and write through on every
// mutation.
package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// ErrNotFound means the named document has never been saved (or is
// unreadable and should be treated as absent).
var ErrNotFound = errors.New("store: document not found")

// Backend loads and saves named JSON documents.
type Backend interface {
	Load(name string, v any) error
	Save(name string, v any) error
}

// FileBackend keeps each document as {name}.json under Dir. A corrupt
// file reads as absent so the bot comes back up with defaults instead
// of crash-looping on a truncated write.
type FileBackend struct {
	Dir string
}

func NewFileBackend(dir string) (*FileBackend, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create data dir: %w", err)
	}
	return &FileBackend{Dir: dir}, nil
}

func (f *FileBackend) path(name string) string {
	return filepath.Join(f.Dir, name+".json")
}

func (f *FileBackend) Load(name string, v any) error {
	raw, err := os.ReadFile(f.path(name))
	if os.IsNotExist(err) {
		return ErrNotFound
	}
	if err != nil {
		return fmt.Errorf("read %s: %w", name, err)
	}
	if err := json.Unmarshal(raw, v); err != nil {
		return ErrNotFound
	}
	return nil
}

func (f *FileBackend) Save(name string, v any) error {
	raw, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal %s: %w", name, err)
	}
	tmp := f.path(name) + ".tmp"
	if err := os.WriteFile(tmp, raw, 0o644); err != nil {
		return fmt.Errorf("write %s: %w", name, err)
	}
	if err := os.Rename(tmp, f.path(name)); err != nil {
		return fmt.Errorf("replace %s: %w", name, err)
	}
	return nil
}

// mongoDoc wraps a document for MongoDB. The payload stays JSON so the
// same marshaling rules apply to both backends.
type mongoDoc struct {
	ID   string `bson:"_id"`
	Data string `bson:"data"`
}

// MongoBackend keeps every document in one collection, keyed by name.
type MongoBackend struct {
	Coll    *mongo.Collection
	Timeout time.Duration
}

func NewMongoBackend(coll *mongo.Collection) *MongoBackend {
	return &MongoBackend{Coll: coll, Timeout: 10 * time.Second}
}

func (m *MongoBackend) ctx() (context.Context, context.CancelFunc) {
	return context.WithTimeout(context.Background(), m.Timeout)
}

func (m *MongoBackend) Load(name string, v any) error {
	ctx, cancel := m.ctx()
	defer cancel()

	var doc mongoDoc
	err := m.Coll.FindOne(ctx, bson.M{"_id": name}).Decode(&doc)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return ErrNotFound
	}
	if err != nil {
		return fmt.Errorf("load %s: %w", name, err)
	}
	if err := json.Unmarshal([]byte(doc.Data), v); err != nil {
		return ErrNotFound
	}
	return nil
}

func (m *MongoBackend) Save(name string, v any) error {
	raw, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("marshal %s: %w", name, err)
	}

	ctx, cancel := m.ctx()
	defer cancel()

	opts := options.Replace().SetUpsert(true)
	_, err = m.Coll.ReplaceOne(ctx, bson.M{"_id": name}, mongoDoc{ID: name, Data: string(raw)}, opts)
	if err != nil {
		return fmt.Errorf("save %s: %w", name, err)
	}
	return nil
}
