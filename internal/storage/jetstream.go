package storage

import (
	"bytes"
	"context"
	"fmt"
	"strings"

	"github.com/nats-io/nats.go"
	"github.com/nats-io/nats.go/jetstream"
)

// JetStreamStore implements ObjectStore on top of the NATS JetStream object
// store. Objects are keyed by the storage key and overwritten on collision.
type JetStreamStore struct {
	conn          *nats.Conn
	js            jetstream.JetStream
	store         jetstream.ObjectStore
	bucket        string
	publicBaseURL string
}

// NewJetStreamStore connects to NATS and prepares a JetStream context. Init
// must be called before the store is used.
func NewJetStreamStore(natsURL, bucket, publicBaseURL string) (*JetStreamStore, error) {
	conn, err := nats.Connect(natsURL)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to NATS: %w", err)
	}

	js, err := jetstream.New(conn)
	if err != nil {
		conn.Close()
		return nil, fmt.Errorf("failed to create JetStream context: %w", err)
	}

	return &JetStreamStore{
		conn:          conn,
		js:            js,
		bucket:        bucket,
		publicBaseURL: publicBaseURL,
	}, nil
}

// Init binds the bucket, creating it if it does not exist yet.
func (s *JetStreamStore) Init(ctx context.Context) error {
	store, err := s.js.ObjectStore(ctx, s.bucket)
	if err == nil {
		s.store = store
		return nil
	}

	store, err = s.js.CreateObjectStore(ctx, jetstream.ObjectStoreConfig{
		Bucket:      s.bucket,
		Description: "Factory catalog image storage",
	})
	if err != nil {
		return fmt.Errorf("failed to create object store bucket: %w", err)
	}

	s.store = store
	return nil
}

// Upload stores the object and returns its public URL.
func (s *JetStreamStore) Upload(ctx context.Context, key string, data []byte, contentType string) (string, error) {
	meta := jetstream.ObjectMeta{
		Name: key,
		Headers: nats.Header{
			"Content-Type": []string{contentType},
		},
	}

	if _, err := s.store.Put(ctx, meta, bytes.NewReader(data)); err != nil {
		return "", fmt.Errorf("failed to store object: %w", err)
	}

	return s.PublicURL(key), nil
}

// PublicURL returns the externally visible URL for a stored key.
func (s *JetStreamStore) PublicURL(key string) string {
	base := strings.TrimSuffix(s.publicBaseURL, "/")
	return fmt.Sprintf("%s/%s/%s", base, s.bucket, key)
}

// Close tears down the NATS connection.
func (s *JetStreamStore) Close() {
	s.conn.Close()
}
