package storage

import (
	"context"
	"fmt"
	"net/url"
	"time"

	"cloud.google.com/go/firestore"
	"go.opentelemetry.io/contrib/instrumentation/google.golang.org/grpc/otelgrpc"
	"google.golang.org/api/option"
	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
)

type firestoreDocument struct {
	Value     []byte    `firestore:"value"`
	UpdatedAt time.Time `firestore:"updated_at"`
}

// FirestoreStorage keeps one document per key in the kv_entries collection.
type FirestoreStorage struct {
	collection *firestore.CollectionRef
}

func NewFirestoreStorage(client *firestore.Client) *FirestoreStorage {
	return &FirestoreStorage{collection: client.Collection("kv_entries")}
}

// ConnectFirestore returns a traced client. FIRESTORE_EMULATOR_HOST is
// honoured like in every firestore client.
func ConnectFirestore(ctx context.Context, projectID string, opts ...option.ClientOption) (*firestore.Client, error) {
	opts = append(opts, option.WithGRPCDialOption(grpc.WithStatsHandler(otelgrpc.NewClientHandler())))
	client, err := firestore.NewClient(ctx, projectID, opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to Firestore: %w", err)
	}
	return client, nil
}

// docID makes key usable as a document id; ids must not contain '/'.
func docID(key string) string {
	return url.PathEscape(key)
}

func (f *FirestoreStorage) Get(ctx context.Context, key string) ([]byte, error) {
	snap, err := f.collection.Doc(docID(key)).Get(ctx)
	if status.Code(err) == codes.NotFound {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get %s: %w", key, err)
	}

	var doc firestoreDocument
	if err := snap.DataTo(&doc); err != nil {
		return nil, fmt.Errorf("failed to decode %s: %w", key, err)
	}
	return doc.Value, nil
}

func (f *FirestoreStorage) Set(ctx context.Context, key string, value []byte) error {
	doc := firestoreDocument{Value: value, UpdatedAt: time.Now()}
	if _, err := f.collection.Doc(docID(key)).Set(ctx, doc); err != nil {
		return fmt.Errorf("failed to set %s: %w", key, err)
	}
	return nil
}

func (f *FirestoreStorage) Delete(ctx context.Context, key string) error {
	if _, err := f.collection.Doc(docID(key)).Delete(ctx); err != nil && status.Code(err) != codes.NotFound {
		return fmt.Errorf("failed to delete %s: %w", key, err)
	}
	return nil
}
