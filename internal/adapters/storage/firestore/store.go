package firestore

import (
	"context"
	"fmt"
	"time"

	"cloud.google.com/go/firestore"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"

	"github.com/PabloGalante/mindlens/internal/domain"
)

const defaultCollection = "blobs"

type Store struct {
	client     *firestore.Client
	collection string
	now        func() time.Time
}

var _ domain.BlobStore = (*Store)(nil)

// NewStore creates a Firestore blob store.
// Uses the project passed (MINDLENS_GCP_PROJECT).
func NewStore(ctx context.Context, projectID string) (*Store, error) {
	if projectID == "" {
		return nil, fmt.Errorf("projectID is required for Firestore store")
	}

	client, err := firestore.NewClient(ctx, projectID)
	if err != nil {
		return nil, fmt.Errorf("creating firestore client: %w", err)
	}

	return &Store{client: client, collection: defaultCollection, now: time.Now}, nil
}

func (s *Store) Close() error {
	return s.client.Close()
}

// ─────────────────────────────────────────
// Helpers
// ─────────────────────────────────────────

func (s *Store) blobDoc(key string) *firestore.DocumentRef {
	return s.client.Collection(s.collection).Doc(key)
}

type blobDoc struct {
	Value     string    `firestore:"value"`
	UpdatedAt time.Time `firestore:"updated_at"`
}

// ─────────────────────────────────────────
// BlobStore implementation
// ─────────────────────────────────────────

func (s *Store) Get(ctx context.Context, key string) (string, bool, error) {
	snap, err := s.blobDoc(key).Get(ctx)
	if err != nil {
		if status.Code(err) == codes.NotFound {
			return "", false, nil
		}
		return "", false, fmt.Errorf("firestore Get: %w", err)
	}

	var doc blobDoc
	if err := snap.DataTo(&doc); err != nil {
		return "", false, fmt.Errorf("firestore Get decode: %w", err)
	}
	return doc.Value, true, nil
}

func (s *Store) Set(ctx context.Context, key, value string) error {
	doc := blobDoc{
		Value:     value,
		UpdatedAt: s.now(),
	}
	if _, err := s.blobDoc(key).Set(ctx, doc); err != nil {
		return fmt.Errorf("firestore Set: %w", err)
	}
	return nil
}
