package docstore

import (
	"cloud.google.com/go/firestore"
	"context"
	"github.com/pkg/errors"
	"google.golang.org/api/option"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
)

// FirestoreStore talks to Cloud Firestore, the hosted store the document layout comes from.
type FirestoreStore struct {
	client *firestore.Client
}

func NewFirestoreStore(ctx context.Context, projectID string, credentialsFile string) (*FirestoreStore, error) {
	var opts []option.ClientOption
	if credentialsFile != "" {
		opts = append(opts, option.WithCredentialsFile(credentialsFile))
	}

	client, err := firestore.NewClient(ctx, projectID, opts...)
	if err != nil {
		return nil, errors.Wrap(err, "failed to create firestore client")
	}
	return &FirestoreStore{client: client}, nil
}

func (s *FirestoreStore) Get(ctx context.Context, path Path) (*Snapshot, error) {
	ref, err := s.doc(path)
	if err != nil {
		return nil, err
	}

	snap, err := ref.Get(ctx)
	if err != nil {
		if status.Code(err) == codes.NotFound {
			return nil, errors.Wrap(ErrNotFound, path.String())
		}
		return nil, errors.Wrapf(err, "failed to get %s", path)
	}
	return &Snapshot{Path: path, Data: snap.Data()}, nil
}

func (s *FirestoreStore) Set(ctx context.Context, path Path, data Data) error {
	ref, err := s.doc(path)
	if err != nil {
		return err
	}
	if _, err = ref.Set(ctx, map[string]any(data)); err != nil {
		return errors.Wrapf(err, "failed to set %s", path)
	}
	return nil
}

func (s *FirestoreStore) Merge(ctx context.Context, path Path, data Data) error {
	ref, err := s.doc(path)
	if err != nil {
		return err
	}
	if _, err = ref.Set(ctx, map[string]any(data), firestore.MergeAll); err != nil {
		return errors.Wrapf(err, "failed to merge %s", path)
	}
	return nil
}

func (s *FirestoreStore) Update(ctx context.Context, path Path, updates ...Update) error {
	ref, err := s.doc(path)
	if err != nil {
		return err
	}

	fsUpdates := make([]firestore.Update, 0, len(updates))
	for _, update := range updates {
		value := update.Value
		switch v := update.Value.(type) {
		case ArrayUnionValue:
			value = firestore.ArrayUnion(v...)
		case ArrayRemoveValue:
			value = firestore.ArrayRemove(v...)
		}
		fsUpdates = append(fsUpdates, firestore.Update{Path: update.Field, Value: value})
	}

	if _, err = ref.Update(ctx, fsUpdates); err != nil {
		if status.Code(err) == codes.NotFound {
			return errors.Wrap(ErrNotFound, path.String())
		}
		return errors.Wrapf(err, "failed to update %s", path)
	}
	return nil
}

func (s *FirestoreStore) NewDoc(collection string) Path {
	return Doc(collection, s.client.Collection(collection).NewDoc().ID)
}

func (s *FirestoreStore) Add(ctx context.Context, collection string, data Data) (Path, error) {
	ref, _, err := s.client.Collection(collection).Add(ctx, map[string]any(data))
	if err != nil {
		return "", errors.Wrapf(err, "failed to add to %s", collection)
	}
	return Doc(collection, ref.ID), nil
}

func (s *FirestoreStore) Query(ctx context.Context, q Query) ([]Snapshot, error) {
	coll := s.client.Collection(q.Collection)
	if coll == nil {
		return nil, errors.Wrap(ErrInvalidPath, q.Collection)
	}

	query := coll.Query
	for _, filter := range q.Filters {
		query = query.Where(filter.Field, "==", filter.Value)
	}

	if q.OrderField != "" {
		direction := firestore.Asc
		if q.Direction == Desc {
			direction = firestore.Desc
		}
		query = query.OrderBy(q.OrderField, direction)
	}

	if q.StartAfterID != "" {
		cursor, err := coll.Doc(q.StartAfterID).Get(ctx)
		if err != nil && status.Code(err) != codes.NotFound {
			return nil, errors.Wrapf(err, "failed to load cursor %s", q.StartAfterID)
		}
		if err == nil && cursor.Exists() {
			query = query.StartAfter(cursor)
		}
	}

	if q.LimitCount > 0 {
		query = query.Limit(q.LimitCount)
	}

	docs, err := query.Documents(ctx).GetAll()
	if err != nil {
		return nil, errors.Wrapf(err, "failed to query %s", q.Collection)
	}

	snapshots := make([]Snapshot, 0, len(docs))
	for _, doc := range docs {
		snapshots = append(snapshots, Snapshot{Path: Doc(q.Collection, doc.Ref.ID), Data: doc.Data()})
	}
	return snapshots, nil
}

func (s *FirestoreStore) Close() error {
	return s.client.Close()
}

func (s *FirestoreStore) doc(path Path) (*firestore.DocumentRef, error) {
	if !path.Valid() {
		return nil, errors.Wrap(ErrInvalidPath, path.String())
	}
	ref := s.client.Doc(path.String())
	if ref == nil {
		return nil, errors.Wrap(ErrInvalidPath, path.String())
	}
	return ref, nil
}
