// Package docstore is the client side of the hosted document database: collections of
// schemaless documents addressed by slash-separated paths.
package docstore

import (
	"context"
	"encoding/json"
	"github.com/pkg/errors"
	"strings"
)

var (
	ErrNotFound    = errors.New("document not found")
	ErrNotArray    = errors.New("field is not an array")
	ErrInvalidPath = errors.New("invalid document path")
)

type Data map[string]any

// Path addresses a document: collection and id segments alternate, so a valid path always
// has an even number of segments ("users/42", "users/student/42/user_details").
type Path string

func Doc(segments ...string) Path {
	return Path(strings.Join(segments, "/"))
}

func (p Path) Collection() string {
	i := strings.LastIndex(string(p), "/")
	if i < 0 {
		return ""
	}
	return string(p[:i])
}

func (p Path) ID() string {
	return string(p[strings.LastIndex(string(p), "/")+1:])
}

func (p Path) Valid() bool {
	segments := strings.Split(string(p), "/")
	if len(segments)%2 != 0 {
		return false
	}
	for _, s := range segments {
		if s == "" {
			return false
		}
	}
	return true
}

func (p Path) String() string {
	return string(p)
}

type Snapshot struct {
	Path Path
	Data Data
}

// DataTo decodes the document into a struct with json tags.
func (s Snapshot) DataTo(v any) error {
	raw, err := json.Marshal(encodeData(s.Data))
	if err != nil {
		return errors.Wrapf(err, "failed to encode %s", s.Path)
	}
	if err = json.Unmarshal(raw, v); err != nil {
		return errors.Wrapf(err, "failed to decode %s", s.Path)
	}
	return nil
}

type Update struct {
	Field string
	Value any
}

// ArrayUnionValue adds the values missing from an array field when used as an Update value.
type ArrayUnionValue []any

// ArrayRemoveValue removes every occurrence of the values from an array field.
type ArrayRemoveValue []any

func ArrayUnion(values ...any) ArrayUnionValue {
	return values
}

func ArrayRemove(values ...any) ArrayRemoveValue {
	return values
}

type Store interface {
	Get(ctx context.Context, path Path) (*Snapshot, error)
	Set(ctx context.Context, path Path, data Data) error
	Merge(ctx context.Context, path Path, data Data) error
	Update(ctx context.Context, path Path, updates ...Update) error
	NewDoc(collection string) Path
	Add(ctx context.Context, collection string, data Data) (Path, error)
	Query(ctx context.Context, q Query) ([]Snapshot, error)
	Close() error
}

func IsNotFound(err error) bool {
	return errors.Is(err, ErrNotFound)
}
