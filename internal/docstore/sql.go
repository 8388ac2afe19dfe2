package docstore

import (
	"context"
	"encoding/json"
	"fmt"
	"github.com/google/uuid"
	"github.com/pkg/errors"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
	"regexp"
	"strings"
	"time"
)

var fieldNamePattern = regexp.MustCompile(`^[A-Za-z_][A-Za-z0-9_]*$`)

type document struct {
	Collection string `gorm:"primaryKey"`
	ID         string `gorm:"primaryKey"`
	Data       string `gorm:"not null"`
	CreatedAt  time.Time
	UpdatedAt  time.Time
}

func (document) TableName() string {
	return "documents"
}

// SQLStore keeps documents as JSON rows of a single table. Read-modify-write operations
// (merge, update, array union/remove) run in a transaction, so they are atomic with
// respect to each other.
type SQLStore struct {
	db *gorm.DB
}

func NewSQLStore(db *gorm.DB) *SQLStore {
	return &SQLStore{db: db}
}

func (s *SQLStore) Migrate() error {
	return s.db.AutoMigrate(&document{})
}

func (s *SQLStore) Get(ctx context.Context, path Path) (*Snapshot, error) {
	if !path.Valid() {
		return nil, errors.Wrap(ErrInvalidPath, path.String())
	}

	doc, err := load(s.db.WithContext(ctx), path)
	if err != nil {
		return nil, err
	}
	return doc.snapshot()
}

func (s *SQLStore) Set(ctx context.Context, path Path, data Data) error {
	if !path.Valid() {
		return errors.Wrap(ErrInvalidPath, path.String())
	}
	return save(s.db.WithContext(ctx), path, encodeData(data))
}

func (s *SQLStore) Merge(ctx context.Context, path Path, data Data) error {
	if !path.Valid() {
		return errors.Wrap(ErrInvalidPath, path.String())
	}

	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		current := map[string]any{}
		doc, err := load(tx, path)
		if err != nil && !errors.Is(err, ErrNotFound) {
			return err
		}
		if doc != nil {
			if current, err = doc.data(); err != nil {
				return err
			}
		}
		return save(tx, path, mergeMaps(current, encodeData(data)))
	})
}

func (s *SQLStore) Update(ctx context.Context, path Path, updates ...Update) error {
	if !path.Valid() {
		return errors.Wrap(ErrInvalidPath, path.String())
	}

	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		doc, err := load(tx, path)
		if err != nil {
			return err
		}
		current, err := doc.data()
		if err != nil {
			return err
		}
		for _, update := range updates {
			if err = applyUpdate(current, update); err != nil {
				return errors.Wrapf(err, "failed to update %s", path)
			}
		}
		return save(tx, path, current)
	})
}

func (s *SQLStore) NewDoc(collection string) Path {
	return Doc(collection, strings.ReplaceAll(uuid.NewString(), "-", ""))
}

func (s *SQLStore) Add(ctx context.Context, collection string, data Data) (Path, error) {
	path := s.NewDoc(collection)
	if err := s.Set(ctx, path, data); err != nil {
		return "", err
	}
	return path, nil
}

func (s *SQLStore) Query(ctx context.Context, q Query) ([]Snapshot, error) {
	if q.Collection == "" {
		return nil, errors.New("query without collection")
	}

	tx := s.db.WithContext(ctx).Where("collection = ?", q.Collection)

	for _, filter := range q.Filters {
		if !fieldNamePattern.MatchString(filter.Field) {
			return nil, fmt.Errorf("invalid filter field %q", filter.Field)
		}
		value, err := normalize(filter.Value)
		if err != nil {
			return nil, errors.Wrapf(err, "invalid value for filter %q", filter.Field)
		}
		tx = tx.Where(jsonField(filter.Field)+" = ?", value)
	}

	var cursor *Snapshot
	if q.StartAfterID != "" {
		doc, err := load(s.db.WithContext(ctx), Doc(q.Collection, q.StartAfterID))
		if err != nil && !errors.Is(err, ErrNotFound) {
			return nil, err
		}
		if doc != nil {
			if cursor, err = doc.snapshot(); err != nil {
				return nil, err
			}
		}
	}

	if q.OrderField != "" {
		if !fieldNamePattern.MatchString(q.OrderField) {
			return nil, fmt.Errorf("invalid order field %q", q.OrderField)
		}
		expr, direction, cmp := jsonField(q.OrderField), "ASC", ">"
		if q.Direction == Desc {
			direction, cmp = "DESC", "<"
		}
		if cursor != nil && cursor.Data[q.OrderField] != nil {
			value := cursor.Data[q.OrderField]
			tx = tx.Where(fmt.Sprintf("(%s %s ? OR (%s = ? AND id %s ?))", expr, cmp, expr, cmp),
				value, value, cursor.Path.ID())
		}
		tx = tx.Order(expr + " " + direction).Order("id " + direction)
	} else {
		if cursor != nil {
			tx = tx.Where("id > ?", cursor.Path.ID())
		}
		tx = tx.Order("id ASC")
	}

	if q.LimitCount > 0 {
		tx = tx.Limit(q.LimitCount)
	}

	var docs []document
	if err := tx.Find(&docs).Error; err != nil {
		return nil, errors.Wrapf(err, "failed to query %s", q.Collection)
	}

	snapshots := make([]Snapshot, 0, len(docs))
	for _, doc := range docs {
		snapshot, err := doc.snapshot()
		if err != nil {
			return nil, err
		}
		snapshots = append(snapshots, *snapshot)
	}
	return snapshots, nil
}

// Close is a no-op: the connection belongs to whoever opened the gorm handle.
func (s *SQLStore) Close() error {
	return nil
}

func (d *document) data() (map[string]any, error) {
	data := map[string]any{}
	if err := json.Unmarshal([]byte(d.Data), &data); err != nil {
		return nil, errors.Wrapf(err, "corrupted document %s/%s", d.Collection, d.ID)
	}
	return data, nil
}

func (d *document) snapshot() (*Snapshot, error) {
	data, err := d.data()
	if err != nil {
		return nil, err
	}
	return &Snapshot{Path: Doc(d.Collection, d.ID), Data: data}, nil
}

func load(tx *gorm.DB, path Path) (*document, error) {
	var docs []document
	err := tx.Where("collection = ? AND id = ?", path.Collection(), path.ID()).Limit(1).Find(&docs).Error
	if err != nil {
		return nil, errors.Wrapf(err, "failed to load %s", path)
	}
	if len(docs) == 0 {
		return nil, errors.Wrap(ErrNotFound, path.String())
	}
	return &docs[0], nil
}

func save(tx *gorm.DB, path Path, data map[string]any) error {
	raw, err := json.Marshal(data)
	if err != nil {
		return errors.Wrapf(err, "failed to encode %s", path)
	}

	doc := document{Collection: path.Collection(), ID: path.ID(), Data: string(raw)}
	err = tx.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "collection"}, {Name: "id"}},
		DoUpdates: clause.AssignmentColumns([]string{"data", "updated_at"}),
	}).Create(&doc).Error
	if err != nil {
		return errors.Wrapf(err, "failed to save %s", path)
	}
	return nil
}

func applyUpdate(data map[string]any, update Update) error {
	if update.Field == "" {
		return errors.New("empty field name")
	}

	switch value := update.Value.(type) {
	case ArrayUnionValue:
		current, values, err := arrayOperands(data, update.Field, value)
		if err != nil {
			return err
		}
		data[update.Field] = unionValues(current, values)
	case ArrayRemoveValue:
		current, values, err := arrayOperands(data, update.Field, value)
		if err != nil {
			return err
		}
		data[update.Field] = removeValues(current, values)
	default:
		normalized, err := normalize(value)
		if err != nil {
			return errors.Wrapf(err, "invalid value for %q", update.Field)
		}
		data[update.Field] = normalized
	}
	return nil
}

func arrayOperands(data map[string]any, field string, values []any) ([]any, []any, error) {
	var current []any
	switch existing := data[field].(type) {
	case nil:
		current = []any{}
	case []any:
		current = existing
	default:
		return nil, nil, errors.Wrap(ErrNotArray, field)
	}

	normalized := make([]any, len(values))
	for i, v := range values {
		var err error
		if normalized[i], err = normalize(v); err != nil {
			return nil, nil, errors.Wrapf(err, "invalid array value for %q", field)
		}
	}
	return current, normalized, nil
}

func mergeMaps(dst, src map[string]any) map[string]any {
	for k, v := range src {
		srcMap, srcIsMap := v.(map[string]any)
		dstMap, dstIsMap := dst[k].(map[string]any)
		if srcIsMap && dstIsMap {
			dst[k] = mergeMaps(dstMap, srcMap)
			continue
		}
		dst[k] = v
	}
	return dst
}

func jsonField(field string) string {
	return "json_extract(data, '$." + field + "')"
}
