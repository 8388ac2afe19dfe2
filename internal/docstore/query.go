package docstore

type Direction int

const (
	Asc Direction = iota
	Desc
)

type Filter struct {
	Field string
	Value any
}

// Query is an immutable description of a collection query; each builder method returns a copy.
type Query struct {
	Collection   string
	Filters      []Filter
	OrderField   string
	Direction    Direction
	StartAfterID string
	LimitCount   int
}

func Collection(collection string) Query {
	return Query{Collection: collection}
}

func (q Query) Where(field string, value any) Query {
	filters := make([]Filter, len(q.Filters), len(q.Filters)+1)
	copy(filters, q.Filters)
	q.Filters = append(filters, Filter{Field: field, Value: value})
	return q
}

func (q Query) OrderBy(field string, direction Direction) Query {
	q.OrderField = field
	q.Direction = direction
	return q
}

// StartAfter continues after the document with the given id. An id that does not exist in
// the collection is ignored and the query starts from the beginning.
func (q Query) StartAfter(id string) Query {
	q.StartAfterID = id
	return q
}

func (q Query) Limit(n int) Query {
	q.LimitCount = n
	return q
}
