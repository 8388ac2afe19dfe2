package docstore

import (
	"encoding/json"
	"reflect"
	"time"
)

// timeLayout is fixed width and always UTC, so stored timestamps sort lexically in
// chronological order and still parse as RFC3339.
const timeLayout = "2006-01-02T15:04:05.000000000Z07:00"

func encodeData(data map[string]any) map[string]any {
	out := make(map[string]any, len(data))
	for k, v := range data {
		out[k] = encodeValue(v)
	}
	return out
}

func encodeValue(value any) any {
	switch v := value.(type) {
	case time.Time:
		return v.UTC().Format(timeLayout)
	case *time.Time:
		if v == nil {
			return nil
		}
		return v.UTC().Format(timeLayout)
	case Data:
		return encodeData(v)
	case map[string]any:
		return encodeData(v)
	case []any:
		out := make([]any, len(v))
		for i, item := range v {
			out[i] = encodeValue(item)
		}
		return out
	default:
		return value
	}
}

// normalize brings a value into the shape it has after a round trip through storage,
// which is what array membership is compared on.
func normalize(value any) (any, error) {
	raw, err := json.Marshal(encodeValue(value))
	if err != nil {
		return nil, err
	}
	var out any
	err = json.Unmarshal(raw, &out)
	return out, err
}

func containsValue(list []any, value any) bool {
	for _, item := range list {
		if reflect.DeepEqual(item, value) {
			return true
		}
	}
	return false
}

func unionValues(current []any, values []any) []any {
	for _, v := range values {
		if !containsValue(current, v) {
			current = append(current, v)
		}
	}
	return current
}

func removeValues(current []any, values []any) []any {
	out := make([]any, 0, len(current))
	for _, item := range current {
		if !containsValue(values, item) {
			out = append(out, item)
		}
	}
	return out
}
