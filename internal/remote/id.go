package remote

import (
	"bytes"
	"database/sql/driver"
	"encoding/json"
	"fmt"
	"strconv"
)

// ID is a row identifier. Backends hand out either integer or uuid keys, so
// ID accepts both JSON numbers and strings and scans from either column type.
type ID string

func (id ID) String() string {
	return string(id)
}

func (id *ID) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if bytes.Equal(data, []byte("null")) {
		*id = ""
		return nil
	}
	if len(data) > 0 && data[0] == '"' {
		var value string
		if err := json.Unmarshal(data, &value); err != nil {
			return err
		}
		*id = ID(value)
		return nil
	}
	var number json.Number
	if err := json.Unmarshal(data, &number); err != nil {
		return fmt.Errorf("id: %w", err)
	}
	*id = ID(number.String())
	return nil
}

func (id *ID) Scan(value any) error {
	if value == nil {
		*id = ""
		return nil
	}
	parsed, ok := IDString(value)
	if !ok {
		return fmt.Errorf("id: unsupported scan type %T", value)
	}
	*id = ID(parsed)
	return nil
}

func (id ID) Value() (driver.Value, error) {
	if id == "" {
		return nil, nil
	}
	return string(id), nil
}

// IDString normalizes a loosely typed column value into its id text.
func IDString(value any) (string, bool) {
	switch v := value.(type) {
	case string:
		return v, v != ""
	case []byte:
		return string(v), len(v) > 0
	case ID:
		return string(v), v != ""
	case json.Number:
		return v.String(), v != ""
	case int:
		return strconv.Itoa(v), true
	case int32:
		return strconv.FormatInt(int64(v), 10), true
	case int64:
		return strconv.FormatInt(v, 10), true
	case float64:
		return strconv.FormatFloat(v, 'f', -1, 64), true
	case fmt.Stringer:
		s := v.String()
		return s, s != ""
	default:
		return "", false
	}
}

func IDStrings(ids []ID) []string {
	result := make([]string, 0, len(ids))
	for _, id := range ids {
		result = append(result, string(id))
	}
	return result
}
