// Package valueobject holds small value types shared by the sqlc models.
package valueobject

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"
)

// JSONMap is a JSON object stored in a jsonb column. A nil map is written
// as {} so the column never holds SQL NULL.
type JSONMap map[string]any

// Value implements driver.Valuer.
func (j JSONMap) Value() (driver.Value, error) {
	if j == nil {
		return []byte("{}"), nil
	}
	return json.Marshal(j)
}

// Scan implements sql.Scanner. NULL scans to an empty map.
func (j *JSONMap) Scan(src any) error {
	var raw []byte
	switch v := src.(type) {
	case nil:
		*j = JSONMap{}
		return nil
	case map[string]any:
		*j = JSONMap(v)
		return nil
	case []byte:
		raw = v
	case string:
		raw = []byte(v)
	default:
		return fmt.Errorf("valueobject: cannot scan %T into JSONMap", src)
	}

	m := JSONMap{}
	if err := json.Unmarshal(raw, &m); err != nil {
		return fmt.Errorf("valueobject: decode JSONMap: %w", err)
	}
	*j = m
	return nil
}
