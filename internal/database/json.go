package database

import (
	"encoding/json"
	"fmt"
)

// toJSON encodes v for a JSON/JSONB column. Both drivers accept text.
func toJSON(v any) (string, error) {
	b, err := json.Marshal(v)
	if err != nil {
		return "", fmt.Errorf("encode json column: %w", err)
	}
	return string(b), nil
}

// fromJSON decodes a JSON column; NULL or empty leaves dst untouched.
func fromJSON(raw []byte, dst any) error {
	if len(raw) == 0 {
		return nil
	}
	if err := json.Unmarshal(raw, dst); err != nil {
		return fmt.Errorf("decode json column: %w", err)
	}
	return nil
}
