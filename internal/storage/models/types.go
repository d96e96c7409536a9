package models

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"
)

// StringSlice wraps []string with sql.Scanner and driver.Valuer so it
// round-trips through TEXT/JSON columns on both supported drivers.
type StringSlice []string

func (s *StringSlice) Scan(src interface{}) error {
	if s == nil {
		return fmt.Errorf("models: Scan on nil *StringSlice")
	}
	if src == nil {
		*s = StringSlice{}
		return nil
	}

	switch v := src.(type) {
	case []byte:
		return json.Unmarshal(v, (*[]string)(s))
	case string:
		return json.Unmarshal([]byte(v), (*[]string)(s))
	default:
		return fmt.Errorf("models: cannot scan type %T into StringSlice", src)
	}
}

func (s StringSlice) Value() (driver.Value, error) {
	if s == nil {
		return "[]", nil
	}
	b, err := json.Marshal([]string(s))
	if err != nil {
		return nil, err
	}
	return string(b), nil
}

// JSONMap is a free-form key/value map stored as a JSON text column,
// holding source-specific extras like reaction or star counts.
type JSONMap map[string]interface{}

func (m *JSONMap) Scan(src interface{}) error {
	if m == nil {
		return fmt.Errorf("models: Scan on nil *JSONMap")
	}
	if src == nil {
		*m = JSONMap{}
		return nil
	}

	switch v := src.(type) {
	case []byte:
		return json.Unmarshal(v, (*map[string]interface{})(m))
	case string:
		return json.Unmarshal([]byte(v), (*map[string]interface{})(m))
	default:
		return fmt.Errorf("models: cannot scan type %T into JSONMap", src)
	}
}

func (m JSONMap) Value() (driver.Value, error) {
	if m == nil {
		return "{}", nil
	}
	b, err := json.Marshal(map[string]interface{}(m))
	if err != nil {
		return nil, err
	}
	return string(b), nil
}
