package store

import (
	"encoding/json"
	"fmt"
)

// GetJSON decodes the JSON value stored under key into v.
// Returns false if the key does not exist.
func GetJSON(ns Namespace, key string, v any) (bool, error) {
	data, ok, err := ns.Get(key)
	if err != nil || !ok {
		return false, err
	}
	if err := json.Unmarshal(data, v); err != nil {
		return false, fmt.Errorf("failed to decode %s: %w", key, err)
	}
	return true, nil
}

// SetJSON encodes v as JSON and stores it under key in a single write.
func SetJSON(ns Namespace, key string, v any) error {
	data, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("failed to encode %s: %w", key, err)
	}
	return ns.Set(key, data)
}

// GetString returns the string stored under key.
func GetString(ns Namespace, key string) (string, bool, error) {
	data, ok, err := ns.Get(key)
	if err != nil || !ok {
		return "", false, err
	}
	return string(data), true, nil
}

// SetString stores a string under key.
func SetString(ns Namespace, key, value string) error {
	return ns.Set(key, []byte(value))
}
