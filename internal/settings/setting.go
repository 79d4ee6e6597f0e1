// Package settings holds runtime-tunable values that admin tooling can flip
// without a restart, such as whether the live routing provider is used.
package settings

import (
	"encoding/json"
	"time"
)

// Well-known setting keys.
const (
	// KeyRoutingProviderEnabled gates calls to the live routing provider.
	// When false every quote uses the terrain estimate.
	KeyRoutingProviderEnabled = "routing_provider_enabled"

	// KeyActiveFareConfig names the fare configuration used when a request
	// does not pick one.
	KeyActiveFareConfig = "active_fare_config"
)

// Setting is a single key/value pair. Value holds any JSON-compatible value.
type Setting struct {
	Key       string    `json:"key"`
	Value     any       `json:"value"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// Bool returns the value as a boolean, or def when the setting is nil or
// holds a different type.
func (s *Setting) Bool(def bool) bool {
	if s == nil {
		return def
	}
	switch v := s.Value.(type) {
	case bool:
		return v
	case float64:
		// JSON numbers decode as float64
		return v != 0
	case string:
		switch v {
		case "true", "1", "on":
			return true
		case "false", "0", "off":
			return false
		}
	}
	return def
}

// String returns the value as a string, or def when the setting is nil,
// empty or not a string.
func (s *Setting) String(def string) string {
	if s == nil {
		return def
	}
	if v, ok := s.Value.(string); ok && v != "" {
		return v
	}
	return def
}

// Decode unmarshals the value into target.
func (s *Setting) Decode(target any) error {
	if s == nil {
		return nil
	}
	data, err := json.Marshal(s.Value)
	if err != nil {
		return err
	}
	return json.Unmarshal(data, target)
}

func (s *Setting) clone() *Setting {
	c := *s
	return &c
}

// Defaults returns the built-in values used when the store has no entry.
func Defaults() map[string]*Setting {
	return map[string]*Setting{
		KeyRoutingProviderEnabled: {Key: KeyRoutingProviderEnabled, Value: true},
		KeyActiveFareConfig:       {Key: KeyActiveFareConfig, Value: "default"},
	}
}
