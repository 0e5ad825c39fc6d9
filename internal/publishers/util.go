package publishers

import (
	"encoding/base64"
	"time"
)

// Keys injected by the publish command from the [fetch] config section.
const (
	ParamTimeout  = "_timeout"
	ParamRetries  = "_retries"
	ParamProxyURL = "_proxy_url"
)

// Payload returns the bytes to publish, base64 encoded when params set
// base64 = true.
func Payload(doc Document, params map[string]interface{}) []byte {
	if Bool(params, "base64") {
		out := make([]byte, base64.StdEncoding.EncodedLen(len(doc.Body)))
		base64.StdEncoding.Encode(out, doc.Body)
		return out
	}
	return doc.Body
}

func String(params map[string]interface{}, key string) string {
	s, _ := params[key].(string)
	return s
}

func Bool(params map[string]interface{}, key string) bool {
	b, _ := params[key].(bool)
	return b
}

// Int accepts the integer types TOML and flag parsing produce.
func Int(params map[string]interface{}, key string) int {
	switch v := params[key].(type) {
	case int:
		return v
	case int64:
		return int(v)
	case float64:
		return int(v)
	default:
		return 0
	}
}

func Duration(params map[string]interface{}, key string, fallback time.Duration) time.Duration {
	if d, ok := params[key].(time.Duration); ok && d > 0 {
		return d
	}
	return fallback
}
