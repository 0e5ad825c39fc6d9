package publishers

import (
	"encoding/base64"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestPayload(t *testing.T) {
	doc := Document{Provider: "clash", Body: []byte("proxies: []\n")}

	assert.Equal(t, doc.Body, Payload(doc, nil))
	assert.Equal(t, doc.Body, Payload(doc, map[string]interface{}{"base64": false}))

	encoded := Payload(doc, map[string]interface{}{"base64": true})
	decoded, err := base64.StdEncoding.DecodeString(string(encoded))
	assert.NoError(t, err)
	assert.Equal(t, doc.Body, decoded)
}

func TestParams(t *testing.T) {
	params := map[string]interface{}{
		"s":   "x",
		"b":   true,
		"i":   3,
		"i64": int64(4),
		"f":   float64(5),
		"d":   2 * time.Second,
	}
	assert.Equal(t, "x", String(params, "s"))
	assert.Equal(t, "", String(params, "b"))
	assert.True(t, Bool(params, "b"))
	assert.Equal(t, 3, Int(params, "i"))
	assert.Equal(t, 4, Int(params, "i64"))
	assert.Equal(t, 5, Int(params, "f"))
	assert.Equal(t, 0, Int(params, "s"))
	assert.Equal(t, 2*time.Second, Duration(params, "d", time.Minute))
	assert.Equal(t, time.Minute, Duration(params, "missing", time.Minute))
}
