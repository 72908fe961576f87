package device

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseActionRequest(t *testing.T) {
	t.Run("valid request", func(t *testing.T) {
		req, err := ParseActionRequest([]byte(`{"action":"set_bright","parameters":{"brightness":40}}`))
		require.NoError(t, err)
		assert.Equal(t, "set_bright", req.Action)
		assert.Equal(t, float64(40), req.Parameters["brightness"])
	})

	t.Run("missing action", func(t *testing.T) {
		_, err := ParseActionRequest([]byte(`{"parameters":{}}`))
		assert.EqualError(t, err, "action is required")
	})

	t.Run("malformed JSON", func(t *testing.T) {
		_, err := ParseActionRequest([]byte(`{"action":`))
		assert.Error(t, err)
	})
}

func TestCreateActionJSON(t *testing.T) {
	data, err := CreateActionJSON("toggle", nil)
	require.NoError(t, err)

	req, err := ParseActionRequest(data)
	require.NoError(t, err)
	assert.Equal(t, "toggle", req.Action)
	assert.Nil(t, req.Parameters)
}

func TestFailure(t *testing.T) {
	resp := Failure("unsupported action: %s", "dance")
	assert.False(t, resp.Success)
	assert.Equal(t, "unsupported action: dance", resp.Error)
	assert.Nil(t, resp.Data)
}
