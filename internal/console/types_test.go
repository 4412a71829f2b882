package console

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestResultUnmarshalStrings(t *testing.T) {
	var r Result
	require.NoError(t, json.Unmarshal([]byte(`{"message":"850 processed","run_id":"R1","canonical":{"z":1,"a":2}}`), &r))
	assert.Equal(t, "850 processed", r.Message)
	assert.Equal(t, "R1", r.RunID)
	assert.Equal(t, `{"z":1,"a":2}`, string(r.Canonical))
	assert.False(t, r.HasError())
	assert.False(t, Present(r.Stored))
}

func TestResultUnmarshalKeepsMistypedScalars(t *testing.T) {
	var r Result
	body := `{"message":"ok","run_id":42,"error":{"detail": "x"},"canonical":{"b":2}}`
	require.NoError(t, json.Unmarshal([]byte(body), &r))

	assert.Equal(t, "ok", r.Message)
	assert.Equal(t, "42", r.RunID)
	assert.Equal(t, `{"detail":"x"}`, r.Error)
	assert.Equal(t, `{"b":2}`, string(r.Canonical))
}

func TestResultUnmarshalNullMembers(t *testing.T) {
	var r Result
	require.NoError(t, json.Unmarshal([]byte(`{"message":null,"error":null,"stored":null}`), &r))
	assert.Empty(t, r.Message)
	assert.False(t, r.HasError())
	assert.False(t, Present(r.Stored))
}

func TestResultUnmarshalRejectsNonObject(t *testing.T) {
	var r Result
	assert.Error(t, json.Unmarshal([]byte(`["not","an","object"]`), &r))
}
