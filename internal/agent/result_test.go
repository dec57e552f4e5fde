// ABOUTME: Tests for lenient decoding of agent results
// ABOUTME: Ensures payload kinds are tagged and bad field types degrade to empty values

package agent

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPayload_Kinds(t *testing.T) {
	var text, structured, none Payload
	require.NoError(t, json.Unmarshal([]byte(`"hi"`), &text))
	require.NoError(t, json.Unmarshal([]byte(`{"a":1}`), &structured))
	require.NoError(t, json.Unmarshal([]byte(`null`), &none))

	assert.Equal(t, PayloadText, text.Kind)
	assert.Equal(t, "hi", text.Text)
	assert.Equal(t, PayloadStructured, structured.Kind)
	assert.Equal(t, map[string]any{"a": float64(1)}, structured.Structured)
	assert.Equal(t, PayloadNone, none.Kind)
}

func TestResult_RoundTrip(t *testing.T) {
	in := Result{
		Success:  true,
		Response: &Response{Result: TextPayload(`{"text":"x"}`), Message: "m"},
	}
	data, err := json.Marshal(in)
	require.NoError(t, err)

	var out Result
	require.NoError(t, json.Unmarshal(data, &out))
	assert.Equal(t, in, out)
}

func TestResult_LenientFields(t *testing.T) {
	var res Result
	err := json.Unmarshal([]byte(`{"success":"yes","error":123,"message":null,"response":[1]}`), &res)
	require.NoError(t, err)

	assert.False(t, res.Success)
	assert.Empty(t, res.Error)
	assert.Empty(t, res.Message)
	assert.Nil(t, res.Response)
}

func TestResult_RejectsNonObject(t *testing.T) {
	var res Result
	assert.Error(t, json.Unmarshal([]byte(`"just text"`), &res))
}
