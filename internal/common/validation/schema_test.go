package validation

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const personSchema = `{
  "type": "object",
  "required": ["name", "tags"],
  "properties": {
    "name": {"type": "string", "minLength": 1},
    "tags": {"type": "array", "items": {"type": "string"}}
  }
}`

func TestSchema_ValidateBytes(t *testing.T) {
	s, err := Compile(personSchema)
	require.NoError(t, err)

	ok := s.ValidateBytes([]byte(`{"name":"Asha","tags":["farmer"]}`))
	assert.True(t, ok.Valid)
	assert.NoError(t, ok.Err())

	missing := s.ValidateBytes([]byte(`{"name":"Asha"}`))
	assert.False(t, missing.Valid)
	require.Error(t, missing.Err())
	assert.Contains(t, missing.Err().Error(), "tags")

	wrongType := s.ValidateBytes([]byte(`{"name":"Asha","tags":[1,2]}`))
	assert.False(t, wrongType.Valid)
	assert.NotEmpty(t, wrongType.Errors)

	malformed := s.ValidateBytes([]byte(`{not json`))
	assert.False(t, malformed.Valid)
	assert.Equal(t, "INVALID_JSON", malformed.Errors[0].Code)
}

func TestSchema_ValidateGo(t *testing.T) {
	s := MustCompile(personSchema)
	res := s.ValidateGo(map[string]interface{}{"name": "", "tags": []interface{}{}})
	assert.False(t, res.Valid)
}

func TestCompile_InvalidSchema(t *testing.T) {
	_, err := Compile(`{"type": 12}`)
	assert.Error(t, err)
}
