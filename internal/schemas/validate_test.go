package schemas

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestValidateBytes_ValidPlanResponse(t *testing.T) {
	doc := []byte(`{"queries": ["quantum computing news", "qubit research"]}`)

	assert.NoError(t, ValidateBytes("plan_response.schema.json", doc))
}

func TestValidateBytes_MissingQueries(t *testing.T) {
	err := ValidateBytes("plan_response.schema.json", []byte(`{"other": []}`))

	var ve *ValidationError
	require.ErrorAs(t, err, &ve)
	assert.Equal(t, "plan_response.schema.json", ve.Schema)
	assert.NotEmpty(t, ve.Errors)
}

func TestValidateBytes_TooManyQueries(t *testing.T) {
	doc := []byte(`{"queries": ["a1", "b2", "c3", "d4", "e5", "f6"]}`)

	err := ValidateBytes("plan_response.schema.json", doc)

	var ve *ValidationError
	require.ErrorAs(t, err, &ve)
}

func TestValidateBytes_NonStringQuery(t *testing.T) {
	err := ValidateBytes("plan_response.schema.json", []byte(`{"queries": [42]}`))

	var ve *ValidationError
	require.ErrorAs(t, err, &ve)
}

func TestValidateBytes_UnknownSchema(t *testing.T) {
	err := ValidateBytes("missing.schema.json", []byte(`{}`))

	require.Error(t, err)
	// A missing schema is a plain error, not a document validation failure
	var ve *ValidationError
	assert.False(t, errors.As(err, &ve))
}
