package dto

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type patchEnvelope struct {
	Deadline OptionalTime   `json:"deadline"`
	Note     OptionalString `json:"note"`
}

func TestOptionalFieldsAbsent(t *testing.T) {
	var env patchEnvelope
	require.NoError(t, json.Unmarshal([]byte(`{}`), &env))

	assert.False(t, env.Deadline.Set)
	assert.False(t, env.Note.Set)
}

func TestOptionalFieldsExplicitNull(t *testing.T) {
	var env patchEnvelope
	require.NoError(t, json.Unmarshal([]byte(`{"deadline": null, "note": null}`), &env))

	assert.True(t, env.Deadline.Set)
	assert.Nil(t, env.Deadline.Value)
	assert.True(t, env.Note.Set)
	assert.Nil(t, env.Note.Value)
}

func TestOptionalFieldsWithValues(t *testing.T) {
	var env patchEnvelope
	payload := `{"deadline": "2026-04-01T12:00:00Z", "note": "ship it"}`
	require.NoError(t, json.Unmarshal([]byte(payload), &env))

	require.True(t, env.Deadline.Set)
	require.NotNil(t, env.Deadline.Value)
	assert.Equal(t, time.Date(2026, 4, 1, 12, 0, 0, 0, time.UTC), env.Deadline.Value.UTC())

	require.True(t, env.Note.Set)
	require.NotNil(t, env.Note.Value)
	assert.Equal(t, "ship it", *env.Note.Value)
}

func TestOptionalTimeRejectsGarbage(t *testing.T) {
	var env patchEnvelope
	err := json.Unmarshal([]byte(`{"deadline": "not-a-date"}`), &env)
	assert.Error(t, err)
}
