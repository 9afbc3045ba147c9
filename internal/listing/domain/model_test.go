package domain

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestListing_MarshalJSON_OmitsMissingCreatedAt(t *testing.T) {
	raw, err := json.Marshal(&Listing{ID: "legacy-1", Title: "Desk"})
	require.NoError(t, err)

	var fields map[string]interface{}
	require.NoError(t, json.Unmarshal(raw, &fields))
	assert.NotContains(t, fields, "createdAt")
	assert.Equal(t, "legacy-1", fields["id"])
	assert.Equal(t, "Desk", fields["title"])
}

func TestListing_MarshalJSON_KeepsCreatedAt(t *testing.T) {
	created := time.Date(2024, 9, 1, 12, 30, 0, 0, time.UTC)
	raw, err := json.Marshal(Listing{ID: "l1", CreatedAt: created})
	require.NoError(t, err)

	var fields map[string]interface{}
	require.NoError(t, json.Unmarshal(raw, &fields))
	assert.Equal(t, "2024-09-01T12:30:00Z", fields["createdAt"])

	var back Listing
	require.NoError(t, json.Unmarshal(raw, &back))
	assert.True(t, created.Equal(back.CreatedAt))
	assert.Equal(t, "l1", back.ID)
}
