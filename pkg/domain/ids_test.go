package domain

import (
	"encoding/json"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	dErrors "crm/pkg/domain-errors"
)

func TestParseContactID(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		wantErr bool
	}{
		{"lowercase hex", "65f1c2a4b3d2e1f0a9b8c7d6", false},
		{"uppercase hex", "65F1C2A4B3D2E1F0A9B8C7D6", false},
		{"all zeros is well-formed", "000000000000000000000000", false},
		{"empty", "", true},
		{"too short", "65f1c2a4b3d2", true},
		{"too long", "65f1c2a4b3d2e1f0a9b8c7d6ff", true},
		{"non hex", "zzzzzzzzzzzzzzzzzzzzzzzz", true},
		{"uuid", "550e8400-e29b-41d4-a716-446655440000", true},
		{"path traversal", "../../../etc/passwd", true},
		{"oversized", strings.Repeat("a", 1000), true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			id, err := ParseContactID(tt.input)
			if tt.wantErr {
				require.Error(t, err)
				assert.True(t, dErrors.HasCode(err, dErrors.CodeInvalidInput))
				assert.False(t, IsContactID(tt.input))
				return
			}
			require.NoError(t, err)
			assert.True(t, IsContactID(tt.input))
			assert.Equal(t, strings.ToLower(tt.input), id.String())
		})
	}
}

func TestNewContactIDIsUnique(t *testing.T) {
	a, b := NewContactID(), NewContactID()
	assert.NotEqual(t, a, b)
	assert.False(t, a.IsNil())
	assert.True(t, NilContactID.IsNil())
}

func TestContactIDJSON(t *testing.T) {
	id := NewContactID()
	raw, err := json.Marshal(struct {
		ID ContactID `json:"id"`
	}{id})
	require.NoError(t, err)
	assert.JSONEq(t, `{"id":"`+id.String()+`"}`, string(raw))

	var decoded struct {
		ID ContactID `json:"id"`
	}
	require.NoError(t, json.Unmarshal(raw, &decoded))
	assert.Equal(t, id, decoded.ID)

	assert.Error(t, json.Unmarshal([]byte(`{"id":"nope"}`), &decoded))
}
