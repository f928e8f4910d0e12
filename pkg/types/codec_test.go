package types

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDeltaJSONRoundTrip(t *testing.T) {
	type holder struct {
		Delta Delta `json:"delta,omitempty"`
	}

	payload := Delta(`[{"op":"replace","value":42}]`)
	data, err := json.Marshal(holder{Delta: payload})
	require.NoError(t, err)

	var got holder
	require.NoError(t, json.Unmarshal(data, &got))
	assert.JSONEq(t, string(payload), string(got.Delta))
}

func TestDeltaNil(t *testing.T) {
	data, err := json.Marshal(Delta(nil))
	require.NoError(t, err)
	assert.Equal(t, "null", string(data))

	var d Delta
	require.NoError(t, json.Unmarshal([]byte("null"), &d))
	assert.Nil(t, d)
}

func TestConfigValidate(t *testing.T) {
	tests := []struct {
		name    string
		config  Config
		wantErr error
	}{
		{
			name:   "valid sqlite backend",
			config: Config{Backend: BackendSQLite, DataDir: "/tmp/retrace"},
		},
		{
			name:   "empty data dir accepted",
			config: Config{Backend: BackendSQLite},
		},
		{
			name:    "empty backend rejected",
			config:  Config{},
			wantErr: ErrBackendEmpty,
		},
		{
			name:    "unknown backend rejected",
			config:  Config{Backend: "postgres"},
			wantErr: ErrBackendUnknown,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.config.Validate()
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}
