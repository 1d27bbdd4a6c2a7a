package handlers_test

import (
	"encoding/json"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestIntentHandler_List(t *testing.T) {
	f := newFixture()
	w := f.do(t, http.MethodGet, "/intents", nil)
	require.Equal(t, http.StatusOK, w.Code)

	var body struct {
		Success bool `json:"success"`
		Intents map[string]struct {
			Endpoint   string   `json:"endpoint"`
			Method     string   `json:"method"`
			Parameters []string `json:"parameters"`
		} `json:"intents"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	assert.True(t, body.Success)
	assert.Len(t, body.Intents, 24)
	assert.Equal(t, "/repos/read-file/{repo_path}/{file_name}", body.Intents["read_file"].Endpoint)
	assert.Equal(t, "GET", body.Intents["read_file"].Method)
	assert.Contains(t, body.Intents["create_repository"].Parameters, "repo_name")
}

func TestIntentHandler_Classify(t *testing.T) {
	tests := []struct {
		query   string
		success bool
		intent  string
	}{
		{"Please create a new repo on GitHub", true, "create_repository"},
		{"commit my changes", true, "commit_changes"},
		{"what's the git status", true, "check_status"},
		{"make me a sandwich", false, ""},
	}
	for _, tt := range tests {
		t.Run(tt.query, func(t *testing.T) {
			f := newFixture()
			w := f.do(t, http.MethodPost, "/classify-intent", map[string]any{"query": tt.query})
			require.Equal(t, http.StatusOK, w.Code)

			var body map[string]any
			require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
			assert.Equal(t, tt.success, body["success"])
			if tt.success {
				assert.Equal(t, tt.intent, body["intent"])
				assert.NotEmpty(t, body["endpoint"])
				return
			}
			assert.Equal(t, "Could not classify intent", body["message"])
			assert.Len(t, body["suggestions"], 24)
		})
	}
}
