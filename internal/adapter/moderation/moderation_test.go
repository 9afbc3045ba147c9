package moderation

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/Abdurahmanit/GroupProject/marketplace-service/internal/platform/logger"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func moderationServer(t *testing.T, flagged bool, seen *moderationRequest) *httptest.Server {
	t.Helper()
	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "Bearer test-key", r.Header.Get("Authorization"))
		assert.NoError(t, json.NewDecoder(r.Body).Decode(seen))
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(map[string]interface{}{
			"results": []map[string]interface{}{{"flagged": flagged}},
		})
	}))
}

func TestHTTPOracle_CheckText(t *testing.T) {
	var seen moderationRequest
	srv := moderationServer(t, false, &seen)
	defer srv.Close()

	o := NewHTTPOracle(srv.URL, "test-key", "", time.Second, logger.NewNop())
	ok, err := o.CheckText(context.Background(), "Desk lamp barely used")

	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, defaultModel, seen.Model)
	require.Len(t, seen.Input, 1)
	assert.Equal(t, "text", seen.Input[0].Type)
	assert.Equal(t, "Desk lamp barely used", seen.Input[0].Text)
}

func TestHTTPOracle_CheckImageFlagged(t *testing.T) {
	var seen moderationRequest
	srv := moderationServer(t, true, &seen)
	defer srv.Close()

	o := NewHTTPOracle(srv.URL, "test-key", "custom-model", time.Second, logger.NewNop())
	ok, err := o.CheckImage(context.Background(), []byte("\x89PNG\r\n\x1a\nnot really"))

	require.NoError(t, err)
	assert.False(t, ok)
	assert.Equal(t, "custom-model", seen.Model)
	require.Len(t, seen.Input, 1)
	require.NotNil(t, seen.Input[0].ImageURL)
	assert.True(t, strings.HasPrefix(seen.Input[0].ImageURL.URL, "data:image/png;base64,"))
}

func TestHTTPOracle_ErrorStatus(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "rate limited", http.StatusTooManyRequests)
	}))
	defer srv.Close()

	o := NewHTTPOracle(srv.URL, "", "", time.Second, logger.NewNop())
	_, err := o.CheckText(context.Background(), "anything")
	assert.Error(t, err)
}

func TestHTTPOracle_EmptyResults(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"results":[]}`))
	}))
	defer srv.Close()

	o := NewHTTPOracle(srv.URL, "", "", time.Second, logger.NewNop())
	_, err := o.CheckText(context.Background(), "anything")
	assert.Error(t, err)
}

func TestBlocklistOracle(t *testing.T) {
	o := NewBlocklistOracle([]string{" Scam ", "", "counterfeit"})
	ctx := context.Background()

	ok, err := o.CheckText(ctx, "Totally not a SCAM")
	require.NoError(t, err)
	assert.False(t, ok)

	ok, err = o.CheckText(ctx, "Gently used bike")
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = o.CheckImage(ctx, []byte{1, 2, 3})
	require.NoError(t, err)
	assert.True(t, ok)
}
