package http

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type echoRequest struct {
	ApplicationID string `json:"applicationId"`
}

type echoResponse struct {
	RiskScore float64 `json:"riskScore"`
}

func TestClient_PostJSON(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "application/json", r.Header.Get("Content-Type"))
		assert.Equal(t, "Bearer secret", r.Header.Get("Authorization"))

		var req echoRequest
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		assert.Equal(t, "app-42", req.ApplicationID)

		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"riskScore":0.72}`))
	}))
	defer srv.Close()

	var out echoResponse
	err := NewClient(time.Second).PostJSON(context.Background(), srv.URL,
		map[string]string{"Authorization": "Bearer secret"}, echoRequest{ApplicationID: "app-42"}, &out)
	require.NoError(t, err)
	assert.Equal(t, 0.72, out.RiskScore)
}

func TestClient_PostJSON_NilOutSkipsDecode(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte("not json"))
	}))
	defer srv.Close()

	assert.NoError(t, NewClient(time.Second).PostJSON(context.Background(), srv.URL, nil, echoRequest{}, nil))
}

func TestClient_PostJSON_StatusErrors(t *testing.T) {
	tests := []struct {
		name      string
		status    int
		temporary bool
	}{
		{"bad request", http.StatusBadRequest, false},
		{"unauthorized", http.StatusUnauthorized, false},
		{"too many requests", http.StatusTooManyRequests, true},
		{"internal error", http.StatusInternalServerError, true},
		{"unavailable", http.StatusServiceUnavailable, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
				w.WriteHeader(tt.status)
				_, _ = w.Write([]byte("upstream says no"))
			}))
			defer srv.Close()

			var out echoResponse
			err := NewClient(time.Second).PostJSON(context.Background(), srv.URL, nil, echoRequest{}, &out)
			require.Error(t, err)

			var statusErr *StatusError
			require.True(t, errors.As(err, &statusErr))
			assert.Equal(t, tt.status, statusErr.StatusCode)
			assert.Equal(t, "upstream says no", statusErr.Body)
			assert.Equal(t, tt.temporary, statusErr.Temporary())
			assert.False(t, errors.Is(err, ErrDecode))
		})
	}
}

func TestClient_PostJSON_DecodeError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte(`{"riskScore":`))
	}))
	defer srv.Close()

	var out echoResponse
	err := NewClient(time.Second).PostJSON(context.Background(), srv.URL, nil, echoRequest{}, &out)
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrDecode)

	var statusErr *StatusError
	assert.False(t, errors.As(err, &statusErr))
}

func TestClient_PostJSON_ContextCancelled(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte(`{}`))
	}))
	defer srv.Close()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	err := NewClient(time.Second).PostJSON(ctx, srv.URL, nil, echoRequest{}, nil)
	require.Error(t, err)
	assert.ErrorIs(t, err, context.Canceled)
}

func TestClient_PostJSON_UnencodableBody(t *testing.T) {
	err := NewClient(time.Second).PostJSON(context.Background(), "http://127.0.0.1:1", nil, make(chan int), nil)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "marshal request")
}
