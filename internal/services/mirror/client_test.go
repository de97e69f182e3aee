package mirror

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNew_Unconfigured(t *testing.T) {
	assert.Nil(t, New(nil))
	assert.Nil(t, New(&ClientConfig{}))
	assert.Nil(t, New(&ClientConfig{BaseURL: "https://secondary.example.com"}))
	assert.Nil(t, New(&ClientConfig{ServiceKey: "svc"}))
}

func TestNew_PrefersServiceKey(t *testing.T) {
	c := New(&ClientConfig{
		BaseURL:    "https://secondary.example.com/",
		ServiceKey: "service-key",
		AnonKey:    "anon-key",
	})
	require.NotNil(t, c)
	assert.Equal(t, "service-key", c.apiKey)
	assert.Equal(t, "https://secondary.example.com", c.baseURL)
}

func TestNew_FallsBackToAnonKey(t *testing.T) {
	c := New(&ClientConfig{
		BaseURL: "https://secondary.example.com",
		AnonKey: "anon-key",
	})
	require.NotNil(t, c)
	assert.Equal(t, "anon-key", c.apiKey)
}

func TestUpdatePassengerName(t *testing.T) {
	var gotReq *http.Request
	var gotBody []byte

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotReq = r.Clone(context.Background())
		gotBody, _ = io.ReadAll(r.Body)
		w.WriteHeader(http.StatusNoContent)
	}))
	defer srv.Close()

	c := New(&ClientConfig{BaseURL: srv.URL, ServiceKey: "service-key"})
	require.NotNil(t, c)

	err := c.UpdatePassengerName(context.Background(), "PNR1234567", "Alice")
	require.NoError(t, err)

	require.NotNil(t, gotReq)
	assert.Equal(t, http.MethodPatch, gotReq.Method)
	assert.Equal(t, "/rest/v1/tickets", gotReq.URL.Path)
	assert.Equal(t, "eq.PNR1234567", gotReq.URL.Query().Get("pnr_number"))

	assert.Equal(t, "application/json", gotReq.Header.Get("Content-Type"))
	assert.Equal(t, "service-key", gotReq.Header.Get("apikey"))
	assert.Equal(t, "Bearer service-key", gotReq.Header.Get("Authorization"))
	assert.Equal(t, "return=minimal", gotReq.Header.Get("Prefer"))

	var payload map[string]string
	require.NoError(t, json.Unmarshal(gotBody, &payload))
	assert.Equal(t, map[string]string{"passenger_name": "Alice"}, payload)
}

func TestUpdatePassengerName_RemoteError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, `{"message":"permission denied"}`, http.StatusForbidden)
	}))
	defer srv.Close()

	c := New(&ClientConfig{BaseURL: srv.URL, AnonKey: "anon-key"})
	require.NotNil(t, c)

	err := c.UpdatePassengerName(context.Background(), "PNR1234567", "Alice")
	assert.ErrorContains(t, err, "status 403")
}
