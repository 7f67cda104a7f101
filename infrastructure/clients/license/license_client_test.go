package license_test

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"alfreds-toolbox/domain/model"
	"alfreds-toolbox/infrastructure/clients/license"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestVerifyCredentials_Success(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "application/json", r.Header.Get("Content-Type"))
		var body map[string]string
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		assert.Equal(t, "example.com", body["domain"])
		assert.Equal(t, "LIC-1", body["license_key"])

		_, _ = w.Write([]byte(`{"success":true,"data":{"credentials":{"spotify":{"client_id":"id","client_secret":"secret"}},"license":{"plan":"pro"}}}`))
	}))
	defer server.Close()

	client := license.NewLicenseClient(server.URL, nil)
	resp, err := client.VerifyCredentials(context.Background(), "example.com", "LIC-1")

	require.NoError(t, err)
	assert.True(t, resp.Success)
	assert.JSONEq(t, `{"client_id":"id","client_secret":"secret"}`, string(resp.Data.Credentials["spotify"]))
	assert.JSONEq(t, `{"plan":"pro"}`, string(resp.Data.License))
}

func TestVerifyCredentials_ErrorWithDetails(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusForbidden)
		_, _ = w.Write([]byte(`{"error":"License expired","details":"renew at vierless.de"}`))
	}))
	defer server.Close()

	_, err := license.NewLicenseClient(server.URL, nil).VerifyCredentials(context.Background(), "example.com", "LIC-1")

	var upstream *model.UpstreamError
	require.True(t, errors.As(err, &upstream))
	assert.Equal(t, http.StatusForbidden, upstream.StatusCode)
	assert.Equal(t, "License expired: renew at vierless.de", upstream.Message)
	assert.ErrorIs(t, err, model.ErrUpstream)
}

func TestVerifyCredentials_TransportError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	server.Close()

	_, err := license.NewLicenseClient(server.URL, nil).VerifyCredentials(context.Background(), "example.com", "LIC-1")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "API request failed")
}

func TestPing_ReturnsStatus(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
	}))
	defer server.Close()

	status, err := license.NewLicenseClient(server.URL, nil).Ping(context.Background(), "example.com", "bad")
	require.NoError(t, err)
	assert.Equal(t, http.StatusUnauthorized, status)
}
