package webhook_test

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"alfreds-toolbox/domain/model"
	"alfreds-toolbox/infrastructure/clients/webhook"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSubscribe(t *testing.T) {
	var got model.NewsletterSignup
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "application/json", r.Header.Get("Content-Type"))
		require.NoError(t, json.NewDecoder(r.Body).Decode(&got))
		_, _ = w.Write([]byte("Accepted"))
	}))
	defer server.Close()

	signup := model.NewsletterSignup{Email: "a@example.com", PrivacyAccepted: true, Domain: "example.com", Language: "de"}
	require.NoError(t, webhook.NewNewsletterWebhook(server.URL, nil).Subscribe(context.Background(), signup))
	assert.Equal(t, signup, got)
}

func TestSubscribe_Failure(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
	}))
	defer server.Close()

	err := webhook.NewNewsletterWebhook(server.URL, nil).Subscribe(context.Background(), model.NewsletterSignup{Email: "a@example.com"})
	assert.ErrorIs(t, err, model.ErrUpstream)
}

func TestSubscribe_NotConfigured(t *testing.T) {
	err := webhook.NewNewsletterWebhook("", nil).Subscribe(context.Background(), model.NewsletterSignup{})
	assert.ErrorIs(t, err, model.ErrConfigurationMissing)
}
