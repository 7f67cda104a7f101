package webhook

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"time"

	"alfreds-toolbox/domain/model"
	"alfreds-toolbox/domain/repository"
)

const requestTimeout = 15 * time.Second

// NewsletterWebhook forwards signups to the automation webhook.
type NewsletterWebhook struct {
	url        string
	httpClient *http.Client
}

func NewNewsletterWebhook(url string, httpClient *http.Client) repository.INewsletterWebhook {
	if httpClient == nil {
		httpClient = &http.Client{Timeout: requestTimeout}
	}
	return &NewsletterWebhook{url: url, httpClient: httpClient}
}

func (w *NewsletterWebhook) Subscribe(ctx context.Context, signup model.NewsletterSignup) error {
	if w.url == "" {
		return model.ErrConfigurationMissing
	}
	payload, err := json.Marshal(signup)
	if err != nil {
		return err
	}
	ctx, cancel := context.WithTimeout(ctx, requestTimeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, w.url, bytes.NewReader(payload))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")

	res, err := w.httpClient.Do(req)
	if err != nil {
		return &model.UpstreamError{Service: "newsletter", Message: err.Error()}
	}
	defer res.Body.Close()
	_, _ = io.Copy(io.Discard, io.LimitReader(res.Body, 64<<10))

	if res.StatusCode < 200 || res.StatusCode > 299 {
		return &model.UpstreamError{Service: "newsletter", StatusCode: res.StatusCode, Message: http.StatusText(res.StatusCode)}
	}
	return nil
}
