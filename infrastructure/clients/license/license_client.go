package license

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"alfreds-toolbox/domain/model"
	"alfreds-toolbox/domain/repository"
)

const requestTimeout = 15 * time.Second

type verifyRequest struct {
	Domain     string `json:"domain"`
	LicenseKey string `json:"license_key"`
}

// Client calls the verify-credentials endpoint of the license server.
type Client struct {
	apiURL     string
	httpClient *http.Client
}

func NewLicenseClient(apiURL string, httpClient *http.Client) repository.ILicenseAPI {
	if httpClient == nil {
		httpClient = &http.Client{Timeout: requestTimeout}
	}
	return &Client{apiURL: apiURL, httpClient: httpClient}
}

func (c *Client) VerifyCredentials(ctx context.Context, domain, licenseKey string) (*model.LicenseResponse, error) {
	status, body, err := c.post(ctx, domain, licenseKey)
	if err != nil {
		return nil, &model.UpstreamError{Service: "license", Message: "API request failed: " + err.Error()}
	}

	var resp model.LicenseResponse
	decodeErr := json.Unmarshal(body, &resp)
	if status != http.StatusOK {
		msg := resp.Error
		if resp.Details != "" {
			msg += ": " + resp.Details
		}
		if msg == "" {
			msg = http.StatusText(status)
		}
		return nil, &model.UpstreamError{Service: "license", StatusCode: status, Message: msg}
	}
	if decodeErr != nil {
		return nil, &model.UpstreamError{Service: "license", StatusCode: status, Message: "invalid response body: " + decodeErr.Error()}
	}
	return &resp, nil
}

func (c *Client) Ping(ctx context.Context, domain, licenseKey string) (int, error) {
	status, _, err := c.post(ctx, domain, licenseKey)
	return status, err
}

func (c *Client) post(ctx context.Context, domain, licenseKey string) (int, []byte, error) {
	payload, err := json.Marshal(verifyRequest{Domain: domain, LicenseKey: licenseKey})
	if err != nil {
		return 0, nil, err
	}
	ctx, cancel := context.WithTimeout(ctx, requestTimeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.apiURL, bytes.NewReader(payload))
	if err != nil {
		return 0, nil, err
	}
	req.Header.Set("Content-Type", "application/json")

	res, err := c.httpClient.Do(req)
	if err != nil {
		return 0, nil, err
	}
	defer res.Body.Close()

	body, err := io.ReadAll(io.LimitReader(res.Body, 1<<20))
	if err != nil {
		return res.StatusCode, nil, fmt.Errorf("reading response: %w", err)
	}
	return res.StatusCode, body, nil
}
