package collector

import (
	"context"
	"encoding/json"
	"time"

	"github.com/go-resty/resty/v2"
)

func newRestClient(baseURL, proxyURL string, timeout time.Duration) *resty.Client {
	client := resty.New().
		SetBaseURL(baseURL).
		SetTimeout(timeout).
		SetHeader("Accept", "application/json").
		SetHeader("User-Agent", "CryptoPulse/1.0")
	if proxyURL != "" {
		client.SetProxy(proxyURL)
	}
	return client
}

// getJSON performs a GET and decodes the body into out, mapping each failure
// mode onto a ProviderError.
func getJSON(ctx context.Context, client *resty.Client, provider, path string, query map[string]string, out any) error {
	resp, err := client.R().
		SetContext(ctx).
		SetQueryParams(query).
		Get(path)
	if err != nil {
		return transportError(provider, err)
	}
	if !resp.IsSuccess() {
		return statusError(provider, resp.StatusCode(), resp.Body())
	}
	if err := json.Unmarshal(resp.Body(), out); err != nil {
		return malformedError(provider, err)
	}
	return nil
}
