package main

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-resty/resty/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func serve(t *testing.T, status int, body string) *resty.Client {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/api/analyze", r.URL.Path)
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(status)
		w.Write([]byte(body))
	}))
	t.Cleanup(srv.Close)
	return resty.New().SetBaseURL(srv.URL)
}

func TestFetch_Success(t *testing.T) {
	client := serve(t, http.StatusOK, `{"success":true,"results":[{"symbol":"BTC","name":"Bitcoin","current_price":50000,"type":"LONG","potential_gain":20,"signal":"...","score":0.75}],"total_analyzed":16,"timestamp":"2024-05-01T08:00:00Z","message":"ok","data_source":"coingecko"}`)

	resp, err := fetch(context.Background(), client)
	require.NoError(t, err)
	require.Len(t, resp.Results, 1)
	assert.Equal(t, "BTC", resp.Results[0].Symbol)
	assert.Equal(t, 0.75, resp.Results[0].Score)
	assert.Equal(t, 16, resp.TotalAnalyzed)
	assert.Equal(t, "coingecko", resp.DataSource)
}

func TestFetch_RateLimited(t *testing.T) {
	client := serve(t, http.StatusTooManyRequests, `{"success":false,"error":"Rate limit exceeded","message":"wait","remainingTime":4,"timestamp":"x"}`)

	_, err := fetch(context.Background(), client)
	require.Error(t, err)
	assert.Equal(t, "Rate limit exceeded, try again in 4 minute(s)", err.Error())
}

func TestFetch_ServerError(t *testing.T) {
	client := serve(t, http.StatusInternalServerError, `{"success":false,"error":"Market data is unavailable from every source","timestamp":"x"}`)

	_, err := fetch(context.Background(), client)
	require.Error(t, err)
	assert.Equal(t, "server error: Market data is unavailable from every source", err.Error())
}

func TestFetch_ConnectionError(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	srv.Close()

	_, err := fetch(context.Background(), resty.New().SetBaseURL(srv.URL))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "connection error")
}
