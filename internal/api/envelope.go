package api

import (
	"time"

	"CryptoPulse/internal/model"
)

type successEnvelope struct {
	Success       bool                 `json:"success"`
	Results       []model.RankedResult `json:"results"`
	TotalAnalyzed int                  `json:"total_analyzed"`
	Timestamp     string               `json:"timestamp"`
	Message       string               `json:"message"`
	DataSource    string               `json:"data_source"`
}

type rateLimitEnvelope struct {
	Success       bool   `json:"success"`
	Error         string `json:"error"`
	Message       string `json:"message"`
	RemainingTime int    `json:"remainingTime"` // minutes
	Timestamp     string `json:"timestamp"`
}

type errorEnvelope struct {
	Success   bool   `json:"success"`
	Error     string `json:"error"`
	Timestamp string `json:"timestamp"`
	Detail    string `json:"detail,omitempty"`
}

type healthEnvelope struct {
	Status    string   `json:"status"`
	Message   string   `json:"message"`
	Timestamp string   `json:"timestamp"`
	Providers []string `json:"providers,omitempty"`
}

func timestamp(t time.Time) string {
	return t.UTC().Format(time.RFC3339)
}

// remainingMinutes rounds d up to whole minutes, never below one.
func remainingMinutes(d time.Duration) int {
	m := int((d + time.Minute - 1) / time.Minute)
	if m < 1 {
		return 1
	}
	return m
}
