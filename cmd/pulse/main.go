package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/go-resty/resty/v2"

	"CryptoPulse/internal/model"
	"CryptoPulse/internal/render"
)

type analyzeResponse struct {
	Success       bool                 `json:"success"`
	Results       []model.RankedResult `json:"results"`
	TotalAnalyzed int                  `json:"total_analyzed"`
	Timestamp     string               `json:"timestamp"`
	Message       string               `json:"message"`
	DataSource    string               `json:"data_source"`
	Error         string               `json:"error"`
	RemainingTime int                  `json:"remainingTime"`
}

func main() {
	defaultURL := "http://localhost:8080"
	if v := os.Getenv("CRYPTOPULSE_URL"); v != "" {
		defaultURL = v
	}
	baseURL := flag.String("url", defaultURL, "CryptoPulse server address")
	width := flag.Int("width", render.DefaultWidth, "card width")
	timeout := flag.Duration("timeout", 5*time.Minute, "request timeout")
	flag.Parse()

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	fmt.Println(render.Title())
	fmt.Println()

	client := resty.New().SetBaseURL(strings.TrimRight(*baseURL, "/")).SetTimeout(*timeout)

	stopSpinner := spin(ctx)
	resp, err := fetch(ctx, client)
	stopSpinner()

	if err != nil {
		fmt.Println(render.Error(err.Error()))
		os.Exit(1)
	}
	if len(resp.Results) == 0 {
		fmt.Println("No trading opportunities cleared the threshold right now.")
	} else {
		fmt.Println(render.Cards(resp.Results, *width))
	}
	fmt.Println()
	fmt.Println(render.Summary(resp.TotalAnalyzed, len(resp.Results), resp.DataSource, resp.Timestamp))
}

// fetch runs one analysis on the server and turns failure envelopes into errors.
func fetch(ctx context.Context, client *resty.Client) (*analyzeResponse, error) {
	var out analyzeResponse
	r, err := client.R().
		SetContext(ctx).
		SetHeader("Content-Type", "application/json").
		SetResult(&out).
		SetError(&out).
		Post("/api/analyze")
	if err != nil {
		if ctx.Err() != nil {
			return nil, fmt.Errorf("analysis cancelled")
		}
		return nil, fmt.Errorf("connection error: %w", err)
	}

	switch {
	case r.StatusCode() == 429:
		return nil, fmt.Errorf("%s, try again in %d minute(s)", out.Error, out.RemainingTime)
	case r.IsError():
		msg := out.Error
		if msg == "" {
			msg = r.Status()
		}
		return nil, fmt.Errorf("server error: %s", msg)
	case !out.Success:
		return nil, fmt.Errorf("analysis failed: %s", out.Error)
	}
	return &out, nil
}

// spin redraws the loading line until the returned func is called.
func spin(ctx context.Context) func() {
	done := make(chan struct{})
	finished := make(chan struct{})
	go func() {
		defer close(finished)
		ticker := time.NewTicker(100 * time.Millisecond)
		defer ticker.Stop()
		for frame := 0; ; frame++ {
			fmt.Print("\r" + render.Loading(frame))
			select {
			case <-done:
				fmt.Print("\r\033[K")
				return
			case <-ctx.Done():
				fmt.Print("\r\033[K")
				return
			case <-ticker.C:
			}
		}
	}()
	return func() {
		close(done)
		<-finished
	}
}
