package tui

import (
	"bufio"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strings"

	"tickerbrief/types"
)

// StreamClient consumes the research SSE endpoint and forwards each event
// onto a channel the tea program drains.
type StreamClient struct {
	baseURL string
	client  *http.Client
}

// NewStreamClient creates a client for the given API base URL. No timeout on
// the HTTP client: a research stream legitimately runs for tens of seconds.
func NewStreamClient(baseURL string) *StreamClient {
	return &StreamClient{
		baseURL: strings.TrimRight(baseURL, "/"),
		client:  &http.Client{},
	}
}

// Stream opens the SSE connection and delivers every event to events. The
// channel is closed when the stream ends; a connection or protocol error is
// returned on errs.
func (c *StreamClient) Stream(ticker, exchange, companyName string, events chan<- types.StreamEvent, errs chan<- error) {
	defer close(events)

	q := url.Values{}
	q.Set("ticker", ticker)
	q.Set("exchange", exchange)
	if companyName != "" {
		q.Set("company_name", companyName)
	}

	resp, err := c.client.Get(c.baseURL + "/api/research/stream?" + q.Encode())
	if err != nil {
		errs <- fmt.Errorf("failed to connect to stream: %w", err)
		return
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		errs <- fmt.Errorf("server returned %d", resp.StatusCode)
		return
	}

	scanner := bufio.NewScanner(resp.Body)
	scanner.Buffer(make([]byte, 0, 64*1024), 1<<20)
	for scanner.Scan() {
		line := scanner.Text()
		payload, ok := strings.CutPrefix(line, "data: ")
		if !ok {
			continue
		}

		var ev types.StreamEvent
		if err := json.Unmarshal([]byte(payload), &ev); err != nil {
			errs <- fmt.Errorf("bad event payload: %w", err)
			return
		}
		events <- ev
	}
	if err := scanner.Err(); err != nil {
		errs <- fmt.Errorf("stream read error: %w", err)
	}
}
