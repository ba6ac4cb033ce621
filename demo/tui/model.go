package tui

import (
	"fmt"

	tea "github.com/charmbracelet/bubbletea"

	"tickerbrief/types"
)

// Model represents the TUI client state (thin client over the SSE stream).
type Model struct {
	Client      *StreamClient
	Ticker      string
	Exchange    string
	CompanyName string

	// Local UI state (synced from stream events)
	Status   string
	Logs     []string
	Result   *types.ResearchDocument
	Err      error
	Finished bool

	events chan types.StreamEvent
	errs   chan error
}

// NewModel creates a new TUI model.
func NewModel(baseURL, ticker, exchange, companyName string) Model {
	return Model{
		Client:      NewStreamClient(baseURL),
		Ticker:      ticker,
		Exchange:    exchange,
		CompanyName: companyName,
		Status:      "connecting",
		events:      make(chan types.StreamEvent, 16),
		errs:        make(chan error, 1),
	}
}

// Init implements tea.Model interface: open the stream and start draining.
func (m Model) Init() tea.Cmd {
	go m.Client.Stream(m.Ticker, m.Exchange, m.CompanyName, m.events, m.errs)
	return m.waitForEvent()
}

// waitForEvent blocks on the next stream event or error.
func (m Model) waitForEvent() tea.Cmd {
	return func() tea.Msg {
		select {
		case err := <-m.errs:
			return StreamErrorMsg{Err: err}
		case ev, ok := <-m.events:
			if !ok {
				return StreamClosedMsg{}
			}
			return EventMsg{Event: ev}
		}
	}
}

// AddLog appends a log line, keeping the tail short.
func (m Model) AddLog(line string) Model {
	m.Logs = append(m.Logs, line)
	if len(m.Logs) > 10 {
		m.Logs = m.Logs[len(m.Logs)-10:]
	}
	return m
}

// statusText renders the current stage headline.
func (m Model) statusText() string {
	if m.Err != nil {
		return alertStyle.Render(fmt.Sprintf("❌ %v", m.Err))
	}

	switch m.Status {
	case "connecting":
		return stageStyle.Render("🔌 Connecting to pipeline...")
	case types.StatusStarting:
		return stageStyle.Render("🚀 Pipeline starting...")
	case types.StatusCacheHit:
		return stageStyle.Render("⚡ Cached brief found")
	case types.StatusSearching, types.StatusSearchDone:
		return stageStyle.Render("🔍 Searching sources...")
	case types.StatusFetching, types.StatusFetchDone:
		return stageStyle.Render("⏳ Fetching articles...")
	case types.StatusChunking, types.StatusChunkDone:
		return stageStyle.Render("✂️  Chunking content...")
	case types.StatusReranking, types.StatusRerankDone:
		return stageStyle.Render("🧮 Reranking chunks...")
	case types.StatusSynthesizing:
		return stageStyle.Render("🧠 Synthesizing brief...")
	case types.StatusComplete:
		return completeStyle.Render("✅ COMPLETE")
	case types.StatusError:
		return alertStyle.Render("⚠️  Pipeline degraded to fallback")
	default:
		return ""
	}
}
