package tui

import (
	"fmt"

	tea "github.com/charmbracelet/bubbletea"

	"tickerbrief/types"
)

// Update implements tea.Model interface
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "ctrl+c", "q":
			return m, tea.Quit
		}
		return m, nil
	case EventMsg:
		return m.handleEvent(msg.Event)
	case StreamClosedMsg:
		m.Finished = true
		return m, nil
	case StreamErrorMsg:
		m.Err = msg.Err
		m.Finished = true
		return m, nil
	}
	return m, nil
}

// handleEvent folds one stream event into the UI state.
func (m Model) handleEvent(ev types.StreamEvent) (tea.Model, tea.Cmd) {
	m.Status = ev.Status

	switch ev.Status {
	case types.StatusSearchDone:
		if ev.Breakdown != nil {
			m = m.AddLog(fmt.Sprintf("Sources: finnhub=%d duckduckgo=%d sec_edgar=%d",
				ev.Breakdown.Finnhub, ev.Breakdown.DuckDuckGo, ev.Breakdown.SECEdgar))
		}
	case types.StatusFetchDone:
		if ev.ArticlesFetched != nil {
			m = m.AddLog(fmt.Sprintf("Fetched %d articles", *ev.ArticlesFetched))
		}
	case types.StatusChunkDone:
		if ev.TotalChunks != nil {
			m = m.AddLog(fmt.Sprintf("Built %d chunks", *ev.TotalChunks))
		}
	case types.StatusRerankDone:
		if ev.TopChunks != nil {
			m = m.AddLog(fmt.Sprintf("Kept top %d chunks", *ev.TopChunks))
		}
	case types.StatusComplete:
		m.Result = ev.Result
	case types.StatusError:
		m.Result = ev.Result
		m = m.AddLog("Pipeline error: " + ev.Message)
	default:
		if ev.Message != "" {
			m = m.AddLog(ev.Message)
		}
	}

	return m, m.waitForEvent()
}
