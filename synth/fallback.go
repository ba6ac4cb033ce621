package synth

import (
	"fmt"
	"time"

	"tickerbrief/types"
)

// Fallback returns the degraded-but-structurally-valid document produced
// whenever any stage cannot complete normally. Every required field is
// populated; there is no other user-visible failure shape.
func Fallback(ticker, exchange string) *types.ResearchDocument {
	return &types.ResearchDocument{
		Synthesis: fmt.Sprintf(
			"Live research pipeline temporarily unavailable for %s (%s). "+
				"Baseline analysis: monitor upcoming earnings releases, sector ETF flows, "+
				"and Fed policy guidance for near-term catalysts.",
			ticker, exchange),
		Catalysts: []types.Catalyst{
			{
				Catalyst:   "Sector momentum - monitor ETF flow data for institutional positioning",
				Confidence: 0.55,
				SourceIDs:  []int{},
				Impact:     "neutral",
			},
			{
				Catalyst:   "Earnings season - quarterly results typically drive 5-15% price moves",
				Confidence: 0.60,
				SourceIDs:  []int{},
				Impact:     "neutral",
			},
		},
		KeyMetrics: map[string]string{
			"status":      "fallback_mode",
			"data_source": "baseline_market_intelligence",
		},
		RiskFactors: []string{
			"Live news feed temporarily unavailable",
			"Analysis based on baseline patterns only",
		},
		Sentiment:         types.SentimentNeutral,
		ConfidenceOverall: 0.45,
		Sources:           types.CitationMap{},
		Headlines:         []string{},
		Ticker:            ticker,
		Exchange:          exchange,
		Timestamp:         time.Now().UTC().Format(time.RFC3339),
		PipelineMode:      types.PipelineFallback,
	}
}
