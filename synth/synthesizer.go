// Package synth produces the final structured brief from the top reranked
// chunks via a schema-constrained Gemini call, and owns the always-valid
// fallback document used whenever a stage cannot complete normally.
package synth

import (
	"context"
	"encoding/json"
	"fmt"
	"regexp"
	"strconv"
	"time"

	"google.golang.org/genai"

	"tickerbrief/config"
	"tickerbrief/rag"
	"tickerbrief/types"
)

const systemInstruction = `You are a financial research analyst. Synthesize the provided research chunks for %s (%s).

Rules:
- sentiment: bullish | neutral | bearish
- confidence values are 0.0-1.0 (>0.8 means high confidence from multiple sources)
- catalysts: 3-5 items, ordered by impact magnitude
- inline citations [N] must reference real source IDs from the context
- be concise, specific, and data-backed; avoid vague statements`

// Synthesizer generates a ResearchDocument from reranked chunks. Any failure
// (API error, malformed output, citation contract violation) is returned as
// an error; the caller degrades to the fallback document, never a
// half-built result.
type Synthesizer struct {
	client *genai.Client
	model  string
}

// New builds the synthesizer. An empty API key yields a synthesizer whose
// calls always fail, which the pipeline converts to fallback documents.
func New(ctx context.Context, apiKey, model string) (*Synthesizer, error) {
	if apiKey == "" {
		return &Synthesizer{model: model}, nil
	}
	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  apiKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create gemini client: %w", err)
	}
	return &Synthesizer{client: client, model: model}, nil
}

// synthesisOutput is the shape the generation call is constrained to.
type synthesisOutput struct {
	Synthesis         string            `json:"synthesis"`
	Catalysts         []types.Catalyst  `json:"catalysts"`
	KeyMetrics        map[string]string `json:"key_metrics"`
	RiskFactors       []string          `json:"risk_factors"`
	Sentiment         string            `json:"sentiment"`
	ConfidenceOverall float64           `json:"confidence_overall"`
}

// Synthesize builds the bounded context and citation map from the top
// chunks, runs the generation call, and cross-checks every citation marker
// against the map before accepting the result.
func (s *Synthesizer) Synthesize(ctx context.Context, ticker, exchange string, topChunks []types.Chunk) (*types.ResearchDocument, error) {
	if s.client == nil {
		return nil, fmt.Errorf("gemini API key not configured")
	}

	contextText := rag.BuildContext(topChunks, config.MaxContextChars)
	citations := rag.BuildCitationMap(topChunks)

	system := &genai.Content{
		Role:  "system",
		Parts: []*genai.Part{{Text: fmt.Sprintf(systemInstruction, ticker, exchange)}},
	}
	user := &genai.Content{
		Role:  "user",
		Parts: []*genai.Part{{Text: fmt.Sprintf("Research chunks for %s (%s):\n%s", ticker, exchange, contextText)}},
	}

	resp, err := s.client.Models.GenerateContent(ctx, s.model,
		[]*genai.Content{system, user},
		&genai.GenerateContentConfig{
			ResponseMIMEType: "application/json",
			ResponseSchema:   responseSchema(),
		})
	if err != nil {
		return nil, fmt.Errorf("gemini synthesis call failed: %w", err)
	}

	var out synthesisOutput
	if err := json.Unmarshal([]byte(resp.Text()), &out); err != nil {
		return nil, fmt.Errorf("failed to unmarshal synthesis JSON: %w", err)
	}
	if err := validate(out, citations); err != nil {
		return nil, err
	}

	doc := &types.ResearchDocument{
		Synthesis:         out.Synthesis,
		Catalysts:         out.Catalysts,
		KeyMetrics:        out.KeyMetrics,
		RiskFactors:       out.RiskFactors,
		Sentiment:         out.Sentiment,
		ConfidenceOverall: out.ConfidenceOverall,
		Sources:           citations,
		Headlines:         rag.Headlines(topChunks, config.MaxHeadlines),
		Ticker:            ticker,
		Exchange:          exchange,
		Timestamp:         time.Now().UTC().Format(time.RFC3339),
		PipelineMode:      types.PipelineLive,
	}
	return doc, nil
}

var citationMarkerRe = regexp.MustCompile(`\[(\d+)\]`)

// validate enforces the synthesis contract: sentiment in its enum, every
// [N] marker resolvable in the citation map, and every catalyst source ID a
// key of the map.
func validate(out synthesisOutput, citations types.CitationMap) error {
	switch out.Sentiment {
	case types.SentimentBullish, types.SentimentNeutral, types.SentimentBearish:
	default:
		return fmt.Errorf("synthesis returned invalid sentiment %q", out.Sentiment)
	}

	for _, m := range citationMarkerRe.FindAllStringSubmatch(out.Synthesis, -1) {
		if _, ok := citations[m[1]]; !ok {
			return fmt.Errorf("synthesis cites unknown source [%s]", m[1])
		}
	}
	for _, cat := range out.Catalysts {
		for _, id := range cat.SourceIDs {
			if _, ok := citations[strconv.Itoa(id)]; !ok {
				return fmt.Errorf("catalyst cites unknown source %d", id)
			}
		}
	}
	return nil
}

func responseSchema() *genai.Schema {
	catalystSchema := &genai.Schema{
		Type: genai.TypeObject,
		Properties: map[string]*genai.Schema{
			"catalyst":   {Type: genai.TypeString, Description: "Specific, actionable catalyst description."},
			"confidence": {Type: genai.TypeNumber},
			"source_ids": {Type: genai.TypeArray, Items: &genai.Schema{Type: genai.TypeInteger}},
			"impact":     {Type: genai.TypeString, Enum: []string{"positive", "negative", "neutral"}},
		},
		Required: []string{"catalyst", "confidence", "source_ids", "impact"},
	}

	return &genai.Schema{
		Type: genai.TypeObject,
		Properties: map[string]*genai.Schema{
			"synthesis": {
				Type:        genai.TypeString,
				Description: "2-4 sentence analysis with inline citations like [1], [2].",
			},
			"catalysts": {Type: genai.TypeArray, Items: catalystSchema},
			"key_metrics": {
				Type: genai.TypeObject,
				Properties: map[string]*genai.Schema{
					"note": {Type: genai.TypeString, Description: "Specific numbers or dates mentioned (EPS, revenue, price target)."},
				},
			},
			"risk_factors":       {Type: genai.TypeArray, Items: &genai.Schema{Type: genai.TypeString}},
			"sentiment":          {Type: genai.TypeString, Enum: []string{"bullish", "neutral", "bearish"}},
			"confidence_overall": {Type: genai.TypeNumber},
		},
		Required: []string{"synthesis", "catalysts", "key_metrics", "risk_factors", "sentiment", "confidence_overall"},
	}
}
