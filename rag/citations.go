package rag

import (
	"fmt"
	"math"
	"strconv"
	"strings"

	"tickerbrief/config"
	"tickerbrief/types"
)

// BuildCitationMap records the first occurrence of each distinct source ID
// over the top chunks, so the map reflects only sources that actually back
// the synthesis. Relevance scores are rounded to 3 decimals.
func BuildCitationMap(topChunks []types.Chunk) types.CitationMap {
	cm := types.CitationMap{}

	for _, chunk := range topChunks {
		key := strconv.Itoa(chunk.SourceID)
		if _, seen := cm[key]; seen {
			continue
		}
		cm[key] = types.Citation{
			URL:            chunk.SourceURL,
			Title:          chunk.SourceTitle,
			SourceType:     chunk.SourceType,
			RelevanceScore: math.Round(chunk.RerankScore*1000) / 1000,
		}
	}

	return cm
}

// BuildContext concatenates "[id] text" blocks from top chunks, in the given
// (descending score) order, until the character cap would be exceeded. Whole
// low-relevance blocks are dropped rather than truncating earlier ones.
func BuildContext(topChunks []types.Chunk, maxChars int) string {
	var blocks []string
	total := 0

	for _, chunk := range topChunks {
		text := chunk.Text
		if len(text) > config.MaxChunkContextChars {
			text = text[:config.MaxChunkContextChars]
		}
		block := fmt.Sprintf("[%d] %s", chunk.SourceID, text)
		if total+len(block) > maxChars {
			break
		}
		blocks = append(blocks, block)
		total += len(block)
	}

	return strings.Join(blocks, "\n\n")
}

// Headlines returns the titles carried by the first n top chunks.
func Headlines(topChunks []types.Chunk, n int) []string {
	if len(topChunks) > n {
		topChunks = topChunks[:n]
	}
	headlines := make([]string, 0, n)
	for _, chunk := range topChunks {
		if chunk.SourceTitle != "" {
			headlines = append(headlines, chunk.SourceTitle)
		}
	}
	return headlines
}
