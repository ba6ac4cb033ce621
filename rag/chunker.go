// Package rag turns fetched source content into overlapping, source-tagged
// chunks and builds the citation map and synthesis context from the chunks
// that survive reranking.
package rag

import (
	"strings"

	"tickerbrief/config"
	"tickerbrief/types"
)

// ChunkText splits text into overlapping word-level windows. Overlap keeps
// context continuity between adjacent chunks. Windows shorter than
// MinChunkWords are dropped at creation; they are boundary artifacts, not
// content.
func ChunkText(text string, chunkSize, overlap int) []string {
	words := strings.Fields(text)
	step := chunkSize - overlap
	if step < 1 {
		step = 1
	}

	var chunks []string
	for i := 0; i < len(words); i += step {
		end := i + chunkSize
		if end > len(words) {
			end = len(words)
		}
		window := words[i:end]
		if len(window) >= config.MinChunkWords {
			chunks = append(chunks, strings.Join(window, " "))
		}
	}
	return chunks
}

// BuildChunks converts enriched sources into a flat chunk list. SourceID is
// assigned per source, 1-based, in processing order; sources with too little
// content do not consume an ID.
func BuildChunks(sources []types.FetchedSource) []types.Chunk {
	var all []types.Chunk
	sourceID := 1

	for _, src := range sources {
		content := strings.TrimSpace(src.Content)
		if len(content) < config.MinSourceContentChars {
			continue
		}

		for _, text := range ChunkText(content, config.ChunkSizeWords, config.ChunkOverlapWords) {
			all = append(all, types.Chunk{
				Text:        text,
				SourceID:    sourceID,
				SourceURL:   src.URL,
				SourceTitle: src.Title,
				SourceType:  src.Provider,
				Timestamp:   src.Timestamp,
			})
		}
		sourceID++
	}

	return all
}
