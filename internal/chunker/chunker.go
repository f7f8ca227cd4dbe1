package chunker

import (
	"strings"
)

func DefaultOptions() ChunkOptions {
	return ChunkOptions{
		MaxTokens:       500,
		OverlapTokens:   50,
		PreserveHeaders: true,
	}
}

// splits extracted document text into chunks small enough to embed.
// markdown-style headers start new sections; oversized sections are split by
// paragraph, and paragraphs that are still too large by words with overlap.
func ChunkText(text string, opts ChunkOptions) []Chunk {
	if opts.MaxTokens <= 0 {
		opts = DefaultOptions()
	}

	text = normalizeText(text)
	if text == "" {
		return nil
	}

	var chunks []Chunk

	for _, section := range splitByHeaders(text) {
		var pieces []string

		if estimateTokens(section.Content) <= opts.MaxTokens {
			pieces = []string{section.Content}
		} else {
			pieces = splitLargeSection(section, opts)
		}

		for _, piece := range pieces {
			piece = strings.TrimSpace(piece)
			if piece == "" {
				continue
			}

			chunks = append(chunks, Chunk{
				Index:        len(chunks),
				SectionTitle: section.Title,
				Content:      piece,
			})
		}
	}

	return chunks
}

// convenience for callers that only need the text of each chunk
func Contents(chunks []Chunk) []string {
	contents := make([]string, len(chunks))
	for i, c := range chunks {
		contents[i] = c.Content
	}

	return contents
}
