package chunker

import (
	"fmt"
	"regexp"
	"strings"
)

var (
	headerRegex     = regexp.MustCompile(`^(#{1,6})\s+(.+)$`)
	blankLinesRegex = regexp.MustCompile(`\n{3,}`)
)

func normalizeText(text string) string {
	text = strings.ReplaceAll(text, "\r\n", "\n")
	text = strings.ReplaceAll(text, "\r", "\n")
	text = blankLinesRegex.ReplaceAllString(text, "\n\n")

	return strings.TrimSpace(text)
}

func splitByHeaders(content string) []Section {
	lines := strings.Split(content, "\n")

	var sections []Section
	var currentSection *Section

	for _, line := range lines {
		matches := headerRegex.FindStringSubmatch(line)

		if len(matches) > 0 {
			if currentSection != nil && strings.TrimSpace(currentSection.Content) != "" {
				sections = append(sections, *currentSection)
			}

			currentSection = &Section{
				Title:   strings.TrimSpace(matches[2]),
				Level:   len(matches[1]),
				Content: line + "\n",
			}
		} else if currentSection != nil {
			currentSection.Content += line + "\n"
		} else {
			// content before any header - create an untitled section
			currentSection = &Section{
				Content: line + "\n",
			}
		}
	}

	if currentSection != nil && strings.TrimSpace(currentSection.Content) != "" {
		sections = append(sections, *currentSection)
	}

	return sections
}

func splitLargeSection(section Section, opts ChunkOptions) []string {
	var chunks []string
	paragraphs := strings.Split(section.Content, "\n\n")

	var currentChunk strings.Builder
	headerWritten := false
	header := ""

	if opts.PreserveHeaders && section.Title != "" {
		header = fmt.Sprintf("%s %s", strings.Repeat("#", section.Level), section.Title)
	}

	flush := func() {
		if currentChunk.Len() > 0 {
			chunks = append(chunks, strings.TrimSpace(currentChunk.String()))
			currentChunk.Reset()
			headerWritten = false
		}
	}

	for _, para := range paragraphs {
		para = strings.TrimSpace(para)

		if para == "" || para == header {
			continue
		}

		// a single paragraph over budget is cut by words
		if estimateTokens(para) > opts.MaxTokens {
			flush()

			for _, piece := range splitByWords(para, opts) {
				if header != "" {
					piece = header + "\n\n" + piece
				}

				chunks = append(chunks, piece)
			}

			continue
		}

		testContent := currentChunk.String() + "\n\n" + para

		if estimateTokens(testContent) > opts.MaxTokens && currentChunk.Len() > 0 {
			flush()
		}

		if !headerWritten && header != "" {
			currentChunk.WriteString(header + "\n\n")
			headerWritten = true
		} else if currentChunk.Len() > 0 {
			currentChunk.WriteString("\n\n")
		}

		currentChunk.WriteString(para)
	}

	flush()

	return chunks
}

// windows of whole words sized to MaxTokens, each repeating roughly
// OverlapTokens of the previous window
func splitByWords(text string, opts ChunkOptions) []string {
	words := strings.Fields(text)
	if len(words) == 0 {
		return nil
	}

	budget := opts.MaxTokens * 4
	overlapBudget := opts.OverlapTokens * 4

	var pieces []string
	start := 0

	for start < len(words) {
		end := start
		size := 0

		for end < len(words) && (end == start || size+len(words[end])+1 <= budget) {
			size += len(words[end]) + 1
			end++
		}

		pieces = append(pieces, strings.Join(words[start:end], " "))

		if end == len(words) {
			break
		}

		// walk back from end to cover the overlap, always moving forward
		next := end
		for back := 0; next > start+1 && back+len(words[next-1])+1 <= overlapBudget; next-- {
			back += len(words[next-1]) + 1
		}

		start = next
	}

	return pieces
}

func estimateTokens(text string) int {
	return len(text) / 4
}
