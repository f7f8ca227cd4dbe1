package studyai

import (
	"encoding/json"
	"fmt"
	"strings"
	"unicode/utf8"
)

// generation prompts carry at most this much source text
const maxSourceChars = 48000

func truncateSource(s string) string {
	if len(s) <= maxSourceChars {
		return s
	}

	cut := maxSourceChars
	for cut > 0 && !utf8.RuneStart(s[cut]) {
		cut--
	}

	return s[:cut]
}

// extracts the JSON payload from a reply that may be wrapped in a markdown fence
// or surrounded by prose
func extractJSON(reply string) string {
	reply = strings.TrimSpace(reply)

	if strings.Count(reply, "```") >= 2 {
		start := strings.Index(reply, "```") + 3

		if nl := strings.Index(reply[start:], "\n"); nl != -1 {
			start += nl + 1
			if end := strings.Index(reply[start:], "```"); end != -1 {
				reply = strings.TrimSpace(reply[start : start+end])
			}
		}
	}

	first := strings.Index(reply, "[")
	last := strings.LastIndex(reply, "]")

	if first == -1 || last < first {
		return reply
	}

	return reply[first : last+1]
}

func parseFlashcards(reply string) ([]Flashcard, error) {
	var cards []Flashcard
	if err := json.Unmarshal([]byte(extractJSON(reply)), &cards); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrMalformedReply, err)
	}

	valid := cards[:0]
	for _, c := range cards {
		c.Question = strings.TrimSpace(c.Question)
		c.Answer = strings.TrimSpace(c.Answer)

		if c.Question == "" || c.Answer == "" {
			continue
		}

		valid = append(valid, c)
	}

	if len(valid) == 0 {
		return nil, fmt.Errorf("%w: no usable flashcards", ErrMalformedReply)
	}

	return valid, nil
}

func parseQuiz(reply string) ([]QuizItem, error) {
	var items []QuizItem
	if err := json.Unmarshal([]byte(extractJSON(reply)), &items); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrMalformedReply, err)
	}

	valid := items[:0]
	for _, item := range items {
		item.QuestionType = normalizeQuestionType(item.QuestionType)
		item.Difficulty = strings.ToLower(strings.TrimSpace(item.Difficulty))
		item.Question = strings.TrimSpace(item.Question)
		item.CorrectAnswer = strings.TrimSpace(item.CorrectAnswer)

		if item.Question == "" || item.CorrectAnswer == "" {
			continue
		}

		if item.QuestionType == "mcq" && len(item.Options) < 2 {
			continue
		}

		valid = append(valid, item)
	}

	if len(valid) == 0 {
		return nil, fmt.Errorf("%w: no usable quiz items", ErrMalformedReply)
	}

	return valid, nil
}

func normalizeQuestionType(t string) string {
	switch strings.ToLower(strings.TrimSpace(t)) {
	case "mcq", "multiple_choice", "multiple choice":
		return "mcq"
	case "fill_in_the_blank", "fill-in-the-blank", "fill in the blank":
		return "fill_in_the_blank"
	default:
		return strings.ToLower(strings.TrimSpace(t))
	}
}
