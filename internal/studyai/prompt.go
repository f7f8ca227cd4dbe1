package studyai

import (
	"fmt"
	"strings"

	"codeberg.org/studyhall/server/internal/retriever"
)

const banner = "═══════════════════════════════════════════════════════════\n"

func writeSection(builder *strings.Builder, title, body string) {
	builder.WriteString(banner)
	builder.WriteString(title)
	builder.WriteString("\n")
	builder.WriteString(banner)
	builder.WriteString("\n")
	builder.WriteString(body)
	builder.WriteString("\n\n")
}

func buildFlashcardPrompt(source string) string {
	var builder strings.Builder

	writeSection(&builder, "STUDY NOTES", source)
	writeSection(&builder, "INSTRUCTIONS", `You write flashcards for a student revising the notes above.

	Guidelines:
	- Write between 5 and 15 cards covering the most important facts and definitions
	- Each question must be answerable from the notes alone
	- Keep answers short, one or two sentences

	Response format:
	- Return ONLY a JSON array of objects with "question" and "answer" fields
	- No markdown, no commentary`)

	return builder.String()
}

func buildQuizPrompt(source string) string {
	var builder strings.Builder

	writeSection(&builder, "STUDY NOTES", source)
	writeSection(&builder, "INSTRUCTIONS", `You write a quiz for a student revising the notes above.

	Guidelines:
	- Write between 5 and 10 questions mixing "mcq" and "fill_in_the_blank"
	- Label each question "easy", "medium" or "hard"
	- MCQ questions have exactly 4 options and the correct answer is one of them
	- Fill-in-the-blank questions mark the blank with ___ and have no options

	Response format:
	- Return ONLY a JSON array of objects with "question_type", "difficulty",
	  "question", "options" and "correct_answer" fields
	- No markdown, no commentary`)

	return builder.String()
}

func buildTutorPrompt(chunks []retriever.SearchResult) string {
	var builder strings.Builder

	var notes strings.Builder
	for i, chunk := range chunks {
		notes.WriteString("─────────────────────────────────────────\n")

		if chunk.SectionTitle != "" {
			notes.WriteString(fmt.Sprintf("Excerpt %d (%s)\n", i+1, chunk.SectionTitle))
		} else {
			notes.WriteString(fmt.Sprintf("Excerpt %d\n", i+1))
		}

		notes.WriteString("─────────────────────────────────────────\n")
		notes.WriteString(chunk.Content)
		notes.WriteString("\n\n")
	}

	writeSection(&builder, "RELEVANT NOTES", strings.TrimSpace(notes.String()))
	writeSection(&builder, "INSTRUCTIONS", fmt.Sprintf(`You are a patient tutor helping a student understand their own notes.

	Guidelines:
	- Answer step by step using only the RELEVANT NOTES
	- If the notes do not cover the question, reply exactly: %s
	- Keep the answer under 300 words`, NoContextAnswer))

	return builder.String()
}
