package studyai

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"codeberg.org/studyhall/server/internal/llm"
	"codeberg.org/studyhall/server/internal/logger"
)

const (
	generationMaxTokens = 4096
	tutorMaxTokens      = 1024
	defaultTopK         = 5
)

func New(ret Retriever, generator llm.TextGenerator, topK int) *Assistant {
	if topK <= 0 {
		topK = defaultTopK
	}

	return &Assistant{
		retriever: ret,
		generator: generator,
		topK:      topK,
	}
}

func (a *Assistant) GenerateFlashcards(ctx context.Context, text string) ([]Flashcard, error) {
	text = strings.TrimSpace(text)
	if text == "" {
		return nil, ErrEmptySource
	}

	var cards []Flashcard

	err := a.generateStructured(ctx, buildFlashcardPrompt(truncateSource(text)), "Write the flashcards now.",
		func(reply string) error {
			var err error
			cards, err = parseFlashcards(reply)
			return err
		})
	if err != nil {
		return nil, fmt.Errorf("failed to generate flashcards: %w", err)
	}

	return cards, nil
}

func (a *Assistant) GenerateQuiz(ctx context.Context, text string) ([]QuizItem, error) {
	text = strings.TrimSpace(text)
	if text == "" {
		return nil, ErrEmptySource
	}

	var items []QuizItem

	err := a.generateStructured(ctx, buildQuizPrompt(truncateSource(text)), "Write the quiz now.",
		func(reply string) error {
			var err error
			items, err = parseQuiz(reply)
			return err
		})
	if err != nil {
		return nil, fmt.Errorf("failed to generate quiz: %w", err)
	}

	return items, nil
}

// AnswerQuestion retrieves the chunks of fileID closest to the question and asks the
// model to answer from them. with nothing retrieved the fixed NoContextAnswer is returned
// without calling the model.
func (a *Assistant) AnswerQuestion(ctx context.Context, fileID, question string) (*TutorAnswer, error) {
	chunks, err := a.retriever.SearchFile(ctx, fileID, question, a.topK)
	if err != nil {
		return nil, fmt.Errorf("failed to retrieve notes: %w", err)
	}

	if len(chunks) == 0 {
		return &TutorAnswer{Answer: NoContextAnswer}, nil
	}

	response, err := a.generator.GenerateText(ctx, llm.TextGenerationRequest{
		SystemPrompt: buildTutorPrompt(chunks),
		Messages:     []llm.Message{{Role: "user", Content: question}},
		MaxTokens:    tutorMaxTokens,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to generate answer: %w", err)
	}

	return &TutorAnswer{
		Answer:          response.Text,
		ChunksRetrieved: len(chunks),
		InputTokens:     response.Usage.InputTokens,
		OutputTokens:    response.Usage.OutputTokens,
	}, nil
}

// calls the model and hands the reply to parse. a reply that cannot be parsed is retried
// once with the parse error in the conversation.
func (a *Assistant) generateStructured(ctx context.Context, systemPrompt, instruction string, parse func(string) error) error {
	messages := []llm.Message{{Role: "user", Content: instruction}}

	response, err := a.generator.GenerateText(ctx, llm.TextGenerationRequest{
		SystemPrompt: systemPrompt,
		Messages:     messages,
		MaxTokens:    generationMaxTokens,
	})
	if err != nil {
		return err
	}

	parseErr := parse(response.Text)
	if parseErr == nil {
		return nil
	}

	if !errors.Is(parseErr, ErrMalformedReply) {
		return parseErr
	}

	logger.FromContext(ctx).Warn("model reply was not valid JSON, retrying once", "error", parseErr)

	messages = append(messages,
		llm.Message{Role: "assistant", Content: response.Text},
		llm.Message{Role: "user", Content: fmt.Sprintf(
			"that reply could not be parsed: %v. return only the JSON array, nothing else.", parseErr)},
	)

	retry, err := a.generator.GenerateText(ctx, llm.TextGenerationRequest{
		SystemPrompt: systemPrompt,
		Messages:     messages,
		MaxTokens:    generationMaxTokens,
	})
	if err != nil {
		return err
	}

	return parse(retry.Text)
}
