package services

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/sashabaranov/go-openai"

	"github.com/clubware/taskhub/internal/models"
)

type AIService struct {
	client *openai.Client
}

func NewAIService(apiKey string) *AIService {
	return &AIService{
		client: openai.NewClient(apiKey),
	}
}

// DescribeTask drafts a short task description from its title using OpenAI GPT
func (s *AIService) DescribeTask(ctx context.Context, title string) (string, error) {
	if s.client == nil {
		return "", fmt.Errorf("OpenAI client not initialized")
	}

	prompt := fmt.Sprintf(`You draft task descriptions for a student club's task board.

Task title: %s

Write a concise description for this task in two to three sentences.
Be concrete about what needs to be done and what "done" looks like.
Return plain text only, no headings and no markdown.`, title)

	return s.complete(ctx, prompt)
}

// SummarizeTask condenses a task and its comment thread into a short
// status summary using OpenAI GPT
func (s *AIService) SummarizeTask(ctx context.Context, task *models.Task, comments []models.Comment) (string, error) {
	if s.client == nil {
		return "", fmt.Errorf("OpenAI client not initialized")
	}

	var thread strings.Builder
	for _, c := range comments {
		author := c.User.Name
		if author == "" {
			author = fmt.Sprintf("user %d", c.UserID)
		}
		switch c.Kind {
		case models.CommentKindFile:
			fmt.Fprintf(&thread, "- %s attached file %q\n", author, c.FileName)
		default:
			fmt.Fprintf(&thread, "- %s: %s\n", author, c.Body)
		}
	}
	if thread.Len() == 0 {
		thread.WriteString("(no comments yet)\n")
	}

	prompt := fmt.Sprintf(`You summarize task progress for busy student club officers.

Task: %s
Description: %s
Status: %s (%d%% done)
Deadline: %s

Comment thread, oldest first:
%s
Summarize the current state of this task in at most three sentences.
Mention blockers if the thread suggests any. Return plain text only.`,
		task.Title,
		task.Description,
		task.Status,
		task.Progress,
		task.Deadline.Format(time.RFC3339),
		thread.String(),
	)

	return s.complete(ctx, prompt)
}

func (s *AIService) complete(ctx context.Context, prompt string) (string, error) {
	resp, err := s.client.CreateChatCompletion(
		ctx,
		openai.ChatCompletionRequest{
			Model: openai.GPT4o,
			Messages: []openai.ChatCompletionMessage{
				{
					Role:    openai.ChatMessageRoleUser,
					Content: prompt,
				},
			},
			Temperature: 0.3,
		},
	)

	if err != nil {
		return "", fmt.Errorf("OpenAI API error: %w", err)
	}

	if len(resp.Choices) == 0 {
		return "", fmt.Errorf("no response from OpenAI")
	}

	return strings.TrimSpace(resp.Choices[0].Message.Content), nil
}
