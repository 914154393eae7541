package usecase

import (
	"context"
	"errors"
	"log/slog"
	"strings"
	"time"
	"unicode/utf8"

	"smart-chatbot/internal/domain"
)

const defaultMaxMessage = 300

// Reasons attached to ErrorInvalidInput.
const (
	ReasonEmptyMessage   = "empty_message"
	ReasonMessageTooLong = "message_too_long"
)

// Replier resolves a single message.
type Replier interface {
	Reply(ctx context.Context, input string) Reply
}

// ChatService validates a submitted message and answers it with a Replier.
type ChatService struct {
	replier       Replier
	maxMessageLen int
}

type AskInput struct {
	Message       string
	CorrelationID string
}

// AskOutput carries the reply and the two turns rendered for this request.
type AskOutput struct {
	Reply  string
	Source Source
	Turns  []domain.Turn
}

func NewChatService(r Replier, maxMessageLen int) (*ChatService, error) {
	if r == nil {
		return nil, errors.New("usecase: replier must not be nil")
	}
	if maxMessageLen <= 0 {
		maxMessageLen = defaultMaxMessage
	}
	return &ChatService{replier: r, maxMessageLen: maxMessageLen}, nil
}

func (s *ChatService) Ask(ctx context.Context, in AskInput) (AskOutput, error) {
	if strings.TrimSpace(in.Message) == "" {
		return AskOutput{}, newError(ErrorInvalidInput, ReasonEmptyMessage, nil)
	}
	if utf8.RuneCountInString(in.Message) > s.maxMessageLen {
		return AskOutput{}, newError(ErrorInvalidInput, ReasonMessageTooLong, nil)
	}

	start := time.Now()
	reply := s.replier.Reply(ctx, in.Message)
	slog.InfoContext(ctx, "reply resolved",
		"correlation_id", in.CorrelationID,
		"source", string(reply.Source),
		"duration_ms", time.Since(start).Milliseconds(),
	)

	return AskOutput{
		Reply:  reply.Text,
		Source: reply.Source,
		Turns: []domain.Turn{
			{Text: in.Message, Role: domain.RoleUser},
			{Text: reply.Text, Role: domain.RoleBot},
		},
	}, nil
}
