package usecase

import (
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"

	"smart-chatbot/internal/domain"
)

type stubReplier struct {
	reply Reply
	calls int
	input string
}

func (s *stubReplier) Reply(_ context.Context, input string) Reply {
	s.calls++
	s.input = input
	return s.reply
}

func expectAskError(t *testing.T, err error, code ErrorCode, reason string) {
	t.Helper()
	var usecaseErr *Error
	require.ErrorAs(t, err, &usecaseErr)
	require.Equal(t, code, usecaseErr.Code)
	require.Equal(t, reason, usecaseErr.Reason)
}

func TestNewChatService_ValidatesDependencies(t *testing.T) {
	_, err := NewChatService(nil, 300)
	require.Error(t, err)

	svc, err := NewChatService(&stubReplier{}, 0)
	require.NoError(t, err)
	require.Equal(t, defaultMaxMessage, svc.maxMessageLen)
}

func TestAsk_HappyPath(t *testing.T) {
	replier := &stubReplier{reply: Reply{Text: GreetingReply, Source: SourceGreeting}}
	svc, err := NewChatService(replier, 300)
	require.NoError(t, err)

	out, err := svc.Ask(context.Background(), AskInput{Message: " Hello ", CorrelationID: "c-1"})
	require.NoError(t, err)
	require.Equal(t, GreetingReply, out.Reply)
	require.Equal(t, SourceGreeting, out.Source)
	require.Equal(t, " Hello ", replier.input)
	require.Equal(t, []domain.Turn{
		{Text: " Hello ", Role: domain.RoleUser},
		{Text: GreetingReply, Role: domain.RoleBot},
	}, out.Turns)
}

func TestAsk_ValidationErrors(t *testing.T) {
	replier := &stubReplier{}
	svc, err := NewChatService(replier, 10)
	require.NoError(t, err)

	_, err = svc.Ask(context.Background(), AskInput{Message: ""})
	expectAskError(t, err, ErrorInvalidInput, "empty_message")

	_, err = svc.Ask(context.Background(), AskInput{Message: " \n\t "})
	expectAskError(t, err, ErrorInvalidInput, "empty_message")

	_, err = svc.Ask(context.Background(), AskInput{Message: strings.Repeat("a", 11)})
	expectAskError(t, err, ErrorInvalidInput, ReasonMessageTooLong)

	require.Zero(t, replier.calls)
}

func TestAsk_LengthCountsRunes(t *testing.T) {
	svc, err := NewChatService(&stubReplier{reply: Reply{Text: "ok"}}, 3)
	require.NoError(t, err)

	_, err = svc.Ask(context.Background(), AskInput{Message: "👋👋👋"})
	require.NoError(t, err)
}
