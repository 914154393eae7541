package handler

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"net/url"
	"strings"

	"github.com/aws/aws-lambda-go/events"
	"github.com/google/uuid"

	"smart-chatbot/internal/domain"
	"smart-chatbot/internal/usecase"
)

const (
	correlationHeader = "X-Correlation-Id"
	contentTypeJSON   = "application/json"
	contentTypeHTML   = "text/html; charset=utf-8"

	errorNotFound         = "NOT_FOUND"
	errorMethodNotAllowed = "METHOD_NOT_ALLOWED"
)

// ChatUseCase answers one validated message.
type ChatUseCase interface {
	Ask(ctx context.Context, in usecase.AskInput) (usecase.AskOutput, error)
}

// Handler serves the chat page and the JSON ask endpoint from API Gateway
// proxy events.
type Handler struct {
	uc   ChatUseCase
	page *pageRenderer
}

type askRequest struct {
	Message string `json:"message"`
}

type askResponse struct {
	Reply  string `json:"reply"`
	Source string `json:"source"`
}

type errorResponse struct {
	Error string `json:"error"`
}

func NewHandler(uc ChatUseCase) (*Handler, error) {
	if uc == nil {
		return nil, errors.New("handler: use case must not be nil")
	}
	page, err := newPageRenderer()
	if err != nil {
		return nil, err
	}
	return &Handler{uc: uc, page: page}, nil
}

func (h *Handler) Handle(ctx context.Context, req events.APIGatewayProxyRequest) (events.APIGatewayProxyResponse, error) {
	correlationID := correlationIDFrom(req.Headers)

	switch routePath(req.Path) {
	case "/":
		switch req.HTTPMethod {
		case http.MethodGet:
			return h.renderPage(ctx, correlationID, http.StatusOK, pageData{}), nil
		case http.MethodPost:
			return h.handleForm(ctx, correlationID, req), nil
		default:
			return methodNotAllowed(correlationID, "GET, POST"), nil
		}
	case "/ask":
		if req.HTTPMethod != http.MethodPost {
			return methodNotAllowed(correlationID, "POST"), nil
		}
		return h.handleAsk(ctx, correlationID, req), nil
	default:
		return jsonResponse(http.StatusNotFound, correlationID, errorResponse{Error: errorNotFound}), nil
	}
}

func (h *Handler) handleForm(ctx context.Context, correlationID string, req events.APIGatewayProxyRequest) events.APIGatewayProxyResponse {
	body, err := requestBody(req)
	if err != nil {
		return h.renderPage(ctx, correlationID, http.StatusBadRequest, pageData{})
	}
	form, err := url.ParseQuery(body)
	if err != nil {
		return h.renderPage(ctx, correlationID, http.StatusBadRequest, pageData{})
	}

	message := form.Get("message")
	out, err := h.uc.Ask(ctx, usecase.AskInput{Message: message, CorrelationID: correlationID})
	if err != nil {
		status, _ := mapError(err)
		logRequestError(ctx, correlationID, err)
		return h.renderPage(ctx, correlationID, status, pageData{Turns: rejectedTurns(message, err)})
	}
	return h.renderPage(ctx, correlationID, http.StatusOK, pageData{Turns: out.Turns})
}

func (h *Handler) handleAsk(ctx context.Context, correlationID string, req events.APIGatewayProxyRequest) events.APIGatewayProxyResponse {
	body, err := requestBody(req)
	if err != nil {
		return jsonResponse(http.StatusBadRequest, correlationID, errorResponse{Error: string(usecase.ErrorInvalidInput)})
	}
	var in askRequest
	if err := json.Unmarshal([]byte(body), &in); err != nil {
		return jsonResponse(http.StatusBadRequest, correlationID, errorResponse{Error: string(usecase.ErrorInvalidInput)})
	}

	out, err := h.uc.Ask(ctx, usecase.AskInput{Message: in.Message, CorrelationID: correlationID})
	if err != nil {
		status, code := mapError(err)
		logRequestError(ctx, correlationID, err)
		return jsonResponse(status, correlationID, errorResponse{Error: code})
	}
	return jsonResponse(http.StatusOK, correlationID, askResponse{Reply: out.Reply, Source: string(out.Source)})
}

func (h *Handler) renderPage(ctx context.Context, correlationID string, status int, data pageData) events.APIGatewayProxyResponse {
	body, err := h.page.render(data)
	if err != nil {
		slog.ErrorContext(ctx, "render page", "correlation_id", correlationID, "err", err)
		return jsonResponse(http.StatusInternalServerError, correlationID, errorResponse{Error: string(usecase.ErrorInternal)})
	}
	return events.APIGatewayProxyResponse{
		StatusCode: status,
		Headers: map[string]string{
			"Content-Type":    contentTypeHTML,
			correlationHeader: correlationID,
		},
		Body: body,
	}
}

// mapError converts a use case error into an HTTP status and public code.
func mapError(err error) (int, string) {
	var ucErr *usecase.Error
	if !errors.As(err, &ucErr) {
		return http.StatusInternalServerError, string(usecase.ErrorInternal)
	}
	switch ucErr.Code {
	case usecase.ErrorInvalidInput:
		return http.StatusBadRequest, string(ucErr.Code)
	default:
		return http.StatusInternalServerError, string(usecase.ErrorInternal)
	}
}

// rejectedTurns echoes the user's text, when there is any, followed by a bot
// bubble explaining why it was not answered.
func rejectedTurns(message string, err error) []domain.Turn {
	var turns []domain.Turn
	if strings.TrimSpace(message) != "" {
		turns = append(turns, domain.Turn{Text: message, Role: domain.RoleUser})
	}
	return append(turns, domain.Turn{Text: rejectionReply(err), Role: domain.RoleBot})
}

func rejectionReply(err error) string {
	var ucErr *usecase.Error
	if !errors.As(err, &ucErr) {
		return usecase.FailureReply
	}
	switch ucErr.Reason {
	case usecase.ReasonEmptyMessage:
		return EmptyMessageReply
	case usecase.ReasonMessageTooLong:
		return TooLongReply
	default:
		return usecase.FailureReply
	}
}

func logRequestError(ctx context.Context, correlationID string, err error) {
	var ucErr *usecase.Error
	if errors.As(err, &ucErr) && ucErr.Code == usecase.ErrorInvalidInput {
		slog.InfoContext(ctx, "rejected message", "correlation_id", correlationID, "reason", ucErr.Reason)
		return
	}
	slog.ErrorContext(ctx, "ask failed", "correlation_id", correlationID, "err", err)
}

func requestBody(req events.APIGatewayProxyRequest) (string, error) {
	if !req.IsBase64Encoded {
		return req.Body, nil
	}
	raw, err := base64.StdEncoding.DecodeString(req.Body)
	if err != nil {
		return "", err
	}
	return string(raw), nil
}

func routePath(p string) string {
	if p == "" {
		return "/"
	}
	if len(p) > 1 {
		p = strings.TrimRight(p, "/")
	}
	return p
}

// correlationIDFrom returns the caller's correlation id, matching the header
// name case-insensitively, or a fresh UUID.
func correlationIDFrom(headers map[string]string) string {
	for k, v := range headers {
		if strings.EqualFold(k, correlationHeader) && strings.TrimSpace(v) != "" {
			return strings.TrimSpace(v)
		}
	}
	return uuid.NewString()
}

func methodNotAllowed(correlationID, allow string) events.APIGatewayProxyResponse {
	resp := jsonResponse(http.StatusMethodNotAllowed, correlationID, errorResponse{Error: errorMethodNotAllowed})
	resp.Headers["Allow"] = allow
	return resp
}

func jsonResponse(status int, correlationID string, v any) events.APIGatewayProxyResponse {
	body, err := json.Marshal(v)
	if err != nil {
		status = http.StatusInternalServerError
		body = []byte(`{"error":"INTERNAL_ERROR"}`)
	}
	return events.APIGatewayProxyResponse{
		StatusCode: status,
		Headers: map[string]string{
			"Content-Type":    contentTypeJSON,
			correlationHeader: correlationID,
		},
		Body: string(body),
	}
}
