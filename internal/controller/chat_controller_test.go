package controller

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http/httptest"
	"testing"

	"industrial-ai-be/internal/dto"
	"industrial-ai-be/internal/pkg/apperror"
	"industrial-ai-be/internal/pkg/logger"
	"industrial-ai-be/internal/pkg/serverutils"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type stubChatService struct {
	askResponse *dto.ChatResponse
	askErr      error
	deleted     string
}

func (s *stubChatService) Ask(ctx context.Context, request *dto.ChatRequest) (*dto.ChatResponse, error) {
	return s.askResponse, s.askErr
}

func (s *stubChatService) GetHistory(ctx context.Context, sessionId string) (*dto.SessionHistoryResponse, error) {
	return &dto.SessionHistoryResponse{SessionId: sessionId, Turns: []dto.TurnDTO{}}, nil
}

func (s *stubChatService) DeleteSession(ctx context.Context, sessionId string) error {
	s.deleted = sessionId
	return nil
}

func setupApp(svc *stubChatService) *fiber.App {
	app := fiber.New()
	app.Use(serverutils.ErrorHandlerMiddleware(logger.NewNopLogger()))

	api := app.Group("/api")
	NewChatController(svc).RegisterRoutes(api)
	return app
}

func postChat(t *testing.T, app *fiber.App, body string) (*fiber.App, int, map[string]interface{}) {
	t.Helper()
	req := httptest.NewRequest("POST", "/api/chat/v1", bytes.NewBufferString(body))
	req.Header.Set("Content-Type", "application/json")

	resp, err := app.Test(req)
	require.NoError(t, err)
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	require.NoError(t, err)

	var parsed map[string]interface{}
	require.NoError(t, json.Unmarshal(raw, &parsed))
	return app, resp.StatusCode, parsed
}

func TestAskReturnsAnswerEnvelope(t *testing.T) {
	svc := &stubChatService{askResponse: &dto.ChatResponse{
		Answer:               "Relief valves open at 40 bar.",
		Sources:              []string{"manual.pdf (page 12)"},
		ConfidenceScore:      0.91,
		RetrievedChunkCount:  5,
		WebSearchUsed:        false,
		WebSearchesRemaining: 5,
	}}
	app := setupApp(svc)

	_, status, body := postChat(t, app, `{"question":"what pressure?","session_id":"s1"}`)

	assert.Equal(t, fiber.StatusOK, status)
	assert.Equal(t, true, body["success"])

	data := body["data"].(map[string]interface{})
	assert.Equal(t, "Relief valves open at 40 bar.", data["answer"])
	assert.Equal(t, 0.91, data["confidence_score"])
	assert.Equal(t, false, data["web_search_used"])
}

func TestAskMissingFieldsIsBadRequest(t *testing.T) {
	app := setupApp(&stubChatService{})

	_, status, body := postChat(t, app, `{"question":""}`)

	assert.Equal(t, fiber.StatusBadRequest, status)
	assert.Equal(t, false, body["success"])
}

func TestAskMalformedBodyIsBadRequest(t *testing.T) {
	app := setupApp(&stubChatService{})

	_, status, _ := postChat(t, app, `{"question": broken`)

	assert.Equal(t, fiber.StatusBadRequest, status)
}

func TestAskProviderFailureIsBadGateway(t *testing.T) {
	svc := &stubChatService{askErr: apperror.New(apperror.KindLLM, "model returned no answer")}
	app := setupApp(svc)

	_, status, body := postChat(t, app, `{"question":"q","session_id":"s1"}`)

	assert.Equal(t, fiber.StatusBadGateway, status)
	assert.Equal(t, string(apperror.KindLLM), body["error_type"])
}

func TestGetHistory(t *testing.T) {
	app := setupApp(&stubChatService{})

	req := httptest.NewRequest("GET", "/api/chat/v1/s1/history", nil)
	resp, err := app.Test(req)
	require.NoError(t, err)
	defer resp.Body.Close()

	assert.Equal(t, fiber.StatusOK, resp.StatusCode)
}

func TestDeleteSession(t *testing.T) {
	svc := &stubChatService{}
	app := setupApp(svc)

	req := httptest.NewRequest("DELETE", "/api/chat/v1/s1", nil)
	resp, err := app.Test(req)
	require.NoError(t, err)
	defer resp.Body.Close()

	assert.Equal(t, fiber.StatusOK, resp.StatusCode)
	assert.Equal(t, "s1", svc.deleted)
}
