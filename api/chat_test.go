package api_test

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"time"

	"github.com/golang-jwt/jwt"
	"github.com/google/uuid"
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
	"github.com/sashabaranov/go-openai"

	"github.com/agentrix/agentrix/api"
	"github.com/agentrix/agentrix/core/chat"
	models "github.com/agentrix/agentrix/dbmodels"
	"github.com/agentrix/agentrix/llm"
	"github.com/agentrix/agentrix/pkg/config"
)

const testSecret = "test-secret"

// In-memory stores backing the orchestrator under test. Only the chat
// endpoints are exercised here; the CRUD handlers talk to a real database
// and are covered elsewhere.
type memoryStores struct {
	agents   map[uuid.UUID]*models.Agent
	messages []models.ChatMessage
}

func (m *memoryStores) OwnedByUser(ctx context.Context, agentID, userID uuid.UUID) (*models.Agent, error) {
	agent, ok := m.agents[agentID]
	if !ok || agent.UserID != userID {
		return nil, chat.ErrNotFound
	}
	return agent, nil
}

func (m *memoryStores) Append(ctx context.Context, agentID uuid.UUID, role, content string) (*models.ChatMessage, error) {
	msg := models.ChatMessage{
		ID:        uuid.New(),
		AgentID:   agentID,
		Role:      role,
		Content:   content,
		CreatedAt: time.Now(),
	}
	m.messages = append(m.messages, msg)
	return &msg, nil
}

func (m *memoryStores) History(ctx context.Context, agentID uuid.UUID) ([]models.ChatMessage, error) {
	var out []models.ChatMessage
	for _, msg := range m.messages {
		if msg.AgentID == agentID {
			out = append(out, msg)
		}
	}
	return out, nil
}

func (m *memoryStores) ForAgent(ctx context.Context, agentID uuid.UUID) ([]models.UploadedFile, error) {
	return nil, nil
}

func (m *memoryStores) Record(ctx context.Context, usage *models.LLMUsage) error {
	return nil
}

type noopExtractor struct{}

func (noopExtractor) Extract(path, filename string) (string, error) { return "", nil }

type stubCompleter struct {
	reply string
	err   error
}

func (s *stubCompleter) Complete(ctx context.Context, systemPrompt string, history []openai.ChatCompletionMessage) (*llm.Result, error) {
	if s.err != nil {
		return nil, s.err
	}
	return &llm.Result{Content: s.reply, Model: "test-model"}, nil
}

func signToken(userID uuid.UUID) string {
	claims := &api.Claims{
		UserID:     userID.String(),
		Email:      "test@example.com",
		Expiration: time.Now().Add(time.Hour).Unix(),
	}
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(testSecret))
	Expect(err).ToNot(HaveOccurred())
	return token
}

var _ = Describe("Chat endpoints", func() {
	var (
		userID  uuid.UUID
		agentID uuid.UUID

		stores    *memoryStores
		completer *stubCompleter
		app       *api.App
	)

	BeforeEach(func() {
		userID = uuid.New()
		agentID = uuid.New()

		stores = &memoryStores{agents: map[uuid.UUID]*models.Agent{
			agentID: {
				ID:           agentID,
				UserID:       userID,
				Name:         "analyst",
				SystemPrompt: models.DefaultSystemPrompt,
			},
		}}
		completer = &stubCompleter{reply: "the answer"}

		orchestrator := chat.NewOrchestrator(stores, stores, stores, nil, noopExtractor{}, completer)
		app = api.NewApp(&config.Config{JWTSecret: testSecret}, orchestrator)
	})

	chatRequest := func(token string, body any) *http.Response {
		raw, err := json.Marshal(body)
		Expect(err).ToNot(HaveOccurred())

		req := httptest.NewRequest(http.MethodPost, "/api/chat", bytes.NewReader(raw))
		req.Header.Set("Content-Type", "application/json")
		if token != "" {
			req.Header.Set("Authorization", "Bearer "+token)
		}

		resp, err := app.Test(req, -1)
		Expect(err).ToNot(HaveOccurred())
		return resp
	}

	decode := func(resp *http.Response) map[string]any {
		var out map[string]any
		Expect(json.NewDecoder(resp.Body).Decode(&out)).To(Succeed())
		return out
	}

	Describe("authentication", func() {
		It("rejects requests without a token", func() {
			resp := chatRequest("", map[string]any{"agent_id": agentID, "message": "hi"})
			Expect(resp.StatusCode).To(Equal(http.StatusUnauthorized))
		})

		It("rejects a token signed with the wrong key", func() {
			claims := &api.Claims{UserID: userID.String(), Expiration: time.Now().Add(time.Hour).Unix()}
			bad, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte("other-secret"))
			Expect(err).ToNot(HaveOccurred())

			resp := chatRequest(bad, map[string]any{"agent_id": agentID, "message": "hi"})
			Expect(resp.StatusCode).To(Equal(http.StatusUnauthorized))
		})

		It("rejects an expired token", func() {
			claims := &api.Claims{UserID: userID.String(), Expiration: time.Now().Add(-time.Hour).Unix()}
			expired, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(testSecret))
			Expect(err).ToNot(HaveOccurred())

			resp := chatRequest(expired, map[string]any{"agent_id": agentID, "message": "hi"})
			Expect(resp.StatusCode).To(Equal(http.StatusUnauthorized))
		})
	})

	Describe("POST /api/chat", func() {
		It("returns the assistant reply", func() {
			resp := chatRequest(signToken(userID), map[string]any{"agent_id": agentID, "message": "hi"})

			Expect(resp.StatusCode).To(Equal(http.StatusOK))
			body := decode(resp)
			Expect(body["response"]).To(Equal("the answer"))
			Expect(body["agent_id"]).To(Equal(agentID.String()))
		})

		It("rejects an empty message", func() {
			resp := chatRequest(signToken(userID), map[string]any{"agent_id": agentID, "message": "  "})
			Expect(resp.StatusCode).To(Equal(http.StatusBadRequest))
		})

		It("rejects a malformed agent id", func() {
			resp := chatRequest(signToken(userID), map[string]any{"agent_id": "not-a-uuid", "message": "hi"})
			Expect(resp.StatusCode).To(Equal(http.StatusBadRequest))
		})

		It("returns 404 for another user's agent", func() {
			resp := chatRequest(signToken(uuid.New()), map[string]any{"agent_id": agentID, "message": "hi"})
			Expect(resp.StatusCode).To(Equal(http.StatusNotFound))
			Expect(stores.messages).To(BeEmpty())
		})

		It("returns 502 when the provider fails, keeping the user turn", func() {
			completer.err = &llm.CompletionError{Reason: "Model x failed: down"}

			resp := chatRequest(signToken(userID), map[string]any{"agent_id": agentID, "message": "hi"})

			Expect(resp.StatusCode).To(Equal(http.StatusBadGateway))
			Expect(stores.messages).To(HaveLen(1))
			Expect(stores.messages[0].Role).To(Equal(models.RoleUser))
		})

		It("returns 502 when no provider key is configured", func() {
			completer.err = llm.ErrNoAPIKey

			resp := chatRequest(signToken(userID), map[string]any{"agent_id": agentID, "message": "hi"})
			Expect(resp.StatusCode).To(Equal(http.StatusBadGateway))
		})
	})

	Describe("GET /api/chat/:id/history", func() {
		historyRequest := func(token string, agent uuid.UUID) *http.Response {
			req := httptest.NewRequest(http.MethodGet, fmt.Sprintf("/api/chat/%s/history", agent), nil)
			req.Header.Set("Authorization", "Bearer "+token)

			resp, err := app.Test(req, -1)
			Expect(err).ToNot(HaveOccurred())
			return resp
		}

		It("returns the ordered conversation", func() {
			chatRequest(signToken(userID), map[string]any{"agent_id": agentID, "message": "first"})
			chatRequest(signToken(userID), map[string]any{"agent_id": agentID, "message": "second"})

			resp := historyRequest(signToken(userID), agentID)
			Expect(resp.StatusCode).To(Equal(http.StatusOK))

			var history []map[string]any
			Expect(json.NewDecoder(resp.Body).Decode(&history)).To(Succeed())
			Expect(history).To(HaveLen(4))
			Expect(history[0]["role"]).To(Equal("user"))
			Expect(history[0]["content"]).To(Equal("first"))
			Expect(history[1]["role"]).To(Equal("assistant"))
			Expect(history[2]["content"]).To(Equal("second"))
		})

		It("hides other users' agents behind 404", func() {
			resp := historyRequest(signToken(uuid.New()), agentID)
			Expect(resp.StatusCode).To(Equal(http.StatusNotFound))
		})
	})
})
