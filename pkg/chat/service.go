// Package chat lets a user converse with the assistant about completed
// research. The agent answers from the findings cache and the runs table
// through its toolset, not from fresh web searches.
package chat

import (
	"context"
	"encoding/json"
	"fmt"
	"iter"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"google.golang.org/adk/agent"
	"google.golang.org/adk/agent/llmagent"
	"google.golang.org/adk/model"
	"google.golang.org/adk/model/gemini"
	"google.golang.org/adk/runner"
	"google.golang.org/adk/session"
	"google.golang.org/adk/tool"
	"google.golang.org/genai"

	"github.com/mikeboe/research-assistant/pkg/config"
	"github.com/mikeboe/research-assistant/pkg/database"
	"github.com/mikeboe/research-assistant/pkg/research"
)

const (
	appName   = "research-assistant"
	agentName = "research_assistant"

	agentInstruction = "You are a research assistant answering questions about research that has already been completed. " +
		"ALWAYS ground your answers in tool results, never in your own knowledge. " +
		"Use search_findings first to retrieve relevant material; use list_runs and get_run_summary when the user asks about specific research runs. " +
		"Cite the source URL for every claim, in the format: <claim> [<url>]. " +
		"If the tools return nothing relevant, say so instead of speculating."
)

type Service struct {
	DB     *database.PostgresDB
	Client *genai.Client
	Agent  agent.Agent

	chatModel string
}

type Thread struct {
	ID        uuid.UUID `json:"id"`
	Title     string    `json:"title"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

type Message struct {
	ID        uuid.UUID `json:"id"`
	ThreadID  uuid.UUID `json:"thread_id"`
	Role      string    `json:"role"`
	Content   string    `json:"content"`
	CreatedAt time.Time `json:"created_at"`
}

// StreamEvent is a single event in the chat response stream.
type StreamEvent struct {
	Type    string      `json:"type"` // "content", "tool_call", "tool_result", "error", "done"
	Payload interface{} `json:"payload"`
}

func NewService(ctx context.Context, db *database.PostgresDB, cfg *config.Config, findings research.FindingsCache) (*Service, error) {
	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey: cfg.LLMApiKey,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create GenAI client: %w", err)
	}

	chatModel := cfg.ChatModel
	modelClient, err := gemini.NewModel(ctx, chatModel, &genai.ClientConfig{
		APIKey: cfg.LLMApiKey,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create model: %w", err)
	}

	toolset := NewFindingsToolset(db, findings)

	chatAgent, err := llmagent.New(llmagent.Config{
		Name:        agentName,
		Model:       modelClient,
		Description: "A research assistant with access to completed research runs and their findings.",
		Instruction: agentInstruction,
		Toolsets: []tool.Toolset{
			toolset,
		},
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create agent: %w", err)
	}

	return &Service{
		DB:        db,
		Client:    client,
		Agent:     chatAgent,
		chatModel: chatModel,
	}, nil
}

func (s *Service) CreateThread(ctx context.Context) (*Thread, error) {
	id := uuid.New()
	query := `INSERT INTO threads (id) VALUES ($1) RETURNING id, title, created_at, updated_at`

	thread := &Thread{}
	err := s.DB.Pool.QueryRow(ctx, query, id).Scan(&thread.ID, &thread.Title, &thread.CreatedAt, &thread.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return thread, nil
}

func (s *Service) ListThreads(ctx context.Context) ([]Thread, error) {
	query := `SELECT id, title, created_at, updated_at FROM threads ORDER BY updated_at DESC`
	rows, err := s.DB.Pool.Query(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var threads []Thread
	for rows.Next() {
		var t Thread
		if err := rows.Scan(&t.ID, &t.Title, &t.CreatedAt, &t.UpdatedAt); err != nil {
			return nil, err
		}
		threads = append(threads, t)
	}
	return threads, nil
}

func (s *Service) GetHistory(ctx context.Context, threadID uuid.UUID) ([]Message, error) {
	query := `SELECT id, thread_id, role, content, created_at FROM messages WHERE thread_id = $1 ORDER BY created_at ASC`
	rows, err := s.DB.Pool.Query(ctx, query, threadID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var msgs []Message
	for rows.Next() {
		var m Message
		if err := rows.Scan(&m.ID, &m.ThreadID, &m.Role, &m.Content, &m.CreatedAt); err != nil {
			return nil, err
		}
		msgs = append(msgs, m)
	}
	return msgs, nil
}

// SendMessage persists the user message and returns a stream of agent
// events. The model reply is persisted once the stream completes.
func (s *Service) SendMessage(ctx context.Context, threadID uuid.UUID, content string) (iter.Seq2[StreamEvent, error], error) {
	userMsgID := uuid.New()
	_, err := s.DB.Pool.Exec(ctx,
		`INSERT INTO messages (id, thread_id, role, content) VALUES ($1, $2, 'user', $3)`,
		userMsgID, threadID, content)
	if err != nil {
		return nil, fmt.Errorf("failed to save user message: %w", err)
	}

	// Sessions are in-memory and rebuilt per request; the durable history
	// lives in the messages table.
	sessionSvc := session.InMemoryService()
	userID := "user"
	sessionID := threadID.String()

	createRes, err := sessionSvc.Create(ctx, &session.CreateRequest{
		AppName:   appName,
		UserID:    userID,
		SessionID: sessionID,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create session: %w", err)
	}
	storedSession := createRes.Session

	history, err := s.GetHistory(ctx, threadID)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch history: %w", err)
	}

	for _, msg := range history {
		if msg.ID == userMsgID {
			continue // skip the message we just saved
		}

		role := "user"
		author := "user"
		if msg.Role == "model" {
			role = "model"
			author = agentName
		}

		evt := session.NewEvent(uuid.NewString())
		evt.Author = author
		evt.LLMResponse = model.LLMResponse{
			Content: &genai.Content{
				Role: role,
				Parts: []*genai.Part{
					{Text: msg.Content},
				},
			},
		}

		sessionSvc.AppendEvent(ctx, storedSession, evt)
	}

	agentRunner, err := runner.New(runner.Config{
		AppName:        appName,
		Agent:          s.Agent,
		SessionService: sessionSvc,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create runner: %w", err)
	}

	userContent := &genai.Content{
		Role: "user",
		Parts: []*genai.Part{
			{Text: content},
		},
	}

	return func(yield func(StreamEvent, error) bool) {
		slog.Info("starting chat agent run", "thread_id", threadID)
		runCfg := agent.RunConfig{
			StreamingMode: agent.StreamingModeSSE,
		}

		next := agentRunner.Run(ctx, userID, sessionID, userContent, runCfg)

		var finalResponse string

		for event, err := range next {
			if err != nil {
				slog.Error("chat agent runner error", "error", err)
				yield(StreamEvent{Type: "error", Payload: err.Error()}, err)
				return
			}

			if event.LLMResponse.Content == nil {
				continue
			}
			for _, part := range event.LLMResponse.Content.Parts {
				if part.Text != "" {
					finalResponse += part.Text
					if !yield(StreamEvent{Type: "content", Payload: part.Text}, nil) {
						return
					}
				}
				if part.FunctionCall != nil {
					slog.Info("chat agent tool call", "tool", part.FunctionCall.Name)
					if !yield(StreamEvent{Type: "tool_call", Payload: part.FunctionCall}, nil) {
						return
					}
				}
				if part.FunctionResponse != nil {
					slog.Info("chat agent tool result", "tool", part.FunctionResponse.Name)
					if !yield(StreamEvent{Type: "tool_result", Payload: part.FunctionResponse}, nil) {
						return
					}
				}
			}
		}

		modelMsgID := uuid.New()
		_, err := s.DB.Pool.Exec(ctx,
			`INSERT INTO messages (id, thread_id, role, content) VALUES ($1, $2, 'model', $3)`,
			modelMsgID, threadID, finalResponse)
		if err != nil {
			slog.Error("failed to save model message", "error", err)
		} else {
			_, _ = s.DB.Pool.Exec(ctx, `UPDATE threads SET updated_at = NOW() WHERE id = $1`, threadID)
		}

		yield(StreamEvent{Type: "done", Payload: "done"}, nil)

		// First exchange in a thread names it.
		if len(history) <= 1 {
			go s.generateTitle(threadID, content, finalResponse)
		}
	}, nil
}

func (s *Service) generateTitle(threadID uuid.UUID, userMsg, modelMsg string) {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	prompt := fmt.Sprintf("Generate a short, concise title (max 5 words) for this chat conversation:\nUser: %s\nModel: %s", userMsg, modelMsg)

	returnSchema := &genai.Schema{
		Type: genai.TypeObject,
		Properties: map[string]*genai.Schema{
			"title": {
				Type: genai.TypeString,
			},
		},
		Required: []string{"title"},
	}

	resp, err := s.Client.Models.GenerateContent(ctx, s.chatModel, []*genai.Content{
		{Parts: []*genai.Part{{Text: prompt}}},
	}, &genai.GenerateContentConfig{
		ResponseMIMEType: "application/json",
		ResponseSchema:   returnSchema,
	})
	if err != nil || len(resp.Candidates) == 0 {
		return
	}

	rawJSON := ""
	for _, p := range resp.Candidates[0].Content.Parts {
		rawJSON += p.Text
	}

	var respData struct {
		Title string `json:"title"`
	}
	if err := json.Unmarshal([]byte(rawJSON), &respData); err != nil {
		slog.Error("failed to unmarshal title generation response", "error", err, "raw_json", rawJSON)
		return
	}

	if respData.Title != "" {
		if _, err := s.DB.Pool.Exec(ctx, `UPDATE threads SET title = $2 WHERE id = $1`, threadID, respData.Title); err != nil {
			slog.Error("failed to update thread title", "error", err)
		}
	}
}
