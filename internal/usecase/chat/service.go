// Package chat orchestrates retrieval-augmented question answering over
// the innovation record collection.
package chat

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/kailas-cloud/innoreg/internal/domain"
	"github.com/kailas-cloud/innoreg/internal/domain/match"
	"github.com/kailas-cloud/innoreg/internal/domain/record"
)

// NoMatchMessage is the fixed answer when retrieval finds nothing. The
// generation call is never made in that case: a clear "nothing found"
// beats a hallucinated answer.
const NoMatchMessage = "Không tìm thấy dữ liệu sáng kiến phù hợp với câu hỏi của bạn."

// generationFallback is the assistant turn recorded when the generation
// call fails. The user's own message stays in history untouched.
const generationFallback = "Xin lỗi, trợ lý đang gặp sự cố khi tạo câu trả lời. Vui lòng thử lại sau."

const chatSystemPrompt = `Bạn là trợ lý tra cứu cơ sở dữ liệu sáng kiến. ` +
	`Chỉ trả lời dựa trên danh sách sáng kiến được cung cấp trong ngữ cảnh; ` +
	`nếu ngữ cảnh không đủ thông tin, hãy nói rõ là không tìm thấy. ` +
	`Trả lời ngắn gọn bằng tiếng Việt và dẫn mã số sáng kiến khi trích dẫn.`

// Role tags a conversation turn.
type Role string

const (
	// RoleUser marks a user turn.
	RoleUser Role = "user"
	// RoleAssistant marks an assistant turn.
	RoleAssistant Role = "assistant"
)

// Message is one conversation turn.
type Message struct {
	ID        string
	Role      Role
	Content   string
	IsRAG     bool
	CreatedAt time.Time
}

// Answer is the orchestrator's reply to one query.
type Answer struct {
	ConversationID string
	Text           string
	// IsRAG reports whether the answer was grounded in retrieved context.
	IsRAG bool
}

// Retriever is the hybrid retrieval contract consumed by the orchestrator.
type Retriever interface {
	Retrieve(ctx context.Context, query string, records []record.Record) []match.Match
	BuildContext(matches []match.Match) string
}

type conversation struct {
	id       string
	busy     bool
	messages []Message
}

// Service processes chat turns strictly sequentially per conversation.
// A second query for a conversation with a turn in flight is rejected,
// never interleaved — interleaving would mix contexts between answers.
// Conversations are independent of each other.
type Service struct {
	retriever Retriever
	gen       domain.Generator
	logger    *zap.Logger

	mu    sync.Mutex
	convs map[string]*conversation
}

// New creates a chat orchestrator.
func New(retriever Retriever, gen domain.Generator, logger *zap.Logger) *Service {
	return &Service{
		retriever: retriever,
		gen:       gen,
		logger:    logger,
		convs:     make(map[string]*conversation),
	}
}

// Ask answers a user query against the given record snapshot. An empty
// conversationID starts a new conversation. Generation failures are
// absorbed into a user-visible fallback turn; only a busy conversation
// or a blank query surface as errors.
func (s *Service) Ask(
	ctx context.Context, conversationID, query string, records []record.Record,
) (Answer, error) {
	if strings.TrimSpace(query) == "" {
		return Answer{}, domain.ErrEmptyQuery
	}

	conv, err := s.acquire(conversationID)
	if err != nil {
		return Answer{}, err
	}
	defer s.release(conv)

	s.append(conv, Message{
		ID:        uuid.NewString(),
		Role:      RoleUser,
		Content:   query,
		CreatedAt: time.Now(),
	})

	matches := s.retriever.Retrieve(ctx, query, records)
	if len(matches) == 0 {
		s.logger.Info("chat retrieval empty, skipping generation",
			zap.String("conversation_id", conv.id))
		return s.answer(conv, NoMatchMessage, false), nil
	}

	contextBlock := s.retriever.BuildContext(matches)

	result, err := s.gen.Generate(ctx, domain.GenerationRequest{
		System: chatSystemPrompt,
		Prompt: fmt.Sprintf("NGỮ CẢNH:\n%s\n\nCÂU HỎI: %s", contextBlock, query),
	})
	if err != nil {
		s.logger.Error("chat generation failed",
			zap.String("conversation_id", conv.id),
			zap.Error(err))
		return s.answer(conv, generationFallback, false), nil
	}

	return s.answer(conv, result.Text, true), nil
}

// History returns a copy of the conversation's messages.
func (s *Service) History(conversationID string) ([]Message, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	conv, ok := s.convs[conversationID]
	if !ok {
		return nil, fmt.Errorf("conversation %q: %w", conversationID, domain.ErrConversationNotFound)
	}
	out := make([]Message, len(conv.messages))
	copy(out, conv.messages)
	return out, nil
}

// acquire reserves the conversation for one in-flight turn.
func (s *Service) acquire(conversationID string) (*conversation, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if conversationID == "" {
		conversationID = uuid.NewString()
	}
	conv, ok := s.convs[conversationID]
	if !ok {
		conv = &conversation{id: conversationID}
		s.convs[conversationID] = conv
	}
	if conv.busy {
		return nil, fmt.Errorf("conversation %q: %w", conversationID, domain.ErrConversationBusy)
	}
	conv.busy = true
	return conv, nil
}

func (s *Service) release(conv *conversation) {
	s.mu.Lock()
	defer s.mu.Unlock()
	conv.busy = false
}

func (s *Service) append(conv *conversation, msg Message) {
	s.mu.Lock()
	defer s.mu.Unlock()
	conv.messages = append(conv.messages, msg)
}

func (s *Service) answer(conv *conversation, text string, isRAG bool) Answer {
	s.append(conv, Message{
		ID:        uuid.NewString(),
		Role:      RoleAssistant,
		Content:   text,
		IsRAG:     isRAG,
		CreatedAt: time.Now(),
	})
	return Answer{ConversationID: conv.id, Text: text, IsRAG: isRAG}
}
