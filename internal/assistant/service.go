package assistant

import (
	"context"
	"fmt"
	"strings"
	"sync"

	"github.com/Domenick1991/roombooking/internal/domain"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// SessionStore keeps conversations by id. Get returns nil, nil for an
// unknown or expired id.
type SessionStore interface {
	Get(ctx context.Context, id string) (*domain.Conversation, error)
	Save(ctx context.Context, conv domain.Conversation) error
	Delete(ctx context.Context, id string) error
}

type AssistantUseCase interface {
	Ask(ctx context.Context, input AskInput) (*AskOutput, error)
	Reset(ctx context.Context, sessionID string) error
}

type AskInput struct {
	SessionID string        `json:"session_id"`
	Message   string        `json:"message"`
	History   []domain.Turn `json:"history"`
}

type AskOutput struct {
	SessionID  string              `json:"session_id"`
	Reply      string              `json:"reply"`
	State      domain.SessionState `json:"state"`
	Suggestion *domain.Suggestion  `json:"suggestion,omitempty"`
	Booking    *domain.Booking     `json:"booking,omitempty"`
}

// Service holds conversations server side and serializes the turns of
// each one.
type Service struct {
	engine   *Engine
	sessions SessionStore
	greeting string
	locks    *keyedMutex
	newID    func() string
	logger   *zap.Logger
}

type ServiceOption func(*Service)

func WithGreeting(greeting string) ServiceOption {
	return func(s *Service) {
		s.greeting = greeting
	}
}

func WithServiceLogger(logger *zap.Logger) ServiceOption {
	return func(s *Service) {
		s.logger = logger
	}
}

func NewService(engine *Engine, sessions SessionStore, opts ...ServiceOption) *Service {
	s := &Service{
		engine:   engine,
		sessions: sessions,
		locks:    newKeyedMutex(),
		newID:    uuid.NewString,
		logger:   zap.NewNop(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Ask runs one turn. A missing or unknown session id starts a new
// conversation under a fresh id, seeded with input.History when given and
// with the greeting otherwise.
func (s *Service) Ask(ctx context.Context, input AskInput) (*AskOutput, error) {
	if strings.TrimSpace(input.Message) == "" {
		return nil, domain.Invalidf("message is required")
	}

	var conv *domain.Conversation
	if input.SessionID != "" {
		unlock := s.locks.Lock(input.SessionID)
		defer unlock()

		var err error
		conv, err = s.sessions.Get(ctx, input.SessionID)
		if err != nil {
			s.logger.Error("load session", zap.String("session_id", input.SessionID), zap.Error(err))
			return nil, fmt.Errorf("%w: load session: %v", domain.ErrStore, err)
		}
	}
	if conv == nil {
		fresh, err := s.newConversation(input.History)
		if err != nil {
			return nil, err
		}
		conv = fresh
	}

	next, result, err := s.engine.Turn(ctx, *conv, input.Message)
	if err != nil {
		return nil, err
	}
	// The turn may already have committed a booking, so the save must not
	// be abandoned with the request or the stale suggestion would survive.
	if err := s.sessions.Save(context.WithoutCancel(ctx), next); err != nil {
		s.logger.Error("save session", zap.String("session_id", next.ID), zap.Error(err))
		return nil, fmt.Errorf("%w: save session: %v", domain.ErrStore, err)
	}

	return &AskOutput{
		SessionID:  next.ID,
		Reply:      result.Reply,
		State:      next.State(),
		Suggestion: result.Suggestion,
		Booking:    result.Booking,
	}, nil
}

// Reset forgets the conversation, including any pending suggestion.
func (s *Service) Reset(ctx context.Context, sessionID string) error {
	if sessionID == "" {
		return domain.Invalidf("session id is required")
	}
	unlock := s.locks.Lock(sessionID)
	defer unlock()
	if err := s.sessions.Delete(ctx, sessionID); err != nil {
		return fmt.Errorf("%w: delete session: %v", domain.ErrStore, err)
	}
	return nil
}

func (s *Service) newConversation(history []domain.Turn) (*domain.Conversation, error) {
	conv := &domain.Conversation{ID: s.newID()}
	for i, t := range history {
		if t.Role != domain.RoleUser && t.Role != domain.RoleAssistant {
			return nil, domain.Invalidf("history[%d]: unknown role %q", i, t.Role)
		}
		if strings.TrimSpace(t.Text) == "" {
			continue
		}
		conv.Append(t.Role, t.Text)
	}
	if len(conv.History) == 0 && s.greeting != "" {
		conv.Append(domain.RoleAssistant, s.greeting)
	}
	return conv, nil
}

// keyedMutex hands out one mutex per key and forgets it once unused.
type keyedMutex struct {
	mu    sync.Mutex
	locks map[string]*refMutex
}

type refMutex struct {
	sync.Mutex
	refs int
}

func newKeyedMutex() *keyedMutex {
	return &keyedMutex{locks: make(map[string]*refMutex)}
}

func (k *keyedMutex) Lock(key string) (unlock func()) {
	k.mu.Lock()
	m, ok := k.locks[key]
	if !ok {
		m = &refMutex{}
		k.locks[key] = m
	}
	m.refs++
	k.mu.Unlock()

	m.Lock()
	return func() {
		m.Unlock()
		k.mu.Lock()
		m.refs--
		if m.refs == 0 {
			delete(k.locks, key)
		}
		k.mu.Unlock()
	}
}

var _ AssistantUseCase = (*Service)(nil)
