// Package session orchestrates the submit, save, and clear actions for
// one user session.
package session

import (
	"context"
	"errors"
	"log/slog"
	"strings"

	"github.com/personachat/personachat/internal/completion"
	"github.com/personachat/personachat/internal/conversation"
	"github.com/personachat/personachat/internal/persona"
	"github.com/personachat/personachat/internal/prompt"
)

// Gateway is the slice of the memory backend the controller needs.
type Gateway interface {
	FetchContext(ctx context.Context, identity string, maxTokens int, eventRatio float64) string
	RecordTurn(ctx context.Context, identity, questionText, responseText string) error
}

// Options configure a Controller.
type Options struct {
	Completer completion.Completer
	Gateway   Gateway // nil disables memory
	Identity  string  // memory identity; empty means no memory this session
	Logger    *slog.Logger

	ContextTokenBudget int
	ContextEventRatio  float64
}

// Controller owns the request lifecycle for one session. Completion
// requests are serialized: a submit that arrives while another is
// pending is rejected with ErrBusy.
type Controller struct {
	completer completion.Completer
	gateway   Gateway
	identity  string
	store     *conversation.Store
	logger    *slog.Logger

	contextTokens int
	eventRatio    float64

	busy chan struct{}
}

// NewController creates a controller with an empty conversation log.
// The memory identity is resolved once, at session start, by the caller.
func NewController(opts Options) *Controller {
	busy := make(chan struct{}, 1)
	return &Controller{
		completer:     opts.Completer,
		gateway:       opts.Gateway,
		identity:      opts.Identity,
		store:         conversation.NewStore(),
		logger:        opts.Logger,
		contextTokens: opts.ContextTokenBudget,
		eventRatio:    opts.ContextEventRatio,
		busy:          busy,
	}
}

// MemoryAvailable reports whether this session can read and write the
// memory backend.
func (c *Controller) MemoryAvailable() bool {
	return c.gateway != nil && c.identity != ""
}

// Submit runs one question through the pipeline: fetch fresh memory
// context, build the persona prompt, call the completion backend, and
// append the resulting turn. A completion failure still produces a
// turn - the error text becomes visible chat content, never a silent
// drop. Returns ErrBusy while another submit is pending.
func (c *Controller) Submit(ctx context.Context, personaCode, questionText string) (conversation.Turn, error) {
	p, err := persona.Describe(personaCode)
	if err != nil {
		return conversation.Turn{}, err
	}
	if strings.TrimSpace(questionText) == "" {
		return conversation.Turn{}, ErrEmptyQuestion
	}

	select {
	case c.busy <- struct{}{}:
	default:
		return conversation.Turn{}, ErrBusy
	}
	defer func() { <-c.busy }()

	memoryContext := ""
	if c.MemoryAvailable() {
		memoryContext = c.gateway.FetchContext(ctx, c.identity, c.contextTokens, c.eventRatio)
	}

	promptText := prompt.Build(p, questionText, memoryContext)

	turn := conversation.Turn{
		PersonaCode: p.Code,
		Question:    questionText,
	}

	responseText, err := c.completer.Complete(ctx, promptText)
	if err != nil {
		c.logger.ErrorContext(ctx, "completion failed",
			"persona", p.Code,
			"error", err)
		turn.Response = renderError(err)
		turn.Failed = true
	} else {
		turn.Response = responseText
	}

	stored := c.store.Append(turn)

	c.logger.InfoContext(ctx, "turn appended",
		"turn_id", stored.ID,
		"persona", stored.PersonaCode,
		"failed", stored.Failed)

	return stored, nil
}

// Save persists one turn to the memory backend. Guarded so each turn is
// saved at most once; a failed save leaves the turn unsaved and
// retryable.
func (c *Controller) Save(ctx context.Context, turnID string) error {
	if !c.MemoryAvailable() {
		return ErrMemoryUnavailable
	}

	turn, ok := c.store.Get(turnID)
	if !ok {
		return ErrTurnNotFound
	}
	if turn.Saved {
		return ErrAlreadySaved
	}
	if turn.Failed {
		return ErrFailedTurn
	}

	if err := c.gateway.RecordTurn(ctx, c.identity, turn.Question, turn.Response); err != nil {
		return err
	}

	c.store.MarkSaved(turnID)
	c.logger.InfoContext(ctx, "turn saved to memory", "turn_id", turnID)
	return nil
}

// Clear empties the conversation log. The memory backend is untouched.
func (c *Controller) Clear() {
	c.store.Clear()
}

// History returns the session's turns, newest first.
func (c *Controller) History() []conversation.Turn {
	return c.store.ListMostRecentFirst()
}

// renderError turns a completion failure into the chat text shown to
// the user.
func renderError(err error) string {
	var cerr *completion.Error
	if errors.As(err, &cerr) {
		return cerr.UserMessage()
	}
	return "Something went wrong while generating a response. Please try again."
}
