package agent

import (
	"time"

	"github.com/google/uuid"
	"github.com/tara-vision/nexus/internal/llm"
	"github.com/tara-vision/nexus/internal/storage"
)

const (
	DefaultHistoryWindow = 10
	DefaultHistoryCap    = 20
)

// Session is the state of one interactive run. It is owned by the REPL and
// handed to the agent explicitly.
type Session struct {
	ID         string
	APIKey     string
	Model      string
	Theme      string
	Transcript *Transcript
	Usage      storage.TokenUsage
	CreatedAt  time.Time
}

// NewSession creates a session with an empty transcript.
func NewSession(apiKey, model, theme string, window, cap int) *Session {
	return &Session{
		ID:         uuid.New().String(),
		APIKey:     apiKey,
		Model:      model,
		Theme:      theme,
		Transcript: NewTranscript(window, cap),
		CreatedAt:  time.Now(),
	}
}

// ShortID returns the first eight characters of the session ID.
func (s *Session) ShortID() string {
	if len(s.ID) < 8 {
		return s.ID
	}
	return s.ID[:8]
}

// Transcript is the ordered conversation history. Only the most recent
// window turns are sent to the model; once the history grows past cap it is
// truncated to the newest cap turns.
type Transcript struct {
	turns  []llm.Turn
	window int
	cap    int
}

// NewTranscript creates a transcript. Non-positive sizes take the defaults,
// and cap is never smaller than window.
func NewTranscript(window, cap int) *Transcript {
	if window <= 0 {
		window = DefaultHistoryWindow
	}
	if cap <= 0 {
		cap = DefaultHistoryCap
	}
	if cap < window {
		cap = window
	}
	return &Transcript{window: window, cap: cap}
}

// Append adds a turn.
func (t *Transcript) Append(role, content string) {
	t.turns = append(t.turns, llm.Turn{Role: role, Content: content})
	if len(t.turns) > t.cap {
		t.turns = append([]llm.Turn(nil), t.turns[len(t.turns)-t.cap:]...)
	}
}

// Recent returns a copy of the turns that are sent to the model.
func (t *Transcript) Recent() []llm.Turn {
	start := 0
	if len(t.turns) > t.window {
		start = len(t.turns) - t.window
	}
	return append([]llm.Turn(nil), t.turns[start:]...)
}

// Turns returns a copy of the full retained history.
func (t *Transcript) Turns() []llm.Turn {
	return append([]llm.Turn(nil), t.turns...)
}

// Len returns the number of retained turns.
func (t *Transcript) Len() int {
	return len(t.turns)
}

// Reset drops all turns.
func (t *Transcript) Reset() {
	t.turns = nil
}
