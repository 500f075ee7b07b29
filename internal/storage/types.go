package storage

import "time"

// MemoryEntry is one value in the key/value memory store.
type MemoryEntry struct {
	Value     string    `json:"value"`
	Timestamp time.Time `json:"timestamp"`
}

// Memory keys used by the agent.
const (
	KeyRemoteURL = "termux_server_url"
)

// TokenUsage tracks token consumption for LLM calls
type TokenUsage struct {
	PromptTokens     int `json:"prompt_tokens"`
	CompletionTokens int `json:"completion_tokens"`
	TotalTokens      int `json:"total_tokens"`
}

// Add accumulates another usage record.
func (u *TokenUsage) Add(prompt, completion, total int) {
	u.PromptTokens += prompt
	u.CompletionTokens += completion
	u.TotalTokens += total
}
