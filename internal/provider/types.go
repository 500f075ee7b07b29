package provider

// Type represents the LLM backend type
type Type string

const (
	TypeOpenAI   Type = "openai"
	TypeVLLM     Type = "vllm"
	TypeOllama   Type = "ollama"
	TypeLlamaCpp Type = "llama.cpp"
	TypeUnknown  Type = "unknown"
)

// String returns the string representation of the backend type
func (t Type) String() string {
	return string(t)
}

// DisplayName returns a human-readable name for the backend type
func (t Type) DisplayName() string {
	switch t {
	case TypeOpenAI:
		return "OpenAI-compatible (hosted)"
	case TypeVLLM:
		return "vLLM"
	case TypeOllama:
		return "Ollama"
	case TypeLlamaCpp:
		return "llama.cpp"
	default:
		return "Unknown"
	}
}

// Hosted reports whether the backend is a hosted service that needs an API key.
func (t Type) Hosted() bool {
	return t == TypeOpenAI
}

// Info holds backend metadata
type Info struct {
	Type    Type     // Backend type (openai, vllm, ollama, llama.cpp)
	Name    string   // Display name (e.g., "Ollama")
	Host    string   // Base URL
	Model   string   // Selected model
	Models  []string // Available models
	APIPath string   // API path prefix (e.g., "/v1")
}
