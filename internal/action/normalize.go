package action

import (
	"encoding/json"
	"fmt"
	"strings"
)

// payload is the wire schema the system prompt asks the model to follow.
type payload struct {
	Action   string          `json:"action,omitempty"`
	ToolName string          `json:"tool_name,omitempty"`
	Args     json.RawMessage `json:"args,omitempty"`
	Content  string          `json:"content,omitempty"`
	Filename string          `json:"filename,omitempty"`
	Question string          `json:"question,omitempty"`
	Choices  []string        `json:"choices,omitempty"`
}

// wirePayload mirrors payload but keeps loosely typed fields raw so a
// slightly off-schema response still decodes.
type wirePayload struct {
	Action   string          `json:"action"`
	ToolName string          `json:"tool_name"`
	Args     json.RawMessage `json:"args"`
	Content  json.RawMessage `json:"content"`
	Filename string          `json:"filename"`
	Question string          `json:"question"`
	Choices  json.RawMessage `json:"choices"`
}

// Normalize decodes a raw model response into an Action. It never fails:
// anything it cannot decode becomes a Reply carrying the raw text.
func Normalize(raw string) Action {
	cleaned := Clean(raw)
	if cleaned == "" {
		return NewReply(strings.TrimSpace(raw), raw)
	}

	var p wirePayload
	if err := json.Unmarshal([]byte(cleaned), &p); err != nil {
		return NewReply(raw, raw)
	}

	kind := strings.ToLower(strings.TrimSpace(p.Action))
	name := strings.TrimSpace(p.ToolName)
	content := rawText(p.Content)

	switch {
	case kind == "reply":
		return NewReply(content, raw)
	case name != "" && (kind == "tool" || kind == ""):
		call := ToolCall{
			Name:     name,
			Args:     p.Args,
			Content:  content,
			Filename: p.Filename,
			Question: p.Question,
			Choices:  rawStrings(p.Choices),
		}
		return NewToolCall(call, raw)
	case kind == "" && content != "":
		return NewReply(content, raw)
	default:
		return NewReply(raw, raw)
	}
}

// Clean strips a surrounding code fence and any text outside the outermost
// braces. Braces inside leading prose are not special-cased: the first '{'
// and the last '}' win.
func Clean(raw string) string {
	s := strings.TrimSpace(raw)
	if strings.HasPrefix(s, "```") {
		if nl := strings.IndexByte(s, '\n'); nl >= 0 {
			s = s[nl+1:]
		} else {
			s = strings.TrimPrefix(s, "```")
		}
		s = strings.TrimSpace(s)
		if strings.HasSuffix(s, "```") {
			s = strings.TrimSuffix(s, "```")
		}
		s = strings.TrimSpace(s)
	}

	start := strings.IndexByte(s, '{')
	end := strings.LastIndexByte(s, '}')
	if start < 0 || end < start {
		return s
	}
	return s[start : end+1]
}

// rawText renders a content field that may not be a string.
func rawText(raw json.RawMessage) string {
	if len(raw) == 0 || string(raw) == "null" {
		return ""
	}
	var s string
	if err := json.Unmarshal(raw, &s); err == nil {
		return s
	}
	return string(raw)
}

func rawStrings(raw json.RawMessage) []string {
	if len(raw) == 0 {
		return nil
	}
	var list []interface{}
	if err := json.Unmarshal(raw, &list); err != nil {
		return nil
	}
	out := make([]string, 0, len(list))
	for _, v := range list {
		switch t := v.(type) {
		case string:
			out = append(out, t)
		case nil:
		default:
			out = append(out, fmt.Sprint(t))
		}
	}
	return out
}
