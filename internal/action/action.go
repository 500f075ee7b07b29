// Package action decodes raw model output into the two shapes the agent
// understands: a tool call or a final reply.
package action

import (
	"encoding/json"
	"strings"
)

// Kind tags the active shape of an Action.
type Kind int

const (
	KindReply Kind = iota
	KindTool
)

func (k Kind) String() string {
	if k == KindTool {
		return "tool"
	}
	return "reply"
}

// Action is a decoded model response. Exactly one of Tool or Reply is set,
// matching Kind.
type Action struct {
	Kind  Kind
	Tool  *ToolCall
	Reply *Reply
	// Raw is the unmodified model output the action was decoded from.
	Raw string
}

// Reply is a terminal, user-facing message.
type Reply struct {
	Content string
}

// ToolCall is an instruction to execute a named tool.
type ToolCall struct {
	Name string
	// Args is either a JSON string or a JSON object, as sent by the model.
	Args     json.RawMessage
	Content  string
	Filename string
	Question string
	Choices  []string
}

// NewReply builds a reply action.
func NewReply(content, raw string) Action {
	return Action{Kind: KindReply, Reply: &Reply{Content: content}, Raw: raw}
}

// NewToolCall builds a tool action.
func NewToolCall(call ToolCall, raw string) Action {
	return Action{Kind: KindTool, Tool: &call, Raw: raw}
}

// IsTool reports whether the action is a tool call.
func (a Action) IsTool() bool {
	return a.Kind == KindTool && a.Tool != nil
}

// Text returns the reply content, or the narration of a tool call.
func (a Action) Text() string {
	if a.IsTool() {
		return a.Tool.Content
	}
	if a.Reply != nil {
		return a.Reply.Content
	}
	return ""
}

// ArgsString returns Args when it is a bare JSON string.
func (c *ToolCall) ArgsString() (string, bool) {
	if len(c.Args) == 0 {
		return "", false
	}
	var s string
	if err := json.Unmarshal(c.Args, &s); err != nil {
		return "", false
	}
	return s, true
}

// ArgsMap returns Args when it is a JSON object.
func (c *ToolCall) ArgsMap() map[string]interface{} {
	if len(c.Args) == 0 {
		return nil
	}
	var m map[string]interface{}
	if err := json.Unmarshal(c.Args, &m); err != nil {
		return nil
	}
	return m
}

// Arg looks up a string argument. A bare string Args is the primary argument
// and is returned for any key.
func (c *ToolCall) Arg(key string) string {
	if s, ok := c.ArgsString(); ok {
		return s
	}
	if v, ok := c.ArgsMap()[key]; ok {
		switch t := v.(type) {
		case string:
			return t
		case nil:
			return ""
		default:
			b, _ := json.Marshal(t)
			return string(b)
		}
	}
	return ""
}

// StringList looks up a list argument in Args, falling back to fallback.
func (c *ToolCall) StringList(key string, fallback []string) []string {
	raw, ok := c.ArgsMap()[key].([]interface{})
	if !ok {
		return fallback
	}
	out := make([]string, 0, len(raw))
	for _, v := range raw {
		if s, ok := v.(string); ok && strings.TrimSpace(s) != "" {
			out = append(out, s)
		}
	}
	if len(out) == 0 {
		return fallback
	}
	return out
}

// Encode renders the tool call back into the wire schema, used when the
// call is recorded in the transcript.
func (c *ToolCall) Encode() string {
	p := payload{
		Action:   "tool",
		ToolName: c.Name,
		Args:     c.Args,
		Content:  c.Content,
		Filename: c.Filename,
		Question: c.Question,
		Choices:  c.Choices,
	}
	b, err := json.Marshal(p)
	if err != nil {
		return c.Name
	}
	return string(b)
}

// Encode renders the reply in the wire schema.
func (r *Reply) Encode() string {
	b, err := json.Marshal(payload{Action: "reply", Content: r.Content})
	if err != nil {
		return r.Content
	}
	return string(b)
}
