package action

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNormalize_FencedAndBareAgree(t *testing.T) {
	bare := `{"action":"reply","content":"hi"}`
	inputs := []string{
		bare,
		"```json\n" + bare + "\n```",
		"```\n" + bare + "\n```",
		"```" + bare + "```",
		"  \n" + bare + "\n\n",
	}

	for _, in := range inputs {
		got := Normalize(in)
		assert.Equal(t, KindReply, got.Kind, "input %q", in)
		require.NotNil(t, got.Reply)
		assert.Equal(t, "hi", got.Reply.Content, "input %q", in)
	}
}

func TestNormalize_NonJSONFallsBackToReply(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{name: "prose", in: "Sorry, I can't help with that.", want: "Sorry, I can't help with that."},
		{name: "empty", in: "", want: ""},
		{name: "whitespace", in: "   \n\t", want: ""},
		{name: "broken json", in: `{"action":"tool","tool_name":`, want: `{"action":"tool","tool_name":`},
		{name: "unknown object", in: `{"foo":1}`, want: `{"foo":1}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Normalize(tt.in)
			assert.False(t, got.IsTool())
			require.NotNil(t, got.Reply)
			assert.Equal(t, tt.want, got.Reply.Content)
		})
	}
}

func TestNormalize_ToolCall(t *testing.T) {
	raw := `Sure! {"action":"tool","tool_name":"run_terminal","args":"git --version","content":"Checking git"} hope that helps`
	got := Normalize(raw)

	require.True(t, got.IsTool())
	assert.Equal(t, "run_terminal", got.Tool.Name)
	assert.Equal(t, "Checking git", got.Tool.Content)
	assert.Equal(t, "git --version", got.Tool.Arg("command"))
	assert.Equal(t, raw, got.Raw)
}

func TestNormalize_ToolCallWithObjectArgs(t *testing.T) {
	raw := `{"action":"tool","tool_name":"create_file","args":{"filename":"a.txt","content":"hello"}}`
	got := Normalize(raw)

	require.True(t, got.IsTool())
	assert.Equal(t, "a.txt", got.Tool.Arg("filename"))
	assert.Equal(t, "hello", got.Tool.Arg("content"))
	assert.Equal(t, "", got.Tool.Arg("missing"))
}

func TestNormalize_ToolNameWithoutAction(t *testing.T) {
	got := Normalize(`{"tool_name":"get_time_info"}`)
	require.True(t, got.IsTool())
	assert.Equal(t, "get_time_info", got.Tool.Name)
}

func TestNormalize_AskChoiceFields(t *testing.T) {
	raw := `{"action":"tool","tool_name":"ask_choice","question":"Which?","choices":["a","b",3]}`
	got := Normalize(raw)

	require.True(t, got.IsTool())
	assert.Equal(t, "Which?", got.Tool.Question)
	assert.Equal(t, []string{"a", "b", "3"}, got.Tool.Choices)
}

func TestNormalize_NonStringContent(t *testing.T) {
	got := Normalize(`{"action":"reply","content":{"text":"x"}}`)
	require.NotNil(t, got.Reply)
	assert.Equal(t, `{"text":"x"}`, got.Reply.Content)
}

func TestClean_NestedBracesInProse(t *testing.T) {
	// Only the outermost first/last braces are used.
	got := Clean(`note {x} then {"action":"reply","content":"ok"}`)
	assert.Equal(t, `{x} then {"action":"reply","content":"ok"}`, got)

	a := Normalize(`note {x} then {"action":"reply","content":"ok"}`)
	require.NotNil(t, a.Reply)
	assert.Equal(t, `note {x} then {"action":"reply","content":"ok"}`, a.Reply.Content)
}

func TestToolCall_StringList(t *testing.T) {
	call := ToolCall{Args: []byte(`{"choices":["x"," ","y"]}`)}
	assert.Equal(t, []string{"x", "y"}, call.StringList("choices", nil))
	assert.Equal(t, []string{"z"}, call.StringList("other", []string{"z"}))
}

func TestToolCall_EncodeRoundTrip(t *testing.T) {
	call := ToolCall{Name: "search", Args: []byte(`"golang"`), Content: "looking"}
	got := Normalize(call.Encode())

	require.True(t, got.IsTool())
	assert.Equal(t, "search", got.Tool.Name)
	assert.Equal(t, "golang", got.Tool.Arg("query"))
}

func TestReply_Encode(t *testing.T) {
	r := Reply{Content: "Step limit reached\n\"done\""}
	got := Normalize(r.Encode())

	require.Equal(t, KindReply, got.Kind)
	assert.Equal(t, r.Content, got.Text())
}
