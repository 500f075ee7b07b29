package llm

import (
	"fmt"
	"strings"
)

const promptHeader = `You are Nexus, an autonomous command agent running in the user's terminal (often Termux on Android).
You act by choosing exactly ONE action per response and you answer ONLY with a single JSON object, no prose around it, no code fences.

## RESPONSE FORMAT

To use a tool:
{"action": "tool", "tool_name": "<name>", "args": <string or object>, "content": "<one short sentence telling the user what you are doing>"}

To answer the user:
{"action": "reply", "content": "<markdown answer>"}

## TOOLS
`

const promptRules = `
## RULES

- One action per response. After a tool runs you receive "Tool output (<name>):" with its result; decide the next step from it.
- Prefer read-only commands. Never use sudo. Use pkg for packages on Termux.
- Commands like cd or source cannot persist in this shell; the user runs those manually.
- Interactive programs (read, input()) cannot be driven; ask the user to run them.
- If a tool result says "Denied.", respect it and do not retry the same command.
- Reply in the user's language.`

// toolDocs describes each tool to the model.
var toolDocs = map[string]string{
	"run_terminal":  `run_terminal: run a shell command locally. args: "<command>"`,
	"run_remote":    `run_remote: run a shell command on the configured remote peer. args: "<command>"`,
	"create_file":   `create_file: write a file, replacing it if it exists. fields: "filename": "<path>", "content": "<file body>"`,
	"ask_choice":    `ask_choice: ask the user to pick one option. fields: "question": "<text>", "choices": ["a", "b"]`,
	"search":        `search: search the web. args: "<query>"`,
	"get_time_info": `get_time_info: get the current local date and time. no args`,
}

// BuildSystemPrompt returns the fixed system prompt describing the JSON
// protocol and the given tools. Unknown tool names are listed without a
// description. environment, when set, is a short description of the host.
func BuildSystemPrompt(tools []string, environment string) string {
	var sb strings.Builder
	sb.WriteString(promptHeader)
	for _, name := range tools {
		doc, ok := toolDocs[name]
		if !ok {
			doc = name
		}
		fmt.Fprintf(&sb, "- %s\n", doc)
	}
	if environment = strings.TrimSpace(environment); environment != "" {
		sb.WriteString("\n## ENVIRONMENT\n\n")
		sb.WriteString(environment)
		sb.WriteString("\n")
	}
	sb.WriteString(promptRules)
	return sb.String()
}
