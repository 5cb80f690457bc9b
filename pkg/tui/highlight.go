package tui

import (
	"encoding/json"
	"strings"

	"github.com/charmbracelet/glamour"
)

// HighlightJSON pretty-prints input as a highlighted JSON code block. It
// reports false when input is not JSON or no renderer is available.
func HighlightJSON(renderer *glamour.TermRenderer, input string) (string, bool) {
	if renderer == nil {
		return "", false
	}
	var js any
	if json.Unmarshal([]byte(input), &js) != nil {
		return "", false
	}
	pretty, err := json.MarshalIndent(js, "", "  ")
	if err != nil {
		return "", false
	}

	out, err := renderer.Render("```json\n" + string(pretty) + "\n```")
	if err != nil {
		return "", false
	}
	return strings.TrimSpace(out), true
}
