package tools

import (
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/retroengine/retroai/pkg/core"
	"github.com/retroengine/retroai/pkg/editor"
)

// ExecuteCommandTool runs a registered tool from a command line string such
// as "create_hotspot scene_id=tavern id=door".
type ExecuteCommandTool struct {
	registry *core.Registry
}

// NewExecuteCommandTool creates a command line tool over registry.
func NewExecuteCommandTool(registry *core.Registry) *ExecuteCommandTool {
	return &ExecuteCommandTool{registry: registry}
}

// Name returns the tool name
func (t *ExecuteCommandTool) Name() string { return "execute_command" }

// Description returns the tool description
func (t *ExecuteCommandTool) Description() string {
	return "Execute a command in the editor command panel. Use this to run any registered tool by name."
}

// Category returns the tool category
func (t *ExecuteCommandTool) Category() string { return CategorySystem }

// Parameters returns the tool parameter schema
func (t *ExecuteCommandTool) Parameters() map[string]any {
	return object(map[string]any{
		"command": str("The command to execute (e.g., 'list_scenes' or 'create_hotspot scene_id=tavern id=door')"),
	}, "command")
}

// tokenize splits a command line on spaces outside double quotes.
func tokenize(line string) []string {
	var tokens []string
	var current strings.Builder
	inQuotes := false
	for _, r := range line {
		switch {
		case r == '"':
			inQuotes = !inQuotes
		case r == ' ' && !inQuotes:
			if current.Len() > 0 {
				tokens = append(tokens, current.String())
				current.Reset()
			}
		default:
			current.WriteRune(r)
		}
	}
	if current.Len() > 0 {
		tokens = append(tokens, current.String())
	}
	return tokens
}

// parseValue turns a key=value token value into a number or bool when it looks like one.
func parseValue(v string) any {
	if strings.Contains(v, ".") {
		if f, err := strconv.ParseFloat(v, 64); err == nil {
			return f
		}
	} else if i, err := strconv.ParseInt(v, 10, 64); err == nil {
		return float64(i)
	}
	if v == "true" || v == "false" {
		return v == "true"
	}
	return v
}

// ParseCommandLine splits a command line into a tool name and its arguments.
// Tokens without '=' are ignored.
func ParseCommandLine(line string) (string, map[string]any, error) {
	tokens := tokenize(line)
	if len(tokens) == 0 {
		return "", nil, errors.New("empty command")
	}
	args := map[string]any{}
	for _, tok := range tokens[1:] {
		key, value, ok := strings.Cut(tok, "=")
		if !ok || key == "" {
			continue
		}
		args[key] = parseValue(value)
	}
	return tokens[0], args, nil
}

// Execute runs the named tool
func (t *ExecuteCommandTool) Execute(args map[string]any) (core.ToolResult, error) {
	var params struct {
		Command string `json:"command"`
	}
	if err := decode(args, &params); err != nil {
		return core.Failure(err.Error()), nil
	}
	if strings.TrimSpace(params.Command) == "" {
		return core.Failure("command is required"), nil
	}

	name, toolArgs, err := ParseCommandLine(params.Command)
	if err != nil {
		return core.Failure("Empty command"), nil
	}
	if name == t.Name() {
		return core.Failure("execute_command cannot run itself"), nil
	}
	tool, ok := t.registry.Get(name)
	if !ok {
		return core.Failure("Unknown command: " + name), nil
	}
	// Confirmation is decided per call by the agent; a nested call would skip it.
	if core.RequiresConfirmation(tool) {
		return core.Failuref("Command '%s' requires confirmation; call the tool directly", name), nil
	}
	if err := core.ValidateArguments(tool.Parameters(), toolArgs); err != nil {
		return core.Failure("Invalid arguments: " + err.Error()), nil
	}

	result, err := tool.Execute(toolArgs)
	if err != nil {
		return core.ToolResult{}, fmt.Errorf("%s: %w", name, err)
	}
	if !result.Success {
		return result, nil
	}
	output := result.Message
	if result.Data != nil {
		if data, err := json.MarshalIndent(result.Data, "", "  "); err == nil {
			output += "\n" + string(data)
		}
	}
	result.Message = output
	return result, nil
}

// ListCommandsTool lists every registered tool.
type ListCommandsTool struct {
	registry *core.Registry
}

// NewListCommandsTool creates a command listing tool over registry.
func NewListCommandsTool(registry *core.Registry) *ListCommandsTool {
	return &ListCommandsTool{registry: registry}
}

// Name returns the tool name
func (t *ListCommandsTool) Name() string { return "list_commands" }

// Description returns the tool description
func (t *ListCommandsTool) Description() string { return "List all available editor commands" }

// Category returns the tool category
func (t *ListCommandsTool) Category() string { return CategorySystem }

// Parameters returns the tool parameter schema
func (t *ListCommandsTool) Parameters() map[string]any { return object(nil) }

// Execute lists the commands
func (t *ListCommandsTool) Execute(args map[string]any) (core.ToolResult, error) {
	all := t.registry.All()
	commands := make([]map[string]any, 0, len(all))
	for _, tool := range all {
		commands = append(commands, map[string]any{
			"name":                  tool.Name(),
			"description":           tool.Description(),
			"category":              core.CategoryOf(tool),
			"requires_confirmation": core.RequiresConfirmation(tool),
		})
	}
	return core.OKWithData(fmt.Sprintf("Found %d commands", len(commands)), map[string]any{
		"command_count": len(commands),
		"commands":      commands,
	}), nil
}

// UndoTool reverts the most recent editor change.
type UndoTool struct {
	project *editor.Project
	history *editor.UndoStack
}

// NewUndoTool creates an undo tool.
func NewUndoTool(p *editor.Project, history *editor.UndoStack) *UndoTool {
	return &UndoTool{project: p, history: history}
}

// Name returns the tool name
func (t *UndoTool) Name() string { return "undo" }

// Description returns the tool description
func (t *UndoTool) Description() string { return "Undo the most recent editor change" }

// Category returns the tool category
func (t *UndoTool) Category() string { return CategorySystem }

// Parameters returns the tool parameter schema
func (t *UndoTool) Parameters() map[string]any { return object(nil) }

// Execute undoes one step
func (t *UndoTool) Execute(args map[string]any) (core.ToolResult, error) {
	desc, err := t.history.Undo()
	if errors.Is(err, editor.ErrNothingToUndo) {
		return core.Failure("Nothing to undo"), nil
	}
	if err != nil {
		return core.ToolResult{}, err
	}
	t.project.RecordAction("Undo: " + desc)
	return core.OKWithData("Undid: "+desc, map[string]any{"undone": desc, "can_redo": true}), nil
}

// RedoTool re-applies the most recently undone change.
type RedoTool struct {
	project *editor.Project
	history *editor.UndoStack
}

// NewRedoTool creates a redo tool.
func NewRedoTool(p *editor.Project, history *editor.UndoStack) *RedoTool {
	return &RedoTool{project: p, history: history}
}

// Name returns the tool name
func (t *RedoTool) Name() string { return "redo" }

// Description returns the tool description
func (t *RedoTool) Description() string { return "Redo the most recently undone editor change" }

// Category returns the tool category
func (t *RedoTool) Category() string { return CategorySystem }

// Parameters returns the tool parameter schema
func (t *RedoTool) Parameters() map[string]any { return object(nil) }

// Execute redoes one step
func (t *RedoTool) Execute(args map[string]any) (core.ToolResult, error) {
	desc, err := t.history.Redo()
	if errors.Is(err, editor.ErrNothingToRedo) {
		return core.Failure("Nothing to redo"), nil
	}
	if err != nil {
		return core.ToolResult{}, err
	}
	t.project.RecordAction("Redo: " + desc)
	return core.OKWithData("Redid: "+desc, map[string]any{"redone": desc, "can_undo": true}), nil
}
