package tools

import (
	"fmt"
	"strings"

	"github.com/retroengine/retroai/pkg/core"
	"github.com/retroengine/retroai/pkg/editor"
)

// ListItemsTool lists every inventory item.
type ListItemsTool struct{ base }

// NewListItemsTool creates an item listing tool.
func NewListItemsTool(p *editor.Project) *ListItemsTool {
	return &ListItemsTool{base{p}}
}

// Name returns the tool name
func (t *ListItemsTool) Name() string { return "list_items" }

// Description returns the tool description
func (t *ListItemsTool) Description() string { return "List all inventory items in the game" }

// Category returns the tool category
func (t *ListItemsTool) Category() string { return CategoryItems }

// Parameters returns the tool parameter schema
func (t *ListItemsTool) Parameters() map[string]any { return object(nil) }

// Execute lists the items
func (t *ListItemsTool) Execute(args map[string]any) (core.ToolResult, error) {
	items := t.project.Items()
	list := make([]map[string]any, 0, len(items))
	for _, it := range items {
		list = append(list, map[string]any{
			"id":          it.ID,
			"name":        it.Name,
			"description": it.Description,
			"combinable":  it.Combinable,
		})
	}
	return core.OKWithData(fmt.Sprintf("Found %d items", len(list)), map[string]any{
		"count": len(list),
		"items": list,
	}), nil
}

// GetItemTool returns one item.
type GetItemTool struct{ base }

// NewGetItemTool creates an item lookup tool.
func NewGetItemTool(p *editor.Project) *GetItemTool {
	return &GetItemTool{base{p}}
}

// Name returns the tool name
func (t *GetItemTool) Name() string { return "get_item" }

// Description returns the tool description
func (t *GetItemTool) Description() string {
	return "Get detailed information about a specific item"
}

// Category returns the tool category
func (t *GetItemTool) Category() string { return CategoryItems }

// Parameters returns the tool parameter schema
func (t *GetItemTool) Parameters() map[string]any {
	return object(map[string]any{
		"item_id": str("ID of the item to get"),
	}, "item_id")
}

// Execute looks the item up
func (t *GetItemTool) Execute(args map[string]any) (core.ToolResult, error) {
	var params struct {
		ItemID string `json:"item_id"`
	}
	if err := decode(args, &params); err != nil {
		return core.Failure(err.Error()), nil
	}
	it, ok := t.project.Item(params.ItemID)
	if !ok {
		return core.Failuref("Item not found: %s", params.ItemID), nil
	}
	return core.OKWithData("Item: "+it.Name, it), nil
}

// CreateItemTool adds an inventory item.
type CreateItemTool struct{ base }

// NewCreateItemTool creates an item creation tool.
func NewCreateItemTool(p *editor.Project) *CreateItemTool {
	return &CreateItemTool{base{p}}
}

// Name returns the tool name
func (t *CreateItemTool) Name() string { return "create_item" }

// Description returns the tool description
func (t *CreateItemTool) Description() string { return "Create a new inventory item" }

// Category returns the tool category
func (t *CreateItemTool) Category() string { return CategoryItems }

// RequiresConfirmation returns true
func (t *CreateItemTool) RequiresConfirmation() bool { return true }

// Parameters returns the tool parameter schema
func (t *CreateItemTool) Parameters() map[string]any {
	return object(map[string]any{
		"id":             str("Unique item ID (e.g., 'rusty_key')"),
		"name":           str("Display name of the item"),
		"description":    str("Item description shown in inventory"),
		"icon":           str("Icon sprite path (e.g., 'items/key.png')"),
		"combinable":     boolean("Whether item can be combined with others"),
		"combines_with":  str("Item ID this can combine with"),
		"combine_result": str("Result item ID after combination"),
	}, "id", "name", "description")
}

// Execute creates the item
func (t *CreateItemTool) Execute(args map[string]any) (core.ToolResult, error) {
	var params editor.Item
	if err := decode(args, &params); err != nil {
		return core.Failure(err.Error()), nil
	}
	if params.ID == "" || params.Name == "" || params.Description == "" {
		return core.Failure("id, name, and description are required"), nil
	}
	if _, exists := t.project.Item(params.ID); exists {
		return core.Failuref("Item with ID '%s' already exists", params.ID), nil
	}

	cmd, err := apply(t.project, t.project.ItemChange(nil, &params, "Create item "+params.ID))
	if err != nil {
		return core.ToolResult{}, err
	}
	return core.OKWithData(fmt.Sprintf("Item created: %s (ID: %s)", params.Name, params.ID), map[string]any{
		"id":   params.ID,
		"name": params.Name,
	}).WithCommand(cmd), nil
}

// ModifyItemTool changes an existing item.
type ModifyItemTool struct{ base }

// NewModifyItemTool creates an item modification tool.
func NewModifyItemTool(p *editor.Project) *ModifyItemTool {
	return &ModifyItemTool{base{p}}
}

// Name returns the tool name
func (t *ModifyItemTool) Name() string { return "modify_item" }

// Description returns the tool description
func (t *ModifyItemTool) Description() string { return "Modify properties of an existing item" }

// Category returns the tool category
func (t *ModifyItemTool) Category() string { return CategoryItems }

// Parameters returns the tool parameter schema
func (t *ModifyItemTool) Parameters() map[string]any {
	return object(map[string]any{
		"item_id":        str("ID of the item to modify"),
		"name":           str("New display name (optional)"),
		"description":    str("New description (optional)"),
		"icon":           str("New icon path (optional)"),
		"combinable":     boolean("Update combinable flag"),
		"combines_with":  str("New combine target"),
		"combine_result": str("New combine result"),
	}, "item_id")
}

// Execute applies the changes
func (t *ModifyItemTool) Execute(args map[string]any) (core.ToolResult, error) {
	var params struct {
		ItemID        string  `json:"item_id"`
		Name          *string `json:"name"`
		Description   *string `json:"description"`
		Icon          *string `json:"icon"`
		Combinable    *bool   `json:"combinable"`
		CombinesWith  *string `json:"combines_with"`
		CombineResult *string `json:"combine_result"`
	}
	if err := decode(args, &params); err != nil {
		return core.Failure(err.Error()), nil
	}
	before, ok := t.project.Item(params.ItemID)
	if !ok {
		return core.Failuref("Item not found: %s", params.ItemID), nil
	}

	after := before.Clone()
	var changes []string
	for _, f := range []struct {
		name string
		src  *string
		dst  *string
	}{
		{"name", params.Name, &after.Name},
		{"description", params.Description, &after.Description},
		{"icon", params.Icon, &after.Icon},
		{"combines_with", params.CombinesWith, &after.CombinesWith},
		{"combine_result", params.CombineResult, &after.CombineResult},
	} {
		if f.src != nil {
			*f.dst = *f.src
			changes = append(changes, f.name)
		}
	}
	if params.Combinable != nil {
		after.Combinable = *params.Combinable
		changes = append(changes, "combinable")
	}
	if len(changes) == 0 {
		return core.OK("No changes made"), nil
	}

	cmd, err := apply(t.project, t.project.ItemChange(&before, &after, "Modify item "+before.ID))
	if err != nil {
		return core.ToolResult{}, err
	}
	data := withDiff(map[string]any{"item_id": before.ID, "changed": changes}, "items/"+before.ID+".yaml", before, after)
	msg := fmt.Sprintf("Updated item '%s': %s", before.ID, strings.Join(changes, ", "))
	return core.OKWithData(msg, data).WithCommand(cmd), nil
}
