package model

// Inventory holds the user's saved tools.
type Inventory struct {
	Tools []Tool `json:"tools"`
}

// DefaultInventory returns an inventory populated with common cutters.
func DefaultInventory() Inventory {
	vbit := NewTool("V-Bit 60deg 6mm", 0.2, 800, 300, 18000)
	vbit.TaperAngle = 60
	return Inventory{
		Tools: []Tool{
			NewTool("6mm End Mill", 6.0, 1500, 500, 18000),
			NewTool("3mm End Mill", 3.0, 1000, 300, 20000),
			NewTool("1/4\" End Mill (6.35mm)", 6.35, 1500, 500, 18000),
			NewTool("1/8\" End Mill (3.175mm)", 3.175, 800, 250, 22000),
			vbit,
		},
	}
}

// FindToolByID returns a pointer to the tool with the given ID, or nil.
func (inv *Inventory) FindToolByID(id string) *Tool {
	for i := range inv.Tools {
		if inv.Tools[i].ID == id {
			return &inv.Tools[i]
		}
	}
	return nil
}

// FindToolByName returns a pointer to the first tool with the given name, or nil.
func (inv *Inventory) FindToolByName(name string) *Tool {
	for i := range inv.Tools {
		if inv.Tools[i].Name == name {
			return &inv.Tools[i]
		}
	}
	return nil
}

// ToolNames lists the tool names in inventory order.
func (inv *Inventory) ToolNames() []string {
	names := make([]string, len(inv.Tools))
	for i, t := range inv.Tools {
		names[i] = t.Name
	}
	return names
}

// Merge adds tools whose names are not yet present and returns how many
// were added.
func (inv *Inventory) Merge(tools []Tool) int {
	added := 0
	for _, t := range tools {
		if inv.FindToolByName(t.Name) != nil {
			continue
		}
		inv.Tools = append(inv.Tools, t)
		added++
	}
	return added
}
