package session

// ItemType identifies the kind of run item stored in a session.
type ItemType string

const (
	ItemMessage       ItemType = "message"
	ItemToolCall      ItemType = "tool_call"
	ItemToolOutput    ItemType = "tool_call_output"
	ItemHandoffCall   ItemType = "handoff_call"
	ItemHandoffOutput ItemType = "handoff_output"
)

// Item is one persisted run item. Fields not relevant to Type are left empty.
type Item struct {
	Type        ItemType `json:"type"`
	Agent       string   `json:"agent,omitempty"`
	Role        string   `json:"role,omitempty"`
	Content     string   `json:"content,omitempty"`
	CallID      string   `json:"call_id,omitempty"`
	Name        string   `json:"name,omitempty"`
	Arguments   string   `json:"arguments,omitempty"`
	Output      string   `json:"output,omitempty"`
	SourceAgent string   `json:"source_agent,omitempty"`
	TargetAgent string   `json:"target_agent,omitempty"`
}

// UserMessage builds the input item for a user prompt.
func UserMessage(text string) Item {
	return Item{Type: ItemMessage, Role: "user", Content: text}
}
