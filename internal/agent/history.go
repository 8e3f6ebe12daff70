package agent

// HistoryContent represents a single typed content item in a turn.
type HistoryContent interface {
	historyContent()
}

// HistoryItem captures a single turn item with a role and typed content.
type HistoryItem struct {
	Role    string
	Content HistoryContent
}

// HistoryText holds plain text content for a history item.
type HistoryText struct {
	Text string
}

func (HistoryText) historyContent() {}

func (ToolCall) historyContent() {}

func (ToolOutput) historyContent() {}

// UserText builds a user message history item.
func UserText(text string) HistoryItem {
	return HistoryItem{Role: "user", Content: HistoryText{Text: text}}
}

// AssistantText builds an assistant message history item.
func AssistantText(text string) HistoryItem {
	return HistoryItem{Role: "assistant", Content: HistoryText{Text: text}}
}
