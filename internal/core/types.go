package core

const (
	AppName    = "EDA"
	AppVersion = "0.1.0"
)

const (
	RoleSystem    = "system"
	RoleUser      = "user"
	RoleAssistant = "assistant"
)

// Turn is a single message within a session's history. Immutable once
// appended.
type Turn struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// Passage is one excerpt retrieved from the document index. Score is a
// similarity measure where higher means more relevant; the scale depends
// on the index implementation.
type Passage struct {
	Content string  `json:"content"`
	Score   float64 `json:"score"`
}

// Generation is the generation collaborator's response envelope. Rate
// limiting and outages arrive as StatusCode 429/503 on an otherwise
// successful response, not as errors.
type Generation struct {
	Answer     string `json:"answer"`
	StatusCode int    `json:"status_code"`
}
