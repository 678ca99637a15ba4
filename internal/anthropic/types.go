// ABOUTME: Wire types for the hosted completion API
// ABOUTME: Request/response JSON shapes, content blocks, and the Completion result

package anthropic

// Role constants for conversation messages.
const (
	RoleUser      = "user"
	RoleAssistant = "assistant"
)

// Message is one role-tagged turn in a conversation.
type Message struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// Options selects the model and bounds for a completion request.
type Options struct {
	Model     string
	MaxTokens int
	System    string // optional system prompt
}

// Usage reports token consumption for one exchange.
type Usage struct {
	InputTokens  int `json:"input_tokens"`
	OutputTokens int `json:"output_tokens"`
}

// Completion is the result of a non-streaming exchange.
type Completion struct {
	Text       string
	StopReason string
	Model      string
	Usage      Usage
}

// messagesRequest is the wire request body. Stream is true only for the
// streaming operation.
type messagesRequest struct {
	Model     string    `json:"model"`
	MaxTokens int       `json:"max_tokens"`
	System    string    `json:"system,omitempty"`
	Messages  []Message `json:"messages"`
	Stream    bool      `json:"stream"`
}

// contentBlock is a tagged variant within a response. Types other than
// "text" are tolerated and contribute no text, preserving forward
// compatibility with block types this client does not know about.
type contentBlock struct {
	Type string `json:"type"`
	Text string `json:"text"`
}

func (b contentBlock) text() string {
	if b.Type != "text" {
		return ""
	}
	return b.Text
}

// messagesResponse is the wire response body of a non-streaming call.
type messagesResponse struct {
	ID         string         `json:"id"`
	Type       string         `json:"type"`
	Role       string         `json:"role"`
	Content    []contentBlock `json:"content"`
	Model      string         `json:"model"`
	StopReason string         `json:"stop_reason"`
	Usage      Usage          `json:"usage"`
}

// errorResponse is the wire shape of an API error body. Parsing it is
// best effort; an unparseable body is not itself an error.
type errorResponse struct {
	Type  string `json:"type"`
	Error struct {
		Type    string `json:"type"`
		Message string `json:"message"`
	} `json:"error"`
}

// streamEvent is one server-sent event payload during streaming. Only
// content_block_delta events with a text_delta contribute output;
// message_start and message_delta additionally carry token counts.
type streamEvent struct {
	Type  string `json:"type"`
	Delta struct {
		Type string `json:"type"`
		Text string `json:"text"`
	} `json:"delta"`
	Message struct {
		Model string `json:"model"`
		Usage Usage  `json:"usage"`
	} `json:"message"`
	Usage Usage `json:"usage"`
}
