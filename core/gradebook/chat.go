package gradebook

import (
	"context"
	"sync"

	"github.com/bobur6/professor-ai-helper/core"
)

// Chat is a conversation with the assistant about one text. Each question is sent with
// the history so far; both sides of every exchange are recorded.
type Chat struct {
	ai Assistant

	mu      sync.Mutex
	history []ChatMessage
}

func NewChat(ai Assistant) *Chat {
	return &Chat{ai: ai}
}

// Ask sends query about text. A failed exchange is recorded with an apology as the answer.
func (c *Chat) Ask(ctx context.Context, text, query string) (string, error) {
	query = core.CleanString(query)
	if query == "" {
		return "", core.NewValidationError(nil, core.FieldError{Field: "query", Error: "this field cannot be blank"})
	}
	if c.ai == nil {
		return "", errNoAssistant
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	req := ChatRequest{
		DocumentText: text,
		Query:        query,
		History:      append([]ChatMessage(nil), c.history...),
	}
	c.history = append(c.history, ChatMessage{Role: RoleUser, Content: query})

	answer, err := c.ai.Chat(ctx, req)
	if err != nil {
		c.history = append(c.history, ChatMessage{Role: RoleAssistant, Content: chatApology})
		return "", err
	}
	c.history = append(c.history, ChatMessage{Role: RoleAssistant, Content: answer})
	return answer, nil
}

func (c *Chat) History() []ChatMessage {
	c.mu.Lock()
	defer c.mu.Unlock()
	return append([]ChatMessage(nil), c.history...)
}
