package toolchain

import (
	"net/http"
	"strings"

	"github.com/google/uuid"
)

// Correlation headers carried on every tool request.
const (
	HeaderConversationID = "X-Conversation-ID"
	HeaderMessageID      = "X-Message-ID"
	HeaderUserID         = "X-User-ID"
	HeaderSessionID      = "X-Session-ID"
)

// Correlation ties a tool result to the conversation that produced it.
type Correlation struct {
	ConversationID string
	MessageID      string
	UserID         string
	SessionID      string
}

// CorrelationFromHeaders reads the correlation headers, leaving absent ones empty.
func CorrelationFromHeaders(h http.Header) Correlation {
	return Correlation{
		ConversationID: strings.TrimSpace(h.Get(HeaderConversationID)),
		MessageID:      strings.TrimSpace(h.Get(HeaderMessageID)),
		UserID:         strings.TrimSpace(h.Get(HeaderUserID)),
		SessionID:      strings.TrimSpace(h.Get(HeaderSessionID)),
	}
}

// Headers renders the correlation as request headers. A message id is minted
// when none is set.
func (c Correlation) Headers() http.Header {
	h := http.Header{}
	messageID := c.MessageID
	if messageID == "" {
		messageID = NewMessageID()
	}
	h.Set(HeaderConversationID, c.ConversationID)
	h.Set(HeaderMessageID, messageID)
	h.Set(HeaderUserID, c.UserID)
	h.Set(HeaderSessionID, c.SessionID)
	return h
}

// NewMessageID returns a message identifier in the msg-<uuid> form.
func NewMessageID() string {
	return "msg-" + uuid.NewString()
}
