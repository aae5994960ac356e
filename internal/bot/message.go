package bot

// Embed colors.
const (
	ColorLighterGrey = 0x95a5a6
	ColorGreen       = 0x2ecc71
)

// Author is the sender of a chat message.
type Author struct {
	ID          string   `json:"id" validate:"required"`
	DisplayName string   `json:"display_name"`
	Mention     string   `json:"mention"`
	Roles       []string `json:"roles"`
}

// Message is an inbound chat message.
type Message struct {
	ChannelID string `json:"channel_id"`
	MessageID string `json:"message_id"`
	Author    Author `json:"author"`
	Content   string `json:"content" validate:"required"`
}

// Field is a name/value line inside an embed.
type Field struct {
	Name   string `json:"name"`
	Value  string `json:"value"`
	Inline bool   `json:"inline"`
}

// Embed is a rich card reply.
type Embed struct {
	Title       string  `json:"title"`
	Description string  `json:"description,omitempty"`
	Thumbnail   string  `json:"thumbnail,omitempty"`
	Color       int     `json:"color"`
	Fields      []Field `json:"fields,omitempty"`
	Footer      string  `json:"footer,omitempty"`
}

// Reply is a single outbound message. DeleteAfter is in seconds, zero keeps it.
type Reply struct {
	Content     string `json:"content,omitempty"`
	Embed       *Embed `json:"embed,omitempty"`
	DeleteAfter int    `json:"delete_after,omitempty"`
}

// Response is what the chat adapter must do for a handled message.
type Response struct {
	DeleteTrigger bool    `json:"delete_trigger"`
	Replies       []Reply `json:"replies"`
}
