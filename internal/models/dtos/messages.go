package dtos

// ChatKind distinguishes one-on-one chats from groups and channels.
type ChatKind string

const (
	ChatPrivate ChatKind = "private"
	ChatShared  ChatKind = "shared"
)

// Button is one inline button: a label and the command it sends back.
type Button struct {
	Label   string
	Command string
}

// OutboundMessage is plain text plus rows of buttons.
type OutboundMessage struct {
	Text    string
	Buttons [][]Button
}

// MessageRef points at a message already sent.
type MessageRef struct {
	ChatID    int64
	MessageID int64
}

// Interaction is one inbound text or button press, already stripped of
// transport details.
type Interaction struct {
	UpdateID int64
	UserID   int64
	UserName string
	ChatID   int64
	ChatKind ChatKind

	// Command is the button payload; empty for typed text.
	Command string
	Text    string

	// Message is the message that carried the pressed button, if any.
	Message *MessageRef
	// CallbackID acknowledges a button press; empty for typed text.
	CallbackID string
}

func (i *Interaction) IsCallback() bool {
	return i.CallbackID != ""
}

func (i *Interaction) IsPrivate() bool {
	return i.ChatKind == ChatPrivate
}

// Row is shorthand for a single-row keyboard line.
func Row(buttons ...Button) []Button {
	return buttons
}
