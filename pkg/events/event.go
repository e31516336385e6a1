package events

// EventType classifies events for transport-specific encoding.
type EventType int

const (
	EvText   EventType = iota // Raw text (universal fallback)
	EvReply                   // Command reply to the invoking caller
	EvNotice                  // Operator notice (reloads, warnings)
)

// ConsoleSlot is the slot the server console receives its events on.
const ConsoleSlot = -1

// String returns a human-readable name for the event type.
func (t EventType) String() string {
	switch t {
	case EvText:
		return "text"
	case EvReply:
		return "reply"
	case EvNotice:
		return "notice"
	default:
		return "unknown"
	}
}

// Event is a message flowing through the bus. Slot is the recipient;
// Command names the command that produced a reply.
type Event struct {
	Type    EventType
	Slot    int
	Command string
	Text    string
}
