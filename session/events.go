package session

import (
	"encoding/json"
	"time"
)

// EventType discriminates the control messages exchanged with a client.
// The final prose answer of a turn is not typed; it travels as bare text.
type EventType string

const (
	TypePing    EventType = "ping"
	TypePong    EventType = "pong"
	TypeInfo    EventType = "info"
	TypeQuery   EventType = "query"
	TypeResults EventType = "results"
	TypeError   EventType = "error"

	// typeFinal never appears on the wire; it marks an event whose
	// Message is sent as a bare text frame.
	typeFinal EventType = "final"
)

// Event is one server-to-client message. Control events encode as JSON;
// the final answer encodes as its message text verbatim.
type Event struct {
	Type    EventType `json:"type"`
	Message string    `json:"message,omitempty"`
	Help    []string  `json:"help,omitempty"`
	Debug   string    `json:"debug,omitempty"`
	TS      int64     `json:"ts,omitempty"`
}

// Bare reports whether the event is sent as a raw text frame.
func (e Event) Bare() bool {
	return e.Type == typeFinal
}

// Encode renders the event into its wire form.
func (e Event) Encode() ([]byte, error) {
	if e.Bare() {
		return []byte(e.Message), nil
	}
	return json.Marshal(e)
}

// Ping returns a liveness probe event.
func Ping() Event {
	return Event{Type: TypePing, TS: time.Now().Unix()}
}

// Info returns a progress note.
func Info(message string) Event {
	return Event{Type: TypeInfo, Message: message}
}

// QueryDisclosure returns the event disclosing the statement about to run.
func QueryDisclosure(statement string) Event {
	return Event{Type: TypeQuery, Message: "**Database Query:** `" + statement + "`"}
}

// Results returns the event carrying a tabulated execution result.
func Results(table string) Event {
	return Event{Type: TypeResults, Message: table}
}

// Error returns a user-visible failure event. help and debug may be
// empty; debug is attached only when the operator enabled it.
func Error(message string, help []string, debug string) Event {
	return Event{Type: TypeError, Message: message, Help: help, Debug: debug}
}

// Final returns the turn's closing prose answer.
func Final(text string) Event {
	return Event{Type: typeFinal, Message: text}
}

// Inbound is the decoded form of a client frame.
type Inbound struct {
	control bool
	evType  EventType
	text    string
}

// Control reports whether the frame is a control message rather than a
// user prompt.
func (in Inbound) Control() bool {
	return in.control
}

// EventType returns the control message's type discriminator.
func (in Inbound) EventType() EventType {
	return in.evType
}

// Text returns the user prompt carried by a non-control frame.
func (in Inbound) Text() string {
	return in.text
}

// ParseInbound decodes a client frame. JSON objects carrying a type
// discriminator are control messages; everything else is a user prompt.
func ParseInbound(data []byte) Inbound {
	var probe struct {
		Type EventType `json:"type"`
	}
	if json.Unmarshal(data, &probe) == nil && probe.Type != "" {
		return Inbound{control: true, evType: probe.Type}
	}
	return Inbound{text: string(data)}
}
