package chat

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"

	"presencehub/internal/app/user"
)

// EventKind tags the three protocol events.
type EventKind string

const (
	KindJoin  EventKind = "join"
	KindSend  EventKind = "send"
	KindLeave EventKind = "leave"
)

// wireTypeExit is the legacy spelling of "leave" still sent by older clients.
const wireTypeExit = "exit"

// Event is a decoded protocol message. Text is only meaningful for KindSend.
type Event struct {
	Kind EventKind
	User user.User
	Text string
}

// ParseError reports a frame that is not a valid protocol event.
type ParseError struct {
	Reason string
	Err    error
}

func (e *ParseError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("chat: invalid frame: %s: %v", e.Reason, e.Err)
	}
	return "chat: invalid frame: " + e.Reason
}

func (e *ParseError) Unwrap() error {
	return e.Err
}

// inboundFrame mirrors the JSON accepted from clients. Pointers distinguish
// missing fields from empty ones.
type inboundFrame struct {
	Type    string     `json:"type"`
	User    *user.User `json:"user"`
	Text    *string    `json:"text"`
	Message *string    `json:"message"`
}

// outboundFrame is the JSON written to clients for events. Sends carry the text
// under both "text" and the legacy "message" key.
type outboundFrame struct {
	Type    EventKind `json:"type"`
	User    user.User `json:"user"`
	Text    *string   `json:"text,omitempty"`
	Message *string   `json:"message,omitempty"`
}

// DecodeEvent validates a client frame and turns it into an Event.
// All shape checks happen here; nothing downstream looks at raw JSON.
func DecodeEvent(frame []byte) (Event, error) {
	var in inboundFrame
	if err := json.Unmarshal(frame, &in); err != nil {
		return Event{}, &ParseError{Reason: "malformed JSON object", Err: err}
	}

	if in.User == nil || in.User.ID == "" {
		return Event{}, &ParseError{Reason: "missing user id"}
	}

	ev := Event{User: *in.User}

	switch in.Type {
	case string(KindJoin):
		ev.Kind = KindJoin
	case string(KindLeave), wireTypeExit:
		ev.Kind = KindLeave
	case string(KindSend):
		ev.Kind = KindSend
		switch {
		case in.Text != nil:
			ev.Text = *in.Text
		case in.Message != nil:
			ev.Text = *in.Message
		default:
			return Event{}, &ParseError{Reason: "send without text"}
		}
		return ev, nil
	case "":
		return Event{}, &ParseError{Reason: "missing type"}
	default:
		return Event{}, &ParseError{Reason: fmt.Sprintf("unknown type %q", in.Type)}
	}

	if ev.User.Name == "" {
		return Event{}, &ParseError{Reason: "missing user name"}
	}

	return ev, nil
}

// EncodeEvent renders ev as a tagged JSON object.
func EncodeEvent(ev Event) ([]byte, error) {
	out := outboundFrame{Type: ev.Kind, User: ev.User}

	switch ev.Kind {
	case KindJoin, KindLeave:
	case KindSend:
		text := ev.Text
		out.Text = &text
		out.Message = &text
	default:
		return nil, fmt.Errorf("chat: cannot encode event kind %q", ev.Kind)
	}

	return json.Marshal(out)
}

// FrameKind distinguishes the two shapes a server frame can take.
type FrameKind int

const (
	FrameEvent FrameKind = iota + 1
	FrameRoster
)

// ServerFrame is a decoded hub→client frame: either an Event or a roster snapshot.
type ServerFrame struct {
	Kind   FrameKind
	Event  Event
	Roster []user.User
}

var errEmptyFrame = errors.New("empty frame")

// DecodeServerFrame discriminates a hub frame by its JSON shape once, at the
// boundary: arrays are roster snapshots, objects are events.
func DecodeServerFrame(frame []byte) (ServerFrame, error) {
	trimmed := bytes.TrimLeft(frame, " \t\r\n")
	if len(trimmed) == 0 {
		return ServerFrame{}, &ParseError{Reason: "empty frame", Err: errEmptyFrame}
	}

	if trimmed[0] == '[' {
		roster, err := DecodeRoster(trimmed)
		if err != nil {
			return ServerFrame{}, err
		}
		return ServerFrame{Kind: FrameRoster, Roster: roster}, nil
	}

	ev, err := DecodeEvent(trimmed)
	if err != nil {
		return ServerFrame{}, err
	}
	return ServerFrame{Kind: FrameEvent, Event: ev}, nil
}
