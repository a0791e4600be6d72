package realtime

import (
	"encoding/json"
	"time"
	"unicode/utf8"
)

// Event names on the wire.
const (
	EventSendMessage    = "send_message"
	EventReceiveMessage = "receive_message"
)

// DisplayTimeLayout formats the server instant when a client sends no time.
const DisplayTimeLayout = "15:04"

// MaxDisplayTimeRunes bounds the client display string that is echoed back.
// Longer values are ignored in favor of the server instant.
const MaxDisplayTimeRunes = 32

// Envelope is the frame shape for both directions.
type Envelope struct {
	Event string          `json:"event"`
	Data  json.RawMessage `json:"data"`
}

// SendMessage is the inbound chat payload. Time is the client's display
// string and is echoed back but never stored.
type SendMessage struct {
	Author  string `json:"author"  validate:"required"`
	Message string `json:"message" validate:"required"`
	Time    string `json:"time"`
}

// ReceiveMessage is the outbound chat payload.
type ReceiveMessage struct {
	Author  string `json:"author"`
	Message string `json:"message"`
	Time    string `json:"time"`
}

func displayTime(clientTime string, at time.Time) string {
	if clientTime != "" && utf8.ValidString(clientTime) &&
		utf8.RuneCountInString(clientTime) <= MaxDisplayTimeRunes {
		return clientTime
	}
	return at.UTC().Format(DisplayTimeLayout)
}

func encodeReceive(m ReceiveMessage) ([]byte, error) {
	data, err := json.Marshal(m)
	if err != nil {
		return nil, err
	}
	return json.Marshal(Envelope{Event: EventReceiveMessage, Data: data})
}
