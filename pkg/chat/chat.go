// Package chat builds JSON chat components for 1.8 clients.
package chat

import (
	"bytes"
	"encoding/json"
	"fmt"
)

// Message is a JSON chat component.
type Message struct {
	Text   string    `json:"text"`
	Bold   bool      `json:"bold,omitempty"`
	Italic bool      `json:"italic,omitempty"`
	Color  string    `json:"color,omitempty"`
	Extra  []Message `json:"extra,omitempty"`
}

// String serializes the message to JSON. Characters such as < and > are
// written as is so chat lines like "<Alex> hi" stay readable.
func (m Message) String() string {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	_ = enc.Encode(m)
	return string(bytes.TrimSuffix(buf.Bytes(), []byte("\n")))
}

// Text creates a plain message.
func Text(text string) Message {
	return Message{Text: text}
}

// Colored creates a message in one color.
func Colored(text, color string) Message {
	return Message{Text: text, Color: color}
}

// Join concatenates components into one message.
func Join(parts ...Message) Message {
	return Message{Extra: parts}
}

// Infof formats command feedback.
func Infof(format string, args ...any) Message {
	return Colored(fmt.Sprintf(format, args...), "gray")
}

// Errorf formats a command error.
func Errorf(format string, args ...any) Message {
	return Colored(fmt.Sprintf(format, args...), "red")
}
