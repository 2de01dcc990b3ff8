package ws

import (
	"encoding/json"
	"errors"
	"strings"
)

const (
	EventRegisterUser = "register_user"
	EventSendMessage  = "send_message"
	EventError        = "error"
)

// Envelope is an inbound frame. Data is decoded per event.
type Envelope struct {
	Event string          `json:"event"`
	Data  json.RawMessage `json:"data,omitempty"`
}

type outbound struct {
	Event string `json:"event"`
	Data  any    `json:"data"`
}

// ErrorPayload reports a failed inbound event back to its sender.
type ErrorPayload struct {
	Event string `json:"event"`
	Error string `json:"error"`
}

var errEmptyUserID = errors.New("empty user id")

// parseUserID accepts register_user data either as a bare JSON string or as
// {"userId": "..."}.
func parseUserID(data json.RawMessage) (string, error) {
	var id string
	if err := json.Unmarshal(data, &id); err != nil {
		var obj struct {
			UserID string `json:"userId"`
		}
		if err := json.Unmarshal(data, &obj); err != nil {
			return "", err
		}
		id = obj.UserID
	}

	id = strings.TrimSpace(id)
	if id == "" {
		return "", errEmptyUserID
	}
	return id, nil
}
