package amqp

import (
	"encoding/json"
	"errors"
	"time"
)

// ReloadMessage announces that the contracts behind a source key changed.
// Consumers drop their cached dataset for Key.
type ReloadMessage struct {
	Key       string    `json:"key"`
	Rows      int       `json:"rows"`
	Timestamp time.Time `json:"timestamp"`
}

var errMissingKey = errors.New("reload message without key")

func NewReloadMessage(key string, rows int) *ReloadMessage {
	return &ReloadMessage{
		Key:       key,
		Rows:      rows,
		Timestamp: time.Now().UTC(),
	}
}

// ToJSON converts the message to JSON bytes
func (m *ReloadMessage) ToJSON() ([]byte, error) {
	return json.Marshal(m)
}

// ReloadMessageFromJSON decodes and validates a message body.
func ReloadMessageFromJSON(data []byte) (*ReloadMessage, error) {
	var msg ReloadMessage
	if err := json.Unmarshal(data, &msg); err != nil {
		return nil, err
	}
	if msg.Key == "" {
		return nil, errMissingKey
	}
	return &msg, nil
}
