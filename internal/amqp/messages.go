package amqp

import (
	"encoding/json"
	"fmt"

	"fintrack/internal/ports"
)

// EncodeEvent renders ev as the JSON message body.
func EncodeEvent(ev ports.TransactionEvent) ([]byte, error) {
	return json.Marshal(ev)
}

// DecodeEvent parses and sanity-checks a message body.
func DecodeEvent(data []byte) (ports.TransactionEvent, error) {
	var ev ports.TransactionEvent
	if err := json.Unmarshal(data, &ev); err != nil {
		return ports.TransactionEvent{}, err
	}
	switch ev.Kind {
	case ports.EventCreated, ports.EventUpdated:
		if ev.Transaction == nil {
			return ports.TransactionEvent{}, fmt.Errorf("%s event without transaction", ev.Kind)
		}
	case ports.EventDeleted:
	default:
		return ports.TransactionEvent{}, fmt.Errorf("unknown event kind %q", ev.Kind)
	}
	if ev.TransactionID == "" {
		return ports.TransactionEvent{}, fmt.Errorf("event without transaction id")
	}
	return ev, nil
}
