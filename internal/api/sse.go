package api

import (
	"encoding/json"
	"fmt"

	"github.com/lxlab/oss-scout/internal/models"
)

// SSEEvent is one server-sent event frame.
type SSEEvent struct {
	Event string
	Data  any
}

// Format renders the frame as `event: <name>\ndata: <json>\n\n`.
func (e SSEEvent) Format() (string, error) {
	jsonData, err := json.Marshal(e.Data)
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("event: %s\ndata: %s\n\n", e.Event, jsonData), nil
}

type intentPayload struct {
	Keywords []string `json:"keywords"`
}

type errorPayload struct {
	Error string `json:"error"`
}

type donePayload struct {
	Count int `json:"count"`
}

// toSSE maps a pipeline event onto its wire frame.
func toSSE(ev models.Event) SSEEvent {
	switch ev.Type {
	case models.EventIntent:
		return SSEEvent{Event: string(ev.Type), Data: intentPayload{Keywords: ev.Keywords}}
	case models.EventItem:
		return SSEEvent{Event: string(ev.Type), Data: ev.Item}
	case models.EventError:
		return SSEEvent{Event: string(ev.Type), Data: errorPayload{Error: ev.Message}}
	default:
		return SSEEvent{Event: string(ev.Type), Data: donePayload{Count: ev.Count}}
	}
}
