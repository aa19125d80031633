package events

import (
	"bufio"
	"encoding/json"
	"errors"
	"fmt"
	"io"
)

// ErrUnknownEventType reports an envelope whose type tag matches no
// known variant. Decoding fails closed rather than dropping the event.
var ErrUnknownEventType = errors.New("unknown event type")

// Log is the event log document: every event a simulation produced,
// together with the configuration seed that produced it.
type Log struct {
	ShopConfigSeed uint32  `json:"shop_config_seed"`
	EventCount     int     `json:"event_count"`
	Events         []Event `json:"events"`
}

// MarshalJSON encodes the log with EventCount derived from the events
// actually present.
func (l Log) MarshalJSON() ([]byte, error) {
	type alias Log
	out := alias(l)
	out.EventCount = len(l.Events)
	return json.Marshal(out)
}

// UnmarshalJSON decodes the log, dispatching each event envelope on its
// type tag.
func (l *Log) UnmarshalJSON(data []byte) error {
	var wire struct {
		ShopConfigSeed uint32            `json:"shop_config_seed"`
		EventCount     int               `json:"event_count"`
		Events         []json.RawMessage `json:"events"`
	}
	if err := json.Unmarshal(data, &wire); err != nil {
		return fmt.Errorf("failed to parse event log: %w", err)
	}

	decoded := make([]Event, 0, len(wire.Events))
	for i, raw := range wire.Events {
		event, err := UnmarshalEvent(raw)
		if err != nil {
			return fmt.Errorf("event %d: %w", i, err)
		}
		decoded = append(decoded, event)
	}

	l.ShopConfigSeed = wire.ShopConfigSeed
	l.EventCount = len(decoded)
	l.Events = decoded
	return nil
}

// WriteJSONLines writes one JSON document per event, newline separated.
func (l Log) WriteJSONLines(w io.Writer) error {
	buffered := bufio.NewWriter(w)
	encoder := json.NewEncoder(buffered)
	for i, event := range l.Events {
		if err := encoder.Encode(event); err != nil {
			return fmt.Errorf("failed to encode event %d: %w", i, err)
		}
	}
	return buffered.Flush()
}

// UnmarshalEvent decodes a single event envelope by its type tag.
func UnmarshalEvent(data []byte) (Event, error) {
	var probe struct {
		Type EventType `json:"event_type"`
	}
	if err := json.Unmarshal(data, &probe); err != nil {
		return nil, fmt.Errorf("failed to parse event envelope: %w", err)
	}

	var (
		event Event
		err   error
	)
	switch probe.Type {
	case TypeSale:
		var e Sale
		err = json.Unmarshal(data, &e)
		event = e
	case TypeReturn:
		var e Return
		err = json.Unmarshal(data, &e)
		event = e
	case TypeVoid:
		var e Void
		err = json.Unmarshal(data, &e)
		event = e
	case TypeCorrection:
		var e Correction
		err = json.Unmarshal(data, &e)
		event = e
	case TypeInventoryAdjustment:
		var e InventoryAdjustment
		err = json.Unmarshal(data, &e)
		event = e
	case TypeInventorySnapshot:
		var e InventorySnapshot
		err = json.Unmarshal(data, &e)
		event = e
	case TypeProductChange:
		var e ProductChange
		err = json.Unmarshal(data, &e)
		event = e
	case TypeStoreChange:
		var e StoreChange
		err = json.Unmarshal(data, &e)
		event = e
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownEventType, probe.Type)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to parse %s event: %w", probe.Type, err)
	}
	return event, nil
}
