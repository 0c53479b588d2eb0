package announcement

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strings"
)

// NameSeparator joins holiday names that share the same dates
const NameSeparator = "、"

// Entry holds the resolved days of one holiday
type Entry struct {
	Dates    []Date `json:"dates"`
	WorkDays []Date `json:"work_days"`
}

func (e Entry) clone() Entry {
	return Entry{
		Dates:    append([]Date{}, e.Dates...),
		WorkDays: append([]Date{}, e.WorkDays...),
	}
}

// datesKey identifies the exact date tuple of an entry; undated entries share "".
func (e Entry) datesKey() string {
	parts := make([]string, len(e.Dates))
	for i, d := range e.Dates {
		parts[i] = d.String()
	}
	return strings.Join(parts, ",")
}

// Holidays maps holiday names to entries and keeps insertion order.
// The zero value is ready to use.
type Holidays struct {
	names   []string
	entries map[string]Entry
}

// Set stores e under name. Replacing an existing name keeps its position.
func (h *Holidays) Set(name string, e Entry) {
	if h.entries == nil {
		h.entries = make(map[string]Entry)
	}
	if _, ok := h.entries[name]; !ok {
		h.names = append(h.names, name)
	}
	h.entries[name] = e
}

// Get returns the entry stored under name
func (h *Holidays) Get(name string) (Entry, bool) {
	e, ok := h.entries[name]
	return e, ok
}

// Names returns holiday names in insertion order
func (h *Holidays) Names() []string {
	return append([]string(nil), h.names...)
}

// Len returns the number of holidays
func (h *Holidays) Len() int {
	return len(h.names)
}

// MarshalJSON encodes the holidays as a JSON object in insertion order
func (h Holidays) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte('{')
	for i, name := range h.names {
		if i > 0 {
			buf.WriteByte(',')
		}
		key, err := json.Marshal(name)
		if err != nil {
			return nil, err
		}
		value, err := json.Marshal(h.entries[name])
		if err != nil {
			return nil, fmt.Errorf("failed to encode holiday %q: %w", name, err)
		}
		buf.Write(key)
		buf.WriteByte(':')
		buf.Write(value)
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}

// UnmarshalJSON decodes a JSON object and keeps the key order
func (h *Holidays) UnmarshalJSON(data []byte) error {
	*h = Holidays{}
	if bytes.Equal(bytes.TrimSpace(data), []byte("null")) {
		return nil
	}

	dec := json.NewDecoder(bytes.NewReader(data))
	tok, err := dec.Token()
	if err != nil {
		return err
	}
	if delim, ok := tok.(json.Delim); !ok || delim != '{' {
		return fmt.Errorf("holidays must be a JSON object")
	}

	for dec.More() {
		tok, err := dec.Token()
		if err != nil {
			return err
		}
		name, ok := tok.(string)
		if !ok {
			return fmt.Errorf("unexpected holiday key %v", tok)
		}
		var e Entry
		if err := dec.Decode(&e); err != nil {
			return fmt.Errorf("failed to decode holiday %q: %w", name, err)
		}
		h.Set(name, e)
	}

	_, err = dec.Token()
	return err
}

// Metadata describes the announcement itself
type Metadata struct {
	PublishDate *Date `json:"publish_date"`
}

// Result is the structured content of one announcement
type Result struct {
	Holidays Holidays `json:"holidays"`
	Metadata Metadata `json:"metadata"`
}
