package store

import (
	"bytes"
	"encoding/csv"
	"encoding/gob"
	"encoding/json"
	"fmt"
	"io"
)

// Format names a store serialization.
type Format string

// Supported serializations. Decoding tries them in this order, most
// structurally restrictive first, so the order decides which format wins
// when a file happens to parse as more than one.
const (
	FormatGob  Format = "gob"
	FormatJSON Format = "json"
	FormatCSV  Format = "csv"
)

// ParseFormat validates a format name from config or flags.
func ParseFormat(s string) (Format, error) {
	switch Format(s) {
	case FormatGob, FormatJSON, FormatCSV:
		return Format(s), nil
	default:
		return "", fmt.Errorf("unknown store format %q", s)
	}
}

// encode writes values to w in the given format.
//
// JSON is a single object keyed by store key, with each value embedded
// verbatim. CSV is one key,value row per entry with the JSON value as
// the second field. Gob encodes the map directly.
func encode(w io.Writer, format Format, values map[string]json.RawMessage) error {
	switch format {
	case FormatGob:
		return gob.NewEncoder(w).Encode(values)
	case FormatJSON:
		return json.NewEncoder(w).Encode(values)
	case FormatCSV:
		cw := csv.NewWriter(w)
		for key, value := range values {
			if err := cw.Write([]string{key, string(value)}); err != nil {
				return err
			}
		}
		cw.Flush()
		return cw.Error()
	default:
		return fmt.Errorf("unknown store format %q", format)
	}
}

// decode sniffs data by trying each decoder in priority order.
func decode(data []byte) (map[string]json.RawMessage, error) {
	for _, dec := range decoders {
		if values, err := dec(data); err == nil {
			return values, nil
		}
	}
	return nil, ErrBadFormat
}

// decoders in sniffing priority order.
var decoders = []func([]byte) (map[string]json.RawMessage, error){
	decodeGob,
	decodeJSON,
	decodeCSV,
}

func decodeGob(data []byte) (map[string]json.RawMessage, error) {
	var values map[string]json.RawMessage
	if err := gob.NewDecoder(bytes.NewReader(data)).Decode(&values); err != nil {
		return nil, err
	}
	if values == nil {
		values = make(map[string]json.RawMessage)
	}
	return values, nil
}

func decodeJSON(data []byte) (map[string]json.RawMessage, error) {
	var values map[string]json.RawMessage
	if err := json.Unmarshal(data, &values); err != nil {
		return nil, err
	}
	if values == nil {
		values = make(map[string]json.RawMessage)
	}
	return values, nil
}

func decodeCSV(data []byte) (map[string]json.RawMessage, error) {
	records, err := csv.NewReader(bytes.NewReader(data)).ReadAll()
	if err != nil {
		return nil, err
	}
	values := make(map[string]json.RawMessage, len(records))
	for _, record := range records {
		if len(record) != 2 {
			return nil, fmt.Errorf("csv row has %d fields, want 2", len(record))
		}
		if !json.Valid([]byte(record[1])) {
			return nil, fmt.Errorf("csv value for %q is not valid JSON", record[0])
		}
		values[record[0]] = json.RawMessage(record[1])
	}
	return values, nil
}
