package tabular

import (
	"bytes"
	"encoding/json"
	"fmt"
	"time"

	"github.com/tidwall/jsonc"
)

// ReadJSON builds a table from JSON. Three shapes are accepted: an object of
// equal-length arrays keyed by column name, an array of row objects, or the
// {"columns": [...], "rows": [...]} document that Document encodes. Comments
// and trailing commas are allowed. Key order is preserved.
func ReadJSON(data []byte) (*Table, error) {
	data = bytes.TrimSpace(jsonc.ToJSON(data))
	if len(data) == 0 {
		return nil, ErrEmpty
	}
	switch data[0] {
	case '{':
		return readColumnObject(data)
	case '[':
		return readRecordArray(data)
	default:
		return nil, fmt.Errorf("json table must be an object of columns or an array of rows")
	}
}

func readColumnObject(data []byte) (*Table, error) {
	keys, raws, err := orderedObject(json.NewDecoder(bytes.NewReader(data)))
	if err != nil {
		return nil, err
	}
	if isDocument(keys, raws) {
		return readDocument(raws)
	}
	values := make([][]any, len(keys))
	for i, k := range keys {
		var items []json.RawMessage
		if err := json.Unmarshal(raws[k], &items); err != nil {
			return nil, fmt.Errorf("column %q: expected an array: %w", k, err)
		}
		values[i] = make([]any, len(items))
		for j, item := range items {
			v, err := scalar(item)
			if err != nil {
				return nil, fmt.Errorf("column %q, row %d: %w", k, j+1, err)
			}
			values[i][j] = v
		}
	}
	return FromColumns(keys, values)
}

func readRecordArray(data []byte) (*Table, error) {
	dec := json.NewDecoder(bytes.NewReader(data))
	if _, err := dec.Token(); err != nil {
		return nil, fmt.Errorf("decode json rows: %w", err)
	}

	var keys []string
	index := map[string]int{}
	var rows []map[string]any
	for dec.More() {
		rowKeys, raws, err := orderedObject(dec)
		if err != nil {
			return nil, fmt.Errorf("row %d: %w", len(rows)+1, err)
		}
		row := make(map[string]any, len(rowKeys))
		for _, k := range rowKeys {
			if _, ok := index[k]; !ok {
				index[k] = len(keys)
				keys = append(keys, k)
			}
			v, err := scalar(raws[k])
			if err != nil {
				return nil, fmt.Errorf("row %d, key %q: %w", len(rows)+1, k, err)
			}
			row[k] = v
		}
		rows = append(rows, row)
	}
	if len(rows) == 0 {
		return nil, ErrEmpty
	}

	values := make([][]any, len(keys))
	for i, k := range keys {
		values[i] = make([]any, len(rows))
		for j, row := range rows {
			values[i][j] = row[k]
		}
	}
	return FromColumns(keys, values)
}

func isDocument(keys []string, raws map[string]json.RawMessage) bool {
	if len(keys) != 2 || raws["columns"] == nil || raws["rows"] == nil {
		return false
	}
	var cols []struct {
		Name *string `json:"name"`
	}
	if err := json.Unmarshal(raws["columns"], &cols); err != nil {
		return false
	}
	for _, c := range cols {
		if c.Name == nil {
			return false
		}
	}
	return true
}

// readDocument decodes the columns/rows document. Declared float, date and
// datetime columns get their values back in the declared type.
func readDocument(raws map[string]json.RawMessage) (*Table, error) {
	var cols []Column
	if err := json.Unmarshal(raws["columns"], &cols); err != nil {
		return nil, fmt.Errorf("decode columns: %w", err)
	}
	var rows [][]json.RawMessage
	if err := json.Unmarshal(raws["rows"], &rows); err != nil {
		return nil, fmt.Errorf("decode rows: %w", err)
	}

	names := make([]string, len(cols))
	values := make([][]any, len(cols))
	for i, c := range cols {
		names[i] = c.Name
		values[i] = make([]any, len(rows))
	}
	for r, row := range rows {
		if len(row) != len(cols) {
			return nil, fmt.Errorf("row %d has %d cells, want %d", r+1, len(row), len(cols))
		}
		for c, raw := range row {
			v, err := scalar(raw)
			if err != nil {
				return nil, fmt.Errorf("row %d, column %q: %w", r+1, names[c], err)
			}
			switch val := v.(type) {
			case int64:
				if cols[c].Type == Float {
					v = float64(val)
				}
			case string:
				if cols[c].Type == Date {
					if ts, err := time.Parse(dateLayout, val); err == nil {
						v = ts
					}
				} else if cols[c].Type == DateTime {
					if ts, ok := parseDateTime(val); ok {
						v = ts
					} else if ts, err := time.Parse(dateLayout, val); err == nil {
						v = ts
					}
				}
			}
			values[c][r] = v
		}
	}
	return FromColumns(names, values)
}

// orderedObject reads one JSON object from dec, keeping key order.
func orderedObject(dec *json.Decoder) ([]string, map[string]json.RawMessage, error) {
	tok, err := dec.Token()
	if err != nil {
		return nil, nil, fmt.Errorf("decode json: %w", err)
	}
	if d, ok := tok.(json.Delim); !ok || d != '{' {
		return nil, nil, fmt.Errorf("expected a json object, got %v", tok)
	}
	var keys []string
	raws := map[string]json.RawMessage{}
	for dec.More() {
		tok, err := dec.Token()
		if err != nil {
			return nil, nil, fmt.Errorf("decode json: %w", err)
		}
		key := tok.(string)
		var raw json.RawMessage
		if err := dec.Decode(&raw); err != nil {
			return nil, nil, fmt.Errorf("decode json value for %q: %w", key, err)
		}
		if _, dup := raws[key]; !dup {
			keys = append(keys, key)
		}
		raws[key] = raw
	}
	if _, err := dec.Token(); err != nil {
		return nil, nil, fmt.Errorf("decode json: %w", err)
	}
	return keys, raws, nil
}

func scalar(raw json.RawMessage) (any, error) {
	dec := json.NewDecoder(bytes.NewReader(raw))
	dec.UseNumber()
	var v any
	if err := dec.Decode(&v); err != nil {
		return nil, err
	}
	switch val := v.(type) {
	case nil, bool, string:
		return val, nil
	case json.Number:
		if i, err := val.Int64(); err == nil {
			return i, nil
		}
		return val.Float64()
	default:
		return nil, fmt.Errorf("nested values are not supported in a table cell")
	}
}
