package models

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"
)

// IDList is an ordered set of ids stored as a JSON array column.
type IDList []uint64

// Contains reports whether id is in the list.
func (l IDList) Contains(id uint64) bool {
	for _, v := range l {
		if v == id {
			return true
		}
	}
	return false
}

// Add appends id unless it is already present. It reports whether the list changed.
func (l *IDList) Add(id uint64) bool {
	if l.Contains(id) {
		return false
	}
	*l = append(*l, id)
	return true
}

// Remove deletes id, keeping the order of the remaining ids. It reports whether the list changed.
func (l *IDList) Remove(id uint64) bool {
	out := (*l)[:0]
	removed := false
	for _, v := range *l {
		if v == id {
			removed = true
			continue
		}
		out = append(out, v)
	}
	*l = out
	return removed
}

// Value implements driver.Valuer.
func (l IDList) Value() (driver.Value, error) {
	if l == nil {
		return "[]", nil
	}
	b, err := json.Marshal([]uint64(l))
	if err != nil {
		return nil, err
	}
	return string(b), nil
}

// Scan implements sql.Scanner.
func (l *IDList) Scan(src any) error {
	return scanJSON(src, l)
}

func scanJSON(src any, dst any) error {
	var data []byte
	switch v := src.(type) {
	case nil:
		return nil
	case []byte:
		data = v
	case string:
		data = []byte(v)
	default:
		return fmt.Errorf("unsupported type %T for JSON column", src)
	}
	if len(data) == 0 {
		return nil
	}
	return json.Unmarshal(data, dst)
}
