package models

import (
	"encoding/json"
	"fmt"
	"reflect"
	"strconv"
	"strings"
	"sync"
)

// lapFieldMap caches JSON tag -> struct field index mappings
var (
	lapFieldMap     map[string]int
	lapFieldMapOnce sync.Once
)

func getLapFieldMap() map[string]int {
	lapFieldMapOnce.Do(func() {
		t := reflect.TypeOf(Lap{})
		lapFieldMap = make(map[string]int, t.NumField())
		for i := 0; i < t.NumField(); i++ {
			tag := t.Field(i).Tag.Get("json")
			if tag == "" || tag == "-" {
				continue
			}
			name := strings.Split(tag, ",")[0]
			lapFieldMap[name] = i
		}
	})
	return lapFieldMap
}

// UnmarshalJSON implements flexible JSON unmarshaling that accepts both
// string-encoded and native JSON types. Timing feeds serialize durations
// inconsistently (numbers, quoted strings, null for in-progress laps); this
// handles coercion to the correct Go types transparently.
func (l *Lap) UnmarshalJSON(data []byte) error {
	// Alias prevents infinite recursion
	type Alias Lap
	a := (*Alias)(l)

	// Fast path: try standard unmarshal (works when all types match natively)
	if err := json.Unmarshal(data, a); err == nil {
		return nil
	}

	// Slow path: field-by-field with string-to-native coercion
	var raw map[string]json.RawMessage
	if err := json.Unmarshal(data, &raw); err != nil {
		return fmt.Errorf("flex unmarshal: %w", err)
	}

	fieldMap := getLapFieldMap()
	v := reflect.ValueOf(a).Elem()

	for key, rawVal := range raw {
		idx, ok := fieldMap[key]
		if !ok {
			continue
		}

		fv := v.Field(idx)
		if !fv.CanSet() {
			continue
		}

		// null means an in-progress or missing measurement; keep the zero
		if string(rawVal) == "null" {
			continue
		}

		// Try direct unmarshal first
		ptr := reflect.New(fv.Type())
		if err := json.Unmarshal(rawVal, ptr.Interface()); err == nil {
			fv.Set(ptr.Elem())
			continue
		}

		// Value is a JSON string but target is numeric/bool - coerce
		if len(rawVal) > 1 && rawVal[0] == '"' {
			var s string
			if err := json.Unmarshal(rawVal, &s); err != nil {
				continue
			}
			switch fv.Kind() {
			case reflect.Int, reflect.Int64:
				if n, err := strconv.ParseInt(s, 10, 64); err == nil {
					fv.SetInt(n)
				}
			case reflect.Float64:
				if f, err := strconv.ParseFloat(s, 64); err == nil {
					fv.SetFloat(f)
				}
			case reflect.Bool:
				if b, err := strconv.ParseBool(s); err == nil {
					fv.SetBool(b)
				}
			}
		}
	}
	return nil
}
