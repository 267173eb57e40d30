// Copyright (c) 2025 Kenes
// Licensed under the MIT License. See LICENSE file in the project root for details.

package cache

import (
	"bytes"
	"encoding/json"
	"fmt"
	"reflect"
)

// Key identifies a cached read: an operation name plus its parameters.
// Parameters are canonicalized so that logically equal parameter sets
// (different map order, nil vs empty) produce the same key.
type Key struct {
	Op     string
	Params map[string]any
	id     string
}

// NewKey builds a key for op. params may be nil, a map or a struct; it is
// normalized through its JSON form.
func NewKey(op string, params any) Key {
	canon := canonical(params)
	b, err := json.Marshal(canon)
	if err != nil {
		b = []byte(fmt.Sprintf("%v", canon))
	}
	return Key{Op: op, Params: canon, id: op + string(b)}
}

// String returns the canonical serialization, e.g. `applications{"status":"new"}`.
func (k Key) String() string {
	if k.id == "" {
		return NewKey(k.Op, k.Params).id
	}
	return k.id
}

func canonical(params any) map[string]any {
	if params == nil {
		return map[string]any{}
	}
	b, err := json.Marshal(params)
	if err != nil {
		return map[string]any{"value": fmt.Sprintf("%v", params)}
	}
	// Numbers stay json.Number so large ids keep every digit.
	dec := json.NewDecoder(bytes.NewReader(b))
	dec.UseNumber()
	var v any
	if err := dec.Decode(&v); err != nil || v == nil {
		return map[string]any{}
	}
	if m, ok := v.(map[string]any); ok {
		return m
	}
	return map[string]any{"value": v}
}

// Pattern selects keys for invalidation.
type Pattern struct {
	op     string
	params map[string]any
}

// All matches every key of op regardless of parameters.
func All(op string) Pattern { return Pattern{op: op} }

// Match matches keys of op whose parameters contain params as a subset.
func Match(op string, params any) Pattern { return Pattern{op: op, params: canonical(params)} }

// Matches reports whether k is selected by p.
func (p Pattern) Matches(k Key) bool {
	if p.op != k.Op {
		return false
	}
	for name, want := range p.params {
		got, ok := k.Params[name]
		if !ok || !reflect.DeepEqual(got, want) {
			return false
		}
	}
	return true
}

func (p Pattern) String() string {
	if len(p.params) == 0 {
		return p.op + "/*"
	}
	return NewKey(p.op, p.params).String()
}
