// Copyright (c) 2025 Kenes
// Licensed under the MIT License. See LICENSE file in the project root for details.

package errors

import (
	"sort"
	"strings"

	"github.com/tidwall/gjson"
)

// messageKeys are top-level keys that carry a general message rather than a field.
var messageKeys = []string{"detail", "error", "message", "non_field_errors"}

// ParsePayload extracts a general message and field-level messages from an error body.
// It understands the shapes the service produces:
//
//	{"detail": "..."}            {"error": "..."}
//	{"field": ["msg", ...]}       {"field": "msg"}
//	{"nested": {"field": [...]}}  (flattened to "nested.field")
//
// Bodies that are not JSON objects yield an empty message and nil fields.
func ParsePayload(body []byte) (string, map[string][]string) {
	if len(body) == 0 || !gjson.ValidBytes(body) {
		return "", nil
	}
	root := gjson.ParseBytes(body)
	if !root.IsObject() {
		return "", nil
	}

	var msg string
	for _, k := range messageKeys {
		v := root.Get(k)
		if !v.Exists() {
			continue
		}
		if texts := collect(v); len(texts) > 0 {
			msg = strings.Join(texts, "; ")
			break
		}
	}

	fields := map[string][]string{}
	root.ForEach(func(key, value gjson.Result) bool {
		if isMessageKey(key.String()) || key.String() == "code" {
			return true
		}
		flatten(key.String(), value, fields)
		return true
	})
	if len(fields) == 0 {
		fields = nil
	}
	if msg == "" && len(fields) > 0 {
		msg = summarize(fields)
	}
	return msg, fields
}

func isMessageKey(k string) bool {
	for _, m := range messageKeys {
		if m == k {
			return true
		}
	}
	return false
}

func flatten(prefix string, v gjson.Result, out map[string][]string) {
	if v.IsObject() {
		v.ForEach(func(key, value gjson.Result) bool {
			flatten(prefix+"."+key.String(), value, out)
			return true
		})
		return
	}
	if texts := collect(v); len(texts) > 0 {
		out[prefix] = texts
	}
}

func collect(v gjson.Result) []string {
	if v.IsArray() {
		var out []string
		for _, item := range v.Array() {
			if s := strings.TrimSpace(item.String()); s != "" {
				out = append(out, s)
			}
		}
		return out
	}
	if s := strings.TrimSpace(v.String()); s != "" {
		return []string{s}
	}
	return nil
}

// summarize builds a stable one-line message from field errors.
func summarize(fields map[string][]string) string {
	keys := make([]string, 0, len(fields))
	for k := range fields {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	parts := make([]string, 0, len(keys))
	for _, k := range keys {
		parts = append(parts, k+": "+strings.Join(fields[k], ", "))
	}
	return strings.Join(parts, "; ")
}
