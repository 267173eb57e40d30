// Copyright (c) 2025 Kenes
// Licensed under the MIT License. See LICENSE file in the project root for details.

package cache

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNewKey_Canonical(t *testing.T) {
	type filter struct {
		Status string `json:"status"`
		Page   int    `json:"page"`
	}

	tests := []struct {
		name string
		a, b Key
	}{
		{
			name: "map order",
			a:    NewKey("applications", map[string]any{"status": "new", "page": 2}),
			b:    NewKey("applications", map[string]any{"page": 2, "status": "new"}),
		},
		{
			name: "struct and map",
			a:    NewKey("applications", filter{Status: "new", Page: 2}),
			b:    NewKey("applications", map[string]any{"page": 2, "status": "new"}),
		},
		{
			name: "nil and empty",
			a:    NewKey("profile", nil),
			b:    NewKey("profile", map[string]string{}),
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.a.String(), tt.b.String())
		})
	}

	assert.Equal(t, `applications{"page":2,"status":"new"}`, tests[0].a.String())
	assert.Equal(t, `profile{}`, NewKey("profile", nil).String())
	assert.NotEqual(t, NewKey("users", nil).String(), NewKey("user", nil).String())
}

func TestNewKey_LargeIntegersStayDistinct(t *testing.T) {
	a := NewKey("application", map[string]any{"id": int64(9007199254740992)})
	b := NewKey("application", map[string]any{"id": int64(9007199254740993)})

	assert.Equal(t, `application{"id":9007199254740993}`, b.String())
	assert.NotEqual(t, a.String(), b.String())
	assert.True(t, Match("application", map[string]int64{"id": 9007199254740993}).Matches(b))
	assert.False(t, Match("application", map[string]int64{"id": 9007199254740993}).Matches(a))
}

func TestNewKey_ScalarParams(t *testing.T) {
	k := NewKey("documentTemplate", "loan")
	assert.Equal(t, `documentTemplate{"value":"loan"}`, k.String())
}

func TestPattern_Matches(t *testing.T) {
	app5 := NewKey("application", map[string]any{"id": 5})
	list := NewKey("applications", map[string]any{"status": "new", "page": 1})

	tests := []struct {
		name string
		p    Pattern
		k    Key
		want bool
	}{
		{"all of op", All("applications"), list, true},
		{"other op", All("applications"), app5, false},
		{"exact params", Match("application", map[string]any{"id": 5}), app5, true},
		{"different id", Match("application", map[string]any{"id": 6}), app5, false},
		{"subset", Match("applications", map[string]string{"status": "new"}), list, true},
		{"subset mismatch", Match("applications", map[string]string{"status": "done"}), list, false},
		{"missing param", Match("applications", map[string]string{"assignee": "me"}), list, false},
		{"empty subset", Match("applications", nil), list, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.p.Matches(tt.k))
		})
	}
}

func TestPattern_String(t *testing.T) {
	assert.Equal(t, "applications/*", All("applications").String())
	assert.Equal(t, `application{"id":5}`, Match("application", map[string]int{"id": 5}).String())
}
