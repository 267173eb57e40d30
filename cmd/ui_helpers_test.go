// Copyright (c) 2025 Kenes
// Licensed under the MIT License. See LICENSE file in the project root for details.

package cmd

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"kenes/cli/internal/backend"
)

func TestParseID(t *testing.T) {
	id, err := parseID(" 42 ")
	require.NoError(t, err)
	assert.Equal(t, int64(42), id)

	for _, bad := range []string{"", "0", "-3", "abc", "4.2"} {
		_, err := parseID(bad)
		assert.Error(t, err, bad)
	}
}

func TestParsePairs(t *testing.T) {
	got, err := parsePairs([]string{"status=new", " city =Almaty", "note=a=b", "empty="})
	require.NoError(t, err)
	assert.Equal(t, map[string]string{"status": "new", "city": "Almaty", "note": "a=b", "empty": ""}, got)

	_, err = parsePairs([]string{"novalue"})
	assert.Error(t, err)
	_, err = parsePairs([]string{"=x"})
	assert.Error(t, err)
}

func TestListFilters(t *testing.T) {
	tests := []struct {
		name  string
		named map[string]string
		extra []string
		page  int
		want  backend.Filters
	}{
		{name: "nothing set", named: map[string]string{"status": ""}, want: nil},
		{
			name:  "named wins over extra",
			named: map[string]string{"status": "new", "search": ""},
			extra: []string{"status=closed", "assigned_to=7"},
			want:  backend.Filters{"status": "new", "assigned_to": "7"},
		},
		{name: "page", page: 3, want: backend.Filters{"page": "3"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := listFilters(tt.named, tt.extra, tt.page)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}

	_, err := listFilters(nil, []string{"bad"}, 0)
	assert.Error(t, err)
}

func TestFormatting(t *testing.T) {
	assert.Equal(t, "-", orDash("  "))
	assert.Equal(t, "x", orDash("x"))
	assert.Equal(t, "short", truncate("short", 10))
	assert.Equal(t, "Заявле…", truncate("Заявление", 7))
	assert.Equal(t, "-", formatTime(nil))
	assert.Equal(t, "-", formatTime(&time.Time{}))
	assert.Equal(t, "yes", yesNo(true))
}

func TestDownloadPath(t *testing.T) {
	assert.Equal(t, "out.pdf", downloadPath("out.pdf", "server.pdf", 1))
	assert.Equal(t, "server.pdf", downloadPath("", "server.pdf", 1))
	assert.Equal(t, "passwd", downloadPath("", "../../etc/passwd", 1))
	assert.Equal(t, "document-9", downloadPath("", "", 9))
}

func TestStatsRows(t *testing.T) {
	rows := statsRows("status", map[string]int{"new": 2, "completed": 5})
	assert.Equal(t, [][]string{{"status", "completed", "5"}, {"status", "new", "2"}}, rows)
	assert.Empty(t, statsRows("type", nil))
}
