// Copyright (c) 2025 Kenes
// Licensed under the MIT License. See LICENSE file in the project root for details.

package backend

import (
	"net/url"
	"sort"
	"strconv"
)

// Filters are list parameters forwarded verbatim as query parameters.
// Keys are not validated client-side; the service is authoritative.
type Filters map[string]string

// Values converts f into query values.
func (f Filters) Values() url.Values {
	if len(f) == 0 {
		return nil
	}
	v := make(url.Values, len(f))
	keys := make([]string, 0, len(f))
	for k := range f {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		v.Set(k, f[k])
	}
	return v
}

// Paths of the service's REST resources. Every path ends with a slash as the
// service expects; builders are pure functions of their inputs.
const (
	pathLogin             = "auth/login/"
	pathLogout            = "auth/logout/"
	pathCurrentUser       = "auth/current/"
	pathProfile           = "auth/profile/"
	pathUsers             = "auth/users/"
	pathApplications      = "applications/"
	pathApplicationStats  = "applications/stats/"
	pathDocumentTemplates = "documents/templates/"
	pathDocuments         = "documents/"
	pathNotifications     = "notifications/"
	pathUnreadCount       = "notifications/unread-count/"
	pathMarkAllRead       = "notifications/mark-all-read/"
	pathAIChat            = "ai/chat/"
	pathAIConversations   = "ai/conversations/"
)

func userPath(id int64) string { return pathUsers + itoa(id) + "/" }

func applicationPath(id int64) string { return pathApplications + itoa(id) + "/" }

func applicationHistoryPath(id int64) string { return applicationPath(id) + "history/" }

func applicationCommentsPath(id int64) string { return applicationPath(id) + "comments/" }

func documentTemplatePath(code string) string {
	return pathDocumentTemplates + url.PathEscape(code) + "/"
}

func documentDownloadPath(id int64) string { return pathDocuments + itoa(id) + "/download/" }

func notificationReadPath(id int64) string { return pathNotifications + itoa(id) + "/read/" }

func conversationHistoryPath(sessionID string) string {
	return pathAIConversations + url.PathEscape(sessionID) + "/history/"
}

func conversationClosePath(sessionID string) string {
	return pathAIConversations + url.PathEscape(sessionID) + "/close/"
}

func itoa(id int64) string { return strconv.FormatInt(id, 10) }
