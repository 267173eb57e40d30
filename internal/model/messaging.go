// Copyright (c) 2025 Kenes
// Licensed under the MIT License. See LICENSE file in the project root for details.

package model

import (
	"encoding/json"
	"time"
)

// Notification is a message delivered to the current user.
type Notification struct {
	ID                 int64              `json:"id"`
	NotificationType   string             `json:"notification_type"`
	Channel            string             `json:"channel"`
	Title              string             `json:"title"`
	Message            string             `json:"message"`
	Data               map[string]any     `json:"data"`
	Status             string             `json:"status"`
	Attempts           int                `json:"attempts"`
	MaxAttempts        int                `json:"max_attempts"`
	ScheduledAt        *time.Time         `json:"scheduled_at"`
	SentAt             *time.Time         `json:"sent_at"`
	DeliveredAt        *time.Time         `json:"delivered_at"`
	ReadAt             *time.Time         `json:"read_at"`
	RelatedApplication *Application       `json:"related_application"`
	RelatedDocument    *GeneratedDocument `json:"related_document"`
	CreatedAt          time.Time          `json:"created_at"`
	UpdatedAt          time.Time          `json:"updated_at"`
}

// Unread reports whether the notification has not been read yet.
func (n Notification) Unread() bool { return n.ReadAt == nil && n.Status != "read" }

// UnreadCount is the body of notifications/unread-count.
type UnreadCount struct {
	UnreadCount int `json:"unread_count"`
}

// AIConversation is a session with the assistant.
type AIConversation struct {
	ID          int64          `json:"id"`
	User        *User          `json:"user"`
	Application *Application   `json:"application"`
	SessionID   string         `json:"session_id"`
	Context     map[string]any `json:"context"`
	IsActive    bool           `json:"is_active"`
	CreatedAt   time.Time      `json:"created_at"`
	UpdatedAt   time.Time      `json:"updated_at"`
}

// AIMessage is one turn of an assistant conversation.
type AIMessage struct {
	ID             int64           `json:"id"`
	Role           string          `json:"role"`
	Content        string          `json:"content"`
	Intent         json.RawMessage `json:"intent,omitempty"`
	Parameters     map[string]any  `json:"parameters"`
	TokensUsed     *int            `json:"tokens_used"`
	ProcessingTime *float64        `json:"processing_time"`
	CreatedAt      time.Time       `json:"created_at"`
}

// AIChatRequest is the body of ai/chat. Empty SessionID starts a new conversation.
type AIChatRequest struct {
	Message       string `json:"message"`
	SessionID     string `json:"session_id,omitempty"`
	ApplicationID *int64 `json:"application_id,omitempty"`
}

// AIChatReply is the assistant's answer.
type AIChatReply struct {
	SessionID string         `json:"session_id"`
	Message   string         `json:"message"`
	Intent    *string        `json:"intent"`
	Context   map[string]any `json:"context"`
}

// AIHistory is the body of ai/conversations/:sessionId/history.
type AIHistory struct {
	SessionID string      `json:"session_id"`
	Messages  []AIMessage `json:"messages"`
}
