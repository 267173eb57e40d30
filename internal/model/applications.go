// Copyright (c) 2025 Kenes
// Licensed under the MIT License. See LICENSE file in the project root for details.

package model

import "time"

// Application is a credit/loan case tracked by the service.
type Application struct {
	ID              int64          `json:"id"`
	Number          string         `json:"number"`
	Applicant       User           `json:"applicant"`
	Source          string         `json:"source"`
	ApplicationType string         `json:"application_type"`
	Status          string         `json:"status"`
	Subject         string         `json:"subject"`
	Description     string         `json:"description"`
	Amount          float64        `json:"amount"`
	CreditorName    string         `json:"creditor_name"`
	ContractNumber  string         `json:"contract_number"`
	AssignedTo      *User          `json:"assigned_to"`
	Deadline        *time.Time     `json:"deadline"`
	CreatedAt       time.Time      `json:"created_at"`
	UpdatedAt       time.Time      `json:"updated_at"`
	CompletedAt     *time.Time     `json:"completed_at"`
	Metadata        map[string]any `json:"metadata"`
	Tags            string         `json:"tags"`
	Priority        int            `json:"priority"`
}

// ApplicationInput is the body used to create an application.
type ApplicationInput struct {
	Source          string         `json:"source,omitempty"`
	ApplicationType string         `json:"application_type"`
	Subject         string         `json:"subject"`
	Description     string         `json:"description,omitempty"`
	Amount          float64        `json:"amount,omitempty"`
	CreditorName    string         `json:"creditor_name,omitempty"`
	ContractNumber  string         `json:"contract_number,omitempty"`
	Metadata        map[string]any `json:"metadata,omitempty"`
	Tags            string         `json:"tags,omitempty"`
	Priority        int            `json:"priority,omitempty"`
}

// ApplicationPatch is a partial application update; nil fields are left unchanged.
type ApplicationPatch struct {
	Status       *string    `json:"status,omitempty"`
	Subject      *string    `json:"subject,omitempty"`
	Description  *string    `json:"description,omitempty"`
	Amount       *float64   `json:"amount,omitempty"`
	AssignedToID *int64     `json:"assigned_to,omitempty"`
	Deadline     *time.Time `json:"deadline,omitempty"`
	Tags         *string    `json:"tags,omitempty"`
	Priority     *int       `json:"priority,omitempty"`
	Comment      *string    `json:"comment,omitempty"`
}

// ApplicationStats is the server-computed summary over all applications.
type ApplicationStats struct {
	Total              int            `json:"total"`
	ByStatus           map[string]int `json:"by_status"`
	ByType             map[string]int `json:"by_type"`
	BySource           map[string]int `json:"by_source"`
	ThisMonth          int            `json:"this_month"`
	CompletedThisMonth int            `json:"completed_this_month"`
}

// ApplicationHistoryEntry records one change made to an application.
type ApplicationHistoryEntry struct {
	ID          int64     `json:"id"`
	Application int64     `json:"application"`
	User        *int64    `json:"user"`
	UserName    string    `json:"user_name"`
	Action      string    `json:"action"`
	OldStatus   string    `json:"old_status"`
	NewStatus   string    `json:"new_status"`
	Comment     string    `json:"comment"`
	CreatedAt   time.Time `json:"created_at"`
}

// ApplicationComment is a remark left on an application. Internal comments
// are only visible to staff.
type ApplicationComment struct {
	ID          int64     `json:"id"`
	Application int64     `json:"application"`
	Author      int64     `json:"author"`
	AuthorName  string    `json:"author_name"`
	Content     string    `json:"content"`
	IsInternal  bool      `json:"is_internal"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// ApplicationCommentInput is the body used to add a comment.
type ApplicationCommentInput struct {
	Content    string `json:"content"`
	IsInternal bool   `json:"is_internal,omitempty"`
}
