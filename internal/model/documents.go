// Copyright (c) 2025 Kenes
// Licensed under the MIT License. See LICENSE file in the project root for details.

package model

import "time"

// DocumentTemplate describes a document the service can generate.
type DocumentTemplate struct {
	ID               int64    `json:"id"`
	Name             string   `json:"name"`
	Code             string   `json:"code"`
	Description      string   `json:"description"`
	TemplateFile     string   `json:"template_file"`
	DocumentType     string   `json:"document_type"`
	ApplicationTypes []string `json:"application_types"`
	RequiredFields   []string `json:"required_fields"`
	IsActive         bool     `json:"is_active"`
}

// GeneratedDocument is a document produced from a template for an application.
type GeneratedDocument struct {
	ID              int64            `json:"id"`
	Template        DocumentTemplate `json:"template"`
	Application     *Application     `json:"application"`
	CreatedBy       *User            `json:"created_by"`
	OriginalFile    string           `json:"original_file"`
	SignedFile      *string          `json:"signed_file"`
	DocumentData    map[string]any   `json:"document_data"`
	FieldValues     map[string]any   `json:"field_values"`
	SignatureType   string           `json:"signature_type"`
	SignatureStatus string           `json:"signature_status"`
	SignedAt        *time.Time       `json:"signed_at"`
	SignedBy        *User            `json:"signed_by"`
	Status          string           `json:"status"`
	Version         int              `json:"version"`
	SentAt          *time.Time       `json:"sent_at"`
	SentTo          []string         `json:"sent_to"`
	CreatedAt       time.Time        `json:"created_at"`
	UpdatedAt       time.Time        `json:"updated_at"`
}

// DocumentInput requests generation of a document.
type DocumentInput struct {
	TemplateCode  string         `json:"template_code"`
	ApplicationID int64          `json:"application_id"`
	FieldValues   map[string]any `json:"field_values,omitempty"`
	SignatureType string         `json:"signature_type,omitempty"`
}
