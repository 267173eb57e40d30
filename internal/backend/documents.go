// Copyright (c) 2025 Kenes
// Licensed under the MIT License. See LICENSE file in the project root for details.

package backend

import (
	"context"
	"mime"
	"net/http"

	"kenes/cli/internal/model"
)

// DocumentTemplates lists the available templates.
func (g *Gateway) DocumentTemplates(ctx context.Context) (*model.Page[model.DocumentTemplate], error) {
	return call[model.Page[model.DocumentTemplate]](ctx, g.c, Request{Path: pathDocumentTemplates})
}

// DocumentTemplate fetches a template by its code.
func (g *Gateway) DocumentTemplate(ctx context.Context, code string) (*model.DocumentTemplate, error) {
	return call[model.DocumentTemplate](ctx, g.c, Request{Path: documentTemplatePath(code)})
}

// Documents lists generated documents.
func (g *Gateway) Documents(ctx context.Context, filters Filters) (*model.Page[model.GeneratedDocument], error) {
	return call[model.Page[model.GeneratedDocument]](ctx, g.c, Request{
		Path:  pathDocuments,
		Query: filters.Values(),
	})
}

// GenerateDocument asks the service to render a document from a template.
func (g *Gateway) GenerateDocument(ctx context.Context, in model.DocumentInput) (*model.GeneratedDocument, error) {
	return call[model.GeneratedDocument](ctx, g.c, Request{
		Method: http.MethodPost,
		Path:   pathDocuments,
		Body:   in,
	})
}

// DownloadDocument fetches the document file as raw bytes.
func (g *Gateway) DownloadDocument(ctx context.Context, id int64) (*model.Blob, error) {
	resp, err := g.c.Do(ctx, Request{Path: documentDownloadPath(id)})
	if err != nil {
		return nil, err
	}
	return &model.Blob{
		ContentType: resp.Header.Get("Content-Type"),
		Filename:    attachmentName(resp.Header.Get("Content-Disposition")),
		Data:        resp.Body,
	}, nil
}

// attachmentName extracts the filename from a Content-Disposition header.
func attachmentName(cd string) string {
	if cd == "" {
		return ""
	}
	_, params, err := mime.ParseMediaType(cd)
	if err != nil {
		return ""
	}
	return params["filename"]
}
