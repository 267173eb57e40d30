// Copyright (c) 2025 Kenes
// Licensed under the MIT License. See LICENSE file in the project root for details.

package backend

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	apierr "kenes/cli/internal/errors"
	"kenes/cli/internal/model"
)

func TestPaths(t *testing.T) {
	tests := []struct {
		got  string
		want string
	}{
		{userPath(7), "auth/users/7/"},
		{applicationPath(42), "applications/42/"},
		{applicationHistoryPath(42), "applications/42/history/"},
		{applicationCommentsPath(42), "applications/42/comments/"},
		{documentTemplatePath("loan agreement"), "documents/templates/loan%20agreement/"},
		{documentDownloadPath(3), "documents/3/download/"},
		{notificationReadPath(9), "notifications/9/read/"},
		{conversationHistoryPath("s-1"), "ai/conversations/s-1/history/"},
		{conversationClosePath("a/b"), "ai/conversations/a%2Fb/close/"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, tt.got)
	}
}

func TestFilters_Values(t *testing.T) {
	assert.Nil(t, Filters(nil).Values())
	v := Filters{"status": "new", "page": "2", "unknown_key": "kept"}.Values()
	assert.Equal(t, "page=2&status=new&unknown_key=kept", v.Encode())
}

func TestGateway_Login(t *testing.T) {
	c, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/auth/login/", r.URL.Path)
		var body model.LoginRequest
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		assert.Equal(t, model.LoginRequest{Username: "aigerim", Password: "pw"}, body)
		w.Write([]byte(`{"access_token":"tok","refresh_token":"ref","user":{"id":5,"username":"aigerim"}}`))
	}, nil)

	out, err := New(c).Login(context.Background(), "aigerim", "pw")
	require.NoError(t, err)
	assert.Equal(t, "tok", out.AccessToken)
	assert.Equal(t, int64(5), out.User.ID)
}

func TestGateway_LoginWithoutToken(t *testing.T) {
	c, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"user":{"id":5}}`))
	}, nil)

	_, err := New(c).Login(context.Background(), "u", "p")
	assert.Equal(t, apierr.Server, apierr.KindOf(err))
}

func TestGateway_Applications(t *testing.T) {
	c, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/applications/", r.URL.Path)
		assert.Equal(t, "in_progress", r.URL.Query().Get("status"))
		w.Write([]byte(`{"count":1,"next":null,"previous":null,"results":[{"id":1,"number":"A-1","status":"in_progress"}]}`))
	}, nil)

	page, err := New(c).Applications(context.Background(), Filters{"status": "in_progress"})
	require.NoError(t, err)
	require.Len(t, page.Results, 1)
	assert.Equal(t, "A-1", page.Results[0].Number)
	assert.Nil(t, page.Next)
}

func TestGateway_UpdateApplication(t *testing.T) {
	c, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPatch, r.Method)
		assert.Equal(t, "/api/applications/12/", r.URL.Path)
		b, _ := io.ReadAll(r.Body)
		assert.JSONEq(t, `{"status":"completed"}`, string(b))
		w.Write([]byte(`{"id":12,"status":"completed"}`))
	}, nil)

	status := "completed"
	app, err := New(c).UpdateApplication(context.Background(), 12, model.ApplicationPatch{Status: &status})
	require.NoError(t, err)
	assert.Equal(t, "completed", app.Status)
}

func TestGateway_AddApplicationComment(t *testing.T) {
	c, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/api/applications/12/comments/", r.URL.Path)
		b, _ := io.ReadAll(r.Body)
		assert.JSONEq(t, `{"content":"Bank asked for a salary statement","is_internal":true}`, string(b))
		w.WriteHeader(http.StatusCreated)
		w.Write([]byte(`{"id":3,"application":12,"author":5,"author_name":"Aigerim S","content":"Bank asked for a salary statement","is_internal":true}`))
	}, nil)

	in := model.ApplicationCommentInput{Content: "Bank asked for a salary statement", IsInternal: true}
	out, err := New(c).AddApplicationComment(context.Background(), 12, in)
	require.NoError(t, err)
	assert.Equal(t, int64(3), out.ID)
	assert.Equal(t, "Aigerim S", out.AuthorName)
	assert.True(t, out.IsInternal)
}

func TestGateway_ApplicationHistory(t *testing.T) {
	c, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/applications/12/history/", r.URL.Path)
		w.Write([]byte(`{"count":1,"next":null,"previous":null,"results":[
			{"id":1,"application":12,"user":null,"action":"status_change","old_status":"new","new_status":"in_progress"}]}`))
	}, nil)

	page, err := New(c).ApplicationHistory(context.Background(), 12)
	require.NoError(t, err)
	require.Len(t, page.Results, 1)
	assert.Nil(t, page.Results[0].User)
	assert.Equal(t, "in_progress", page.Results[0].NewStatus)
}

func TestGateway_DownloadDocument(t *testing.T) {
	pdf := []byte("%PDF-1.7 \x00\x01 binary")
	c, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/documents/3/download/", r.URL.Path)
		w.Header().Set("Content-Type", "application/pdf")
		w.Header().Set("Content-Disposition", `attachment; filename="contract-3.pdf"`)
		w.Write(pdf)
	}, nil)

	blob, err := New(c).DownloadDocument(context.Background(), 3)
	require.NoError(t, err)
	assert.Equal(t, pdf, blob.Data)
	assert.Equal(t, "application/pdf", blob.ContentType)
	assert.Equal(t, "contract-3.pdf", blob.Filename)
}

func TestGateway_UnreadNotificationCount(t *testing.T) {
	c, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/notifications/unread-count/", r.URL.Path)
		w.Write([]byte(`{"unread_count":4}`))
	}, nil)

	n, err := New(c).UnreadNotificationCount(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 4, n)
}

func TestGateway_SendAIMessage(t *testing.T) {
	c, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/ai/chat/", r.URL.Path)
		b, _ := io.ReadAll(r.Body)
		assert.JSONEq(t, `{"message":"status?","application_id":8}`, string(b))
		w.Write([]byte(`{"session_id":"s-1","message":"In progress","intent":"status","context":{}}`))
	}, nil)

	appID := int64(8)
	reply, err := New(c).SendAIMessage(context.Background(), model.AIChatRequest{Message: "status?", ApplicationID: &appID})
	require.NoError(t, err)
	assert.Equal(t, "s-1", reply.SessionID)
	require.NotNil(t, reply.Intent)
	assert.Equal(t, "status", *reply.Intent)
}

func TestGateway_CloseAIConversationNotFound(t *testing.T) {
	c, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
		w.Write([]byte(`{"error":"Диалог не найден"}`))
	}, nil)

	_, err := New(c).CloseAIConversation(context.Background(), "missing")
	assert.True(t, apierr.Is(err, apierr.NotFound))
}
