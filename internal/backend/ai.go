// Copyright (c) 2025 Kenes
// Licensed under the MIT License. See LICENSE file in the project root for details.

package backend

import (
	"context"
	"net/http"

	"kenes/cli/internal/model"
)

// SendAIMessage sends a message to the assistant. An empty SessionID starts a conversation.
func (g *Gateway) SendAIMessage(ctx context.Context, req model.AIChatRequest) (*model.AIChatReply, error) {
	return call[model.AIChatReply](ctx, g.c, Request{
		Method: http.MethodPost,
		Path:   pathAIChat,
		Body:   req,
	})
}

// AIConversations lists the active conversations of the current user.
func (g *Gateway) AIConversations(ctx context.Context) (*model.Page[model.AIConversation], error) {
	return call[model.Page[model.AIConversation]](ctx, g.c, Request{Path: pathAIConversations})
}

// AIConversationHistory returns the messages of one conversation.
func (g *Gateway) AIConversationHistory(ctx context.Context, sessionID string) (*model.AIHistory, error) {
	return call[model.AIHistory](ctx, g.c, Request{Path: conversationHistoryPath(sessionID)})
}

// CloseAIConversation ends a conversation.
func (g *Gateway) CloseAIConversation(ctx context.Context, sessionID string) (*model.Message, error) {
	return call[model.Message](ctx, g.c, Request{Method: http.MethodPost, Path: conversationClosePath(sessionID)})
}
