// Copyright (c) 2025 Kenes
// Licensed under the MIT License. See LICENSE file in the project root for details.

package cmd

import (
	"strings"

	"github.com/pterm/pterm"
	"github.com/spf13/cobra"

	"kenes/cli/internal/cache"
	"kenes/cli/internal/model"
)

var aiCmd = &cobra.Command{
	Use:   "ai",
	Short: "Talk to the case assistant",
}

var aiChat struct {
	session     string
	application int64
}

var aiChatCmd = &cobra.Command{
	Use:   "chat MESSAGE...",
	Short: "Send a message to the assistant",
	Long: `Chat sends one message. Without --session a new conversation is started and
its session ID is printed so that later messages can continue it.`,
	Example: `  kenes ai chat "What documents do I need for restructuring?"
  kenes ai chat --session 7f3c... --application 42 "Draft a request to the bank"`,
	Args: cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		req := model.AIChatRequest{
			Message:   strings.Join(args, " "),
			SessionID: aiChat.session,
		}
		if aiChat.application > 0 {
			id := aiChat.application
			req.ApplicationID = &id
		}
		reply, err := withSpinner(cmd, "Thinking", func() (*model.AIChatReply, error) {
			return app.queries.SendAIMessage(cmd.Context(), req)
		})
		if err != nil {
			return err
		}
		if outputFlag == outputJSON {
			return printJSON(cmd.OutOrStdout(), reply)
		}
		pterm.Fprintln(cmd.OutOrStdout(), reply.Message)
		if aiChat.session == "" {
			pterm.Fprintln(cmd.ErrOrStderr(), pterm.NewStyle(pterm.FgGray).Sprint(
				"session "+reply.SessionID+" (continue with --session)"))
		}
		return nil
	},
}

var aiConversationsCmd = &cobra.Command{
	Use:   "conversations",
	Short: "List your assistant conversations",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		page, err := load(cmd, "Loading conversations", func() (cache.Result[*model.Page[model.AIConversation]], error) {
			return app.queries.AIConversations(cmd.Context(), readOpts()...)
		})
		if err != nil {
			return err
		}
		rows := make([][]string, 0, len(page.Results))
		for _, c := range page.Results {
			appRef := "-"
			if c.Application != nil {
				appRef = orDash(c.Application.Number)
			}
			rows = append(rows, []string{c.SessionID, appRef, yesNo(c.IsActive), formatTime(&c.UpdatedAt)})
		}
		return render(cmd, page, []string{"Session", "Application", "Active", "Updated"}, rows)
	},
}

var aiHistoryCmd = &cobra.Command{
	Use:   "history SESSION_ID",
	Short: "Show the messages of a conversation",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		sessionID := strings.TrimSpace(args[0])
		h, err := load(cmd, "Loading history", func() (cache.Result[*model.AIHistory], error) {
			return app.queries.AIConversationHistory(cmd.Context(), sessionID, readOpts()...)
		})
		if err != nil {
			return err
		}
		if outputFlag == outputJSON {
			return printJSON(cmd.OutOrStdout(), h)
		}
		w := cmd.OutOrStdout()
		if len(h.Messages) == 0 {
			pterm.Fprintln(w, pterm.NewStyle(pterm.FgGray).Sprint("Nothing to show"))
			return nil
		}
		for _, m := range h.Messages {
			who := pterm.NewStyle(pterm.FgLightCyan, pterm.Bold)
			if m.Role == "assistant" {
				who = pterm.NewStyle(pterm.FgLightGreen, pterm.Bold)
			}
			pterm.Fprintln(w, who.Sprint(m.Role)+pterm.NewStyle(pterm.FgGray).Sprint(" · "+formatTime(&m.CreatedAt)))
			pterm.Fprintln(w, m.Content)
			pterm.Fprintln(w)
		}
		return nil
	},
}

var aiCloseCmd = &cobra.Command{
	Use:   "close SESSION_ID",
	Short: "Close a conversation",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		sessionID := strings.TrimSpace(args[0])
		msg, err := withSpinner(cmd, "Closing conversation", func() (*model.Message, error) {
			return app.queries.CloseAIConversation(cmd.Context(), sessionID)
		})
		if err != nil {
			return err
		}
		if outputFlag == outputJSON {
			return printJSON(cmd.OutOrStdout(), msg)
		}
		return nil
	},
}

func init() {
	f := aiChatCmd.Flags()
	f.StringVar(&aiChat.session, "session", "", "Continue an existing conversation")
	f.Int64Var(&aiChat.application, "application", 0, "Application ID the question is about")

	aiCmd.AddCommand(aiChatCmd, aiConversationsCmd, aiHistoryCmd, aiCloseCmd)
	rootCmd.AddCommand(aiCmd)
}
