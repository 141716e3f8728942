package main

import (
	"fmt"
	"io"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/horuslm/horuslm/internal/chat"
	"github.com/horuslm/horuslm/internal/querycache"
)

func renderMessage(w io.Writer, msg chat.Message) {
	role := color.New(color.FgCyan)
	if msg.Role == chat.RoleAI {
		role = color.New(color.FgMagenta)
	}
	role.Fprintf(w, "%s: ", msg.Role)

	if len(msg.Segments) == 0 {
		fmt.Fprintln(w, msg.Content)
		return
	}

	marker := color.New(color.FgYellow)
	for _, segment := range msg.Segments {
		fmt.Fprint(w, segment.Text)
		if segment.CitationID != nil {
			marker.Fprintf(w, " [%d]", *segment.CitationID)
		}
	}
	fmt.Fprintln(w)

	for _, citation := range msg.Citations {
		marker.Fprintf(w, "  [%d]", citation.CitationID)
		fmt.Fprintf(w, " %s (%s), %s\n", citation.SourceTitle, citation.SourceType, citation.Excerpt)
	}
}

func newChatCommand() *cobra.Command {
	chatCommands := &cobra.Command{
		Use:   "chat",
		Short: "Chat against a notebook's sources",
	}

	historyCmd := &cobra.Command{
		Use:   "history <notebook id>",
		Short: "Show a notebook's chat history",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := newApp(cmd.Context())
			if err != nil {
				return err
			}
			defer func() {
				_ = a.Close()
			}()
			if err := a.requireLogin(); err != nil {
				return err
			}

			messages, err := a.chat.Messages(cmd.Context(), args[0])
			if err != nil {
				return fmt.Errorf("chat.Messages() > %w", err)
			}
			for _, msg := range messages {
				renderMessage(cmd.OutOrStdout(), msg)
			}
			return nil
		},
	}

	sendCmd := &cobra.Command{
		Use:   "send <notebook id> <message>",
		Short: "Send a message; the answer arrives via `chat watch`",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := newApp(cmd.Context())
			if err != nil {
				return err
			}
			defer func() {
				_ = a.Close()
			}()
			if err := a.requireLogin(); err != nil {
				return err
			}

			if err := a.chat.Send(cmd.Context(), args[0], args[1]); err != nil {
				return fmt.Errorf("chat.Send() > %w", err)
			}
			fmt.Fprintln(cmd.OutOrStdout(), "Sent")
			return nil
		},
	}

	watchCmd := &cobra.Command{
		Use:   "watch <notebook id>",
		Short: "Follow a notebook's chat until interrupted",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := newApp(cmd.Context())
			if err != nil {
				return err
			}
			defer func() {
				_ = a.Close()
			}()
			if err := a.requireLogin(); err != nil {
				return err
			}

			ctx := cmd.Context()
			notebookID := args[0]
			out := cmd.OutOrStdout()

			key := querycache.NewKey(querycache.KindChatMessages, notebookID)
			updates, cancelWatch := a.cache.Watch(key)
			defer cancelWatch()

			stop := querycache.NewPoller(a.cache).Start(key, a.cfg.Poll.Interval)
			defer stop()

			shown := 0
			show := func() error {
				messages, err := a.chat.Messages(ctx, notebookID)
				if err != nil {
					return fmt.Errorf("chat.Messages() > %w", err)
				}
				for ; shown < len(messages); shown++ {
					renderMessage(out, messages[shown])
				}
				return nil
			}

			if err := show(); err != nil {
				return err
			}
			for {
				select {
				case <-ctx.Done():
					return nil
				case <-updates:
					if err := show(); err != nil {
						return err
					}
				}
			}
		},
	}

	clearCmd := &cobra.Command{
		Use:   "clear <notebook id>",
		Short: "Delete a notebook's chat history",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := newApp(cmd.Context())
			if err != nil {
				return err
			}
			defer func() {
				_ = a.Close()
			}()
			if err := a.requireLogin(); err != nil {
				return err
			}

			if err := a.chat.ClearHistory(cmd.Context(), args[0]); err != nil {
				return fmt.Errorf("chat.ClearHistory() > %w", err)
			}
			fmt.Fprintln(cmd.OutOrStdout(), "Chat history cleared")
			return nil
		},
	}

	chatCommands.AddCommand(historyCmd, sendCmd, watchCmd, clearCmd)
	return chatCommands
}
