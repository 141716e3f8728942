package main

import (
	"fmt"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/horuslm/horuslm/internal/note"
)

func newNoteCommand() *cobra.Command {
	noteCommands := &cobra.Command{
		Use:   "notes",
		Short: "Manage a notebook's notes",
	}

	listCmd := &cobra.Command{
		Use:   "list <notebook id>",
		Short: "List a notebook's notes",
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

			notes, err := a.notes.List(cmd.Context(), args[0])
			if err != nil {
				return fmt.Errorf("notes.List() > %w", err)
			}

			w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 0, 2, ' ', 0)
			fmt.Fprintln(w, "ID\tTITLE\tORIGIN\tUPDATED")
			for _, n := range notes {
				fmt.Fprintf(w, "%s\t%s\t%s\t%s\n", n.ID, n.Title, n.SourceType, n.UpdatedAt.Format("2006-01-02 15:04"))
			}
			return w.Flush()
		},
	}

	var title, content string
	createCmd := &cobra.Command{
		Use:   "create <notebook id>",
		Short: "Create a note",
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

			created, err := a.notes.Create(cmd.Context(), note.CreateInput{
				NotebookID: args[0],
				Title:      title,
				Content:    content,
			})
			if err != nil {
				return fmt.Errorf("notes.Create() > %w", err)
			}
			fmt.Fprintln(cmd.OutOrStdout(), created.ID)
			return nil
		},
	}
	createCmd.Flags().StringVar(&title, "title", "", "Note title")
	createCmd.Flags().StringVar(&content, "content", "", "Note content")
	_ = createCmd.MarkFlagRequired("title")

	updateCmd := &cobra.Command{
		Use:   "update <note id>",
		Short: "Update a note",
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

			var updates note.UpdateInput
			if cmd.Flags().Changed("title") {
				updates.Title = &title
			}
			if cmd.Flags().Changed("content") {
				updates.Content = &content
			}

			if _, err := a.notes.Update(cmd.Context(), args[0], updates); err != nil {
				return fmt.Errorf("notes.Update() > %w", err)
			}
			fmt.Fprintln(cmd.OutOrStdout(), "Updated")
			return nil
		},
	}
	updateCmd.Flags().StringVar(&title, "title", "", "New title")
	updateCmd.Flags().StringVar(&content, "content", "", "New content")

	deleteCmd := &cobra.Command{
		Use:   "delete <note id> <notebook id>",
		Short: "Delete a note",
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

			if err := a.notes.Delete(cmd.Context(), args[0], args[1]); err != nil {
				return fmt.Errorf("notes.Delete() > %w", err)
			}
			fmt.Fprintln(cmd.OutOrStdout(), "Deleted")
			return nil
		},
	}

	noteCommands.AddCommand(listCmd, createCmd, updateCmd, deleteCmd)
	return noteCommands
}
