package main

import (
	"fmt"
	"text/tabwriter"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/horuslm/horuslm/internal/notebook"
)

func newNotebookCommand() *cobra.Command {
	notebookCommands := &cobra.Command{
		Use:   "notebooks",
		Short: "Manage notebooks",
	}

	listCmd := &cobra.Command{
		Use:   "list",
		Short: "List your notebooks",
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

			notebooks, err := a.notebooks.List(cmd.Context())
			if err != nil {
				return fmt.Errorf("notebooks.List() > %w", err)
			}

			w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 0, 2, ' ', 0)
			fmt.Fprintln(w, "ID\tTITLE\tSTATUS\tUPDATED")
			for _, nb := range notebooks {
				fmt.Fprintf(w, "%s\t%s\t%s\t%s\n",
					nb.ID, nb.Title, nb.GenerationStatus, nb.UpdatedAt.Format("2006-01-02 15:04"))
			}
			return w.Flush()
		},
	}

	showCmd := &cobra.Command{
		Use:   "show <notebook id>",
		Short: "Show one notebook",
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

			nb, err := a.notebooks.Get(cmd.Context(), args[0])
			if err != nil {
				return fmt.Errorf("notebooks.Get() > %w", err)
			}

			out := cmd.OutOrStdout()
			color.New(color.Bold).Fprintln(out, nb.Title)
			if nb.Description != "" {
				fmt.Fprintln(out, nb.Description)
			}
			fmt.Fprintf(out, "status: %s\n", nb.GenerationStatus)
			if nb.AudioOverviewStatus != "" {
				fmt.Fprintf(out, "audio overview: %s\n", nb.AudioOverviewStatus)
			}
			return nil
		},
	}

	var title, description string
	createCmd := &cobra.Command{
		Use:   "create",
		Short: "Create a notebook",
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

			created, err := a.notebooks.Create(cmd.Context(), notebook.CreateInput{
				Title:       title,
				Description: description,
			})
			if err != nil {
				return fmt.Errorf("notebooks.Create() > %w", err)
			}
			fmt.Fprintln(cmd.OutOrStdout(), created.ID)
			return nil
		},
	}
	createCmd.Flags().StringVar(&title, "title", "", "Notebook title")
	createCmd.Flags().StringVar(&description, "description", "", "Notebook description")
	_ = createCmd.MarkFlagRequired("title")

	updateCmd := &cobra.Command{
		Use:   "update <notebook id>",
		Short: "Update a notebook's title or description",
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

			var updates notebook.UpdateInput
			if cmd.Flags().Changed("title") {
				updates.Title = &title
			}
			if cmd.Flags().Changed("description") {
				updates.Description = &description
			}

			if _, err := a.notebooks.Update(cmd.Context(), args[0], updates); err != nil {
				return fmt.Errorf("notebooks.Update() > %w", err)
			}
			fmt.Fprintln(cmd.OutOrStdout(), "Updated")
			return nil
		},
	}
	updateCmd.Flags().StringVar(&title, "title", "", "New title")
	updateCmd.Flags().StringVar(&description, "description", "", "New description")

	deleteCmd := &cobra.Command{
		Use:   "delete <notebook id>",
		Short: "Delete a notebook",
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

			if err := a.notebooks.Delete(cmd.Context(), args[0]); err != nil {
				return fmt.Errorf("notebooks.Delete() > %w", err)
			}
			fmt.Fprintln(cmd.OutOrStdout(), "Deleted")
			return nil
		},
	}

	var filePath, sourceType string
	generateCmd := &cobra.Command{
		Use:   "generate <notebook id>",
		Short: "Derive the notebook's title and description from a source",
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

			if err := a.notebooks.Generate(cmd.Context(), args[0], filePath, sourceType); err != nil {
				return fmt.Errorf("notebooks.Generate() > %w", err)
			}
			fmt.Fprintln(cmd.OutOrStdout(), "Generation started")
			return nil
		},
	}
	generateCmd.Flags().StringVar(&filePath, "file-path", "", "Stored file path or URL of the source material")
	generateCmd.Flags().StringVar(&sourceType, "source-type", "", "Type of the source material")
	_ = generateCmd.MarkFlagRequired("source-type")

	notebookCommands.AddCommand(listCmd, showCmd, createCmd, updateCmd, deleteCmd, generateCmd)
	return notebookCommands
}
