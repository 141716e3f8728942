package main

import (
	"fmt"
	"os"
	"path/filepath"
	"text/tabwriter"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"

	"github.com/horuslm/horuslm/internal/source"
)

// SourceTypeFlag restricts --type to the source types the backend accepts.
type SourceTypeFlag source.Type

func (f *SourceTypeFlag) Set(v string) error {
	switch source.Type(v) {
	case source.TypePDF, source.TypeText, source.TypeWebsite, source.TypeYouTube, source.TypeAudio:
		*f = SourceTypeFlag(v)
		return nil
	}
	return fmt.Errorf("invalid value %q, valid values are pdf, text, website, youtube, or audio", v)
}

func (f *SourceTypeFlag) String() string {
	if f == nil {
		return ""
	}
	return string(*f)
}

func (f *SourceTypeFlag) Type() string {
	return "SourceTypeFlag"
}

var _ pflag.Value = (*SourceTypeFlag)(nil)

func newSourceCommand() *cobra.Command {
	sourceCommands := &cobra.Command{
		Use:   "sources",
		Short: "Manage a notebook's sources",
	}

	listCmd := &cobra.Command{
		Use:   "list <notebook id>",
		Short: "List a notebook's sources",
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

			sources, err := a.sources.List(cmd.Context(), args[0])
			if err != nil {
				return fmt.Errorf("sources.List() > %w", err)
			}

			w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 0, 2, ' ', 0)
			fmt.Fprintln(w, "ID\tTITLE\tTYPE\tSTATUS")
			for _, src := range sources {
				fmt.Fprintf(w, "%s\t%s\t%s\t%s\n", src.ID, src.Title, src.Type, src.ProcessingStatus)
			}
			return w.Flush()
		},
	}

	var (
		notebookID string
		title      string
		sourceType SourceTypeFlag
		content    string
		url        string
	)
	addCmd := &cobra.Command{
		Use:   "add",
		Short: "Add a source to a notebook",
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

			created, err := a.sources.Add(cmd.Context(), source.AddInput{
				NotebookID: notebookID,
				Title:      title,
				Type:       source.Type(sourceType),
				Content:    content,
				URL:        url,
			})
			if err != nil {
				return fmt.Errorf("sources.Add() > %w", err)
			}
			fmt.Fprintln(cmd.OutOrStdout(), created.ID)
			return nil
		},
	}
	addFlags := addCmd.Flags()
	addFlags.StringVar(&notebookID, "notebook", "", "Notebook id")
	addFlags.StringVar(&title, "title", "", "Source title")
	addFlags.Var(&sourceType, "type", "Source type. Options: pdf, text, website, youtube, audio")
	addFlags.StringVar(&content, "content", "", "Pasted text, for text sources")
	addFlags.StringVar(&url, "url", "", "Source URL, for website and youtube sources")
	_ = addCmd.MarkFlagRequired("notebook")
	_ = addCmd.MarkFlagRequired("title")
	_ = addCmd.MarkFlagRequired("type")

	uploadCmd := &cobra.Command{
		Use:   "upload <notebook id> <source id> <file>",
		Short: "Upload a file for a source, record its path, and start processing",
		Args:  cobra.ExactArgs(3),
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

			file, err := os.Open(args[2])
			if err != nil {
				return fmt.Errorf("os.Open(%s) > %w", args[2], err)
			}
			defer func() {
				_ = file.Close()
			}()

			ctx := cmd.Context()
			filePath, err := a.sources.Upload(ctx, args[0], args[1], filepath.Base(args[2]), file)
			if err != nil {
				return fmt.Errorf("sources.Upload() > %w", err)
			}

			updated, err := a.sources.Update(ctx, args[1], source.UpdateInput{FilePath: &filePath})
			if err != nil {
				return fmt.Errorf("sources.Update() > %w", err)
			}

			if err := a.sources.Process(ctx, updated.ID, filePath, string(updated.Type)); err != nil {
				return fmt.Errorf("sources.Process() > %w", err)
			}
			fmt.Fprintln(cmd.OutOrStdout(), filePath)
			return nil
		},
	}

	renameCmd := &cobra.Command{
		Use:   "rename <source id> <title>",
		Short: "Rename a source",
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

			if _, err := a.sources.Rename(cmd.Context(), args[0], args[1]); err != nil {
				return fmt.Errorf("sources.Rename() > %w", err)
			}
			fmt.Fprintln(cmd.OutOrStdout(), "Renamed")
			return nil
		},
	}

	deleteCmd := &cobra.Command{
		Use:   "delete <source id>",
		Short: "Delete a source",
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

			if _, err := a.sources.Delete(cmd.Context(), args[0]); err != nil {
				return fmt.Errorf("sources.Delete() > %w", err)
			}
			fmt.Fprintln(cmd.OutOrStdout(), "Deleted")
			return nil
		},
	}

	processCmd := &cobra.Command{
		Use:   "process <source id> <file path> <source type>",
		Short: "Start extraction of an already uploaded document",
		Args:  cobra.ExactArgs(3),
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

			if err := a.sources.Process(cmd.Context(), args[0], args[1], args[2]); err != nil {
				return fmt.Errorf("sources.Process() > %w", err)
			}
			fmt.Fprintln(cmd.OutOrStdout(), "Processing started")
			return nil
		},
	}

	sourceCommands.AddCommand(listCmd, addCmd, uploadCmd, processCmd, renameCmd, deleteCmd)
	return sourceCommands
}
