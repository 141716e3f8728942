package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/horuslm/horuslm/internal/audio"
)

func newAudioCommand() *cobra.Command {
	audioCommands := &cobra.Command{
		Use:   "audio",
		Short: "Generate and play back a notebook's audio overview",
	}

	generateCmd := &cobra.Command{
		Use:   "generate <notebook id>",
		Short: "Start audio overview generation",
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

			if err := a.audio.Generate(cmd.Context(), args[0]); err != nil {
				return fmt.Errorf("audio.Generate() > %w", err)
			}
			fmt.Fprintln(cmd.OutOrStdout(), "Generation started; check progress with `horuslm audio status`")
			return nil
		},
	}

	statusCmd := &cobra.Command{
		Use:   "status <notebook id>",
		Short: "Show audio overview status and playback URL",
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
			status, err := a.audio.Status(ctx, args[0])
			if err != nil {
				return fmt.Errorf("audio.Status() > %w", err)
			}

			if status.URL != "" && audio.Expired(status.ExpiresAt) {
				a.audio.AutoRefreshIfExpired(ctx, args[0], status.ExpiresAt)
				if status, err = a.audio.Status(ctx, args[0]); err != nil {
					return fmt.Errorf("audio.Status() > %w", err)
				}
			}

			out := cmd.OutOrStdout()
			if status.GenerationStatus == "" {
				fmt.Fprintln(out, "No audio overview yet")
				return nil
			}
			fmt.Fprintf(out, "status: %s\n", status.GenerationStatus)
			if status.URL != "" {
				fmt.Fprintf(out, "url: %s\n", status.URL)
			}
			if status.ExpiresAt != nil {
				fmt.Fprintf(out, "expires: %s\n", status.ExpiresAt.Format("2006-01-02 15:04:05"))
			}
			return nil
		},
	}

	refreshCmd := &cobra.Command{
		Use:   "refresh <notebook id>",
		Short: "Request a fresh playback URL",
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

			if err := a.audio.RefreshURL(cmd.Context(), args[0]); err != nil {
				return fmt.Errorf("audio.RefreshURL() > %w", err)
			}
			fmt.Fprintln(cmd.OutOrStdout(), "Refreshed")
			return nil
		},
	}

	audioCommands.AddCommand(generateCmd, statusCmd, refreshCmd)
	return audioCommands
}
