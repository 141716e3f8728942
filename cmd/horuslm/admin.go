package main

import (
	"fmt"
	"text/tabwriter"

	"github.com/fatih/color"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"

	"github.com/horuslm/horuslm/internal/admin"
)

// ProviderFlag restricts --provider to the supported model backends.
type ProviderFlag admin.Provider

func (f *ProviderFlag) Set(v string) error {
	switch admin.Provider(v) {
	case admin.ProviderOllama, admin.ProviderOpenAI, admin.ProviderAnthropic, admin.ProviderGemini:
		*f = ProviderFlag(v)
		return nil
	}
	return fmt.Errorf("invalid value %q, valid values are ollama, openai, anthropic, or gemini", v)
}

func (f *ProviderFlag) String() string {
	if f == nil {
		return ""
	}
	return string(*f)
}

func (f *ProviderFlag) Type() string {
	return "ProviderFlag"
}

var _ pflag.Value = (*ProviderFlag)(nil)

func newAdminCommand() *cobra.Command {
	adminCommands := &cobra.Command{
		Use:   "admin",
		Short: "Manage model configurations and inspect system statistics",
	}

	var (
		name      string
		provider  ProviderFlag
		model     string
		apiKey    string
		baseURL   string
		active    bool
		isDefault bool
	)
	configFlags := func(flags *pflag.FlagSet) {
		flags.StringVar(&name, "name", "", "Configuration name")
		flags.Var(&provider, "provider", "Model provider. Options: ollama, openai, anthropic, gemini")
		flags.StringVar(&model, "model", "", "Model identifier, e.g. llama3 or gpt-4")
		flags.StringVar(&apiKey, "api-key", "", "Provider API key; not needed for ollama")
		flags.StringVar(&baseURL, "base-url", "", "Provider endpoint override")
		flags.BoolVar(&active, "active", true, "Whether the configuration is usable")
		flags.BoolVar(&isDefault, "default", false, "Make this the default model")
	}
	configInput := func() admin.ConfigInput {
		return admin.ConfigInput{
			Name:      name,
			Provider:  admin.Provider(provider),
			Model:     model,
			APIKey:    apiKey,
			BaseURL:   baseURL,
			IsActive:  active,
			IsDefault: isDefault,
		}
	}

	configsCmd := &cobra.Command{
		Use:   "configs",
		Short: "List model configurations",
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

			configs, err := a.admin.ListConfigs(cmd.Context())
			if err != nil {
				return fmt.Errorf("admin.ListConfigs() > %w", err)
			}

			w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 0, 2, ' ', 0)
			fmt.Fprintln(w, "ID\tNAME\tPROVIDER\tMODEL\tACTIVE\tDEFAULT")
			for _, cfg := range configs {
				fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%t\t%t\n",
					cfg.ID, cfg.Name, cfg.Provider, cfg.Model, cfg.IsActive, cfg.IsDefault)
			}
			return w.Flush()
		},
	}

	createCmd := &cobra.Command{
		Use:   "create-config",
		Short: "Register a model configuration",
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

			created, err := a.admin.CreateConfig(cmd.Context(), configInput())
			if err != nil {
				return fmt.Errorf("admin.CreateConfig() > %w", err)
			}
			fmt.Fprintln(cmd.OutOrStdout(), created.ID)
			return nil
		},
	}
	configFlags(createCmd.Flags())
	_ = createCmd.MarkFlagRequired("name")
	_ = createCmd.MarkFlagRequired("provider")
	_ = createCmd.MarkFlagRequired("model")

	updateCmd := &cobra.Command{
		Use:   "update-config <config id>",
		Short: "Rewrite a model configuration; a blank --api-key keeps the stored key",
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

			if _, err := a.admin.UpdateConfig(cmd.Context(), args[0], configInput()); err != nil {
				return fmt.Errorf("admin.UpdateConfig() > %w", err)
			}
			fmt.Fprintln(cmd.OutOrStdout(), "Updated")
			return nil
		},
	}
	configFlags(updateCmd.Flags())

	deleteCmd := &cobra.Command{
		Use:   "delete-config <config id>",
		Short: "Delete a model configuration",
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

			if err := a.admin.DeleteConfig(cmd.Context(), args[0]); err != nil {
				return fmt.Errorf("admin.DeleteConfig() > %w", err)
			}
			fmt.Fprintln(cmd.OutOrStdout(), "Deleted")
			return nil
		},
	}

	modelsCmd := &cobra.Command{
		Use:   "models",
		Short: "List locally installed Ollama models",
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

			models, err := a.admin.OllamaModels(cmd.Context())
			if err != nil {
				return fmt.Errorf("admin.OllamaModels() > %w", err)
			}
			if len(models) == 0 {
				fmt.Fprintln(cmd.OutOrStdout(), "No Ollama models found")
				return nil
			}

			w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 0, 2, ' ', 0)
			fmt.Fprintln(w, "NAME\tSIZE")
			for _, m := range models {
				fmt.Fprintf(w, "%s\t%.2f GB\n", m.Name, float64(m.Size)/(1<<30))
			}
			return w.Flush()
		},
	}

	statsCmd := &cobra.Command{
		Use:   "stats",
		Short: "Show system statistics",
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

			stats, err := a.admin.Stats(cmd.Context())
			if err != nil {
				return fmt.Errorf("admin.Stats() > %w", err)
			}

			out := cmd.OutOrStdout()
			color.New(color.Bold).Fprintln(out, "System")
			fmt.Fprintf(out, "users: %d\nnotebooks: %d\nsources: %d\ndocuments: %d\n",
				stats.TotalUsers, stats.TotalNotebooks, stats.TotalSources, stats.TotalDocuments)
			for _, st := range stats.SourceTypes {
				fmt.Fprintf(out, "  %s: %s\n", st.Type, st.Count)
			}
			if len(stats.ActiveUsers) > 0 {
				color.New(color.Bold).Fprintln(out, "Most active users")
				for _, u := range stats.ActiveUsers {
					fmt.Fprintf(out, "  %s (%s notebooks)\n", u.Email, u.NotebookCount)
				}
			}
			return nil
		},
	}

	adminCommands.AddCommand(configsCmd, createCmd, updateCmd, deleteCmd, modelsCmd, statsCmd)
	return adminCommands
}
