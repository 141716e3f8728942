package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/horuslm/horuslm/internal/admin"
	"github.com/horuslm/horuslm/internal/api"
	"github.com/horuslm/horuslm/internal/audio"
	"github.com/horuslm/horuslm/internal/chat"
	"github.com/horuslm/horuslm/internal/config"
	"github.com/horuslm/horuslm/internal/note"
	"github.com/horuslm/horuslm/internal/notebook"
	"github.com/horuslm/horuslm/internal/querycache"
	"github.com/horuslm/horuslm/internal/session"
	"github.com/horuslm/horuslm/internal/source"
)

var (
	configFile string
	debugMode  bool
)

func setupLogger(debugMode bool) {
	level := slog.LevelInfo
	if debugMode {
		level = slog.LevelDebug
	}
	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
		Level: level,
	}))
	slog.SetDefault(logger)
}

// app holds every store wired against one backend client. Commands build it
// lazily so flag errors never touch the network or the session file.
type app struct {
	cfg       *config.Config
	cache     *querycache.Cache
	client    *api.Client
	session   *session.Store
	notebooks *notebook.Store
	sources   *source.Store
	notes     *note.Store
	chat      *chat.Store
	audio     *audio.Store
	admin     *admin.Store
}

func newApp(ctx context.Context) (*app, error) {
	cfg, err := config.Load(configFile)
	if err != nil {
		return nil, fmt.Errorf("config.Load() > %w", err)
	}
	if cfg.API.BaseURL == "" {
		return nil, fmt.Errorf("no backend configured: set api.base_url or HORUSLM_API_URL")
	}

	sess := session.NewStore(cfg.Session.File)
	client := api.NewClient(cfg.API.BaseURL, cfg.API.Timeout, sess)
	sess.SetClient(client)

	if err := sess.VerifyOnLoad(ctx); err != nil {
		slog.Default().Debug("stored session rejected", "error", err)
	}

	cache := querycache.New()
	notebooks := notebook.NewStore(client, cache, sess, cfg.Retry.MaxAttempts)
	return &app{
		cfg:       cfg,
		cache:     cache,
		client:    client,
		session:   sess,
		notebooks: notebooks,
		sources:   source.NewStore(client, cache, notebooks),
		notes:     note.NewStore(client, cache),
		chat:      chat.NewStore(client, cache, sess),
		audio:     audio.NewStore(client, cache),
		admin:     admin.NewStore(client, cache),
	}, nil
}

func (a *app) Close() error {
	return a.client.Close()
}

func (a *app) requireLogin() error {
	if !a.session.IsAuthenticated() {
		return fmt.Errorf("not logged in: run `horuslm auth login` first")
	}
	return nil
}

func newRootCommand() *cobra.Command {
	rootCommand := &cobra.Command{
		Use:           "horuslm",
		Short:         "Work with HorusLM notebooks, sources, notes, and chat from the terminal",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			setupLogger(debugMode)
		},
	}
	flags := rootCommand.PersistentFlags()
	flags.StringVar(&configFile, "config", "", "Path to the configuration file")
	flags.BoolVar(&debugMode, "debug", false, "Enable debug logging")

	rootCommand.AddCommand(
		newAuthCommand(),
		newNotebookCommand(),
		newSourceCommand(),
		newNoteCommand(),
		newChatCommand(),
		newAudioCommand(),
		newAdminCommand(),
	)
	return rootCommand
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	if err := newRootCommand().ExecuteContext(ctx); err != nil {
		color.New(color.FgRed).Fprintln(os.Stderr, api.UserMessage(err))
		slog.Default().Debug("command failed", "error", err)
		os.Exit(1)
	}
}
