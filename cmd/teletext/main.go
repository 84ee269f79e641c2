package main

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"

	"github.com/glabrego/teletext-cli/internal/api"
	"github.com/glabrego/teletext-cli/internal/app"
	"github.com/glabrego/teletext-cli/internal/config"
	"github.com/glabrego/teletext-cli/internal/notify"
	"github.com/glabrego/teletext-cli/internal/overlay"
	"github.com/glabrego/teletext-cli/internal/reader"
	"github.com/glabrego/teletext-cli/internal/storage"
	"github.com/glabrego/teletext-cli/internal/store"
	"github.com/glabrego/teletext-cli/internal/tui"
)

type rootOptions struct {
	configPath string
	dataDir    string
	apiBaseURL string
}

type session struct {
	cfg     config.Config
	kv      storage.KV
	overlay *overlay.Store
	service *app.Service
	logger  *slog.Logger
	logFile io.Closer
}

func (s *session) Close() {
	if s.kv != nil {
		_ = s.kv.Close()
	}
	if s.logFile != nil {
		_ = s.logFile.Close()
	}
}

func main() {
	if err := newRootCommand().Execute(); err != nil {
		os.Exit(1)
	}
}

func newRootCommand() *cobra.Command {
	opts := &rootOptions{}
	cmd := &cobra.Command{
		Use:          "teletext",
		Short:        "Read news headlines in a teletext-style terminal UI",
		SilenceUsage: true,
		Args:         cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runTUI(opts)
		},
	}
	cmd.PersistentFlags().StringVar(&opts.configPath, "config", "", "config file (default ~/.teletext/teletext.toml)")
	cmd.PersistentFlags().StringVar(&opts.dataDir, "data-dir", "", "directory for bookmarks, read state and settings")
	cmd.PersistentFlags().StringVar(&opts.apiBaseURL, "api", "", "backend base URL")

	cmd.AddCommand(newFeedsCommand(opts), newOPMLCommand(opts), newOverlayCommand(opts))
	return cmd
}

func openSession(opts *rootOptions) (*session, error) {
	cfg, err := config.Load(opts.configPath)
	if err != nil {
		return nil, fmt.Errorf("config error: %w", err)
	}
	if opts.dataDir != "" {
		cfg.DataDir = opts.dataDir
	}
	if opts.apiBaseURL != "" {
		cfg.APIBaseURL = opts.apiBaseURL
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("config error: %w", err)
	}

	s := &session{cfg: cfg, logger: slog.New(slog.DiscardHandler)}
	if cfg.DebugLog != "" {
		f, err := tea.LogToFile(cfg.DebugLog, "teletext")
		if err != nil {
			return nil, fmt.Errorf("open debug log %s: %w", cfg.DebugLog, err)
		}
		s.logFile = f
		s.logger = slog.New(slog.NewTextHandler(f, &slog.HandlerOptions{Level: slog.LevelDebug}))
	}

	if err := os.MkdirAll(cfg.DataDir, 0o755); err != nil {
		s.Close()
		return nil, fmt.Errorf("create data dir %s: %w", cfg.DataDir, err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()

	kv, err := storage.Open(ctx, cfg.Store, cfg.DataDir)
	if err != nil {
		s.Close()
		return nil, fmt.Errorf("storage init error: %w", err)
	}
	s.kv = kv
	if err := storage.CheckWritable(ctx, kv); err != nil {
		s.Close()
		return nil, fmt.Errorf("storage write check failed (%v). Verify TELETEXT_DATA_DIR is writable: %s", err, cfg.DataDir)
	}

	s.overlay = overlay.New(kv, s.logger)
	s.service = app.NewService(api.NewClient(cfg.APIBaseURL, nil), s.overlay)
	return s, nil
}

func runTUI(opts *rootOptions) error {
	sess, err := openSession(opts)
	if err != nil {
		return err
	}
	defer sess.Close()

	initial := store.Initial()
	if local, ok := sess.overlay.LoadSettings(); ok {
		initial.Settings = local
	}
	st := store.New(initial)
	rd := reader.New(st, sess.overlay)

	backends := []notify.Notifier{notify.NewDesktop()}
	if sess.cfg.TelegramEnabled() {
		tg, err := notify.NewTelegram(sess.cfg.TelegramToken, sess.cfg.TelegramChatID)
		if err != nil {
			sess.logger.Warn("telegram alerts disabled", "err", err)
		} else {
			backends = append(backends, tg)
		}
	}

	model := tui.NewModel(tui.Options{
		Service: sess.service,
		Reader:  rd,
		Store:   st,
		Alerter: notify.NewDispatcher(sess.logger, backends...),
		Logger:  sess.logger,
	})
	defer model.Close()

	sess.logger.Info("starting", "api", sess.cfg.APIBaseURL, "store", sess.cfg.Store, "data_dir", sess.cfg.DataDir)
	program := tea.NewProgram(model, tea.WithAltScreen())
	if _, err := program.Run(); err != nil {
		return fmt.Errorf("tui error: %w", err)
	}
	return nil
}
