package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	"github.com/gdamore/tcell/v2"

	"github.com/lixenwraith/spotlight/audio"
	"github.com/lixenwraith/spotlight/core"
	"github.com/lixenwraith/spotlight/logging"
	"github.com/lixenwraith/spotlight/settings"
	"github.com/lixenwraith/spotlight/status"
	"github.com/lixenwraith/spotlight/viewer"
)

func newViewCommand() command {
	var sound bool

	return command{
		name:        "view",
		usage:       "[flags] [file|url ...]",
		description: "Open documents in the spotlight viewer (default command)",
		configure: func(fs *flag.FlagSet) {
			fs.BoolVar(&sound, "sound", false, "Play a cue on activation (overrides config)")
		},
		run: func(fs *flag.FlagSet, args []string, ctx *AppContext, stdout io.Writer, stderr io.Writer) error {
			soundSet := false
			fs.Visit(func(f *flag.Flag) {
				if f.Name == "sound" {
					soundSet = true
				}
			})
			cfg := ctx.Config
			if soundSet {
				cfg.Sound.Enabled = sound
			}

			logger, closer, err := logging.OpenFile(cfg.Logging.File, cfg.Logging.Level, cfg.Logging.Format)
			if err != nil {
				return err
			}
			defer closer.Close()
			logger.Info("spotlight starting", "config", cfg.Source, "settings", cfg.SettingsPath, "documents", len(args))

			runCtx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			store := settings.NewFileStore(cfg.SettingsPath, logger)
			if err := store.Watch(runCtx); err != nil {
				// Edits from other processes go unseen; local edits still apply
				logger.Warn("settings watcher unavailable", "error", err)
			}
			defer store.Close()

			var cues viewer.CuePlayer
			if cfg.Sound.Enabled {
				player := audio.NewPlayer(cfg.Sound.Volume, logger)
				if err := player.Initialize(); err != nil {
					logger.Warn("audio init failed, continuing without sound", "error", err)
				} else {
					defer player.Close()
					cues = player
				}
			}

			screen, err := tcell.NewScreen()
			if err != nil {
				return fmt.Errorf("create screen: %w", err)
			}
			if err := screen.Init(); err != nil {
				return fmt.Errorf("initialize terminal: %w", err)
			}
			core.SetResetHook(screen.Fini)
			defer func() {
				core.SetResetHook(nil)
				screen.Fini()
			}()
			screen.EnableMouse(tcell.MouseMotionEvents)
			screen.EnableFocus()
			screen.HideCursor()

			metrics := status.NewRegistry()
			v, err := viewer.New(viewer.Options{
				Screen:  screen,
				Store:   store,
				Config:  cfg,
				Logger:  logger,
				Metrics: metrics,
				Cues:    cues,
			})
			if err != nil {
				return err
			}
			v.Open(args...)

			if err := v.Run(runCtx); err != nil {
				return err
			}
			logger.Info("spotlight stopped")
			return nil
		},
	}
}
