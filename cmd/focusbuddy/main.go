// focusbuddy - camera/microphone focus session daemon.
// Samples ambient noise, light, and people in frame, scores focus in
// real time, and serves a local dashboard API with live feeds.
package main

import (
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/lukereid/focusbuddy/internal/config"
	"github.com/lukereid/focusbuddy/internal/log"
	"github.com/lukereid/focusbuddy/pkg/audioio"
	"github.com/lukereid/focusbuddy/pkg/auth"
	"github.com/lukereid/focusbuddy/pkg/capture"
	"github.com/lukereid/focusbuddy/pkg/clock"
	"github.com/lukereid/focusbuddy/pkg/detection"
	"github.com/lukereid/focusbuddy/pkg/focus"
	"github.com/lukereid/focusbuddy/pkg/quotes"
	"github.com/lukereid/focusbuddy/pkg/session"
	"github.com/lukereid/focusbuddy/pkg/store"
	"github.com/lukereid/focusbuddy/pkg/web"
)

const quoteInterval = 5 * time.Second

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Error("configuration error", "err", err)
		os.Exit(1)
	}
	log.Init(cfg.LogLevel)
	logger := log.L()

	users, err := store.OpenUsers(cfg.UsersPath())
	if err != nil {
		logger.Error("opening user store", "err", err)
		os.Exit(1)
	}
	sessions, err := store.OpenSessions(cfg.SessionsPath())
	if err != nil {
		logger.Error("opening session store", "err", err)
		os.Exit(1)
	}

	clk := clock.New()
	rotator := quotes.NewRotator(clk)
	rotator.Start(quoteInterval)
	defer rotator.Stop()

	server := web.NewServer(cfg.Port, auth.NewService(users), sessions, rotator, logger)

	audioCfg := audioio.DefaultConfig()
	audioCfg.Backend = audioio.Backend(cfg.AudioBackend)

	detCfg := detection.DefaultConfig()
	detCfg.ModelPath = cfg.ModelPath

	controller := session.NewController(session.Deps{
		AcquireMedia: func() (*capture.Stream, error) {
			return capture.Acquire(capture.Config{
				CameraDevice: cfg.CameraDevice,
				Audio:        audioCfg,
			}, true, true, logger)
		},
		LoadDetector: func() (detection.Detector, error) {
			return detection.Load(detCfg)
		},
		Sessions:  sessions,
		Clock:     clk,
		Sink:      server,
		FrameSink: server.SendCameraFrame,
		Config:    focus.DefaultConfig(),
		Logger:    logger,
	})
	server.SetController(controller)

	// End any active session before shutting down, so the record is
	// persisted and the camera released.
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		<-sigCh
		logger.Info("shutting down")
		if controller.State() == session.StateActive {
			if _, err := controller.End(); err != nil {
				logger.Warn("ending session on shutdown", "err", err)
			}
		}
		server.Shutdown()
	}()

	logger.Info("focusbuddy starting",
		"port", cfg.Port,
		"data_dir", cfg.DataDir,
		"model", cfg.ModelPath,
	)
	if err := server.Start(); err != nil {
		logger.Error("server error", "err", err)
		os.Exit(1)
	}
}
