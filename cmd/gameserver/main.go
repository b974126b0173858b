// Package main provides the game master server binary. It wires together
// configuration, the conversational agent factory, the answer verifier, and
// the websocket frontend.
package main

import (
	"context"
	"flag"
	"log"
	"time"

	"go.uber.org/zap"

	"github.com/cory-johannsen/gamemaster/internal/config"
	"github.com/cory-johannsen/gamemaster/internal/frontend/ws"
	"github.com/cory-johannsen/gamemaster/internal/game/agent"
	"github.com/cory-johannsen/gamemaster/internal/game/session"
	"github.com/cory-johannsen/gamemaster/internal/game/verify"
	"github.com/cory-johannsen/gamemaster/internal/gameserver"
	"github.com/cory-johannsen/gamemaster/internal/observability"
	"github.com/cory-johannsen/gamemaster/internal/server"
)

func main() {
	start := time.Now()

	configPath := flag.String("config", "configs/dev.yaml", "path to configuration file")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		log.Fatalf("loading config: %v", err)
	}

	logger, err := observability.NewLogger(cfg.Logging)
	if err != nil {
		log.Fatalf("initializing logger: %v", err)
	}
	defer logger.Sync()

	logger.Info("starting game master server",
		zap.String("name", cfg.Server.Name),
		zap.String("provider", cfg.LLM.Provider),
		zap.String("verifier", cfg.Verifier.Mode),
	)

	prompts := agent.DefaultPrompts()
	if cfg.Game.PromptsFile != "" {
		prompts, err = agent.LoadPrompts(cfg.Game.PromptsFile)
		if err != nil {
			logger.Fatal("loading prompts", zap.Error(err))
		}
		logger.Info("prompts loaded", zap.String("path", cfg.Game.PromptsFile))
	}

	providerType, err := agent.ParseProviderType(cfg.LLM.Provider)
	if err != nil {
		logger.Fatal("selecting completion provider", zap.Error(err))
	}

	factory := agent.NewFactory(cfg, prompts)
	verifier := verify.FromConfig(cfg.Verifier)
	registry := gameserver.NewRegistry()
	sessions := session.NewManager()
	dispatcher := gameserver.NewDispatcher(logger, registry, sessions, factory, verifier, providerType)
	wsServer := ws.NewServer(cfg.Websocket, dispatcher, registry, logger)

	lifecycle := server.NewLifecycle(logger)
	lifecycle.Add("websocket", &server.FuncService{
		StartFn: func() error {
			return wsServer.ListenAndServe()
		},
		StopFn: func() {
			wsServer.Stop()
		},
	})

	logger.Info("server initialized",
		zap.Duration("startup", time.Since(start)),
		zap.String("websocket_addr", cfg.Websocket.Addr()),
		zap.String("websocket_path", cfg.Websocket.Path),
	)

	if err := lifecycle.Run(context.Background()); err != nil {
		logger.Fatal("server error", zap.Error(err))
	}
}
