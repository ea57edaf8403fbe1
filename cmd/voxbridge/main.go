package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"os/exec"
	"os/signal"
	"path/filepath"
	"syscall"

	"github.com/joho/godotenv"
	"golang.org/x/sync/errgroup"

	"github.com/ekisa-team/voxbridge/internal/backend"
	"github.com/ekisa-team/voxbridge/internal/backend/whisper"
	"github.com/ekisa-team/voxbridge/internal/config"
	"github.com/ekisa-team/voxbridge/internal/env"
	"github.com/ekisa-team/voxbridge/internal/logger"
	"github.com/ekisa-team/voxbridge/internal/model"
	grpcserver "github.com/ekisa-team/voxbridge/internal/server/grpc"
	httpserver "github.com/ekisa-team/voxbridge/internal/server/http"
	"github.com/ekisa-team/voxbridge/internal/service"
	"github.com/ekisa-team/voxbridge/internal/settings"
	"github.com/ekisa-team/voxbridge/internal/xfs"
)

const defaultWhisperBinary = "whisper-server"

func main() {
	if err := run(); err != nil {
		slog.Error("voxbridge stopped", "error", err)
		os.Exit(1)
	}
}

func run() error {
	var (
		flagHTTPPort     = flag.Int("http-port", config.DefaultHTTPPort(), "HTTP port to listen on")
		flagGRPCPort     = flag.Int("grpc-port", config.DefaultGRPCPort(), "gRPC health port to listen on (0 disables)")
		flagConfigPath   = flag.String("config", filepath.Join(config.DefaultConfigPath(), "config.yaml"), "Path to config file")
		flagSettingsPath = flag.String("settings", "", "Path to the desktop settings file")
	)
	flag.Parse()

	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		slog.Warn("Failed to load .env file", "error", err)
	}

	cfg, err := config.Load(*flagConfigPath)
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	flag.Visit(func(f *flag.Flag) {
		switch f.Name {
		case "http-port":
			cfg.Server.HTTPPort = *flagHTTPPort
		case "grpc-port":
			cfg.Server.GRPCPort = *flagGRPCPort
		case "settings":
			cfg.Settings.Path = xfs.ExpandTilde(*flagSettingsPath)
		}
	})

	environment := env.FromEnv()

	slog.SetDefault(
		logger.New(environment,
			logger.WithLevel(logger.ParseLevel(cfg.Log.Level)),
			logger.WithLogToFile(cfg.Log.ToFile),
			logger.WithLogFile(cfg.Log.File),
		),
	)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	source := settings.NewSource(cfg.Settings.Path)
	initial, origin := source.ResolveWithOrigin()
	slog.Info("Starting voxbridge",
		"environment", environment,
		"config", *flagConfigPath,
		"settings_origin", origin,
		"settings_path", source.Path(),
		"whisper_model", initial.WhisperModel,
		"llm_model", initial.Model,
		"llm_base_url", initial.BaseURL,
	)

	serverManager := backend.NewServerManager()
	defer serverManager.StopAll()

	providers := backend.NewRegistry()
	if err := registerWhisper(cfg.Transcriber, providers, serverManager); err != nil {
		return err
	}
	builder := backend.NewBuilder(cfg.Transcriber.Provider, providers)
	slog.Info("Transcription providers registered", "providers", providers.Providers(), "selection", cfg.Transcriber.Provider)

	var (
		grpcServer *grpcserver.Server
		opts       = []service.Option{service.WithMaxElapsed(cfg.Startup.MaxElapsed)}
	)
	if cfg.Server.GRPCPort > 0 {
		grpcServer = grpcserver.NewServer()
		opts = append(opts, service.WithObserver(grpcServer.Observer()))
	}

	registry := service.NewRegistry(builder.Factory(), opts...)
	defer registry.Close()

	g, ctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		if err := registry.Bootstrap(ctx, initial); err != nil {
			if ctx.Err() != nil {
				return nil
			}
			return fmt.Errorf("initialize engine: %w", err)
		}
		slog.Info("Ready")
		return nil
	})

	if cfg.Settings.Watch {
		watcher, err := settings.NewWatcher(source, func(s settings.Settings, err error) {
			if err != nil {
				return
			}
			if err := registry.Replace(ctx, s); err != nil {
				slog.Error("Failed to apply reloaded settings", "error", err)
			}
		})
		if err != nil {
			slog.Warn("Settings hot reload disabled", "path", source.Path(), "error", err)
		} else {
			defer watcher.Close()
		}
	}

	router := httpserver.NewRouter(cfg.Server, registry, source)
	g.Go(func() error {
		return httpserver.NewServer(cfg.Server, router).Run(ctx)
	})

	if grpcServer != nil {
		g.Go(func() error {
			return grpcServer.Run(ctx, cfg.Server.Host, cfg.Server.GRPCPort)
		})
	}

	err = g.Wait()
	slog.Info("Shutting down")
	return err
}

// registerWhisper makes the local whisper.cpp transcriber available when a
// server binary is configured or the provider is forced to whisper.cpp.
func registerWhisper(cfg config.TranscriberConfig, providers *backend.Registry, sm *backend.ServerManager) error {
	binPath, ok, err := whisperBinary(cfg)
	if err != nil || !ok {
		return err
	}

	models := model.NewManager(cfg.ModelsDir, model.WithAutoDownload(cfg.AutoDownload))
	slog.Info("Using local whisper.cpp", "bin", binPath, "models_dir", models.ModelsDir())

	return providers.Register(backend.ProviderWhisperCPP, whisper.NewConstructor(whisper.ConstructorOptions{
		BinPath:       binPath,
		Models:        models,
		ServerManager: sm,
		Parameters:    cfg.Parameters,
		ReadyTimeout:  cfg.ReadyTimeout,
	}))
}

// whisperBinary resolves the whisper-server executable, searching PATH for
// bare names. ok is false when whisper.cpp is not in use.
func whisperBinary(cfg config.TranscriberConfig) (string, bool, error) {
	name := cfg.BinPath
	if name == "" {
		if cfg.Provider != config.TranscriberWhisperCPP {
			return "", false, nil
		}
		name = defaultWhisperBinary
	}

	path, err := exec.LookPath(name)
	if err != nil {
		return "", false, fmt.Errorf("whisper.cpp server binary %q: %w", name, err)
	}
	return path, true, nil
}
