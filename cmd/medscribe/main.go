// Command medscribe runs the transcription and lab-analytics HTTP service.
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/skillsenselab/medscribe/analytics"
	"github.com/skillsenselab/medscribe/config"
	"github.com/skillsenselab/medscribe/logger"
	"github.com/skillsenselab/medscribe/observability"
	"github.com/skillsenselab/medscribe/provider"
	"github.com/skillsenselab/medscribe/server"
	"github.com/skillsenselab/medscribe/transcription"
	"github.com/skillsenselab/medscribe/transcription/assemblyai"
	"github.com/skillsenselab/medscribe/transcription/deepgram"
	"github.com/skillsenselab/medscribe/transcription/webspeech"
	"github.com/skillsenselab/medscribe/transcription/whisper"
	"github.com/skillsenselab/medscribe/util"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func run() error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}

	logger.Init(cfg.Logging)
	log := logger.Get("main")

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if cfg.Observability.Enabled {
		tp, err := observability.InitTracer(ctx, cfg.Observability.Tracer)
		if err != nil {
			return fmt.Errorf("initializing tracer: %w", err)
		}
		defer func() { _ = tp.Shutdown(context.Background()) }()

		mp, err := observability.InitMeter(ctx, cfg.Observability.Meter)
		if err != nil {
			return fmt.Errorf("initializing meter: %w", err)
		}
		defer func() { _ = mp.Shutdown(context.Background()) }()
	}

	registry, err := buildRegistry(cfg, log)
	if err != nil {
		return err
	}

	svc := transcription.NewService(registry, cfg.Transcription)
	analyzer := analytics.NewAnalyzer()

	srv := server.New(cfg.Server, log)
	srv.ApplyMiddleware()
	server.NewHandlers(svc, analyzer).Register(srv.GinEngine())

	if err := srv.Start(ctx); err != nil {
		return err
	}

	<-ctx.Done()
	log.Info("Shutdown signal received")

	svc.AbortAllRequests()
	return srv.Stop(context.Background())
}

// buildRegistry registers every enabled provider. The browser-fallback stub
// is always registered so the fallback chain can terminate without error.
func buildRegistry(cfg *config.Config, log *logger.Logger) (*provider.Registry[transcription.Provider], error) {
	registry := transcription.NewRegistry()

	registry.RegisterFactory(deepgram.ProviderName, deepgram.Factory())
	registry.RegisterFactory(whisper.ProviderName, whisper.Factory())
	registry.RegisterFactory(assemblyai.ProviderName, assemblyai.Factory())

	vendors := []struct {
		name string
		cfg  config.ProviderConfig
	}{
		{deepgram.ProviderName, cfg.Deepgram},
		{whisper.ProviderName, cfg.Whisper},
		{assemblyai.ProviderName, cfg.AssemblyAI},
	}

	for _, v := range vendors {
		if !v.cfg.Enabled {
			continue
		}
		p, err := registry.Create(v.name, v.cfg.Map())
		if err != nil {
			return nil, fmt.Errorf("creating %s provider: %w", v.name, err)
		}
		registry.Register(v.name, p)
		log.Info("Provider registered", logger.Fields(
			logger.FieldProvider, v.name,
			"api_key", util.MaskSecret(v.cfg.APIKey, 4),
		))
	}

	registry.Register(webspeech.ProviderName, webspeech.NewProvider())

	return registry, nil
}
