package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/miseapp/mise/internal/amazon"
	"github.com/miseapp/mise/internal/gateway"
	"github.com/miseapp/mise/internal/handlers"
	"github.com/miseapp/mise/internal/llm"
	"github.com/miseapp/mise/internal/observability"
	"github.com/miseapp/mise/internal/orchestration"
	"github.com/miseapp/mise/internal/store"
	"github.com/miseapp/mise/pkg/config"
	"github.com/tmc/langchaingo/llms"
	"github.com/tmc/langchaingo/llms/openai"
)

func main() {
	observability.PrintBanner()
	observability.InitializeTerminal()

	// Route all log output through the terminal mutex so it never
	// interrupts the dashboard's cursor save/restore sequence.
	log.SetOutput(observability.NewTermWriter())

	cfg := config.LoadConfig("config.json")

	tgCfg, ok := cfg.GetTelegramConfig()
	if !ok {
		log.Fatal("Telegram gateway is not enabled or token is missing")
	}

	db, err := store.Open(cfg.Storage.Path)
	if err != nil {
		log.Fatal(err)
	}
	defer db.Close()

	var search *amazon.Client
	if cfg.Search.RapidAPIKey != "" {
		search = amazon.NewClient(cfg.Search.RapidAPIKey)
	} else {
		log.Printf("Warning: product search disabled, no RapidAPI key configured")
	}

	registry := handlers.NewDefaultRegistry()
	events := observability.NewLogger()
	limiter := orchestration.NewRateLimiter(cfg.Limits.RequestsPerMinute, cfg.Limits.RequestsPerDay)

	// Initialize LLM (using default enabled provider)
	pName, pCfg := cfg.GetDefaultProvider()
	if pName == "" {
		log.Fatal("No enabled provider found in config")
	}

	var model llms.Model
	switch pName {
	case "openai", "openrouter":
		opts := []openai.Option{
			openai.WithToken(pCfg.APIKey),
			openai.WithModel(pCfg.Model),
		}
		if pCfg.BaseURL != "" {
			opts = append(opts, openai.WithBaseURL(pCfg.BaseURL))
		}
		model, err = openai.New(opts...)
	default:
		log.Fatalf("Provider %s not yet implemented in main", pName)
	}

	if err != nil {
		log.Fatal(err)
	}

	orchestrator := orchestration.NewOrchestrator(llm.NewClient(model), db, search, registry, limiter, events)

	var tg gateway.Messenger
	tg, err = gateway.NewTelegramGateway(tgCfg.Token, orchestrator)
	if err != nil {
		log.Fatal(err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// Start Live Resource Dashboard (1-second updates)
	go func() {
		ticker := time.NewTicker(1 * time.Second)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				observability.PrintLiveStatus()
			}
		}
	}()

	go func() {
		ticker := time.NewTicker(30 * time.Second)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				observability.Heartbeat()
				events.LogHeartbeat()
			}
		}
	}()

	// Start Gateway in a goroutine so we can wait for context in the main loop
	go func() {
		if err := tg.Start(); err != nil {
			log.Printf("\033[91m[ FAIL ] GATEWAY CRITICAL ERROR: %v\033[0m", err)
			stop()
		}
	}()

	// Wait for shutdown signal
	<-ctx.Done()

	observability.CleanupTerminal()

	// Give a short time for final logs/syncs
	time.Sleep(500 * time.Millisecond)
	log.Println("\033[95m[ EXIT ] MISE DE-INITIALIZED. GOODBYE.\033[0m")
}
