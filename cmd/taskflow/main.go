package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/nkapoor/taskflow/internal/capability"
	"github.com/nkapoor/taskflow/internal/event"
	"github.com/nkapoor/taskflow/internal/gateway"
	"github.com/nkapoor/taskflow/internal/governance"
	"github.com/nkapoor/taskflow/internal/knowledge"
	"github.com/nkapoor/taskflow/internal/observability"
	"github.com/nkapoor/taskflow/internal/orchestrator"
	"github.com/nkapoor/taskflow/internal/planner"
	"github.com/nkapoor/taskflow/internal/store"
	"github.com/nkapoor/taskflow/pkg/config"
	"github.com/tmc/langchaingo/llms"
	"github.com/tmc/langchaingo/llms/openai"
)

func main() {
	observability.PrintBanner()

	cfg := config.LoadConfig("config.json")

	// Initialize LLM (using default enabled provider)
	pName, pCfg := cfg.GetDefaultProvider()
	if pName == "" {
		log.Fatal("No enabled provider found in config")
	}

	var llm llms.Model
	var err error
	switch pName {
	case "groq", "openai", "openrouter":
		opts := []openai.Option{
			openai.WithToken(pCfg.APIKey),
			openai.WithModel(pCfg.Model),
		}
		if pCfg.BaseURL != "" {
			opts = append(opts, openai.WithBaseURL(pCfg.BaseURL))
		}
		llm, err = openai.New(opts...)
	default:
		log.Fatalf("Provider %s not yet implemented in main", pName)
	}
	if err != nil {
		log.Fatal(err)
	}

	kstore, err := knowledge.NewStore(cfg.App.KnowledgeDir)
	if err != nil {
		log.Fatal(err)
	}

	// Initialize Capabilities
	registry := capability.NewRegistry()
	registry.Register(capability.NewKnowledgeCapability(kstore, llm))
	registry.Register(capability.NewSlackCapability(capability.SlackConfig{
		Token: cfg.Capabilities.Slack.BotToken,
	}))
	registry.Register(capability.NewSMSCapability(capability.TwilioConfig{
		AccountSID: cfg.Capabilities.Twilio.AccountSID,
		AuthToken:  cfg.Capabilities.Twilio.AuthToken,
		From:       cfg.Capabilities.Twilio.PhoneNumber,
	}))
	registry.Register(capability.NewCalendarCapability(capability.CalendarConfig{
		CredentialsPath: cfg.Capabilities.Calendar.CredentialsPath,
		TokenPath:       cfg.Capabilities.Calendar.TokenPath,
		TimeZone:        cfg.Capabilities.Calendar.TimeZone,
	}))

	searchCap, err := capability.NewSearchCapability()
	if err != nil {
		log.Printf("Warning: Failed to initialize search capability: %v", err)
	} else {
		registry.Register(searchCap)
	}

	tasks, err := store.NewTaskStore(cfg.Memory.Path)
	if err != nil {
		log.Fatal(err)
	}
	defer tasks.Close()

	broadcaster := event.NewBroadcaster()

	logger := observability.NewLogger()
	go logger.Mirror(broadcaster.Subscribe(256))

	// Default safety rules: never let a plan text premium-rate numbers.
	gov := governance.NewDefaultPolicyEngine()
	_ = gov.DenyInstructions(`\+?1?900\d{7}`)

	orch := orchestrator.New(planner.New(llm), registry, kstore, broadcaster,
		observability.NewTaskAudit(tasks, logger), gov)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// Optional ops notifications over Telegram
	if tgCfg, ok := cfg.GetTelegramConfig(); ok {
		sink, err := gateway.NewTelegramSink(tgCfg.Token, tgCfg.ChatID, broadcaster)
		if err != nil {
			log.Printf("Warning: Failed to initialize telegram notifier: %v", err)
		} else {
			go sink.Start(ctx)
		}
	}

	go func() {
		ticker := time.NewTicker(30 * time.Second)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				logger.LogHeartbeat()
			}
		}
	}()

	server := gateway.NewServer(orch, broadcaster, tasks, cfg.App.StaticDir)
	httpServer := &http.Server{
		Addr:    cfg.Gateways.HTTP.Addr,
		Handler: server.Routes(),
	}

	go func() {
		log.Printf("%s listening on %s", cfg.App.Name, cfg.Gateways.HTTP.Addr)
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Printf("HTTP server error: %v", err)
			stop()
		}
	}()

	<-ctx.Done()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		log.Printf("HTTP shutdown error: %v", err)
	}

	log.Println("taskflow stopped")
}
