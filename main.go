package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog/log"

	contactx "github.com/chatdesk/support-assistant/agent/contact"
	orchestratorx "github.com/chatdesk/support-assistant/agent/orchestrator"
	ordersx "github.com/chatdesk/support-assistant/agent/orders"
	runnerx "github.com/chatdesk/support-assistant/agent/runner"
	statex "github.com/chatdesk/support-assistant/agent/state"
	toolx "github.com/chatdesk/support-assistant/agent/tool"
	assistantsx "github.com/chatdesk/support-assistant/pkg/assistants"
	configx "github.com/chatdesk/support-assistant/pkg/config"
	_ "github.com/chatdesk/support-assistant/pkg/logger/autoload"
	serverx "github.com/chatdesk/support-assistant/server"
)

const shutdownGrace = 10 * time.Second

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	assistantConf := configx.MustNew[assistantsx.Config]("OPENAI")
	assistant := assistantsx.MustNew(*assistantConf)

	storeConf := configx.MustNew[statex.UpstashRedisConfig]("UPSTASH_REDIS")
	threadStore, err := statex.NewUpstashRedisStore(*storeConf)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to build thread store")
	}

	resolver, err := statex.NewResolver(threadStore, assistant)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to build session resolver")
	}

	ordersConf := configx.MustNew[ordersx.PostgresConfig]("ORDERS")
	db := ordersx.Open(*ordersConf)
	defer db.Close()

	orderStore, err := ordersx.NewPostgresStore(db)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to build order store")
	}
	if err := orderStore.Seed(ctx); err != nil {
		log.Fatal().Err(err).Msg("failed to seed orders")
	}

	contactConf := configx.MustNew[contactx.Config]("CONTACT")
	contactLog, err := contactx.NewCSVLog(*contactConf)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to open contact log")
	}

	registry, err := toolx.NewRegistry(orderStore, contactLog)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to build tool registry")
	}

	runnerConf := configx.MustNew[runnerx.Config]("RUNNER")
	awaiter, err := runnerx.New(assistant, registry, *runnerConf)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to build run awaiter")
	}

	service, err := orchestratorx.New(resolver, assistant, awaiter, orderStore)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to build orchestrator")
	}

	serverConf := configx.MustNew[serverx.Config]("SERVER")
	srv := serverx.New(*serverConf, service)

	go func() {
		log.Info().Str("addr", srv.Addr).Msg("assistant server listening")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal().Err(err).Msg("server stopped unexpectedly")
		}
	}()

	<-ctx.Done()
	stop()
	log.Info().Msg("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownGrace)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("graceful shutdown failed")
	}
}
