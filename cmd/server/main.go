// wxpush - WeChat message push relay
// Copyright (C) 2026  wxpush contributors
//
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published
// by the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.

package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog"

	"wxpush/config"
	"wxpush/internal/auth"
	"wxpush/internal/channel"
	"wxpush/internal/handlers"
	"wxpush/internal/metrics"
)

var (
	version   = "dev"
	commit    = "unknown"
	buildDate = "unknown"
)

func main() {
	showVersion := flag.Bool("version", false, "Show version information")
	flag.Parse()

	if *showVersion {
		fmt.Printf("wxpush %s\n", version)
		fmt.Printf("Commit: %s\n", commit)
		fmt.Printf("Built: %s\n", buildDate)
		os.Exit(0)
	}

	// .env is optional; OS environment alone is fine.
	_ = godotenv.Load()

	cfg := config.Load()

	level, err := zerolog.ParseLevel(strings.ToLower(cfg.LogLevel))
	if err != nil {
		level = zerolog.InfoLevel
	}
	log := zerolog.New(os.Stdout).Level(level).With().Timestamp().Logger()

	creds := auth.NewCredentials(cfg.APIKeys, cfg.APIKeySecret)
	if creds.Len() == 0 {
		log.Warn().Msg("no api keys configured; all requests will be rejected")
	}

	// One pooled client for every outbound vendor call.
	client := channel.NewHTTPClient()

	dispatcher := channel.NewDispatcher(map[channel.Channel]channel.Adapter{
		channel.ChannelWeChat:     channel.NewWeChat(client, cfg.DefaultTemplateID, log),
		channel.ChannelWorkWeChat: channel.NewWorkWeChat(client, cfg.DefaultAgentID, log),
	})

	sendMetrics := metrics.NewSend(prometheus.DefaultRegisterer)
	h := handlers.New(auth.NewValidator(creds), dispatcher, sendMetrics, log)

	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(handlers.RequestLogger(log))
	r.Use(handlers.Recover(log))
	r.Use(middleware.Timeout(60 * time.Second))

	r.Get("/health", h.Health)
	r.Get("/detail", h.Detail)
	r.Handle("/metrics", promhttp.Handler())
	r.Get("/send", h.SendGET)
	r.Post("/send", h.SendPOST)

	addr := ":" + cfg.Port
	srv := &http.Server{
		Addr:         addr,
		Handler:      r,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 60 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	done := make(chan struct{})
	go func() {
		sigint := make(chan os.Signal, 1)
		signal.Notify(sigint, os.Interrupt, syscall.SIGTERM)
		<-sigint

		log.Info().Msg("shutting down")
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := srv.Shutdown(ctx); err != nil {
			log.Error().Err(err).Msg("server shutdown")
		}
		client.CloseIdleConnections()
		close(done)
	}()

	log.Info().
		Str("addr", addr).
		Str("version", version).
		Int("api_keys", creds.Len()).
		Msg("wxpush starting")

	if err := srv.ListenAndServe(); !errors.Is(err, http.ErrServerClosed) {
		log.Fatal().Err(err).Msg("server error")
	}
	<-done
	log.Info().Msg("server stopped")
}
