/*
 *   Copyright (c) 2024 Gustavo Lopez <git.gustavolopez.xyz@gmail.com>
 *   All rights reserved.
 */
package main

import (
	"context"
	"flag"
	"log/slog"
	"os"
	"os/signal"

	"github.com/go-echarts/statsview"
	"github.com/go-echarts/statsview/viewer"
	"github.com/guslan/c8vm"
	"github.com/guslan/c8vm/web"
)

const statsAddress = "localhost:12600"

func init() {
	slog.SetDefault(slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{})))
}

func main() {
	port := flag.Int("port", 9999, "The port of the server")
	speed := flag.Int("speed", int(c8vm.DefaultSpeed), "Speed in cycles per second")
	debug := flag.Bool("debug", false, "Stream the CPU state to /debugger, the console starts paused")
	static := flag.String("static", "./static", "The directory served at /")
	stats := flag.Bool("stats", false, "Serve runtime charts at "+statsAddress+"/debug/statsview")
	flag.Parse()

	if flag.NArg() < 1 {
		slog.Error("must provide the path to a rom as an argument")
		os.Exit(2)
	}

	program, err := os.ReadFile(flag.Arg(0))
	if err != nil {
		slog.Error("Error reading the program", slog.Any("error", err))
		os.Exit(1)
	}

	if *stats {
		go func() {
			viewer.SetConfiguration(viewer.WithAddr(statsAddress))
			statsview.New().Start()
		}()
		slog.Info("Stats server available", slog.String("url", "http://"+statsAddress+"/debug/statsview"))
	}

	server := web.NewServer(func(config *web.ServerConfig) {
		config.UseDebugger = *debug
		config.StaticDir = *static
	})

	server.Speed(*speed)
	if err := server.LoadProgram(program); err != nil {
		slog.Error("Error loading the program", slog.Any("error", err))
		os.Exit(1)
	}

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt)
	defer cancel()

	if err := server.Listen(ctx, *port); err != nil {
		slog.Error("Server stopped", slog.Any("error", err))
		os.Exit(1)
	}
}
