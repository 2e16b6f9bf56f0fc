package main

import (
	"embed"
	"flag"
	"fmt"
	"io/fs"
	"log/slog"
	"os"

	"github.com/joho/godotenv"

	"churnmail/internal/app"
	"churnmail/pkg/contracts"
)

// Embedded single-page UI
//go:embed static
var staticFiles embed.FS

func main() {
	showVersion := flag.Bool("version", false, "Print version information and exit")
	flag.Parse()

	if *showVersion {
		fmt.Println(contracts.GetFullVersionString())
		return
	}

	// A .env file is optional; plain environment variables win
	if err := godotenv.Load(); err == nil {
		slog.Info("loaded configuration from .env file")
	}

	var frontendFS fs.FS
	if sub, err := fs.Sub(staticFiles, "static"); err == nil {
		frontendFS = sub
	} else {
		slog.Warn("frontend embedding failed, serving API only",
			slog.String("error", err.Error()))
	}

	application, err := app.NewApplication(frontendFS)
	if err != nil {
		slog.Error("Failed to initialize application", slog.String("error", err.Error()))
		os.Exit(1)
	}

	if err := application.Run(); err != nil {
		slog.Error("Application error", slog.String("error", err.Error()))
		os.Exit(1)
	}
}
