// @title Inventory Server API
// @version 1.0
// @description Authenticated inventory API with a websocket event feed.
// @host localhost:8080
// @BasePath /api
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"time"

	"inventory-server-go/internal/bootstrap"
)

func main() {
	configPath := flag.String("config", "", "Configuration file path (default .config.yaml)")
	flag.Parse()

	if *configPath != "" {
		// The loader reads CONFIG_PATH; the flag is just its front door.
		os.Setenv("CONFIG_PATH", *configPath)
	}

	fmt.Printf("[%s] [INFO] [BOOT] starting inventory-server...\n", time.Now().Format("2006-01-02 15:04:05.000"))
	if err := bootstrap.Run(context.Background()); err != nil {
		_, _ = fmt.Fprintf(os.Stderr, "inventory-server failed: %v\n", err)
		os.Exit(1)
	}
}
