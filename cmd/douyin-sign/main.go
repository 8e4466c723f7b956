package main

import (
	"fmt"
	"os"

	signcli "github.com/ShinyNito/FunkDouyin/internal/cli"
)

func main() {
	envFile := os.Getenv("DOUYIN_ENV_FILE")
	if envFile == "" {
		envFile = ".env"
	}
	if err := signcli.LoadEnv(envFile); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}

	if err := signcli.NewApp().Run(os.Args); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
