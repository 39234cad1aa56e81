package main

import (
	"log"

	"github.com/MrSnakeDoc/docs/internal/cli"
)

func main() {
	if err := cli.Execute(); err != nil {
		log.Fatalf("❌ docs failed: %v", err)
	}
}
