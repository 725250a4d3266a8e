package main

import (
	"log"

	"chirper/internal/transport/http"
)

func main() {
	// The zap logger is built from config inside Run; failures before that
	// only have the standard logger.
	if err := http.Run(); err != nil {
		log.Fatalf("Server failed: %v", err)
	}
}
