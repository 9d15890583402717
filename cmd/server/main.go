// Package main implements the entry point for the Japanese Text Server,
// an HTTP API that generates JLPT-leveled Japanese study texts with
// translations, vocabulary, and grammar notes via the Gemini API.
package main

import (
	"context"
	"log"
)

func main() {
	ctx := context.Background()

	app, err := newApplication(ctx)
	if err != nil {
		log.Fatalf("Failed to initialize application: %v", err)
	}

	router := app.setupRouter()

	if err := app.startHTTPServer(ctx, router); err != nil {
		log.Fatalf("Server error: %v", err)
	}
}
