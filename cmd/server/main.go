package main

import (
	"context"
	"log"

	"rift-arena/server/internal/app"
)

func main() {
	if err := app.Run(context.Background()); err != nil {
		log.Fatalf("server exited: %v", err)
	}
}
