// Command server runs the course-advisor HTTP service.
package main

import (
	"context"
	"log"

	"github.com/coursecompass/advisor-go/internal/app"
	"github.com/coursecompass/advisor-go/internal/config"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("load config: %v", err)
	}

	application, err := app.Initialize(context.Background(), cfg)
	if err != nil {
		log.Fatalf("initialize application: %v", err)
	}

	if err := application.Run(); err != nil {
		log.Fatalf("run application: %v", err)
	}
}
