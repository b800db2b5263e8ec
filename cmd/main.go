package main

import (
	"log"

	_ "time/tzdata"

	"github.com/orgcore/notification-service/cmd/app"
	"github.com/orgcore/notification-service/internal/adapters/config"
)

func main() {
	cfg := config.Get()
	a, err := app.New(cfg)
	if err != nil {
		log.Panic(err)
	}

	if err = a.Start(); err != nil {
		log.Panic(err)
	}
}
