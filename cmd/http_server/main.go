package main

import (
	"github.com/labstack/gommon/log"

	"github.com/radhian/billing-reconciliation/controllers"
	"github.com/radhian/billing-reconciliation/infra/config"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("[Config] %v", err)
	}

	app := controllers.App{}
	app.Initialize(cfg)
	app.RunServer()
}
