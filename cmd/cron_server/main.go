package main

import (
	"context"
	"sync"
	"time"

	"github.com/labstack/gommon/log"

	"github.com/radhian/billing-reconciliation/consts"
	"github.com/radhian/billing-reconciliation/handler"
	"github.com/radhian/billing-reconciliation/infra/config"
	"github.com/radhian/billing-reconciliation/infra/token"
)

type CronWorkerConfig struct {
	Interval time.Duration
	Workers  int
}

// startTokenRotationWorker keeps refresh credentials alive between billing runs.
func (cfg CronWorkerConfig) startTokenRotationWorker(h *handler.TokenRotationHandler, workerID int) {
	for {
		ctx := context.Background()
		err := h.TokenRotationExecution(ctx)
		if err != nil {
			log.Errorf("[Worker %d] error: %s", workerID, err.Error())
		} else {
			log.Infof("[Worker %d] success", workerID)
		}

		time.Sleep(cfg.Interval)
	}
}

type App struct {
	Secrets *token.GCPSecretStore
	Tokens  *token.Provider
}

func (a *App) startCronWorker(cfg CronWorkerConfig) {
	var wg sync.WaitGroup

	h := handler.NewTokenRotationHandler(a.Tokens)

	for i := 0; i < cfg.Workers; i++ {
		wg.Add(1)
		go func(workerID int) {
			defer wg.Done()
			log.Infof("spawn [Worker %d]", workerID)
			cfg.startTokenRotationWorker(h, workerID)
		}(i + 1)
	}
	wg.Wait()
}

func (a *App) Initialize(cfg *config.Config) {
	log.SetLevel(cfg.LogLvl())

	var err error
	a.Secrets, err = token.NewGCPSecretStore(context.Background(), cfg.GCPProjectID)
	if err != nil {
		log.Fatalf("[App] %v", err)
	}
	a.Tokens = token.NewProvider(a.Secrets, cfg.OAuthTokenURL, cfg.HTTPTimeout, token.ScopeSecretIDs())
}

func (a *App) RunServer(cfg *config.Config) {
	defer a.Secrets.Close()

	a.startCronWorker(CronWorkerConfig{
		Workers:  consts.DefaultRotationWorkerNumber,
		Interval: cfg.TokenRotationInterval,
	})
}

func main() {
	cfg, err := config.LoadCron()
	if err != nil {
		log.Fatalf("[Config] %v", err)
	}

	app := App{}
	app.Initialize(cfg)
	app.RunServer(cfg)
}
