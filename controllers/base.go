package controllers

import (
	"context"
	"io"
	"net/http"
	"time"

	"github.com/gorilla/mux"
	"github.com/jinzhu/gorm"
	_ "github.com/jinzhu/gorm/dialects/postgres" //postgres
	"github.com/labstack/gommon/log"
	"github.com/redis/go-redis/v9"

	"github.com/radhian/billing-reconciliation/handler"
	"github.com/radhian/billing-reconciliation/infra/blob"
	"github.com/radhian/billing-reconciliation/infra/config"
	"github.com/radhian/billing-reconciliation/infra/db/dao"
	"github.com/radhian/billing-reconciliation/infra/db/model"
	"github.com/radhian/billing-reconciliation/infra/locker"
	"github.com/radhian/billing-reconciliation/infra/reportapi"
	"github.com/radhian/billing-reconciliation/infra/store"
	"github.com/radhian/billing-reconciliation/infra/token"
	"github.com/radhian/billing-reconciliation/middlewares"
	"github.com/radhian/billing-reconciliation/usecase/billing"
	"github.com/radhian/billing-reconciliation/usecase/sapftp"
)

type App struct {
	DB      *gorm.DB
	Router  *mux.Router
	Config  *config.Config
	closers []io.Closer
}

func (a *App) Initialize(cfg *config.Config) {
	a.Config = cfg
	log.SetLevel(cfg.LogLvl())

	var err error
	a.DB, err = gorm.Open("postgres", cfg.DBURI())
	if err != nil {
		log.Fatalf("[App] Cannot connect to database %s: %v", cfg.DbName, err)
	}
	log.Infof("[App] Connected to database %s", cfg.DbName)

	a.DB.AutoMigrate(
		&model.PipelineStepLog{},
		&model.SapCustomer{},
	) //database migration

	ctx := context.Background()

	reportStore, err := store.NewFileStore(cfg.DataDir)
	if err != nil {
		log.Fatalf("[App] %v", err)
	}

	secrets, err := token.NewGCPSecretStore(ctx, cfg.GCPProjectID)
	if err != nil {
		log.Fatalf("[App] %v", err)
	}
	a.closers = append(a.closers, secrets)
	tokens := token.NewProvider(secrets, cfg.OAuthTokenURL, cfg.HTTPTimeout, token.ScopeSecretIDs())

	var blobStore billing.BlobStore
	if cfg.BlobBucket != "" {
		gcs, err := blob.NewGCSStore(ctx, cfg.BlobBucket)
		if err != nil {
			log.Fatalf("[App] %v", err)
		}
		a.closers = append(a.closers, gcs)
		blobStore = gcs
	} else {
		log.Warnf("[App] BLOB_BUCKET not set, reports will not be archived")
	}

	billingUc := billing.NewBillingUsecase(billing.Dependencies{
		Store:   reportStore,
		Locker:  a.newLocker(ctx),
		Tokens:  tokens,
		Reports: reportapi.New(cfg.ReportAPIBaseURL, cfg.HTTPTimeout),
		Blob:    blobStore,
		Dao:     dao.NewDaoMethod(a.DB),
		LockTTL: cfg.LockTTL,
	})
	sapFtpUc := sapftp.NewSapFtpUsecase(blobStore)

	a.Router = mux.NewRouter().StrictSlash(true)
	a.initializeRoutes(handler.NewBillingHandler(billingUc, sapFtpUc))
}

// newLocker picks the snapshot lock backend. Redis is needed when several
// server replicas share one data directory.
func (a *App) newLocker(ctx context.Context) locker.Locker {
	if a.Config.LockBackend != "redis" {
		return locker.New()
	}
	rdb := redis.NewClient(&redis.Options{Addr: a.Config.RedisAddress})
	if err := rdb.Ping(ctx).Err(); err != nil {
		log.Fatalf("[App] Cannot connect to redis %s: %v", a.Config.RedisAddress, err)
	}
	a.closers = append(a.closers, rdb)
	log.Infof("[App] Using redis lock at %s", a.Config.RedisAddress)
	return locker.NewRedisLocker(rdb)
}

func (a *App) initializeRoutes(h *handler.BillingHandler) {
	a.Router.Use(middlewares.RequestLoggerMiddleware)
	a.Router.Use(middlewares.SetContentTypeMiddleware)
	RegisterBillingRoutes(a.Router, h)
}

func (a *App) RunServer() {
	defer a.close()

	server := &http.Server{
		Addr:              ":" + a.Config.Port,
		Handler:           a.Router,
		ReadHeaderTimeout: 10 * time.Second,
	}
	log.Infof("[App] Server starting on port %v", a.Config.Port)
	if err := server.ListenAndServe(); err != nil {
		log.Errorf("[App] Server stopped: %v", err)
	}
}

func (a *App) close() {
	for _, c := range a.closers {
		if err := c.Close(); err != nil {
			log.Warnf("[App] Close failed: %v", err)
		}
	}
	if a.DB != nil {
		a.DB.Close()
	}
}
