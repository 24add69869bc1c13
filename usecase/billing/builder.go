package billing

import (
	"context"
	"io"
	"time"

	"github.com/radhian/billing-reconciliation/consts"
	"github.com/radhian/billing-reconciliation/entity"
	"github.com/radhian/billing-reconciliation/infra/db/dao"
	"github.com/radhian/billing-reconciliation/infra/locker"
	"github.com/radhian/billing-reconciliation/infra/store"
)

type TokenProvider interface {
	Refresh(ctx context.Context, key string) (string, error)
}

type ReportClient interface {
	FetchReport(ctx context.Context, token string, scope consts.CountryConfig, start, end time.Time) (string, error)
}

type BlobStore interface {
	Upload(ctx context.Context, name string, data []byte, contentType string) error
	Download(ctx context.Context, name string) ([]byte, error)
}

type BillingUsecase interface {
	Fetch(ctx context.Context, req entity.FetchRequest) (entity.FetchSummary, error)
	ApplyException(ctx context.Context, operator, filename string, upload io.Reader) (entity.StepSummary, error)
	ApplyCredit(ctx context.Context, operator, filename string, upload io.Reader) (entity.StepSummary, error)
	ApplyPO(ctx context.Context, operator, filename string, upload io.Reader) (entity.StepSummary, error)
	ApplyConsolidation(ctx context.Context, operator, filename string, upload io.Reader) (entity.StepSummary, error)
	ApplyConsolidationLookup(ctx context.Context, operator string) (entity.StepSummary, error)
	Finalize(ctx context.Context, operator string) (entity.FinalizeSummary, error)
	Download(ctx context.Context, operator string) (entity.Download, error)
	GetTemplate(name string) (entity.Download, error)
	GetProgress(ctx context.Context) ([]entity.StepLogEntry, error)
}

// Dependencies wires the collaborators of the pipeline. Blob and Dao are optional.
type Dependencies struct {
	Store    store.ReportStore
	Locker   locker.Locker
	Tokens   TokenProvider
	Reports  ReportClient
	Blob     BlobStore
	Dao      dao.DaoMethod
	LockTTL  time.Duration
	LockWait time.Duration
	Now      func() time.Time
}

type billingUsecase struct {
	store    store.ReportStore
	locker   locker.Locker
	tokens   TokenProvider
	reports  ReportClient
	blob     BlobStore
	dao      dao.DaoMethod
	lockTTL  time.Duration
	lockWait time.Duration
	now      func() time.Time
}

func NewBillingUsecase(deps Dependencies) BillingUsecase {
	u := &billingUsecase{
		store:    deps.Store,
		locker:   deps.Locker,
		tokens:   deps.Tokens,
		reports:  deps.Reports,
		blob:     deps.Blob,
		dao:      deps.Dao,
		lockTTL:  deps.LockTTL,
		lockWait: deps.LockWait,
		now:      deps.Now,
	}
	if u.locker == nil {
		u.locker = locker.New()
	}
	if u.lockTTL <= 0 {
		u.lockTTL = time.Duration(consts.DefaultLockTTLSec) * time.Second
	}
	if u.lockWait <= 0 {
		u.lockWait = 10 * time.Second
	}
	if u.now == nil {
		u.now = time.Now
	}
	return u
}
