package billing

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/radhian/billing-reconciliation/consts"
	"github.com/radhian/billing-reconciliation/entity"
	"github.com/radhian/billing-reconciliation/infra/db/model"
	"github.com/radhian/billing-reconciliation/infra/locker"
	"github.com/radhian/billing-reconciliation/infra/store"
)

var fixedNow = time.Date(2024, 2, 1, 9, 0, 0, 0, time.UTC)

type mockTokenProvider struct {
	mock.Mock
}

func (m *mockTokenProvider) Refresh(ctx context.Context, key string) (string, error) {
	args := m.Called(ctx, key)
	return args.String(0), args.Error(1)
}

// fakeReportClient serves canned CSV payloads by account scope.
type fakeReportClient struct {
	mu       sync.Mutex
	payloads map[int64]string
	err      error
	calls    []fakeReportCall
}

type fakeReportCall struct {
	token      string
	scope      consts.CountryConfig
	start, end time.Time
}

func (f *fakeReportClient) FetchReport(_ context.Context, token string, scope consts.CountryConfig, start, end time.Time) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls = append(f.calls, fakeReportCall{token: token, scope: scope, start: start, end: end})
	if f.err != nil {
		return "", f.err
	}
	return f.payloads[scope.AccountID], nil
}

// fakeDao keeps step logs in memory.
type fakeDao struct {
	mu     sync.Mutex
	logs   []model.PipelineStepLog
	sapIDs map[string][]int64
}

func (d *fakeDao) CreatePipelineStepLog(payload *model.PipelineStepLog) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	payload.ID = int64(len(d.logs) + 1)
	d.logs = append(d.logs, *payload)
	return nil
}

func (d *fakeDao) GetPipelineStepLogsSince(createTime int64) ([]model.PipelineStepLog, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	var out []model.PipelineStepLog
	for _, l := range d.logs {
		if l.CreateTime >= createTime {
			out = append(out, l)
		}
	}
	return out, nil
}

func (d *fakeDao) GetLatestPipelineStepLog(step string, status int) (model.PipelineStepLog, bool, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	for i := len(d.logs) - 1; i >= 0; i-- {
		if d.logs[i].Step == step && d.logs[i].Status == status {
			return d.logs[i], true, nil
		}
	}
	return model.PipelineStepLog{}, false, nil
}

func (d *fakeDao) GetSapIDsByCreationCondition(condition string) ([]int64, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.sapIDs[condition], nil
}

func (d *fakeDao) steps() []string {
	d.mu.Lock()
	defer d.mu.Unlock()
	out := make([]string, 0, len(d.logs))
	for _, l := range d.logs {
		out = append(out, fmt.Sprintf("%s:%d", l.Step, l.Status))
	}
	return out
}

type fakeBlob struct {
	mu      sync.Mutex
	objects map[string][]byte
	err     error
}

func (b *fakeBlob) Upload(_ context.Context, name string, data []byte, _ string) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.err != nil {
		return b.err
	}
	if b.objects == nil {
		b.objects = make(map[string][]byte)
	}
	b.objects[name] = append([]byte(nil), data...)
	return nil
}

func (b *fakeBlob) Download(_ context.Context, name string) ([]byte, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	data, ok := b.objects[name]
	if !ok {
		return nil, os.ErrNotExist
	}
	return data, nil
}

type testEnv struct {
	usecase BillingUsecase
	store   store.ReportStore
	dir     string
	tokens  *mockTokenProvider
	reports *fakeReportClient
	dao     *fakeDao
	blob    *fakeBlob
	locker  *locker.MemoryLocker
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()
	dir := t.TempDir()
	st, err := store.NewFileStore(dir)
	require.NoError(t, err)

	env := &testEnv{
		store:   st,
		dir:     dir,
		tokens:  &mockTokenProvider{},
		reports: &fakeReportClient{payloads: map[int64]string{}},
		dao:     &fakeDao{sapIDs: map[string][]int64{}},
		blob:    &fakeBlob{},
		locker:  locker.New(),
	}
	env.usecase = NewBillingUsecase(Dependencies{
		Store:    st,
		Locker:   env.locker,
		Tokens:   env.tokens,
		Reports:  env.reports,
		Blob:     env.blob,
		Dao:      env.dao,
		LockWait: 200 * time.Millisecond,
		Now:      func() time.Time { return fixedNow },
	})
	return env
}

// seed stores report and metadata as if a fetch had run.
func (e *testEnv) seed(t *testing.T, report entity.BillingReport) {
	t.Helper()
	ctx := context.Background()
	require.NoError(t, e.store.SaveSnapshot(ctx, report))
	require.NoError(t, e.store.SaveMetadata(ctx, entity.WorkflowMetadata{Country: "BE", StartDate: "2024-01-01", EndDate: "2024-01-31"}))
}

func (e *testEnv) snapshotBytes(t *testing.T) []byte {
	t.Helper()
	data, err := os.ReadFile(filepath.Join(e.dir, consts.SnapshotFileName))
	require.NoError(t, err)
	return data
}

func (e *testEnv) load(t *testing.T) entity.BillingReport {
	t.Helper()
	report, err := e.store.LoadSnapshot(context.Background())
	require.NoError(t, err)
	return report
}

func record(account string, sapID int64, seller, customer string) entity.BillingRecord {
	id := sapID
	return entity.BillingRecord{
		AccountID:    account,
		SapID:        &id,
		ResellerName: "Reseller",
		Materials:    "Amazon EC2",
		EndCustomer:  consts.UnknownEndCustomer,
		SellerCost:   decimal.RequireFromString(seller),
		CustomerCost: decimal.RequireFromString(customer),
		Country:      "BE",
	}
}

func csvUpload(lines ...string) *strings.Reader {
	return strings.NewReader(strings.Join(lines, "\n") + "\n")
}

func assertCost(t *testing.T, want string, got decimal.Decimal) {
	t.Helper()
	assert.Truef(t, decimal.RequireFromString(want).Equal(got), "want cost %s, got %s", want, got.String())
}
