package billing

import (
	"context"
	"io"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/radhian/billing-reconciliation/consts"
	"github.com/radhian/billing-reconciliation/entity"
	"github.com/radhian/billing-reconciliation/utils"
)

func TestApplyCredits_BoundedDeductionInRowOrder(t *testing.T) {
	report := entity.BillingReport{
		record("000000000301", 1, "100", "120"),
		record("000000000999", 2, "50", "50"),
		record("000000000301", 1, "80", "90"),
	}
	table := entity.CreditTable{Rows: []entity.CreditRow{
		{Account: "000000000301", Credit: decimal.NewFromInt(150)},
	}}

	got, seller, customer := applyCredits(report, table)

	assertCost(t, "0", got[0].SellerCost)
	assertCost(t, "30", got[2].SellerCost)
	assertCost(t, "0", got[0].CustomerCost)
	assertCost(t, "60", got[2].CustomerCost)
	assertCost(t, "50", got[1].SellerCost)
	assertCost(t, "150", seller)
	assertCost(t, "150", customer)
}

func TestApplyCredits_NeverNegative(t *testing.T) {
	tests := []struct {
		name    string
		costs   [][2]string
		credits []string
	}{
		{"credit larger than all rows", [][2]string{{"10", "12"}, {"5", "6"}}, []string{"1000"}},
		{"several credits for one account", [][2]string{{"10", "12"}}, []string{"4", "4", "4"}},
		{"zero and negative rows are skipped", [][2]string{{"0", "-3"}, {"7.5", "7.5"}}, []string{"7.55"}},
		{"fractional", [][2]string{{"0.10", "0.20"}}, []string{"0.15"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var report entity.BillingReport
			for _, c := range tt.costs {
				report = append(report, record("000000000301", 1, c[0], c[1]))
			}
			var table entity.CreditTable
			for _, c := range tt.credits {
				table.Rows = append(table.Rows, entity.CreditRow{Account: "000000000301", Credit: decimal.RequireFromString(c)})
			}

			got, _, _ := applyCredits(report, table)
			for i, rec := range got {
				// rows that start negative are left alone, not clamped
				if !decimal.RequireFromString(tt.costs[i][0]).IsNegative() {
					assert.False(t, rec.SellerCost.IsNegative(), "seller cost of row %d", i)
				}
				if !decimal.RequireFromString(tt.costs[i][1]).IsNegative() {
					assert.False(t, rec.CustomerCost.IsNegative(), "customer cost of row %d", i)
				}
			}
		})
	}
}

func TestApplyExceptions_LastWriteWins(t *testing.T) {
	report := entity.BillingReport{
		record("000000000301", 1, "1", "1"),
		record("000000000302", 2, "1", "1"),
	}
	table := entity.ExceptionTable{Rows: []entity.ExceptionRow{
		{SapID: 10, Account: "000000000301"},
		{SapID: 11, Account: "000000000301"},
	}}

	got, changed := applyExceptions(report, table)
	assert.Equal(t, 1, changed)
	assert.Equal(t, int64(11), *got[0].SapID)
	assert.Equal(t, int64(2), *got[1].SapID)
}

func TestApplyPOs_MatchesOnSapAndAccount(t *testing.T) {
	stale := "OLD"
	report := entity.BillingReport{
		record("000000000301", 111, "1", "1"),
		record("000000000301", 222, "1", "1"),
	}
	report[1].PO = &stale

	sap := int64(111)
	account := "000000000301"
	table := entity.POTable{Rows: []entity.PORow{
		{ResellerSapID: &sap, EndCustomer: &account, PO: utils.StringPtr("PO-1"), POCondition: utils.StringPtr("Header")},
	}}

	got, tagged := applyPOs(report, table)
	assert.Equal(t, 1, tagged)
	assert.Equal(t, "PO-1", utils.Deref(got[0].PO))
	assert.Equal(t, "Header", utils.Deref(got[0].POCondition))
	assert.Nil(t, got[1].PO)
	assert.Nil(t, got[1].POCondition)
}

func TestApplyConsolidation_DefaultsToReseller(t *testing.T) {
	report := entity.BillingReport{
		record("000000000301", 111, "1", "1"),
		record("000000000302", 222, "1", "1"),
	}
	report[1].CreationCondition = consts.CreationByEndCustomer

	table := entity.ConsolidationTable{Rows: []entity.ConsolidationRow{
		{SapID: 111, CreationCondition: consts.CreationByEndCustomer},
	}}

	got, endCustomer := applyConsolidation(report, table)
	assert.Equal(t, 1, endCustomer)
	assert.Equal(t, consts.CreationByEndCustomer, got[0].CreationCondition)
	assert.Equal(t, consts.CreationByReseller, got[1].CreationCondition)
}

func TestAdjustmentSteps_Idempotence(t *testing.T) {
	type step func(env *testEnv, upload io.Reader) (entity.StepSummary, error)

	tests := []struct {
		name       string
		lines      []string
		run        step
		idempotent bool
	}{
		{
			name:  "exception",
			lines: []string{"SAP ID,Account", "555,301"},
			run: func(env *testEnv, upload io.Reader) (entity.StepSummary, error) {
				return env.usecase.ApplyException(context.Background(), "ops", "exceptions.csv", upload)
			},
			idempotent: true,
		},
		{
			name:  "credit",
			lines: []string{"Account,Credit", "301,25"},
			run: func(env *testEnv, upload io.Reader) (entity.StepSummary, error) {
				return env.usecase.ApplyCredit(context.Background(), "ops", "credits.csv", upload)
			},
			idempotent: false,
		},
		{
			name:  "po",
			lines: []string{"Reseller SAP ID,End Customer,PO,PO Condition", "111,301,PO-9,Header"},
			run: func(env *testEnv, upload io.Reader) (entity.StepSummary, error) {
				return env.usecase.ApplyPO(context.Background(), "ops", "po.csv", upload)
			},
			idempotent: true,
		},
		{
			name:  "consolidation",
			lines: []string{"SAP ID,Condition Creation/ Country", "111,creation by end customer"},
			run: func(env *testEnv, upload io.Reader) (entity.StepSummary, error) {
				return env.usecase.ApplyConsolidation(context.Background(), "ops", "consolidation.csv", upload)
			},
			idempotent: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			env := newTestEnv(t)
			env.seed(t, entity.BillingReport{
				record("000000000301", 111, "100", "120"),
				record("000000000302", 222, "40", "50"),
			})

			first, err := tt.run(env, csvUpload(tt.lines...))
			require.NoError(t, err)
			afterFirst := env.snapshotBytes(t)

			second, err := tt.run(env, csvUpload(tt.lines...))
			require.NoError(t, err)
			afterSecond := env.snapshotBytes(t)

			if tt.idempotent {
				assert.Equal(t, string(afterFirst), string(afterSecond))
				assert.True(t, first.SellerSum.Equal(second.SellerSum))
				return
			}
			assert.NotEqual(t, string(afterFirst), string(afterSecond))
			assertCost(t, "115", first.SellerSum)
			assertCost(t, "90", second.SellerSum)
		})
	}
}

func TestAdjustmentSteps_HeaderMismatchLeavesSnapshotUntouched(t *testing.T) {
	env := newTestEnv(t)
	env.seed(t, entity.BillingReport{record("000000000301", 111, "100", "120")})
	before := env.snapshotBytes(t)

	_, err := env.usecase.ApplyCredit(context.Background(), "ops", "credits.csv",
		csvUpload("Account,Credit,extra", "301,10,x"))

	var validationErr *entity.ValidationError
	require.ErrorAs(t, err, &validationErr)
	assert.Equal(t, []string{"Account", "Credit"}, validationErr.Expected)
	assert.Equal(t, []string{"Account", "Credit", "extra"}, validationErr.Actual)
	assert.Equal(t, before, env.snapshotBytes(t))
	assert.Equal(t, []string{"credit:2"}, env.dao.steps())
}

func TestAdjustmentSteps_RequireSnapshot(t *testing.T) {
	env := newTestEnv(t)

	_, err := env.usecase.ApplyException(context.Background(), "ops", "exceptions.csv",
		csvUpload("SAP ID,Account", "1,301"))
	assert.ErrorIs(t, err, entity.ErrNoSnapshot)
}

func TestAdjustmentSteps_ReturnsPostAdjustmentTotals(t *testing.T) {
	env := newTestEnv(t)
	env.seed(t, entity.BillingReport{
		record("000000000301", 111, "100", "120"),
		record("000000000301", 111, "80", "90"),
	})

	summary, err := env.usecase.ApplyCredit(context.Background(), "ops", "credits.csv",
		csvUpload("Account,Credit", "000000000301,150"))
	require.NoError(t, err)

	assert.Equal(t, "BE", summary.Country)
	assertCost(t, "30", summary.SellerSum)
	assertCost(t, "60", summary.CustomerSum)
	assert.NotEmpty(t, summary.RunID)

	report := env.load(t)
	assertCost(t, "0", report[0].SellerCost)
	assertCost(t, "30", report[1].SellerCost)
}

func TestApplyConsolidationLookup(t *testing.T) {
	env := newTestEnv(t)
	env.dao.sapIDs[consts.CreationByEndCustomer] = []int64{222, 222}
	env.seed(t, entity.BillingReport{
		record("000000000301", 111, "1", "1"),
		record("000000000302", 222, "1", "1"),
	})

	_, err := env.usecase.ApplyConsolidationLookup(context.Background(), "ops")
	require.NoError(t, err)

	report := env.load(t)
	assert.Equal(t, consts.CreationByReseller, report[0].CreationCondition)
	assert.Equal(t, consts.CreationByEndCustomer, report[1].CreationCondition)
}
