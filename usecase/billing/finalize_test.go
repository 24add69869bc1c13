package billing

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/radhian/billing-reconciliation/consts"
	"github.com/radhian/billing-reconciliation/entity"
	"github.com/radhian/billing-reconciliation/utils"
)

var januaryMeta = entity.WorkflowMetadata{Country: "BE", StartDate: "2024-01-01", EndDate: "2024-01-31"}

func TestFinalizeReport_GroupsResellerRows(t *testing.T) {
	a := record("000000000301", 111, "10", "12")
	b := record("000000000302", 111, "15", "18")
	b.EndCustomer = "Another end customer"
	a.CreationCondition = consts.CreationByReseller
	b.CreationCondition = consts.CreationByReseller

	out, err := finalizeReport(context.Background(), entity.BillingReport{a, b}, januaryMeta)
	require.NoError(t, err)
	require.Len(t, out, 1)

	assert.Equal(t, int64(111), out[0].SapID)
	assertCost(t, "25", out[0].SellerCost)
	assertCost(t, "30", out[0].CustomerCost)
	assertCost(t, "5", out[0].Margin)
	assert.Equal(t, "", out[0].EndCustomer)
	assert.Equal(t, "01/01/24 to 01/31/24", out[0].BillingPeriod)
	assert.Equal(t, consts.MaterialIDUsage, out[0].MaterialID)
	assert.Equal(t, "BE", out[0].Country)
}

func TestFinalizeReport_EndCustomerRowsKeepEndCustomer(t *testing.T) {
	a := record("000000000301", 222, "1", "2")
	a.EndCustomer = "Acme"
	a.CreationCondition = "Creation By End Customer"
	b := record("000000000302", 222, "3", "4")
	b.EndCustomer = "Globex"
	b.CreationCondition = consts.CreationByEndCustomer
	c := record("000000000303", 111, "5", "5")

	out, err := finalizeReport(context.Background(), entity.BillingReport{a, b, c}, januaryMeta)
	require.NoError(t, err)
	require.Len(t, out, 3)

	// reseller groups come first
	assert.Equal(t, int64(111), out[0].SapID)
	assert.Equal(t, consts.CreationByReseller, out[0].CreationCondition)
	assert.Equal(t, "Acme", out[1].EndCustomer)
	assert.Equal(t, "Globex", out[2].EndCustomer)
	assert.Equal(t, consts.CreationByEndCustomer, out[1].CreationCondition)
}

func TestFinalizeReport_DerivesMaterialAndPO(t *testing.T) {
	techcare := record("000000000301", 111, "1", "1")
	techcare.Materials = "AWS TechCARE Business"
	techcare.PO = utils.StringPtr("PO-7")
	usage := record("000000000301", 111, "2", "2")
	usage.PO = utils.StringPtr("NaN")

	out, err := finalizeReport(context.Background(), entity.BillingReport{techcare, usage}, januaryMeta)
	require.NoError(t, err)
	require.Len(t, out, 2)

	byMaterial := map[string]entity.FinalRecord{}
	for _, rec := range out {
		byMaterial[rec.MaterialID] = rec
	}
	assert.Equal(t, "PO-7", byMaterial[consts.MaterialIDTechCare].PO)
	assert.Equal(t, consts.POHeaderCondition, byMaterial[consts.MaterialIDTechCare].POCondition)
	assert.Equal(t, "", byMaterial[consts.MaterialIDUsage].PO)
	assert.Equal(t, "", byMaterial[consts.MaterialIDUsage].POCondition)
}

func TestFinalizeReport_DropsRowsWithoutSapID(t *testing.T) {
	rec := record("000000000301", 111, "1", "1")
	rec.SapID = nil

	out, err := finalizeReport(context.Background(), entity.BillingReport{rec}, januaryMeta)
	require.NoError(t, err)
	assert.Empty(t, out)
}

func TestFinalizeReport_RoundsHalfEven(t *testing.T) {
	a := record("000000000301", 111, "0.005", "0.015")

	out, err := finalizeReport(context.Background(), entity.BillingReport{a}, januaryMeta)
	require.NoError(t, err)
	require.Len(t, out, 1)
	assertCost(t, "0", out[0].SellerCost)
	assertCost(t, "0.02", out[0].CustomerCost)
	assertCost(t, "0.02", out[0].Margin)
}

func TestFinalizeReport_InvalidMetadata(t *testing.T) {
	_, err := finalizeReport(context.Background(), entity.BillingReport{record("000000000301", 1, "1", "1")},
		entity.WorkflowMetadata{Country: "BE", StartDate: "01/01/2024", EndDate: "2024-01-31"})
	assert.Error(t, err)
}

func TestFinalize_PersistsFinalReportSeparately(t *testing.T) {
	env := newTestEnv(t)
	env.seed(t, entity.BillingReport{
		record("000000000301", 111, "10", "12"),
		record("000000000302", 111, "15", "18"),
	})
	before := env.snapshotBytes(t)

	summary, err := env.usecase.Finalize(context.Background(), "ops")
	require.NoError(t, err)
	assert.Equal(t, 1, summary.Rows)
	assertCost(t, "25", summary.SellerSum)
	assertCost(t, "30", summary.CustomerSum)
	assert.Equal(t, before, env.snapshotBytes(t))

	final, err := env.store.LoadFinal(context.Background())
	require.NoError(t, err)
	assert.Contains(t, string(final), "111,creation by reseller,,,,AWS-USAGE,01/01/24 to 01/31/24,,25.00,30.00,5.00,,,,BE")
}
