package store

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/radhian/billing-reconciliation/consts"
	"github.com/radhian/billing-reconciliation/entity"
)

func sampleReport() entity.BillingReport {
	sap := int64(123456)
	po := "PO-7"
	return entity.BillingReport{
		{
			AccountID:         "000000000301",
			SapID:             &sap,
			ResellerName:      "Reseller A",
			Materials:         "AWS TechCARE Essential",
			EndCustomer:       "Acme, Inc.",
			SellerCost:        decimal.RequireFromString("100.1"),
			CustomerCost:      decimal.RequireFromString("120"),
			Country:           "BE",
			PO:                &po,
			CreationCondition: consts.CreationByReseller,
		},
		{
			AccountID:         "000000000302",
			ResellerName:      "Reseller B",
			Materials:         "EC2",
			EndCustomer:       consts.UnknownEndCustomer,
			SellerCost:        decimal.Zero,
			CustomerCost:      decimal.RequireFromString("0.5"),
			Country:           "BE",
			CreationCondition: consts.CreationByReseller,
		},
	}
}

func TestFileStore_SnapshotKeepsTyping(t *testing.T) {
	ctx := context.Background()
	s, err := NewFileStore(t.TempDir())
	require.NoError(t, err)

	require.NoError(t, s.SaveSnapshot(ctx, sampleReport()))

	got, err := s.LoadSnapshot(ctx)
	require.NoError(t, err)
	require.Len(t, got, 2)

	assert.Equal(t, "000000000301", got[0].AccountID)
	require.NotNil(t, got[0].SapID)
	assert.Equal(t, int64(123456), *got[0].SapID)
	assert.Equal(t, "Acme, Inc.", got[0].EndCustomer)
	assert.Equal(t, "100.10", got[0].SellerCost.StringFixed(2))
	require.NotNil(t, got[0].PO)
	assert.Equal(t, "PO-7", *got[0].PO)
	assert.Nil(t, got[0].POCondition)

	assert.Nil(t, got[1].SapID)
	assert.Nil(t, got[1].PO)
}

func TestFileStore_MissingArtifacts(t *testing.T) {
	ctx := context.Background()
	s, err := NewFileStore(t.TempDir())
	require.NoError(t, err)

	_, err = s.LoadSnapshot(ctx)
	assert.ErrorIs(t, err, entity.ErrNoSnapshot)

	_, err = s.LoadMetadata(ctx)
	assert.ErrorIs(t, err, entity.ErrNoMetadata)

	_, err = s.LoadFinal(ctx)
	assert.ErrorIs(t, err, entity.ErrNoFinalReport)

	assert.NoError(t, s.ClearFinal(ctx))
}

func TestFileStore_Metadata(t *testing.T) {
	ctx := context.Background()
	dir := t.TempDir()
	s, err := NewFileStore(dir)
	require.NoError(t, err)

	meta := entity.WorkflowMetadata{Country: "CH", StartDate: "2024-01-01", EndDate: "2024-01-31"}
	require.NoError(t, s.SaveMetadata(ctx, meta))

	got, err := s.LoadMetadata(ctx)
	require.NoError(t, err)
	assert.Equal(t, meta, got)

	raw, err := os.ReadFile(filepath.Join(dir, consts.MetadataFileName))
	require.NoError(t, err)
	assert.Contains(t, string(raw), `"start_date":"2024-01-01"`)
}

func TestFileStore_FinalReport(t *testing.T) {
	ctx := context.Background()
	s, err := NewFileStore(t.TempDir())
	require.NoError(t, err)

	require.NoError(t, s.SaveFinal(ctx, []entity.FinalRecord{{
		SapID:             10,
		CreationCondition: consts.CreationByReseller,
		MaterialID:        consts.MaterialIDUsage,
		BillingPeriod:     "01/01/24 to 01/31/24",
		SellerCost:        decimal.RequireFromString("25"),
		CustomerCost:      decimal.RequireFromString("30"),
		Margin:            decimal.RequireFromString("5"),
		Country:           "BE",
	}}))

	data, err := s.LoadFinal(ctx)
	require.NoError(t, err)
	lines := strings.Split(strings.TrimSpace(string(data)), "\n")
	require.Len(t, lines, 2)
	assert.Equal(t, strings.Join(consts.FinalHeader, ","), lines[0])
	assert.Equal(t, "10,creation by reseller,,,,AWS-USAGE,01/01/24 to 01/31/24,,25.00,30.00,5.00,,,,BE", lines[1])

	require.NoError(t, s.ClearFinal(ctx))
	_, err = s.LoadFinal(ctx)
	assert.ErrorIs(t, err, entity.ErrNoFinalReport)
}

func TestDecodeSnapshot_RejectsBadRows(t *testing.T) {
	header := strings.Join(consts.SnapshotHeader, ",")

	_, err := DecodeSnapshot(strings.NewReader(header + "\nABC,1,r,m,e,1,1,BE,,,creation by reseller\n"))
	assert.Error(t, err)

	_, err = DecodeSnapshot(strings.NewReader(header + "\n301,x,r,m,e,1,1,BE,,,creation by reseller\n"))
	assert.Error(t, err)

	_, err = DecodeSnapshot(strings.NewReader("a,b\n"))
	assert.Error(t, err)

	got, err := DecodeSnapshot(strings.NewReader(header + "\n301,7,r,m,e,1,2,BE,,,creation by reseller\n"))
	require.NoError(t, err)
	assert.Equal(t, "000000000301", got[0].AccountID)
}

func TestFileStore_ClearMetadata(t *testing.T) {
	ctx := context.Background()
	s, err := NewFileStore(t.TempDir())
	require.NoError(t, err)

	assert.NoError(t, s.ClearMetadata(ctx))
	require.NoError(t, s.SaveMetadata(ctx, entity.WorkflowMetadata{Country: "BE", StartDate: "2024-01-01", EndDate: "2024-01-31"}))
	require.NoError(t, s.ClearMetadata(ctx))

	_, err = s.LoadMetadata(ctx)
	assert.ErrorIs(t, err, entity.ErrNoMetadata)
}
