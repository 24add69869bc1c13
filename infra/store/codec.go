package store

import (
	"encoding/csv"
	"fmt"
	"io"
	"strconv"

	"github.com/radhian/billing-reconciliation/consts"
	"github.com/radhian/billing-reconciliation/entity"
	"github.com/radhian/billing-reconciliation/utils"
)

// EncodeSnapshot writes the report with the canonical snapshot header.
func EncodeSnapshot(w io.Writer, report entity.BillingReport) error {
	writer := csv.NewWriter(w)
	if err := writer.Write(consts.SnapshotHeader); err != nil {
		return err
	}
	for _, rec := range report {
		sapID := ""
		if rec.SapID != nil {
			sapID = strconv.FormatInt(*rec.SapID, 10)
		}
		row := []string{
			rec.AccountID,
			sapID,
			rec.ResellerName,
			rec.Materials,
			rec.EndCustomer,
			utils.FormatCost(rec.SellerCost),
			utils.FormatCost(rec.CustomerCost),
			rec.Country,
			utils.Deref(rec.PO),
			utils.Deref(rec.POCondition),
			rec.CreationCondition,
		}
		if err := writer.Write(row); err != nil {
			return err
		}
	}
	writer.Flush()
	return writer.Error()
}

// DecodeSnapshot re-parses a persisted snapshot, enforcing the typing rules of
// account_id (12-digit string) and sap_id (nullable integer) on every read.
func DecodeSnapshot(r io.Reader) (entity.BillingReport, error) {
	reader := csv.NewReader(r)
	records, err := reader.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("failed to read snapshot: %w", err)
	}
	if len(records) == 0 {
		return nil, fmt.Errorf("snapshot is empty")
	}
	if !equalHeader(records[0], consts.SnapshotHeader) {
		return nil, fmt.Errorf("snapshot header mismatch: %q", records[0])
	}

	report := make(entity.BillingReport, 0, len(records)-1)
	for i, record := range records[1:] {
		line := i + 2
		accountID, ok := utils.NormalizeAccountID(record[0])
		if !ok {
			return nil, fmt.Errorf("snapshot line %d: invalid account_id %q", line, record[0])
		}

		var sapID *int64
		if record[1] != "" {
			id, ok := utils.ParseSapID(record[1])
			if !ok {
				return nil, fmt.Errorf("snapshot line %d: invalid sap_id %q", line, record[1])
			}
			sapID = &id
		}

		sellerCost, err := utils.ParseAmount(record[5])
		if err != nil {
			return nil, fmt.Errorf("snapshot line %d: invalid seller_cost: %w", line, err)
		}
		customerCost, err := utils.ParseAmount(record[6])
		if err != nil {
			return nil, fmt.Errorf("snapshot line %d: invalid customer_cost: %w", line, err)
		}

		report = append(report, entity.BillingRecord{
			AccountID:         accountID,
			SapID:             sapID,
			ResellerName:      record[2],
			Materials:         record[3],
			EndCustomer:       record[4],
			SellerCost:        sellerCost,
			CustomerCost:      customerCost,
			Country:           record[7],
			PO:                utils.StringPtr(record[8]),
			POCondition:       utils.StringPtr(record[9]),
			CreationCondition: record[10],
		})
	}
	return report, nil
}

// EncodeFinal writes the ERP-ready report.
func EncodeFinal(w io.Writer, records []entity.FinalRecord) error {
	writer := csv.NewWriter(w)
	if err := writer.Write(consts.FinalHeader); err != nil {
		return err
	}
	for _, rec := range records {
		row := []string{
			strconv.FormatInt(rec.SapID, 10),
			rec.CreationCondition,
			rec.EndCustomer,
			rec.PO,
			rec.POCondition,
			rec.MaterialID,
			rec.BillingPeriod,
			rec.Usage,
			utils.FormatCost(rec.SellerCost),
			utils.FormatCost(rec.CustomerCost),
			utils.FormatCost(rec.Margin),
			rec.MaterialNotCreated,
			rec.SalesOrderNumber,
			rec.BillingBlock,
			rec.Country,
		}
		if err := writer.Write(row); err != nil {
			return err
		}
	}
	writer.Flush()
	return writer.Error()
}

func equalHeader(got, want []string) bool {
	if len(got) != len(want) {
		return false
	}
	for i := range got {
		if got[i] != want[i] {
			return false
		}
	}
	return true
}
