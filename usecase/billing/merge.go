package billing

import (
	"fmt"
	"sort"

	"github.com/labstack/gommon/log"

	"github.com/radhian/billing-reconciliation/consts"
	"github.com/radhian/billing-reconciliation/entity"
	"github.com/radhian/billing-reconciliation/utils"
)

var (
	countryColumns = []string{
		consts.CountryColAccount,
		consts.CountryColReseller,
		consts.CountryColProduct,
		consts.CountryColSellerCost,
		consts.CountryColCustomerCost,
	}
	regionColumns = []string{
		consts.RegionColAccount,
		consts.RegionColSapID,
		consts.RegionColEndCustomer,
	}
)

type regionEntry struct {
	sapID       string
	endCustomer string
}

type mergeStats struct {
	SentinelSapIDs    int
	UnmatchedRows     int
	DroppedRegionRows int
}

// mergeExtracts joins the country extract with the region extract on the
// normalized account number and shapes the result into the working report.
func mergeExtracts(countryRaw, regionRaw entity.RawExtract, country string) (entity.BillingReport, mergeStats, error) {
	var stats mergeStats

	countryRaw = normalizeCurrencyColumns(countryRaw)
	countryIdx, err := requireColumns("country extract", countryRaw, countryColumns)
	if err != nil {
		return nil, stats, err
	}
	regionIdx, err := requireColumns("region extract", regionRaw, regionColumns)
	if err != nil {
		return nil, stats, err
	}

	regionByAccount, dropped, err := indexRegion(regionRaw, regionIdx)
	if err != nil {
		return nil, stats, err
	}
	stats.DroppedRegionRows = dropped

	report := make(entity.BillingReport, 0, len(countryRaw.Rows))
	var badAccounts, problems []string
	for i, row := range countryRaw.Rows {
		line := i + 2
		account, ok := utils.NormalizeAccountID(cell(row, countryIdx[consts.CountryColAccount]))
		if !ok {
			badAccounts = append(badAccounts, fmt.Sprintf("row %d (%q)", line, cell(row, countryIdx[consts.CountryColAccount])))
			continue
		}
		seller, err := utils.ParseAmount(cell(row, countryIdx[consts.CountryColSellerCost]))
		if err != nil {
			problems = append(problems, fmt.Sprintf("row %d: invalid seller cost %q", line, cell(row, countryIdx[consts.CountryColSellerCost])))
			continue
		}
		customer, err := utils.ParseAmount(cell(row, countryIdx[consts.CountryColCustomerCost]))
		if err != nil {
			problems = append(problems, fmt.Sprintf("row %d: invalid customer cost %q", line, cell(row, countryIdx[consts.CountryColCustomerCost])))
			continue
		}

		rec := entity.BillingRecord{
			AccountID:    account,
			ResellerName: cell(row, countryIdx[consts.CountryColReseller]),
			Materials:    cell(row, countryIdx[consts.CountryColProduct]),
			EndCustomer:  consts.UnknownEndCustomer,
			SellerCost:   utils.RoundCost(seller),
			CustomerCost: utils.RoundCost(customer),
			Country:      country,
		}

		sapID := int64(consts.SentinelSapID)
		entry, matched := regionByAccount[account]
		if matched {
			if parsed, ok := utils.ParseSapID(entry.sapID); ok {
				sapID = parsed
			} else {
				stats.SentinelSapIDs++
				log.Warnf("[Merge] Account %s has non-numeric SAP ID %q, using %d", account, entry.sapID, consts.SentinelSapID)
			}
			if entry.endCustomer != "" {
				rec.EndCustomer = entry.endCustomer
			}
		} else {
			stats.UnmatchedRows++
			stats.SentinelSapIDs++
		}
		rec.SapID = utils.Int64Ptr(sapID)
		report = append(report, rec)
	}

	if len(badAccounts) > 0 {
		return nil, stats, &entity.MergeError{Source: "country extract account numbers", Keys: badAccounts}
	}
	if len(problems) > 0 {
		return nil, stats, &entity.ValidationError{Expected: countryColumns, Actual: countryRaw.Header, Problems: problems}
	}
	if stats.UnmatchedRows > 0 {
		log.Warnf("[Merge] %d country rows have no region match, using SAP ID %d", stats.UnmatchedRows, consts.SentinelSapID)
	}
	return report, stats, nil
}

// indexRegion keys the region extract by normalized account. Exact duplicates
// collapse; an account mapped to differing values is an error.
func indexRegion(raw entity.RawExtract, idx map[string]int) (map[string]regionEntry, int, error) {
	byAccount := make(map[string]regionEntry, len(raw.Rows))
	conflicts := make(map[string]struct{})
	dropped := 0

	for _, row := range raw.Rows {
		account, ok := utils.NormalizeAccountID(cell(row, idx[consts.RegionColAccount]))
		if !ok {
			dropped++
			continue
		}
		entry := regionEntry{
			sapID:       cell(row, idx[consts.RegionColSapID]),
			endCustomer: cell(row, idx[consts.RegionColEndCustomer]),
		}
		if prev, exists := byAccount[account]; exists {
			if prev != entry {
				conflicts[account] = struct{}{}
			}
			continue
		}
		byAccount[account] = entry
	}

	if len(conflicts) > 0 {
		keys := make([]string, 0, len(conflicts))
		for k := range conflicts {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		return nil, dropped, &entity.MergeError{Source: "region extract", Keys: keys}
	}
	if dropped > 0 {
		log.Infof("[Merge] Dropped %d region rows without a usable account number", dropped)
	}
	return byAccount, dropped, nil
}
