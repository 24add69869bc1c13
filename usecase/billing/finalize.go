package billing

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/labstack/gommon/log"
	"github.com/qmuntal/stateless"
	"github.com/shopspring/decimal"

	"github.com/radhian/billing-reconciliation/consts"
	"github.com/radhian/billing-reconciliation/entity"
	"github.com/radhian/billing-reconciliation/utils"
)

const (
	stateRaw       = "Raw"
	stateShaped    = "Shaped"
	stateSplit     = "Split"
	stateGrouped   = "Grouped"
	stateFinalized = "Finalized"

	triggerShape    = "shape"
	triggerSplit    = "split"
	triggerGroup    = "group"
	triggerFinalize = "finalize"
)

var finalizeTriggers = []string{triggerShape, triggerSplit, triggerGroup, triggerFinalize}

// Finalize collapses the snapshot into ERP lines and stores them as the final report.
func (u *billingUsecase) Finalize(ctx context.Context, operator string) (summary entity.FinalizeSummary, err error) {
	runID := uuid.NewString()
	summary.RunID = runID

	defer func() {
		if r := recover(); r != nil {
			log.Errorf("[Finalize] Panic recovered for run %s: %v", runID, r)
			err = fmt.Errorf("finalize step aborted: %v", r)
		}
		u.recordStep(runID, consts.StepFinalize, operator, summary.StepSummary, err)
	}()

	lock, err := u.obtainSnapshotLock(ctx, runID)
	if err != nil {
		return summary, err
	}
	defer u.releaseSnapshotLock(lock, runID)

	report, err := u.store.LoadSnapshot(ctx)
	if err != nil {
		return summary, err
	}
	meta, err := u.store.LoadMetadata(ctx)
	if err != nil {
		return summary, err
	}

	records, err := finalizeReport(ctx, report, meta)
	if err != nil {
		return summary, err
	}
	if err := u.store.SaveFinal(ctx, records); err != nil {
		return summary, fmt.Errorf("failed to save final report: %w", err)
	}

	seller, customer := decimal.Zero, decimal.Zero
	for _, rec := range records {
		seller = seller.Add(rec.SellerCost)
		customer = customer.Add(rec.CustomerCost)
	}
	message := fmt.Sprintf("Finalized %d billing rows into %d ERP lines", len(report), len(records))
	summary = entity.FinalizeSummary{
		StepSummary: entity.StepSummary{
			RunID:       runID,
			Message:     message,
			Country:     meta.Country,
			SellerSum:   utils.RoundCost(seller),
			CustomerSum: utils.RoundCost(customer),
		},
		Rows: len(records),
	}
	log.Infof("[Finalize] Run %s done: %s", runID, message)
	return summary, nil
}

type shapedRow struct {
	key          groupKey
	sellerCost   decimal.Decimal
	customerCost decimal.Decimal
}

// groupKey holds every grouping column. endCustomer stays empty for reseller rows.
type groupKey struct {
	sapID             int64
	creationCondition string
	po                string
	materialID        string
	billingPeriod     string
	endCustomer       string
}

type groupedRow struct {
	key          groupKey
	sellerCost   decimal.Decimal
	customerCost decimal.Decimal
}

// finalizeRun carries the working data between finalizer states.
type finalizeRun struct {
	input  entity.BillingReport
	meta   entity.WorkflowMetadata
	shaped []shapedRow

	resellers    []shapedRow
	endCustomers []shapedRow

	resellerGroups    []groupedRow
	endCustomerGroups []groupedRow

	output []entity.FinalRecord
}

// finalizeReport drives Raw -> Shaped -> Split -> Grouped -> Finalized in one call.
func finalizeReport(ctx context.Context, report entity.BillingReport, meta entity.WorkflowMetadata) ([]entity.FinalRecord, error) {
	run := &finalizeRun{input: report, meta: meta}

	machine := stateless.NewStateMachine(stateRaw)

	machine.Configure(stateRaw).
		Permit(triggerShape, stateShaped)

	machine.Configure(stateShaped).
		OnEntryFrom(triggerShape, run.shape).
		Permit(triggerSplit, stateSplit)

	machine.Configure(stateSplit).
		OnEntryFrom(triggerSplit, run.split).
		Permit(triggerGroup, stateGrouped)

	machine.Configure(stateGrouped).
		OnEntryFrom(triggerGroup, run.group).
		Permit(triggerFinalize, stateFinalized)

	machine.Configure(stateFinalized).
		OnEntryFrom(triggerFinalize, run.finalize)

	for _, trigger := range finalizeTriggers {
		if err := machine.FireCtx(ctx, trigger); err != nil {
			return nil, fmt.Errorf("finalize %s: %w", trigger, err)
		}
	}
	return run.output, nil
}

func (f *finalizeRun) shape(_ context.Context, _ ...any) error {
	period, err := billingPeriod(f.meta)
	if err != nil {
		return err
	}

	f.shaped = make([]shapedRow, 0, len(f.input))
	dropped := 0
	for _, rec := range f.input {
		if rec.SapID == nil {
			dropped++
			continue
		}
		condition := strings.ToLower(strings.TrimSpace(rec.CreationCondition))
		if condition == "" {
			condition = consts.CreationByReseller
		}
		f.shaped = append(f.shaped, shapedRow{
			key: groupKey{
				sapID:             *rec.SapID,
				creationCondition: condition,
				po:                normalizePO(utils.Deref(rec.PO)),
				materialID:        materialID(rec.Materials),
				billingPeriod:     period,
				endCustomer:       rec.EndCustomer,
			},
			sellerCost:   rec.SellerCost,
			customerCost: rec.CustomerCost,
		})
	}
	if dropped > 0 {
		log.Infof("[Finalize] Dropped %d rows without a SAP ID", dropped)
	}
	return nil
}

func (f *finalizeRun) split(_ context.Context, _ ...any) error {
	other := 0
	for _, row := range f.shaped {
		switch row.key.creationCondition {
		case consts.CreationByReseller:
			row.key.endCustomer = ""
			f.resellers = append(f.resellers, row)
		case consts.CreationByEndCustomer:
			f.endCustomers = append(f.endCustomers, row)
		default:
			other++
		}
	}
	if other > 0 {
		log.Warnf("[Finalize] Skipped %d rows with an unknown creation condition", other)
	}
	return nil
}

func (f *finalizeRun) group(_ context.Context, _ ...any) error {
	f.resellerGroups = sumByKey(f.resellers)
	sort.SliceStable(f.resellerGroups, func(i, j int) bool {
		return lessReseller(f.resellerGroups[i].key, f.resellerGroups[j].key)
	})

	f.endCustomerGroups = sumByKey(f.endCustomers)
	sort.SliceStable(f.endCustomerGroups, func(i, j int) bool {
		return lessEndCustomer(f.endCustomerGroups[i].key, f.endCustomerGroups[j].key)
	})
	return nil
}

func (f *finalizeRun) finalize(_ context.Context, _ ...any) error {
	groups := append(append([]groupedRow{}, f.resellerGroups...), f.endCustomerGroups...)
	f.output = make([]entity.FinalRecord, 0, len(groups))
	for _, g := range groups {
		seller := utils.RoundCost(g.sellerCost)
		customer := utils.RoundCost(g.customerCost)
		poCondition := ""
		if g.key.po != "" {
			poCondition = consts.POHeaderCondition
		}
		f.output = append(f.output, entity.FinalRecord{
			SapID:             g.key.sapID,
			CreationCondition: g.key.creationCondition,
			EndCustomer:       g.key.endCustomer,
			PO:                g.key.po,
			POCondition:       poCondition,
			MaterialID:        g.key.materialID,
			BillingPeriod:     g.key.billingPeriod,
			SellerCost:        seller,
			CustomerCost:      customer,
			Margin:            customer.Sub(seller),
			Country:           f.meta.Country,
		})
	}
	return nil
}

func sumByKey(rows []shapedRow) []groupedRow {
	index := make(map[groupKey]int, len(rows))
	groups := make([]groupedRow, 0, len(rows))
	for _, row := range rows {
		i, ok := index[row.key]
		if !ok {
			index[row.key] = len(groups)
			groups = append(groups, groupedRow{key: row.key, sellerCost: row.sellerCost, customerCost: row.customerCost})
			continue
		}
		groups[i].sellerCost = groups[i].sellerCost.Add(row.sellerCost)
		groups[i].customerCost = groups[i].customerCost.Add(row.customerCost)
	}
	return groups
}

// lessReseller orders by (sap_id, billing_period, material_id, po, creation_condition).
func lessReseller(a, b groupKey) bool {
	if a.sapID != b.sapID {
		return a.sapID < b.sapID
	}
	if a.billingPeriod != b.billingPeriod {
		return a.billingPeriod < b.billingPeriod
	}
	if a.materialID != b.materialID {
		return a.materialID < b.materialID
	}
	if a.po != b.po {
		return a.po < b.po
	}
	return a.creationCondition < b.creationCondition
}

// lessEndCustomer orders by (sap_id, creation_condition, po, material_id, billing_period, end_customer).
func lessEndCustomer(a, b groupKey) bool {
	if a.sapID != b.sapID {
		return a.sapID < b.sapID
	}
	if a.creationCondition != b.creationCondition {
		return a.creationCondition < b.creationCondition
	}
	if a.po != b.po {
		return a.po < b.po
	}
	if a.materialID != b.materialID {
		return a.materialID < b.materialID
	}
	if a.billingPeriod != b.billingPeriod {
		return a.billingPeriod < b.billingPeriod
	}
	return a.endCustomer < b.endCustomer
}

func materialID(materials string) string {
	if strings.Contains(strings.ToLower(materials), consts.TechCareMarker) {
		return consts.MaterialIDTechCare
	}
	return consts.MaterialIDUsage
}

func normalizePO(po string) string {
	po = strings.TrimSpace(po)
	if strings.EqualFold(po, "nan") {
		return ""
	}
	return po
}

// billingPeriod renders "MM/DD/YY to MM/DD/YY" from the fetch dates.
func billingPeriod(meta entity.WorkflowMetadata) (string, error) {
	start, err := time.Parse(consts.RequestDateLayout, meta.StartDate)
	if err != nil {
		return "", fmt.Errorf("invalid start date in metadata %q: %w", meta.StartDate, err)
	}
	end, err := time.Parse(consts.RequestDateLayout, meta.EndDate)
	if err != nil {
		return "", fmt.Errorf("invalid end date in metadata %q: %w", meta.EndDate, err)
	}
	return fmt.Sprintf("%s to %s", start.Format(consts.BillingPeriodLayout), end.Format(consts.BillingPeriodLayout)), nil
}
