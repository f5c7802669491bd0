package consolidation

import (
	"bytes"
	"context"
	"encoding/csv"
	"testing"

	"github.com/sitecrew/timesheet-backend/internal/domain/consolidation"
	"github.com/sitecrew/timesheet-backend/internal/domain/timesheet"
	"github.com/sitecrew/timesheet-backend/internal/domain/worker"
	"github.com/sitecrew/timesheet-backend/internal/pkg/validator"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"
)

type serviceFixture struct {
	tx      *mockTransactor
	sheets  *mockTimesheetRepo
	workers *mockWorkerRepo
	service consolidation.ConsolidationService
}

func newServiceFixture(sheets ...timesheet.Timesheet) *serviceFixture {
	f := &serviceFixture{
		tx:     &mockTransactor{},
		sheets: newMockTimesheetRepo(sheets...),
		workers: &mockWorkerRepo{workers: map[string]worker.Worker{
			"w-lead": {ID: "w-lead", FullName: "Zed Lead", Category: worker.CategoryTeamLead, SystemRole: worker.SystemRoleTeamLead},
			"w-bob": {
				ID: "w-bob", FullName: "Bob Mason", Category: worker.CategoryMason, SystemRole: worker.SystemRoleWorker,
				Grade: ptr("N2P1"), ContractType: ptr("CDI"), Salary: ptr(dec("2150.00")),
			},
		}},
	}
	f.service = NewConsolidationService(
		f.tx,
		f.sheets,
		&mockEntryRepo{sheets: f.sheets},
		f.workers,
		&mockSiteRepo{sites: testSites},
		mockCrewRepo{},
		&mockAffectationRepo{},
		mockOwnershipRepo{},
		true,
	)
	return f
}

func marchSheets() []timesheet.Timesheet {
	monday := date(2025, 3, 3)
	bob := entries(monday, "9", "9", "9", "9", "9")
	bob[0].Meal = timesheet.MealRestaurant
	bob[1].TravelCode = ptr(timesheet.TravelZone4)
	return []timesheet.Timesheet{
		sheet("ts-lead", "w-lead", monday, ptr("site-x"), "w-lead", timesheet.StatusSentToHR, entries(monday, "8", "8")),
		sheet("ts-bob", "w-bob", monday, ptr("site-x"), "w-lead", timesheet.StatusAutoValidated, bob),
		sheet("ts-ghost", "w-ghost", monday, ptr("site-x"), "w-lead", timesheet.StatusSentToHR, entries(monday, "8")),
		sheet("ts-draft", "w-bob", date(2025, 3, 10), ptr("site-x"), "w-lead", timesheet.StatusDraft, entries(date(2025, 3, 10), "8")),
	}
}

func TestConsolidate_LoadsSnapshotOnce(t *testing.T) {
	f := newServiceFixture(marchSheets()...)

	res, err := f.service.Consolidate(context.Background(), "company-1", march)
	require.NoError(t, err)

	assert.Equal(t, 1, f.tx.snapshotCalls)
	assert.Equal(t, []string{"w-lead", "w-bob"}, rowIDs(res))
	require.Len(t, res.Anomalies, 1)
	assert.Equal(t, "w-ghost", res.Anomalies[0].WorkerID)

	bob := rowFor(t, res, "w-bob")
	assertHours(t, "35", bob.RegularHours)
	assertHours(t, "8", bob.Tier1Hours)
	assertHours(t, "2", bob.Tier2Hours)
}

func TestConsolidate_RejectsInvalidFilter(t *testing.T) {
	f := newServiceFixture()

	_, err := f.service.Consolidate(context.Background(), "company-1", consolidation.Filter{Year: 2025, Month: 13})
	var verrs validator.ValidationErrors
	require.ErrorAs(t, err, &verrs)
	assert.Equal(t, 0, f.tx.snapshotCalls)
}

func TestConsolidate_EmptyPeriod(t *testing.T) {
	f := newServiceFixture()

	res, err := f.service.Consolidate(context.Background(), "company-1", march)
	require.NoError(t, err)
	assert.Empty(t, res.Rows)
	assert.Empty(t, res.Anomalies)
}

func TestExport_MatchesConsolidateTotals(t *testing.T) {
	f := newServiceFixture(marchSheets()...)
	ctx := context.Background()

	screen, err := f.service.Consolidate(ctx, "company-1", march)
	require.NoError(t, err)
	rows, anomalies, err := f.service.Export(ctx, "company-1", march)
	require.NoError(t, err)

	require.Len(t, rows, len(screen.Rows))
	assert.Equal(t, screen.Anomalies, anomalies)
	for i := range rows {
		assert.Equal(t, screen.Rows[i], rows[i].EmployeeRow)
	}

	bob := rows[1]
	assert.Equal(t, "N2P1", *bob.Grade)
	assert.Equal(t, "CDI", *bob.ContractType)
	assert.True(t, dec("2150").Equal(*bob.Salary))
	assert.Nil(t, rows[0].Grade)
}

func TestRenderCSV(t *testing.T) {
	f := newServiceFixture(marchSheets()...)
	rows, _, err := f.service.Export(context.Background(), "company-1", march)
	require.NoError(t, err)

	out, err := RenderCSV(rows)
	require.NoError(t, err)

	records, err := csv.NewReader(bytes.NewReader(out)).ReadAll()
	require.NoError(t, err)
	require.Len(t, records, 3)
	assert.Equal(t, "worker_id", records[0][0])
	assert.Equal(t, "w-bob", records[2][0])
	assert.Contains(t, records[2], "45.00")
	assert.Contains(t, records[2], "2150.00")
}

func TestRenderXLSX(t *testing.T) {
	f := newServiceFixture(marchSheets()...)
	rows, _, err := f.service.Export(context.Background(), "company-1", march)
	require.NoError(t, err)

	buf, err := RenderXLSX(rows)
	require.NoError(t, err)

	book, err := excelize.OpenReader(buf)
	require.NoError(t, err)
	defer book.Close()

	assert.Equal(t, []string{exportSheet}, book.GetSheetList())
	name, err := book.GetCellValue(exportSheet, "B3")
	require.NoError(t, err)
	assert.Equal(t, "Bob Mason", name)
	total, err := book.GetCellValue(exportSheet, "M3")
	require.NoError(t, err)
	assert.Equal(t, "45.00", total)
}
