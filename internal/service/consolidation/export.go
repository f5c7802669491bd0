package consolidation

import (
	"bytes"
	"fmt"

	"github.com/gocarina/gocsv"
	"github.com/shopspring/decimal"
	"github.com/sitecrew/timesheet-backend/internal/domain/consolidation"
	"github.com/sitecrew/timesheet-backend/internal/domain/timesheet"
	"github.com/xuri/excelize/v2"
)

const exportSheet = "Payroll"

// exportRecord is the flat payroll line shared by the csv and xlsx renderers.
type exportRecord struct {
	WorkerID       string `csv:"worker_id"`
	FullName       string `csv:"full_name"`
	Category       string `csv:"category"`
	TempAgency     string `csv:"temp_agency"`
	Grade          string `csv:"grade"`
	PayScale       string `csv:"pay_scale"`
	ContractType   string `csv:"contract_type"`
	Schedule       string `csv:"schedule"`
	Salary         string `csv:"salary"`
	RegularHours   string `csv:"regular_hours"`
	Tier1Hours     string `csv:"tier1_hours"`
	Tier2Hours     string `csv:"tier2_hours"`
	TotalHours     string `csv:"total_hours"`
	DowntimeHours  string `csv:"downtime_hours"`
	Absences       int    `csv:"absences"`
	MealCount      int    `csv:"meal_count"`
	Zone1          int    `csv:"travel_zone_1"`
	Zone2          int    `csv:"travel_zone_2"`
	Zone3          int    `csv:"travel_zone_3"`
	Zone4          int    `csv:"travel_zone_4"`
	Zone5          int    `csv:"travel_zone_5"`
	PersonalTravel int    `csv:"travel_personal"`
	LongDistance   int    `csv:"travel_long_distance"`
	ToComplete     int    `csv:"travel_to_complete"`
	Status         string `csv:"status"`
}

var exportHeaders = []interface{}{
	"Worker ID", "Name", "Category", "Temp agency", "Grade", "Pay scale", "Contract", "Schedule", "Salary",
	"Regular hours", "Overtime 25%", "Overtime 50%", "Total hours", "Downtime hours", "Absences", "Meals",
	timesheet.TravelZone1.Label(), timesheet.TravelZone2.Label(), timesheet.TravelZone3.Label(),
	timesheet.TravelZone4.Label(), timesheet.TravelZone5.Label(), timesheet.TravelPersonal.Label(),
	timesheet.TravelLongDistance.Label(), timesheet.TravelToComplete.Label(), "Status",
}

func hours(d decimal.Decimal) string {
	return d.StringFixed(2)
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}

func toRecord(r consolidation.ExportRow) exportRecord {
	rec := exportRecord{
		WorkerID:       r.WorkerID,
		FullName:       r.FullName,
		Category:       string(r.Category),
		TempAgency:     deref(r.TempAgency),
		Grade:          deref(r.Grade),
		PayScale:       deref(r.PayScale),
		ContractType:   deref(r.ContractType),
		Schedule:       deref(r.Schedule),
		RegularHours:   hours(r.RegularHours),
		Tier1Hours:     hours(r.Tier1Hours),
		Tier2Hours:     hours(r.Tier2Hours),
		TotalHours:     hours(r.TotalHours()),
		DowntimeHours:  hours(r.DowntimeHours),
		Absences:       r.Absences,
		MealCount:      r.MealCount,
		Zone1:          r.TravelCounts[timesheet.TravelZone1],
		Zone2:          r.TravelCounts[timesheet.TravelZone2],
		Zone3:          r.TravelCounts[timesheet.TravelZone3],
		Zone4:          r.TravelCounts[timesheet.TravelZone4],
		Zone5:          r.TravelCounts[timesheet.TravelZone5],
		PersonalTravel: r.TravelCounts[timesheet.TravelPersonal],
		LongDistance:   r.TravelCounts[timesheet.TravelLongDistance],
		ToComplete:     r.TravelCounts[timesheet.TravelToComplete],
		Status:         string(r.Status),
	}
	if r.Salary != nil {
		rec.Salary = r.Salary.StringFixed(2)
	}
	return rec
}

func (rec exportRecord) cells() []interface{} {
	return []interface{}{
		rec.WorkerID, rec.FullName, rec.Category, rec.TempAgency, rec.Grade, rec.PayScale, rec.ContractType, rec.Schedule, rec.Salary,
		rec.RegularHours, rec.Tier1Hours, rec.Tier2Hours, rec.TotalHours, rec.DowntimeHours, rec.Absences, rec.MealCount,
		rec.Zone1, rec.Zone2, rec.Zone3, rec.Zone4, rec.Zone5, rec.PersonalTravel, rec.LongDistance, rec.ToComplete,
		rec.Status,
	}
}

// RenderCSV renders export rows as csv with a header line.
func RenderCSV(rows []consolidation.ExportRow) ([]byte, error) {
	records := make([]*exportRecord, 0, len(rows))
	for _, r := range rows {
		rec := toRecord(r)
		records = append(records, &rec)
	}
	out, err := gocsv.MarshalBytes(&records)
	if err != nil {
		return nil, fmt.Errorf("failed to render csv: %w", err)
	}
	return out, nil
}

// RenderXLSX renders export rows as a single-sheet workbook.
func RenderXLSX(rows []consolidation.ExportRow) (*bytes.Buffer, error) {
	f := excelize.NewFile()
	defer f.Close()

	idx, err := f.NewSheet(exportSheet)
	if err != nil {
		return nil, fmt.Errorf("failed to create sheet: %w", err)
	}
	f.SetActiveSheet(idx)
	f.DeleteSheet("Sheet1")

	headerStyle, err := f.NewStyle(&excelize.Style{
		Font:      &excelize.Font{Bold: true, Size: 11},
		Fill:      excelize.Fill{Type: "pattern", Color: []string{"#D9E1F2"}, Pattern: 1},
		Alignment: &excelize.Alignment{Horizontal: "center", Vertical: "center"},
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create header style: %w", err)
	}

	if err := f.SetSheetRow(exportSheet, "A1", &exportHeaders); err != nil {
		return nil, fmt.Errorf("failed to write header: %w", err)
	}
	lastCol, _ := excelize.ColumnNumberToName(len(exportHeaders))
	f.SetCellStyle(exportSheet, "A1", lastCol+"1", headerStyle)
	f.SetColWidth(exportSheet, "A", "A", 38)
	f.SetColWidth(exportSheet, "B", "B", 26)
	f.SetColWidth(exportSheet, "C", lastCol, 14)

	for i, r := range rows {
		cell, _ := excelize.CoordinatesToCellName(1, i+2)
		values := toRecord(r).cells()
		if err := f.SetSheetRow(exportSheet, cell, &values); err != nil {
			return nil, fmt.Errorf("failed to write row %d: %w", i+2, err)
		}
	}

	buf := new(bytes.Buffer)
	if err := f.Write(buf); err != nil {
		return nil, fmt.Errorf("failed to write workbook: %w", err)
	}
	return buf, nil
}
