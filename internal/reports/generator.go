package reports

import (
	"bytes"
	"encoding/csv"
	"fmt"
	"math"
	"strconv"

	"github.com/fdg312/physique-hub/internal/summary"
	"github.com/jung-kurt/gofpdf"
)

// BuildRows turns daily summaries into report rows and period totals.
func BuildRows(days []summary.DailySummary) ([]Row, Totals) {
	rows := make([]Row, 0, len(days))
	totals := Totals{Days: len(days)}

	var calories int
	var percent float64
	for _, d := range days {
		rows = append(rows, Row{
			Date:              d.Date,
			TargetCalories:    d.TargetCaloriesTotal,
			ActualCalories:    d.ActualCaloriesTotal,
			RemainingCalories: d.RemainingCalories,
			PercentConsumed:   d.PercentConsumed,
			FulfilledSlots:    d.FulfilledSlots(),
			TotalSlots:        len(d.PerSlot),
			CardioMinutes:     d.CardioMinutesTotal,
			MetPlan:           d.PlanAdherenceFlag,
		})

		if d.EventCount > 0 {
			totals.LoggedDays++
		}
		if d.PlanAdherenceFlag {
			totals.AdherenceDays++
		}
		totals.CardioMinutes += d.CardioMinutesTotal
		calories += d.ActualCaloriesTotal
		percent += d.PercentConsumed
	}

	if len(days) > 0 {
		totals.AvgCalories = int(math.Round(float64(calories) / float64(len(days))))
		totals.AvgPercent = math.Round(percent/float64(len(days))*10) / 10
	}

	return rows, totals
}

// RenderCSV writes one line per day with an English header.
func RenderCSV(rows []Row) ([]byte, error) {
	var buf bytes.Buffer
	w := csv.NewWriter(&buf)

	header := []string{"date", "target_calories", "actual_calories", "remaining_calories", "percent_consumed", "fulfilled_slots", "total_slots", "cardio_minutes", "met_plan"}
	if err := w.Write(header); err != nil {
		return nil, err
	}

	for _, r := range rows {
		record := []string{
			r.Date,
			strconv.Itoa(r.TargetCalories),
			strconv.Itoa(r.ActualCalories),
			strconv.Itoa(r.RemainingCalories),
			strconv.FormatFloat(r.PercentConsumed, 'f', 1, 64),
			strconv.Itoa(r.FulfilledSlots),
			strconv.Itoa(r.TotalSlots),
			strconv.Itoa(r.CardioMinutes),
			strconv.FormatBool(r.MetPlan),
		}
		if err := w.Write(record); err != nil {
			return nil, err
		}
	}

	w.Flush()
	if err := w.Error(); err != nil {
		return nil, err
	}

	return buf.Bytes(), nil
}

// RenderPDF draws the period summary and the per-day table. Only the core
// Arial font is used, so every string must stay within Latin-1.
func RenderPDF(from, to string, rows []Row, totals Totals) ([]byte, error) {
	pdf := gofpdf.New("P", "mm", "A4", "")
	pdf.SetTitle("Adherence report", false)
	pdf.AddPage()

	pdf.SetFont("Arial", "B", 16)
	pdf.Cell(0, 10, "Adherence report")
	pdf.Ln(8)

	pdf.SetFont("Arial", "", 12)
	pdf.Cell(0, 8, fmt.Sprintf("Period: %s - %s", from, to))
	pdf.Ln(12)

	pdf.SetFont("Arial", "B", 14)
	pdf.Cell(0, 8, "Summary")
	pdf.Ln(8)

	pdf.SetFont("Arial", "", 10)
	lines := []string{
		fmt.Sprintf("Days in period: %d", totals.Days),
		fmt.Sprintf("Days with entries: %d", totals.LoggedDays),
		fmt.Sprintf("Days on plan: %d", totals.AdherenceDays),
		fmt.Sprintf("Average intake: %d kcal (%.1f%% of target)", totals.AvgCalories, totals.AvgPercent),
		fmt.Sprintf("Cardio: %d min", totals.CardioMinutes),
	}
	for _, l := range lines {
		pdf.Cell(0, 6, l)
		pdf.Ln(5)
	}
	pdf.Ln(7)

	pdf.SetFont("Arial", "B", 14)
	pdf.Cell(0, 8, "Days")
	pdf.Ln(8)

	drawTable(pdf, rows)

	if pdf.Err() {
		return nil, fmt.Errorf("failed to generate PDF: %w", pdf.Error())
	}

	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		return nil, fmt.Errorf("failed to generate PDF: %w", err)
	}

	return buf.Bytes(), nil
}

func drawTable(pdf *gofpdf.Fpdf, rows []Row) {
	widths := []float64{25, 22, 22, 24, 18, 20, 20, 18}
	header := []string{"Date", "Target", "Actual", "Remaining", "%", "Slots", "Cardio", "On plan"}

	pdf.SetFont("Arial", "B", 8)
	for i, h := range header {
		ln := 0
		if i == len(header)-1 {
			ln = 1
		}
		pdf.CellFormat(widths[i], 6, h, "1", ln, "C", false, 0, "")
	}

	pdf.SetFont("Arial", "", 8)
	for _, r := range rows {
		onPlan := ""
		if r.MetPlan {
			onPlan = "yes"
		}
		cells := []string{
			r.Date,
			strconv.Itoa(r.TargetCalories),
			strconv.Itoa(r.ActualCalories),
			strconv.Itoa(r.RemainingCalories),
			strconv.FormatFloat(r.PercentConsumed, 'f', 1, 64),
			fmt.Sprintf("%d/%d", r.FulfilledSlots, r.TotalSlots),
			strconv.Itoa(r.CardioMinutes),
			onPlan,
		}
		for i, c := range cells {
			ln := 0
			if i == len(cells)-1 {
				ln = 1
			}
			pdf.CellFormat(widths[i], 6, c, "1", ln, "C", false, 0, "")
		}
	}
}
