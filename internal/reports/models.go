package reports

import (
	"time"

	"github.com/google/uuid"
)

const (
	FormatPDF = "pdf"
	FormatCSV = "csv"

	StatusReady  = "ready"
	StatusFailed = "failed"

	defaultMaxRangeDays = 90
)

// CreateReportRequest — запрос для POST /v1/reports
type CreateReportRequest struct {
	From   string `json:"from"`   // YYYY-MM-DD
	To     string `json:"to"`     // YYYY-MM-DD
	Format string `json:"format"` // pdf | csv
}

// Report — метаданные отчёта
type Report struct {
	ID        uuid.UUID
	UserID    string
	Format    string
	FromDate  string
	ToDate    string
	ObjectKey *string
	SizeBytes int64
	Status    string
	CreatedAt time.Time
}

// ReportDTO is the response representation of a report
type ReportDTO struct {
	ID          uuid.UUID `json:"id"`
	Format      string    `json:"format"`
	From        string    `json:"from"`
	To          string    `json:"to"`
	DownloadURL string    `json:"download_url"`
	SizeBytes   int64     `json:"size_bytes"`
	Status      string    `json:"status"`
	CreatedAt   time.Time `json:"created_at"`
}

// ReportsResponse is the list response
type ReportsResponse struct {
	Reports []ReportDTO `json:"reports"`
}

// Row is one day of the adherence report.
type Row struct {
	Date              string
	TargetCalories    int
	ActualCalories    int
	RemainingCalories int
	PercentConsumed   float64
	FulfilledSlots    int
	TotalSlots        int
	CardioMinutes     int
	MetPlan           bool
}

// Totals summarize the whole period.
type Totals struct {
	Days          int
	LoggedDays    int
	AdherenceDays int
	AvgCalories   int
	AvgPercent    float64
	CardioMinutes int
}
