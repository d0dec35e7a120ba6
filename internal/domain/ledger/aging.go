package ledger

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// AgingBucket identifies an aging band by days past due
type AgingBucket string

const (
	AgingBucketCurrent AgingBucket = "current" // Not yet due
	AgingBucket1To30   AgingBucket = "1-30"
	AgingBucket31To60  AgingBucket = "31-60"
	AgingBucket61To90  AgingBucket = "61-90"
	AgingBucket90Plus  AgingBucket = "90+"
)

// AllAgingBuckets returns the buckets in ascending age order
func AllAgingBuckets() []AgingBucket {
	return []AgingBucket{
		AgingBucketCurrent,
		AgingBucket1To30,
		AgingBucket31To60,
		AgingBucket61To90,
		AgingBucket90Plus,
	}
}

// BucketFor classifies a due date into an aging bucket as of the given time
func BucketFor(dueDate time.Time, asOf time.Time) AgingBucket {
	days := int(asOf.Sub(dueDate).Hours() / 24)
	switch {
	case days <= 0:
		return AgingBucketCurrent
	case days <= 30:
		return AgingBucket1To30
	case days <= 60:
		return AgingBucket31To60
	case days <= 90:
		return AgingBucket61To90
	default:
		return AgingBucket90Plus
	}
}

// AgingLine is one customer's outstanding balance split across aging buckets
type AgingLine struct {
	CustomerID uuid.UUID                       `json:"customer_id"`
	Total      decimal.Decimal                 `json:"total"`
	Buckets    map[AgingBucket]decimal.Decimal `json:"buckets"`
}

// AgingReport summarizes outstanding receivables by aging bucket
type AgingReport struct {
	AsOf    time.Time                       `json:"as_of"`
	Total   decimal.Decimal                 `json:"total"`
	Buckets map[AgingBucket]decimal.Decimal `json:"buckets"`
	Lines   []AgingLine                     `json:"lines"`
}

// BuildAgingReport classifies outstanding receivables into aging buckets
// as of the given time. Paid and written-off receivables are excluded.
func BuildAgingReport(receivables []Receivable, asOf time.Time) *AgingReport {
	report := &AgingReport{
		AsOf:    asOf,
		Total:   decimal.Zero,
		Buckets: make(map[AgingBucket]decimal.Decimal),
	}
	for _, b := range AllAgingBuckets() {
		report.Buckets[b] = decimal.Zero
	}

	lineIndex := make(map[uuid.UUID]int)

	for _, r := range receivables {
		if r.Status.IsTerminal() || r.OutstandingAmount.LessThanOrEqual(decimal.Zero) {
			continue
		}

		bucket := BucketFor(r.DueDate, asOf)
		report.Buckets[bucket] = report.Buckets[bucket].Add(r.OutstandingAmount)
		report.Total = report.Total.Add(r.OutstandingAmount)

		idx, ok := lineIndex[r.CustomerID]
		if !ok {
			line := AgingLine{
				CustomerID: r.CustomerID,
				Total:      decimal.Zero,
				Buckets:    make(map[AgingBucket]decimal.Decimal),
			}
			for _, b := range AllAgingBuckets() {
				line.Buckets[b] = decimal.Zero
			}
			report.Lines = append(report.Lines, line)
			idx = len(report.Lines) - 1
			lineIndex[r.CustomerID] = idx
		}

		report.Lines[idx].Total = report.Lines[idx].Total.Add(r.OutstandingAmount)
		report.Lines[idx].Buckets[bucket] = report.Lines[idx].Buckets[bucket].Add(r.OutstandingAmount)
	}

	return report
}
