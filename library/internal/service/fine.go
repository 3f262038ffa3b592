package service

import "time"

const (
	LoanPeriod = 14 * 24 * time.Hour
	// FinePerDay is charged for every started day past the due date.
	FinePerDay int64 = 5000
)

// Fine returns the penalty for a book still out at now. A partial day counts
// as a full one; nothing is owed up to and including the due instant.
func Fine(due, now time.Time) int64 {
	if !now.After(due) {
		return 0
	}
	late := now.Sub(due)
	days := int64((late + 24*time.Hour - 1) / (24 * time.Hour))
	return days * FinePerDay
}
