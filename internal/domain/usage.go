package domain

import (
	"math"
	"time"
)

// UserUsage is a user's consumption counters for the current billing period.
type UserUsage struct {
	UserID             string
	MutationsUsed      int
	UploadsUsed        int
	StorageUsedMB      float64
	CurrentPeriodStart time.Time
	CurrentPeriodEnd   time.Time
}

// NewUsage returns a zeroed usage record whose period starts at now.
func NewUsage(userID string, now time.Time) UserUsage {
	start, end := PeriodFrom(now)
	return UserUsage{
		UserID:             userID,
		CurrentPeriodStart: start,
		CurrentPeriodEnd:   end,
	}
}

// Elapsed reports whether the usage period ended before now.
func (u UserUsage) Elapsed(now time.Time) bool {
	return u.CurrentPeriodEnd.Before(now)
}

// Valid reports whether the record is internally consistent: non-negative
// counters and a period that ends after it starts.
func (u UserUsage) Valid() bool {
	return u.MutationsUsed >= 0 &&
		u.UploadsUsed >= 0 &&
		u.StorageUsedMB >= 0 && !math.IsNaN(u.StorageUsedMB) &&
		u.CurrentPeriodEnd.After(u.CurrentPeriodStart)
}

// AddMutation increments the mutation counter.
func (u *UserUsage) AddMutation() {
	u.MutationsUsed++
}

// AddUpload increments the upload counter and accumulates storage.
func (u *UserUsage) AddUpload(sizeMB float64) {
	u.UploadsUsed++
	u.StorageUsedMB = RoundMB(u.StorageUsedMB + sizeMB)
}

// RoundMB rounds a storage figure to two decimal places.
func RoundMB(v float64) float64 {
	return math.Round(v*100) / 100
}

// PeriodFrom returns a billing period of one calendar month starting at start.
// Month overflow follows time.AddDate normalisation (Jan 31 + 1 month = Mar 2/3).
func PeriodFrom(start time.Time) (time.Time, time.Time) {
	return start, start.AddDate(0, 1, 0)
}

// MutationRecord is one entry in a user's mutation history.
type MutationRecord struct {
	ID        string
	UserID    string
	Action    string
	Resource  string
	Timestamp time.Time
}
