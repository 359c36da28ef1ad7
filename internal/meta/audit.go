package meta

import (
	"fmt"
	"time"
	_ "time/tzdata"

	"github.com/roach88/typica/internal/filter"
)

// DefaultTimezone is the timezone stamped on new records.
const DefaultTimezone = "Asia/Jakarta"

// Audit error codes (E500-E599).
const (
	ErrCodeNegativeTimestamp = "E501" // a stamp is below zero
	ErrCodeUnknownTimezone   = "E502" // timezone cannot be loaded
	ErrCodeUnknownStatus     = "E503" // status is not a known Status
)

// Clock supplies wall-clock time for audit stamps.
type Clock interface {
	Now() time.Time
}

// SystemClock reads time.Now.
type SystemClock struct{}

func (SystemClock) Now() time.Time { return time.Now() }

// Audit carries the creation, update and deletion stamps of a record along
// with its timezone and status. Stamps are epoch milliseconds; nil means the
// event has not happened.
type Audit struct {
	CreatedAt int64   `json:"createdAt" bson:"createdAt"`
	CreatedBy string  `json:"createdBy" bson:"createdBy"`
	UpdatedAt *int64  `json:"updatedAt" bson:"updatedAt"`
	UpdatedBy *string `json:"updatedBy" bson:"updatedBy"`
	DeletedAt *int64  `json:"deletedAt" bson:"deletedAt"`
	DeletedBy *string `json:"deletedBy" bson:"deletedBy"`
	Timezone  string  `json:"timezone" bson:"timezone"`
	Status    Status  `json:"status" bson:"status"`
}

// NewAudit stamps a new active record created by actor. A nil clock uses
// SystemClock.
func NewAudit(clock Clock, actor string) Audit {
	return Audit{
		CreatedAt: now(clock),
		CreatedBy: actor,
		Timezone:  DefaultTimezone,
		Status:    StatusActive,
	}
}

// Touch records an update by actor.
func (a *Audit) Touch(clock Clock, actor string) {
	at := now(clock)
	a.UpdatedAt = &at
	a.UpdatedBy = &actor
}

// SoftDelete marks the record deleted by actor. The deletion also counts as
// an update.
func (a *Audit) SoftDelete(clock Clock, actor string) {
	at := now(clock)
	a.DeletedAt = &at
	a.DeletedBy = &actor
	a.UpdatedAt = &at
	a.UpdatedBy = &actor
	a.Status = StatusDeleted
}

// IsActive reports whether the record's status is active.
func (a Audit) IsActive() bool {
	return a.Status == StatusActive
}

// Validate checks stamps, timezone and status.
func (a Audit) Validate() []filter.ValidationError {
	var errs []filter.ValidationError

	stamps := []struct {
		field string
		value *int64
	}{
		{"createdAt", &a.CreatedAt},
		{"updatedAt", a.UpdatedAt},
		{"deletedAt", a.DeletedAt},
	}
	for _, s := range stamps {
		if s.value != nil && *s.value < 0 {
			errs = append(errs, filter.ValidationError{
				Field:   s.field,
				Message: fmt.Sprintf("timestamp %d is negative", *s.value),
				Code:    ErrCodeNegativeTimestamp,
			})
		}
	}

	if _, err := time.LoadLocation(a.Timezone); err != nil || a.Timezone == "" {
		errs = append(errs, filter.ValidationError{
			Field:   "timezone",
			Message: fmt.Sprintf("unknown timezone %q", a.Timezone),
			Code:    ErrCodeUnknownTimezone,
		})
	}

	if !a.Status.Valid() {
		errs = append(errs, filter.ValidationError{
			Field:   "status",
			Message: fmt.Sprintf("unknown status %q", a.Status),
			Code:    ErrCodeUnknownStatus,
		})
	}

	return errs
}

func now(clock Clock) int64 {
	if clock == nil {
		clock = SystemClock{}
	}
	return clock.Now().UnixMilli()
}
