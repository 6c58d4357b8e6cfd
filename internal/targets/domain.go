package targets

import (
	"errors"
	"time"
)

// Submission is one owner's monthly target sheet. Values maps metric names
// to the entered amounts; the two grand-total metrics are derived from the
// constituents, never taken from the sheet.
type Submission struct {
	StaffCode string
	Branch    string
	Month     time.Time
	DueDate   *time.Time
	Values    map[string]float64
}

// OutcomeStatus classifies what happened to a single metric's target.
type OutcomeStatus string

const (
	// OutcomeStored means the target was inserted or updated.
	OutcomeStored OutcomeStatus = "stored"
	// OutcomeDeleted means a previously stored target was removed because
	// the submitted value was zero or negative.
	OutcomeDeleted OutcomeStatus = "deleted"
	// OutcomeSkipped means there was nothing to do: a non-positive value
	// with no stored target, or an explicit grand-total field, which is
	// always recomputed from the constituents.
	OutcomeSkipped OutcomeStatus = "skipped"
	// OutcomeFailed means the store rejected the write; Error carries the
	// reason. Failures do not abort the rest of the batch.
	OutcomeFailed OutcomeStatus = "failed"
)

// Outcome is the per-record result the caller uses to see which writes of a
// batch succeeded.
type Outcome struct {
	Metric string        `json:"metric"`
	Value  float64       `json:"value"`
	Status OutcomeStatus `json:"status"`
	Error  string        `json:"error,omitempty"`
}

// Result summarizes a bulk submission.
type Result struct {
	BatchID  string    `json:"batch_id"`
	Stored   int       `json:"stored"`
	Deleted  int       `json:"deleted"`
	Skipped  int       `json:"skipped"`
	Failed   int       `json:"failed"`
	Outcomes []Outcome `json:"outcomes"`
}

var (
	// ErrForbidden is returned when the submitting user's scope does not
	// cover the target owner.
	ErrForbidden = errors.New("targets: owner outside submitter scope")
	// ErrUnknownMetric is returned when the store rejects a metric name
	// missing from the product catalog.
	ErrUnknownMetric = errors.New("targets: unknown metric")
	// ErrInvalid is returned for structurally bad submissions.
	ErrInvalid = errors.New("targets: invalid submission")
)
