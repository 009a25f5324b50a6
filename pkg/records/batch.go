package records

import "errors"

// ErrPrecondition signals a programmer error (for example handing fix a
// finding produced against a different graph snapshot). It is the only class
// of failure the core treats as hard; data-quality problems are diagnostics,
// never errors.
var ErrPrecondition = errors.New("precondition violated")

// BatchResult is the uniform outcome of every batch-mutating operation, so
// callers can render one summary display regardless of which operation ran.
type BatchResult struct {
	Processed int      `json:"processed"`
	Modified  int      `json:"modified"`
	Errors    []string `json:"errors,omitempty"`
}

// AddError appends a per-item failure without aborting the batch.
func (r *BatchResult) AddError(msg string) {
	r.Errors = append(r.Errors, msg)
}

// Merge folds another result into this one.
func (r *BatchResult) Merge(other BatchResult) {
	r.Processed += other.Processed
	r.Modified += other.Modified
	r.Errors = append(r.Errors, other.Errors...)
}

// ProgressFunc is the observer hook long batch operations call with
// (current, total). The core never cancels mid-batch; cancellation means not
// starting the next detect/fix cycle.
type ProgressFunc func(current, total int)

// Notify is a nil-safe invocation helper.
func (f ProgressFunc) Notify(current, total int) {
	if f != nil {
		f(current, total)
	}
}

// PersonWriter persists a person record. Writes are assumed atomic
// per-record but not transactional across records: every engine that writes
// through this interface must stay correct when re-run after a partial batch.
type PersonWriter interface {
	WritePerson(p PersonRecord) error
}

// PlaceWriter persists a place record.
type PlaceWriter interface {
	WritePlace(p PlaceRecord) error
}
