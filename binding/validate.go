package binding

// A Validator inspects values travelling from target to source,
// after conversion and before the write.
//
// A nil result commits the write.  A non-nil result withholds it:
// Reject leaves the source alone and marks the target Invalid;
// RevertTargetFromSource additionally recomputes the source-derived
// value and writes it back over the target's edit.  Either way the
// Binding reports ValidationFailed.
type Validator interface {
	Validate(b *Binding, value interface{}) *ValidationResult
}

// ValidatorFunc adapts a function to the Validator interface.
type ValidatorFunc func(b *Binding, value interface{}) *ValidationResult

func (f ValidatorFunc) Validate(b *Binding, value interface{}) *ValidationResult {
	return f(b, value)
}

// A ValidationResult says what to do with a target-to-source write
// the Validator did not like.
type ValidationResult struct {
	Action  ValidationAction
	Message string // optional, for humans
}

func (r *ValidationResult) String() string {
	if r.Message == "" {
		return r.Action.String()
	}
	return r.Action.String() + ": " + r.Message
}

// ValidationAction is what a failed validation asks the Binding to
// do.
type ValidationAction int

//go:generate stringer -type=ValidationAction

const (
	// Reject: don't write the source; mark the target Invalid.
	Reject ValidationAction = iota

	// RevertTargetFromSource: don't write the source; overwrite
	// the target's edit with the source-derived value.
	RevertTargetFromSource
)
