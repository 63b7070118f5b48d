package binding

// A Listener hears what happens to one Binding.
//
// SourceChanged and TargetChanged report ValueState transitions of
// the respective side.  ConversionFailed and ValidationFailed report
// recoverable pipeline failures; the Binding stays bound, with the
// offending side marked Invalid (or kept as the protocol dictates).
// SyncFailed reports an automatic synchronization pass that could
// not run at all; manual synchronization calls return their errors
// instead.
//
// Embed Listeners to implement just the methods you care about.
type Listener interface {
	SourceChanged(b *Binding)
	TargetChanged(b *Binding)
	ConversionFailed(b *Binding, err error)
	ValidationFailed(b *Binding, r *ValidationResult)
	SyncFailed(b *Binding, f SyncFailure)
}

// Listeners is a no-op Listener for embedding.
type Listeners struct{}

func (Listeners) SourceChanged(b *Binding) {}

func (Listeners) TargetChanged(b *Binding) {}

func (Listeners) ConversionFailed(b *Binding, err error) {}

func (Listeners) ValidationFailed(b *Binding, r *ValidationResult) {}

func (Listeners) SyncFailed(b *Binding, f SyncFailure) {}

// A ContextListener hears rollup notifications for all members of a
// Context.
//
// Embed ContextListeners to implement just the methods you care
// about.
type ContextListener interface {
	BindingStateChanged(b *Binding)
	TargetEdited(b *Binding)
	ConversionFailed(b *Binding, err error)
	ValidationFailed(b *Binding, r *ValidationResult)
}

// ContextListeners is a no-op ContextListener for embedding.
type ContextListeners struct{}

func (ContextListeners) BindingStateChanged(b *Binding) {}

func (ContextListeners) TargetEdited(b *Binding) {}

func (ContextListeners) ConversionFailed(b *Binding, err error) {}

func (ContextListeners) ValidationFailed(b *Binding, r *ValidationResult) {}

// A SyncFailure describes why an automatic synchronization pass gave
// up.
type SyncFailure struct {
	Kind SyncFailureKind
	Err  error // the underlying evaluator or endpoint error, when there is one
}

func (f SyncFailure) Error() string {
	if f.Err != nil {
		return f.Kind.String() + ": " + f.Err.Error()
	}
	return f.Kind.String()
}

// SyncFailureKind is the failure taxonomy for SyncFailure.
type SyncFailureKind int

//go:generate stringer -type=SyncFailureKind

const (
	// SyncSourceUnreadable: a refresh found the source's final
	// property unreadable, with no substitute configured.
	SyncSourceUnreadable SyncFailureKind = iota

	// SyncEvalFailed: the source expression could not be
	// evaluated at all.
	SyncEvalFailed

	// SyncWriteFailed: an endpoint refused the derived value for
	// a reason other than its declared type.
	SyncWriteFailed
)
