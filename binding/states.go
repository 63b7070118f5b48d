package binding

// ValueState classifies one endpoint's synchronization status.
type ValueState int

//go:generate stringer -type=ValueState
//go:generate jsonenums -type=ValueState

const (
	Unset          ValueState = iota // Not bound.
	IncompletePath                   // Some path segment could not be evaluated.
	Uncommitted                      // This side changed but was not propagated.
	Invalid                          // Conversion or validation rejected the write.
	Valid                            // Both sides agree.
)

// Strategy says which direction(s), and how often, values propagate.
type Strategy int

//go:generate stringer -type=Strategy

const (
	ReadWrite Strategy = iota // Two-way.  The default.
	Read                      // One-way, source to target.
	ReadOnce                  // Source to target once, at Bind time.
)
