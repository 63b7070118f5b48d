package binding

// These errors are user errors: misuse of the API, not failures of
// the synchronization protocol itself.  Conversion and validation
// failures are reported through Listeners instead, since the Binding
// survives them.

import (
	"errors"
)

// AlreadyBound occurs when a Binding is configured or Bind()ed while
// it is bound.
type AlreadyBound struct {
	Binding *Binding
}

func (e *AlreadyBound) Error() string {
	return `binding "` + e.Binding.Name() + `" is already bound`
}

// NotBound occurs when an operation that needs a bound Binding (say
// SetTargetFromSource()) is called on an unbound one.
type NotBound struct {
	Binding *Binding
}

func (e *NotBound) Error() string {
	return `binding "` + e.Binding.Name() + `" is not bound`
}

// MissingEndpoint occurs when Bind() is called without a source or a
// target.  A child Binding can be constructed without endpoints, but
// then only a Controller can bind it (with explicit endpoints).
type MissingEndpoint struct {
	Binding *Binding
	Which   string // "source" or "target"
}

func (e *MissingEndpoint) Error() string {
	return `binding "` + e.Binding.Name() + `" has no ` + e.Which
}

// NotWritable occurs when a reverse (target to source) write is
// demanded of a source expression that cannot accept one: a rich
// expression, or a path that fans out over list elements.
type NotWritable struct {
	Expr string
}

func (e *NotWritable) Error() string {
	return `expression "` + e.Expr + `" is not writable`
}

// BadPath occurs when a property path cannot be parsed.
type BadPath struct {
	Path string
}

func (e *BadPath) Error() string {
	return `bad property path "` + e.Path + `"`
}

// DuplicateName occurs when a named Binding would collide with a
// sibling under the same parent, or with a member of the same
// Context.
type DuplicateName struct {
	Name string
}

func (e *DuplicateName) Error() string {
	return `a binding named "` + e.Name + `" is already here`
}

// HasParent occurs when a Binding that already belongs to a parent
// (or to a Context) is offered to another one.
type HasParent struct {
	Binding *Binding
}

func (e *HasParent) Error() string {
	return `binding "` + e.Binding.Name() + `" already has an owner`
}

// NotAChild occurs when RemoveChild (or Context.Remove) is given a
// Binding that isn't theirs.
type NotAChild struct {
	Binding *Binding
}

func (e *NotAChild) Error() string {
	return `binding "` + e.Binding.Name() + `" is not a child here`
}

// NoEvaluator occurs when a source expression needs an Evaluator and
// neither the Binding nor its Context has one.
var NoEvaluator = errors.New("no evaluator for rich expressions")

// SourceUnreadable occurs when SetTargetFromSource() finds the
// source's final property unreadable and no incomplete-source
// substitute is configured.
var SourceUnreadable = errors.New("source is unreadable")
