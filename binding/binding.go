/* Copyright 2018-2019 Comcast Cable Communications Management, LLC
 * Licensed under the Apache License, Version 2.0 (the "License");
 * you may not use this file except in compliance with the License.
 * You may obtain a copy of the License at
 * http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software
 * distributed under the License is distributed on an "AS IS" BASIS,
 * WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
 * See the License for the specific language governing permissions and
 * limitations under the License.
 */

package binding

import (
	"reflect"
	"strings"

	"github.com/dave-mccloskey/beansbinding/observe"
)

// A Binding keeps one property of a target Observable synchronized
// with a value derived from a source Observable.
//
// A Binding is configured while unbound and does its work while
// bound.  Every configuration method fails with AlreadyBound on a
// bound Binding; Subscribe and Unsubscribe are the exceptions.
//
// See the package documentation for the synchronization protocol.
type Binding struct {
	name       string
	source     observe.Observable
	expr       string
	target     observe.Observable
	targetPath string

	strategy  Strategy
	converter Converter
	validator Validator
	condenser Condenser

	// Substitute values.  nil means unset.  Substitutes are used
	// exactly as given, never converted.
	nullSource       interface{}
	nullTarget       interface{}
	incompleteSource interface{}
	incompleteTarget interface{}

	evaluator  Evaluator
	converters *Registry
	params     map[interface{}]interface{}

	listeners []Listener

	parent   *Binding
	children []*Binding
	byName   map[string]*Binding
	context  *Context

	// Controller-supplied endpoint overrides, cleared at unbind.
	tmpSource     observe.Observable
	tmpTarget     observe.Observable
	tmpTargetPath string

	bound          bool
	sourceResolver *ExprResolver
	targetResolver *PathResolver
	sourceState    ValueState
	targetState    ValueState

	// changingValue is true while the Binding itself is writing
	// an endpoint, so that the resulting change notifications are
	// not mistaken for edits.
	changingValue bool

	// Target endpoint bookkeeping for the TargetFactory extension
	// point.
	completeTargetPath bool
	lastTarget         observe.Observable
	bindingTarget      BindingTarget
	ctl                *Controller

	unbindOnCommit bool
}

// New makes an unbound Binding from source.sourceExpr to
// target.targetPath.  sourceExpr is either a property path or, when
// an Evaluator is available at Bind time, a rich expression.
func New(source observe.Observable, sourceExpr string, target observe.Observable, targetPath string) *Binding {
	return NewNamed("", source, sourceExpr, target, targetPath)
}

// NewNamed is New with a name for Context and parent lookup.  Names
// cannot change later.
func NewNamed(name string, source observe.Observable, sourceExpr string, target observe.Observable, targetPath string) *Binding {
	return &Binding{
		name:       name,
		source:     source,
		expr:       sourceExpr,
		target:     target,
		targetPath: targetPath,
	}
}

func (b *Binding) Name() string {
	return b.name
}

func (b *Binding) Source() observe.Observable {
	return b.source
}

func (b *Binding) SourceExpr() string {
	return b.expr
}

func (b *Binding) Target() observe.Observable {
	return b.target
}

func (b *Binding) TargetPath() string {
	return b.targetPath
}

func (b *Binding) Strategy() Strategy {
	return b.strategy
}

func (b *Binding) Bound() bool {
	return b.bound
}

func (b *Binding) SourceState() ValueState {
	return b.sourceState
}

func (b *Binding) TargetState() ValueState {
	return b.targetState
}

func (b *Binding) Parent() *Binding {
	return b.parent
}

func (b *Binding) Context() *Context {
	return b.context
}

// SetSource replaces the source endpoint.
func (b *Binding) SetSource(source observe.Observable) error {
	if b.bound {
		return &AlreadyBound{b}
	}
	b.source = source
	return nil
}

// SetTarget replaces the target endpoint.
func (b *Binding) SetTarget(target observe.Observable) error {
	if b.bound {
		return &AlreadyBound{b}
	}
	b.target = target
	return nil
}

func (b *Binding) SetStrategy(s Strategy) error {
	if b.bound {
		return &AlreadyBound{b}
	}
	b.strategy = s
	return nil
}

// SetConverter installs an explicit Converter, which then takes
// precedence over any Registry lookup.
func (b *Binding) SetConverter(c Converter) error {
	if b.bound {
		return &AlreadyBound{b}
	}
	b.converter = c
	return nil
}

// SetValidator installs a Validator consulted before every reverse
// (target to source) write.
func (b *Binding) SetValidator(v Validator) error {
	if b.bound {
		return &AlreadyBound{b}
	}
	b.validator = v
	return nil
}

// SetCondenser installs the Condenser that folds a fanned-out source
// value into one.  Without one, the first element wins.
func (b *Binding) SetCondenser(c Condenser) error {
	if b.bound {
		return &AlreadyBound{b}
	}
	b.condenser = c
	return nil
}

// SetNullSourceValue gives the value written to the target when the
// source's value is nil.
func (b *Binding) SetNullSourceValue(v interface{}) error {
	if b.bound {
		return &AlreadyBound{b}
	}
	b.nullSource = v
	return nil
}

// SetNullTargetValue gives the value written to the source when the
// target's value is nil.
func (b *Binding) SetNullTargetValue(v interface{}) error {
	if b.bound {
		return &AlreadyBound{b}
	}
	b.nullTarget = v
	return nil
}

// SetIncompleteSourceValue gives the value written to the target
// when the source path is incomplete or its final property is
// unreadable.
func (b *Binding) SetIncompleteSourceValue(v interface{}) error {
	if b.bound {
		return &AlreadyBound{b}
	}
	b.incompleteSource = v
	return nil
}

// SetIncompleteTargetValue gives the value written to the source
// when the target path is incomplete.
func (b *Binding) SetIncompleteTargetValue(v interface{}) error {
	if b.bound {
		return &AlreadyBound{b}
	}
	b.incompleteTarget = v
	return nil
}

// SetEvaluator gives this Binding its own expression Evaluator,
// overriding the parent's and the Context's.
func (b *Binding) SetEvaluator(e Evaluator) error {
	if b.bound {
		return &AlreadyBound{b}
	}
	b.evaluator = e
	return nil
}

// SetConverters gives this Binding its own converter Registry,
// overriding the parent's, the Context's, and the package default.
func (b *Binding) SetConverters(r *Registry) error {
	if b.bound {
		return &AlreadyBound{b}
	}
	b.converters = r
	return nil
}

// Subscribe adds a Listener.  Allowed at any time.
func (b *Binding) Subscribe(l Listener) {
	for _, have := range b.listeners {
		if have == l {
			return
		}
	}
	b.listeners = append(b.listeners, l)
}

// Unsubscribe removes a previously Subscribed Listener.
func (b *Binding) Unsubscribe(l Listener) {
	for i, have := range b.listeners {
		if have == l {
			b.listeners = append(b.listeners[:i:i], b.listeners[i+1:]...)
			return
		}
	}
}

// AddChild makes child a child of b.  Both must be unbound, and
// child must not already have a parent or a Context.  A non-empty
// child name must be unique among b's children.
func (b *Binding) AddChild(child *Binding) error {
	if b.bound {
		return &AlreadyBound{b}
	}
	if child.bound {
		return &AlreadyBound{child}
	}
	if child.parent != nil || child.context != nil {
		return &HasParent{child}
	}
	if child.name != "" {
		if b.byName == nil {
			b.byName = make(map[string]*Binding)
		}
		if _, taken := b.byName[child.name]; taken {
			return &DuplicateName{Name: child.name}
		}
		b.byName[child.name] = child
	}
	b.children = append(b.children, child)
	child.parent = b
	return nil
}

// RemoveChild undoes AddChild.  Both must be unbound.
func (b *Binding) RemoveChild(child *Binding) error {
	if b.bound {
		return &AlreadyBound{b}
	}
	if child.bound {
		return &AlreadyBound{child}
	}
	if child.parent != b {
		return &NotAChild{child}
	}
	b.detachChild(child)
	return nil
}

func (b *Binding) detachChild(child *Binding) {
	for i, have := range b.children {
		if have == child {
			b.children = append(b.children[:i:i], b.children[i+1:]...)
			break
		}
	}
	if child.name != "" {
		delete(b.byName, child.name)
	}
	child.parent = nil
}

// Child returns the child with the given name, or nil.
func (b *Binding) Child(name string) *Binding {
	if name == "" {
		return nil
	}
	return b.byName[name]
}

// Children returns the children in the order they were added.
func (b *Binding) Children() []*Binding {
	return append([]*Binding{}, b.children...)
}

// Bind starts synchronization: resolvers are built and attached, the
// TargetFactory extension point is probed, and one source-to-target
// pass runs.  On any error the Binding is left unbound.
//
// The effective endpoints are the Controller overrides when present
// and the declared endpoints otherwise.
func (b *Binding) Bind() error {
	if b.bound {
		return &AlreadyBound{b}
	}
	source := b.effSource()
	if source == nil {
		return &MissingEndpoint{Binding: b, Which: "source"}
	}
	target := b.effTarget()
	if target == nil {
		return &MissingEndpoint{Binding: b, Which: "target"}
	}

	sr, err := NewExprResolver(source, b.expr, b.effectiveEvaluator(), b.sourceChanged)
	if err != nil {
		return err
	}
	// A two-way strategy needs a source that can take writes.
	// Fanning out is a dynamic condition, so only rich
	// expressions are rejected this early.
	if b.strategy == ReadWrite && !sr.Bindable() {
		return &NotWritable{Expr: b.expr}
	}
	tr, err := NewPathResolver(target, b.effTargetPath(), b.targetChanged)
	if err != nil {
		return err
	}

	b.sourceResolver = sr
	b.targetResolver = tr
	b.bound = true
	b.targetState = Valid
	if b.context != nil {
		b.context.becameBound(b)
	}

	sr.Bind()
	res, err := sr.Evaluate()
	if err != nil {
		b.teardown()
		return err
	}
	if res.Kind == Incomplete {
		b.sourceState = IncompletePath
	} else {
		b.sourceState = Valid
	}

	tr.Bind()
	b.updateBindingTarget()

	if err := b.sourceToTarget(); err != nil {
		b.teardown()
		return err
	}
	return nil
}

// Unbind stops synchronization and detaches from both endpoints.
// Bound children are unbound first.  The Binding's configuration
// survives, so it can be bound again.
func (b *Binding) Unbind() error {
	if !b.bound {
		return &NotBound{b}
	}
	for _, child := range append([]*Binding{}, b.children...) {
		if child.bound {
			child.Unbind()
		}
	}
	b.teardown()
	return nil
}

// teardown releases everything Bind acquired.  States go back to
// Unset silently.
func (b *Binding) teardown() {
	if b.bindingTarget != nil {
		b.bindingTarget.Unbind(b.controller(), b.lastProp())
		b.bindingTarget = nil
	}
	b.lastTarget = nil
	if b.targetResolver != nil {
		b.targetResolver.Unbind()
		b.targetResolver = nil
	}
	if b.sourceResolver != nil {
		b.sourceResolver.Unbind()
		b.sourceResolver = nil
	}
	b.sourceState = Unset
	b.targetState = Unset
	b.changingValue = false
	b.completeTargetPath = false
	b.unbindOnCommit = false
	b.tmpSource = nil
	b.tmpTarget = nil
	b.tmpTargetPath = ""
	b.bound = false
	if b.context != nil {
		b.context.becameUnbound(b)
	}
}

// SetTargetFromSource synchronizes forward on demand.
//
// Unlike the automatic passes, which quietly treat an unreadable
// source like an incomplete one, an explicit refresh with no
// incomplete-source substitute reports SourceUnreadable.
func (b *Binding) SetTargetFromSource() error {
	if !b.bound {
		return &NotBound{b}
	}
	res, err := b.sourceResolver.Evaluate()
	if err == nil && res.Kind == SingleValue && observe.IsUnreadable(res.Value) && b.incompleteSource == nil {
		b.fireSyncFailed(SyncFailure{Kind: SyncSourceUnreadable, Err: SourceUnreadable})
		return SourceUnreadable
	}
	return b.sourceToTarget()
}

// SetSourceFromTarget synchronizes backward on demand, regardless of
// Strategy.  The source expression must be writable.
func (b *Binding) SetSourceFromTarget() error {
	if !b.bound {
		return &NotBound{b}
	}
	if !b.sourceResolver.Writable() {
		return &NotWritable{Expr: b.expr}
	}
	return b.targetToSource()
}

// SourceValueFor evaluates b's source expression against root and
// runs the result through b's conversion pipeline, all without
// binding.  Extensions use this to compute what b would write if its
// source were root.
func (b *Binding) SourceValueFor(root observe.Observable) (interface{}, error) {
	r, err := NewExprResolver(root, b.expr, b.effectiveEvaluator(), nil)
	if err != nil {
		return nil, err
	}
	res, err := r.Evaluate()
	if err != nil {
		return nil, err
	}
	unreadable := res.Kind == SingleValue && observe.IsUnreadable(res.Value)
	if res.Kind == Incomplete || unreadable {
		if b.incompleteSource != nil {
			return b.incompleteSource, nil
		}
		return nil, SourceUnreadable
	}
	return b.valueForTarget(res)
}

// sourceChanged is the source resolver's change callback.
func (b *Binding) sourceChanged() {
	if b.changingValue || !b.bound {
		return
	}
	if b.strategy == ReadOnce {
		// The one read already happened.  Track divergence
		// without propagating.
		oldSS, oldTS := b.sourceState, b.targetState
		res, err := b.sourceResolver.Evaluate()
		if err != nil || res.Kind == Incomplete {
			b.setSourceState(IncompletePath)
		} else {
			b.setSourceState(Uncommitted)
		}
		b.notifyContext(oldSS, oldTS)
		return
	}
	b.sourceToTarget()
}

// targetChanged is the target resolver's change callback.
func (b *Binding) targetChanged() {
	if b.changingValue || !b.bound {
		return
	}
	wasComplete := b.completeTargetPath
	b.updateBindingTarget()
	complete := b.completeTargetPath

	switch {
	case !wasComplete && complete && b.strategy != ReadOnce:
		// The endpoint just appeared.  Its current value is
		// leftover, not an edit, so the source wins.
		b.sourceToTarget()

	case wasComplete && !complete:
		if b.strategy == ReadWrite {
			b.targetToSource()
			return
		}
		oldSS, oldTS := b.sourceState, b.targetState
		b.setTargetState(IncompletePath)
		b.notifyContext(oldSS, oldTS)

	case b.strategy == ReadWrite:
		b.targetToSource()
		if b.context != nil {
			b.context.targetEdited(b)
		}

	default:
		oldSS, oldTS := b.sourceState, b.targetState
		if complete {
			b.setTargetState(Uncommitted)
			if b.context != nil {
				b.context.targetEdited(b)
			}
		} else {
			b.setTargetState(IncompletePath)
		}
		b.notifyContext(oldSS, oldTS)
	}
}

// sourceToTarget is one forward pass: evaluate the source, derive
// the target value, write it.
//
// Soft trouble (incomplete paths, conversion failures) lands in
// ValueStates and Listener events, and the returned error is nil.
// The error is non-nil only when the expression evaluator or the
// target endpoint itself failed.
func (b *Binding) sourceToTarget() error {
	oldSS, oldTS := b.sourceState, b.targetState

	if !b.targetResolver.HasAllPathValues() {
		if b.sourceResolver.HasAllPathValues() {
			b.setSourceState(Uncommitted)
		} else {
			b.setSourceState(IncompletePath)
		}
		b.setTargetState(IncompletePath)
		b.notifyContext(oldSS, oldTS)
		return nil
	}

	res, err := b.sourceResolver.Evaluate()
	if err != nil {
		b.setSourceState(Invalid)
		b.notifyContext(oldSS, oldTS)
		b.fireSyncFailed(SyncFailure{Kind: SyncEvalFailed, Err: err})
		return err
	}

	unreadable := res.Kind == SingleValue && observe.IsUnreadable(res.Value)
	if res.Kind == Incomplete || unreadable {
		var hard error
		if b.incompleteSource != nil {
			hard = b.writeTarget(b.incompleteSource)
		}
		b.setSourceState(IncompletePath)
		b.setTargetState(Valid)
		b.notifyContext(oldSS, oldTS)
		if hard != nil {
			b.fireSyncFailed(SyncFailure{Kind: SyncWriteFailed, Err: hard})
			return hard
		}
		return nil
	}

	v, err := b.valueForTarget(res)
	if err != nil {
		b.setSourceState(Invalid)
		b.notifyContext(oldSS, oldTS)
		b.fireConversionFailed(err)
		return nil
	}

	if err := b.writeTarget(v); err != nil {
		if _, wrongType := err.(*observe.WrongType); wrongType {
			b.setSourceState(Invalid)
			b.notifyContext(oldSS, oldTS)
			b.fireConversionFailed(err)
			return nil
		}
		b.setSourceState(Valid)
		b.setTargetState(Invalid)
		b.notifyContext(oldSS, oldTS)
		b.fireSyncFailed(SyncFailure{Kind: SyncWriteFailed, Err: err})
		return err
	}

	b.setSourceState(Valid)
	b.setTargetState(Valid)
	b.notifyContext(oldSS, oldTS)
	b.unbindIfNecessary()
	return nil
}

// targetToSource is one backward pass: read the target, convert,
// validate, write the source.
func (b *Binding) targetToSource() error {
	oldSS, oldTS := b.sourceState, b.targetState

	if !b.sourceResolver.Writable() || !b.sourceResolver.HasAllPathValues() {
		b.setSourceState(IncompletePath)
		if b.targetResolver.HasAllPathValues() {
			b.setTargetState(Uncommitted)
		} else {
			b.setTargetState(IncompletePath)
		}
		b.notifyContext(oldSS, oldTS)
		return nil
	}

	if !b.targetResolver.HasAllPathValues() {
		var hard error
		if b.incompleteTarget != nil {
			hard = b.writeSource(b.incompleteTarget)
		}
		b.setSourceState(Valid)
		b.setTargetState(IncompletePath)
		b.notifyContext(oldSS, oldTS)
		if hard != nil {
			b.fireSyncFailed(SyncFailure{Kind: SyncWriteFailed, Err: hard})
			return hard
		}
		return nil
	}

	tv := b.targetResolver.ValueOfLastProperty()
	if observe.IsUnreadable(tv) {
		tv = nil
	}
	var sv interface{}
	if tv == nil {
		sv = b.nullTarget
	} else {
		var err error
		sv, err = b.convertToSource(tv)
		if err != nil {
			b.setTargetState(Invalid)
			b.notifyContext(oldSS, oldTS)
			b.fireConversionFailed(err)
			return nil
		}
	}

	if b.validator != nil {
		if res := b.validator.Validate(b, sv); res != nil {
			b.applyValidation(res)
			b.notifyContext(oldSS, oldTS)
			b.fireValidationFailed(res)
			b.unbindIfNecessary()
			return nil
		}
	}

	if err := b.writeSource(sv); err != nil {
		if _, wrongType := err.(*observe.WrongType); wrongType {
			b.setTargetState(Invalid)
			b.notifyContext(oldSS, oldTS)
			b.fireConversionFailed(err)
			return nil
		}
		b.setTargetState(Invalid)
		b.notifyContext(oldSS, oldTS)
		b.fireSyncFailed(SyncFailure{Kind: SyncWriteFailed, Err: err})
		return err
	}

	b.setSourceState(Valid)
	b.setTargetState(Valid)
	b.notifyContext(oldSS, oldTS)
	b.unbindIfNecessary()
	return nil
}

// applyValidation carries out a Validator's verdict.
func (b *Binding) applyValidation(res *ValidationResult) {
	if res.Action != RevertTargetFromSource {
		b.setTargetState(Invalid)
		return
	}
	reverted := false
	if sres, err := b.sourceResolver.Evaluate(); err == nil && sres.Kind != Incomplete {
		if sres.Kind != SingleValue || !observe.IsUnreadable(sres.Value) {
			if v, err := b.valueForTarget(sres); err == nil {
				if err := b.writeTarget(v); err == nil {
					reverted = true
				}
			}
		}
	}
	if reverted {
		b.setSourceState(Valid)
		b.setTargetState(Valid)
	} else {
		b.setSourceState(Invalid)
		b.setTargetState(Invalid)
	}
}

// valueForTarget turns an evaluation result into the value to write
// at the target: substitutes for nil, per-element conversion and
// condensation for fanned-out values, converter lookup otherwise.
func (b *Binding) valueForTarget(res EvalResult) (interface{}, error) {
	if res.Kind == MultiValue {
		raw, _ := res.Value.([]interface{})
		values := make([]interface{}, 0, len(raw))
		for _, v := range raw {
			if v == nil {
				values = append(values, b.nullSource)
				continue
			}
			converted, err := b.convertToTarget(v)
			if err != nil {
				return nil, err
			}
			values = append(values, converted)
		}
		if b.condenser != nil {
			return b.condenser.Condense(values), nil
		}
		if 0 < len(values) {
			return values[0], nil
		}
		return b.nullSource, nil
	}
	if res.Value == nil {
		return b.nullSource, nil
	}
	return b.convertToTarget(res.Value)
}

func (b *Binding) convertToTarget(v interface{}) (interface{}, error) {
	if b.converter != nil {
		return b.converter.SourceToTarget(v)
	}
	dst := b.targetType()
	if dst == nil {
		return v, nil
	}
	if c := b.effectiveConverters().Find(reflect.TypeOf(v), dst); c != nil {
		return c.SourceToTarget(v)
	}
	return v, nil
}

func (b *Binding) convertToSource(v interface{}) (interface{}, error) {
	if b.converter != nil {
		return b.converter.TargetToSource(v)
	}
	src := b.sourceResolver.TypeOfLast()
	if src == nil {
		return v, nil
	}
	if c := b.effectiveConverters().Find(src, reflect.TypeOf(v)); c != nil {
		return c.TargetToSource(v)
	}
	return v, nil
}

func (b *Binding) targetType() reflect.Type {
	if b.targetResolver == nil {
		return nil
	}
	return b.targetResolver.TypeOfLastProperty()
}

// writeTarget and writeSource raise changingValue so the resulting
// endpoint notifications are ignored by this Binding.

func (b *Binding) writeTarget(v interface{}) error {
	b.changingValue = true
	defer func() {
		b.changingValue = false
	}()
	return b.targetResolver.SetValueOfLastProperty(v)
}

func (b *Binding) writeSource(v interface{}) error {
	b.changingValue = true
	defer func() {
		b.changingValue = false
	}()
	return b.sourceResolver.SetValue(v)
}

func (b *Binding) setSourceState(s ValueState) {
	if b.sourceState == s {
		return
	}
	b.sourceState = s
	for _, l := range append([]Listener{}, b.listeners...) {
		l.SourceChanged(b)
	}
	if b.bindingTarget != nil {
		b.bindingTarget.SourceStateChanged(b.controller(), b.lastProp())
	}
}

func (b *Binding) setTargetState(s ValueState) {
	if b.targetState == s {
		return
	}
	b.targetState = s
	for _, l := range append([]Listener{}, b.listeners...) {
		l.TargetChanged(b)
	}
}

// notifyContext tells the Context once per synchronization pass,
// however many individual transitions the pass made.
func (b *Binding) notifyContext(oldSS, oldTS ValueState) {
	if b.context == nil {
		return
	}
	if b.sourceState != oldSS || b.targetState != oldTS {
		b.context.stateChanged(b)
	}
}

func (b *Binding) fireConversionFailed(err error) {
	for _, l := range append([]Listener{}, b.listeners...) {
		l.ConversionFailed(b, err)
	}
	if b.context != nil {
		b.context.conversionFailed(b, err)
	}
}

func (b *Binding) fireValidationFailed(res *ValidationResult) {
	for _, l := range append([]Listener{}, b.listeners...) {
		l.ValidationFailed(b, res)
	}
	if b.context != nil {
		b.context.validationFailed(b, res)
	}
}

func (b *Binding) fireSyncFailed(f SyncFailure) {
	for _, l := range append([]Listener{}, b.listeners...) {
		l.SyncFailed(b, f)
	}
}

// updateBindingTarget tracks the Observable that owns the final
// target property and keeps the TargetFactory extension point
// attached to it.
func (b *Binding) updateBindingTarget() {
	b.completeTargetPath = b.targetResolver.HasAllPathValues()
	var last observe.Observable
	if b.completeTargetPath {
		last = b.targetResolver.LastSource()
	}
	if last == b.lastTarget {
		return
	}
	if b.bindingTarget != nil {
		b.bindingTarget.Unbind(b.controller(), b.lastProp())
		b.bindingTarget = nil
	}
	b.lastTarget = last
	if last == nil {
		return
	}
	if f, isFactory := last.(TargetFactory); isFactory {
		if bt := f.CreateBindingTarget(b.lastProp()); bt != nil {
			b.bindingTarget = bt
			bt.Bind(b.controller(), b.lastProp())
		}
	}
}

// unbindIfNecessary carries out an UnbindOnCommit request once the
// target settles at Valid.
func (b *Binding) unbindIfNecessary() {
	if !b.unbindOnCommit || !b.bound || b.targetState != Valid {
		return
	}
	b.unbindOnCommit = false
	parent := b.parent
	b.Unbind()
	if parent != nil {
		parent.detachChild(b)
	}
}

func (b *Binding) controller() *Controller {
	if b.ctl == nil {
		b.ctl = &Controller{b}
	}
	return b.ctl
}

func (b *Binding) effSource() observe.Observable {
	if b.tmpSource != nil {
		return b.tmpSource
	}
	return b.source
}

func (b *Binding) effTarget() observe.Observable {
	if b.tmpTarget != nil {
		return b.tmpTarget
	}
	return b.target
}

func (b *Binding) effTargetPath() string {
	if b.tmpTargetPath != "" {
		return b.tmpTargetPath
	}
	return b.targetPath
}

// lastProp is the final segment of the effective target path.
func (b *Binding) lastProp() string {
	path := b.effTargetPath()
	if i := strings.LastIndexByte(path, '.'); 0 <= i {
		return path[i+1:]
	}
	return path
}

// effectiveEvaluator is the Binding's own Evaluator, or the nearest
// ancestor's, or the Context's, or nil.
func (b *Binding) effectiveEvaluator() Evaluator {
	if b.evaluator != nil {
		return b.evaluator
	}
	if b.parent != nil {
		return b.parent.effectiveEvaluator()
	}
	if b.context != nil {
		return b.context.evaluator
	}
	return nil
}

// effectiveConverters is the Binding's own Registry, or the nearest
// ancestor's, or the Context's, falling back to the package default.
func (b *Binding) effectiveConverters() *Registry {
	if b.converters != nil {
		return b.converters
	}
	if b.parent != nil {
		return b.parent.effectiveConverters()
	}
	if b.context != nil && b.context.converters != nil {
		return b.context.converters
	}
	return std
}
