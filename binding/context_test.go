package binding

import (
	"reflect"
	"testing"

	"github.com/dave-mccloskey/beansbinding/observe"
)

type ctxRecorder struct {
	states      []string
	edited      []string
	conversions int
	validations int
}

func (r *ctxRecorder) BindingStateChanged(b *Binding) {
	r.states = append(r.states, b.Name())
}

func (r *ctxRecorder) TargetEdited(b *Binding) {
	r.edited = append(r.edited, b.Name())
}

func (r *ctxRecorder) ConversionFailed(b *Binding, err error) {
	r.conversions++
}

func (r *ctxRecorder) ValidationFailed(b *Binding, res *ValidationResult) {
	r.validations++
}

func TestContextMembership(t *testing.T) {
	src := observe.NewObject()
	src.Set("x", "1")
	src.Set("y", "2")
	dst := observe.NewObject()
	dst.Set("a", "")
	dst.Set("b", "")

	one := NewNamed("one", src, "x", dst, "a")
	two := NewNamed("two", src, "y", dst, "b")

	ctx := NewContext()
	if err := ctx.Add(one); err != nil {
		t.Fatal(err)
	}
	if err := ctx.Add(two); err != nil {
		t.Fatal(err)
	}
	if one.Context() != ctx {
		t.Fatal("member does not know its context")
	}
	if ctx.Binding("one") != one || ctx.Binding("two") != two {
		t.Fatal("lookup by name failed")
	}
	if got := ctx.Bindings(); len(got) != 2 || got[0] != one || got[1] != two {
		t.Fatal(got)
	}

	// Names must be unique.
	if err := ctx.Add(NewNamed("one", src, "x", dst, "a")); err == nil {
		t.Fatal("duplicate name accepted")
	}

	// One owner only.
	if err := NewContext().Add(one); err == nil {
		t.Fatal("member adopted twice")
	}

	if err := ctx.Bind(); err != nil {
		t.Fatal(err)
	}
	if v, w := dst.Get("a"), dst.Get("b"); v != "1" || w != "2" {
		t.Fatal(v, w)
	}

	// No membership changes while bound.
	if err := ctx.Remove(one); err == nil {
		t.Fatal("removed a bound member")
	}

	if err := ctx.Unbind(); err != nil {
		t.Fatal(err)
	}
	if one.Bound() || two.Bound() {
		t.Fatal("unbind missed a member")
	}

	if err := ctx.Remove(one); err != nil {
		t.Fatal(err)
	}
	if one.Context() != nil || ctx.Binding("one") != nil {
		t.Fatal("detach incomplete")
	}
	if err := ctx.Remove(one); err == nil {
		t.Fatal("removed a non-member")
	}

	// Bind() skips members that are already bound.
	if err := two.Bind(); err != nil {
		t.Fatal(err)
	}
	if err := ctx.Bind(); err != nil {
		t.Fatal(err)
	}
	ctx.Unbind()
}

func TestContextListenerEvents(t *testing.T) {
	src := observe.NewObject()
	src.SetTypeOf("age", reflect.TypeOf(0))
	src.Set("age", 42)
	dst := observe.NewObject()
	dst.Set("text", "")

	b := NewNamed("ages", src, "age", dst, "text")
	b.SetStrategy(Read)

	ctx := NewContext()
	rec := &ctxRecorder{}
	ctx.Subscribe(rec)
	if err := ctx.Add(b); err != nil {
		t.Fatal(err)
	}
	if err := ctx.Bind(); err != nil {
		t.Fatal(err)
	}
	defer ctx.Unbind()

	// A target edit under Read cannot flow back: the context
	// hears both the edit and the state transition.
	if err := dst.Set("text", "edited"); err != nil {
		t.Fatal(err)
	}
	if len(rec.edited) != 1 || rec.edited[0] != "ages" {
		t.Fatal(rec.edited)
	}
	if len(rec.states) != 1 || rec.states[0] != "ages" {
		t.Fatal(rec.states)
	}
	if ctx.LastEdited() != b {
		t.Fatal("LastEdited lost the edit")
	}

	// The next refresh settles it: one more transition.
	if err := src.Set("age", 43); err != nil {
		t.Fatal(err)
	}
	if v := dst.Get("text"); v != "43" {
		t.Fatal(v)
	}
	if len(rec.states) != 2 {
		t.Fatal(rec.states)
	}

	if err := b.Unbind(); err != nil {
		t.Fatal(err)
	}
	if ctx.LastEdited() != nil {
		t.Fatal("LastEdited survived unbind")
	}
}

func TestContextConversionEvents(t *testing.T) {
	src := observe.NewObject()
	src.SetTypeOf("age", reflect.TypeOf(0))
	src.Set("age", 42)
	dst := observe.NewObject()
	dst.Set("text", "")

	b := New(src, "age", dst, "text")
	ctx := NewContext()
	rec := &ctxRecorder{}
	ctx.Subscribe(rec)
	if err := ctx.Add(b); err != nil {
		t.Fatal(err)
	}
	if err := ctx.Bind(); err != nil {
		t.Fatal(err)
	}
	defer ctx.Unbind()

	if err := dst.Set("text", "nope"); err != nil {
		t.Fatal(err)
	}
	if rec.conversions != 1 {
		t.Fatal(rec.conversions)
	}
}

func TestContextValidationEvents(t *testing.T) {
	src := observe.NewObject()
	src.Set("name", "carl")
	dst := observe.NewObject()
	dst.Set("text", "")

	b := New(src, "name", dst, "text")
	b.SetValidator(ValidatorFunc(func(b *Binding, v interface{}) *ValidationResult {
		return &ValidationResult{Action: Reject, Message: "never"}
	}))
	ctx := NewContext()
	rec := &ctxRecorder{}
	ctx.Subscribe(rec)
	if err := ctx.Add(b); err != nil {
		t.Fatal(err)
	}
	if err := ctx.Bind(); err != nil {
		t.Fatal(err)
	}
	defer ctx.Unbind()

	if err := dst.Set("text", "x"); err != nil {
		t.Fatal(err)
	}
	if rec.validations != 1 {
		t.Fatal(rec.validations)
	}
}

func TestContextEvaluator(t *testing.T) {
	src := observe.NewObject()
	dst := observe.NewObject()
	dst.Set("text", 0)

	ctx := NewContext()
	ctx.SetEvaluator(&fakeEvaluator{result: EvalResult{Value: 42, Kind: SingleValue}})

	b := New(src, "21 * 2", dst, "text")
	b.SetStrategy(Read)
	if err := ctx.Add(b); err != nil {
		t.Fatal(err)
	}
	if err := ctx.Bind(); err != nil {
		t.Fatal(err)
	}
	defer ctx.Unbind()

	if v := dst.Get("text"); v != 42 {
		t.Fatal(v)
	}
}

func TestContextConverters(t *testing.T) {
	src := observe.NewObject()
	src.Set("flag", true)
	dst := observe.NewObject()
	dst.Set("text", "")

	reg := NewRegistry()
	reg.Register(reflect.TypeOf(true), reflect.TypeOf(""),
		Convert(func(v interface{}) (interface{}, error) {
			if v.(bool) {
				return "yes", nil
			}
			return "no", nil
		}, func(v interface{}) (interface{}, error) {
			return v == "yes", nil
		}))

	ctx := NewContext()
	ctx.SetConverters(reg)

	b := New(src, "flag", dst, "text")
	if err := ctx.Add(b); err != nil {
		t.Fatal(err)
	}
	if err := ctx.Bind(); err != nil {
		t.Fatal(err)
	}
	defer ctx.Unbind()

	if v := dst.Get("text"); v != "yes" {
		t.Fatal(v)
	}

	if err := dst.Set("text", "no"); err != nil {
		t.Fatal(err)
	}
	if v := src.Get("flag"); v != false {
		t.Fatal(v)
	}
}
