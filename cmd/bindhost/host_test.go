package main

import (
	"bufio"
	"bytes"
	"context"
	"strings"
	"testing"
	"time"

	"github.com/dave-mccloskey/beansbinding/decl"
	"github.com/dave-mccloskey/beansbinding/evaluators/noop"
)

var demoYAML = []byte(`
name: demo
objects:
  person:
    props: {name: "Duke"}
  field:
    props: {text: ""}
bindings:
  - name: nameField
    source: person
    expr: name
    target: field
    path: text
`)

func demoHost(t *testing.T, ctx context.Context) *Host {
	t.Helper()

	d, err := decl.Parse(demoYAML)
	if err != nil {
		t.Fatal(err)
	}
	w, err := decl.Build(d, noop.NewEvaluator())
	if err != nil {
		t.Fatal(err)
	}

	h := NewHost(w)
	go h.Loop(ctx)

	if err := h.Do(w.Bind); err != nil {
		t.Fatal(err)
	}
	return h
}

func TestListener(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	h := demoHost(t, ctx)

	// Binding already ran the initial sync.
	if got := h.world.Object("field").Get("text"); got != "Duke" {
		t.Fatalf("%#v", got)
	}

	in := strings.Join([]string{
		`# a comment`,
		``,
		`{"set":{"object":"person","property":"name","value":"Bob"}}`,
		`{"get":{"object":"field","property":"text"}}`,
		`states`,
		`{"set":{"object":"nobody","property":"name","value":"x"}}`,
		`quit`,
	}, "\n") + "\n"

	var out bytes.Buffer
	if err := h.Listener(ctx, bufio.NewReader(strings.NewReader(in)), &out); err != nil {
		t.Fatal(err)
	}

	got := out.String()

	// The set flowed through the binding before the get answered.
	for _, want := range []string{
		`"okay"`,
		`"value":"Bob"`,
		`"source":"Valid"`,
		`no object named \"nobody\"`,
	} {
		if !strings.Contains(got, want) {
			t.Fatalf("no %s in output:\n%s", want, got)
		}
	}

	if got := h.world.Object("person").Get("name"); got != "Bob" {
		t.Fatalf("%#v", got)
	}
}

func TestListenerParseError(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	h := demoHost(t, ctx)

	var out bytes.Buffer
	err := h.Listener(ctx, bufio.NewReader(strings.NewReader("{nope\n")), &out)
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(out.String(), "can't parse") {
		t.Fatal(out.String())
	}
}

func TestSerializeAfterShutdown(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	h := demoHost(t, ctx)

	cancel()
	<-h.done

	// A bridge calling in after the service goroutine is gone must
	// return, not wait forever.
	returned := make(chan struct{})
	go func() {
		h.Serialize(func() {})
		close(returned)
	}()
	select {
	case <-returned:
	case <-time.After(10 * time.Second):
		t.Fatal("Serialize never returned after shutdown")
	}
}
