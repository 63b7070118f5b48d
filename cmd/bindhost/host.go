package main

import (
	"bufio"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"strings"

	"github.com/dave-mccloskey/beansbinding/binding"
	"github.com/dave-mccloskey/beansbinding/decl"
	"github.com/dave-mccloskey/beansbinding/remote"
)

// A Host owns a built World and the one goroutine that may mutate
// it.
type Host struct {
	Verbose bool

	world *decl.World
	ops   chan func()
	done  chan struct{}
}

func NewHost(w *decl.World) *Host {
	return &Host{
		world: w,
		ops:   make(chan func(), 64),
		done:  make(chan struct{}),
	}
}

// Loop runs the service goroutine.  Every mutation of the World goes
// through here.
func (h *Host) Loop(ctx context.Context) {
	defer close(h.done)
	for {
		select {
		case <-ctx.Done():
			return
		case f := <-h.ops:
			f()
		}
	}
}

// Serialize runs f on the service goroutine and waits for it.  This
// is the hook the remote bridges get.  After Loop returns, Serialize
// gives up instead of waiting on a goroutine that is gone.
func (h *Host) Serialize(f func()) {
	done := make(chan struct{})
	select {
	case h.ops <- func() {
		f()
		close(done)
	}:
	case <-h.done:
		return
	}
	select {
	case <-done:
	case <-h.done:
	}
}

// Do is Serialize for work that can fail.
func (h *Host) Do(f func() error) error {
	var err error
	h.Serialize(func() {
		err = f()
	})
	return err
}

func (h *Host) logf(format string, args ...interface{}) {
	if h.Verbose {
		log.Printf("Host."+format, args...)
	}
}

// A stdinOp is one line of input.  Exactly one field should be set.
type stdinOp struct {
	Set    *remote.Op `json:"set,omitempty"`
	Get    *remote.Op `json:"get,omitempty"`
	States bool       `json:"states,omitempty"`
}

// stateReport is what the states op emits per binding.
type stateReport struct {
	Name   string             `json:"name,omitempty"`
	Source binding.ValueState `json:"source"`
	Target binding.ValueState `json:"target"`
	Bound  bool               `json:"bound"`
}

// Listener reads ops from in, one JSON line at a time, and writes
// answers to out.
//
//	{"set":{"object":"person","property":"name","value":"Bob"}}
//	{"get":{"object":"field","property":"text"}}
//	{"states":true}
//	quit
//
// Blank lines and lines starting with # are ignored.
func (h *Host) Listener(ctx context.Context, in *bufio.Reader, out io.Writer) error {
	say := func(x interface{}) bool {
		js, err := json.Marshal(&x)
		if err != nil {
			log.Printf("Host.Listener warning on rendering: %s on %#v", err, x)
			js = []byte(fmt.Sprintf("error: %s on %#v", err, x))
		}
		js = append(js, '\n')
		if _, err = out.Write(js); err != nil {
			log.Printf("Host.Listener warning on Write: %s", err)
			return false
		}
		return true
	}

	complain := func(err error) bool {
		return say(map[string]interface{}{
			"error": err.Error(),
		})
	}

	for {
		line, err := in.ReadBytes('\n')
		if err == io.EOF {
			return nil
		}
		if err != nil {
			return err
		}

		sl := strings.TrimSpace(string(line))
		if strings.HasPrefix(sl, "#") || sl == "" {
			continue
		}

		switch sl {
		case "quit", "shutdown":
			log.Printf("client says to shut down")
			return nil
		case "states":
			say(h.states())
			continue
		}

		var op stdinOp
		if err := json.Unmarshal([]byte(sl), &op); err != nil {
			if !complain(fmt.Errorf("can't parse: %v", err)) {
				return nil
			}
			continue
		}

		switch {
		case op.Set != nil:
			err := h.Do(func() error {
				o := h.world.Object(op.Set.Object)
				if o == nil {
					return fmt.Errorf("no object named %q", op.Set.Object)
				}
				return o.Set(op.Set.Property, op.Set.Value.Unwrap())
			})
			if err != nil {
				complain(err)
				continue
			}
			say("okay")
		case op.Get != nil:
			var v interface{}
			err := h.Do(func() error {
				o := h.world.Object(op.Get.Object)
				if o == nil {
					return fmt.Errorf("no object named %q", op.Get.Object)
				}
				v = o.Get(op.Get.Property)
				return nil
			})
			if err != nil {
				complain(err)
				continue
			}
			say(map[string]interface{}{
				"object":   op.Get.Object,
				"property": op.Get.Property,
				"value":    remote.NewValue(v),
			})
		case op.States:
			say(h.states())
		default:
			complain(fmt.Errorf("no op in %s", sl))
		}
	}
}

// states reports every binding's value states, computed on the
// service goroutine.
func (h *Host) states() []stateReport {
	var reports []stateReport
	h.Serialize(func() {
		for _, b := range h.world.Context.Bindings() {
			reports = append(reports, stateReport{
				Name:   b.Name(),
				Source: b.SourceState(),
				Target: b.TargetState(),
				Bound:  b.Bound(),
			})
		}
	})
	return reports
}
