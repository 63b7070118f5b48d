package remote

import (
	"encoding/json"
	"log"
	"net/http"
	"sync"

	"github.com/dave-mccloskey/beansbinding/observe"

	"github.com/gorilla/websocket"
	uuid "github.com/satori/go.uuid"
)

// A Server exposes named Observables over WebSockets.
//
// Export an object and every connection hears its property changes
// as "change" Events.  Inbound Ops write and read properties.  Wire
// the Server into an http.ServeMux via Handler.
type Server struct {
	// Verbose turns on chatty logging.
	Verbose bool

	// Serialize, when set, runs every inbound op through it.  A
	// host uses it to confine mutations to the goroutine that
	// owns the bindings over these objects.
	Serialize func(func())

	upgrader websocket.Upgrader

	sync.Mutex
	objects map[string]observe.Observable
	subs    map[string]observe.Listener
	conns   map[string]*serverConn
}

// A serverConn is the Server's handle on one connection.  Events go
// out via in; done tells the connection to hang up.  Nothing ever
// closes in, so the read loop can keep sending replies while the
// connection winds down.
type serverConn struct {
	in   chan *Event
	done chan struct{}
}

func (sc *serverConn) send(e *Event) {
	select {
	case sc.in <- e:
	case <-sc.done:
	}
}

func NewServer() *Server {
	return &Server{
		objects: make(map[string]observe.Observable),
		subs:    make(map[string]observe.Listener),
		conns:   make(map[string]*serverConn),
	}
}

func (s *Server) logf(format string, args ...interface{}) {
	if s.Verbose {
		log.Printf("remote.Server "+format, args...)
	}
}

// Export publishes o under the given name.  Every property change o
// reports from now on goes to every connection.
func (s *Server) Export(name string, o observe.Observable) {
	sub := observe.Hear(func(src observe.Observable, prop string, old, new interface{}) {
		s.broadcast(&Event{
			Event:    "change",
			Object:   name,
			Property: prop,
			Old:      NewValue(old),
			New:      NewValue(new),
		})
	})

	s.Lock()
	if old := s.subs[name]; old != nil {
		s.objects[name].Unsubscribe("", old)
	}
	s.objects[name] = o
	s.subs[name] = sub
	s.Unlock()

	o.Subscribe("", sub)
}

// Unexport withdraws a name.  Connections hear nothing more about
// the object.
func (s *Server) Unexport(name string) {
	s.Lock()
	o, sub := s.objects[name], s.subs[name]
	delete(s.objects, name)
	delete(s.subs, name)
	s.Unlock()

	if o != nil && sub != nil {
		o.Unsubscribe("", sub)
	}
}

// Close unexports everything and hangs up every connection.  Ops
// still in flight get dropped rather than delivered.
func (s *Server) Close() {
	s.Lock()
	for name, o := range s.objects {
		if sub := s.subs[name]; sub != nil {
			o.Unsubscribe("", sub)
		}
	}
	s.objects = make(map[string]observe.Observable)
	s.subs = make(map[string]observe.Listener)
	for id, sc := range s.conns {
		close(sc.done)
		delete(s.conns, id)
	}
	s.Unlock()
}

func (s *Server) broadcast(e *Event) {
	s.Lock()
	defer s.Unlock()
	for id, sc := range s.conns {
		select {
		case sc.in <- e:
		default:
			log.Printf("remote.Server %s events blocked", id)
		}
	}
}

func (s *Server) do(f func()) {
	if s.Serialize != nil {
		s.Serialize(f)
		return
	}
	f()
}

// apply performs one Op.  The returned Event, if any, goes back to
// the connection that sent the Op.
func (s *Server) apply(op *Op) *Event {
	oops := func(msg string) *Event {
		return &Event{
			Event:  "error",
			Object: op.Object,
			Error:  msg,
			Id:     op.Id,
		}
	}

	s.Lock()
	o, have := s.objects[op.Object]
	s.Unlock()
	if !have {
		return oops(`no object "` + op.Object + `"`)
	}

	switch op.Op {
	case "set":
		if err := o.Set(op.Property, op.Value.Unwrap()); err != nil {
			return oops(err.Error())
		}
		return nil
	case "get":
		return &Event{
			Event:    "value",
			Object:   op.Object,
			Property: op.Property,
			Value:    NewValue(o.Get(op.Property)),
			Id:       op.Id,
		}
	case "snapshot":
		return &Event{
			Event:  "snapshot",
			Object: op.Object,
			Props:  snapshot(o),
			Id:     op.Id,
		}
	}
	return oops(`unknown op "` + op.Op + `"`)
}

// Handler returns the WebSocket endpoint.
func (s *Server) Handler() http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		c, err := s.upgrader.Upgrade(w, r, nil)
		if err != nil {
			log.Println("remote.Server upgrade error", err)
			return
		}
		defer c.Close()

		u, _ := uuid.NewV4()
		id := u.String()
		s.logf("connection %s from %s", id, c.RemoteAddr())

		sc := &serverConn{
			in:   make(chan *Event, 32),
			done: make(chan struct{}),
		}

		s.Lock()
		s.conns[id] = sc
		s.Unlock()
		defer func() {
			s.Lock()
			if _, still := s.conns[id]; still {
				delete(s.conns, id)
				close(sc.done)
			}
			s.Unlock()
		}()

		go func() {
			for {
				select {
				case <-sc.done:
					// Close was called.  Hanging up unblocks
					// the read loop below.
					c.Close()
					return
				case e := <-sc.in:
					js, err := json.Marshal(e)
					if err != nil {
						log.Printf("remote.Server Marshal error %v on %#v", err, e)
						continue
					}
					if err = c.WriteMessage(websocket.TextMessage, js); err != nil {
						s.logf("%s write: %v", id, err)
						return
					}
				}
			}
		}()

		for {
			_, message, err := c.ReadMessage()
			if err != nil {
				s.logf("%s read: %v", id, err)
				break
			}

			var op Op
			if err := json.Unmarshal(message, &op); err != nil {
				sc.send(&Event{Event: "error", Error: "can't parse: " + err.Error()})
				continue
			}

			reply := make(chan *Event, 1)
			s.do(func() {
				reply <- s.apply(&op)
			})
			if e := <-reply; e != nil {
				sc.send(e)
			}
		}
	})
}
