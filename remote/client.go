package remote

import (
	"context"
	"encoding/json"
	"errors"
	"log"
	"net/http/cookiejar"
	"sync"

	"github.com/dave-mccloskey/beansbinding/observe"

	"github.com/gorilla/websocket"
	"golang.org/x/net/publicsuffix"
)

// A Client dials a Server and presents its exported objects as local
// Observables.
//
// Each Proxy keeps a mirror of the remote object's properties: Get
// reads the mirror, and Set sends a set op, with the mirror catching
// up when the server's change event comes back.  Proxy subscribers
// hear remote changes on the Client's reader goroutine; see the
// package comment about serializing.
type Client struct {
	// Verbose turns on chatty logging.
	Verbose bool

	conn *websocket.Conn

	sync.Mutex
	proxies map[string]*Proxy
	values  map[string]chan *Event

	done chan struct{}
}

// Dial connects to a Server's WebSocket endpoint and starts reading
// from it.
func Dial(ctx context.Context, url string) (*Client, error) {
	jar, err := cookiejar.New(&cookiejar.Options{PublicSuffixList: publicsuffix.List})
	if err != nil {
		return nil, err
	}
	dialer := websocket.Dialer{Jar: jar}

	conn, _, err := dialer.DialContext(ctx, url, nil)
	if err != nil {
		return nil, err
	}

	c := &Client{
		conn:    conn,
		proxies: make(map[string]*Proxy),
		values:  make(map[string]chan *Event),
		done:    make(chan struct{}),
	}
	go c.reader()
	return c, nil
}

// Close hangs up.
func (c *Client) Close() error {
	close(c.done)
	return c.conn.Close()
}

func (c *Client) logf(format string, args ...interface{}) {
	if c.Verbose {
		log.Printf("remote.Client "+format, args...)
	}
}

// Object returns the local proxy for the named remote object,
// asking the server for a snapshot to seed the mirror.  The proxy
// exists whether or not the server exports the name; an unexported
// name just never hears anything.
func (c *Client) Object(name string) *Proxy {
	c.Lock()
	p, have := c.proxies[name]
	if !have {
		p = &Proxy{
			client: c,
			name:   name,
			mirror: make(map[string]interface{}),
			subs:   make(map[string][]observe.Listener),
		}
		c.proxies[name] = p
	}
	c.Unlock()
	if !have {
		c.send(&Op{Op: "snapshot", Object: name})
	}
	return p
}

func (c *Client) send(op *Op) error {
	js, err := json.Marshal(op)
	if err != nil {
		return err
	}
	c.logf("sending %s", js)
	return c.conn.WriteMessage(websocket.TextMessage, js)
}

// Get asks the server for one property value directly, bypassing the
// mirror.  Handy for tests and tools; bindings should use the Proxy.
func (c *Client) Get(ctx context.Context, object, property string) (interface{}, error) {
	id := "get/" + object + "/" + property

	reply := make(chan *Event, 1)
	c.Lock()
	c.values[id] = reply
	c.Unlock()
	defer func() {
		c.Lock()
		delete(c.values, id)
		c.Unlock()
	}()

	if err := c.send(&Op{Op: "get", Object: object, Property: property, Id: id}); err != nil {
		return nil, err
	}

	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	case e := <-reply:
		if e.Event == "error" {
			return nil, errors.New(e.Error)
		}
		return e.Value.Unwrap(), nil
	}
}

func (c *Client) reader() {
	for {
		_, message, err := c.conn.ReadMessage()
		if err != nil {
			select {
			case <-c.done:
			default:
				log.Printf("remote.Client read error %v", err)
			}
			return
		}
		c.logf("heard %s", message)

		var e Event
		if err := json.Unmarshal(message, &e); err != nil {
			log.Printf("remote.Client Unmarshal error %v on %s", err, message)
			continue
		}

		switch e.Event {
		case "change":
			c.Lock()
			p := c.proxies[e.Object]
			c.Unlock()
			if p != nil {
				p.heard(e.Property, e.New.Unwrap())
			}
		case "snapshot":
			c.Lock()
			p := c.proxies[e.Object]
			c.Unlock()
			if p != nil {
				for prop, v := range e.Props {
					p.heard(prop, v.Unwrap())
				}
			}
		case "value":
			c.Lock()
			reply := c.values[e.Id]
			c.Unlock()
			if reply != nil {
				select {
				case reply <- &e:
				default:
				}
			}
		case "error":
			if e.Id != "" {
				c.Lock()
				reply := c.values[e.Id]
				c.Unlock()
				if reply != nil {
					select {
					case reply <- &e:
					default:
					}
					continue
				}
			}
			log.Printf("remote.Client server error: %s", e.Error)
		}
	}
}

// A Proxy is the local face of a remote object.
type Proxy struct {
	client *Client
	name   string

	sync.Mutex
	mirror map[string]interface{}
	subs   map[string][]observe.Listener
}

// Get returns the mirrored value, or Unreadable when no change or
// snapshot has mentioned the property yet.
func (p *Proxy) Get(name string) interface{} {
	p.Lock()
	v, have := p.mirror[name]
	p.Unlock()
	if !have {
		return observe.Unreadable
	}
	return v
}

// Set sends the write to the server.  The mirror is not updated
// here; it catches up when the server reports the change.
func (p *Proxy) Set(name string, value interface{}) error {
	return p.client.send(&Op{
		Op:       "set",
		Object:   p.name,
		Property: name,
		Value:    NewValue(value),
	})
}

func (p *Proxy) Subscribe(name string, l observe.Listener) {
	p.Lock()
	defer p.Unlock()
	for _, have := range p.subs[name] {
		if have == l {
			return
		}
	}
	p.subs[name] = append(p.subs[name], l)
}

func (p *Proxy) Unsubscribe(name string, l observe.Listener) {
	p.Lock()
	defer p.Unlock()
	for i, have := range p.subs[name] {
		if have == l {
			p.subs[name] = append(p.subs[name][:i:i], p.subs[name][i+1:]...)
			return
		}
	}
}

// heard applies a remote change to the mirror and notifies.
func (p *Proxy) heard(name string, value interface{}) {
	p.Lock()
	old, had := p.mirror[name]
	if observe.IsUnreadable(value) {
		delete(p.mirror, name)
	} else {
		p.mirror[name] = value
	}
	ls := append([]observe.Listener{}, p.subs[name]...)
	ls = append(ls, p.subs[""]...)
	p.Unlock()

	if !had {
		old = observe.Unreadable
	}
	for _, l := range ls {
		l.PropertyChanged(p, name, old, value)
	}
}
