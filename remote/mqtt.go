package remote

import (
	"encoding/json"
	"flag"
	"log"
	"strings"
	"sync"
	"time"

	"github.com/dave-mccloskey/beansbinding/observe"

	mqtt "github.com/eclipse/paho.mqtt.golang"
)

// MQTTOptions configures an MQTTBridge.
type MQTTOptions struct {
	// Broker is the broker URL, like "tcp://localhost:1883".
	Broker string

	ClientID string
	Username string
	Password string

	// Prefix is the leading topic segment.  Property changes of
	// an exported object publish to <Prefix>/<object>/<property>,
	// and the bridge subscribes to <Prefix>/+/+/set for inbound
	// writes.
	Prefix string

	QoS    int
	Retain bool

	KeepAlive time.Duration

	// Quiesce is the disconnection quiescence in milliseconds.
	Quiesce uint
}

// MQTTFlags registers an MQTTOptions's fields with a flag set, in
// the style of mosquitto's command lines.  Parse the set before
// calling NewMQTTBridge.
func MQTTFlags(fs *flag.FlagSet, o *MQTTOptions) {
	fs.StringVar(&o.Broker, "h", "tcp://localhost:1883", "broker URL")
	fs.StringVar(&o.ClientID, "i", "", "client id")
	fs.StringVar(&o.Username, "u", "", "username")
	fs.StringVar(&o.Password, "P", "", "password")
	fs.StringVar(&o.Prefix, "prefix", "bind", "leading topic segment")
	fs.IntVar(&o.QoS, "q", 0, "QoS")
	fs.BoolVar(&o.Retain, "retain", false, "publish with retention")
	fs.DurationVar(&o.KeepAlive, "k", 10*time.Second, "keep-alive")
	fs.UintVar(&o.Quiesce, "quiesce", 100, "disconnection quiescence (in milliseconds)")
}

// An MQTTBridge couples Observables to an MQTT broker.
//
// Exported objects publish their property changes; messages arriving
// on <prefix>/<object>/<property>/set write the property.  The two
// topic shapes differ, so the bridge's own publications don't come
// back around as writes.
type MQTTBridge struct {
	// Serialize, when set, runs every inbound write through it.
	// See the package comment.
	Serialize func(func())

	opts   MQTTOptions
	client mqtt.Client

	sync.Mutex
	objects map[string]observe.Observable
	subs    map[string]observe.Listener
}

// NewMQTTBridge makes a bridge for the given broker.  Nothing
// connects until Start.
func NewMQTTBridge(o MQTTOptions) *MQTTBridge {
	if o.Prefix == "" {
		o.Prefix = "bind"
	}
	if o.KeepAlive == 0 {
		o.KeepAlive = 10 * time.Second
	}
	if o.Quiesce == 0 {
		o.Quiesce = 100
	}

	b := &MQTTBridge{
		opts:    o,
		objects: make(map[string]observe.Observable),
		subs:    make(map[string]observe.Listener),
	}

	copts := mqtt.NewClientOptions()
	copts.AddBroker(o.Broker)
	copts.SetClientID(o.ClientID)
	copts.SetKeepAlive(o.KeepAlive)
	copts.Username = o.Username
	copts.Password = o.Password
	copts.OnConnectionLost = func(client mqtt.Client, err error) {
		log.Printf("remote.MQTTBridge connection lost: %v", err)
	}
	copts.DefaultPublishHandler = func(client mqtt.Client, msg mqtt.Message) {
		b.inbound(msg)
	}

	b.client = mqtt.NewClient(copts)
	return b
}

// Start connects to the broker and subscribes for inbound writes.
func (b *MQTTBridge) Start() error {
	if token := b.client.Connect(); token.Wait() && token.Error() != nil {
		return token.Error()
	}
	topic := b.opts.Prefix + "/+/+/set"
	if t := b.client.Subscribe(topic, byte(b.opts.QoS), nil); t.Wait() && t.Error() != nil {
		return t.Error()
	}
	log.Printf("remote.MQTTBridge started (%s)", b.opts.Broker)
	return nil
}

// Stop disconnects, waiting the configured quiescence.
func (b *MQTTBridge) Stop() {
	b.client.Disconnect(b.opts.Quiesce)
}

// Export publishes name's property changes to
// <prefix>/<name>/<property>.
func (b *MQTTBridge) Export(name string, o observe.Observable) {
	sub := observe.Hear(func(src observe.Observable, prop string, old, new interface{}) {
		b.publish(name, prop, new)
	})

	b.Lock()
	if old := b.subs[name]; old != nil {
		b.objects[name].Unsubscribe("", old)
	}
	b.objects[name] = o
	b.subs[name] = sub
	b.Unlock()

	o.Subscribe("", sub)
}

// Unexport withdraws a name.
func (b *MQTTBridge) Unexport(name string) {
	b.Lock()
	o, sub := b.objects[name], b.subs[name]
	delete(b.objects, name)
	delete(b.subs, name)
	b.Unlock()

	if o != nil && sub != nil {
		o.Unsubscribe("", sub)
	}
}

func (b *MQTTBridge) publish(object, property string, value interface{}) {
	js, err := json.Marshal(NewValue(value))
	if err != nil {
		log.Printf("remote.MQTTBridge Marshal error %v on %#v", err, value)
		return
	}
	topic := b.opts.Prefix + "/" + object + "/" + property
	if t := b.client.Publish(topic, byte(b.opts.QoS), b.opts.Retain, js); t.Wait() && t.Error() != nil {
		log.Printf("remote.MQTTBridge publish error %v on %s", t.Error(), topic)
	}
}

// inbound handles a message on <prefix>/<object>/<property>/set.
func (b *MQTTBridge) inbound(msg mqtt.Message) {
	object, property, ok := b.parseTopic(msg.Topic())
	if !ok {
		log.Printf("remote.MQTTBridge ignoring topic %s", msg.Topic())
		return
	}

	b.Lock()
	o := b.objects[object]
	b.Unlock()
	if o == nil {
		return
	}

	var v Value
	if err := json.Unmarshal(msg.Payload(), &v); err != nil {
		// Not JSON: take the payload as a string.
		v.X = string(msg.Payload())
	}

	write := func() {
		if err := o.Set(property, v.Unwrap()); err != nil {
			log.Printf("remote.MQTTBridge Set error %v on %s", err, msg.Topic())
		}
	}

	if b.Serialize != nil {
		b.Serialize(write)
		return
	}
	write()
}

// parseTopic picks the object and property out of an inbound topic.
func (b *MQTTBridge) parseTopic(topic string) (object, property string, ok bool) {
	if !strings.HasPrefix(topic, b.opts.Prefix+"/") {
		return "", "", false
	}
	parts := strings.Split(topic[len(b.opts.Prefix)+1:], "/")
	if len(parts) != 3 || parts[2] != "set" {
		return "", "", false
	}
	return parts[0], parts[1], true
}
