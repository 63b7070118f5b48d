// bindhost hosts a binding declaration file: it builds the declared
// objects and bindings, binds them, and then takes ops.
//
// Ops arrive as JSON lines on stdin (see Listener), as WebSocket
// messages when -h is given (see remote.Server), and as MQTT
// messages when -mq is given.  Every mutation, wherever it came
// from, runs on one service goroutine, which is the thread that owns
// the bindings.
//
//	bindhost -f bindings.yaml -h :8080 -I
package main

import (
	"bufio"
	"context"
	"flag"
	"fmt"
	"log"
	"net/http"
	"os"

	"github.com/dave-mccloskey/beansbinding/decl"
	"github.com/dave-mccloskey/beansbinding/evaluators/ecmascript"
	"github.com/dave-mccloskey/beansbinding/remote"
)

func main() {
	var (
		declFile = flag.String("f", "bindings.yaml", "declaration filename")

		httpPort = flag.String("h", "", "HTTP port for the WebSockets service")
		httpDir  = flag.String("d", "", "directory to serve via HTTP")

		mqBroker = flag.String("mq", "", "MQTT broker URL (empty for none)")
		mqPrefix = flag.String("mq-prefix", "bind", "MQTT topic prefix")

		listenOnStdin = flag.Bool("I", true, "listen for ops on stdin")
		verbose       = flag.Bool("v", false, "log lots of wonderful things")
	)

	flag.Parse()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	d, err := decl.Load(*declFile)
	if err != nil {
		log.Fatal(err)
	}

	w, err := decl.Build(d, ecmascript.NewEvaluator())
	if err != nil {
		log.Fatal(err)
	}

	h := NewHost(w)
	h.Verbose = *verbose
	go h.Loop(ctx)

	// Bind on the service goroutine, so the initial
	// synchronization runs where all later mutations will.
	if err := h.Do(w.Bind); err != nil {
		log.Fatal(err)
	}
	log.Printf("bound %d bindings over %d objects", len(w.Context.Bindings()), len(w.Objects))

	if *httpPort != "" {
		s := remote.NewServer()
		s.Verbose = *verbose
		s.Serialize = h.Serialize
		for name, o := range w.Objects {
			s.Export(name, o)
		}
		http.Handle("/ws/api", s.Handler())

		if *httpDir != "" {
			log.Printf("HTTP serving files in %s", *httpDir)
			fs := http.FileServer(http.Dir(*httpDir))
			http.Handle("/static/", http.StripPrefix("/static", fs))
		}

		go func() {
			log.Printf("WebSockets service on %s", *httpPort)
			log.Fatal(http.ListenAndServe(*httpPort, nil))
		}()
	}

	if *mqBroker != "" {
		b := remote.NewMQTTBridge(remote.MQTTOptions{
			Broker: *mqBroker,
			Prefix: *mqPrefix,
		})
		b.Serialize = h.Serialize
		for name, o := range w.Objects {
			b.Export(name, o)
		}
		if err := b.Start(); err != nil {
			log.Fatal(err)
		}
		defer b.Stop()
	}

	if *listenOnStdin {
		if err := h.Listener(ctx, bufio.NewReader(os.Stdin), os.Stdout); err != nil {
			log.Printf("Host.Listener error %s", err)
		}
		cancel()
		return
	}

	<-ctx.Done()
	fmt.Println("done")
}
