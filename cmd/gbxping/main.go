// Command gbxping connects to a GBXRemote 2 dedicated server, performs the
// handshake, issues one diagnostic call, and disconnects — a runnable
// version of the connect→call→assert shape the session package's own
// tests exercise against an in-process fake server.
package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"strings"
	"time"

	"gbxremote/client"
	"gbxremote/session"
)

// nullHost discards disconnect/callback notifications except for logging
// them; gbxping has no UI to forward them to.
type nullHost struct{}

func (nullHost) OnDisconnect(reason string) {
	log.Printf("gbxping: disconnected: %s", reason)
}

func (nullHost) OnCallback(method string, params []any) {
	log.Printf("gbxping: callback %s%v", method, params)
}

func main() {
	addr := flag.String("addr", "127.0.0.1:5000", "host:port of the GBXRemote 2 server")
	timeout := flag.Duration("timeout", 10*time.Second, "dial and call timeout")
	flag.Parse()

	host, port, err := splitAddr(*addr)
	if err != nil {
		log.Fatalf("gbxping: %v", err)
	}

	c := client.New(nullHost{}, session.Options{}.WithDefaultErrorPolicy())

	ctx, cancel := context.WithTimeout(context.Background(), *timeout)
	defer cancel()

	ok, err := c.Connect(ctx, host, port)
	if err != nil {
		log.Fatalf("gbxping: connect: %v", err)
	}
	if !ok {
		log.Fatal("gbxping: handshake rejected: not a GBXRemote 2 server")
	}
	fmt.Printf("connected to %s\n", *addr)

	value, err := c.Call(ctx, "system.listMethods")
	if err != nil {
		log.Fatalf("gbxping: call: %v", err)
	}
	if client.NotAvailable(value) {
		fmt.Println("system.listMethods: not available")
	} else {
		fmt.Printf("system.listMethods: %v\n", value)
	}

	c.Disconnect()
}

func splitAddr(addr string) (host string, port int, err error) {
	idx := strings.LastIndex(addr, ":")
	if idx < 0 {
		return "", 0, fmt.Errorf("invalid address %q, want host:port", addr)
	}
	host = addr[:idx]
	if _, err := fmt.Sscanf(addr[idx+1:], "%d", &port); err != nil {
		return "", 0, fmt.Errorf("invalid port in %q: %w", addr, err)
	}
	return host, port, nil
}
