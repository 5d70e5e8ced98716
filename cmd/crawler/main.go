// Command crawler is a runnable demonstration of the state machine
// crawler: it wires a toy network-device SUT (off -> on -> connected ->
// streaming) and exposes it through the cli package, the same shape as
// original_source/state_machine_crawler/cli.py's "scm = build(); cli(scm)".
package main

import (
	"fmt"
	"os"

	crawler "github.com/pombredanne/state-machine-crawler"
	"github.com/pombredanne/state-machine-crawler/cli"
)

// device is the toy system under test.
type device struct {
	poweredOn bool
	connected bool
	streaming bool
}

func buildCrawler() (*crawler.Crawler[*device], error) {
	off := crawler.NewState("demo.Off", func(d *device) (bool, error) {
		return !d.poweredOn, nil
	})
	on := crawler.NewState("demo.On", func(d *device) (bool, error) {
		return d.poweredOn && !d.connected, nil
	})
	connected := crawler.NewState("demo.Connected", func(d *device) (bool, error) {
		return d.connected && !d.streaming, nil
	})
	streaming := crawler.NewState("demo.Streaming", func(d *device) (bool, error) {
		return d.streaming, nil
	})

	off.Transition("power_on", on).Move(func(d *device) error { d.poweredOn = true; return nil }).Build()
	on.Transition("power_off", off).Move(func(d *device) error { d.poweredOn = false; return nil }).Build()
	on.Transition("connect", connected).Move(func(d *device) error { d.connected = true; return nil }).Build()
	connected.Transition("disconnect", on).Move(func(d *device) error { d.connected = false; return nil }).Build()
	connected.Transition("start_stream", streaming).Cost(2).Move(func(d *device) error {
		d.streaming = true
		return nil
	}).Build()
	streaming.Transition("stop_stream", connected).Move(func(d *device) error { d.streaming = false; return nil }).Build()

	return crawler.NewBuilder[*device]().
		RegisterStates(off, on, connected, streaming).
		Build(&device{}, off)
}

func main() {
	c, err := buildCrawler()
	if err != nil {
		fmt.Fprintf(os.Stderr, "crawler: %v\n", err)
		os.Exit(1)
	}

	cmd := cli.NewCommand("crawler", "Drive the demo network-device state machine", c)
	if err := cmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "crawler: %v\n", err)
		os.Exit(1)
	}
}
