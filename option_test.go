package cio_test

import (
	"fmt"
	"testing"
	"time"

	"github.com/brickingsoft/rxp"

	"github.com/brimscale/cio"
)

func TestOptions_AsRxpOptions(t *testing.T) {
	opts := make([]cio.Option, 0, 1)
	opts = append(opts, cio.WithCloseTimeout(1*time.Second))
	opts = append(opts, cio.WithMaxGoroutines(10))
	opts = append(opts, cio.WithMaxReadyGoroutinesIdleDuration(2*time.Second))
	opts = append(opts, cio.WithMinGOMAXPROCS(3))

	options := cio.Options{}
	for _, opt := range opts {
		err := opt(&options)
		if err != nil {
			t.Fatal(err)
		}
	}
	rops := options.AsRxpOptions()
	rps := rxp.Options{}
	for _, rop := range rops {
		err := rop(&rps)
		if err != nil {
			t.Fatal(err)
		}
	}
	t.Log(fmt.Sprintf("%+v", rps))
}

func TestWithRingEntries(t *testing.T) {
	options := cio.Options{}
	if err := cio.WithRingEntries(256)(&options); err != nil {
		t.Fatal(err)
	}
	if options.RingEntries != 256 {
		t.Fatal("ring entries:", options.RingEntries)
	}
	if err := cio.WithRingEntries(0)(&options); err != nil {
		t.Fatal(err)
	}
	if options.RingEntries != 256 {
		t.Fatal("zero entries overwrote the value")
	}
}
