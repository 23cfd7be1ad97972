// Command vgcstress is a demonstration/stress program exercising
// gc.Collector under sustained allocation churn, grounded on the
// original collector's own stress_test.c and benchmark_gc.cpp. It is
// explicitly out of scope for the collector core (spec.md §1) — it
// consumes only the public surface in package gc.
package main

import (
	"flag"
	"fmt"
	"os"
	"unsafe"

	"golang.org/x/text/language"
	"golang.org/x/text/message"

	"github.com/voidvoxel/gc/gc"
)

type entity struct {
	name     unsafe.Pointer
	position [3]float32
}

func doSomething(c *gc.Collector) error {
	ptr, err := c.Malloc(uintptr(unsafe.Sizeof(entity{})))
	if err != nil {
		return err
	}
	e := (*entity)(ptr)

	name, err := c.Strdup("entity")
	if err != nil {
		return err
	}
	e.name = name

	arr, err := c.Calloc(1024, 8)
	if err != nil {
		return err
	}
	*(*int64)(arr) = 10
	return nil
}

func main() {
	iterations := flag.Int("iterations", 200000, "allocation iterations to run")
	flag.Parse()

	var anchor int
	c := gc.New(unsafe.Pointer(&anchor))
	defer c.Stop()

	for i := 0; i < *iterations; i++ {
		if err := doSomething(c); err != nil {
			fmt.Fprintf(os.Stderr, "vgcstress: iteration %d: %v\n", i, err)
			os.Exit(1)
		}
	}

	freed := c.Collect()

	var s gc.Stats
	c.ReadStats(&s)

	p := message.NewPrinter(language.English)
	p.Printf("iterations:        %d\n", *iterations)
	p.Printf("live blocks:       %d\n", s.LiveBlocks)
	p.Printf("registry capacity: %d\n", s.RegistryCapacity)
	p.Printf("bytes allocated:   %d\n", s.BytesAllocated)
	p.Printf("bytes freed:       %d\n", s.BytesFreed)
	p.Printf("sweeps:            %d\n", s.Sweeps)
	p.Printf("final collect freed %d bytes\n", freed)
}
