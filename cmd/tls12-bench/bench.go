package main

import (
	"crypto/rand"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/luxfi/tls12/pkg/ecp"
	"github.com/luxfi/tls12/pkg/mpi"
)

func runBenchmark(cmd *cobra.Command, args []string) error {
	if err := benchModExp(iterations); err != nil {
		return err
	}
	registry, err := ecp.Registry()
	if err != nil {
		return fmt.Errorf("load curve registry: %w", err)
	}
	for _, id := range ecp.Preference() {
		g := registry[id]
		if benchCurve != "" && g.Name != benchCurve {
			continue
		}
		if err := benchScalarMul(g, iterations); err != nil {
			return err
		}
	}
	return nil
}

func benchModExp(n int) error {
	// A 2048-bit-ish toy modulus: odd, large enough to exercise the
	// sliding window and Montgomery path at a realistic limb count.
	mod := mpi.New()
	if err := mod.FillRandom(rand.Reader, 256); err != nil {
		return fmt.Errorf("bench modexp: seed modulus: %w", err)
	}
	mod.SetBit(0, 1) // force odd

	base := mpi.New()
	if err := base.FillRandom(rand.Reader, 256); err != nil {
		return fmt.Errorf("bench modexp: seed base: %w", err)
	}
	exp := mpi.New()
	if err := exp.FillRandom(rand.Reader, 256); err != nil {
		return fmt.Errorf("bench modexp: seed exponent: %w", err)
	}

	out := mpi.New()
	scratch := mpi.NewScratch()
	start := time.Now()
	for i := 0; i < n; i++ {
		if err := mpi.ModExp(out, base, exp, mod, scratch); err != nil {
			return fmt.Errorf("bench modexp: %w", err)
		}
	}
	elapsed := time.Since(start)
	fmt.Printf("ModExp (2048-bit-class): %d iterations in %v (%v/op)\n", n, elapsed, elapsed/time.Duration(n))
	return nil
}

func benchScalarMul(g *ecp.Group, n int) error {
	d, q, err := g.GenerateKeyPair(rand.Reader)
	if err != nil {
		return fmt.Errorf("bench scalarmul %s: keygen: %w", g.Name, err)
	}

	start := time.Now()
	for i := 0; i < n; i++ {
		if _, err := g.ScalarMul(d, q, rand.Reader); err != nil {
			return fmt.Errorf("bench scalarmul %s: %w", g.Name, err)
		}
	}
	elapsed := time.Since(start)
	fmt.Printf("ScalarMul %-12s: %d iterations in %v (%v/op)\n", g.Name, n, elapsed, elapsed/time.Duration(n))
	return nil
}

func runInfo(cmd *cobra.Command, args []string) error {
	registry, err := ecp.Registry()
	if err != nil {
		return fmt.Errorf("load curve registry: %w", err)
	}
	fmt.Println("Registered curves (server preference order):")
	for _, id := range ecp.Preference() {
		g := registry[id]
		fmt.Printf("  %-12s wire-id=0x%04x kind=%v pbits=%d nbits=%d\n", g.Name, g.WireID, g.Kind, g.Pbits, g.Nbits)
	}
	return nil
}
