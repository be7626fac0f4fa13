// Command tls12-bench is a developer tool for this module: MPI/ECP
// microbenchmarks and an in-process handshake simulation driver. It is
// not a shipped TLS endpoint — there is no network listener here, only
// local exercising of the crypto core, mirroring threshold-cli's own
// bench/simulate subcommands.
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var (
	iterations int
	benchCurve string
	simCurve   string

	rootCmd = &cobra.Command{
		Use:   "tls12-bench",
		Short: "Benchmark and exercise the tls12 cryptographic core",
		Long: `A developer tool for the TLS 1.2 server cryptographic core:
microbenchmarks for multi-precision arithmetic and elliptic-curve
operations, plus an in-process simulation of a full server handshake.`,
	}

	benchCmd = &cobra.Command{
		Use:   "bench",
		Short: "Run MPI/ECP microbenchmarks",
		RunE:  runBenchmark,
	}

	simulateCmd = &cobra.Command{
		Use:   "simulate",
		Short: "Simulate a server handshake end to end, in process",
		RunE:  runSimulate,
	}

	infoCmd = &cobra.Command{
		Use:   "info",
		Short: "Show the curve registry",
		RunE:  runInfo,
	}
)

func init() {
	rootCmd.PersistentFlags().IntVarP(&iterations, "iterations", "n", 1000, "iterations per benchmark")
	benchCmd.Flags().StringVarP(&benchCurve, "curve", "c", "", "restrict curve benchmarks to one named curve (empty = all)")
	simulateCmd.Flags().StringVarP(&simCurve, "curve", "c", "secp256r1", "named curve the simulated ECDHE exchange uses")

	rootCmd.AddCommand(benchCmd, simulateCmd, infoCmd)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
