// Command otmpsi-cli runs one participant of the OT-MPSI protocol, either
// against a real TCP deployment (run) or a local in-process simulation
// (bench), and can also generate field parameters (genprime) and print
// build/protocol information (info).
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var (
	configPath string
	fieldPath  string
	verbose    bool

	rootCmd = &cobra.Command{
		Use:   "otmpsi-cli",
		Short: "CLI for the over-threshold multi-party private set intersection protocol",
	}

	runCmd = &cobra.Command{
		Use:   "run",
		Short: "Run one participant against its configured peers over TCP",
		RunE:  runRun,
	}

	benchCmd = &cobra.Command{
		Use:   "bench",
		Short: "Run a local in-process simulation of the full party set",
		RunE:  runBench,
	}

	genPrimeCmd = &cobra.Command{
		Use:   "genprime",
		Short: "Generate field parameters offline",
		RunE:  runGenPrime,
	}

	infoCmd = &cobra.Command{
		Use:   "info",
		Short: "Print protocol information",
		RunE:  runInfo,
	}
)

func init() {
	rootCmd.PersistentFlags().StringVarP(&configPath, "config", "c", "", "participant config JSON file")
	rootCmd.PersistentFlags().StringVarP(&fieldPath, "field", "f", "", "field parameters JSON file")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "verbose output")

	genPrimeCmd.Flags().Int("sec", 2048, "bit length of the large prime factor of p-1")
	genPrimeCmd.Flags().Int64("q", 11, "small prime whose power divides p-1")
	genPrimeCmd.Flags().Int("power", 55, "exponent of q in the factorization of p-1")
	genPrimeCmd.Flags().String("out", "fieldparams.json", "output file path")

	benchCmd.Flags().String("elements", "", "comma-separated JSON files, one per party, each a list of uint32 elements")

	rootCmd.AddCommand(runCmd, benchCmd, genPrimeCmd, infoCmd)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func runInfo(cmd *cobra.Command, args []string) error {
	fmt.Println("OT-MPSI CLI")
	fmt.Println()
	fmt.Println("Protocol: over-threshold multi-party private set intersection")
	fmt.Println("  The server learns which of its own elements occur at least a")
	fmt.Println("  configured threshold number of times across every party's set;")
	fmt.Println("  clients learn nothing.")
	fmt.Println()
	fmt.Println("Variants:")
	fmt.Println("  base      one mutual decryption per Bloom filter position the")
	fmt.Println("            server's own set hits, padded with dummy rounds")
	fmt.Println("  enhanced  one mutual decryption per server element, after")
	fmt.Println("            homomorphically combining its k hashed positions")
	return nil
}
