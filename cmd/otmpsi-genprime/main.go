// Command otmpsi-genprime searches offline for a field parameter set (p,
// alpha, q, q's power in p-1, and the prime factors of p-1) suitable for
// running the OT-MPSI protocol, and writes it to a file pkg/fieldparams can
// load. It is the standalone counterpart of cmd/otmpsi-cli's genprime
// subcommand.
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/otmpsi2023/OT-MP-PSI/internal/genprime"
	"github.com/otmpsi2023/OT-MP-PSI/pkg/fieldparams"
)

func main() {
	var securityBits int
	var q int64
	var power int
	var out string

	cmd := &cobra.Command{
		Use:   "otmpsi-genprime",
		Short: "Generate OT-MPSI field parameters offline",
		RunE: func(cmd *cobra.Command, args []string) error {
			params, err := genprime.Generate(securityBits, q, power)
			if err != nil {
				return fmt.Errorf("generating parameters: %w", err)
			}
			if err := fieldparams.Save(out, params.Field); err != nil {
				return fmt.Errorf("saving parameters: %w", err)
			}
			fmt.Printf("p bits: %d\n", params.Field.P.BitLen())
			fmt.Printf("q: %s, power: %d\n", params.Field.Q, params.Field.PowerQ)
			fmt.Printf("large prime factor: %s\n", params.LargePrime)
			fmt.Printf("second factor: %s\n", params.SecondFactor)
			fmt.Printf("wrote %s\n", out)
			return nil
		},
	}

	cmd.Flags().IntVar(&securityBits, "sec", 2048, "bit length of the large prime factor of p-1")
	cmd.Flags().Int64Var(&q, "q", 11, "small prime whose power divides p-1")
	cmd.Flags().IntVar(&power, "power", 55, "exponent of q in the factorization of p-1")
	cmd.Flags().StringVar(&out, "out", "fieldparams.json", "output file path")

	if err := cmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
