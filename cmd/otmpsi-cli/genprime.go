package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/otmpsi2023/OT-MP-PSI/internal/genprime"
	"github.com/otmpsi2023/OT-MP-PSI/pkg/fieldparams"
)

func runGenPrime(cmd *cobra.Command, args []string) error {
	securityBits, _ := cmd.Flags().GetInt("sec")
	q, _ := cmd.Flags().GetInt64("q")
	power, _ := cmd.Flags().GetInt("power")
	out, _ := cmd.Flags().GetString("out")

	params, err := genprime.Generate(securityBits, q, power)
	if err != nil {
		return fmt.Errorf("generating parameters: %w", err)
	}
	if err := fieldparams.Save(out, params.Field); err != nil {
		return fmt.Errorf("saving parameters: %w", err)
	}

	fmt.Printf("p bits: %d\n", params.Field.P.BitLen())
	fmt.Printf("q: %s, power: %d\n", params.Field.Q, params.Field.PowerQ)
	fmt.Printf("wrote %s\n", out)
	return nil
}
