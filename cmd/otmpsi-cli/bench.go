package main

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/otmpsi2023/OT-MP-PSI/internal/simnet"
	"github.com/otmpsi2023/OT-MP-PSI/pkg/bloomfilter"
	"github.com/otmpsi2023/OT-MP-PSI/pkg/config"
	"github.com/otmpsi2023/OT-MP-PSI/pkg/fieldparams"
	"github.com/otmpsi2023/OT-MP-PSI/pkg/party"
	"github.com/otmpsi2023/OT-MP-PSI/protocol/otmpsi"
)

func init() {
	benchCmd.Flags().String("configs", "", "comma-separated participant config JSON files, one per party")
}

// runBench drives every configured party concurrently in one process over
// internal/simnet's in-memory channels, reporting timing the way
// cmd/threshold-cli's own benchmark subcommand reports keygen/sign timing.
func runBench(cmd *cobra.Command, args []string) error {
	if fieldPath == "" {
		return fmt.Errorf("--field is required")
	}
	configsFlag, _ := cmd.Flags().GetString("configs")
	elementsFlag, _ := cmd.Flags().GetString("elements")
	if configsFlag == "" {
		return fmt.Errorf("--configs is required")
	}

	configPaths := strings.Split(configsFlag, ",")
	var elementPaths []string
	if elementsFlag != "" {
		elementPaths = strings.Split(elementsFlag, ",")
		if len(elementPaths) != len(configPaths) {
			return fmt.Errorf("--elements has %d entries, expected %d to match --configs", len(elementPaths), len(configPaths))
		}
	}

	field, err := fieldparams.Load(fieldPath)
	if err != nil {
		return err
	}

	cfgs := make([]*config.Config, len(configPaths))
	for i, p := range configPaths {
		cfg, err := config.Load(p)
		if err != nil {
			return err
		}
		if err := cfg.Validate(); err != nil {
			return fmt.Errorf("%s: %w", p, err)
		}
		if err := cfg.ValidateField(field); err != nil {
			return fmt.Errorf("%s: %w", p, err)
		}
		cfgs[i] = cfg
	}

	ids := cfgs[0].PartyIDs()
	networks, err := simnet.BuildNetworks(ids, cfgs[0].BufferSize)
	if err != nil {
		return err
	}

	var serverID party.ID
	for _, cfg := range cfgs {
		if cfg.IsServer {
			serverID = party.ID(cfg.LocalName)
		}
	}
	if serverID == "" {
		return fmt.Errorf("no config has isServer set")
	}

	participants := make(map[party.ID]*otmpsi.Participant, len(cfgs))
	for i, cfg := range cfgs {
		var elements []bloomfilter.Element
		if elementPaths != nil {
			elements, err = loadElements(elementPaths[i])
			if err != nil {
				return err
			}
		}
		seeds, err := resolveSeeds(cfg)
		if err != nil {
			return err
		}
		self := party.ID(cfg.LocalName)
		pt, err := otmpsi.NewParticipant(otmpsi.Options{
			Self:                  self,
			Role:                  cfg.Role(),
			PartyList:             ids,
			NumParties:            cfg.NumberOfParties,
			IntersectionThreshold: cfg.Threshold,
			NumHashFunctions:      cfg.NumberOfHashFunctions,
			MurmurSeeds:           seeds,
			BloomFilterSize:       cfg.BloomFilterSize,
			Enhanced:              cfg.Enhanced,
			Field:                 field,
		}, networks[self], elements)
		if err != nil {
			return err
		}
		participants[self] = pt
	}

	rounds := int(cfgs[0].BenchmarkRounds)
	if rounds < 1 {
		rounds = 1
	}

	fmt.Printf("\n=== OT-MPSI Bench (%d parties, %d round(s)) ===\n", len(ids), rounds)

	var total, min, max time.Duration
	min = time.Hour
	var lastResults []otmpsi.Result

	for round := 0; round < rounds; round++ {
		var dkgGroup errgroup.Group
		for _, pt := range participants {
			pt := pt
			dkgGroup.Go(pt.DistributedKeyGeneration)
		}
		if err := dkgGroup.Wait(); err != nil {
			return fmt.Errorf("round %d: distributed key generation: %w", round, err)
		}

		start := time.Now()
		var execGroup errgroup.Group
		for id, pt := range participants {
			id, pt := id, pt
			execGroup.Go(func() error {
				results, err := pt.Execute()
				if err != nil {
					return err
				}
				if id == serverID {
					lastResults = results
				}
				return nil
			})
		}
		if err := execGroup.Wait(); err != nil {
			return fmt.Errorf("round %d: execute: %w", round, err)
		}
		elapsed := time.Since(start)

		total += elapsed
		if elapsed < min {
			min = elapsed
		}
		if elapsed > max {
			max = elapsed
		}
	}

	avg := total / time.Duration(rounds)
	fmt.Printf("  Average: %v\n", avg)
	fmt.Printf("  Min:     %v\n", min)
	fmt.Printf("  Max:     %v\n", max)
	fmt.Printf("  Intersection size: %d\n", len(lastResults))
	return nil
}
