package main

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/otmpsi2023/OT-MP-PSI/pkg/bloomfilter"
	"github.com/otmpsi2023/OT-MP-PSI/pkg/config"
	"github.com/otmpsi2023/OT-MP-PSI/pkg/fieldparams"
	"github.com/otmpsi2023/OT-MP-PSI/pkg/party"
	"github.com/otmpsi2023/OT-MP-PSI/pkg/ring"
	"github.com/otmpsi2023/OT-MP-PSI/protocol/otmpsi"
)

func init() {
	runCmd.Flags().String("elements", "", "JSON file holding this party's input elements (array of numbers)")
}

func runRun(cmd *cobra.Command, args []string) error {
	if configPath == "" {
		return fmt.Errorf("--config is required")
	}
	if fieldPath == "" {
		return fmt.Errorf("--field is required")
	}

	cfg, err := config.Load(configPath)
	if err != nil {
		return err
	}
	if err := cfg.Validate(); err != nil {
		return err
	}

	field, err := fieldparams.Load(fieldPath)
	if err != nil {
		return err
	}
	if err := cfg.ValidateField(field); err != nil {
		return err
	}

	elementsPath, _ := cmd.Flags().GetString("elements")
	elements, err := loadElements(elementsPath)
	if err != nil {
		return err
	}

	seeds, err := resolveSeeds(cfg)
	if err != nil {
		return err
	}

	net, err := ring.DialAndListen(ring.DialConfig{
		Self:                 party.ID(cfg.LocalName),
		Role:                 cfg.Role(),
		PartyList:            cfg.PartyIDs(),
		ListenPort:           cfg.Port,
		RightNeighborAddress: cfg.RightNeighborAddress,
		ServerAddress:        cfg.ServerAddress,
		FieldByteWidth:       cfg.BufferSize,
	})
	if err != nil {
		return fmt.Errorf("connecting to peers: %w", err)
	}

	pt, err := otmpsi.NewParticipant(otmpsi.Options{
		Self:                  net.Self(),
		Role:                  cfg.Role(),
		PartyList:             cfg.PartyIDs(),
		NumParties:            cfg.NumberOfParties,
		IntersectionThreshold: cfg.Threshold,
		NumHashFunctions:      cfg.NumberOfHashFunctions,
		MurmurSeeds:           seeds,
		BloomFilterSize:       cfg.BloomFilterSize,
		Enhanced:              cfg.Enhanced,
		Field:                 field,
	}, net, elements)
	if err != nil {
		return err
	}

	if verbose {
		fmt.Fprintf(os.Stderr, "%s: connected, running distributed key generation\n", cfg.LocalName)
	}
	if err := pt.DistributedKeyGeneration(); err != nil {
		return err
	}

	if verbose {
		fmt.Fprintf(os.Stderr, "%s: executing protocol\n", cfg.LocalName)
	}
	results, err := pt.Execute()
	if err != nil {
		return err
	}

	if cfg.IsServer {
		for _, r := range results {
			fmt.Printf("%d\t%d\n", r.Element, r.Votes)
		}
	}
	return nil
}

func loadElements(path string) ([]bloomfilter.Element, error) {
	if path == "" {
		return nil, nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading elements file %s: %w", path, err)
	}
	var raw []bloomfilter.Element
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("parsing elements file %s: %w", path, err)
	}
	return raw, nil
}

func resolveSeeds(cfg *config.Config) ([]uint32, error) {
	if len(cfg.MurmurSeeds) > 0 {
		return cfg.MurmurSeeds, nil
	}
	if cfg.MurmurSeedBase == "" {
		return nil, fmt.Errorf("config has neither murmurhashSeeds nor murmurSeedBase set")
	}
	return bloomfilter.DeriveSeeds([]byte(cfg.MurmurSeedBase), cfg.NumberOfHashFunctions), nil
}
