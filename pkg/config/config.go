// Package config loads the flat JSON configuration document describing one
// participant's role, network addresses, and protocol parameters, the way
// luxfi-threshold's protocols/lss/config package loads and validates a
// party's signing configuration.
package config

import (
	"encoding/json"
	"fmt"
	"math/big"
	"os"

	"github.com/otmpsi2023/OT-MP-PSI/pkg/elgamal"
	"github.com/otmpsi2023/OT-MP-PSI/pkg/party"
)

// Config is one participant's view of the protocol setup. Field names match
// the original JSON document (setSize, bloomFilterSize, localName, ...) so
// existing experiment configs can be loaded unmodified.
type Config struct {
	SetSize               uint64   `json:"setSize"`
	BloomFilterSize       uint64   `json:"bloomFilterSize"`
	SameNum               uint64   `json:"sameNum"`
	SameSeed              uint32   `json:"sameSeed"`
	DiffSeed              uint32   `json:"diffSeed"`
	BenchmarkRounds       uint32   `json:"benchmarkRounds"`
	NumberOfParties       int      `json:"numberOfParties"`
	Threshold             int      `json:"threshold"`
	NumberOfHashFunctions int      `json:"numberOfHashFunctions"`
	IsServer              bool     `json:"isServer"`
	Port                  int      `json:"port"`
	LocalName             string   `json:"localName"`
	ServerAddress         string   `json:"serverAddress"`
	RightNeighborAddress  string   `json:"rightNeighborAddress"`
	AllParties            []string `json:"allParties"`
	BufferSize            int      `json:"bufferSize"`

	// Enhanced selects the bundled-membership-test variant (spec.md §4.5)
	// instead of the per-position decryption base variant.
	Enhanced bool `json:"enhanced"`

	// MurmurSeedBase, when set and MurmurSeeds is empty, derives the k
	// MurmurHash seeds deterministically (see pkg/bloomfilter.DeriveSeeds)
	// instead of requiring every seed to be listed explicitly.
	MurmurSeedBase string   `json:"murmurSeedBase,omitempty"`
	MurmurSeeds    []uint32 `json:"murmurhashSeeds,omitempty"`

	// FieldParamsFile points at the companion file holding p, alpha, q,
	// power_q and the prime factors of p-1 (see pkg/fieldparams).
	FieldParamsFile string `json:"fieldParamsFile"`
}

// Load reads and parses a Config from a JSON file.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("config: reading %s: %w", path, err)
	}
	var c Config
	if err := json.Unmarshal(data, &c); err != nil {
		return nil, fmt.Errorf("config: parsing %s: %w", path, err)
	}
	return &c, nil
}

// Role returns party.Server or party.Client per IsServer.
func (c *Config) Role() party.Role {
	if c.IsServer {
		return party.Server
	}
	return party.Client
}

// PartyIDs returns AllParties as typed party IDs.
func (c *Config) PartyIDs() []party.ID {
	out := make([]party.ID, len(c.AllParties))
	for i, name := range c.AllParties {
		out[i] = party.ID(name)
	}
	return out
}

// Validate checks the structural constraints of a runnable configuration:
// the threshold must not exceed the party count, the party list must
// actually contain this participant, and the hash-seed count must match
// numberOfHashFunctions. It does not check the field parameters' PowerQ
// against numberOfParties-threshold — see ValidateField for that, since
// field parameters load from a separate file.
func (c *Config) Validate() error {
	if c.NumberOfParties < 2 {
		return fmt.Errorf("config: numberOfParties must be at least 2, got %d", c.NumberOfParties)
	}
	if c.Threshold < 1 || c.Threshold > c.NumberOfParties {
		return fmt.Errorf("config: threshold %d must be in [1, %d]", c.Threshold, c.NumberOfParties)
	}
	if c.NumberOfHashFunctions < 1 {
		return fmt.Errorf("config: numberOfHashFunctions must be at least 1, got %d", c.NumberOfHashFunctions)
	}
	if c.BloomFilterSize == 0 {
		return fmt.Errorf("config: bloomFilterSize must be positive")
	}
	if c.LocalName == "" {
		return fmt.Errorf("config: localName must not be empty")
	}
	if len(c.AllParties) != c.NumberOfParties {
		return fmt.Errorf("config: allParties has %d entries, expected numberOfParties=%d",
			len(c.AllParties), c.NumberOfParties)
	}
	found := false
	for _, name := range c.AllParties {
		if name == c.LocalName {
			found = true
			break
		}
	}
	if !found {
		return fmt.Errorf("config: localName %q not present in allParties", c.LocalName)
	}
	if c.MurmurSeedBase == "" && len(c.MurmurSeeds) != c.NumberOfHashFunctions {
		return fmt.Errorf("config: murmurhashSeeds has %d entries, expected numberOfHashFunctions=%d",
			len(c.MurmurSeeds), c.NumberOfHashFunctions)
	}
	if c.BufferSize < 1 {
		return fmt.Errorf("config: bufferSize (field element byte width) must be positive")
	}
	return nil
}

// ValidateField checks the loaded field parameters' PowerQ (k, the exponent
// of q dividing p-1) against this config's party count and threshold: k
// must exceed numberOfParties-threshold, or the squaring-to-one voting
// technique can't distinguish every possible vote count, and k must not
// exceed q itself. Field parameters are loaded separately from the flat
// config document (see pkg/fieldparams), so this is a distinct check from
// Validate rather than folded into it.
func (c *Config) ValidateField(field *elgamal.FieldParams) error {
	budget := c.NumberOfParties - c.Threshold
	if field.PowerQ <= budget {
		return fmt.Errorf("config: field powerQ %d must exceed numberOfParties-threshold %d", field.PowerQ, budget)
	}
	if big.NewInt(int64(field.PowerQ)).Cmp(field.Q) > 0 {
		return fmt.Errorf("config: field powerQ %d must not exceed q %s", field.PowerQ, field.Q)
	}
	return nil
}
