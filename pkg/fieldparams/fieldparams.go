// Package fieldparams loads the prime-field parameters (p, alpha, q, the
// power of q dividing p-1, and the prime factors of p-1) that the offline
// parameter-search tool produces and every participant needs to agree on
// before running the protocol. Searching for such a prime is explicitly out
// of scope for the online protocol (spec.md §1); this package loads and
// validates an already-generated file, and saves one in the same format.
package fieldparams

import (
	"encoding/json"
	"fmt"
	"math/big"
	"os"

	"github.com/otmpsi2023/OT-MP-PSI/pkg/elgamal"
)

// document is the on-disk JSON shape: all big integers are stored as
// base-10 strings, since encoding/json has no native big-integer type.
type document struct {
	P            string   `json:"p"`
	Alpha        string   `json:"alpha"`
	Q            string   `json:"q"`
	PowerQ       int      `json:"powerQ"`
	PrimeFactors []string `json:"primeFactors"`
}

// Load reads a FieldParams from a JSON file produced by cmd/otmpsi-genprime.
func Load(path string) (*elgamal.FieldParams, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("fieldparams: reading %s: %w", path, err)
	}
	var doc document
	if err := json.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("fieldparams: parsing %s: %w", path, err)
	}
	return fromDocument(doc)
}

func fromDocument(doc document) (*elgamal.FieldParams, error) {
	p, ok := new(big.Int).SetString(doc.P, 10)
	if !ok {
		return nil, fmt.Errorf("fieldparams: invalid p %q", doc.P)
	}
	alpha, ok := new(big.Int).SetString(doc.Alpha, 10)
	if !ok {
		return nil, fmt.Errorf("fieldparams: invalid alpha %q", doc.Alpha)
	}
	q, ok := new(big.Int).SetString(doc.Q, 10)
	if !ok {
		return nil, fmt.Errorf("fieldparams: invalid q %q", doc.Q)
	}
	factors := make([]*big.Int, len(doc.PrimeFactors))
	for i, s := range doc.PrimeFactors {
		f, ok := new(big.Int).SetString(s, 10)
		if !ok {
			return nil, fmt.Errorf("fieldparams: invalid prime factor %q", s)
		}
		factors[i] = f
	}
	if doc.PowerQ < 1 {
		return nil, fmt.Errorf("fieldparams: powerQ must be at least 1, got %d", doc.PowerQ)
	}
	return &elgamal.FieldParams{
		P:            p,
		Alpha:        alpha,
		Q:            q,
		PowerQ:       doc.PowerQ,
		PrimeFactors: factors,
	}, nil
}

// Save writes params to path in the same JSON shape Load expects.
func Save(path string, params *elgamal.FieldParams) error {
	doc := document{
		P:      params.P.String(),
		Alpha:  params.Alpha.String(),
		Q:      params.Q.String(),
		PowerQ: params.PowerQ,
	}
	for _, f := range params.PrimeFactors {
		doc.PrimeFactors = append(doc.PrimeFactors, f.String())
	}
	data, err := json.MarshalIndent(doc, "", "  ")
	if err != nil {
		return fmt.Errorf("fieldparams: marshaling: %w", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("fieldparams: writing %s: %w", path, err)
	}
	return nil
}
