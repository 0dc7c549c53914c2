package aggregates

import (
	"errors"
	"fmt"
	"strings"
)

// WriteTxOwnership names who begins and commits a write transaction.
type WriteTxOwnership string

// WriteTxOwnedByAggregate: every write method opens and commits its own transaction.
// Callers never hand one in.
const WriteTxOwnedByAggregate WriteTxOwnership = "aggregate_owned"

// ReadPolicy limits the reads an aggregate performs.
type ReadPolicy string

// ReadPolicyInvariantScoped: an aggregate only reads what a write needs to keep its
// invariant. Listing, counting and ranking stay in services.
const ReadPolicyInvariantScoped ReadPolicy = "invariant_scoped_reads"

// Contract is the write boundary an aggregate declares for itself.
type Contract struct {
	Name             string
	WriteTxOwnership WriteTxOwnership
	ReadPolicy       ReadPolicy
	// Invariant is what holds for the aggregate's rows after every commit.
	Invariant string
}

type Aggregate interface {
	Contract() Contract
}

func (c Contract) RequiresAggregateOwnedTx() bool {
	return c.WriteTxOwnership == WriteTxOwnedByAggregate
}

// Check returns every rule c breaks, joined.
func (c Contract) Check() error {
	name := strings.TrimSpace(c.Name)
	var errs []error
	if name == "" {
		name = "<unnamed>"
		errs = append(errs, errors.New("contract has no name"))
	}
	if !c.RequiresAggregateOwnedTx() {
		errs = append(errs, fmt.Errorf("%s: write tx ownership %q, want %q", name, c.WriteTxOwnership, WriteTxOwnedByAggregate))
	}
	if c.ReadPolicy != ReadPolicyInvariantScoped {
		errs = append(errs, fmt.Errorf("%s: read policy %q, want %q", name, c.ReadPolicy, ReadPolicyInvariantScoped))
	}
	if strings.TrimSpace(c.Invariant) == "" {
		errs = append(errs, fmt.Errorf("%s: no invariant declared", name))
	}
	return errors.Join(errs...)
}

// CheckContracts checks each wired aggregate. Two aggregates may not share a name.
func CheckContracts(aggs ...Aggregate) error {
	seen := make(map[string]bool, len(aggs))
	var errs []error
	for i, agg := range aggs {
		if agg == nil {
			errs = append(errs, fmt.Errorf("aggregate %d is nil", i))
			continue
		}
		c := agg.Contract()
		if err := c.Check(); err != nil {
			errs = append(errs, err)
		}
		if c.Name != "" && seen[c.Name] {
			errs = append(errs, fmt.Errorf("%s: declared twice", c.Name))
		}
		seen[c.Name] = true
	}
	return errors.Join(errs...)
}
