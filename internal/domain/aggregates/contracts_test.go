package aggregates

import (
	"strings"
	"testing"
)

type fixedContract Contract

func (f fixedContract) Contract() Contract { return Contract(f) }

func TestDeclaredContractsPassCheck(t *testing.T) {
	for _, c := range []Contract{
		CityAggregateContract,
		CountryAggregateContract,
		ContinentAggregateContract,
		ContinentResolverContract,
	} {
		if err := c.Check(); err != nil {
			t.Fatalf("%s: %v", c.Name, err)
		}
		if !c.RequiresAggregateOwnedTx() {
			t.Fatalf("%s: want aggregate-owned tx", c.Name)
		}
	}
}

func TestCheckContractsReportsEveryBrokenRule(t *testing.T) {
	err := CheckContracts(
		fixedContract(CityAggregateContract),
		fixedContract(CityAggregateContract),
		fixedContract{Name: "Geo.Loose", WriteTxOwnership: "caller_owned", ReadPolicy: "table_repo_queries"},
		nil,
	)
	if err == nil {
		t.Fatalf("want error")
	}
	for _, want := range []string{
		"Geo.CityAggregate: declared twice",
		`Geo.Loose: write tx ownership "caller_owned"`,
		`Geo.Loose: read policy "table_repo_queries"`,
		"Geo.Loose: no invariant declared",
		"aggregate 3 is nil",
	} {
		if !strings.Contains(err.Error(), want) {
			t.Fatalf("missing %q in: %v", want, err)
		}
	}

	if err := CheckContracts(fixedContract{}); err == nil || !strings.Contains(err.Error(), "contract has no name") {
		t.Fatalf("unnamed contract: got=%v", err)
	}
}
