package coins

import (
	"testing"
)

func TestLookup(t *testing.T) {
	coin, ok := Lookup("matic-network")
	if !ok {
		t.Fatalf("expected matic-network to be known")
	}
	if coin.Name != "Matic" {
		t.Fatalf("unexpected name: %s", coin.Name)
	}

	if _, ok := Lookup("dogecoin"); ok {
		t.Fatalf("dogecoin should not be known")
	}
}

func TestDefaultIsFirst(t *testing.T) {
	if Default().ID != "bitcoin" {
		t.Fatalf("unexpected default: %s", Default().ID)
	}
}

func TestAllReturnsCopy(t *testing.T) {
	list := All()
	list[0].ID = "mutated"
	if All()[0].ID != "bitcoin" {
		t.Fatalf("All should return a copy")
	}
}
