package core

import "testing"

func TestPeriodKeyValidate(t *testing.T) {
	cases := []struct {
		k  PeriodKey
		ok bool
	}{
		{PeriodKey{"Aylesbury", 2025, "Jul 25"}, true},
		{PeriodKey{"", 2025, "Jul 25"}, false},
		{PeriodKey{"Aylesbury", 0, "Jul 25"}, false},
		{PeriodKey{"Aylesbury", 2025, ""}, false},
		{PeriodKey{"Aylesbury", 2025, "   "}, false},
	}
	for i, tc := range cases {
		err := tc.k.Validate()
		if tc.ok && err != nil {
			t.Fatalf("case %d expected ok, got %v", i, err)
		}
		if !tc.ok && err == nil {
			t.Fatalf("case %d expected error", i)
		}
	}
}

func TestTableTotalCents(t *testing.T) {
	table := TransactionTable{
		{Amount: Money{Cents: 100}},
		{Amount: Money{Cents: 250}},
	}
	if got := table.TotalCents(); got != 350 {
		t.Fatalf("total: got %d", got)
	}
	if got := (TransactionTable{}).TotalCents(); got != 0 {
		t.Fatalf("empty total: got %d", got)
	}
}
