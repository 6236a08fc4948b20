package inventorycheck

import "testing"

func TestNormalizeName(t *testing.T) {
	cases := []struct {
		in   string
		want string
	}{
		{in: "", want: ""},
		{in: "   ", want: ""},
		{in: "Acetaminophen", want: "acetaminophen"},
		{in: "  Lisinopril 10mg  ", want: "lisinopril 10mg"},
		{in: "Amoxicillin/Clavulanate", want: "amoxicillin clavulanate"},
		{in: "EPINEPHrine (0.3 mg) Auto-Injector", want: "epinephrine 0 3 mg auto injector"},
		{in: "sodium   chloride\t0.9%", want: "sodium chloride 0 9"},
		{in: "!!!", want: ""},
	}
	for _, tc := range cases {
		if got := NormalizeName(tc.in); got != tc.want {
			t.Fatalf("NormalizeName(%q) = %q, want %q", tc.in, got, tc.want)
		}
	}
}

func TestNormalizeNameIdempotent(t *testing.T) {
	inputs := []string{
		"Acetaminophen 500mg Tablets",
		"  Mixed-CASE (strange)  name!!",
		"中文 name-with-unicode",
		"",
	}
	for _, in := range inputs {
		once := NormalizeName(in)
		if twice := NormalizeName(once); twice != once {
			t.Fatalf("normalize not idempotent for %q: %q then %q", in, once, twice)
		}
	}
}
