package domain

import (
	"testing"
	"unicode/utf8"
)

// FuzzParseLocation checks that parsing never panics and that accepted
// input round-trips through String.
func FuzzParseLocation(f *testing.F) {
	f.Add("")
	f.Add("0:")
	f.Add("1:Parachain(1000)")
	f.Add("255:GlobalConsensus(Kusama)/Parachain(1000)")
	f.Add("1:/")
	f.Add(string([]byte{0xff, ':'}))

	f.Fuzz(func(t *testing.T, input string) {
		loc, err := ParseLocation(input)
		if err != nil {
			return
		}
		if !utf8.ValidString(input) {
			t.Error("non-UTF8 input was accepted")
		}
		roundTrip, err := ParseLocation(loc.String())
		if err != nil {
			t.Errorf("accepted location failed round-trip: %v", err)
		}
		if roundTrip != loc {
			t.Error("round-trip changed location")
		}
	})
}
