//go:build go1.18

package domain

import (
	"testing"
)

// FuzzParseEntityID tests that parsing never panics on arbitrary input
// and always returns either a valid ID or an error.
//
// Trust boundary functions must handle arbitrary input safely; fuzz tests
// verify no panics and consistent invariants.
func FuzzParseEntityID(f *testing.F) {
	// Seed corpus with interesting inputs
	f.Add("")
	f.Add("550e8400-e29b-41d4-a716-446655440000")
	f.Add("00000000-0000-0000-0000-000000000000")
	f.Add("not-a-uuid")
	f.Add("'; DROP TABLE entities;--")
	f.Add(string([]byte{0x00, 0x01, 0x02}))
	f.Add("550e8400-e29b-41d4-a716-446655440000\x00suffix")

	f.Fuzz(func(t *testing.T, input string) {
		id, err := ParseEntityID(input)

		// Either valid ID or error, never both
		if err == nil {
			roundTrip, err2 := ParseEntityID(id.String())
			if err2 != nil {
				t.Errorf("valid ID failed round-trip: %v", err2)
			}
			if roundTrip != id {
				t.Error("round-trip changed ID value")
			}
		}
	})
}
