package domain

import (
	"testing"
	"unicode/utf8"
)

// FuzzParsePartyID checks that parsing never panics and that accepted IDs
// round-trip.
func FuzzParsePartyID(f *testing.F) {
	f.Add("")
	f.Add("550e8400-e29b-41d4-a716-446655440000")
	f.Add("00000000-0000-0000-0000-000000000000")
	f.Add("not-a-uuid")
	f.Add("'; DROP TABLE parties;--")
	f.Add(string([]byte{0x00, 0x01, 0x02}))
	f.Add("550e8400-e29b-41d4-a716-446655440000\x00suffix")

	f.Fuzz(func(t *testing.T, input string) {
		id, err := ParsePartyID(input)

		if err == nil {
			roundTrip, err2 := ParsePartyID(id.String())
			if err2 != nil {
				t.Errorf("valid ID failed round-trip: %v", err2)
			}
			if roundTrip != id {
				t.Error("round-trip changed ID value")
			}
			if id.IsNil() {
				t.Error("nil UUID was accepted")
			}
		}

		if !utf8.ValidString(input) && err == nil {
			t.Error("non-UTF8 input was accepted")
		}
	})
}

// FuzzParseIdempotencyKey checks that accepted keys are always version 4.
func FuzzParseIdempotencyKey(f *testing.F) {
	f.Add("550e8400-e29b-41d4-a716-446655440000")
	f.Add("6ba7b810-9dad-11d1-80b4-00c04fd430c8")
	f.Add("")

	f.Fuzz(func(t *testing.T, input string) {
		key, err := ParseIdempotencyKey(input)
		if err != nil {
			return
		}
		if key.IsNil() {
			t.Error("nil key accepted")
		}
		if _, err := ParseActorID(input); err != nil {
			t.Errorf("key accepted but generic parse rejected it: %v", err)
		}
	})
}
