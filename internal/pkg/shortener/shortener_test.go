package shortener

import "testing"

func TestEncodeDecodeRoundTrip(t *testing.T) {
	cases := []uint{0, 1, 61, 62, 63, 12345, 999999999}

	for _, id := range cases {
		encoded := EncodeID(id)
		if encoded == "" {
			t.Fatalf("EncodeID(%d) returned empty string", id)
		}
		if got := DecodeID(encoded); got != id {
			t.Errorf("DecodeID(EncodeID(%d)) = %d", id, got)
		}
	}
}

func TestEncodeKnownValues(t *testing.T) {
	cases := map[uint]string{
		0:  "0",
		9:  "9",
		10: "a",
		61: "Z",
		62: "10",
	}

	for id, want := range cases {
		if got := EncodeID(id); got != want {
			t.Errorf("EncodeID(%d) = %q, want %q", id, got, want)
		}
	}
}

func TestDecodeSkipsInvalidCharacters(t *testing.T) {
	if got, want := DecodeID("1-0"), DecodeID("10"); got != want {
		t.Errorf("DecodeID with invalid char = %d, want %d", got, want)
	}
}
