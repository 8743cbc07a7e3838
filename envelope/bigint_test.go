package envelope

import (
	"encoding/json"
	"math/big"
	"testing"
)

func TestBigInt_RoundTrip(t *testing.T) {
	tests := []struct {
		name string
		dec  string
	}{
		{name: "above int64", dec: "9223372036854775815"}, // 2^63 + 7
		{name: "above safe double", dec: "9007199254740993"},
		{name: "u128 scale", dec: "340282366920938463463374607431768211455"},
		{name: "zero", dec: "0"},
		{name: "negative", dec: "-123456789012345678901234567890"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			orig, err := ParseBigInt(tt.dec)
			if err != nil {
				t.Fatal(err)
			}

			raw, err := json.Marshal(orig)
			if err != nil {
				t.Fatal(err)
			}
			if string(raw) != `"`+tt.dec+`"` {
				t.Fatalf("marshaled %s, want quoted %s", raw, tt.dec)
			}

			var back BigInt
			if err := json.Unmarshal(raw, &back); err != nil {
				t.Fatal(err)
			}
			if back.Cmp(&orig.Int) != 0 {
				t.Fatalf("round trip %s -> %s", tt.dec, back.String())
			}
		})
	}
}

func TestBigInt_BareLiteral(t *testing.T) {
	// A bare JSON integer parses from its literal text, losing nothing
	// even above 2^53.
	var b BigInt
	if err := json.Unmarshal([]byte("9007199254740993"), &b); err != nil {
		t.Fatal(err)
	}
	want, _ := new(big.Int).SetString("9007199254740993", 10)
	if b.Cmp(want) != 0 {
		t.Fatalf("got %s", b.String())
	}
}

func TestBigInt_Invalid(t *testing.T) {
	for _, in := range []string{`"1.5"`, `"1e10"`, `""`, `"abc"`, `true`, `"0x10"`} {
		var b BigInt
		if err := json.Unmarshal([]byte(in), &b); err == nil {
			t.Errorf("accepted %s", in)
		}
	}
}

func TestUint64_RoundTrip(t *testing.T) {
	const max = Uint64(18446744073709551615)
	raw, err := json.Marshal(max)
	if err != nil {
		t.Fatal(err)
	}
	if string(raw) != `"18446744073709551615"` {
		t.Fatalf("marshaled %s", raw)
	}

	var back Uint64
	if err := json.Unmarshal(raw, &back); err != nil {
		t.Fatal(err)
	}
	if back != max {
		t.Fatalf("round trip lost width: %d", back)
	}

	if err := json.Unmarshal([]byte("42"), &back); err != nil {
		t.Fatal(err)
	}
	if back != 42 {
		t.Fatalf("bare literal = %d", back)
	}

	if err := json.Unmarshal([]byte(`"-1"`), &back); err == nil {
		t.Error("accepted negative value")
	}
}

func TestBigInt_InsideStruct(t *testing.T) {
	type state struct {
		Balance *BigInt `json:"balance"`
	}

	in := `{"balance":"9223372036854775815"}`
	var s state
	if err := json.Unmarshal([]byte(in), &s); err != nil {
		t.Fatal(err)
	}

	out, err := json.Marshal(s)
	if err != nil {
		t.Fatal(err)
	}
	if string(out) != in {
		t.Fatalf("got %s, want %s", out, in)
	}
}
