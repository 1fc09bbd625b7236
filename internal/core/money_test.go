package core

import "testing"

func TestParseDecimalToCents(t *testing.T) {
	cases := []struct {
		in  string
		out int64
		ok  bool
	}{
		{"1", 100, true},
		{"1.0", 100, true},
		{"1.23", 123, true},
		{"1,23", 123, true},
		{"0.01", 1, true},
		{"1.005", 101, true}, // half-up rounding
		{" 2.50 ", 250, true},
		{"-1", 0, false},
		{"+1", 0, false},
		{"0", 0, false},
		{"abc", 0, false},
		{"1.2.3", 0, false},
		{"", 0, false},
	}
	for _, tc := range cases {
		got, err := ParseDecimalToCents(tc.in)
		if tc.ok {
			if err != nil || got != tc.out {
				t.Fatalf("%q expected %d, got %d (err=%v)", tc.in, tc.out, got, err)
			}
		} else {
			if err == nil {
				t.Fatalf("%q expected error", tc.in)
			}
		}
	}
}

func TestParseMoney(t *testing.T) {
	cases := []struct {
		in  string
		out int64
		ok  bool
	}{
		{"12.34", 1234, true},
		{"-7,5", -750, true},
		{"-0.005", -1, true},
		{"0", 0, true},
		{"1e2", 10000, true},
		{"x", 0, false},
		{"  ", 0, false},
		{"9999999999.99", MaxAmountCents, true},
		{"-9999999999.99", -MaxAmountCents, true},
		{"10000000000", 0, false},
		{"922337203685477.58", 0, false},
	}
	for _, tc := range cases {
		got, err := ParseMoney(tc.in)
		if tc.ok && (err != nil || got.Cents != tc.out) {
			t.Errorf("ParseMoney(%q) = %d, %v, want %d", tc.in, got.Cents, err, tc.out)
		}
		if !tc.ok && err == nil {
			t.Errorf("ParseMoney(%q) expected error", tc.in)
		}
	}
}

func TestMoneyString(t *testing.T) {
	cases := map[int64]string{
		0:     "0.00",
		5:     "0.05",
		1250:  "12.50",
		-1250: "-12.50",
	}
	for cents, want := range cases {
		if got := Cents(cents).String(); got != want {
			t.Errorf("Cents(%d).String() = %q, want %q", cents, got, want)
		}
	}
}

func TestMoneyArithmetic(t *testing.T) {
	a, b := Cents(1500), Cents(-400)
	if got := a.Add(b); got.Cents != 1100 {
		t.Errorf("Add = %d, want 1100", got.Cents)
	}
	if got := a.Sub(b); got.Cents != 1900 {
		t.Errorf("Sub = %d, want 1900", got.Cents)
	}
	if got := b.Abs(); got.Cents != 400 {
		t.Errorf("Abs = %d, want 400", got.Cents)
	}
	if got := a.Neg(); got.Cents != -1500 {
		t.Errorf("Neg = %d, want -1500", got.Cents)
	}
}

func TestPercentOf(t *testing.T) {
	tests := []struct {
		name  string
		m     Money
		total Money
		want  float64
	}{
		{"half", Cents(50), Cents(100), 50},
		{"over", Cents(300), Cents(200), 150},
		{"zero total", Cents(50), Cents(0), 0},
		{"negative total", Cents(50), Cents(-10), 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.m.PercentOf(tt.total); got != tt.want {
				t.Errorf("PercentOf() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestMoneyText(t *testing.T) {
	var m Money
	if err := m.UnmarshalText([]byte("19,99")); err != nil {
		t.Fatalf("UnmarshalText: %v", err)
	}
	if m.Cents != 1999 {
		t.Fatalf("cents = %d, want 1999", m.Cents)
	}
	b, _ := m.MarshalText()
	if string(b) != "19.99" {
		t.Fatalf("MarshalText = %q, want 19.99", b)
	}
	if err := m.UnmarshalText([]byte("nope")); err == nil {
		t.Fatal("expected error for invalid text")
	}
}

func TestMoneyInRange(t *testing.T) {
	cases := []struct {
		cents int64
		want  bool
	}{
		{0, true},
		{MaxAmountCents, true},
		{-MaxAmountCents, true},
		{MaxAmountCents + 1, false},
		{-MaxAmountCents - 1, false},
	}
	for _, tc := range cases {
		if got := Cents(tc.cents).InRange(); got != tc.want {
			t.Errorf("Cents(%d).InRange() = %v, want %v", tc.cents, got, tc.want)
		}
	}
	if err := Cents(MaxAmountCents + 1).Validate(); err == nil {
		t.Error("Validate() on out of range target = nil, want error")
	}
}
