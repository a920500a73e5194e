package memsize

import "testing"

func TestParse(t *testing.T) {
	cases := []struct {
		in   string
		want uint64
	}{
		{"0", 0},
		{"123", 123},
		{"  123 ", 123},
		{"1k", 1 << 10},
		{"10kb", 10 << 10},
		{"256m", 256 << 20},
		{"256M", 256 << 20},
		{"256MB", 256 << 20},
		{"1g", 1 << 30},
		{"1.5g", 3 << 29},
		{"2t", 2 << 40},
	}
	for _, tc := range cases {
		got, err := Parse(tc.in)
		if err != nil {
			t.Errorf("Parse(%q): unexpected error %v", tc.in, err)
			continue
		}
		if got != tc.want {
			t.Errorf("Parse(%q) = %d, want %d", tc.in, got, tc.want)
		}
	}
}

func TestParseInvalid(t *testing.T) {
	for _, in := range []string{"", "   ", "b", "kb", "m", "banana", "-5", "1.5", "12x", "1q"} {
		if got, err := Parse(in); err == nil {
			t.Errorf("Parse(%q) = %d, want error", in, got)
		}
	}
}
