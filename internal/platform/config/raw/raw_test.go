package raw

import "testing"

func TestGetAndPrefix(t *testing.T) {
	t.Setenv("LOG_LEVEL", "  warn  ")
	c := New().Prefix("LOG_")
	if got := c.Get("LEVEL", "info"); got != "warn" {
		t.Fatalf("Get = %q, want warn", got)
	}
	if got := c.Get("MISSING", "fallback"); got != "fallback" {
		t.Fatalf("Get missing = %q", got)
	}
	nested := New().Prefix("A_").Prefix("B_")
	t.Setenv("A_B_X", "y")
	if got := nested.Get("X", ""); got != "y" {
		t.Fatalf("nested prefix Get = %q", got)
	}
}

func TestGetBool(t *testing.T) {
	cases := []struct {
		val  string
		def  bool
		want bool
	}{
		{"1", false, true},
		{"true", false, true},
		{"yes", false, true},
		{"TRUE", false, true},
		{"0", true, false},
		{"no", true, false},
		{"", true, true},
		{"", false, false},
	}
	for _, c := range cases {
		t.Setenv("X_FLAG", c.val)
		if got := New().Prefix("X_").GetBool("FLAG", c.def); got != c.want {
			t.Fatalf("GetBool(%q, %v) = %v, want %v", c.val, c.def, got, c.want)
		}
	}
}

func TestGetInt(t *testing.T) {
	cases := []struct {
		val  string
		def  int
		want int
	}{
		{"42", 0, 42},
		{"0", 7, 0},
		{"", 7, 7},
		{"-3", 7, 7},   // negatives rejected
		{"12x", 7, 7},  // non-numeric rejected
		{"  9 ", 0, 9}, // trimmed
	}
	for _, c := range cases {
		t.Setenv("X_N", c.val)
		if got := New().Prefix("X_").GetInt("N", c.def); got != c.want {
			t.Fatalf("GetInt(%q, %d) = %d, want %d", c.val, c.def, got, c.want)
		}
	}
}
