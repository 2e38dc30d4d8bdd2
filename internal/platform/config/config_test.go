package config

import (
	"testing"
	"time"

	kit "rankbot/internal/platform/testkit"
)

func TestPrefixComposition(t *testing.T) {
	t.Setenv("CORE_RANKER_WORKERS", "8")
	c := New().Prefix("CORE_").Prefix("RANKER_")
	if got := c.MayInt("WORKERS", 1); got != 8 {
		t.Fatalf("MayInt via nested prefix = %d, want 8", got)
	}
}

func TestMustStringPanicsWhenMissing(t *testing.T) {
	t.Setenv("X_PRESENT", "v")
	c := New().Prefix("X_")
	if got := c.MustString("PRESENT"); got != "v" {
		t.Fatalf("MustString = %q", got)
	}
	kit.MustPanic(t, func() { c.MustString("ABSENT") })
}

func TestRequire(t *testing.T) {
	t.Setenv("X_A", "1")
	t.Setenv("X_B", "2")
	c := New().Prefix("X_")
	kit.MustNotPanic(t, func() { c.Require("A", "B") })
	kit.MustPanic(t, func() { c.Require("A", "MISSING") })
}

func TestMayHelpersDefaults(t *testing.T) {
	c := New().Prefix("NOPE_")
	if got := c.MayString("S", "d"); got != "d" {
		t.Fatalf("MayString default = %q", got)
	}
	if got := c.MayInt("I", 3); got != 3 {
		t.Fatalf("MayInt default = %d", got)
	}
	if got := c.MayBool("B", true); !got {
		t.Fatalf("MayBool default = %v", got)
	}
	if got := c.MayDuration("D", time.Minute); got != time.Minute {
		t.Fatalf("MayDuration default = %v", got)
	}
	if got := c.MayFloat64("F", 1.5); got != 1.5 {
		t.Fatalf("MayFloat64 default = %v", got)
	}
	if got := c.MayCSV("C", []string{"a"}); len(got) != 1 || got[0] != "a" {
		t.Fatalf("MayCSV default = %v", got)
	}
}

func TestMayHelpersParse(t *testing.T) {
	t.Setenv("X_I", "12")
	t.Setenv("X_IBAD", "12x")
	t.Setenv("X_B", "true")
	t.Setenv("X_BBAD", "maybe")
	t.Setenv("X_D", "250ms")
	t.Setenv("X_DBAD", "soon")
	t.Setenv("X_C", " a , b ,, c ")
	c := New().Prefix("X_")

	if got := c.MayInt("I", 0); got != 12 {
		t.Fatalf("MayInt = %d", got)
	}
	if got := c.MayInt("IBAD", 7); got != 7 {
		t.Fatalf("MayInt invalid = %d, want default", got)
	}
	if got := c.MayBool("B", false); !got {
		t.Fatalf("MayBool = %v", got)
	}
	if got := c.MayBool("BBAD", true); !got {
		t.Fatalf("MayBool invalid = %v, want default", got)
	}
	if got := c.MayDuration("D", 0); got != 250*time.Millisecond {
		t.Fatalf("MayDuration = %v", got)
	}
	if got := c.MayDuration("DBAD", time.Second); got != time.Second {
		t.Fatalf("MayDuration invalid = %v, want default", got)
	}
	got := c.MayCSV("C", nil)
	if len(got) != 3 || got[0] != "a" || got[1] != "b" || got[2] != "c" {
		t.Fatalf("MayCSV = %v", got)
	}
}
