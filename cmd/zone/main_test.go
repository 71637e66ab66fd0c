package main

import (
	"testing"

	"github.com/Garsondee/zone-crowd/internal/nav"
)

func TestParseWorld(t *testing.T) {
	got, err := parseWorld("960x540")
	if err != nil || got != (nav.Bounds{W: 960, H: 540}) {
		t.Fatalf("parseWorld = %+v, %v", got, err)
	}
	if got, err = parseWorld("12.5X8"); err != nil || got != (nav.Bounds{W: 12.5, H: 8}) {
		t.Fatalf("parseWorld upper-case = %+v, %v", got, err)
	}
	for _, bad := range []string{"", "960", "x540", "0x10", "-5x5", "axb"} {
		if _, err := parseWorld(bad); err == nil {
			t.Fatalf("parseWorld(%q) should fail", bad)
		}
	}
}
