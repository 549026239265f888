package outline

import "testing"

func TestParseMode(t *testing.T) {
	cases := map[string]Mode{
		"auto":     ModeAuto,
		" Manual ": ModeManual,
		"HYBRID":   ModeHybrid,
		"":         ModeAuto,
		"fancy":    ModeAuto,
	}
	for in, want := range cases {
		if got := ParseMode(in); got != want {
			t.Errorf("ParseMode(%q): expected %q, got %q", in, want, got)
		}
	}
}

func TestParseDepth(t *testing.T) {
	cases := map[string]int{
		"3":   3,
		"1":   1,
		"5":   5,
		"9":   5,
		"0":   1,
		"-2":  2,
		"abc": 1,
		"4px": 4,
		"":    1,
	}
	for in, want := range cases {
		if got := ParseDepth(in); got != want {
			t.Errorf("ParseDepth(%q): expected %d, got %d", in, want, got)
		}
	}
	if got := ParseDepth("999999999999999999999"); got != MaxDepth {
		t.Errorf("expected huge depth to clamp to %d, got %d", MaxDepth, got)
	}
}

func TestMaxLevel(t *testing.T) {
	for depth, want := range map[int]int{1: 2, 3: 4, 5: 6, 9: 6, -1: 2} {
		if got := MaxLevel(depth); got != want {
			t.Errorf("MaxLevel(%d): expected %d, got %d", depth, want, got)
		}
	}
}

func TestParseBoolAndFalseLike(t *testing.T) {
	for _, s := range []string{"1", "true", "YES", " on "} {
		if !ParseBool(s) {
			t.Errorf("expected ParseBool(%q) to be true", s)
		}
		if IsFalseLike(s) {
			t.Errorf("expected IsFalseLike(%q) to be false", s)
		}
	}
	for _, s := range []string{"0", "false", "No", "OFF"} {
		if ParseBool(s) {
			t.Errorf("expected ParseBool(%q) to be false", s)
		}
		if !IsFalseLike(s) {
			t.Errorf("expected IsFalseLike(%q) to be true", s)
		}
	}
	if ParseBool("") || IsFalseLike("") {
		t.Error("expected empty string to be neither true-like nor false-like")
	}
}

func TestOptionsFromAttributes(t *testing.T) {
	opts := OptionsFromAttributes(map[string]string{})
	if opts != DefaultOptions() {
		t.Fatalf("expected defaults, got %+v", opts)
	}

	opts = OptionsFromAttributes(map[string]string{
		"mode":      "hybrid",
		"depth":     "7",
		"numbering": "yes",
		"sticky":    "1",
		"class":     "wide wide <b>x</b>",
	})
	if opts.Mode != ModeHybrid {
		t.Errorf("expected hybrid, got %q", opts.Mode)
	}
	if opts.Depth != MaxDepth {
		t.Errorf("expected depth %d, got %d", MaxDepth, opts.Depth)
	}
	if !opts.Numbering || !opts.Sticky {
		t.Errorf("expected numbering and sticky, got %+v", opts)
	}
	if opts.Class != "wide bxb" {
		t.Errorf("expected sanitized class list, got %q", opts.Class)
	}

	opts = OptionsFromAttributes(map[string]string{"depth": "lots"})
	if opts.Depth != 1 {
		t.Errorf("expected invalid depth to clamp to 1, got %d", opts.Depth)
	}
}

func TestOptionsNormalize(t *testing.T) {
	opts := Options{Mode: "odd", Depth: 0}.Normalize()
	if opts.Mode != ModeAuto || opts.Depth != DefaultDepth {
		t.Errorf("expected auto/%d, got %+v", DefaultDepth, opts)
	}
	if got := (Options{Depth: 12}).Normalize().Depth; got != MaxDepth {
		t.Errorf("expected depth clamp to %d, got %d", MaxDepth, got)
	}
}

func TestOptionsNormalize_ZeroDepthIsUnset(t *testing.T) {
	if got := (Options{}).Normalize(); got != DefaultOptions() {
		t.Errorf("expected zero options to equal defaults, got %+v", got)
	}
	if got := (Options{Depth: -2}).Normalize().Depth; got != MinDepth {
		t.Errorf("expected negative depth to clamp to %d, got %d", MinDepth, got)
	}
	if got := OptionsFromAttributes(map[string]string{"depth": "0"}).Depth; got != MinDepth {
		t.Errorf("expected depth attribute 0 to clamp to %d, got %d", MinDepth, got)
	}
}
