// Package outline builds, numbers and renders outline forests from scanned
// documents.
package outline

import (
	"strings"

	"github.com/dgallion1/docoutline/internal/anchor"
)

// Mode selects how the outline tree is derived.
type Mode string

const (
	ModeAuto   Mode = "auto"
	ModeManual Mode = "manual"
	ModeHybrid Mode = "hybrid"
)

// Depth bounds. Depth d includes heading levels 2..min(6, 1+d).
const (
	MinDepth     = 1
	MaxDepth     = 5
	DefaultDepth = 3
)

// ParseMode normalizes s to a known mode; anything unrecognized is ModeAuto.
func ParseMode(s string) Mode {
	switch m := Mode(strings.ToLower(strings.TrimSpace(s))); m {
	case ModeAuto, ModeManual, ModeHybrid:
		return m
	}
	return ModeAuto
}

// ClampDepth forces d into [MinDepth, MaxDepth].
func ClampDepth(d int) int {
	return max(MinDepth, min(MaxDepth, d))
}

// ParseDepth reads the leading integer of s (sign ignored, non-numeric
// input reads as 0) and clamps it.
func ParseDepth(s string) int {
	s = strings.TrimSpace(s)
	s = strings.TrimLeft(s, "+-")
	n := 0
	for i := 0; i < len(s) && s[i] >= '0' && s[i] <= '9'; i++ {
		n = n*10 + int(s[i]-'0')
		if n > MaxDepth*10 {
			break
		}
	}
	return ClampDepth(n)
}

// MaxLevel returns the deepest heading level included at depth d.
func MaxLevel(depth int) int {
	return min(6, 1+ClampDepth(depth))
}

// ParseBool reports whether s is a true-like flag: 1, true, yes or on.
func ParseBool(s string) bool {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "1", "true", "yes", "on":
		return true
	}
	return false
}

// IsFalseLike reports whether s explicitly switches something off:
// false, 0, no or off.
func IsFalseLike(s string) bool {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "false", "0", "no", "off":
		return true
	}
	return false
}

// Options are the per-outline settings an author can set on the shortcode.
type Options struct {
	Mode      Mode   `json:"mode"`
	Depth     int    `json:"depth"`
	Numbering bool   `json:"numbering"`
	Sticky    bool   `json:"sticky"`
	Class     string `json:"class,omitempty"`
}

// DefaultOptions returns auto mode, depth 3, no numbering.
func DefaultOptions() Options {
	return Options{Mode: ModeAuto, Depth: DefaultDepth}
}

// Normalize clamps depth and replaces unknown values with defaults.
//
// A zero Depth means unset and becomes DefaultDepth, so Options{} behaves
// like DefaultOptions. Every other out-of-range depth, negative ones
// included, clamps to [MinDepth, MaxDepth]. Attribute input never reaches
// the zero case: ParseDepth("0") already clamps to MinDepth.
func (o Options) Normalize() Options {
	o.Mode = ParseMode(string(o.Mode))
	if o.Depth == 0 {
		o.Depth = DefaultDepth
	}
	o.Depth = ClampDepth(o.Depth)
	o.Class = anchor.SanitizeClassList(o.Class)
	return o
}

// OptionsFromAttributes reads shortcode attributes. Missing attributes take
// their defaults; present but invalid ones fall back silently.
func OptionsFromAttributes(attrs map[string]string) Options {
	opts := DefaultOptions()
	if v, ok := attrs["mode"]; ok {
		opts.Mode = ParseMode(v)
	}
	if v, ok := attrs["depth"]; ok {
		opts.Depth = ParseDepth(v)
	}
	opts.Numbering = ParseBool(attrs["numbering"])
	opts.Sticky = ParseBool(attrs["sticky"])
	opts.Class = anchor.SanitizeClassList(attrs["class"])
	return opts
}
