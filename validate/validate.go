// Package validate holds the pure input predicates guarding every
// orchestrator operation. No side effects, full-string matches only.
package validate

import "regexp"

var (
	nameRe = regexp.MustCompile(`^[A-Za-z0-9_-]{1,32}$`)
	sizeRe = regexp.MustCompile(`^[1-9][0-9]*[MG]$`)
	macRe  = regexp.MustCompile(`^([0-9A-Fa-f]{2}:){5}[0-9A-Fa-f]{2}$`)
)

// Name reports whether s is a valid VM name: 1–32 characters from
// [A-Za-z0-9_-].
func Name(s string) bool { return nameRe.MatchString(s) }

// Size reports whether s is a valid size literal: a nonzero leading digit,
// optional further digits, and a single M or G unit suffix.
func Size(s string) bool { return sizeRe.MatchString(s) }

// MAC reports whether s is a colon-separated 6-octet MAC address.
func MAC(s string) bool { return macRe.MatchString(s) }
