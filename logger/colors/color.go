// Copyright (c) Kopexa GmbH
// SPDX-License-Identifier: BUSL-1.1

// Package colors defines the terminal color theme package logger's
// console writer formats log fields and levels with.
package colors

import "github.com/muesli/termenv"

var profile = termenv.ColorProfile()

// Theme is a named set of terminal colors. Severity-named fields
// (Critical/High/Medium/Low) exist so callers outside package logger can
// reuse the same palette for risk-rating output without inventing their
// own color scheme.
type Theme struct {
	Primary   termenv.Color
	Secondary termenv.Color
	Disabled  termenv.Color
	Error     termenv.Color
	Success   termenv.Color
	Critical  termenv.Color
	High      termenv.Color
	Medium    termenv.Color
	Low       termenv.Color
	Good      termenv.Color
	Unknown   termenv.Color
}

// DefaultColorTheme is the palette package logger's console writer uses.
var DefaultColorTheme = Theme{
	Primary:   profile.Color("39"),
	Secondary: profile.Color("245"),
	Disabled:  profile.Color("240"),
	Error:     profile.Color("196"),
	Success:   profile.Color("42"),
	Critical:  profile.Color("124"),
	High:      profile.Color("208"),
	Medium:    profile.Color("220"),
	Low:       profile.Color("33"),
	Good:      profile.Color("42"),
	Unknown:   profile.Color("245"),
}

// ProfileName returns a human-readable name for a termenv color profile,
// "unknown" for anything termenv hasn't defined.
func ProfileName(p termenv.Profile) string {
	switch p {
	case termenv.Ascii:
		return "Ascii"
	case termenv.ANSI:
		return "ANSI"
	case termenv.ANSI256:
		return "ANSI256"
	case termenv.TrueColor:
		return "TrueColor"
	default:
		return "unknown"
	}
}
