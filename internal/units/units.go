// Copyright (c) dapaulid 2025. All rights reserved.
// SPDX-License-Identifier: MIT

package units

import (
	"errors"
	"fmt"
	"math"
	"regexp"
	"slices"
	"strconv"
	"strings"
	"time"
)

var (
	// ErrInvalidExpression is returned when an input contains no number/unit tokens at all.
	ErrInvalidExpression = errors.New("invalid expression")
	// ErrInvalidUnit is returned when a token carries an unknown unit alias.
	ErrInvalidUnit = errors.New("invalid unit")
)

// unit is one rung of a conversion ladder.
// The suffix is used for formatting, the aliases for parsing.
type unit struct {
	factor  float64
	suffix  string
	aliases []string
}

// durationUnits is ordered by ascending factor. Months are 30 days and years
// 365 days, matching the resolution users expect from a stress run summary.
var durationUnits = []unit{
	{1, "s", []string{"s", "sec", "", "second", "seconds"}},
	{60, "min", []string{"min", "minute", "minutes"}},
	{60 * 60, "h", []string{"h", "hour", "hours"}},
	{60 * 60 * 24, "d", []string{"d", "day", "days"}},
	{60 * 60 * 24 * 7, "w", []string{"w", "week", "weeks"}},
	{60 * 60 * 24 * 30, "mt", []string{"mt", "month", "months"}},
	{60 * 60 * 24 * 365, "a", []string{"a", "y", "year", "years"}},
}

// metricUnits is ordered by ascending factor.
var metricUnits = []unit{
	{1, "", []string{""}},
	{1_000, "K", []string{"k", "kilo", "thousand"}},
	{1_000_000, "M", []string{"m", "mega", "million"}},
	{1_000_000_000, "B", []string{"g", "giga", "b", "billion"}},
	{1_000_000_000_000, "T", []string{"t", "tera", "trillions"}},
}

// unitPattern matches one <number><alias> token. Whitespace between number
// and alias is tolerated, anything else between tokens is ignored.
var unitPattern = regexp.MustCompile(`(\d+(?:\.\d+)?)\s*([a-z]*)`)

// FormatDuration renders a duration for humans. Sub-minute values keep
// millisecond precision ("1.500s"), anything longer is decomposed on the
// duration ladder and limited to the two most significant non-zero units
// ("2h 15min").
func FormatDuration(d time.Duration) string {
	secs := d.Seconds()
	if secs < 60 {
		return fmt.Sprintf("%0.3fs", secs)
	}

	return formatUnits(secs, durationUnits, 2)
}

// ParseDuration is the inverse of FormatDuration. It accepts any combination
// of <number><alias> tokens ("90s", "2h 15min", "1.5h") and returns their sum.
func ParseDuration(s string) (time.Duration, error) {
	secs, err := parseUnits(s, durationUnits)
	if err != nil {
		return 0, err
	}

	return time.Duration(secs * float64(time.Second)), nil
}

// FormatCount abbreviates a count on the metric ladder with a single unit of
// precision ("12K"). Counts below 1000 are returned as the bare integer.
func FormatCount(n int64) string {
	if n < 1000 {
		return strconv.FormatInt(n, 10)
	}

	return formatUnits(float64(n), metricUnits, 1)
}

// ParseCount is the inverse of FormatCount, accepting metric aliases
// case-insensitively ("10k", "2 million"). Fractions are truncated after
// applying the unit factor, so "1.5k" parses to 1500.
func ParseCount(s string) (int64, error) {
	v, err := parseUnits(s, metricUnits)
	if err != nil {
		return 0, err
	}

	return int64(v), nil
}

// FormatDateTime renders a timestamp the way result listings show it.
func FormatDateTime(t time.Time) string {
	return t.Format("Mon 02 Jan 2006, 15:04:05")
}

func formatUnits(value float64, ladder []unit, maxParts int) string {
	parts := make([]string, 0, maxParts)

	for i := len(ladder) - 1; i >= 0 && len(parts) < maxParts; i-- {
		count := math.Floor(value / ladder[i].factor)
		value -= count * ladder[i].factor

		if count > 0 {
			parts = append(parts, fmt.Sprintf("%d%s", int64(count), ladder[i].suffix))
		}
	}

	return strings.Join(parts, " ")
}

func parseUnits(s string, ladder []unit) (float64, error) {
	matches := unitPattern.FindAllStringSubmatch(strings.ToLower(s), -1)
	if len(matches) == 0 {
		return 0, fmt.Errorf("%w: %s", ErrInvalidExpression, s)
	}

	value := 0.0

	for _, m := range matches {
		number, alias := m[1], m[2]

		u, ok := lookupAlias(ladder, alias)
		if !ok {
			return 0, fmt.Errorf("%w: %s", ErrInvalidUnit, alias)
		}

		n, err := strconv.ParseFloat(number, 64)
		if err != nil {
			return 0, fmt.Errorf("%w: %s", ErrInvalidExpression, s)
		}

		value += n * u.factor
	}

	return value, nil
}

func lookupAlias(ladder []unit, alias string) (unit, bool) {
	for _, u := range ladder {
		if slices.Contains(u.aliases, alias) {
			return u, true
		}
	}

	return unit{}, false
}
