// Copyright (c) dapaulid 2025. All rights reserved.
// SPDX-License-Identifier: MIT

// Package units converts durations and counts between machine values and the
// short human-readable forms used on the command line and in result listings.
// Durations use a fixed ladder from seconds up to years, counts use a metric
// ladder with K/M/B/T suffixes. Parsing accepts the same unit aliases in any
// combination, e.g. "2h 15min" or "10k".
package units
