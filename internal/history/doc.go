// Copyright (c) dapaulid 2025. All rights reserved.
// SPDX-License-Identifier: MIT

// Package history persists one record per completed stress run in a
// tab-delimited file at a platform-appropriate user-data location. Records
// can be listed grouped by command and cleared by command prefix. A missing
// results file is treated as an empty result set, never as an error.
package history
