// Copyright The pii-redact Authors. All Rights Reserved.
// SPDX-License-Identifier: Apache-2.0

// Package version holds build-time version information.
package version

import "fmt"

// Populated via -ldflags at build time.
var (
	Version   = "dev"
	GitCommit = "unknown"
	BuildDate = "unknown"
)

// String returns the full version line.
func String() string {
	return fmt.Sprintf("pii-redact %s (commit %s, built %s)", Version, GitCommit, BuildDate)
}
