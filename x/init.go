/*
 * SPDX-FileCopyrightText: © Hypermode Inc. <hello@hypermode.com>
 * SPDX-License-Identifier: Apache-2.0
 */

package x

import (
	"fmt"
	"runtime"
	"time"

	"github.com/golang/glog"
)

var (
	// These variables are set using -ldflags
	bookshelfVersion string
	gitBranch        string
	lastCommitSHA    string
	lastCommitTime   string

	startTime = time.Now()
)

// BuildDetails returns a string containing details about the binary.
func BuildDetails() string {
	return fmt.Sprintf(`
Bookshelf version : %v
Commit SHA-1      : %v
Commit timestamp  : %v
Branch            : %v
Go version        : %v

`,
		Version(), lastCommitSHA, lastCommitTime, gitBranch, runtime.Version())
}

// PrintVersion prints version and other helpful information to the log.
func PrintVersion() {
	glog.Infof("\n%s\n", BuildDetails())
}

// Version returns the version of this binary, "dev" for untagged builds.
func Version() string {
	if bookshelfVersion == "" {
		return "dev"
	}
	return bookshelfVersion
}

// Uptime returns how long the process has been running.
func Uptime() time.Duration {
	return time.Since(startTime)
}
