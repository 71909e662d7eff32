/*
 * SPDX-FileCopyrightText: © Hypermode Inc. <hello@hypermode.com>
 * SPDX-License-Identifier: Apache-2.0
 */

package x

import (
	"runtime"

	"github.com/pkg/errors"
	"github.com/pkg/profile"
	"github.com/spf13/viper"
)

// Stopper stops a running profile and writes it out.
type Stopper interface {
	Stop()
}

// StartProfile starts the profiler named by the profile_mode setting, writing
// into profile_dir (a temporary directory when empty).
func StartProfile(conf *viper.Viper) (Stopper, error) {
	// The server handles SIGINT itself and stops the profile on the way out.
	opts := []func(*profile.Profile){profile.NoShutdownHook}
	if dir := conf.GetString("profile_dir"); dir != "" {
		opts = append(opts, profile.ProfilePath(dir))
	}

	switch mode := conf.GetString("profile_mode"); mode {
	case "":
		return noOpStopper{}, nil
	case "cpu":
		opts = append(opts, profile.CPUProfile)
	case "mem":
		opts = append(opts, profile.MemProfile)
	case "mutex":
		opts = append(opts, profile.MutexProfile)
	case "block":
		runtime.SetBlockProfileRate(conf.GetInt("block_rate"))
		opts = append(opts, profile.BlockProfile)
	default:
		return nil, errors.Errorf("invalid profile mode %q, use one of [cpu, mem, mutex, block]",
			mode)
	}
	return profile.Start(opts...), nil
}

type noOpStopper struct{}

func (noOpStopper) Stop() {}
