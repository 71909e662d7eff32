/*
 * SPDX-FileCopyrightText: © Hypermode Inc. <hello@hypermode.com>
 * SPDX-License-Identifier: Apache-2.0
 */

package x

import (
	"path/filepath"
	"testing"

	"github.com/spf13/viper"
	"github.com/stretchr/testify/require"
)

func TestStartProfile(t *testing.T) {
	conf := viper.New()

	s, err := StartProfile(conf)
	require.NoError(t, err)
	require.Equal(t, noOpStopper{}, s)

	conf.Set("profile_mode", "heap")
	_, err = StartProfile(conf)
	require.Error(t, err)

	dir := t.TempDir()
	conf.Set("profile_mode", "mem")
	conf.Set("profile_dir", dir)
	s, err = StartProfile(conf)
	require.NoError(t, err)
	s.Stop()
	require.FileExists(t, filepath.Join(dir, "mem.pprof"))
}
