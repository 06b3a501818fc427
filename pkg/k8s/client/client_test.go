// Copyright (c) 2025, NVIDIA CORPORATION.  All rights reserved.
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package client

import (
	"os"
	"path/filepath"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/NVIDIA/yafct/pkg/errors"
)

func resetClientCache() {
	clientOnce = sync.Once{}
	cachedClient = nil
	cachedConfig = nil
	clientErr = nil
}

func TestBuildKubeClientInvalidPaths(t *testing.T) {
	tests := []struct {
		name          string
		kubeconfigArg string
		kubeconfigEnv string
	}{
		{name: "explicit invalid path", kubeconfigArg: "/nonexistent/path/to/kubeconfig"},
		{name: "env var with invalid path", kubeconfigEnv: "/nonexistent/env/kubeconfig"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Setenv("KUBECONFIG", tt.kubeconfigEnv)

			_, _, err := BuildKubeClient(tt.kubeconfigArg)
			require.Error(t, err)
			assert.Contains(t, err.Error(), "failed to build kube config")
			assert.True(t, errors.IsCode(err, errors.ErrCodeUnavailable))
		})
	}
}

func TestBuildKubeClientMalformedFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "kubeconfig")
	require.NoError(t, os.WriteFile(path, []byte("invalid yaml content"), 0o600))

	_, _, err := GetKubeClientWithConfig(path)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to build kube config")
}

func TestGetKubeClientCachesResult(t *testing.T) {
	resetClientCache()
	t.Cleanup(resetClientCache)
	t.Setenv("KUBECONFIG", "/nonexistent/kubeconfig")

	c1, cfg1, err1 := GetKubeClient()
	c2, cfg2, err2 := GetKubeClient()

	require.Error(t, err1)
	assert.Same(t, err1, err2)
	assert.Nil(t, c1)
	assert.Nil(t, c2)
	assert.Nil(t, cfg1)
	assert.Nil(t, cfg2)
}

func TestGetKubeClientConcurrentCallsAgree(t *testing.T) {
	resetClientCache()
	t.Cleanup(resetClientCache)

	const n = 10
	results := make(chan bool, n)
	for i := 0; i < n; i++ {
		go func() {
			c, _, _ := GetKubeClient()
			results <- c != nil
		}()
	}

	first := <-results
	for i := 1; i < n; i++ {
		assert.Equal(t, first, <-results)
	}
}

func TestSharedMatchesCachedClient(t *testing.T) {
	resetClientCache()
	t.Cleanup(resetClientCache)
	t.Setenv("KUBECONFIG", "/nonexistent/kubeconfig")

	var fn func() (Interface, error) = Shared
	c, err := fn()
	_, _, cachedErr := GetKubeClient()

	require.Error(t, err)
	assert.Same(t, cachedErr, err)
	assert.Nil(t, c)
}
