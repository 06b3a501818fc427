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

// Package client provides a shared Kubernetes client and the ConfigMap
// helpers yafct uses for cm:// overlays and outputs.
//
// The client is built once with sync.Once and reused:
//
//	clientset, _, err := client.GetKubeClient()
//	if err != nil {
//	    return err
//	}
//	ref, _ := client.ParseConfigMapURI("cm://build/overlay")
//	text, key, err := client.ReadConfigMapKey(ctx, clientset, ref, ".config")
//
// Authentication follows the usual client-go discovery: KUBECONFIG, then
// ~/.kube/config, then the in-cluster service account.
//
// ApplyConfigMap uses Server-Side Apply with the "yafct" field manager and
// refuses to touch immutable ConfigMaps.
//
// Tests use k8s.io/client-go/kubernetes/fake:
//
//	c := fake.NewClientset(existingConfigMap)
package client
