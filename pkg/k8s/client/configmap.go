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
	"context"
	"fmt"
	"log/slog"
	"strings"

	apierrors "k8s.io/apimachinery/pkg/api/errors"
	metav1 "k8s.io/apimachinery/pkg/apis/meta/v1"
	accorev1 "k8s.io/client-go/applyconfigurations/core/v1"
	"k8s.io/utils/ptr"

	"github.com/NVIDIA/yafct/pkg/errors"
)

// ConfigMapURIScheme prefixes ConfigMap locations: cm://namespace/name.
const ConfigMapURIScheme = "cm://"

// FieldManager owns the fields yafct applies.
const FieldManager = "yafct"

// ConfigMapRef identifies a ConfigMap.
type ConfigMapRef struct {
	Namespace string
	Name      string
}

// String returns the cm:// URI form.
func (r ConfigMapRef) String() string {
	return ConfigMapURIScheme + r.Namespace + "/" + r.Name
}

// IsConfigMapURI reports whether s uses the cm:// scheme.
func IsConfigMapURI(s string) bool {
	return strings.HasPrefix(s, ConfigMapURIScheme)
}

// ParseConfigMapURI parses cm://namespace/name.
func ParseConfigMapURI(uri string) (ConfigMapRef, error) {
	if !IsConfigMapURI(uri) {
		return ConfigMapRef{}, errors.New(errors.ErrCodeInvalidRequest,
			fmt.Sprintf("invalid ConfigMap URI %q: must start with %s", uri, ConfigMapURIScheme))
	}
	ns, name, ok := strings.Cut(strings.TrimPrefix(uri, ConfigMapURIScheme), "/")
	ns, name = strings.TrimSpace(ns), strings.TrimSpace(name)
	if !ok || ns == "" || name == "" || strings.Contains(name, "/") {
		return ConfigMapRef{}, errors.New(errors.ErrCodeInvalidRequest,
			fmt.Sprintf("invalid ConfigMap URI %q: expected %snamespace/name", uri, ConfigMapURIScheme))
	}
	return ConfigMapRef{Namespace: ns, Name: name}, nil
}

// ReadConfigMapKey returns the first of keys present in the ConfigMap's
// data, together with the key that matched.
func ReadConfigMapKey(ctx context.Context, c Interface, ref ConfigMapRef, keys ...string) (string, string, error) {
	cm, err := c.CoreV1().ConfigMaps(ref.Namespace).Get(ctx, ref.Name, metav1.GetOptions{})
	if err != nil {
		if apierrors.IsNotFound(err) {
			return "", "", errors.WrapWithContext(errors.ErrCodeNotFound, "ConfigMap not found", err,
				map[string]any{"configmap": ref.String()})
		}
		return "", "", errors.WrapWithContext(errors.ErrCodeUnavailable, "failed to get ConfigMap", err,
			map[string]any{"configmap": ref.String()})
	}
	for _, k := range keys {
		if data, ok := cm.Data[k]; ok {
			slog.Debug("read ConfigMap", "configmap", ref.String(), "key", k, "size", len(data))
			return data, k, nil
		}
	}
	return "", "", errors.NewWithContext(errors.ErrCodeNotFound,
		fmt.Sprintf("ConfigMap %s has none of the keys %s", ref, strings.Join(keys, ", ")),
		map[string]any{"configmap": ref.String(), "keys": keys})
}

// ApplyConfigMap creates or updates the ConfigMap with Server-Side Apply.
// Immutable ConfigMaps are left untouched and reported as INVALID_REQUEST.
func ApplyConfigMap(ctx context.Context, c Interface, ref ConfigMapRef, labels, data map[string]string) error {
	existing, err := c.CoreV1().ConfigMaps(ref.Namespace).Get(ctx, ref.Name, metav1.GetOptions{})
	switch {
	case err == nil && ptr.Deref(existing.Immutable, false):
		return errors.NewWithContext(errors.ErrCodeInvalidRequest,
			fmt.Sprintf("ConfigMap %s is immutable", ref), map[string]any{"configmap": ref.String()})
	case err != nil && !apierrors.IsNotFound(err):
		return errors.WrapWithContext(errors.ErrCodeUnavailable, "failed to get ConfigMap", err,
			map[string]any{"configmap": ref.String()})
	}

	cm := accorev1.ConfigMap(ref.Name, ref.Namespace).
		WithLabels(labels).
		WithData(data)

	// Force takes ownership from earlier field managers (CLI vs API server).
	_, err = c.CoreV1().ConfigMaps(ref.Namespace).Apply(ctx, cm, metav1.ApplyOptions{
		FieldManager: FieldManager,
		Force:        true,
	})
	if err != nil {
		return errors.WrapWithContext(errors.ErrCodeUnavailable, "failed to apply ConfigMap", err,
			map[string]any{"configmap": ref.String()})
	}
	slog.Info("applied ConfigMap", "configmap", ref.String(), "keys", len(data))
	return nil
}
