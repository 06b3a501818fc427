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

package source

import (
	"context"
	"log/slog"
	"os"
	"strings"
	"time"

	"github.com/NVIDIA/yafct/pkg/defaults"
	"github.com/NVIDIA/yafct/pkg/errors"
	"github.com/NVIDIA/yafct/pkg/k8s/client"
)

// Kind selects which ConfigMap keys a cm:// location is read from.
type Kind int

const (
	KindModel Kind = iota
	KindOverlay
)

// ConfigMap data keys, tried in order.
var (
	ModelKeys   = []string{"Kconfig"}
	OverlayKeys = []string{".config", "config.yaml", "config.json"}
)

// Loader reads model and overlay text from local files, HTTP(S) URLs and
// cm://namespace/name ConfigMaps.
type Loader struct {
	HTTP *HTTPReader

	// KubeClient returns the client used for cm:// locations.
	KubeClient func() (client.Interface, error)

	// ConfigMapTimeout bounds a single ConfigMap read.
	ConfigMapTimeout time.Duration
}

// LoaderOption configures a Loader.
type LoaderOption func(*Loader)

// WithHTTPReader replaces the default HTTP reader.
func WithHTTPReader(r *HTTPReader) LoaderOption {
	return func(l *Loader) {
		if r != nil {
			l.HTTP = r
		}
	}
}

// WithKubeClient replaces the cached in-cluster or kubeconfig client.
func WithKubeClient(fn func() (client.Interface, error)) LoaderOption {
	return func(l *Loader) {
		if fn != nil {
			l.KubeClient = fn
		}
	}
}

// NewLoader returns a Loader with default HTTP and Kubernetes clients.
func NewLoader(opts ...LoaderOption) *Loader {
	l := &Loader{
		KubeClient:       client.Shared,
		ConfigMapTimeout: defaults.ConfigMapReadTimeout,
	}
	for _, opt := range opts {
		opt(l)
	}
	if l.HTTP == nil {
		l.HTTP = NewHTTPReader()
	}
	return l
}

// IsRemote reports whether location is fetched over HTTP(S) or from a
// ConfigMap.
func IsRemote(location string) bool {
	return isHTTP(location) || client.IsConfigMapURI(location)
}

func isHTTP(location string) bool {
	return strings.HasPrefix(location, "http://") || strings.HasPrefix(location, "https://")
}

// Load reads location. A missing local file or ConfigMap is NOT_FOUND.
func (l *Loader) Load(ctx context.Context, location string, kind Kind) (*Document, error) {
	switch {
	case location == "":
		return nil, errors.New(errors.ErrCodeInvalidRequest, "location is empty")
	case isHTTP(location):
		data, err := l.HTTP.ReadWithContext(ctx, location)
		if err != nil {
			return nil, err
		}
		return &Document{Location: location, Data: data, Format: FormatFromLocation(location)}, nil
	case client.IsConfigMapURI(location):
		return l.loadConfigMap(ctx, location, kind)
	}

	if err := ctx.Err(); err != nil {
		return nil, errors.Wrap(errors.ErrCodeTimeout, "load canceled", err)
	}
	data, err := os.ReadFile(location)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, errors.WrapWithContext(errors.ErrCodeNotFound, "file not found", err,
				map[string]any{"file": location})
		}
		return nil, errors.WrapWithContext(errors.ErrCodeInternal, "failed to read file", err,
			map[string]any{"file": location})
	}
	return &Document{Location: location, Data: data, Format: FormatFromLocation(location)}, nil
}

func (l *Loader) loadConfigMap(ctx context.Context, location string, kind Kind) (*Document, error) {
	ref, err := client.ParseConfigMapURI(location)
	if err != nil {
		return nil, err
	}
	c, err := l.KubeClient()
	if err != nil {
		return nil, err
	}

	if l.ConfigMapTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, l.ConfigMapTimeout)
		defer cancel()
	}

	keys := OverlayKeys
	if kind == KindModel {
		keys = ModelKeys
	}
	data, key, err := client.ReadConfigMapKey(ctx, c, ref, keys...)
	if err != nil {
		return nil, err
	}
	slog.Debug("read ConfigMap source", "configmap", ref.String(), "key", key)

	format := FormatFromLocation(key)
	if kind == KindModel {
		format = FormatLines
	}
	return &Document{
		Location: location + "/" + key,
		Data:     []byte(data),
		Format:   format,
	}, nil
}
