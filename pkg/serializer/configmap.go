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

package serializer

import (
	"context"
	"log/slog"
	"time"

	"github.com/NVIDIA/yafct/pkg/defaults"
	"github.com/NVIDIA/yafct/pkg/k8s/client"
)

// ConfigMapDataKeyPrefix is the data key stem; the format extension is
// appended (config.json, config.yaml, config.txt).
const ConfigMapDataKeyPrefix = "config."

// ConfigMapWriter writes serialized data to a Kubernetes ConfigMap.
// The ConfigMap is created if it doesn't exist, or updated if it does.
type ConfigMapWriter struct {
	ref    client.ConfigMapRef
	format Format

	// KubeClient returns the client used for the write.
	KubeClient func() (client.Interface, error)
}

// NewConfigMapWriter creates a new ConfigMapWriter for ref in the given
// format.
func NewConfigMapWriter(ref client.ConfigMapRef, format Format) *ConfigMapWriter {
	return &ConfigMapWriter{
		ref:        ref,
		format:     normalize(format),
		KubeClient: client.Shared,
	}
}

// Serialize writes data to the ConfigMap. The ConfigMap will have:
//   - data.config.{json|yaml|txt}: the serialized content
//   - data.format: the format used
//   - data.timestamp: the document timestamp, or the write time
//
// JSON and YAML documents without a header are readable again as
// overlays from the same cm:// location.
func (w *ConfigMapWriter) Serialize(ctx context.Context, data any) error {
	writeCtx, cancel := context.WithTimeout(ctx, defaults.ConfigMapWriteTimeout)
	defer cancel()

	c, err := w.KubeClient()
	if err != nil {
		return err
	}

	content, err := Render(w.format, data)
	if err != nil {
		return err
	}

	version, kind, timestamp := "unknown", "Values", ""
	if h, ok := data.(headed); ok {
		kind = h.GetKind().String()
		md := h.GetMetadata()
		if v := md["version"]; v != "" {
			version = v
		}
		timestamp = md["timestamp"]
	}
	if timestamp == "" {
		timestamp = time.Now().UTC().Format(time.RFC3339)
	}

	labels := map[string]string{
		"app.kubernetes.io/name":      "yafct",
		"app.kubernetes.io/component": kind,
		"app.kubernetes.io/version":   version,
	}
	payload := map[string]string{
		ConfigMapDataKeyPrefix + w.format.Extension(): string(content),
		"format":    string(w.format),
		"timestamp": timestamp,
	}

	slog.Info("configmap operation", "configmap", w.ref.String(), "format", w.format)
	return client.ApplyConfigMap(writeCtx, c, w.ref, labels, payload)
}

// Close is a no-op; ConfigMapWriter holds no resources.
func (w *ConfigMapWriter) Close() error {
	return nil
}
