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

// Package serializer writes resolved configurations and reports as JSON,
// YAML or tables to stdout, files, HTTP responses and Kubernetes
// ConfigMaps.
//
// # Supported Formats
//
// JSON and YAML keep the symbol order of kconfig.Values. Table prints a
// NAME/VALUE listing: documents implementing TableRower supply their own
// rows, anything else is flattened into dotted keys.
//
// # Usage
//
//	w, err := serializer.NewFileWriterOrStdout(serializer.FormatYAML, output)
//	if err != nil {
//		return err
//	}
//	if c, ok := w.(serializer.Closer); ok {
//		defer c.Close()
//	}
//	return w.Serialize(ctx, values)
//
// An output of cm://namespace/name writes the ConfigMap with Server-Side
// Apply; the content lands under the data key config.<ext>.
//
// For HTTP handlers:
//
//	serializer.RespondJSON(w, http.StatusOK, values)
package serializer
