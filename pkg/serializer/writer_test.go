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
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	metav1 "k8s.io/apimachinery/pkg/apis/meta/v1"
	"k8s.io/client-go/kubernetes/fake"

	"github.com/NVIDIA/yafct/pkg/errors"
	"github.com/NVIDIA/yafct/pkg/header"
	"github.com/NVIDIA/yafct/pkg/k8s/client"
	"github.com/NVIDIA/yafct/pkg/kconfig"
)

func sampleValues() *kconfig.Values {
	v := kconfig.NewValues()
	v.Set("B", kconfig.TypeBool, true)
	v.Set("A", kconfig.TypeInt, int64(3))
	return v
}

func TestRender(t *testing.T) {
	tests := []struct {
		name   string
		format Format
		data   any
		want   string
	}{
		{
			name:   "json keeps symbol order",
			format: FormatJSON,
			data:   sampleValues(),
			want:   "{\n  \"B\": true,\n  \"A\": 3\n}\n",
		},
		{
			name:   "yaml keeps symbol order",
			format: FormatYAML,
			data:   sampleValues(),
			want:   "B: true\nA: 3\n",
		},
		{
			name:   "table uses rows",
			format: FormatTable,
			data:   sampleValues(),
			want:   "NAME  VALUE\n----  -----\nB     true\nA     3\n",
		},
		{
			name:   "table flattens structs",
			format: FormatTable,
			data: struct {
				Name string
				Tags map[string]string
			}{Name: "x", Tags: map[string]string{"k": "v"}},
			want: "NAME    VALUE\n----    -----\nName    x\nTags.k  v\n",
		},
		{
			name:   "empty table",
			format: FormatTable,
			data:   kconfig.NewValues(),
			want:   "<empty>\n",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Render(tt.format, tt.data)
			require.NoError(t, err)
			assert.Equal(t, tt.want, string(got))
		})
	}
}

func TestRenderUnsupported(t *testing.T) {
	_, err := Render(Format("xml"), nil)
	assert.True(t, errors.IsCode(err, errors.ErrCodeInvalidRequest))
}

func TestFormat(t *testing.T) {
	assert.False(t, FormatJSON.IsUnknown())
	assert.True(t, Format("xml").IsUnknown())
	assert.Equal(t, "txt", FormatTable.Extension())
	assert.Equal(t, "yaml", FormatYAML.Extension())
	assert.Equal(t, []string{"json", "yaml", "table"}, SupportedFormats())
}

func TestNewFileWriterOrStdout(t *testing.T) {
	path := filepath.Join(t.TempDir(), "out.yaml")
	w, err := NewFileWriterOrStdout(FormatYAML, path)
	require.NoError(t, err)
	require.NoError(t, w.Serialize(context.Background(), sampleValues()))
	require.NoError(t, w.(Closer).Close())
	require.NoError(t, w.(Closer).Close())

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "B: true\nA: 3\n", string(data))

	w, err = NewFileWriterOrStdout(Format("bogus"), "")
	require.NoError(t, err)
	assert.Equal(t, FormatJSON, w.(*Writer).format)

	w, err = NewFileWriterOrStdout(FormatJSON, "cm://build/resolved")
	require.NoError(t, err)
	assert.IsType(t, &ConfigMapWriter{}, w)

	_, err = NewFileWriterOrStdout(FormatJSON, "cm://build")
	assert.True(t, errors.IsCode(err, errors.ErrCodeInvalidRequest))

	_, err = NewFileWriterOrStdout(FormatJSON, filepath.Join(t.TempDir(), "missing", "out.json"))
	assert.True(t, errors.IsCode(err, errors.ErrCodeInternal))
}

func TestConfigMapWriter(t *testing.T) {
	ctx := context.Background()
	cs := fake.NewClientset()
	newWriter := func(format Format) *ConfigMapWriter {
		w := NewConfigMapWriter(client.ConfigMapRef{Namespace: "build", Name: "resolved"}, format)
		w.KubeClient = func() (client.Interface, error) { return cs, nil }
		return w
	}

	require.NoError(t, newWriter(FormatYAML).Serialize(ctx, sampleValues()))
	cm, err := cs.CoreV1().ConfigMaps("build").Get(ctx, "resolved", metav1.GetOptions{})
	require.NoError(t, err)
	assert.Equal(t, "B: true\nA: 3\n", cm.Data["config.yaml"])
	assert.Equal(t, "yaml", cm.Data["format"])
	assert.NotEmpty(t, cm.Data["timestamp"])
	assert.Equal(t, "Values", cm.Labels["app.kubernetes.io/component"])
	assert.Equal(t, "unknown", cm.Labels["app.kubernetes.io/version"])

	doc := header.New(header.WithKind(header.KindResolvedConfig),
		header.WithMetadata("version", "v1.2.3"),
		header.WithMetadata("timestamp", "2025-01-01T00:00:00Z"))
	require.NoError(t, newWriter(FormatJSON).Serialize(ctx, doc))
	cm, err = cs.CoreV1().ConfigMaps("build").Get(ctx, "resolved", metav1.GetOptions{})
	require.NoError(t, err)
	assert.Contains(t, cm.Data["config.json"], `"kind": "ResolvedConfig"`)
	assert.Equal(t, "2025-01-01T00:00:00Z", cm.Data["timestamp"])
	assert.Equal(t, "ResolvedConfig", cm.Labels["app.kubernetes.io/component"])
	assert.Equal(t, "v1.2.3", cm.Labels["app.kubernetes.io/version"])
	assert.Equal(t, "yafct", cm.Labels["app.kubernetes.io/name"])
}

func TestConfigMapWriterClientError(t *testing.T) {
	w := NewConfigMapWriter(client.ConfigMapRef{Namespace: "a", Name: "b"}, FormatJSON)
	w.KubeClient = func() (client.Interface, error) {
		return nil, errors.New(errors.ErrCodeUnavailable, "no cluster")
	}
	err := w.Serialize(context.Background(), sampleValues())
	assert.True(t, errors.IsCode(err, errors.ErrCodeUnavailable))
}

func TestConfigMapWriterDefaultClient(t *testing.T) {
	t.Setenv("KUBECONFIG", "/nonexistent/kubeconfig")

	w := NewConfigMapWriter(client.ConfigMapRef{Namespace: "a", Name: "b"}, FormatYAML)
	require.NotNil(t, w.KubeClient)

	err := w.Serialize(context.Background(), sampleValues())
	require.Error(t, err)
	assert.True(t, errors.IsCode(err, errors.ErrCodeUnavailable))
}

func TestRespondJSON(t *testing.T) {
	rec := httptest.NewRecorder()
	RespondJSON(rec, http.StatusCreated, sampleValues())

	assert.Equal(t, http.StatusCreated, rec.Code)
	assert.Equal(t, "application/json", rec.Header().Get("Content-Type"))
	assert.Equal(t, "{\"B\":true,\"A\":3}\n", rec.Body.String())

	rec = httptest.NewRecorder()
	RespondJSON(rec, http.StatusOK, map[string]any{"bad": make(chan int)})
	assert.Equal(t, http.StatusInternalServerError, rec.Code)
}

func TestRespondYAML(t *testing.T) {
	rec := httptest.NewRecorder()
	RespondYAML(rec, http.StatusOK, sampleValues())

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "application/yaml", rec.Header().Get("Content-Type"))
	assert.Equal(t, "B: true\nA: 3\n", rec.Body.String())
}
