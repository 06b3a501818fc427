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
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	corev1 "k8s.io/api/core/v1"
	metav1 "k8s.io/apimachinery/pkg/apis/meta/v1"
	"k8s.io/client-go/kubernetes/fake"

	"github.com/NVIDIA/yafct/pkg/errors"
	"github.com/NVIDIA/yafct/pkg/k8s/client"
	"github.com/NVIDIA/yafct/pkg/kconfig"
)

const testModel = `
config FLAG
	bool "flag"
	default y
config COUNT
	int "count"
config NAME
	string "name"
`

func TestFormatFromLocation(t *testing.T) {
	tests := []struct {
		location string
		want     Format
	}{
		{".config", FormatLines},
		{"defconfig", FormatLines},
		{"overlays/board.yaml", FormatYAML},
		{"overlays/board.YML", FormatYAML},
		{"board.json", FormatJSON},
		{"https://example.com/cfg/board.yaml?ref=main", FormatYAML},
		{"https://example.com/cfg/.config", FormatLines},
	}
	for _, tt := range tests {
		t.Run(tt.location, func(t *testing.T) {
			assert.Equal(t, tt.want, FormatFromLocation(tt.location))
		})
	}
}

func TestLoaderLocalFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "board.yaml")
	require.NoError(t, os.WriteFile(path, []byte("FLAG: false\n"), 0o600))

	l := NewLoader()
	doc, err := l.Load(context.Background(), path, KindOverlay)
	require.NoError(t, err)
	assert.Equal(t, path, doc.Location)
	assert.Equal(t, FormatYAML, doc.Format)
	assert.Equal(t, "FLAG: false\n", string(doc.Data))

	_, err = l.Load(context.Background(), filepath.Join(dir, "missing"), KindOverlay)
	assert.True(t, errors.IsCode(err, errors.ErrCodeNotFound))

	_, err = l.Load(context.Background(), "", KindModel)
	assert.True(t, errors.IsCode(err, errors.ErrCodeInvalidRequest))
}

func TestLoaderHTTP(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/board.config":
			assert.Equal(t, HTTPReaderUserAgent, r.Header.Get("User-Agent"))
			_, _ = w.Write([]byte("CONFIG_FLAG=n\n"))
		case "/broken":
			w.WriteHeader(http.StatusInternalServerError)
		default:
			http.NotFound(w, r)
		}
	}))
	defer srv.Close()

	l := NewLoader(WithHTTPReader(NewHTTPReader(WithClient(srv.Client()))))

	doc, err := l.Load(context.Background(), srv.URL+"/board.config", KindOverlay)
	require.NoError(t, err)
	assert.Equal(t, FormatLines, doc.Format)
	assert.Equal(t, "CONFIG_FLAG=n\n", string(doc.Data))

	_, err = l.Load(context.Background(), srv.URL+"/missing", KindOverlay)
	assert.True(t, errors.IsCode(err, errors.ErrCodeNotFound))

	_, err = l.Load(context.Background(), srv.URL+"/broken", KindOverlay)
	assert.True(t, errors.IsCode(err, errors.ErrCodeUnavailable))
}

func TestLoaderConfigMap(t *testing.T) {
	cs := fake.NewClientset(
		&corev1.ConfigMap{
			ObjectMeta: metav1.ObjectMeta{Name: "model", Namespace: "build"},
			Data:       map[string]string{"Kconfig": testModel},
		},
		&corev1.ConfigMap{
			ObjectMeta: metav1.ObjectMeta{Name: "overlay", Namespace: "build"},
			Data:       map[string]string{"config.yaml": "COUNT: 4\n"},
		},
	)
	l := NewLoader(WithKubeClient(func() (client.Interface, error) { return cs, nil }))

	model, err := l.Load(context.Background(), "cm://build/model", KindModel)
	require.NoError(t, err)
	assert.Equal(t, "cm://build/model/Kconfig", model.Location)
	assert.Equal(t, FormatLines, model.Format)

	overlay, err := l.Load(context.Background(), "cm://build/overlay", KindOverlay)
	require.NoError(t, err)
	assert.Equal(t, "cm://build/overlay/config.yaml", overlay.Location)
	assert.Equal(t, FormatYAML, overlay.Format)

	_, err = l.Load(context.Background(), "cm://build/model", KindOverlay)
	assert.True(t, errors.IsCode(err, errors.ErrCodeNotFound))

	_, err = l.Load(context.Background(), "cm://build/absent", KindModel)
	assert.True(t, errors.IsCode(err, errors.ErrCodeNotFound))

	_, err = l.Load(context.Background(), "cm://build", KindModel)
	assert.True(t, errors.IsCode(err, errors.ErrCodeInvalidRequest))
}

func TestLoaderDefaultKubeClient(t *testing.T) {
	t.Setenv("KUBECONFIG", "/nonexistent/kubeconfig")

	l := NewLoader()
	require.NotNil(t, l.KubeClient)

	_, err := l.Load(context.Background(), "cm://build/model", KindModel)
	require.Error(t, err)
	assert.True(t, errors.IsCode(err, errors.ErrCodeUnavailable))
}

func TestIsRemote(t *testing.T) {
	assert.True(t, IsRemote("https://example.com/Kconfig"))
	assert.True(t, IsRemote("cm://ns/name"))
	assert.False(t, IsRemote("./Kconfig"))
}

func TestDocumentApplyTo(t *testing.T) {
	tests := []struct {
		name string
		doc  Document
		want map[string]any
	}{
		{
			name: "lines",
			doc:  Document{Location: ".config", Format: FormatLines, Data: []byte("# CONFIG_FLAG is not set\nCONFIG_COUNT=3\n")},
			want: map[string]any{"FLAG": false, "COUNT": int64(3)},
		},
		{
			name: "yaml",
			doc:  Document{Location: "o.yaml", Format: FormatYAML, Data: []byte("FLAG: false\nCOUNT: 0x10\nNAME: board\n")},
			want: map[string]any{"FLAG": false, "COUNT": int64(16), "NAME": "board"},
		},
		{
			name: "json",
			doc:  Document{Location: "o.json", Format: FormatJSON, Data: []byte(`{"CONFIG_COUNT": 7, "NAME": "x"}`)},
			want: map[string]any{"FLAG": true, "COUNT": int64(7), "NAME": "x"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			eng, err := kconfig.Parse("Kconfig", []byte(testModel))
			require.NoError(t, err)

			rep, err := tt.doc.ApplyTo(eng)
			require.NoError(t, err)
			assert.Equal(t, tt.doc.Location, rep.Source)
			assert.Empty(t, rep.Mismatched)

			values, err := eng.Resolve()
			require.NoError(t, err)
			for k, want := range tt.want {
				got, ok := values.Get(k)
				require.True(t, ok, k)
				assert.Equal(t, want, got, k)
			}
		})
	}
}

func TestDocumentApplyToInvalid(t *testing.T) {
	eng, err := kconfig.Parse("Kconfig", []byte(testModel))
	require.NoError(t, err)

	_, err = (&Document{Location: "bad.yaml", Format: FormatYAML, Data: []byte("- a\n- b\n")}).ApplyTo(eng)
	assert.True(t, errors.IsCode(err, errors.ErrCodeParse))

	_, err = (&Document{Location: "bad.json", Format: FormatJSON, Data: []byte("{")}).ApplyTo(eng)
	assert.True(t, errors.IsCode(err, errors.ErrCodeParse))
}
