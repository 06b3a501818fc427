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

package api

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/NVIDIA/yafct/pkg/server"
)

const testModel = `mainmenu "test"
config FEATURE
	bool "feature"
	default y
config NAME
	string "name"
	default "x"
	depends on FEATURE
`

func post(t *testing.T, h http.HandlerFunc, contentType, body string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(http.MethodPost, "/v1/resolve", strings.NewReader(body))
	req.Header.Set("Content-Type", contentType)
	w := httptest.NewRecorder()
	h(w, req)
	return w
}

func jsonBody(t *testing.T, req ResolveRequest) string {
	t.Helper()
	data, err := json.Marshal(req)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	return string(data)
}

// TestConstants verifies package constants are properly defined
func TestConstants(t *testing.T) {
	if name != "yafctd" {
		t.Errorf("name = %q, want %q", name, "yafctd")
	}
	if versionDefault != "dev" {
		t.Errorf("versionDefault = %q, want %q", versionDefault, "dev")
	}
	if version == "" || commit == "" || date == "" {
		t.Error("build variables should not be empty")
	}
}

func TestRoutes(t *testing.T) {
	routes := Routes()
	if len(routes) != 1 {
		t.Fatalf("expected exactly 1 route, got %d", len(routes))
	}
	if routes["/v1/resolve"] == nil {
		t.Error("expected /v1/resolve handler")
	}
}

func TestHandleResolve(t *testing.T) {
	h := NewHandler(WithVersion("test"))

	w := post(t, h.HandleResolve, "application/json", jsonBody(t, ResolveRequest{Model: testModel}))
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, body: %s", w.Code, w.Body.String())
	}
	if !strings.Contains(w.Body.String(), `"values":{"FEATURE":true,"NAME":"x"}`) {
		t.Errorf("unexpected values in %s", w.Body.String())
	}

	var resp struct {
		Kind     string            `json:"kind"`
		Metadata map[string]string `json:"metadata"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if resp.Kind != "ResolvedConfig" || resp.Metadata["version"] != "test" {
		t.Errorf("unexpected header: %+v", resp)
	}
	if w.Header().Get("Cache-Control") != "no-store" {
		t.Errorf("Cache-Control = %q", w.Header().Get("Cache-Control"))
	}
}

func TestHandleResolveOverlays(t *testing.T) {
	h := NewHandler()

	tests := []struct {
		name string
		req  ResolveRequest
		want string
	}{
		{
			name: "lines",
			req:  ResolveRequest{Model: testModel, Overlay: "# CONFIG_FEATURE is not set\n"},
			want: `"values":{"FEATURE":false}`,
		},
		{
			name: "yaml",
			req:  ResolveRequest{Model: testModel, Overlay: "NAME: custom\n", OverlayFormat: "yaml"},
			want: `"values":{"FEATURE":true,"NAME":"custom"}`,
		},
		{
			name: "json with prefix",
			req: ResolveRequest{Model: testModel, Overlay: `{"APP_FEATURE": false}`,
				OverlayFormat: "json", ConfigPrefix: "APP_"},
			want: `"values":{"FEATURE":false}`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := post(t, h.HandleResolve, "application/json", jsonBody(t, tt.req))
			if w.Code != http.StatusOK {
				t.Fatalf("status = %d, body: %s", w.Code, w.Body.String())
			}
			if !strings.Contains(w.Body.String(), tt.want) {
				t.Errorf("body %s does not contain %s", w.Body.String(), tt.want)
			}
		})
	}
}

func TestHandleResolveYAML(t *testing.T) {
	h := NewHandler()
	body, err := yaml.Marshal(ResolveRequest{Model: testModel})
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}

	req := httptest.NewRequest(http.MethodPost, "/v1/resolve", strings.NewReader(string(body)))
	req.Header.Set("Content-Type", "application/yaml; charset=utf-8")
	req.Header.Set("Accept", "application/yaml")
	w := httptest.NewRecorder()
	h.HandleResolve(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, body: %s", w.Code, w.Body.String())
	}
	if ct := w.Header().Get("Content-Type"); ct != "application/yaml" {
		t.Errorf("Content-Type = %q", ct)
	}
	if !strings.Contains(w.Body.String(), "values:\n  FEATURE: true\n  NAME: x\n") {
		t.Errorf("unexpected body:\n%s", w.Body.String())
	}
}

func TestHandleResolveErrors(t *testing.T) {
	h := NewHandler()

	tests := []struct {
		name       string
		body       string
		wantStatus int
		wantCode   string
	}{
		{"empty body", "", http.StatusBadRequest, "INVALID_REQUEST"},
		{"invalid JSON", "{invalid}", http.StatusBadRequest, "INVALID_REQUEST"},
		{"missing model", `{"overlay":"CONFIG_A=y"}`, http.StatusBadRequest, "INVALID_REQUEST"},
		{"bad overlay format", jsonBody(t, ResolveRequest{Model: testModel, OverlayFormat: "toml"}),
			http.StatusBadRequest, "INVALID_REQUEST"},
		{"parse error", jsonBody(t, ResolveRequest{Model: "config\n"}),
			http.StatusUnprocessableEntity, "PARSE_ERROR"},
		{"include rejected", jsonBody(t, ResolveRequest{Model: "source \"other/Kconfig\"\n"}),
			http.StatusUnprocessableEntity, "PARSE_ERROR"},
		{"cycle", jsonBody(t, ResolveRequest{Model: "config FLIP\n\tbool\n\tdefault !FLIP\n"}),
			http.StatusUnprocessableEntity, "CYCLIC_DEPENDENCY"},
		{"invalid YAML overlay", jsonBody(t, ResolveRequest{Model: testModel, Overlay: "[", OverlayFormat: "yaml"}),
			http.StatusUnprocessableEntity, "PARSE_ERROR"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := post(t, h.HandleResolve, "application/json", tt.body)
			if w.Code != tt.wantStatus {
				t.Fatalf("status = %d, want %d; body: %s", w.Code, tt.wantStatus, w.Body.String())
			}
			var resp server.ErrorResponse
			if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
				t.Fatalf("decode: %v", err)
			}
			if resp.Code != tt.wantCode {
				t.Errorf("code = %q, want %q", resp.Code, tt.wantCode)
			}
		})
	}
}

func TestHandleResolveMethods(t *testing.T) {
	h := NewHandler()
	for _, method := range []string{http.MethodGet, http.MethodPut, http.MethodDelete} {
		t.Run(method, func(t *testing.T) {
			w := httptest.NewRecorder()
			h.HandleResolve(w, httptest.NewRequest(method, "/v1/resolve", nil))
			if w.Code != http.StatusMethodNotAllowed {
				t.Errorf("status = %d, want 405", w.Code)
			}
			if w.Header().Get("Allow") != http.MethodPost {
				t.Errorf("Allow = %q", w.Header().Get("Allow"))
			}
		})
	}
}

func TestHandleResolveBodyLimit(t *testing.T) {
	cfg := server.NewConfig()
	cfg.MaxBodyBytes = 16
	s := server.New(server.WithConfig(cfg), server.WithHandler(Routes()))

	req := httptest.NewRequest(http.MethodPost, "/v1/resolve",
		strings.NewReader(jsonBody(t, ResolveRequest{Model: testModel})))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	s.Handler().ServeHTTP(w, req)

	if w.Code != http.StatusRequestEntityTooLarge {
		t.Errorf("status = %d, want 413; body: %s", w.Code, w.Body.String())
	}
}

func TestHandleResolveThroughServer(t *testing.T) {
	s := server.New(server.WithHandler(Routes()))

	req := httptest.NewRequest(http.MethodPost, "/v1/resolve",
		strings.NewReader(jsonBody(t, ResolveRequest{Model: testModel})))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	s.Handler().ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, body: %s", w.Code, w.Body.String())
	}
	if w.Header().Get("X-Request-Id") == "" {
		t.Error("expected X-Request-Id header")
	}
	if w.Header().Get("X-API-Version") != "v1" {
		t.Errorf("X-API-Version = %q", w.Header().Get("X-API-Version"))
	}
}

func TestHandleResolveConcurrency(t *testing.T) {
	h := NewHandler()
	body := jsonBody(t, ResolveRequest{Model: testModel, Overlay: "CONFIG_NAME=\"c\"\n"})

	const numRequests = 10
	done := make(chan int, numRequests)
	for i := 0; i < numRequests; i++ {
		go func() {
			req := httptest.NewRequest(http.MethodPost, "/v1/resolve", strings.NewReader(body))
			w := httptest.NewRecorder()
			h.HandleResolve(w, req)
			done <- w.Code
		}()
	}

	timeout := time.After(5 * time.Second)
	for i := 0; i < numRequests; i++ {
		select {
		case code := <-done:
			if code != http.StatusOK {
				t.Errorf("status = %d, want 200", code)
			}
		case <-timeout:
			t.Fatal("timeout waiting for concurrent requests to complete")
		}
	}
}
