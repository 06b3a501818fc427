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
	"context"
	"encoding/json"
	stderrors "errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/NVIDIA/yafct/pkg/defaults"
	"github.com/NVIDIA/yafct/pkg/errors"
	"github.com/NVIDIA/yafct/pkg/header"
	"github.com/NVIDIA/yafct/pkg/kconfig"
	"github.com/NVIDIA/yafct/pkg/serializer"
	"github.com/NVIDIA/yafct/pkg/server"
	"github.com/NVIDIA/yafct/pkg/source"
	"github.com/NVIDIA/yafct/pkg/yafct"
)

// requestModelName labels the model in parse errors and report metadata.
const requestModelName = "request"

// ResolveRequest is the body accepted by POST /v1/resolve.
type ResolveRequest struct {
	// Model is the full model text. Source directives are not allowed.
	Model string `json:"model" yaml:"model"`
	// Overlay is optional overlay content.
	Overlay string `json:"overlay,omitempty" yaml:"overlay,omitempty"`
	// OverlayFormat is lines (default), yaml or json.
	OverlayFormat source.Format `json:"overlayFormat,omitempty" yaml:"overlayFormat,omitempty"`
	// ConfigPrefix defaults to CONFIG_.
	ConfigPrefix string `json:"configPrefix,omitempty" yaml:"configPrefix,omitempty"`
}

// HandlerOption configures a Handler.
type HandlerOption func(*Handler)

// WithVersion sets the version recorded in response metadata.
func WithVersion(v string) HandlerOption {
	return func(h *Handler) {
		h.version = v
	}
}

// WithTimeout bounds a single resolution.
func WithTimeout(d time.Duration) HandlerOption {
	return func(h *Handler) {
		if d > 0 {
			h.timeout = d
		}
	}
}

// Handler serves resolution requests.
type Handler struct {
	version string
	timeout time.Duration
}

// NewHandler returns a Handler with the given options applied.
func NewHandler(opts ...HandlerOption) *Handler {
	h := &Handler{version: versionDefault, timeout: defaults.ResolveBuildTimeout}
	for _, opt := range opts {
		opt(h)
	}
	return h
}

// HandleResolve parses the model in the request body, applies the optional
// overlay and responds with the resolved configuration. Clients accepting
// YAML get YAML; everyone else gets JSON.
func (h *Handler) HandleResolve(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		w.Header().Set("Allow", http.MethodPost)
		server.WriteError(w, r, http.StatusMethodNotAllowed, errors.ErrCodeMethodNotAllowed,
			"Method not allowed", false, map[string]any{
				"method":  r.Method,
				"allowed": []string{http.MethodPost},
			})
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), defaults.ResolveHandlerTimeout)
	defer cancel()

	req, err := ParseResolveRequest(r.Body, r.Header.Get("Content-Type"))
	if err != nil {
		var tooLarge *http.MaxBytesError
		if stderrors.As(err, &tooLarge) {
			server.WriteError(w, r, http.StatusRequestEntityTooLarge, errors.ErrCodeInvalidRequest,
				"Request body too large", false, map[string]any{"limit": tooLarge.Limit})
			return
		}
		server.WriteErrorFrom(w, r, err)
		return
	}

	report, err := h.resolve(ctx, req)
	if err != nil {
		slog.Debug("resolve failed", "requestID", server.RequestID(r.Context()), "error", err)
		server.WriteErrorFrom(w, r, err)
		return
	}

	w.Header().Set("Cache-Control", "no-store")
	if strings.Contains(r.Header.Get("Accept"), "yaml") {
		serializer.RespondYAML(w, http.StatusOK, report)
		return
	}
	serializer.RespondJSON(w, http.StatusOK, report)
}

// ParseResolveRequest decodes a JSON or YAML request body. Unknown or
// missing content types are decoded as JSON.
func ParseResolveRequest(body io.Reader, contentType string) (*ResolveRequest, error) {
	if body == nil {
		return nil, errors.New(errors.ErrCodeInvalidRequest, "request body is required")
	}
	data, err := io.ReadAll(body)
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeInvalidRequest, "failed to read request body", err)
	}
	if len(strings.TrimSpace(string(data))) == 0 {
		return nil, errors.New(errors.ErrCodeInvalidRequest, "request body is empty")
	}

	ct := strings.ToLower(strings.TrimSpace(contentType))
	if mediaType, _, ok := strings.Cut(ct, ";"); ok {
		ct = strings.TrimSpace(mediaType)
	}

	var req ResolveRequest
	switch ct {
	case "application/x-yaml", "application/yaml", "text/yaml":
		if err := yaml.Unmarshal(data, &req); err != nil {
			return nil, errors.Wrap(errors.ErrCodeInvalidRequest, "failed to parse YAML body", err)
		}
	default:
		if err := json.Unmarshal(data, &req); err != nil {
			return nil, errors.Wrap(errors.ErrCodeInvalidRequest, "failed to parse JSON body", err)
		}
	}

	if strings.TrimSpace(req.Model) == "" {
		return nil, errors.New(errors.ErrCodeInvalidRequest, "model is required")
	}
	switch req.OverlayFormat {
	case "":
		req.OverlayFormat = source.FormatLines
	case source.FormatLines, source.FormatYAML, source.FormatJSON:
	default:
		return nil, errors.NewWithContext(errors.ErrCodeInvalidRequest,
			fmt.Sprintf("unsupported overlay format %q", req.OverlayFormat),
			map[string]any{"supported": []source.Format{source.FormatLines, source.FormatYAML, source.FormatJSON}})
	}
	if req.ConfigPrefix == "" {
		req.ConfigPrefix = defaults.ConfigPrefix
	}
	return &req, nil
}

type resolveResult struct {
	report *yafct.Report
	err    error
}

func (h *Handler) resolve(ctx context.Context, req *ResolveRequest) (*yafct.Report, error) {
	ctx, cancel := context.WithTimeout(ctx, h.timeout)
	defer cancel()

	done := make(chan resolveResult, 1)
	go func() {
		report, err := h.build(req)
		done <- resolveResult{report: report, err: err}
	}()

	select {
	case res := <-done:
		return res.report, res.err
	case <-ctx.Done():
		return nil, errors.Wrap(errors.ErrCodeTimeout, "resolution did not complete in time", ctx.Err())
	}
}

func (h *Handler) build(req *ResolveRequest) (*yafct.Report, error) {
	eng, err := kconfig.Parse(requestModelName, []byte(req.Model),
		kconfig.WithConfigPrefix(req.ConfigPrefix),
		kconfig.WithIncludeResolver(rejectIncludes))
	if err != nil {
		return nil, err
	}

	report := &yafct.Report{}
	if req.Overlay != "" {
		doc := &source.Document{Location: "overlay", Data: []byte(req.Overlay), Format: req.OverlayFormat}
		rep, err := doc.ApplyTo(eng)
		if err != nil {
			return nil, err
		}
		report.Overlays = append(report.Overlays, rep)
	}

	values, err := eng.Resolve()
	if err != nil {
		return nil, err
	}
	report.Values = values
	report.Init(header.KindResolvedConfig, h.version)
	report.Metadata["model"] = requestModelName
	return report, nil
}

func rejectIncludes(_, spec string) ([]string, error) {
	return nil, errors.NewWithContext(errors.ErrCodeInvalidRequest,
		"source directives are not supported by the API", map[string]any{"include": spec})
}
