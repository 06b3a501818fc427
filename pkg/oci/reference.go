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

package oci

import (
	"context"
	"fmt"
	"log/slog"
	"path/filepath"
	"strings"

	"github.com/distribution/reference"

	"github.com/NVIDIA/yafct/pkg/errors"
)

// URIScheme is the URI scheme for registry targets (oci://ghcr.io/org/repo:tag).
const URIScheme = "oci://"

// Reference is a parsed oci:// target.
type Reference struct {
	// Registry is the registry host (e.g., "ghcr.io", "localhost:5000").
	Registry string
	// Repository is the repository path (e.g., "nvidia/kernel-config").
	Repository string
	// Tag is the image tag. Empty means the caller applies a default.
	Tag string
}

// IsOCIURI reports whether target uses the oci:// scheme.
func IsOCIURI(target string) bool {
	return strings.HasPrefix(target, URIScheme)
}

// ParseReference parses oci://registry/repository[:tag].
func ParseReference(target string) (*Reference, error) {
	if !IsOCIURI(target) {
		return nil, errors.New(errors.ErrCodeInvalidRequest,
			fmt.Sprintf("OCI target %q must start with %s", target, URIScheme))
	}

	ref, err := reference.ParseNormalizedNamed(strings.TrimPrefix(target, URIScheme))
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeInvalidRequest, "invalid OCI reference", err)
	}
	if _, digested := ref.(reference.Digested); digested {
		return nil, errors.New(errors.ErrCodeInvalidRequest, "OCI target must use a tag, not a digest")
	}

	out := &Reference{
		Registry:   reference.Domain(ref),
		Repository: reference.Path(ref),
	}
	if tagged, ok := ref.(reference.Tagged); ok {
		out.Tag = tagged.Tag()
	}
	if err := ValidateRegistryReference(out.Registry, out.Repository); err != nil {
		return nil, err
	}
	return out, nil
}

// String returns the oci:// form.
func (r *Reference) String() string {
	return URIScheme + r.ImageReference()
}

// ImageReference returns registry/repository[:tag] without the scheme.
func (r *Reference) ImageReference() string {
	if r.Tag == "" {
		return fmt.Sprintf("%s/%s", r.Registry, r.Repository)
	}
	return fmt.Sprintf("%s/%s:%s", r.Registry, r.Repository, r.Tag)
}

// WithTag returns a copy of the reference with tag set.
func (r *Reference) WithTag(tag string) *Reference {
	c := *r
	c.Tag = tag
	return &c
}

// ValidateRegistryReference checks that registry and repository form a
// valid image name. A leading http:// or https:// on registry is ignored.
func ValidateRegistryReference(registry, repository string) error {
	registry = stripProtocol(registry)
	if registry == "" || repository == "" {
		return errors.New(errors.ErrCodeInvalidRequest, "registry and repository are required")
	}
	name := registry + "/" + repository
	if _, err := reference.ParseNormalizedNamed(name); err != nil {
		return errors.WrapWithContext(errors.ErrCodeInvalidRequest, "invalid registry reference", err,
			map[string]any{"reference": name})
	}
	return nil
}

// OutputConfig configures PackageAndPush.
type OutputConfig struct {
	// SourceDir is the directory of generated artifacts.
	SourceDir string
	// OutputDir receives the local OCI image layout.
	OutputDir string
	// Reference is the push target; Tag must be set.
	Reference *Reference
	// Version fills org.opencontainers.image.version.
	Version string
	// PlainHTTP uses HTTP instead of HTTPS for the registry connection.
	PlainHTTP bool
	// InsecureTLS skips TLS certificate verification.
	InsecureTLS bool
	// ReproducibleTimestamp pins the manifest creation annotation.
	ReproducibleTimestamp string
}

// PackageAndPushResult contains the result of a successful package and push.
type PackageAndPushResult struct {
	Digest    string
	Reference string
	StorePath string
}

// PackageAndPush packages SourceDir as an OCI artifact and pushes it.
func PackageAndPush(ctx context.Context, cfg OutputConfig) (*PackageAndPushResult, error) {
	if cfg.Reference == nil {
		return nil, errors.New(errors.ErrCodeInvalidRequest, "OCI reference is required")
	}
	if cfg.Reference.Tag == "" {
		return nil, errors.New(errors.ErrCodeInvalidRequest, "tag is required for OCI packaging")
	}

	absSourceDir, err := filepath.Abs(cfg.SourceDir)
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeInternal, "failed to resolve source directory", err)
	}
	absOutputDir, err := filepath.Abs(cfg.OutputDir)
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeInternal, "failed to resolve output directory", err)
	}

	pkg, err := Package(ctx, PackageOptions{
		SourceDir:             absSourceDir,
		OutputDir:             absOutputDir,
		Registry:              cfg.Reference.Registry,
		Repository:            cfg.Reference.Repository,
		Tag:                   cfg.Reference.Tag,
		Annotations:           DefaultAnnotations(cfg.Version),
		ReproducibleTimestamp: cfg.ReproducibleTimestamp,
	})
	if err != nil {
		return nil, err
	}
	slog.Info("configuration artifact packaged", "reference", pkg.Reference, "digest", pkg.Digest)

	pushed, err := PushFromStore(ctx, pkg.StorePath, PushOptions{
		Registry:    cfg.Reference.Registry,
		Repository:  cfg.Reference.Repository,
		Tag:         cfg.Reference.Tag,
		PlainHTTP:   cfg.PlainHTTP,
		InsecureTLS: cfg.InsecureTLS,
	})
	if err != nil {
		return nil, err
	}
	slog.Info("configuration artifact pushed", "reference", pushed.Reference, "digest", pushed.Digest)

	return &PackageAndPushResult{
		Digest:    pushed.Digest,
		Reference: pushed.Reference,
		StorePath: pkg.StorePath,
	}, nil
}

// DefaultAnnotations returns the manifest annotations for generated
// configuration artifacts.
func DefaultAnnotations(version string) map[string]string {
	a := map[string]string{
		"org.opencontainers.image.vendor": "NVIDIA",
		"org.opencontainers.image.title":  "yafct resolved configuration",
		"org.opencontainers.image.source": "https://github.com/NVIDIA/yafct",
	}
	if version != "" {
		a["org.opencontainers.image.version"] = version
	}
	return a
}
