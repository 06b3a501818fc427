// Package oci packages generated configuration artifacts and pushes them to
// OCI-compliant registries using ORAS (OCI Registry As Storage).
//
// # Overview
//
// A generation run produces a directory holding autoconf.h, .config,
// config.json and checksums.txt. This package stores that directory as a
// single reproducible tar+gzip layer under an OCI 1.1 manifest with
// artifact type ArtifactType.
//
//   - Package: writes a local OCI Image Layout under OutputDir/oci-layout
//   - PushFromStore: copies a packaged tag to a remote registry
//   - PackageAndPush: both, driven by an OutputConfig
//
// # References
//
// Push targets use the oci:// scheme:
//
//	ref, err := oci.ParseReference("oci://ghcr.io/nvidia/kernel-config:v1")
//
// Registry and repository are validated with the distribution reference
// grammar, so uppercase repositories and digests are rejected.
//
// # Authentication
//
// Credentials come from the Docker credential store (~/.docker/config.json
// and configured helpers). PlainHTTP and InsecureTLS cover local registries.
//
// # Reproducibility
//
// Layers are built with TarReproducible and, when ReproducibleTimestamp is
// set, the manifest creation annotation is pinned so that packaging the same
// directory twice yields the same manifest digest.
package oci
