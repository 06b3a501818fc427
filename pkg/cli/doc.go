// Package cli implements the command-line interface for the yafct tool.
//
// # Overview
//
// yafct resolves a Kconfig-style feature model against overlays and emits
// the resulting configuration for build systems and deployment tooling.
//
// # Commands
//
// resolve - Print the resolved configuration:
//
//	yafct resolve --model Kconfig [--overlay defconfig]... [--format json|yaml|table] [--output FILE|cm://ns/name]
//
// generate - Write build artifacts:
//
//	yafct generate --model Kconfig [--overlay defconfig]... --dir out [--push oci://registry/repo:tag]
//
// diff - Compare two configurations:
//
//	yafct diff --model Kconfig --from old.config --to new.config [--format table]
//
// # Global Flags
//
//	--log-level    Logging verbosity: debug, info, warn, error (default: info)
//	--help, -h     Show command help
//	--version, -v  Show version information
//
// # Inputs
//
// Models and overlays are read from file paths, HTTP/HTTPS URLs or ConfigMap
// URIs (cm://namespace/name). Overlays named *.yaml, *.yml or *.json are read
// as mappings of symbol names to values; everything else uses the .config
// line format. The first assignment of a symbol across all overlays wins.
//
// # Environment Variables
//
//	LOG_LEVEL        Default for --log-level
//	YAFCT_MODEL      Default for --model
//	YAFCT_OVERLAY    Default for --overlay (comma separated)
//	YAFCT_BASE_DIR   Default for --base-dir
//	KUBECONFIG       Kubernetes client configuration for cm:// inputs and outputs
//
// # Exit Codes
//
//	0  Success
//	1  Any error: invalid arguments, unreadable inputs, parse or resolution failures
//
// Version information is embedded at build time using ldflags:
//
//	go build -ldflags="-X 'github.com/NVIDIA/yafct/pkg/cli.version=1.0.0'"
package cli
