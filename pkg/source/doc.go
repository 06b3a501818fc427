// Package source reads feature models and overlays from local files,
// HTTP(S) URLs and Kubernetes ConfigMaps (cm://namespace/name), and applies
// overlay documents to a kconfig.Engine.
//
// Overlays are accepted in three encodings, chosen by extension: the
// .config line format, YAML mappings and JSON objects. For ConfigMaps the
// data key decides: "Kconfig" for models and ".config", "config.yaml" or
// "config.json" for overlays.
//
// IncludeResolver plugs variable expansion ($VAR, ${VAR}, $(VAR)) and glob
// expansion into the model parser's source directives without changing the
// process working directory.
package source
