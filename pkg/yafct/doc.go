// Package yafct is the programmatic entry point for resolving a feature
// model.
//
// A Tool is built from a model location and optional overlays, each of
// which may be a local path, an HTTP(S) URL or a cm://namespace/name
// ConfigMap:
//
//	tool, err := yafct.New(ctx, "Kconfig",
//		yafct.WithOverlay("defconfig"),
//		yafct.WithOverlay("board.yaml"))
//	if err != nil {
//		return err
//	}
//	values, err := tool.Resolve()
//
// Emit and EmitConfig write the C header and the .config form; Generate
// writes both together with a JSON mapping and checksums.txt.
package yafct
