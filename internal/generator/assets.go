package generator

import (
	"context"
	"os"
	"path/filepath"

	foundation "git.home.luguber.info/inful/labdocs/internal/foundation/errors"
	"git.home.luguber.info/inful/labdocs/internal/logfields"
	"git.home.luguber.info/inful/labdocs/internal/metrics"
)

// CopyStaticAssets copies the static directories of the template root into
// the output directory, merging with whatever is already there.
func (g *Generator) CopyStaticAssets(ctx context.Context) error {
	g.result.Assets = nil
	for _, dir := range StaticDirs {
		if err := ctx.Err(); err != nil {
			return foundation.WrapError(err, foundation.CategoryBuild, "static asset copy canceled").Build()
		}

		src := filepath.Join(g.templatesDir, dir)
		info, err := os.Stat(src)
		if err != nil || !info.IsDir() {
			continue
		}

		dst := filepath.Join(g.outputDir, dir)
		err = copyDir(src, dst, func(rel string) {
			g.result.Assets = append(g.result.Assets, dir+"/"+rel)
		})
		if err != nil {
			return foundation.FileSystemError("failed to copy static assets").
				WithCause(err).
				WithContext("path", src).
				Build()
		}
		g.logger().Info("Copied static assets", logfields.Path(dir+"/"))
	}
	g.recorder.AddFiles(metrics.FileAsset, len(g.result.Assets))
	return nil
}
