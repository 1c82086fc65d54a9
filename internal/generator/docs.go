package generator

import (
	"context"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path"
	"path/filepath"

	foundation "git.home.luguber.info/inful/labdocs/internal/foundation/errors"
	"git.home.luguber.info/inful/labdocs/internal/logfields"
	"git.home.luguber.info/inful/labdocs/internal/metrics"
	"git.home.luguber.info/inful/labdocs/internal/pages"
	"git.home.luguber.info/inful/labdocs/internal/render"
)

// GenerateDocs replaces the output directory with the rendered docs templates.
// A missing docs template directory leaves an empty output directory.
func (g *Generator) GenerateDocs(ctx context.Context) error {
	log := g.logger()

	if _, err := os.Stat(g.outputDir); err == nil {
		log.Info("Cleaning previous build", logfields.Output(g.outputDir))
		if err := os.RemoveAll(g.outputDir); err != nil {
			return foundation.FileSystemError("failed to remove output directory").
				WithCause(err).
				WithContext("path", g.outputDir).
				Build()
		}
	}
	if err := os.MkdirAll(g.outputDir, 0o750); err != nil {
		return foundation.FileSystemError("failed to create output directory").
			WithCause(err).
			WithContext("path", g.outputDir).
			Build()
	}

	g.result.Rendered = nil
	g.result.Copied = nil
	g.result.Pages = nil

	src := filepath.Join(g.templatesDir, DocsTemplatesDir)
	info, err := os.Stat(src)
	if err != nil || !info.IsDir() {
		log.Warn("No docs templates found", logfields.Path(src))
		return nil
	}

	if err := g.processDirectory(ctx, src, g.outputDir); err != nil {
		return err
	}

	g.recorder.AddFiles(metrics.FileRendered, len(g.result.Rendered))
	g.recorder.AddFiles(metrics.FileCopied, len(g.result.Copied))
	log.Info("Documentation tree generated",
		logfields.Output(g.outputDir),
		logfields.Count(len(g.result.Rendered)+len(g.result.Copied)))
	return nil
}

// processDirectory mirrors src into dst. Entries are visited in name order.
func (g *Generator) processDirectory(ctx context.Context, src, dst string) error {
	if err := os.MkdirAll(dst, 0o750); err != nil {
		return foundation.FileSystemError("failed to create directory").
			WithCause(err).
			WithContext("path", dst).
			Build()
	}

	entries, err := os.ReadDir(src)
	if err != nil {
		return foundation.FileSystemError("failed to read template directory").
			WithCause(err).
			WithContext("path", src).
			Build()
	}

	for _, entry := range entries {
		if err := ctx.Err(); err != nil {
			return foundation.WrapError(err, foundation.CategoryBuild, "documentation generation canceled").Build()
		}

		srcPath := filepath.Join(src, entry.Name())
		// Stat follows symlinks so linked files and directories are mirrored.
		info, err := os.Stat(srcPath)
		if err != nil && isSymlink(entry) {
			g.logger().Warn("Skipping broken symlink", logfields.Path(srcPath))
			continue
		}
		if err != nil {
			return foundation.FileSystemError("failed to stat template entry").
				WithCause(err).
				WithContext("path", srcPath).
				Build()
		}
		switch {
		case info.IsDir():
			if err := g.processDirectory(ctx, srcPath, filepath.Join(dst, entry.Name())); err != nil {
				return err
			}
		case render.IsTemplate(entry.Name()):
			if err := g.renderTemplate(srcPath, filepath.Join(dst, render.OutputName(entry.Name()))); err != nil {
				return err
			}
		case info.Mode().IsRegular():
			outPath := filepath.Join(dst, entry.Name())
			if err := copyFile(srcPath, outPath); err != nil {
				return foundation.WrapError(err, foundation.CategoryBuild, "failed to copy file").
					WithContext("file", g.relTemplate(srcPath)).
					Build()
			}
			g.result.Copied = append(g.result.Copied, g.relOutput(outPath))
			g.notePage(outPath, nil)
			g.logger().Debug("Copied", logfields.File(g.relOutput(outPath)))
		default:
			g.logger().Debug("Skipping special file", logfields.Path(srcPath))
		}
	}
	return nil
}

func (g *Generator) renderTemplate(srcPath, outPath string) error {
	label := g.relTemplate(srcPath)
	g.logger().Debug("Processing template", logfields.File(label))

	content, err := g.engine.RenderFile(srcPath, label, g.context.Data())
	if err != nil {
		return foundation.WrapError(err, foundation.CategoryBuild, fmt.Sprintf("failed to render %s", label)).
			WithContext("file", label).
			Build()
	}
	// #nosec G306 -- generated documentation is meant to be world readable
	if err := os.WriteFile(outPath, []byte(content), 0o644); err != nil {
		return foundation.WrapError(err, foundation.CategoryBuild, fmt.Sprintf("failed to write %s", g.relOutput(outPath))).
			WithContext("file", label).
			Build()
	}

	g.result.Rendered = append(g.result.Rendered, g.relOutput(outPath))
	g.notePage(outPath, []byte(content))
	g.logger().Debug("Generated", logfields.File(g.relOutput(outPath)))
	return nil
}

// notePage records the title of markdown output. content is read from disk
// when nil.
func (g *Generator) notePage(outPath string, content []byte) {
	if !pages.IsMarkdown(outPath) {
		return
	}
	if content == nil {
		// #nosec G304 -- path is inside the output directory
		data, err := os.ReadFile(outPath)
		if err != nil {
			return
		}
		content = data
	}
	g.result.Pages = append(g.result.Pages, pages.Page{
		Path:  g.relOutput(outPath),
		Title: pages.Title(content),
	})
}

func (g *Generator) relTemplate(path string) string {
	return relSlash(g.templatesDir, path)
}

func (g *Generator) relOutput(path string) string {
	return relSlash(g.outputDir, path)
}

func relSlash(base, path string) string {
	rel, err := filepath.Rel(base, path)
	if err != nil {
		return filepath.ToSlash(path)
	}
	return filepath.ToSlash(rel)
}

// copyFile copies src to dst keeping the permission bits and modification time.
func copyFile(src, dst string) error {
	info, err := os.Stat(src)
	if err != nil {
		return err
	}

	// #nosec G304 -- src comes from the project's template tree
	in, err := os.Open(src)
	if err != nil {
		return err
	}
	defer func() { _ = in.Close() }()

	// #nosec G304 -- dst is inside the output directory
	out, err := os.OpenFile(dst, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, info.Mode().Perm())
	if err != nil {
		return err
	}
	if _, err := io.Copy(out, in); err != nil {
		_ = out.Close()
		return err
	}
	if err := out.Close(); err != nil {
		return err
	}
	if err := os.Chmod(dst, info.Mode().Perm()); err != nil {
		return err
	}
	return os.Chtimes(dst, info.ModTime(), info.ModTime())
}

// copyDir copies the tree at src into dst, merging with existing content.
// Symlinks are followed; a directory already on the current path is skipped
// so link cycles terminate.
func copyDir(src, dst string, visit func(rel string)) error {
	return copyTree(src, dst, "", map[string]bool{}, visit)
}

func copyTree(src, dst, rel string, active map[string]bool, visit func(rel string)) error {
	resolved, err := filepath.EvalSymlinks(src)
	if err != nil {
		return err
	}
	if active[resolved] {
		return nil
	}
	active[resolved] = true
	defer delete(active, resolved)

	if err := os.MkdirAll(dst, 0o750); err != nil {
		return err
	}
	entries, err := os.ReadDir(src)
	if err != nil {
		return err
	}
	for _, entry := range entries {
		srcPath := filepath.Join(src, entry.Name())
		dstPath := filepath.Join(dst, entry.Name())
		entryRel := path.Join(rel, entry.Name())

		info, err := os.Stat(srcPath)
		if err != nil && isSymlink(entry) {
			continue
		}
		if err != nil {
			return err
		}
		switch {
		case info.IsDir():
			if err := copyTree(srcPath, dstPath, entryRel, active, visit); err != nil {
				return err
			}
		case info.Mode().IsRegular():
			if err := copyFile(srcPath, dstPath); err != nil {
				return err
			}
			if visit != nil {
				visit(entryRel)
			}
		}
	}
	return nil
}

func isSymlink(entry fs.DirEntry) bool {
	return entry.Type()&fs.ModeSymlink != 0
}
