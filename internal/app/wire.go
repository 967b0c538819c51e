package app

import (
	"context"
	"fmt"

	"github.com/specialistvlad/dllforge/internal/compiler"
	"github.com/specialistvlad/dllforge/internal/config"
	"github.com/specialistvlad/dllforge/internal/ctxlog"
	"github.com/specialistvlad/dllforge/internal/packager"
	"github.com/specialistvlad/dllforge/internal/pipeline"
	"github.com/specialistvlad/dllforge/internal/publish"
	"github.com/specialistvlad/dllforge/internal/resolver"
)

// buildPipeline turns the model into a ready pipeline. Relative paths are
// anchored at the configuration's directory.
func buildPipeline(ctx context.Context, m *config.Model, o options) (*pipeline.Pipeline, error) {
	logger := ctxlog.FromContext(ctx)

	c := o.compiler
	if c == nil {
		c = newExec(m)
		logger.Debug("Using command-line compiler.", "command", m.Compiler.Command)
	}

	r, err := newResolver(m)
	if err != nil {
		return nil, err
	}

	p := pipeline.New(c, r)
	p.Host = pipeline.HostAssemblies{
		Engine: m.Abs(m.Compiler.EngineAssembly),
		Editor: m.Abs(m.Compiler.EditorAssembly),
	}
	p.LibraryExtension = m.Compiler.LibraryExtension
	p.Documentation = m.Compiler.Documentation
	p.StampTemplate = m.Compiler.StampTemplate
	p.Refresher = pipeline.RefreshFunc(func(ctx context.Context, paths []string) {
		ctxlog.FromContext(ctx).Info("Placed files ready for import.", "paths", paths)
	})

	archiver, err := packager.ForFormat(m.Package.Export.Format)
	if err != nil {
		return nil, err
	}
	dir := m.Dir
	if m.Package.Export.Directory != "" {
		dir = m.Abs(m.Package.Export.Directory)
	}
	p.Packager = packager.New(archiver, dir, m.Dir)

	p.Publisher = o.publisher
	if p.Publisher == nil && m.Publish != nil {
		s3, err := publish.NewS3(publish.S3Config{
			Endpoint:  m.Publish.Endpoint,
			Region:    m.Publish.Region,
			AccessKey: m.Publish.AccessKey,
			SecretKey: m.Publish.SecretKey,
			Bucket:    m.Publish.Bucket,
			UseSSL:    m.Publish.UseSSL,
			Prefix:    m.Publish.Prefix,
		})
		if err != nil {
			return nil, fmt.Errorf("configuring publisher: %w", err)
		}
		p.Publisher = s3
		logger.Debug("Publishing enabled.", "endpoint", m.Publish.Endpoint, "bucket", m.Publish.Bucket)
	}
	return p, nil
}

func newExec(m *config.Model) *compiler.Exec {
	e := compiler.NewExec(m.Compiler.Command)
	if len(m.Compiler.Args) > 0 {
		e.Args = m.Compiler.Args
	}
	if m.Compiler.OutputFlag != "" {
		e.OutputFlag = m.Compiler.OutputFlag
	}
	if m.Compiler.ReferenceFlag != "" {
		e.ReferenceFlag = m.Compiler.ReferenceFlag
	}
	if m.Compiler.DocFlag != "" {
		e.DocFlag = m.Compiler.DocFlag
	}
	e.Dir = m.Dir
	return e
}

func newResolver(m *config.Model) (resolver.Resolver, error) {
	root := m.Dir
	if m.Resolver.Root != "" {
		root = m.Abs(m.Resolver.Root)
	}
	switch m.Resolver.Kind {
	case config.ResolverGUID:
		g, err := resolver.NewGUID(root, m.Resolver.CacheSize)
		if err != nil {
			return nil, fmt.Errorf("configuring guid resolver: %w", err)
		}
		return g, nil
	default:
		return resolver.NewPath(root), nil
	}
}
