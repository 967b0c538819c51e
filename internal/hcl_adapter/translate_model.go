// This file contains the logic for translating HCL schema structs into the
// format-agnostic configuration model defined in the config package.

package hcl_adapter

import (
	"context"
	"fmt"

	"github.com/specialistvlad/dllforge/internal/config"
	"github.com/specialistvlad/dllforge/internal/ctxlog"
	"github.com/specialistvlad/dllforge/internal/version"
)

// translate converts a decoded file into the agnostic model.
func (l *Loader) translate(ctx context.Context, root *fileRoot) (*config.Model, error) {
	if n := len(root.Packages); n != 1 {
		return nil, fmt.Errorf("expected exactly one package block, found %d", n)
	}
	pkg, err := l.translatePackage(ctx, root.Packages[0])
	if err != nil {
		return nil, err
	}
	model := &config.Model{Package: *pkg}
	if root.Compiler != nil {
		model.Compiler = translateCompiler(root.Compiler)
	}
	if root.Resolver != nil {
		model.Resolver = config.Resolver{
			Kind:      root.Resolver.Kind,
			Root:      root.Resolver.Root,
			CacheSize: root.Resolver.CacheSize,
		}
	}
	if root.Publish != nil {
		model.Publish = translatePublish(root.Publish)
	}
	return model, nil
}

// translatePackage converts the HCL-specific package schema into the agnostic model.
func (l *Loader) translatePackage(ctx context.Context, b *PackageBlock) (*config.Package, error) {
	logger := ctxlog.FromContext(ctx).With("package", b.Name)
	logger.Debug("Translating HCL package to internal config model.")

	v, err := version.FromSlice(b.Version)
	if err != nil {
		return nil, fmt.Errorf("package %q: %w", b.Name, err)
	}

	placeholder := config.DefaultPlaceholder
	if b.Placeholder != nil {
		placeholder = *b.Placeholder
		if placeholder == "" {
			logger.Debug("Placeholder explicitly empty. Namespace substitution is disabled.")
		}
	}

	pkg := &config.Package{
		Name:        b.Name,
		Namespace:   b.Namespace,
		Placeholder: placeholder,
		Version:     v,
		OutputRoot:  b.OutputRoot,
		Runtime:     translatePass(b.Runtime),
		Editor:      translatePass(b.Editor),
	}
	if b.Export != nil {
		pkg.Export = config.Export{
			Files:     b.Export.Files,
			OnBuild:   b.Export.OnBuild,
			Format:    b.Export.Format,
			Directory: b.Export.Directory,
		}
	}
	return pkg, nil
}

func translatePass(b *PassBlock) config.Pass {
	if b == nil {
		return config.Pass{}
	}
	return config.Pass{Sources: b.Sources, Dependencies: b.Dependencies}
}

func translateCompiler(b *CompilerBlock) config.Compiler {
	return config.Compiler{
		Command:          b.Command,
		Args:             b.Args,
		EngineAssembly:   b.EngineAssembly,
		EditorAssembly:   b.EditorAssembly,
		LibraryExtension: b.LibraryExtension,
		Documentation:    b.Documentation,
		StampTemplate:    b.StampTemplate,
		OutputFlag:       b.OutputFlag,
		ReferenceFlag:    b.ReferenceFlag,
		DocFlag:          b.DocFlag,
	}
}

// translatePublish defaults use_ssl to true.
func translatePublish(b *PublishBlock) *config.Publish {
	useSSL := true
	if b.UseSSL != nil {
		useSSL = *b.UseSSL
	}
	return &config.Publish{
		Endpoint:  b.Endpoint,
		Bucket:    b.Bucket,
		Region:    b.Region,
		AccessKey: b.AccessKey,
		SecretKey: b.SecretKey,
		UseSSL:    useSSL,
		Prefix:    b.Prefix,
	}
}
