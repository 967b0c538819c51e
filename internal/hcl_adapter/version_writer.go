package hcl_adapter

import (
	"context"
	"fmt"
	"os"

	"github.com/hashicorp/hcl/v2"
	"github.com/hashicorp/hcl/v2/hclwrite"
	"github.com/specialistvlad/dllforge/internal/ctxlog"
	"github.com/specialistvlad/dllforge/internal/version"
	"github.com/zclconf/go-cty/cty"
)

// VersionWriter rewrites the `version` attribute of the package block in
// place. Comments, ordering and every other attribute are preserved.
type VersionWriter struct{}

// NewVersionWriter creates a new HCL version writer.
func NewVersionWriter() *VersionWriter {
	return &VersionWriter{}
}

// WriteVersion implements config.VersionWriter.
func (w *VersionWriter) WriteVersion(ctx context.Context, path string, v version.Version) error {
	logger := ctxlog.FromContext(ctx)
	if err := v.Validate(); err != nil {
		return err
	}

	info, err := os.Stat(path)
	if err != nil {
		return fmt.Errorf("writing version to %s: %w", path, err)
	}
	src, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("writing version to %s: %w", path, err)
	}
	file, diags := hclwrite.ParseConfig(src, path, hcl.InitialPos)
	if diags.HasErrors() {
		return fmt.Errorf("failed to parse HCL file %s: %w", path, diags)
	}

	var pkg *hclwrite.Block
	for _, block := range file.Body().Blocks() {
		if block.Type() != "package" {
			continue
		}
		if pkg != nil {
			return fmt.Errorf("writing version to %s: more than one package block", path)
		}
		pkg = block
	}
	if pkg == nil {
		return fmt.Errorf("writing version to %s: no package block", path)
	}

	components := make([]cty.Value, version.Components)
	for i, c := range v {
		components[i] = cty.NumberIntVal(int64(c))
	}
	pkg.Body().SetAttributeValue("version", cty.ListVal(components))

	tmp := path + ".tmp"
	if err := os.WriteFile(tmp, file.Bytes(), info.Mode().Perm()); err != nil {
		return fmt.Errorf("writing version to %s: %w", path, err)
	}
	if err := os.Rename(tmp, path); err != nil {
		os.Remove(tmp)
		return fmt.Errorf("writing version to %s: %w", path, err)
	}
	logger.Debug("Version written back.", "path", path, "version", v.String())
	return nil
}
