package version

import (
	"fmt"

	"github.com/hashicorp/hcl/v2"
	"github.com/hashicorp/hcl/v2/hclsyntax"
	"github.com/zclconf/go-cty/cty"
	"github.com/zclconf/go-cty/cty/convert"
)

// DefaultStampTemplate renders C# assembly attributes carrying the version.
const DefaultStampTemplate = `[assembly: System.Reflection.AssemblyVersion("${version}")]
[assembly: System.Reflection.AssemblyFileVersion("${version}")]
[assembly: System.Reflection.AssemblyInformationalVersion("${version}")]
[assembly: System.Reflection.AssemblyProduct("${package}")]
`

// StampData is exposed to the stamp template as HCL template variables:
// version, major, minor, build, revision, package, namespace and pass.
type StampData struct {
	Version   Version
	Package   string
	Namespace string
	Pass      string
}

func (d StampData) variables() map[string]cty.Value {
	return map[string]cty.Value{
		"version":   cty.StringVal(d.Version.String()),
		"major":     cty.NumberIntVal(int64(d.Version[0])),
		"minor":     cty.NumberIntVal(int64(d.Version[1])),
		"build":     cty.NumberIntVal(int64(d.Version[2])),
		"revision":  cty.NumberIntVal(int64(d.Version[3])),
		"package":   cty.StringVal(d.Package),
		"namespace": cty.StringVal(d.Namespace),
		"pass":      cty.StringVal(d.Pass),
	}
}

// Stamp renders the build-metadata source fragment. The template uses HCL
// template syntax (${version}, %{ if ... }). An empty template selects
// DefaultStampTemplate.
func Stamp(template string, data StampData) (string, error) {
	if template == "" {
		template = DefaultStampTemplate
	}

	expr, diags := hclsyntax.ParseTemplate([]byte(template), "stamp_template", hcl.InitialPos)
	if diags.HasErrors() {
		return "", fmt.Errorf("parsing stamp template: %w", diags)
	}

	val, diags := expr.Value(&hcl.EvalContext{Variables: data.variables()})
	if diags.HasErrors() {
		return "", fmt.Errorf("rendering stamp template: %w", diags)
	}

	str, err := convert.Convert(val, cty.String)
	if err != nil {
		return "", fmt.Errorf("stamp template must render a string: %w", err)
	}
	if str.IsNull() || !str.IsKnown() {
		return "", fmt.Errorf("stamp template rendered no value")
	}
	return str.AsString(), nil
}
