package hcl_adapter

// fileRoot decodes every top-level block of a configuration file.
type fileRoot struct {
	Packages []*PackageBlock `hcl:"package,block"`
	Compiler *CompilerBlock  `hcl:"compiler,block"`
	Resolver *ResolverBlock  `hcl:"resolver,block"`
	Publish  *PublishBlock   `hcl:"publish,block"`
}

// PackageBlock is the HCL schema of a `package "<name>"` block.
type PackageBlock struct {
	Name        string       `hcl:"name,label"`
	Namespace   string       `hcl:"namespace,optional"`
	Placeholder *string      `hcl:"placeholder,optional"`
	Version     []int        `hcl:"version,optional"`
	OutputRoot  string       `hcl:"output_root,optional"`
	Runtime     *PassBlock   `hcl:"runtime,block"`
	Editor      *PassBlock   `hcl:"editor,block"`
	Export      *ExportBlock `hcl:"export,block"`
}

// PassBlock is the schema shared by the `runtime` and `editor` blocks.
type PassBlock struct {
	Sources      []string `hcl:"sources,optional"`
	Dependencies []string `hcl:"dependencies,optional"`
}

// ExportBlock is the schema of the `export` block.
type ExportBlock struct {
	Files     []string `hcl:"files,optional"`
	OnBuild   bool     `hcl:"on_build,optional"`
	Format    string   `hcl:"format,optional"`
	Directory string   `hcl:"directory,optional"`
}

// CompilerBlock is the schema of the `compiler` block.
type CompilerBlock struct {
	Command          string   `hcl:"command,optional"`
	Args             []string `hcl:"args,optional"`
	EngineAssembly   string   `hcl:"engine_assembly,optional"`
	EditorAssembly   string   `hcl:"editor_assembly,optional"`
	LibraryExtension string   `hcl:"library_extension,optional"`
	Documentation    bool     `hcl:"documentation,optional"`
	StampTemplate    string   `hcl:"stamp_template,optional"`
	OutputFlag       string   `hcl:"output_flag,optional"`
	ReferenceFlag    string   `hcl:"reference_flag,optional"`
	DocFlag          string   `hcl:"doc_flag,optional"`
}

// ResolverBlock is the schema of the `resolver` block.
type ResolverBlock struct {
	Kind      string `hcl:"kind,optional"`
	Root      string `hcl:"root,optional"`
	CacheSize int    `hcl:"cache_size,optional"`
}

// PublishBlock is the schema of the `publish` block.
type PublishBlock struct {
	Endpoint  string `hcl:"endpoint"`
	Bucket    string `hcl:"bucket"`
	Region    string `hcl:"region,optional"`
	AccessKey string `hcl:"access_key,optional"`
	SecretKey string `hcl:"secret_key,optional"`
	UseSSL    *bool  `hcl:"use_ssl,optional"`
	Prefix    string `hcl:"prefix,optional"`
}
