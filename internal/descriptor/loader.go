package descriptor

import (
	"context"
	"embed"
	"fmt"
	"io/fs"
	"path"
	"path/filepath"

	"github.com/hashicorp/hcl/v2"
	"github.com/hashicorp/hcl/v2/gohcl"
	"github.com/hashicorp/hcl/v2/hclparse"
	"github.com/specialistvlad/socgen/internal/ctxlog"
	"github.com/specialistvlad/socgen/internal/fsutil"
	"github.com/specialistvlad/socgen/internal/hclutil"
	"github.com/specialistvlad/socgen/internal/soc"
)

//go:embed builtin/*.hcl
var builtinFS embed.FS

// Extension is the file extension of descriptor files.
const Extension = ".hcl"

// Loader reads descriptor files into a soc.Catalog.
type Loader struct {
	builtins fs.FS
}

// Option configures a Loader.
type Option func(*Loader)

// WithoutBuiltins skips the embedded descriptors.
func WithoutBuiltins() Option {
	return func(l *Loader) { l.builtins = nil }
}

// WithBuiltins replaces the embedded descriptors with the .hcl files at the
// root of fsys.
func WithBuiltins(fsys fs.FS) Option {
	return func(l *Loader) { l.builtins = fsys }
}

// NewLoader creates a loader that starts from the embedded descriptors.
func NewLoader(opts ...Option) *Loader {
	sub, err := fs.Sub(builtinFS, "builtin")
	if err != nil {
		panic(err)
	}
	l := &Loader{builtins: sub}
	for _, opt := range opts {
		opt(l)
	}
	return l
}

// Load parses the builtin descriptors and then every .hcl file under paths,
// in order. Missing paths are an error. Later definitions replace earlier
// ones with the same name.
func (l *Loader) Load(ctx context.Context, paths ...string) (*soc.Catalog, error) {
	logger := ctxlog.FromContext(ctx)
	logger.Debug("Descriptor loader started.", "path_count", len(paths))

	catalog := soc.NewCatalog()
	parser := hclparse.NewParser()

	if l.builtins != nil {
		names, err := fs.Glob(l.builtins, "*"+Extension)
		if err != nil {
			return nil, fmt.Errorf("list builtin descriptors: %w", err)
		}
		for _, name := range names {
			src, err := fs.ReadFile(l.builtins, name)
			if err != nil {
				return nil, fmt.Errorf("read builtin descriptor %s: %w", name, err)
			}
			file, diags := parser.ParseHCL(src, path.Join("builtin", name))
			if err := l.addFile(ctx, catalog, parser, file, diags, ""); err != nil {
				return nil, err
			}
		}
		logger.Debug("Builtin descriptors loaded.", "files", len(names))
	}

	for _, p := range paths {
		files, err := fsutil.FindFilesByExtension(p, Extension)
		if err != nil {
			return nil, fmt.Errorf("find descriptors in %s: %w", p, err)
		}
		for _, f := range files {
			file, diags := parser.ParseHCLFile(f)
			setupDir, err := filepath.Abs(filepath.Dir(f))
			if err != nil {
				return nil, fmt.Errorf("resolve setup dir of %s: %w", f, err)
			}
			if err := l.addFile(ctx, catalog, parser, file, diags, setupDir); err != nil {
				return nil, err
			}
		}
		logger.Debug("Descriptors loaded.", "path", p, "files", len(files))
	}

	logger.Debug("Descriptor loading complete.", "templates", len(catalog.Templates), "variants", len(catalog.Overlays))
	return catalog, nil
}

func (l *Loader) addFile(ctx context.Context, catalog *soc.Catalog, parser *hclparse.Parser, file *hcl.File, diags hcl.Diagnostics, setupDir string) error {
	logger := ctxlog.FromContext(ctx)
	if diags.HasErrors() {
		return fmt.Errorf("failed to parse descriptor: %w", hclutil.Error(diags, parser.Files()))
	}

	var root fileRoot
	diags = gohcl.DecodeBody(file.Body, nil, &root)
	if diags.HasErrors() {
		return fmt.Errorf("failed to decode descriptor: %w", hclutil.Error(diags, parser.Files()))
	}

	for _, b := range root.Templates {
		t, diags := translateTemplate(b, setupDir)
		if diags.HasErrors() {
			return fmt.Errorf("soc %q: %w", b.Name, hclutil.Error(diags, parser.Files()))
		}
		if _, exists := catalog.Templates[t.Name]; exists {
			logger.Debug("Template redefined.", "name", t.Name)
		}
		catalog.AddTemplate(t)
	}
	for _, b := range root.Variants {
		o, diags := translateVariant(b, setupDir)
		if diags.HasErrors() {
			return fmt.Errorf("variant %q: %w", b.Name, hclutil.Error(diags, parser.Files()))
		}
		if _, exists := catalog.Overlays[o.Name]; exists {
			logger.Debug("Variant redefined.", "name", o.Name)
		}
		catalog.AddOverlay(o)
	}
	return nil
}
