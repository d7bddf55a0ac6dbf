package app

import (
	"context"
	"fmt"
	"io"
	"path"
	"path/filepath"
	"slices"

	"github.com/specialistvlad/socgen/internal/buildtree"
	"github.com/specialistvlad/socgen/internal/ctxlog"
	"github.com/specialistvlad/socgen/internal/manifest"
	"github.com/specialistvlad/socgen/internal/mmap"
	"github.com/specialistvlad/socgen/internal/soc"
)

// Result describes what Setup wrote.
type Result struct {
	Design   *soc.Design
	BuildDir string
	Copied   []string
	Header   string
	Manifest string
}

// Files lists every file written, copies first.
func (r *Result) Files() []string {
	return append(slices.Clone(r.Copied), r.Header, r.Manifest)
}

// Setup composes the target and writes its build tree: the post-setup
// copies, the peripheral address header and the manifest.
func (a *App) Setup(ctx context.Context) (*Result, error) {
	ctx = a.withLogger(ctx)
	d, err := a.compose(ctx)
	if err != nil {
		return nil, err
	}
	ctx, logger := ctxlog.With(ctx, "core", d.Name)

	res := &Result{Design: d, BuildDir: a.buildDir(d)}
	tree := buildtree.New(res.BuildDir)
	logger.Debug("Writing build tree.", "build_dir", res.BuildDir)

	for _, c := range d.PostSetup.Copies {
		copied, err := tree.CopyInto(ctx, a.copySource(c), c.Dest)
		res.Copied = append(res.Copied, copied...)
		if err != nil {
			return res, fmt.Errorf("setup %s: %w", d.Name, err)
		}
	}

	if res.Header, err = writeHeader(ctx, tree, d); err != nil {
		return res, fmt.Errorf("setup %s: %w", d.Name, err)
	}

	if res.Manifest, err = writeManifest(ctx, tree, d); err != nil {
		return res, fmt.Errorf("setup %s: %w", d.Name, err)
	}

	logger.Debug("Build tree written.", "files", len(res.Files()))
	return res, nil
}

// buildDir prefers the command-line override. A relative descriptor build
// dir is taken from the setup dir.
func (a *App) buildDir(d *soc.Design) string {
	if a.config.BuildDir != "" {
		return a.config.BuildDir
	}
	dir := filepath.FromSlash(d.BuildDir)
	if filepath.IsAbs(dir) || a.config.SetupDir == "" {
		return dir
	}
	return filepath.Join(a.config.SetupDir, dir)
}

func (a *App) copySource(c soc.Copy) string {
	src := filepath.FromSlash(c.Source)
	if filepath.IsAbs(src) {
		return src
	}
	root := c.Root
	if root == "" {
		root = a.config.SetupDir
	}
	return filepath.Join(root, src)
}

// HeaderPath is the build-dir relative path of d's address header.
func HeaderPath(d *soc.Design) string {
	if d.PostSetup.Header != "" {
		return d.PostSetup.Header
	}
	return path.Join("software", "src", d.Name+"_periphs.h")
}

func writeHeader(ctx context.Context, tree *buildtree.Tree, d *soc.Design) (string, error) {
	addrW, err := d.Conf("ADDR_W")
	if err != nil {
		return "", fmt.Errorf("peripheral header: %w", err)
	}
	width, err := addrW.Int()
	if err != nil {
		return "", fmt.Errorf("peripheral header: ADDR_W: %w", err)
	}
	m, err := mmap.Layout(width, d.PeripheralNames())
	if err != nil {
		return "", fmt.Errorf("peripheral header: %w", err)
	}

	rel := HeaderPath(d)
	return tree.WriteFile(ctx, rel, func(w io.Writer) error {
		return mmap.WriteHeader(w, d.Name, path.Base(rel), m)
	})
}

func writeManifest(ctx context.Context, tree *buildtree.Tree, d *soc.Design) (string, error) {
	m, err := manifest.FromDesign(d)
	if err != nil {
		return "", err
	}
	return tree.WriteFile(ctx, d.Name+".yaml", func(w io.Writer) error {
		return manifest.Encode(w, m)
	})
}

// Show composes the target and prints its manifest.
func (a *App) Show(ctx context.Context) error {
	ctx = a.withLogger(ctx)
	d, err := a.compose(ctx)
	if err != nil {
		return err
	}
	m, err := manifest.FromDesign(d)
	if err != nil {
		return err
	}
	return manifest.Encode(a.outW, m)
}

// List prints every loaded template and variant, one per line.
func (a *App) List(ctx context.Context) error {
	ctx = a.withLogger(ctx)
	catalog, err := a.loader.Load(ctx, a.config.DescriptorPaths...)
	if err != nil {
		return fmt.Errorf("failed to load descriptors: %w", err)
	}
	for _, name := range catalog.Names() {
		if o, ok := catalog.Overlays[name]; ok {
			fmt.Fprintf(a.outW, "%s\tvariant of %s\n", name, o.Base)
			continue
		}
		fmt.Fprintf(a.outW, "%s\ttemplate\n", name)
	}
	return nil
}
