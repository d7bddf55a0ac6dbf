package soc

import (
	"context"
	"fmt"
	"slices"

	"github.com/specialistvlad/socgen/internal/compose"
	"github.com/specialistvlad/socgen/internal/ctxlog"
)

// Options tune a setup run.
type Options struct {
	// Strict rejects redefinitions that are not marked as overrides.
	Strict bool
	// Args are the process arguments; literal switches are matched against
	// them.
	Args []string
}

func (o Options) composeOptions() []compose.Option {
	if o.Strict {
		return []compose.Option{compose.Strict()}
	}
	return nil
}

// Setup composes base and overlays, applied in order, into a Design.
func Setup(ctx context.Context, base *Template, overlays []*Overlay, opts Options) (*Design, error) {
	if base == nil {
		return nil, fmt.Errorf("setup: %w: nil base template", ErrUnknownTemplate)
	}

	layers := make([]*Layer, 0, len(overlays)+1)
	layers = append(layers, &base.Layer)
	for _, ov := range overlays {
		layers = append(layers, &ov.Layer)
	}

	d := &Design{}
	for _, l := range layers {
		d.Name = l.Name
		d.Version = pick(d.Version, l.Version)
		d.Flows = pick(d.Flows, l.Flows)
	}
	// The build dir is never inherited: it is named after the outermost core.
	d.BuildDir = layers[len(layers)-1].BuildDir
	if d.BuildDir == "" {
		d.BuildDir = DefaultBuildDir(d.Name, d.Version)
	}

	ctx, logger := ctxlog.With(ctx, "soc", d.Name)
	logger.Debug("Setup started.", "layers", len(layers))

	s := &setup{design: d, base: base, overlays: overlays, layers: layers, opts: opts}
	stages := []struct {
		name string
		run  func(context.Context) error
	}{
		{"submodules", s.createSubmodules},
		{"instances", s.createInstances},
		{"confs", s.setupConfs},
		{"portmap", s.setupPortmap},
		{"post_setup", s.postSetup},
	}
	for _, st := range stages {
		stageCtx, _ := ctxlog.With(ctx, "stage", st.name)
		if err := st.run(stageCtx); err != nil {
			return nil, fmt.Errorf("setup %s: %s: %w", d.Name, st.name, err)
		}
	}

	logger.Info("Setup composed.",
		"submodules", len(d.Submodules),
		"peripherals", len(d.Peripherals),
		"confs", len(d.EffectiveConfs()),
		"portmap", len(d.PortMap),
	)
	return d, nil
}

func pick(current, next string) string {
	if next != "" {
		return next
	}
	return current
}

type setup struct {
	design   *Design
	base     *Template
	overlays []*Overlay
	layers   []*Layer
	opts     Options
}

func (s *setup) createSubmodules(ctx context.Context) error {
	logger := ctxlog.FromContext(ctx)

	var adds []Submodule
	var removals []string
	for _, ov := range s.overlays {
		adds = append(adds, ov.Submodules...)
		removals = append(removals, ov.RemoveSubmodules...)
	}

	subs, err := compose.Compose(s.base.Submodules, compose.Layer[Submodule]{Add: compose.Always(adds...)}, nil, s.opts.composeOptions()...)
	if err != nil {
		return err
	}

	// Only bare handles are removed; a handle paired with parameters, like a
	// simulation-only copy, is a different entry.
	drop := compose.NewSet(removals...)
	before := len(subs)
	subs = compose.Remove(subs, func(sm Submodule) bool {
		return sm.IsBare() && drop.Has(sm.Name)
	})

	logger.Debug("Submodule list composed.", "count", len(subs), "removed", before-len(subs))
	s.design.Submodules = subs
	return nil
}

func (s *setup) createInstances(ctx context.Context) error {
	logger := ctxlog.FromContext(ctx)
	deps := membership(s.design.Submodules)

	var cpus, periphs []compose.Entry[Instance]
	var removals []string
	for _, l := range s.layers {
		cpus = append(cpus, guardByCore(l.CPU)...)
		periphs = append(periphs, guardByCore(l.Peripherals)...)
	}
	for _, ov := range s.overlays {
		removals = append(removals, ov.RemovePeripherals...)
	}

	candidates, err := compose.Compose(nil, compose.Layer[Instance]{Add: cpus}, deps)
	if err != nil {
		return err
	}
	if len(candidates) > 0 {
		cpu := candidates[len(candidates)-1]
		s.design.CPU = &cpu
		logger.Debug("CPU instantiated.", "name", cpu.Name, "core", cpu.Core)
	} else {
		logger.Warn("No CPU core present in the submodule list.")
	}

	instances, err := compose.Compose(nil, compose.Layer[Instance]{Add: periphs, Remove: removals}, deps, s.opts.composeOptions()...)
	if err != nil {
		return err
	}
	s.design.Peripherals = compose.Resolve(instances)

	logger.Debug("Peripherals instantiated.", "names", s.design.PeripheralNames())
	return nil
}

// guardByCore returns copies of entries that additionally require their own
// core.
func guardByCore(entries []compose.Entry[Instance]) []compose.Entry[Instance] {
	out := make([]compose.Entry[Instance], 0, len(entries))
	for _, e := range entries {
		e.Requires = append(slices.Clone(e.Requires), e.Value.Core)
		out = append(out, e)
	}
	return out
}

func (s *setup) setupConfs(ctx context.Context) error {
	logger := ctxlog.FromContext(ctx)

	var adds []compose.Entry[Conf]
	var removals []string
	for _, l := range s.layers {
		adds = append(adds, l.Confs...)
	}
	for _, ov := range s.overlays {
		removals = append(removals, ov.RemoveConfs...)
	}

	confs, err := compose.Compose(nil, compose.Layer[Conf]{Add: adds, Remove: removals}, membership(s.design.Submodules), s.opts.composeOptions()...)
	if err != nil {
		return err
	}
	s.design.Confs = confs

	if shadowed := len(confs) - len(s.design.EffectiveConfs()); shadowed > 0 {
		logger.Debug("Confs overridden by later definitions.", "count", shadowed)
	}
	logger.Debug("Confs composed.", "names", compose.Names(s.design.EffectiveConfs()))
	return nil
}

func (s *setup) setupPortmap(ctx context.Context) error {
	logger := ctxlog.FromContext(ctx)

	adds := slices.Clone(s.base.PortMap)
	for _, ov := range s.overlays {
		if !ov.InheritPortMap {
			adds = nil
		}
		adds = append(adds, ov.PortMap...)
	}

	entries, err := compose.Compose(nil, compose.Layer[PortMapEntry]{Add: adds}, membership(s.design.Submodules), s.opts.composeOptions()...)
	if err != nil {
		return err
	}

	known := compose.NewSet(s.design.PeripheralNames()...)
	if s.design.CPU != nil {
		known[s.design.CPU.Name] = struct{}{}
	}
	entries = compose.Remove(entries, func(p PortMapEntry) bool {
		if !known.Has(p.From.Corename) {
			logger.Warn("Dropping port-map entry for a core that was not instantiated.", "entry", p.String())
			return true
		}
		switch p.To.Corename {
		case CoreInternal, CoreExternal:
			return false
		}
		if !known.Has(p.To.Corename) {
			logger.Warn("Dropping port-map entry targeting a core that was not instantiated.", "entry", p.String())
			return true
		}
		return false
	})

	s.design.PortMap = compose.Resolve(entries)
	logger.Debug("Port map composed.", "count", len(s.design.PortMap))
	return nil
}

func (s *setup) postSetup(ctx context.Context) error {
	logger := ctxlog.FromContext(ctx)
	args := compose.NewSet(s.opts.Args...)

	var post PostSetup
	for _, l := range s.layers {
		for _, c := range l.PostSetup.Copies {
			if c.Root == "" {
				c.Root = l.SetupDir
			}
			post.Copies = append(post.Copies, c)
		}
		post.Flags = append(post.Flags, l.PostSetup.Flags...)
	}

	// Like the build dir, the header is named after the outermost core and is
	// never inherited.
	post.Header = s.layers[len(s.layers)-1].PostSetup.Header

	for _, sw := range post.Flags {
		if !args.Has(sw.Arg) {
			continue
		}
		c, ok := compose.Lookup(s.design.Confs, sw.Conf)
		if !ok {
			return fmt.Errorf("switch %s: %w: %s", sw.Arg, ErrConfNotFound, sw.Conf)
		}
		s.design.Confs = append(s.design.Confs, c.WithValue(sw.Value))
		logger.Info("Command-line switch applied.", "arg", sw.Arg, "conf", sw.Conf)
	}

	s.design.PostSetup = post
	logger.Debug("Post-setup actions collected.", "copies", len(post.Copies), "header", post.Header)
	return nil
}
