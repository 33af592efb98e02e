package build

import (
	"context"
	"path/filepath"
	"sort"

	"github.com/TouchController/E1epack/pkg/archive"
	"github.com/TouchController/E1epack/pkg/closure"
	"github.com/TouchController/E1epack/pkg/errors"
	"github.com/TouchController/E1epack/pkg/graph"
	"github.com/TouchController/E1epack/pkg/ids"
	"github.com/TouchController/E1epack/pkg/logging"
	"github.com/TouchController/E1epack/pkg/mapping"
	"github.com/TouchController/E1epack/pkg/packs"
	"github.com/google/uuid"
)

// Plan is a resolved build that has not touched any output
type Plan struct {
	BuildID string
	// Levels holds the scheduled pack ids; packs in one level are independent
	Levels [][]ids.PackID
	// Packs is in dependency order
	Packs []*PackPlan
}

// Pack returns the plan of id
func (p *Plan) Pack(id ids.PackID) (*PackPlan, bool) {
	for _, pp := range p.Packs {
		if pp.Pack.ID() == id {
			return pp, true
		}
	}
	return nil, false
}

// PackPlan is everything decided about one pack before processing
type PackPlan struct {
	Pack    packs.Pack
	Closure closure.Set
	// Sources are the pack's source files, sorted
	Sources []string
	Mapping *mapping.Mapping
	// Contributed are the archive destinations of the pack, after remaps
	Contributed []string
	// Known are the destinations the pack's functions may call into
	Known    []string
	Prebuilt []*PrebuiltDep
	// Archive is the archive path
	Archive string
}

// PrebuiltDep is a resolved prebuilt dependency
type PrebuiltDep struct {
	Record closure.Record
	Path   string
	Keys   []string
}

// published is what a finished pack exposes to its dependents
type published struct {
	record      closure.Record
	contributed []string
	prebuilt    []*PrebuiltDep
}

// schedule is the validated, ordered selection of packs
type schedule struct {
	buildID string
	levels  [][]ids.PackID
	packs   map[ids.PackID]packs.Pack
}

func (b *Builder) schedule(opts Options) (*schedule, error) {
	all, err := packs.Discover(b.Config.PacksDir())
	if err != nil {
		return nil, err
	}
	if err := packs.ValidateAll(all); err != nil {
		return nil, err
	}

	selected, err := packs.Select(all, opts.Packs)
	if err != nil {
		return nil, err
	}

	byID := make(map[ids.PackID]packs.Pack, len(selected))
	nodes := make(map[ids.PackID][]ids.PackID, len(selected))
	for _, p := range selected {
		byID[p.ID()] = p
		nodes[p.ID()] = p.Dependencies()
	}
	for _, p := range selected {
		for _, pb := range p.Manifest.Prebuilt {
			if _, clash := byID[ids.PackID(pb.ID)]; clash {
				return nil, errors.Newf(errors.ErrPackInvalid, "pack %q declares %q as prebuilt, but it is a monorepo pack", p.ID(), pb.ID).
					WithDetail("pack", string(p.ID())).
					WithDetail("dependency", pb.ID)
			}
		}
	}

	levels, err := graph.Levels(nodes)
	if err != nil {
		return nil, err
	}

	return &schedule{
		buildID: uuid.NewString(),
		levels:  levels,
		packs:   byID,
	}, nil
}

// Plan resolves and maps the selected packs without processing any file
func (b *Builder) Plan(ctx context.Context, opts Options) (*Plan, error) {
	done := logging.LogOperationStart(b.Logger, "plan")
	defer done()

	s, err := b.schedule(opts)
	if err != nil {
		return nil, err
	}

	plan := &Plan{BuildID: s.buildID, Levels: s.levels}
	pub := map[ids.PackID]*published{}
	for _, level := range s.levels {
		for _, id := range level {
			if err := ctx.Err(); err != nil {
				return nil, err
			}
			pp, err := b.planPack(s.packs[id], pub)
			if err != nil {
				return nil, err
			}
			plan.Packs = append(plan.Packs, pp)
			pub[id] = pp.publish()
		}
	}
	return plan, nil
}

func (pp *PackPlan) publish() *published {
	return &published{
		record:      closure.NewRecord(pp.Pack.ID(), pp.Closure),
		contributed: pp.Contributed,
		prebuilt:    pp.Prebuilt,
	}
}

// planPack resolves one pack against the records of finished packs
func (b *Builder) planPack(p packs.Pack, pub map[ids.PackID]*published) (*PackPlan, error) {
	logger := b.Logger.With().Str("pack", string(p.ID())).Logger()

	var records []closure.Record
	for _, dep := range p.Dependencies() {
		if dep == p.ID() {
			records = append(records, closure.NewRecord(dep, nil))
			continue
		}
		d, ok := pub[dep]
		if !ok {
			return nil, errors.Newf(errors.ErrInternal, "dependency %q of pack %q was not built first", dep, p.ID())
		}
		records = append(records, d.record)
	}

	prebuilt, err := b.readPrebuilt(p)
	if err != nil {
		return nil, err
	}
	for _, pd := range prebuilt {
		records = append(records, pd.Record)
	}

	set, err := closure.Resolve(p.ID(), records)
	if err != nil {
		return nil, err
	}

	sources, err := p.SourceFiles(b.Config.Build.Ignore)
	if err != nil {
		return nil, err
	}
	m, err := mapping.Build(p.ID(), sources, b.Config.Build.KeepOriginalNames)
	if err != nil {
		return nil, err
	}
	contributed := archive.Destinations(m, b.remaps())

	pp := &PackPlan{
		Pack:        p,
		Closure:     set,
		Sources:     sources,
		Mapping:     m,
		Contributed: contributed,
		Known:       knownKeys(p.ID(), set, contributed, prebuilt, pub),
		Prebuilt:    prebuilt,
		Archive:     b.archivePath(p),
	}

	logger.Debug().
		Strs("closure", set.Strings()).
		Int("sources", len(sources)).
		Int("aliased", m.Aliased()).
		Int("known", len(pp.Known)).
		Msg("Planned pack")
	return pp, nil
}

// archivePath is the final archive location of p
func (b *Builder) archivePath(p packs.Pack) string {
	return filepath.Join(b.Config.OutputDir(), b.Config.ArchiveName(string(p.ID()), p.Version()))
}

func (b *Builder) readPrebuilt(p packs.Pack) ([]*PrebuiltDep, error) {
	var out []*PrebuiltDep
	for _, pb := range p.Manifest.Prebuilt {
		path := p.PrebuiltPath(pb)
		contents, err := archive.ReadPrebuilt(path)
		if err != nil {
			if e, ok := err.(*errors.Error); ok {
				e.WithDetail("pack", string(p.ID())).WithDetail("dependency", pb.ID)
			}
			return nil, err
		}

		id := ids.PackID(pb.ID)
		meta := contents.Metadata
		if meta != nil && meta.ID != "" && meta.ID != pb.ID {
			return nil, errors.Newf(errors.ErrPackInvalid, "prebuilt %s declares pack %q, expected %q", path, meta.ID, pb.ID).
				WithDetail("pack", string(p.ID())).
				WithDetail("dependency", pb.ID)
		}

		var rec closure.Record
		switch {
		case pb.Closure != nil:
			rec = closure.NewRecord(id, closure.FromStrings(pb.Closure))
		case meta != nil && meta.Closure != nil:
			rec = closure.NewRecord(id, closure.FromStrings(meta.Closure))
		default:
			rec = closure.UnknownRecord(id)
			b.Logger.Debug().
				Str("pack", string(p.ID())).
				Str("dependency", pb.ID).
				Msg("Prebuilt dependency has no closure, treating it as empty")
		}
		out = append(out, &PrebuiltDep{Record: rec, Path: path, Keys: contents.Keys})
	}
	return out, nil
}

// knownKeys collects the destinations of the pack itself and of every pack
// in its closure that this build has seen.
func knownKeys(self ids.PackID, set closure.Set, own []string, prebuilt []*PrebuiltDep, pub map[ids.PackID]*published) []string {
	keys := map[string]struct{}{}
	add := func(ks []string) {
		for _, k := range ks {
			keys[k] = struct{}{}
		}
	}
	add(own)

	contributions := map[ids.PackID][]string{}
	for _, d := range pub {
		contributions[d.record.ID] = d.contributed
		for _, pd := range d.prebuilt {
			contributions[pd.Record.ID] = pd.Keys
		}
	}
	for _, pd := range prebuilt {
		contributions[pd.Record.ID] = pd.Keys
	}

	for _, id := range set.Sorted() {
		if id != self {
			add(contributions[id])
		}
	}

	out := make([]string, 0, len(keys))
	for k := range keys {
		out = append(out, k)
	}
	sort.Strings(out)
	return out
}
