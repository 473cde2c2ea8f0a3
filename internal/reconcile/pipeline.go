package reconcile

import (
	"time"

	"github.com/google/uuid"
	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/sells-group/adrecon/internal/model"
)

// Inputs names the local files of one run. Empty means not supplied.
type Inputs struct {
	Kiwi    string
	Wabang  string
	Backend string
}

// Path returns the location supplied for kind.
func (in Inputs) Path(kind SourceKind) string {
	switch kind {
	case SourceKiwi:
		return in.Kiwi
	case SourceWabang:
		return in.Wabang
	default:
		return in.Backend
	}
}

// Validate checks that the backend and at least one agency source are set.
func (in Inputs) Validate() error {
	if in.Backend == "" {
		return eris.Wrap(ErrMissingSource, "backend source is required")
	}
	if in.Kiwi == "" && in.Wabang == "" {
		return eris.Wrap(ErrMissingSource, "at least one agency source is required")
	}
	return nil
}

// Options configures a Pipeline.
type Options struct {
	Sources Sources
	Rates   []SettlementRate
	Now     func() time.Time
	NewID   func() string
}

// Pipeline turns source files into a canonical snapshot. It holds no
// per-run state and is safe for concurrent use.
type Pipeline struct {
	sources Sources
	calc    *Calculator
	now     func() time.Time
	newID   func() string
}

// New creates a Pipeline. Zero options fall back to the built-in sources,
// settlement rates, wall clock and random ids.
func New(opts Options) *Pipeline {
	if opts.Sources.Backend.Sheet == "" {
		opts.Sources = DefaultSources()
	}
	if opts.Now == nil {
		opts.Now = time.Now
	}
	if opts.NewID == nil {
		opts.NewID = uuid.NewString
	}
	return &Pipeline{
		sources: opts.Sources,
		calc:    NewCalculator(opts.Rates),
		now:     opts.Now,
		newID:   opts.NewID,
	}
}

// Process runs every stage over in and returns the snapshot. It either
// returns a complete snapshot or an error; read failures are SourceErrors
// and missing inputs wrap ErrMissingSource.
func (p *Pipeline) Process(in Inputs) (*model.Snapshot, error) {
	if err := in.Validate(); err != nil {
		return nil, err
	}

	agency, err := p.readAgency(in)
	if err != nil {
		return nil, err
	}
	CanonicalizeKeys(agency)
	DecomposeTable(agency)
	zap.L().Info("reconcile: agency sources normalized", zap.Int("rows", agency.Len()))

	backend, err := ReadSource(p.sources.Spec(SourceBackend), in.Backend)
	if err != nil {
		return nil, err
	}
	CanonicalizeKeys(backend)

	merged, ms := Merge(agency, backend)
	zap.L().Info("reconcile: merge complete",
		zap.Int("rows", ms.OutputRows),
		zap.Int("matched", ms.Matched),
		zap.Int("unmatched", ms.Unmatched),
	)

	columns, records, _ := Coerce(merged)
	columns = p.calc.Apply(columns, records)

	snap := model.NewSnapshot(p.newID(), p.now().UTC(), columns, records)
	zap.L().Info("reconcile: snapshot built",
		zap.String("snapshot_id", snap.ID),
		zap.Int("rows", snap.Len()),
		zap.Int("columns", len(snap.Columns)),
	)
	return snap, nil
}

// readAgency reads the supplied agency sources, kiwi first, into one table.
func (p *Pipeline) readAgency(in Inputs) (*Table, error) {
	out := &Table{}
	for _, kind := range []SourceKind{SourceKiwi, SourceWabang} {
		path := in.Path(kind)
		if path == "" {
			continue
		}
		t, err := ReadSource(p.sources.Spec(kind), path)
		if err != nil {
			return nil, err
		}
		out.Append(t)
	}
	return out, nil
}
