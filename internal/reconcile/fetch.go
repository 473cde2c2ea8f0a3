package reconcile

import (
	"context"
	"path/filepath"

	"golang.org/x/sync/errgroup"

	"github.com/sells-group/adrecon/internal/fetcher"
)

// Resolver turns a source location into a local file.
type Resolver interface {
	Resolve(ctx context.Context, location, dest string) (string, error)
}

// ResolveInputs resolves each supplied location concurrently. Remote
// locations are downloaded into dir; local paths are returned unchanged. A
// failed location is reported as a SourceError for its kind.
func ResolveInputs(ctx context.Context, r Resolver, in Inputs, dir string) (Inputs, error) {
	out := in
	g, gctx := errgroup.WithContext(ctx)

	for _, src := range []struct {
		kind SourceKind
		loc  string
		dst  *string
	}{
		{SourceKiwi, in.Kiwi, &out.Kiwi},
		{SourceWabang, in.Wabang, &out.Wabang},
		{SourceBackend, in.Backend, &out.Backend},
	} {
		if src.loc == "" {
			continue
		}
		g.Go(func() error {
			dest := filepath.Join(dir, string(src.kind)+"-"+fetcher.RemoteName(src.loc))
			path, err := r.Resolve(gctx, src.loc, dest)
			if err != nil {
				return &SourceError{Kind: src.kind, Path: src.loc, Err: err}
			}
			*src.dst = path
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return Inputs{}, err
	}
	return out, nil
}
