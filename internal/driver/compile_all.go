package driver

import (
	"context"
	"fmt"
	"runtime"

	"golang.org/x/sync/errgroup"

	"rift/internal/buildpipeline"
	"rift/internal/project"
)

// Request describes one batch lowering run.
type Request struct {
	// Files are the .mir inputs, already in deterministic order.
	Files []string
	// OutDir receives the listings.
	OutDir string
	// Jobs caps parallelism; zero means one worker per CPU.
	Jobs int
	// DegradeMissing forwards the compat flag.
	DegradeMissing bool
	// MaxDiagnostics bounds each file's diagnostic bag.
	MaxDiagnostics int
	// NoCache disables the content-hash skip.
	NoCache bool
	// Progress receives stage events from every worker; nil discards.
	Progress buildpipeline.ProgressSink
}

// Result is the batch outcome. Results holds one entry per input file
// in input order regardless of completion order.
type Result struct {
	Results []buildpipeline.FileResult
	// Skipped counts files served from cache.
	Skipped int
}

// Failed reports whether any file failed.
func (r *Result) Failed() bool {
	for i := range r.Results {
		if r.Results[i].Failed() {
			return true
		}
	}
	return false
}

// CompileAll lowers every file in parallel. Worker count follows Jobs;
// each worker owns distinct result slots, so no locking is needed. The
// first context cancellation stops scheduling and drains.
func CompileAll(ctx context.Context, req *Request) (Result, error) {
	if req == nil {
		return Result{}, fmt.Errorf("driver: nil request")
	}
	res := Result{Results: make([]buildpipeline.FileResult, len(req.Files))}
	if len(req.Files) == 0 {
		return res, nil
	}

	jobs := req.Jobs
	if jobs <= 0 {
		jobs = runtime.GOMAXPROCS(0)
	}
	if jobs > len(req.Files) {
		jobs = len(req.Files)
	}

	skipped := make([]bool, len(req.Files))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(jobs)
	for i, path := range req.Files {
		i, path := i, path
		g.Go(func() error {
			select {
			case <-gctx.Done():
				return gctx.Err()
			default:
			}
			opts := buildpipeline.CompileOptions{
				OutDir:         req.OutDir,
				DegradeMissing: req.DegradeMissing,
				MaxDiagnostics: req.MaxDiagnostics,
				Progress:       req.Progress,
			}
			if !req.NoCache {
				if hit, r := cacheLookup(path, &opts); hit {
					res.Results[i] = r
					skipped[i] = true
					return nil
				}
			}
			r := buildpipeline.CompileFile(path, opts)
			res.Results[i] = r
			if r.Err == nil && !req.NoCache {
				cacheStore(path, &opts)
			}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return res, err
	}
	for _, s := range skipped {
		if s {
			res.Skipped++
		}
	}
	return res, nil
}

// ManifestRequest builds a Request from a loaded project manifest.
func ManifestRequest(m *project.Manifest, files []string) *Request {
	return &Request{
		Files:          files,
		OutDir:         m.OutputDir(),
		Jobs:           m.Config.Build.Jobs,
		DegradeMissing: m.Config.Compat.DegradeMissing,
	}
}
