package report

import (
	"context"
	"errors"
	"fmt"
	"time"

	"recogstats/internal/domain"
	"recogstats/internal/stats"

	"github.com/samber/lo"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

var ErrDuplicateOrg = errors.New("organization already produced by an earlier url")

type DocumentFetcher interface {
	FetchDocument(ctx context.Context, url string) (domain.RecognitionDocument, error)
	FetchLastModified(ctx context.Context, dataURL string) (string, error)
}

type ChartRenderer interface {
	Render(ctx context.Context, orgName string, summary domain.StatsSummary, lastModified string) (string, error)
}

type Publisher interface {
	Publish(ctx context.Context, res domain.OrgResult) error
}

type HistoryStore interface {
	StartRun(startedAt time.Time, orgCount int) (string, error)
	RecordOrg(runID string, res domain.OrgResult, at time.Time) error
	FinishRun(runID string, finishedAt time.Time, succeeded int) error
}

type Options struct {
	URLs                []string
	OrgMarker           string
	Workers             int
	ResolveLastModified bool
	Stats               stats.Options
}

// Deps are the collaborators of a run. Publisher and History are optional.
type Deps struct {
	Fetcher   DocumentFetcher
	Renderer  ChartRenderer
	Publisher Publisher
	History   HistoryStore
	Now       func() time.Time
	Logger    *zap.Logger
}

// RunResult tracks the outcome of every organization, in input order.
type RunResult struct {
	RunID     string
	Results   []domain.OrgResult
	Succeeded int
	Failed    int
}

// Run processes every organization URL: fetch, aggregate, last-modified
// lookup, render, publish. A failing organization is logged and recorded in
// its result; the others still run.
func Run(ctx context.Context, opts Options, deps Deps) RunResult {
	if deps.Now == nil {
		deps.Now = time.Now
	}
	if deps.Logger == nil {
		deps.Logger = zap.NewNop()
	}
	if opts.Workers < 1 {
		opts.Workers = 1
	}
	urls := lo.Uniq(opts.URLs)
	started := deps.Now()
	deps.Logger.Info("run started", zap.Int("orgs", len(urls)), zap.Int("workers", opts.Workers))

	results := make([]domain.OrgResult, len(urls))
	names := assignOrgNames(urls, opts.OrgMarker, results)

	var g errgroup.Group
	g.SetLimit(opts.Workers)
	for i, url := range urls {
		if results[i].Err != nil {
			deps.Logger.Error("skipping org", zap.String("url", url), zap.Error(results[i].Err))
			continue
		}
		if err := ctx.Err(); err != nil {
			results[i].Err = err
			continue
		}
		g.Go(func() error {
			results[i] = processOrg(ctx, opts, deps, url, names[i])
			return nil
		})
	}
	_ = g.Wait()

	run := RunResult{Results: results}
	for _, res := range results {
		if res.Succeeded() {
			run.Succeeded++
		} else {
			run.Failed++
		}
	}
	if deps.History != nil {
		run.RunID = recordHistory(deps, started, run)
	}
	deps.Logger.Info("run finished",
		zap.Int("succeeded", run.Succeeded),
		zap.Int("failed", run.Failed),
		zap.Duration("elapsed", deps.Now().Sub(started)),
	)
	return run
}

// assignOrgNames derives every organization name up front so two URLs that
// map to the same artifact are caught before anything is written.
func assignOrgNames(urls []string, marker string, results []domain.OrgResult) []string {
	names := make([]string, len(urls))
	seen := make(map[string]string, len(urls))
	for i, url := range urls {
		results[i].SourceURL = url
		name, err := domain.OrgName(url, marker)
		if err != nil {
			results[i].Err = err
			continue
		}
		results[i].OrgName = name
		if first, ok := seen[name]; ok {
			results[i].Err = fmt.Errorf("%w: %s (first: %s)", ErrDuplicateOrg, name, first)
			continue
		}
		seen[name] = url
		names[i] = name
	}
	return names
}

func processOrg(ctx context.Context, opts Options, deps Deps, url, org string) domain.OrgResult {
	res := domain.OrgResult{OrgName: org, SourceURL: url}
	log := deps.Logger.With(zap.String("org", org))

	doc, err := deps.Fetcher.FetchDocument(ctx, url)
	if err != nil {
		log.Warn("fetch failed, skipping org", zap.String("url", url), zap.Error(err))
		res.Err = fmt.Errorf("fetching document: %w", err)
		return res
	}
	if doc.Total != len(doc.Data) {
		log.Warn("document total does not match data length", zap.Int("total", doc.Total), zap.Int("records", len(doc.Data)))
	}

	statsOpts := opts.Stats
	statsOpts.BaseURL = url
	summary, problems := stats.Summarize(doc, deps.Now(), statsOpts)
	for _, p := range problems {
		log.Warn("unparsable record date", zap.Error(p))
	}
	res.Summary = summary

	if opts.ResolveLastModified {
		lastModified, err := deps.Fetcher.FetchLastModified(ctx, url)
		if err != nil {
			log.Info("last modified unavailable", zap.Error(err))
		} else {
			res.LastModified = lastModified
		}
	}

	path, err := deps.Renderer.Render(ctx, org, summary, res.LastModified)
	if err != nil {
		log.Error("render failed", zap.Error(err))
		res.Err = fmt.Errorf("rendering: %w", err)
		return res
	}
	res.ArtifactPath = path
	log.Info("org processed",
		zap.Int("total", summary.Total),
		zap.Int("active", summary.Active),
		zap.Int("image_urls", summary.ImageURLCount),
		zap.Int("long_descriptions", summary.LongDescriptionCount),
		zap.Int("missing_end_date", summary.MissingEndDateCount),
		zap.String("last_modified", res.LastModified),
		zap.String("artifact", path),
	)

	if deps.Publisher != nil {
		if err := deps.Publisher.Publish(ctx, res); err != nil {
			log.Warn("publish failed", zap.Error(err))
		} else {
			res.Published = true
		}
	}
	return res
}

func recordHistory(deps Deps, started time.Time, run RunResult) string {
	runID, err := deps.History.StartRun(started, len(run.Results))
	if err != nil {
		deps.Logger.Warn("history start failed", zap.Error(err))
		return ""
	}
	now := deps.Now()
	for _, res := range run.Results {
		if !res.Succeeded() {
			continue
		}
		if err := deps.History.RecordOrg(runID, res, now); err != nil {
			deps.Logger.Warn("history record failed", zap.String("org", res.OrgName), zap.Error(err))
		}
	}
	if err := deps.History.FinishRun(runID, now, run.Succeeded); err != nil {
		deps.Logger.Warn("history finish failed", zap.Error(err))
	}
	return runID
}
