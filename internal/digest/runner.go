// Package digest runs the end-to-end pipeline: list channel uploads, fetch
// and store transcripts, analyse them and record what was processed.
package digest

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/anatolykoptev/go_podcast/internal/channels"
	"github.com/anatolykoptev/go_podcast/internal/engine"
	"github.com/anatolykoptev/go_podcast/internal/engine/sources"
	"github.com/anatolykoptev/go_podcast/internal/report"
	"github.com/anatolykoptev/go_podcast/internal/storage"
)

// Options select what one run processes.
type Options struct {
	Channels     []string // handles; empty = enabled channels from the config
	DaysBack     int
	Limit        int // videos per channel
	DryRun       bool
	SkipExisting bool // skip videos already in the history
	Summaries    bool // also write a narrative summary per video
	Style        string
}

// Runner holds the stores a run reads and writes. History, Archive and
// Channels are optional.
type Runner struct {
	store       *storage.TranscriptStore
	history     *storage.History
	archive     *storage.Archive
	channels    *channels.Manager
	concurrency int

	validate func(ctx context.Context, handle string) (sources.ChannelInfo, error)
	list     func(ctx context.Context, handle string, daysBack, limit int) ([]engine.Video, error)
	fetch    func(ctx context.Context, videoID string, langs []string) (engine.Transcript, error)
}

// Option configures a Runner.
type Option func(*Runner)

func WithHistory(h *storage.History) Option   { return func(r *Runner) { r.history = h } }
func WithArchive(a *storage.Archive) Option   { return func(r *Runner) { r.archive = a } }
func WithChannels(m *channels.Manager) Option { return func(r *Runner) { r.channels = m } }
func WithConcurrency(n int) Option            { return func(r *Runner) { r.concurrency = n } }

// NewRunner creates a runner storing transcripts in store.
func NewRunner(store *storage.TranscriptStore, opts ...Option) *Runner {
	r := &Runner{
		store:       store,
		concurrency: 3,
		validate:    sources.ValidateChannel,
		list:        sources.ListChannelVideos,
		fetch:       sources.FetchTranscript,
	}
	for _, o := range opts {
		o(r)
	}
	if r.concurrency <= 0 {
		r.concurrency = 1
	}
	return r
}

// Defaults fills zero options from the channel config (or built-in values).
func (r *Runner) Defaults(opts Options) Options {
	d := channels.Defaults{DaysLookback: 7, VideosPerChannel: 1}
	if r.channels != nil {
		d = r.channels.Defaults()
	}
	if len(opts.Channels) == 0 && r.channels != nil {
		for _, c := range r.channels.Enabled() {
			opts.Channels = append(opts.Channels, c.Handle)
		}
	}
	if opts.DaysBack <= 0 {
		opts.DaysBack = d.DaysLookback
	}
	if opts.Limit <= 0 {
		opts.Limit = max(d.VideosPerChannel, 1)
	}
	opts.Style = engine.NormalizeStyle(opts.Style)
	return opts
}

// Run processes every channel in opts, at most r.concurrency at a time.
// Per-channel and per-video failures are recorded in the report; the
// returned error is non-nil only when no channel could be processed at all.
func (r *Runner) Run(ctx context.Context, opts Options) (engine.RunReport, error) {
	opts = r.Defaults(opts)
	rep := engine.RunReport{Started: time.Now().UTC(), DryRun: opts.DryRun}
	if len(opts.Channels) == 0 {
		return rep, errors.New("digest: no channels to process")
	}

	results := make([]channelResult, len(opts.Channels))
	sem := make(chan struct{}, r.concurrency)
	var wg sync.WaitGroup
	for i, handle := range opts.Channels {
		wg.Add(1)
		go func(i int, handle string) {
			defer wg.Done()
			select {
			case sem <- struct{}{}:
			case <-ctx.Done():
				results[i] = channelResult{status: engine.ChannelStatus{Handle: handle, Errors: []string{ctx.Err().Error()}}}
				return
			}
			defer func() { <-sem }()
			_ = engine.TrackOperation(ctx, "channel "+handle, func(ctx context.Context) error {
				results[i] = r.runChannel(ctx, handle, opts)
				return nil
			})
		}(i, handle)
	}
	wg.Wait()

	failed := 0
	for _, res := range results {
		rep.Channels = append(rep.Channels, res.status)
		rep.Videos = append(rep.Videos, res.videos...)
		rep.Analyses = append(rep.Analyses, res.analyses...)
		if res.status.Title == "" {
			failed++
		}
	}
	rep.Finished = time.Now().UTC()
	slog.Info("digest run finished",
		slog.Int("channels", len(rep.Channels)),
		slog.Int("analyses", len(rep.Analyses)),
		slog.Bool("dry_run", opts.DryRun),
		slog.Duration("elapsed", rep.Finished.Sub(rep.Started)))

	if failed == len(results) {
		return rep, fmt.Errorf("digest: %w: none of %d channels could be validated", engine.ErrChannelNotFound, failed)
	}
	return rep, nil
}

type channelResult struct {
	status   engine.ChannelStatus
	videos   []engine.Video
	analyses []engine.VideoAnalysis
}

func (r *Runner) runChannel(ctx context.Context, handle string, opts Options) channelResult {
	h := sources.NormalizeHandle(handle)
	res := channelResult{status: engine.ChannelStatus{Handle: strings.TrimPrefix(handle, "@")}}
	if h == "" {
		res.status.Errors = append(res.status.Errors, fmt.Sprintf("invalid handle %q", handle))
		return res
	}
	res.status.Handle = h

	info, err := r.validate(ctx, h)
	if err != nil {
		slog.Error("channel validation failed", slog.String("channel", h), slog.Any("error", err))
		res.status.Errors = append(res.status.Errors, err.Error())
		return res
	}
	res.status.Title = info.Title
	slog.Info("channel validated", slog.String("channel", h), slog.String("title", info.Title))

	videos, err := r.list(ctx, h, opts.DaysBack, opts.Limit)
	if err != nil {
		res.status.Errors = append(res.status.Errors, err.Error())
		return res
	}
	res.status.Videos = len(videos)
	if len(videos) == 0 {
		slog.Warn("no recent videos", slog.String("channel", h), slog.Int("days", opts.DaysBack))
		res.status.Errors = append(res.status.Errors, engine.ErrNoVideos.Error())
		return res
	}
	for i := range videos {
		if videos[i].Handle == "" {
			videos[i].Handle = h
		}
	}
	if opts.DryRun {
		res.videos = videos
		return res
	}

	for _, v := range videos {
		if ctx.Err() != nil {
			res.status.Errors = append(res.status.Errors, ctx.Err().Error())
			break
		}
		if opts.SkipExisting && r.processed(ctx, v.ID) {
			res.status.Skipped++
			continue
		}
		va, err := r.processVideo(ctx, v, opts)
		if err != nil {
			slog.Warn("video failed", slog.String("channel", h), slog.String("video", v.ID), slog.Any("error", err))
			res.status.Errors = append(res.status.Errors, fmt.Sprintf("%s: %v", v.ID, err))
			continue
		}
		res.analyses = append(res.analyses, va)
		res.status.Analyzed++
	}
	r.markChannel(ctx, h)
	return res
}

func (r *Runner) processed(ctx context.Context, videoID string) bool {
	if r.history == nil {
		return false
	}
	ok, err := r.history.IsProcessed(ctx, videoID)
	if err != nil {
		slog.Warn("history lookup failed", slog.String("video", videoID), slog.Any("error", err))
	}
	return ok
}

// processVideo fetches (or reuses) the transcript of v, stores and analyses it.
func (r *Runner) processVideo(ctx context.Context, v engine.Video, opts Options) (engine.VideoAnalysis, error) {
	text, method, path, err := r.transcript(ctx, v)
	if err != nil {
		return engine.VideoAnalysis{}, err
	}

	va := engine.AnalyzeTranscript(ctx, v, text)
	va.TranscriptMethod = method
	va.TranscriptPath = path
	if opts.Summaries {
		va.Summary, _ = engine.Summarize(ctx, v, va.Record, text, opts.Style)
	}
	r.record(ctx, va)
	return va, nil
}

func (r *Runner) transcript(ctx context.Context, v engine.Video) (text, method, path string, err error) {
	if r.store.Exists(v) {
		path = r.store.Path(v)
		if _, text, err = storage.Load(path); err == nil && text != "" {
			slog.Info("transcript already stored", slog.String("path", path))
			return text, engine.TranscriptLocal, path, nil
		}
	}
	tr, err := r.fetch(ctx, v.ID, engine.Cfg.TranscriptLangs)
	if err != nil {
		return "", "", "", err
	}
	slog.Info("transcript fetched", slog.String("video", v.ID), slog.String("method", tr.Method), slog.Int("chars", len(tr.Text)))
	path, err = r.store.Save(v, tr.Text)
	if err != nil {
		return "", "", "", err
	}
	return tr.Text, tr.Method, path, nil
}

// record writes va to the history and the archive. Failures are logged only.
func (r *Runner) record(ctx context.Context, va engine.VideoAnalysis) {
	if r.history != nil {
		err := r.history.MarkProcessed(ctx, engine.ProcessedVideo{
			VideoID:     va.Video.ID,
			Channel:     va.Video.Handle,
			Title:       va.Video.Title,
			Path:        va.TranscriptPath,
			Method:      va.Method,
			Status:      string(va.Status),
			Confidence:  va.Record.Confidence,
			ProcessedAt: va.AnalyzedAt,
		})
		if err != nil {
			slog.Warn("history write failed", slog.String("video", va.Video.ID), slog.Any("error", err))
		}
	}
	if r.archive != nil {
		if err := r.archive.SaveAnalysis(ctx, va); err != nil {
			slog.Warn("archive write failed", slog.String("video", va.Video.ID), slog.Any("error", err))
		}
	}
}

func (r *Runner) markChannel(ctx context.Context, handle string) {
	at := time.Now().UTC()
	if r.history != nil {
		if err := r.history.SetLastProcessed(ctx, handle, at); err != nil {
			slog.Warn("history write failed", slog.String("channel", handle), slog.Any("error", err))
		}
	}
	if r.channels != nil {
		if err := r.channels.UpdateLastProcessed(handle, at); err != nil && !errors.Is(err, channels.ErrUnknownChannel) {
			slog.Warn("channel config write failed", slog.String("channel", handle), slog.Any("error", err))
		}
	}
}

// AnalyzeFile analyses a stored transcript (or any text/Markdown file).
// Videos without stored metadata get their title from the file name.
func AnalyzeFile(ctx context.Context, path string) (engine.VideoAnalysis, string, error) {
	v, text, err := storage.Load(path)
	if err != nil {
		return engine.VideoAnalysis{}, "", err
	}
	if strings.TrimSpace(text) == "" {
		return engine.VideoAnalysis{}, "", fmt.Errorf("analyze %s: %w", path, engine.ErrNoTranscript)
	}
	if v.Title == "" {
		base := filepath.Base(path)
		v.Title = strings.TrimSuffix(base, filepath.Ext(base))
	}
	va := engine.AnalyzeTranscript(ctx, v, text)
	va.TranscriptMethod = engine.TranscriptLocal
	va.TranscriptPath = path
	return va, text, nil
}

// WriteReport renders rep as the dated digest in dir and returns the path
// and the Markdown.
func WriteReport(rep engine.RunReport, dir string) (path, md string, err error) {
	day := rep.Started
	if day.IsZero() {
		day = time.Now()
	}
	md = report.Digest(rep)
	path, err = report.Write(dir, report.DigestFileName(day), md)
	if err != nil {
		return "", md, err
	}
	engine.IncrDigestsWritten()
	return path, md, nil
}
