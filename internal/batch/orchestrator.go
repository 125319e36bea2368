// Package batch walks a source tree, converts every supported track and
// places the results into the library.
package batch

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync/atomic"
	"time"

	"github.com/gofrs/flock"
	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"github.com/jaa/music-convert/internal/adapters/gain"
	"github.com/jaa/music-convert/internal/config"
	"github.com/jaa/music-convert/internal/encode"
	"github.com/jaa/music-convert/internal/library"
	"github.com/jaa/music-convert/internal/output"
	"github.com/jaa/music-convert/internal/plan"
	"github.com/jaa/music-convert/internal/tags"
)

// lockFileName guards the library root against concurrent runs.
const lockFileName = ".mconv.lock"

// ErrLibraryLocked means another process holds the library lock.
var ErrLibraryLocked = errors.New("library is in use by another process")

// Orchestrator drives one batch run. Albums are processed in order;
// tracks within an album run on a bounded worker pool.
type Orchestrator struct {
	Config      config.Config
	Engine      *encode.Engine
	Prober      encode.Prober
	Builder     *library.PathBuilder
	Mover       *library.Mover
	Emitter     output.EventEmitter
	ReadTags    func(path string) (tags.Record, error)
	WriteTags   func(path string, record tags.Record) error
	AnalyzerFor func(f plan.Format) encode.Analyzer
	DryRun      bool

	fatal atomic.Bool
}

func New(cfg config.Config, engine *encode.Engine, prober encode.Prober, emitter output.EventEmitter) *Orchestrator {
	return &Orchestrator{
		Config:      cfg,
		Engine:      engine,
		Prober:      prober,
		Builder:     library.NewPathBuilder(cfg.Library.Root),
		Mover:       library.NewMover(),
		Emitter:     emitter,
		ReadTags:    tags.Read,
		WriteTags:   tags.WriteID3,
		AnalyzerFor: gain.ForFormat,
	}
}

type preparedTrack struct {
	track    plan.Track
	plan     plan.ConversionPlan
	input    string // staged copy when normalizing, else empty
	skipDest string // destination already placed by a previous run
	failed   bool
}

// Run converts everything under sourceDir. The returned report is valid
// even when err is non-nil; err means the batch stopped early.
func (o *Orchestrator) Run(ctx context.Context, sourceDir string) (*Report, error) {
	report := &Report{}

	if err := os.MkdirAll(o.Config.Library.Root, 0o755); err != nil {
		return report, fmt.Errorf("create library root: %w", err)
	}

	lock := flock.New(filepath.Join(o.Config.Library.Root, lockFileName))
	locked, err := lock.TryLock()
	if err != nil {
		return report, fmt.Errorf("lock library: %w", err)
	}
	if !locked {
		return report, ErrLibraryLocked
	}
	defer lock.Unlock()

	albums, err := DiscoverAlbums(sourceDir)
	if err != nil {
		return report, err
	}

	total := 0
	for _, album := range albums {
		total += len(album.Tracks)
	}
	o.emit(output.LevelInfo, output.EventBatchStarted, "",
		fmt.Sprintf("converting %d tracks in %d albums", total, len(albums)), nil)

	runDir := filepath.Join(o.stagingBase(), "mconv-"+uuid.NewString())
	if !o.DryRun {
		if err := os.MkdirAll(runDir, 0o755); err != nil {
			return report, fmt.Errorf("create staging dir: %w", err)
		}
		defer os.RemoveAll(runDir)
	}

	timeout := time.Duration(o.Config.Defaults.CommandTimeoutSeconds) * time.Second

	for _, album := range albums {
		if ctx.Err() != nil {
			return report, ctx.Err()
		}
		if err := o.processAlbum(ctx, album, runDir, timeout, report); err != nil {
			return report, err
		}
	}

	counts := report.Counts()
	o.emit(output.LevelInfo, output.EventBatchFinished, "",
		fmt.Sprintf("done: %d converted, %d passed through, %d duplicates, %d skipped, %d failed",
			counts.Converted, counts.PassedThru, counts.Deduplicated, counts.Skipped, counts.Failed), nil)
	return report, nil
}

func (o *Orchestrator) stagingBase() string {
	if o.Config.Defaults.StagingDir != "" {
		return o.Config.Defaults.StagingDir
	}
	return os.TempDir()
}

func (o *Orchestrator) processAlbum(ctx context.Context, album Album, runDir string, timeout time.Duration, report *Report) error {
	o.emit(output.LevelInfo, output.EventAlbumStarted, "", "album "+album.Dir, nil)

	prepared := make([]preparedTrack, 0, len(album.Tracks))
	for _, track := range album.Tracks {
		record, err := o.ReadTags(track.Path)
		if err != nil {
			report.Add(TrackResult{Source: track.Path, State: StateFailed, Reason: err.Error()})
			o.emit(output.LevelError, output.EventTrackFailed, track.Path, err.Error(), nil)
			if !o.Config.Defaults.ContinueOnError {
				return err
			}
			continue
		}
		track.Tags = record

		if o.Prober != nil {
			kbps, probeErr := o.Prober.BitrateKbps(ctx, track.Path)
			if probeErr != nil {
				o.emit(output.LevelWarn, output.EventTrackStarted, track.Path,
					"bitrate probe failed, assuming pass-through quality", nil)
			} else {
				track.BitrateKbps = kbps
			}
		}

		prepared = append(prepared, preparedTrack{track: track})
	}

	multi := multiDisc(prepared)
	for i := range prepared {
		prepared[i].plan = plan.Build(prepared[i].track, o.Config.Profile)
	}

	if o.DryRun {
		o.reportDryRun(prepared, multi, report)
		return nil
	}

	// Destinations placed by a previous run are settled before the workers
	// start, so a re-run never spawns an encoder for them. The snapshot is
	// taken up front: tracks colliding on a name within this run still go
	// through the mover's suffix resolution.
	target := plan.Target(o.Config.Profile)
	for i := range prepared {
		pt := &prepared[i]
		if pt.failed || pt.plan.Empty() {
			continue
		}
		dest, err := o.Builder.Build(pt.track, target, multi)
		if err != nil {
			continue
		}
		if destinationExists(dest.Path()) {
			pt.skipDest = dest.Path()
		}
	}

	if o.Config.Profile.Normalize {
		if err := o.stageAndAnalyze(ctx, prepared, runDir, timeout, report); err != nil {
			return err
		}
	}

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(o.workers())
	for i := range prepared {
		pt := &prepared[i]
		if pt.failed {
			continue
		}
		g.Go(func() error {
			return o.convertTrack(gctx, pt, multi, runDir, timeout, report)
		})
	}
	return g.Wait()
}

// stageAndAnalyze copies every track into staging and runs the album's
// loudness analyzers over the copies. Sources stay untouched; aacgain in
// particular rewrites audio frames, and the decoders pick the gain tags
// up from the staged copies.
func (o *Orchestrator) stageAndAnalyze(ctx context.Context, prepared []preparedTrack, runDir string, timeout time.Duration, report *Report) error {
	byFormat := make(map[plan.Format][]string)

	for i := range prepared {
		pt := &prepared[i]
		if pt.failed || pt.skipDest != "" {
			continue
		}
		staged := filepath.Join(runDir, uuid.NewString()+pt.track.Format.Extension())
		if err := library.CopyFile(pt.track.Path, staged); err != nil {
			pt.failed = true
			report.Add(TrackResult{Source: pt.track.Path, State: StateFailed, Reason: err.Error()})
			o.emit(output.LevelError, output.EventTrackFailed, pt.track.Path, err.Error(), nil)
			if !o.Config.Defaults.ContinueOnError {
				return err
			}
			continue
		}
		pt.input = staged
		byFormat[pt.track.Format] = append(byFormat[pt.track.Format], staged)
	}

	for format, paths := range byFormat {
		analyzer := o.AnalyzerFor(format)
		if analyzer == nil {
			continue
		}
		if err := o.Engine.Analyze(ctx, analyzer, paths, timeout); err != nil {
			var encErr *encode.Error
			if errors.As(err, &encErr) && encErr.BatchFatal() {
				return err
			}
			// Tracks still convert, just without loudness adjustment.
			o.emit(output.LevelWarn, output.EventAlbumStarted, "",
				fmt.Sprintf("loudness analysis failed for %s files: %v", format, err), nil)
		}
	}
	return nil
}

func (o *Orchestrator) reportDryRun(prepared []preparedTrack, multi bool, report *Report) {
	target := plan.Target(o.Config.Profile)
	for _, pt := range prepared {
		if pt.failed {
			continue
		}
		outFormat := target
		state := StateConverted
		if pt.plan.Empty() {
			outFormat = pt.track.Format
			state = StatePassedThrough
		}
		dest, err := o.Builder.Build(pt.track, outFormat, multi)
		if err != nil {
			report.Add(TrackResult{Source: pt.track.Path, State: StateFailed, Reason: err.Error()})
			o.emit(output.LevelError, output.EventTrackFailed, pt.track.Path, err.Error(), nil)
			continue
		}
		report.Add(TrackResult{Source: pt.track.Path, State: state, Dest: dest.Path()})
		o.emit(output.LevelInfo, output.EventTrackFinished, pt.track.Path,
			fmt.Sprintf("would place %s at %s", pt.track.Path, dest.Path()), nil)
	}
}

func (o *Orchestrator) convertTrack(ctx context.Context, pt *preparedTrack, multi bool, runDir string, timeout time.Duration, report *Report) error {
	// A batch-fatal error cancels the group; queued tracks bail out
	// without piling duplicate records onto the report.
	if ctx.Err() != nil {
		return ctx.Err()
	}

	start := time.Now()
	track := pt.track
	input := pt.input
	if input == "" {
		input = track.Path
	}

	if pt.skipDest != "" {
		report.Add(TrackResult{Source: track.Path, State: StateSkipped, Dest: pt.skipDest, Duration: time.Since(start)})
		o.emit(output.LevelInfo, output.EventTrackSkipped, track.Path,
			fmt.Sprintf("%s already at %s", track.Path, pt.skipDest), nil)
		return nil
	}

	o.emit(output.LevelInfo, output.EventTrackStarted, track.Path, "converting "+track.Path, nil)

	fail := func(reason string, cause error) error {
		report.Add(TrackResult{Source: track.Path, State: StateFailed, Reason: reason, Duration: time.Since(start)})
		o.emit(output.LevelError, output.EventTrackFailed, track.Path, track.Path+": "+reason, nil)
		if input != track.Path {
			_ = os.Remove(input)
		}
		if !o.Config.Defaults.ContinueOnError {
			return cause
		}
		return nil
	}

	if pt.plan.Empty() {
		return o.placePassThrough(track, input, multi, start, report, fail)
	}

	target := plan.Target(o.Config.Profile)
	dest, err := o.Builder.Build(track, target, multi)
	if err != nil {
		return fail(err.Error(), err)
	}

	outcome, err := o.Engine.ExecutePlan(ctx, pt.plan, input, runDir, timeout)
	if err != nil {
		var encErr *encode.Error
		if errors.As(err, &encErr) {
			if encErr.BatchFatal() {
				// One record for the whole batch, not one per queued track.
				if o.fatal.CompareAndSwap(false, true) {
					report.Add(TrackResult{Source: track.Path, State: StateFailed, Reason: encErr.Error(), Duration: time.Since(start)})
					o.emit(output.LevelError, output.EventTrackFailed, track.Path, encErr.Error(), nil)
				}
				if input != track.Path {
					_ = os.Remove(input)
				}
				return err
			}
			if encErr.Reason == encode.ReasonInterrupted {
				report.Add(TrackResult{Source: track.Path, State: StateFailed, Reason: encErr.Error(), Duration: time.Since(start)})
				o.emit(output.LevelError, output.EventTrackFailed, track.Path, encErr.Error(), nil)
				if input != track.Path {
					_ = os.Remove(input)
				}
				return err
			}
		}
		return fail(err.Error(), err)
	}
	if input != track.Path {
		_ = os.Remove(input)
		input = track.Path
	}

	if target == plan.MP3 {
		if err := o.WriteTags(outcome.OutputPath, track.Tags); err != nil {
			_ = os.Remove(outcome.OutputPath)
			return fail("write tags: "+err.Error(), err)
		}
	}

	result, err := o.Mover.MoveStaged(outcome.OutputPath, dest)
	if err != nil {
		_ = os.Remove(outcome.OutputPath)
		return fail(err.Error(), err)
	}

	state := StateConverted
	if result.Deduplicated {
		state = StateDeduplicated
	}
	report.Add(TrackResult{Source: track.Path, State: state, Dest: result.Path, Duration: time.Since(start)})
	o.emit(output.LevelInfo, output.EventTrackFinished, track.Path,
		fmt.Sprintf("%s -> %s", track.Path, result.Path), nil)
	return nil
}

func (o *Orchestrator) placePassThrough(track plan.Track, input string, multi bool, start time.Time, report *Report, fail func(string, error) error) error {
	dest, err := o.Builder.Build(track, track.Format, multi)
	if err != nil {
		return fail(err.Error(), err)
	}

	var result library.MoveResult
	if input != track.Path {
		result, err = o.Mover.MoveStaged(input, dest)
	} else {
		result, err = o.Mover.CopyIn(track.Path, dest)
	}
	if err != nil {
		return fail(err.Error(), err)
	}

	state := StatePassedThrough
	if result.Deduplicated {
		state = StateDeduplicated
	}
	report.Add(TrackResult{Source: track.Path, State: state, Dest: result.Path, Duration: time.Since(start)})
	o.emit(output.LevelInfo, output.EventTrackFinished, track.Path,
		fmt.Sprintf("%s -> %s", track.Path, result.Path), nil)
	return nil
}

// destinationExists reports whether a prior run already placed a file at
// the destination. An empty file is a leftover, not a result.
func destinationExists(path string) bool {
	info, err := os.Stat(path)
	return err == nil && info.Mode().IsRegular() && info.Size() > 0
}

// multiDisc reports whether the album's filenames need a disc prefix:
// more than one distinct disc number, or any disc beyond the first.
func multiDisc(prepared []preparedTrack) bool {
	discs := make(map[int]struct{})
	for _, pt := range prepared {
		if pt.track.Tags.DiscNumber > 1 {
			return true
		}
		if pt.track.Tags.DiscNumber > 0 {
			discs[pt.track.Tags.DiscNumber] = struct{}{}
		}
	}
	return len(discs) > 1
}

func (o *Orchestrator) workers() int {
	if o.Config.Defaults.Workers > 0 {
		return o.Config.Defaults.Workers
	}
	return 1
}

func (o *Orchestrator) emit(level output.Level, name output.EventName, track, message string, details map[string]any) {
	if o.Emitter == nil {
		return
	}
	_ = o.Emitter.Emit(output.Event{
		Timestamp: time.Now(),
		Level:     level,
		Event:     name,
		Track:     track,
		Message:   message,
		Details:   details,
	})
}
