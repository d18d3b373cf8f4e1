// Package pipeline drives transcription jobs: segmentation, dispatch to a
// bounded worker pool, in-order transcript assembly, and event publication.
package pipeline

import (
	"context"
	"errors"
	"fmt"
	"log"
	"sync"
	"time"

	"github.com/scribed-io/scribed/internal/audio"
	"github.com/scribed-io/scribed/internal/bus"
	"github.com/scribed-io/scribed/internal/format"
	"github.com/scribed-io/scribed/internal/job"
	"github.com/scribed-io/scribed/internal/transcriber"
	"github.com/scribed-io/scribed/internal/transcript"
)

// Config tunes the controller.
type Config struct {
	Workers    int           // parallel adapter invocations across all jobs
	MaxRetries int           // retries per segment on transient errors
	Retention  time.Duration // how long terminal jobs stay before eviction
	Segmenter  audio.SegmenterConfig
}

func DefaultConfig() Config {
	return Config{
		Workers:    4,
		MaxRetries: 2,
		Retention:  30 * time.Minute,
		Segmenter:  audio.DefaultSegmenterConfig(),
	}
}

// Controller owns job lifecycle. It is the only writer of job records and
// the only appender to transcripts; observers read via the event bus.
type Controller struct {
	cfg     Config
	jobs    job.Store
	scripts *transcript.Store
	bus     *bus.Bus
	adapter transcriber.Adapter

	sem chan struct{}
	wg  sync.WaitGroup

	mu      sync.Mutex
	cancels map[string]context.CancelFunc
}

func New(cfg Config, jobs job.Store, scripts *transcript.Store, b *bus.Bus, adapter transcriber.Adapter) *Controller {
	if cfg.Workers <= 0 {
		cfg.Workers = DefaultConfig().Workers
	}
	if cfg.MaxRetries < 0 {
		cfg.MaxRetries = 0
	}
	return &Controller{
		cfg:     cfg,
		jobs:    jobs,
		scripts: scripts,
		bus:     b,
		adapter: adapter,
		sem:     make(chan struct{}, cfg.Workers),
		cancels: make(map[string]context.CancelFunc),
	}
}

// Submit registers a new job for the uploaded audio and starts it in the
// background. The returned snapshot carries the opaque job id.
func (c *Controller) Submit(data []byte, filename string) job.Job {
	j := c.jobs.Create(filename)

	ctx, cancel := context.WithCancel(context.Background())
	c.mu.Lock()
	c.cancels[j.ID] = cancel
	c.mu.Unlock()

	c.wg.Add(1)
	go c.run(ctx, j.ID, data, filename)

	log.Printf("pipeline: job %s submitted (%s, %d bytes)", j.ID, filename, len(data))
	return j
}

// Cancel requests cooperative cancellation of a non-terminal job. In-flight
// adapter calls are not interrupted; their results are discarded on return.
func (c *Controller) Cancel(id string) error {
	j, err := c.jobs.Get(id)
	if err != nil {
		return err
	}
	if j.Status.Terminal() {
		return fmt.Errorf("job %s is already %s", id, j.Status)
	}

	c.mu.Lock()
	cancel := c.cancels[id]
	c.mu.Unlock()
	if cancel != nil {
		cancel()
	}
	return nil
}

// Shutdown waits for all running jobs to reach a terminal state.
func (c *Controller) Shutdown() {
	c.wg.Wait()
}

type segResult struct {
	index int
	seg   audio.Segment
	units []transcript.Unit
	err   error
}

func (c *Controller) run(ctx context.Context, id string, data []byte, filename string) {
	defer c.wg.Done()
	defer func() {
		c.mu.Lock()
		if cancel := c.cancels[id]; cancel != nil {
			cancel()
		}
		delete(c.cancels, id)
		c.mu.Unlock()
	}()

	tr := c.scripts.Create(id)

	if ctx.Err() != nil {
		c.cancelled(id, tr)
		return
	}
	if err := c.jobs.Transition(id, job.StatusRunning); err != nil {
		log.Printf("pipeline: job %s: %v", id, err)
		return
	}
	c.bus.Publish(id, bus.Log(fmt.Sprintf("job started for %s", filename)))

	clip, err := audio.Decode(data)
	if err != nil {
		c.fail(id, tr, err)
		return
	}

	segs, err := audio.Split(clip, c.cfg.Segmenter)
	if errors.Is(err, audio.ErrNoSpeech) {
		c.bus.Publish(id, bus.Log("no speech detected; transcript is empty"))
		c.succeed(id, filename, tr)
		return
	}
	if err != nil {
		c.fail(id, tr, err)
		return
	}

	c.jobs.SetProgress(id, len(segs), 0)
	c.bus.Publish(id, bus.Log(fmt.Sprintf("audio split into %d segments (%.1fs of speech)", len(segs), speechTotal(segs))))

	// Dispatch may be fully parallel; the channel is sized so abandoned
	// workers never block after cancellation.
	results := make(chan segResult, len(segs))
	dispatched := 0
	for _, seg := range segs {
		if ctx.Err() != nil {
			break
		}
		dispatched++
		go c.process(ctx, id, seg, results)
	}

	if !c.merge(ctx, id, tr, segs, results, dispatched) {
		c.cancelled(id, tr)
		return
	}
	if dispatched < len(segs) || ctx.Err() != nil {
		c.cancelled(id, tr)
		return
	}
	c.succeed(id, filename, tr)
}

// merge serializes appends in segment order regardless of completion order,
// holding out-of-order results until their predecessor index has appended.
// Returns false when cancellation was observed.
func (c *Controller) merge(ctx context.Context, id string, tr *transcript.Transcript, segs []audio.Segment, results <-chan segResult, dispatched int) bool {
	pending := make(map[int]segResult, dispatched)
	next := 0
	for received := 0; received < dispatched; received++ {
		var r segResult
		select {
		case <-ctx.Done():
			return false
		case r = <-results:
		}
		pending[r.index] = r

		for {
			r, ok := pending[next]
			if !ok {
				break
			}
			delete(pending, next)

			if ctx.Err() != nil {
				return false
			}
			if r.err != nil {
				c.bus.Publish(id, bus.Error(fmt.Sprintf("segment %d/%d degraded to empty text: %v", r.index+1, len(segs), r.err)))
			} else {
				for _, u := range r.units {
					u.Start += r.seg.Start
					u.End += r.seg.Start
					tr.Append(u)
				}
			}
			next++
			c.jobs.SetProgress(id, len(segs), next)
			c.bus.Publish(id, bus.Progress(fmt.Sprintf("segment %d/%d transcribed", next, len(segs))))
		}
	}
	return ctx.Err() == nil
}

// process transcribes one segment through the shared worker pool, retrying
// transient failures up to the configured bound.
func (c *Controller) process(ctx context.Context, id string, seg audio.Segment, results chan<- segResult) {
	select {
	case c.sem <- struct{}{}:
	case <-ctx.Done():
		results <- segResult{index: seg.Index, seg: seg, err: ctx.Err()}
		return
	}
	defer func() { <-c.sem }()

	var lastErr error
	for attempt := 0; attempt <= c.cfg.MaxRetries; attempt++ {
		if ctx.Err() != nil {
			lastErr = ctx.Err()
			break
		}
		units, err := c.adapter.Transcribe(ctx, seg)
		if err == nil {
			results <- segResult{index: seg.Index, seg: seg, units: units}
			return
		}
		lastErr = err
		if transcriber.IsFatalTranscriptionError(err) {
			break
		}
		if attempt < c.cfg.MaxRetries {
			c.bus.Publish(id, bus.Log(fmt.Sprintf("segment %d attempt %d failed, retrying: %v", seg.Index+1, attempt+1, err)))
		}
	}
	results <- segResult{index: seg.Index, seg: seg, err: lastErr}
}

func (c *Controller) succeed(id, filename string, tr *transcript.Transcript) {
	tr.Freeze()
	if err := c.jobs.Transition(id, job.StatusSucceeded); err != nil {
		log.Printf("pipeline: job %s: %v", id, err)
		return
	}
	c.bus.Publish(id, bus.Result(format.ToSRT(tr.Units()), filename))
	c.bus.Publish(id, bus.Finish())
	log.Printf("pipeline: job %s succeeded (%d units)", id, tr.Len())
}

func (c *Controller) fail(id string, tr *transcript.Transcript, cause error) {
	tr.Freeze()
	c.jobs.SetError(id, cause.Error())
	if err := c.jobs.Transition(id, job.StatusFailed); err != nil {
		log.Printf("pipeline: job %s: %v", id, err)
	}
	c.bus.Publish(id, bus.Error(cause.Error()))
	c.bus.Publish(id, bus.Finish())
	log.Printf("pipeline: job %s failed: %v", id, cause)
}

func (c *Controller) cancelled(id string, tr *transcript.Transcript) {
	tr.Freeze()
	if err := c.jobs.Transition(id, job.StatusCancelled); err != nil {
		log.Printf("pipeline: job %s: %v", id, err)
	}
	c.bus.Publish(id, bus.Log("job cancelled"))
	c.bus.Publish(id, bus.Finish())
	log.Printf("pipeline: job %s cancelled", id)
}

func speechTotal(segs []audio.Segment) float64 {
	var total float64
	for _, s := range segs {
		total += s.Duration()
	}
	return total
}
