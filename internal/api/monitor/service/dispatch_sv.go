package monitorService

import (
	monitorRepository "DrowsyWatch/internal/api/monitor/repository"
	"DrowsyWatch/internal/entity"
	"DrowsyWatch/pkg/broadcast"
	contextPkg "DrowsyWatch/pkg/context"
	"DrowsyWatch/pkg/mqtt"
	"DrowsyWatch/pkg/redis"
	"DrowsyWatch/pkg/s3"
	"context"
	"github.com/sirupsen/logrus"
	"sync"
	"sync/atomic"
	"time"
)

const (
	dispatchQueueSize = 64
	deliveryTimeout   = 10 * time.Second
)

type verdictJob struct {
	verdict  entity.Verdict
	snapshot []byte
}

// verdictDispatcher hands verdicts to the live hub right away and to the
// slow sinks through a bounded queue. A full queue drops the job so a stream
// is never held up by storage or the broker.
type verdictDispatcher struct {
	log       *logrus.Logger
	hub       *broadcast.Hub[entity.Verdict]
	cache     redis.IRedis
	publisher mqtt.IPublisher
	snapshots s3.ItfS3
	history   monitorRepository.Repository
	ttl       time.Duration

	mu      sync.RWMutex
	closed  bool
	queue   chan verdictJob
	wg      sync.WaitGroup
	dropped uint64
}

func newVerdictDispatcher(log *logrus.Logger, hub *broadcast.Hub[entity.Verdict], ttl time.Duration) *verdictDispatcher {
	return &verdictDispatcher{
		log:   log,
		hub:   hub,
		ttl:   ttl,
		queue: make(chan verdictJob, dispatchQueueSize),
	}
}

func (d *verdictDispatcher) start() {
	d.wg.Add(1)
	go func() {
		defer d.wg.Done()
		for job := range d.queue {
			d.deliver(job)
		}
	}()
}

func (d *verdictDispatcher) hasSinks() bool {
	return d.cache != nil || d.publisher != nil || d.snapshots != nil || d.history != nil
}

func (d *verdictDispatcher) Dispatch(verdict entity.Verdict, snapshot []byte) {
	d.hub.Publish(verdict)

	if !d.hasSinks() {
		return
	}

	d.mu.RLock()
	defer d.mu.RUnlock()
	if d.closed {
		return
	}

	select {
	case d.queue <- verdictJob{verdict: verdict, snapshot: snapshot}:
	default:
		atomic.AddUint64(&d.dropped, 1)
		d.log.WithFields(logrus.Fields{
			"stream_id": verdict.StreamID,
			"verdict":   verdict.ID,
		}).Warn("Verdict queue full, dropping delivery")
	}
}

func (d *verdictDispatcher) deliver(job verdictJob) {
	ctx, cancel := context.WithTimeout(context.Background(), deliveryTimeout)
	defer cancel()
	ctx = contextPkg.WithStreamID(ctx, job.verdict.StreamID)

	verdict := job.verdict
	fields := logrus.Fields{
		"stream_id": verdict.StreamID,
		"verdict":   verdict.ID,
		"status":    verdict.Status,
	}

	if d.snapshots != nil && verdict.Status == entity.StatusSleep.String() && len(job.snapshot) > 0 {
		url, err := d.snapshots.UploadSnapshot(verdict.DeviceID, verdict.DecidedAt, job.snapshot)
		if err != nil {
			d.log.WithFields(fields).WithField("error", err.Error()).Error("Failed to upload verdict snapshot")
		} else {
			verdict.SnapshotURL = url
		}
	}

	if d.cache != nil {
		if err := d.cache.SetVerdict(ctx, verdict, d.ttl); err != nil {
			d.log.WithFields(fields).WithField("error", err.Error()).Error("Failed to cache latest verdict")
		}
	}

	if d.history != nil {
		if err := d.record(ctx, verdict); err != nil {
			d.log.WithFields(fields).WithField("error", err.Error()).Error("Failed to record verdict")
		}
	}

	if d.publisher != nil {
		if err := d.publisher.PublishVerdict(ctx, verdict); err != nil {
			d.log.WithFields(fields).WithField("error", err.Error()).Error("Failed to publish verdict")
		}
	}
}

func (d *verdictDispatcher) record(ctx context.Context, verdict entity.Verdict) error {
	repo, err := d.history.NewClient(false)
	if err != nil {
		return err
	}
	return repo.Verdicts.CreateVerdict(ctx, verdict)
}

func (d *verdictDispatcher) Dropped() uint64 {
	return atomic.LoadUint64(&d.dropped)
}

// Close stops accepting verdicts and waits for queued ones to be delivered.
func (d *verdictDispatcher) Close() {
	d.mu.Lock()
	if d.closed {
		d.mu.Unlock()
		return
	}
	d.closed = true
	close(d.queue)
	d.mu.Unlock()

	d.wg.Wait()
}
