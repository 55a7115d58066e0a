package monitorService

import (
	"DrowsyWatch/internal/api/monitor"
	monitorRepository "DrowsyWatch/internal/api/monitor/repository"
	"DrowsyWatch/internal/entity"
	"DrowsyWatch/pkg/broadcast"
	"DrowsyWatch/pkg/camera"
	"DrowsyWatch/pkg/mqtt"
	"DrowsyWatch/pkg/redis"
	"DrowsyWatch/pkg/s3"
	"DrowsyWatch/pkg/utils"
	"github.com/sirupsen/logrus"
	"golang.org/x/net/context"
	"sync"
	"sync/atomic"
)

const subscriberBuffer = 16

type IMonitorService interface {
	OpenStream(ctx context.Context) (*Stream, error)
	LatestVerdict(ctx context.Context) (entity.Verdict, error)
	RecentVerdicts(ctx context.Context, limit int) ([]entity.Verdict, error)
	SubscribeVerdicts(id string) (<-chan entity.Verdict, error)
	UnsubscribeVerdicts(id string)
	Settings() monitor.Settings
	ActiveStreams() int64
	Subscribers() int
	Shutdown()
}

type monitorService struct {
	log        *logrus.Logger
	settings   monitor.Settings
	opener     camera.Opener
	classifier Classifier
	utils      utils.IUtils
	clock      Clock

	cache   redis.IRedis
	history monitorRepository.Repository

	hub        *broadcast.Hub[entity.Verdict]
	dispatcher *verdictDispatcher

	active       int64
	mu           sync.RWMutex
	closed       bool
	shutdownOnce sync.Once
}

type ServiceOption func(*monitorService)

func WithVerdictCache(cache redis.IRedis) ServiceOption {
	return func(s *monitorService) {
		s.cache = cache
	}
}

func WithVerdictPublisher(publisher mqtt.IPublisher) ServiceOption {
	return func(s *monitorService) {
		s.dispatcher.publisher = publisher
	}
}

func WithSnapshotStore(store s3.ItfS3) ServiceOption {
	return func(s *monitorService) {
		s.dispatcher.snapshots = store
	}
}

func WithHistory(repo monitorRepository.Repository) ServiceOption {
	return func(s *monitorService) {
		s.history = repo
	}
}

func WithServiceClock(clock Clock) ServiceOption {
	return func(s *monitorService) {
		s.clock = clock
	}
}

// NewMonitorService validates the session timing up front so a bad
// configuration fails at startup instead of on the first viewer.
func NewMonitorService(
	log *logrus.Logger,
	settings monitor.Settings,
	opener camera.Opener,
	classifier Classifier,
	utils utils.IUtils,
	opts ...ServiceOption,
) (IMonitorService, error) {
	if err := ValidateSession(settings.Session); err != nil {
		return nil, err
	}

	hub := broadcast.New[entity.Verdict]()
	s := &monitorService{
		log:        log,
		settings:   settings,
		opener:     opener,
		classifier: classifier,
		utils:      utils,
		clock:      RealClock(),
		hub:        hub,
		dispatcher: newVerdictDispatcher(log, hub, settings.VerdictTTL),
	}
	for _, opt := range opts {
		opt(s)
	}

	s.dispatcher.cache = s.cache
	s.dispatcher.history = s.history
	s.dispatcher.start()

	return s, nil
}

func (s *monitorService) Settings() monitor.Settings {
	return s.settings
}

func (s *monitorService) ActiveStreams() int64 {
	return atomic.LoadInt64(&s.active)
}

func (s *monitorService) Subscribers() int {
	return s.hub.Len()
}

func (s *monitorService) Shutdown() {
	s.shutdownOnce.Do(func() {
		s.mu.Lock()
		s.closed = true
		s.mu.Unlock()

		s.dispatcher.Close()
		s.hub.Close()

		if s.cache != nil {
			if err := s.cache.Close(); err != nil {
				s.log.WithField("error", err.Error()).Warn("Failed to close verdict cache")
			}
		}
		if s.dispatcher.publisher != nil {
			s.dispatcher.publisher.Close()
		}

		s.log.WithField("dropped_verdicts", s.dispatcher.Dropped()).Info("Monitor service stopped")
	})
}

func (s *monitorService) isClosed() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.closed
}
