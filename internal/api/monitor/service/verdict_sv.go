package monitorService

import (
	"DrowsyWatch/internal/api/monitor"
	"DrowsyWatch/internal/entity"
	"DrowsyWatch/pkg/broadcast"
	contextPkg "DrowsyWatch/pkg/context"
	"DrowsyWatch/pkg/redis"
	"errors"
	"github.com/sirupsen/logrus"
	"golang.org/x/net/context"
)

// LatestVerdict prefers the shared cache and falls back to the last verdict
// seen by this process.
func (s *monitorService) LatestVerdict(ctx context.Context) (entity.Verdict, error) {
	requestID := contextPkg.GetRequestID(ctx)

	if s.cache != nil {
		verdict, err := s.cache.GetVerdict(ctx, s.settings.CameraDeviceID)
		if err == nil {
			return verdict, nil
		}
		if !errors.Is(err, redis.ErrVerdictNotFound) {
			s.log.WithFields(logrus.Fields{
				"request_id": requestID,
				"error":      err.Error(),
			}).Warn("Verdict cache lookup failed, using in-memory verdict")
		}
	}

	verdict, ok := s.hub.Latest()
	if !ok {
		return entity.Verdict{}, monitor.ErrVerdictNotFound
	}
	return verdict, nil
}

func (s *monitorService) RecentVerdicts(ctx context.Context, limit int) ([]entity.Verdict, error) {
	requestID := contextPkg.GetRequestID(ctx)

	if s.history == nil {
		return nil, monitor.ErrHistoryUnavailable
	}

	repo, err := s.history.NewClient(false)
	if err != nil {
		s.log.WithFields(logrus.Fields{
			"request_id": requestID,
			"error":      err.Error(),
		}).Error("Failed to create new client")
		return nil, err
	}

	verdicts, err := repo.Verdicts.GetRecentVerdicts(ctx, s.settings.CameraDeviceID, limit)
	if err != nil {
		return nil, err
	}

	return verdicts, nil
}

func (s *monitorService) SubscribeVerdicts(id string) (<-chan entity.Verdict, error) {
	ch, err := s.hub.Subscribe(id, subscriberBuffer)
	switch {
	case errors.Is(err, broadcast.ErrSubscriberExists):
		return nil, monitor.ErrSubscriberExists
	case errors.Is(err, broadcast.ErrClosed):
		return nil, monitor.ErrServiceClosed
	case err != nil:
		return nil, err
	}
	return ch, nil
}

func (s *monitorService) UnsubscribeVerdicts(id string) {
	if err := s.hub.Unsubscribe(id); err != nil && !errors.Is(err, broadcast.ErrSubscriberNotFound) {
		s.log.WithField("error", err.Error()).Warn("Failed to unsubscribe verdict listener")
	}
}
