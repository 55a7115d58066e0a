package monitorRepository

import (
	"DrowsyWatch/internal/entity"
	contextPkg "DrowsyWatch/pkg/context"
	"context"
	"database/sql"
	"github.com/jmoiron/sqlx"
	"github.com/sirupsen/logrus"
	"time"
)

type VerdictDB struct {
	ID          string         `db:"id"`
	StreamID    string         `db:"stream_id"`
	DeviceID    string         `db:"device_id"`
	Status      string         `db:"status"`
	Sum         int            `db:"vote_sum"`
	Present     int            `db:"present_count"`
	Absent      int            `db:"absent_count"`
	SnapshotURL sql.NullString `db:"snapshot_url"`
	WindowStart time.Time      `db:"window_start"`
	DecidedAt   time.Time      `db:"decided_at"`
}

func (r *verdictRepository) CreateVerdict(c context.Context, verdict entity.Verdict) error {
	streamID := contextPkg.GetStreamID(c)
	argsKV := map[string]interface{}{
		"id":            verdict.ID,
		"stream_id":     verdict.StreamID,
		"device_id":     verdict.DeviceID,
		"status":        verdict.Status,
		"vote_sum":      verdict.Sum,
		"present_count": verdict.Present,
		"absent_count":  verdict.Absent,
		"snapshot_url":  sql.NullString{String: verdict.SnapshotURL, Valid: verdict.SnapshotURL != ""},
		"window_start":  verdict.WindowStart,
		"decided_at":    verdict.DecidedAt,
	}

	query, args, err := sqlx.Named(queryCreateVerdict, argsKV)
	if err != nil {
		r.log.WithFields(logrus.Fields{
			"stream_id": streamID,
			"error":     err.Error(),
		}).Error("Failed to build SQL query for CreateVerdict")
		return err
	}
	query = r.q.Rebind(query)

	if _, err := r.q.ExecContext(c, query, args...); err != nil {
		r.log.WithFields(logrus.Fields{
			"stream_id": streamID,
			"error":     err.Error(),
		}).Error("Database error when creating verdict")
		return err
	}

	return nil
}

func (r *verdictRepository) GetRecentVerdicts(c context.Context, deviceID string, limit int) ([]entity.Verdict, error) {
	requestID := contextPkg.GetRequestID(c)
	var verdicts []VerdictDB

	argsKV := map[string]interface{}{
		"device_id": deviceID,
		"limit":     limit,
	}

	query, args, err := sqlx.Named(queryGetRecentVerdicts, argsKV)
	if err != nil {
		r.log.WithFields(logrus.Fields{
			"request_id": requestID,
			"error":      err.Error(),
		}).Error("GetRecentVerdicts named query preparation err")
		return nil, err
	}

	query = r.q.Rebind(query)

	if err := r.q.SelectContext(c, &verdicts, query, args...); err != nil {
		r.log.WithFields(logrus.Fields{
			"request_id": requestID,
			"error":      err.Error(),
		}).Error("GetRecentVerdicts execution err")
		return nil, err
	}

	result := make([]entity.Verdict, 0, len(verdicts))
	for _, verdict := range verdicts {
		result = append(result, r.makeVerdict(verdict))
	}

	return result, nil
}

func (r *verdictRepository) makeVerdict(v VerdictDB) entity.Verdict {
	return entity.Verdict{
		ID:          v.ID,
		StreamID:    v.StreamID,
		DeviceID:    v.DeviceID,
		Status:      v.Status,
		Sum:         v.Sum,
		Present:     v.Present,
		Absent:      v.Absent,
		SnapshotURL: v.SnapshotURL.String,
		WindowStart: v.WindowStart,
		DecidedAt:   v.DecidedAt,
	}
}
