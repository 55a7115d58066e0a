package monitorRepository

const (
	queryCreateVerdictTable = `
		CREATE TABLE IF NOT EXISTS drowsiness_verdicts (
			id            VARCHAR(26) PRIMARY KEY,
			stream_id     VARCHAR(26) NOT NULL,
			device_id     TEXT NOT NULL,
			status        VARCHAR(8) NOT NULL,
			vote_sum      INTEGER NOT NULL,
			present_count INTEGER NOT NULL,
			absent_count  INTEGER NOT NULL,
			snapshot_url  TEXT,
			window_start  TIMESTAMPTZ NOT NULL,
			decided_at    TIMESTAMPTZ NOT NULL
		)
	`

	queryCreateVerdictIndex = `
		CREATE INDEX IF NOT EXISTS idx_drowsiness_verdicts_device_decided
		ON drowsiness_verdicts (device_id, decided_at DESC)
	`

	queryCreateVerdict = `
		INSERT INTO drowsiness_verdicts (
			id,
			stream_id,
			device_id,
			status,
			vote_sum,
			present_count,
			absent_count,
			snapshot_url,
			window_start,
			decided_at
		) VALUES (
			:id,
			:stream_id,
			:device_id,
			:status,
			:vote_sum,
			:present_count,
			:absent_count,
			:snapshot_url,
			:window_start,
			:decided_at
		)
	`

	queryGetRecentVerdicts = `
		SELECT
			id,
			stream_id,
			device_id,
			status,
			vote_sum,
			present_count,
			absent_count,
			snapshot_url,
			window_start,
			decided_at
		FROM drowsiness_verdicts
		WHERE device_id = :device_id
		ORDER BY decided_at DESC
		LIMIT :limit
	`
)
