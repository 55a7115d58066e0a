package monitorRepository

import (
	"DrowsyWatch/internal/entity"
	"github.com/jmoiron/sqlx"
	"github.com/sirupsen/logrus"
	"golang.org/x/net/context"
)

type SQLExecutor interface {
	sqlx.ExtContext
	SelectContext(ctx context.Context, dest interface{}, query string, args ...interface{}) error
	QueryRowxContext(ctx context.Context, query string, args ...interface{}) *sqlx.Row
	Rebind(query string) string
}

func New(db *sqlx.DB, log *logrus.Logger) Repository {
	return &repository{
		DB:  db,
		log: log,
	}
}

type repository struct {
	DB  *sqlx.DB
	log *logrus.Logger
}

type Repository interface {
	NewClient(tx bool) (Client, error)
	Migrate(ctx context.Context) error
}

func (r *repository) NewClient(tx bool) (Client, error) {
	var sqlExecutor SQLExecutor
	var commitFunc, rollbackFunc func() error

	sqlExecutor = r.DB

	if tx {
		var err error
		txx, err := r.DB.Beginx()
		if err != nil {
			return Client{}, err
		}

		sqlExecutor = txx
		commitFunc = txx.Commit
		rollbackFunc = txx.Rollback
	} else {
		commitFunc = func() error { return nil }
		rollbackFunc = func() error { return nil }
	}

	return Client{
		Verdicts: &verdictRepository{q: sqlExecutor, log: r.log},
		Commit:   commitFunc,
		Rollback: rollbackFunc,
	}, nil
}

// Migrate creates the verdict table when it does not exist yet.
func (r *repository) Migrate(ctx context.Context) error {
	for _, query := range []string{queryCreateVerdictTable, queryCreateVerdictIndex} {
		if _, err := r.DB.ExecContext(ctx, query); err != nil {
			r.log.WithField("error", err.Error()).Error("Failed to migrate verdict table")
			return err
		}
	}
	return nil
}

type Client struct {
	Verdicts interface {
		CreateVerdict(c context.Context, verdict entity.Verdict) error
		GetRecentVerdicts(c context.Context, deviceID string, limit int) ([]entity.Verdict, error)
	}

	Commit   func() error
	Rollback func() error
}

type verdictRepository struct {
	q   SQLExecutor
	log *logrus.Logger
}
