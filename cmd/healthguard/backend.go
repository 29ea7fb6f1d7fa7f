package main

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rs/zerolog"

	"github.com/healthguard/healthguard/internal/config"
	"github.com/healthguard/healthguard/internal/domain/patient"
	"github.com/healthguard/healthguard/internal/domain/vitals"
	"github.com/healthguard/healthguard/internal/platform/db"
	"github.com/healthguard/healthguard/internal/platform/hipaa"
)

// backend bundles the repositories for whichever store DATABASE_URL selects.
type backend struct {
	driver   string
	pool     *pgxpool.Pool
	sqlDB    *sql.DB
	records  vitals.VitalsRepository
	alerts   vitals.AlertRepository
	patients patient.Repository
}

func openBackend(ctx context.Context, cfg *config.Config, logger zerolog.Logger) (*backend, error) {
	cipher, err := hipaa.NewFieldCipher(cfg.PHIEncryptionKey, logger)
	if err != nil {
		return nil, err
	}

	b := &backend{driver: cfg.Driver()}
	switch b.driver {
	case config.DriverPostgres:
		pool, err := db.NewPool(ctx, cfg.DatabaseURL, cfg.DBMaxConns, cfg.DBMinConns)
		if err != nil {
			return nil, err
		}
		b.pool = pool
		b.records = vitals.NewVitalsRepoPG(pool)
		b.alerts = vitals.NewAlertRepoPG(pool)
		b.patients = patient.NewRepoPG(pool, cipher)
	default:
		conn, err := db.OpenSQLite(ctx, cfg.DatabaseURL)
		if err != nil {
			return nil, err
		}
		b.sqlDB = conn
		b.records = vitals.NewVitalsRepoSQLite(conn)
		b.alerts = vitals.NewAlertRepoSQLite(conn)
		b.patients = patient.NewRepoSQLite(conn, cipher)
	}
	logger.Debug().Str("driver", b.driver).Msg("store opened")
	return b, nil
}

func (b *backend) Close() {
	if b.pool != nil {
		b.pool.Close()
	}
	if b.sqlDB != nil {
		b.sqlDB.Close()
	}
}

func (b *backend) Health(ctx context.Context) *db.Health {
	if b.pool != nil {
		return db.CheckPool(ctx, b.pool)
	}
	return db.CheckSQLite(ctx, b.sqlDB)
}

// open connects to the configured store.
func (a *app) open(ctx context.Context) (*backend, error) {
	return openBackend(ctx, a.cfg, a.logger)
}

// rangeTable returns the configured range table, or the defaults when no
// VITAL_RANGES_FILE is set.
func (a *app) rangeTable() (vitals.RangeTable, error) {
	if a.cfg.VitalRangesFile == "" {
		return vitals.DefaultRanges(), nil
	}
	t, err := vitals.LoadRangeTable(a.cfg.VitalRangesFile)
	if err != nil {
		return vitals.RangeTable{}, fmt.Errorf("VITAL_RANGES_FILE: %w", err)
	}
	return t, nil
}

func (a *app) detector(b *backend) (*vitals.Detector, error) {
	table, err := a.rangeTable()
	if err != nil {
		return nil, err
	}
	d := vitals.NewDetector(table, b.records, b.alerts, a.logger)
	d.SetConcurrency(a.cfg.CohortConcurrency)
	return d, nil
}
