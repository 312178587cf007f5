// Package store persists benchmark results to SQLite.
package store

import (
	"context"
	"database/sql"
	"fmt"

	_ "modernc.org/sqlite"

	"github.com/ppiankov/ztbench/internal/model"
	"github.com/ppiankov/ztbench/internal/scenario"
)

const schema = `
CREATE TABLE IF NOT EXISTS runs (
	run_id TEXT PRIMARY KEY,
	name   TEXT NOT NULL,
	file   TEXT NOT NULL,
	seed   INTEGER NOT NULL
);
CREATE TABLE IF NOT EXISTS results (
	run_id                  TEXT NOT NULL REFERENCES runs(run_id),
	job                     INTEGER NOT NULL,
	policy                  TEXT NOT NULL,
	user_id                 TEXT NOT NULL,
	role                    TEXT NOT NULL,
	risk_profile            TEXT NOT NULL,
	location                TEXT NOT NULL,
	mfa_enabled             INTEGER NOT NULL,
	access_time             TEXT NOT NULL,
	zt_variant              TEXT NOT NULL,
	network_size            INTEGER NOT NULL,
	malicious_ratio         REAL NOT NULL,
	ai_threshold            REAL NOT NULL,
	allowed                 INTEGER NOT NULL,
	risk_score              REAL NOT NULL,
	http_status             INTEGER NOT NULL,
	response_time           REAL NOT NULL,
	avg_response_time       REAL NOT NULL,
	policy_eval_time        REAL NOT NULL,
	blockchain_logging_time REAL NOT NULL,
	gas_per_tx              INTEGER NOT NULL,
	detection_accuracy      REAL NOT NULL,
	access_success_rate     REAL NOT NULL,
	throughput              REAL NOT NULL,
	fpr                     REAL NOT NULL,
	fnr                     REAL NOT NULL,
	adr                     REAL NOT NULL,
	precision               REAL NOT NULL,
	recall                  REAL NOT NULL,
	f1                      REAL NOT NULL,
	auc                     REAL NOT NULL,
	PRIMARY KEY (run_id, job)
);`

const insertResult = `INSERT INTO results (
	run_id, job, policy, user_id, role, risk_profile, location, mfa_enabled,
	access_time, zt_variant, network_size, malicious_ratio, ai_threshold,
	allowed, risk_score, http_status, response_time, avg_response_time,
	policy_eval_time, blockchain_logging_time, gas_per_tx, detection_accuracy,
	access_success_rate, throughput, fpr, fnr, adr, precision, recall, f1, auc
) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`

// Store writes result records to a SQLite database.
type Store struct {
	db *sql.DB
}

// Open opens or creates the database at path and ensures the schema.
func Open(ctx context.Context, path string) (*Store, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open results db: %w", err)
	}
	if _, err := db.ExecContext(ctx, schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("create results schema: %w", err)
	}
	return &Store{db: db}, nil
}

// Close closes the database.
func (s *Store) Close() error {
	return s.db.Close()
}

// SaveRun stores a run and all of its records in one transaction.
func (s *Store) SaveRun(ctx context.Context, res *scenario.Result) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx,
		`INSERT INTO runs (run_id, name, file, seed) VALUES (?, ?, ?, ?)`,
		res.RunID, res.Name, res.File, int64(res.Seed)); err != nil {
		return fmt.Errorf("save run %s: %w", res.RunID, err)
	}

	stmt, err := tx.PrepareContext(ctx, insertResult)
	if err != nil {
		return fmt.Errorf("prepare insert: %w", err)
	}
	defer stmt.Close()

	for i, r := range res.Records {
		sc, m := r.ScenarioConfig, r.MetricBundle
		if _, err := stmt.ExecContext(ctx,
			res.RunID, i, string(sc.Policy), sc.UserID, sc.Role, string(sc.RiskProfile),
			sc.Location, sc.MFAEnabled, sc.AccessTime, string(sc.Variant), sc.NetworkSize,
			sc.MaliciousRatio, sc.AIThreshold, r.Allowed, r.RiskScore, m.HTTPStatus,
			m.ResponseTime, m.AvgResponseTime, m.PolicyEvalTime, m.BlockchainLoggingTime,
			m.GasPerTx, m.DetectionAccuracy, m.AccessSuccessRate, m.Throughput,
			m.FPR, m.FNR, m.ADR, m.Precision, m.Recall, m.F1, m.AUC,
		); err != nil {
			return fmt.Errorf("save record %d: %w", i, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit run %s: %w", res.RunID, err)
	}
	return nil
}

// Records loads the records of one run in job order. MFA codes are not
// stored and come back empty.
func (s *Store) Records(ctx context.Context, runID string) ([]model.ResultRecord, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT
		policy, user_id, role, risk_profile, location, mfa_enabled, access_time,
		zt_variant, network_size, malicious_ratio, ai_threshold, allowed, risk_score,
		http_status, response_time, avg_response_time, policy_eval_time,
		blockchain_logging_time, gas_per_tx, detection_accuracy, access_success_rate,
		throughput, fpr, fnr, adr, precision, recall, f1, auc
		FROM results WHERE run_id = ? ORDER BY job`, runID)
	if err != nil {
		return nil, fmt.Errorf("query run %s: %w", runID, err)
	}
	defer rows.Close()

	var out []model.ResultRecord
	for rows.Next() {
		var (
			sc      model.ScenarioConfig
			m       model.MetricBundle
			allowed bool
			risk    float64
		)
		if err := rows.Scan(
			&sc.Policy, &sc.UserID, &sc.Role, &sc.RiskProfile, &sc.Location, &sc.MFAEnabled,
			&sc.AccessTime, &sc.Variant, &sc.NetworkSize, &sc.MaliciousRatio, &sc.AIThreshold,
			&allowed, &risk, &m.HTTPStatus, &m.ResponseTime, &m.AvgResponseTime,
			&m.PolicyEvalTime, &m.BlockchainLoggingTime, &m.GasPerTx, &m.DetectionAccuracy,
			&m.AccessSuccessRate, &m.Throughput, &m.FPR, &m.FNR, &m.ADR, &m.Precision,
			&m.Recall, &m.F1, &m.AUC,
		); err != nil {
			return nil, fmt.Errorf("scan record: %w", err)
		}
		out = append(out, model.NewResultRecord(sc, m, allowed, risk))
	}
	return out, rows.Err()
}

// RunIDs lists stored runs in insertion order.
func (s *Store) RunIDs(ctx context.Context) ([]string, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT run_id FROM runs ORDER BY rowid`)
	if err != nil {
		return nil, fmt.Errorf("list runs: %w", err)
	}
	defer rows.Close()

	var ids []string
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("scan run id: %w", err)
		}
		ids = append(ids, id)
	}
	return ids, rows.Err()
}
