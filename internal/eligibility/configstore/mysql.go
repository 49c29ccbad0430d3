package configstore

import (
	"context"
	"database/sql"
	"fmt"

	_ "github.com/go-sql-driver/mysql"

	"github.com/nhsdigital/eligibility-signposting-api/internal/eligibility/configmodel"
)

// MySQLSource loads the current version of every campaign configuration
// from a `campaign_configs` table. It is a sql.DB wrapper that owns its
// own connection rather than sharing a pool, opened once at process
// start.
type MySQLSource struct {
	db *sql.DB
}

// OpenMySQLSource opens a MySQL connection and ensures the
// campaign_configs table exists.
func OpenMySQLSource(dsn string) (*MySQLSource, error) {
	db, err := sql.Open("mysql", dsn)
	if err != nil {
		return nil, fmt.Errorf("open mysql: %w", err)
	}
	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping mysql: %w", err)
	}
	if _, err := db.Exec(`CREATE TABLE IF NOT EXISTS campaign_configs (
		campaign_id VARCHAR(255) NOT NULL,
		version     INT NOT NULL,
		document    JSON NOT NULL,
		loaded_at   TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP,
		PRIMARY KEY (campaign_id, version)
	)`); err != nil {
		db.Close()
		return nil, fmt.Errorf("ensure campaign_configs table: %w", err)
	}
	return &MySQLSource{db: db}, nil
}

// Name identifies this source for Store.Refresh's per-source outcome map
// and the eligibility_config_refresh_total metric's "source" label.
func (m *MySQLSource) Name() string { return "mysql" }

// Close closes the underlying connection.
func (m *MySQLSource) Close() error { return m.db.Close() }

// Load fetches the highest-version document for every distinct
// campaign_id and parses it through configmodel.Parse. A row that fails
// to parse is skipped rather than aborting the whole load, so one bad
// document doesn't take every campaign offline.
func (m *MySQLSource) Load(ctx context.Context) ([]configmodel.CampaignConfig, error) {
	rows, err := m.db.QueryContext(ctx, `
		SELECT t.document
		FROM campaign_configs t
		INNER JOIN (
			SELECT campaign_id, MAX(version) AS max_version
			FROM campaign_configs
			GROUP BY campaign_id
		) latest ON t.campaign_id = latest.campaign_id AND t.version = latest.max_version
	`)
	if err != nil {
		return nil, fmt.Errorf("query campaign_configs: %w", err)
	}
	defer rows.Close()

	var configs []configmodel.CampaignConfig
	for rows.Next() {
		var document []byte
		if err := rows.Scan(&document); err != nil {
			return nil, fmt.Errorf("scan campaign_configs row: %w", err)
		}
		cfg, err := configmodel.Parse(document)
		if err != nil {
			continue
		}
		configs = append(configs, cfg)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate campaign_configs: %w", err)
	}
	return configs, nil
}

// Put inserts a new version of a campaign configuration document.
func (m *MySQLSource) Put(ctx context.Context, campaignID string, version int, document []byte) error {
	_, err := m.db.ExecContext(ctx, `
		INSERT INTO campaign_configs (campaign_id, version, document)
		VALUES (?, ?, ?)
		ON DUPLICATE KEY UPDATE document = VALUES(document)
	`, campaignID, version, document)
	if err != nil {
		return fmt.Errorf("insert campaign_configs row: %w", err)
	}
	return nil
}
