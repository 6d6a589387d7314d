package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"

	"github.com/google/uuid"
	"github.com/lib/pq"
	"genieus-backend/internal/models"
)

// Postgres implements Store on a PostgreSQL database. Lean records are stored
// as JSONB documents; payloads go into the assets table as BYTEA. Both writes
// of a save (and both deletes of a remove) run inside one transaction.
type Postgres struct {
	db *sql.DB
}

func NewPostgres(connectionString string) (*Postgres, error) {
	db, err := sql.Open("postgres", connectionString)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	if err := db.Ping(); err != nil {
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	return &Postgres{db: db}, nil
}

func (s *Postgres) SaveProject(ctx context.Context, p *models.Project) error {
	lean, blobs := Lean(p)

	record, err := json.Marshal(lean)
	if err != nil {
		return fmt.Errorf("failed to encode project record: %w", err)
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	var prev []byte
	switch err := tx.QueryRowContext(ctx, `SELECT record FROM projects WHERE id = $1`, p.ID).Scan(&prev); err {
	case nil:
		if orphans := orphanedAssetIDs(prev, p.AssetIDs()); len(orphans) > 0 {
			if _, err := tx.ExecContext(ctx, `DELETE FROM assets WHERE id = ANY($1)`, pq.Array(orphans)); err != nil {
				return fmt.Errorf("failed to delete replaced assets: %w", err)
			}
		}
	case sql.ErrNoRows:
	default:
		return fmt.Errorf("failed to read project record: %w", err)
	}

	for _, b := range blobs {
		if _, err := tx.ExecContext(ctx, `
			INSERT INTO assets (id, mime_type, name, data)
			VALUES ($1, $2, $3, $4)
			ON CONFLICT (id) DO UPDATE SET mime_type = $2, name = $3, data = $4
		`, b.ID, b.MimeType, b.Name, b.Data); err != nil {
			return fmt.Errorf("failed to write asset %s: %w", b.ID, err)
		}
	}

	if _, err := tx.ExecContext(ctx, `
		INSERT INTO projects (id, user_id, created_at, record)
		VALUES ($1, $2, $3, $4)
		ON CONFLICT (id) DO UPDATE SET user_id = $2, created_at = $3, record = $4
	`, p.ID, p.UserID, p.CreatedAt, record); err != nil {
		return fmt.Errorf("failed to write project record: %w", err)
	}

	return tx.Commit()
}

func (s *Postgres) GetProject(ctx context.Context, projectID, userID uuid.UUID) (*models.Project, error) {
	var record []byte
	err := s.db.QueryRowContext(ctx, `
		SELECT record FROM projects
		WHERE id = $1 AND user_id = $2
	`, projectID, userID).Scan(&record)
	if err == sql.ErrNoRows {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get project: %w", err)
	}

	return s.decodeProject(ctx, record)
}

func (s *Postgres) ProjectsForUser(ctx context.Context, userID uuid.UUID) ([]*models.Project, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT record FROM projects
		WHERE user_id = $1
		ORDER BY created_at DESC
	`, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to list projects: %w", err)
	}
	defer rows.Close()

	var projects []*models.Project
	for rows.Next() {
		var record []byte
		if err := rows.Scan(&record); err != nil {
			return nil, fmt.Errorf("failed to scan project record: %w", err)
		}
		p, err := s.decodeProject(ctx, record)
		if err != nil {
			return nil, err
		}
		projects = append(projects, p)
	}

	return projects, rows.Err()
}

func (s *Postgres) decodeProject(ctx context.Context, record []byte) (*models.Project, error) {
	var p models.Project
	if err := json.Unmarshal(record, &p); err != nil {
		return nil, fmt.Errorf("failed to decode project record: %w", err)
	}
	Rehydrate(&p, s.lookup(ctx))
	return &p, nil
}

// lookup returns a blob fetcher that tolerates missing rows.
func (s *Postgres) lookup(ctx context.Context) func(id string) ([]byte, bool) {
	return func(id string) ([]byte, bool) {
		var data []byte
		err := s.db.QueryRowContext(ctx, `SELECT data FROM assets WHERE id = $1`, id).Scan(&data)
		if err != nil {
			return nil, false
		}
		return data, true
	}
}

func (s *Postgres) DeleteProject(ctx context.Context, projectID uuid.UUID) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	var record []byte
	err = tx.QueryRowContext(ctx, `SELECT record FROM projects WHERE id = $1`, projectID).Scan(&record)
	if err == sql.ErrNoRows {
		// Nothing to clean up; deleting twice must not fail.
		return tx.Commit()
	}
	if err != nil {
		return fmt.Errorf("failed to read project record: %w", err)
	}

	var p models.Project
	if err := json.Unmarshal(record, &p); err != nil {
		return fmt.Errorf("failed to decode project record: %w", err)
	}

	if ids := p.AssetIDs(); len(ids) > 0 {
		if _, err := tx.ExecContext(ctx, `DELETE FROM assets WHERE id = ANY($1)`, pq.Array(ids)); err != nil {
			return fmt.Errorf("failed to delete assets: %w", err)
		}
	}

	if _, err := tx.ExecContext(ctx, `DELETE FROM projects WHERE id = $1`, projectID); err != nil {
		return fmt.Errorf("failed to delete project: %w", err)
	}

	return tx.Commit()
}

func (s *Postgres) Asset(ctx context.Context, id string) (*models.Asset, error) {
	a := models.Asset{ID: id, State: models.BlobAttached}
	err := s.db.QueryRowContext(ctx, `
		SELECT mime_type, name, data FROM assets WHERE id = $1
	`, id).Scan(&a.MimeType, &a.Name, &a.Data)
	if err == sql.ErrNoRows {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get asset: %w", err)
	}
	return &a, nil
}

func (s *Postgres) SaveBrandProfile(ctx context.Context, b *models.BrandProfile) error {
	lean, blobs := LeanBrand(b)

	record, err := json.Marshal(lean)
	if err != nil {
		return fmt.Errorf("failed to encode brand profile: %w", err)
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	var prev []byte
	switch err := tx.QueryRowContext(ctx, `SELECT record FROM brand_profiles WHERE user_id = $1`, b.UserID).Scan(&prev); err {
	case nil:
		var old models.BrandProfile
		if err := json.Unmarshal(prev, &old); err == nil && old.Logo != nil {
			if b.Logo == nil || old.Logo.ID != b.Logo.ID {
				if _, err := tx.ExecContext(ctx, `DELETE FROM assets WHERE id = $1`, old.Logo.ID); err != nil {
					return fmt.Errorf("failed to delete replaced logo asset: %w", err)
				}
			}
		}
	case sql.ErrNoRows:
	default:
		return fmt.Errorf("failed to read brand profile: %w", err)
	}

	for _, blob := range blobs {
		if _, err := tx.ExecContext(ctx, `
			INSERT INTO assets (id, mime_type, name, data)
			VALUES ($1, $2, $3, $4)
			ON CONFLICT (id) DO UPDATE SET mime_type = $2, name = $3, data = $4
		`, blob.ID, blob.MimeType, blob.Name, blob.Data); err != nil {
			return fmt.Errorf("failed to write logo asset: %w", err)
		}
	}

	if _, err := tx.ExecContext(ctx, `
		INSERT INTO brand_profiles (user_id, updated_at, record)
		VALUES ($1, $2, $3)
		ON CONFLICT (user_id) DO UPDATE SET updated_at = $2, record = $3
	`, b.UserID, b.UpdatedAt, record); err != nil {
		return fmt.Errorf("failed to write brand profile: %w", err)
	}

	return tx.Commit()
}

func (s *Postgres) BrandProfile(ctx context.Context, userID uuid.UUID) (*models.BrandProfile, error) {
	var record []byte
	err := s.db.QueryRowContext(ctx, `
		SELECT record FROM brand_profiles WHERE user_id = $1
	`, userID).Scan(&record)
	if err == sql.ErrNoRows {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get brand profile: %w", err)
	}

	var b models.BrandProfile
	if err := json.Unmarshal(record, &b); err != nil {
		return nil, fmt.Errorf("failed to decode brand profile: %w", err)
	}
	RehydrateBrand(&b, s.lookup(ctx))
	return &b, nil
}

func (s *Postgres) DeleteBrandProfile(ctx context.Context, userID uuid.UUID) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	var record []byte
	err = tx.QueryRowContext(ctx, `SELECT record FROM brand_profiles WHERE user_id = $1`, userID).Scan(&record)
	if err == sql.ErrNoRows {
		return tx.Commit()
	}
	if err != nil {
		return fmt.Errorf("failed to read brand profile: %w", err)
	}

	var b models.BrandProfile
	if err := json.Unmarshal(record, &b); err != nil {
		return fmt.Errorf("failed to decode brand profile: %w", err)
	}

	if b.Logo != nil {
		if _, err := tx.ExecContext(ctx, `DELETE FROM assets WHERE id = $1`, b.Logo.ID); err != nil {
			return fmt.Errorf("failed to delete logo asset: %w", err)
		}
	}

	if _, err := tx.ExecContext(ctx, `DELETE FROM brand_profiles WHERE user_id = $1`, userID); err != nil {
		return fmt.Errorf("failed to delete brand profile: %w", err)
	}

	return tx.Commit()
}

func (s *Postgres) Close() error {
	return s.db.Close()
}
