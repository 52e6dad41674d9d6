package repository

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/andreypavlenko/scout/modules/startups/model"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// StartupRepository implements ports.StartupRepository
type StartupRepository struct {
	pool *pgxpool.Pool
}

// NewStartupRepository creates a new startup repository
func NewStartupRepository(pool *pgxpool.Pool) *StartupRepository {
	return &StartupRepository{pool: pool}
}

const startupColumns = `
	id, name, description, short_description, primary_industry,
	secondary_industries, business_types, stage, raw_stage,
	total_funding_usd_millions, last_funding_date, employees, country, city,
	website, logo_url, topics, tech_stack, maturity_score, enrichment,
	created_at, updated_at
`

// All loads the full corpus for a snapshot build.
func (r *StartupRepository) All(ctx context.Context) ([]*model.Startup, error) {
	query := `SELECT ` + startupColumns + ` FROM startups ORDER BY id`

	rows, err := r.pool.Query(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var startups []*model.Startup
	for rows.Next() {
		startup, err := scanStartup(rows)
		if err != nil {
			return nil, err
		}
		startups = append(startups, startup)
	}

	return startups, rows.Err()
}

// GetByID retrieves a startup by ID
func (r *StartupRepository) GetByID(ctx context.Context, id int64) (*model.Startup, error) {
	query := `SELECT ` + startupColumns + ` FROM startups WHERE id = $1`

	startup, err := scanStartup(r.pool.QueryRow(ctx, query, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, model.ErrStartupNotFound
		}
		return nil, err
	}

	return startup, nil
}

// Count returns the corpus size.
func (r *StartupRepository) Count(ctx context.Context) (int, error) {
	var count int
	err := r.pool.QueryRow(ctx, `SELECT COUNT(*) FROM startups`).Scan(&count)
	return count, err
}

// InsertBatch inserts startups, replacing existing rows by id. Used by the
// seed command and corpus refresh imports.
func (r *StartupRepository) InsertBatch(ctx context.Context, startups []*model.Startup) error {
	query := `
		INSERT INTO startups (` + startupColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14,
		        $15, $16, $17, $18, $19, $20, $21, $22)
		ON CONFLICT (id) DO UPDATE SET
			name = EXCLUDED.name,
			description = EXCLUDED.description,
			short_description = EXCLUDED.short_description,
			primary_industry = EXCLUDED.primary_industry,
			secondary_industries = EXCLUDED.secondary_industries,
			business_types = EXCLUDED.business_types,
			stage = EXCLUDED.stage,
			raw_stage = EXCLUDED.raw_stage,
			total_funding_usd_millions = EXCLUDED.total_funding_usd_millions,
			last_funding_date = EXCLUDED.last_funding_date,
			employees = EXCLUDED.employees,
			country = EXCLUDED.country,
			city = EXCLUDED.city,
			website = EXCLUDED.website,
			logo_url = EXCLUDED.logo_url,
			topics = EXCLUDED.topics,
			tech_stack = EXCLUDED.tech_stack,
			maturity_score = EXCLUDED.maturity_score,
			enrichment = EXCLUDED.enrichment,
			updated_at = EXCLUDED.updated_at
	`

	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return err
	}
	defer tx.Rollback(ctx)

	now := time.Now().UTC()
	for _, s := range startups {
		if s.CreatedAt.IsZero() {
			s.CreatedAt = now
		}
		s.UpdatedAt = now

		var enrichment []byte
		if s.Enrichment != nil {
			enrichment, err = json.Marshal(s.Enrichment)
			if err != nil {
				return err
			}
		}

		if _, err := tx.Exec(ctx, query,
			s.ID, s.Name, s.Description, s.ShortDescription, s.PrimaryIndustry,
			s.SecondaryIndustries, s.BusinessTypes, string(s.Stage), s.RawStage,
			s.TotalFundingUSDM, s.LastFundingDate, s.Employees, s.Country, s.City,
			s.Website, s.LogoURL, s.Topics, s.TechStack, s.MaturityScore, enrichment,
			s.CreatedAt, s.UpdatedAt,
		); err != nil {
			return err
		}
	}

	return tx.Commit(ctx)
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanStartup(row rowScanner) (*model.Startup, error) {
	s := &model.Startup{}
	var stage string
	var enrichment []byte

	if err := row.Scan(
		&s.ID, &s.Name, &s.Description, &s.ShortDescription, &s.PrimaryIndustry,
		&s.SecondaryIndustries, &s.BusinessTypes, &stage, &s.RawStage,
		&s.TotalFundingUSDM, &s.LastFundingDate, &s.Employees, &s.Country, &s.City,
		&s.Website, &s.LogoURL, &s.Topics, &s.TechStack, &s.MaturityScore, &enrichment,
		&s.CreatedAt, &s.UpdatedAt,
	); err != nil {
		return nil, err
	}

	s.Stage = model.Stage(stage)
	if len(enrichment) > 0 {
		if err := json.Unmarshal(enrichment, &s.Enrichment); err != nil {
			return nil, err
		}
	}

	return s, nil
}
