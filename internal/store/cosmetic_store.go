package store

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/lib/pq"
	"github.com/vlocker/backend/internal/models"
)

// CosmeticStore persists catalog items keyed by their external
// identifier. Writes come from the sync engine only; reads are served
// concurrently to browsing traffic, so nothing here takes a lock
// wider than a single row.
type CosmeticStore struct {
	db *sql.DB
}

func NewCosmeticStore(db *sql.DB) *CosmeticStore {
	return &CosmeticStore{db: db}
}

const cosmeticColumns = `id, external_id, name, type, rarity, price, image_url, is_new, is_for_sale, added_date, description`

func (s *CosmeticStore) GetByID(ctx context.Context, id uuid.UUID) (*models.Cosmetic, error) {
	return scanCosmetic(s.db.QueryRowContext(ctx,
		`SELECT `+cosmeticColumns+` FROM cosmetics WHERE id = $1`, id))
}

func (s *CosmeticStore) GetByExternalID(ctx context.Context, externalID string) (*models.Cosmetic, error) {
	return scanCosmetic(s.db.QueryRowContext(ctx,
		`SELECT `+cosmeticColumns+` FROM cosmetics WHERE external_id = $1`, externalID))
}

func (s *CosmeticStore) GetTx(tx *sql.Tx, id uuid.UUID) (*models.Cosmetic, error) {
	return scanCosmetic(tx.QueryRow(
		`SELECT `+cosmeticColumns+` FROM cosmetics WHERE id = $1`, id))
}

// GetPaged returns one page of the catalog ordered by newest first,
// applying whichever filters are set on the query.
func (s *CosmeticStore) GetPaged(ctx context.Context, q models.CosmeticQuery) ([]models.Cosmetic, error) {
	where, args := buildCosmeticFilter(q)

	query := `SELECT ` + cosmeticColumns + ` FROM cosmetics` + where +
		fmt.Sprintf(" ORDER BY added_date DESC LIMIT $%d OFFSET $%d", len(args)+1, len(args)+2)
	args = append(args, q.PageSize, (q.Page-1)*q.PageSize)

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	items := []models.Cosmetic{}
	for rows.Next() {
		c, err := scanCosmetic(rows)
		if err != nil {
			return nil, err
		}
		items = append(items, *c)
	}
	return items, rows.Err()
}

func (s *CosmeticStore) Count(ctx context.Context, q models.CosmeticQuery) (int, error) {
	where, args := buildCosmeticFilter(q)

	var count int
	err := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM cosmetics`+where, args...).Scan(&count)
	return count, err
}

// UpsertMany reconciles a batch of candidate items into the catalog.
// The batch is deduplicated by external id (first occurrence wins),
// matched against existing rows in one bulk query, then each candidate
// either overwrites its match's mutable fields in place or is inserted
// with a fresh internal id. The whole batch runs in one transaction so
// a sync pass can never leave two rows with the same external id.
func (s *CosmeticStore) UpsertMany(ctx context.Context, cosmetics []models.Cosmetic) error {
	unique := dedupeByExternalID(cosmetics)
	if len(unique) == 0 {
		return nil
	}

	externalIDs := make([]string, len(unique))
	for i, c := range unique {
		externalIDs[i] = c.ExternalID
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	rows, err := tx.Query(`
		SELECT id, external_id FROM cosmetics WHERE external_id = ANY($1)`,
		pq.Array(externalIDs))
	if err != nil {
		return err
	}

	existing := map[string]uuid.UUID{}
	for rows.Next() {
		var id uuid.UUID
		var externalID string
		if err := rows.Scan(&id, &externalID); err != nil {
			rows.Close()
			return err
		}
		existing[externalID] = id
	}
	rows.Close()
	if err := rows.Err(); err != nil {
		return err
	}

	for _, c := range unique {
		if id, ok := existing[c.ExternalID]; ok {
			_, err = tx.Exec(`
				UPDATE cosmetics
				SET name = $1, type = $2, rarity = $3, price = $4, image_url = $5,
				    is_new = $6, is_for_sale = $7, description = $8
				WHERE id = $9`,
				c.Name, c.Type, c.Rarity, c.Price, c.ImageURL,
				c.IsNew, c.IsForSale, nullableString(c.Description), id)
		} else {
			_, err = tx.Exec(`
				INSERT INTO cosmetics (`+cosmeticColumns+`)
				VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)`,
				uuid.New(), c.ExternalID, c.Name, c.Type, c.Rarity, c.Price,
				c.ImageURL, c.IsNew, c.IsForSale, c.AddedDate, nullableString(c.Description))
		}
		if err != nil {
			return fmt.Errorf("upsert cosmetic %s: %w", c.ExternalID, err)
		}
	}

	return tx.Commit()
}

// ClearNewFlags resets is_new ahead of a new-items sync step.
func (s *CosmeticStore) ClearNewFlags(ctx context.Context) error {
	_, err := s.db.ExecContext(ctx, `UPDATE cosmetics SET is_new = FALSE WHERE is_new = TRUE`)
	return err
}

// ClearForSaleFlags resets is_for_sale ahead of a shop sync step.
func (s *CosmeticStore) ClearForSaleFlags(ctx context.Context) error {
	_, err := s.db.ExecContext(ctx, `UPDATE cosmetics SET is_for_sale = FALSE WHERE is_for_sale = TRUE`)
	return err
}

func dedupeByExternalID(cosmetics []models.Cosmetic) []models.Cosmetic {
	seen := map[string]bool{}
	unique := make([]models.Cosmetic, 0, len(cosmetics))
	for _, c := range cosmetics {
		if c.ExternalID == "" || seen[c.ExternalID] {
			continue
		}
		seen[c.ExternalID] = true
		unique = append(unique, c)
	}
	return unique
}

func buildCosmeticFilter(q models.CosmeticQuery) (string, []any) {
	var conditions []string
	var args []any
	argIndex := 1

	add := func(cond string, val any) {
		conditions = append(conditions, fmt.Sprintf(cond, argIndex))
		args = append(args, val)
		argIndex++
	}

	if q.Name != "" {
		add("name ILIKE $%d", "%"+q.Name+"%")
	}
	if q.Type != "" {
		add("type = $%d", q.Type)
	}
	if q.Rarity != "" {
		add("rarity = $%d", q.Rarity)
	}
	if q.IsNew != nil {
		add("is_new = $%d", *q.IsNew)
	}
	if q.IsForSale != nil {
		add("is_for_sale = $%d", *q.IsForSale)
	}
	if q.FromDate != nil {
		add("added_date >= $%d", *q.FromDate)
	}

	if len(conditions) == 0 {
		return "", args
	}
	return " WHERE " + strings.Join(conditions, " AND "), args
}

func scanCosmetic(row rowScanner) (*models.Cosmetic, error) {
	var c models.Cosmetic
	var description sql.NullString
	err := row.Scan(&c.ID, &c.ExternalID, &c.Name, &c.Type, &c.Rarity, &c.Price,
		&c.ImageURL, &c.IsNew, &c.IsForSale, &c.AddedDate, &description)
	if err != nil {
		return nil, err
	}
	c.Description = description.String
	return &c, nil
}

func nullableString(s string) any {
	if s == "" {
		return nil
	}
	return s
}
