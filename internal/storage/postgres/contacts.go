package postgres

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/VXerys/artconnect-crm-sub001/internal/domain"
)

// ContactFilter narrows ListContacts.
type ContactFilter struct {
	Category *domain.ContactCategory
	Search   string
	Sort     string // created_at, name, last_contacted_at
	Order    Order
	Limit    int
}

var contactSortColumns = map[string]string{
	"":                  "created_at",
	"created_at":        "created_at",
	"name":              "name",
	"last_contacted_at": "last_contacted_at",
}

// ValidContactSort reports whether ListContacts can sort by column.
func ValidContactSort(column string) bool {
	_, ok := contactSortColumns[column]
	return ok
}

const contactColumns = `
	id, artist_id, name, email, phone, company, category, notes,
	last_contacted_at, created_at, updated_at`

func scanContact(row pgx.Row) (*domain.Contact, error) {
	var c domain.Contact
	var category string
	err := row.Scan(
		&c.ID, &c.ArtistID, &c.Name, &c.Email, &c.Phone, &c.Company, &category,
		&c.Notes, &c.LastContactedAt, &c.CreatedAt, &c.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	c.Category = domain.ContactCategory(category)
	return &c, nil
}

// ListContacts returns an artist's contacts matching filter.
func (s *Store) ListContacts(ctx context.Context, artistID uuid.UUID, filter ContactFilter) ([]domain.Contact, error) {
	column, ok := contactSortColumns[filter.Sort]
	if !ok {
		return nil, fmt.Errorf("unsupported sort column %q", filter.Sort)
	}

	query := `SELECT` + contactColumns + ` FROM contacts WHERE artist_id = $1`
	args := []interface{}{artistID}
	argIdx := 2

	if filter.Category != nil {
		query += fmt.Sprintf(" AND category = $%d", argIdx)
		args = append(args, string(*filter.Category))
		argIdx++
	}
	if search := strings.TrimSpace(filter.Search); search != "" {
		query += fmt.Sprintf(" AND (name ILIKE $%d OR email ILIKE $%d OR company ILIKE $%d)", argIdx, argIdx, argIdx)
		args = append(args, "%"+search+"%")
		argIdx++
	}

	query += fmt.Sprintf(" ORDER BY %s %s NULLS LAST, id LIMIT $%d", column, filter.Order.sql(), argIdx)
	args = append(args, clampLimit(filter.Limit))

	rows, err := s.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list contacts: %w", err)
	}
	defer rows.Close()

	var contacts []domain.Contact
	for rows.Next() {
		c, err := scanContact(rows)
		if err != nil {
			return nil, fmt.Errorf("scan contact: %w", err)
		}
		contacts = append(contacts, *c)
	}
	return contacts, rows.Err()
}

// GetContact returns one contact owned by artistID.
func (s *Store) GetContact(ctx context.Context, artistID, contactID uuid.UUID) (*domain.Contact, error) {
	row := s.pool.QueryRow(ctx,
		`SELECT`+contactColumns+` FROM contacts WHERE artist_id = $1 AND id = $2`,
		artistID, contactID)
	c, err := scanContact(row)
	if err != nil {
		return nil, fmt.Errorf("get contact: %w", notFound(err))
	}
	return c, nil
}

// CreateContact inserts a contact.
func (s *Store) CreateContact(ctx context.Context, c domain.Contact) (*domain.Contact, error) {
	if c.Category == "" {
		c.Category = domain.CategoryOther
	}
	row := s.pool.QueryRow(ctx, `
		INSERT INTO contacts (artist_id, name, email, phone, company, category, notes, last_contacted_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		RETURNING`+contactColumns,
		c.ArtistID, c.Name, c.Email, c.Phone, c.Company, string(c.Category), c.Notes, c.LastContactedAt,
	)
	created, err := scanContact(row)
	if err != nil {
		return nil, fmt.Errorf("insert contact: %w", err)
	}
	return created, nil
}

// UpdateContact overwrites the mutable fields of a contact.
func (s *Store) UpdateContact(ctx context.Context, c domain.Contact) (*domain.Contact, error) {
	row := s.pool.QueryRow(ctx, `
		UPDATE contacts SET
			name = $3, email = $4, phone = $5, company = $6, category = $7,
			notes = $8, last_contacted_at = $9, updated_at = NOW()
		WHERE artist_id = $1 AND id = $2
		RETURNING`+contactColumns,
		c.ArtistID, c.ID, c.Name, c.Email, c.Phone, c.Company, string(c.Category), c.Notes, c.LastContactedAt,
	)
	updated, err := scanContact(row)
	if err != nil {
		return nil, fmt.Errorf("update contact: %w", notFound(err))
	}
	return updated, nil
}

// DeleteContact removes a contact. Pipeline cards referencing it keep their
// artwork and lose the contact link.
func (s *Store) DeleteContact(ctx context.Context, artistID, contactID uuid.UUID) error {
	ct, err := s.pool.Exec(ctx, `DELETE FROM contacts WHERE artist_id = $1 AND id = $2`, artistID, contactID)
	if err != nil {
		return fmt.Errorf("delete contact: %w", err)
	}
	if ct.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

// CountContacts returns the artist's total number of contacts.
func (s *Store) CountContacts(ctx context.Context, artistID uuid.UUID) (int64, error) {
	var count int64
	if err := s.pool.QueryRow(ctx, `SELECT COUNT(*) FROM contacts WHERE artist_id = $1`, artistID).Scan(&count); err != nil {
		return 0, fmt.Errorf("count contacts: %w", err)
	}
	return count, nil
}

// CountContactsCreated counts contacts created in [start, end).
func (s *Store) CountContactsCreated(ctx context.Context, artistID uuid.UUID, start, end time.Time) (int64, error) {
	var count int64
	err := s.pool.QueryRow(ctx, `
		SELECT COUNT(*) FROM contacts
		WHERE artist_id = $1 AND created_at >= $2 AND created_at < $3`,
		artistID, start, end).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("count contacts created: %w", err)
	}
	return count, nil
}

// CountContactsByCategory returns counts keyed by category.
func (s *Store) CountContactsByCategory(ctx context.Context, artistID uuid.UUID) (map[domain.ContactCategory]int64, error) {
	rows, err := s.pool.Query(ctx,
		`SELECT category, COUNT(*) FROM contacts WHERE artist_id = $1 GROUP BY category`, artistID)
	if err != nil {
		return nil, fmt.Errorf("count contacts by category: %w", err)
	}
	defer rows.Close()

	counts := make(map[domain.ContactCategory]int64)
	for rows.Next() {
		var category string
		var count int64
		if err := rows.Scan(&category, &count); err != nil {
			return nil, fmt.Errorf("scan category count: %w", err)
		}
		counts[domain.ContactCategory(category)] = count
	}
	return counts, rows.Err()
}
