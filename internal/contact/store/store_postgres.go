package store

import (
	"context"
	"database/sql"
	_ "embed"
	"errors"
	"fmt"
	"time"

	"crm/internal/contact/models"
	id "crm/pkg/domain"
	"crm/pkg/platform/sentinel"
)

//go:embed schema.sql
var schemaSQL string

const contactColumns = `id, first_name, last_name, company, phone, email, created_date, modified_date, version`

// PostgresStore persists contacts in a PostgreSQL table. Identifiers keep the
// ObjectID shape so records can move between backends.
type PostgresStore struct {
	db *sql.DB
}

// NewPostgres constructs a PostgreSQL-backed contact store.
func NewPostgres(db *sql.DB) *PostgresStore {
	return &PostgresStore{db: db}
}

// EnsureSchema creates the contacts table when it does not exist.
func (s *PostgresStore) EnsureSchema(ctx context.Context) error {
	if _, err := s.db.ExecContext(ctx, schemaSQL); err != nil {
		return fmt.Errorf("ensure contacts schema: %w", err)
	}
	return nil
}

func (s *PostgresStore) IsValidID(raw string) bool {
	return ValidID(raw)
}

func (s *PostgresStore) Insert(ctx context.Context, c *models.Contact) (*models.Contact, error) {
	contactID := c.ID
	if contactID.IsNil() {
		contactID = id.NewContactID()
	}
	query := `
		INSERT INTO contacts (id, first_name, last_name, company, phone, email, created_date, version)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		RETURNING ` + contactColumns
	row := s.db.QueryRowContext(ctx, query,
		contactID.String(),
		c.FirstName,
		c.LastName,
		nullIfEmpty(c.Company),
		nullIfEmpty(c.Phone),
		nullIfEmpty(c.Email),
		c.CreatedDate,
		c.Version,
	)
	stored, err := scanContact(row)
	if err != nil {
		return nil, fmt.Errorf("insert contact: %w", err)
	}
	return stored, nil
}

func (s *PostgresStore) FindAll(ctx context.Context) ([]*models.Contact, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT `+contactColumns+` FROM contacts ORDER BY seq`)
	if err != nil {
		return nil, fmt.Errorf("list contacts: %w", err)
	}
	defer rows.Close()

	out := make([]*models.Contact, 0)
	for rows.Next() {
		c, err := scanContact(rows)
		if err != nil {
			return nil, fmt.Errorf("scan contact: %w", err)
		}
		out = append(out, c)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate contacts: %w", err)
	}
	return out, nil
}

func (s *PostgresStore) FindByID(ctx context.Context, contactID id.ContactID) (*models.Contact, error) {
	row := s.db.QueryRowContext(ctx, `SELECT `+contactColumns+` FROM contacts WHERE id = $1`, contactID.String())
	c, err := scanContact(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, sentinel.ErrNotFound
		}
		return nil, fmt.Errorf("find contact by id: %w", err)
	}
	return c, nil
}

// UpdateByID applies the update in a single statement. Optional fields set to
// "" are stored as NULL.
func (s *PostgresStore) UpdateByID(ctx context.Context, contactID id.ContactID, u models.Update) (*models.Contact, error) {
	query := `
		UPDATE contacts SET
			first_name    = COALESCE($2::text, first_name),
			last_name     = COALESCE($3::text, last_name),
			company       = CASE WHEN $4::text IS NULL THEN company ELSE NULLIF($4::text, '') END,
			phone         = CASE WHEN $5::text IS NULL THEN phone ELSE NULLIF($5::text, '') END,
			email         = CASE WHEN $6::text IS NULL THEN email ELSE NULLIF($6::text, '') END,
			modified_date = GREATEST($7::timestamptz, created_date),
			version       = version + $8
		WHERE id = $1
		RETURNING ` + contactColumns
	row := s.db.QueryRowContext(ctx, query,
		contactID.String(),
		nullString(u.FirstName),
		nullString(u.LastName),
		nullString(u.Company),
		nullString(u.Phone),
		nullString(u.Email),
		u.ModifiedDate,
		u.VersionIncrement,
	)
	c, err := scanContact(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, sentinel.ErrNotFound
		}
		return nil, fmt.Errorf("update contact: %w", err)
	}
	return c, nil
}

func (s *PostgresStore) DeleteByID(ctx context.Context, contactID id.ContactID) (bool, error) {
	res, err := s.db.ExecContext(ctx, `DELETE FROM contacts WHERE id = $1`, contactID.String())
	if err != nil {
		return false, fmt.Errorf("delete contact: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("delete contact rows affected: %w", err)
	}
	return n > 0, nil
}

func (s *PostgresStore) Health(ctx context.Context) error {
	return unavailable(s.db.PingContext(ctx))
}

func (s *PostgresStore) Close() error {
	return s.db.Close()
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanContact(row rowScanner) (*models.Contact, error) {
	var (
		rawID    string
		company  sql.NullString
		phone    sql.NullString
		email    sql.NullString
		created  time.Time
		modified sql.NullTime
		c        models.Contact
	)
	if err := row.Scan(&rawID, &c.FirstName, &c.LastName, &company, &phone, &email, &created, &modified, &c.Version); err != nil {
		return nil, err
	}
	contactID, err := id.ParseContactID(rawID)
	if err != nil {
		return nil, fmt.Errorf("stored contact id %q: %w", rawID, err)
	}
	c.ID = contactID
	c.Company = company.String
	c.Phone = phone.String
	c.Email = email.String
	c.CreatedDate = models.Timestamp(created)
	if modified.Valid {
		m := models.Timestamp(modified.Time)
		c.ModifiedDate = &m
	}
	return &c, nil
}

func nullIfEmpty(s string) sql.NullString {
	return sql.NullString{String: s, Valid: s != ""}
}

func nullString(p *string) sql.NullString {
	if p == nil {
		return sql.NullString{}
	}
	return sql.NullString{String: *p, Valid: true}
}
