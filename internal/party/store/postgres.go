package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgconn"

	"party360/internal/party/models"
	id "party360/pkg/domain"
	txcontext "party360/pkg/platform/tx"
)

const uniqueViolation = "23505"

// Postgres persists parties with database/sql over the pgx driver. Every
// method joins the transaction carried by ctx, if any.
type Postgres struct {
	db *sql.DB
}

func NewPostgres(db *sql.DB) *Postgres {
	return &Postgres{db: db}
}

func (s *Postgres) RunInTx(ctx context.Context, fn func(ctx context.Context, repo Repository) error) error {
	return txcontext.Run(ctx, s.db, func(ctx context.Context) error {
		return fn(ctx, s)
	})
}

func (s *Postgres) FindBySSNTokenAndDOB(ctx context.Context, ssnToken string, dob time.Time) (*models.PersonProfile, error) {
	var (
		p       models.PersonProfile
		partyID uuid.UUID
	)
	err := txcontext.Exec(ctx, s.db).QueryRowContext(ctx, `
		SELECT party_id, first_name, last_name, dob, ssn_token, ssn_last4
		FROM person_profiles
		WHERE ssn_token = $1 AND dob = $2
	`, ssnToken, dob).Scan(&partyID, &p.FirstName, &p.LastName, &p.DOB, &p.SSNToken, &p.SSNLast4)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("find person by ssn token: %w", err)
	}
	p.PartyID = id.PartyID(partyID)
	return &p, nil
}

func (s *Postgres) InsertParty(ctx context.Context, party *models.Party) error {
	_, err := txcontext.Exec(ctx, s.db).ExecContext(ctx, `
		INSERT INTO parties (id, party_type, status, risk_level, tenant, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
	`, uuid.UUID(party.ID), party.Type, party.Status, party.RiskLevel, party.Tenant, party.CreatedAt, party.UpdatedAt)
	if err != nil {
		return mapError("insert party", err)
	}
	return nil
}

func (s *Postgres) InsertPerson(ctx context.Context, person *models.PersonProfile) error {
	_, err := txcontext.Exec(ctx, s.db).ExecContext(ctx, `
		INSERT INTO person_profiles (party_id, first_name, last_name, dob, ssn_token, ssn_last4)
		VALUES ($1, $2, $3, $4, $5, $6)
	`, uuid.UUID(person.PartyID), person.FirstName, person.LastName, person.DOB, person.SSNToken, person.SSNLast4)
	if err != nil {
		return mapError("insert person profile", err)
	}
	return nil
}

func (s *Postgres) InsertAddresses(ctx context.Context, addresses []models.Address) error {
	exec := txcontext.Exec(ctx, s.db)
	for _, a := range addresses {
		_, err := exec.ExecContext(ctx, `
			INSERT INTO party_addresses (id, party_id, address_type, line1, line2, city, state, postal_code, country)
			VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		`, uuid.New(), uuid.UUID(a.PartyID), a.Type, a.Line1, a.Line2, a.City, a.State, a.PostalCode, a.Country)
		if err != nil {
			return mapError("insert address", err)
		}
	}
	return nil
}

func (s *Postgres) InsertContacts(ctx context.Context, contacts []models.Contact) error {
	exec := txcontext.Exec(ctx, s.db)
	for _, c := range contacts {
		_, err := exec.ExecContext(ctx, `
			INSERT INTO party_contacts (id, party_id, contact_type, value, is_primary)
			VALUES ($1, $2, $3, $4, $5)
		`, uuid.New(), uuid.UUID(c.PartyID), c.Type, c.Value, c.Primary)
		if err != nil {
			return mapError("insert contact", err)
		}
	}
	return nil
}

func (s *Postgres) GetParty(ctx context.Context, partyID id.PartyID) (*models.PartySummary, error) {
	var (
		out       models.PartySummary
		pid       uuid.UUID
		firstName sql.NullString
		lastName  sql.NullString
		last4     sql.NullString
	)
	err := txcontext.Exec(ctx, s.db).QueryRowContext(ctx, `
		SELECT p.id, p.party_type, p.status, p.risk_level, p.tenant, p.created_at,
		       pp.first_name, pp.last_name, pp.ssn_last4
		FROM parties p
		LEFT JOIN person_profiles pp ON pp.party_id = p.id
		WHERE p.id = $1
	`, uuid.UUID(partyID)).Scan(&pid, &out.Type, &out.Status, &out.RiskLevel, &out.Tenant, &out.CreatedAt,
		&firstName, &lastName, &last4)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("get party: %w", err)
	}
	out.PartyID = pid.String()
	out.FirstName = firstName.String
	out.LastName = lastName.String
	out.SSNLast4 = last4.String
	return &out, nil
}

func mapError(op string, err error) error {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == uniqueViolation {
		return fmt.Errorf("%s: %w", op, ErrConflict)
	}
	return fmt.Errorf("%s: %w", op, err)
}
