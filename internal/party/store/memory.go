package store

import (
	"context"
	"fmt"
	"sync"
	"time"

	"party360/internal/party/models"
	id "party360/pkg/domain"
)

type profileKey struct {
	token string
	dob   string
}

type memoryData struct {
	parties   map[id.PartyID]models.Party
	profiles  map[id.PartyID]models.PersonProfile
	byIdent   map[profileKey]id.PartyID
	addresses map[id.PartyID][]models.Address
	contacts  map[id.PartyID][]models.Contact
}

func newMemoryData() *memoryData {
	return &memoryData{
		parties:   make(map[id.PartyID]models.Party),
		profiles:  make(map[id.PartyID]models.PersonProfile),
		byIdent:   make(map[profileKey]id.PartyID),
		addresses: make(map[id.PartyID][]models.Address),
		contacts:  make(map[id.PartyID][]models.Contact),
	}
}

func (d *memoryData) clone() *memoryData {
	c := newMemoryData()
	for k, v := range d.parties {
		c.parties[k] = v
	}
	for k, v := range d.profiles {
		c.profiles[k] = v
	}
	for k, v := range d.byIdent {
		c.byIdent[k] = v
	}
	for k, v := range d.addresses {
		c.addresses[k] = append([]models.Address(nil), v...)
	}
	for k, v := range d.contacts {
		c.contacts[k] = append([]models.Contact(nil), v...)
	}
	return c
}

// InMemory is a Repository for tests and local runs. Transactions are
// serialized and work on a copy that replaces the data on success.
type InMemory struct {
	txMu sync.Mutex
	mu   sync.RWMutex
	data *memoryData
}

func NewInMemory() *InMemory {
	return &InMemory{data: newMemoryData()}
}

func (s *InMemory) RunInTx(ctx context.Context, fn func(ctx context.Context, repo Repository) error) error {
	s.txMu.Lock()
	defer s.txMu.Unlock()

	s.mu.RLock()
	staged := &memoryTx{data: s.data.clone()}
	s.mu.RUnlock()

	if err := fn(ctx, staged); err != nil {
		return err
	}
	s.mu.Lock()
	s.data = staged.data
	s.mu.Unlock()
	return nil
}

func (s *InMemory) FindBySSNTokenAndDOB(ctx context.Context, ssnToken string, dob time.Time) (*models.PersonProfile, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return (&memoryTx{data: s.data}).FindBySSNTokenAndDOB(ctx, ssnToken, dob)
}

func (s *InMemory) GetParty(ctx context.Context, partyID id.PartyID) (*models.PartySummary, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return (&memoryTx{data: s.data}).GetParty(ctx, partyID)
}

// Writes outside RunInTx are applied as single-statement transactions.
func (s *InMemory) InsertParty(ctx context.Context, party *models.Party) error {
	return s.RunInTx(ctx, func(ctx context.Context, repo Repository) error { return repo.InsertParty(ctx, party) })
}

func (s *InMemory) InsertPerson(ctx context.Context, person *models.PersonProfile) error {
	return s.RunInTx(ctx, func(ctx context.Context, repo Repository) error { return repo.InsertPerson(ctx, person) })
}

func (s *InMemory) InsertAddresses(ctx context.Context, addresses []models.Address) error {
	return s.RunInTx(ctx, func(ctx context.Context, repo Repository) error { return repo.InsertAddresses(ctx, addresses) })
}

func (s *InMemory) InsertContacts(ctx context.Context, contacts []models.Contact) error {
	return s.RunInTx(ctx, func(ctx context.Context, repo Repository) error { return repo.InsertContacts(ctx, contacts) })
}

// Count returns the number of stored parties.
func (s *InMemory) Count() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.data.parties)
}

type memoryTx struct {
	data *memoryData
}

func (t *memoryTx) RunInTx(ctx context.Context, fn func(ctx context.Context, repo Repository) error) error {
	return fn(ctx, t)
}

func (t *memoryTx) FindBySSNTokenAndDOB(_ context.Context, ssnToken string, dob time.Time) (*models.PersonProfile, error) {
	pid, ok := t.data.byIdent[profileKey{token: ssnToken, dob: dob.Format(models.DOBLayout)}]
	if !ok {
		return nil, ErrNotFound
	}
	p := t.data.profiles[pid]
	return &p, nil
}

func (t *memoryTx) InsertParty(_ context.Context, party *models.Party) error {
	if _, exists := t.data.parties[party.ID]; exists {
		return fmt.Errorf("insert party %s: %w", party.ID, ErrConflict)
	}
	t.data.parties[party.ID] = *party
	return nil
}

func (t *memoryTx) InsertPerson(_ context.Context, person *models.PersonProfile) error {
	if _, ok := t.data.parties[person.PartyID]; !ok {
		return fmt.Errorf("insert person: party %s: %w", person.PartyID, ErrNotFound)
	}
	key := profileKey{token: person.SSNToken, dob: person.DOB.Format(models.DOBLayout)}
	if _, exists := t.data.byIdent[key]; exists {
		return fmt.Errorf("insert person: %w", ErrConflict)
	}
	t.data.profiles[person.PartyID] = *person
	t.data.byIdent[key] = person.PartyID
	return nil
}

func (t *memoryTx) InsertAddresses(_ context.Context, addresses []models.Address) error {
	for _, a := range addresses {
		if _, ok := t.data.parties[a.PartyID]; !ok {
			return fmt.Errorf("insert address: party %s: %w", a.PartyID, ErrNotFound)
		}
		t.data.addresses[a.PartyID] = append(t.data.addresses[a.PartyID], a)
	}
	return nil
}

func (t *memoryTx) InsertContacts(_ context.Context, contacts []models.Contact) error {
	for _, c := range contacts {
		if _, ok := t.data.parties[c.PartyID]; !ok {
			return fmt.Errorf("insert contact: party %s: %w", c.PartyID, ErrNotFound)
		}
		t.data.contacts[c.PartyID] = append(t.data.contacts[c.PartyID], c)
	}
	return nil
}

func (t *memoryTx) GetParty(_ context.Context, partyID id.PartyID) (*models.PartySummary, error) {
	p, ok := t.data.parties[partyID]
	if !ok {
		return nil, ErrNotFound
	}
	summary := &models.PartySummary{
		PartyID:   p.ID.String(),
		Type:      p.Type,
		Status:    string(p.Status),
		RiskLevel: p.RiskLevel,
		Tenant:    p.Tenant,
		CreatedAt: p.CreatedAt,
	}
	if prof, ok := t.data.profiles[partyID]; ok {
		summary.FirstName = prof.FirstName
		summary.LastName = prof.LastName
		summary.SSNLast4 = prof.SSNLast4
	}
	return summary, nil
}
