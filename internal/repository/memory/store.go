// Package memory is a mutex-guarded, process-local implementation of the
// ledger repositories. It follows the same ordering and uniqueness rules as
// the Postgres store and backs the "memory" database driver and the tests.
package memory

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/jwalitptl/clinic-ledger/internal/model"
	"github.com/jwalitptl/clinic-ledger/internal/repository"
)

type db struct {
	mu         sync.RWMutex
	now        func() time.Time
	seq        map[string]int64
	patients   map[int64]model.Patient
	mobiles    map[string]int64
	treatments map[int64]model.TreatmentRecord
	payments   map[int64]model.Payment
	notes      map[int64]model.TreatmentNote
	users      map[string]model.User
	outbox     map[uuid.UUID]model.OutboxEvent
}

func (d *db) next(table string) int64 {
	d.seq[table]++
	return d.seq[table]
}

// NewStore returns an empty in-memory store.
func NewStore() *repository.Store {
	d := &db{
		now:        func() time.Time { return time.Now().UTC() },
		seq:        map[string]int64{},
		patients:   map[int64]model.Patient{},
		mobiles:    map[string]int64{},
		treatments: map[int64]model.TreatmentRecord{},
		payments:   map[int64]model.Payment{},
		notes:      map[int64]model.TreatmentNote{},
		users:      map[string]model.User{},
		outbox:     map[uuid.UUID]model.OutboxEvent{},
	}
	return &repository.Store{
		Patients:   &patientRepository{d},
		Treatments: &treatmentRepository{d},
		Payments:   &paymentRepository{d},
		Notes:      &noteRepository{d},
		Users:      &userRepository{d},
		Outbox:     &outboxRepository{d},
		Ping:       func(context.Context) error { return nil },
		Close:      func() error { return nil },
	}
}

type patientRepository struct{ *db }

func (r *patientRepository) Create(_ context.Context, p *model.Patient) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.mobiles[p.Mobile]; ok {
		return repository.ErrDuplicateMobile
	}
	p.ID = r.next("patients")
	p.CreatedAt = r.now()
	r.patients[p.ID] = *p
	r.mobiles[p.Mobile] = p.ID
	return nil
}

func (r *patientRepository) Get(_ context.Context, id int64) (*model.Patient, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	p, ok := r.patients[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	return &p, nil
}

func (r *patientRepository) GetByMobile(_ context.Context, mobile string) (*model.Patient, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	id, ok := r.mobiles[mobile]
	if !ok {
		return nil, repository.ErrNotFound
	}
	p := r.patients[id]
	return &p, nil
}

func (r *patientRepository) List(_ context.Context, order model.PatientOrder) ([]*model.Patient, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]*model.Patient, 0, len(r.patients))
	for _, p := range r.patients {
		p := p
		out = append(out, &p)
	}
	sort.Slice(out, func(i, j int) bool {
		if order == model.OrderByAppointmentDesc && !out[i].AppointmentDate.Equal(out[j].AppointmentDate) {
			return out[j].AppointmentDate.Before(out[i].AppointmentDate)
		}
		return out[i].ID < out[j].ID
	})
	return out, nil
}

type treatmentRepository struct{ *db }

func (r *treatmentRepository) Upsert(_ context.Context, rec *model.TreatmentRecord) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	rec.UpdatedAt = r.now()
	r.treatments[rec.PatientID] = *rec
	return nil
}

func (r *treatmentRepository) Get(_ context.Context, patientID int64) (*model.TreatmentRecord, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	rec, ok := r.treatments[patientID]
	if !ok {
		return nil, nil
	}
	return &rec, nil
}

type paymentRepository struct{ *db }

func (r *paymentRepository) Create(_ context.Context, p *model.Payment) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	p.ID = r.next("payments")
	p.CreatedAt = r.now()
	r.payments[p.ID] = *p
	return nil
}

func (r *paymentRepository) Get(_ context.Context, id int64) (*model.Payment, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	p, ok := r.payments[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	return &p, nil
}

func (r *paymentRepository) Delete(_ context.Context, id int64) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.payments, id)
	return nil
}

func (r *paymentRepository) ListByPatient(_ context.Context, patientID int64) ([]*model.Payment, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := []*model.Payment{}
	for _, p := range r.payments {
		if p.PatientID == patientID {
			p := p
			out = append(out, &p)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if !out[i].PaymentDate.Equal(out[j].PaymentDate) {
			return out[i].PaymentDate.Before(out[j].PaymentDate)
		}
		return out[i].ID < out[j].ID
	})
	return out, nil
}

func (r *paymentRepository) SumByPatient(_ context.Context, patientID int64) (decimal.Decimal, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	total := decimal.Zero
	for _, p := range r.payments {
		if p.PatientID == patientID {
			total = total.Add(p.Amount)
		}
	}
	return total, nil
}

type noteRepository struct{ *db }

func (r *noteRepository) Create(_ context.Context, n *model.TreatmentNote) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	n.ID = r.next("notes")
	n.CreatedAt = r.now()
	n.UpdatedAt = n.CreatedAt
	r.notes[n.ID] = *n
	return nil
}

func (r *noteRepository) Get(_ context.Context, id int64) (*model.TreatmentNote, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	n, ok := r.notes[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	return &n, nil
}

func (r *noteRepository) Update(_ context.Context, n *model.TreatmentNote) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	cur, ok := r.notes[n.ID]
	if !ok {
		return repository.ErrNotFound
	}
	cur.NoteDate = n.NoteDate
	cur.Body = n.Body
	cur.UpdatedAt = r.now()
	r.notes[n.ID] = cur
	*n = cur
	return nil
}

func (r *noteRepository) Delete(_ context.Context, id int64) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.notes[id]; !ok {
		return repository.ErrNotFound
	}
	delete(r.notes, id)
	return nil
}

func (r *noteRepository) ListByPatient(_ context.Context, patientID int64) ([]*model.TreatmentNote, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := []*model.TreatmentNote{}
	for _, n := range r.notes {
		if n.PatientID == patientID {
			n := n
			out = append(out, &n)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if !out[i].NoteDate.Equal(out[j].NoteDate) {
			return out[i].NoteDate.Before(out[j].NoteDate)
		}
		return out[i].ID < out[j].ID
	})
	return out, nil
}

type userRepository struct{ *db }

func (r *userRepository) Create(_ context.Context, u *model.User) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.users[u.Username]; ok {
		return repository.ErrDuplicateUsername
	}
	u.ID = r.next("users")
	u.CreatedAt = r.now()
	r.users[u.Username] = *u
	return nil
}

func (r *userRepository) GetByUsername(_ context.Context, username string) (*model.User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	u, ok := r.users[username]
	if !ok {
		return nil, repository.ErrNotFound
	}
	return &u, nil
}

type outboxRepository struct{ *db }

func (r *outboxRepository) Create(_ context.Context, e *model.OutboxEvent) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	e.ID = uuid.New()
	e.Status = model.OutboxStatusPending
	e.CreatedAt = r.now()
	e.UpdatedAt = e.CreatedAt
	r.outbox[e.ID] = *e
	return nil
}

func (r *outboxRepository) GetPendingEvents(_ context.Context, limit int, maxRetries int) ([]*model.OutboxEvent, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := []*model.OutboxEvent{}
	for _, e := range r.outbox {
		if e.Status == model.OutboxStatusPending ||
			(e.Status == model.OutboxStatusFailed && e.RetryCount < maxRetries) {
			e := e
			out = append(out, &e)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if !out[i].CreatedAt.Equal(out[j].CreatedAt) {
			return out[i].CreatedAt.Before(out[j].CreatedAt)
		}
		return out[i].ID.String() < out[j].ID.String()
	})
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

func (r *outboxRepository) MarkProcessed(_ context.Context, id uuid.UUID) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	e, ok := r.outbox[id]
	if !ok {
		return repository.ErrNotFound
	}
	now := r.now()
	e.Status = model.OutboxStatusProcessed
	e.ErrorMessage = nil
	e.ProcessedAt = &now
	e.UpdatedAt = now
	r.outbox[id] = e
	return nil
}

func (r *outboxRepository) MarkFailed(_ context.Context, id uuid.UUID, errorMessage string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	e, ok := r.outbox[id]
	if !ok {
		return repository.ErrNotFound
	}
	e.Status = model.OutboxStatusFailed
	e.ErrorMessage = &errorMessage
	e.RetryCount++
	e.UpdatedAt = r.now()
	r.outbox[id] = e
	return nil
}

func (r *outboxRepository) DeleteProcessedBefore(_ context.Context, before time.Time) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var n int64
	for id, e := range r.outbox {
		if e.Status == model.OutboxStatusProcessed && e.ProcessedAt != nil && e.ProcessedAt.Before(before) {
			delete(r.outbox, id)
			n++
		}
	}
	return n, nil
}
