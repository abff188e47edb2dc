package roster

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/phillip-england/hrpulse/internal/apiclient"
	"github.com/phillip-england/hrpulse/internal/metrics"
)

// API is the part of the backend client the roster needs.
type API interface {
	ListEmployees(ctx context.Context) ([]apiclient.Employee, error)
	CreateEmployee(ctx context.Context, employee apiclient.Employee) (*apiclient.Employee, error)
	UpdateEmployee(ctx context.Context, employee apiclient.Employee) (*apiclient.Employee, error)
	DeleteEmployee(ctx context.Context, id string) error
}

const defaultIdleTTL = 12 * time.Hour

type entry struct {
	employees []Employee
	touched   time.Time
}

// Book holds each session's copy of the employee list, keyed by bearer token.
//
// Delete patches the held list in place without asking the backend again.
// Create and Update drop it so the next read re-fetches everything. Every
// mutation bumps the token's generation; a load that started under an older
// generation is returned to its caller but not kept.
type Book struct {
	mu          sync.Mutex
	entries     map[string]*entry
	generations map[string]uint64
	api     func(token string) API
	idleTTL time.Duration
	now     func() time.Time
	logger  *slog.Logger
}

func NewBook(api func(token string) API, logger *slog.Logger) *Book {
	if logger == nil {
		logger = slog.Default()
	}
	return &Book{
		entries:     make(map[string]*entry),
		generations: make(map[string]uint64),
		api:         api,
		idleTTL:     defaultIdleTTL,
		now:         time.Now,
		logger:      logger.With("component", "roster"),
	}
}

// Employees returns the session's list, loading it from the backend when the
// session has none. The returned slice is a copy.
func (b *Book) Employees(ctx context.Context, token string) ([]Employee, error) {
	b.mu.Lock()
	b.sweepLocked()
	if e, ok := b.entries[token]; ok {
		e.touched = b.now()
		out := append([]Employee(nil), e.employees...)
		b.mu.Unlock()
		metrics.RecordRosterEvent("hit")
		return out, nil
	}
	gen := b.generations[token]
	b.mu.Unlock()

	list, err := b.api(token).ListEmployees(ctx)
	if err != nil {
		return nil, err
	}
	metrics.RecordRosterEvent("load")

	b.mu.Lock()
	if b.generations[token] == gen {
		b.entries[token] = &entry{employees: list, touched: b.now()}
	} else {
		metrics.RecordRosterEvent("stale")
	}
	b.mu.Unlock()
	return append([]Employee(nil), list...), nil
}

// Delete removes id through the backend and, on success, drops that row from
// the held list keeping the others in order. A failure is logged and leaves
// the list as it was; callers do not show it to the user.
func (b *Book) Delete(ctx context.Context, token, id string) error {
	if err := b.api(token).DeleteEmployee(ctx, id); err != nil {
		b.logger.Error("delete employee failed", "id", id, "error", err)
		return err
	}

	b.mu.Lock()
	defer b.mu.Unlock()
	b.generations[token]++
	e, ok := b.entries[token]
	if !ok {
		return nil
	}
	kept := make([]Employee, 0, len(e.employees))
	for _, emp := range e.employees {
		if emp.ID != id {
			kept = append(kept, emp)
		}
	}
	e.employees = kept
	e.touched = b.now()
	metrics.RecordRosterEvent("patch")
	return nil
}

// Create adds an employee and discards the held list.
func (b *Book) Create(ctx context.Context, token string, employee Employee) (*Employee, error) {
	created, err := b.api(token).CreateEmployee(ctx, employee)
	if err != nil {
		return nil, err
	}
	b.Reload(token)
	return created, nil
}

// Update saves an employee and discards the held list.
func (b *Book) Update(ctx context.Context, token string, employee Employee) (*Employee, error) {
	updated, err := b.api(token).UpdateEmployee(ctx, employee)
	if err != nil {
		return nil, err
	}
	b.Reload(token)
	return updated, nil
}

// Find looks an employee up in the held list, loading it if needed.
func (b *Book) Find(ctx context.Context, token, id string) (*Employee, error) {
	list, err := b.Employees(ctx, token)
	if err != nil {
		return nil, err
	}
	for i := range list {
		if list[i].ID == id {
			return &list[i], nil
		}
	}
	return nil, nil
}

// Reload drops the held list so the next read goes to the backend.
func (b *Book) Reload(token string) {
	b.mu.Lock()
	delete(b.entries, token)
	b.generations[token]++
	b.mu.Unlock()
	metrics.RecordRosterEvent("reload")
}

// Forget is Reload under the name used on logout.
func (b *Book) Forget(token string) {
	b.Reload(token)
}

func (b *Book) sweepLocked() {
	cutoff := b.now().Add(-b.idleTTL)
	for token, e := range b.entries {
		if e.touched.Before(cutoff) {
			delete(b.entries, token)
			delete(b.generations, token)
		}
	}
}
