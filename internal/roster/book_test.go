package roster

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/phillip-england/hrpulse/internal/apiclient"
)

type fakeAPI struct {
	mu        sync.Mutex
	list      []apiclient.Employee
	listCalls int
	deleted   []string
	deleteErr error
	createErr error

	// When set, ListEmployees takes its snapshot, signals listStarted and
	// waits for listRelease before returning it.
	listStarted chan struct{}
	listRelease chan struct{}
}

func (f *fakeAPI) ListEmployees(ctx context.Context) ([]apiclient.Employee, error) {
	f.mu.Lock()
	f.listCalls++
	out := append([]apiclient.Employee(nil), f.list...)
	started, release := f.listStarted, f.listRelease
	f.listStarted, f.listRelease = nil, nil
	f.mu.Unlock()

	if started != nil {
		close(started)
		<-release
	}
	return out, nil
}

func (f *fakeAPI) CreateEmployee(ctx context.Context, e apiclient.Employee) (*apiclient.Employee, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.createErr != nil {
		return nil, f.createErr
	}
	e.ID = "new"
	f.list = append(f.list, e)
	return &e, nil
}

func (f *fakeAPI) UpdateEmployee(ctx context.Context, e apiclient.Employee) (*apiclient.Employee, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for i := range f.list {
		if f.list[i].ID == e.ID {
			f.list[i] = e
		}
	}
	return &e, nil
}

func (f *fakeAPI) DeleteEmployee(ctx context.Context, id string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.deleteErr != nil {
		return f.deleteErr
	}
	f.deleted = append(f.deleted, id)
	return nil
}

func newTestBook(api *fakeAPI) *Book {
	return NewBook(func(string) API { return api }, nil)
}

func TestEmployeesLoadsOnceThenHits(t *testing.T) {
	api := &fakeAPI{list: sampleEmployees()}
	book := newTestBook(api)

	first, err := book.Employees(context.Background(), "tok")
	require.NoError(t, err)
	second, err := book.Employees(context.Background(), "tok")
	require.NoError(t, err)

	assert.Equal(t, ids(first), ids(second))
	assert.Equal(t, 1, api.listCalls)

	_, err = book.Employees(context.Background(), "other")
	require.NoError(t, err)
	assert.Equal(t, 2, api.listCalls, "sessions do not share a list")
}

func TestDeletePatchesWithoutRefetch(t *testing.T) {
	api := &fakeAPI{list: []apiclient.Employee{{ID: "a"}, {ID: "abc123"}, {ID: "b"}, {ID: "c"}}}
	book := newTestBook(api)
	_, err := book.Employees(context.Background(), "tok")
	require.NoError(t, err)

	require.NoError(t, book.Delete(context.Background(), "tok", "abc123"))
	assert.Equal(t, []string{"abc123"}, api.deleted)

	list, err := book.Employees(context.Background(), "tok")
	require.NoError(t, err)
	assert.Equal(t, []string{"a", "b", "c"}, ids(list))
	assert.Equal(t, 1, api.listCalls)
}

func TestDeleteFailureLeavesListUnchanged(t *testing.T) {
	api := &fakeAPI{list: []apiclient.Employee{{ID: "a"}, {ID: "b"}}, deleteErr: errors.New("boom")}
	book := newTestBook(api)
	_, err := book.Employees(context.Background(), "tok")
	require.NoError(t, err)

	assert.Error(t, book.Delete(context.Background(), "tok", "a"))

	list, err := book.Employees(context.Background(), "tok")
	require.NoError(t, err)
	assert.Equal(t, []string{"a", "b"}, ids(list))
}

func TestCreateAndUpdateReload(t *testing.T) {
	api := &fakeAPI{list: []apiclient.Employee{{ID: "a", Name: "Old"}}}
	book := newTestBook(api)
	_, err := book.Employees(context.Background(), "tok")
	require.NoError(t, err)

	_, err = book.Update(context.Background(), "tok", apiclient.Employee{ID: "a", Name: "New"})
	require.NoError(t, err)
	list, err := book.Employees(context.Background(), "tok")
	require.NoError(t, err)
	assert.Equal(t, "New", list[0].Name)
	assert.Equal(t, 2, api.listCalls)

	_, err = book.Create(context.Background(), "tok", apiclient.Employee{Name: "Added"})
	require.NoError(t, err)
	list, err = book.Employees(context.Background(), "tok")
	require.NoError(t, err)
	assert.Len(t, list, 2)
	assert.Equal(t, 3, api.listCalls)
}

func TestCreateFailureKeepsList(t *testing.T) {
	api := &fakeAPI{list: []apiclient.Employee{{ID: "a"}}, createErr: apiclient.ErrRequestFailed}
	book := newTestBook(api)
	_, err := book.Employees(context.Background(), "tok")
	require.NoError(t, err)

	_, err = book.Create(context.Background(), "tok", apiclient.Employee{Name: "x"})
	assert.ErrorIs(t, err, apiclient.ErrRequestFailed)

	_, err = book.Employees(context.Background(), "tok")
	require.NoError(t, err)
	assert.Equal(t, 1, api.listCalls)
}

func TestReturnedSliceIsACopy(t *testing.T) {
	api := &fakeAPI{list: []apiclient.Employee{{ID: "a", Name: "One"}}}
	book := newTestBook(api)
	list, err := book.Employees(context.Background(), "tok")
	require.NoError(t, err)
	list[0].Name = "changed"

	again, err := book.Employees(context.Background(), "tok")
	require.NoError(t, err)
	assert.Equal(t, "One", again[0].Name)
}

func TestFindAndForget(t *testing.T) {
	api := &fakeAPI{list: sampleEmployees()}
	book := newTestBook(api)

	found, err := book.Find(context.Background(), "tok", "3")
	require.NoError(t, err)
	require.NotNil(t, found)
	assert.Equal(t, "Linus Torvalds", found.Name)

	missing, err := book.Find(context.Background(), "tok", "nope")
	require.NoError(t, err)
	assert.Nil(t, missing)

	book.Forget("tok")
	_, err = book.Employees(context.Background(), "tok")
	require.NoError(t, err)
	assert.Equal(t, 2, api.listCalls)
}

func TestIdleEntriesAreSwept(t *testing.T) {
	api := &fakeAPI{list: sampleEmployees()}
	book := newTestBook(api)
	now := time.Date(2026, 1, 1, 9, 0, 0, 0, time.UTC)
	book.now = func() time.Time { return now }

	_, err := book.Employees(context.Background(), "tok")
	require.NoError(t, err)

	now = now.Add(defaultIdleTTL + time.Minute)
	_, err = book.Employees(context.Background(), "tok")
	require.NoError(t, err)
	assert.Equal(t, 2, api.listCalls)
}

func TestLoadInFlightDoesNotOverwriteLaterMutation(t *testing.T) {
	for _, tc := range []struct {
		name   string
		mutate func(*testing.T, *Book, *fakeAPI)
	}{
		{"create", func(t *testing.T, b *Book, api *fakeAPI) {
			_, err := b.Create(context.Background(), "tok", apiclient.Employee{Name: "Barbara Liskov"})
			require.NoError(t, err)
		}},
		{"delete", func(t *testing.T, b *Book, api *fakeAPI) {
			require.NoError(t, b.Delete(context.Background(), "tok", "2"))
			api.mu.Lock()
			api.list = removeID(api.list, "2")
			api.mu.Unlock()
		}},
	} {
		t.Run(tc.name, func(t *testing.T) {
			api := &fakeAPI{
				list:        sampleEmployees(),
				listStarted: make(chan struct{}),
				listRelease: make(chan struct{}),
			}
			started, release := api.listStarted, api.listRelease
			book := newTestBook(api)

			done := make(chan []Employee)
			go func() {
				list, _ := book.Employees(context.Background(), "tok")
				done <- list
			}()
			<-started
			tc.mutate(t, book, api)
			close(release)
			stale := <-done
			assert.Len(t, stale, len(sampleEmployees()))

			fresh, err := book.Employees(context.Background(), "tok")
			require.NoError(t, err)
			assert.Equal(t, 2, api.listCalls, "the stale load must not be cached")

			api.mu.Lock()
			want := ids(api.list)
			api.mu.Unlock()
			assert.Equal(t, want, ids(fresh))
		})
	}
}

func removeID(list []apiclient.Employee, id string) []apiclient.Employee {
	out := list[:0:0]
	for _, e := range list {
		if e.ID != id {
			out = append(out, e)
		}
	}
	return out
}
