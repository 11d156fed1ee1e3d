package service

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/rs/zerolog"

	"github.com/yao-todolist/todo-api/internal/core/domain"
	"github.com/yao-todolist/todo-api/internal/core/ports"
)

// ---------------------------------------------------------------------------
// In-memory stubs
// ---------------------------------------------------------------------------

type stubTaskRepo struct {
	mu        sync.Mutex
	tasks     []domain.Task
	nextID    int64
	createErr error
	listErr   error
}

func newStubTaskRepo() *stubTaskRepo {
	return &stubTaskRepo{nextID: 1}
}

func (r *stubTaskRepo) Create(_ context.Context, t *domain.Task) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.createErr != nil {
		return 0, r.createErr
	}
	clone := *t
	clone.ID = r.nextID
	r.nextID++
	r.tasks = append(r.tasks, clone)
	return clone.ID, nil
}

func (r *stubTaskRepo) ListByUser(_ context.Context, userID int64) ([]domain.Task, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.listErr != nil {
		return nil, r.listErr
	}
	var out []domain.Task
	for _, t := range r.tasks {
		if t.UserID == userID {
			out = append(out, t)
		}
	}
	return out, nil
}

// stubReplay mirrors the Redis store: a key maps to 0 while pending and to
// the createid once remembered.
type stubReplay struct {
	mu         sync.Mutex
	keys       map[string]int64
	reserveErr error
}

func newStubReplay() *stubReplay {
	return &stubReplay{keys: make(map[string]int64)}
}

func (s *stubReplay) Reserve(_ context.Context, key string) (int64, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.reserveErr != nil {
		return 0, false, s.reserveErr
	}
	if id, ok := s.keys[key]; ok {
		return id, false, nil
	}
	s.keys[key] = 0
	return 0, true, nil
}

func (s *stubReplay) Remember(_ context.Context, key string, id int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.keys[key] = id
	return nil
}

func (s *stubReplay) Release(_ context.Context, key string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.keys, key)
	return nil
}

var discardLogger = zerolog.Nop()

// ---------------------------------------------------------------------------
// CreateTask
// ---------------------------------------------------------------------------

func TestTaskService_Create_Success(t *testing.T) {
	repo := newStubTaskRepo()
	svc := NewTaskService(repo, nil, discardLogger)

	id, err := svc.CreateTask(context.Background(), ports.CreateTaskInput{Text: "buy milk", UserID: 1})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if id != 1 {
		t.Fatalf("expected createid 1, got %d", id)
	}
	if repo.tasks[0].Status {
		t.Fatalf("new task must be incomplete")
	}
}

func TestTaskService_Create_MissingUserID(t *testing.T) {
	repo := newStubTaskRepo()
	svc := NewTaskService(repo, nil, discardLogger)

	_, err := svc.CreateTask(context.Background(), ports.CreateTaskInput{Text: "x"})
	if !errors.Is(err, domain.ErrMissingUserID) {
		t.Fatalf("expected ErrMissingUserID, got %v", err)
	}
	if len(repo.tasks) != 0 {
		t.Fatalf("no task row may be written, got %d", len(repo.tasks))
	}
}

func TestTaskService_Create_RepoError(t *testing.T) {
	repo := newStubTaskRepo()
	repo.createErr = domain.ErrUnknownOwner
	svc := NewTaskService(repo, nil, discardLogger)

	_, err := svc.CreateTask(context.Background(), ports.CreateTaskInput{Text: "x", UserID: 9})
	if !errors.Is(err, domain.ErrUnknownOwner) {
		t.Fatalf("expected wrapped ErrUnknownOwner, got %v", err)
	}
}

func TestTaskService_Create_IdempotencyReplay(t *testing.T) {
	repo := newStubTaskRepo()
	replay := newStubReplay()
	svc := NewTaskService(repo, replay, discardLogger)

	in := ports.CreateTaskInput{Text: "buy milk", UserID: 1, IdempotencyKey: "k-1"}
	first, err := svc.CreateTask(context.Background(), in)
	if err != nil {
		t.Fatalf("first create failed: %v", err)
	}
	second, err := svc.CreateTask(context.Background(), in)
	if err != nil {
		t.Fatalf("replay failed: %v", err)
	}
	if first != second {
		t.Fatalf("replay must return the same createid: %d vs %d", first, second)
	}
	if len(repo.tasks) != 1 {
		t.Fatalf("expected 1 stored task, got %d", len(repo.tasks))
	}

	// Same key from another user is a different task.
	other, _ := svc.CreateTask(context.Background(), ports.CreateTaskInput{Text: "buy milk", UserID: 2, IdempotencyKey: "k-1"})
	if other == first {
		t.Fatalf("keys must be scoped per user")
	}
}

func TestTaskService_Create_ReplayReserveFailureStillCreates(t *testing.T) {
	repo := newStubTaskRepo()
	replay := newStubReplay()
	replay.reserveErr = errors.New("redis down")
	svc := NewTaskService(repo, replay, discardLogger)

	if _, err := svc.CreateTask(context.Background(), ports.CreateTaskInput{Text: "x", UserID: 1, IdempotencyKey: "k"}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(repo.tasks) != 1 {
		t.Fatalf("expected task to be created despite replay failure")
	}
}

func TestTaskService_Create_PendingKeyIsInFlight(t *testing.T) {
	repo := newStubTaskRepo()
	replay := newStubReplay()
	replay.keys["1:k"] = 0
	svc := NewTaskService(repo, replay, discardLogger)

	_, err := svc.CreateTask(context.Background(), ports.CreateTaskInput{Text: "x", UserID: 1, IdempotencyKey: "k"})
	if !errors.Is(err, domain.ErrRequestInFlight) {
		t.Fatalf("expected ErrRequestInFlight, got %v", err)
	}
	if len(repo.tasks) != 0 {
		t.Fatalf("no task row may be written, got %d", len(repo.tasks))
	}
}

func TestTaskService_Create_ConcurrentSameKeyWritesOnce(t *testing.T) {
	repo := newStubTaskRepo()
	svc := NewTaskService(repo, newStubReplay(), discardLogger)
	in := ports.CreateTaskInput{Text: "buy milk", UserID: 1, IdempotencyKey: "k-1"}

	const n = 16
	var wg sync.WaitGroup
	errs := make([]error, n)
	ids := make([]int64, n)
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			ids[i], errs[i] = svc.CreateTask(context.Background(), in)
		}(i)
	}
	wg.Wait()

	if len(repo.tasks) != 1 {
		t.Fatalf("expected exactly 1 stored task, got %d", len(repo.tasks))
	}
	for i := range errs {
		switch {
		case errs[i] == nil && ids[i] != repo.tasks[0].ID:
			t.Fatalf("request %d got createid %d, want %d", i, ids[i], repo.tasks[0].ID)
		case errs[i] != nil && !errors.Is(errs[i], domain.ErrRequestInFlight):
			t.Fatalf("request %d: unexpected error %v", i, errs[i])
		}
	}
}

func TestTaskService_Create_FailedCreateReleasesKey(t *testing.T) {
	repo := newStubTaskRepo()
	repo.createErr = errors.New("pool closed")
	replay := newStubReplay()
	svc := NewTaskService(repo, replay, discardLogger)
	in := ports.CreateTaskInput{Text: "x", UserID: 1, IdempotencyKey: "k"}

	if _, err := svc.CreateTask(context.Background(), in); err == nil {
		t.Fatal("expected create error")
	}
	if _, held := replay.keys["1:k"]; held {
		t.Fatalf("reservation must be released after a failed create")
	}

	repo.createErr = nil
	id, err := svc.CreateTask(context.Background(), in)
	if err != nil || id != 1 {
		t.Fatalf("retry with the same key should create: id=%d err=%v", id, err)
	}
}

// ---------------------------------------------------------------------------
// ListTasks
// ---------------------------------------------------------------------------

func TestTaskService_List_ScopedAndOrdered(t *testing.T) {
	repo := newStubTaskRepo()
	svc := NewTaskService(repo, nil, discardLogger)

	_, _ = svc.CreateTask(context.Background(), ports.CreateTaskInput{Text: "a", UserID: 1})
	_, _ = svc.CreateTask(context.Background(), ports.CreateTaskInput{Text: "b", UserID: 2})
	_, _ = svc.CreateTask(context.Background(), ports.CreateTaskInput{Text: "c", UserID: 1})

	tasks, err := svc.ListTasks(context.Background(), 1)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(tasks) != 2 || tasks[0].Text != "a" || tasks[1].Text != "c" {
		t.Fatalf("unexpected tasks: %+v", tasks)
	}
}

func TestTaskService_List_EmptyIsNotNil(t *testing.T) {
	svc := NewTaskService(newStubTaskRepo(), nil, discardLogger)

	tasks, err := svc.ListTasks(context.Background(), 5)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if tasks == nil {
		t.Fatalf("expected empty slice, got nil")
	}
}

func TestTaskService_List_MissingUserID(t *testing.T) {
	svc := NewTaskService(newStubTaskRepo(), nil, discardLogger)

	if _, err := svc.ListTasks(context.Background(), 0); !errors.Is(err, domain.ErrMissingUserID) {
		t.Fatalf("expected ErrMissingUserID, got %v", err)
	}
}
