package interpreter

import (
	"context"
	"errors"
	"sort"
	"strconv"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/progressor-app/progressor/internal/domain"
	"github.com/progressor-app/progressor/internal/domain/chat"
	"github.com/progressor-app/progressor/internal/domain/task"
	"github.com/progressor-app/progressor/internal/domain/user"
)

// --- Fakes ---

// fakeStore is an in-memory database.Store. Filtering reuses
// task.Filter.Matches so its behavior tracks the SQL builder's.
type fakeStore struct {
	mu      sync.Mutex
	tasks   []task.Task
	nextID  int
	created []task.CreateRequest
	deleted []string
	updated map[string]task.Status

	createErr error
	listErr   error
}

func newFakeStore() *fakeStore {
	return &fakeStore{updated: map[string]task.Status{}}
}

func (s *fakeStore) CreateUser(context.Context, *user.User) error { return nil }
func (s *fakeStore) GetUser(context.Context, string) (*user.User, error) {
	return nil, domain.ErrNotFound
}
func (s *fakeStore) GetUserByUsername(context.Context, string) (*user.User, error) {
	return nil, domain.ErrNotFound
}
func (s *fakeStore) CreateMessage(context.Context, *chat.Message) error { return nil }
func (s *fakeStore) ListMessages(context.Context, string, int) ([]chat.Message, error) {
	return nil, nil
}

func (s *fakeStore) CreateTask(_ context.Context, userID string, req task.CreateRequest) (*task.Task, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.createErr != nil {
		return nil, s.createErr
	}
	s.created = append(s.created, req)
	s.nextID++
	t := task.Task{
		ID:        strconv.Itoa(s.nextID),
		UserID:    userID,
		Title:     req.Title,
		Status:    req.Status,
		Priority:  req.Priority,
		Category:  req.Category,
		Score:     req.Score,
		EstTime:   req.EstTime,
		DueDate:   req.DueDate,
		CreatedAt: time.Now(),
	}
	s.tasks = append(s.tasks, t)
	return &t, nil
}

func (s *fakeStore) GetTask(_ context.Context, id string) (*task.Task, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, t := range s.tasks {
		if t.ID == id {
			return &t, nil
		}
	}
	return nil, domain.ErrNotFound
}

func (s *fakeStore) matching(userID string, f task.Filter) []task.Task {
	var out []task.Task
	for _, t := range s.tasks {
		if t.UserID == userID && f.Matches(t) {
			out = append(out, t)
		}
	}
	sort.Slice(out, func(a, b int) bool {
		if !out[a].CreatedAt.Equal(out[b].CreatedAt) {
			return out[a].CreatedAt.After(out[b].CreatedAt)
		}
		return out[a].ID > out[b].ID
	})
	return out
}

func (s *fakeStore) ListTasks(_ context.Context, userID string, f task.Filter) ([]task.Task, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.listErr != nil {
		return nil, s.listErr
	}
	out := s.matching(userID, f)
	if f.Limit > 0 && len(out) > f.Limit {
		out = out[:f.Limit]
	}
	return out, nil
}

func (s *fakeStore) CountTasks(_ context.Context, userID string, f task.Filter) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.listErr != nil {
		return 0, s.listErr
	}
	return len(s.matching(userID, f)), nil
}

func (s *fakeStore) UpdateTaskStatus(_ context.Context, id string, status task.Status) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.updated[id] = status
	for i := range s.tasks {
		if s.tasks[i].ID == id {
			s.tasks[i].Status = status
			return nil
		}
	}
	return domain.ErrNotFound
}

func (s *fakeStore) DeleteTask(_ context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.deleted = append(s.deleted, id)
	for i := range s.tasks {
		if s.tasks[i].ID == id {
			s.tasks = append(s.tasks[:i], s.tasks[i+1:]...)
			return nil
		}
	}
	return domain.ErrNotFound
}

// fakeCache is an in-memory TTL cache with explicit expiry instants.
type fakeCache struct {
	mu      sync.Mutex
	entries map[string]fakeEntry
	now     func() time.Time
}

type fakeEntry struct {
	data      []byte
	expiresAt time.Time
}

func newFakeCache() *fakeCache {
	return &fakeCache{entries: map[string]fakeEntry{}, now: time.Now}
}

func (c *fakeCache) Get(_ context.Context, key string) ([]byte, bool, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	e, ok := c.entries[key]
	if !ok || c.now().After(e.expiresAt) {
		return nil, false, nil
	}
	return e.data, true, nil
}

func (c *fakeCache) Set(_ context.Context, key string, value []byte, ttl time.Duration) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries[key] = fakeEntry{data: value, expiresAt: c.now().Add(ttl)}
	return nil
}

func (c *fakeCache) Delete(_ context.Context, key string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.entries, key)
	return nil
}

func (c *fakeCache) Take(_ context.Context, key string) ([]byte, bool, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	e, ok := c.entries[key]
	if !ok || c.now().After(e.expiresAt) {
		return nil, false, nil
	}
	delete(c.entries, key)
	return e.data, true, nil
}

// expire forces every entry past its TTL.
func (c *fakeCache) expire() {
	c.mu.Lock()
	defer c.mu.Unlock()
	for k, e := range c.entries {
		e.expiresAt = time.Now().Add(-time.Second)
		c.entries[k] = e
	}
}

// fakeCompleter answers estimation prompts by keyword. Empty answer
// fields simulate call failures.
type fakeCompleter struct {
	priority   string
	difficulty string
	hours      string
	err        error
}

func (f *fakeCompleter) Complete(_ context.Context, prompt string) (string, error) {
	if f.err != nil {
		return "", f.err
	}
	switch {
	case strings.Contains(prompt, "priority level"):
		return f.priority, nil
	case strings.Contains(prompt, "difficulty"):
		return f.difficulty, nil
	default:
		return f.hours, nil
	}
}

type fakeClassifier struct {
	label string
	err   error
}

func (f *fakeClassifier) Classify(context.Context, string) (string, error) {
	return f.label, f.err
}

func newTestInterpreter(store *fakeStore, c *fakeCache) *Interpreter {
	return New(store, c,
		&fakeCompleter{priority: "3", difficulty: "5", hours: "1"},
		&fakeClassifier{label: "Work"})
}

// --- Dispatcher routing ---

func TestUnknownCommandSuggestsClosest(t *testing.T) {
	i := newTestInterpreter(newFakeStore(), newFakeCache())

	got := i.Process(context.Background(), "u1", "@taks buy milk")
	want := "Unknown command '@taks'. Did you mean '@task'?"
	if got != want {
		t.Fatalf("got %q, want %q", got, want)
	}
}

func TestUnknownCommandWithoutSuggestionPointsAtHelp(t *testing.T) {
	i := newTestInterpreter(newFakeStore(), newFakeCache())

	got := i.Process(context.Background(), "u1", "@xyz whatever")
	want := "Unknown command '@xyz'. Type '@help' to see available commands."
	if got != want {
		t.Fatalf("got %q, want %q", got, want)
	}
}

func TestHelpRouteWinsOverVocabularyCheck(t *testing.T) {
	i := newTestInterpreter(newFakeStore(), newFakeCache())

	got := i.Process(context.Background(), "u1", "@help")
	if !strings.HasPrefix(got, "Available commands:") {
		t.Fatalf("expected help listing, got %q", got)
	}
}

// --- Confirmation gate ---

func TestMutatingCommandAsksForConfirmation(t *testing.T) {
	store := newFakeStore()
	i := newTestInterpreter(store, newFakeCache())

	got := i.Process(context.Background(), "u1", "@delete old report")
	if !strings.Contains(got, "confirm") || !strings.Contains(got, "delete") {
		t.Fatalf("expected confirmation prompt, got %q", got)
	}
	if !strings.Contains(got, "'old report'") {
		t.Fatalf("prompt should echo the argument, got %q", got)
	}
}

func TestConfirmationExecutesAndClears(t *testing.T) {
	store := newFakeStore()
	_, _ = store.CreateTask(context.Background(), "u1", task.CreateRequest{
		Title: "old report", Status: task.StatusPending, Priority: task.PriorityNormal,
	})
	cache := newFakeCache()
	i := newTestInterpreter(store, cache)
	ctx := context.Background()

	_ = i.Process(ctx, "u1", "@delete old report")

	got := i.Process(ctx, "u1", "yes")
	if !strings.HasPrefix(got, "Executing @delete") {
		t.Fatalf("expected execution reply, got %q", got)
	}
	if len(store.deleted) != 1 {
		t.Fatalf("expected one delete forwarded to the store, got %d", len(store.deleted))
	}

	// No pending action left: a second yes is plain text.
	got = i.Process(ctx, "u1", "yes")
	if strings.HasPrefix(got, "Executing") {
		t.Fatalf("second yes must not re-execute, got %q", got)
	}
	if len(store.deleted) != 1 {
		t.Fatalf("second yes must not touch the store, got %d deletes", len(store.deleted))
	}
}

func TestExpiredConfirmationFallsThrough(t *testing.T) {
	cache := newFakeCache()
	i := newTestInterpreter(newFakeStore(), cache)
	ctx := context.Background()

	_ = i.Process(ctx, "u1", "@delete old report")
	cache.expire()

	got := i.Process(ctx, "u1", "yes")
	if strings.HasPrefix(got, "Executing") {
		t.Fatalf("expired action must not execute, got %q", got)
	}
}

func TestQuotedAndUppercaseYesConfirm(t *testing.T) {
	for _, yes := range []string{"'yes'", "YES", "  Yes  "} {
		cache := newFakeCache()
		i := newTestInterpreter(newFakeStore(), cache)
		ctx := context.Background()

		_ = i.Process(ctx, "u1", "@update report")
		got := i.Process(ctx, "u1", yes)
		if !strings.HasPrefix(got, "Executing @update") {
			t.Errorf("%q should confirm, got %q", yes, got)
		}
	}
}

func TestNewMutatingCommandReplacesPending(t *testing.T) {
	cache := newFakeCache()
	i := newTestInterpreter(newFakeStore(), cache)
	ctx := context.Background()

	_ = i.Process(ctx, "u1", "@delete old report")
	_ = i.Process(ctx, "u1", "@update new title")

	got := i.Process(ctx, "u1", "yes")
	if !strings.HasPrefix(got, "Executing @update: new title") {
		t.Fatalf("last pending action should win, got %q", got)
	}
}

func TestConfirmationsAreScopedPerUser(t *testing.T) {
	cache := newFakeCache()
	i := newTestInterpreter(newFakeStore(), cache)
	ctx := context.Background()

	_ = i.Process(ctx, "u1", "@delete old report")

	got := i.Process(ctx, "u2", "yes")
	if strings.HasPrefix(got, "Executing") {
		t.Fatalf("another user's yes must not confirm, got %q", got)
	}
}

func TestConcurrentYesExecutesOnce(t *testing.T) {
	store := newFakeStore()
	cache := newFakeCache()
	i := newTestInterpreter(store, cache)
	ctx := context.Background()

	_ = i.Process(ctx, "u1", "@delete old report")

	var executed sync.Map
	var wg sync.WaitGroup
	for n := range 4 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if strings.HasPrefix(i.Process(ctx, "u1", "yes"), "Executing") {
				executed.Store(n, true)
			}
		}()
	}
	wg.Wait()

	count := 0
	executed.Range(func(_, _ any) bool { count++; return true })
	if count != 1 {
		t.Fatalf("expected exactly one execution, got %d", count)
	}
}

func TestStuckPendingErrorReturnsGenericReply(t *testing.T) {
	store := newFakeStore()
	i := New(store, &erroringCache{}, &fakeCompleter{}, &fakeClassifier{})

	got := i.Process(context.Background(), "u1", "@delete old report")
	if got != genericErrorReply {
		t.Fatalf("expected generic reply, got %q", got)
	}
}

type erroringCache struct{}

func (erroringCache) Get(context.Context, string) ([]byte, bool, error) {
	return nil, false, errors.New("cache down")
}
func (erroringCache) Set(context.Context, string, []byte, time.Duration) error {
	return errors.New("cache down")
}
func (erroringCache) Delete(context.Context, string) error { return errors.New("cache down") }
func (erroringCache) Take(context.Context, string) ([]byte, bool, error) {
	return nil, false, errors.New("cache down")
}
