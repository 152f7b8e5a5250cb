package create

import (
	"context"
	"errors"
	"testing"

	"github.com/giovaniif/items/domain/item"
)

type mockRepository struct {
	items   map[string]*item.Item
	getErr  error
	saveErr error

	saveCalledWith []*item.Item
}

func newMockRepository() *mockRepository {
	return &mockRepository{items: map[string]*item.Item{}}
}

func (m *mockRepository) GetItem(ctx context.Context, itemId string) (*item.Item, error) {
	if m.getErr != nil {
		return nil, m.getErr
	}
	it, ok := m.items[itemId]
	if !ok {
		return nil, item.ErrNotFound
	}
	return it, nil
}

func (m *mockRepository) SaveItem(ctx context.Context, it *item.Item) error {
	m.saveCalledWith = append(m.saveCalledWith, it)
	if m.saveErr != nil {
		return m.saveErr
	}
	m.items[it.Id] = it
	return nil
}

func (m *mockRepository) DeleteItem(ctx context.Context, itemId string) error { return nil }
func (m *mockRepository) Ping(ctx context.Context) error                      { return nil }

type mockMirror struct {
	putErr  error
	puts    map[string]string
	deletes []string
}

func (m *mockMirror) PutBlob(ctx context.Context, itemId string, payload []byte) error {
	if m.puts == nil {
		m.puts = map[string]string{}
	}
	m.puts[itemId] = string(payload)
	return m.putErr
}

func (m *mockMirror) DeleteBlob(ctx context.Context, itemId string) error {
	m.deletes = append(m.deletes, itemId)
	return nil
}

func TestCreate_Success(t *testing.T) {
	repo := newMockRepository()
	mirror := &mockMirror{}
	uc := NewCreate(repo, mirror, nil)

	out, err := uc.Create(context.Background(), Input{ItemId: "foo", Data: map[string]any{"name": "A"}})
	if err != nil {
		t.Fatalf("expected nil error, got %v", err)
	}
	if out.Data["name"] != "A" {
		t.Fatalf("unexpected output: %+v", out)
	}
	if len(repo.saveCalledWith) != 1 || repo.saveCalledWith[0].Id != "foo" {
		t.Fatalf("expected SaveItem called once with foo, got %v", repo.saveCalledWith)
	}
	if mirror.puts["foo"] != `{"name":"A"}` {
		t.Fatalf("expected mirrored payload, got %q", mirror.puts["foo"])
	}
}

func TestCreate_AlreadyExistsKeepsFirstBody(t *testing.T) {
	repo := newMockRepository()
	uc := NewCreate(repo, &mockMirror{}, nil)

	if _, err := uc.Create(context.Background(), Input{ItemId: "dup", Data: map[string]any{"v": "first"}}); err != nil {
		t.Fatalf("expected nil error, got %v", err)
	}
	_, err := uc.Create(context.Background(), Input{ItemId: "dup", Data: map[string]any{"v": "second"}})
	if !errors.Is(err, item.ErrAlreadyExists) {
		t.Fatalf("expected ErrAlreadyExists, got %v", err)
	}
	if len(repo.saveCalledWith) != 1 {
		t.Fatalf("expected SaveItem called once, got %d", len(repo.saveCalledWith))
	}
	if repo.items["dup"].Data["v"] != "first" {
		t.Fatalf("expected first body kept, got %v", repo.items["dup"].Data)
	}
}

func TestCreate_LookupError(t *testing.T) {
	repo := newMockRepository()
	repo.getErr = item.ErrStore
	mirror := &mockMirror{}
	uc := NewCreate(repo, mirror, nil)

	_, err := uc.Create(context.Background(), Input{ItemId: "foo", Data: map[string]any{}})
	if !errors.Is(err, item.ErrStore) {
		t.Fatalf("expected ErrStore, got %v", err)
	}
	if len(repo.saveCalledWith) != 0 {
		t.Fatalf("expected SaveItem not to be called, got %d calls", len(repo.saveCalledWith))
	}
	if len(mirror.puts) != 0 {
		t.Fatalf("expected nothing mirrored, got %v", mirror.puts)
	}
}

func TestCreate_SaveError(t *testing.T) {
	repo := newMockRepository()
	repo.saveErr = errors.New("cannot save")
	mirror := &mockMirror{}
	uc := NewCreate(repo, mirror, nil)

	_, err := uc.Create(context.Background(), Input{ItemId: "foo", Data: map[string]any{}})
	if err == nil {
		t.Fatalf("expected error, got nil")
	}
	if len(mirror.puts) != 0 {
		t.Fatalf("expected nothing mirrored, got %v", mirror.puts)
	}
}

func TestCreate_MirrorErrorIsNotReturned(t *testing.T) {
	repo := newMockRepository()
	uc := NewCreate(repo, &mockMirror{putErr: errors.New("bucket unavailable")}, nil)

	_, err := uc.Create(context.Background(), Input{ItemId: "foo", Data: map[string]any{"name": "A"}})
	if err != nil {
		t.Fatalf("expected nil error, got %v", err)
	}
	if _, ok := repo.items["foo"]; !ok {
		t.Fatalf("expected item to be stored")
	}
}

func TestCreate_EmptyId(t *testing.T) {
	repo := newMockRepository()
	uc := NewCreate(repo, nil, nil)

	_, err := uc.Create(context.Background(), Input{ItemId: "", Data: map[string]any{}})
	if !errors.Is(err, item.ErrInvalidId) {
		t.Fatalf("expected ErrInvalidId, got %v", err)
	}
}
