package repository

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/GunarsK-portfolio/user-service/internal/models"
)

func newTestRepo(t *testing.T) (UserRepository, string) {
	t.Helper()
	path := filepath.Join(t.TempDir(), "users.json")
	return NewFileUserRepository(path), path
}

func TestList_MissingFile(t *testing.T) {
	repo, _ := newTestRepo(t)

	users, err := repo.List(context.Background())
	require.NoError(t, err)
	assert.Empty(t, users)
}

func TestList_ExistingFile(t *testing.T) {
	repo, path := newTestRepo(t)
	seed := `{"users":[{"id":3,"name":"Ann","email":"ann@example.com","password":"$2a$04$x","role":"admin"},{"id":7,"name":"Bob","email":"bob@example.com"}]}`
	require.NoError(t, os.WriteFile(path, []byte(seed), 0o600))

	users, err := repo.List(context.Background())
	require.NoError(t, err)
	require.Len(t, users, 2)
	assert.Equal(t, int64(3), users[0].ID)
	assert.Equal(t, models.RoleAdmin, users[0].Role)
	assert.Equal(t, "$2a$04$x", users[0].PasswordHash)
	assert.Equal(t, models.RoleUser, users[1].Role, "records without role default to user")
}

func TestList_CorruptFile(t *testing.T) {
	repo, path := newTestRepo(t)
	require.NoError(t, os.WriteFile(path, []byte("{not json"), 0o600))

	_, err := repo.List(context.Background())
	require.ErrorContains(t, err, "failed to decode")
}

func TestCreate_AssignsMaxPlusOne(t *testing.T) {
	repo, path := newTestRepo(t)
	seed := `{"users":[{"id":2,"name":"A","email":"a@example.com"},{"id":9,"name":"B","email":"b@example.com"}]}`
	require.NoError(t, os.WriteFile(path, []byte(seed), 0o600))

	user := &models.User{Name: "C", Email: "c@example.com", Role: models.RoleUser}
	require.NoError(t, repo.Create(context.Background(), user))
	assert.Equal(t, int64(10), user.ID)
}

func TestCreate_FirstUserGetsIDOne(t *testing.T) {
	repo, _ := newTestRepo(t)

	user := &models.User{Name: "A", Email: "a@example.com"}
	require.NoError(t, repo.Create(context.Background(), user))
	assert.Equal(t, int64(1), user.ID)
}

func TestCreate_PersistsPasswordHash(t *testing.T) {
	repo, path := newTestRepo(t)

	user := &models.User{Name: "A", Email: "a@example.com", PasswordHash: "hashed", Role: models.RoleUser}
	require.NoError(t, repo.Create(context.Background(), user))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(data), `"password": "hashed"`)

	found, err := NewFileUserRepository(path).FindByEmail(context.Background(), "a@example.com")
	require.NoError(t, err)
	assert.Equal(t, "hashed", found.PasswordHash)
}

func TestCreate_DuplicateEmail(t *testing.T) {
	repo, _ := newTestRepo(t)
	ctx := context.Background()

	require.NoError(t, repo.Create(ctx, &models.User{Name: "A", Email: "a@example.com"}))
	err := repo.Create(ctx, &models.User{Name: "A2", Email: "a@example.com"})
	require.ErrorIs(t, err, ErrEmailTaken)

	users, err := repo.List(ctx)
	require.NoError(t, err)
	assert.Len(t, users, 1)
}

func TestCreate_ConcurrentSameEmail(t *testing.T) {
	repo, _ := newTestRepo(t)
	ctx := context.Background()

	const n = 20
	var wg sync.WaitGroup
	errs := make(chan error, n)
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			errs <- repo.Create(ctx, &models.User{Name: fmt.Sprintf("u%d", i), Email: "same@example.com"})
		}(i)
	}
	wg.Wait()
	close(errs)

	succeeded := 0
	for err := range errs {
		if err == nil {
			succeeded++
			continue
		}
		assert.ErrorIs(t, err, ErrEmailTaken)
	}
	assert.Equal(t, 1, succeeded)
}

func TestCreate_ConcurrentDistinctEmailsGetUniqueIDs(t *testing.T) {
	repo, _ := newTestRepo(t)
	ctx := context.Background()

	const n = 20
	var wg sync.WaitGroup
	ids := make(chan int64, n)
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			user := &models.User{Name: "u", Email: fmt.Sprintf("u%d@example.com", i)}
			if err := repo.Create(ctx, user); err == nil {
				ids <- user.ID
			}
		}(i)
	}
	wg.Wait()
	close(ids)

	seen := make(map[int64]bool)
	for id := range ids {
		assert.False(t, seen[id], "duplicate id %d", id)
		seen[id] = true
	}
	assert.Len(t, seen, n)
}

func TestFindByID(t *testing.T) {
	repo, _ := newTestRepo(t)
	ctx := context.Background()
	user := &models.User{Name: "A", Email: "a@example.com"}
	require.NoError(t, repo.Create(ctx, user))

	found, err := repo.FindByID(ctx, user.ID)
	require.NoError(t, err)
	assert.Equal(t, "a@example.com", found.Email)

	_, err = repo.FindByID(ctx, 42)
	require.ErrorIs(t, err, ErrUserNotFound)
}

func TestFindByEmail_NotFound(t *testing.T) {
	repo, _ := newTestRepo(t)

	_, err := repo.FindByEmail(context.Background(), "nobody@example.com")
	require.ErrorIs(t, err, ErrUserNotFound)
}

func TestUpdate(t *testing.T) {
	repo, _ := newTestRepo(t)
	ctx := context.Background()
	a := &models.User{Name: "A", Email: "a@example.com", PasswordHash: "h"}
	b := &models.User{Name: "B", Email: "b@example.com"}
	require.NoError(t, repo.Create(ctx, a))
	require.NoError(t, repo.Create(ctx, b))

	t.Run("name only keeps email", func(t *testing.T) {
		updated, err := repo.Update(ctx, a.ID, models.UserPatch{Name: "Alice"})
		require.NoError(t, err)
		assert.Equal(t, "Alice", updated.Name)
		assert.Equal(t, "a@example.com", updated.Email)
		assert.Equal(t, "h", updated.PasswordHash)
	})

	t.Run("email change", func(t *testing.T) {
		updated, err := repo.Update(ctx, a.ID, models.UserPatch{Email: "alice@example.com"})
		require.NoError(t, err)
		assert.Equal(t, "alice@example.com", updated.Email)
	})

	t.Run("email collision", func(t *testing.T) {
		_, err := repo.Update(ctx, a.ID, models.UserPatch{Email: "b@example.com"})
		require.ErrorIs(t, err, ErrEmailTaken)
	})

	t.Run("unknown id", func(t *testing.T) {
		_, err := repo.Update(ctx, 99, models.UserPatch{Name: "X"})
		require.ErrorIs(t, err, ErrUserNotFound)
	})
}

func TestCanceledContext(t *testing.T) {
	repo, _ := newTestRepo(t)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := repo.List(ctx)
	require.ErrorIs(t, err, context.Canceled)
	require.ErrorIs(t, repo.Create(ctx, &models.User{Email: "a@example.com"}), context.Canceled)
}
