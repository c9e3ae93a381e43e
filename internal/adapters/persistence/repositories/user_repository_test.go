package repositories

import (
	"context"
	"errors"
	"testing"

	"punebus-backend/internal/adapters/persistence/models"
	"punebus-backend/internal/core/domain"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

func newUser(name, email, role string) *models.User {
	u := &models.User{Name: name, Role: role, IsActive: true}
	if email != "" {
		u.Email = &email
	}
	return u
}

func TestUserRepository_EmailOfDeletedUser(t *testing.T) {
	repo := NewUserRepository(newTestDB(t))
	ctx := context.Background()

	old := newUser("Old Garage", "garage@example.com", "mechanic")
	require.NoError(t, repo.Create(ctx, old))
	require.NoError(t, repo.Delete(ctx, old.ID))

	_, err := repo.GetByEmail(ctx, "garage@example.com")
	assert.ErrorIs(t, err, gorm.ErrRecordNotFound)

	exists, err := repo.ExistsByEmail(ctx, "garage@example.com")
	require.NoError(t, err)
	assert.True(t, exists, "soft-deleted rows keep their email")

	err = repo.Create(ctx, newUser("New Garage", "garage@example.com", "mechanic"))
	assert.True(t, errors.Is(err, domain.ErrConflict), "got %v", err)
	assert.Equal(t, "email already in use: conflict", err.Error())
}

func TestUserRepository_DuplicateEmailOnUpdate(t *testing.T) {
	repo := NewUserRepository(newTestDB(t))
	ctx := context.Background()

	require.NoError(t, repo.Create(ctx, newUser("Asha", "asha@example.com", "manager")))
	other := newUser("Ravi", "ravi@example.com", "sales")
	require.NoError(t, repo.Create(ctx, other))

	taken := "asha@example.com"
	other.Email = &taken
	assert.True(t, errors.Is(repo.Update(ctx, other), domain.ErrConflict))

	// users without an email never collide
	require.NoError(t, repo.Create(ctx, newUser("Driver One", "", "driver")))
	require.NoError(t, repo.Create(ctx, newUser("Driver Two", "", "driver")))
}

func TestUserRepository_ListAndCount(t *testing.T) {
	repo := NewUserRepository(newTestDB(t))
	ctx := context.Background()

	for _, u := range []*models.User{
		newUser("Asha Patil", "asha@example.com", "manager"),
		newUser("Ravi Pawar", "ravi@example.com", "driver"),
		newUser("Sunil More", "", "driver"),
	} {
		require.NoError(t, repo.Create(ctx, u))
	}
	gone := newUser("Gone", "", "driver")
	require.NoError(t, repo.Create(ctx, gone))
	require.NoError(t, repo.Delete(ctx, gone.ID))

	users, total, err := repo.List(ctx, UserFilter{Roles: []string{"driver"}, Limit: 1})
	require.NoError(t, err)
	assert.Equal(t, int64(2), total)
	assert.Len(t, users, 1)

	users, total, err = repo.List(ctx, UserFilter{Search: "PAWAR", Limit: 10})
	require.NoError(t, err)
	require.Equal(t, int64(1), total)
	assert.Equal(t, "Ravi Pawar", users[0].Name)

	counts, err := repo.CountByRole(ctx)
	require.NoError(t, err)
	assert.Equal(t, map[string]int64{"manager": 1, "driver": 2}, counts)
}
