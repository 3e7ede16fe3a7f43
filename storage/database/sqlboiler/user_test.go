package boiledrepos

import (
	"context"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/trezcool/safari/core/user"
)

const testUserID = "7b0f6b5e-2a51-4c36-9a1c-3f8c9d2e4b10"

func newMockUserRepo(t *testing.T) (user.Repository, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })
	return NewUserRepository(db), mock
}

func TestUserRepository_GetUser(t *testing.T) {
	repo, mock := newMockUserRepo(t)
	ctx := context.Background()
	now := time.Date(2026, 3, 2, 10, 0, 0, 0, time.UTC)

	mock.ExpectQuery(`FROM "user" WHERE \(*"email" = \$1\)* LIMIT 1`).
		WithArgs("amani@safari.test").
		WillReturnRows(sqlmock.NewRows(userColumns).AddRow(
			testUserID, "Amani", nil, "amani@safari.test", true, "{admin:owner}",
			[]byte("hash"), now, now, nil,
		))
	usr, err := repo.GetUser(ctx, user.GetFilter{Email: "amani@safari.test"})
	require.NoError(t, err)
	assert.Equal(t, testUserID, usr.ID)
	assert.Equal(t, "", usr.Username)
	assert.Equal(t, []string{user.RoleAdminOwner}, []string(usr.Roles))
	assert.True(t, usr.Active())
	assert.True(t, usr.LastLogin.IsZero())

	mock.ExpectQuery(`FROM "user" WHERE \(*"username" = \$1\)* LIMIT 1`).
		WithArgs("ghost").
		WillReturnRows(sqlmock.NewRows(userColumns))
	_, err = repo.GetUser(ctx, user.GetFilter{Username: "ghost"})
	assert.Equal(t, user.ErrNotFound, err)

	// malformed ids never reach the database
	_, err = repo.GetUser(ctx, user.GetFilter{ID: "not-a-uuid"})
	assert.Equal(t, user.ErrNotFound, err)

	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestUserRepository_CheckUsernameUniqueness(t *testing.T) {
	repo, mock := newMockUserRepo(t)
	ctx := context.Background()

	mock.ExpectQuery(`SELECT "username", "email" FROM "user" WHERE .*"username" = \$1.* OR .*"email" = \$2.* AND \(*"id" NOT IN \(\$3\)\)* LIMIT 1`).
		WithArgs("amani", "amani@safari.test", testUserID).
		WillReturnRows(sqlmock.NewRows([]string{"username", "email"}).AddRow(nil, "amani@safari.test"))
	err := repo.CheckUsernameUniqueness(ctx, "amani", "amani@safari.test", []user.User{{ID: testUserID}})
	assert.Equal(t, user.ErrEmailExists, err)

	mock.ExpectQuery(`SELECT "username", "email" FROM "user"`).
		WillReturnRows(sqlmock.NewRows([]string{"username", "email"}))
	assert.NoError(t, repo.CheckUsernameUniqueness(ctx, "zawadi", "", nil))

	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestUserRepository_UpdateAndDelete(t *testing.T) {
	repo, mock := newMockUserRepo(t)
	ctx := context.Background()

	mock.ExpectExec(`UPDATE "user" SET .*"name".* WHERE .*"id"`).
		WillReturnResult(sqlmock.NewResult(0, 0))
	_, err := repo.UpdateUser(ctx, user.User{ID: testUserID, Name: "Amani"})
	assert.Equal(t, user.ErrNotFound, err)

	mock.ExpectExec(`DELETE FROM "user" WHERE "id" IN \(\$1, ?\$2\)`).
		WithArgs(testUserID, "other").
		WillReturnResult(sqlmock.NewResult(0, 2))
	cnt, err := repo.DeleteUsersByID(ctx, []string{testUserID, "other"})
	require.NoError(t, err)
	assert.Equal(t, 2, cnt)

	cnt, err = repo.DeleteUsersByID(ctx, nil)
	require.NoError(t, err)
	assert.Zero(t, cnt)

	assert.NoError(t, mock.ExpectationsWereMet())
}
