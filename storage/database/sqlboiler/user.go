package boiledrepos

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	"github.com/friendsofgo/errors"
	"github.com/google/uuid"
	"github.com/volatiletech/null/v8"
	"github.com/volatiletech/sqlboiler/v4/queries"
	"github.com/volatiletech/sqlboiler/v4/queries/qm"
	"github.com/volatiletech/sqlboiler/v4/types"
	"github.com/volatiletech/strmangle"

	"github.com/trezcool/safari/core"
	"github.com/trezcool/safari/core/user"
)

const userTable = `"user"`

var (
	userColumns = []string{
		"id", "name", "username", "email", "is_active", "roles",
		"password_hash", "created_at", "updated_at", "last_login",
	}
	// every column but the primary key
	userUpdateColumns = userColumns[1:]
)

type userRow struct {
	ID           string            `boil:"id"`
	Name         null.String       `boil:"name"`
	Username     null.String       `boil:"username"`
	Email        null.String       `boil:"email"`
	IsActive     null.Bool         `boil:"is_active"`
	Roles        types.StringArray `boil:"roles"`
	PasswordHash null.Bytes        `boil:"password_hash"`
	CreatedAt    null.Time         `boil:"created_at"`
	UpdatedAt    null.Time         `boil:"updated_at"`
	LastLogin    null.Time         `boil:"last_login"`
}

func (r *userRow) values() []interface{} {
	return []interface{}{
		r.ID, r.Name, r.Username, r.Email, r.IsActive, r.Roles,
		r.PasswordHash, r.CreatedAt, r.UpdatedAt, r.LastLogin,
	}
}

type userRepository struct {
	exec core.DBExecutor
}

var _ user.Repository = (*userRepository)(nil) // interface compliance check

func NewUserRepository(exec core.DBExecutor) user.Repository {
	return &userRepository{exec: exec}
}

func (repo userRepository) getExec(svcExec []core.DBExecutor) core.DBExecutor {
	if len(svcExec) > 0 {
		return svcExec[0]
	}
	return repo.exec
}

func (repo userRepository) boil(usr user.User) *userRow {
	roles := usr.Roles
	if roles == nil {
		roles = []string{}
	}
	return &userRow{
		ID:           usr.ID,
		Name:         null.NewString(usr.Name, usr.Name != ""),
		Username:     null.NewString(usr.Username, usr.Username != ""),
		Email:        null.NewString(usr.Email, usr.Email != ""),
		IsActive:     null.BoolFromPtr(usr.IsActive),
		Roles:        roles,
		PasswordHash: null.BytesFrom(usr.PasswordHash),
		CreatedAt:    null.NewTime(usr.CreatedAt.UTC(), !usr.CreatedAt.IsZero()),
		UpdatedAt:    null.NewTime(usr.UpdatedAt.UTC(), !usr.UpdatedAt.IsZero()),
		LastLogin:    null.NewTime(usr.LastLogin.UTC(), !usr.LastLogin.IsZero()),
	}
}

func (repo userRepository) unboil(usr *userRow) user.User {
	if usr == nil {
		return user.User{}
	}
	return user.User{
		ID:           usr.ID,
		Name:         usr.Name.String,
		Username:     usr.Username.String,
		Email:        usr.Email.String,
		IsActive:     usr.IsActive.Ptr(),
		Roles:        usr.Roles,
		PasswordHash: usr.PasswordHash.Bytes,
		CreatedAt:    usr.CreatedAt.Time,
		UpdatedAt:    usr.UpdatedAt.Time,
		LastLogin:    usr.LastLogin.Time,
	}
}

func (repo userRepository) unboilSlice(rows []*userRow) []user.User {
	users := make([]user.User, 0, len(rows))
	for _, u := range rows {
		users = append(users, repo.unboil(u))
	}
	return users
}

// trapNoRowsErr maps psql "no rows" err to user.ErrNotFound
func (repo userRepository) trapNoRowsErr(err error, msg string) error {
	if errors.Cause(err) == sql.ErrNoRows {
		return user.ErrNotFound
	}
	return errors.Wrap(err, msg)
}

func usersQuery(mods ...qm.QueryMod) *queries.Query {
	cols := strmangle.IdentQuoteSlice(dialect.LQ, dialect.RQ, userColumns)
	return newQuery(append([]qm.QueryMod{qm.Select(cols...), qm.From(userTable)}, mods...)...)
}

func (repo userRepository) CheckUsernameUniqueness(ctx context.Context, username, email string, excludedUsers []user.User, exec ...core.DBExecutor) error {
	mods := []qm.QueryMod{qm.Select(`"username"`, `"email"`), qm.From(userTable)}
	mods = append(mods, qm.Expr(qm.Where(`"username" = ?`, username), qm.Or(`"email" = ?`, email)))
	if len(excludedUsers) > 0 {
		ids := make([]interface{}, 0, len(excludedUsers))
		for _, u := range excludedUsers {
			ids = append(ids, u.ID)
		}
		mods = append(mods, qm.Where(`"id" NOT IN (`+strings.TrimSuffix(strings.Repeat("?,", len(ids)), ",")+")", ids...))
	}
	mods = append(mods, qm.Limit(1))

	var uname, mail null.String
	err := newQuery(mods...).QueryRowContext(ctx, repo.getExec(exec)).Scan(&uname, &mail)
	switch {
	case errors.Cause(err) == sql.ErrNoRows:
		return nil
	case err != nil:
		return errors.Wrap(err, "checking user uniqueness")
	case username != "" && uname.String == username:
		return user.ErrUsernameExists
	default:
		return user.ErrEmailExists
	}
}

func (repo userRepository) CreateUser(ctx context.Context, usr user.User, exec ...core.DBExecutor) (user.User, error) {
	usr.ID = uuid.NewString()
	u := repo.boil(usr)
	q := fmt.Sprintf(
		"INSERT INTO %s (%s) VALUES (%s)",
		userTable,
		strings.Join(strmangle.IdentQuoteSlice(dialect.LQ, dialect.RQ, userColumns), ", "),
		strmangle.Placeholders(dialect.UseIndexPlaceholders, len(userColumns), 1, 1),
	)
	if _, err := queries.Raw(q, u.values()...).ExecContext(ctx, repo.getExec(exec)); err != nil {
		return user.User{}, errors.Wrap(err, "inserting user")
	}
	return repo.unboil(u), nil
}

func (repo userRepository) QueryUsers(ctx context.Context, filter *user.QueryFilter, ordering []core.DBOrdering, exec ...core.DBExecutor) ([]user.User, error) {
	var mods []qm.QueryMod

	if filter != nil {
		// users with Name, Username or Email matching the search keyword
		if filter.Search != "" {
			val := "%" + filter.Search + "%"
			mods = append(mods, qm.Expr(qm.Where(`"name" ILIKE ? OR "username" ILIKE ? OR "email" ILIKE ?`, val, val, val)))
		}
		// users with any role that starts with any of the provided roles
		if len(filter.Roles) > 0 {
			roleMods := make([]qm.QueryMod, 0, len(filter.Roles))
			for _, role := range filter.Roles {
				roleMods = append(roleMods, qm.Or2(qm.Where(
					fmt.Sprintf(`"id" IN (SELECT "id" FROM %s, UNNEST("roles") user_role WHERE user_role ILIKE ?)`, userTable),
					role+"%")))
			}
			mods = append(mods, qm.Expr(roleMods...))
		}
		if filter.IsActive != nil {
			mods = append(mods, qm.Where(`COALESCE("is_active", true) = ?`, *filter.IsActive))
		}
		if !filter.CreatedFrom.IsZero() {
			mods = append(mods, qm.Where(`"created_at" >= ?`, filter.CreatedFrom.UTC()))
		}
		if !filter.CreatedTo.IsZero() {
			mods = append(mods, qm.Where(`"created_at" <= ?`, filter.CreatedTo.UTC()))
		}
	}

	if ordering != nil {
		orderList := make([]string, 0, len(ordering))
		for _, ord := range ordering {
			orderList = append(orderList, ord.String())
		}
		mods = append(mods, qm.OrderBy(strings.Join(orderList, ", ")))
	}

	var rows []*userRow
	if err := usersQuery(mods...).Bind(ctx, repo.getExec(exec), &rows); err != nil {
		return nil, errors.Wrap(err, "querying users")
	}
	return repo.unboilSlice(rows), nil
}

func (repo userRepository) GetUser(ctx context.Context, filter user.GetFilter, exec ...core.DBExecutor) (user.User, error) {
	var mod qm.QueryMod

	switch {
	case filter.ID != "":
		if _, err := uuid.Parse(filter.ID); err != nil {
			return user.User{}, user.ErrNotFound
		}
		mod = qm.Where(`"id" = ?`, filter.ID)
	case filter.Username != "":
		mod = qm.Where(`"username" = ?`, filter.Username)
	case filter.Email != "":
		mod = qm.Where(`"email" = ?`, filter.Email)
	case len(filter.UsernameOrEmail) > 0:
		var email string
		uname := filter.UsernameOrEmail[0]
		if len(filter.UsernameOrEmail) == 2 {
			email = filter.UsernameOrEmail[1]
		}
		if email == "" {
			email = uname
		} else if uname == "" {
			uname = email
		}
		mod = qm.Where(`"username" = ? OR "email" = ?`, uname, email)
	default:
		return user.User{}, user.ErrNotFound
	}

	u := new(userRow)
	if err := usersQuery(mod, qm.Limit(1)).Bind(ctx, repo.getExec(exec), u); err != nil {
		return user.User{}, repo.trapNoRowsErr(err, "finding user")
	}
	return repo.unboil(u), nil
}

func (repo userRepository) CountUsers(ctx context.Context, exec ...core.DBExecutor) (int, error) {
	var cnt int
	err := newQuery(qm.Select("COUNT(*)"), qm.From(userTable)).QueryRowContext(ctx, repo.getExec(exec)).Scan(&cnt)
	if err != nil {
		return 0, errors.Wrap(err, "counting users")
	}
	return cnt, nil
}

func (repo userRepository) UpdateUser(ctx context.Context, usr user.User, exec ...core.DBExecutor) (user.User, error) {
	u := repo.boil(usr)
	q := fmt.Sprintf(
		"UPDATE %s SET %s WHERE %s",
		userTable,
		strmangle.SetParamNames(string(dialect.LQ), string(dialect.RQ), 1, userUpdateColumns),
		strmangle.WhereClause(string(dialect.LQ), string(dialect.RQ), len(userUpdateColumns)+1, []string{"id"}),
	)
	args := append(u.values()[1:], u.ID)
	res, err := queries.Raw(q, args...).ExecContext(ctx, repo.getExec(exec))
	if err != nil {
		return user.User{}, errors.Wrap(err, "updating user")
	}
	if n, err := res.RowsAffected(); err != nil {
		return user.User{}, errors.Wrap(err, "updating user")
	} else if n == 0 {
		return user.User{}, user.ErrNotFound
	}
	return repo.unboil(u), nil
}

func (repo userRepository) UpdateOrCreateUser(ctx context.Context, usr user.User, exec ...core.DBExecutor) (user.User, error) {
	if usr.ID == "" {
		return repo.CreateUser(ctx, usr, exec...)
	}
	return repo.UpdateUser(ctx, usr, exec...)
}

func (repo userRepository) DeleteUsersByID(ctx context.Context, ids []string, exec ...core.DBExecutor) (int, error) {
	if len(ids) == 0 {
		return 0, nil
	}
	args := make([]interface{}, 0, len(ids))
	for _, id := range ids {
		args = append(args, id)
	}
	q := fmt.Sprintf(
		`DELETE FROM %s WHERE "id" IN (%s)`,
		userTable, strmangle.Placeholders(dialect.UseIndexPlaceholders, len(ids), 1, 1),
	)
	res, err := queries.Raw(q, args...).ExecContext(ctx, repo.getExec(exec))
	if err != nil {
		return 0, errors.Wrap(err, "deleting users")
	}
	cnt, err := res.RowsAffected()
	if err != nil {
		return 0, errors.Wrap(err, "deleting users")
	}
	return int(cnt), nil
}
