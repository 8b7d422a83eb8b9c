package pg

import (
	"context"
	"database/sql"
	"errors"

	"github.com/jackc/pgx/v5/pgconn"

	"ustazhub.kz/internal/account"
)

// AccountStore implements account.Store.
type AccountStore struct {
	db *sql.DB
}

var _ account.Store = (*AccountStore)(nil)

const accountColumns = `id, username, display_name, password_hash, role, school, subject, category_tier, experience_years, created_at, updated_at`

func (s *AccountStore) Create(ctx context.Context, acc *account.Account) error {
	_, err := s.db.ExecContext(ctx, `
		insert into accounts (`+accountColumns+`)
		values ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11)
	`, acc.ID, acc.Username, acc.DisplayName, acc.PasswordHash, string(acc.Role),
		acc.School, acc.Subject, acc.CategoryTier, acc.Experience, acc.CreatedAt, acc.UpdatedAt)
	if isUniqueViolation(err) {
		return account.ErrDuplicateName
	}
	return err
}

func (s *AccountStore) Find(ctx context.Context, id string) (*account.Account, error) {
	return s.findWhere(ctx, `id = $1`, id)
}

func (s *AccountStore) FindByUsername(ctx context.Context, username string) (*account.Account, error) {
	return s.findWhere(ctx, `username = $1`, username)
}

func (s *AccountStore) findWhere(ctx context.Context, cond string, arg any) (*account.Account, error) {
	row := s.db.QueryRowContext(ctx, `select `+accountColumns+` from accounts where `+cond, arg)
	acc, err := scanAccount(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, account.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return acc, nil
}

func (s *AccountStore) List(ctx context.Context) ([]*account.Account, error) {
	rows, err := s.db.QueryContext(ctx, `select `+accountColumns+` from accounts order by created_at, id`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []*account.Account
	for rows.Next() {
		acc, err := scanAccount(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, acc)
	}
	return out, rows.Err()
}

func (s *AccountStore) Update(ctx context.Context, acc *account.Account) error {
	res, err := s.db.ExecContext(ctx, `
		update accounts
		set display_name=$2, password_hash=$3, role=$4, school=$5, subject=$6,
		    category_tier=$7, experience_years=$8, updated_at=$9
		where id=$1
	`, acc.ID, acc.DisplayName, acc.PasswordHash, string(acc.Role),
		acc.School, acc.Subject, acc.CategoryTier, acc.Experience, acc.UpdatedAt)
	if err != nil {
		return err
	}
	return requireRow(res, account.ErrNotFound)
}

func (s *AccountStore) Delete(ctx context.Context, id string) error {
	res, err := s.db.ExecContext(ctx, `delete from accounts where id=$1`, id)
	if err != nil {
		return err
	}
	return requireRow(res, account.ErrNotFound)
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanAccount(row rowScanner) (*account.Account, error) {
	var acc account.Account
	var role string
	err := row.Scan(&acc.ID, &acc.Username, &acc.DisplayName, &acc.PasswordHash, &role,
		&acc.School, &acc.Subject, &acc.CategoryTier, &acc.Experience, &acc.CreatedAt, &acc.UpdatedAt)
	if err != nil {
		return nil, err
	}
	acc.Role = account.Role(role)
	return &acc, nil
}

func requireRow(res sql.Result, missing error) error {
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return missing
	}
	return nil
}

func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == "23505"
}
