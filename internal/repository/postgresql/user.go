package postgresql

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/cmlabs-hris/attendance-backend-go/internal/domain/user"
	"github.com/cmlabs-hris/attendance-backend-go/internal/pkg/database"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

const userColumns = `
	id, company_id, name, email, password_hash, phone, date_of_birth,
	department_id, position_id, role, google_id, email_verified,
	created_at, updated_at`

type userRepositoryImpl struct {
	db *database.DB
}

func NewUserRepository(db *database.DB) user.UserRepository {
	return &userRepositoryImpl{db: db}
}

func scanUser(row rowScanner, extra ...any) (user.User, error) {
	var u user.User
	dest := []any{
		&u.ID, &u.CompanyID, &u.Name, &u.Email, &u.PasswordHash, &u.Phone, &u.DateOfBirth,
		&u.DepartmentID, &u.PositionID, &u.Role, &u.GoogleID, &u.EmailVerified,
		&u.CreatedAt, &u.UpdatedAt,
	}
	if len(extra) > 0 {
		dest = append(dest, extra...)
	}
	err := row.Scan(dest...)
	return u, err
}

func (r *userRepositoryImpl) getOne(ctx context.Context, where string, arg any) (user.User, error) {
	q := GetQuerier(ctx, r.db)

	query := "SELECT " + userColumns + " FROM users WHERE " + where
	found, err := scanUser(q.QueryRow(ctx, query, arg))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return user.User{}, user.ErrUserNotFound
		}
		return user.User{}, fmt.Errorf("failed to get user: %w", err)
	}
	return found, nil
}

// GetByID implements user.UserRepository.
func (r *userRepositoryImpl) GetByID(ctx context.Context, id string) (user.User, error) {
	return r.getOne(ctx, "id = $1", id)
}

// GetByEmail implements user.UserRepository.
func (r *userRepositoryImpl) GetByEmail(ctx context.Context, email string) (user.User, error) {
	return r.getOne(ctx, "email = $1", strings.ToLower(email))
}

// GetByGoogleID implements user.UserRepository.
func (r *userRepositoryImpl) GetByGoogleID(ctx context.Context, googleID string) (user.User, error) {
	return r.getOne(ctx, "google_id = $1", googleID)
}

// Create implements user.UserRepository.
func (r *userRepositoryImpl) Create(ctx context.Context, newUser user.User) (user.User, error) {
	q := GetQuerier(ctx, r.db)

	if newUser.ID == "" {
		newUser.ID = uuid.Must(uuid.NewV7()).String()
	}

	query := `
		INSERT INTO users (
			id, company_id, name, email, password_hash, phone, date_of_birth,
			department_id, position_id, role, google_id, email_verified
		)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)
		RETURNING ` + userColumns

	created, err := scanUser(q.QueryRow(ctx, query,
		newUser.ID,
		newUser.CompanyID,
		newUser.Name,
		strings.ToLower(newUser.Email),
		newUser.PasswordHash,
		newUser.Phone,
		newUser.DateOfBirth,
		newUser.DepartmentID,
		newUser.PositionID,
		newUser.Role,
		newUser.GoogleID,
		newUser.EmailVerified,
	))
	if err != nil {
		if isUniqueViolation(err) {
			return user.User{}, user.ErrUserEmailExists
		}
		return user.User{}, fmt.Errorf("failed to create user: %w", err)
	}

	return created, nil
}

// Update implements user.UserRepository.
func (r *userRepositoryImpl) Update(ctx context.Context, companyID string, req user.UpdateUserRequest) (user.User, error) {
	q := GetQuerier(ctx, r.db)

	setClauses := make([]string, 0, 8)
	args := make([]any, 0, 9)
	set := func(col string, val any) {
		args = append(args, val)
		setClauses = append(setClauses, fmt.Sprintf("%s = $%d", col, len(args)))
	}

	if req.Name != nil {
		set("name", strings.TrimSpace(*req.Name))
	}
	if req.Email != nil {
		set("email", *req.Email)
	}
	if req.Role != nil {
		set("role", *req.Role)
	}
	if req.Phone != nil {
		set("phone", *req.Phone)
	}
	if req.DateOfBirth != nil {
		set("date_of_birth", *req.DateOfBirth)
	}
	if req.DepartmentID != nil {
		set("department_id", *req.DepartmentID)
	}
	if req.PositionID != nil {
		set("position_id", *req.PositionID)
	}

	if len(setClauses) == 0 {
		return user.User{}, fmt.Errorf("no updatable fields provided for user update")
	}
	setClauses = append(setClauses, "updated_at = NOW()")

	args = append(args, req.ID, companyID)
	query := "UPDATE users SET " + strings.Join(setClauses, ", ") +
		fmt.Sprintf(" WHERE id = $%d AND company_id = $%d RETURNING ", len(args)-1, len(args)) + userColumns

	updated, err := scanUser(q.QueryRow(ctx, query, args...))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return user.User{}, user.ErrUserNotFound
		}
		if isUniqueViolation(err) {
			return user.User{}, user.ErrUserEmailExists
		}
		return user.User{}, fmt.Errorf("failed to update user with id %s: %w", req.ID, err)
	}
	return updated, nil
}

// Delete implements user.UserRepository.
func (r *userRepositoryImpl) Delete(ctx context.Context, companyID, id string) error {
	q := GetQuerier(ctx, r.db)

	tag, err := q.Exec(ctx, `DELETE FROM users WHERE id = $1 AND company_id = $2`, id, companyID)
	if err != nil {
		return fmt.Errorf("failed to delete user: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return user.ErrUserNotFound
	}
	return nil
}

// List implements user.UserRepository.
func (r *userRepositoryImpl) List(ctx context.Context, filter user.UserFilter) ([]user.User, int64, error) {
	q := GetQuerier(ctx, r.db)

	conditions := []string{"company_id = $1"}
	args := []any{filter.CompanyID}
	argIdx := 2

	if filter.Search != nil && strings.TrimSpace(*filter.Search) != "" {
		conditions = append(conditions, fmt.Sprintf("(name ILIKE $%d OR email ILIKE $%d)", argIdx, argIdx))
		args = append(args, "%"+strings.TrimSpace(*filter.Search)+"%")
		argIdx++
	}
	if filter.Role != nil {
		conditions = append(conditions, fmt.Sprintf("role = $%d", argIdx))
		args = append(args, *filter.Role)
		argIdx++
	}

	whereClause := strings.Join(conditions, " AND ")

	var total int64
	if err := q.QueryRow(ctx, "SELECT COUNT(*) FROM users WHERE "+whereClause, args...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("failed to count users: %w", err)
	}

	query := fmt.Sprintf("SELECT %s FROM users WHERE %s ORDER BY name ASC LIMIT $%d OFFSET $%d",
		userColumns, whereClause, argIdx, argIdx+1)
	args = append(args, filter.Limit, (filter.Page-1)*filter.Limit)

	rows, err := q.Query(ctx, query, args...)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to list users: %w", err)
	}
	defer rows.Close()

	users := make([]user.User, 0)
	for rows.Next() {
		u, err := scanUser(rows)
		if err != nil {
			return nil, 0, fmt.Errorf("failed to scan user: %w", err)
		}
		users = append(users, u)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, err
	}

	return users, total, nil
}

// ListIDsByCompany implements user.UserRepository. A nil role selects every member.
func (r *userRepositoryImpl) ListIDsByCompany(ctx context.Context, companyID string, role *user.Role) ([]string, error) {
	q := GetQuerier(ctx, r.db)

	query := `SELECT id FROM users WHERE company_id = $1`
	args := []any{companyID}
	if role != nil {
		query += ` AND role = $2`
		args = append(args, *role)
	}

	rows, err := q.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list company members: %w", err)
	}
	defer rows.Close()

	ids := make([]string, 0)
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, err
		}
		ids = append(ids, id)
	}
	return ids, rows.Err()
}

// LinkGoogleAccount implements user.UserRepository.
func (r *userRepositoryImpl) LinkGoogleAccount(ctx context.Context, googleID string, email string) (user.User, error) {
	q := GetQuerier(ctx, r.db)

	query := `
		UPDATE users
		SET google_id = $1, email_verified = TRUE, updated_at = NOW()
		WHERE email = $2
		RETURNING ` + userColumns

	updated, err := scanUser(q.QueryRow(ctx, query, googleID, strings.ToLower(email)))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return user.User{}, user.ErrUserNotFound
		}
		return user.User{}, fmt.Errorf("failed to link google account: %w", err)
	}
	return updated, nil
}
