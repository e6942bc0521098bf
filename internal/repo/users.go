package repo

import (
	"context"
	"database/sql"
	"time"
)

// UserRecord is the stored account row, including the password hash the
// domain profile never carries.
type UserRecord struct {
	Username     string
	Email        string
	FullName     string
	PasswordHash string
	CreatedAt    time.Time
}

func (r Repo) InsertUser(ctx context.Context, u UserRecord) error {
	_, err := r.DB.ExecContext(ctx, `INSERT INTO users(username,email,full_name,password_hash,created_at) VALUES (?,?,?,?,?)`,
		u.Username, u.Email, u.FullName, u.PasswordHash, fmtTime(u.CreatedAt))
	return err
}

func (r Repo) GetUser(ctx context.Context, username string) (UserRecord, error) {
	var u UserRecord
	var created string
	err := r.DB.QueryRowContext(ctx, `SELECT username,email,full_name,password_hash,created_at FROM users WHERE username=?`, username).
		Scan(&u.Username, &u.Email, &u.FullName, &u.PasswordHash, &created)
	if err == sql.ErrNoRows {
		return u, ErrNotFound
	}
	if err != nil {
		return u, err
	}
	u.CreatedAt = parseTime(created)
	return u, nil
}

func (r Repo) UserEmailExists(ctx context.Context, email string) (bool, error) {
	var n int
	if err := r.DB.QueryRowContext(ctx, `SELECT COUNT(*) FROM users WHERE email=?`, email).Scan(&n); err != nil {
		return false, err
	}
	return n > 0, nil
}
