package repo

import (
	"context"
	"database/sql"

	"github.com/CaptainBerkay35/taskmanager/internal/domain"
)

func scanCategory(s interface{ Scan(...any) error }) (domain.Category, error) {
	var c domain.Category
	err := s.Scan(&c.ID, &c.Name, &c.Color)
	if err == sql.ErrNoRows {
		return c, ErrNotFound
	}
	return c, err
}

func (r Repo) InsertCategory(ctx context.Context, c domain.Category) error {
	_, err := r.DB.ExecContext(ctx, `INSERT INTO categories(id,name,color) VALUES (?,?,?)`, c.ID, c.Name, c.Color)
	return err
}

func (r Repo) GetCategory(ctx context.Context, id string) (domain.Category, error) {
	return scanCategory(r.DB.QueryRowContext(ctx, `SELECT id,name,color FROM categories WHERE id=?`, id))
}

func (r Repo) ListCategories(ctx context.Context) ([]domain.Category, error) {
	rows, err := r.DB.QueryContext(ctx, `SELECT id,name,color FROM categories ORDER BY name`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var res []domain.Category
	for rows.Next() {
		c, err := scanCategory(rows)
		if err != nil {
			return nil, err
		}
		res = append(res, c)
	}
	return res, rows.Err()
}

func (r Repo) UpdateCategory(ctx context.Context, c domain.Category) error {
	res, err := r.DB.ExecContext(ctx, `UPDATE categories SET name=?,color=? WHERE id=?`, c.Name, c.Color, c.ID)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrNotFound
	}
	return nil
}

func (r Repo) DeleteCategory(ctx context.Context, id string) error {
	res, err := r.DB.ExecContext(ctx, `DELETE FROM categories WHERE id=?`, id)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrNotFound
	}
	return nil
}
