package repo

import (
	"context"
	"database/sql"

	"github.com/CaptainBerkay35/taskmanager/internal/domain"
)

const taskColumns = `id,title,COALESCE(description,'') AS description,priority,status,due_date,completed_date,COALESCE(project_id,'') AS project_id,COALESCE(category_id,'') AS category_id,created_date`

func scanTask(s interface{ Scan(...any) error }) (domain.Task, error) {
	var t domain.Task
	var created string
	var due, completed sql.NullString
	err := s.Scan(&t.ID, &t.Title, &t.Description, &t.Priority, &t.Status, &due, &completed, &t.ProjectID, &t.CategoryID, &created)
	if err == sql.ErrNoRows {
		return t, ErrNotFound
	}
	if err != nil {
		return t, err
	}
	t.DueDate = parseTimePtr(due)
	t.CompletedDate = parseTimePtr(completed)
	t.CreatedDate = parseTime(created)
	t.Normalize()
	return t, nil
}

func (r Repo) InsertTask(ctx context.Context, t domain.Task) error {
	_, err := r.DB.ExecContext(ctx, `INSERT INTO tasks(id,title,description,priority,status,due_date,completed_date,project_id,category_id,created_date) VALUES (?,?,?,?,?,?,?,?,?,?)`,
		t.ID, t.Title, nullable(t.Description), int(t.Priority), string(t.Status),
		fmtTimePtr(t.DueDate), fmtTimePtr(t.CompletedDate), nullable(t.ProjectID), nullable(t.CategoryID), fmtTime(t.CreatedDate))
	return err
}

func (r Repo) GetTask(ctx context.Context, id string) (domain.Task, error) {
	return scanTask(r.DB.QueryRowContext(ctx, `SELECT `+taskColumns+` FROM tasks WHERE id=?`, id))
}

func (r Repo) ListTasks(ctx context.Context) ([]domain.Task, error) {
	rows, err := r.DB.QueryContext(ctx, `SELECT `+taskColumns+` FROM tasks ORDER BY created_date DESC`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var res []domain.Task
	for rows.Next() {
		t, err := scanTask(rows)
		if err != nil {
			return nil, err
		}
		res = append(res, t)
	}
	return res, rows.Err()
}

func (r Repo) ListTasksByProject(ctx context.Context, projectID string) ([]domain.Task, error) {
	rows, err := r.DB.QueryContext(ctx, `SELECT `+taskColumns+` FROM tasks WHERE project_id=? ORDER BY created_date DESC`, projectID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var res []domain.Task
	for rows.Next() {
		t, err := scanTask(rows)
		if err != nil {
			return nil, err
		}
		res = append(res, t)
	}
	return res, rows.Err()
}

// ReplaceTask rewrites every mutable column; PUT is a full replace.
func (r Repo) ReplaceTask(ctx context.Context, t domain.Task) error {
	res, err := r.DB.ExecContext(ctx, `UPDATE tasks SET title=?,description=?,priority=?,status=?,due_date=?,completed_date=?,project_id=?,category_id=? WHERE id=?`,
		t.Title, nullable(t.Description), int(t.Priority), string(t.Status),
		fmtTimePtr(t.DueDate), fmtTimePtr(t.CompletedDate), nullable(t.ProjectID), nullable(t.CategoryID), t.ID)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrNotFound
	}
	return nil
}

func (r Repo) DeleteTask(ctx context.Context, id string) error {
	res, err := r.DB.ExecContext(ctx, `DELETE FROM tasks WHERE id=?`, id)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrNotFound
	}
	return nil
}

// CountTasksByCategory reports how many tasks reference the category,
// used by the delete guard.
func (r Repo) CountTasksByCategory(ctx context.Context, categoryID string) (int, error) {
	var n int
	err := r.DB.QueryRowContext(ctx, `SELECT COUNT(*) FROM tasks WHERE category_id=?`, categoryID).Scan(&n)
	return n, err
}

// CountTasksByProject reports how many tasks a cascade delete would take
// with it.
func (r Repo) CountTasksByProject(ctx context.Context, projectID string) (int, error) {
	var n int
	err := r.DB.QueryRowContext(ctx, `SELECT COUNT(*) FROM tasks WHERE project_id=?`, projectID).Scan(&n)
	return n, err
}
