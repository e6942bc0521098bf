package repo

import (
	"context"
	"database/sql"

	"github.com/CaptainBerkay35/taskmanager/internal/domain"
)

func scanSubTask(s interface{ Scan(...any) error }) (domain.SubTask, error) {
	var st domain.SubTask
	var due sql.NullString
	var completed int
	err := s.Scan(&st.ID, &st.TaskID, &st.Title, &st.Priority, &due, &completed)
	if err == sql.ErrNoRows {
		return st, ErrNotFound
	}
	if err != nil {
		return st, err
	}
	st.DueDate = parseTimePtr(due)
	st.IsCompleted = completed != 0
	return st, nil
}

func (r Repo) InsertSubTask(ctx context.Context, st domain.SubTask) error {
	_, err := r.DB.ExecContext(ctx, `INSERT INTO subtasks(id,task_id,title,priority,due_date,is_completed) VALUES (?,?,?,?,?,?)`,
		st.ID, st.TaskID, st.Title, int(st.Priority), fmtTimePtr(st.DueDate), boolInt(st.IsCompleted))
	return err
}

func (r Repo) GetSubTask(ctx context.Context, id string) (domain.SubTask, error) {
	return scanSubTask(r.DB.QueryRowContext(ctx, `SELECT id,task_id,title,priority,due_date,is_completed FROM subtasks WHERE id=?`, id))
}

// ListSubTasksByTask returns the sub-tasks owned by a task.
func (r Repo) ListSubTasksByTask(ctx context.Context, taskID string) ([]domain.SubTask, error) {
	rows, err := r.DB.QueryContext(ctx, `SELECT id,task_id,title,priority,due_date,is_completed FROM subtasks WHERE task_id=?`, taskID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var res []domain.SubTask
	for rows.Next() {
		st, err := scanSubTask(rows)
		if err != nil {
			return nil, err
		}
		res = append(res, st)
	}
	return res, rows.Err()
}

func (r Repo) ReplaceSubTask(ctx context.Context, st domain.SubTask) error {
	res, err := r.DB.ExecContext(ctx, `UPDATE subtasks SET title=?,priority=?,due_date=?,is_completed=? WHERE id=?`,
		st.Title, int(st.Priority), fmtTimePtr(st.DueDate), boolInt(st.IsCompleted), st.ID)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrNotFound
	}
	return nil
}

func (r Repo) DeleteSubTask(ctx context.Context, id string) error {
	res, err := r.DB.ExecContext(ctx, `DELETE FROM subtasks WHERE id=?`, id)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrNotFound
	}
	return nil
}

func boolInt(b bool) int {
	if b {
		return 1
	}
	return 0
}
