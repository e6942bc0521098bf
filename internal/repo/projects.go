package repo

import (
	"context"
	"database/sql"

	"github.com/CaptainBerkay35/taskmanager/internal/domain"
)

const projectColumns = `id,name,COALESCE(description,'') AS description,color,deadline,created_date`

func scanProject(s interface{ Scan(...any) error }) (domain.Project, error) {
	var p domain.Project
	var created string
	var deadline sql.NullString
	err := s.Scan(&p.ID, &p.Name, &p.Description, &p.Color, &deadline, &created)
	if err == sql.ErrNoRows {
		return p, ErrNotFound
	}
	if err != nil {
		return p, err
	}
	p.Deadline = parseTimePtr(deadline)
	p.CreatedDate = parseTime(created)
	return p, nil
}

func (r Repo) InsertProject(ctx context.Context, p domain.Project) error {
	tx, err := r.DB.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()
	if _, err := tx.ExecContext(ctx, `INSERT INTO projects(id,name,description,color,deadline,created_date) VALUES (?,?,?,?,?,?)`,
		p.ID, p.Name, nullable(p.Description), p.Color, fmtTimePtr(p.Deadline), fmtTime(p.CreatedDate)); err != nil {
		return err
	}
	if err := replaceProjectCategoriesTx(ctx, tx, p.ID, p.CategoryIDs); err != nil {
		return err
	}
	return tx.Commit()
}

// GetProject loads the project with its category set and task reverse
// collection.
func (r Repo) GetProject(ctx context.Context, id string) (domain.Project, error) {
	p, err := scanProject(r.DB.QueryRowContext(ctx, `SELECT `+projectColumns+` FROM projects WHERE id=?`, id))
	if err != nil {
		return p, err
	}
	if err := r.attachProjectRelations(ctx, &p); err != nil {
		return p, err
	}
	return p, nil
}

func (r Repo) ListProjects(ctx context.Context) ([]domain.Project, error) {
	rows, err := r.DB.QueryContext(ctx, `SELECT `+projectColumns+` FROM projects ORDER BY created_date DESC`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var res []domain.Project
	for rows.Next() {
		p, err := scanProject(rows)
		if err != nil {
			return nil, err
		}
		res = append(res, p)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	for i := range res {
		if err := r.attachProjectRelations(ctx, &res[i]); err != nil {
			return nil, err
		}
	}
	return res, nil
}

func (r Repo) attachProjectRelations(ctx context.Context, p *domain.Project) error {
	ids, err := r.projectCategoryIDs(ctx, p.ID)
	if err != nil {
		return err
	}
	p.CategoryIDs = ids
	tasks, err := r.ListTasksByProject(ctx, p.ID)
	if err != nil {
		return err
	}
	p.Tasks = tasks
	return nil
}

func (r Repo) projectCategoryIDs(ctx context.Context, projectID string) ([]string, error) {
	rows, err := r.DB.QueryContext(ctx, `SELECT category_id FROM project_categories WHERE project_id=? ORDER BY category_id`, projectID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var ids []string
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, err
		}
		ids = append(ids, id)
	}
	return ids, rows.Err()
}

// ReplaceProject rewrites the project row and its category set.
func (r Repo) ReplaceProject(ctx context.Context, p domain.Project) error {
	tx, err := r.DB.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()
	res, err := tx.ExecContext(ctx, `UPDATE projects SET name=?,description=?,color=?,deadline=? WHERE id=?`,
		p.Name, nullable(p.Description), p.Color, fmtTimePtr(p.Deadline), p.ID)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrNotFound
	}
	if err := replaceProjectCategoriesTx(ctx, tx, p.ID, p.CategoryIDs); err != nil {
		return err
	}
	return tx.Commit()
}

func replaceProjectCategoriesTx(ctx context.Context, tx *sql.Tx, projectID string, categoryIDs []string) error {
	if _, err := tx.ExecContext(ctx, `DELETE FROM project_categories WHERE project_id=?`, projectID); err != nil {
		return err
	}
	for _, cid := range categoryIDs {
		if _, err := tx.ExecContext(ctx, `INSERT INTO project_categories(project_id,category_id) VALUES (?,?)`, projectID, cid); err != nil {
			return err
		}
	}
	return nil
}

// DeleteProject removes the project; tasks and category links go with it
// via ON DELETE CASCADE.
func (r Repo) DeleteProject(ctx context.Context, id string) error {
	res, err := r.DB.ExecContext(ctx, `DELETE FROM projects WHERE id=?`, id)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrNotFound
	}
	return nil
}

// CountProjectsByCategory reports how many projects reference the
// category, used by the delete guard.
func (r Repo) CountProjectsByCategory(ctx context.Context, categoryID string) (int, error) {
	var n int
	err := r.DB.QueryRowContext(ctx, `SELECT COUNT(*) FROM project_categories WHERE category_id=?`, categoryID).Scan(&n)
	return n, err
}
