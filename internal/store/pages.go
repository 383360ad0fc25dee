package store

import (
	"context"
	"database/sql"
	"errors"
	"strings"

	"portalcal/internal/model"
)

func scanPages(rows *sql.Rows) ([]model.Page, error) {
	defer rows.Close()
	pages := []model.Page{}
	for rows.Next() {
		var p model.Page
		var typ string
		if err := rows.Scan(&p.Name, &p.URL, &p.Image, &typ); err != nil {
			return nil, err
		}
		p.Type = model.PageType(typ)
		pages = append(pages, p)
	}
	return pages, rows.Err()
}

func (s *Store) ListPages(ctx context.Context) ([]model.Page, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT name, url, image, type FROM pages ORDER BY name COLLATE NOCASE;`)
	if err != nil {
		return nil, err
	}
	return scanPages(rows)
}

// SearchPages matches q case-insensitively against page names. An empty
// query lists every page.
func (s *Store) SearchPages(ctx context.Context, q string) ([]model.Page, error) {
	q = strings.TrimSpace(q)
	if q == "" {
		return s.ListPages(ctx)
	}
	pattern := "%" + escapeLike(strings.ToLower(q)) + "%"
	rows, err := s.db.QueryContext(ctx,
		`SELECT name, url, image, type FROM pages WHERE lower(name) LIKE ? ESCAPE '\' ORDER BY name COLLATE NOCASE;`,
		pattern)
	if err != nil {
		return nil, err
	}
	return scanPages(rows)
}

func (s *Store) GetPage(ctx context.Context, name string) (model.Page, error) {
	var p model.Page
	var typ string
	err := s.db.QueryRowContext(ctx, `SELECT name, url, image, type FROM pages WHERE name = ?;`, name).
		Scan(&p.Name, &p.URL, &p.Image, &typ)
	if errors.Is(err, sql.ErrNoRows) {
		return model.Page{}, ErrNotFound
	}
	if err != nil {
		return model.Page{}, err
	}
	p.Type = model.PageType(typ)
	return p, nil
}

// SavePage inserts p or replaces the page with the same name.
func (s *Store) SavePage(ctx context.Context, p model.Page) error {
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO pages (name, url, image, type) VALUES (?, ?, ?, ?)
		 ON CONFLICT(name) DO UPDATE SET url = excluded.url, image = excluded.image, type = excluded.type;`,
		p.Name, p.URL, p.Image, string(p.Type))
	return err
}

// UpdatePage replaces the page stored under name with p in one statement.
// A different p.Name renames the page; taking the name of another page fails
// with ErrExists and leaves both untouched.
func (s *Store) UpdatePage(ctx context.Context, name string, p model.Page) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	if p.Name != name {
		var n int
		if err := tx.QueryRowContext(ctx, `SELECT COUNT(*) FROM pages WHERE name = ?;`, p.Name).Scan(&n); err != nil {
			return err
		}
		if n > 0 {
			return ErrExists
		}
	}
	res, err := tx.ExecContext(ctx,
		`UPDATE pages SET name = ?, url = ?, image = ?, type = ? WHERE name = ?;`,
		p.Name, p.URL, p.Image, string(p.Type), name)
	if err != nil {
		return err
	}
	if err := checkAffected(res); err != nil {
		return err
	}
	return tx.Commit()
}

func (s *Store) DeletePage(ctx context.Context, name string) error {
	res, err := s.db.ExecContext(ctx, `DELETE FROM pages WHERE name = ?;`, name)
	if err != nil {
		return err
	}
	return checkAffected(res)
}

func escapeLike(s string) string {
	r := strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)
	return r.Replace(s)
}
