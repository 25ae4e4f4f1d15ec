package storage

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	sq "github.com/Masterminds/squirrel"
	"github.com/google/uuid"
	_ "modernc.org/sqlite"

	"BulletinTimeline/internal/domain"
	"BulletinTimeline/internal/ports"
)

const schema = `
CREATE TABLE IF NOT EXISTS runs (
	id         TEXT PRIMARY KEY,
	variant    TEXT NOT NULL,
	created_at TEXT NOT NULL
);
CREATE TABLE IF NOT EXISTS issues (
	run_id        TEXT NOT NULL REFERENCES runs(id),
	position      INTEGER NOT NULL,
	date          TEXT NOT NULL,
	label         TEXT NOT NULL,
	issue_num     INTEGER NOT NULL,
	is_background INTEGER NOT NULL DEFAULT 0,
	PRIMARY KEY (run_id, position)
);
CREATE TABLE IF NOT EXISTS articles (
	run_id         TEXT NOT NULL REFERENCES runs(id),
	issue_position INTEGER NOT NULL,
	position       INTEGER NOT NULL,
	article_id     TEXT NOT NULL,
	title          TEXT NOT NULL,
	title_en       TEXT NOT NULL DEFAULT '',
	type           TEXT NOT NULL,
	tags           TEXT NOT NULL,
	people         TEXT NOT NULL,
	is_highlight   INTEGER NOT NULL DEFAULT 0,
	body           TEXT NOT NULL DEFAULT '',
	PRIMARY KEY (run_id, issue_position, position)
);`

// SQLiteArchive keeps every build run as an immutable snapshot.
type SQLiteArchive struct {
	db  *sql.DB
	now func() time.Time
}

var _ ports.Archive = (*SQLiteArchive)(nil)

// OpenSQLiteArchive opens (or creates) the archive database at path.
func OpenSQLiteArchive(ctx context.Context, path string) (*SQLiteArchive, error) {
	if path != ":memory:" {
		if err := ensureParent(path); err != nil {
			return nil, err
		}
	}
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open archive: %w", err)
	}
	db.SetMaxOpenConns(1)

	if _, err := db.ExecContext(ctx, schema); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("init archive schema: %w", err)
	}
	return &SQLiteArchive{db: db, now: time.Now}, nil
}

// Close releases the database handle.
func (a *SQLiteArchive) Close() error {
	return a.db.Close()
}

// SaveRun stores the issues under a fresh run id and returns it.
func (a *SQLiteArchive) SaveRun(ctx context.Context, variant string, issues []domain.Issue) (string, error) {
	runID := uuid.NewString()

	tx, err := a.db.BeginTx(ctx, nil)
	if err != nil {
		return "", fmt.Errorf("begin archive tx: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	if err := execBuilder(ctx, tx, sq.Insert("runs").
		Columns("id", "variant", "created_at").
		Values(runID, variant, a.now().UTC().Format(time.RFC3339))); err != nil {
		return "", fmt.Errorf("insert run: %w", err)
	}

	for i, issue := range issues {
		if err := execBuilder(ctx, tx, sq.Insert("issues").
			Columns("run_id", "position", "date", "label", "issue_num", "is_background").
			Values(runID, i, issue.Date, issue.Label, issue.IssueNum, issue.IsBackground)); err != nil {
			return "", fmt.Errorf("insert issue %s: %w", issue.Date, err)
		}
		if len(issue.Articles) == 0 {
			continue
		}

		insert := sq.Insert("articles").Columns(
			"run_id", "issue_position", "position", "article_id", "title", "title_en",
			"type", "tags", "people", "is_highlight", "body",
		)
		for j, art := range issue.Articles {
			tags, err := encodeList(art.Tags)
			if err != nil {
				return "", err
			}
			people, err := encodeList(art.People)
			if err != nil {
				return "", err
			}
			insert = insert.Values(runID, i, j, art.ID, art.Title, art.TitleEn,
				string(art.Type), tags, people, art.IsHighlight, art.Body)
		}
		if err := execBuilder(ctx, tx, insert); err != nil {
			return "", fmt.Errorf("insert articles for %s: %w", issue.Date, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return "", fmt.Errorf("commit archive tx: %w", err)
	}
	return runID, nil
}

// LoadRun rebuilds the issues stored under runID in their original order.
func (a *SQLiteArchive) LoadRun(ctx context.Context, runID string) ([]domain.Issue, error) {
	var exists int
	query, args, err := sq.Select("COUNT(*)").From("runs").Where(sq.Eq{"id": runID}).ToSql()
	if err != nil {
		return nil, fmt.Errorf("build run query: %w", err)
	}
	if err := a.db.QueryRowContext(ctx, query, args...).Scan(&exists); err != nil {
		return nil, fmt.Errorf("query run: %w", err)
	}
	if exists == 0 {
		return nil, fmt.Errorf("%w: %s", domain.ErrRunNotFound, runID)
	}

	issues, err := a.loadIssues(ctx, runID)
	if err != nil {
		return nil, err
	}
	if err := a.loadArticles(ctx, runID, issues); err != nil {
		return nil, err
	}
	return issues, nil
}

func (a *SQLiteArchive) loadIssues(ctx context.Context, runID string) ([]domain.Issue, error) {
	query, args, err := sq.Select("date", "label", "issue_num", "is_background").
		From("issues").
		Where(sq.Eq{"run_id": runID}).
		OrderBy("position").
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("build issues query: %w", err)
	}

	rows, err := a.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query issues: %w", err)
	}
	defer rows.Close()

	issues := []domain.Issue{}
	for rows.Next() {
		issue := domain.Issue{Articles: []domain.Article{}}
		if err := rows.Scan(&issue.Date, &issue.Label, &issue.IssueNum, &issue.IsBackground); err != nil {
			return nil, fmt.Errorf("scan issue: %w", err)
		}
		issues = append(issues, issue)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("issues iteration: %w", err)
	}
	return issues, nil
}

func (a *SQLiteArchive) loadArticles(ctx context.Context, runID string, issues []domain.Issue) error {
	query, args, err := sq.Select(
		"issue_position", "article_id", "title", "title_en", "type",
		"tags", "people", "is_highlight", "body",
	).
		From("articles").
		Where(sq.Eq{"run_id": runID}).
		OrderBy("issue_position", "position").
		ToSql()
	if err != nil {
		return fmt.Errorf("build articles query: %w", err)
	}

	rows, err := a.db.QueryContext(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("query articles: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var (
			pos          int
			art          domain.Article
			kind         string
			tags, people string
		)
		if err := rows.Scan(&pos, &art.ID, &art.Title, &art.TitleEn, &kind,
			&tags, &people, &art.IsHighlight, &art.Body); err != nil {
			return fmt.Errorf("scan article: %w", err)
		}
		if pos < 0 || pos >= len(issues) {
			return fmt.Errorf("article %s references missing issue %d", art.ID, pos)
		}
		art.Type = domain.ArticleType(kind)
		if art.Tags, err = decodeList(tags); err != nil {
			return err
		}
		if art.People, err = decodeList(people); err != nil {
			return err
		}
		issues[pos].Articles = append(issues[pos].Articles, art)
	}
	if err := rows.Err(); err != nil {
		return fmt.Errorf("articles iteration: %w", err)
	}
	return nil
}

func execBuilder(ctx context.Context, tx *sql.Tx, b sq.Sqlizer) error {
	query, args, err := b.ToSql()
	if err != nil {
		return fmt.Errorf("build statement: %w", err)
	}
	_, err = tx.ExecContext(ctx, query, args...)
	return err
}

func encodeList(values []string) (string, error) {
	if values == nil {
		values = []string{}
	}
	raw, err := json.Marshal(values)
	if err != nil {
		return "", fmt.Errorf("encode list: %w", err)
	}
	return string(raw), nil
}

func decodeList(raw string) ([]string, error) {
	values := []string{}
	if raw == "" {
		return values, nil
	}
	if err := json.Unmarshal([]byte(raw), &values); err != nil {
		return nil, fmt.Errorf("decode list: %w", err)
	}
	return values, nil
}

