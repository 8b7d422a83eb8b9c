package pg

import (
	"context"
	"database/sql"
	"errors"

	"ustazhub.kz/internal/achievement"
	"ustazhub.kz/internal/scoring"
)

// RecordStore implements achievement.Store. Record ids come from the
// bigserial sequence on the achievements table.
type RecordStore struct {
	db *sql.DB
}

var _ achievement.Store = (*RecordStore)(nil)

const recordColumns = `id, owner_id, achievement_type, category, level, place, experience_bracket, participation_bracket, title, description, student_name, file_locator, points, status, created_at`

func (s *RecordStore) Create(ctx context.Context, rec *achievement.Record) error {
	c := rec.Classification
	return s.db.QueryRowContext(ctx, `
		insert into achievements
			(owner_id, achievement_type, category, level, place, experience_bracket,
			 participation_bracket, title, description, student_name, file_locator,
			 points, status, created_at)
		values ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12,$13,$14)
		returning id
	`, rec.OwnerID, string(c.Type), string(c.Category), string(c.Level), string(c.Place),
		string(c.Experience), string(c.Participation), rec.Title, rec.Description,
		rec.StudentName, rec.FileLocator, rec.Points, string(rec.Status), rec.CreatedAt,
	).Scan(&rec.ID)
}

func (s *RecordStore) Find(ctx context.Context, id int64) (*achievement.Record, error) {
	row := s.db.QueryRowContext(ctx, `select `+recordColumns+` from achievements where id=$1`, id)
	rec, err := scanRecord(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, achievement.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return rec, nil
}

func (s *RecordStore) ListAll(ctx context.Context) ([]*achievement.Record, error) {
	return s.listWhere(ctx, ``)
}

func (s *RecordStore) ListByOwner(ctx context.Context, ownerID string) ([]*achievement.Record, error) {
	return s.listWhere(ctx, `where owner_id=$1`, ownerID)
}

func (s *RecordStore) ListApproved(ctx context.Context) ([]*achievement.Record, error) {
	return s.listWhere(ctx, `where status=$1`, string(achievement.StatusApproved))
}

func (s *RecordStore) listWhere(ctx context.Context, cond string, args ...any) ([]*achievement.Record, error) {
	q := `select ` + recordColumns + ` from achievements `
	if cond != "" {
		q += cond + " "
	}
	q += `order by id desc`
	rows, err := s.db.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []*achievement.Record
	for rows.Next() {
		rec, err := scanRecord(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, rec)
	}
	return out, rows.Err()
}

func (s *RecordStore) UpdateStatus(ctx context.Context, id int64, status achievement.Status) error {
	res, err := s.db.ExecContext(ctx, `update achievements set status=$2 where id=$1`, id, string(status))
	if err != nil {
		return err
	}
	return requireRow(res, achievement.ErrNotFound)
}

func (s *RecordStore) Delete(ctx context.Context, id int64) error {
	res, err := s.db.ExecContext(ctx, `delete from achievements where id=$1`, id)
	if err != nil {
		return err
	}
	return requireRow(res, achievement.ErrNotFound)
}

func (s *RecordStore) DeleteByOwner(ctx context.Context, ownerID string) ([]string, error) {
	rows, err := s.db.QueryContext(ctx, `
		delete from achievements where owner_id=$1
		returning file_locator
	`, ownerID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var locators []string
	for rows.Next() {
		var locator string
		if err := rows.Scan(&locator); err != nil {
			return nil, err
		}
		if locator != "" {
			locators = append(locators, locator)
		}
	}
	return locators, rows.Err()
}

func scanRecord(row rowScanner) (*achievement.Record, error) {
	var rec achievement.Record
	var typ, category, level, place, exp, part, status string
	err := row.Scan(&rec.ID, &rec.OwnerID, &typ, &category, &level, &place, &exp, &part,
		&rec.Title, &rec.Description, &rec.StudentName, &rec.FileLocator,
		&rec.Points, &status, &rec.CreatedAt)
	if err != nil {
		return nil, err
	}
	rec.Classification = scoring.Classification{
		Type:          scoring.Type(typ),
		Category:      scoring.Category(category),
		Level:         scoring.Level(level),
		Place:         scoring.Place(place),
		Experience:    scoring.ExperienceBracket(exp),
		Participation: scoring.ParticipationBracket(part),
	}
	rec.Status = achievement.Status(status)
	return &rec, nil
}
