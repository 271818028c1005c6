package ledger

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
)

type SQLStore struct {
	db     *sql.DB
	driver string // "sqlite" or "postgres"
}

func NewSQLStore(db *sql.DB, driver string) *SQLStore {
	return &SQLStore{db: db, driver: driver}
}

func (s *SQLStore) UpsertCompletion(ctx context.Context, studentID, lessonID string, at time.Time) error {
	// Last write wins on the (student, lesson) key; both writers mean
	// "completed", so the race is benign.
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO completion_facts (student_id, lesson_id, completed_at)
		VALUES ($1,$2,$3)
		ON CONFLICT (student_id, lesson_id) DO UPDATE SET completed_at=EXCLUDED.completed_at`,
		studentID, lessonID, at.Unix())
	return err
}

func (s *SQLStore) CompletionFacts(ctx context.Context, studentID string, lessonIDs []string) (map[string]bool, error) {
	out := map[string]bool{}
	if len(lessonIDs) == 0 {
		return out, nil
	}
	ph := make([]string, len(lessonIDs))
	args := make([]any, 0, len(lessonIDs)+1)
	args = append(args, studentID)
	for i, lid := range lessonIDs {
		ph[i] = "$" + strconv.Itoa(i+2)
		args = append(args, lid)
	}
	rows, err := s.db.QueryContext(ctx, `
		SELECT lesson_id FROM completion_facts
		 WHERE student_id=$1 AND lesson_id IN (`+strings.Join(ph, ",")+`)`, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	for rows.Next() {
		var lid string
		if err := rows.Scan(&lid); err != nil {
			return nil, err
		}
		out[lid] = true
	}
	return out, rows.Err()
}

func (s *SQLStore) AppendAttempt(ctx context.Context, a QuizAttempt) error {
	if a.ID == "" {
		a.ID = uuid.NewString()
	}
	// DO NOTHING on the primary key makes a retried submit converge on
	// one row instead of appending a duplicate attempt.
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO quiz_attempts (id, student_id, lesson_id, score, total_points, passed, submitted_at)
		VALUES ($1,$2,$3,$4,$5,$6,$7)
		ON CONFLICT (id) DO NOTHING`,
		a.ID, a.StudentID, a.LessonID, a.Score, a.TotalPoints, a.Passed, a.SubmittedAt.Unix())
	return err
}

func (s *SQLStore) Attempts(ctx context.Context, f AttemptFilter) ([]QuizAttempt, error) {
	sqlStr := `SELECT id, student_id, lesson_id, score, total_points, passed, submitted_at
	             FROM quiz_attempts WHERE 1=1`
	args := []any{}
	n := 0
	next := func() string { n++; return "$" + strconv.Itoa(n) }
	if f.StudentID != "" {
		sqlStr += ` AND student_id=` + next()
		args = append(args, f.StudentID)
	}
	if f.LessonID != "" {
		sqlStr += ` AND lesson_id=` + next()
		args = append(args, f.LessonID)
	}
	if len(f.LessonIDs) > 0 {
		ph := make([]string, len(f.LessonIDs))
		for i, lid := range f.LessonIDs {
			ph[i] = next()
			args = append(args, lid)
		}
		sqlStr += ` AND lesson_id IN (` + strings.Join(ph, ",") + `)`
	}
	sqlStr += ` ORDER BY submitted_at, id`
	if f.Limit > 0 {
		sqlStr += ` LIMIT ` + next()
		args = append(args, f.Limit)
		sqlStr += ` OFFSET ` + next()
		args = append(args, f.Offset)
	}

	rows, err := s.db.QueryContext(ctx, sqlStr, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	out := []QuizAttempt{}
	for rows.Next() {
		var a QuizAttempt
		var at int64
		if err := rows.Scan(&a.ID, &a.StudentID, &a.LessonID, &a.Score, &a.TotalPoints, &a.Passed, &at); err != nil {
			return nil, err
		}
		a.SubmittedAt = time.Unix(at, 0).UTC()
		out = append(out, a)
	}
	return out, rows.Err()
}

func (s *SQLStore) UpsertSubmission(ctx context.Context, sub CapstoneSubmission) (CapstoneSubmission, error) {
	if sub.ID == "" {
		sub.ID = uuid.NewString()
	}
	lj, err := json.Marshal(sub.ProjectLinks)
	if err != nil {
		return CapstoneSubmission{}, err
	}
	// A resubmission overwrites the student fields only: grade and
	// feedback stay whatever the teacher last wrote.
	_, err = s.db.ExecContext(ctx, `
		INSERT INTO capstone_submissions (id, project_id, student_id, links_json, submitted_at)
		VALUES ($1,$2,$3,$4,$5)
		ON CONFLICT (project_id, student_id) DO UPDATE SET
		  links_json=EXCLUDED.links_json, submitted_at=EXCLUDED.submitted_at`,
		sub.ID, sub.ProjectID, sub.StudentID, string(lj), sub.SubmittedAt.Unix())
	if err != nil {
		return CapstoneSubmission{}, err
	}
	return s.GetSubmission(ctx, sub.ProjectID, sub.StudentID)
}

func (s *SQLStore) GetSubmission(ctx context.Context, projectID, studentID string) (CapstoneSubmission, error) {
	var sub CapstoneSubmission
	var lj string
	var at int64
	var grade sql.NullFloat64
	var feedback sql.NullString
	row := s.db.QueryRowContext(ctx, `
		SELECT id, project_id, student_id, links_json, submitted_at, grade, feedback
		  FROM capstone_submissions WHERE project_id=$1 AND student_id=$2`, projectID, studentID)
	if err := row.Scan(&sub.ID, &sub.ProjectID, &sub.StudentID, &lj, &at, &grade, &feedback); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return CapstoneSubmission{}, ErrSubmissionNotFound
		}
		return CapstoneSubmission{}, err
	}
	if err := json.Unmarshal([]byte(lj), &sub.ProjectLinks); err != nil {
		return CapstoneSubmission{}, err
	}
	sub.SubmittedAt = time.Unix(at, 0).UTC()
	if grade.Valid {
		g := grade.Float64
		sub.Grade = &g
	}
	sub.Feedback = feedback.String
	return sub, nil
}

func (s *SQLStore) SetGrade(ctx context.Context, submissionID string, grade float64, feedback string) error {
	res, err := s.db.ExecContext(ctx,
		`UPDATE capstone_submissions SET grade=$1, feedback=$2 WHERE id=$3`,
		grade, feedback, submissionID)
	if err != nil {
		return err
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return ErrSubmissionNotFound
	}
	return nil
}
