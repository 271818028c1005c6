package curriculum

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"time"
)

type SQLStore struct {
	db     *sql.DB
	driver string // "sqlite" or "postgres"
}

func NewSQLStore(db *sql.DB, driver string) *SQLStore {
	return &SQLStore{db: db, driver: driver}
}

func (s *SQLStore) PutCourse(ctx context.Context, c Course) error {
	_, err := s.db.ExecContext(ctx, `INSERT INTO courses (id,title,welcome_video_url,created_at)
		VALUES ($1,$2,$3,$4)
		ON CONFLICT (id) DO UPDATE SET title=EXCLUDED.title, welcome_video_url=EXCLUDED.welcome_video_url`,
		c.ID, c.Title, c.WelcomeVideoURL, time.Now().Unix())
	if err != nil {
		return err
	}
	if len(c.Chapters) > 0 {
		return s.SaveCurriculum(ctx, c)
	}
	return nil
}

func (s *SQLStore) GetCourse(ctx context.Context, id string) (Course, error) {
	var c Course
	row := s.db.QueryRowContext(ctx, `SELECT id,title,welcome_video_url,created_at FROM courses WHERE id=$1`, id)
	if err := row.Scan(&c.ID, &c.Title, &c.WelcomeVideoURL, &c.CreatedAt); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return Course{}, ErrCourseNotFound
		}
		return Course{}, err
	}

	chRows, err := s.db.QueryContext(ctx,
		`SELECT id,title,order_index FROM chapters WHERE course_id=$1 ORDER BY order_index`, id)
	if err != nil {
		return Course{}, err
	}
	defer chRows.Close()
	byChapter := map[string]int{}
	for chRows.Next() {
		var ch Chapter
		if err := chRows.Scan(&ch.ID, &ch.Title, &ch.OrderIndex); err != nil {
			return Course{}, err
		}
		ch.CourseID = id
		byChapter[ch.ID] = len(c.Chapters)
		c.Chapters = append(c.Chapters, ch)
	}
	if err := chRows.Err(); err != nil {
		return Course{}, err
	}

	lRows, err := s.db.QueryContext(ctx, `
		SELECT l.id, l.chapter_id, l.title, l.content_type, l.order_index,
		       l.duration_min, l.is_mandatory, l.content_url, l.file_url
		  FROM lessons l
		  JOIN chapters ch ON ch.id = l.chapter_id
		 WHERE ch.course_id=$1
		 ORDER BY ch.order_index, l.order_index`, id)
	if err != nil {
		return Course{}, err
	}
	defer lRows.Close()
	for lRows.Next() {
		var l Lesson
		var ct string
		if err := lRows.Scan(&l.ID, &l.ChapterID, &l.Title, &ct, &l.OrderIndex,
			&l.DurationMin, &l.IsMandatory, &l.ContentURL, &l.FileURL); err != nil {
			return Course{}, err
		}
		l.ContentType = ContentType(ct)
		i, ok := byChapter[l.ChapterID]
		if !ok {
			continue
		}
		c.Chapters[i].Lessons = append(c.Chapters[i].Lessons, l)
	}
	return c, lRows.Err()
}

func (s *SQLStore) ListCourses(ctx context.Context, limit, offset int) ([]Course, error) {
	if limit <= 0 || limit > 200 {
		limit = 50
	}
	rows, err := s.db.QueryContext(ctx,
		`SELECT id,title,welcome_video_url,created_at FROM courses ORDER BY created_at DESC LIMIT $1 OFFSET $2`,
		limit, offset)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	out := []Course{}
	for rows.Next() {
		var c Course
		if err := rows.Scan(&c.ID, &c.Title, &c.WelcomeVideoURL, &c.CreatedAt); err != nil {
			return nil, err
		}
		out = append(out, c)
	}
	return out, rows.Err()
}

// SaveCurriculum rebuilds the course tree from the snapshot: existing
// chapters and lessons are deleted and reinserted in one transaction, so
// a failed save leaves the previous tree intact.
func (s *SQLStore) SaveCurriculum(ctx context.Context, c Course) error {
	c = Normalize(c)
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	var exists int
	if err := tx.QueryRowContext(ctx, `SELECT 1 FROM courses WHERE id=$1`, c.ID).Scan(&exists); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return ErrCourseNotFound
		}
		return err
	}

	// Drop questions only for lessons that no longer exist, so past
	// quiz attempts keep their snapshotted denominators while live
	// questions survive a reorder.
	kept := map[string]bool{}
	for _, l := range c.Lessons() {
		kept[l.ID] = true
	}
	lRows, err := tx.QueryContext(ctx, `
		SELECT l.id FROM lessons l JOIN chapters ch ON ch.id=l.chapter_id WHERE ch.course_id=$1`, c.ID)
	if err != nil {
		return err
	}
	var dropped []string
	for lRows.Next() {
		var lid string
		if err := lRows.Scan(&lid); err != nil {
			lRows.Close()
			return err
		}
		if !kept[lid] {
			dropped = append(dropped, lid)
		}
	}
	lRows.Close()
	if err := lRows.Err(); err != nil {
		return err
	}
	for _, lid := range dropped {
		if _, err := tx.ExecContext(ctx, `DELETE FROM quiz_questions WHERE lesson_id=$1`, lid); err != nil {
			return err
		}
	}

	if _, err := tx.ExecContext(ctx, `
		DELETE FROM lessons WHERE chapter_id IN (SELECT id FROM chapters WHERE course_id=$1)`, c.ID); err != nil {
		return err
	}
	if _, err := tx.ExecContext(ctx, `DELETE FROM chapters WHERE course_id=$1`, c.ID); err != nil {
		return err
	}

	for _, ch := range c.Chapters {
		if _, err := tx.ExecContext(ctx,
			`INSERT INTO chapters (id,course_id,title,order_index) VALUES ($1,$2,$3,$4)`,
			ch.ID, c.ID, ch.Title, ch.OrderIndex); err != nil {
			return err
		}
		for _, l := range ch.Lessons {
			if _, err := tx.ExecContext(ctx, `
				INSERT INTO lessons (id,chapter_id,title,content_type,order_index,duration_min,is_mandatory,content_url,file_url)
				VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9)`,
				l.ID, ch.ID, l.Title, string(l.ContentType), l.OrderIndex,
				l.DurationMin, l.IsMandatory, l.ContentURL, l.FileURL); err != nil {
				return err
			}
		}
	}
	return tx.Commit()
}

func (s *SQLStore) GetQuizQuestions(ctx context.Context, lessonID string, studentSafe bool) ([]QuizQuestion, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id,lesson_id,prompt,options_json,correct_answer,points,explanation,order_index
		  FROM quiz_questions WHERE lesson_id=$1 ORDER BY order_index`, lessonID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	out := []QuizQuestion{}
	for rows.Next() {
		var q QuizQuestion
		var oj string
		if err := rows.Scan(&q.ID, &q.LessonID, &q.Prompt, &oj, &q.CorrectAnswer,
			&q.Points, &q.Explanation, &q.OrderIndex); err != nil {
			return nil, err
		}
		if err := json.Unmarshal([]byte(oj), &q.Options); err != nil {
			return nil, err
		}
		if studentSafe {
			q.CorrectAnswer = ""
			q.Explanation = ""
		}
		out = append(out, q)
	}
	return out, rows.Err()
}

func (s *SQLStore) SaveQuizQuestions(ctx context.Context, lessonID string, qs []QuizQuestion) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()
	if _, err := tx.ExecContext(ctx, `DELETE FROM quiz_questions WHERE lesson_id=$1`, lessonID); err != nil {
		return err
	}
	for i, q := range qs {
		oj, err := json.Marshal(q.Options)
		if err != nil {
			return err
		}
		if _, err := tx.ExecContext(ctx, `
			INSERT INTO quiz_questions (id,lesson_id,prompt,options_json,correct_answer,points,explanation,order_index)
			VALUES ($1,$2,$3,$4,$5,$6,$7,$8)`,
			q.ID, lessonID, q.Prompt, string(oj), q.CorrectAnswer, q.Points, q.Explanation, i); err != nil {
			return err
		}
	}
	return tx.Commit()
}

func (s *SQLStore) GetCapstone(ctx context.Context, courseID string) (CapstoneProject, error) {
	var p CapstoneProject
	var rj string
	var due sql.NullInt64
	row := s.db.QueryRowContext(ctx,
		`SELECT id,course_id,title,requirements_json,due_at FROM capstone_projects WHERE course_id=$1`, courseID)
	if err := row.Scan(&p.ID, &p.CourseID, &p.Title, &rj, &due); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return CapstoneProject{}, ErrCapstoneNotFound
		}
		return CapstoneProject{}, err
	}
	if err := json.Unmarshal([]byte(rj), &p.Requirements); err != nil {
		return CapstoneProject{}, err
	}
	if due.Valid {
		t := time.Unix(due.Int64, 0).UTC()
		p.DueAt = &t
	}
	return p, nil
}

func (s *SQLStore) SaveCapstone(ctx context.Context, p CapstoneProject) error {
	rj, err := json.Marshal(p.Requirements)
	if err != nil {
		return err
	}
	var due *int64
	if p.DueAt != nil {
		v := p.DueAt.Unix()
		due = &v
	}
	_, err = s.db.ExecContext(ctx, `
		INSERT INTO capstone_projects (id,course_id,title,requirements_json,due_at)
		VALUES ($1,$2,$3,$4,$5)
		ON CONFLICT (course_id) DO UPDATE SET title=EXCLUDED.title,
		  requirements_json=EXCLUDED.requirements_json, due_at=EXCLUDED.due_at`,
		p.ID, p.CourseID, p.Title, string(rj), due)
	return err
}

func (s *SQLStore) DeleteCapstone(ctx context.Context, courseID string) error {
	_, err := s.db.ExecContext(ctx, `DELETE FROM capstone_projects WHERE course_id=$1`, courseID)
	return err
}
