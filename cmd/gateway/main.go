package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"time"

	api "github.com/coursekit/coursekit-lms/internal/api/http"
	auth "github.com/coursekit/coursekit-lms/internal/auth/middleware"
	"github.com/coursekit/coursekit-lms/internal/config"
	"github.com/coursekit/coursekit-lms/internal/curriculum"
	"github.com/coursekit/coursekit-lms/internal/db"
	"github.com/coursekit/coursekit-lms/internal/dispatch"
	"github.com/coursekit/coursekit-lms/internal/grade"
	"github.com/coursekit/coursekit-lms/internal/ledger"
	"github.com/coursekit/coursekit-lms/internal/quiz"
	rbac "github.com/coursekit/coursekit-lms/internal/rbac"
	syncx "github.com/coursekit/coursekit-lms/internal/sync"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
)

func main() {
	cfg := config.FromEnv()

	// --- DB ---
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	dbh, err := db.Open(ctx, db.Driver(cfg.DBDriver), cfg.DBDSN)
	if err != nil {
		log.Fatalf("db open failed: %v", err)
	}
	curr := curriculum.NewSQLStore(dbh, cfg.DBDriver)
	led := ledger.NewSQLStore(dbh, cfg.DBDriver)
	events := syncx.NewEventRepo(dbh)

	quizSvc := quiz.NewService(curr, led, cfg.PassThreshold)
	dispatchSvc := dispatch.NewService(led, events)

	policy := grade.AttemptPolicy(cfg.AttemptPolicy)
	if !policy.Valid() {
		log.Printf("unknown ATTEMPT_POLICY %q, using latest", cfg.AttemptPolicy)
		policy = grade.PolicyLatest
	}
	weights := grade.Weights{Quiz: cfg.QuizWeight, Capstone: cfg.CapstoneWeight}

	// --- Auth (local JWT for offline/dev) ---
	secret := getenvOr("AUTH_HMAC_SECRET", "supersecret-dev-key")
	authSvc := auth.NewAuthService(secret)

	// --- Router ---
	r := chi.NewRouter()
	r.Use(middleware.RequestID, middleware.RealIP, middleware.Logger, middleware.Recoverer)
	r.Use(middleware.Timeout(30 * time.Second))

	origins := cfg.CORSOriginsOffline
	if cfg.Mode == config.ModeOnline {
		origins = cfg.CORSOriginsOnline
	}
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   origins,
		AllowedMethods:   []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Authorization", "Content-Type"},
		ExposedHeaders:   []string{"Content-Length"},
		AllowCredentials: true,
		MaxAge:           300,
	}))

	if cfg.EnableLocalAuth {
		r.Post("/auth/login", auth.LoginHandler(authSvc, dbh, cfg.AdminUser, cfg.AdminPassHash))
	}

	// Protected API (JWT → role in context → RBAC)
	r.Group(func(pr chi.Router) {
		pr.Use(auth.JWTMiddleware(authSvc))
		pr.Use(auth.AttachRoleFromDB(dbh, cfg.Mode == config.ModeOffline))

		// Course authoring (teacher)
		pr.With(rbac.Require("course:create")).
			Post("/courses", api.CreateCourseHandler(curr, dbh))
		pr.With(rbac.Require("course:view")).
			Get("/courses", api.ListCoursesHandler(curr))
		pr.With(rbac.Require("course:view")).
			Get("/courses/{courseID}/curriculum", api.GetCurriculumHandler(curr, dbh))
		pr.With(rbac.Require("course:edit")).
			Put("/courses/{courseID}/curriculum", api.SaveCurriculumHandler(curr, dbh))
		pr.With(rbac.Require("course:enroll")).
			Post("/courses/{courseID}/students", api.EnrollStudentsHandler(dbh))

		// Lesson flow (student)
		pr.With(rbac.Require("lesson:open")).
			Post("/courses/{courseID}/lessons/{lessonID}/open", api.OpenLessonHandler(curr, dispatchSvc))
		pr.With(rbac.Require("lesson:complete")).
			Post("/courses/{courseID}/lessons/{lessonID}/complete", api.MarkLessonCompleteHandler(curr, dispatchSvc))

		// Quiz flow
		pr.With(rbac.Require("quiz:view")).
			Get("/lessons/{lessonID}/quiz", api.GetQuizHandler(curr))
		pr.With(rbac.Require("quiz:edit")).
			Put("/lessons/{lessonID}/quiz", api.SaveQuizHandler(curr))
		pr.With(rbac.Require("quiz:submit")).
			Post("/courses/{courseID}/lessons/{lessonID}/quiz/submit", api.SubmitQuizHandler(curr, quizSvc, events))
		pr.With(rbac.RequireAny("attempt:view-all", "quiz:submit")).
			Get("/attempts", api.ListAttemptsHandler(led))

		// Progress and grades
		pr.With(rbac.RequireAny("progress:view-own", "progress:view-all")).
			Get("/courses/{courseID}/progress", api.GetProgressHandler(curr, led, dbh))
		pr.With(rbac.RequireAny("grade:view-own", "grade:view-all")).
			Get("/courses/{courseID}/grade", api.GetGradeHandler(curr, led, dbh, policy, weights))

		// Capstone
		pr.With(rbac.Require("capstone:view")).
			Get("/courses/{courseID}/capstone", api.GetCapstoneHandler(curr))
		pr.With(rbac.Require("capstone:edit")).
			Put("/courses/{courseID}/capstone", api.SaveCapstoneHandler(curr, dbh))
		pr.With(rbac.Require("capstone:edit")).
			Delete("/courses/{courseID}/capstone", api.DeleteCapstoneHandler(curr, dbh))
		pr.With(rbac.Require("capstone:submit")).
			Post("/courses/{courseID}/capstone/submission", api.SubmitCapstoneHandler(curr, led))
		pr.With(rbac.RequireAny("capstone:view", "capstone:grade")).
			Get("/courses/{courseID}/capstone/submission", api.GetCapstoneSubmissionHandler(curr, led))
		pr.With(rbac.Require("capstone:grade")).
			Post("/capstone/submissions/{submissionID}/grade", api.GradeCapstoneHandler(led, events))

		// audit feed, admin only
		pr.With(rbac.Require("event:view")).
			Get("/events", api.ListEventsHandler(events))
	})

	r.Get("/healthz", func(w http.ResponseWriter, r *http.Request) { w.WriteHeader(200) })
	r.Get("/readyz", func(w http.ResponseWriter, r *http.Request) { w.WriteHeader(200) })

	log.Printf("listening on %s (mode=%s, db=%s, pass_threshold=%.2f, attempt_policy=%s)",
		cfg.HTTPAddr, cfg.Mode, cfg.DBDriver, cfg.PassThreshold, policy)
	log.Fatal(http.ListenAndServe(cfg.HTTPAddr, r))
}

func getenvOr(k, def string) string {
	if v := os.Getenv(k); v != "" {
		return v
	}
	return def
}
