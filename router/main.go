package router

import (
	"log"
	"time"

	"github.com/gofiber/fiber/v2"

	"thesistrack/backend/config"
	"thesistrack/backend/database"
	"thesistrack/backend/handlers"
	attachment_handlers "thesistrack/backend/handlers/attachment"
	auth_handlers "thesistrack/backend/handlers/auth"
	comment_handlers "thesistrack/backend/handlers/comment"
	committee_handlers "thesistrack/backend/handlers/committee"
	deadline_handlers "thesistrack/backend/handlers/deadline"
	event_handlers "thesistrack/backend/handlers/event"
	request_handlers "thesistrack/backend/handlers/request"
	review_handlers "thesistrack/backend/handlers/review"
	thesis_handlers "thesistrack/backend/handlers/thesis"
	user_handlers "thesistrack/backend/handlers/user"
	"thesistrack/backend/model"
	"thesistrack/backend/services"
	"thesistrack/backend/utils/auth"
	"thesistrack/backend/utils/cache"
	"thesistrack/backend/utils/middleware"
)

// SetupRoutes wires all handlers into the fiber app
func SetupRoutes(app *fiber.App, store *database.GORMStore, env *config.EnvironmentVariable) {
	if env.JWT_SECRET == "" {
		log.Fatal("JWT_SECRET environment variable is not set")
	}

	jwtIssuer := env.JWT_ISSUER
	if jwtIssuer == "" {
		jwtIssuer = "thesistrack-api"
	}

	jwtManager := auth.NewJWTManager(auth.JWTConfig{
		Secret:        env.JWT_SECRET,
		Expiry:        24 * time.Hour,
		RefreshExpiry: 7 * 24 * time.Hour,
		Issuer:        jwtIssuer,
	})

	db := store.DB()

	// Redis is optional; without it login rate limiting is disabled
	redisURL := env.REDIS_URL
	if redisURL == "" {
		redisURL = "redis://localhost:6379/0"
	}

	var bruteForceProtection *middleware.BruteForceProtection
	redisCache, err := cache.NewRedisCache(redisURL)
	if err != nil {
		log.Printf("Warning: Failed to connect to Redis: %v. Brute force protection will be disabled.", err)
	} else {
		bruteForceProtection = middleware.NewBruteForceProtection(redisCache)
	}

	googleVerifier := auth.NewGoogleVerifier(env.GOOGLE_CLIENT_ID)
	files := services.NewFileStore(env.UPLOAD_DIR)

	authMiddleware := middleware.NewAuthMiddleware(jwtManager, db)

	authHandler := auth_handlers.NewAuthHandler(db, jwtManager, googleVerifier, bruteForceProtection)
	userHandler := user_handlers.NewUserHandler(db, files)
	thesisHandler := thesis_handlers.NewThesisHandler(db, files)
	commentHandler := comment_handlers.NewCommentHandler(db)
	committeeHandler := committee_handlers.NewCommitteeHandler(db)
	attachmentHandler := attachment_handlers.NewAttachmentHandler(db, files)
	reviewHandler := review_handlers.NewReviewHandler(db)
	requestHandler := request_handlers.NewRequestHandler(db)
	deadlineHandler := deadline_handlers.NewDeadlineHandler(db)
	eventHandler := event_handlers.NewEventHandler(db)

	// Health check
	app.Get("/health", func(c *fiber.Ctx) error {
		return handlers.HandleCheckHealth(c, store)
	})

	v1 := app.Group("/api/v1")

	// Auth routes
	authGroup := v1.Group("/auth")
	if bruteForceProtection != nil {
		authGroup.Post("/login", bruteForceProtection.CheckAttempt(), authHandler.Login)
	} else {
		authGroup.Post("/login", authHandler.Login)
	}
	authGroup.Post("/register", authHandler.Register)
	authGroup.Post("/google", authHandler.GoogleLogin)
	authGroup.Post("/refresh", authHandler.Refresh)

	// User routes
	users := v1.Group("/users", authMiddleware.Required())
	users.Get("/", userHandler.List)
	users.Get("/me", userHandler.GetMe)
	users.Put("/me", userHandler.UpdateMe)
	users.Put("/me/profile-picture", userHandler.UploadProfilePicture)
	users.Get("/:id", userHandler.GetByID)
	users.Get("/:id/profile-picture", userHandler.GetProfilePicture)

	// Thesis routes
	theses := v1.Group("/theses", authMiddleware.Required())
	theses.Get("/", thesisHandler.List)
	theses.Post("/", thesisHandler.Create)
	theses.Get("/:id", thesisHandler.Get)
	theses.Put("/:id", thesisHandler.Update)
	theses.Delete("/:id", thesisHandler.Delete)
	theses.Put("/:id/document", thesisHandler.UploadDocument)
	theses.Get("/:id/document", thesisHandler.DownloadDocument)

	// Nested thesis resources
	theses.Get("/:thesis_id/comments", commentHandler.List)
	theses.Post("/:thesis_id/comments", commentHandler.Create)

	theses.Get("/:thesis_id/committee", committeeHandler.List)
	theses.Post("/:thesis_id/committee", committeeHandler.Add)

	theses.Get("/:thesis_id/attachments", attachmentHandler.List)
	theses.Post("/:thesis_id/attachments", attachmentHandler.Upload)
	theses.Get("/:thesis_id/attachments/:id", attachmentHandler.Get)
	theses.Put("/:thesis_id/attachments/:id", attachmentHandler.Replace)
	theses.Delete("/:thesis_id/attachments/:id", attachmentHandler.Delete)
	theses.Get("/:thesis_id/attachments/:id/download", attachmentHandler.Download)
	theses.Get("/:thesis_id/attachments/:id/preview", attachmentHandler.Preview)

	theses.Get("/:thesis_id/reviews", reviewHandler.List)
	theses.Post("/:thesis_id/reviews", reviewHandler.Create)

	// Comment and committee member routes addressed by their own ID
	comments := v1.Group("/comments", authMiddleware.Required())
	comments.Put("/:id", commentHandler.Update)
	comments.Delete("/:id", commentHandler.Delete)

	committee := v1.Group("/committee", authMiddleware.Required())
	committee.Put("/:id", committeeHandler.Update)
	committee.Delete("/:id", committeeHandler.Remove)

	// Assistant request workflow
	requests := v1.Group("/assistant/requests", authMiddleware.Required())
	requests.Get("/", requestHandler.List)
	requests.Post("/", requestHandler.Create)
	requests.Get("/:id", requestHandler.Get)
	requests.Put("/:id", requestHandler.Respond)
	requests.Delete("/:id", requestHandler.Cancel)

	// Deadlines
	deadlines := v1.Group("/deadlines", authMiddleware.Required())
	deadlines.Get("/", deadlineHandler.List)
	deadlines.Post("/", authMiddleware.RequireRole(model.RoleProfessor, model.RoleGraduationAssistant), deadlineHandler.Create)
	deadlines.Get("/upcoming", deadlineHandler.Upcoming)
	deadlines.Get("/:id", deadlineHandler.Get)
	deadlines.Put("/:id", authMiddleware.RequireRole(model.RoleProfessor, model.RoleGraduationAssistant), deadlineHandler.Update)
	deadlines.Delete("/:id", authMiddleware.RequireRole(model.RoleProfessor, model.RoleGraduationAssistant), deadlineHandler.Delete)

	// Events
	events := v1.Group("/events", authMiddleware.Required())
	events.Get("/", eventHandler.List)
	events.Post("/", eventHandler.Create)
	events.Get("/:id", eventHandler.Get)
	events.Put("/:id", eventHandler.Update)
	events.Delete("/:id", eventHandler.Delete)
}
