package handlers

import (
	"github.com/gin-gonic/gin"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"

	"github.com/muhammadnoorulainroy/photo-pets-annotation-tool/internal/config"
	"github.com/muhammadnoorulainroy/photo-pets-annotation-tool/internal/middleware"
	"github.com/muhammadnoorulainroy/photo-pets-annotation-tool/internal/models"
	"github.com/muhammadnoorulainroy/photo-pets-annotation-tool/internal/repository"
	"github.com/muhammadnoorulainroy/photo-pets-annotation-tool/internal/service"
	"github.com/muhammadnoorulainroy/photo-pets-annotation-tool/internal/storage"
)

type HandlerSet struct {
	log   zerolog.Logger
	cfg   *config.AppConfig
	db    *pgxpool.Pool
	cache *redis.Client

	users      *repository.UserRepository
	categories *repository.CategoryRepository
	images     *repository.ImageRepository

	authService        *service.AuthService
	userService        *service.UserService
	annotationService  *service.AnnotationService
	queueService       *service.QueueService
	completionService  *service.CompletionService
	editRequestService *service.EditRequestService
	reviewService      *service.ReviewService
	importService      *service.ImportService
}

func NewHandlerSet(log zerolog.Logger, db *pgxpool.Pool, cache *redis.Client, store *storage.ObjectStore, cfg *config.AppConfig) HandlerSet {
	userRepo := repository.NewUserRepository(db)
	categoryRepo := repository.NewCategoryRepository(db)
	imageRepo := repository.NewImageRepository(db)
	annotationRepo := repository.NewAnnotationRepository(db)
	editRequestRepo := repository.NewEditRequestRepository(db)

	return HandlerSet{
		log:        log,
		cfg:        cfg,
		db:         db,
		cache:      cache,
		users:      userRepo,
		categories: categoryRepo,
		images:     imageRepo,

		authService:        service.NewAuthService(userRepo, cache, cfg, log),
		userService:        service.NewUserService(userRepo, categoryRepo, log),
		annotationService:  service.NewAnnotationService(annotationRepo, imageRepo, userRepo, editRequestRepo, log),
		queueService:       service.NewQueueService(imageRepo, annotationRepo, userRepo, categoryRepo, editRequestRepo, log),
		completionService:  service.NewCompletionService(imageRepo, annotationRepo, userRepo, categoryRepo),
		editRequestService: service.NewEditRequestService(editRequestRepo, annotationRepo, imageRepo, userRepo, log),
		reviewService:      service.NewReviewService(annotationRepo, imageRepo, userRepo, categoryRepo, log),
		importService:      service.NewImportService(imageRepo, store, log),
	}
}

func (h HandlerSet) Register(router *gin.RouterGroup) {
	router.GET("/healthz", h.Health)

	v1 := router.Group("/v1")

	auth := v1.Group("/auth")
	auth.POST("/login", h.Login)

	authed := v1.Group("/auth")
	authed.Use(middleware.Auth(h.cfg, h.users, h.cache, h.log))
	authed.POST("/logout", h.Logout)
	authed.GET("/me", h.Me)

	annotator := v1.Group("/annotator")
	annotator.Use(
		middleware.Auth(h.cfg, h.users, h.cache, h.log),
		middleware.RequireRoles(models.UserRoleAnnotator),
	)
	annotator.GET("/categories", h.AnnotatorCategories)
	annotator.GET("/categories/:categoryId/queue-size", h.QueueSize)
	annotator.GET("/categories/:categoryId/resume-index", h.ResumeIndex)
	annotator.GET("/categories/:categoryId/task/:index", h.Task)
	annotator.PUT("/categories/:categoryId/images/:imageId/annotate", h.SaveAnnotation)
	annotator.POST("/images/:imageId/improper", h.MarkImproper)
	annotator.POST("/images/:imageId/edit-request", h.RequestEdit)
	annotator.GET("/images/:imageId", h.ImageDetail)

	admin := v1.Group("/admin")
	admin.Use(
		middleware.Auth(h.cfg, h.users, h.cache, h.log),
		middleware.RequireRoles(models.UserRoleAdmin),
	)
	admin.GET("/users", h.AdminListUsers)
	admin.POST("/users", h.AdminCreateUser)
	admin.PUT("/users/:userId", h.AdminUpdateUser)
	admin.PUT("/users/:userId/categories", h.AdminAssignCategories)
	admin.GET("/categories", h.AdminListCategories)
	admin.GET("/images", h.AdminListImages)
	admin.POST("/images", h.AdminImportImage)
	admin.PUT("/images/:imageId/restore", h.AdminRestoreImage)
	admin.GET("/progress", h.AdminProgress)
	admin.GET("/completion", h.AdminCompletion)
	admin.GET("/completion/:imageId", h.AdminImageCompletion)
	admin.GET("/edit-requests", h.AdminListEditRequests)
	admin.PUT("/edit-requests/:requestId", h.AdminResolveEditRequest)
	admin.GET("/review", h.ReviewList)
	admin.GET("/review/stats", h.ReviewStats)
	admin.PUT("/review/:annotationId/approve", h.ReviewApprove)
	admin.PUT("/review/:annotationId/update", h.ReviewUpdate)
	admin.POST("/review/bulk-approve", h.ReviewBulkApprove)
}
