package handlers

import (
	"errors"
	"io"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/muhammadnoorulainroy/photo-pets-annotation-tool/internal/models"
	"github.com/muhammadnoorulainroy/photo-pets-annotation-tool/internal/repository"
	"github.com/muhammadnoorulainroy/photo-pets-annotation-tool/internal/service"
)

func (h HandlerSet) AdminListUsers(c *gin.Context) {
	users, err := h.users.List(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}

	items := make([]gin.H, 0, len(users))
	for _, user := range users {
		categoryIDs, err := h.users.AssignedCategoryIDs(c.Request.Context(), user.ID)
		if err != nil {
			respondError(c, err)
			return
		}
		items = append(items, gin.H{
			"user":                toUserResponse(user),
			"assignedCategoryIds": categoryIDs,
		})
	}
	c.JSON(http.StatusOK, gin.H{"users": items})
}

type createUserRequest struct {
	Username string `json:"username" binding:"required"`
	Password string `json:"password" binding:"required"`
	FullName string `json:"fullName"`
	Role     string `json:"role" binding:"required"`
}

func (h HandlerSet) AdminCreateUser(c *gin.Context) {
	var req createUserRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "username, password and role are required"})
		return
	}

	user, err := h.userService.Create(c.Request.Context(), service.CreateUserInput{
		Username: req.Username,
		Password: req.Password,
		FullName: req.FullName,
		Role:     models.UserRole(req.Role),
	})
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, toUserResponse(user))
}

type updateUserRequest struct {
	FullName *string `json:"fullName"`
	IsActive *bool   `json:"isActive"`
	Password *string `json:"password"`
}

func (h HandlerSet) AdminUpdateUser(c *gin.Context) {
	var req updateUserRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}

	user, err := h.userService.Update(c.Request.Context(), c.Param("userId"), service.UpdateUserInput{
		FullName: req.FullName,
		IsActive: req.IsActive,
		Password: req.Password,
	})
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, toUserResponse(user))
}

type assignCategoriesRequest struct {
	CategoryIDs []string `json:"categoryIds"`
}

func (h HandlerSet) AdminAssignCategories(c *gin.Context) {
	var req assignCategoriesRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}

	if err := h.userService.AssignCategories(c.Request.Context(), c.Param("userId"), req.CategoryIDs); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "assignments updated"})
}

func (h HandlerSet) AdminListCategories(c *gin.Context) {
	categories, err := h.categories.List(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}

	items := make([]gin.H, 0, len(categories))
	for _, category := range categories {
		options, err := h.categories.Options(c.Request.Context(), category.ID)
		if err != nil {
			respondError(c, err)
			return
		}
		items = append(items, gin.H{
			"id":           category.ID,
			"name":         category.Name,
			"displayOrder": category.DisplayOrder,
			"options":      toOptionResponses(options),
		})
	}
	c.JSON(http.StatusOK, gin.H{"categories": items})
}

func (h HandlerSet) AdminListImages(c *gin.Context) {
	images, err := h.images.List(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}

	items := make([]imageResponse, 0, len(images))
	for _, img := range images {
		items = append(items, toImageResponse(img))
	}
	c.JSON(http.StatusOK, gin.H{"images": items})
}

const maxImportSize = 32 << 20

func (h HandlerSet) AdminImportImage(c *gin.Context) {
	fileHeader, err := c.FormFile("file")
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "file is required"})
		return
	}
	if fileHeader.Size > maxImportSize {
		c.JSON(http.StatusBadRequest, gin.H{"error": "file exceeds the 32MB limit"})
		return
	}

	file, err := fileHeader.Open()
	if err != nil {
		respondError(c, err)
		return
	}
	defer file.Close()

	data, err := io.ReadAll(file)
	if err != nil {
		respondError(c, err)
		return
	}

	image, err := h.importService.Import(c.Request.Context(), fileHeader.Filename, fileHeader.Header.Get("Content-Type"), data)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, toImageResponse(image))
}

func (h HandlerSet) AdminRestoreImage(c *gin.Context) {
	imageID := c.Param("imageId")

	if _, err := h.images.GetByID(c.Request.Context(), imageID); err != nil {
		if errors.Is(err, repository.ErrImageNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "image not found"})
			return
		}
		respondError(c, err)
		return
	}

	if err := h.images.ClearImproper(c.Request.Context(), imageID); err != nil {
		respondError(c, err)
		return
	}

	image, err := h.images.GetByID(c.Request.Context(), imageID)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, toImageResponse(image))
}

func (h HandlerSet) AdminProgress(c *gin.Context) {
	rows, err := h.completionService.Progress(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}

	items := make([]gin.H, 0, len(rows))
	for _, row := range rows {
		items = append(items, gin.H{
			"categoryId":        row.CategoryID,
			"categoryName":      row.CategoryName,
			"annotatorId":       row.AnnotatorID,
			"annotatorUsername": row.AnnotatorUsername,
			"totalImages":       row.TotalImages,
			"completed":         row.Completed,
			"skipped":           row.Skipped,
			"inProgress":        row.InProgress,
			"pending":           row.Pending,
		})
	}
	c.JSON(http.StatusOK, gin.H{"progress": items})
}

func (h HandlerSet) AdminCompletion(c *gin.Context) {
	completions, err := h.completionService.AllImages(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}

	items := make([]gin.H, 0, len(completions))
	for _, completion := range completions {
		items = append(items, toCompletionPayload(completion))
	}
	c.JSON(http.StatusOK, gin.H{"images": items})
}

func (h HandlerSet) AdminImageCompletion(c *gin.Context) {
	completion, err := h.completionService.ImageCompletion(c.Request.Context(), c.Param("imageId"))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, toCompletionPayload(completion))
}

func toCompletionPayload(completion service.ImageCompletion) gin.H {
	categories := make([]gin.H, 0, len(completion.Categories))
	for _, cc := range completion.Categories {
		categories = append(categories, gin.H{
			"id":                cc.Category.ID,
			"name":              cc.Category.Name,
			"status":            cc.Status,
			"annotatorId":       cc.AnnotatorID,
			"annotatorUsername": cc.AnnotatorUsername,
		})
	}
	return gin.H{
		"image":               toImageResponse(completion.Image),
		"totalCategories":     completion.TotalCategories,
		"completedCategories": completion.CompletedCategories,
		"isFullyComplete":     completion.IsFullyComplete,
		"categories":          categories,
	}
}

func (h HandlerSet) AdminListEditRequests(c *gin.Context) {
	var status *models.EditRequestStatus
	if raw := c.Query("status"); raw != "" {
		value := models.EditRequestStatus(raw)
		switch value {
		case models.EditRequestStatusPending, models.EditRequestStatusApproved, models.EditRequestStatusDenied:
			status = &value
		default:
			c.JSON(http.StatusBadRequest, gin.H{"error": "unknown status filter"})
			return
		}
	}

	details, err := h.editRequestService.List(c.Request.Context(), status)
	if err != nil {
		respondError(c, err)
		return
	}

	items := make([]gin.H, 0, len(details))
	for _, detail := range details {
		items = append(items, gin.H{
			"request":           toEditRequestResponse(detail.Request),
			"annotatorUsername": detail.AnnotatorUsername,
			"imageFilename":     detail.ImageFilename,
			"imageUrl":          detail.ImageURL,
		})
	}
	c.JSON(http.StatusOK, gin.H{"editRequests": items})
}

type resolveEditRequestRequest struct {
	Approve *bool `json:"approve" binding:"required"`
}

func (h HandlerSet) AdminResolveEditRequest(c *gin.Context) {
	user, ok := currentUser(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "not authenticated"})
		return
	}

	var req resolveEditRequestRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "approve is required"})
		return
	}

	resolved, err := h.editRequestService.Resolve(c.Request.Context(), c.Param("requestId"), user.ID, *req.Approve)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, toEditRequestResponse(resolved))
}
