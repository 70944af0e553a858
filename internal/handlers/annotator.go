package handlers

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/muhammadnoorulainroy/photo-pets-annotation-tool/internal/models"
	"github.com/muhammadnoorulainroy/photo-pets-annotation-tool/internal/service"
)

func (h HandlerSet) AnnotatorCategories(c *gin.Context) {
	user, ok := currentUser(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "not authenticated"})
		return
	}

	progress, err := h.queueService.Categories(c.Request.Context(), user.ID)
	if err != nil {
		respondError(c, err)
		return
	}

	items := make([]gin.H, 0, len(progress))
	for _, p := range progress {
		items = append(items, gin.H{
			"id":              p.Category.ID,
			"name":            p.Category.Name,
			"displayOrder":    p.Category.DisplayOrder,
			"totalImages":     p.TotalImages,
			"completedImages": p.CompletedImages,
			"skippedImages":   p.SkippedImages,
			"queueSize":       p.QueueSize,
		})
	}
	c.JSON(http.StatusOK, gin.H{"categories": items})
}

func (h HandlerSet) QueueSize(c *gin.Context) {
	user, ok := currentUser(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "not authenticated"})
		return
	}

	size, err := h.queueService.QueueSize(c.Request.Context(), c.Param("categoryId"), user.ID)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"queueSize": size})
}

func (h HandlerSet) ResumeIndex(c *gin.Context) {
	user, ok := currentUser(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "not authenticated"})
		return
	}

	result, err := h.queueService.ResumeIndex(c.Request.Context(), c.Param("categoryId"), user.ID)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"resumeIndex": result.Index,
		"queueSize":   result.QueueSize,
		"done":        result.Done,
	})
}

func (h HandlerSet) Task(c *gin.Context) {
	user, ok := currentUser(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "not authenticated"})
		return
	}

	index, err := strconv.Atoi(c.Param("index"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "index must be an integer"})
		return
	}

	task, err := h.queueService.TaskAt(c.Request.Context(), c.Param("categoryId"), user.ID, index)
	if err != nil {
		respondError(c, err)
		return
	}

	resp := gin.H{
		"image": toImageResponse(task.Image),
		"category": gin.H{
			"id":   task.Category.ID,
			"name": task.Category.Name,
		},
		"options":     toOptionResponses(task.Options),
		"completedBy": task.CompletedBy,
		"index":       task.Index,
		"totalImages": task.TotalImages,
		"queueSize":   task.QueueSize,
	}
	if task.Current != nil {
		resp["annotation"] = toAnnotationResponse(*task.Current)
	}
	c.JSON(http.StatusOK, resp)
}

type saveAnnotationRequest struct {
	SelectedOptionIDs []string `json:"selectedOptionIds"`
	IsDuplicate       *bool    `json:"isDuplicate"`
	Status            string   `json:"status" binding:"required"`
	TimeSpentSeconds  int      `json:"timeSpentSeconds"`
}

func (h HandlerSet) SaveAnnotation(c *gin.Context) {
	user, ok := currentUser(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "not authenticated"})
		return
	}

	var req saveAnnotationRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}

	saved, err := h.annotationService.Save(c.Request.Context(), service.SaveInput{
		ImageID:           c.Param("imageId"),
		CategoryID:        c.Param("categoryId"),
		AnnotatorID:       user.ID,
		SelectedOptionIDs: req.SelectedOptionIDs,
		IsDuplicate:       req.IsDuplicate,
		Status:            models.AnnotationStatus(req.Status),
		TimeSpentSeconds:  req.TimeSpentSeconds,
	})
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, toAnnotationResponse(saved))
}

type reasonRequest struct {
	Reason string `json:"reason"`
}

func (h HandlerSet) MarkImproper(c *gin.Context) {
	user, ok := currentUser(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "not authenticated"})
		return
	}

	var req reasonRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}

	image, err := h.annotationService.MarkImproper(c.Request.Context(), c.Param("imageId"), user.ID, req.Reason)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, toImageResponse(image))
}

func (h HandlerSet) RequestEdit(c *gin.Context) {
	user, ok := currentUser(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "not authenticated"})
		return
	}

	var req reasonRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}

	created, err := h.editRequestService.Request(c.Request.Context(), c.Param("imageId"), user.ID, req.Reason)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, toEditRequestResponse(created))
}

func (h HandlerSet) ImageDetail(c *gin.Context) {
	user, ok := currentUser(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "not authenticated"})
		return
	}

	detail, err := h.queueService.ImageDetail(c.Request.Context(), c.Param("imageId"), user.ID)
	if err != nil {
		respondError(c, err)
		return
	}

	categories := make([]gin.H, 0, len(detail.Categories))
	for _, dc := range detail.Categories {
		item := gin.H{
			"id":               dc.Category.ID,
			"name":             dc.Category.Name,
			"completedByOther": dc.CompletedByOther,
			"completedBy":      dc.CompletedBy,
		}
		if dc.Own != nil {
			item["annotation"] = toAnnotationResponse(*dc.Own)
		}
		categories = append(categories, item)
	}

	c.JSON(http.StatusOK, gin.H{
		"image":         toImageResponse(detail.Image),
		"categories":    categories,
		"lockState":     string(detail.LockState),
		"overallStatus": detail.OverallStatus,
		"prevImageId":   detail.PrevImageID,
		"nextImageId":   detail.NextImageID,
	})
}
