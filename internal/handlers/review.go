package handlers

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/muhammadnoorulainroy/photo-pets-annotation-tool/internal/service"
)

func (h HandlerSet) ReviewList(c *gin.Context) {
	var filter service.ReviewFilter
	if raw := c.Query("categoryId"); raw != "" {
		filter.CategoryID = &raw
	}
	if raw := c.Query("annotatorId"); raw != "" {
		filter.AnnotatorID = &raw
	}
	if raw := c.Query("reviewStatus"); raw != "" {
		if raw != "pending" && raw != "approved" {
			c.JSON(http.StatusBadRequest, gin.H{"error": "reviewStatus must be pending or approved"})
			return
		}
		filter.ReviewStatus = &raw
	}
	filter.Page, _ = strconv.Atoi(c.DefaultQuery("page", "1"))
	filter.PageSize, _ = strconv.Atoi(c.DefaultQuery("pageSize", "50"))

	items, err := h.reviewService.List(c.Request.Context(), filter)
	if err != nil {
		respondError(c, err)
		return
	}

	payload := make([]gin.H, 0, len(items))
	for _, item := range items {
		payload = append(payload, gin.H{
			"annotation":         toAnnotationResponse(item.Annotation),
			"imageUrl":           item.ImageURL,
			"imageFilename":      item.ImageFilename,
			"annotatorUsername":  item.AnnotatorUsername,
			"categoryName":       item.CategoryName,
			"selectedOptions":    toOptionResponses(item.SelectedOptions),
			"allOptions":         toOptionResponses(item.AllOptions),
			"reviewedByUsername": item.ReviewedByUsername,
		})
	}
	c.JSON(http.StatusOK, gin.H{"items": payload})
}

func (h HandlerSet) ReviewStats(c *gin.Context) {
	stats, err := h.reviewService.Stats(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"totalCompleted": stats.TotalCompleted,
		"pendingReview":  stats.PendingReview,
		"approved":       stats.Approved,
	})
}

type approveRequest struct {
	Note *string `json:"note"`
}

func (h HandlerSet) ReviewApprove(c *gin.Context) {
	user, ok := currentUser(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "not authenticated"})
		return
	}

	var req approveRequest
	if err := c.ShouldBindJSON(&req); err != nil && c.Request.ContentLength > 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}

	approved, err := h.reviewService.Approve(c.Request.Context(), c.Param("annotationId"), user.ID, req.Note)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, toAnnotationResponse(approved))
}

type reviewUpdateRequest struct {
	SelectedOptionIDs []string `json:"selectedOptionIds" binding:"required"`
	IsDuplicate       *bool    `json:"isDuplicate"`
	Note              *string  `json:"note"`
}

func (h HandlerSet) ReviewUpdate(c *gin.Context) {
	user, ok := currentUser(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "not authenticated"})
		return
	}

	var req reviewUpdateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "selectedOptionIds is required"})
		return
	}

	updated, err := h.reviewService.UpdateAndApprove(
		c.Request.Context(),
		c.Param("annotationId"),
		req.SelectedOptionIDs,
		req.IsDuplicate,
		user.ID,
		req.Note,
	)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, toAnnotationResponse(updated))
}

type bulkApproveRequest struct {
	ImageIDs []string `json:"imageIds" binding:"required"`
}

func (h HandlerSet) ReviewBulkApprove(c *gin.Context) {
	user, ok := currentUser(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "not authenticated"})
		return
	}

	var req bulkApproveRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "imageIds is required"})
		return
	}

	result, err := h.reviewService.BulkApprove(c.Request.Context(), req.ImageIDs, user.ID)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"succeededIds": result.SucceededIDs,
		"failedIds":    result.FailedIDs,
	})
}
