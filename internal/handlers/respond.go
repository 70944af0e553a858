package handlers

import (
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/muhammadnoorulainroy/photo-pets-annotation-tool/internal/models"
	"github.com/muhammadnoorulainroy/photo-pets-annotation-tool/internal/service"
)

func respondError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, service.ErrQueueExhausted):
		c.JSON(http.StatusNotFound, gin.H{"error": err.Error(), "reason": "queue_exhausted"})
	case errors.Is(err, service.ErrIndexOutOfRange):
		c.JSON(http.StatusNotFound, gin.H{"error": err.Error(), "reason": "index_out_of_range"})
	case errors.Is(err, service.ErrNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
	case errors.Is(err, service.ErrValidation):
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
	case errors.Is(err, service.ErrPermission):
		c.JSON(http.StatusForbidden, gin.H{"error": err.Error()})
	case errors.Is(err, service.ErrConflict):
		c.JSON(http.StatusConflict, gin.H{"error": err.Error()})
	default:
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal server error"})
	}
}

func currentUser(c *gin.Context) (models.User, bool) {
	value, ok := c.Get("current_user")
	if !ok {
		return models.User{}, false
	}
	user, ok := value.(models.User)
	return user, ok
}

type annotationResponse struct {
	ID                string     `json:"id"`
	ImageID           string     `json:"imageId"`
	CategoryID        string     `json:"categoryId"`
	AnnotatorID       string     `json:"annotatorId"`
	SelectedOptionIDs []string   `json:"selectedOptionIds"`
	IsDuplicate       *bool      `json:"isDuplicate"`
	Status            string     `json:"status"`
	TimeSpentSeconds  int        `json:"timeSpentSeconds"`
	ReviewStatus      *string    `json:"reviewStatus"`
	ReviewNote        *string    `json:"reviewNote"`
	ReviewedBy        *string    `json:"reviewedBy"`
	ReviewedAt        *time.Time `json:"reviewedAt"`
	CreatedAt         time.Time  `json:"createdAt"`
	UpdatedAt         time.Time  `json:"updatedAt"`
}

func toAnnotationResponse(a models.Annotation) annotationResponse {
	selected := a.SelectedOptionIDs
	if selected == nil {
		selected = []string{}
	}
	resp := annotationResponse{
		ID:                a.ID,
		ImageID:           a.ImageID,
		CategoryID:        a.CategoryID,
		AnnotatorID:       a.AnnotatorID,
		SelectedOptionIDs: selected,
		IsDuplicate:       a.IsDuplicate,
		Status:            string(a.Status),
		TimeSpentSeconds:  a.TimeSpentSeconds,
		ReviewNote:        a.ReviewNote,
		ReviewedBy:        a.ReviewedBy,
		ReviewedAt:        a.ReviewedAt,
		CreatedAt:         a.CreatedAt,
		UpdatedAt:         a.UpdatedAt,
	}
	if a.ReviewStatus != nil {
		status := string(*a.ReviewStatus)
		resp.ReviewStatus = &status
	}
	return resp
}

type imageResponse struct {
	ID             string    `json:"id"`
	Filename       string    `json:"filename"`
	URL            string    `json:"url"`
	IsImproper     bool      `json:"isImproper"`
	ImproperReason *string   `json:"improperReason"`
	ReportedBy     *string   `json:"reportedBy"`
	CreatedAt      time.Time `json:"createdAt"`
}

func toImageResponse(img models.Image) imageResponse {
	return imageResponse{
		ID:             img.ID,
		Filename:       img.Filename,
		URL:            img.URL,
		IsImproper:     img.IsImproper,
		ImproperReason: img.ImproperReason,
		ReportedBy:     img.ReportedBy,
		CreatedAt:      img.CreatedAt,
	}
}

type editRequestResponse struct {
	ID          string     `json:"id"`
	ImageID     string     `json:"imageId"`
	AnnotatorID string     `json:"annotatorId"`
	Reason      string     `json:"reason"`
	Status      string     `json:"status"`
	Consumed    bool       `json:"consumed"`
	ResolvedBy  *string    `json:"resolvedBy"`
	ResolvedAt  *time.Time `json:"resolvedAt"`
	CreatedAt   time.Time  `json:"createdAt"`
}

func toEditRequestResponse(req models.EditRequest) editRequestResponse {
	return editRequestResponse{
		ID:          req.ID,
		ImageID:     req.ImageID,
		AnnotatorID: req.AnnotatorID,
		Reason:      req.Reason,
		Status:      string(req.Status),
		Consumed:    req.Consumed,
		ResolvedBy:  req.ResolvedBy,
		ResolvedAt:  req.ResolvedAt,
		CreatedAt:   req.CreatedAt,
	}
}

type userResponse struct {
	ID        string    `json:"id"`
	Username  string    `json:"username"`
	FullName  string    `json:"fullName"`
	Role      string    `json:"role"`
	IsActive  bool      `json:"isActive"`
	CreatedAt time.Time `json:"createdAt"`
}

func toUserResponse(user models.User) userResponse {
	return userResponse{
		ID:        user.ID,
		Username:  user.Username,
		FullName:  user.FullName,
		Role:      string(user.Role),
		IsActive:  user.IsActive,
		CreatedAt: user.CreatedAt,
	}
}

type optionResponse struct {
	ID           string `json:"id"`
	CategoryID   string `json:"categoryId"`
	Label        string `json:"label"`
	IsTypical    bool   `json:"isTypical"`
	DisplayOrder int    `json:"displayOrder"`
}

func toOptionResponses(options []models.Option) []optionResponse {
	out := make([]optionResponse, 0, len(options))
	for _, opt := range options {
		out = append(out, optionResponse{
			ID:           opt.ID,
			CategoryID:   opt.CategoryID,
			Label:        opt.Label,
			IsTypical:    opt.IsTypical,
			DisplayOrder: opt.DisplayOrder,
		})
	}
	return out
}
