package server

import (
	"context"
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/visionmakers/backend/internal/consultation"
	"github.com/visionmakers/backend/internal/notification"
	"go.uber.org/zap"
)

type contactPayload struct {
	Name                 string `json:"name"`
	Phone                string `json:"phone"`
	Email                string `json:"email"`
	Company              string `json:"company,omitempty"`
	PreferredContactTime string `json:"preferredContactTime,omitempty"`
}

type submitConsultationPayload struct {
	Type               string         `json:"type"`
	ServiceType        string         `json:"serviceType"`
	ProjectSize        string         `json:"projectSize"`
	Budget             string         `json:"budget"`
	Timeline           string         `json:"timeline"`
	ImportantFeatures  []string       `json:"importantFeatures"`
	AdditionalRequests string         `json:"additionalRequests"`
	Description        string         `json:"description"`
	Contact            contactPayload `json:"contact"`
}

type submitConsultationResponse struct {
	ConsultationID     string `json:"consultationId"`
	ConsultationNumber string `json:"consultationNumber"`
}

func (h *httpHandler) handleSubmitConsultation(c *gin.Context) {
	var payload submitConsultationPayload
	if err := c.ShouldBindJSON(&payload); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid_request"})
		return
	}

	request, err := buildSubmissionRequest(payload)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid_request"})
		return
	}
	if missing := request.MissingFields(); len(missing) > 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "validation_failed", "missing": missing})
		return
	}

	receipt, err := h.consultations.CreateConsultation(c.Request.Context(), request)
	if err != nil {
		h.logger.Error("failed to store consultation", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "submission_failed"})
		return
	}

	h.announceConsultation(c, request, receipt)

	c.JSON(http.StatusCreated, submitConsultationResponse{
		ConsultationID:     receipt.ConsultationID,
		ConsultationNumber: receipt.ConsultationNumber,
	})
}

func buildSubmissionRequest(payload submitConsultationPayload) (consultation.SubmissionRequest, error) {
	contact := consultation.Contact{
		Name:    payload.Contact.Name,
		Phone:   payload.Contact.Phone,
		Email:   payload.Contact.Email,
		Company: payload.Contact.Company,
	}
	if payload.Contact.PreferredContactTime != "" {
		preferred, err := consultation.ParseContactTime(payload.Contact.PreferredContactTime)
		if err != nil {
			return nil, err
		}
		contact.PreferredTime = preferred
	}

	switch payload.Type {
	case string(consultation.TypeGuided):
		serviceType, err := consultation.ParseServiceType(payload.ServiceType)
		if err != nil {
			return nil, err
		}
		projectSize, err := consultation.ParseProjectSize(payload.ProjectSize)
		if err != nil {
			return nil, err
		}
		budget, err := consultation.ParseBudget(payload.Budget)
		if err != nil {
			return nil, err
		}
		timeline, err := consultation.ParseTimeline(payload.Timeline)
		if err != nil {
			return nil, err
		}
		return consultation.GuidedRequest{
			ServiceType:        serviceType,
			ProjectSize:        projectSize,
			Budget:             budget,
			Timeline:           timeline,
			Features:           payload.ImportantFeatures,
			AdditionalRequests: payload.AdditionalRequests,
			Contact:            contact,
		}, nil
	case string(consultation.TypeFree):
		request := consultation.FreeRequest{
			Description: payload.Description,
			Contact:     contact,
		}
		if payload.Budget != "" {
			budget, err := consultation.ParseBudget(payload.Budget)
			if err != nil {
				return nil, err
			}
			request.Budget = budget
		}
		if payload.Timeline != "" {
			timeline, err := consultation.ParseTimeline(payload.Timeline)
			if err != nil {
				return nil, err
			}
			request.Timeline = timeline
		}
		return request, nil
	default:
		return nil, errors.New("unknown consultation type")
	}
}

// announceConsultation fans the stored consultation out to the notification
// channels. Failures here never fail the intake request.
func (h *httpHandler) announceConsultation(c *gin.Context, request consultation.SubmissionRequest, receipt consultation.Receipt) {
	priority := notification.PriorityMedium
	if guided, ok := request.(consultation.GuidedRequest); ok && guided.Timeline == consultation.TimelineASAP {
		priority = notification.PriorityHigh
	}

	contactName := request.ContactBlock().Name
	_, err := h.notifications.Create(c.Request.Context(), notification.CreateParams{
		Type:      "consultation_created",
		Title:     "New consultation " + receipt.ConsultationNumber,
		Message:   contactName + " requested a " + string(request.Type()) + " consultation",
		Priority:  priority,
		RelatedID: receipt.ConsultationID,
		ActionURL: "/admin/consultations/" + receipt.ConsultationID,
	})
	if err != nil {
		h.logger.Warn("failed to store notification", zap.Error(err))
	}

	if h.poller != nil {
		h.poller.Wake()
	}

	if h.slack != nil && h.slack.Enabled() {
		detached := context.WithoutCancel(c.Request.Context())
		go func() {
			if err := h.slack.NotifyNewConsultation(detached,
				receipt.ConsultationNumber, string(request.Type()), contactName); err != nil {
				h.logger.Warn("slack delivery failed", zap.Error(err))
			}
		}()
	}
}

type consultationPayload struct {
	ConsultationID     string         `json:"consultationId"`
	ConsultationNumber string         `json:"consultationNumber"`
	Type               string         `json:"type"`
	ServiceType        string         `json:"serviceType,omitempty"`
	ProjectSize        string         `json:"projectSize,omitempty"`
	Budget             string         `json:"budget,omitempty"`
	Timeline           string         `json:"timeline,omitempty"`
	ImportantFeatures  []string       `json:"importantFeatures"`
	AdditionalRequests string         `json:"additionalRequests,omitempty"`
	Description        string         `json:"description,omitempty"`
	Contact            contactPayload `json:"contact"`
	Status             string         `json:"status"`
	CreatedAtSeconds   int64          `json:"createdAtSeconds"`
	UpdatedAtSeconds   int64          `json:"updatedAtSeconds"`
}

func toConsultationPayload(row consultation.Consultation) consultationPayload {
	features := row.Features()
	if features == nil {
		features = []string{}
	}
	return consultationPayload{
		ConsultationID:     row.ConsultationID,
		ConsultationNumber: row.ConsultationNumber,
		Type:               string(row.Type),
		ServiceType:        row.ServiceType,
		ProjectSize:        row.ProjectSize,
		Budget:             row.Budget,
		Timeline:           row.Timeline,
		ImportantFeatures:  features,
		AdditionalRequests: row.AdditionalRequests,
		Description:        row.Description,
		Contact: contactPayload{
			Name:                 row.ContactName,
			Phone:                row.ContactPhone,
			Email:                row.ContactEmail,
			Company:              row.ContactCompany,
			PreferredContactTime: row.PreferredTime,
		},
		Status:           string(row.Status),
		CreatedAtSeconds: row.CreatedAtSeconds,
		UpdatedAtSeconds: row.UpdatedAtSeconds,
	}
}

func (h *httpHandler) handleListConsultations(c *gin.Context) {
	filter := consultation.ListFilter{
		Limit:  parseQueryInt(c, "limit", 0),
		Offset: parseQueryInt(c, "offset", 0),
	}
	if raw := c.Query("status"); raw != "" {
		status, err := consultation.ParseStatus(raw)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid_status"})
			return
		}
		filter.Status = status
	}
	if raw := c.Query("type"); raw != "" {
		switch raw {
		case string(consultation.TypeGuided):
			filter.Type = consultation.TypeGuided
		case string(consultation.TypeFree):
			filter.Type = consultation.TypeFree
		default:
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid_type"})
			return
		}
	}

	rows, total, err := h.consultations.List(c.Request.Context(), filter)
	if err != nil {
		h.logger.Error("failed to list consultations", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "list_failed"})
		return
	}

	payloads := make([]consultationPayload, 0, len(rows))
	for _, row := range rows {
		payloads = append(payloads, toConsultationPayload(row))
	}
	c.JSON(http.StatusOK, gin.H{"consultations": payloads, "total": total})
}

func (h *httpHandler) handleGetConsultation(c *gin.Context) {
	row, err := h.consultations.Get(c.Request.Context(), c.Param("id"))
	if errors.Is(err, consultation.ErrConsultationNotFound) {
		c.JSON(http.StatusNotFound, gin.H{"error": "not_found"})
		return
	}
	if err != nil {
		h.logger.Error("failed to load consultation", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "get_failed"})
		return
	}
	c.JSON(http.StatusOK, toConsultationPayload(row))
}

type updateStatusPayload struct {
	Status string `json:"status"`
}

func (h *httpHandler) handleUpdateConsultationStatus(c *gin.Context) {
	var payload updateStatusPayload
	if err := c.ShouldBindJSON(&payload); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid_request"})
		return
	}
	status, err := consultation.ParseStatus(payload.Status)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid_status"})
		return
	}

	row, err := h.consultations.UpdateStatus(c.Request.Context(), c.Param("id"), status)
	if errors.Is(err, consultation.ErrConsultationNotFound) {
		c.JSON(http.StatusNotFound, gin.H{"error": "not_found"})
		return
	}
	if err != nil {
		h.logger.Error("failed to update consultation status", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "update_failed"})
		return
	}
	c.JSON(http.StatusOK, toConsultationPayload(row))
}
