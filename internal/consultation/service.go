package consultation

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"
	"gorm.io/gorm"
)

var (
	errMissingDatabase   = errors.New("database handle is required")
	errMissingIDProvider = errors.New("id provider is required")
	// ErrConsultationNotFound indicates no row exists for the identifier.
	ErrConsultationNotFound = errors.New("consultation: not found")

	noOpLogger = zap.NewNop()
)

// ServiceError carries a dotted operation code alongside the underlying
// cause, e.g. "consultation.create.insert_failed".
type ServiceError struct {
	code string
	err  error
}

func (e *ServiceError) Error() string {
	if e.err == nil {
		return e.code
	}
	return fmt.Sprintf("%s: %v", e.code, e.err)
}

func (e *ServiceError) Unwrap() error {
	return e.err
}

func (e *ServiceError) Code() string {
	return e.code
}

const (
	opServiceNew     = "consultation.service.new"
	opCreate         = "consultation.create"
	opList           = "consultation.list"
	opGet            = "consultation.get"
	opUpdateStatus   = "consultation.update_status"
	defaultListLimit = 50
	maxListLimit     = 200
)

func newServiceError(operation, reason string, cause error) error {
	code := fmt.Sprintf("%s.%s", operation, reason)
	return &ServiceError{code: code, err: cause}
}

// IDProvider issues unique identifiers for stored consultations.
type IDProvider interface {
	NewID() (string, error)
}

// ServiceConfig wires the consultation service dependencies.
type ServiceConfig struct {
	Database   *gorm.DB
	Clock      func() time.Time
	IDProvider IDProvider
	Logger     *zap.Logger
}

// Service persists consultation submissions and backs the admin panel CRUD.
type Service struct {
	db         *gorm.DB
	clock      func() time.Time
	idProvider IDProvider
	logger     *zap.Logger
}

// NewService constructs the consultation service.
func NewService(cfg ServiceConfig) (*Service, error) {
	if cfg.Database == nil {
		return nil, newServiceError(opServiceNew, "missing_database", errMissingDatabase)
	}
	if cfg.IDProvider == nil {
		return nil, newServiceError(opServiceNew, "missing_id_provider", errMissingIDProvider)
	}

	clock := cfg.Clock
	if clock == nil {
		clock = time.Now
	}
	logger := cfg.Logger
	if logger == nil {
		logger = noOpLogger
	}

	return &Service{
		db:         cfg.Database,
		clock:      clock,
		idProvider: cfg.IDProvider,
		logger:     logger,
	}, nil
}

// CreateConsultation validates the payload and stores a new consultation
// row, returning its identifier and human-readable number. It satisfies the
// wizard's SubmissionClient.
func (s *Service) CreateConsultation(ctx context.Context, request SubmissionRequest) (Receipt, error) {
	if request == nil {
		return Receipt{}, newServiceError(opCreate, "missing_request", errors.New("request is required"))
	}
	if missing := request.MissingFields(); len(missing) > 0 {
		return Receipt{}, newServiceError(opCreate, "invalid_request",
			fmt.Errorf("missing fields: %s", strings.Join(missing, ", ")))
	}

	consultationID, err := s.idProvider.NewID()
	if err != nil {
		s.logError(opCreate, "id_generation_failed", err)
		return Receipt{}, newServiceError(opCreate, "id_generation_failed", err)
	}

	now := s.clock().UTC()
	row := Consultation{
		ConsultationID:     consultationID,
		ConsultationNumber: consultationNumber(now, consultationID),
		Type:               request.Type(),
		Status:             StatusPending,
		CreatedAtSeconds:   now.Unix(),
		UpdatedAtSeconds:   now.Unix(),
	}

	contact := request.ContactBlock()
	row.ContactName = strings.TrimSpace(contact.Name)
	row.ContactPhone = strings.TrimSpace(contact.Phone)
	row.ContactEmail = strings.TrimSpace(contact.Email)
	row.ContactCompany = strings.TrimSpace(contact.Company)
	row.PreferredTime = string(contact.PreferredTime)

	switch payload := request.(type) {
	case GuidedRequest:
		featuresJSON, err := json.Marshal(payload.Features)
		if err != nil {
			s.logError(opCreate, "features_encode_failed", err)
			return Receipt{}, newServiceError(opCreate, "features_encode_failed", err)
		}
		row.ServiceType = string(payload.ServiceType)
		row.ProjectSize = string(payload.ProjectSize)
		row.Budget = string(payload.Budget)
		row.Timeline = string(payload.Timeline)
		row.FeaturesJSON = string(featuresJSON)
		row.AdditionalRequests = payload.AdditionalRequests
	case FreeRequest:
		row.Description = payload.Description
		row.Budget = string(payload.Budget)
		row.Timeline = string(payload.Timeline)
		row.FeaturesJSON = "[]"
	default:
		return Receipt{}, newServiceError(opCreate, "unknown_variant",
			fmt.Errorf("unsupported request type %T", request))
	}

	if err := s.db.WithContext(ctx).Create(&row).Error; err != nil {
		s.logError(opCreate, "insert_failed", err, zap.String("consultation_id", consultationID))
		return Receipt{}, newServiceError(opCreate, "insert_failed", err)
	}

	s.logger.Info("consultation stored",
		zap.String("consultation_id", row.ConsultationID),
		zap.String("consultation_number", row.ConsultationNumber),
		zap.String("type", string(row.Type)))

	return Receipt{
		ConsultationID:     row.ConsultationID,
		ConsultationNumber: row.ConsultationNumber,
	}, nil
}

// ListFilter narrows the admin consultation listing. Zero values match all.
type ListFilter struct {
	Status Status
	Type   Type
	Limit  int
	Offset int
}

// List returns consultations newest first together with the total count for
// the filter.
func (s *Service) List(ctx context.Context, filter ListFilter) ([]Consultation, int64, error) {
	limit := filter.Limit
	if limit <= 0 {
		limit = defaultListLimit
	}
	if limit > maxListLimit {
		limit = maxListLimit
	}

	query := s.db.WithContext(ctx).Model(&Consultation{})
	if filter.Status != "" {
		query = query.Where("status = ?", filter.Status)
	}
	if filter.Type != "" {
		query = query.Where("type = ?", filter.Type)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		s.logError(opList, "count_failed", err)
		return nil, 0, newServiceError(opList, "count_failed", err)
	}

	var rows []Consultation
	if err := query.Order("created_at_s DESC").
		Limit(limit).
		Offset(filter.Offset).
		Find(&rows).Error; err != nil {
		s.logError(opList, "query_failed", err)
		return nil, 0, newServiceError(opList, "query_failed", err)
	}

	return rows, total, nil
}

// Get returns a single consultation by identifier.
func (s *Service) Get(ctx context.Context, consultationID string) (Consultation, error) {
	if strings.TrimSpace(consultationID) == "" {
		return Consultation{}, newServiceError(opGet, "missing_id", errors.New("consultation id is required"))
	}

	var row Consultation
	err := s.db.WithContext(ctx).
		Where("consultation_id = ?", consultationID).
		Take(&row).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return Consultation{}, newServiceError(opGet, "not_found", ErrConsultationNotFound)
	}
	if err != nil {
		s.logError(opGet, "query_failed", err, zap.String("consultation_id", consultationID))
		return Consultation{}, newServiceError(opGet, "query_failed", err)
	}
	return row, nil
}

// UpdateStatus moves a consultation through the review workflow.
func (s *Service) UpdateStatus(ctx context.Context, consultationID string, status Status) (Consultation, error) {
	if _, err := ParseStatus(string(status)); err != nil {
		return Consultation{}, newServiceError(opUpdateStatus, "invalid_status", err)
	}

	row, err := s.Get(ctx, consultationID)
	if err != nil {
		return Consultation{}, err
	}

	updates := map[string]interface{}{
		"status":       status,
		"updated_at_s": s.clock().UTC().Unix(),
	}
	if err := s.db.WithContext(ctx).Model(&Consultation{}).
		Where("consultation_id = ?", consultationID).
		Updates(updates).Error; err != nil {
		s.logError(opUpdateStatus, "update_failed", err, zap.String("consultation_id", consultationID))
		return Consultation{}, newServiceError(opUpdateStatus, "update_failed", err)
	}

	row.Status = status
	row.UpdatedAtSeconds = updates["updated_at_s"].(int64)
	return row, nil
}

// Features decodes the stored feature keys of a consultation row.
func (c Consultation) Features() []string {
	if c.FeaturesJSON == "" {
		return nil
	}
	var keys []string
	if err := json.Unmarshal([]byte(c.FeaturesJSON), &keys); err != nil {
		return nil
	}
	return keys
}

// consultationNumber derives the human-readable number surfaced to clients,
// e.g. VM-20260829-7F3A21.
func consultationNumber(now time.Time, consultationID string) string {
	suffix := strings.ToUpper(strings.ReplaceAll(consultationID, "-", ""))
	if len(suffix) > 6 {
		suffix = suffix[len(suffix)-6:]
	}
	return fmt.Sprintf("VM-%s-%s", now.Format("20060102"), suffix)
}

func (s *Service) logError(operation, reason string, err error, fields ...zap.Field) {
	attrs := []zap.Field{
		zap.String("operation", operation),
		zap.String("reason", reason),
	}
	if err != nil {
		attrs = append(attrs, zap.Error(err))
	}
	attrs = append(attrs, fields...)
	s.logger.Error("consultation service error", attrs...)
}
