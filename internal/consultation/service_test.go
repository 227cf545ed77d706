package consultation

import (
	"context"
	"errors"
	"fmt"
	"reflect"
	"strings"
	"testing"
	"time"

	sqlite "github.com/glebarez/sqlite"
	"gorm.io/gorm"
)

type staticIDGenerator struct {
	ids   []string
	index int
}

func (g *staticIDGenerator) NewID() (string, error) {
	if g.index >= len(g.ids) {
		return "", errors.New("exhausted ids")
	}
	id := g.ids[g.index]
	g.index++
	return id, nil
}

func newTestService(t *testing.T, ids []string) *Service {
	t.Helper()
	dsn := fmt.Sprintf("file:consultation_test_%d?mode=memory&cache=shared", time.Now().UnixNano())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{})
	if err != nil {
		t.Fatalf("failed to open in-memory database: %v", err)
	}
	if err := db.AutoMigrate(&Consultation{}); err != nil {
		t.Fatalf("failed to migrate schema: %v", err)
	}
	service, err := NewService(ServiceConfig{
		Database:   db,
		Clock:      func() time.Time { return time.Unix(1787961600, 0).UTC() },
		IDProvider: &staticIDGenerator{ids: ids},
	})
	if err != nil {
		t.Fatalf("failed to construct service: %v", err)
	}
	return service
}

func validGuidedRequest() GuidedRequest {
	return GuidedRequest{
		ServiceType:        ServiceTypeWebDevelopment,
		ProjectSize:        ProjectSizeMedium,
		Budget:             Budget5000To10000,
		Timeline:           TimelineThreeToSix,
		Features:           []string{"payments", "seo"},
		AdditionalRequests: "multilingual content",
		Contact: Contact{
			Name:          "Choi Hana",
			Phone:         "010-9876-5432",
			Email:         "hana@example.com",
			Company:       "Hana Studio",
			PreferredTime: ContactTimeMorning,
		},
	}
}

func TestCreateConsultationStoresGuidedRow(t *testing.T) {
	service := newTestService(t, []string{"0192aa00-0000-7000-8000-00000000ab12"})

	receipt, err := service.CreateConsultation(context.Background(), validGuidedRequest())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if receipt.ConsultationID != "0192aa00-0000-7000-8000-00000000ab12" {
		t.Fatalf("unexpected consultation id: %s", receipt.ConsultationID)
	}
	if !strings.HasPrefix(receipt.ConsultationNumber, "VM-20260829-") {
		t.Fatalf("unexpected consultation number: %s", receipt.ConsultationNumber)
	}

	row, err := service.Get(context.Background(), receipt.ConsultationID)
	if err != nil {
		t.Fatalf("unexpected get error: %v", err)
	}
	if row.Type != TypeGuided {
		t.Fatalf("unexpected type: %s", row.Type)
	}
	if row.Status != StatusPending {
		t.Fatalf("new consultations must start pending, got %s", row.Status)
	}
	if row.ServiceType != string(ServiceTypeWebDevelopment) {
		t.Fatalf("unexpected service type: %s", row.ServiceType)
	}
	if !reflect.DeepEqual(row.Features(), []string{"payments", "seo"}) {
		t.Fatalf("unexpected features: %v", row.Features())
	}
	if row.ContactEmail != "hana@example.com" {
		t.Fatalf("unexpected contact email: %s", row.ContactEmail)
	}
}

func TestCreateConsultationRejectsIncompletePayload(t *testing.T) {
	service := newTestService(t, []string{"id-1"})
	request := validGuidedRequest()
	request.Budget = ""

	_, err := service.CreateConsultation(context.Background(), request)
	if err == nil {
		t.Fatalf("expected validation error")
	}
	var serviceErr *ServiceError
	if !errors.As(err, &serviceErr) {
		t.Fatalf("expected ServiceError, got %T", err)
	}
	if serviceErr.Code() != "consultation.create.invalid_request" {
		t.Fatalf("unexpected error code: %s", serviceErr.Code())
	}
}

func TestCreateConsultationStoresFreeRow(t *testing.T) {
	service := newTestService(t, []string{"free-1"})

	receipt, err := service.CreateConsultation(context.Background(), FreeRequest{
		Description: "We need a booking platform rebuilt from scratch.",
		Budget:      BudgetNegotiable,
		Contact: Contact{
			Name:          "Jung Woo",
			Phone:         "+82 10 2222 3333",
			Email:         "woo@example.com",
			PreferredTime: ContactTimeAnytime,
		},
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	row, err := service.Get(context.Background(), receipt.ConsultationID)
	if err != nil {
		t.Fatalf("unexpected get error: %v", err)
	}
	if row.Type != TypeFree {
		t.Fatalf("unexpected type: %s", row.Type)
	}
	if row.Description == "" || row.ServiceType != "" {
		t.Fatalf("free rows carry a description and no guided fields")
	}
}

func TestListFiltersByStatusAndType(t *testing.T) {
	service := newTestService(t, []string{"id-1", "id-2", "id-3"})
	for i := 0; i < 2; i++ {
		if _, err := service.CreateConsultation(context.Background(), validGuidedRequest()); err != nil {
			t.Fatalf("unexpected create error: %v", err)
		}
	}
	if _, err := service.CreateConsultation(context.Background(), FreeRequest{
		Description: "landing page refresh",
		Contact:     Contact{Name: "Seo", Phone: "010-1111-2222", Email: "seo@example.com"},
	}); err != nil {
		t.Fatalf("unexpected create error: %v", err)
	}
	if _, err := service.UpdateStatus(context.Background(), "id-2", StatusReviewing); err != nil {
		t.Fatalf("unexpected status error: %v", err)
	}

	rows, total, err := service.List(context.Background(), ListFilter{Status: StatusPending})
	if err != nil {
		t.Fatalf("unexpected list error: %v", err)
	}
	if total != 2 || len(rows) != 2 {
		t.Fatalf("expected two pending rows, got total=%d len=%d", total, len(rows))
	}

	rows, total, err = service.List(context.Background(), ListFilter{Type: TypeFree})
	if err != nil {
		t.Fatalf("unexpected list error: %v", err)
	}
	if total != 1 || rows[0].Type != TypeFree {
		t.Fatalf("expected one free row, got total=%d", total)
	}
}

func TestUpdateStatusRejectsUnknownStatus(t *testing.T) {
	service := newTestService(t, []string{"id-1"})
	if _, err := service.CreateConsultation(context.Background(), validGuidedRequest()); err != nil {
		t.Fatalf("unexpected create error: %v", err)
	}

	_, err := service.UpdateStatus(context.Background(), "id-1", Status("archived"))
	if !errors.Is(err, ErrInvalidEnumValue) {
		t.Fatalf("expected enum error, got %v", err)
	}
}

func TestGetUnknownConsultation(t *testing.T) {
	service := newTestService(t, nil)

	_, err := service.Get(context.Background(), "missing")
	if !errors.Is(err, ErrConsultationNotFound) {
		t.Fatalf("expected not-found error, got %v", err)
	}
}
