package services

import (
	"context"
	"testing"
	"time"

	"assetdesk/internal/adapters/persistence/models"
)

func TestScanOverdue(t *testing.T) {
	store := newFakeStore()
	requests := &fakeRequestRepo{s: store}
	svc := NewReminderService(requests, 14)

	old := time.Now().AddDate(0, 0, -20)
	recent := time.Now().AddDate(0, 0, -2)

	store.requests[1] = &models.BorrowRequest{
		ID: 1, ItemID: 1, RequestedByID: 10,
		Status: models.RequestStatusApproved, BorrowDate: &old,
	}
	store.requests[2] = &models.BorrowRequest{
		ID: 2, ItemID: 2, RequestedByID: 11,
		Status: models.RequestStatusApproved, BorrowDate: &recent,
	}
	store.requests[3] = &models.BorrowRequest{
		ID: 3, ItemID: 3, RequestedByID: 12,
		Status: models.RequestStatusApproved, BorrowDate: &old, ReturnApproved: true,
	}

	if err := svc.ScanOverdue(context.Background()); err != nil {
		t.Fatalf("ScanOverdue failed: %v", err)
	}

	cutoff := time.Now().AddDate(0, 0, -14)
	overdue, err := requests.ListOverdue(context.Background(), cutoff)
	if err != nil {
		t.Fatalf("ListOverdue failed: %v", err)
	}
	if len(overdue) != 1 || overdue[0].ID != 1 {
		t.Errorf("overdue = %+v, want only request 1", overdue)
	}
}
