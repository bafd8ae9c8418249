package services

import (
	"context"
	"errors"
	"testing"
	"time"

	"assetdesk/internal/adapters/persistence/models"
)

func newTestItemService() (*ItemService, *fakeStore) {
	store := newFakeStore()
	items := &fakeItemRepo{s: store}
	requests := &fakeRequestRepo{s: store}
	return NewItemService(items, requests), store
}

func TestItemCreateDefaults(t *testing.T) {
	svc, _ := newTestItemService()

	item, err := svc.Create(context.Background(), &CreateItemInput{
		ItemName: "  Oscilloscope ",
		SerialNo: " OS-1 ",
		Model:    "DS1054Z",
	}, 7)
	if err != nil {
		t.Fatalf("Create failed: %v", err)
	}

	if item.ItemName != "Oscilloscope" || item.SerialNo != "OS-1" {
		t.Errorf("fields not trimmed: %q / %q", item.ItemName, item.SerialNo)
	}
	if item.Quantity != 1 {
		t.Errorf("quantity = %d, want default 1", item.Quantity)
	}
	if item.Condition != models.ConditionGood {
		t.Errorf("condition = %q, want good", item.Condition)
	}
	if item.Status != models.ItemStatusAvailable {
		t.Errorf("status = %q, want available", item.Status)
	}
	if item.CreatedByID != 7 {
		t.Errorf("created_by_id = %d, want 7", item.CreatedByID)
	}
}

func TestItemCreateValidation(t *testing.T) {
	svc, _ := newTestItemService()

	cases := []CreateItemInput{
		{SerialNo: "SN", Model: "M"},
		{ItemName: "X", Model: "M"},
		{ItemName: "X", SerialNo: "SN"},
		{ItemName: "  ", SerialNo: "SN", Model: "M"},
	}
	for _, input := range cases {
		if _, err := svc.Create(context.Background(), &input, 1); !errors.Is(err, ErrItemFieldsMissing) {
			t.Errorf("input %+v: got %v, want ErrItemFieldsMissing", input, err)
		}
	}
}

func TestItemUpdateKeepsStatus(t *testing.T) {
	svc, store := newTestItemService()
	store.addItem(&models.Item{
		ID:       1,
		ItemName: "Projector",
		SerialNo: "SN-100",
		Model:    "X200",
		Status:   models.ItemStatusBorrowed,
		Quantity: 1,
	})

	quantity := 3
	item, err := svc.Update(context.Background(), 1, &UpdateItemInput{
		ItemName:  "Projector HD",
		Quantity:  &quantity,
		Condition: models.ConditionDamaged,
	})
	if err != nil {
		t.Fatalf("Update failed: %v", err)
	}

	if item.ItemName != "Projector HD" || item.Quantity != 3 || item.Condition != models.ConditionDamaged {
		t.Errorf("update not applied: %+v", item)
	}
	if item.Status != models.ItemStatusBorrowed {
		t.Errorf("status = %q, catalog updates must not touch availability", item.Status)
	}
}

func TestItemUpdateNotFound(t *testing.T) {
	svc, _ := newTestItemService()
	if _, err := svc.Update(context.Background(), 42, &UpdateItemInput{ItemName: "X"}); !errors.Is(err, ErrItemNotFound) {
		t.Errorf("got %v, want ErrItemNotFound", err)
	}
}

func TestItemDeleteGuardedByActiveLoan(t *testing.T) {
	svc, store := newTestItemService()
	store.addItem(&models.Item{ID: 1, ItemName: "Laptop", SerialNo: "SN-1", Model: "L1", Status: models.ItemStatusBorrowed})

	now := time.Now()
	store.requests[1] = &models.BorrowRequest{
		ID:            1,
		ItemID:        1,
		RequestedByID: 10,
		Status:        models.RequestStatusApproved,
		BorrowDate:    &now,
	}

	if err := svc.Delete(context.Background(), 1); !errors.Is(err, ErrItemHasActiveLoan) {
		t.Fatalf("got %v, want ErrItemHasActiveLoan", err)
	}

	// Closing the request unblocks deletion
	store.requests[1].ReturnApproved = true
	if err := svc.Delete(context.Background(), 1); err != nil {
		t.Fatalf("delete after return: %v", err)
	}
	if _, ok := store.items[1]; ok {
		t.Error("item should be deleted")
	}
}

func TestItemDeleteNotFound(t *testing.T) {
	svc, _ := newTestItemService()
	if err := svc.Delete(context.Background(), 9); !errors.Is(err, ErrItemNotFound) {
		t.Errorf("got %v, want ErrItemNotFound", err)
	}
}
