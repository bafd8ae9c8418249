package services

import (
	"context"
	"errors"
	"sort"
	"sync"
	"testing"
	"time"

	"assetdesk/internal/adapters/persistence/models"
	"assetdesk/internal/adapters/persistence/repositories"
	"assetdesk/internal/core/domain"

	"gorm.io/gorm"
)

// fakeStore is an in-memory stand-in for the database. Repository fakes
// share one store so transactional helpers observe each other's writes.
type fakeStore struct {
	mu        sync.Mutex
	items     map[uint]*models.Item
	requests  map[uint]*models.BorrowRequest
	nextReqID uint
}

func newFakeStore() *fakeStore {
	return &fakeStore{
		items:     make(map[uint]*models.Item),
		requests:  make(map[uint]*models.BorrowRequest),
		nextReqID: 1,
	}
}

func (s *fakeStore) addItem(item *models.Item) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.items[item.ID] = item
}

func copyRequest(r *models.BorrowRequest) *models.BorrowRequest {
	cp := *r
	return &cp
}

type fakeItemRepo struct{ s *fakeStore }

func (f *fakeItemRepo) Create(ctx context.Context, item *models.Item) error {
	f.s.mu.Lock()
	defer f.s.mu.Unlock()
	f.s.items[item.ID] = item
	return nil
}

func (f *fakeItemRepo) GetByID(ctx context.Context, id uint) (*models.Item, error) {
	f.s.mu.Lock()
	defer f.s.mu.Unlock()
	item, ok := f.s.items[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	cp := *item
	return &cp, nil
}

func (f *fakeItemRepo) List(ctx context.Context) ([]*models.Item, error) {
	f.s.mu.Lock()
	defer f.s.mu.Unlock()
	items := make([]*models.Item, 0, len(f.s.items))
	for _, item := range f.s.items {
		cp := *item
		items = append(items, &cp)
	}
	sort.Slice(items, func(i, j int) bool { return items[i].ID < items[j].ID })
	return items, nil
}

func (f *fakeItemRepo) Update(ctx context.Context, item *models.Item) error {
	f.s.mu.Lock()
	defer f.s.mu.Unlock()
	if _, ok := f.s.items[item.ID]; !ok {
		return gorm.ErrRecordNotFound
	}
	cp := *item
	f.s.items[item.ID] = &cp
	return nil
}

func (f *fakeItemRepo) Delete(ctx context.Context, id uint) error {
	f.s.mu.Lock()
	defer f.s.mu.Unlock()
	delete(f.s.items, id)
	return nil
}

func (f *fakeItemRepo) ReplaceLocations(ctx context.Context, item *models.Item, locationIDs []uint) error {
	return nil
}

func (f *fakeItemRepo) SetStatus(ctx context.Context, id uint, from, to string) error {
	f.s.mu.Lock()
	defer f.s.mu.Unlock()
	item, ok := f.s.items[id]
	if !ok || item.Status != from {
		return repositories.ErrStatusConflict
	}
	item.Status = to
	return nil
}

type fakeRequestRepo struct {
	s *fakeStore

	// afterGet runs once after the next GetByID read completes, outside the
	// store lock. It models a concurrent writer committing in the window
	// between a service's read and its write.
	afterGet func()
}

func (f *fakeRequestRepo) Create(ctx context.Context, request *models.BorrowRequest) error {
	f.s.mu.Lock()
	defer f.s.mu.Unlock()
	request.ID = f.s.nextReqID
	f.s.nextReqID++
	if request.CreatedAt.IsZero() {
		request.CreatedAt = time.Now()
	}
	f.s.requests[request.ID] = copyRequest(request)
	return nil
}

func (f *fakeRequestRepo) GetByID(ctx context.Context, id uint) (*models.BorrowRequest, error) {
	f.s.mu.Lock()
	request, ok := f.s.requests[id]
	var cp *models.BorrowRequest
	if ok {
		cp = copyRequest(request)
	}
	hook := f.afterGet
	f.afterGet = nil
	f.s.mu.Unlock()

	if hook != nil {
		hook()
	}
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	return cp, nil
}

func (f *fakeRequestRepo) Update(ctx context.Context, request *models.BorrowRequest) error {
	f.s.mu.Lock()
	defer f.s.mu.Unlock()
	if _, ok := f.s.requests[request.ID]; !ok {
		return gorm.ErrRecordNotFound
	}
	f.s.requests[request.ID] = copyRequest(request)
	return nil
}

func (f *fakeRequestRepo) Delete(ctx context.Context, id uint) error {
	f.s.mu.Lock()
	defer f.s.mu.Unlock()
	delete(f.s.requests, id)
	return nil
}

func (f *fakeRequestRepo) DeletePending(ctx context.Context, id uint) error {
	f.s.mu.Lock()
	defer f.s.mu.Unlock()
	r, ok := f.s.requests[id]
	if !ok || r.Status != models.RequestStatusPending {
		return repositories.ErrRequestConflict
	}
	delete(f.s.requests, id)
	return nil
}

func (f *fakeRequestRepo) MarkReturnRejected(ctx context.Context, id uint, remarks string) error {
	f.s.mu.Lock()
	defer f.s.mu.Unlock()
	r, ok := f.s.requests[id]
	if !ok || r.Status != models.RequestStatusApproved || !r.ReturnRequested || r.ReturnApproved {
		return repositories.ErrRequestConflict
	}
	r.ReturnStatus = models.ReturnStatusRejected
	r.ReturnRemarks = remarks
	return nil
}

func (f *fakeRequestRepo) FindActiveByItemAndUser(ctx context.Context, itemID, userID uint) (*models.BorrowRequest, error) {
	f.s.mu.Lock()
	defer f.s.mu.Unlock()
	for _, r := range f.s.requests {
		if r.ItemID != itemID || r.RequestedByID != userID {
			continue
		}
		if (r.Status == models.RequestStatusPending || r.Status == models.RequestStatusApproved) && !r.ReturnApproved {
			return copyRequest(r), nil
		}
	}
	return nil, nil
}

func (f *fakeRequestRepo) FindActiveByItem(ctx context.Context, itemID uint) (*models.BorrowRequest, error) {
	f.s.mu.Lock()
	defer f.s.mu.Unlock()
	for _, r := range f.s.requests {
		if r.ItemID == itemID && r.Status == models.RequestStatusApproved && !r.ReturnApproved {
			return copyRequest(r), nil
		}
	}
	return nil, nil
}

func (f *fakeRequestRepo) ListByUser(ctx context.Context, userID uint) ([]*models.BorrowRequest, error) {
	f.s.mu.Lock()
	defer f.s.mu.Unlock()
	var result []*models.BorrowRequest
	for _, r := range f.s.requests {
		if r.RequestedByID == userID {
			result = append(result, copyRequest(r))
		}
	}
	sort.Slice(result, func(i, j int) bool { return result[i].CreatedAt.After(result[j].CreatedAt) })
	return result, nil
}

func (f *fakeRequestRepo) ListAll(ctx context.Context) ([]*models.BorrowRequest, error) {
	f.s.mu.Lock()
	defer f.s.mu.Unlock()
	var result []*models.BorrowRequest
	for _, r := range f.s.requests {
		result = append(result, copyRequest(r))
	}
	sort.Slice(result, func(i, j int) bool { return result[i].CreatedAt.After(result[j].CreatedAt) })
	return result, nil
}

func (f *fakeRequestRepo) ListOverdue(ctx context.Context, cutoff time.Time) ([]*models.BorrowRequest, error) {
	f.s.mu.Lock()
	defer f.s.mu.Unlock()
	var result []*models.BorrowRequest
	for _, r := range f.s.requests {
		if r.Status == models.RequestStatusApproved && !r.ReturnApproved &&
			r.BorrowDate != nil && r.BorrowDate.Before(cutoff) {
			result = append(result, copyRequest(r))
		}
	}
	return result, nil
}

type fakeTxRunner struct {
	items    *fakeItemRepo
	requests *fakeRequestRepo
}

func (f *fakeTxRunner) InTx(ctx context.Context, fn func(repositories.ItemRepository, repositories.BorrowRequestRepository) error) error {
	return fn(f.items, f.requests)
}

func newTestBorrowService() (*BorrowService, *fakeStore) {
	store := newFakeStore()
	items := &fakeItemRepo{s: store}
	requests := &fakeRequestRepo{s: store}
	tx := &fakeTxRunner{items: items, requests: requests}
	return NewBorrowService(items, requests, tx), store
}

func availableItem(id uint) *models.Item {
	return &models.Item{
		ID:       id,
		ItemName: "Projector",
		SerialNo: "SN-100",
		Model:    "X200",
		Status:   models.ItemStatusAvailable,
	}
}

var (
	deptUser   = domain.Actor{UserID: 10, Role: domain.RoleDepartment}
	otherUser  = domain.Actor{UserID: 11, Role: domain.RoleDepartment}
	adminUser  = domain.Actor{UserID: 1, Role: domain.RoleAdmin}
	adminUser2 = domain.Actor{UserID: 2, Role: domain.RoleAdmin}
)

func TestCreateRequestDepartmentPending(t *testing.T) {
	svc, store := newTestBorrowService()
	store.addItem(availableItem(1))

	request, err := svc.CreateRequest(context.Background(), &CreateRequestInput{ItemID: 1, Reason: "  demo lecture  "}, deptUser)
	if err != nil {
		t.Fatalf("CreateRequest failed: %v", err)
	}

	if request.Status != models.RequestStatusPending {
		t.Errorf("status = %q, want pending", request.Status)
	}
	if request.Reason != "demo lecture" {
		t.Errorf("reason = %q, want trimmed", request.Reason)
	}
	if request.BorrowDate != nil {
		t.Error("pending request should have no borrow date")
	}
	if store.items[1].Status != models.ItemStatusAvailable {
		t.Errorf("item status = %q, want available", store.items[1].Status)
	}
}

func TestCreateRequestAdminAutoApprove(t *testing.T) {
	svc, store := newTestBorrowService()
	store.addItem(availableItem(1))

	request, err := svc.CreateRequest(context.Background(), &CreateRequestInput{ItemID: 1, Reason: "maintenance check"}, adminUser)
	if err != nil {
		t.Fatalf("CreateRequest failed: %v", err)
	}

	if request.Status != models.RequestStatusApproved {
		t.Errorf("status = %q, want approved", request.Status)
	}
	if request.ApprovedByID == nil || *request.ApprovedByID != adminUser.UserID {
		t.Error("approved_by_id should be the admin")
	}
	if request.BorrowDate == nil {
		t.Error("borrow date should be set on auto-approve")
	}
	if store.items[1].Status != models.ItemStatusBorrowed {
		t.Errorf("item status = %q, want borrowed", store.items[1].Status)
	}
}

func TestCreateRequestValidation(t *testing.T) {
	svc, store := newTestBorrowService()
	store.addItem(availableItem(1))

	ctx := context.Background()

	if _, err := svc.CreateRequest(ctx, &CreateRequestInput{ItemID: 1, Reason: "   "}, deptUser); !errors.Is(err, ErrReasonRequired) {
		t.Errorf("blank reason: got %v, want ErrReasonRequired", err)
	}
	if _, err := svc.CreateRequest(ctx, &CreateRequestInput{ItemID: 99, Reason: "need it"}, deptUser); !errors.Is(err, ErrItemNotFound) {
		t.Errorf("missing item: got %v, want ErrItemNotFound", err)
	}
	if _, err := svc.CreateRequest(ctx, &CreateRequestInput{ItemID: 1, Reason: "need it"}, domain.Actor{UserID: 5, Role: "guest"}); !errors.Is(err, ErrInvalidRole) {
		t.Errorf("invalid role: got %v, want ErrInvalidRole", err)
	}

	// Duplicate active request by the same user
	if _, err := svc.CreateRequest(ctx, &CreateRequestInput{ItemID: 1, Reason: "need it"}, deptUser); err != nil {
		t.Fatalf("first request failed: %v", err)
	}
	if _, err := svc.CreateRequest(ctx, &CreateRequestInput{ItemID: 1, Reason: "need it again"}, deptUser); !errors.Is(err, ErrDuplicateRequest) {
		t.Errorf("duplicate: got %v, want ErrDuplicateRequest", err)
	}

	// Borrowed item rejects new requests outright
	store.items[1].Status = models.ItemStatusBorrowed
	if _, err := svc.CreateRequest(ctx, &CreateRequestInput{ItemID: 1, Reason: "need it"}, otherUser); !errors.Is(err, ErrItemBorrowed) {
		t.Errorf("borrowed item: got %v, want ErrItemBorrowed", err)
	}
}

func TestDecideRequestApprove(t *testing.T) {
	svc, store := newTestBorrowService()
	store.addItem(availableItem(1))

	ctx := context.Background()
	request, err := svc.CreateRequest(ctx, &CreateRequestInput{ItemID: 1, Reason: "need it"}, deptUser)
	if err != nil {
		t.Fatalf("CreateRequest failed: %v", err)
	}

	if _, err := svc.DecideRequest(ctx, request.ID, &DecideRequestInput{Action: ActionApprove}, deptUser); !errors.Is(err, ErrNotAuthorized) {
		t.Errorf("non-admin decision: got %v, want ErrNotAuthorized", err)
	}
	if _, err := svc.DecideRequest(ctx, request.ID, &DecideRequestInput{Action: "maybe"}, adminUser); !errors.Is(err, ErrInvalidAction) {
		t.Errorf("bad action: got %v, want ErrInvalidAction", err)
	}

	result, err := svc.DecideRequest(ctx, request.ID, &DecideRequestInput{Action: ActionApprove}, adminUser)
	if err != nil {
		t.Fatalf("approve failed: %v", err)
	}
	if result.Request.Status != models.RequestStatusApproved {
		t.Errorf("status = %q, want approved", result.Request.Status)
	}
	if result.Request.BorrowDate == nil {
		t.Error("borrow date should be set on approval")
	}
	if store.items[1].Status != models.ItemStatusBorrowed {
		t.Errorf("item status = %q, want borrowed", store.items[1].Status)
	}

	// Approving again is a conflict
	if _, err := svc.DecideRequest(ctx, request.ID, &DecideRequestInput{Action: ActionApprove}, adminUser); !errors.Is(err, ErrAlreadyApproved) {
		t.Errorf("double approve: got %v, want ErrAlreadyApproved", err)
	}
}

func TestDecideRequestReject(t *testing.T) {
	svc, store := newTestBorrowService()
	store.addItem(availableItem(1))

	ctx := context.Background()
	request, _ := svc.CreateRequest(ctx, &CreateRequestInput{ItemID: 1, Reason: "need it"}, deptUser)

	result, err := svc.DecideRequest(ctx, request.ID, &DecideRequestInput{Action: ActionReject, AdminRemarks: "not this week"}, adminUser)
	if err != nil {
		t.Fatalf("reject failed: %v", err)
	}
	if result.Request.Status != models.RequestStatusRejected {
		t.Errorf("status = %q, want rejected", result.Request.Status)
	}
	if result.Request.AdminRemarks != "not this week" {
		t.Errorf("remarks = %q", result.Request.AdminRemarks)
	}
	if store.items[1].Status != models.ItemStatusAvailable {
		t.Error("rejection must not touch the item")
	}

	// Rejected is terminal
	if _, err := svc.DecideRequest(ctx, request.ID, &DecideRequestInput{Action: ActionApprove}, adminUser); !errors.Is(err, ErrRequestClosed) {
		t.Errorf("decide on closed: got %v, want ErrRequestClosed", err)
	}
}

func TestDecideRequestApproveConflict(t *testing.T) {
	svc, store := newTestBorrowService()
	store.addItem(availableItem(1))

	ctx := context.Background()
	first, _ := svc.CreateRequest(ctx, &CreateRequestInput{ItemID: 1, Reason: "need it"}, deptUser)
	second, _ := svc.CreateRequest(ctx, &CreateRequestInput{ItemID: 1, Reason: "me too"}, otherUser)

	if _, err := svc.DecideRequest(ctx, first.ID, &DecideRequestInput{Action: ActionApprove}, adminUser); err != nil {
		t.Fatalf("first approve failed: %v", err)
	}
	if _, err := svc.DecideRequest(ctx, second.ID, &DecideRequestInput{Action: ActionApprove}, adminUser); !errors.Is(err, ErrItemBorrowed) {
		t.Errorf("second approve: got %v, want ErrItemBorrowed", err)
	}

	// The losing request is untouched and can still be rejected
	if got, _ := svc.requests.GetByID(ctx, second.ID); got.Status != models.RequestStatusPending {
		t.Errorf("losing request status = %q, want pending", got.Status)
	}
}

func TestReturnRoundTrip(t *testing.T) {
	svc, store := newTestBorrowService()
	store.addItem(availableItem(1))

	ctx := context.Background()
	request, _ := svc.CreateRequest(ctx, &CreateRequestInput{ItemID: 1, Reason: "field work"}, deptUser)
	if _, err := svc.DecideRequest(ctx, request.ID, &DecideRequestInput{Action: ActionApprove}, adminUser); err != nil {
		t.Fatalf("approve failed: %v", err)
	}

	// Stranger cannot start the return
	if _, err := svc.RequestReturn(ctx, request.ID, otherUser); !errors.Is(err, ErrNotAuthorized) {
		t.Errorf("stranger return: got %v, want ErrNotAuthorized", err)
	}

	updated, err := svc.RequestReturn(ctx, request.ID, deptUser)
	if err != nil {
		t.Fatalf("RequestReturn failed: %v", err)
	}
	if !updated.ReturnRequested || updated.ReturnApproved {
		t.Error("return should be requested but not approved")
	}
	if updated.ReturnStatus != models.ReturnStatusRequested {
		t.Errorf("return status = %q, want requested", updated.ReturnStatus)
	}
	if store.items[1].Status != models.ItemStatusBorrowed {
		t.Error("item must stay borrowed until the return is confirmed")
	}

	// Second return request is a conflict
	if _, err := svc.RequestReturn(ctx, request.ID, deptUser); !errors.Is(err, ErrReturnAlreadyRequested) {
		t.Errorf("double return request: got %v, want ErrReturnAlreadyRequested", err)
	}

	confirmed, err := svc.ConfirmReturn(ctx, request.ID, adminUser)
	if err != nil {
		t.Fatalf("ConfirmReturn failed: %v", err)
	}
	if !confirmed.ReturnApproved || confirmed.ReturnedDate == nil {
		t.Error("confirmed return should be approved with a returned date")
	}
	if store.items[1].Status != models.ItemStatusAvailable {
		t.Error("item should be available after confirmed return")
	}

	// The item can be borrowed again by anyone, including the same user
	if _, err := svc.CreateRequest(ctx, &CreateRequestInput{ItemID: 1, Reason: "round two"}, deptUser); err != nil {
		t.Errorf("re-borrow after return: %v", err)
	}
}

func TestRequestReturnAdminShortcut(t *testing.T) {
	svc, store := newTestBorrowService()
	store.addItem(availableItem(1))

	ctx := context.Background()
	request, _ := svc.CreateRequest(ctx, &CreateRequestInput{ItemID: 1, Reason: "calibration"}, adminUser)

	updated, err := svc.RequestReturn(ctx, request.ID, adminUser2)
	if err != nil {
		t.Fatalf("admin RequestReturn failed: %v", err)
	}
	if !updated.ReturnApproved || updated.ReturnStatus != models.ReturnStatusApproved {
		t.Error("admin return should be confirmed immediately")
	}
	if store.items[1].Status != models.ItemStatusAvailable {
		t.Error("item should be available after admin return")
	}
}

func TestRejectReturn(t *testing.T) {
	svc, store := newTestBorrowService()
	store.addItem(availableItem(1))

	ctx := context.Background()
	request, _ := svc.CreateRequest(ctx, &CreateRequestInput{ItemID: 1, Reason: "lab session"}, deptUser)
	svc.DecideRequest(ctx, request.ID, &DecideRequestInput{Action: ActionApprove}, adminUser)

	// No return requested yet
	if _, err := svc.RejectReturn(ctx, request.ID, &RejectReturnInput{}, adminUser); !errors.Is(err, ErrNoReturnRequested) {
		t.Errorf("premature reject: got %v, want ErrNoReturnRequested", err)
	}

	svc.RequestReturn(ctx, request.ID, deptUser)

	rejected, err := svc.RejectReturn(ctx, request.ID, &RejectReturnInput{}, adminUser)
	if err != nil {
		t.Fatalf("RejectReturn failed: %v", err)
	}
	if rejected.ReturnStatus != models.ReturnStatusRejected {
		t.Errorf("return status = %q, want rejected", rejected.ReturnStatus)
	}
	if rejected.ReturnRemarks != "Return rejected." {
		t.Errorf("default remark = %q", rejected.ReturnRemarks)
	}
	if store.items[1].Status != models.ItemStatusBorrowed {
		t.Error("item must stay borrowed after return rejection")
	}

	// The pending return can still be confirmed later
	if _, err := svc.ConfirmReturn(ctx, request.ID, adminUser); err != nil {
		t.Errorf("confirm after reject: %v", err)
	}
}

func TestCancelRequest(t *testing.T) {
	svc, store := newTestBorrowService()
	store.addItem(availableItem(1))
	store.addItem(&models.Item{ID: 2, ItemName: "Camera", SerialNo: "SN-200", Model: "C1", Status: models.ItemStatusAvailable})

	ctx := context.Background()
	pending, _ := svc.CreateRequest(ctx, &CreateRequestInput{ItemID: 1, Reason: "need it"}, deptUser)
	approved, _ := svc.CreateRequest(ctx, &CreateRequestInput{ItemID: 2, Reason: "need both"}, deptUser)
	svc.DecideRequest(ctx, approved.ID, &DecideRequestInput{Action: ActionApprove}, adminUser)

	if err := svc.CancelRequest(ctx, approved.ID, deptUser); !errors.Is(err, ErrRequestNotPending) {
		t.Errorf("cancel approved: got %v, want ErrRequestNotPending", err)
	}
	if err := svc.CancelRequest(ctx, pending.ID, otherUser); !errors.Is(err, ErrNotAuthorized) {
		t.Errorf("cancel by stranger: got %v, want ErrNotAuthorized", err)
	}
	if err := svc.CancelRequest(ctx, pending.ID, deptUser); err != nil {
		t.Fatalf("owner cancel failed: %v", err)
	}
	if _, err := svc.requests.GetByID(ctx, pending.ID); !errors.Is(err, gorm.ErrRecordNotFound) {
		t.Error("cancelled request should be gone")
	}

	// Repeating the cancel reports the same "not pending" conflict
	if err := svc.CancelRequest(ctx, pending.ID, deptUser); !errors.Is(err, ErrRequestNotPending) {
		t.Errorf("repeat cancel: got %v, want ErrRequestNotPending", err)
	}
}

func TestCancelRequestRaceWithApprove(t *testing.T) {
	svc, store := newTestBorrowService()
	store.addItem(availableItem(1))

	ctx := context.Background()
	pending, _ := svc.CreateRequest(ctx, &CreateRequestInput{ItemID: 1, Reason: "need it"}, deptUser)

	// An approval commits in the window between the cancel's read and its
	// delete. The conditional delete must then match nothing.
	requests := svc.requests.(*fakeRequestRepo)
	requests.afterGet = func() {
		if _, err := svc.DecideRequest(ctx, pending.ID, &DecideRequestInput{Action: ActionApprove}, adminUser); err != nil {
			t.Fatalf("interleaved approve failed: %v", err)
		}
	}

	if err := svc.CancelRequest(ctx, pending.ID, deptUser); !errors.Is(err, ErrRequestNotPending) {
		t.Errorf("cancel after interleaved approve: got %v, want ErrRequestNotPending", err)
	}

	got, err := svc.requests.GetByID(ctx, pending.ID)
	if err != nil {
		t.Fatalf("approved request must survive the losing cancel: %v", err)
	}
	if got.Status != models.RequestStatusApproved {
		t.Errorf("request status = %q, want approved", got.Status)
	}
	if store.items[1].Status != models.ItemStatusBorrowed {
		t.Error("borrowed item must keep its active request")
	}
}

func TestRejectReturnRaceWithConfirm(t *testing.T) {
	svc, store := newTestBorrowService()
	store.addItem(availableItem(1))

	ctx := context.Background()
	request, _ := svc.CreateRequest(ctx, &CreateRequestInput{ItemID: 1, Reason: "lab session"}, deptUser)
	svc.DecideRequest(ctx, request.ID, &DecideRequestInput{Action: ActionApprove}, adminUser)
	svc.RequestReturn(ctx, request.ID, deptUser)

	// A confirmation commits in the window between the rejection's read and
	// its write. The stale rejection must lose, not resurrect the request.
	requests := svc.requests.(*fakeRequestRepo)
	requests.afterGet = func() {
		if _, err := svc.ConfirmReturn(ctx, request.ID, adminUser2); err != nil {
			t.Fatalf("interleaved confirm failed: %v", err)
		}
	}

	if _, err := svc.RejectReturn(ctx, request.ID, &RejectReturnInput{ReturnRemarks: "come back later"}, adminUser); !errors.Is(err, ErrRequestClosed) {
		t.Errorf("reject after interleaved confirm: got %v, want ErrRequestClosed", err)
	}

	got, err := svc.requests.GetByID(ctx, request.ID)
	if err != nil {
		t.Fatalf("GetByID failed: %v", err)
	}
	if !got.ReturnApproved || got.ReturnedDate == nil || got.ReturnStatus != models.ReturnStatusApproved {
		t.Errorf("confirmed return must survive the losing rejection, got %+v", got)
	}
	if store.items[1].Status != models.ItemStatusAvailable {
		t.Error("item should stay available after the losing rejection")
	}
}

func TestConfirmReturnTerminal(t *testing.T) {
	svc, store := newTestBorrowService()
	store.addItem(availableItem(1))

	ctx := context.Background()
	request, _ := svc.CreateRequest(ctx, &CreateRequestInput{ItemID: 1, Reason: "workshop"}, deptUser)
	svc.DecideRequest(ctx, request.ID, &DecideRequestInput{Action: ActionApprove}, adminUser)
	svc.RequestReturn(ctx, request.ID, deptUser)

	if _, err := svc.ConfirmReturn(ctx, request.ID, adminUser); err != nil {
		t.Fatalf("first confirm failed: %v", err)
	}
	if _, err := svc.ConfirmReturn(ctx, request.ID, adminUser); !errors.Is(err, ErrRequestClosed) {
		t.Errorf("second confirm: got %v, want ErrRequestClosed", err)
	}
	if _, err := svc.RequestReturn(ctx, request.ID, deptUser); !errors.Is(err, ErrReturnAlreadyRequested) {
		t.Errorf("return after close: got %v, want ErrReturnAlreadyRequested", err)
	}
	if _, err := svc.RejectReturn(ctx, request.ID, &RejectReturnInput{}, adminUser); !errors.Is(err, ErrRequestClosed) {
		t.Errorf("reject return after close: got %v, want ErrRequestClosed", err)
	}
	if _, err := svc.DecideRequest(ctx, request.ID, &DecideRequestInput{Action: ActionReject}, adminUser); !errors.Is(err, ErrRequestClosed) {
		t.Errorf("decide after close: got %v, want ErrRequestClosed", err)
	}
}

func TestConcurrentApproveSingleWinner(t *testing.T) {
	svc, store := newTestBorrowService()
	store.addItem(availableItem(1))

	ctx := context.Background()
	first, _ := svc.CreateRequest(ctx, &CreateRequestInput{ItemID: 1, Reason: "need it"}, deptUser)
	second, _ := svc.CreateRequest(ctx, &CreateRequestInput{ItemID: 1, Reason: "me too"}, otherUser)

	var wg sync.WaitGroup
	errs := make([]error, 2)
	for i, id := range []uint{first.ID, second.ID} {
		wg.Add(1)
		go func(i int, id uint) {
			defer wg.Done()
			_, errs[i] = svc.DecideRequest(ctx, id, &DecideRequestInput{Action: ActionApprove}, adminUser)
		}(i, id)
	}
	wg.Wait()

	var wins, conflicts int
	for _, err := range errs {
		switch {
		case err == nil:
			wins++
		case errors.Is(err, ErrItemBorrowed):
			conflicts++
		default:
			t.Fatalf("unexpected error: %v", err)
		}
	}
	if wins != 1 || conflicts != 1 {
		t.Errorf("wins = %d, conflicts = %d, want exactly one of each", wins, conflicts)
	}
	if store.items[1].Status != models.ItemStatusBorrowed {
		t.Error("item should be borrowed by the single winner")
	}
}

func TestListAvailableItemsBorrowerAttached(t *testing.T) {
	svc, store := newTestBorrowService()
	store.addItem(availableItem(1))
	store.addItem(&models.Item{ID: 2, ItemName: "Camera", SerialNo: "SN-200", Model: "C1", Status: models.ItemStatusAvailable})

	ctx := context.Background()
	request, _ := svc.CreateRequest(ctx, &CreateRequestInput{ItemID: 1, Reason: "need it"}, deptUser)
	svc.DecideRequest(ctx, request.ID, &DecideRequestInput{Action: ActionApprove}, adminUser)

	// Attach the requester identity the way a Preload would
	store.mu.Lock()
	store.requests[request.ID].RequestedBy = &models.User{ID: deptUser.UserID, Name: "Dana", Email: "dana@assetdesk.local"}
	store.mu.Unlock()

	items, err := svc.ListAvailableItems(ctx)
	if err != nil {
		t.Fatalf("ListAvailableItems failed: %v", err)
	}
	if len(items) != 2 {
		t.Fatalf("got %d items, want 2", len(items))
	}

	for _, entry := range items {
		switch entry.ID {
		case 1:
			if entry.BorrowedBy == nil || entry.BorrowedBy.Name != "Dana" || entry.BorrowedBy.Email != "dana@assetdesk.local" {
				t.Errorf("borrowed item should carry borrower identity, got %+v", entry.BorrowedBy)
			}
		case 2:
			if entry.BorrowedBy != nil {
				t.Error("available item should have no borrower")
			}
		}
	}
}

func TestListAllRequestsAdminOnly(t *testing.T) {
	svc, store := newTestBorrowService()
	store.addItem(availableItem(1))

	ctx := context.Background()
	if _, err := svc.ListAllRequests(ctx, deptUser); !errors.Is(err, ErrNotAuthorized) {
		t.Errorf("department listing all: got %v, want ErrNotAuthorized", err)
	}
	if _, err := svc.ListAllRequests(ctx, adminUser); err != nil {
		t.Errorf("admin listing all: %v", err)
	}
}
