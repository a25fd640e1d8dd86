package state

import (
	"context"
	"errors"
	"net/http"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"rentadm/api"
	"rentadm/workflow"
)

type fakeBuildings struct {
	page    api.Page[api.Building]
	deleted []int64
	err     error
}

func (f *fakeBuildings) ListBuildings(ctx context.Context, q api.ListQuery) (api.Page[api.Building], error) {
	return f.page, f.err
}

func (f *fakeBuildings) GetBuilding(ctx context.Context, id int64) (api.Building, error) {
	return api.Building{ID: id, Name: "Fetched"}, f.err
}

func (f *fakeBuildings) CreateBuilding(ctx context.Context, input api.BuildingInput, image *api.File) (api.Building, error) {
	return api.Building{ID: 99, Name: input.Name}, f.err
}

func (f *fakeBuildings) UpdateBuilding(ctx context.Context, id int64, input api.BuildingInput, image *api.File) (api.Building, error) {
	return api.Building{ID: id, Name: input.Name}, f.err
}

func (f *fakeBuildings) DeleteBuilding(ctx context.Context, id int64) error {
	f.deleted = append(f.deleted, id)
	return f.err
}

func TestFetchKeepsResponseOrderAndPagination(t *testing.T) {
	svc := &fakeBuildings{page: api.Page[api.Building]{
		Content:       []api.Building{{ID: 3, Name: "C"}, {ID: 1, Name: "A"}, {ID: 2, Name: "B"}},
		Number:        1,
		TotalPages:    3,
		TotalElements: 25,
	}}
	buildings := NewBuildings(svc)
	assert.Equal(t, StatusIdle, buildings.Status())

	require.NoError(t, buildings.Fetch(context.Background(), api.ListQuery{Page: 1}))

	ids := []int64{}
	for _, b := range buildings.Items() {
		ids = append(ids, b.ID)
	}
	assert.Equal(t, []int64{3, 1, 2}, ids)
	assert.Equal(t, Pagination{CurrentPage: 1, TotalPages: 3, TotalElements: 25}, buildings.Pagination())
	assert.Equal(t, StatusSucceeded, buildings.Status())
}

func TestCreateUpdateDelete(t *testing.T) {
	svc := &fakeBuildings{page: api.Page[api.Building]{
		Content:       []api.Building{{ID: 1, Name: "A"}, {ID: 2, Name: "B"}},
		TotalPages:    1,
		TotalElements: 2,
	}}
	buildings := NewBuildings(svc)
	ctx := context.Background()
	require.NoError(t, buildings.Fetch(ctx, api.ListQuery{}))

	created, err := buildings.Create(ctx, api.BuildingInput{Name: "New"}, nil)
	require.NoError(t, err)
	assert.Equal(t, int64(99), created.ID)
	assert.Equal(t, int64(3), buildings.Pagination().TotalElements)

	_, err = buildings.Update(ctx, 1, api.BuildingInput{Name: "A2"}, nil)
	require.NoError(t, err)
	got, ok := buildings.ByID(1)
	require.True(t, ok)
	assert.Equal(t, "A2", got.Name)
	assert.Len(t, buildings.Items(), 3)

	require.NoError(t, buildings.Delete(ctx, 2))
	_, ok = buildings.ByID(2)
	assert.False(t, ok)
	assert.Equal(t, int64(2), buildings.Pagination().TotalElements)
	assert.Equal(t, []int64{2}, svc.deleted)
}

func TestFetchByIDMergesWithoutCounting(t *testing.T) {
	buildings := NewBuildings(&fakeBuildings{})
	_, err := buildings.FetchByID(context.Background(), 5)
	require.NoError(t, err)
	_, ok := buildings.ByID(5)
	assert.True(t, ok)
	assert.Equal(t, int64(0), buildings.Pagination().TotalElements)
}

func TestFailureKeepsServerMessage(t *testing.T) {
	svc := &fakeBuildings{err: &api.Error{StatusCode: http.StatusConflict, Message: "Building has rooms"}}
	buildings := NewBuildings(svc)

	err := buildings.Delete(context.Background(), 1)
	var opErr *OpError
	require.ErrorAs(t, err, &opErr)
	assert.Equal(t, "Building has rooms", opErr.Message)
	assert.True(t, api.IsStatus(err, http.StatusConflict))
	assert.Equal(t, StatusFailed, buildings.Status())
	assert.Equal(t, "Building has rooms", buildings.Err())

	svc.err = errors.New("connection refused")
	err = buildings.Fetch(context.Background(), api.ListQuery{})
	require.Error(t, err)
	assert.Equal(t, "failed to fetch buildings", buildings.Err())
}

type fakeContracts struct {
	mu      sync.Mutex
	current api.Contract
	calls   []string
	block   chan struct{}
}

func (f *fakeContracts) record(call string) {
	f.mu.Lock()
	f.calls = append(f.calls, call)
	f.mu.Unlock()
}

func (f *fakeContracts) ListContracts(ctx context.Context, q api.ListQuery) (api.Page[api.Contract], error) {
	return api.Page[api.Contract]{Content: []api.Contract{f.current}, TotalPages: 1, TotalElements: 1}, nil
}

func (f *fakeContracts) GetContract(ctx context.Context, id int64) (api.Contract, error) {
	f.record("get")
	return f.current, nil
}

func (f *fakeContracts) CreateContract(ctx context.Context, input api.ContractInput) (api.Contract, error) {
	return api.Contract{ID: 50, RoomID: input.RoomID, Status: api.ContractDraft}, nil
}

func (f *fakeContracts) DeleteContract(ctx context.Context, id int64) error {
	return nil
}

func (f *fakeContracts) transition(name string, to api.ContractStatus) (api.Contract, error) {
	f.record(name)
	if f.block != nil {
		<-f.block
	}
	c := f.current
	c.Status = to
	return c, nil
}

func (f *fakeContracts) SendForSigning(ctx context.Context, id int64) (api.Contract, error) {
	return f.transition("send-for-signing", api.ContractWaitingSignatures)
}

func (f *fakeContracts) ApproveSignature(ctx context.Context, id int64) (api.Contract, error) {
	return f.transition("approve-signature", api.ContractActive)
}

func (f *fakeContracts) RequestTermination(ctx context.Context, id int64) (api.Contract, error) {
	return f.transition("request-termination", api.ContractPendingTermination)
}

func (f *fakeContracts) ConfirmTermination(ctx context.Context, id int64) (api.Contract, error) {
	return f.transition("confirm-termination", api.ContractTerminated)
}

func (f *fakeContracts) UploadContractFile(ctx context.Context, id int64, file *api.File) (api.Contract, error) {
	f.record("upload")
	c := f.current
	c.ContractFileURL = "https://cdn/" + file.Name
	return c, nil
}

func (f *fakeContracts) ParseContractFile(ctx context.Context, file *api.File) (api.ContractInput, error) {
	return api.ContractInput{RoomID: 4, TenantID: 8, RentAmount: 3000000}, nil
}

func TestContractTransitionFromSourceState(t *testing.T) {
	svc := &fakeContracts{current: api.Contract{ID: 7, Status: api.ContractDraft}}
	contracts := NewContracts(svc)
	ctx := context.Background()

	updated, err := contracts.Transition(ctx, 7, workflow.ActionSendForSigning)
	require.NoError(t, err)
	assert.Equal(t, api.ContractWaitingSignatures, updated.Status)
	assert.Equal(t, []string{"get", "send-for-signing"}, svc.calls)

	cached, ok := contracts.ByID(7)
	require.True(t, ok)
	assert.Equal(t, api.ContractWaitingSignatures, cached.Status)
}

func TestContractTransitionRefusedOutsideSourceState(t *testing.T) {
	svc := &fakeContracts{current: api.Contract{ID: 7, Status: api.ContractActive}}
	contracts := NewContracts(svc)
	require.NoError(t, contracts.Fetch(context.Background(), api.ListQuery{}))

	_, err := contracts.Transition(context.Background(), 7, workflow.ActionConfirmTermination)
	assert.ErrorIs(t, err, workflow.ErrActionNotAllowed)
	assert.Empty(t, svc.calls)

	_, err = contracts.UploadFile(context.Background(), 7, &api.File{Name: "lease.pdf"})
	assert.ErrorIs(t, err, workflow.ErrActionNotAllowed)
	assert.False(t, contracts.Pending(7))
}

func TestContractActionPendingPerID(t *testing.T) {
	svc := &fakeContracts{current: api.Contract{ID: 7, Status: api.ContractActive}, block: make(chan struct{})}
	contracts := NewContracts(svc)
	require.NoError(t, contracts.Fetch(context.Background(), api.ListQuery{}))

	done := make(chan error, 1)
	go func() {
		_, err := contracts.Transition(context.Background(), 7, workflow.ActionRequestTermination)
		done <- err
	}()

	require.Eventually(t, func() bool { return contracts.Pending(7) }, time.Second, 5*time.Millisecond)
	_, err := contracts.Transition(context.Background(), 7, workflow.ActionRequestTermination)
	assert.ErrorIs(t, err, ErrActionPending)

	close(svc.block)
	require.NoError(t, <-done)
	assert.False(t, contracts.Pending(7))
}

func TestParseContractFile(t *testing.T) {
	contracts := NewContracts(&fakeContracts{})
	draft, err := contracts.ParseFile(context.Background(), &api.File{Name: "scan.pdf"})
	require.NoError(t, err)
	assert.Equal(t, int64(4), draft.RoomID)
	assert.Empty(t, contracts.Items())
}

type fakeBilling struct {
	invoice   api.Invoice
	readings  []api.MeterReading
	generated []api.GenerateInvoiceRequest
	listCalls int
}

func (f *fakeBilling) ListInvoices(ctx context.Context, q api.ListQuery) (api.Page[api.Invoice], error) {
	return api.Page[api.Invoice]{Content: []api.Invoice{f.invoice}, TotalPages: 1, TotalElements: 1}, nil
}

func (f *fakeBilling) GetInvoice(ctx context.Context, id int64) (api.Invoice, error) {
	return f.invoice, nil
}

func (f *fakeBilling) ConfirmInvoicePayment(ctx context.Context, id int64) (api.Invoice, error) {
	inv := f.invoice
	inv.Status = api.InvoicePaid
	return inv, nil
}

func (f *fakeBilling) ListMeterReadings(ctx context.Context, roomID int64) ([]api.MeterReading, error) {
	f.listCalls++
	return f.readings, nil
}

func (f *fakeBilling) RecordMeterReading(ctx context.Context, roomID int64, input api.MeterReadingInput, electricImage, waterImage *api.File) (api.MeterReading, error) {
	return api.MeterReading{ID: 30, RoomID: roomID, ReadingMonth: input.ReadingMonth}, nil
}

func (f *fakeBilling) GenerateInvoice(ctx context.Context, payload api.GenerateInvoiceRequest) (api.Invoice, error) {
	f.generated = append(f.generated, payload)
	for i := range f.readings {
		f.readings[i].InvoiceGenerated = true
	}
	return api.Invoice{ID: 500, ContractID: payload.ContractID, Status: api.InvoicePending}, nil
}

func TestConfirmPaymentOnlyWhenWaiting(t *testing.T) {
	svc := &fakeBilling{invoice: api.Invoice{ID: 12, Status: api.InvoicePending}}
	invoices := NewInvoices(svc)

	_, err := invoices.ConfirmPayment(context.Background(), 12)
	assert.ErrorIs(t, err, workflow.ErrActionNotAllowed)

	svc.invoice.Status = api.InvoiceWaitingConfirmation
	require.NoError(t, invoices.Fetch(context.Background(), api.ListQuery{}))
	paid, err := invoices.ConfirmPayment(context.Background(), 12)
	require.NoError(t, err)
	assert.Equal(t, api.InvoicePaid, paid.Status)
	cached, _ := invoices.ByID(12)
	assert.Equal(t, api.InvoicePaid, cached.Status)
}

func TestGenerateInvoiceRefetchesReadings(t *testing.T) {
	svc := &fakeBilling{readings: []api.MeterReading{{ID: 1, RoomID: 4}}}
	invoices := NewInvoices(svc)
	readings := NewMeterReadings(svc, invoices)
	ctx := context.Background()

	require.NoError(t, readings.Fetch(ctx, 4))
	reading := readings.Items()[0]

	inv, err := readings.GenerateInvoice(ctx, reading, api.GenerateInvoiceRequest{ContractID: 3, PeriodMonth: 9, PeriodYear: 2026})
	require.NoError(t, err)
	assert.Equal(t, int64(500), inv.ID)
	assert.Equal(t, 2, svc.listCalls)
	assert.True(t, readings.Items()[0].InvoiceGenerated)

	_, ok := invoices.ByID(500)
	assert.True(t, ok)

	_, err = readings.GenerateInvoice(ctx, readings.Items()[0], api.GenerateInvoiceRequest{ContractID: 3})
	assert.ErrorIs(t, err, workflow.ErrInvoiceAlreadyGenerated)
	assert.Len(t, svc.generated, 1)
}

func TestRecordReadingPrependsForSameRoom(t *testing.T) {
	svc := &fakeBilling{readings: []api.MeterReading{{ID: 1, RoomID: 4}}}
	readings := NewMeterReadings(svc, nil)
	ctx := context.Background()
	require.NoError(t, readings.Fetch(ctx, 4))

	_, err := readings.Record(ctx, 4, api.MeterReadingInput{ReadingMonth: 10}, nil, nil)
	require.NoError(t, err)
	assert.Equal(t, int64(30), readings.Items()[0].ID)

	_, err = readings.Record(ctx, 6, api.MeterReadingInput{ReadingMonth: 10}, nil, nil)
	require.NoError(t, err)
	assert.Len(t, readings.Items(), 2)
}

type fakeNotifications struct {
	marked []int64
}

func (f *fakeNotifications) ListNotifications(ctx context.Context, q api.ListQuery) (api.Page[api.Notification], error) {
	return api.Page[api.Notification]{
		Content:       []api.Notification{{ID: 1, Message: "old", IsRead: true}, {ID: 2, Message: "new"}},
		TotalPages:    1,
		TotalElements: 2,
	}, nil
}

func (f *fakeNotifications) UnreadNotificationCount(ctx context.Context) (int, error) {
	return 1, nil
}

func (f *fakeNotifications) MarkNotificationRead(ctx context.Context, id int64) error {
	f.marked = append(f.marked, id)
	return nil
}

func TestNotificationsReceiveAndMarkRead(t *testing.T) {
	svc := &fakeNotifications{}
	n := NewNotifications(svc)
	fixed := time.Date(2026, 10, 15, 8, 30, 0, 0, time.UTC)
	n.now = func() time.Time { return fixed }
	ctx := context.Background()

	require.NoError(t, n.Fetch(ctx, api.ListQuery{}))
	count, err := n.FetchUnreadCount(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, count)

	pushed := n.Receive("NEW_INVOICE", "Invoice #500 issued", "/invoices/500")
	assert.Equal(t, fixed.UnixMilli(), pushed.ID)
	assert.False(t, pushed.IsRead)
	assert.Equal(t, "2026-10-15T08:30:00Z", pushed.CreatedAt)
	assert.Equal(t, 2, n.Unread())
	assert.Equal(t, pushed, n.Items()[0])

	require.NoError(t, n.MarkRead(ctx, 1))
	assert.Equal(t, 2, n.Unread())

	require.NoError(t, n.MarkRead(ctx, 2))
	require.NoError(t, n.MarkRead(ctx, 2))
	assert.Equal(t, 1, n.Unread())

	require.NoError(t, n.MarkRead(ctx, pushed.ID))
	assert.Equal(t, 0, n.Unread())
	require.NoError(t, n.MarkRead(ctx, 404))
	assert.Equal(t, 0, n.Unread())

	n.Reset()
	assert.Empty(t, n.Items())
	assert.Equal(t, StatusIdle, n.Status())
}

type fakeAdmin struct {
	settings []api.SystemSetting
	requests []api.UserRequest
	resolved []int64
	lists    int
}

func (f *fakeAdmin) ListSettings(ctx context.Context) ([]api.SystemSetting, error) {
	f.lists++
	return f.settings, nil
}

func (f *fakeAdmin) UpdateSettings(ctx context.Context, values map[string]string) error {
	for i := range f.settings {
		if v, ok := values[f.settings[i].Key]; ok {
			f.settings[i].Value = v
		}
	}
	return nil
}

func (f *fakeAdmin) ListUserRequests(ctx context.Context) ([]api.UserRequest, error) {
	return f.requests, nil
}

func (f *fakeAdmin) ApproveUserRequest(ctx context.Context, id int64) error {
	f.resolved = append(f.resolved, id)
	return nil
}

func (f *fakeAdmin) RejectUserRequest(ctx context.Context, id int64) error {
	return &api.Error{StatusCode: http.StatusBadRequest, Message: "Request already resolved"}
}

func TestSettingsUpdateRefetches(t *testing.T) {
	svc := &fakeAdmin{settings: []api.SystemSetting{{Key: workflow.SettingElectricityPrice, Value: "3500"}}}
	settings := NewSettings(svc)
	ctx := context.Background()

	require.NoError(t, settings.Fetch(ctx))
	require.NoError(t, settings.Update(ctx, map[string]string{workflow.SettingElectricityPrice: "4000"}))
	assert.Equal(t, 2, svc.lists)
	v, ok := settings.Value(workflow.SettingElectricityPrice)
	assert.True(t, ok)
	assert.Equal(t, "4000", v)
	assert.Equal(t, StatusSucceeded, settings.Status())
}

func TestUserRequestsLeaveListWhenResolved(t *testing.T) {
	svc := &fakeAdmin{requests: []api.UserRequest{{ID: 1}, {ID: 2}}}
	requests := NewUserRequests(svc)
	ctx := context.Background()
	require.NoError(t, requests.Fetch(ctx))

	require.NoError(t, requests.Approve(ctx, 1))
	assert.Len(t, requests.Items(), 1)

	err := requests.Reject(ctx, 2)
	require.Error(t, err)
	assert.Equal(t, "Request already resolved", requests.Err())
	assert.Len(t, requests.Items(), 1)
}

type fakeAuth struct {
	profile  api.UserProfile
	loginErr error
}

func (f *fakeAuth) Login(ctx context.Context, email, password string) error {
	return f.loginErr
}

func (f *fakeAuth) Logout(ctx context.Context) error {
	return nil
}

func (f *fakeAuth) Profile(ctx context.Context) (api.UserProfile, error) {
	if f.profile.ID == 0 {
		return api.UserProfile{}, &api.Error{StatusCode: http.StatusUnauthorized}
	}
	return f.profile, nil
}

func TestSessionLoginAndLogout(t *testing.T) {
	auth := &fakeAuth{profile: api.UserProfile{ID: 1, Email: "admin@example.com", Role: api.RoleAdmin}}
	session := NewSession(auth)
	notifications := NewNotifications(&fakeNotifications{})
	session.OnLogout(notifications.Reset)
	notifications.IncrementUnread()

	user, err := session.Login(context.Background(), "admin@example.com", "secret")
	require.NoError(t, err)
	assert.Equal(t, api.RoleAdmin, user.Role)
	assert.True(t, session.IsAuthenticated())

	require.NoError(t, session.Logout(context.Background()))
	assert.False(t, session.IsAuthenticated())
	_, ok := session.User()
	assert.False(t, ok)
	assert.Equal(t, 0, notifications.Unread())
}

func TestSessionLoginFailure(t *testing.T) {
	auth := &fakeAuth{loginErr: &api.Error{StatusCode: http.StatusUnauthorized, Message: "Bad credentials"}}
	session := NewSession(auth)

	_, err := session.Login(context.Background(), "a@b.c", "nope")
	require.Error(t, err)
	assert.Equal(t, "Bad credentials", session.Err())
	assert.Equal(t, StatusFailed, session.Status())
	assert.False(t, session.IsAuthenticated())
}

func TestStoreExpiresSessionWhenRefreshFails(t *testing.T) {
	client := api.NewClient("http://127.0.0.1:1", nil)
	store := NewStore(client)
	store.Session.Restore(api.UserProfile{ID: 1, Role: api.RoleAdmin})
	store.Notifications.IncrementUnread()

	client.OnSessionExpired()
	assert.False(t, store.Session.IsAuthenticated())
	assert.Equal(t, 0, store.Notifications.Unread())
}
