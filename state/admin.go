package state

import (
	"context"
	"sync"

	"rentadm/api"
)

type SettingService interface {
	ListSettings(ctx context.Context) ([]api.SystemSetting, error)
	UpdateSettings(ctx context.Context, values map[string]string) error
}

// Settings are keyed by name rather than id, so they keep their own list.
type Settings struct {
	svc SettingService

	mu     sync.RWMutex
	items  []api.SystemSetting
	status Status
	err    string
}

func NewSettings(svc SettingService) *Settings {
	return &Settings{svc: svc, status: StatusIdle}
}

func (s *Settings) Items() []api.SystemSetting {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return append([]api.SystemSetting(nil), s.items...)
}

func (s *Settings) Value(key string) (string, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, item := range s.items {
		if item.Key == key {
			return item.Value, true
		}
	}
	return "", false
}

func (s *Settings) Status() Status {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.status
}

func (s *Settings) Err() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.err
}

func (s *Settings) setStatus(status Status, message string) {
	s.mu.Lock()
	s.status = status
	s.err = message
	s.mu.Unlock()
}

func (s *Settings) Fetch(ctx context.Context) error {
	s.setStatus(StatusLoading, "")
	items, err := s.svc.ListSettings(ctx)
	if err != nil {
		msg := api.Message(err, "failed to fetch settings")
		s.setStatus(StatusFailed, msg)
		return &OpError{Message: msg, Err: err}
	}
	s.mu.Lock()
	s.items = items
	s.status = StatusSucceeded
	s.err = ""
	s.mu.Unlock()
	return nil
}

// Update saves the values and reloads the list, since the backend returns no
// body for the update.
func (s *Settings) Update(ctx context.Context, values map[string]string) error {
	s.setStatus(StatusLoading, "")
	if err := s.svc.UpdateSettings(ctx, values); err != nil {
		msg := api.Message(err, "failed to update settings")
		s.setStatus(StatusFailed, msg)
		return &OpError{Message: msg, Err: err}
	}
	s.setStatus(StatusIdle, "")
	return s.Fetch(ctx)
}

type UserRequestService interface {
	ListUserRequests(ctx context.Context) ([]api.UserRequest, error)
	ApproveUserRequest(ctx context.Context, id int64) error
	RejectUserRequest(ctx context.Context, id int64) error
}

// UserRequests holds the pending requests. A resolved request leaves the
// list.
type UserRequests struct {
	*Collection[api.UserRequest]
	pending

	svc UserRequestService
}

func NewUserRequests(svc UserRequestService) *UserRequests {
	return &UserRequests{
		Collection: NewCollection(func(r api.UserRequest) int64 { return r.ID }),
		svc:        svc,
	}
}

func (s *UserRequests) Fetch(ctx context.Context) error {
	return track(s.Collection, "failed to fetch requests", func() error {
		requests, err := s.svc.ListUserRequests(ctx)
		if err != nil {
			return err
		}
		s.replace(requests)
		return nil
	})
}

func (s *UserRequests) Approve(ctx context.Context, id int64) error {
	return s.resolve(ctx, id, "approve", s.svc.ApproveUserRequest)
}

func (s *UserRequests) Reject(ctx context.Context, id int64) error {
	return s.resolve(ctx, id, "reject", s.svc.RejectUserRequest)
}

func (s *UserRequests) resolve(ctx context.Context, id int64, verb string, call func(context.Context, int64) error) error {
	if err := s.acquire(id, verb); err != nil {
		return err
	}
	defer s.release(id)
	return track(s.Collection, "failed to "+verb+" request", func() error {
		if err := call(ctx, id); err != nil {
			return err
		}
		s.remove(id)
		return nil
	})
}

type DashboardService interface {
	Dashboard(ctx context.Context) (api.Dashboard, error)
}

type DashboardView struct {
	svc DashboardService

	mu     sync.RWMutex
	data   api.Dashboard
	status Status
	err    string
}

func NewDashboardView(svc DashboardService) *DashboardView {
	return &DashboardView{svc: svc, status: StatusIdle}
}

func (d *DashboardView) Fetch(ctx context.Context) (api.Dashboard, error) {
	d.mu.Lock()
	d.status = StatusLoading
	d.err = ""
	d.mu.Unlock()

	data, err := d.svc.Dashboard(ctx)

	d.mu.Lock()
	defer d.mu.Unlock()
	if err != nil {
		d.status = StatusFailed
		d.err = api.Message(err, "failed to fetch dashboard data")
		return api.Dashboard{}, &OpError{Message: d.err, Err: err}
	}
	d.data = data
	d.status = StatusSucceeded
	return data, nil
}

func (d *DashboardView) Data() api.Dashboard {
	d.mu.RLock()
	defer d.mu.RUnlock()
	return d.data
}

func (d *DashboardView) Status() Status {
	d.mu.RLock()
	defer d.mu.RUnlock()
	return d.status
}
