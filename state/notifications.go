package state

import (
	"context"
	"time"

	"rentadm/api"
)

type NotificationService interface {
	ListNotifications(ctx context.Context, q api.ListQuery) (api.Page[api.Notification], error)
	UnreadNotificationCount(ctx context.Context) (int, error)
	MarkNotificationRead(ctx context.Context, id int64) error
}

type Notifications struct {
	*Collection[api.Notification]

	svc    NotificationService
	now    func() time.Time
	unread int
}

func NewNotifications(svc NotificationService) *Notifications {
	return &Notifications{
		Collection: NewCollection(func(n api.Notification) int64 { return n.ID }),
		svc:        svc,
		now:        time.Now,
	}
}

func (s *Notifications) Fetch(ctx context.Context, q api.ListQuery) error {
	return track(s.Collection, "failed to fetch notifications", func() error {
		page, err := s.svc.ListNotifications(ctx, q)
		if err != nil {
			return err
		}
		s.applyPage(page)
		return nil
	})
}

func (s *Notifications) FetchUnreadCount(ctx context.Context) (int, error) {
	count, err := s.svc.UnreadNotificationCount(ctx)
	if err != nil {
		return 0, &OpError{Message: api.Message(err, "failed to fetch unread count"), Err: err}
	}
	s.mu.Lock()
	s.unread = count
	s.mu.Unlock()
	return count, nil
}

func (s *Notifications) Unread() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.unread
}

func (s *Notifications) IncrementUnread() {
	s.mu.Lock()
	s.unread++
	s.mu.Unlock()
}

func (s *Notifications) Prepend(n api.Notification) {
	s.prepend(n)
}

// Receive records a pushed notification. The push carries no id, so one is
// taken from the clock.
func (s *Notifications) Receive(kind, message, link string) api.Notification {
	at := s.now()
	n := api.Notification{
		ID:        at.UnixMilli(),
		Type:      kind,
		Message:   message,
		Link:      link,
		IsRead:    false,
		CreatedAt: at.Format(time.RFC3339),
	}
	s.IncrementUnread()
	s.prepend(n)
	return n
}

// MarkRead only lowers the unread count when the cached item was unread.
func (s *Notifications) MarkRead(ctx context.Context, id int64) error {
	if err := s.svc.MarkNotificationRead(ctx, id); err != nil {
		return &OpError{Message: api.Message(err, "failed to mark notification as read"), Err: err}
	}
	wasUnread := false
	s.update(id, func(n *api.Notification) {
		if !n.IsRead {
			n.IsRead = true
			wasUnread = true
		}
	})
	if wasUnread {
		s.mu.Lock()
		if s.unread > 0 {
			s.unread--
		}
		s.mu.Unlock()
	}
	return nil
}

func (s *Notifications) Reset() {
	s.reset()
	s.mu.Lock()
	s.unread = 0
	s.mu.Unlock()
}
