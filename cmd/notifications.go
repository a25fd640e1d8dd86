package cmd

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"io"
	"time"

	"rentadm/api"
	"rentadm/notify"
	"rentadm/state"
	"rentadm/storage"

	"github.com/gorilla/websocket"
	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"
)

func notificationsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:     "notifications",
		Aliases: []string{"notif"},
		Short:   "Read and follow notifications",
	}

	cmd.AddCommand(notificationsListCmd())
	cmd.AddCommand(notificationsUnreadCmd())
	cmd.AddCommand(notificationsReadCmd())
	cmd.AddCommand(notificationsWatchCmd())
	return cmd
}

func notificationRow(n api.Notification) string {
	mark := " "
	if !n.IsRead {
		mark = "*"
	}
	return fmt.Sprintf("%s\t%d\t%s\t%s\t%s\t%s", mark, n.ID, n.Type, n.Message, n.Link, formatDateTime(n.CreatedAt))
}

const notificationHeader = "\tID\tTYPE\tMESSAGE\tLINK\tCREATED"

func notificationsListCmd() *cobra.Command {
	var q api.ListQuery
	var offline bool
	var unreadOnly bool

	cmd := &cobra.Command{
		Use:         "list",
		Short:       "List notifications, newest first",
		Annotations: routed("/notifications"),
		RunE: func(cmd *cobra.Command, args []string) error {
			if offline {
				return listCachedNotifications(cmd, q.Size, unreadOnly)
			}
			if err := store.Notifications.Fetch(cmd.Context(), apiQuery(q)); err != nil {
				return err
			}
			items := store.Notifications.Items()
			cacheNotifications(items, "api")
			if unreadOnly {
				items = filterUnread(items)
			}
			l := listing[api.Notification]{Items: items, Pagination: store.Notifications.Pagination()}
			return renderListing(cmd.OutOrStdout(), l, notificationHeader, "No notifications.", notificationRow)
		},
	}

	listFlags(cmd, &q, &offline)
	cmd.Flags().Lookup("offline").Usage = "Read notifications kept in the local cache"
	cmd.Flags().BoolVar(&unreadOnly, "unread", false, "Only unread notifications")
	return cmd
}

func filterUnread(items []api.Notification) []api.Notification {
	unread := make([]api.Notification, 0, len(items))
	for _, n := range items {
		if !n.IsRead {
			unread = append(unread, n)
		}
	}
	return unread
}

func listCachedNotifications(cmd *cobra.Command, limit int, unreadOnly bool) error {
	var cached []storage.CachedNotification
	err := withCache(func(db *sql.DB) error {
		var err error
		cached, err = storage.ListNotifications(db, storage.NotificationFilter{UnreadOnly: unreadOnly, Limit: limit})
		return err
	})
	if err != nil {
		return err
	}
	items := make([]api.Notification, 0, len(cached))
	for _, c := range cached {
		items = append(items, api.Notification{
			ID:        c.ID,
			Type:      c.Type,
			Message:   c.Message,
			Link:      c.Link,
			IsRead:    c.IsRead,
			CreatedAt: c.CreatedAt,
		})
	}
	l := listing[api.Notification]{
		Items:      items,
		Pagination: state.Pagination{TotalPages: 1, TotalElements: int64(len(items))},
		Cached:     true,
	}
	if outputJSON {
		return writeJSON(cmd.OutOrStdout(), l)
	}
	l.Cached = false
	return renderListing(cmd.OutOrStdout(), l, notificationHeader, "No cached notifications.", notificationRow)
}

// cacheNotifications is best effort, like list snapshots.
func cacheNotifications(items []api.Notification, source string) {
	err := withCache(func(db *sql.DB) error {
		for _, n := range items {
			if _, err := storage.AddNotificationIfNotExists(db, storage.CachedNotification{
				ID:        n.ID,
				Type:      n.Type,
				Message:   n.Message,
				Link:      n.Link,
				IsRead:    n.IsRead,
				CreatedAt: n.CreatedAt,
				Source:    source,
			}); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		logger.Debug("notification cache failed", "err", err)
	}
}

func notificationsUnreadCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:         "unread",
		Short:       "Show the unread count",
		Annotations: routed("/notifications"),
		RunE: func(cmd *cobra.Command, args []string) error {
			count, err := store.Notifications.FetchUnreadCount(cmd.Context())
			if err != nil {
				return err
			}
			if outputJSON {
				return writeJSON(cmd.OutOrStdout(), map[string]int{"unread": count})
			}
			fmt.Fprintln(cmd.OutOrStdout(), count)
			return nil
		},
	}

	return cmd
}

func notificationsReadCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:         "read <id>",
		Short:       "Mark a notification as read",
		Args:        cobra.ExactArgs(1),
		Annotations: routed("/notifications"),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseID(args[0])
			if err != nil {
				return err
			}
			if err := store.Notifications.MarkRead(cmd.Context(), id); err != nil {
				return err
			}
			if err := withCache(func(db *sql.DB) error {
				_, err := storage.MarkNotificationRead(db, id)
				return err
			}); err != nil {
				logger.Debug("notification cache failed", "err", err)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Marked notification #%d as read.\n", id)
			return nil
		},
	}

	return cmd
}

func notificationsWatchCmd() *cobra.Command {
	var duration time.Duration

	cmd := &cobra.Command{
		Use:         "watch",
		Short:       "Print notifications as they are pushed",
		Annotations: routed("/notifications"),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			if duration > 0 {
				var cancel context.CancelFunc
				ctx, cancel = context.WithTimeout(ctx, duration)
				defer cancel()
			}

			g, gctx := errgroup.WithContext(ctx)
			events := make(chan api.Notification, 16)
			channel := watchChannel(cmd.ErrOrStderr(), func(n api.Notification) {
				select {
				case events <- n:
				case <-gctx.Done():
				}
			})

			g.Go(func() error {
				defer close(events)
				return channel.Run(gctx)
			})
			g.Go(func() error {
				out := cmd.OutOrStdout()
				for n := range events {
					cacheNotifications([]api.Notification{n}, "socket")
					if outputJSON {
						if err := writeJSON(out, n); err != nil {
							return err
						}
						continue
					}
					fmt.Fprintf(out, "[%s] %s %s\n", formatDateTime(n.CreatedAt), n.Message, n.Link)
				}
				return nil
			})

			err := g.Wait()
			if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
				return nil
			}
			return err
		},
	}

	cmd.Flags().DurationVar(&duration, "for", 0, "Stop after this long (default: until interrupted)")
	return cmd
}

// watchChannel builds the live feed for the current session. Logging out or
// an expired session closes it.
func watchChannel(errOut io.Writer, deliver func(api.Notification)) *notify.Channel {
	channel := &notify.Channel{
		URL:            cfg.WSURL,
		Dialer:         &websocket.Dialer{Jar: jar, HandshakeTimeout: cfg.Timeout},
		ReconnectDelay: cfg.ReconnectDelay,
		Authenticated:  store.Session.IsAuthenticated,
		Logger:         logger,
		Toast: func(string) {
			if !outputJSON {
				fmt.Fprint(errOut, "\a")
			}
		},
		Handler: func(ev notify.Event) {
			deliver(store.Notifications.Receive(ev.Type, ev.Message, ev.Link))
		},
	}
	store.Session.OnLogout(channel.Close)
	return channel
}
