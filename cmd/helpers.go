package cmd

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"io"
	"strconv"
	"strings"
	"text/tabwriter"
	"time"

	"rentadm/api"
	"rentadm/state"
	"rentadm/storage"

	"github.com/spf13/cobra"
)

func writeJSON(w io.Writer, v any) error {
	encoder := json.NewEncoder(w)
	encoder.SetIndent("", "  ")
	return encoder.Encode(v)
}

func newTable(w io.Writer) *tabwriter.Writer {
	return tabwriter.NewWriter(w, 2, 2, 2, ' ', 0)
}

// formatPagination renders the zero-based page as 1-based.
func formatPagination(page, totalPages int, total int64) string {
	if totalPages < page+1 {
		totalPages = page + 1
	}
	return fmt.Sprintf("Page %d / %d  Total: %d", page+1, totalPages, total)
}

func parseID(raw string) (int64, error) {
	id, err := strconv.ParseInt(strings.TrimSpace(raw), 10, 64)
	if err != nil || id <= 0 {
		return 0, fmt.Errorf("invalid id %q", raw)
	}
	return id, nil
}

// readOptionalFile loads path, or returns nil when path is empty.
func readOptionalFile(path string) (*api.File, error) {
	if strings.TrimSpace(path) == "" {
		return nil, nil
	}
	return api.ReadFile(path)
}

func formatMoney(amount float64) string {
	whole := strconv.FormatFloat(amount, 'f', 0, 64)
	neg := strings.HasPrefix(whole, "-")
	whole = strings.TrimPrefix(whole, "-")
	var b strings.Builder
	for i, r := range whole {
		if i > 0 && (len(whole)-i)%3 == 0 {
			b.WriteByte(',')
		}
		b.WriteRune(r)
	}
	if neg {
		return "-" + b.String()
	}
	return b.String()
}

func parseAPIDate(input string) (time.Time, bool) {
	if input == "" {
		return time.Time{}, false
	}
	layouts := []string{
		time.RFC3339,
		"2006-01-02T15:04:05",
		"2006-01-02T15:04:05.000000",
		"2006-01-02 15:04:05",
		"2006-01-02",
	}
	for _, layout := range layouts {
		parsed, err := time.Parse(layout, input)
		if err == nil {
			return parsed, true
		}
	}
	return time.Time{}, false
}

func formatDate(input string) string {
	parsed, ok := parseAPIDate(input)
	if !ok {
		return input
	}
	return parsed.Format("2006-01-02")
}

func formatDateTime(input string) string {
	parsed, ok := parseAPIDate(input)
	if !ok {
		return input
	}
	return parsed.Local().Format("2006-01-02 15:04")
}

func listFlags(cmd *cobra.Command, q *api.ListQuery, offline *bool) {
	cmd.Flags().IntVar(&q.Page, "page", 1, "Page number (1-based)")
	cmd.Flags().IntVar(&q.Size, "size", 10, "Page size")
	cmd.Flags().StringVar(&q.Keyword, "keyword", "", "Search keyword")
	cmd.Flags().StringVar(&q.Sort, "sort", "", "Sort, e.g. name,asc")
	cmd.Flags().BoolVar(offline, "offline", false, "Read the last cached page instead of calling the backend")
}

// apiQuery turns the 1-based --page flag into the backend's zero-based page.
func apiQuery(q api.ListQuery) api.ListQuery {
	if q.Page > 0 {
		q.Page--
	}
	return q
}

// listing is one rendered list page, online or from the snapshot cache.
type listing[T any] struct {
	Items      []T              `json:"content"`
	Pagination state.Pagination `json:"pagination"`
	FetchedAt  string           `json:"fetchedAt,omitempty"`
	Cached     bool             `json:"cached,omitempty"`
}

// loadListing fetches a page through the slice and snapshots it, or reads the
// snapshot when offline.
func loadListing[T any](ctx context.Context, resource string, q api.ListQuery, offline bool, c *state.Collection[T], fetch func(context.Context, api.ListQuery) error) (listing[T], error) {
	key := q.Key()
	if offline {
		return readSnapshot[T](resource, key)
	}
	if err := fetch(ctx, q); err != nil {
		return listing[T]{}, err
	}
	l := listing[T]{
		Items:      c.Items(),
		Pagination: c.Pagination(),
		FetchedAt:  time.Now().UTC().Format(time.RFC3339),
	}
	writeSnapshot(resource, key, l)
	return l, nil
}

func readSnapshot[T any](resource, key string) (listing[T], error) {
	db, err := storage.OpenCacheDB()
	if err != nil {
		return listing[T]{}, err
	}
	defer db.Close()

	snap, ok, err := storage.LoadSnapshot(db, resource, key)
	if err != nil {
		return listing[T]{}, err
	}
	if !ok {
		return listing[T]{}, fmt.Errorf("no cached %s for this query; run without --offline first", resource)
	}
	var items []T
	if err := json.Unmarshal(snap.Payload, &items); err != nil {
		return listing[T]{}, fmt.Errorf("decode cached %s: %w", resource, err)
	}
	return listing[T]{
		Items: items,
		Pagination: state.Pagination{
			CurrentPage:   snap.Page,
			TotalPages:    snap.TotalPages,
			TotalElements: snap.TotalElements,
		},
		FetchedAt: snap.FetchedAt,
		Cached:    true,
	}, nil
}

// writeSnapshot is best effort; a cache failure never fails the command.
func writeSnapshot[T any](resource, key string, l listing[T]) {
	payload, err := json.Marshal(l.Items)
	if err != nil {
		logger.Debug("snapshot encode failed", "resource", resource, "err", err)
		return
	}
	err = withCache(func(db *sql.DB) error {
		return storage.SaveSnapshot(db, storage.Snapshot{
			Resource:      resource,
			QueryKey:      key,
			Page:          l.Pagination.CurrentPage,
			TotalPages:    l.Pagination.TotalPages,
			TotalElements: l.Pagination.TotalElements,
			Payload:       payload,
			FetchedAt:     l.FetchedAt,
		})
	})
	if err != nil {
		logger.Debug("snapshot save failed", "resource", resource, "err", err)
	}
}

func withCache(fn func(db *sql.DB) error) error {
	db, err := storage.OpenCacheDB()
	if err != nil {
		return err
	}
	defer db.Close()
	return fn(db)
}

// renderListing prints the JSON form, or a table followed by the pagination
// footer. row returns the tab-separated cells of one item.
func renderListing[T any](w io.Writer, l listing[T], header string, empty string, row func(T) string) error {
	if outputJSON {
		return writeJSON(w, l)
	}
	if len(l.Items) == 0 {
		fmt.Fprintln(w, empty)
		return nil
	}
	writer := newTable(w)
	if !outputCompact {
		fmt.Fprintln(writer, header)
	}
	for _, item := range l.Items {
		fmt.Fprintln(writer, row(item))
	}
	if err := writer.Flush(); err != nil {
		return err
	}
	if !outputCompact {
		fmt.Fprintln(w, formatPagination(l.Pagination.CurrentPage, l.Pagination.TotalPages, l.Pagination.TotalElements))
		if l.Cached {
			fmt.Fprintf(w, "Cached at %s\n", formatDateTime(l.FetchedAt))
		}
	}
	return nil
}

// renderDetail prints v as JSON, or as aligned key/value lines.
func renderDetail(w io.Writer, v any, fields [][2]string) error {
	if outputJSON {
		return writeJSON(w, v)
	}
	writer := newTable(w)
	for _, f := range fields {
		if f[1] == "" && outputCompact {
			continue
		}
		fmt.Fprintf(writer, "%s:\t%s\n", f[0], f[1])
	}
	return writer.Flush()
}
