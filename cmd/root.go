package cmd

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"strings"
	"time"

	"rentadm/api"
	"rentadm/config"
	"rentadm/guard"
	"rentadm/state"
	"rentadm/storage"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
	"golang.org/x/time/rate"
)

// routeAnnotation names the console route a command opens. Commands without
// one are reachable signed out.
const routeAnnotation = "route"

var (
	outputJSON    bool
	outputCompact bool
	apiURLFlag    string
	wsURLFlag     string
	profileFlag   string

	cfg    config.Config
	logger *slog.Logger
	client *api.Client
	jar    *storage.FileJar
	store  *state.Store
	gate   *guard.Guard
)

func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:   "rentadm",
		Short: "Admin console for the room rental backend",
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if outputJSON && outputCompact {
				return fmt.Errorf("choose either --json or --compact")
			}
			if err := setup(cmd); err != nil {
				return err
			}
			route, ok := routeFor(cmd, args)
			if !ok {
				return nil
			}
			return gate.Enter(cmd.Context(), route)
		},
		PersistentPostRunE: func(cmd *cobra.Command, args []string) error {
			return persistSession()
		},
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	root.PersistentFlags().BoolVar(&outputJSON, "json", false, "Output JSON")
	root.PersistentFlags().BoolVar(&outputCompact, "compact", false, "Output compact text")
	root.PersistentFlags().StringVar(&apiURLFlag, "api-url", "", "Backend API base URL (overrides profile and RENTADM_API_URL)")
	root.PersistentFlags().StringVar(&wsURLFlag, "ws-url", "", "Notification socket URL (overrides profile and RENTADM_WS_URL)")
	root.PersistentFlags().StringVar(&profileFlag, "profile", "", "Saved backend profile alias (default: $RENTADM_PROFILE)")

	root.AddCommand(
		authCmd(),
		profilesCmd(),
		buildingsCmd(),
		roomsCmd(),
		tenantsCmd(),
		contractsCmd(),
		readingsCmd(),
		invoicesCmd(),
		incidentsCmd(),
		settingsCmd(),
		notificationsCmd(),
		requestsCmd(),
		dashboardCmd(),
		cacheCmd(),
	)
	return root
}

func Execute() {
	_ = godotenv.Load()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	root := newRootCmd()
	if err := root.ExecuteContext(ctx); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		stop()
		os.Exit(1)
	}
}

func setup(cmd *cobra.Command) error {
	cfg = config.Load()
	storage.SetConfigDir(cfg.Home)

	alias := profileFlag
	if alias == "" {
		alias = cfg.Profile
	}
	if alias != "" {
		profiles, err := storage.LoadProfiles()
		if err != nil {
			return err
		}
		profile, ok := storage.FindProfileByAlias(profiles, alias)
		if !ok {
			return fmt.Errorf("profile %q not found", alias)
		}
		cfg.APIBaseURL = profile.APIURL
		cfg.WSURL = profile.SocketURL()
	}
	if apiURLFlag != "" {
		cfg.APIBaseURL = apiURLFlag
	}
	if wsURLFlag != "" {
		cfg.WSURL = wsURLFlag
	}
	if err := cfg.Validate(); err != nil {
		return err
	}

	logger = config.NewLogger(cfg.LogLevel, cfg.LogFormat, cmd.ErrOrStderr())

	saved, err := storage.LoadSession()
	if err != nil {
		logger.Warn("ignoring unreadable session file", "err", err)
		saved = nil
	}
	if saved != nil && saved.BaseURL != cfg.APIBaseURL {
		logger.Debug("saved session belongs to another backend", "saved", saved.BaseURL, "current", cfg.APIBaseURL)
		saved = nil
	}

	jar, err = storage.NewFileJar(cfg.APIBaseURL, saved)
	if err != nil {
		return err
	}

	client = api.NewClient(cfg.APIBaseURL, jar)
	client.HTTP.Timeout = cfg.Timeout
	client.Logger = logger
	if cfg.RateLimit > 0 {
		client.Limiter = rate.NewLimiter(rate.Limit(cfg.RateLimit), cfg.RateBurst)
	}
	client.OnSessionExpired = func() {
		logger.Warn("session expired, please log in again")
		if err := storage.ClearSession(); err != nil {
			logger.Warn("clear session", "err", err)
		}
	}

	store = state.NewStore(client)
	if saved != nil && saved.Role != "" {
		store.Session.Restore(api.UserProfile{Email: saved.Email, Role: api.Role(saved.Role)})
	}
	gate = guard.New(store.Session)
	return nil
}

// routeFor fills the ':param' segments of the command's route from its
// positional arguments, in order.
func routeFor(cmd *cobra.Command, args []string) (string, bool) {
	route, ok := cmd.Annotations[routeAnnotation]
	if !ok || route == "" {
		return "", false
	}
	segments := strings.Split(route, "/")
	next := 0
	for i, segment := range segments {
		if !strings.HasPrefix(segment, ":") {
			continue
		}
		if next < len(args) {
			segments[i] = args[next]
			next++
		}
	}
	return strings.Join(segments, "/"), true
}

func routed(route string) map[string]string {
	return map[string]string{routeAnnotation: route}
}

// persistSession keeps the cookies the backend set during this command.
func persistSession() error {
	if store == nil || jar == nil {
		return nil
	}
	user, ok := store.Session.User()
	if !store.Session.IsAuthenticated() || !ok {
		return nil
	}
	return storage.SaveSession(&storage.Session{
		BaseURL: cfg.APIBaseURL,
		Email:   user.Email,
		Role:    string(user.Role),
		Cookies: jar.Saved(),
		SavedAt: time.Now().UTC().Format(time.RFC3339),
	})
}
