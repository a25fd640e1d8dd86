package storage

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/url"
	"os"
	"sort"
	"strings"
)

var (
	ErrProfileExists   = errors.New("profile already exists")
	ErrProfileNotFound = errors.New("profile not found")
)

// Profile is a saved backend the console can point at.
type Profile struct {
	Alias  string `json:"alias"`
	APIURL string `json:"api_url"`
	WSURL  string `json:"ws_url"`
}

// Validate checks the alias is a single word and both URLs can be dialed.
// WSURL may be empty.
func (p Profile) Validate() error {
	if p.Alias == "" {
		return errors.New("profile alias is required")
	}
	if strings.ContainsAny(p.Alias, " \t\n/") {
		return fmt.Errorf("profile alias %q must be a single word", p.Alias)
	}
	if err := checkEndpoint(p.APIURL, "http", "https"); err != nil {
		return fmt.Errorf("profile %s api url: %w", p.Alias, err)
	}
	if p.WSURL == "" {
		return nil
	}
	if err := checkEndpoint(p.WSURL, "ws", "wss"); err != nil {
		return fmt.Errorf("profile %s socket url: %w", p.Alias, err)
	}
	return nil
}

// SocketURL is WSURL, or the backend's /ws endpoint on the API host, with the
// scheme secured to match the API.
func (p Profile) SocketURL() string {
	if p.WSURL != "" {
		return p.WSURL
	}
	u, err := url.Parse(p.APIURL)
	if err != nil || u.Host == "" {
		return ""
	}
	scheme := "ws"
	if u.Scheme == "https" {
		scheme = "wss"
	}
	return (&url.URL{Scheme: scheme, Host: u.Host, Path: "/ws"}).String()
}

func checkEndpoint(raw string, schemes ...string) error {
	u, err := url.Parse(raw)
	if err != nil {
		return err
	}
	if u.Host == "" {
		return fmt.Errorf("missing host in %q", raw)
	}
	for _, scheme := range schemes {
		if u.Scheme == scheme {
			return nil
		}
	}
	return fmt.Errorf("unsupported scheme %q in %q", u.Scheme, raw)
}

type ProfilesFile struct {
	Profiles []Profile `json:"profiles"`
}

func LoadProfiles() ([]Profile, error) {
	path, err := ProfilesPath()
	if err != nil {
		return nil, err
	}

	info, err := os.Stat(path)
	if err != nil {
		if os.IsNotExist(err) {
			return []Profile{}, nil
		}
		return nil, err
	}
	if info.IsDir() {
		return nil, fmt.Errorf("profiles path is a directory: %s", path)
	}

	file, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer file.Close()

	var payload ProfilesFile
	if err := json.NewDecoder(file).Decode(&payload); err != nil {
		return nil, err
	}
	return payload.Profiles, nil
}

func SaveProfiles(profiles []Profile) error {
	if _, err := ensureConfigDir(); err != nil {
		return err
	}

	path, err := ProfilesPath()
	if err != nil {
		return err
	}

	sorted := make([]Profile, len(profiles))
	copy(sorted, profiles)
	sort.Slice(sorted, func(i, j int) bool {
		return strings.ToLower(sorted[i].Alias) < strings.ToLower(sorted[j].Alias)
	})

	file, err := os.Create(path)
	if err != nil {
		return err
	}
	defer file.Close()

	encoder := json.NewEncoder(file)
	encoder.SetIndent("", "  ")
	return encoder.Encode(ProfilesFile{Profiles: sorted})
}

func FindProfileByAlias(profiles []Profile, alias string) (Profile, bool) {
	needle := strings.ToLower(strings.TrimSpace(alias))
	for _, profile := range profiles {
		if strings.ToLower(profile.Alias) == needle {
			return profile, true
		}
	}
	return Profile{}, false
}

// AddProfile validates p and appends it unless the alias is taken.
func AddProfile(profiles []Profile, p Profile) ([]Profile, error) {
	p.Alias = strings.TrimSpace(p.Alias)
	p.APIURL = strings.TrimRight(strings.TrimSpace(p.APIURL), "/")
	p.WSURL = strings.TrimSpace(p.WSURL)
	if err := p.Validate(); err != nil {
		return profiles, err
	}
	if _, ok := FindProfileByAlias(profiles, p.Alias); ok {
		return profiles, fmt.Errorf("%w: %s", ErrProfileExists, p.Alias)
	}
	return append(profiles, p), nil
}

func RemoveProfile(profiles []Profile, alias string) ([]Profile, error) {
	needle := strings.TrimSpace(alias)
	for i, profile := range profiles {
		if strings.EqualFold(profile.Alias, needle) {
			kept := make([]Profile, 0, len(profiles)-1)
			kept = append(kept, profiles[:i]...)
			return append(kept, profiles[i+1:]...), nil
		}
	}
	return profiles, fmt.Errorf("%w: %s", ErrProfileNotFound, needle)
}
