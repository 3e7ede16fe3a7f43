package remotesync

import (
	"encoding/json"
	"net/http"
	"os"
	"path/filepath"

	"github.com/pkg/errors"
)

type storedCookie struct {
	Name  string `json:"name"`
	Value string `json:"value"`
}

// sessionStore persists the session cookies of a Client to a file readable by its owner only.
type sessionStore struct {
	path string
}

func (s *sessionStore) load() ([]*http.Cookie, error) {
	if s.path == "" {
		return nil, nil
	}
	data, err := os.ReadFile(s.path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, errors.Wrap(err, "reading session file")
	}
	var stored []storedCookie
	if err = json.Unmarshal(data, &stored); err != nil {
		return nil, errors.Wrap(err, "decoding session file")
	}
	cookies := make([]*http.Cookie, 0, len(stored))
	for _, sc := range stored {
		cookies = append(cookies, &http.Cookie{Name: sc.Name, Value: sc.Value, Path: "/"})
	}
	return cookies, nil
}

func (s *sessionStore) save(cookies []*http.Cookie) error {
	if s.path == "" {
		return nil
	}
	stored := make([]storedCookie, 0, len(cookies))
	for _, ck := range cookies {
		stored = append(stored, storedCookie{Name: ck.Name, Value: ck.Value})
	}
	data, err := json.Marshal(stored)
	if err != nil {
		return errors.Wrap(err, "encoding session")
	}
	if err = os.MkdirAll(filepath.Dir(s.path), 0o700); err != nil {
		return errors.Wrap(err, "creating session dir")
	}
	return errors.Wrap(os.WriteFile(s.path, data, 0o600), "writing session file")
}

func (s *sessionStore) clear() error {
	if s.path == "" {
		return nil
	}
	if err := os.Remove(s.path); err != nil && !os.IsNotExist(err) {
		return errors.Wrap(err, "removing session file")
	}
	return nil
}
