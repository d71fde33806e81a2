package session

import (
	"encoding/json"
	"errors"
	"io/fs"
	"os"
	"path/filepath"

	"go.uber.org/zap"

	"github.com/shauryatech/notifyctl/internal/model"
)

// credsFile mirrors the keys the platform's web client keeps in browser
// storage: auth_token, client_id and the JSON-encoded user object.
type credsFile struct {
	AuthToken string     `json:"auth_token"`
	ClientID  string     `json:"client_id"`
	UserData  model.User `json:"user_data"`
}

func cfgDir() string {
	if v := os.Getenv("XDG_CONFIG_HOME"); v != "" {
		return filepath.Join(v, "notifyctl")
	}
	home, _ := os.UserHomeDir()
	return filepath.Join(home, ".config", "notifyctl")
}

func credsPath() string { return filepath.Join(cfgDir(), "credentials.json") }

// Save writes credentials for later restoration. Called on login.
func Save(token, clientID string, user model.User) error {
	_ = os.MkdirAll(cfgDir(), 0o700)
	f, err := os.OpenFile(credsPath(), os.O_CREATE|os.O_TRUNC|os.O_WRONLY, 0o600)
	if err != nil {
		return err
	}
	defer f.Close()
	enc := json.NewEncoder(f)
	enc.SetIndent("", "  ")
	return enc.Encode(credsFile{AuthToken: token, ClientID: clientID, UserData: user})
}

// Clear removes persisted credentials. Called on logout.
func Clear() error {
	err := os.Remove(credsPath())
	if errors.Is(err, fs.ErrNotExist) {
		return nil
	}
	return err
}

// Restore loads persisted credentials into the store. Missing or unparsable
// data ends in an explicit logged-out, not-loading state; a corrupt file is
// removed so the next run starts clean. Never returns an error: startup must
// not fail because of stale local state.
func Restore(st *Store, logger *zap.Logger) {
	b, err := os.ReadFile(credsPath())
	if err != nil {
		st.Logout()
		return
	}
	var cf credsFile
	if err := json.Unmarshal(b, &cf); err != nil {
		logger.Warn("discarding unparsable stored credentials", zap.Error(err))
		_ = Clear()
		st.Logout()
		return
	}
	if cf.AuthToken == "" || cf.UserData.UserID == "" {
		st.Logout()
		return
	}
	st.InitializeFromPersistence(cf.AuthToken, cf.ClientID, cf.UserData)
}
