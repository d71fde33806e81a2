package session

import (
	"os"
	"path/filepath"
	"testing"

	"go.uber.org/zap"

	"github.com/shauryatech/notifyctl/internal/model"
)

var testUser = model.User{UserID: "u1", Email: "a@b.c", ClientID: "c1"}

func TestStore_AuthDerivedFromTokenAndUser(t *testing.T) {
	t.Parallel()
	st := NewStore()
	if st.IsAuthenticated() {
		t.Fatalf("fresh store must be unauthenticated")
	}
	if !st.Loading() {
		t.Fatalf("fresh store must be loading")
	}

	st.Login("tok", "c1", testUser)
	if !st.IsAuthenticated() {
		t.Fatalf("authenticated after login")
	}
	if st.Loading() {
		t.Fatalf("login must clear loading")
	}
	if st.Token() != "tok" || st.ClientID() != "c1" {
		t.Fatalf("token/clientID lost")
	}
	u, ok := st.User()
	if !ok || u != testUser {
		t.Fatalf("user lost: %+v", u)
	}

	st.Logout()
	if st.IsAuthenticated() {
		t.Fatalf("unauthenticated after logout")
	}
	if st.Token() != "" || st.ClientID() != "" {
		t.Fatalf("logout must clear credentials")
	}
	if _, ok := st.User(); ok {
		t.Fatalf("logout must clear user")
	}
}

func TestStore_EmptyTokenNeverAuthenticated(t *testing.T) {
	t.Parallel()
	st := NewStore()
	st.Login("", "c1", testUser)
	if st.IsAuthenticated() {
		t.Fatalf("empty token must not authenticate")
	}
}

func TestRestore_RoundTrip(t *testing.T) {
	t.Setenv("XDG_CONFIG_HOME", t.TempDir())

	if err := Save("tok", "c1", testUser); err != nil {
		t.Fatalf("Save: %v", err)
	}
	st := NewStore()
	Restore(st, zap.NewNop())
	if !st.IsAuthenticated() {
		t.Fatalf("restore must authenticate")
	}
	if st.Token() != "tok" || st.ClientID() != "c1" {
		t.Fatalf("restored wrong credentials")
	}
	u, _ := st.User()
	if u != testUser {
		t.Fatalf("restored wrong user: %+v", u)
	}
}

func TestRestore_MissingFile(t *testing.T) {
	t.Setenv("XDG_CONFIG_HOME", t.TempDir())

	st := NewStore()
	Restore(st, zap.NewNop())
	if st.Loading() {
		t.Fatalf("restore must end the loading state")
	}
	if st.IsAuthenticated() {
		t.Fatalf("nothing persisted, must stay unauthenticated")
	}
}

func TestRestore_CorruptFileRemoved(t *testing.T) {
	dir := t.TempDir()
	t.Setenv("XDG_CONFIG_HOME", dir)

	path := filepath.Join(dir, "notifyctl", "credentials.json")
	if err := os.MkdirAll(filepath.Dir(path), 0o700); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(path, []byte("{not json"), 0o600); err != nil {
		t.Fatal(err)
	}

	st := NewStore()
	Restore(st, zap.NewNop())
	if st.IsAuthenticated() || st.Loading() {
		t.Fatalf("corrupt file must leave a logged-out, not-loading store")
	}
	if _, err := os.Stat(path); !os.IsNotExist(err) {
		t.Fatalf("corrupt file should be removed, stat err=%v", err)
	}
}

func TestClear_NoFileIsFine(t *testing.T) {
	t.Setenv("XDG_CONFIG_HOME", t.TempDir())
	if err := Clear(); err != nil {
		t.Fatalf("Clear without file: %v", err)
	}
}
