package coach_test

import (
	"context"
	"net/http/httptest"
	"net/url"
	"os"
	"path/filepath"
	"regexp"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	coachhttp "github.com/quierolab/quiero/internal/coach/http"
	"github.com/quierolab/quiero/internal/coach/service"
	"github.com/quierolab/quiero/internal/coach/store"
	"github.com/quierolab/quiero/internal/coach/store/drivers/sqlite"
	"github.com/quierolab/quiero/pkg/cryptox"
	"github.com/quierolab/quiero/pkg/idx"
	"github.com/quierolab/quiero/pkg/jwtx"
	"github.com/quierolab/quiero/pkg/slogx"

	"github.com/quierolab/quiero/internal/coach/domain"
)

func TestMain(m *testing.M) {
	dir, err := os.MkdirTemp("", "coach-e2e")
	if err != nil {
		panic(err)
	}
	cryptox.SetPepperPath(filepath.Join(dir, "pepper"))

	code := m.Run()
	_ = os.RemoveAll(dir)
	os.Exit(code)
}

// mailbox records outgoing mail so tests can fish emailed tokens back out.
type mailbox struct {
	mu   sync.Mutex
	mail []recordedMail
}

type recordedMail struct {
	To      string
	Subject string
	Body    string
}

func (m *mailbox) Send(_ context.Context, to, subject, body string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.mail = append(m.mail, recordedMail{To: to, Subject: subject, Body: body})
	return nil
}

func (m *mailbox) latestTo(t *testing.T, addr string) recordedMail {
	t.Helper()
	m.mu.Lock()
	defer m.mu.Unlock()
	for i := len(m.mail) - 1; i >= 0; i-- {
		if m.mail[i].To == addr {
			return m.mail[i]
		}
	}
	t.Fatalf("no mail recorded for %s", addr)
	return recordedMail{}
}

var tokenLinkRe = regexp.MustCompile(`token=([A-Za-z0-9_%-]+)`)

// tokenFromMail extracts the raw token from an emailed link.
func tokenFromMail(t *testing.T, mail recordedMail) string {
	t.Helper()
	m := tokenLinkRe.FindStringSubmatch(mail.Body)
	require.Len(t, m, 2, "mail should carry a token link")
	token, err := url.QueryUnescape(m[1])
	require.NoError(t, err)
	return token
}

type testEnv struct {
	Server  *httptest.Server
	Store   store.Store
	Mailbox *mailbox
}

// setupServer wires a full stack (in-memory sqlite, ephemeral keys, recorded
// mail) behind an httptest server.
func setupServer(t *testing.T) *testEnv {
	t.Helper()

	st, err := sqlite.NewStore(":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { _ = st.Close() })
	require.NoError(t, st.ApplyMigrations())

	km, err := jwtx.NewKeyManager("e2e-issuer")
	require.NoError(t, err)

	box := &mailbox{}

	routing := &service.RoutingService{Store: st, Delay: time.Millisecond}

	logger := slogx.New(slogx.Config{
		Service: "coach-service",
		Version: "test",
		Env:     "dev",
		Level:   "error",
		Format:  "text",
	})

	router := coachhttp.NewRouter(km.KeySet, km.Verifier, "test", "https://front.test", st, logger, "*")
	router.AuthService = &service.AuthService{
		Store:      st,
		Signer:     km.Signer,
		Routing:    routing,
		Issuer:     "e2e-issuer",
		AccessTTL:  time.Minute,
		RefreshTTL: time.Hour,
	}
	router.RoutingService = routing
	router.CoacheeService = &service.CoacheeService{Store: st}
	router.InvitationService = &service.InvitationService{
		Store:   st,
		Mailer:  box,
		BaseURL: "https://front.test",
	}
	router.PasswordResetService = &service.PasswordResetService{
		Store:   st,
		Mailer:  box,
		BaseURL: "https://front.test",
	}
	router.GoalService = &service.GoalService{Store: st}
	router.ActionService = &service.ActionService{Store: st}
	router.SettingsService = &service.SettingsService{Store: st}
	router.UserService = &service.UserService{Store: st}
	router.ApplyRoutes()

	srv := httptest.NewServer(router)
	t.Cleanup(srv.Close)

	return &testEnv{Server: srv, Store: st, Mailbox: box}
}

// seedCoach creates an active coach account directly in the store.
func (env *testEnv) seedCoach(t *testing.T, email, password string) string {
	t.Helper()
	ctx := context.Background()

	hash, err := cryptox.HashPassword(password)
	require.NoError(t, err)

	user := domain.User{
		ID:           idx.New().String(),
		Email:        email,
		FullName:     "E2E Coach",
		PasswordHash: hash,
		Active:       true,
	}
	require.NoError(t, env.Store.Users().CreateUser(ctx, user))
	require.NoError(t, env.Store.Roles().GrantRole(ctx, user.ID, domain.RoleCoach))
	return user.ID
}
