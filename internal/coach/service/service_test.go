package service

import (
	"context"
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/quierolab/quiero/internal/coach/domain"
	"github.com/quierolab/quiero/internal/coach/store"
	"github.com/quierolab/quiero/internal/coach/store/drivers/sqlite"
	"github.com/quierolab/quiero/pkg/cryptox"
	"github.com/quierolab/quiero/pkg/idx"
)

func TestMain(m *testing.M) {
	dir, err := os.MkdirTemp("", "coach-service-test")
	if err != nil {
		panic(err)
	}
	cryptox.SetPepperPath(filepath.Join(dir, "pepper"))

	code := m.Run()
	_ = os.RemoveAll(dir)
	os.Exit(code)
}

func newTestStore(t *testing.T) store.Store {
	t.Helper()

	st, err := sqlite.NewStore(":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { _ = st.Close() })

	require.NoError(t, st.ApplyMigrations())
	return st
}

// seedCoach creates an active coach account and returns its user id.
func seedCoach(t *testing.T, st store.Store, email string) string {
	t.Helper()
	ctx := context.Background()

	hash, err := cryptox.HashPassword("coach-password")
	require.NoError(t, err)

	user := domain.User{
		ID:           idx.New().String(),
		Email:        email,
		FullName:     "Test Coach",
		PasswordHash: hash,
		Active:       true,
	}
	require.NoError(t, st.Users().CreateUser(ctx, user))
	require.NoError(t, st.Roles().GrantRole(ctx, user.ID, domain.RoleCoach))
	return user.ID
}

// seedCoachee provisions an inactive coachee under coachID and returns the
// relationship row.
func seedCoachee(t *testing.T, st store.Store, coachID, email string) domain.Coachee {
	t.Helper()

	svc := &CoacheeService{Store: st}
	coachee, err := svc.Create(context.Background(), coachID, email, "Test Coachee")
	require.NoError(t, err)
	return coachee
}

// captureMailer records delivered mail and can be told to fail.
type captureMailer struct {
	mu   sync.Mutex
	sent []capturedMail
	fail bool
}

type capturedMail struct {
	To      string
	Subject string
	Body    string
}

func (m *captureMailer) Send(_ context.Context, to, subject, body string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.fail {
		return errAlwaysFails
	}
	m.sent = append(m.sent, capturedMail{To: to, Subject: subject, Body: body})
	return nil
}

func (m *captureMailer) count() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.sent)
}

var errAlwaysFails = &mailFailure{}

type mailFailure struct{}

func (*mailFailure) Error() string { return "smtp unreachable" }

// flakyStore wraps a store and fails role listings for the first n calls.
type flakyStore struct {
	store.Store
	mu        sync.Mutex
	failures  int
	roleCalls int
}

func (f *flakyStore) Roles() store.Roles {
	return &flakyRoles{parent: f, inner: f.Store.Roles()}
}

type flakyRoles struct {
	parent *flakyStore
	inner  store.Roles
}

func (r *flakyRoles) ListRolesForUser(ctx context.Context, userID string) ([]string, error) {
	r.parent.mu.Lock()
	r.parent.roleCalls++
	failing := r.parent.roleCalls <= r.parent.failures
	r.parent.mu.Unlock()

	if failing {
		return nil, errAlwaysFails
	}
	return r.inner.ListRolesForUser(ctx, userID)
}

func (r *flakyRoles) GrantRole(ctx context.Context, userID, role string) error {
	return r.inner.GrantRole(ctx, userID, role)
}

func (r *flakyRoles) RevokeRole(ctx context.Context, userID, role string) error {
	return r.inner.RevokeRole(ctx, userID, role)
}

func testInvitationService(st store.Store, m Mailer) *InvitationService {
	return &InvitationService{
		Store:   st,
		Mailer:  m,
		BaseURL: "https://quexample.test",
		TTL:     7 * 24 * time.Hour,
	}
}
