package shared_test

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/finoracle/backoffice/internal/shared"
)

func newManager(t *testing.T) (*shared.SessionManager, *miniredis.Miniredis, *redis.Client) {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	return shared.NewSessionManager(client, "bo_session", "secret", time.Hour, false), mr, client
}

func TestSessionRoundTrip(t *testing.T) {
	manager, mr, _ := newManager(t)
	ctx := context.Background()

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	sess, err := manager.Load(ctx, req)
	require.NoError(t, err)
	sess.Set("listview:menus", `{"page":2}`)
	sess.AddFlash(shared.FlashMessage{Kind: shared.FlashSuccess, Message: "Menu created successfully"})

	res := httptest.NewRecorder()
	require.NoError(t, manager.Commit(ctx, res, req, sess))
	assert.True(t, mr.Exists("session:"+sess.ID))

	cookies := res.Result().Cookies()
	require.Len(t, cookies, 1)
	assert.Equal(t, "bo_session", cookies[0].Name)

	next := httptest.NewRequest(http.MethodGet, "/masters/menus", nil)
	next.AddCookie(cookies[0])
	loaded, err := manager.Load(ctx, next)
	require.NoError(t, err)
	assert.Equal(t, sess.ID, loaded.ID)
	assert.Equal(t, `{"page":2}`, loaded.Get("listview:menus"))

	flash := loaded.PopFlash()
	require.NotNil(t, flash)
	assert.Equal(t, "Menu created successfully", flash.Message)
	assert.Nil(t, loaded.PopFlash())
}

func TestSessionUnknownCookieGetsFreshID(t *testing.T) {
	manager, _, _ := newManager(t)
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.AddCookie(&http.Cookie{Name: "bo_session", Value: "attacker-chosen"})

	sess, err := manager.Load(context.Background(), req)
	require.NoError(t, err)
	assert.NotEqual(t, "attacker-chosen", sess.ID)
}

func TestSessionRejectsForgedSignature(t *testing.T) {
	manager, _, _ := newManager(t)
	ctx := context.Background()
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	sess, err := manager.Load(ctx, req)
	require.NoError(t, err)
	res := httptest.NewRecorder()
	require.NoError(t, manager.Commit(ctx, res, req, sess))

	issued := res.Result().Cookies()[0]
	assert.True(t, strings.HasPrefix(issued.Value, sess.ID+"."))

	forged := httptest.NewRequest(http.MethodGet, "/", nil)
	forged.AddCookie(&http.Cookie{Name: "bo_session", Value: sess.ID + ".bogus"})
	loaded, err := manager.Load(ctx, forged)
	require.NoError(t, err)
	assert.NotEqual(t, sess.ID, loaded.ID)
}

func TestSessionDestroy(t *testing.T) {
	manager, mr, _ := newManager(t)
	ctx := context.Background()
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	sess, err := manager.Load(ctx, req)
	require.NoError(t, err)
	require.NoError(t, manager.Commit(ctx, httptest.NewRecorder(), req, sess))
	require.True(t, mr.Exists("session:"+sess.ID))

	manager.Destroy(sess)
	res := httptest.NewRecorder()
	require.NoError(t, manager.Commit(ctx, res, req, sess))
	assert.False(t, mr.Exists("session:"+sess.ID))
	assert.Equal(t, -1, res.Result().Cookies()[0].MaxAge)
}

func TestCSRFTokenLifecycle(t *testing.T) {
	manager, _, _ := newManager(t)
	csrf := shared.NewCSRFManager("csrfsecret")
	ctx := context.Background()
	sess, err := manager.Load(ctx, httptest.NewRequest(http.MethodGet, "/", nil))
	require.NoError(t, err)

	token, err := csrf.EnsureToken(ctx, sess)
	require.NoError(t, err)
	again, err := csrf.EnsureToken(ctx, sess)
	require.NoError(t, err)
	assert.Equal(t, token, again)

	assert.NoError(t, csrf.VerifyToken(ctx, sess, token))
	assert.ErrorIs(t, csrf.VerifyToken(ctx, sess, "forged"), shared.ErrCSRFTokenMismatch)
	assert.ErrorIs(t, csrf.VerifyToken(ctx, sess, ""), shared.ErrCSRFTokenMissing)

	other, err := manager.Load(ctx, httptest.NewRequest(http.MethodGet, "/", nil))
	require.NoError(t, err)
	other.Set(shared.CSRFSessionKey, token)
	assert.ErrorIs(t, csrf.VerifyToken(ctx, other, token), shared.ErrCSRFTokenMismatch, "tokens are bound to their session")
	_, err = csrf.EnsureToken(ctx, nil)
	assert.ErrorIs(t, err, shared.ErrSessionMissing)
}

func TestSubmitGuardRejectsDuplicates(t *testing.T) {
	_, mr, client := newManager(t)
	guard := shared.NewSubmitGuard(client, time.Minute)
	ctx := context.Background()
	token := guard.NewToken()

	require.NoError(t, guard.Claim(ctx, "menus", token))
	assert.ErrorIs(t, guard.Claim(ctx, "menus", token), shared.ErrDuplicateSubmit)
	assert.NoError(t, guard.Claim(ctx, "roles", token), "claims are scoped per module")

	require.NoError(t, guard.Release(ctx, "menus", token))
	assert.NoError(t, guard.Claim(ctx, "menus", token))

	mr.FastForward(2 * time.Minute)
	assert.NoError(t, guard.Claim(ctx, "menus", token), "claims expire")

	assert.Error(t, guard.Claim(ctx, "menus", ""))
}
