package dashboard

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/Krchnk/gw-crypto-dashboard/internal/market"
	"github.com/Krchnk/gw-crypto-dashboard/internal/storages/storagetest"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeMarket struct {
	series market.PriceSeries
	err    error
	calls  []string
}

func (f *fakeMarket) MarketChart(_ context.Context, coinID string) (market.PriceSeries, error) {
	f.calls = append(f.calls, coinID)
	return f.series, f.err
}

func referenceSeries() market.PriceSeries {
	return market.PriceSeries{
		{Timestamp: time.UnixMilli(1000), Price: decimal.RequireFromString("100.0")},
		{Timestamp: time.UnixMilli(2000), Price: decimal.RequireFromString("150.0")},
		{Timestamp: time.UnixMilli(3000), Price: decimal.RequireFromString("120.0")},
	}
}

func newTestController(t *testing.T) (*Controller, *storagetest.Memory, *fakeMarket) {
	t.Helper()
	store := storagetest.NewMemory()
	fm := &fakeMarket{series: referenceSeries()}
	return NewController(store, fm), store, fm
}

func loggedIn(t *testing.T, c *Controller, store *storagetest.Memory) *Session {
	t.Helper()
	require.NoError(t, store.Register(context.Background(), "user@example.com", "pw"))
	sess := NewSession("s1")
	require.NoError(t, c.SubmitLogin(context.Background(), &sess, "user@example.com", "pw"))
	return &sess
}

func TestValidateEmail(t *testing.T) {
	valid := []string{"user@example.com", "a@b.c", "first.last@sub.example.org"}
	for _, e := range valid {
		assert.NoError(t, ValidateEmail(e), e)
	}

	invalid := []string{"", "not-an-email", "user@", "@example.com", "user@example", "user@@example.com"}
	for _, e := range invalid {
		var vErr *ValidationError
		assert.True(t, errors.As(ValidateEmail(e), &vErr), e)
	}
}

func TestNewSession_StartsOnLogin(t *testing.T) {
	sess := NewSession("abc")
	assert.Equal(t, PageLogin, sess.Page)
	assert.False(t, sess.Authenticated)
	assert.Empty(t, sess.Identifier)
}

func TestSelectPage(t *testing.T) {
	c, store, _ := newTestController(t)
	sess := NewSession("s")

	c.SelectPage(&sess, PageRegister)
	assert.Equal(t, PageRegister, sess.Page)

	c.SelectPage(&sess, PageDashboard)
	assert.Equal(t, PageLogin, sess.Page, "dashboard is not selectable without login")

	authed := loggedIn(t, c, store)
	c.SelectPage(authed, PageRegister)
	assert.Equal(t, PageDashboard, authed.Page)
}

func TestSubmitLogin_ValidationBeforeLookup(t *testing.T) {
	c, store, _ := newTestController(t)
	store.Err = errors.New("store must not be reached")
	sess := NewSession("s")

	err := c.SubmitLogin(context.Background(), &sess, "not-an-email", "pw")
	var vErr *ValidationError
	require.True(t, errors.As(err, &vErr))
	assert.Equal(t, "email", vErr.Field)
	assert.Equal(t, PageLogin, sess.Page)
}

func TestSubmitLogin_AcceptsSyntacticallyValidEmail(t *testing.T) {
	c, _, _ := newTestController(t)
	sess := NewSession("s")

	// the account does not exist, so validation passes and verification fails
	err := c.SubmitLogin(context.Background(), &sess, "user@example.com", "pw")
	assert.ErrorIs(t, err, ErrAuthentication)
}

func TestSubmitLogin(t *testing.T) {
	c, store, _ := newTestController(t)
	ctx := context.Background()
	require.NoError(t, store.Register(ctx, "user@example.com", "pw"))

	sess := NewSession("s")
	require.ErrorIs(t, c.SubmitLogin(ctx, &sess, "user@example.com", "bad"), ErrAuthentication)
	assert.False(t, sess.Authenticated)
	assert.Equal(t, PageLogin, sess.Page)

	require.ErrorIs(t, c.SubmitLogin(ctx, &sess, "other@example.com", "pw"), ErrAuthentication)

	require.NoError(t, c.SubmitLogin(ctx, &sess, "user@example.com", "pw"))
	assert.True(t, sess.Authenticated)
	assert.Equal(t, "user@example.com", sess.Identifier)
	assert.Equal(t, PageDashboard, sess.Page)
}

func TestSubmitLogin_StoreError(t *testing.T) {
	c, store, _ := newTestController(t)
	store.Err = errors.New("disk full")
	sess := NewSession("s")

	err := c.SubmitLogin(context.Background(), &sess, "user@example.com", "pw")
	require.Error(t, err)
	assert.NotErrorIs(t, err, ErrAuthentication)
	assert.False(t, sess.Authenticated)
}

func TestSubmitRegistration(t *testing.T) {
	c, store, _ := newTestController(t)
	ctx := context.Background()
	sess := NewSession("s")
	c.SelectPage(&sess, PageRegister)

	require.NoError(t, c.SubmitRegistration(ctx, &sess, "new@example.com", "pw"))
	assert.Equal(t, PageRegister, sess.Page)
	assert.False(t, sess.Authenticated, "registration does not log in")

	err := c.SubmitRegistration(ctx, &sess, "new@example.com", "other")
	require.ErrorIs(t, err, ErrDuplicateIdentifier)

	ids, err := store.ListIdentifiers(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{"new@example.com"}, ids)

	ok, err := store.Verify(ctx, "new@example.com", "pw")
	require.NoError(t, err)
	assert.True(t, ok)
}

func TestSubmitRegistration_Validation(t *testing.T) {
	c, _, _ := newTestController(t)
	sess := NewSession("s")

	var vErr *ValidationError
	require.True(t, errors.As(c.SubmitRegistration(context.Background(), &sess, "bad", "pw"), &vErr))
	assert.Equal(t, "email", vErr.Field)

	require.True(t, errors.As(c.SubmitRegistration(context.Background(), &sess, "ok@example.com", ""), &vErr))
	assert.Equal(t, "password", vErr.Field)
}

func TestSubmitRegistration_PasswordLength(t *testing.T) {
	c, store, _ := newTestController(t)
	ctx := context.Background()
	sess := NewSession("s")

	err := c.SubmitRegistration(ctx, &sess, "long@example.com", strings.Repeat("a", 73))
	var vErr *ValidationError
	require.True(t, errors.As(err, &vErr))
	assert.Equal(t, "password", vErr.Field)
	assert.ErrorIs(t, err, ErrPasswordTooLong)

	ids, err := store.ListIdentifiers(ctx)
	require.NoError(t, err)
	assert.Empty(t, ids)

	require.NoError(t, c.SubmitRegistration(ctx, &sess, "long@example.com", strings.Repeat("a", 72)))
}

func TestLoadDashboard(t *testing.T) {
	c, store, fm := newTestController(t)
	sess := loggedIn(t, c, store)

	view, err := c.LoadDashboard(context.Background(), sess, "Avalanche")
	require.NoError(t, err)

	assert.Equal(t, []string{"avalanche-2"}, fm.calls)
	assert.Equal(t, "user@example.com", view.Identifier)
	assert.Equal(t, "Avalanche", view.Coin.Name)
	assert.Len(t, view.Coins, 14)

	require.NotNil(t, view.Metrics)
	assert.True(t, view.Metrics.Latest.Equal(decimal.NewFromInt(120)))
	assert.True(t, view.Metrics.High.Equal(decimal.NewFromInt(150)))
	assert.True(t, view.Metrics.Low.Equal(decimal.NewFromInt(100)))

	require.NotNil(t, view.Chart)
	assert.Equal(t, "Avalanche Price Chart (Last 7 Days)", view.Chart.Layout.Title.Text)
	assert.Len(t, view.Chart.Data[0].Y, 3)
}

func TestLoadDashboard_DefaultCoin(t *testing.T) {
	c, store, fm := newTestController(t)
	sess := loggedIn(t, c, store)

	view, err := c.LoadDashboard(context.Background(), sess, "")
	require.NoError(t, err)
	assert.Equal(t, "Bitcoin", view.Coin.Name)
	assert.Equal(t, []string{"bitcoin"}, fm.calls)
}

func TestLoadDashboard_UnknownCoin(t *testing.T) {
	c, store, fm := newTestController(t)
	sess := loggedIn(t, c, store)

	_, err := c.LoadDashboard(context.Background(), sess, "Monero")
	var vErr *ValidationError
	require.True(t, errors.As(err, &vErr))
	assert.Equal(t, "coin", vErr.Field)
	assert.Empty(t, fm.calls)
}

func TestLoadDashboard_FetchErrors(t *testing.T) {
	tests := []struct {
		name   string
		series market.PriceSeries
		err    error
	}{
		{"non-200", nil, &market.StatusError{StatusCode: 429}},
		{"transport", nil, errors.New("connection refused")},
		{"empty series from client", nil, market.ErrEmptySeries},
		{"empty series without error", market.PriceSeries{}, nil},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c, store, fm := newTestController(t)
			fm.series, fm.err = tt.series, tt.err
			sess := loggedIn(t, c, store)

			view, err := c.LoadDashboard(context.Background(), sess, "Bitcoin")

			var fErr *FetchError
			require.True(t, errors.As(err, &fErr), "got %v", err)
			assert.Equal(t, "Bitcoin", fErr.Coin)
			require.NotNil(t, view)
			assert.Nil(t, view.Metrics)
			assert.Nil(t, view.Chart)
		})
	}
}

func TestLogout(t *testing.T) {
	c, store, fm := newTestController(t)
	sess := loggedIn(t, c, store)

	c.Logout(sess)

	assert.Equal(t, PageLogin, sess.Page)
	assert.False(t, sess.Authenticated)
	assert.Empty(t, sess.Identifier)

	_, err := c.LoadDashboard(context.Background(), sess, "Bitcoin")
	assert.ErrorIs(t, err, ErrNotAuthenticated)
	assert.Empty(t, fm.calls)

	require.NoError(t, c.SubmitLogin(context.Background(), sess, "user@example.com", "pw"))
	_, err = c.LoadDashboard(context.Background(), sess, "Bitcoin")
	assert.NoError(t, err)
}

func TestChangePassword(t *testing.T) {
	c, store, _ := newTestController(t)
	ctx := context.Background()
	sess := loggedIn(t, c, store)

	require.ErrorIs(t, c.ChangePassword(ctx, sess, "wrong", "new"), ErrAuthentication)

	var vErr *ValidationError
	require.True(t, errors.As(c.ChangePassword(ctx, sess, "pw", ""), &vErr))
	assert.ErrorIs(t, c.ChangePassword(ctx, sess, "pw", strings.Repeat("b", 73)), ErrPasswordTooLong)

	require.NoError(t, c.ChangePassword(ctx, sess, "pw", "new"))

	ok, err := store.Verify(ctx, "user@example.com", "new")
	require.NoError(t, err)
	assert.True(t, ok)

	anon := NewSession("anon")
	assert.ErrorIs(t, c.ChangePassword(ctx, &anon, "new", "newer"), ErrNotAuthenticated)
}
