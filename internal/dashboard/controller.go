// Package dashboard implements the page flow of the application: login,
// registration and the price dashboard.
package dashboard

import (
	"context"
	"errors"
	"fmt"
	"regexp"

	"github.com/Krchnk/gw-crypto-dashboard/internal/chart"
	"github.com/Krchnk/gw-crypto-dashboard/internal/market"
	"github.com/Krchnk/gw-crypto-dashboard/internal/passwords"
	"github.com/Krchnk/gw-crypto-dashboard/internal/storages"
	"github.com/sirupsen/logrus"
)

var emailPattern = regexp.MustCompile(`^[^@]+@[^@]+\.[^@]+`)

type MarketFetcher interface {
	MarketChart(ctx context.Context, coinID string) (market.PriceSeries, error)
}

type Controller struct {
	store  storages.Storage
	market MarketFetcher
}

func NewController(store storages.Storage, fetcher MarketFetcher) *Controller {
	return &Controller{store: store, market: fetcher}
}

// View is everything the dashboard page shows. Metrics and Chart are nil
// when the prices could not be fetched.
type View struct {
	Identifier string
	Coin       market.Coin
	Coins      []market.Coin
	Metrics    *market.Metrics
	Chart      *chart.Figure
}

func ValidateEmail(email string) error {
	if !emailPattern.MatchString(email) {
		return &ValidationError{Field: "email", Reason: "please enter a valid email"}
	}
	return nil
}

// ValidatePassword rejects empty passwords and ones bcrypt cannot hash,
// whatever scheme is configured.
func ValidatePassword(password string) error {
	if password == "" {
		return &ValidationError{Field: "password", Reason: "password must not be empty"}
	}
	if len(password) > passwords.MaxLength {
		return &ValidationError{
			Field:  "password",
			Reason: fmt.Sprintf("password must be at most %d bytes", passwords.MaxLength),
			Err:    ErrPasswordTooLong,
		}
	}
	return nil
}

// SelectPage switches between the login and register pages. An
// authenticated session always stays on the dashboard.
func (c *Controller) SelectPage(sess *Session, page Page) {
	if sess.Authenticated {
		sess.Page = PageDashboard
		return
	}
	if page == PageRegister {
		sess.Page = PageRegister
		return
	}
	sess.Page = PageLogin
}

func (c *Controller) SubmitLogin(ctx context.Context, sess *Session, email, password string) error {
	if err := ValidateEmail(email); err != nil {
		return err
	}

	ok, err := c.store.Verify(ctx, email, password)
	if err != nil {
		return err
	}
	if !ok {
		logrus.WithField("email", email).Warn("login rejected")
		return ErrAuthentication
	}

	sess.Authenticated = true
	sess.Identifier = email
	sess.Page = PageDashboard
	logrus.WithField("email", email).Info("login successful")
	return nil
}

func (c *Controller) SubmitRegistration(ctx context.Context, sess *Session, email, password string) error {
	if err := ValidateEmail(email); err != nil {
		return err
	}
	if err := ValidatePassword(password); err != nil {
		return err
	}

	existing, err := c.store.ListIdentifiers(ctx)
	if err != nil {
		return err
	}
	for _, id := range existing {
		if id == email {
			return ErrDuplicateIdentifier
		}
	}

	if err := c.store.Register(ctx, email, password); err != nil {
		if errors.Is(err, storages.ErrIdentifierExists) {
			return ErrDuplicateIdentifier
		}
		return err
	}

	sess.Page = PageRegister
	logrus.WithField("email", email).Info("account created")
	return nil
}

// LoadDashboard fetches and summarises prices for the coin with the given
// display name. An empty name selects the first coin in the list. On a
// FetchError the returned view is still usable but has no metrics or chart.
func (c *Controller) LoadDashboard(ctx context.Context, sess *Session, coinName string) (*View, error) {
	if !sess.Authenticated {
		return nil, ErrNotAuthenticated
	}
	sess.Page = PageDashboard

	if coinName == "" {
		coinName = market.Coins[0].Name
	}
	coin, ok := market.LookupCoin(coinName)
	if !ok {
		return nil, &ValidationError{Field: "coin", Reason: "unknown coin " + coinName}
	}

	view := &View{Identifier: sess.Identifier, Coin: coin, Coins: market.Coins}

	series, err := c.market.MarketChart(ctx, coin.ID)
	if err != nil {
		logrus.WithField("coin", coin.ID).WithError(err).Error("failed to fetch market data")
		return view, &FetchError{Coin: coin.Name, Err: err}
	}

	metrics, err := series.Metrics()
	if err != nil {
		return view, &FetchError{Coin: coin.Name, Err: err}
	}

	fig := chart.PriceFigure(coin.Name, series)
	view.Metrics = &metrics
	view.Chart = &fig
	return view, nil
}

// ChangePassword replaces the password of the logged in user after checking
// the current one.
func (c *Controller) ChangePassword(ctx context.Context, sess *Session, current, next string) error {
	if !sess.Authenticated {
		return ErrNotAuthenticated
	}
	if err := ValidatePassword(next); err != nil {
		return err
	}

	ok, err := c.store.Verify(ctx, sess.Identifier, current)
	if err != nil {
		return err
	}
	if !ok {
		return ErrAuthentication
	}

	if err := c.store.UpdatePassword(ctx, sess.Identifier, next); err != nil {
		return err
	}
	logrus.WithField("email", sess.Identifier).Info("password changed")
	return nil
}

func (c *Controller) Logout(sess *Session) {
	if sess.Identifier != "" {
		logrus.WithField("email", sess.Identifier).Info("logout")
	}
	sess.reset()
}
