package handlers

import (
	"errors"
	"fmt"
	"net/http"
	"os"
	"time"

	"github.com/Krchnk/gw-crypto-dashboard/internal/chart"
	"github.com/Krchnk/gw-crypto-dashboard/internal/config"
	"github.com/Krchnk/gw-crypto-dashboard/internal/dashboard"
	"github.com/Krchnk/gw-crypto-dashboard/internal/market"
	"github.com/Krchnk/gw-crypto-dashboard/internal/passwords"
	"github.com/Krchnk/gw-crypto-dashboard/internal/sessions"
	"github.com/Krchnk/gw-crypto-dashboard/internal/storages"
	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
)

var logger = logrus.New()

func init() {
	logger.SetFormatter(&logrus.JSONFormatter{})
	if lvl, err := logrus.ParseLevel(os.Getenv("LOG_LEVEL")); err == nil {
		logger.SetLevel(lvl)
	} else {
		logger.SetLevel(logrus.InfoLevel)
	}
}

const sessionKey = "session"

type Handler struct {
	ctrl     *dashboard.Controller
	sessions *sessions.Store
	store    storages.Storage
	cfg      config.Config
}

func NewHandler(store storages.Storage, fetcher dashboard.MarketFetcher, sessionStore *sessions.Store, cfg config.Config) *Handler {
	return &Handler{
		ctrl:     dashboard.NewController(store, fetcher),
		sessions: sessionStore,
		store:    store,
		cfg:      cfg,
	}
}

// Routes mounts every page on r.
func (h *Handler) Routes(r gin.IRouter) {
	r.GET("/health", h.Health)

	pages := r.Group("", h.SessionMiddleware())
	{
		pages.GET("/", h.Index)
		pages.GET("/login", h.LoginPage)
		pages.POST("/login", h.Login)
		pages.GET("/register", h.RegisterPage)
		pages.POST("/register", h.Register)
		pages.GET("/dashboard", h.Dashboard)
		pages.POST("/dashboard/password", h.ChangePassword)
		pages.POST("/logout", h.Logout)
	}
}

type pageData struct {
	Authenticated bool
	Identifier    string
	Email         string

	Error   string
	Warning string
	Success string

	Coins    []market.Coin
	Selected string
	Latest   string
	High     string
	Low      string
	Chart    *chart.Figure
}

// SessionMiddleware loads the caller's session, creating one when the cookie
// is missing or expired, and writes it back after the handler ran unless its
// id was rotated away in the meantime.
func (h *Handler) SessionMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		id, _ := c.Cookie(h.cfg.Session.CookieName)
		sess, ok := h.sessions.Get(id)
		if !ok {
			sess = h.sessions.New()
			logger.WithField("session_id", sess.ID).Debug("session created")
		}

		h.setCookie(c, sess.ID)
		c.Set(sessionKey, &sess)

		c.Next()

		if !h.sessions.Update(sess) {
			logger.WithField("session_id", sess.ID).Debug("stale session not saved")
		}
	}
}

func (h *Handler) setCookie(c *gin.Context, id string) {
	c.SetSameSite(http.SameSiteLaxMode)
	c.SetCookie(h.cfg.Session.CookieName, id, int(h.cfg.Session.TTL.Seconds()), "/", "", h.cfg.Session.Secure, true)
}

// rotateSession gives sess a new id on every change of identity.
func (h *Handler) rotateSession(c *gin.Context, sess *dashboard.Session) {
	*sess = h.sessions.Rotate(*sess)
	h.setCookie(c, sess.ID)
}

func currentSession(c *gin.Context) *dashboard.Session {
	return c.MustGet(sessionKey).(*dashboard.Session)
}

func (h *Handler) Index(c *gin.Context) {
	sess := currentSession(c)
	c.Redirect(http.StatusSeeOther, "/"+string(sess.Page))
}

func (h *Handler) LoginPage(c *gin.Context) {
	sess := currentSession(c)
	h.ctrl.SelectPage(sess, dashboard.PageLogin)
	if sess.Authenticated {
		c.Redirect(http.StatusSeeOther, "/dashboard")
		return
	}
	c.HTML(http.StatusOK, "login.html", pageData{})
}

func (h *Handler) Login(c *gin.Context) {
	sess := currentSession(c)
	if sess.Authenticated {
		c.Redirect(http.StatusSeeOther, "/dashboard")
		return
	}

	email := c.PostForm("email")
	logger.WithField("email", email).Info("login attempt")

	if err := h.ctrl.SubmitLogin(c.Request.Context(), sess, email, c.PostForm("password")); err != nil {
		status, msg := h.describe(c, err)
		c.HTML(status, "login.html", pageData{Email: email, Error: msg})
		return
	}

	h.rotateSession(c, sess)
	c.Redirect(http.StatusSeeOther, "/dashboard")
}

func (h *Handler) RegisterPage(c *gin.Context) {
	sess := currentSession(c)
	h.ctrl.SelectPage(sess, dashboard.PageRegister)
	if sess.Authenticated {
		c.Redirect(http.StatusSeeOther, "/dashboard")
		return
	}
	c.HTML(http.StatusOK, "register.html", pageData{})
}

func (h *Handler) Register(c *gin.Context) {
	sess := currentSession(c)
	if sess.Authenticated {
		c.Redirect(http.StatusSeeOther, "/dashboard")
		return
	}
	h.ctrl.SelectPage(sess, dashboard.PageRegister)

	email := c.PostForm("email")
	logger.WithField("email", email).Info("registration attempt")

	err := h.ctrl.SubmitRegistration(c.Request.Context(), sess, email, c.PostForm("password"))
	switch {
	case err == nil:
		c.HTML(http.StatusOK, "register.html", pageData{Success: "Account created. Please login."})
	case errors.Is(err, dashboard.ErrDuplicateIdentifier):
		status, msg := h.describe(c, err)
		c.HTML(status, "register.html", pageData{Email: email, Warning: msg})
	default:
		status, msg := h.describe(c, err)
		c.HTML(status, "register.html", pageData{Email: email, Error: msg})
	}
}

func (h *Handler) Dashboard(c *gin.Context) {
	h.showDashboard(c, c.Query("coin"), http.StatusOK, pageData{})
}

func (h *Handler) ChangePassword(c *gin.Context) {
	sess := currentSession(c)
	coin := c.PostForm("coin")

	err := h.ctrl.ChangePassword(c.Request.Context(), sess, c.PostForm("current_password"), c.PostForm("new_password"))
	switch {
	case errors.Is(err, dashboard.ErrNotAuthenticated):
		c.Redirect(http.StatusSeeOther, "/login")
	case errors.Is(err, dashboard.ErrAuthentication):
		h.showDashboard(c, coin, http.StatusUnauthorized, pageData{Error: "Current password is incorrect."})
	case err != nil:
		status, msg := h.describe(c, err)
		h.showDashboard(c, coin, status, pageData{Error: msg})
	default:
		h.showDashboard(c, coin, http.StatusOK, pageData{Success: "Password updated."})
	}
}

func (h *Handler) Logout(c *gin.Context) {
	sess := currentSession(c)
	h.ctrl.Logout(sess)
	h.rotateSession(c, sess)
	c.Redirect(http.StatusSeeOther, "/login")
}

func (h *Handler) Health(c *gin.Context) {
	dbStatus := "connected"
	if err := h.store.Ping(c.Request.Context()); err != nil {
		logger.WithError(err).Warn("database ping failed")
		dbStatus = "disconnected"
	}

	c.JSON(http.StatusOK, gin.H{
		"status":    "ok",
		"timestamp": time.Now().UTC().Format(time.RFC3339),
		"services":  gin.H{"database": dbStatus},
	})
}

// showDashboard renders the dashboard for coin. A fetch failure is shown on
// the page; it only sets the status when the caller had nothing to report,
// so a completed password change still answers 200.
func (h *Handler) showDashboard(c *gin.Context, coin string, status int, data pageData) {
	sess := currentSession(c)

	view, err := h.ctrl.LoadDashboard(c.Request.Context(), sess, coin)
	if errors.Is(err, dashboard.ErrNotAuthenticated) {
		c.Redirect(http.StatusSeeOther, "/login")
		return
	}

	data.Authenticated = true
	data.Identifier = sess.Identifier
	data.Coins = market.Coins
	data.Selected = coin

	if view != nil {
		data.Selected = view.Coin.Name
		if view.Metrics != nil {
			data.Latest = market.FormatUSD(view.Metrics.Latest)
			data.High = market.FormatUSD(view.Metrics.High)
			data.Low = market.FormatUSD(view.Metrics.Low)
		}
		data.Chart = view.Chart
	}

	if err != nil {
		errStatus, msg := h.describe(c, err)
		if status == http.StatusOK && data.Success == "" {
			status = errStatus
		}
		if data.Error == "" {
			data.Error = msg
		}
	}

	c.HTML(status, "dashboard.html", data)
}

// describe maps a controller error to a status code and a message safe to
// show to the user.
func (h *Handler) describe(c *gin.Context, err error) (int, string) {
	var vErr *dashboard.ValidationError
	var fErr *dashboard.FetchError

	switch {
	case errors.As(err, &vErr):
		logger.WithFields(logrus.Fields{"field": vErr.Field}).Info("validation failed")
		switch vErr.Field {
		case "email":
			return http.StatusBadRequest, "Please enter a valid email."
		case "coin":
			return http.StatusBadRequest, "Unknown cryptocurrency."
		default:
			return http.StatusBadRequest, passwordMessage(vErr)
		}
	case errors.Is(err, dashboard.ErrAuthentication):
		return http.StatusUnauthorized, "Invalid email or password."
	case errors.Is(err, dashboard.ErrDuplicateIdentifier):
		return http.StatusConflict, "Email already registered."
	case errors.As(err, &fErr):
		_ = c.Error(err)
		return http.StatusBadGateway, "Failed to fetch data from API."
	default:
		logger.WithError(err).Error("request failed")
		_ = c.Error(err)
		return http.StatusInternalServerError, "Internal server error."
	}
}

func passwordMessage(vErr *dashboard.ValidationError) string {
	if errors.Is(vErr, dashboard.ErrPasswordTooLong) {
		return fmt.Sprintf("Password must be at most %d bytes.", passwords.MaxLength)
	}
	return "Please enter a password."
}
