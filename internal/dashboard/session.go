package dashboard

type Page string

const (
	PageLogin     Page = "login"
	PageRegister  Page = "register"
	PageDashboard Page = "dashboard"
)

// Session is the per-browser interaction state. It is owned by the caller
// and passed to every Controller operation.
type Session struct {
	ID            string
	Authenticated bool
	Identifier    string
	Page          Page
}

func NewSession(id string) Session {
	return Session{ID: id, Page: PageLogin}
}

func (s *Session) reset() {
	s.Authenticated = false
	s.Identifier = ""
	s.Page = PageLogin
}
