package domain

// CurrentUser is the authenticated caller context supplied by the session
// layer. Session establishment happens outside this service.
type CurrentUser struct {
	UserID  string
	IsAdmin bool
}
