package http

import (
	"net/http"
	"net/url"
)

// LoginRedirectHandler serves GET /login and everything under it. A bare
// visit falls through to the front end; a visit carrying an invitation token
// (an emailed link pointing at the old path) is forwarded to the coachee
// access page with the token and email intact.
//
//	@Summary		Legacy Login Redirect
//	@Description	Redirects /login?token=...&email=... to /acceso/coachee with the query preserved, so invitation links that predate the dedicated access page keep working.
//	@Tags			Auth
//	@Param			token	query	string	false	"Invitation token"
//	@Param			email	query	string	false	"Invited email"
//	@Success		302
//	@Router			/login [get].
func LoginRedirectHandler(frontendBase string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		token := r.URL.Query().Get("token")
		if token == "" {
			http.Redirect(w, r, frontendBase+"/login", http.StatusFound)
			return
		}

		q := url.Values{"token": {token}}
		if email := r.URL.Query().Get("email"); email != "" {
			q.Set("email", email)
		}
		http.Redirect(w, r, frontendBase+"/acceso/coachee?"+q.Encode(), http.StatusFound)
	}
}
