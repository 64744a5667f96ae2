package middlewares

import (
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/oauth"
	"github.com/goccy/go-json"

	"github.com/mbolis/quick-forms/httpx"
	"github.com/mbolis/quick-forms/log"
)

const (
	accessCookie  = "access_token"
	refreshCookie = "refresh_token"
	refreshMaxAge = 60 * 60 * 24 * 365
)

// Admin checks for the 'admin' role in an OAuth token signed with secret.
func Admin(secret string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return chi.Chain(oauth.Authorize(secret, nil), admin).Handler(next)
	}
}

func admin(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		claims, _ := r.Context().Value(oauth.ClaimsContext).(map[string]string)

		isAdmin := false
		for _, role := range strings.Split(claims["roles"], ",") {
			if strings.TrimSpace(role) == "admin" {
				isAdmin = true
				break
			}
		}

		if !isAdmin {
			httpx.LogStatus(w, http.StatusForbidden, log.DebugLevel, "auth.admin_role")
			return
		}

		next.ServeHTTP(w, r)
	})
}

type tokenResponse struct {
	AccessToken  string  `json:"access_token"`
	RefreshToken string  `json:"refresh_token"`
	ExpiresIn    float64 `json:"expires_in"`
}

// CookieAuth lets browsers reach admin pages with the tokens kept in cookies.
// An expired access token is refreshed on the fly; without a usable refresh
// token the browser is sent to the login page.
func CookieAuth(bearerServer *oauth.BearerServer) func(http.Handler) http.Handler {
	return func(h http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if r.Method != http.MethodGet {
				h.ServeHTTP(w, r)
				return
			}

			token, err := r.Cookie(accessCookie)
			if err == nil {
				r.Header.Set("authorization", "Bearer "+token.Value)
				buf := httpx.NewResponseBuffer()
				h.ServeHTTP(buf, r)
				if buf.Status() != http.StatusUnauthorized {
					if err := buf.Flush(w); err != nil {
						log.Debugf("auth.cookie.flush: %s", err)
					}
					return
				}
			}

			loginLocation := "/login?goto=" + url.QueryEscape(r.RequestURI)

			refreshToken, err := r.Cookie(refreshCookie)
			if err != nil {
				http.Redirect(w, r, loginLocation, http.StatusTemporaryRedirect)
				return
			}

			tokens, status := refresh(bearerServer, refreshToken.Value)
			switch status {
			case http.StatusOK:
			case http.StatusUnauthorized:
				setCookie(w, refreshCookie, "", -1)
				http.Redirect(w, r, loginLocation, http.StatusTemporaryRedirect)
				return
			default:
				httpx.LogStatus(w, status, log.WarnLevel, "auth.cookie.refresh")
				return
			}

			setCookie(w, accessCookie, tokens.AccessToken, int(tokens.ExpiresIn))
			setCookie(w, refreshCookie, tokens.RefreshToken, refreshMaxAge)

			r.Header.Set("authorization", "Bearer "+tokens.AccessToken)
			h.ServeHTTP(w, r)
		})
	}
}

// refresh trades a refresh token for new tokens through the bearer server,
// which only accepts a form-encoded grant request.
func refresh(bearerServer *oauth.BearerServer, refreshToken string) (tokenResponse, int) {
	tokens := tokenResponse{}
	body := url.Values{
		"grant_type":    {"refresh_token"},
		"refresh_token": {refreshToken},
	}.Encode()
	req, err := http.NewRequest(http.MethodPost, "/", strings.NewReader(body))
	if err != nil {
		return tokens, http.StatusInternalServerError
	}
	req.Header.Set("content-type", "application/x-www-form-urlencoded")
	req.Header.Set("content-length", strconv.Itoa(len(body)))

	resp := httpx.NewResponseBuffer()
	bearerServer.UserCredentials(resp, req)
	if resp.Status() != http.StatusOK {
		return tokens, resp.Status()
	}
	if err := json.Unmarshal(resp.Body(), &tokens); err != nil || tokens.AccessToken == "" {
		return tokens, http.StatusInternalServerError
	}
	return tokens, http.StatusOK
}

func setCookie(w http.ResponseWriter, name, value string, maxAge int) {
	http.SetCookie(w, &http.Cookie{
		Path:     "/",
		Name:     name,
		Value:    value,
		MaxAge:   maxAge,
		HttpOnly: name == refreshCookie,
		SameSite: http.SameSiteLaxMode,
	})
}

