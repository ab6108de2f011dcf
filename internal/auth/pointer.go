package auth

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/mrlokans/highlights-keeper/internal/rememberme"
)

// SessionCookieName is the cookie that carries the remembered token for browser clients.
const SessionCookieName = "hk_session"

// cookiePointer is a rememberme.Store scoped to one HTTP exchange: it reads
// the request cookie and answers with Set-Cookie headers.
type cookiePointer struct {
	c       *gin.Context
	secure  bool
	token   string
	touched bool
}

var _ rememberme.Store = (*cookiePointer)(nil)

func newCookiePointer(c *gin.Context, secure bool) *cookiePointer {
	return &cookiePointer{c: c, secure: secure}
}

func (p *cookiePointer) Load() (string, error) {
	if p.touched {
		return p.token, nil
	}
	token, err := p.c.Cookie(SessionCookieName)
	if err != nil {
		// http.ErrNoCookie is the only error Cookie returns
		return "", nil
	}
	return token, nil
}

func (p *cookiePointer) Save(token string) error {
	p.token = token
	p.touched = true
	p.write(token, int(SessionTTL.Seconds()))
	return nil
}

func (p *cookiePointer) Clear() error {
	p.token = ""
	p.touched = true
	p.write("", -1)
	return nil
}

func (p *cookiePointer) write(value string, maxAge int) {
	p.c.SetSameSite(http.SameSiteStrictMode)
	p.c.SetCookie(SessionCookieName, value, maxAge, "/", "", p.secure, true)
}
