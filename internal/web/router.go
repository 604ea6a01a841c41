// Package web renders the contactbook views. Every view goes through the
// route guard before its handler runs.
package web

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"contactbook/internal/app"
	"contactbook/internal/guard"
	"contactbook/internal/middleware"
)

type Options struct {
	// Hosts lists the Host header values the router answers. Empty accepts
	// any host.
	Hosts []string
}

func NewRouter(a *app.App, opts Options) *gin.Engine {
	r := gin.New()
	r.Use(middleware.RequestID())
	r.Use(middleware.Logger(a.Log))
	r.Use(middleware.Recovery(a.Log))
	r.Use(middleware.AllowHosts(a.Log, opts.Hosts...))
	r.Use(meterRequests(a.Metrics))
	r.SetHTMLTemplate(loadTemplates())

	r.GET("/healthz", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"ok": true})
	})
	r.GET("/metrics", serveMetrics(a.Metrics))

	h := &Handler{Session: a.Session, Contacts: a.Contacts, Log: a.Log}
	show := h.View(map[string]gin.HandlerFunc{
		guard.ViewContacts:      h.ContactsList,
		guard.ViewCreateContact: h.CreateForm,
		guard.ViewEditContact:   h.EditForm,
		guard.ViewLogin:         h.LoginForm,
		guard.ViewRegister:      h.RegisterForm,
	})
	for _, route := range guard.Routes {
		r.GET(route.Pattern, show)
	}

	authed := h.Guard(guard.AuthenticatedOnly)
	anonymous := h.Guard(guard.AnonymousOnly)
	posts := r.Group("", middleware.SameOrigin(a.Log))
	posts.POST("/contacts/create", authed, h.CreateSubmit)
	posts.POST("/contacts/edit/:id", authed, h.EditSubmit)
	posts.POST("/contacts/delete/:id", authed, h.Delete)
	posts.POST("/logout", authed, h.Logout)
	posts.POST("/login", anonymous, h.LoginSubmit)
	posts.POST("/register", anonymous, h.RegisterSubmit)

	r.NoRoute(func(c *gin.Context) {
		if c.Request.Method == http.MethodGet || c.Request.Method == http.MethodHead {
			show(c)
			return
		}
		redirect(c, guard.FallbackPath)
	})

	return r
}

// View resolves the request path against the route table and hands the
// matched view its captured params. Denied or unknown paths redirect.
func (h *Handler) View(views map[string]gin.HandlerFunc) gin.HandlerFunc {
	return func(c *gin.Context) {
		d := guard.Resolve(c.Request.URL.Path, h.authenticated())
		if !d.Allowed() {
			redirect(c, d.Redirect)
			return
		}
		serve, ok := views[d.View]
		if !ok {
			redirect(c, guard.FallbackPath)
			return
		}
		params := make(gin.Params, 0, len(d.Params))
		for k, v := range d.Params {
			params = append(params, gin.Param{Key: k, Value: v})
		}
		c.Params = params
		serve(c)
	}
}

// Guard evaluates access against the current session on every request.
func (h *Handler) Guard(access guard.Access) gin.HandlerFunc {
	return func(c *gin.Context) {
		if target, allowed := guard.Evaluate(access, h.authenticated()); !allowed {
			redirect(c, target)
			c.Abort()
			return
		}
		c.Next()
	}
}

// authenticated ends the session locally once its token is past exp, so the
// guard does not wait for the backend to reject it.
func (h *Handler) authenticated() bool {
	st := h.Session.State()
	if st.IsAuthenticated && st.ExpiresAt != nil && !time.Now().Before(*st.ExpiresAt) {
		h.Log.Info().Time("expires_at", *st.ExpiresAt).Msg("session token past expiry")
		h.Session.Expire()
		h.Contacts.Reset()
		return false
	}
	return st.IsAuthenticated
}

// redirect answers 302 to reads and 303 to form posts.
func redirect(c *gin.Context, target string) {
	status := http.StatusFound
	if c.Request.Method != http.MethodGet && c.Request.Method != http.MethodHead {
		status = http.StatusSeeOther
	}
	c.Redirect(status, target)
}
