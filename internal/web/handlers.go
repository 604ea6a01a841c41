package web

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"

	"contactbook/internal/contacts"
	"contactbook/internal/forms"
	"contactbook/internal/guard"
	"contactbook/internal/model"
	"contactbook/internal/session"
)

type Handler struct {
	Session  *session.Store
	Contacts *contacts.Store
	Log      zerolog.Logger
}

const msgBadForm = "Invalid form submission"

func (h *Handler) render(c *gin.Context, status int, name string, p page) {
	st := h.Session.State()
	p.User = st.User
	p.ExpiresAt = st.ExpiresAt
	c.HTML(status, name, p)
}

// bind decodes the posted form into f. A body that cannot be parsed
// re-renders name with 400.
func (h *Handler) bind(c *gin.Context, f any, name string, p page) bool {
	if err := c.ShouldBind(f); err != nil {
		h.Log.Debug().Err(err).Str("path", c.Request.URL.Path).Msg("form decode failed")
		p.Error = msgBadForm
		h.render(c, http.StatusBadRequest, name, p)
		return false
	}
	return true
}

// expired reports whether the session ended during the request, and if so
// sends the browser to the login view.
func (h *Handler) expired(c *gin.Context) bool {
	if h.Session.IsAuthenticated() {
		return false
	}
	redirect(c, guard.LoginPath)
	return true
}

func (h *Handler) ContactsList(c *gin.Context) {
	h.Contacts.Fetch(c.Request.Context())
	if h.expired(c) {
		return
	}
	query := c.Query("q")
	h.render(c, http.StatusOK, "contacts.html", page{
		Title:    "Contacts",
		Contacts: h.Contacts.Search(query),
		Query:    query,
		Error:    h.Contacts.State().Error,
	})
}

func createPage() page {
	return page{Title: "Add New Contact", Action: "/contacts/create", Submit: "Create Contact"}
}

func editPage(id string) page {
	return page{Title: "Edit Contact", Action: "/contacts/edit/" + id, Submit: "Update Contact"}
}

func (h *Handler) CreateForm(c *gin.Context) {
	h.render(c, http.StatusOK, "contact_form.html", createPage())
}

func (h *Handler) CreateSubmit(c *gin.Context) {
	p := createPage()
	var f forms.Contact
	if !h.bind(c, &f, "contact_form.html", p) {
		return
	}
	if errs := forms.Validate(&f); errs != nil {
		p.Form = contactForm(f)
		p.Fields = errs
		h.render(c, http.StatusUnprocessableEntity, "contact_form.html", p)
		return
	}

	_, err := h.Contacts.Create(c.Request.Context(), model.CreateContactRequest{
		Name:    f.Name,
		Phone:   f.Phone,
		Email:   f.Email,
		Address: f.Address,
	})
	if err != nil {
		if h.expired(c) {
			return
		}
		p.Form = contactForm(f)
		p.Error = err.Error()
		h.render(c, http.StatusBadRequest, "contact_form.html", p)
		return
	}
	redirect(c, guard.HomePath)
}

// lookup serves from the loaded collection and fetches once when the id is
// not there.
func (h *Handler) lookup(c *gin.Context, id string) (model.Contact, bool) {
	if contact, ok := h.Contacts.Get(id); ok {
		return contact, true
	}
	h.Contacts.Fetch(c.Request.Context())
	return h.Contacts.Get(id)
}

func (h *Handler) EditForm(c *gin.Context) {
	id := c.Param("id")
	p := editPage(id)
	contact, ok := h.lookup(c, id)
	if h.expired(c) {
		return
	}
	if !ok {
		p.NotFound = true
		p.Error = h.Contacts.State().Error
		h.render(c, http.StatusNotFound, "contact_form.html", p)
		return
	}
	p.Form = contactValues(contact)
	h.render(c, http.StatusOK, "contact_form.html", p)
}

func (h *Handler) EditSubmit(c *gin.Context) {
	id := c.Param("id")
	p := editPage(id)
	var f forms.Contact
	if !h.bind(c, &f, "contact_form.html", p) {
		return
	}
	if errs := forms.Validate(&f); errs != nil {
		p.Form = contactForm(f)
		p.Fields = errs
		h.render(c, http.StatusUnprocessableEntity, "contact_form.html", p)
		return
	}

	_, err := h.Contacts.Update(c.Request.Context(), id, model.UpdateContactRequest{
		Name:    &f.Name,
		Phone:   &f.Phone,
		Email:   &f.Email,
		Address: &f.Address,
	})
	if err != nil {
		if h.expired(c) {
			return
		}
		p.Form = contactForm(f)
		p.Error = err.Error()
		h.render(c, http.StatusBadRequest, "contact_form.html", p)
		return
	}
	redirect(c, guard.HomePath)
}

func (h *Handler) Delete(c *gin.Context) {
	if err := h.Contacts.Delete(c.Request.Context(), c.Param("id")); err != nil {
		if h.expired(c) {
			return
		}
		h.render(c, http.StatusBadRequest, "contacts.html", page{
			Title:    "Contacts",
			Contacts: h.Contacts.State().Contacts,
			Error:    err.Error(),
		})
		return
	}
	redirect(c, guard.HomePath)
}

func (h *Handler) LoginForm(c *gin.Context) {
	h.Session.ClearError()
	h.render(c, http.StatusOK, "login.html", page{Title: "Login"})
}

func (h *Handler) LoginSubmit(c *gin.Context) {
	var f forms.Login
	if !h.bind(c, &f, "login.html", page{Title: "Login"}) {
		return
	}
	errs := forms.Validate(&f)
	p := page{Title: "Login", Form: formValues{Email: f.Email}}
	if errs != nil {
		p.Fields = errs
		h.render(c, http.StatusUnprocessableEntity, "login.html", p)
		return
	}

	h.Session.Login(c.Request.Context(), f.Email, f.Password)
	if h.Session.IsAuthenticated() {
		redirect(c, guard.FallbackPath)
		return
	}
	p.Error = h.Session.State().Error
	h.render(c, http.StatusBadRequest, "login.html", p)
}

func (h *Handler) RegisterForm(c *gin.Context) {
	h.Session.ClearError()
	h.render(c, http.StatusOK, "register.html", page{Title: "Register"})
}

func (h *Handler) RegisterSubmit(c *gin.Context) {
	var f forms.Register
	p := page{Title: "Register"}
	if !h.bind(c, &f, "register.html", p) {
		return
	}
	if errs := forms.Validate(&f); errs != nil {
		p.Form = formValues{Name: f.Name, Email: f.Email}
		p.Fields = errs
		h.render(c, http.StatusUnprocessableEntity, "register.html", p)
		return
	}

	h.Session.Register(c.Request.Context(), f.Name, f.Email, f.Password)
	if h.Session.IsAuthenticated() {
		redirect(c, guard.FallbackPath)
		return
	}
	p.Form = formValues{Name: f.Name, Email: f.Email}
	p.Error = h.Session.State().Error
	h.render(c, http.StatusBadRequest, "register.html", p)
}

func (h *Handler) Logout(c *gin.Context) {
	h.Session.Logout(c.Request.Context())
	if h.Session.IsAuthenticated() {
		h.Log.Warn().Str("reason", h.Session.State().Error).Msg("logout did not clear the session")
		redirect(c, guard.HomePath)
		return
	}
	h.Contacts.Reset()
	redirect(c, guard.LoginPath)
}
