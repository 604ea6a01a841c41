package web

import (
	"embed"
	"html/template"
	"time"

	"contactbook/internal/forms"
	"contactbook/internal/model"
)

//go:embed templates/*.html
var templateFS embed.FS

func loadTemplates() *template.Template {
	return template.Must(template.New("").Funcs(template.FuncMap{
		"field": newField,
	}).ParseFS(templateFS, "templates/*.html"))
}

// page is the data every template renders from.
type page struct {
	Title     string
	User      *model.User
	ExpiresAt *time.Time
	Error     string
	Contacts  []model.Contact
	Query     string
	Form      formValues
	Fields    forms.FieldErrors
	Action    string
	Submit    string
	NotFound  bool
}

type formValues struct {
	Name    string
	Phone   string
	Email   string
	Address string
}

type fieldView struct {
	Name        string
	Label       string
	Type        string
	Value       string
	Placeholder string
	Error       string
}

func newField(name, label, typ, value, placeholder string, errs forms.FieldErrors) fieldView {
	return fieldView{
		Name:        name,
		Label:       label,
		Type:        typ,
		Value:       value,
		Placeholder: placeholder,
		Error:       errs[name],
	}
}

func contactForm(f forms.Contact) formValues {
	return formValues{Name: f.Name, Phone: f.Phone, Email: f.Email, Address: f.Address}
}

func contactValues(c model.Contact) formValues {
	return formValues{Name: c.Name, Phone: c.Phone, Email: c.Email, Address: c.Address}
}
