package views

import (
	"errors"
	"html/template"
	"io"
	"io/fs"
)

var authTmpl *template.Template

// loadTemplatesFromFS loads auth page templates from the given fs and dir.
// Used by LoadTemplates and by tests to simulate failure scenarios.
func loadTemplatesFromFS(fsys fs.FS, dir string) error {
	sub, err := fs.Sub(fsys, dir)
	if err != nil {
		return err
	}
	authTmpl, err = template.ParseFS(sub, "*.html")
	if err != nil {
		return err
	}
	return nil
}

// LoadTemplates loads embedded auth templates. Call during startup before
// serving requests; if it returns an error, do not start the server.
func LoadTemplates() error {
	return loadTemplatesFromFS(viewsFS, "templates")
}

// LoginData is the view model for the login page.
type LoginData struct {
	Error string
}

func RenderLogin(w io.Writer, data LoginData) error {
	if authTmpl == nil {
		return errors.New("auth templates not loaded: call views.LoadTemplates during startup")
	}
	return authTmpl.ExecuteTemplate(w, "login.html", data)
}

// SignupData is the view model for the signup page.
type SignupData struct {
	Error string
}

func RenderSignup(w io.Writer, data SignupData) error {
	if authTmpl == nil {
		return errors.New("auth templates not loaded: call views.LoadTemplates during startup")
	}
	return authTmpl.ExecuteTemplate(w, "signup.html", data)
}
