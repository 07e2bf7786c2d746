package handlers

import (
	"net/http"

	"flavourkitchen/contact"
	"flavourkitchen/views"
)

// About renders the about page. A failed or empty read falls back to the
// built-in copy rather than an error page.
func (s *Site) About(w http.ResponseWriter, r *http.Request) {
	about, err := s.Repo.GetAboutPage(r.Context())
	if err != nil {
		s.logFor(r).WarnContext(r.Context(), "about page fetch failed, using defaults", "error", err, "cause", causeOf(err))
		about = nil
	}
	s.render(w, r, http.StatusOK, "about", views.NewAboutPage(about))
}

func (s *Site) contactPage(form *contact.Form) views.ContactPage {
	return views.ContactPage{
		Meta: views.Meta{
			Title:       "Contact",
			Description: "Get in touch with the Flavour Kitchen team.",
			Nav:         "contact",
		},
		Form:     form,
		Subjects: contact.Subjects,
	}
}

// ContactForm renders an empty contact form.
func (s *Site) ContactForm(w http.ResponseWriter, r *http.Request) {
	s.render(w, r, http.StatusOK, "contact", s.contactPage(contact.NewForm(s.Relay)))
}

// SubmitContactForm handles the plain HTML form post. The form is validated
// and sent through the relay in-process, then re-rendered in its new state.
func (s *Site) SubmitContactForm(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		http.Error(w, "Invalid form submission", http.StatusBadRequest)
		return
	}

	form := contact.NewForm(s.Relay)
	for _, field := range []string{contact.FieldName, contact.FieldEmail, contact.FieldSubject, contact.FieldMessage} {
		form.Set(field, r.PostForm.Get(field))
	}
	form.Submit(r.Context())

	status := http.StatusOK
	switch {
	case form.Errors != nil:
		status = http.StatusBadRequest
	case form.Status == contact.StatusError:
		status = http.StatusInternalServerError
	}
	s.render(w, r, status, "contact", s.contactPage(form))
}
