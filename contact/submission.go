// Package contact validates contact form submissions and relays them to the
// site owners by email.
package contact

import (
	"encoding/json"
	"errors"
	"fmt"
	"regexp"
	"strings"
	"unicode/utf8"
)

// MinMessageLength is the shortest message the form accepts, in characters,
// after trimming.
const MinMessageLength = 10

// Subjects offered by the contact page.
var Subjects = []string{
	"Recipe Question",
	"Recipe Suggestion",
	"Partnership / Collaboration",
	"Bug Report",
	"General Inquiry",
}

// Field names, as used in JSON bodies, HTML forms and FieldErrors.
const (
	FieldName    = "name"
	FieldEmail   = "email"
	FieldSubject = "subject"
	FieldMessage = "message"
)

var emailPattern = regexp.MustCompile(`^[^\s@]+@[^\s@]+\.[^\s@]+$`)

type Submission struct {
	Name    string `json:"name"`
	Email   string `json:"email"`
	Subject string `json:"subject"`
	Message string `json:"message"`
}

// FieldErrors maps a field name to the message shown next to it.
type FieldErrors map[string]string

// Validate applies the form rules. It returns nil when s may be sent.
func Validate(s Submission) FieldErrors {
	errs := FieldErrors{}
	if strings.TrimSpace(s.Name) == "" {
		errs[FieldName] = "Name is required"
	}
	email := strings.TrimSpace(s.Email)
	switch {
	case email == "":
		errs[FieldEmail] = "Email is required"
	case !emailPattern.MatchString(email):
		errs[FieldEmail] = "Please enter a valid email address"
	}
	if strings.TrimSpace(s.Subject) == "" {
		errs[FieldSubject] = "Subject is required"
	}
	msg := strings.TrimSpace(s.Message)
	switch {
	case msg == "":
		errs[FieldMessage] = "Message is required"
	case utf8.RuneCountInString(msg) < MinMessageLength:
		errs[FieldMessage] = fmt.Sprintf("Message must be at least %d characters", MinMessageLength)
	}
	if len(errs) == 0 {
		return nil
	}
	return errs
}

// Complete reports whether every field is non-empty after trimming. This is
// the only check the relay makes.
func (s Submission) Complete() bool {
	return strings.TrimSpace(s.Name) != "" &&
		strings.TrimSpace(s.Email) != "" &&
		strings.TrimSpace(s.Subject) != "" &&
		strings.TrimSpace(s.Message) != ""
}

// ErrInvalid means a submission is missing a field or is not shaped like one.
var ErrInvalid = errors.New("all fields are required")

// ParseSubmission decodes a JSON request body. A body that is not JSON at
// all is returned as a plain decode error; a JSON value that is not an object
// of four strings is ErrInvalid.
func ParseSubmission(body []byte) (Submission, error) {
	var raw any
	if err := json.Unmarshal(body, &raw); err != nil {
		return Submission{}, fmt.Errorf("decode contact body: %w", err)
	}
	obj, ok := raw.(map[string]any)
	if !ok {
		return Submission{}, ErrInvalid
	}
	var s Submission
	for field, dst := range map[string]*string{
		FieldName:    &s.Name,
		FieldEmail:   &s.Email,
		FieldSubject: &s.Subject,
		FieldMessage: &s.Message,
	} {
		v, ok := obj[field].(string)
		if !ok {
			return Submission{}, ErrInvalid
		}
		*dst = v
	}
	if !s.Complete() {
		return Submission{}, ErrInvalid
	}
	return s, nil
}
