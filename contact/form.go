package contact

import (
	"context"
	"errors"
)

// Status is the state of a Form.
type Status string

const (
	StatusIdle       Status = "idle"
	StatusSubmitting Status = "submitting"
	StatusSuccess    Status = "success"
	StatusError      Status = "error"
)

// FallbackErrorMessage is shown when a failed send carried no message of its
// own.
const FallbackErrorMessage = "Failed to send message"

// Sender makes the single outbound request for a validated submission.
type Sender interface {
	Send(ctx context.Context, s Submission) error
}

// ServerError is a failure reported by the contact endpoint, with the
// message it asked to be shown.
type ServerError struct {
	Status  int
	Message string
}

func (e *ServerError) Error() string {
	return e.Message
}

// Form is the contact form's state: field values, per-field errors and the
// idle → submitting → success|error lifecycle. A Form is not safe for
// concurrent use; it belongs to one user interaction.
type Form struct {
	Fields       Submission
	Errors       FieldErrors
	Status       Status
	ErrorMessage string

	sender Sender
}

func NewForm(sender Sender) *Form {
	return &Form{Status: StatusIdle, sender: sender}
}

// Set updates one field and clears any error shown for it. Unknown field
// names are ignored.
func (f *Form) Set(field, value string) {
	switch field {
	case FieldName:
		f.Fields.Name = value
	case FieldEmail:
		f.Fields.Email = value
	case FieldSubject:
		f.Fields.Subject = value
	case FieldMessage:
		f.Fields.Message = value
	default:
		return
	}
	delete(f.Errors, field)
}

// Submit validates the fields and, if they pass, sends them once. It returns
// true when a send was attempted. Validation failures leave the status
// untouched and fill Errors instead.
func (f *Form) Submit(ctx context.Context) bool {
	if f.Status == StatusSubmitting {
		return false
	}
	if errs := Validate(f.Fields); errs != nil {
		f.Errors = errs
		return false
	}

	f.Status = StatusSubmitting
	f.Errors = nil
	f.ErrorMessage = ""

	if err := f.sender.Send(ctx, f.Fields); err != nil {
		f.Status = StatusError
		f.ErrorMessage = userMessage(err)
		return true
	}
	f.Status = StatusSuccess
	f.Fields = Submission{}
	return true
}

// Reset returns a finished form to idle so another message can be sent.
func (f *Form) Reset() {
	if f.Status == StatusSuccess || f.Status == StatusError {
		f.Status = StatusIdle
		f.ErrorMessage = ""
	}
}

func userMessage(err error) string {
	var se *ServerError
	if errors.As(err, &se) && se.Message != "" {
		return se.Message
	}
	return FallbackErrorMessage
}
