package main

import (
	"context"
	"fmt"
	"io"
	"sort"

	"github.com/spf13/cobra"

	"flavourkitchen/contact"
)

type contactFlags struct {
	endpoint string
	fields   contact.Submission
}

func newContactCmd() *cobra.Command {
	var flags contactFlags
	cmd := &cobra.Command{
		Use:   "contact",
		Short: "Send a message through a running site's contact endpoint",
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runContact(cmd.Context(), cmd.OutOrStdout(), flags)
		},
	}
	f := cmd.Flags()
	f.StringVar(&flags.endpoint, "endpoint", "http://localhost:8080/api/contact", "Contact API URL")
	f.StringVar(&flags.fields.Name, "name", "", "Your name")
	f.StringVar(&flags.fields.Email, "email", "", "Your email address")
	f.StringVar(&flags.fields.Subject, "subject", "", "One of: "+fmt.Sprint(contact.Subjects))
	f.StringVar(&flags.fields.Message, "message", "", "Message body")
	return cmd
}

func runContact(ctx context.Context, out io.Writer, flags contactFlags) error {
	form := contact.NewForm(contact.NewAPIClient(flags.endpoint))
	form.Set(contact.FieldName, flags.fields.Name)
	form.Set(contact.FieldEmail, flags.fields.Email)
	form.Set(contact.FieldSubject, flags.fields.Subject)
	form.Set(contact.FieldMessage, flags.fields.Message)

	if !form.Submit(ctx) {
		fields := make([]string, 0, len(form.Errors))
		for field := range form.Errors {
			fields = append(fields, field)
		}
		sort.Strings(fields)
		for _, field := range fields {
			fmt.Fprintf(out, "%s: %s\n", field, form.Errors[field])
		}
		return &exitErr{code: 2, msg: "invalid contact form"}
	}
	if form.Status == contact.StatusError {
		return &exitErr{code: 1, msg: form.ErrorMessage}
	}
	_, err := fmt.Fprintln(out, "Message sent!")
	return err
}
