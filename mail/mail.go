// Package mail sends transactional email through an HTTP provider.
package mail

import "context"

// Message is one outbound email.
type Message struct {
	From    string
	To      []string
	ReplyTo string
	Subject string
	HTML    string
}

// Sender delivers a Message. Errors mean the provider did not accept it.
type Sender interface {
	Send(ctx context.Context, msg Message) (id string, err error)
}
