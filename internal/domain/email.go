package domain

import "context"

// Mailer sends transactional email. Implementations must be safe for
// concurrent use.
type Mailer interface {
	// SendRSVPConfirmation notifies a user that their seat is confirmed.
	SendRSVPConfirmation(ctx context.Context, to, name string, event *Event) error
}
