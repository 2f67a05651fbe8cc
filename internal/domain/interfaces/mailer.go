package interfaces

import "context"

// Mailer sends the transactional mail the flows depend on. Implementations
// must not block past the context deadline.
type Mailer interface {
	// SendAuthCode delivers the second-factor code.
	SendAuthCode(ctx context.Context, to, code string) error

	// SendSignupConfirmation delivers the registration confirmation link.
	SendSignupConfirmation(ctx context.Context, to, confirmURL string) error
}
