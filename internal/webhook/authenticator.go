// Package webhook authenticates payment platform webhooks by sender address
// and by the SHA-1 signature in the authorization header.
package webhook

import "fmt"

// Authenticator holds a merchant secret and the sender allowlist. It is never
// mutated after New and may be shared between goroutines.
type Authenticator struct {
	secretKey string
	allowlist *Allowlist
}

func New(secretKey string) *Authenticator {
	return &Authenticator{
		secretKey: secretKey,
		allowlist: defaultAllowlist,
	}
}

// String keeps the secret out of formatted output.
func (a *Authenticator) String() string {
	return fmt.Sprintf("webhook.Authenticator{networks: %d}", a.allowlist.Len())
}

// AllowedNetworks returns a copy of the sender allowlist.
func (a *Authenticator) AllowedNetworks() []string {
	return a.allowlist.Networks()
}

type authOptions struct {
	checkClientIP bool
}

type Option func(*authOptions)

// WithoutClientIPCheck authenticates on the signature alone.
func WithoutClientIPCheck() Option {
	return func(o *authOptions) {
		o.checkClientIP = false
	}
}

// Authenticate checks the client IP (unless disabled) and then the signature.
func (a *Authenticator) Authenticate(req Request, opts ...Option) error {
	o := authOptions{checkClientIP: true}
	for _, opt := range opts {
		opt(&o)
	}
	return a.AuthenticateRequest(req, o.checkClientIP)
}

// AuthenticateRequest runs the client IP check first when checkClientIP is
// set; its failure is returned without checking the signature.
func (a *Authenticator) AuthenticateRequest(req Request, checkClientIP bool) error {
	if checkClientIP {
		if err := a.AuthenticateClientIP(req.ClientIP()); err != nil {
			return err
		}
	}
	return a.AuthenticateSignature(req)
}

func (a *Authenticator) AuthenticateClientIP(clientIP string) error {
	if !a.allowlist.Contains(clientIP) {
		return &InvalidClientIPError{
			ClientIP:        clientIP,
			AllowedNetworks: a.allowlist.Networks(),
		}
	}
	return nil
}

func (a *Authenticator) AuthenticateSignature(req Request) error {
	header, ok := req.Headers()[AuthorizationHeader]
	if !ok {
		return &InvalidSignatureError{Reason: ReasonHeaderNotFound}
	}
	return ValidateSignature(req.Body(), header, a.secretKey)
}
