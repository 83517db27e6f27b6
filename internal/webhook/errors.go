package webhook

import (
	"errors"
	"fmt"
	"strings"
)

var (
	ErrInvalidClientIP  = errors.New("invalid client IP")
	ErrInvalidSignature = errors.New("invalid signature")
)

// Wire codes returned to the sender in error responses.
const (
	CodeInvalidClientIP  = "INVALID_CLIENT_IP"
	CodeInvalidSignature = "INVALID_SIGNATURE"
)

type SignatureReason string

const (
	ReasonHeaderNotFound    SignatureReason = "header_not_found"
	ReasonSignatureNotFound SignatureReason = "signature_not_found"
	ReasonSignatureMismatch SignatureReason = "signature_mismatch"
)

// InvalidClientIPError reports a sender address outside the allowlist.
type InvalidClientIPError struct {
	ClientIP        string
	AllowedNetworks []string
}

func (e *InvalidClientIPError) Error() string {
	return fmt.Sprintf("client IP address (%s) not found in allowed IP addresses whitelist (%s)",
		e.ClientIP, strings.Join(e.AllowedNetworks, ", "))
}

func (e *InvalidClientIPError) Is(target error) bool {
	return target == ErrInvalidClientIP
}

// InvalidSignatureError reports a missing, malformed or mismatching
// signature. Header is set for ReasonSignatureNotFound and ClientSignature
// for ReasonSignatureMismatch. The locally computed signature is never kept.
type InvalidSignatureError struct {
	Reason          SignatureReason
	Header          string
	ClientSignature string
}

func (e *InvalidSignatureError) Error() string {
	switch e.Reason {
	case ReasonHeaderNotFound:
		return `"authorization" header not found in webhook request`
	case ReasonSignatureNotFound:
		return `signature not found in "authorization" header from webhook request: ` + e.Header
	case ReasonSignatureMismatch:
		return fmt.Sprintf(`invalid signature: signature provided in "authorization" header (%s) does not match with expected`,
			e.ClientSignature)
	default:
		return "invalid signature"
	}
}

func (e *InvalidSignatureError) Is(target error) bool {
	return target == ErrInvalidSignature
}

// Code maps an authentication error to its wire code, or "" for anything else.
func Code(err error) string {
	switch {
	case errors.Is(err, ErrInvalidClientIP):
		return CodeInvalidClientIP
	case errors.Is(err, ErrInvalidSignature):
		return CodeInvalidSignature
	default:
		return ""
	}
}

// Reason returns a bounded, log and metric friendly cause for err.
func Reason(err error) string {
	var sigErr *InvalidSignatureError
	switch {
	case err == nil:
		return ""
	case errors.As(err, &sigErr):
		return string(sigErr.Reason)
	case errors.Is(err, ErrInvalidClientIP):
		return "invalid_client_ip"
	default:
		return "unknown"
	}
}
