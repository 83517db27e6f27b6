package webhook

import (
	"crypto/sha1"
	"crypto/subtle"
	"encoding/hex"
	"regexp"
)

const (
	// AuthorizationHeader is the lower-cased header carrying the signature.
	AuthorizationHeader = "authorization"

	signatureScheme = "Signature "
)

var signatureHeaderRegex = regexp.MustCompile(`^Signature ([0-9a-f]{40})$`)

// Sign returns hex(SHA1(body + secretKey)), the signature the platform sends
// for a payload.
func Sign(body []byte, secretKey string) string {
	h := sha1.New()
	h.Write(body)
	h.Write([]byte(secretKey))
	return hex.EncodeToString(h.Sum(nil))
}

// FormatAuthorization renders the authorization header value for a signature.
func FormatAuthorization(signature string) string {
	return signatureScheme + signature
}

// parseAuthorization extracts the 40 hex character signature. The whole value
// must match, so trailing data or upper-case hex is rejected.
func parseAuthorization(value string) (string, bool) {
	matches := signatureHeaderRegex.FindStringSubmatch(value)
	if matches == nil {
		return "", false
	}
	return matches[1], true
}

func ValidateSignature(payload []byte, header string, secretKey string) error {
	clientSignature, ok := parseAuthorization(header)
	if !ok {
		return &InvalidSignatureError{Reason: ReasonSignatureNotFound, Header: header}
	}

	serverSignature := Sign(payload, secretKey)
	if subtle.ConstantTimeCompare([]byte(clientSignature), []byte(serverSignature)) != 1 {
		return &InvalidSignatureError{Reason: ReasonSignatureMismatch, ClientSignature: clientSignature}
	}

	return nil
}
