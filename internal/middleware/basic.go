// Package middleware provides HTTP middleware for the user service.
package middleware

import (
	"crypto/subtle"
	"encoding/base64"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
)

var (
	ErrAuthHeaderMissing    = errors.New("authorization header missing")
	ErrAuthHeaderMalformed  = errors.New("authorization header malformed")
	ErrAuthHeaderEmptyField = errors.New("authorization header has empty username or password")
)

// Credential is a decoded Basic username/password pair.
type Credential struct {
	Username string
	Password string
}

// BasicAuthError is returned for every Basic parsing failure. The caller
// must answer with Challenge() in the WWW-Authenticate header.
type BasicAuthError struct {
	Reason error
	Realm  string
}

func (e *BasicAuthError) Error() string {
	return e.Reason.Error()
}

func (e *BasicAuthError) Unwrap() error {
	return e.Reason
}

// Challenge returns the WWW-Authenticate value for this rejection.
func (e *BasicAuthError) Challenge() string {
	return basicChallenge(e.Realm)
}

func basicChallenge(realm string) string {
	if realm == "" {
		return "Basic"
	}
	return fmt.Sprintf("Basic realm=%q", realm)
}

// ParseBasicAuth decodes an Authorization header value of the form
// "Basic base64(username:password)". Fields are returned exactly as decoded.
// The password may contain colons; the username may not.
func ParseBasicAuth(header string) (Credential, error) {
	return parseBasicAuth(header, "")
}

func parseBasicAuth(header, realm string) (Credential, error) {
	fail := func(reason error) (Credential, error) {
		return Credential{}, &BasicAuthError{Reason: reason, Realm: realm}
	}

	if header == "" {
		return fail(ErrAuthHeaderMissing)
	}

	scheme, payload, ok := strings.Cut(header, " ")
	if !ok || payload == "" || !strings.EqualFold(scheme, "Basic") {
		return fail(ErrAuthHeaderMalformed)
	}

	decoded, err := base64.StdEncoding.DecodeString(payload)
	if err != nil {
		return fail(ErrAuthHeaderMalformed)
	}

	username, password, ok := strings.Cut(string(decoded), ":")
	if !ok {
		return fail(ErrAuthHeaderMalformed)
	}
	if username == "" || password == "" {
		return fail(ErrAuthHeaderEmptyField)
	}

	return Credential{Username: username, Password: password}, nil
}

// BasicAuthConfig holds the single credential pair accepted by StaticBasicAuth.
type BasicAuthConfig struct {
	Username string
	Password string
	// Realm is optional and only affects the WWW-Authenticate challenge.
	Realm string
}

// StaticBasicAuth admits requests whose Basic credentials equal the
// configured pair. It does not consult the user store. An empty configured
// pair never matches, since the parser rejects empty fields.
func StaticBasicAuth(config BasicAuthConfig) gin.HandlerFunc {
	wantUser := []byte(config.Username)
	wantPass := []byte(config.Password)

	return func(c *gin.Context) {
		cred, err := parseBasicAuth(c.GetHeader("Authorization"), config.Realm)
		if err != nil {
			rejectBasic(c, config.Realm, basicRejectMessage(err))
			return
		}

		// Evaluate both comparisons so timing does not reveal which one failed.
		userOK := subtle.ConstantTimeCompare([]byte(cred.Username), wantUser)
		passOK := subtle.ConstantTimeCompare([]byte(cred.Password), wantPass)
		if userOK&passOK != 1 {
			rejectBasic(c, config.Realm, "Invalid credentials")
			return
		}

		c.Next()
	}
}

func basicRejectMessage(err error) string {
	switch {
	case errors.Is(err, ErrAuthHeaderMissing):
		return "Authentication required"
	case errors.Is(err, ErrAuthHeaderEmptyField):
		return "Invalid credentials format"
	default:
		return "Malformed authorization header"
	}
}

func rejectBasic(c *gin.Context, realm, message string) {
	c.Header("WWW-Authenticate", basicChallenge(realm))
	c.String(http.StatusUnauthorized, message)
	c.Abort()
}
