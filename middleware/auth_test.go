package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var testSecret = []byte("middleware-secret")

func signed(t *testing.T, method jwt.SigningMethod, key interface{}, claims jwt.MapClaims) string {
	t.Helper()
	raw, err := jwt.NewWithClaims(method, claims).SignedString(key)
	require.NoError(t, err)
	return raw
}

func executorClaims(exp time.Time) jwt.MapClaims {
	return jwt.MapClaims{ClaimSubject: "exec-1", ClaimRole: RoleExecutor, "exp": exp.Unix()}
}

func protected(roles ...string) (http.Handler, *string) {
	var subject string
	h := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		subject, _ = SubjectFromContext(r.Context())
		w.WriteHeader(http.StatusNoContent)
	})
	return Authenticate(testSecret)(Authorize(roles...)(h)), &subject
}

func serve(h http.Handler, authorization string) int {
	req := httptest.NewRequest(http.MethodPost, "/", nil)
	if authorization != "" {
		req.Header.Set("Authorization", authorization)
	}
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec.Code
}

func TestAuthenticateAcceptsValidToken(t *testing.T) {
	h, subject := protected(RoleExecutor)
	token := signed(t, jwt.SigningMethodHS256, testSecret, executorClaims(time.Now().Add(time.Hour)))

	assert.Equal(t, http.StatusNoContent, serve(h, "Bearer "+token))
	assert.Equal(t, "exec-1", *subject)
}

func TestAuthenticateRejects(t *testing.T) {
	h, _ := protected(RoleExecutor)
	valid := signed(t, jwt.SigningMethodHS256, testSecret, executorClaims(time.Now().Add(time.Hour)))

	tests := []struct {
		name   string
		header string
	}{
		{"missing header", ""},
		{"wrong scheme", "Basic " + valid},
		{"empty token", "Bearer "},
		{"garbage", "Bearer not.a.token"},
		{"expired", "Bearer " + signed(t, jwt.SigningMethodHS256, testSecret, executorClaims(time.Now().Add(-time.Minute)))},
		{"wrong secret", "Bearer " + signed(t, jwt.SigningMethodHS256, []byte("other"), executorClaims(time.Now().Add(time.Hour)))},
		{"alg none", "Bearer " + signed(t, jwt.SigningMethodNone, jwt.UnsafeAllowNoneSignatureType, executorClaims(time.Now().Add(time.Hour)))},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, http.StatusUnauthorized, serve(h, tt.header))
		})
	}
}

func TestAuthorizeChecksRole(t *testing.T) {
	h, _ := protected(RoleExecutor)

	viewer := signed(t, jwt.SigningMethodHS256, testSecret, jwt.MapClaims{ClaimSubject: "v", ClaimRole: "viewer"})
	assert.Equal(t, http.StatusForbidden, serve(h, "Bearer "+viewer))

	noRole := signed(t, jwt.SigningMethodHS256, testSecret, jwt.MapClaims{ClaimSubject: "v"})
	assert.Equal(t, http.StatusUnauthorized, serve(h, "Bearer "+noRole))
}

func TestClaimsFromContextWithoutToken(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	_, err := ClaimsFromContext(req.Context())
	assert.ErrorIs(t, err, ErrNoClaims)
	_, err = SubjectFromContext(req.Context())
	assert.ErrorIs(t, err, ErrNoClaims)
}
