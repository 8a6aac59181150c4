package middleware

import (
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/valyala/fasthttp"

	"github.com/sorayamlj/FocusTache/pkg/httpcontext"
)

const testSecret = "test-secret"

func sign(t *testing.T, method jwt.SigningMethod, claims jwt.MapClaims) string {
	t.Helper()
	token, err := jwt.NewWithClaims(method, claims).SignedString([]byte(testSecret))
	require.NoError(t, err)
	return token
}

func serve(token string, spoofed string) (*fasthttp.RequestCtx, *string) {
	var seen string
	handler := JWTAuth(testSecret, "focustache", nil)(func(ctx *fasthttp.RequestCtx) {
		seen = httpcontext.CallerFromRequest(ctx).Email
		ctx.SetStatusCode(fasthttp.StatusOK)
	})

	ctx := &fasthttp.RequestCtx{}
	if token != "" {
		ctx.Request.Header.Set("Authorization", "Bearer "+token)
	}
	if spoofed != "" {
		ctx.Request.Header.Set(httpcontext.HeaderUserEmail, spoofed)
	}
	handler(ctx)
	return ctx, &seen
}

func TestJWTAuth_ForwardsClaims(t *testing.T) {
	token := sign(t, jwt.SigningMethodHS256, jwt.MapClaims{
		"email":   "ana@gmail.com",
		"user_id": "u-1",
		"iss":     "focustache",
		"exp":     time.Now().Add(time.Hour).Unix(),
	})

	ctx, seen := serve(token, "mallory@gmail.com")
	assert.Equal(t, fasthttp.StatusOK, ctx.Response.StatusCode())
	assert.Equal(t, "ana@gmail.com", *seen)
	assert.Equal(t, "u-1", string(ctx.Request.Header.Peek(httpcontext.HeaderUserID)))
}

func TestJWTAuth_Rejects(t *testing.T) {
	valid := jwt.MapClaims{"email": "ana@gmail.com", "iss": "focustache"}
	expired := jwt.MapClaims{"email": "ana@gmail.com", "iss": "focustache", "exp": time.Now().Add(-time.Hour).Unix()}
	wrongIssuer := jwt.MapClaims{"email": "ana@gmail.com", "iss": "someone-else"}
	noEmail := jwt.MapClaims{"user_id": "u-1", "iss": "focustache"}

	forged, err := jwt.NewWithClaims(jwt.SigningMethodHS256, valid).SignedString([]byte("other-secret"))
	require.NoError(t, err)

	tests := []struct {
		name  string
		token string
	}{
		{"missing", ""},
		{"garbage", "not-a-jwt"},
		{"expired", sign(t, jwt.SigningMethodHS256, expired)},
		{"wrong issuer", sign(t, jwt.SigningMethodHS256, wrongIssuer)},
		{"no email", sign(t, jwt.SigningMethodHS256, noEmail)},
		{"wrong algorithm", sign(t, jwt.SigningMethodHS512, valid)},
		{"forged", forged},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ctx, seen := serve(tt.token, "mallory@gmail.com")
			assert.Equal(t, fasthttp.StatusUnauthorized, ctx.Response.StatusCode())
			assert.Empty(t, *seen)
			assert.Contains(t, string(ctx.Response.Body()), `"UNAUTHORIZED"`)
		})
	}
}

func TestObserve_PassesThrough(t *testing.T) {
	called := false
	handler := Observe(nil)(func(ctx *fasthttp.RequestCtx) {
		called = true
		ctx.SetStatusCode(fasthttp.StatusCreated)
	})
	ctx := &fasthttp.RequestCtx{}
	ctx.Request.Header.SetMethod(fasthttp.MethodPost)
	handler(ctx)

	assert.True(t, called)
	assert.Equal(t, fasthttp.StatusCreated, ctx.Response.StatusCode())
}
