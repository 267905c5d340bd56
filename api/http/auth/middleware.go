package auth

import (
	"errors"
	"fmt"
	"github.com/awakari/venue-chat/model/chat"
	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
	"net/http"
	"strings"
)

// Claims are the bearer token claims: the subject is the requester's user id.
type Claims struct {
	jwt.RegisteredClaims
	Role string `json:"role,omitempty"`
}

const keyRequester = "requester"
const prefixBearer = "Bearer "

var ErrUnauthenticated = errors.New("unauthenticated")

// NewMiddleware verifies the HS256 bearer token and stores the requester in the request context.
// The requester is an administrator when the token's role claim equals the admin role.
func NewMiddleware(secret []byte, adminRole string) gin.HandlerFunc {
	parser := jwt.NewParser(jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}))
	keyFunc := func(t *jwt.Token) (any, error) {
		return secret, nil
	}
	return func(ctx *gin.Context) {
		raw, found := strings.CutPrefix(ctx.GetHeader("Authorization"), prefixBearer)
		raw = strings.TrimSpace(raw)
		var err error
		if !found || raw == "" {
			err = fmt.Errorf("%w: missing bearer token", ErrUnauthenticated)
		}
		var claims Claims
		if err == nil {
			_, err = parser.ParseWithClaims(raw, &claims, keyFunc)
			if err != nil {
				err = fmt.Errorf("%w: %s", ErrUnauthenticated, err)
			}
		}
		if err == nil && claims.Subject == "" {
			err = fmt.Errorf("%w: token subject is missing", ErrUnauthenticated)
		}
		if err != nil {
			ctx.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{
				"kind":    "Unauthenticated",
				"message": err.Error(),
			})
			return
		}
		SetRequester(ctx, chat.Requester{
			Id:    claims.Subject,
			Admin: adminRole != "" && claims.Role == adminRole,
		})
		ctx.Next()
	}
}

func SetRequester(ctx *gin.Context, req chat.Requester) {
	ctx.Set(keyRequester, req)
}

func GetRequester(ctx *gin.Context) (req chat.Requester, ok bool) {
	var v any
	v, ok = ctx.Get(keyRequester)
	if ok {
		req, ok = v.(chat.Requester)
	}
	return
}
