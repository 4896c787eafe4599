package handler

import (
	"encoding/json"
	"fmt"
	"net/http"
	"strings"

	"github.com/aws/aws-lambda-go/events"
	"github.com/golang-jwt/jwt/v5"

	"github.com/jun/gophbox/internal/logging"
)

// StoreWarningHeader is set when a mutation was applied in memory but could
// not be written through to durable storage.
const StoreWarningHeader = "X-Store-Warning"

// header does a case-insensitive header lookup.
func header(req events.APIGatewayProxyRequest, name string) string {
	for k, v := range req.Headers {
		if strings.EqualFold(k, name) {
			return v
		}
	}
	return ""
}

// tokenFromRequest returns the bearer token, falling back to the
// session_token cookie.
func tokenFromRequest(req events.APIGatewayProxyRequest) string {
	if auth := header(req, "Authorization"); strings.HasPrefix(auth, "Bearer ") {
		return strings.TrimPrefix(auth, "Bearer ")
	}
	for _, part := range strings.Split(header(req, "Cookie"), ";") {
		if v, ok := strings.CutPrefix(strings.TrimSpace(part), "session_token="); ok {
			return v
		}
	}
	return ""
}

// GetUserID extracts the user ID from the Authorization header or session cookie.
func GetUserID(req events.APIGatewayProxyRequest, jwtSecret string) (string, error) {
	tokenString := tokenFromRequest(req)
	if tokenString == "" {
		return "", fmt.Errorf("no authorization token found")
	}

	token, err := jwt.Parse(tokenString, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return []byte(jwtSecret), nil
	})
	if err != nil {
		return "", fmt.Errorf("invalid token: %v", err)
	}

	if claims, ok := token.Claims.(jwt.MapClaims); ok && token.Valid {
		if sub, ok := claims["sub"].(string); ok && sub != "" {
			return sub, nil
		}
	}
	return "", fmt.Errorf("invalid token claims")
}

// requestLogger tags l with the API Gateway request id.
func requestLogger(l logging.Logger, req events.APIGatewayProxyRequest) logging.Logger {
	if id := req.RequestContext.RequestID; id != "" {
		return l.With("request_id", id)
	}
	return l
}

func jsonResponse(status int, v any) events.APIGatewayProxyResponse {
	body, _ := json.Marshal(v)
	return events.APIGatewayProxyResponse{
		StatusCode: status,
		Body:       string(body),
		Headers: map[string]string{
			"Content-Type": "application/json",
		},
	}
}

func textResponse(status int, msg string) events.APIGatewayProxyResponse {
	return events.APIGatewayProxyResponse{StatusCode: status, Body: msg}
}

func unauthorized(err error) events.APIGatewayProxyResponse {
	return textResponse(http.StatusUnauthorized, fmt.Sprintf("unauthorized: %v", err))
}
