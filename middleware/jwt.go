package middleware

import (
	"fmt"
	"strings"
	"time"

	"coursehub/config"

	"github.com/gofiber/fiber/v2"
	"github.com/golang-jwt/jwt/v4"
)

const (
	TokenCookie = "token"
	TokenTTL    = 24 * time.Hour
)

// GenerateJWT generates a JWT token for the user
func GenerateJWT(userID uint, name, role, email string) (string, error) {
	claims := jwt.MapClaims{
		"userId": userID,
		"name":   name,
		"role":   role,
		"email":  email,
		"iat":    time.Now().Unix(),
		"exp":    time.Now().Add(TokenTTL).Unix(),
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	jwtSecret := []byte(config.Current().JWTKey)

	return token.SignedString(jwtSecret)
}

// SetTokenCookie stores the token in an http-only cookie for browser clients.
func SetTokenCookie(c *fiber.Ctx, token string) {
	c.Cookie(&fiber.Cookie{
		Name:     TokenCookie,
		Value:    token,
		Expires:  time.Now().Add(TokenTTL),
		HTTPOnly: true,
		Secure:   config.Current().CookieSecure,
		SameSite: "Lax",
		Path:     "/",
	})
}

func ClearTokenCookie(c *fiber.Ctx) {
	c.Cookie(&fiber.Cookie{
		Name:     TokenCookie,
		Value:    "",
		Expires:  time.Now().Add(-time.Hour),
		HTTPOnly: true,
		Path:     "/",
	})
}

// tokenFromRequest reads the bearer token, falling back to the auth cookie.
func tokenFromRequest(c *fiber.Ctx) (string, error) {
	if authHeader := c.Get("Authorization"); authHeader != "" {
		if !strings.HasPrefix(authHeader, "Bearer ") {
			return "", fmt.Errorf("Invalid Authorization header format")
		}
		return authHeader[len("Bearer "):], nil
	}
	if cookie := c.Cookies(TokenCookie); cookie != "" {
		return cookie, nil
	}
	return "", fmt.Errorf("Missing or invalid Authorization header")
}

// authenticate validates the request token and stores userId and role in
// the context.
func authenticate(c *fiber.Ctx) error {
	tokenString, err := tokenFromRequest(c)
	if err != nil {
		return err
	}

	token, err := jwt.Parse(tokenString, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return []byte(config.Current().JWTKey), nil
	})
	if err != nil || !token.Valid {
		return fmt.Errorf("Invalid or expired token")
	}

	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok {
		return fmt.Errorf("Invalid token payload")
	}
	// JWT numbers decode as float64
	userID, ok := claims["userId"].(float64)
	if !ok || userID <= 0 {
		return fmt.Errorf("Invalid token payload")
	}
	role, _ := claims["role"].(string)

	c.Locals("userId", uint(userID))
	c.Locals("role", role)
	return nil
}

// Unauthorized answers 401 for API clients and sends browsers to the login page.
func Unauthorized(c *fiber.Ctx, message string) error {
	if WantsJSON(c) {
		return JsonResponse(c, fiber.StatusUnauthorized, false, message, nil)
	}
	return c.Redirect("/login", fiber.StatusSeeOther)
}

// JWTMiddleware rejects requests without a valid token.
func JWTMiddleware(c *fiber.Ctx) error {
	if err := authenticate(c); err != nil {
		return Unauthorized(c, err.Error())
	}
	return c.Next()
}

// OptionalJWT identifies the user when a valid token is present and lets
// anonymous requests through.
func OptionalJWT(c *fiber.Ctx) error {
	_ = authenticate(c)
	return c.Next()
}
