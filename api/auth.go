package api

import (
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	fiber "github.com/gofiber/fiber/v2"
	"github.com/golang-jwt/jwt"
	"github.com/google/uuid"
	"github.com/mudler/xlog"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"

	"github.com/agentrix/agentrix/db"
	models "github.com/agentrix/agentrix/dbmodels"
)

const tokenLifetime = 24 * time.Hour

// Claims holds the JWT fields of an access token.
type Claims struct {
	UserID     string `json:"sub"`
	Email      string `json:"email"`
	Expiration int64  `json:"exp"`
}

func (c *Claims) Valid() error {
	if c.UserID == "" {
		return errors.New("sub claim is missing")
	}
	if c.Expiration < time.Now().Unix() {
		return errors.New("token is expired")
	}
	return nil
}

type credentials struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

func (a *App) Register() func(c *fiber.Ctx) error {
	return func(c *fiber.Ctx) error {
		// 1. Parse and validate body
		var creds credentials
		if err := c.BodyParser(&creds); err != nil {
			return errorJSONMessage(c, http.StatusBadRequest, "Invalid request")
		}
		creds.Email = strings.TrimSpace(strings.ToLower(creds.Email))
		if creds.Email == "" || !strings.Contains(creds.Email, "@") {
			return errorJSONMessage(c, http.StatusBadRequest, "A valid email is required")
		}
		if len(creds.Password) < 8 {
			return errorJSONMessage(c, http.StatusBadRequest, "Password must be at least 8 characters")
		}

		// 2. Reject duplicate emails
		var existing models.User
		err := db.DB.Where("email = ?", creds.Email).First(&existing).Error
		if err == nil {
			return errorJSONMessage(c, http.StatusBadRequest, "Email is already registered")
		}
		if !errors.Is(err, gorm.ErrRecordNotFound) {
			return internalError(c, "DB error while checking email")
		}

		// 3. Hash password and create user
		hash, err := bcrypt.GenerateFromPassword([]byte(creds.Password), bcrypt.DefaultCost)
		if err != nil {
			return internalError(c, "Failed to hash password")
		}
		user := models.User{
			Email:        creds.Email,
			PasswordHash: string(hash),
		}
		if err := db.DB.Create(&user).Error; err != nil {
			return internalError(c, "Failed to create user")
		}

		// 4. Issue token
		token, err := a.issueToken(&user)
		if err != nil {
			return internalError(c, "Failed to issue token")
		}

		xlog.Info("User registered", "user", user.ID)
		return c.Status(fiber.StatusCreated).JSON(fiber.Map{
			"token": token,
			"user":  user,
		})
	}
}

func (a *App) Login() func(c *fiber.Ctx) error {
	return func(c *fiber.Ctx) error {
		var creds credentials
		if err := c.BodyParser(&creds); err != nil {
			return errorJSONMessage(c, http.StatusBadRequest, "Invalid request")
		}
		creds.Email = strings.TrimSpace(strings.ToLower(creds.Email))

		var user models.User
		if err := db.DB.Where("email = ?", creds.Email).First(&user).Error; err != nil {
			return errorJSONMessage(c, http.StatusUnauthorized, "Invalid credentials")
		}
		if bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(creds.Password)) != nil {
			return errorJSONMessage(c, http.StatusUnauthorized, "Invalid credentials")
		}

		token, err := a.issueToken(&user)
		if err != nil {
			return internalError(c, "Failed to issue token")
		}

		return c.JSON(fiber.Map{
			"token": token,
			"user":  user,
		})
	}
}

func (a *App) issueToken(user *models.User) (string, error) {
	claims := &Claims{
		UserID:     user.ID.String(),
		Email:      user.Email,
		Expiration: time.Now().Add(tokenLifetime).Unix(),
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString([]byte(a.cfg.JWTSecret))
}

// RequireUser authenticates the request from its Bearer token and stores the
// caller's user ID in the request context.
func (a *App) RequireUser() func(c *fiber.Ctx) error {
	return func(c *fiber.Ctx) error {
		// 1. Get token from the Authorization header
		header := c.Get("Authorization")
		tokenStr := strings.TrimPrefix(header, "Bearer ")
		if tokenStr == "" || tokenStr == header {
			return errorJSONMessage(c, http.StatusUnauthorized, "Missing bearer token")
		}

		// 2. Parse and verify
		claims := &Claims{}
		token, err := jwt.ParseWithClaims(tokenStr, claims, func(token *jwt.Token) (interface{}, error) {
			if token.Method.Alg() != jwt.SigningMethodHS256.Alg() {
				return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
			}
			return []byte(a.cfg.JWTSecret), nil
		})
		if err != nil || !token.Valid {
			return errorJSONMessage(c, http.StatusUnauthorized, "Invalid or expired token")
		}

		// 3. Set user context
		userID, err := uuid.Parse(claims.UserID)
		if err != nil {
			return errorJSONMessage(c, http.StatusUnauthorized, "Invalid token subject")
		}
		c.Locals("userID", userID)

		return c.Next()
	}
}

// userID returns the authenticated user's ID set by RequireUser.
func userID(c *fiber.Ctx) (uuid.UUID, bool) {
	id, ok := c.Locals("userID").(uuid.UUID)
	return id, ok
}
