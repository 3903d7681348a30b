package auth

import (
	"net/http"

	"modelhub-backend/config"
	"modelhub-backend/internal/utils"

	"github.com/gin-gonic/gin"
	"golang.org/x/crypto/bcrypt"
)

// Handler authenticates the configured admin account. The password hash is
// computed once at construction so plaintext never lives on the struct.
type Handler struct {
	username     string
	passwordHash []byte
	jwtSecret    string
}

func NewHandler(cfg *config.Config) (*Handler, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(cfg.AdminPassword), bcrypt.DefaultCost)
	if err != nil {
		return nil, err
	}
	return &Handler{
		username:     cfg.AdminUsername,
		passwordHash: hash,
		jwtSecret:    cfg.JWTSecret,
	}, nil
}

// Login verifies admin credentials and issues a JWT.
func (h *Handler) Login(c *gin.Context) {
	var input LoginRequest
	if !utils.BindAndValidate(c, &input) {
		return
	}

	if input.Username != h.username ||
		bcrypt.CompareHashAndPassword(h.passwordHash, []byte(input.Password)) != nil {
		c.JSON(http.StatusUnauthorized, utils.NewErrorResponse(http.StatusUnauthorized, "Invalid username or password"))
		return
	}

	token, err := utils.GenerateToken(h.username, "admin", h.jwtSecret)
	if err != nil {
		c.JSON(http.StatusInternalServerError, utils.NewErrorResponse(http.StatusInternalServerError, "Failed to generate token"))
		return
	}

	c.JSON(http.StatusOK, utils.NewSuccessResponse("Login successful", LoginResponse{
		Token:    token,
		Username: h.username,
		Role:     "admin",
	}))
}
