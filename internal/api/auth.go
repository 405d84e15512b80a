package api

import (
	"net/http" // HTTP status codes
	"regexp"   // Regular expressions
	"strings"  // String manipulation

	"budgetbook/internal/apperr" // Error taxonomy
	"budgetbook/internal/domain" // Importing domain models
	"budgetbook/internal/utils"  // Utility functions

	"github.com/gin-gonic/gin"   // Gin web framework
	"golang.org/x/crypto/bcrypt" // Password hashing
	"gorm.io/gorm"               // GORM ORM library
)

// Request struct for registration
type RegisterRequest struct {
	Email    string `json:"email" binding:"required"`    // Email must be provided
	Password string `json:"password" binding:"required"` // Password must be provided
	Name     string `json:"name" binding:"required"`     // Display name must be provided
}

// Request struct for login
type LoginRequest struct {
	Email    string `json:"email" binding:"required"`    // Email must be provided
	Password string `json:"password" binding:"required"` // Password must be provided
}

// Response struct for authentication
type AuthResponse struct {
	Token string `json:"token"` // JWT token
}

var emailPattern = regexp.MustCompile(`^[^@\s]+@[^@\s]+\.[^@\s]+$`)

// isValidEmail checks the email has a plausible user@host.tld shape
func isValidEmail(email string) bool {
	return emailPattern.MatchString(email)
}

// isValidPassword checks if the password length is between 8 and 64 characters
func isValidPassword(password string) bool {
	return len(password) >= 8 && len(password) <= 64
}

// RegisterHandler creates a new user account
func RegisterHandler(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req RegisterRequest // Bind JSON request to struct
		if err := c.ShouldBindJSON(&req); err != nil {
			// If binding fails, return bad request
			fail(c, apperr.Validation("email, password, name"))
			return
		}
		// Validate email and password
		if !isValidEmail(req.Email) {
			fail(c, apperr.Validation("email"))
			return
		}
		// Validate password length
		if !isValidPassword(req.Password) {
			fail(c, apperr.Invalid("password must be 8-64 characters"))
			return
		}
		// Hash the password and create the user
		hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
		if err != nil {
			// If hashing fails, return internal server error
			fail(c, apperr.Internal("failed to hash password"))
			return
		}
		// Store the email lowercased to ensure uniqueness
		user := domain.User{Email: strings.ToLower(req.Email), Password: string(hash), Name: req.Name}
		// Attempt to create the user in the database
		if err := db.Create(&user).Error; err != nil {
			// Creation fails on a duplicate email
			fail(c, apperr.Duplicate("email"))
			return
		}
		// Return success response
		respondMessage(c, http.StatusCreated, gin.H{"id": user.ID, "email": user.Email, "name": user.Name}, "User registered successfully")
	}
}

// LoginHandler authenticates a user and returns a JWT token
func LoginHandler(db *gorm.DB, jwtSecret string) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req LoginRequest // Bind JSON request to struct
		if err := c.ShouldBindJSON(&req); err != nil {
			// If binding fails, return bad request
			fail(c, apperr.Validation("email, password"))
			return
		}
		var user domain.User // Fetch user from database
		if err := db.Where("email = ?", strings.ToLower(req.Email)).First(&user).Error; err != nil {
			// If user not found, return unauthorized
			fail(c, apperr.Unauthorized())
			return
		}
		// Compare provided password with stored hash
		if err := bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(req.Password)); err != nil {
			fail(c, apperr.Unauthorized())
			return
		}
		// Generate JWT token
		token, err := utils.GenerateJWT(user.ID, jwtSecret)
		if err != nil {
			// If token generation fails, return internal server error
			fail(c, apperr.Internal("failed to generate token"))
			return
		}
		// Return the token in the response
		respond(c, http.StatusOK, AuthResponse{Token: token})
	}
}
