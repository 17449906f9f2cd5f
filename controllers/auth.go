package controllers

import (
	"net/http"
	"os"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"

	"procurement-receipt-api/config"
	"procurement-receipt-api/middleware"
	"procurement-receipt-api/models"
	"procurement-receipt-api/services"
)

type LoginRequest struct {
	Role     string `json:"role" binding:"required"`
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required"`
}

type RegisterVendorRequest struct {
	Name     string  `json:"name" binding:"required"`
	Email    string  `json:"email" binding:"required,email"`
	Password string  `json:"password" binding:"required,min=8"`
	Company  *string `json:"company"`
	Phone    *string `json:"phone"`
	Address  *string `json:"address"`
	Position string  `json:"position"`
}

// findAccount resolves (role, email) against the matching identity
// table. Roles map statically to tables; there is no dynamic table
// selection.
func findAccount(role, email string) (models.Account, error) {
	switch role {
	case models.RoleVendor:
		var v models.Vendor
		if err := config.DB.Where("email = ?", email).Take(&v).Error; err != nil {
			return nil, err
		}
		return v, nil
	case models.RoleInspector:
		var i models.Inspector
		if err := config.DB.Where("email = ?", email).Take(&i).Error; err != nil {
			return nil, err
		}
		return i, nil
	case models.RoleExecutive:
		var e models.Executive
		if err := config.DB.Where("email = ?", email).Take(&e).Error; err != nil {
			return nil, err
		}
		return e, nil
	}
	return nil, gorm.ErrRecordNotFound
}

func generateToken(account models.Account, role string) (string, error) {
	hours, _ := strconv.Atoi(os.Getenv("JWT_EXPIRE_HOURS"))
	if hours <= 0 {
		hours = 8
	}

	claims := middleware.Claims{
		UserID: account.AccountID(),
		Role:   role,
		Email:  account.AccountEmail(),
		Name:   account.AccountName(),
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Duration(hours) * time.Hour)),
			IssuedAt:  jwt.NewNumericDate(time.Now()),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString([]byte(os.Getenv("JWT_SECRET")))
}

// Login authenticates against the identity table matching the requested
// role and returns a signed token.
func Login(c *gin.Context) {
	var req LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "role, email, and password are required")
		return
	}
	if !models.ValidRole(req.Role) {
		badRequest(c, "unknown role")
		return
	}

	account, err := findAccount(req.Role, req.Email)
	if err != nil {
		respondError(c, &services.Error{Kind: services.KindUnauthorized, Message: "Invalid email or password"})
		return
	}
	if bcrypt.CompareHashAndPassword([]byte(account.PasswordHash()), []byte(req.Password)) != nil {
		respondError(c, &services.Error{Kind: services.KindUnauthorized, Message: "Invalid email or password"})
		return
	}

	token, err := generateToken(account, req.Role)
	if err != nil {
		respondError(c, services.Unavailable("failed to generate token", err))
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"token": token,
		"user": gin.H{
			"id":    account.AccountID(),
			"role":  req.Role,
			"name":  account.AccountName(),
			"email": account.AccountEmail(),
		},
	})
}

// RegisterVendor creates a vendor account. Email uniqueness is enforced
// by the unique index; a duplicate surfaces as conflict.
func RegisterVendor(c *gin.Context) {
	var req RegisterVendorRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "name, email, and a password of at least 8 characters are required")
		return
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		respondError(c, services.Unavailable("failed to hash password", err))
		return
	}

	vendor := models.Vendor{
		Name:     req.Name,
		Email:    req.Email,
		Password: string(hash),
		Company:  req.Company,
		Phone:    req.Phone,
		Address:  req.Address,
		Position: req.Position,
	}
	if err := config.DB.Create(&vendor).Error; err != nil {
		respondError(c, services.ConflictOnDuplicate(err, "email is already registered", "failed to create account"))
		return
	}

	c.JSON(http.StatusCreated, gin.H{"user": vendor})
}

// ChangePassword updates the password of the authenticated account.
func ChangePassword(c *gin.Context) {
	type changeRequest struct {
		CurrentPassword string `json:"current_password" binding:"required"`
		NewPassword     string `json:"new_password" binding:"required,min=8"`
	}
	var req changeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "current_password and a new_password of at least 8 characters are required")
		return
	}

	actor := middleware.ActorFromContext(c)
	account, err := findAccount(actor.Role, actor.Email)
	if err != nil {
		respondError(c, services.NotFound("account not found"))
		return
	}
	if bcrypt.CompareHashAndPassword([]byte(account.PasswordHash()), []byte(req.CurrentPassword)) != nil {
		respondError(c, &services.Error{Kind: services.KindUnauthorized, Message: "Current password is incorrect"})
		return
	}

	hash, herr := bcrypt.GenerateFromPassword([]byte(req.NewPassword), bcrypt.DefaultCost)
	if herr != nil {
		respondError(c, services.Unavailable("failed to hash password", herr))
		return
	}

	if uerr := updatePassword(actor.Role, actor.ID, string(hash)); uerr != nil {
		respondError(c, services.Unavailable("failed to update password", uerr))
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Password updated"})
}

func updatePassword(role string, id int, hash string) error {
	now := time.Now()
	updates := map[string]any{"password": hash, "updated_at": now}
	switch role {
	case models.RoleVendor:
		return config.DB.Model(&models.Vendor{}).Where("id = ?", id).Updates(updates).Error
	case models.RoleInspector:
		return config.DB.Model(&models.Inspector{}).Where("id = ?", id).Updates(updates).Error
	case models.RoleExecutive:
		return config.DB.Model(&models.Executive{}).Where("id = ?", id).Updates(updates).Error
	}
	return gorm.ErrRecordNotFound
}

// Verify confirms the bearer token is valid and echoes the actor.
func Verify(c *gin.Context) {
	actor := middleware.ActorFromContext(c)
	c.JSON(http.StatusOK, gin.H{
		"valid": true,
		"user": gin.H{
			"id":    actor.ID,
			"role":  actor.Role,
			"name":  actor.Name,
			"email": actor.Email,
		},
	})
}

// GetProfile returns the full identity record of the authenticated
// account.
func GetProfile(c *gin.Context) {
	actor := middleware.ActorFromContext(c)
	account, err := findAccount(actor.Role, actor.Email)
	if err != nil {
		respondError(c, services.NotFound("account not found"))
		return
	}
	c.JSON(http.StatusOK, gin.H{"user": account, "role": actor.Role})
}
