package models

import "time"

// Actor roles. Role strings appear in tokens, history rows, and route
// guards; they are fixed, not user-configurable.
const (
	RoleVendor    = "vendor"
	RoleInspector = "pic"
	RoleExecutive = "direksi"
)

// Account is the common surface of the three identity tables.
type Account interface {
	AccountID() int
	AccountName() string
	AccountEmail() string
	PasswordHash() string
}

// Vendor is an external party that creates and owns receipt documents.
type Vendor struct {
	ID        int        `gorm:"primaryKey;column:id" json:"id"`
	Name      string     `gorm:"column:name" json:"name"`
	Email     string     `gorm:"column:email;uniqueIndex" json:"email"`
	Password  string     `gorm:"column:password" json:"-"`
	Company   *string    `gorm:"column:company" json:"company,omitempty"`
	Phone     *string    `gorm:"column:phone" json:"phone,omitempty"`
	Address   *string    `gorm:"column:address" json:"address,omitempty"`
	Position  string     `gorm:"column:position" json:"position"`
	CreatedAt time.Time  `gorm:"column:created_at" json:"created_at"`
	UpdatedAt *time.Time `gorm:"column:updated_at" json:"updated_at,omitempty"`
}

func (Vendor) TableName() string { return "vendors" }

func (v Vendor) AccountID() int        { return v.ID }
func (v Vendor) AccountName() string   { return v.Name }
func (v Vendor) AccountEmail() string  { return v.Email }
func (v Vendor) PasswordHash() string  { return v.Password }

// Inspector ("pic") checks and approves goods receipts. The signature
// image, when present, is rendered into the approved-document export.
type Inspector struct {
	ID            int        `gorm:"primaryKey;column:id" json:"id"`
	Name          string     `gorm:"column:name" json:"name"`
	Email         string     `gorm:"column:email;uniqueIndex" json:"email"`
	Password      string     `gorm:"column:password" json:"-"`
	Position      string     `gorm:"column:position" json:"position"`
	SignaturePath *string    `gorm:"column:signature_path" json:"signature_path,omitempty"`
	CreatedAt     time.Time  `gorm:"column:created_at" json:"created_at"`
	UpdatedAt     *time.Time `gorm:"column:updated_at" json:"updated_at,omitempty"`
}

func (Inspector) TableName() string { return "inspectors" }

func (i Inspector) AccountID() int       { return i.ID }
func (i Inspector) AccountName() string  { return i.Name }
func (i Inspector) AccountEmail() string { return i.Email }
func (i Inspector) PasswordHash() string { return i.Password }

// Executive ("direksi") approves or rejects work receipts.
type Executive struct {
	ID        int        `gorm:"primaryKey;column:id" json:"id"`
	Name      string     `gorm:"column:name" json:"name"`
	Email     string     `gorm:"column:email;uniqueIndex" json:"email"`
	Password  string     `gorm:"column:password" json:"-"`
	Position  string     `gorm:"column:position" json:"position"`
	CreatedAt time.Time  `gorm:"column:created_at" json:"created_at"`
	UpdatedAt *time.Time `gorm:"column:updated_at" json:"updated_at,omitempty"`
}

func (Executive) TableName() string { return "executives" }

func (e Executive) AccountID() int       { return e.ID }
func (e Executive) AccountName() string  { return e.Name }
func (e Executive) AccountEmail() string { return e.Email }
func (e Executive) PasswordHash() string { return e.Password }

// ValidRole reports whether role is one of the three fixed roles.
func ValidRole(role string) bool {
	switch role {
	case RoleVendor, RoleInspector, RoleExecutive:
		return true
	}
	return false
}
