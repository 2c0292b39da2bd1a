// Package model defines the storefront API's JSON resources. It is a leaf
// package shared by the credential store (which keeps the signed-in user's
// profile) and the REST services.
package model

import "time"

// Role is the authorization role of a user account.
type Role string

// Roles known to the storefront API.
const (
	RoleAdmin    Role = "ADMIN"
	RoleCustomer Role = "CUSTOMER"
	RoleVendor   Role = "VENDOR"
)

// MemberTier is a customer's loyalty tier. Admin accounts have no tier.
type MemberTier string

// Member tiers known to the storefront API.
const (
	TierCommon  MemberTier = "COMMON"
	TierPremium MemberTier = "PREMIUM"
	TierVIP     MemberTier = "VIP"
)

// User is the summary view of an account.
type User struct {
	ID         int64       `json:"id"`
	Email      string      `json:"email"`
	FirstName  string      `json:"firstName"`
	LastName   string      `json:"lastName"`
	Avatar     *string     `json:"avatar"`
	Role       Role        `json:"role"`
	MemberTier *MemberTier `json:"memberTier"`
	IsActive   bool        `json:"isActive"`
	CreatedOn  time.Time   `json:"createdOn"`
	UpdatedOn  time.Time   `json:"updatedOn"`
}

// UserDetail extends User with contact and profile data. This is the
// identity detail kept by the credential store after login.
type UserDetail struct {
	User

	PhoneNumber string     `json:"phoneNumber"`
	Address     *string    `json:"address"`
	Bio         *string    `json:"bio"`
	DOB         *time.Time `json:"dob"`
}

// Auth is the response body of login and register.
type Auth struct {
	UserDetails  UserDetail `json:"userDetails"`
	AccessToken  string     `json:"accessToken"`
	RefreshToken string     `json:"refreshToken"`
}

// CreatedBy is the compact author reference embedded in products and ratings.
type CreatedBy struct {
	ID         int64       `json:"id"`
	FirstName  string      `json:"firstName"`
	LastName   string      `json:"lastName"`
	Avatar     string      `json:"avatar"`
	Role       Role        `json:"role"`
	MemberTier *MemberTier `json:"memberTier"`
}

// Product is the list view of a catalog item.
type Product struct {
	ID          int64   `json:"id"`
	Name        string  `json:"name"`
	Price       float64 `json:"price"`
	ImageURL    *string `json:"imageUrl"`
	Featured    bool    `json:"featured"`
	IsActive    bool    `json:"isActive"`
	AvgRating   float64 `json:"avgRating"`
	RatingCount int     `json:"ratingCount"`
}

// ProductDetail is the full view of a catalog item, including its reviews.
type ProductDetail struct {
	Product

	Description string    `json:"description"`
	Category    Category  `json:"category"`
	Quantity    int       `json:"quantity"`
	CreatedOn   time.Time `json:"createdOn"`
	UpdatedOn   time.Time `json:"updatedOn"`
	Ratings     []Rating  `json:"ratings"`
	CreatedBy   CreatedBy `json:"createdBy"`
}

// Category is a node of the catalog hierarchy. ParentID is nil for
// top-level categories.
type Category struct {
	ID          int64   `json:"id"`
	Name        string  `json:"name"`
	Description *string `json:"description"`
	ParentID    *int64  `json:"parentId"`
}

// CategoryTree is a category with its descendants inlined.
type CategoryTree struct {
	ID            int64          `json:"id"`
	Name          string         `json:"name"`
	Description   string         `json:"description"`
	SubCategories []CategoryTree `json:"subCategories"`
}

// Rating is a customer review of a product.
type Rating struct {
	ID        int64     `json:"id"`
	Score     int       `json:"score"`
	Comment   *string   `json:"comment"`
	CreatedOn time.Time `json:"createdOn"`
	UpdatedOn time.Time `json:"updatedOn"`
	ProductID int64     `json:"productId"`
	Customer  CreatedBy `json:"customer"`
}

// Page is the server's paging envelope. Page numbers are 0-based.
type Page[T any] struct {
	Content       []T  `json:"content"`
	TotalPages    int  `json:"totalPages"`
	TotalElements int  `json:"totalElements"`
	Size          int  `json:"size"`
	Page          int  `json:"page"`
	Empty         bool `json:"empty"`
}
