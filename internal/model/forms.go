package model

// LoginForm is the request body of POST /v1/auth/login.
type LoginForm struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// RegisterForm is the request body of POST /v1/auth/register.
type RegisterForm struct {
	Email       string `json:"email"`
	Password    string `json:"password"`
	FirstName   string `json:"firstName"`
	LastName    string `json:"lastName"`
	PhoneNumber string `json:"phoneNumber"`
}

// ProductForm creates or replaces a product. Validation is server-side.
type ProductForm struct {
	Name        string  `json:"name"`
	Price       float64 `json:"price"`
	Description string  `json:"description"`
	Quantity    int     `json:"quantity"`
	CategoryID  string  `json:"categoryId"`
	ImageURL    string  `json:"imageUrl,omitempty"`
	Featured    bool    `json:"featured"`
	IsActive    bool    `json:"isActive"`
}

// CategoryForm creates or updates a category. A nil ParentID makes a
// top-level category.
type CategoryForm struct {
	Name        string  `json:"name"`
	Description *string `json:"description,omitempty"`
	ParentID    *int64  `json:"parentId"`
}

// CustomerForm is the admin update payload for a user account.
type CustomerForm struct {
	Email       string  `json:"email"`
	FirstName   string  `json:"firstName"`
	LastName    string  `json:"lastName"`
	PhoneNumber *string `json:"phoneNumber,omitempty"`
	Address     *string `json:"address,omitempty"`
	IsActive    *bool   `json:"isActive,omitempty"`
}

// RatingForm is the request body of POST /v1/ratings.
type RatingForm struct {
	Comment    string `json:"comment"`
	Score      int    `json:"score"`
	ProductID  string `json:"productId"`
	CustomerID string `json:"customerId"`
}
