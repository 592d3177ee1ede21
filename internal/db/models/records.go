package models

import (
	"time"

	"github.com/uptrace/bun"
)

// Operator is a staff member. OpLevel 1 is a full admin, 2 a manager.
type Operator struct {
	bun.BaseModel `bun:"table:operators,alias:op"`

	ID            string    `bun:"id,pk,type:varchar(24)" json:"_id"`
	DisplayName   string    `bun:"display_name,notnull" json:"displayName"`
	FirstName     string    `bun:"fname,notnull" json:"fname"`
	LastName      string    `bun:"lname" json:"lname,omitempty"`
	Email         string    `bun:"email,notnull" json:"email"`
	ProfilePicURI string    `bun:"profile_pic_uri" json:"profilePicURI,omitempty"`
	OpLevel       int       `bun:"op_lvl,notnull" json:"op_lvl"`
	IsAdmin       bool      `bun:"is_admin,notnull" json:"isAdmin"`
	CreationDate  time.Time `bun:"creation_date,notnull" json:"creationDate"`
}

// Customer is a diner who places orders.
type Customer struct {
	bun.BaseModel `bun:"table:customers,alias:cx"`

	ID            string    `bun:"id,pk,type:varchar(24)" json:"_id"`
	DisplayName   string    `bun:"display_name,notnull" json:"displayName"`
	FirstName     string    `bun:"fname,notnull" json:"fname"`
	LastName      string    `bun:"lname" json:"lname,omitempty"`
	Email         string    `bun:"email,notnull" json:"email"`
	ProfilePicURI string    `bun:"profile_pic_uri" json:"profilePicURI,omitempty"`
	CreationDate  time.Time `bun:"creation_date,notnull" json:"creationDate"`
}

// InventoryItem is a sellable product.
type InventoryItem struct {
	bun.BaseModel `bun:"table:inventory,alias:inv"`

	ID          string `bun:"id,pk,type:varchar(24)" json:"_id"`
	ProductName string `bun:"product_name,notnull" json:"productName"`
	Description string `bun:"description,notnull" json:"description"`
	Price       int    `bun:"price,notnull" json:"price"`
	Stock       int    `bun:"stock,notnull" json:"stock"`
}

// OrderRequest is the line of an order: what was asked for and how many.
type OrderRequest struct {
	ItemName string `bun:"item_name,notnull" json:"itemName"`
	Amount   int    `bun:"amount,notnull" json:"amount"`
}

// Order belongs to exactly one customer through UserID.
type Order struct {
	bun.BaseModel `bun:"table:orders,alias:ord"`

	ID       string       `bun:"id,pk,type:varchar(24)" json:"_id"`
	UserID   string       `bun:"user_id,notnull,type:varchar(24)" json:"user_id"`
	Requests OrderRequest `bun:"embed:request_" json:"requests"`
	Sold     bool         `bun:"sold,notnull" json:"sold"`
}
