package types

import (
	"time"
)

type SaleStatus string

const (
	SaleStatusNotSale SaleStatus = "NOTSALE"
	SaleStatusFree    SaleStatus = "FREE"
	SaleStatusOnSale  SaleStatus = "ONSALE"
)

func (s SaleStatus) Valid() bool {
	switch s {
	case SaleStatusNotSale, SaleStatusFree, SaleStatusOnSale:
		return true
	}
	return false
}

type Project struct {
	ProjectID    int64      `db:"project_id" json:"project_id"`
	UserID       int64      `db:"user_id" json:"user_id"`
	Name         string     `db:"name" json:"name"`
	Period       string     `db:"period" json:"period"`
	Personnel    int        `db:"personnel" json:"personnel"`
	Intent       string     `db:"intent" json:"intent"`
	MyRole       string     `db:"my_role" json:"my_role"`
	SaleStatus   SaleStatus `db:"sale_status" json:"sale_status"`
	IsFree       bool       `db:"is_free" json:"is_free"`
	Price        int64      `db:"price" json:"price"`
	ResultURL    string     `db:"result_url" json:"result_url"`
	GrowthPoint  string     `db:"growth_point" json:"growth_point"`
	Image        *string    `db:"image" json:"image"`
	HelpfulCount int64      `db:"helpful_count" json:"helpful_count"`
	CreatedAt    time.Time  `db:"created_at" json:"created_at"`
	UpdatedAt    time.Time  `db:"updated_at" json:"updated_at"`
}

// ProjectUpdate carries a partial project update. Nil fields are left
// unchanged in the stored row.
type ProjectUpdate struct {
	Name        *string
	Period      *string
	Personnel   *int
	Intent      *string
	MyRole      *string
	SaleStatus  *SaleStatus
	IsFree      *bool
	Price       *int64
	ResultURL   *string
	GrowthPoint *string
	Image       *string
}

// ProjectCategoryDetail is a category mapping joined with its category name.
type ProjectCategoryDetail struct {
	CategoryID int64  `db:"category_id" json:"category_id"`
	Name       string `db:"name" json:"name"`
	Answer1    string `db:"answer1" json:"answer1"`
	Answer2    string `db:"answer2" json:"answer2"`
	Answer3    string `db:"answer3" json:"answer3"`
}

// ProjectDetail is the read model for a single project page: the project, its
// owner, its failure categories with answers, and the viewer's relationship
// to it.
type ProjectDetail struct {
	Project     *Project                `json:"project"`
	Owner       *User                   `json:"owner"`
	Categories  []ProjectCategoryDetail `json:"categories"`
	IsHelpful   bool                    `json:"is_helpful"`
	IsPurchased bool                    `json:"is_purchased"`
}
