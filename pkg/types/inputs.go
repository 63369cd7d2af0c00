package types

// SearchMatchAll is the reserved keyword meaning "match every record".
const SearchMatchAll = ";ALL;"

// FailureEntry is one declared failure category and its three answers, in the
// order the client supplied them.
type FailureEntry struct {
	Category string   `json:"category"`
	Answers  []string `json:"answers"`
}

type CreateProjectInput struct {
	Name        string         `json:"name"`
	Period      string         `json:"period"`
	Personnel   int            `json:"personnel"`
	Intent      string         `json:"intent"`
	MyRole      string         `json:"my_role"`
	SaleStatus  SaleStatus     `json:"sale_status"`
	IsFree      bool           `json:"is_free"`
	Price       int64          `json:"price"`
	ResultURL   string         `json:"result_url"`
	GrowthPoint string         `json:"growth_point"`
	Image       *string        `json:"image"`
	Failure     []FailureEntry `json:"failure"`
}

// UpdateProjectInput mirrors CreateProjectInput with every field optional.
// A nil Failure slice leaves the existing category mappings untouched; a
// non-nil one atomically replaces the whole set.
type UpdateProjectInput struct {
	Name        *string        `json:"name"`
	Period      *string        `json:"period"`
	Personnel   *int           `json:"personnel"`
	Intent      *string        `json:"intent"`
	MyRole      *string        `json:"my_role"`
	SaleStatus  *SaleStatus    `json:"sale_status"`
	IsFree      *bool          `json:"is_free"`
	Price       *int64         `json:"price"`
	ResultURL   *string        `json:"result_url"`
	GrowthPoint *string        `json:"growth_point"`
	Image       *string        `json:"image"`
	Failure     []FailureEntry `json:"failure"`
}

type UpdateUserInput struct {
	Nickname     *string `json:"nickname"`
	ProfileImage *string `json:"profile_image"`
}

// SearchRequest is decoded from query parameters.
type SearchRequest struct {
	Type            string   `form:"type"`
	Keyword         string   `form:"keyword"`
	FailureCategory []string `form:"failure_category"`
}

type PurchaseInput struct {
	Price int64 `json:"price"`
}

type TopupInput struct {
	Amount int64 `json:"amount"`
}

type PresignInput struct {
	Folder      string `json:"folder"`
	Filename    string `json:"filename"`
	ContentType string `json:"content_type"`
}
