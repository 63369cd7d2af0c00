package types

import "time"

// FailureCategory is immutable reference data, created by the seed command.
type FailureCategory struct {
	CategoryID int64  `db:"category_id" json:"category_id"`
	Name       string `db:"name" json:"name"`
}

// ProjectCategoryMap links a project to one failure category together with
// the three structured answers for that category.
type ProjectCategoryMap struct {
	ProjectID  int64     `db:"project_id" json:"project_id"`
	CategoryID int64     `db:"category_id" json:"category_id"`
	Answer1    string    `db:"answer1" json:"answer1"`
	Answer2    string    `db:"answer2" json:"answer2"`
	Answer3    string    `db:"answer3" json:"answer3"`
	CreatedAt  time.Time `db:"created_at" json:"created_at"`
}
