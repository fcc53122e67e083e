package models

// Category представляет категорию техники (тракторы, комбайны и т.д.)
type Category struct {
	ID          int64  `json:"id"`
	Name        string `json:"name"`
	Description string `json:"description"`
}
