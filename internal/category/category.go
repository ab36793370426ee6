package category

import (
	"time"

	"github.com/frahmantamala/event-management/internal"
	categoryDatamodel "github.com/frahmantamala/event-management/internal/core/datamodel/category"
)

type Category struct {
	ID          int64     `json:"id"`
	Name        string    `json:"name"`
	Description string    `json:"description"`
	IsActive    bool      `json:"is_active"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// ErrCategoryNotSeeded means the name is a built-in category whose row does not exist yet.
var ErrCategoryNotSeeded = internal.NewNotFoundError("Category has not been seeded", internal.ErrCodeCategoryNotFound)

func (c *Category) ToResponse() CategoryResponse {
	return CategoryResponse{
		Name:        c.Name,
		Description: c.Description,
	}
}

func NewCategory(name, description string) *Category {
	return &Category{
		Name:        name,
		Description: description,
		IsActive:    true,
	}
}

var defaultDescriptions = map[string]string{
	"Conference": "Talks and keynotes with a larger audience",
	"Workshop":   "Hands-on sessions in small groups",
	"Social":     "Meetups, parties and networking",
	"Other":      "Anything that does not fit elsewhere",
}

// DefaultDescription returns the seed description for a built-in category.
func DefaultDescription(name string) string {
	return defaultDescriptions[name]
}

func ToDataModel(c *Category) *categoryDatamodel.EventCategory {
	return &categoryDatamodel.EventCategory{
		ID:          c.ID,
		Name:        c.Name,
		Description: c.Description,
		IsActive:    c.IsActive,
		CreatedAt:   c.CreatedAt,
		UpdatedAt:   c.UpdatedAt,
	}
}

func FromDataModel(c *categoryDatamodel.EventCategory) *Category {
	return &Category{
		ID:          c.ID,
		Name:        c.Name,
		Description: c.Description,
		IsActive:    c.IsActive,
		CreatedAt:   c.CreatedAt,
		UpdatedAt:   c.UpdatedAt,
	}
}
