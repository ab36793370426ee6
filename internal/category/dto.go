package category

// CategoryResponse is the public shape of an event category.
type CategoryResponse struct {
	Name        string `json:"name"`
	Description string `json:"description"`
}

type CategoriesResponse struct {
	Categories []CategoryResponse `json:"categories"`
	Count      int                `json:"count"`
}

func NewCategoriesResponse(categories []CategoryResponse) CategoriesResponse {
	if categories == nil {
		categories = []CategoryResponse{}
	}
	return CategoriesResponse{Categories: categories, Count: len(categories)}
}
