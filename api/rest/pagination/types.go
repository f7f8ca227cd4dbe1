package pagination

// a page window, already clamped
type Params struct {
	Limit  int
	Offset int
}

// Meta is returned next to every paged list
type Meta struct {
	Total   int  `json:"total"`
	Limit   int  `json:"limit"`
	Offset  int  `json:"offset"`
	HasMore bool `json:"has_more"`
}
