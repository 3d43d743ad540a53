package dto

// APIResponse is the standard response envelope for all endpoints.
type APIResponse struct {
	Data  interface{}  `json:"data,omitempty"`
	Error *ErrorDetail `json:"error,omitempty"`
}

// SuccessResponse represents a standard success message payload.
type SuccessResponse struct {
	Message string `json:"message"`
}

// PaginationInfo carries paging metadata for list responses.
type PaginationInfo struct {
	CurrentPage int   `json:"currentPage" example:"1"`
	TotalPages  int   `json:"totalPages" example:"3"`
	PageSize    int   `json:"pageSize" example:"20"`
	TotalItems  int64 `json:"totalItems" example:"42"`
}
