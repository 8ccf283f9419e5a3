package api

// ImpactRequest is the body of POST /impact. Omitted limits default to
// impact.DefaultTopK; supplied limits must be positive.
type ImpactRequest struct {
	SupplierName string `json:"supplierName" binding:"required"`
	TopKParts    *int   `json:"topKParts,omitempty" binding:"omitempty,gt=0"`
	TopKProducts *int   `json:"topKProducts,omitempty" binding:"omitempty,gt=0"`
	TopKRegions  *int   `json:"topKRegions,omitempty" binding:"omitempty,gt=0"`
}

// ErrorResponse is returned for every non-200 response.
type ErrorResponse struct {
	Error     string `json:"error"`
	Code      string `json:"code"`
	RequestID string `json:"requestId,omitempty"`
}

// Error codes.
const (
	CodeInvalidRequest   = "INVALID_REQUEST"
	CodeStoreTimeout     = "STORE_TIMEOUT"
	CodeStoreUnreachable = "STORE_UNREACHABLE"
	CodeStoreRejected    = "STORE_REJECTED"
	CodeCanceled         = "REQUEST_CANCELED"
	CodeInternal         = "INTERNAL_ERROR"
)
