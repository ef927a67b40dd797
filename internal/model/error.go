package model

// ErrorResponse represents a standardised error response.
type ErrorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message"`
	Details string `json:"details,omitempty"`
}

// Standard error codes for API responses
const (
	ErrCodeInvalidInput       = "INVALID_INPUT"
	ErrCodeEmptyCart          = "EMPTY_CART"
	ErrCodeNoValidItems       = "NO_VALID_ITEMS"
	ErrCodeNotFound           = "NOT_FOUND"
	ErrCodeForbidden          = "FORBIDDEN"
	ErrCodeConflict           = "CONFLICT"
	ErrCodeConfiguration      = "CONFIGURATION_ERROR"
	ErrCodeGatewayRejected    = "GATEWAY_REJECTED"
	ErrCodeGatewayUnreachable = "GATEWAY_UNREACHABLE"
	ErrCodeUnauthorised       = "UNAUTHORIZED"
	ErrCodeInternalError      = "INTERNAL_ERROR"
)

// DomainError is a business-rule violation carrying a stable error code. All
// domain errors are recovered at the request boundary and turned into a
// structured response; none crash the process.
type DomainError struct {
	Code    string
	Message string
	Details string
}

func (e *DomainError) Error() string {
	return e.Message
}

// WithDetails returns a copy of the error carrying diagnostic detail, such as
// a gateway's raw payload.
func (e *DomainError) WithDetails(details string) *DomainError {
	return &DomainError{Code: e.Code, Message: e.Message, Details: details}
}

// NewDomainError creates a new domain error
func NewDomainError(code, message string) *DomainError {
	return &DomainError{
		Code:    code,
		Message: message,
	}
}

// Common domain errors
var (
	ErrInvalidInput       = NewDomainError(ErrCodeInvalidInput, "Request is missing required fields or carries invalid values")
	ErrInvalidQuantity    = NewDomainError(ErrCodeInvalidInput, "Quantity must be greater than zero")
	ErrBookNotFound       = NewDomainError(ErrCodeInvalidInput, "Book does not exist in the catalogue")
	ErrEmptyCart          = NewDomainError(ErrCodeEmptyCart, "Cart is empty")
	ErrNoValidItems       = NewDomainError(ErrCodeNoValidItems, "None of the selected items could be resolved")
	ErrCartNotFound       = NewDomainError(ErrCodeNotFound, "Cart not found")
	ErrCartItemNotFound   = NewDomainError(ErrCodeNotFound, "Item is not in the cart")
	ErrOrderNotFound      = NewDomainError(ErrCodeNotFound, "Order not found")
	ErrForbidden          = NewDomainError(ErrCodeForbidden, "You do not have access to this resource")
	ErrConflict           = NewDomainError(ErrCodeConflict, "Concurrent modification detected, please retry")
	ErrConfiguration      = NewDomainError(ErrCodeConfiguration, "Payment gateway credentials are missing or incomplete")
	ErrGatewayRejected    = NewDomainError(ErrCodeGatewayRejected, "Payment gateway did not return a payable URL")
	ErrGatewayUnreachable = NewDomainError(ErrCodeGatewayUnreachable, "Payment gateway could not be reached")
)
