package global

// ValidationError names one rejected input, e.g. the password on sign-up or a shipping address line.
// Code is "invalid" for domain checks and "json_parse_error" when the body did not bind.
type ValidationError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
	Code    string `json:"code,omitempty"`
}

// APIResponse is the envelope around every storefront reply. Success carries the product, cart, order or
// checkout payload in Data. A failure sets Kind to the error kind (VALIDATION, PAYMENT_DECLINED,
// ORDER_PERSISTENCE...) so the client can pick its checkout state, and Data then holds recovery hints
// such as payment_id.
type APIResponse struct {
	Success bool              `json:"success"`
	Data    interface{}       `json:"data,omitempty"`
	Message string            `json:"message,omitempty"`
	Kind    string            `json:"kind,omitempty"`
	Errors  []ValidationError `json:"errors,omitempty"`
}

func SuccessResponse(data interface{}) APIResponse {
	return APIResponse{
		Success: true,
		Data:    data,
	}
}

// ErrorResponse is a failure without a kind, used for malformed requests caught before any service runs
func ErrorResponse(message string, fieldErrors []ValidationError) APIResponse {
	return APIResponse{
		Success: false,
		Message: message,
		Errors:  fieldErrors,
	}
}

// KindResponse is a failure reported by a service, tagged with its error kind
func KindResponse(kind, message string) APIResponse {
	resp := ErrorResponse(message, nil)
	resp.Kind = kind
	return resp
}

// AddFieldError records that field was rejected with the envelope's message
func (r *APIResponse) AddFieldError(field, code string) {
	r.Errors = append(r.Errors, ValidationError{Field: field, Message: r.Message, Code: code})
}
