package response

// Envelope is the uniform response body every endpoint returns: success flag,
// optional payload, optional human-readable message, optional error details.
type Envelope struct {
	Success bool        `json:"success"`
	Message string      `json:"message,omitempty"`
	Data    interface{} `json:"data,omitempty"`
	Errors  interface{} `json:"errors,omitempty"`
}
