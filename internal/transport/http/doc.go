// Package http implements the HTTP handlers of the churn mailing service.
// It is a thin layer between transport and business logic: handlers parse
// and validate requests, call the service layer and format responses.
//
// # Handler Structure
//
// Each handler follows this pattern:
//
//	func (h *Handler) HandleSomething(w http.ResponseWriter, r *http.Request) {
//	    // 1. Parse and validate the request
//	    // 2. Call the service layer with r.Context()
//	    // 3. Map service errors through the error handler
//	    // 4. Render the response with chi/render
//	}
//
// # Error Handling
//
// All errors surface as RFC 7807 problem responses:
//
//	{
//	    "type": "/errors/validation",
//	    "title": "Validation Failed",
//	    "status": 422,
//	    "detail": "Category list must contain at least one entry",
//	    "instance": "/api/mailing"
//	}
//
// Service sentinel errors (for example services.ErrArtifactNotFound) are
// mapped onto typed API errors at this boundary; typed errors from the
// lower layers pass through the shared ErrorHandler untouched.
//
// # Testing
//
// Handlers are tested with httptest and stub service implementations,
// verifying status codes, problem bodies and response headers.
package http
