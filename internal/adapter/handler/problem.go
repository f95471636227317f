package handler

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/rl1809/storefront/internal/core/domain"
)

// ContentTypeProblemJSON is the media type for Problem Details responses.
const ContentTypeProblemJSON = "application/problem+json"

// ProblemDetail is an RFC 7807 error body.
type ProblemDetail struct {
	Type       string         `json:"type"`
	Title      string         `json:"title"`
	Status     int            `json:"status"`
	Detail     string         `json:"detail,omitempty"`
	Instance   string         `json:"instance,omitempty"`
	Extensions map[string]any `json:"extensions,omitempty"`
}

func (p ProblemDetail) Error() string {
	if p.Detail != "" {
		return fmt.Sprintf("%s: %s", p.Title, p.Detail)
	}
	return p.Title
}

// WithDetail returns a copy with the given detail message.
func (p ProblemDetail) WithDetail(detail string) ProblemDetail {
	p.Detail = detail
	return p
}

// WithExtension returns a copy with an additional extension property.
func (p ProblemDetail) WithExtension(key string, value any) ProblemDetail {
	ext := make(map[string]any, len(p.Extensions)+1)
	for k, v := range p.Extensions {
		ext[k] = v
	}
	ext[key] = value
	p.Extensions = ext
	return p
}

const (
	TypeValidation  = "/problems/validation-error"
	TypeBadRequest  = "/problems/bad-request"
	TypeNotFound    = "/problems/not-found"
	TypeUpstream    = "/problems/upstream-error"
	TypeInternal    = "/problems/internal-error"
	TypeUnavailable = "/problems/service-unavailable"
)

var (
	ErrValidationProblem = ProblemDetail{
		Type:   TypeValidation,
		Title:  "Validation Error",
		Status: http.StatusBadRequest,
	}

	ErrBadRequestProblem = ProblemDetail{
		Type:   TypeBadRequest,
		Title:  "Bad Request",
		Status: http.StatusBadRequest,
	}

	ErrNotFoundProblem = ProblemDetail{
		Type:   TypeNotFound,
		Title:  "Resource Not Found",
		Status: http.StatusNotFound,
	}

	ErrUpstreamProblem = ProblemDetail{
		Type:   TypeUpstream,
		Title:  "Bad Gateway",
		Status: http.StatusBadGateway,
	}

	ErrInternalProblem = ProblemDetail{
		Type:   TypeInternal,
		Title:  "Internal Server Error",
		Status: http.StatusInternalServerError,
	}

	ErrUnavailableProblem = ProblemDetail{
		Type:   TypeUnavailable,
		Title:  "Service Unavailable",
		Status: http.StatusServiceUnavailable,
	}
)

// problemFor maps the domain error taxonomy onto HTTP. NotFound wins over
// Upstream so an unknown product referenced by an order answers 404. subject
// names the missing resource ("product p-1"); the error chain itself never
// reaches the client.
func problemFor(err error, subject string) ProblemDetail {
	var problem ProblemDetail
	if errors.As(err, &problem) {
		return problem
	}
	var verr *domain.ValidationError
	switch {
	case errors.As(err, &verr):
		return ErrValidationProblem.WithDetail(verr.Error()).
			WithExtension("fields", map[string]string{verr.Field: verr.Reason})
	case errors.Is(err, domain.ErrValidation):
		return ErrValidationProblem.WithDetail(err.Error())
	case errors.Is(err, domain.ErrNotFound):
		if subject == "" {
			return ErrNotFoundProblem.WithDetail("resource not found")
		}
		return ErrNotFoundProblem.WithDetail(subject + " not found")
	case errors.Is(err, domain.ErrUpstream):
		return ErrUpstreamProblem.WithDetail("catalog service request failed")
	default:
		return ErrInternalProblem.WithDetail("internal error")
	}
}

func respondProblem(c *gin.Context, problem ProblemDetail) {
	if problem.Instance == "" {
		problem.Instance = c.Request.URL.Path
	}
	c.Header("Content-Type", ContentTypeProblemJSON)
	c.AbortWithStatusJSON(problem.Status, problem)
}

func respondError(c *gin.Context, err error, subject string) {
	_ = c.Error(err)
	respondProblem(c, problemFor(err, subject))
}
