package chi

import (
	"github.com/kailas-cloud/matchfeed/internal/domain"
	"github.com/kailas-cloud/matchfeed/internal/domain/compat"
	"github.com/kailas-cloud/matchfeed/internal/domain/dna"
	"github.com/kailas-cloud/matchfeed/internal/domain/feed"
)

// ErrorCode is the machine-readable error identifier in ErrorResponse.
type ErrorCode string

// Error codes.
const (
	ErrorCodeBadRequest       ErrorCode = "bad_request"
	ErrorCodeUnauthorized     ErrorCode = "unauthorized"
	ErrorCodeValidationFailed ErrorCode = "validation_failed"
	ErrorCodeUserNotFound     ErrorCode = "user_not_found"
	ErrorCodeNotFound         ErrorCode = "not_found"
	ErrorCodeUnknownView      ErrorCode = "unknown_view"
	ErrorCodeSelfInteraction  ErrorCode = "self_interaction"
	ErrorCodeQueueUnavailable ErrorCode = "queue_unavailable"
	ErrorCodeStoreUnavailable ErrorCode = "store_unavailable"
	ErrorCodeInternalError    ErrorCode = "internal_error"
)

// ErrorResponse is the body of every non-2xx reply.
type ErrorResponse struct {
	Code    ErrorCode `json:"code"`
	Message string    `json:"message"`
}

// UpsertUserRequest is the body of PUT /v1/users/{id}. The ID comes from the path.
type UpsertUserRequest struct {
	Name       string          `json:"name,omitempty"`
	Gender     string          `json:"gender,omitempty"`
	LookingFor string          `json:"looking_for,omitempty"`
	Location   domain.Location `json:"location"`
	Interests  []string        `json:"interests,omitempty"`
	DNA        *dna.Vector     `json:"dna,omitempty"`
	Answers    []dna.Category  `json:"answers,omitempty"`
	CreatedAt  int64           `json:"created_at,omitempty"`
}

// UserResponse wraps a stored profile.
type UserResponse struct {
	User    *domain.User `json:"user"`
	Created bool         `json:"created,omitempty"`
}

// AnswersRequest is the body of POST /v1/users/{id}/answers.
type AnswersRequest struct {
	Categories []dna.Category `json:"categories"`
}

// AnswersResponse carries the recomputed trait vector.
type AnswersResponse struct {
	DNA dna.Vector `json:"dna"`
}

// CandidatesResponse is one page of scored candidates.
type CandidatesResponse struct {
	feed.Page
	Message string `json:"message,omitempty"`
}

// SwipeRequest is the body of POST /v1/users/{id}/swipes.
type SwipeRequest struct {
	TargetID string `json:"target_id"`
	Action   string `json:"action"`
}

// AcceptedResponse acknowledges work handed to the job queue.
type AcceptedResponse struct {
	Status string `json:"status"`
}

// CompatibilityResponse explains the score of a pair.
type CompatibilityResponse struct {
	OwnerID string `json:"owner_id"`
	OtherID string `json:"other_id"`
	compat.Detail
}

// HealthResponse reports component health.
type HealthResponse struct {
	Status string            `json:"status"`
	Checks map[string]string `json:"checks"`
}

const (
	statusQueued = "queued"

	exhaustedMessage = "no more candidates, check back later"
)
