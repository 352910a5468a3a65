package response

// ErrCode is a typed error code enum for consistent API error identification.
type ErrCode string

const (
	// ─── Authentication ────────────────────────────────────────────────
	ErrInvalidCredentials ErrCode = "INVALID_CREDENTIALS"
	ErrLoginDisabled      ErrCode = "LOGIN_DISABLED"
	ErrTokenRequired      ErrCode = "TOKEN_REQUIRED"
	ErrTokenInvalid       ErrCode = "TOKEN_INVALID"
	ErrTokenExpired       ErrCode = "TOKEN_EXPIRED"

	// ─── Validation ────────────────────────────────────────────────────
	ErrValidation     ErrCode = "VALIDATION_ERROR"
	ErrInvalidID      ErrCode = "INVALID_ID"
	ErrInvalidPayload ErrCode = "INVALID_PAYLOAD"

	// ─── Resources ─────────────────────────────────────────────────────
	ErrTestNotFound ErrCode = "TEST_NOT_FOUND"
	ErrConflict     ErrCode = "CONFLICT"

	// ─── Attempt lifecycle ─────────────────────────────────────────────
	ErrAttemptCompleted  ErrCode = "ATTEMPT_COMPLETED"
	ErrAttemptNotStarted ErrCode = "ATTEMPT_NOT_STARTED"
	ErrSectionLocked     ErrCode = "SECTION_LOCKED"
	ErrSameSection       ErrCode = "SAME_SECTION"
	ErrBadIndex          ErrCode = "INDEX_OUT_OF_RANGE"
	ErrNoPendingAction   ErrCode = "NO_PENDING_ACTION"

	// ─── AI ────────────────────────────────────────────────────────────
	ErrAINotConfigured  ErrCode = "AI_NOT_CONFIGURED"
	ErrGenerationFailed ErrCode = "GENERATION_FAILED"
	ErrAnalysisMismatch ErrCode = "ANALYSIS_MISMATCH"
	ErrAnalysisFailed   ErrCode = "ANALYSIS_FAILED"
	ErrAnalysisNotReady ErrCode = "ANALYSIS_NOT_READY"
	ErrAttemptNotScored ErrCode = "ATTEMPT_NOT_SCORED"

	// ─── Rate Limiting ─────────────────────────────────────────────────
	ErrRateLimitExceeded ErrCode = "RATE_LIMIT_EXCEEDED"

	// ─── Server ────────────────────────────────────────────────────────
	ErrInternal ErrCode = "INTERNAL_ERROR"
)

// GetMessage returns a human-readable message for a given error code.
func GetMessage(code ErrCode) string {
	switch code {
	// ─── Authentication ────────────────────────────────────────────────
	case ErrInvalidCredentials:
		return "The access code is incorrect."
	case ErrLoginDisabled:
		return "Login is not configured on this server."
	case ErrTokenRequired:
		return "An authentication token is required."
	case ErrTokenInvalid:
		return "The authentication token is invalid."
	case ErrTokenExpired:
		return "The authentication token has expired."

	// ─── Validation ────────────────────────────────────────────────────
	case ErrValidation:
		return "Validation failed. Please check your input."
	case ErrInvalidID:
		return "Invalid ID format."
	case ErrInvalidPayload:
		return "Invalid request payload."

	// ─── Resources ─────────────────────────────────────────────────────
	case ErrTestNotFound:
		return "The requested test does not exist."
	case ErrConflict:
		return "The resource already exists."

	// ─── Attempt lifecycle ─────────────────────────────────────────────
	case ErrAttemptCompleted:
		return "This attempt has already been submitted."
	case ErrAttemptNotStarted:
		return "This attempt has not been started."
	case ErrSectionLocked:
		return "This section is locked and cannot be entered again."
	case ErrSameSection:
		return "You are already in this section."
	case ErrBadIndex:
		return "The section or question index is out of range."
	case ErrNoPendingAction:
		return "There is no pending action to confirm."

	// ─── AI ────────────────────────────────────────────────────────────
	case ErrAINotConfigured:
		return "No AI API key is configured. Set one in settings first."
	case ErrGenerationFailed:
		return "Test generation failed. No test was created."
	case ErrAnalysisMismatch:
		return "The AI analysis did not match the question list."
	case ErrAnalysisFailed:
		return "Analysis failed for this section. Retry later."
	case ErrAnalysisNotReady:
		return "Analysis for this section is still pending."
	case ErrAttemptNotScored:
		return "Analysis is only available after submission."

	// ─── Rate Limiting ─────────────────────────────────────────────────
	case ErrRateLimitExceeded:
		return "Too many requests. Please try again later."

	// ─── Server ────────────────────────────────────────────────────────
	case ErrInternal:
		return "An internal server error occurred."
	default:
		return "An unexpected error occurred."
	}
}
