package auth

const (
	ScopeOpenID  = "openid"
	ScopeProfile = "profile"
	ScopeEmail   = "email"

	// ScopePipelineRead allows read-only access to workflows and matching.
	ScopePipelineRead = "pipeline:read"
	// ScopePipelineWrite allows creating and updating workflows the caller
	// owns.
	ScopePipelineWrite = "pipeline:write"
	// ScopePipelineAdmin marks an elevated actor: edit any workflow,
	// delete workflows.
	ScopePipelineAdmin = "pipeline:admin"
)

// AllScopes defines the full set of scopes used by the Swagger UI / Frontend.
var AllScopes = []string{
	ScopeOpenID,
	ScopeProfile,
	ScopeEmail,
	ScopePipelineRead,
	ScopePipelineWrite,
	ScopePipelineAdmin,
}
