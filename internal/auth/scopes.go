package auth

// Scopes understood by the activity endpoints.
const (
	ScopeActivitiesWrite = "activities:write"
	ScopeActivitiesRead  = "activities:read"
)

func allScopes() map[string]struct{} {
	return map[string]struct{}{
		ScopeActivitiesRead:  {},
		ScopeActivitiesWrite: {},
	}
}
