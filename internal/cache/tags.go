package cache

// Cache tags for the read-through list and dashboard views. Mutating services
// invalidate these after every successful write.
const (
	TagAmbassadors = "ambassadors"
	TagDevelopers  = "developers"
	TagDashboard   = "dashboard"
)
