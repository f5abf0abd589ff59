package session

// Auth endpoint paths, relative to the configured base URL.
const (
	RouteLogin    = "/api/auth/login/"
	RouteRegister = "/api/auth/register/"
	RouteRefresh  = "/api/auth/token/refresh/"
	RouteLogout   = "/api/auth/logout/"
	RouteProfile  = "/api/auth/profile/"
)
