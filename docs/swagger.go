// Package docs UserPulse API
//
// @title  UserPulse API
// @version 0.1.0
// @description User accounts with bearer-token sessions.
// @host      localhost:8080
// @BasePath /
// @schemes http https
// @securityDefinitions.apikey Bearer
// @in header
// @name Authorization
// @description Type "Bearer" followed by a space and the session token.
package docs

import (
	_ "user-pulse/cmd/server/handlers/httperr"
	_ "user-pulse/internal/services/users"
)
