// Package jwt issues and verifies the HS512 bearer tokens the HTTP router
// accepts, and carries verified claims through a request context.
package jwt
