// Package auth provides bearer authentication for the admin gateway.
//
// Two credential forms are accepted on the Authorization header:
//
//   - HS256 JWTs with the operator ID in the "sub" claim
//   - static API keys checked against bcrypt hashes from config
//
// The dashboard's own user-facing session handling stays outside this
// service; this package only guards the gateway's admin API surface.
package auth
