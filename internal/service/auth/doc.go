// Package auth holds the authentication primitives: HS256 access and refresh
// tokens, bcrypt password hashing and password reset tokens.
package auth
