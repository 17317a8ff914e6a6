// Package domain contains the core business entities of the bootcamp
// directory (users, bootcamps, courses) together with their validation
// rules. It is independent of any specific infrastructure or delivery mechanism.
package domain
