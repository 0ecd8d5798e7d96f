// Package environment names the deployment environment (development, staging
// or production) and carries it through request contexts and logs.
package environment
