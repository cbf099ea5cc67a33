// File: api/resolver.go
// Author: momentics <momentics@gmail.com>
// License: Apache-2.0

package api

import "context"

// Resolver is the name-resolution engine. The reactor Base creates one
// lazily on first use and reuses it for every connection thereafter.
type Resolver interface {
	// LookupHost resolves host to one or more addresses.
	LookupHost(ctx context.Context, host string) ([]string, error)
}
