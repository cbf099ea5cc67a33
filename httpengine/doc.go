// Copyright (c) 2025
// Author: momentics <momentics@gmail.com>
// License: Apache-2.0

// Package httpengine is the default api.HTTPEngine, backed by net/http.
// Each connection handle owns one transport capped at a single
// underlying socket, so a connection object maps to one logical socket
// and Clone really yields an independent one. Exchanges run on worker
// goroutines; completions are posted back to the loop goroutine
// through the api.Poster the engine was built with.
package httpengine
