// Copyright (c) 2025
// Author: momentics <momentics@gmail.com>
// License: Apache-2.0

// Package api defines the interface boundary between the reactor core
// and the engines it drives: the event-loop engine (descriptor/timer
// multiplexing), the resolver engine, and the HTTP engine. The core
// treats every engine as opaque; implementations live in the engine
// and httpengine packages, or are supplied by the embedder.
package api
