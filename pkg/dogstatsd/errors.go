// Package dogstatsd implements the DogStatsD v1.2 text protocol codec:
// parsing and emitting metric, event, and service-check datagrams with a
// byte-exact round-trip guarantee for canonical inputs.
//
// https://docs.datadoghq.com/developers/dogstatsd/datagram_shell/
package dogstatsd

import "errors"

// ErrInvalidProtocol covers every decode/encode failure: truncation,
// non-UTF-8 input, a missing required separator, an unknown type letter, a
// non-numeric value where a number is required, or a service-check status
// outside {0,1,2,3}. No partial record is ever returned alongside this
// error.
var ErrInvalidProtocol = errors.New("dogstatsd: invalid protocol")
