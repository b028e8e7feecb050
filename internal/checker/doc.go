// Package checker defines the signal probes behind an InSec scan.
//
// Architecture overview:
//
//   - NormalizeHost turns free-form input into a scan.Target. It is the only
//     place a scan can be rejected (InvalidHostError / ErrInvalidHost).
//   - Every probe implements Probe[T] (Run + Name) and returns a Result[T]:
//     a payload, or an UnavailableError carrying a short reason. Probes own
//     their timeout and never return a Go error to the caller.
//   - Probes depend on capability interfaces (Fetcher, TLSAssessor,
//     HeaderAssessor, ThreatLister) so tests can stub the network. The real
//     implementations live in internal/infrastructure/upstream.
//   - Edge/WAF detection is a data table (EdgeRules) evaluated first-match-wins,
//     and technology hints come from a table of exposed headers.
//
// Probes in this package:
//
//	headers     GET https://host, fingerprint server/edge/rate-limit headers
//	tls         SSL Labs cached assessment: grade and protocols
//	hsts        HTTP Observatory trigger + poll, strict-transport-security test
//	title       GET https://host, first <title> (x/net/html tokenizer)
//	reputation  Safe Browsing lookup, only with a configured key
package checker
