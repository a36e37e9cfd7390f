/*
Package resilience provides a circuit breaker for calls to unreliable
dependencies, such as fetching the module artifact from a remote origin.

# States

  - Closed: calls pass through; failures are counted
  - Open: calls fail fast with ErrCircuitOpen until Timeout elapses
  - Half-Open: up to MaxRequests trial calls decide whether to close again

# Usage

	breaker := resilience.New("artifact-fetch", resilience.Settings{
		Timeout: 30 * time.Second,
		ReadyToTrip: func(counts resilience.Counts) bool {
			return counts.ConsecutiveFailures >= 5
		},
	})

	body, err := resilience.Call(breaker, func() ([]byte, error) {
		return fetch(ctx)
	})
*/
package resilience
