/*
Package resilience provides a circuit breaker for outgoing requests.

The breaker counts consecutive transport failures. Once Threshold is
reached it opens and Allow fails with ErrCircuitOpen until Cooldown has
passed. Then a single trial request is let through: success closes the circuit,
failure opens it for another Cooldown.

# Usage

	breaker := resilience.New("rest", resilience.Settings{
		Threshold: 5,
		Cooldown:  30 * time.Second,
	})

	if err := breaker.Allow(); err != nil {
		return err
	}
	resp, err := send()
	breaker.Record(err == nil)

# States

	Closed --[Threshold failures]-> Open --[Cooldown]-> Half-Open --[success]-> Closed
	                                  ^                     |
	                                  +------[failure]------+
*/
package resilience
