package gc

import "expvar"

// ExpvarStats publishes c's stats counters under name via the standard
// library expvar package, for a host process that already exposes a
// /debug/vars endpoint. It is safe to call more than once with
// distinct names for distinct collectors; calling it twice with the
// same name panics, matching expvar.Publish's own contract.
func ExpvarStats(name string, c *Collector) {
	expvar.Publish(name, expvar.Func(func() any {
		var s Stats
		c.ReadStats(&s)
		return s
	}))
}
