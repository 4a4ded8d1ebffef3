/*
Package resilience provides the circuit breakers used to stop hammering a
site that keeps failing.

# Overview

A Breaker guards one target. Each request asks for a Ticket with Allow and
reports its outcome with Ticket.Done. A Group hands out one breaker per host.

# Usage

	group := resilience.NewGroup(resilience.Settings{
		Failures: 5,
		Cooldown: 30 * time.Second,
	})

	br := group.Get(req.URL.Host)
	ticket, err := br.Allow()
	if err != nil {
		return nil, err
	}
	resp, err := next.RoundTrip(req)
	ticket.Done(err == nil && resp.StatusCode < 500)

# States

	Closed --[Failures in a row]-> Open --[Cooldown]-> Half-Open --[Probes successes]-> Closed
	                                                       |
	                                                   [failure]
	                                                       v
	                                                     Open
*/
package resilience
