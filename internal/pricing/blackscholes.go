// Package pricing provides closed-form option valuation used to drive the
// time-dependent replication maker.
package pricing

import "math"

// normCDF is the standard normal cumulative distribution function.
func normCDF(x float64) float64 {
	return 0.5 * (1 + math.Erf(x/math.Sqrt2))
}

func d1(spot, strike, ttl, rate, sigma float64) float64 {
	return (math.Log(spot/strike) + (rate+0.5*sigma*sigma)*ttl) / (sigma * math.Sqrt(ttl))
}

// CallPrice returns the Black-Scholes value of a European call. With no time
// or volatility left the value degenerates to the discounted intrinsic.
func CallPrice(spot, strike, ttl, rate, sigma float64) float64 {
	if spot <= 0 {
		return 0
	}
	discounted := strike * math.Exp(-rate*ttl)
	if ttl <= 0 || sigma <= 0 {
		return math.Max(0, spot-discounted)
	}
	d := d1(spot, strike, ttl, rate, sigma)
	return spot*normCDF(d) - discounted*normCDF(d-sigma*math.Sqrt(ttl))
}

// CallDelta returns the first derivative of CallPrice with respect to spot.
// At expiry the delta collapses to a step function around the strike.
func CallDelta(spot, strike, ttl, rate, sigma float64) float64 {
	if spot <= 0 {
		return 0
	}
	if ttl <= 0 || sigma <= 0 {
		if spot > strike*math.Exp(-rate*ttl) {
			return 1
		}
		return 0
	}
	return normCDF(d1(spot, strike, ttl, rate, sigma))
}

// ReplicationDelta adapts CallDelta to the (price, timeToLive) signature the
// replication maker consumes, scaled by the number of contracts hedged.
func ReplicationDelta(strike, rate, sigma, contracts float64) func(price, ttl float64) float64 {
	return func(price, ttl float64) float64 {
		return contracts * CallDelta(price, strike, ttl, rate, sigma)
	}
}
