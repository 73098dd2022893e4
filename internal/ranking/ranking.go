// Package ranking holds the pure scoring functions: Reddit-style hot ranking
// for posts and the Wilson lower-bound confidence interval for comments and
// replies. See https://medium.com/hacking-and-gonzo/how-reddit-ranking-algorithms-work-ef111e33d0d9
package ranking

import (
	"math"
	"time"
)

// z for a one-sided 85% confidence interval.
const wilsonZ = 1.281551565545

// Hot computes the time-decayed post score. Newer posts with the same vote
// differential score higher; once the differential is large the log term
// dominates and age stops mattering much.
func Hot(upvotes, downvotes int, age time.Duration) float64 {
	x := upvotes - downvotes

	var sign float64
	if x > 0 {
		sign = 1
	} else if x < 0 {
		sign = -1
	}

	magnitude := float64(x)
	if x < 1 {
		magnitude = 1
	}

	t := age.Seconds()
	return math.Log10(magnitude) + sign*t/45000
}

// Confidence computes the Wilson score lower bound for a comment or reply.
// It ranks by how confident we are the true upvote proportion is positive,
// so a 2/2 comment outranks a 40/60 one but not a 90/10 one.
func Confidence(upvotes, downvotes int) float64 {
	n := float64(upvotes + downvotes)
	if n == 0 {
		return 0
	}

	z := wilsonZ
	p := float64(upvotes) / n

	left := p + z*z/(2*n)
	right := z * math.Sqrt(p*(1-p)/n+z*z/(4*n*n))
	under := 1 + z*z/n

	return (left - right) / under
}
