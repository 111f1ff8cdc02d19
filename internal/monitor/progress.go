package monitor

import (
	"math"
	"regexp"
	"strconv"
	"strings"

	"repackget/internal/browser"
)

var contentLengthRe = regexp.MustCompile(`(?i)content-length:\s*(\d+)`)

// Sample is a progress reading reconstructed from the network log.
type Sample struct {
	Received int64
	Total    int64 // valid only when HasTotal
	HasTotal bool
}

// Percent returns received/total clamped to 100 and rounded to two
// decimals. ok is false while no positive total has been seen.
func (s Sample) Percent() (pct float64, ok bool) {
	if !s.HasTotal || s.Total <= 0 {
		return 0, false
	}
	pct = float64(s.Received) / float64(s.Total) * 100
	if pct > 100 {
		pct = 100
	}
	return math.Round(pct*100) / 100, true
}

// Estimate folds a network log into a Sample. The first declared content
// length wins; every dataReceived chunk counts toward Received.
func Estimate(events []browser.NetworkEvent) Sample {
	var s Sample
	for _, e := range events {
		switch e.Method {
		case browser.MethodResponseExtraInfo:
			if s.HasTotal {
				continue
			}
			if n, ok := contentLength(e); ok && n > 0 {
				s.Total, s.HasTotal = n, true
			}
		case browser.MethodDataReceived:
			s.Received += e.DataLength
		}
	}
	return s
}

func contentLength(e browser.NetworkEvent) (int64, bool) {
	for k, v := range e.Headers {
		if strings.EqualFold(k, "content-length") {
			n, err := strconv.ParseInt(strings.TrimSpace(v), 10, 64)
			return n, err == nil
		}
	}
	if m := contentLengthRe.FindStringSubmatch(e.HeadersText); m != nil {
		n, err := strconv.ParseInt(m[1], 10, 64)
		return n, err == nil
	}
	return 0, false
}
