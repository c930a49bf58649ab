// Package credibility computes 0-100 claim credibility scores from
// transparent additive signals.
package credibility

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/rvachev/tierwatch/internal/model"
)

const baseScore = 50

// Context carries the external facts the scorer cannot derive from the
// claim record itself.
type Context struct {
	SourceAgeDays    int // -1 when the source creation date is unknown
	CrossSourceCount int // Distinct tier-3 sources asserting the same canonical claim within the window
}

// Signal is one scored component, kept so every point on a claim is
// explainable.
type Signal struct {
	Name   string `json:"name"`
	Points int    `json:"points"`
	Detail string `json:"detail"`
}

// Scorer scores claims. It is deterministic and stateless: the same claim
// and context always produce the same score.
type Scorer struct {
	absolute []string
	hoaxes   []*regexp.Regexp
	credible map[string]bool
}

// NewScorer compiles the configured pattern sets. Invalid hoax fingerprints
// are skipped.
func NewScorer(cfg model.CredibilityConfig) *Scorer {
	s := &Scorer{
		credible: make(map[string]bool, len(cfg.CredibleAuthors)),
	}

	for _, p := range cfg.AbsolutePatterns {
		s.absolute = append(s.absolute, strings.ToLower(p))
	}
	for _, p := range cfg.HoaxFingerprints {
		if re, err := regexp.Compile("(?i)" + p); err == nil {
			s.hoaxes = append(s.hoaxes, re)
		}
	}
	for _, name := range cfg.CredibleAuthors {
		s.credible[name] = true
	}
	return s
}

// Score computes the claim's credibility and the signal breakdown.
// The result starts from a neutral base and is clamped to [0,100].
func (s *Scorer) Score(cl *model.Claim, ctx Context) (int, []Signal) {
	signals := []Signal{{Name: "base", Points: baseScore, Detail: "neutral starting point"}}

	if sig, ok := s.sourceAge(ctx.SourceAgeDays); ok {
		signals = append(signals, sig)
	}
	if sig, ok := s.engagement(cl.Engagement); ok {
		signals = append(signals, sig)
	}
	if sig, ok := s.crossSource(ctx.CrossSourceCount); ok {
		signals = append(signals, sig)
	}

	if cl.ArtifactRef != "" {
		signals = append(signals, Signal{
			Name:   "artifact",
			Points: 15,
			Detail: "verifiable artifact reference " + cl.ArtifactRef,
		})
	}
	if s.credible[cl.Source] {
		signals = append(signals, Signal{
			Name:   "credible_author",
			Points: 10,
			Detail: "source on the known-credible allow-list",
		})
	}

	text := strings.ToLower(cl.Text)
	for _, pattern := range s.absolute {
		if strings.Contains(text, pattern) {
			signals = append(signals, Signal{
				Name:   "absolute_language",
				Points: -15,
				Detail: fmt.Sprintf("matched %q", pattern),
			})
			break
		}
	}
	for _, re := range s.hoaxes {
		if re.MatchString(cl.Text) {
			signals = append(signals, Signal{
				Name:   "hoax_fingerprint",
				Points: -50,
				Detail: "matched known-hoax fingerprint " + re.String(),
			})
			break
		}
	}
	if len(cl.References) == 0 {
		signals = append(signals, Signal{
			Name:   "no_reference",
			Points: -10,
			Detail: "no external reference or link present",
		})
	}

	total := 0
	for _, sig := range signals {
		total += sig.Points
	}
	if total < 0 {
		total = 0
	}
	if total > 100 {
		total = 100
	}

	return total, signals
}

func (s *Scorer) sourceAge(days int) (Signal, bool) {
	switch {
	case days < 0:
		return Signal{}, false
	case days >= 365:
		return Signal{Name: "source_age", Points: 10, Detail: fmt.Sprintf("account age %d days", days)}, true
	case days >= 90:
		return Signal{Name: "source_age", Points: 5, Detail: fmt.Sprintf("account age %d days", days)}, true
	case days < 30:
		return Signal{Name: "source_age", Points: -10, Detail: fmt.Sprintf("account age %d days", days)}, true
	default:
		return Signal{}, false
	}
}

func (s *Scorer) engagement(n int) (Signal, bool) {
	switch {
	case n >= 1000:
		return Signal{Name: "engagement", Points: 15, Detail: fmt.Sprintf("%d interactions", n)}, true
	case n >= 500:
		return Signal{Name: "engagement", Points: 10, Detail: fmt.Sprintf("%d interactions", n)}, true
	case n >= 100:
		return Signal{Name: "engagement", Points: 5, Detail: fmt.Sprintf("%d interactions", n)}, true
	default:
		return Signal{}, false
	}
}

func (s *Scorer) crossSource(count int) (Signal, bool) {
	switch {
	case count >= 3:
		return Signal{Name: "cross_source", Points: 20, Detail: fmt.Sprintf("%d distinct sources within window", count)}, true
	case count == 2:
		return Signal{Name: "cross_source", Points: 10, Detail: "2 distinct sources within window"}, true
	default:
		return Signal{}, false
	}
}
