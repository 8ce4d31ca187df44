package targeting

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"social-ads/internal/core/domain"
)

func TestMatch(t *testing.T) {
	tests := []struct {
		name    string
		rules   domain.Targeting
		viewer  domain.ViewerContext
		matches bool
		score   float64
	}{
		{
			name:    "no rules always match",
			viewer:  domain.ViewerContext{Country: "ZA"},
			matches: true,
			score:   1.0,
		},
		{
			name:    "net worth tier and country",
			rules:   domain.Targeting{NetWorthTiers: []string{"GOLD", "PLATINUM"}, Countries: []string{"ZA"}},
			viewer:  domain.ViewerContext{NetWorthTier: "GOLD", Country: "ZA", Interests: []string{}},
			matches: true,
			score:   1.2,
		},
		{
			name:   "country gate",
			rules:  domain.Targeting{Countries: []string{"ZA"}},
			viewer: domain.ViewerContext{Country: "NG"},
		},
		{
			name:   "platform gate",
			rules:  domain.Targeting{Platforms: []string{"ios"}},
			viewer: domain.ViewerContext{Platform: "android"},
		},
		{
			name:   "device gate",
			rules:  domain.Targeting{DeviceTypes: []string{"mobile"}},
			viewer: domain.ViewerContext{DeviceType: "desktop"},
		},
		{
			name:   "listed city gate",
			rules:  domain.Targeting{Cities: []string{"Cape Town"}},
			viewer: domain.ViewerContext{City: "Durban"},
		},
		{
			name:    "gates compare case-insensitively",
			rules:   domain.Targeting{Countries: []string{"za"}, Cities: []string{"cape town"}},
			viewer:  domain.ViewerContext{Country: "ZA", City: "Cape Town"},
			matches: true,
			score:   1.0,
		},
		{
			name:    "tier miss neither helps nor hurts",
			rules:   domain.Targeting{NetWorthTiers: []string{"PLATINUM"}},
			viewer:  domain.ViewerContext{NetWorthTier: "SILVER"},
			matches: true,
			score:   1.0,
		},
		{
			name:    "influence threshold",
			rules:   domain.Targeting{MinInfluenceScore: 50},
			viewer:  domain.ViewerContext{InfluenceScore: 75},
			matches: true,
			score:   1.1,
		},
		{
			name:    "interest overlap capped at three",
			rules:   domain.Targeting{Interests: []string{"golf", "yachts", "art", "wine"}},
			viewer:  domain.ViewerContext{Interests: []string{"golf", "yachts", "art", "wine"}},
			matches: true,
			score:   1.3,
		},
		{
			name:    "interest list without overlap halves",
			rules:   domain.Targeting{Interests: []string{"golf"}},
			viewer:  domain.ViewerContext{Interests: []string{"gaming"}},
			matches: true,
			score:   0.5,
		},
		{
			name:    "industry match",
			rules:   domain.Targeting{Industries: []string{"finance"}},
			viewer:  domain.ViewerContext{Industry: "Finance"},
			matches: true,
			score:   1.15,
		},
		{
			name:    "industry miss penalty",
			rules:   domain.Targeting{Industries: []string{"finance"}},
			viewer:  domain.ViewerContext{Industry: "retail"},
			matches: true,
			score:   0.7,
		},
		{
			name: "boosts combine in order",
			rules: domain.Targeting{
				NetWorthTiers: []string{"GOLD"},
				Interests:     []string{"golf"},
				Industries:    []string{"finance"},
			},
			viewer:  domain.ViewerContext{NetWorthTier: "GOLD", Interests: []string{"cars"}, Industry: "retail"},
			matches: true,
			score:   (1.0 + 0.2) * 0.5 * 0.7,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Match(tt.rules, tt.viewer)
			assert.Equal(t, tt.matches, got.Matches)
			assert.InDelta(t, tt.score, got.Score, 1e-9)
		})
	}
}
