package parser

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"ScriptProducer/internal/config"
	"ScriptProducer/internal/domain"
	"ScriptProducer/internal/ports"
	"ScriptProducer/internal/scanner"
)

// StrategySource implements HeadlineSource via registered scanner strategies.
type StrategySource struct {
	registry *scanner.Registry
	sites    []config.SiteConfig
	logger   *slog.Logger
}

var _ ports.HeadlineSource = (*StrategySource)(nil)

// NewStrategySource wires scanner registry with config-defined sites.
func NewStrategySource(reg *scanner.Registry, sites []config.SiteConfig, log *slog.Logger) *StrategySource {
	return &StrategySource{
		registry: reg,
		sites:    sites,
		logger:   log,
	}
}

// Headlines iterates over configured sites and executes their scanners.
// Titles seen on an earlier site are dropped.
func (s *StrategySource) Headlines(ctx context.Context) ([]domain.Headline, error) {
	if s.registry == nil {
		return nil, fmt.Errorf("scanner registry is not configured")
	}

	s.debug("scan headlines", "sites", len(s.sites))

	seen := map[string]struct{}{}
	var aggregated []domain.Headline
	for _, site := range s.sites {
		s.debug("process site", "site", site.Name, "scanner", site.Scanner)
		strategy, err := s.registry.Resolve(site.Scanner)
		if err != nil {
			return nil, fmt.Errorf("site %s: %w", site.Name, err)
		}

		results, err := strategy.Scan(ctx, scanner.Request{
			SiteName: site.Name,
			URL:      site.URL,
			Selector: site.Selector,
			Limit:    site.Limit,
		})
		if err != nil {
			return nil, fmt.Errorf("scan site %s: %w", site.Name, err)
		}

		for _, h := range results {
			key := strings.ToLower(h.Title)
			if _, dup := seen[key]; dup {
				continue
			}
			seen[key] = struct{}{}
			if h.Source == "" {
				h.Source = site.Name
			}
			aggregated = append(aggregated, h)
		}
		s.debug("site produced headlines", "site", site.Name, "count", len(results))
	}

	s.debug("strategy source done", "total_headlines", len(aggregated))
	return aggregated, nil
}

func (s *StrategySource) debug(msg string, args ...any) {
	if s.logger != nil {
		s.logger.Debug(msg, args...)
	}
}
