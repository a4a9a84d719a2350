package syndicate

import (
	"log/slog"

	"github.com/c360/syndicate/catalog"
	"github.com/c360/syndicate/profile"
)

// ShouldSkip decides whether the dataset is excluded from syndication to the
// profile. Pure predicate: safe to call redundantly for every profile on
// every notification, no side effects beyond debug logging.
//
// A dataset is skipped when its profile predicate rejects it, or when any
// registered extension (including the canonical private/flag rules) vetoes
// it.
func ShouldSkip(ds *catalog.Dataset, p profile.Profile, exts *Registry, logger *slog.Logger) bool {
	if p.Predicate != "" {
		predicate, ok := profile.LookupPredicate(p.Predicate)
		if !ok {
			// Unresolvable predicates fail closed. Config validation reports
			// them at startup; this guards dynamic profile edits.
			logger.Warn("predicate not registered, skipping dataset",
				"predicate", p.Predicate,
				"profile", p.ID,
				"dataset", ds.ID)
			return true
		}
		if !predicate(ds) {
			logger.Info("dataset rejected by profile predicate",
				"predicate", p.Predicate,
				"profile", p.ID,
				"dataset", ds.ID)
			return true
		}
	}

	if exts.Skip(ds, p.Flag) {
		logger.Debug("dataset not flagged for syndication",
			"profile", p.ID,
			"dataset", ds.ID,
			"flag", p.Flag)
		return true
	}

	return false
}
