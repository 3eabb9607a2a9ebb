package topo

import "github.com/launchmap/launchmap/pkg/errors"

// GroupingMode derives the group key for a catalog service. The three
// implementations correspond to the category, domain, and simplified
// taxonomies; the builder dispatches on the value instead of branching on
// mode strings.
type GroupingMode interface {
	// Name identifies the mode ("category", "domain", "simplified").
	Name() string

	// Key returns the group key for the service. Never empty.
	Key(svc CatalogService) string
}

// Grouping modes.
var (
	GroupByCategory   GroupingMode = byCategory{}
	GroupByDomain     GroupingMode = byDomain{}
	GroupBySimplified GroupingMode = bySimplified{}
)

// ParseGroupingMode resolves a mode name to its GroupingMode.
func ParseGroupingMode(name string) (GroupingMode, error) {
	switch name {
	case "category":
		return GroupByCategory, nil
	case "domain":
		return GroupByDomain, nil
	case "simplified":
		return GroupBySimplified, nil
	}
	return nil, errors.New(errors.ErrCodeInvalidGrouping,
		"invalid grouping mode: %q (must be one of: category, domain, simplified)", name)
}

type byCategory struct{}

func (byCategory) Name() string { return "category" }

func (byCategory) Key(svc CatalogService) string {
	if svc.Category == "" {
		return "other"
	}
	return string(svc.Category)
}

type byDomain struct{}

func (byDomain) Name() string { return "domain" }

func (byDomain) Key(svc CatalogService) string {
	if svc.Domain == "" {
		return "integration"
	}
	return string(svc.Domain)
}

// simplifiedBuckets maps categories to the five coarse buckets shown in the
// simplified view. Unlisted categories land in "infra".
var simplifiedBuckets = map[Category]string{
	"database": "core", "auth": "core", "social_login": "core", "cache": "core", "search": "core",
	"deploy": "runtime", "serverless": "runtime", "cdn": "runtime",
	"email": "growth", "sms": "growth", "push": "growth", "payment": "growth",
	"analytics": "growth", "ecommerce": "growth", "chat": "growth", "cms": "growth",
	"ai": "intelligence",
}

type bySimplified struct{}

func (bySimplified) Name() string { return "simplified" }

func (bySimplified) Key(svc CatalogService) string {
	if bucket, ok := simplifiedBuckets[svc.Category]; ok {
		return bucket
	}
	return "infra"
}
