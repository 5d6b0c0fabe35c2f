package contacts

import (
	"context"
	"fmt"
	"strings"

	"github.com/pkg/errors"
	"github.com/recruitedge/recruitedge/server/logger"
	"github.com/recruitedge/recruitedge/server/models"
	"github.com/recruitedge/recruitedge/server/pdl"
)

var logg = logger.NewLogger()

// ---------------------------------------------------------------------------------//
// Contact discovery: enrich inputs, pick a query strategy, run the cascade
// -------------------------------------------------------------------------------- //

// Searcher runs the discovery cascade against the people-data vendor.
type Searcher struct {
	client *pdl.Client
}

func NewSearcher(client *pdl.Client) *Searcher {
	return &Searcher{client: client}
}

// Search finds up to maxContacts people matching the given role, company and
// location. The returned degraded list records every step that fell back to
// weaker behavior, so callers can tell a thin result from a vendor outage.
// Hard vendor failures (payment required, rate limited) abort the search.
func (s *Searcher) Search(ctx context.Context, jobTitle, company, location string, maxContacts int) ([]models.Contact, []string, error) {
	var degraded []string

	titles, levels, notes := s.enrichTitle(ctx, jobTitle)
	degraded = append(degraded, notes...)

	cleanedCompany, notes := s.cleanCompany(ctx, company)
	degraded = append(degraded, notes...)

	cleanedLocation, notes := s.cleanLocation(ctx, location)
	degraded = append(degraded, notes...)

	strategy := Classify(cleanedLocation)
	logg.Infow("classified location",
		"input", location, "strategy", strategy.Strategy, "metro", strategy.MetroLocation)

	var results []models.Contact
	var err error
	if strategy.Strategy == METRO_PRIMARY {
		results, notes, err = s.metroCascade(ctx, titles, levels, cleanedCompany, strategy, maxContacts)
	} else {
		results, notes, err = s.localityCascade(ctx, titles, levels, cleanedCompany, strategy, maxContacts)
	}
	degraded = append(degraded, notes...)
	if err != nil {
		return nil, degraded, err
	}

	if len(results) > maxContacts {
		results = results[:maxContacts]
	}
	return results, degraded, nil
}

// metroCascade searches by metro first, then widens to the raw locality when
// the metro pass comes back under half the requested size.
func (s *Searcher) metroCascade(
	ctx context.Context, titles, levels []string, company string, strategy LocationStrategy, maxContacts int,
) ([]models.Contact, []string, error) {
	var degraded []string

	primary := pdl.NewSearchQuery(maxContacts,
		titleClause(titles),
		pdl.MatchPhrase("job_company_name", company),
		pdl.Match("location_metro", strategy.MetroLocation),
		pdl.Exists("emails"),
	)
	results, err := s.runSearch(ctx, primary)
	if err != nil {
		if isHardFailure(err) {
			return nil, degraded, err
		}
		degraded = append(degraded, fmt.Sprintf("metro search failed: %v", err))
	}

	if len(results) < maxContacts/2 {
		degraded = append(degraded, "metro search under-filled, widening to locality")
		fallback := pdl.NewSearchQuery(maxContacts,
			titleClause(titles),
			pdl.MatchPhrase("job_company_name", company),
			pdl.Match("location_locality", strategy.City),
			pdl.Exists("emails"),
		)
		more, err := s.runSearch(ctx, fallback)
		if err != nil {
			if isHardFailure(err) && len(results) == 0 {
				return nil, degraded, err
			}
			degraded = append(degraded, fmt.Sprintf("locality fallback failed: %v", err))
		}
		results = mergeContacts(results, more)
	}

	if len(results) == 0 {
		degraded = append(degraded, "no primary matches, widening to seniority levels")
		more, notes, err := s.broaderSearch(ctx, levels, company, strategy, maxContacts)
		degraded = append(degraded, notes...)
		if err != nil {
			return nil, degraded, err
		}
		results = more
	}
	return results, degraded, nil
}

// localityCascade searches the exact city first, then drops the title match
// in favor of seniority levels when the city pass comes back under half the
// requested size, asking only for the remaining slots.
func (s *Searcher) localityCascade(
	ctx context.Context, titles, levels []string, company string, strategy LocationStrategy, maxContacts int,
) ([]models.Contact, []string, error) {
	var degraded []string

	clauses := []map[string]interface{}{
		titleClause(titles),
		pdl.MatchPhrase("job_company_name", company),
		pdl.Match("location_locality", strategy.City),
		pdl.Exists("emails"),
	}
	if strategy.State != "" {
		clauses = append(clauses, pdl.Match("location_region", strategy.State))
	}

	results, err := s.runSearch(ctx, pdl.NewSearchQuery(maxContacts, clauses...))
	if err != nil {
		if isHardFailure(err) {
			return nil, degraded, err
		}
		degraded = append(degraded, fmt.Sprintf("locality search failed: %v", err))
	}

	if len(results) < maxContacts/2 {
		degraded = append(degraded, "locality search under-filled, widening to seniority levels")
		more, notes, err := s.broaderSearch(ctx, levels, company, strategy, maxContacts-len(results))
		degraded = append(degraded, notes...)
		if err != nil {
			if len(results) == 0 {
				return nil, degraded, err
			}
		} else {
			results = mergeContacts(results, more)
		}
	}
	return results, degraded, nil
}

// broaderSearch is the last resort: it matches on seniority levels instead
// of titles, so it can surface people the title clauses filtered out.
func (s *Searcher) broaderSearch(
	ctx context.Context, levels []string, company string, strategy LocationStrategy, maxContacts int,
) ([]models.Contact, []string, error) {
	var degraded []string

	var levelClauses []map[string]interface{}
	for _, level := range levels {
		levelClauses = append(levelClauses, pdl.Match("job_title_levels", level))
	}
	if len(levelClauses) == 0 {
		levelClauses = append(levelClauses, pdl.Match("job_title_levels", "senior"))
	}

	locationClause := pdl.Match("location_locality", strategy.City)
	if strategy.Strategy == METRO_PRIMARY {
		locationClause = pdl.Should(
			pdl.Match("location_metro", strategy.MetroLocation),
			pdl.Match("location_locality", strategy.City),
		)
	}

	query := pdl.NewSearchQuery(maxContacts,
		pdl.Should(levelClauses...),
		pdl.MatchPhrase("job_company_name", company),
		locationClause,
		pdl.Exists("emails"),
	)
	results, err := s.runSearch(ctx, query)
	if err != nil {
		if isHardFailure(err) {
			return nil, degraded, err
		}
		degraded = append(degraded, fmt.Sprintf("broader search failed: %v", err))
	}
	return results, degraded, nil
}

func (s *Searcher) runSearch(ctx context.Context, query pdl.SearchQuery) ([]models.Contact, error) {
	persons, err := s.client.PersonSearch(ctx, query)
	if err != nil {
		return nil, err
	}

	var results []models.Contact
	for _, person := range persons {
		if contact := NormalizeContact(person); contact != nil {
			results = append(results, *contact)
		}
	}
	return dedupeContacts(results), nil
}

func (s *Searcher) enrichTitle(ctx context.Context, jobTitle string) (titles, levels, degraded []string) {
	enrichment, err := s.client.EnrichJobTitle(ctx, jobTitle)
	if err != nil {
		logg.Warnw("job title enrichment unavailable", "title", jobTitle, "error", err)
		return []string{strings.ToLower(jobTitle)}, nil, []string{fmt.Sprintf("job title enrichment failed: %v", err)}
	}

	titles = []string{enrichment.CleanedName}
	for _, similar := range enrichment.SimilarTitles {
		if len(titles) == 4 {
			break
		}
		if similar != enrichment.CleanedName {
			titles = append(titles, similar)
		}
	}
	return titles, enrichment.Levels, nil
}

func (s *Searcher) cleanCompany(ctx context.Context, company string) (string, []string) {
	cleaned, err := s.client.CleanCompany(ctx, company)
	if err != nil {
		return strings.ToLower(company), []string{fmt.Sprintf("company cleaning failed: %v", err)}
	}
	if cleaned == "" {
		return strings.ToLower(company), []string{"company cleaning returned no match"}
	}
	return cleaned, nil
}

func (s *Searcher) cleanLocation(ctx context.Context, location string) (string, []string) {
	cleaned, err := s.client.CleanLocation(ctx, location)
	if err != nil {
		return location, []string{fmt.Sprintf("location cleaning failed: %v", err)}
	}
	if cleaned == "" {
		return location, []string{"location cleaning returned no match"}
	}
	return cleaned, nil
}

func titleClause(titles []string) map[string]interface{} {
	clauses := make([]map[string]interface{}, 0, len(titles))
	for _, title := range titles {
		clauses = append(clauses, pdl.Match("job_title", title))
	}
	return pdl.Should(clauses...)
}

func isHardFailure(err error) bool {
	return errors.Is(err, pdl.ErrPaymentRequired) || errors.Is(err, pdl.ErrRateLimited)
}

// mergeContacts appends b onto a, dropping records already present in a.
func mergeContacts(a, b []models.Contact) []models.Contact {
	return dedupeContacts(append(a, b...))
}

// dedupeContacts keeps the first record per person, keyed by LinkedIn URL
// when present and email otherwise.
func dedupeContacts(contacts []models.Contact) []models.Contact {
	seen := make(map[string]bool, len(contacts))
	var unique []models.Contact
	for _, contact := range contacts {
		key := contact.LinkedinURL
		if key == "" {
			key = strings.ToLower(contact.Email)
		}
		if key == "" {
			key = fmt.Sprintf("%s|%s|%s", contact.FirstName, contact.LastName, contact.Company)
		}
		key = strings.ToLower(key)
		if seen[key] {
			continue
		}
		seen[key] = true
		unique = append(unique, contact)
	}
	return unique
}
