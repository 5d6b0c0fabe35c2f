package pdl

import "encoding/json"

// Person is the tolerant, typed form of the vendor's person record.
// Every field is optional; downstream code never re-checks JSON shapes.
type Person struct {
	FirstName                string       `json:"first_name"`
	LastName                 string       `json:"last_name"`
	RecommendedPersonalEmail string       `json:"recommended_personal_email"`
	Emails                   []Email      `json:"emails"`
	PhoneNumbers             []string     `json:"phone_numbers"`
	Profiles                 []Profile    `json:"profiles"`
	Experience               []Experience `json:"experience"`
	Education                []Education  `json:"education"`
	Interests                []string     `json:"interests"`
	Location                 *Location    `json:"location"`
	InferredYearsExperience  int          `json:"inferred_years_experience"`
	LinkedinConnections      int          `json:"linkedin_connections"`
	DatasetVersion           string       `json:"dataset_version"`
}

type Email struct {
	Address string `json:"address"`
	Type    string `json:"type"`
}

type Profile struct {
	Network string `json:"network"`
	URL     string `json:"url"`
}

type Experience struct {
	Company *NamedEntity `json:"company"`
	Title   *NamedEntity `json:"title"`
}

type NamedEntity struct {
	Name string `json:"name"`
}

type Education struct {
	School  *NamedEntity `json:"school"`
	Degrees []string     `json:"degrees"`
}

type Location struct {
	Locality string `json:"locality"`
	Region   string `json:"region"`
}

// JobTitleEnrichment is the vendor's canonicalized view of a job title.
type JobTitleEnrichment struct {
	CleanedName   string   `json:"cleaned_name"`
	SimilarTitles []string `json:"similar_job_titles"`
	Levels        []string `json:"job_title_levels"`
	Categories    []string `json:"job_title_categories"`
}

// ---------------------------------------------------------------------------------//
// Query DSL
// --------------------------------------------------------------------------------//

// SearchQuery is the boolean query document the person-search endpoint expects.
type SearchQuery struct {
	Query map[string]interface{} `json:"query"`
	Size  int                    `json:"size"`
}

func NewSearchQuery(size int, mustClauses ...map[string]interface{}) SearchQuery {
	return SearchQuery{
		Query: map[string]interface{}{
			"bool": map[string]interface{}{"must": mustClauses},
		},
		Size: size,
	}
}

func (q SearchQuery) JSON() (string, error) {
	b, err := json.Marshal(q)
	if err != nil {
		return "", err
	}
	return string(b), nil
}

func Match(field, value string) map[string]interface{} {
	return map[string]interface{}{"match": map[string]interface{}{field: value}}
}

func MatchPhrase(field, value string) map[string]interface{} {
	return map[string]interface{}{"match_phrase": map[string]interface{}{field: value}}
}

func Exists(field string) map[string]interface{} {
	return map[string]interface{}{"exists": map[string]interface{}{"field": field}}
}

// Should wraps clauses in a bool-should with minimum_should_match of 1.
func Should(clauses ...map[string]interface{}) map[string]interface{} {
	return map[string]interface{}{
		"bool": map[string]interface{}{
			"should":               clauses,
			"minimum_should_match": 1,
		},
	}
}
