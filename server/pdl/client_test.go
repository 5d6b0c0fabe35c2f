package pdl

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/pkg/errors"
	"github.com/recruitedge/recruitedge/shared"
	"github.com/stretchr/testify/assert"
)

func newTestClient(handler http.HandlerFunc) (*Client, *httptest.Server) {
	server := httptest.NewServer(handler)
	client := NewClient(shared.PeopleDataConfig{ApiKey: "test-key", BaseURL: server.URL})
	return client, server
}

func TestPersonSearch(t *testing.T) {
	t.Run("skips malformed records instead of failing the page", func(t *testing.T) {
		client, server := newTestClient(func(w http.ResponseWriter, r *http.Request) {
			assert.Equal(t, "/person/search", r.URL.Path)
			assert.Equal(t, "test-key", r.URL.Query().Get("api_key"))

			fmt.Fprint(w, `{
				"status": 200,
				"data": [
					{"first_name": "jane", "last_name": "doe", "job_company_name": "acme"},
					{"first_name": ["not", "a", "string"]},
					{"first_name": "sam", "last_name": "roe"}
				]
			}`)
		})
		defer server.Close()

		people, err := client.PersonSearch(context.Background(), NewSearchQuery(5, Match("job_company_name", "acme")))

		assert.NoError(t, err)
		assert.Len(t, people, 2)
		assert.Equal(t, "jane", people[0].FirstName)
		assert.Equal(t, "sam", people[1].FirstName)
	})

	t.Run("returns ErrPaymentRequired on 402", func(t *testing.T) {
		client, server := newTestClient(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusPaymentRequired)
		})
		defer server.Close()

		_, err := client.PersonSearch(context.Background(), NewSearchQuery(5))

		assert.True(t, errors.Is(err, ErrPaymentRequired))
	})

	t.Run("returns ErrRateLimited on 429", func(t *testing.T) {
		client, server := newTestClient(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusTooManyRequests)
		})
		defer server.Close()

		_, err := client.PersonSearch(context.Background(), NewSearchQuery(5))

		assert.True(t, errors.Is(err, ErrRateLimited))
	})
}

func TestAutocomplete(t *testing.T) {
	t.Run("accepts plain string suggestions", func(t *testing.T) {
		client, server := newTestClient(func(w http.ResponseWriter, r *http.Request) {
			assert.Equal(t, "title", r.URL.Query().Get("field"))
			assert.Equal(t, "recru", r.URL.Query().Get("text"))
			fmt.Fprint(w, `{"status": 200, "data": ["recruiter", "recruiting manager"]}`)
		})
		defer server.Close()

		suggestions, err := client.Autocomplete(context.Background(), "title", "recru", 10)

		assert.NoError(t, err)
		assert.Equal(t, []string{"recruiter", "recruiting manager"}, suggestions)
	})

	t.Run("accepts object suggestions with counts", func(t *testing.T) {
		client, server := newTestClient(func(w http.ResponseWriter, r *http.Request) {
			fmt.Fprint(w, `{"status": 200, "data": [{"name": "recruiter", "count": 120}, {"name": "recruiting coordinator", "count": 80}]}`)
		})
		defer server.Close()

		suggestions, err := client.Autocomplete(context.Background(), "title", "recru", 10)

		assert.NoError(t, err)
		assert.Equal(t, []string{"recruiter", "recruiting coordinator"}, suggestions)
	})
}

func TestEnrichJobTitle(t *testing.T) {
	t.Run("returns cleaned title with levels", func(t *testing.T) {
		client, server := newTestClient(func(w http.ResponseWriter, r *http.Request) {
			assert.Equal(t, "/job_title/enrich", r.URL.Path)
			fmt.Fprint(w, `{
				"status": 200,
				"data": {
					"cleaned_name": "senior recruiter",
					"similar_job_titles": ["talent partner", "recruiting lead"],
					"job_title_levels": ["senior"]
				}
			}`)
		})
		defer server.Close()

		enrichment, err := client.EnrichJobTitle(context.Background(), "Sr. Recruiter")

		assert.NoError(t, err)
		assert.Equal(t, "senior recruiter", enrichment.CleanedName)
		assert.Equal(t, []string{"talent partner", "recruiting lead"}, enrichment.SimilarTitles)
		assert.Equal(t, []string{"senior"}, enrichment.Levels)
	})

	t.Run("errors when vendor has no data", func(t *testing.T) {
		client, server := newTestClient(func(w http.ResponseWriter, r *http.Request) {
			fmt.Fprint(w, `{"status": 200, "data": null}`)
		})
		defer server.Close()

		_, err := client.EnrichJobTitle(context.Background(), "gibberish")

		assert.Error(t, err)
	})
}

func TestCleanEndpoints(t *testing.T) {
	t.Run("cleans a company name", func(t *testing.T) {
		client, server := newTestClient(func(w http.ResponseWriter, r *http.Request) {
			assert.Equal(t, "/company/clean", r.URL.Path)
			assert.Equal(t, "Gooogle", r.URL.Query().Get("name"))
			fmt.Fprint(w, `{"status": 200, "name": "google"}`)
		})
		defer server.Close()

		name, err := client.CleanCompany(context.Background(), "Gooogle")

		assert.NoError(t, err)
		assert.Equal(t, "google", name)
	})

	t.Run("errors when cleaner returns no value", func(t *testing.T) {
		client, server := newTestClient(func(w http.ResponseWriter, r *http.Request) {
			fmt.Fprint(w, `{"status": 200, "name": ""}`)
		})
		defer server.Close()

		_, err := client.CleanLocation(context.Background(), "nowhere at all")

		assert.Error(t, err)
	})
}
