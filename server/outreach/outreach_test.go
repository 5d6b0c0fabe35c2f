package outreach

import (
	"context"
	"encoding/csv"
	"fmt"
	"net/http"
	"net/http/httptest"
	"os"
	"strings"
	"testing"

	"github.com/recruitedge/recruitedge/server/contacts"
	"github.com/recruitedge/recruitedge/server/email"
	"github.com/recruitedge/recruitedge/server/models"
	"github.com/recruitedge/recruitedge/server/pdl"
	"github.com/recruitedge/recruitedge/shared"
	"github.com/stretchr/testify/assert"
)

type fakeGenerator struct {
	response string
}

func (f *fakeGenerator) GenerateText(ctx context.Context, systemInstruction, prompt string) (string, error) {
	return f.response, nil
}

func newVendorStub(t *testing.T) *httptest.Server {
	t.Helper()

	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/job_title/enrich":
			fmt.Fprint(w, `{"status": 200, "data": {"cleaned_name": "software engineer", "similar_job_titles": [], "job_title_levels": ["senior"]}}`)
		case "/company/clean":
			fmt.Fprint(w, `{"status": 200, "name": "acme corp"}`)
		case "/location/clean":
			fmt.Fprint(w, `{"status": 200, "name": "seattle, washington"}`)
		case "/person/search":
			fmt.Fprint(w, `{"status": 200, "data": [
				{
					"first_name": "jane",
					"last_name": "doe",
					"recommended_personal_email": "jane@x.io",
					"emails": [{"address": "jane@x.io", "type": "personal"}],
					"profiles": [{"network": "linkedin", "url": "linkedin.com/in/jane"}],
					"experience": [{"company": {"name": "acme corp"}, "title": {"name": "staff engineer"}}],
					"location": {"locality": "seattle", "region": "washington"}
				},
				{
					"first_name": "john",
					"last_name": "roe",
					"recommended_personal_email": "john@x.io",
					"profiles": [{"network": "linkedin", "url": "linkedin.com/in/john"}]
				}
			]}`)
		default:
			t.Errorf("unexpected vendor path: %v", r.URL.Path)
		}
	}))
}

func newTestRunner(t *testing.T, stub *httptest.Server) *Runner {
	t.Helper()

	searcher := contacts.NewSearcher(pdl.NewClient(shared.PeopleDataConfig{
		ApiKey:  "test-key",
		BaseURL: stub.URL,
	}))
	composer := email.NewComposer(&fakeGenerator{response: "Hi there, generated body"})
	return NewRunner(searcher, composer, nil, nil, t.TempDir())
}

func createTestUser(t *testing.T, emailAddress string) *models.User {
	t.Helper()

	user := &models.User{
		FirstName: "Sam",
		LastName:  "Lee",
		Email:     emailAddress,
		Password:  "secret-password-1",
	}
	assert.Nil(t, models.CreateUser(user))
	return user
}

func TestRunFree(t *testing.T) {
	models.InitializeTestDb()

	stub := newVendorStub(t)
	defer stub.Close()

	runner := newTestRunner(t, stub)
	user := createTestUser(t, "sam@school.edu")

	result, err := runner.RunFree(context.Background(), user, "Software Engineer", "Acme", "Seattle, Washington")
	assert.Nil(t, err)

	t.Run("drafts an email per contact", func(t *testing.T) {
		assert.Equal(t, FREE_TIER, result.Tier)
		assert.Len(t, result.Contacts, 2)
		for _, contact := range result.Contacts {
			assert.NotEmpty(t, contact.EmailSubject)
			assert.Equal(t, "Hi there, generated body", contact.EmailBody)
		}
	})

	t.Run("records mock draft IDs when gmail is not configured", func(t *testing.T) {
		assert.Equal(t, 0, result.SuccessfulDrafts)
		assert.Equal(t, "mock_free_draft_jane", result.Contacts[0].DraftID)
	})

	t.Run("persists the discovered contacts", func(t *testing.T) {
		assert.Equal(t, 2, result.SavedContacts)

		saved, err := models.ContactsForUser(user.ID)
		assert.Nil(t, err)
		assert.Len(t, saved, 2)
	})

	t.Run("writes a tier csv export", func(t *testing.T) {
		assert.Contains(t, result.CSVFile, "RecruitEdge_Free_sam_")

		f, err := os.Open(result.CSVFile)
		assert.Nil(t, err)
		defer f.Close()

		rows, err := csv.NewReader(f).ReadAll()
		assert.Nil(t, err)
		assert.Len(t, rows, 3)
		assert.Equal(t, freeTierColumns, rows[0])
		assert.Equal(t, "Jane", rows[1][0])
	})

	t.Run("skips duplicates on a rerun", func(t *testing.T) {
		rerun, err := runner.RunFree(context.Background(), user, "Software Engineer", "Acme", "Seattle, Washington")
		assert.Nil(t, err)
		assert.Equal(t, 0, rerun.SavedContacts)
	})
}

func TestExportCSVProColumns(t *testing.T) {
	dir := t.TempDir()

	filePath, err := exportCSV(dir, PRO_TIER, "sam@school.edu", []models.Contact{{
		FirstName:  "Jane",
		LastName:   "Doe",
		Hometown:   "Columbus, Ohio",
		Similarity: "Both studied CS",
	}})
	assert.Nil(t, err)
	assert.Contains(t, filePath, "RecruitEdge_Pro_sam_")

	f, err := os.Open(filePath)
	assert.Nil(t, err)
	defer f.Close()

	rows, err := csv.NewReader(f).ReadAll()
	assert.Nil(t, err)
	assert.Equal(t, proTierColumns, rows[0])
	assert.Equal(t, "Columbus, Ohio", rows[1][len(rows[1])-2])
	assert.Equal(t, "Both studied CS", rows[1][len(rows[1])-1])
}

func TestRunFreeWithNoMatches(t *testing.T) {
	models.InitializeTestDb()

	stub := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if strings.Contains(r.URL.Path, "search") {
			fmt.Fprint(w, `{"status": 200, "data": []}`)
			return
		}
		w.WriteHeader(http.StatusNotFound)
	}))
	defer stub.Close()

	runner := newTestRunner(t, stub)
	user := createTestUser(t, "sam2@school.edu")

	result, err := runner.RunFree(context.Background(), user, "Software Engineer", "Acme", "Nowhere, Iowa")
	assert.NotNil(t, err)
	assert.Nil(t, result)
}
