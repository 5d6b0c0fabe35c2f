package contacts

import (
	"testing"

	"github.com/recruitedge/recruitedge/server/models"
	"github.com/recruitedge/recruitedge/server/pdl"
	"github.com/stretchr/testify/assert"
)

func TestNormalizeContact(t *testing.T) {
	t.Run("drops records without a full name", func(t *testing.T) {
		assert.Nil(t, NormalizeContact(pdl.Person{FirstName: "jane"}))
		assert.Nil(t, NormalizeContact(pdl.Person{LastName: "doe"}))
		assert.Nil(t, NormalizeContact(pdl.Person{FirstName: "  ", LastName: "doe"}))
	})

	t.Run("prefers the recommended personal email", func(t *testing.T) {
		contact := NormalizeContact(pdl.Person{
			FirstName:                "jane",
			LastName:                 "doe",
			RecommendedPersonalEmail: "jane@personal.io",
			Emails: []pdl.Email{
				{Address: "jane@work.com", Type: "work"},
				{Address: "jd@gmail.com", Type: "personal"},
			},
		})

		assert.Equal(t, "jane@personal.io", contact.Email)
		assert.Equal(t, "jd@gmail.com", contact.PersonalEmail)
		assert.Equal(t, "jane@work.com", contact.WorkEmail)
	})

	t.Run("falls back through personal then work email", func(t *testing.T) {
		contact := NormalizeContact(pdl.Person{
			FirstName: "jane",
			LastName:  "doe",
			Emails:    []pdl.Email{{Address: "jane@work.com", Type: "work"}},
		})

		assert.Equal(t, "jane@work.com", contact.Email)
	})

	t.Run("flattens experience into a work summary", func(t *testing.T) {
		contact := NormalizeContact(pdl.Person{
			FirstName: "jane",
			LastName:  "doe",
			Experience: []pdl.Experience{
				{
					Company: &pdl.NamedEntity{Name: "acme corp"},
					Title:   &pdl.NamedEntity{Name: "staff engineer"},
				},
				{Company: &pdl.NamedEntity{Name: "globex"}},
			},
			InferredYearsExperience: 8,
		})

		assert.Equal(t, "Acme Corp", contact.Company)
		assert.Equal(t, "Staff Engineer", contact.Title)
		assert.Equal(t,
			"Current Staff Engineer at Acme Corp (8 years experience). Previously at Globex.",
			contact.WorkSummary)
		assert.Equal(t, "Acme Corp Staff Team", contact.Group)
	})

	t.Run("renders the top two education entries", func(t *testing.T) {
		contact := NormalizeContact(pdl.Person{
			FirstName: "jane",
			LastName:  "doe",
			Education: []pdl.Education{
				{School: &pdl.NamedEntity{Name: "state university"}, Degrees: []string{"bachelors"}},
				{School: &pdl.NamedEntity{Name: "tech institute"}},
				{School: &pdl.NamedEntity{Name: "ignored college"}},
			},
		})

		assert.Equal(t, "State University - bachelors; Tech Institute", contact.EducationTop)
	})

	t.Run("uses the Not available sentinel for missing fields", func(t *testing.T) {
		contact := NormalizeContact(pdl.Person{FirstName: "jane", LastName: "doe"})

		assert.Empty(t, contact.Phone)
		assert.Equal(t, models.NOT_AVAILABLE, contact.EducationTop)
		assert.Equal(t, models.NOT_AVAILABLE, contact.WorkSummary)
		assert.Equal(t, models.NOT_AVAILABLE, contact.Interests)
		assert.Equal(t, models.NOT_AVAILABLE, contact.Group)
		assert.Empty(t, contact.Email)
	})

	t.Run("keeps the first three interests", func(t *testing.T) {
		contact := NormalizeContact(pdl.Person{
			FirstName: "jane",
			LastName:  "doe",
			Interests: []string{"hiking", "chess", "pottery", "golf"},
		})

		assert.Equal(t, "Hiking enthusiast, Chess enthusiast, Pottery enthusiast", contact.Interests)
	})

	t.Run("picks the linkedin profile out of the profile list", func(t *testing.T) {
		contact := NormalizeContact(pdl.Person{
			FirstName: "jane",
			LastName:  "doe",
			Profiles: []pdl.Profile{
				{Network: "twitter", URL: "twitter.com/jd"},
				{Network: "linkedin", URL: "linkedin.com/in/janedoe"},
			},
		})

		assert.Equal(t, "linkedin.com/in/janedoe", contact.LinkedinURL)
	})

	t.Run("matches linkedin profiles regardless of network casing", func(t *testing.T) {
		contact := NormalizeContact(pdl.Person{
			FirstName: "jane",
			LastName:  "doe",
			Profiles: []pdl.Profile{
				{Network: "LinkedIn", URL: "linkedin.com/in/janedoe"},
			},
		})

		assert.Equal(t, "linkedin.com/in/janedoe", contact.LinkedinURL)
	})
}
