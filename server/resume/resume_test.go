package resume

import (
	"context"
	"testing"

	"github.com/pkg/errors"
	"github.com/recruitedge/recruitedge/server/models"
	"github.com/stretchr/testify/assert"
)

type fakeGenerator struct {
	response string
	err      error
}

func (f *fakeGenerator) GenerateText(ctx context.Context, systemInstruction, prompt string) (string, error) {
	return f.response, f.err
}

const sampleResume = "Sam Lee Junior studying Computer Science at State University " +
	"Experience: backend intern at Acme Corp"

func TestParse(t *testing.T) {
	t.Run("decodes the model's JSON response", func(t *testing.T) {
		parser := NewParser(&fakeGenerator{
			response: `{"name": "Sam Lee", "year": "Junior", "major": "Computer Science", "university": "State University"}`,
		})

		profile := parser.Parse(context.Background(), sampleResume)

		assert.Equal(t, "Sam Lee", profile.Name)
		assert.Equal(t, "Junior", profile.Year)
		assert.Equal(t, "Computer Science", profile.Major)
		assert.Equal(t, "State University", profile.University)
	})

	t.Run("strips markdown code fences", func(t *testing.T) {
		parser := NewParser(&fakeGenerator{
			response: "```json\n{\"name\": \"Sam Lee\", \"year\": \"Junior\", \"major\": \"CS\", \"university\": \"State University\"}\n```",
		})

		profile := parser.Parse(context.Background(), sampleResume)

		assert.Equal(t, "Sam Lee", profile.Name)
	})

	t.Run("fills missing fields with placeholders", func(t *testing.T) {
		parser := NewParser(&fakeGenerator{response: `{"name": "Sam Lee"}`})

		profile := parser.Parse(context.Background(), sampleResume)

		assert.Equal(t, "Sam Lee", profile.Name)
		assert.Equal(t, YEAR_PLACEHOLDER, profile.Year)
		assert.Equal(t, MAJOR_PLACEHOLDER, profile.Major)
		assert.Equal(t, UNIVERSITY_PLACEHOLDER, profile.University)
	})

	t.Run("falls back to regex extraction when the model fails", func(t *testing.T) {
		parser := NewParser(&fakeGenerator{err: errors.New("model unavailable")})

		profile := parser.Parse(context.Background(), sampleResume)

		assert.Equal(t, "Sam Lee", profile.Name)
		assert.Equal(t, "Junior", profile.Year)
		assert.Contains(t, profile.University, "State University")
	})

	t.Run("returns placeholders for empty resumes", func(t *testing.T) {
		parser := NewParser(&fakeGenerator{})

		profile := parser.Parse(context.Background(), "  ")

		assert.Equal(t, NAME_PLACEHOLDER, profile.Name)
		assert.Equal(t, UNIVERSITY_PLACEHOLDER, profile.University)
	})
}

func TestSimilarity(t *testing.T) {
	contact := models.Contact{FirstName: "Jane", Company: "Acme Corp"}

	t.Run("returns the model's sentence with quotes normalized", func(t *testing.T) {
		parser := NewParser(&fakeGenerator{response: `You both interned at "Acme Corp".`})

		similarity := parser.Similarity(context.Background(), sampleResume, contact)

		assert.Equal(t, "You both interned at 'Acme Corp'.", similarity)
	})

	t.Run("degrades to the default sentence on failure", func(t *testing.T) {
		parser := NewParser(&fakeGenerator{err: errors.New("model unavailable")})

		similarity := parser.Similarity(context.Background(), sampleResume, contact)

		assert.Equal(t, DEFAULT_SIMILARITY, similarity)
	})
}

func TestHometown(t *testing.T) {
	t.Run("finds the high school location in education history", func(t *testing.T) {
		contact := models.Contact{
			EducationTop: "Lincoln High School - Columbus, OH; State University - bachelors",
			City:         "Seattle",
			State:        "Washington",
		}

		assert.Equal(t, "Columbus, OH", Hometown(contact))
	})

	t.Run("falls back to the current city and state", func(t *testing.T) {
		contact := models.Contact{City: "Seattle", State: "Washington"}

		assert.Equal(t, "Seattle, Washington", Hometown(contact))
	})

	t.Run("is empty when nothing is known", func(t *testing.T) {
		assert.Empty(t, Hometown(models.Contact{City: "Seattle"}))
	})
}
