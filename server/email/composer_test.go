package email

import (
	"context"
	"testing"

	"github.com/pkg/errors"
	"github.com/recruitedge/recruitedge/server/models"
	"github.com/stretchr/testify/assert"
)

type fakeGenerator struct {
	responses []string
	err       error
	errOnCall int // 1-based call index that errors; 0 means every call
	calls     int
	prompts   []string
}

func (f *fakeGenerator) GenerateText(ctx context.Context, systemInstruction, prompt string) (string, error) {
	f.calls++
	f.prompts = append(f.prompts, prompt)
	if f.err != nil && (f.errOnCall == 0 || f.errOnCall == f.calls) {
		return "", f.err
	}
	response := f.responses[0]
	if len(f.responses) > 1 {
		f.responses = f.responses[1:]
	}
	return response, nil
}

func testContact() models.Contact {
	return models.Contact{
		FirstName: "Jane",
		LastName:  "Doe",
		Company:   "Acme Corp",
		Title:     "Staff Engineer",
	}
}

func TestComposeFree(t *testing.T) {
	t.Run("uses a fixed subject and the generated body", func(t *testing.T) {
		generator := &fakeGenerator{responses: []string{"Hi Jane,\n\ngenerated body\n"}}

		subject, body, err := NewComposer(generator).ComposeFree(context.Background(), testContact())

		assert.Nil(t, err)
		assert.Equal(t, "Quick Chat to Learn about Your Work at Acme Corp?", subject)
		assert.Equal(t, "Hi Jane,\n\ngenerated body", body)
	})

	t.Run("includes contact details in the prompt", func(t *testing.T) {
		generator := &fakeGenerator{responses: []string{"body"}}

		_, _, err := NewComposer(generator).ComposeFree(context.Background(), testContact())

		assert.Nil(t, err)
		assert.Contains(t, generator.prompts[0], "Jane Doe")
		assert.Contains(t, generator.prompts[0], "Acme Corp")
		assert.Contains(t, generator.prompts[0], "[Your Name]")
	})

	t.Run("propagates generator errors", func(t *testing.T) {
		generator := &fakeGenerator{err: errors.New("model unavailable")}

		_, _, err := NewComposer(generator).ComposeFree(context.Background(), testContact())

		assert.NotNil(t, err)
	})
}

func TestComposePro(t *testing.T) {
	sender := SenderProfile{Name: "Sam Lee", Year: "junior", Major: "CS", University: "State University"}

	t.Run("generates body then subject", func(t *testing.T) {
		generator := &fakeGenerator{responses: []string{"pro body", `"Fellow State University grad?"`}}

		subject, body, err := NewComposer(generator).ComposePro(
			context.Background(), testContact(), sender, "Both studied CS", "Columbus, Ohio")

		assert.Nil(t, err)
		assert.Equal(t, "pro body", body)
		assert.Equal(t, "Fellow State University grad?", subject, "Expected surrounding quotes to be stripped")
		assert.Len(t, generator.prompts, 2)
		assert.Contains(t, generator.prompts[0], "Both studied CS")
		assert.Contains(t, generator.prompts[1], "Columbus, Ohio")
	})

	t.Run("keeps the body with a canned subject when the subject call fails", func(t *testing.T) {
		generator := &fakeGenerator{
			responses: []string{"pro body"},
			err:       errors.New("model unavailable"),
			errOnCall: 2,
		}

		subject, body, err := NewComposer(generator).ComposePro(
			context.Background(), testContact(), sender, "similar", "")

		assert.Nil(t, err)
		assert.Equal(t, "pro body", body)
		assert.Equal(t, "Coffee chat about your work at Acme Corp?", subject)
	})
}

func TestFallbackEmail(t *testing.T) {
	subject, body := FallbackEmail(testContact())

	assert.Equal(t, "Quick Chat about Your Work at Acme Corp?", subject)
	assert.Contains(t, body, "Hi Jane,")
	assert.Contains(t, body, "Acme Corp")
}
