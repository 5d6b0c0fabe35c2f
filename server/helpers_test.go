package server

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestValidateSearchInputs(t *testing.T) {
	t.Run("accepts real search terms", func(t *testing.T) {
		errs := validateSearchInputs("software engineer", "stripe", "seattle")
		assert.Empty(t, errs)
	})

	t.Run("rejects short inputs with one error per field", func(t *testing.T) {
		errs := validateSearchInputs("a", "", " s ")
		assert.Len(t, errs, 3)
	})

	t.Run("rejects placeholder terms in title or company", func(t *testing.T) {
		errs := validateSearchInputs("test engineer", "stripe", "seattle")
		assert.Equal(t, []string{"Please provide real search terms (found 'test')"}, errs)

		errs = validateSearchInputs("software engineer", "Example Inc", "seattle")
		assert.Equal(t, []string{"Please provide real search terms (found 'example')"}, errs)
	})

	t.Run("ignores placeholder terms in location", func(t *testing.T) {
		errs := validateSearchInputs("software engineer", "stripe", "test city")
		assert.Empty(t, errs)
	})
}

func TestRemoveUnknownFields(t *testing.T) {
	args := map[string]interface{}{
		"status":  "Contacted",
		"user_id": 42,
		"id":      7,
	}

	removeUnknownFields(args, updatableContactFields)

	assert.Equal(t, map[string]interface{}{"status": "Contacted"}, args)
}
