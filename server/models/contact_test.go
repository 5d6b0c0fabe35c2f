package models

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func createTestUser(t *testing.T, email string) *User {
	t.Helper()

	user := &User{FirstName: "Test", LastName: "User", Email: email, Password: "secret"}
	require.NoError(t, CreateUser(user))
	return user
}

func TestSaveContacts(t *testing.T) {
	InitializeTestDb()
	user := createTestUser(t, "save-contacts@example.com")

	t.Run("skips duplicates by linkedin url and email", func(t *testing.T) {
		saved, err := SaveContacts(user.ID, []Contact{
			{FirstName: "Jane", LastName: "Doe", Email: "jane@x.io", LinkedinURL: "linkedin.com/in/jane"},
			{FirstName: "John", LastName: "Roe", Email: "john@x.io"},
		})
		require.NoError(t, err)
		assert.Equal(t, 2, saved)

		// same linkedin url, different email
		saved, err = SaveContacts(user.ID, []Contact{
			{FirstName: "Jane", LastName: "Doe", Email: "other@x.io", LinkedinURL: "linkedin.com/in/jane"},
		})
		require.NoError(t, err)
		assert.Equal(t, 0, saved)

		// same email, no linkedin url
		saved, err = SaveContacts(user.ID, []Contact{
			{FirstName: "John", LastName: "Roe", Email: "john@x.io"},
		})
		require.NoError(t, err)
		assert.Equal(t, 0, saved)
	})

	t.Run("applies the default status", func(t *testing.T) {
		_, err := SaveContacts(user.ID, []Contact{
			{FirstName: "Sam", LastName: "Lee", Email: "sam@x.io"},
		})
		require.NoError(t, err)

		contacts, err := ContactsForUser(user.ID)
		require.NoError(t, err)

		for _, contact := range contacts {
			assert.Equal(t, DEFAULT_CONTACT_STATUS, contact.Status)
		}
	})

	t.Run("does not dedupe across users", func(t *testing.T) {
		otherUser := createTestUser(t, "other-save-contacts@example.com")

		saved, err := SaveContacts(otherUser.ID, []Contact{
			{FirstName: "Jane", LastName: "Doe", Email: "jane@x.io", LinkedinURL: "linkedin.com/in/jane"},
		})
		require.NoError(t, err)
		assert.Equal(t, 1, saved)
	})
}

func TestFetchContacts(t *testing.T) {
	InitializeTestDb()
	user := createTestUser(t, "fetch-contacts@example.com")

	records := []Contact{}
	for i := 0; i < DEFAULT_PAGE_SIZE+5; i++ {
		records = append(records, Contact{
			FirstName: "Contact",
			LastName:  fmt.Sprint(i),
			Email:     fmt.Sprintf("contact-%v@x.io", i),
		})
	}
	saved, err := SaveContacts(user.ID, records)
	require.NoError(t, err)
	require.Equal(t, len(records), saved)

	t.Run("returns a full first page with paging info", func(t *testing.T) {
		contacts, paging, err := FetchContacts(user.ID, 1)
		require.NoError(t, err)

		assert.Len(t, contacts, DEFAULT_PAGE_SIZE)
		assert.Equal(t, int64(len(records)), paging.Total)
		assert.Equal(t, int64(2), paging.Pages)
		assert.Equal(t, int64(1), paging.Page)
	})

	t.Run("returns the remainder on the second page", func(t *testing.T) {
		contacts, _, err := FetchContacts(user.ID, 2)
		require.NoError(t, err)

		assert.Len(t, contacts, 5)
	})
}

func TestUserContactOwnership(t *testing.T) {
	InitializeTestDb()
	user := createTestUser(t, "ownership@example.com")
	otherUser := createTestUser(t, "other-ownership@example.com")

	contact := Contact{FirstName: "Jane", LastName: "Doe", Email: "jane-owned@x.io"}
	require.NoError(t, user.AddContact(&contact))
	contactID := fmt.Sprint(contact.ID)

	t.Run("update only touches the owner's contact", func(t *testing.T) {
		require.NoError(t, otherUser.UpdateContact(contactID, map[string]interface{}{"status": "Contacted"}))

		found, err := FindContactForUser(user.ID, contact.ID)
		require.NoError(t, err)
		assert.Equal(t, DEFAULT_CONTACT_STATUS, found.Status)

		require.NoError(t, user.UpdateContact(contactID, map[string]interface{}{"status": "Contacted"}))

		found, err = FindContactForUser(user.ID, contact.ID)
		require.NoError(t, err)
		assert.Equal(t, "Contacted", found.Status)
	})

	t.Run("delete only removes the owner's contact", func(t *testing.T) {
		require.NoError(t, otherUser.DeleteContact(contact.ID))

		_, err := FindContactForUser(user.ID, contact.ID)
		assert.NoError(t, err)

		require.NoError(t, user.DeleteContact(contact.ID))

		_, err = FindContactForUser(user.ID, contact.ID)
		assert.Error(t, err)
	})
}
