package models

import (
	"errors"
	"time"

	"gorm.io/gorm"
)

const DEFAULT_CONTACT_STATUS = "Not Contacted"

// NOT_AVAILABLE is the sentinel the contact normalizer writes for fields the
// vendor had no data for. Consumers must treat it as absent, not as data.
const NOT_AVAILABLE = "Not available"

// Contact is a discovered networking contact persisted for a user.
// At most one record per user should share a non-empty linkedin_url,
// and at most one a non-empty email. This is enforced by a pre-insert
// existence check rather than a db constraint, so concurrent saves for
// the same user can still slip duplicates through.
type Contact struct {
	BaseModel
	FirstName        string     `json:"first_name" validate:"required"`
	LastName         string     `json:"last_name" validate:"required"`
	Email            string     `json:"email"`
	PersonalEmail    string     `json:"personal_email"`
	WorkEmail        string     `json:"work_email"`
	Phone            string     `json:"phone"`
	LinkedinURL      string     `json:"linkedin_url"`
	Title            string     `json:"title"`
	Company          string     `json:"company"`
	City             string     `json:"city"`
	State            string     `json:"state"`
	EducationTop     string     `json:"education_top"`
	WorkSummary      string     `json:"work_summary"`
	Interests        string     `json:"interests"`
	Group            string     `json:"group"`
	Hometown         string     `json:"hometown"`
	Similarity       string     `json:"similarity"`
	EmailSubject     string     `json:"email_subject"`
	EmailBody        string     `json:"email_body"`
	DraftID          string     `json:"draft_id"`
	Status           string     `json:"status" gorm:"default:'Not Contacted'"`
	FirstContactedAt *time.Time `json:"first_contacted_at"`
	LastContactedAt  *time.Time `json:"last_contacted_at"`
	UserID           uint       `json:"user_id" gorm:"not null;index"`
}

func (contact *Contact) Update(data map[string]interface{}) error {
	return db.Model(contact).Updates(data).Error
}

// SaveContacts inserts contacts for a user, skipping any whose non-empty
// linkedin_url or email already exists for that user. Returns the number
// of rows inserted. Skipped contacts are dropped silently, not upserted.
func SaveContacts(userID uint, contacts []Contact) (int, error) {
	inserted := 0

	for i := range contacts {
		contact := contacts[i]
		contact.ID = 0
		contact.UserID = userID
		if contact.Status == "" {
			contact.Status = DEFAULT_CONTACT_STATUS
		}

		exists, err := contactExistsForUser(userID, contact.LinkedinURL, contact.Email)
		if err != nil {
			return inserted, err
		}
		if exists {
			continue
		}

		if err := db.Create(&contact).Error; err != nil {
			return inserted, err
		}
		inserted++
	}

	return inserted, nil
}

// ContactsForUser returns the user's stored contacts, newest first.
func ContactsForUser(userID interface{}) ([]Contact, error) {
	contacts := []Contact{}

	err := db.Where("user_id = ?", userID).Order("created_at DESC").Find(&contacts).Error
	if err != nil {
		return nil, err
	}

	return contacts, nil
}

// FetchContacts returns a page of the user's stored contacts, newest first.
func FetchContacts(userID interface{}, page int) ([]Contact, *Paging, error) {
	var total int64
	contacts := []Contact{}

	err := db.Model(&Contact{}).Where("user_id = ?", userID).Count(&total).Error
	if err != nil {
		return nil, nil, err
	}

	err = db.Scopes(paginate(page, DEFAULT_PAGE_SIZE)).
		Where("user_id = ?", userID).
		Order("created_at DESC").
		Find(&contacts).Error
	if err != nil {
		return nil, nil, err
	}

	return contacts, newPaging(int64(page), DEFAULT_PAGE_SIZE, total), nil
}

func FindContactForUser(userID, contactID interface{}) (*Contact, error) {
	contact := Contact{}

	err := db.Where("user_id = ?", userID).First(&contact, "id = ?", contactID).Error
	if err != nil {
		return nil, err
	}

	return &contact, nil
}

// ---------------------------------------------------------------------------------//
// Helper functions
// --------------------------------------------------------------------------------//

func contactExistsForUser(userID uint, linkedinURL, email string) (bool, error) {
	query := db.Where("user_id = ?", userID)

	switch {
	case linkedinURL != "" && email != "":
		query = query.Where("linkedin_url = ? OR email = ?", linkedinURL, email)
	case linkedinURL != "":
		query = query.Where("linkedin_url = ?", linkedinURL)
	case email != "":
		query = query.Where("email = ?", email)
	default:
		// no dedup key to match on
		return false, nil
	}

	err := query.First(&Contact{}).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return false, nil
	}

	if err != nil {
		return false, err
	}

	return true, nil
}
