package contacts

import (
	"fmt"
	"strings"

	"github.com/recruitedge/recruitedge/server/models"
	"github.com/recruitedge/recruitedge/server/pdl"
)

// ---------------------------------------------------------------------------------//
// Normalization: vendor person records -> Contact rows
// -------------------------------------------------------------------------------- //

// NormalizeContact flattens a raw vendor person record into a Contact.
// Records without both a first and last name are unusable for outreach
// and are returned as nil.
func NormalizeContact(person pdl.Person) *models.Contact {
	firstName := strings.TrimSpace(person.FirstName)
	lastName := strings.TrimSpace(person.LastName)
	if firstName == "" || lastName == "" {
		return nil
	}

	contact := &models.Contact{
		FirstName:     titleCase(firstName),
		LastName:      titleCase(lastName),
		Email:         primaryEmail(person),
		PersonalEmail: emailOfType(person, "personal"),
		WorkEmail:     emailOfType(person, "work"),
		Phone:         firstPhone(person),
		LinkedinURL:   linkedinURL(person),
		EducationTop:  topEducation(person),
		WorkSummary:   workSummary(person),
		Interests:     topInterests(person),
	}

	if len(person.Experience) > 0 {
		experience := person.Experience[0]
		if experience.Company != nil {
			contact.Company = titleCase(experience.Company.Name)
		}
		if experience.Title != nil {
			contact.Title = titleCase(experience.Title.Name)
		}
	}

	if person.Location != nil {
		contact.City = titleCase(person.Location.Locality)
		contact.State = titleCase(person.Location.Region)
	}

	contact.Group = contactGroup(contact)
	return contact
}

// primaryEmail prefers the vendor's recommended personal address, then any
// personal address, then a work address.
func primaryEmail(person pdl.Person) string {
	if person.RecommendedPersonalEmail != "" {
		return person.RecommendedPersonalEmail
	}
	if email := emailOfType(person, "personal"); email != "" {
		return email
	}
	return emailOfType(person, "work")
}

func emailOfType(person pdl.Person, emailType string) string {
	for _, email := range person.Emails {
		if email.Type == emailType && email.Address != "" {
			return email.Address
		}
	}
	return ""
}

func firstPhone(person pdl.Person) string {
	if len(person.PhoneNumbers) > 0 {
		return person.PhoneNumbers[0]
	}
	return ""
}

// linkedinURL picks the first profile whose network mentions linkedin.
// Vendor records are inconsistent about casing ("linkedin", "LinkedIn").
func linkedinURL(person pdl.Person) string {
	for _, profile := range person.Profiles {
		if strings.Contains(strings.ToLower(profile.Network), "linkedin") && profile.URL != "" {
			return profile.URL
		}
	}
	return ""
}

// topEducation renders up to two education entries as "School - Degree"
// joined with "; ".
func topEducation(person pdl.Person) string {
	var entries []string
	for _, education := range person.Education {
		if len(entries) == 2 {
			break
		}
		school := ""
		if education.School != nil {
			school = education.School.Name
		}
		if school == "" {
			continue
		}
		if len(education.Degrees) > 0 && education.Degrees[0] != "" {
			entries = append(entries, fmt.Sprintf("%s - %s", titleCase(school), education.Degrees[0]))
		} else {
			entries = append(entries, titleCase(school))
		}
	}
	if len(entries) == 0 {
		return models.NOT_AVAILABLE
	}
	return strings.Join(entries, "; ")
}

func workSummary(person pdl.Person) string {
	if len(person.Experience) == 0 {
		return models.NOT_AVAILABLE
	}

	current := person.Experience[0]
	title, company := "", ""
	if current.Title != nil {
		title = titleCase(current.Title.Name)
	}
	if current.Company != nil {
		company = titleCase(current.Company.Name)
	}
	if title == "" && company == "" {
		return models.NOT_AVAILABLE
	}

	summary := fmt.Sprintf("Current %s at %s", title, company)
	if person.InferredYearsExperience > 0 {
		summary = fmt.Sprintf("%s (%d years experience).", summary, person.InferredYearsExperience)
	} else {
		summary += "."
	}

	if len(person.Experience) > 1 && person.Experience[1].Company != nil {
		summary = fmt.Sprintf("%s Previously at %s.", summary, titleCase(person.Experience[1].Company.Name))
	}
	return summary
}

// topInterests keeps the first three interests, each tagged as an
// "enthusiast" so composed emails read naturally.
func topInterests(person pdl.Person) string {
	var interests []string
	for _, interest := range person.Interests {
		if len(interests) == 3 {
			break
		}
		if interest == "" {
			continue
		}
		interests = append(interests, fmt.Sprintf("%s enthusiast", titleCase(interest)))
	}
	if len(interests) == 0 {
		return models.NOT_AVAILABLE
	}
	return strings.Join(interests, ", ")
}

// titleCase upper-cases the first letter of each word. Vendor records come
// back fully lower-cased.
func titleCase(value string) string {
	words := strings.Fields(value)
	for i, word := range words {
		words[i] = strings.ToUpper(word[:1]) + word[1:]
	}
	return strings.Join(words, " ")
}

func contactGroup(contact *models.Contact) string {
	if contact.Company == "" {
		return models.NOT_AVAILABLE
	}
	group := titleCase(contact.Company)
	if contact.Title != "" {
		firstWord := strings.Fields(contact.Title)[0]
		group = fmt.Sprintf("%s %s Team", group, titleCase(firstWord))
	}
	return group
}
