package email

import (
	"context"
	"fmt"
	"strings"

	"github.com/recruitedge/recruitedge/server/logger"
	"github.com/recruitedge/recruitedge/server/models"
)

var logg = logger.NewLogger()

const (
	FREE_SYSTEM_INSTRUCTION = "You are an expert at writing personalized networking emails. " +
		"Keep emails warm, professional, and follow the template exactly."
	PRO_SYSTEM_INSTRUCTION = "You are an expert at writing personalized networking emails. " +
		"Keep emails concise, warm, and professional with natural similarity integration."
	SUBJECT_SYSTEM_INSTRUCTION = "You are an expert at writing compelling email subject lines " +
		"that get responses. Be concise and personal."
)

// Generator produces text from a prompt. Satisfied by llm.Generator.
type Generator interface {
	GenerateText(ctx context.Context, systemInstruction, prompt string) (string, error)
}

// SenderProfile is what we know about the user sending the outreach email.
// For pro runs it is parsed out of their resume.
type SenderProfile struct {
	Name       string `json:"name"`
	Year       string `json:"year"`
	Major      string `json:"major"`
	University string `json:"university"`
}

// Composer drafts outreach subject lines and bodies for discovered contacts.
type Composer struct {
	generator Generator
}

func NewComposer(generator Generator) *Composer {
	return &Composer{generator: generator}
}

// ComposeFree drafts a templated email with sender placeholders left blank
// for the user to fill in. The subject line is fixed per company.
func (c *Composer) ComposeFree(ctx context.Context, contact models.Contact) (subject, body string, err error) {
	subject = fmt.Sprintf("Quick Chat to Learn about Your Work at %s?", valueOr(contact.Company, "Your Company"))

	body, err = c.generator.GenerateText(ctx, FREE_SYSTEM_INSTRUCTION, freePrompt(contact))
	if err != nil {
		logg.Warnw("email composition unavailable", "contact", contact.FirstName, "error", err)
		return "", "", err
	}
	return subject, strings.TrimSpace(body), nil
}

// ComposePro drafts a personalized email using the sender's resume details,
// the similarity summary and the contact's hometown, then asks the model for
// a matching subject line.
func (c *Composer) ComposePro(
	ctx context.Context, contact models.Contact, sender SenderProfile, similarity, hometown string,
) (subject, body string, err error) {
	body, err = c.generator.GenerateText(ctx, PRO_SYSTEM_INSTRUCTION, proPrompt(contact, sender, similarity, hometown))
	if err != nil {
		logg.Warnw("email composition unavailable", "contact", contact.FirstName, "error", err)
		return "", "", err
	}
	body = strings.TrimSpace(body)

	subject, err = c.generator.GenerateText(ctx, SUBJECT_SYSTEM_INSTRUCTION, subjectPrompt(contact, sender, body, similarity, hometown))
	if err != nil {
		// body is still usable, fall back to the fixed subject
		subject = fmt.Sprintf("Coffee chat about your work at %s?", valueOr(contact.Company, "your company"))
		return subject, body, nil
	}

	subject = strings.Trim(strings.TrimSpace(subject), `"'`)
	return subject, body, nil
}

// FallbackEmail is the canned draft used when the model is unreachable, so a
// run always produces something the user can send.
func FallbackEmail(contact models.Contact) (subject, body string) {
	subject = fmt.Sprintf("Quick Chat about Your Work at %s?", valueOr(contact.Company, "Your Company"))
	body = fmt.Sprintf(
		"Hi %s,\n\nI'd love to learn more about your work at %s. Would you be open to a brief chat?\n\nBest regards",
		contact.FirstName, contact.Company)
	return subject, body
}

func freePrompt(contact models.Contact) string {
	return fmt.Sprintf(`Given the information provided which includes name, job title, city, state, work experiences and education, write an email following this exact template that's tailored for them but still leave all the [Your Name], [Your year/major], and [Your University] placeholders empty so the sender can fill those in:

Hi %s,

I hope you're doing well! My name is [Your Name], and I'm currently a [Your year/major] at [Your University]. I came across your profile while researching %s/%s and was really inspired by your work in %s.

I'm very interested in %s and would really appreciate the chance to learn more about your journey and any advice you may have. If you're open to it, would you be available for a quick 15-20 minute chat sometime this or next week?

Thanks so much in advance - I'd love to hear your perspective!

Warmly, [Your Full Name]

Contact Information:
- Name: %s %s
- Company: %s
- Title: %s
- Work Summary: %s
- Education: %s
- Interests: %s

Customize the email by:
- Filling in their actual first name, company name, and industry
- Referencing their specific role, team, or a recent accomplishment from their work experience
- Making the industry/role interest sound genuine and specific to their background
- Keep [Your Name], [Your year/major], [Your University], and [Your Full Name] as placeholders for the sender to fill in`,
		contact.FirstName,
		contact.Company, strings.ToLower(contact.Title), contact.Title,
		strings.ToLower(valueOr(contact.Title, "their field")),
		contact.FirstName, contact.LastName,
		contact.Company, contact.Title,
		contact.WorkSummary, contact.EducationTop, contact.Interests)
}

func proPrompt(contact models.Contact, sender SenderProfile, similarity, hometown string) string {
	return fmt.Sprintf(`Given the information provided which includes first name, last name, job title, city, state, work experiences, education, hometown, group, a summary of the person you're reaching out to and a summary of your similarities, write an email following this exact template but when possible integrate in a concise way the similarities you have with the person.

Contact Information:
- Name: %s %s
- Company: %s
- Title: %s
- City: %s
- State: %s
- Work Summary: %s
- Education: %s
- Group: %s
- Hometown: %s

User Information:
- Name: %s
- Year in School: %s
- Major: %s
- University: %s

Similarity Summary: %s

Template:
Hi %s,

I hope you're doing well! My name is %s, and I'm currently a %s studying %s at %s. I came across your profile while researching %s/%s and was really inspired by your work in %s.

I'm very interested in %s and would really appreciate the chance to learn more about your journey and any advice you may have. If you're open to it, would you be available for a quick 15-20 minute chat sometime this or next week?

Thanks so much in advance - I'd love to hear your perspective!

Warmly, %s

Customize the email by:
- Filling in their actual first name, company name, and industry
- Referencing their specific role, team, or a recent accomplishment from their work experience
- Making the industry/role interest sound genuine and specific to their background
- Integrate similarities naturally and concisely
- Limit it to at most 3 concise paragraphs`,
		contact.FirstName, contact.LastName,
		contact.Company, contact.Title,
		contact.City, contact.State,
		contact.WorkSummary, contact.EducationTop,
		contact.Group, valueOr(hometown, models.NOT_AVAILABLE),
		sender.Name, sender.Year, sender.Major, sender.University,
		similarity,
		contact.FirstName,
		sender.Name, sender.Year, sender.Major, sender.University,
		contact.Company, strings.ToLower(contact.Title), contact.Title,
		strings.ToLower(valueOr(contact.Title, "their field")),
		sender.Name)
}

func subjectPrompt(contact models.Contact, sender SenderProfile, body, similarity, hometown string) string {
	preview := body
	if len(preview) > 300 {
		preview = preview[:300] + "..."
	}

	return fmt.Sprintf(`Given the email body, develop an appropriate subject for the email. It's very short but it captures what the email is asking for, which is a coffee chat, plus any personal connection. For example if they're an alumni of the sender's university, mention that; same for a shared hometown. Judge what's appropriate and generate a subject line that is likely to lead to a response.

Email body: %s
Contact: %s at %s
User: %s - %s at %s
Hometown connection: %s
Similarity: %s

Just give the subject line, no citations, reasoning or explanations.`,
		preview,
		contact.FirstName, contact.Company,
		sender.Name, sender.Year, sender.University,
		valueOr(hometown, "None"), similarity)
}

func valueOr(value, fallback string) string {
	if strings.TrimSpace(value) == "" {
		return fallback
	}
	return value
}
