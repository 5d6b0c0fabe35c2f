package resume

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"regexp"
	"strings"
	"unicode"

	"github.com/ledongthuc/pdf"
	"github.com/pkg/errors"
	"github.com/recruitedge/recruitedge/server/email"
	"github.com/recruitedge/recruitedge/server/logger"
	"github.com/recruitedge/recruitedge/server/models"
)

var logg = logger.NewLogger()

const (
	NAME_PLACEHOLDER       = "[Your Name]"
	YEAR_PLACEHOLDER       = "[Your Year]"
	MAJOR_PLACEHOLDER      = "[Your Major]"
	UNIVERSITY_PLACEHOLDER = "[Your University]"

	DEFAULT_SIMILARITY = "Both of you have experience in similar professional environments."

	PARSE_SYSTEM_INSTRUCTION = "You are an expert at extracting structured information from resumes. " +
		"Return only valid JSON with no extra text."
	SIMILARITY_SYSTEM_INSTRUCTION = "You are an expert at finding meaningful connections between " +
		"people's backgrounds. Write concise, specific similarities."
)

// Generator produces text from a prompt. Satisfied by llm.Generator.
type Generator interface {
	GenerateText(ctx context.Context, systemInstruction, prompt string) (string, error)
}

// Parser pulls structured sender info and similarity summaries out of a
// resume, leaning on the model and falling back to regex heuristics.
type Parser struct {
	generator Generator
}

func NewParser(generator Generator) *Parser {
	return &Parser{generator: generator}
}

// ---------------------------------------------------------------------------------//
// PDF text extraction
// -------------------------------------------------------------------------------- //

// ExtractText pulls the plain text out of an uploaded PDF resume, dropping
// non-printable characters and collapsing whitespace.
func ExtractText(data []byte) (string, error) {
	reader, err := pdf.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return "", errors.Wrap(err, "open pdf")
	}

	textReader, err := reader.GetPlainText()
	if err != nil {
		return "", errors.Wrap(err, "extract pdf text")
	}

	var buf bytes.Buffer
	if _, err := buf.ReadFrom(textReader); err != nil {
		return "", errors.Wrap(err, "read pdf text")
	}

	text := cleanText(buf.String())
	if text == "" {
		return "", errors.New("no text found in pdf")
	}
	return text, nil
}

func cleanText(text string) string {
	var builder strings.Builder
	for _, r := range text {
		if unicode.IsPrint(r) || unicode.IsSpace(r) {
			builder.WriteRune(r)
		}
	}
	return strings.Join(strings.Fields(builder.String()), " ")
}

// ---------------------------------------------------------------------------------//
// Sender profile parsing
// -------------------------------------------------------------------------------- //

// Parse extracts the sender's name, year, major and university from resume
// text. It never fails: model errors and malformed output degrade to regex
// extraction, and missing fields are filled with placeholders the sender can
// edit in the draft.
func (p *Parser) Parse(ctx context.Context, resumeText string) email.SenderProfile {
	if len(strings.TrimSpace(resumeText)) < 10 {
		logg.Warn("resume text too short, using placeholders")
		return placeholderProfile()
	}

	cleaned := prepareForPrompt(resumeText, 1500)

	response, err := p.generator.GenerateText(ctx, PARSE_SYSTEM_INSTRUCTION, parsePrompt(cleaned))
	if err != nil {
		logg.Warnw("resume parsing unavailable, using regex fallback", "error", err)
		return regexFallback(cleaned)
	}

	profile := email.SenderProfile{}
	if err := json.Unmarshal([]byte(stripCodeFence(response)), &profile); err != nil {
		logg.Warnw("model returned malformed resume info, using regex fallback", "error", err)
		return regexFallback(cleaned)
	}

	fillPlaceholders(&profile)
	return profile
}

// Similarity generates a one-sentence connection between the sender's resume
// and the contact's background.
func (p *Parser) Similarity(ctx context.Context, resumeText string, contact models.Contact) string {
	if len(strings.TrimSpace(resumeText)) < 10 {
		return "Both of you have experience in professional environments."
	}

	similarity, err := p.generator.GenerateText(
		ctx, SIMILARITY_SYSTEM_INSTRUCTION, similarityPrompt(prepareForPrompt(resumeText, 800), contact))
	if err != nil {
		logg.Warnw("similarity generation unavailable", "contact", contact.FirstName, "error", err)
		return DEFAULT_SIMILARITY
	}

	return strings.ReplaceAll(strings.TrimSpace(similarity), `"`, "'")
}

func parsePrompt(resumeText string) string {
	return fmt.Sprintf(`Extract the following information from this resume text:
- Full Name
- Year in school (e.g., "Junior", "Senior", "Graduate Student", "Class of 2027")
- Major/Field of Study
- University/School name

Return as JSON format:
{
    "name": "Full Name",
    "year": "Year in school",
    "major": "Major/Field",
    "university": "University Name"
}

Resume text:
%s`, resumeText)
}

func similarityPrompt(resumeText string, contact models.Contact) string {
	return fmt.Sprintf(`Compare this resume with the contact's background and identify ONE key similarity in a single sentence.
Focus on: education, work experience, volunteer work, interests, or career path.
Be specific and concise.

Resume (first 800 chars):
%s

Contact Background:
Name: %s %s
Company: %s
Title: %s
Education: %s
Work Summary: %s
Interests: %s

Generate ONE sentence highlighting the most relevant similarity:`,
		resumeText,
		contact.FirstName, contact.LastName,
		contact.Company, contact.Title,
		contact.EducationTop, contact.WorkSummary, contact.Interests)
}

func prepareForPrompt(text string, limit int) string {
	cleaned := strings.ReplaceAll(text, `"`, "'")
	cleaned = strings.Join(strings.Fields(cleaned), " ")
	if len(cleaned) > limit {
		cleaned = cleaned[:limit] + "..."
	}
	return cleaned
}

func stripCodeFence(response string) string {
	response = strings.TrimSpace(response)
	if !strings.Contains(response, "```") {
		return response
	}

	parts := strings.Split(response, "```")
	if len(parts) < 2 {
		return response
	}
	fenced := strings.TrimPrefix(parts[1], "json")
	return strings.TrimSpace(fenced)
}

func placeholderProfile() email.SenderProfile {
	return email.SenderProfile{
		Name:       NAME_PLACEHOLDER,
		Year:       YEAR_PLACEHOLDER,
		Major:      MAJOR_PLACEHOLDER,
		University: UNIVERSITY_PLACEHOLDER,
	}
}

func fillPlaceholders(profile *email.SenderProfile) {
	if strings.TrimSpace(profile.Name) == "" {
		profile.Name = NAME_PLACEHOLDER
	}
	if strings.TrimSpace(profile.Year) == "" {
		profile.Year = YEAR_PLACEHOLDER
	}
	if strings.TrimSpace(profile.Major) == "" {
		profile.Major = MAJOR_PLACEHOLDER
	}
	if strings.TrimSpace(profile.University) == "" {
		profile.University = UNIVERSITY_PLACEHOLDER
	}
}

// ---------------------------------------------------------------------------------//
// Regex fallbacks
// -------------------------------------------------------------------------------- //

var (
	namePatterns = []*regexp.Regexp{
		regexp.MustCompile(`^([A-Z][a-z]+ [A-Z][a-z]+)`),
		regexp.MustCompile(`Name:?\s*([A-Z][a-z]+ [A-Z][a-z]+)`),
	}
	universityPatterns = []*regexp.Regexp{
		regexp.MustCompile(`(?i)(University of [^,\n]+)`),
		regexp.MustCompile(`(?i)([^,\n]+ University)`),
		regexp.MustCompile(`(?i)([^,\n]+ College)`),
		regexp.MustCompile(`(?i)([^,\n]+ Institute)`),
	}
	yearPatterns = []*regexp.Regexp{
		regexp.MustCompile(`(?i)(Class of \d{4})`),
		regexp.MustCompile(`(?i)(Senior|Junior|Sophomore|Freshman)`),
		regexp.MustCompile(`(?i)(Graduate Student)`),
	}
	majorPatterns = []*regexp.Regexp{
		regexp.MustCompile(`(?i)Major:?\s*([^,\n]+)`),
		regexp.MustCompile(`(?i)Bachelor of ([^,\n]+)`),
		regexp.MustCompile(`(?i)studying ([^,\n]+)`),
	}

	hometownPatterns = []*regexp.Regexp{
		regexp.MustCompile(`High School.*?-\s*([^,]+,\s*[A-Z]{2})`),
		regexp.MustCompile(`Secondary.*?-\s*([^,]+,\s*[A-Z]{2})`),
		regexp.MustCompile(`Prep.*?-\s*([^,]+,\s*[A-Z]{2})`),
	}
)

func regexFallback(text string) email.SenderProfile {
	profile := placeholderProfile()

	if match := firstMatch(namePatterns, text); match != "" {
		profile.Name = match
	}
	if match := firstMatch(universityPatterns, text); match != "" {
		profile.University = match
	}
	if match := firstMatch(yearPatterns, text); match != "" {
		profile.Year = match
	}
	if match := firstMatch(majorPatterns, text); match != "" {
		profile.Major = match
	}
	return profile
}

func firstMatch(patterns []*regexp.Regexp, text string) string {
	for _, pattern := range patterns {
		if groups := pattern.FindStringSubmatch(text); len(groups) > 1 {
			return strings.TrimSpace(groups[1])
		}
	}
	return ""
}

// Hometown guesses where the contact grew up from their secondary-school
// education, falling back to where they live now. Empty when neither is known.
func Hometown(contact models.Contact) string {
	for _, pattern := range hometownPatterns {
		if groups := pattern.FindStringSubmatch(contact.EducationTop); len(groups) > 1 {
			return strings.TrimSpace(groups[1])
		}
	}

	if contact.City != "" && contact.State != "" {
		return fmt.Sprintf("%s, %s", contact.City, contact.State)
	}
	return ""
}
