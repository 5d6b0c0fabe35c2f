package outreach

import (
	"context"
	"fmt"
	"strings"

	"github.com/pkg/errors"
	"github.com/recruitedge/recruitedge/server/contacts"
	"github.com/recruitedge/recruitedge/server/email"
	"github.com/recruitedge/recruitedge/server/gmail"
	"github.com/recruitedge/recruitedge/server/logger"
	"github.com/recruitedge/recruitedge/server/models"
	"github.com/recruitedge/recruitedge/server/resume"
)

var logg = logger.NewLogger()

const (
	FREE_TIER = "free"
	PRO_TIER  = "pro"

	FREE_MAX_CONTACTS = 8
	PRO_MAX_CONTACTS  = 12
)

// Runner executes a full outreach run: discover contacts, compose emails,
// create Gmail drafts, persist new contacts and export a CSV.
type Runner struct {
	searcher  *contacts.Searcher
	composer  *email.Composer
	gmail     *gmail.Service
	parser    *resume.Parser
	exportDir string
}

// RunResult is what a tier run hands back to the API layer.
type RunResult struct {
	Tier             string               `json:"tier"`
	Contacts         []models.Contact     `json:"contacts"`
	CSVFile          string               `json:"csv_file,omitempty"`
	SuccessfulDrafts int                  `json:"successful_drafts"`
	SavedContacts    int                  `json:"saved_contacts"`
	Degraded         []string             `json:"degraded,omitempty"`
	SenderProfile    *email.SenderProfile `json:"resume_info,omitempty"`
}

// NewRunner wires the run pipeline. gmailService may be nil, in which case
// drafts degrade to mock IDs.
func NewRunner(
	searcher *contacts.Searcher,
	composer *email.Composer,
	gmailService *gmail.Service,
	parser *resume.Parser,
	exportDir string,
) *Runner {
	return &Runner{
		searcher:  searcher,
		composer:  composer,
		gmail:     gmailService,
		parser:    parser,
		exportDir: exportDir,
	}
}

// RunFree discovers up to 8 contacts and drafts templated emails with the
// sender placeholders left blank.
func (r *Runner) RunFree(ctx context.Context, user *models.User, jobTitle, company, location string) (*RunResult, error) {
	results, degraded, err := r.searcher.Search(ctx, jobTitle, company, location, FREE_MAX_CONTACTS)
	if err != nil {
		return nil, errors.Wrap(err, "free run")
	}
	if len(results) == 0 {
		return nil, errors.New("no contacts found")
	}

	result := &RunResult{Tier: FREE_TIER, Degraded: degraded}
	for i := range results {
		subject, body, err := r.composer.ComposeFree(ctx, results[i])
		if err != nil {
			subject, body = email.FallbackEmail(results[i])
			result.Degraded = append(result.Degraded,
				fmt.Sprintf("email composition for %v fell back to template: %v", results[i].FirstName, err))
		}
		r.draftAndRecord(ctx, &results[i], subject, body, FREE_TIER, result)
	}

	return r.finishRun(user, results, result)
}

// RunPro parses the sender's resume, discovers up to 12 contacts, and drafts
// personalized emails with similarity and hometown context.
func (r *Runner) RunPro(
	ctx context.Context, user *models.User, jobTitle, company, location string, resumePDF []byte,
) (*RunResult, error) {
	resumeText, err := resume.ExtractText(resumePDF)
	if err != nil {
		return nil, errors.Wrap(err, "pro run")
	}

	sender := r.parser.Parse(ctx, resumeText)

	results, degraded, err := r.searcher.Search(ctx, jobTitle, company, location, PRO_MAX_CONTACTS)
	if err != nil {
		return nil, errors.Wrap(err, "pro run")
	}
	if len(results) == 0 {
		return nil, errors.New("no contacts found")
	}

	result := &RunResult{Tier: PRO_TIER, Degraded: degraded, SenderProfile: &sender}
	for i := range results {
		results[i].Similarity = r.parser.Similarity(ctx, resumeText, results[i])

		hometown := resume.Hometown(results[i])
		if hometown == "" {
			hometown = models.NOT_AVAILABLE
		}
		results[i].Hometown = hometown

		subject, body, err := r.composer.ComposePro(ctx, results[i], sender, results[i].Similarity, hometown)
		if err != nil {
			subject, body = email.FallbackEmail(results[i])
			result.Degraded = append(result.Degraded,
				fmt.Sprintf("email composition for %v fell back to template: %v", results[i].FirstName, err))
		}
		r.draftAndRecord(ctx, &results[i], subject, body, PRO_TIER, result)
	}

	return r.finishRun(user, results, result)
}

func (r *Runner) draftAndRecord(
	ctx context.Context, contact *models.Contact, subject, body, tier string, result *RunResult,
) {
	contact.EmailSubject = subject
	contact.EmailBody = body

	draftID := r.gmail.CreateDraft(ctx, *contact, subject, body, tier)
	contact.DraftID = draftID
	if !strings.HasPrefix(draftID, "mock_") {
		result.SuccessfulDrafts++
	}
}

// finishRun persists the discovered contacts (duplicates are skipped) and
// writes the CSV export. Export failure degrades the run rather than
// failing it, since the drafts already exist.
func (r *Runner) finishRun(user *models.User, results []models.Contact, result *RunResult) (*RunResult, error) {
	saved, err := models.SaveContacts(user.ID, results)
	if err != nil {
		return nil, errors.Wrap(err, "save contacts")
	}
	result.SavedContacts = saved
	result.Contacts = results

	csvFile, err := exportCSV(r.exportDir, result.Tier, user.Email, results)
	if err != nil {
		logg.Warnw("csv export failed", "tier", result.Tier, "error", err)
		result.Degraded = append(result.Degraded, fmt.Sprintf("csv export failed: %v", err))
	} else {
		result.CSVFile = csvFile
	}

	logg.Infow("outreach run completed",
		"tier", result.Tier,
		"contacts", len(result.Contacts),
		"drafts", result.SuccessfulDrafts,
		"saved", result.SavedContacts)
	return result, nil
}
