package outreach

import (
	"encoding/csv"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/pkg/errors"
	"github.com/recruitedge/recruitedge/server/models"
)

// ---------------------------------------------------------------------------------//
// CSV export: one file per run, columns widen with the tier
// -------------------------------------------------------------------------------- //

var freeTierColumns = []string{
	"FirstName", "LastName", "LinkedIn", "Email", "Title", "Company", "City", "State",
	"Phone", "PersonalEmail", "WorkEmail", "EducationTop", "Interests", "WorkSummary", "Group",
}

var proTierColumns = append(append([]string{}, freeTierColumns...), "Hometown", "Similarity")

// exportCSV writes the run's contacts to
// RecruitEdge_<Tier>_<user>_<timestamp>.csv in the export directory and
// returns the file path.
func exportCSV(exportDir, tier, userEmail string, results []models.Contact) (string, error) {
	columns := freeTierColumns
	if tier == PRO_TIER {
		columns = proTierColumns
	}

	fileName := fmt.Sprintf("RecruitEdge_%v_%v_%v.csv",
		exportTierName(tier), userIdentifier(userEmail), time.Now().Format("20060102_150405"))
	filePath := filepath.Join(exportDir, fileName)

	f, err := os.Create(filePath)
	if err != nil {
		return "", errors.Wrap(err, "create export file")
	}
	defer f.Close()

	writer := csv.NewWriter(f)
	if err := writer.Write(columns); err != nil {
		return "", errors.Wrap(err, "write export header")
	}

	for _, contact := range results {
		if err := writer.Write(contactRow(columns, contact)); err != nil {
			return "", errors.Wrap(err, "write export row")
		}
	}

	writer.Flush()
	return filePath, writer.Error()
}

func contactRow(columns []string, contact models.Contact) []string {
	values := map[string]string{
		"FirstName":     contact.FirstName,
		"LastName":      contact.LastName,
		"LinkedIn":      contact.LinkedinURL,
		"Email":         contact.Email,
		"Title":         contact.Title,
		"Company":       contact.Company,
		"City":          contact.City,
		"State":         contact.State,
		"Phone":         contact.Phone,
		"PersonalEmail": contact.PersonalEmail,
		"WorkEmail":     contact.WorkEmail,
		"EducationTop":  contact.EducationTop,
		"Interests":     contact.Interests,
		"WorkSummary":   contact.WorkSummary,
		"Group":         contact.Group,
		"Hometown":      contact.Hometown,
		"Similarity":    contact.Similarity,
	}

	row := make([]string, 0, len(columns))
	for _, column := range columns {
		row = append(row, values[column])
	}
	return row
}

func exportTierName(tier string) string {
	if tier == "" {
		return "Free"
	}
	return strings.ToUpper(tier[:1]) + strings.ToLower(tier[1:])
}

func userIdentifier(userEmail string) string {
	if userEmail == "" {
		return "user"
	}
	return strings.Split(userEmail, "@")[0]
}
