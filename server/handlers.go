package server

import (
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/golang-jwt/jwt"
	"github.com/gorilla/mux"
	"github.com/pkg/errors"
	"github.com/recruitedge/recruitedge/server/auth"
	"github.com/recruitedge/recruitedge/server/auth/key"
	"github.com/recruitedge/recruitedge/server/models"
	"github.com/recruitedge/recruitedge/server/outreach"
	"github.com/recruitedge/recruitedge/server/pdl"
	"gorm.io/gorm"
)

const (
	MAX_RESUME_SIZE_BYTES     = 10 << 20
	AUTOCOMPLETE_SUGGESTIONS  = 10
	MIN_AUTOCOMPLETE_QUERY    = 2
	SESSION_DURATION_IN_HOURS = 24
)

type ResponsePayload struct {
	Errors  []string    `json:"errors,omitempty"`
	Success bool        `json:"success"`
	Data    interface{} `json:"data,omitempty"`
}

// autocompleteFieldMapping maps the field names the frontend uses to the
// vendor's autocomplete fields.
var autocompleteFieldMapping = map[string]string{
	"job_title": "title",
	"company":   "company",
	"location":  "location",
	"school":    "school",
	"skill":     "skill",
	"industry":  "industry",
	"role":      "role",
	"sub_role":  "sub_role",
}

// ---------------------------------------------------------------------------------//
// Health
// -------------------------------------------------------------------------------- //

func healthHandler(rw http.ResponseWriter, r *http.Request) {
	writeResponse(rw, ResponsePayload{
		Success: true,
		Data: map[string]interface{}{
			"people_data_configured": serverConfig.PeopleData.ApiKey != "",
			"llm_configured":         serverConfig.Llm.ApiKey != "",
			"gmail_configured":       serverConfig.Google.GmailCredentialsFile != "",
			"sqlite_backup_enabled":  sqliteBackupEnabled(serverConfig),
		},
	}, http.StatusOK)
}

func pingHandler(rw http.ResponseWriter, r *http.Request) {
	writeResponse(rw, ResponsePayload{Success: true, Data: "pong"}, http.StatusOK)
}

// ---------------------------------------------------------------------------------//
// Users & auth
// -------------------------------------------------------------------------------- //

func signUpHandler(rw http.ResponseWriter, r *http.Request) {
	user := models.User{}

	if err := json.NewDecoder(r.Body).Decode(&user); err != nil {
		writeResponse(rw, ResponsePayload{Errors: []string{err.Error()}}, http.StatusBadRequest)
		return
	}

	if errs := validate.Struct(user); errs != nil {
		writeResponse(rw, ResponsePayload{Errors: strings.Split(errs.Error(), "\n")}, http.StatusBadRequest)
		return
	}

	if err := models.CreateUser(&user); err != nil {
		writeResponse(rw, ResponsePayload{Errors: []string{err.Error()}}, http.StatusInternalServerError)
		return
	}

	writeResponse(rw, ResponsePayload{Success: true}, http.StatusCreated)
}

func logInHandler(rw http.ResponseWriter, r *http.Request) {
	data := make(map[string]string)
	json.NewDecoder(r.Body).Decode(&data)

	passwordHash, err := models.FindUserPassword(data["email"])
	if err != nil && !errors.Is(err, gorm.ErrRecordNotFound) {
		writeResponse(rw, ResponsePayload{Errors: []string{err.Error()}}, http.StatusInternalServerError)
		return
	}

	if !auth.CheckPasswordHash(data["password"], passwordHash) {
		writeResponse(rw, ResponsePayload{Errors: []string{"email/password is invalid"}}, http.StatusUnauthorized)
		return
	}

	user, err := models.FindUserBy("email", data["email"])
	if err != nil {
		writeResponse(rw, ResponsePayload{Errors: []string{err.Error()}}, http.StatusInternalServerError)
		return
	}

	isAdmin, err := user.IsAdmin()
	if err != nil {
		writeResponse(rw, ResponsePayload{Errors: []string{err.Error()}}, http.StatusInternalServerError)
		return
	}

	token, err := auth.EncodeJWT(auth.RecruitEdgeTokenClaims{
		FirstName: user.FirstName,
		LastName:  user.LastName,
		Email:     user.Email,
		IsAdmin:   isAdmin,
		StandardClaims: jwt.StandardClaims{
			Subject:   fmt.Sprint(user.ID),
			IssuedAt:  time.Now().Unix(),
			ExpiresAt: time.Now().Add(SESSION_DURATION_IN_HOURS * time.Hour).Unix(),
		},
	}, authKeyPair)
	if err != nil {
		writeResponse(rw, ResponsePayload{Errors: []string{err.Error()}}, http.StatusInternalServerError)
		return
	}

	writeResponse(rw, ResponsePayload{Success: true, Data: map[string]string{"token": token}}, http.StatusOK)
}

func jwksHandler(rw http.ResponseWriter, r *http.Request) {
	jwk, err := authKeyPair.JWK()
	if err != nil {
		writeResponse(rw, ResponsePayload{Errors: []string{err.Error()}}, http.StatusInternalServerError)
		return
	}

	json.NewEncoder(rw).Encode(key.ExportJWKAsJWKS(jwk))
}

// ---------------------------------------------------------------------------------//
// Outreach runs
// -------------------------------------------------------------------------------- //

func freeRunHandler(rw http.ResponseWriter, r *http.Request) {
	data := make(map[string]string)
	if err := json.NewDecoder(r.Body).Decode(&data); err != nil {
		writeResponse(rw, ResponsePayload{Errors: []string{err.Error()}}, http.StatusBadRequest)
		return
	}

	jobTitle, company, location := data["jobTitle"], data["company"], data["location"]
	if errs := validateSearchInputs(jobTitle, company, location); len(errs) > 0 {
		writeResponse(rw, ResponsePayload{Errors: errs}, http.StatusBadRequest)
		return
	}

	user, err := requestUser(r)
	if err != nil {
		writeResponse(rw, ResponsePayload{Errors: []string{err.Error()}}, http.StatusUnauthorized)
		return
	}

	result, err := runner.RunFree(r.Context(), user, jobTitle, company, location)
	if err != nil {
		writeRunError(rw, err)
		return
	}

	writeRunResult(rw, r, result)
}

func proRunHandler(rw http.ResponseWriter, r *http.Request) {
	if err := r.ParseMultipartForm(MAX_RESUME_SIZE_BYTES); err != nil {
		writeResponse(rw, ResponsePayload{Errors: []string{"expected multipart form with a resume"}}, http.StatusBadRequest)
		return
	}

	jobTitle := r.FormValue("jobTitle")
	company := r.FormValue("company")
	location := r.FormValue("location")
	if errs := validateSearchInputs(jobTitle, company, location); len(errs) > 0 {
		writeResponse(rw, ResponsePayload{Errors: errs}, http.StatusBadRequest)
		return
	}

	resumeFile, _, err := r.FormFile("resume")
	if err != nil {
		writeResponse(rw, ResponsePayload{Errors: []string{"a resume PDF is required for pro runs"}}, http.StatusBadRequest)
		return
	}
	defer resumeFile.Close()

	resumePDF, err := io.ReadAll(resumeFile)
	if err != nil {
		writeResponse(rw, ResponsePayload{Errors: []string{err.Error()}}, http.StatusBadRequest)
		return
	}

	user, err := requestUser(r)
	if err != nil {
		writeResponse(rw, ResponsePayload{Errors: []string{err.Error()}}, http.StatusUnauthorized)
		return
	}

	result, err := runner.RunPro(r.Context(), user, jobTitle, company, location, resumePDF)
	if err != nil {
		writeRunError(rw, err)
		return
	}

	writeRunResult(rw, r, result)
}

// writeRunResult serves the run's CSV as a download by default; clients
// that want the structured payload pass format=json.
func writeRunResult(rw http.ResponseWriter, r *http.Request, result *outreach.RunResult) {
	if r.URL.Query().Get("format") == "json" || result.CSVFile == "" {
		writeResponse(rw, ResponsePayload{Success: true, Data: result}, http.StatusOK)
		return
	}

	csvBytes, err := os.ReadFile(result.CSVFile)
	if err != nil {
		logg.Errorf("reading run export: %v", err)
		writeResponse(rw, ResponsePayload{Success: true, Data: result}, http.StatusOK)
		return
	}

	rw.Header().Set("Content-Type", "text/csv")
	rw.Header().Set("Content-Disposition",
		fmt.Sprintf("attachment; filename=%q", filepath.Base(result.CSVFile)))
	rw.WriteHeader(http.StatusOK)
	rw.Write(csvBytes)
}

// ---------------------------------------------------------------------------------//
// Vendor passthroughs
// -------------------------------------------------------------------------------- //

func autocompleteHandler(rw http.ResponseWriter, r *http.Request) {
	dataType := mux.Vars(r)["type"]
	query := strings.TrimSpace(r.URL.Query().Get("query"))

	field, ok := autocompleteFieldMapping[dataType]
	if !ok {
		writeResponse(rw, ResponsePayload{
			Errors: []string{fmt.Sprintf("invalid autocomplete type %q", dataType)},
		}, http.StatusBadRequest)
		return
	}

	if len(query) < MIN_AUTOCOMPLETE_QUERY {
		writeResponse(rw, ResponsePayload{Success: true, Data: []string{}}, http.StatusOK)
		return
	}

	suggestions, err := pdlClient.Autocomplete(r.Context(), field, query, AUTOCOMPLETE_SUGGESTIONS)
	if err != nil {
		writeRunError(rw, err)
		return
	}

	writeResponse(rw, ResponsePayload{Success: true, Data: suggestions}, http.StatusOK)
}

func enrichJobTitleHandler(rw http.ResponseWriter, r *http.Request) {
	data := make(map[string]string)
	json.NewDecoder(r.Body).Decode(&data)

	jobTitle := strings.TrimSpace(data["jobTitle"])
	if jobTitle == "" {
		writeResponse(rw, ResponsePayload{Errors: []string{"job title is required"}}, http.StatusBadRequest)
		return
	}

	enrichment, err := pdlClient.EnrichJobTitle(r.Context(), jobTitle)
	if err != nil {
		writeRunError(rw, err)
		return
	}

	writeResponse(rw, ResponsePayload{Success: true, Data: map[string]interface{}{
		"original":   jobTitle,
		"enrichment": enrichment,
	}}, http.StatusOK)
}

// ---------------------------------------------------------------------------------//
// Contact directory
// -------------------------------------------------------------------------------- //

func directoryContactsHandler(rw http.ResponseWriter, r *http.Request) {
	user, err := requestUser(r)
	if err != nil {
		writeResponse(rw, ResponsePayload{Errors: []string{err.Error()}}, http.StatusUnauthorized)
		return
	}

	page, _ := strconv.Atoi(r.URL.Query().Get("page"))
	results, paging, err := models.FetchContacts(user.ID, page)
	if err != nil {
		writeResponse(rw, ResponsePayload{Errors: []string{err.Error()}}, http.StatusInternalServerError)
		return
	}

	writeResponse(rw, ResponsePayload{Success: true, Data: map[string]interface{}{
		"contacts": results,
		"paging":   paging,
	}}, http.StatusOK)
}

// importContactsHandler bulk-adds contacts, skipping records the user
// already has.
func importContactsHandler(rw http.ResponseWriter, r *http.Request) {
	user, err := requestUser(r)
	if err != nil {
		writeResponse(rw, ResponsePayload{Errors: []string{err.Error()}}, http.StatusUnauthorized)
		return
	}

	var records []models.Contact
	if err := json.NewDecoder(r.Body).Decode(&records); err != nil {
		writeResponse(rw, ResponsePayload{Errors: []string{err.Error()}}, http.StatusBadRequest)
		return
	}

	for _, record := range records {
		if errs := validate.Struct(record); errs != nil {
			writeResponse(rw, ResponsePayload{Errors: strings.Split(errs.Error(), "\n")}, http.StatusBadRequest)
			return
		}
	}

	saved, err := models.SaveContacts(user.ID, records)
	if err != nil {
		writeResponse(rw, ResponsePayload{Errors: []string{err.Error()}}, http.StatusInternalServerError)
		return
	}

	writeResponse(rw, ResponsePayload{Success: true, Data: map[string]int{
		"saved":   saved,
		"skipped": len(records) - saved,
	}}, http.StatusOK)
}

func listContactsHandler(rw http.ResponseWriter, r *http.Request) {
	user, err := requestUser(r)
	if err != nil {
		writeResponse(rw, ResponsePayload{Errors: []string{err.Error()}}, http.StatusUnauthorized)
		return
	}

	results, err := models.ContactsForUser(user.ID)
	if err != nil {
		writeResponse(rw, ResponsePayload{Errors: []string{err.Error()}}, http.StatusInternalServerError)
		return
	}

	writeResponse(rw, ResponsePayload{Success: true, Data: results}, http.StatusOK)
}

func createContactHandler(rw http.ResponseWriter, r *http.Request) {
	user, err := requestUser(r)
	if err != nil {
		writeResponse(rw, ResponsePayload{Errors: []string{err.Error()}}, http.StatusUnauthorized)
		return
	}

	contact := models.Contact{}
	if err := json.NewDecoder(r.Body).Decode(&contact); err != nil {
		writeResponse(rw, ResponsePayload{Errors: []string{err.Error()}}, http.StatusBadRequest)
		return
	}

	if errs := validate.Struct(contact); errs != nil {
		writeResponse(rw, ResponsePayload{Errors: strings.Split(errs.Error(), "\n")}, http.StatusBadRequest)
		return
	}

	if err := user.AddContact(&contact); err != nil {
		writeResponse(rw, ResponsePayload{Errors: []string{err.Error()}}, http.StatusInternalServerError)
		return
	}

	writeResponse(rw, ResponsePayload{Success: true, Data: contact}, http.StatusCreated)
}

func updateContactHandler(rw http.ResponseWriter, r *http.Request) {
	user, err := requestUser(r)
	if err != nil {
		writeResponse(rw, ResponsePayload{Errors: []string{err.Error()}}, http.StatusUnauthorized)
		return
	}

	data := make(map[string]interface{})
	if err := json.NewDecoder(r.Body).Decode(&data); err != nil {
		writeResponse(rw, ResponsePayload{Errors: []string{err.Error()}}, http.StatusBadRequest)
		return
	}

	removeUnknownFields(data, updatableContactFields)
	if len(data) == 0 {
		writeResponse(rw, ResponsePayload{Errors: []string{"valid fields required"}}, http.StatusBadRequest)
		return
	}

	contactID := mux.Vars(r)["id"]
	if _, err := models.FindContactForUser(user.ID, contactID); errors.Is(err, gorm.ErrRecordNotFound) {
		writeResponse(rw, ResponsePayload{Errors: []string{"contact not found"}}, http.StatusNotFound)
		return
	}

	if err := user.UpdateContact(contactID, data); err != nil {
		writeResponse(rw, ResponsePayload{Errors: []string{err.Error()}}, http.StatusInternalServerError)
		return
	}

	writeResponse(rw, ResponsePayload{Success: true}, http.StatusOK)
}

func deleteContactHandler(rw http.ResponseWriter, r *http.Request) {
	user, err := requestUser(r)
	if err != nil {
		writeResponse(rw, ResponsePayload{Errors: []string{err.Error()}}, http.StatusUnauthorized)
		return
	}

	if err := user.DeleteContact(mux.Vars(r)["id"]); err != nil {
		writeResponse(rw, ResponsePayload{Errors: []string{err.Error()}}, http.StatusInternalServerError)
		return
	}

	writeResponse(rw, ResponsePayload{Success: true}, http.StatusOK)
}

var updatableContactFields = map[string]bool{
	"first_name": true, "last_name": true, "email": true, "personal_email": true,
	"work_email": true, "phone": true, "linkedin_url": true, "title": true,
	"company": true, "city": true, "state": true, "status": true,
	"email_subject": true, "email_body": true,
}

// writeRunError maps vendor failures to the right status codes.
func writeRunError(rw http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, pdl.ErrPaymentRequired):
		writeResponse(rw, ResponsePayload{Errors: []string{err.Error()}}, http.StatusPaymentRequired)
	case errors.Is(err, pdl.ErrRateLimited):
		writeResponse(rw, ResponsePayload{Errors: []string{err.Error()}}, http.StatusTooManyRequests)
	default:
		writeResponse(rw, ResponsePayload{Errors: []string{err.Error()}}, http.StatusInternalServerError)
	}
}
