package server

import (
	"context"
	"encoding/json"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/go-playground/validator"
	"github.com/pkg/errors"
	"github.com/recruitedge/recruitedge/server/auth"
	"github.com/recruitedge/recruitedge/server/models"
	"github.com/recruitedge/recruitedge/server/work"
	"github.com/recruitedge/recruitedge/shared"
	"github.com/recruitedge/recruitedge/utils"
	"github.com/spf13/viper"
)

const MIN_SEARCH_INPUT_LENGTH = 2

// suspiciousSearchTerms are obvious placeholders users paste in while
// trying the product out. A run on these would burn vendor credits for
// nothing, so they are rejected up front.
var suspiciousSearchTerms = []string{"test", "example", "placeholder", "xxx"}

// ---------------------------------------------------------------------------------//
// Handler Helper functions
// --------------------------------------------------------------------------------//

func writeResponse(rw http.ResponseWriter, payLoad ResponsePayload, statusCode int) {
	if statusCode >= http.StatusInternalServerError {
		logg.Error(payLoad.Errors)
	}

	if statusCode >= http.StatusBadRequest {
		logg.Info(payLoad.Errors)
	}

	rw.WriteHeader(statusCode)
	json.NewEncoder(rw).Encode(payLoad)
}

func removeUnknownFields(args map[string]interface{}, validFields map[string]bool) {
	for key := range args {
		if !validFields[key] {
			delete(args, key)
		}
	}
}

func RegisterValidators(validate *validator.Validate) error {
	return validate.RegisterValidation("password", func(fl validator.FieldLevel) bool {
		// if whitespace in password return false
		err := validate.Var(fl.Field().String(), "contains= ")
		if err == nil {
			return false
		}
		return len(fl.Field().String()) > 0
	})
}

// validateSearchInputs collects every problem with the search form in one
// pass, so the client can surface them all at once.
func validateSearchInputs(jobTitle, company, location string) []string {
	errs := []string{}

	inputs := []struct{ label, value string }{
		{"job title", jobTitle},
		{"company", company},
		{"location", location},
	}
	for _, input := range inputs {
		if len(strings.TrimSpace(input.value)) < MIN_SEARCH_INPUT_LENGTH {
			errs = append(errs, input.label+" must be at least 2 characters")
		}
	}

	for _, term := range suspiciousSearchTerms {
		if strings.Contains(strings.ToLower(jobTitle), term) ||
			strings.Contains(strings.ToLower(company), term) {
			errs = append(errs, "Please provide real search terms (found '"+term+"')")
			break
		}
	}

	return errs
}

func decodeServerConfig(config *viper.Viper) *shared.ServerConfig {
	serverConfig := shared.ServerConfig{}
	fatalOnError(config.Unmarshal(&serverConfig))
	return &serverConfig
}

// ---------------------------------------------------------------------------------//
// Middleware Helper functions
// --------------------------------------------------------------------------------//

func decodeAndVerifyAuthHeader(authHeaderValue string) DecodedJWT {
	authHeaderList := strings.Split(authHeaderValue, "Bearer ")
	if len(authHeaderList) < 2 {
		return DecodedJWT{ErrorMsg: "no token provided"}
	}

	tokenClaims, err := auth.DecodeJWT(authHeaderList[1], authKeyPair)
	if err != nil {
		return DecodedJWT{ErrorMsg: "invalid token provided"}
	}

	// validate that the user account still exists
	_, err = models.FindUserBy("id", tokenClaims.Subject)
	if err != nil {
		return DecodedJWT{ErrorMsg: "invalid token provided"}
	}

	return DecodedJWT{Claims: tokenClaims}
}

// requestUser resolves the account behind the verified token on the request.
func requestUser(r *http.Request) (*models.User, error) {
	decodedJWT, ok := r.Context().Value(RequestContextKey("decodedJWT")).(DecodedJWT)
	if !ok || decodedJWT.Claims == nil {
		return nil, errors.New("no account associated with request")
	}

	return models.FindUserBy("id", decodedJWT.Claims.Subject)
}

// ---------------------------------------------------------------------------------//
// Server Helper functions
// --------------------------------------------------------------------------------//

func serve(server *http.Server) {
	logg.Infof("RecruitEdge server is listening on port:%v", server.Addr)
	if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		logg.Fatal(err)
	}
}

func cleanup(workerPool *work.WorkerPoolAdapter, server *http.Server, backupDb bool) {
	// Stop periodic jobs & the worker pool before the final backup
	workerPool.Stop()

	if backupDb {
		backupSqliteDb(nil)
	}

	// Shutdown server gracefully
	ctxShutDown, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := server.Shutdown(ctxShutDown); err != nil {
		logg.Fatalf("RecruitEdge server shutdown failed:%+s", err)
	}

	logg.Infof("RecruitEdge server stopped properly")
}

// configDirectory retrieves the directory to store recruitedge configs
// Or logs an error message and then calls os.Exit if it's unable to.
func configDirectory(devMode bool) string {
	// Use 'recruitedge' folder in home directory for prod
	configFolderName := "recruitedge"
	rootDir, err := os.UserHomeDir()
	fatalOnError(err)

	// Use 'dev' folder in current directory for dev mode
	if devMode {
		configFolderName = "dev"
		rootDir, err = os.Getwd()
		fatalOnError(err)
	}

	configDir := filepath.Join(rootDir, configFolderName)

	err = utils.CreateDirIfNotExist(configDir)
	fatalOnError(err)

	return configDir
}

func fatalOnError(err error) {
	if err != nil {
		logg.Fatal(err)
	}
}
