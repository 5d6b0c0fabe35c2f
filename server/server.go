package server

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/go-playground/validator"
	"github.com/gorilla/mux"
	"github.com/recruitedge/recruitedge/server/auth"
	"github.com/recruitedge/recruitedge/server/auth/key"
	"github.com/recruitedge/recruitedge/server/contacts"
	"github.com/recruitedge/recruitedge/server/email"
	"github.com/recruitedge/recruitedge/server/gmail"
	"github.com/recruitedge/recruitedge/server/gstorage"
	"github.com/recruitedge/recruitedge/server/llm"
	"github.com/recruitedge/recruitedge/server/logger"
	"github.com/recruitedge/recruitedge/server/models"
	"github.com/recruitedge/recruitedge/server/outreach"
	"github.com/recruitedge/recruitedge/server/pdl"
	"github.com/recruitedge/recruitedge/server/resume"
	"github.com/recruitedge/recruitedge/server/work"
	"github.com/recruitedge/recruitedge/shared"
	"github.com/recruitedge/recruitedge/utils"
	"github.com/spf13/viper"
)

type RequestContextKey string

type DecodedJWT struct {
	Claims   *auth.RecruitEdgeTokenClaims
	ErrorMsg string
}

var (
	logg     = logger.NewLogger()
	validate = validator.New()

	serverConfig *shared.ServerConfig
	authKeyPair  *key.KeyPair
	pdlClient    *pdl.Client
	runner       *outreach.Runner
	gStorage     *gstorage.GStorage
	exportsDir   string
	dbRootDir    string
)

// Start wires every collaborator, kicks off the worker pool and serves the
// API until SIGINT/SIGTERM.
func Start(config *viper.Viper, devMode bool) {
	serverConfig = decodeServerConfig(config)

	fatalOnError(RegisterValidators(validate))
	fatalOnError(validate.Struct(serverConfig))

	dbRootDir = configDirectory(devMode)
	fatalOnError(models.AutoMigrate(serverConfig.Sqlite.PassPhrase, dbRootDir))

	keyPair, err := key.NewKeyPairFromRSAPrivateKeyPem(serverConfig.RecruitEdge.PrivateKeyPem)
	fatalOnError(err)
	authKeyPair = keyPair

	exportsDir = filepath.Join(dbRootDir, "exports")
	fatalOnError(utils.CreateDirIfNotExist(exportsDir))

	pdlClient = pdl.NewClient(serverConfig.PeopleData)
	runner = newRunner(serverConfig)

	if sqliteBackupEnabled(serverConfig) {
		gStorage, err = gstorage.NewGStorage(
			serverConfig.Google.ApplicationCredentials, serverConfig.Google.Storage.Prefix)
		fatalOnError(err)
	}

	workerPool := work.NewWorkerAdapter(serverConfig.RecruitEdge.Cron.TimeZone, true)
	registerJobHandlers(workerPool)
	enqueueJobs(workerPool, serverConfig)
	workerPool.Start()

	httpServer := &http.Server{
		Addr:    fmt.Sprintf(":%v", serverConfig.RecruitEdge.Listener.Port),
		Handler: router(),
	}
	go serve(httpServer)

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
	<-sigChan

	cleanup(workerPool, httpServer, sqliteBackupEnabled(serverConfig))
}

func router() *mux.Router {
	router := mux.NewRouter()
	router.Use(loggingMiddleware, initialContextMiddleware)

	router.HandleFunc("/health", healthHandler).Methods("GET")
	router.HandleFunc("/ping", pingHandler).Methods("GET")
	router.HandleFunc("/signup", signUpHandler).Methods("POST")
	router.HandleFunc("/login", logInHandler).Methods("POST")
	router.HandleFunc("/jwks", jwksHandler).Methods("GET")

	api := router.PathPrefix("/api").Subrouter()
	api.Use(protectedRouteMiddleware)
	api.HandleFunc("/free-run", freeRunHandler).Methods("POST")
	api.HandleFunc("/pro-run", proRunHandler).Methods("POST")
	api.HandleFunc("/autocomplete/{type}", autocompleteHandler).Methods("GET")
	api.HandleFunc("/enrich-job-title", enrichJobTitleHandler).Methods("POST")
	api.HandleFunc("/directory/contacts", directoryContactsHandler).Methods("GET")
	api.HandleFunc("/directory/contacts", importContactsHandler).Methods("POST")
	api.HandleFunc("/contacts", listContactsHandler).Methods("GET")
	api.HandleFunc("/contacts", createContactHandler).Methods("POST")
	api.HandleFunc("/contacts/{id}", updateContactHandler).Methods("PUT")
	api.HandleFunc("/contacts/{id}", deleteContactHandler).Methods("DELETE")

	return router
}

// newRunner assembles the outreach pipeline. The LLM and Gmail are both
// optional: composition falls back to templates and drafts to mock IDs.
func newRunner(config *shared.ServerConfig) *outreach.Runner {
	generator := newGenerator(config)

	return outreach.NewRunner(
		contacts.NewSearcher(pdl.NewClient(config.PeopleData)),
		email.NewComposer(generator),
		newGmailService(config),
		resume.NewParser(generator),
		exportsDir,
	)
}

func newGenerator(config *shared.ServerConfig) email.Generator {
	if config.Llm.ApiKey == "" {
		logg.Warn("no llm api key configured, email composition will use templates")
		return unavailableGenerator{}
	}

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	generator, err := llm.NewGenerator(ctx, config.Llm)
	if err != nil {
		logg.Warnf("llm unavailable, email composition will use templates: %v", err)
		return unavailableGenerator{}
	}
	return generator
}

func newGmailService(config *shared.ServerConfig) *gmail.Service {
	if config.Google.GmailCredentialsFile == "" {
		logg.Warn("no gmail credentials configured, drafts will be mocked")
		return nil
	}

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	service, err := gmail.NewService(ctx, config.Google)
	if err != nil {
		logg.Warnf("gmail unavailable, drafts will be mocked: %v", err)
		return nil
	}
	return service
}

func sqliteBackupEnabled(config *shared.ServerConfig) bool {
	enabled, ok := config.Google.Storage.EnableSqliteBackupAndSync.(bool)
	return ok && enabled
}

type unavailableGenerator struct{}

func (unavailableGenerator) GenerateText(ctx context.Context, systemInstruction, prompt string) (string, error) {
	return "", fmt.Errorf("no text generation model configured")
}
