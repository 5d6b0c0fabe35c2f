package gmail

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"os"
	"strings"
	"sync"

	"github.com/pkg/errors"
	"github.com/recruitedge/recruitedge/server/logger"
	"github.com/recruitedge/recruitedge/server/models"
	"github.com/recruitedge/recruitedge/shared"
	"golang.org/x/oauth2"
	"golang.org/x/oauth2/google"
	gmail "google.golang.org/api/gmail/v1"
	"google.golang.org/api/option"
)

var logg = logger.NewLogger()

// ---------------------------------------------------------------------------------//
// Gmail drafts: one draft per discovered contact, filed under a tier label
// -------------------------------------------------------------------------------- //

// Service wraps the Gmail API for draft creation. A nil *Service is valid
// and produces mock draft IDs, so runs still complete when Gmail is not
// configured.
type Service struct {
	api *gmail.Service

	labelMu  sync.Mutex
	labelIDs map[string]string
}

// NewService builds a Gmail client from the app credentials file and a
// previously saved oauth token. The token auto-renews via its refresh token;
// when it can no longer be renewed the caller has to re-run the sign-in flow.
func NewService(ctx context.Context, config shared.GoogleConfig) (*Service, error) {
	credentials, err := os.ReadFile(config.GmailCredentialsFile)
	if err != nil {
		return nil, errors.Wrap(err, "read gmail credentials")
	}

	oauthConfig, err := google.ConfigFromJSON(credentials, gmail.GmailComposeScope, gmail.GmailLabelsScope)
	if err != nil {
		return nil, errors.Wrap(err, "parse gmail credentials")
	}

	token, err := tokenFromFile(config.GmailTokenFile)
	if err != nil {
		return nil, errors.Wrap(err, "read gmail token")
	}

	token, err = oauthConfig.TokenSource(ctx, token).Token()
	if err != nil {
		return nil, errors.Wrap(err, "renew gmail token")
	}

	api, err := gmail.NewService(ctx, option.WithHTTPClient(oauthConfig.Client(ctx, token)))
	if err != nil {
		return nil, errors.Wrap(err, "create gmail service")
	}

	return &Service{api: api, labelIDs: map[string]string{}}, nil
}

// CreateDraft drafts the composed email to the contact's best address and
// labels it "RecruitEdge <Tier>". It never fails a run: when Gmail is
// unavailable or the contact has no address, a mock draft ID is returned so
// the contact record still shows what would have been sent.
func (s *Service) CreateDraft(ctx context.Context, contact models.Contact, subject, body, tier string) string {
	if s == nil || s.api == nil {
		logg.Infof("gmail unavailable - creating mock draft for %v", contact.FirstName)
		return MockDraftID(contact, tier)
	}

	recipient := recipientEmail(contact)
	if recipient == "" {
		logg.Infof("no valid email for %v - creating mock draft", contact.FirstName)
		return MockDraftID(contact, tier)
	}

	raw := rawMessage(recipient, subject, body)
	draft, err := s.api.Users.Drafts.Create("me", &gmail.Draft{
		Message: &gmail.Message{Raw: raw},
	}).Context(ctx).Do()
	if err != nil {
		logg.Warnw("gmail draft creation failed", "contact", contact.FirstName, "error", err)
		return MockDraftID(contact, tier)
	}

	if err := s.applyTierLabel(ctx, draft.Message.Id, tier); err != nil {
		logg.Warnw("could not apply tier label", "tier", tier, "error", err)
	}

	return draft.Id
}

// MockDraftID is the placeholder recorded when no real draft could be created.
func MockDraftID(contact models.Contact, tier string) string {
	return fmt.Sprintf("mock_%v_draft_%v", strings.ToLower(tier), strings.ToLower(contact.FirstName))
}

// recipientEmail prefers the personal address, then work, then whatever the
// vendor recommended.
func recipientEmail(contact models.Contact) string {
	for _, address := range []string{contact.PersonalEmail, contact.WorkEmail, contact.Email} {
		if address != "" && address != models.NOT_AVAILABLE {
			return address
		}
	}
	return ""
}

func rawMessage(recipient, subject, body string) string {
	message := fmt.Sprintf(
		"To: %v\r\nSubject: %v\r\nContent-Type: text/plain; charset=\"UTF-8\"\r\n\r\n%v",
		recipient, subject, body)
	return base64.URLEncoding.EncodeToString([]byte(message))
}

// applyTierLabel files the draft message under "RecruitEdge <Tier>",
// creating the label on first use.
func (s *Service) applyTierLabel(ctx context.Context, messageID, tier string) error {
	labelID, err := s.ensureLabel(ctx, labelName(tier))
	if err != nil {
		return err
	}

	_, err = s.api.Users.Messages.Modify("me", messageID, &gmail.ModifyMessageRequest{
		AddLabelIds: []string{labelID},
	}).Context(ctx).Do()
	return err
}

func (s *Service) ensureLabel(ctx context.Context, name string) (string, error) {
	s.labelMu.Lock()
	defer s.labelMu.Unlock()

	if id, ok := s.labelIDs[name]; ok {
		return id, nil
	}

	existing, err := s.api.Users.Labels.List("me").Context(ctx).Do()
	if err != nil {
		return "", errors.Wrap(err, "list labels")
	}
	for _, label := range existing.Labels {
		if label.Name == name {
			s.labelIDs[name] = label.Id
			return label.Id, nil
		}
	}

	created, err := s.api.Users.Labels.Create("me", &gmail.Label{
		Name:                  name,
		LabelListVisibility:   "labelShow",
		MessageListVisibility: "show",
	}).Context(ctx).Do()
	if err != nil {
		return "", errors.Wrap(err, "create label")
	}

	s.labelIDs[name] = created.Id
	return created.Id, nil
}

func labelName(tier string) string {
	return fmt.Sprintf("RecruitEdge %v%v", strings.ToUpper(tier[:1]), strings.ToLower(tier[1:]))
}

func tokenFromFile(path string) (*oauth2.Token, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	token := &oauth2.Token{}
	return token, json.NewDecoder(f).Decode(token)
}
