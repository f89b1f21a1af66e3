package newsletter

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"

	"github.com/aarav-aiphi/Backend/internal/users"
	"github.com/aarav-aiphi/Backend/pkg/db"
	"github.com/aarav-aiphi/Backend/pkg/db/models"
	pkgerrors "github.com/aarav-aiphi/Backend/pkg/errors"
	"github.com/aarav-aiphi/Backend/pkg/logger"
	"github.com/aarav-aiphi/Backend/pkg/mail"
	"github.com/google/uuid"
	"go.uber.org/multierr"
	"golang.org/x/sync/errgroup"
	"gorm.io/gorm"
)

const (
	msgSubscribed     = "Successfully subscribed!"
	msgAlreadyExists  = "This email is already subscribed."
	msgNewsletterSent = "Newsletter sent successfully!"
	msgTestSent       = "Email sent successfully!"

	welcomeSubject = "Welcome to AiAzent Newsletter!"
	welcomeText    = "Thank you for subscribing to AiAzent Newsletter! Stay tuned for updates."
	welcomeHTML    = "<h1>Welcome to AiAzent Newsletter!</h1><p>Thank you for subscribing to AiAzent Newsletter! Stay tuned for updates.</p>"

	testSubject = "Test Email"
	testText    = "This is a plain text test email."
	testHTML    = "<p>This is a <b>test email</b>.</p>"

	defaultSendConcurrency = 4
)

type SubscriberDTO struct {
	ID    uuid.UUID `json:"id"`
	Email string    `json:"email"`
}

type SubscribeRequest struct {
	Email string `json:"email"`
}

// Broadcast is a newsletter issue or a test message.
type Broadcast struct {
	To      string `json:"to,omitempty"`
	Subject string `json:"subject"`
	Text    string `json:"text"`
	HTML    string `json:"html"`
}

// SendResult reports a delivery run.
type SendResult struct {
	Message    string `json:"message"`
	Recipients int    `json:"recipients"`
}

type Repository struct {
	db *gorm.DB
}

func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

func (r *Repository) List(ctx context.Context) ([]models.Subscriber, error) {
	var rows []models.Subscriber
	if err := r.db.WithContext(ctx).Order("created_at ASC").Order("id ASC").Find(&rows).Error; err != nil {
		return nil, err
	}
	return rows, nil
}

func (r *Repository) Exists(ctx context.Context, email string) (bool, error) {
	var count int64
	if err := r.db.WithContext(ctx).Model(&models.Subscriber{}).Where("email = ?", email).Count(&count).Error; err != nil {
		return false, err
	}
	return count > 0, nil
}

func (r *Repository) Create(ctx context.Context, row *models.Subscriber) error {
	if row.ID == uuid.Nil {
		row.ID = uuid.New()
	}
	return r.db.WithContext(ctx).Create(row).Error
}

type mailer interface {
	Notify(ctx context.Context, msg mail.Message)
	Send(ctx context.Context, msg mail.Message) error
}

type ServiceParams struct {
	Repo        *Repository
	Mailer      mailer
	Logger      *logger.Logger
	Concurrency int
}

type Service struct {
	repo        *Repository
	mailer      mailer
	logg        *logger.Logger
	concurrency int
}

func NewService(params ServiceParams) (*Service, error) {
	if params.Repo == nil {
		return nil, fmt.Errorf("subscriber repo is required")
	}
	if params.Mailer == nil {
		return nil, fmt.Errorf("mailer is required")
	}
	concurrency := params.Concurrency
	if concurrency <= 0 {
		concurrency = defaultSendConcurrency
	}
	return &Service{repo: params.Repo, mailer: params.Mailer, logg: params.Logger, concurrency: concurrency}, nil
}

func (s *Service) Subscribers(ctx context.Context) ([]SubscriberDTO, error) {
	rows, err := s.repo.List(ctx)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "Failed to fetch subscribers")
	}
	out := make([]SubscriberDTO, 0, len(rows))
	for _, row := range rows {
		out = append(out, SubscriberDTO{ID: row.ID, Email: row.Email})
	}
	return out, nil
}

// Subscribe stores the address and queues a welcome email.
func (s *Service) Subscribe(ctx context.Context, req SubscribeRequest) (string, error) {
	email := users.NormalizeEmail(req.Email)
	if email == "" || !strings.Contains(email, "@") {
		return "", pkgerrors.New(pkgerrors.CodeValidation, "A valid email is required")
	}
	exists, err := s.repo.Exists(ctx, email)
	if err != nil {
		return "", pkgerrors.Wrap(pkgerrors.CodeInternal, err, "Failed to subscribe")
	}
	if exists {
		return "", pkgerrors.New(pkgerrors.CodeValidation, msgAlreadyExists)
	}
	if err := s.repo.Create(ctx, &models.Subscriber{Email: email}); err != nil {
		if db.IsUniqueViolation(err, "") {
			return "", pkgerrors.New(pkgerrors.CodeValidation, msgAlreadyExists)
		}
		return "", pkgerrors.Wrap(pkgerrors.CodeInternal, err, "Failed to subscribe")
	}

	s.mailer.Notify(ctx, mail.Message{
		To:      []string{email},
		Subject: welcomeSubject,
		Text:    welcomeText,
		HTML:    welcomeHTML,
	})
	return msgSubscribed, nil
}

// SendAll mails the issue to every subscriber, one message per address so
// recipients never see each other.
func (s *Service) SendAll(ctx context.Context, b Broadcast) (*SendResult, error) {
	if strings.TrimSpace(b.Subject) == "" || (b.Text == "" && b.HTML == "") {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "subject and a text or html body are required")
	}
	rows, err := s.repo.List(ctx)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "Failed to send newsletter")
	}

	var (
		mu     sync.Mutex
		failed error
	)
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(s.concurrency)
	for _, row := range rows {
		to := row.Email
		g.Go(func() error {
			err := s.mailer.Send(gctx, mail.Message{To: []string{to}, Subject: b.Subject, Text: b.Text, HTML: b.HTML})
			if err != nil {
				mu.Lock()
				failed = multierr.Append(failed, fmt.Errorf("%s: %w", to, err))
				mu.Unlock()
			}
			return nil
		})
	}
	_ = g.Wait()

	if failed != nil {
		count := len(multierr.Errors(failed))
		if s.logg != nil {
			s.logg.Error(s.logg.WithField(ctx, "failed_recipients", count), "newsletter delivery incomplete", failed)
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, failed, "Error sending email").
			WithDetails(map[string]int{"failed": count, "recipients": len(rows)})
	}
	return &SendResult{Message: msgNewsletterSent, Recipients: len(rows)}, nil
}

// SendTest delivers one message synchronously, filling blank fields with
// placeholder content.
func (s *Service) SendTest(ctx context.Context, b Broadcast) (*SendResult, error) {
	to := strings.TrimSpace(b.To)
	if to == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "recipient is required")
	}
	msg := mail.Message{To: []string{to}, Subject: b.Subject, Text: b.Text, HTML: b.HTML}
	if strings.TrimSpace(msg.Subject) == "" {
		msg.Subject = testSubject
	}
	if msg.Text == "" {
		msg.Text = testText
	}
	if msg.HTML == "" {
		msg.HTML = testHTML
	}
	if err := s.mailer.Send(ctx, msg); err != nil {
		if errors.Is(err, mail.ErrNoRecipients) {
			return nil, pkgerrors.New(pkgerrors.CodeValidation, "recipient is required")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "Failed to send email")
	}
	return &SendResult{Message: msgTestSent, Recipients: 1}, nil
}
