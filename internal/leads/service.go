// Package leads persists what the website's forms capture: job applications
// for the careers page and contact leads from the brochure pages.
package leads

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
)

// maxResumeBytes bounds the uploaded resume size.
const maxResumeBytes = 5 << 20

// Application is one careers-page submission.
type Application struct {
	ID          string    `json:"id"`
	JobID       string    `json:"jobId"`
	Name        string    `json:"name"`
	Email       string    `json:"email"`
	Phone       string    `json:"phone,omitempty"`
	LinkedIn    string    `json:"linkedin,omitempty"`
	Portfolio   string    `json:"portfolio,omitempty"`
	CoverLetter string    `json:"coverLetter"`
	ResumeName  string    `json:"resumeName"`
	Resume      []byte    `json:"-"`
	CreatedAt   time.Time `json:"createdAt"`
}

// Lead is one contact-form submission.
type Lead struct {
	ID        string    `json:"id"`
	Email     string    `json:"email"`
	Name      string    `json:"name,omitempty"`
	Company   string    `json:"company,omitempty"`
	Message   string    `json:"message"`
	CreatedAt time.Time `json:"createdAt"`
}

// ValidationError wraps a user-facing validation message.
type ValidationError struct{ Msg string }

func (e *ValidationError) Error() string { return e.Msg }

// Service stores applications and leads in Postgres.
type Service struct {
	pool *pgxpool.Pool
}

// NewService returns a configured Service.
func NewService(pool *pgxpool.Pool) *Service {
	return &Service{pool: pool}
}

// SubmitApplication validates and stores an application. Submissions are
// idempotent per (job, email): a resubmission updates the existing row
// instead of creating a duplicate.
func (s *Service) SubmitApplication(ctx context.Context, app *Application) (*Application, error) {
	if err := ValidateApplication(app); err != nil {
		return nil, err
	}

	app.Email = strings.ToLower(strings.TrimSpace(app.Email))
	app.ID = uuid.NewString()

	err := s.pool.QueryRow(ctx,
		`INSERT INTO applications
		   (id, job_id, name, email, phone, linkedin, portfolio, cover_letter, resume_name, resume)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
		 ON CONFLICT (job_id, email) DO UPDATE
		   SET name = EXCLUDED.name,
		       phone = EXCLUDED.phone,
		       linkedin = EXCLUDED.linkedin,
		       portfolio = EXCLUDED.portfolio,
		       cover_letter = EXCLUDED.cover_letter,
		       resume_name = EXCLUDED.resume_name,
		       resume = EXCLUDED.resume,
		       updated_at = NOW()
		 RETURNING id, created_at`,
		app.ID, app.JobID, app.Name, app.Email, app.Phone,
		app.LinkedIn, app.Portfolio, app.CoverLetter, app.ResumeName, app.Resume,
	).Scan(&app.ID, &app.CreatedAt)
	if err != nil {
		return nil, fmt.Errorf("submitApplication insert: %w", err)
	}

	return app, nil
}

// SaveLead validates and stores a contact lead.
func (s *Service) SaveLead(ctx context.Context, lead *Lead) (*Lead, error) {
	if err := ValidateLead(lead); err != nil {
		return nil, err
	}

	lead.Email = strings.ToLower(strings.TrimSpace(lead.Email))
	lead.ID = uuid.NewString()

	err := s.pool.QueryRow(ctx,
		`INSERT INTO leads (id, email, name, company, message)
		 VALUES ($1, $2, $3, $4, $5)
		 RETURNING created_at`,
		lead.ID, lead.Email, lead.Name, lead.Company, lead.Message,
	).Scan(&lead.CreatedAt)
	if err != nil {
		return nil, fmt.Errorf("saveLead insert: %w", err)
	}

	return lead, nil
}

// ValidateApplication checks the required application fields. Email gets the
// same minimal "@" check the signup flows use.
func ValidateApplication(app *Application) error {
	if strings.TrimSpace(app.JobID) == "" {
		return &ValidationError{Msg: "jobId is required"}
	}
	if strings.TrimSpace(app.Name) == "" {
		return &ValidationError{Msg: "name is required"}
	}
	if err := validateEmail(app.Email); err != nil {
		return err
	}
	if len(app.Resume) == 0 {
		return &ValidationError{Msg: "a resume file is required"}
	}
	if len(app.Resume) > maxResumeBytes {
		return &ValidationError{Msg: "resume file exceeds the 5 MB limit"}
	}
	return nil
}

// ValidateLead checks the required contact-form fields.
func ValidateLead(lead *Lead) error {
	if err := validateEmail(lead.Email); err != nil {
		return err
	}
	if strings.TrimSpace(lead.Message) == "" {
		return &ValidationError{Msg: "message is required"}
	}
	return nil
}

func validateEmail(email string) error {
	email = strings.TrimSpace(email)
	if email == "" {
		return &ValidationError{Msg: "email is required"}
	}
	if !strings.Contains(email, "@") {
		return &ValidationError{Msg: "a valid email address is required"}
	}
	return nil
}
