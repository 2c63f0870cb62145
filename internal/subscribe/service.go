// Package subscribe contains the business logic behind the website's three
// signup flows: newsletter, waitlist and early access. Each flow assembles a
// use-case-specific tag set and syncs the contact to the mailing list.
//
// The caller-visible contract is idempotent: subscribing twice with the same
// email reports success both times. "Already a member" is not an error here,
// it simply means the upsert took the update path.
package subscribe

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/Movrr-Official/movrr-sub001/internal/mailer"
)

// MailingList is the slice of the mailer client the orchestrator needs.
type MailingList interface {
	CreateOrUpdate(ctx context.Context, email string, merge mailer.MergeFields, tags []string) (*mailer.SyncResult, error)
}

// Service orchestrates signup flows against the mailing list.
type Service struct {
	list MailingList
}

// NewService returns a configured Service.
func NewService(list MailingList) *Service {
	return &Service{list: list}
}

// ─── Inputs and outputs ──────────────────────────────────────────────────────

// NewsletterSignup is the payload of the newsletter form.
type NewsletterSignup struct {
	Email     string `json:"email"`
	FirstName string `json:"firstName"`
	LastName  string `json:"lastName"`
}

// WaitlistSignup is the payload of the launch waitlist form.
type WaitlistSignup struct {
	Email     string   `json:"email"`
	FirstName string   `json:"firstName"`
	LastName  string   `json:"lastName"`
	Company   string   `json:"company"`
	Interests []string `json:"interests"`
}

// EarlyAccessSignup is the payload of the early-access form.
type EarlyAccessSignup struct {
	Email     string `json:"email"`
	FirstName string `json:"firstName"`
	LastName  string `json:"lastName"`
	Company   string `json:"company"`
	Role      string `json:"role"`
	Budget    string `json:"budget"`
}

// Confirmation is the success payload returned to the caller.
type Confirmation struct {
	Email  string `json:"email"`
	Status string `json:"status"`
}

// ValidationError wraps a user-facing validation message. It is detected and
// returned before any remote call.
type ValidationError struct{ Msg string }

func (e *ValidationError) Error() string { return e.Msg }

// ─── Flows ───────────────────────────────────────────────────────────────────

// SubscribeNewsletter adds the contact to the newsletter segment.
func (s *Service) SubscribeNewsletter(ctx context.Context, in NewsletterSignup) (*Confirmation, error) {
	if err := validateEmail(in.Email); err != nil {
		return nil, err
	}
	merge := mailer.MergeFields{FirstName: in.FirstName, LastName: in.LastName}
	return s.sync(ctx, "subscribeNewsletter", in.Email, merge, []string{"newsletter", "website"})
}

// JoinWaitlist adds the contact to the launch waitlist, tagged with any
// product interests they selected.
func (s *Service) JoinWaitlist(ctx context.Context, in WaitlistSignup) (*Confirmation, error) {
	if err := validateEmail(in.Email); err != nil {
		return nil, err
	}
	tags := []string{"waitlist", "launch-partner", "website"}
	for _, interest := range in.Interests {
		if t := strings.TrimSpace(interest); t != "" {
			tags = append(tags, t)
		}
	}
	merge := mailer.MergeFields{FirstName: in.FirstName, LastName: in.LastName, Company: in.Company}
	return s.sync(ctx, "joinWaitlist", in.Email, merge, tags)
}

// SubscribeEarlyAccess registers an early-access lead with role and budget
// context for the sales pipeline.
func (s *Service) SubscribeEarlyAccess(ctx context.Context, in EarlyAccessSignup) (*Confirmation, error) {
	if err := validateEmail(in.Email); err != nil {
		return nil, err
	}
	merge := mailer.MergeFields{
		FirstName: in.FirstName,
		LastName:  in.LastName,
		Company:   in.Company,
		Role:      in.Role,
		Budget:    in.Budget,
	}
	return s.sync(ctx, "subscribeEarlyAccess", in.Email, merge, []string{"early-access", "website"})
}

func (s *Service) sync(ctx context.Context, action, email string, merge mailer.MergeFields, tags []string) (*Confirmation, error) {
	res, err := s.list.CreateOrUpdate(ctx, email, merge, tags)
	if err != nil {
		slog.Error("mailing list sync failed", "action", action, "err", err)
		return nil, fmt.Errorf("%s: %w", action, err)
	}
	return &Confirmation{Email: res.Email, Status: res.Status}, nil
}

// validateEmail enforces the minimal local check; stricter validation is the
// remote sanitizer's job.
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
