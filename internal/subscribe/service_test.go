package subscribe_test

import (
	"context"
	"errors"
	"testing"

	"github.com/Movrr-Official/movrr-sub001/internal/mailer"
	"github.com/Movrr-Official/movrr-sub001/internal/subscribe"
)

// fakeList records upsert calls and simulates the remote list.
type fakeList struct {
	calls []listCall
	seen  map[string]bool // emails already on the list
	err   error
}

type listCall struct {
	email string
	merge mailer.MergeFields
	tags  []string
}

func (f *fakeList) CreateOrUpdate(_ context.Context, email string, merge mailer.MergeFields, tags []string) (*mailer.SyncResult, error) {
	f.calls = append(f.calls, listCall{email, merge, tags})
	if f.err != nil {
		return nil, f.err
	}
	if f.seen == nil {
		f.seen = map[string]bool{}
	}
	outcome := mailer.OutcomeCreated
	if f.seen[email] {
		outcome = mailer.OutcomeUpdated
	}
	f.seen[email] = true
	return &mailer.SyncResult{Outcome: outcome, ID: "m1", Email: email, Status: "subscribed"}, nil
}

func hasTags(got []string, want ...string) bool {
	set := map[string]bool{}
	for _, t := range got {
		set[t] = true
	}
	for _, t := range want {
		if !set[t] {
			return false
		}
	}
	return true
}

// ── Validation ─────────────────────────────────────────────────────────────

func TestValidation_ShortCircuitsBeforeRemoteCall(t *testing.T) {
	list := &fakeList{}
	svc := subscribe.NewService(list)

	bad := []string{"", "   ", "not-an-email", "movrr.io"}
	for _, email := range bad {
		_, err := svc.SubscribeNewsletter(context.Background(), subscribe.NewsletterSignup{Email: email})
		var ve *subscribe.ValidationError
		if !errors.As(err, &ve) {
			t.Errorf("SubscribeNewsletter(%q) expected *ValidationError, got %v", email, err)
		}
	}
	if len(list.calls) != 0 {
		t.Errorf("expected zero remote calls for invalid emails, got %d", len(list.calls))
	}
}

func TestValidation_AppliesToAllThreeFlows(t *testing.T) {
	list := &fakeList{}
	svc := subscribe.NewService(list)
	ctx := context.Background()

	var ve *subscribe.ValidationError
	if _, err := svc.JoinWaitlist(ctx, subscribe.WaitlistSignup{Email: "nope"}); !errors.As(err, &ve) {
		t.Errorf("JoinWaitlist: expected validation error, got %v", err)
	}
	if _, err := svc.SubscribeEarlyAccess(ctx, subscribe.EarlyAccessSignup{Email: "nope"}); !errors.As(err, &ve) {
		t.Errorf("SubscribeEarlyAccess: expected validation error, got %v", err)
	}
	if len(list.calls) != 0 {
		t.Errorf("expected zero remote calls, got %d", len(list.calls))
	}
}

// ── Tag sets ───────────────────────────────────────────────────────────────

func TestSubscribeNewsletter_Tags(t *testing.T) {
	list := &fakeList{}
	svc := subscribe.NewService(list)

	if _, err := svc.SubscribeNewsletter(context.Background(), subscribe.NewsletterSignup{
		Email: "rider@movrr.io", FirstName: "Ana",
	}); err != nil {
		t.Fatalf("SubscribeNewsletter: %v", err)
	}

	call := list.calls[0]
	if !hasTags(call.tags, "newsletter", "website") {
		t.Errorf("tags = %v, want newsletter+website", call.tags)
	}
	if call.merge.FirstName != "Ana" {
		t.Errorf("FirstName not forwarded: %+v", call.merge)
	}
}

func TestJoinWaitlist_TagsIncludeInterests(t *testing.T) {
	list := &fakeList{}
	svc := subscribe.NewService(list)

	if _, err := svc.JoinWaitlist(context.Background(), subscribe.WaitlistSignup{
		Email:     "a@b.com",
		Company:   "Acme",
		Interests: []string{"eco", " fleet ", ""},
	}); err != nil {
		t.Fatalf("JoinWaitlist: %v", err)
	}

	call := list.calls[0]
	if !hasTags(call.tags, "waitlist", "launch-partner", "website", "eco", "fleet") {
		t.Errorf("tags = %v, want waitlist set plus trimmed interests", call.tags)
	}
	for _, tag := range call.tags {
		if tag == "" {
			t.Error("empty interest must not become a tag")
		}
	}
	if call.merge.Company != "Acme" {
		t.Errorf("Company not forwarded: %+v", call.merge)
	}
}

func TestSubscribeEarlyAccess_TagsAndMergeFields(t *testing.T) {
	list := &fakeList{}
	svc := subscribe.NewService(list)

	if _, err := svc.SubscribeEarlyAccess(context.Background(), subscribe.EarlyAccessSignup{
		Email: "cto@acme.com", Company: "Acme", Role: "CTO", Budget: "10k-50k",
	}); err != nil {
		t.Fatalf("SubscribeEarlyAccess: %v", err)
	}

	call := list.calls[0]
	if !hasTags(call.tags, "early-access", "website") {
		t.Errorf("tags = %v, want early-access+website", call.tags)
	}
	if call.merge.Role != "CTO" || call.merge.Budget != "10k-50k" {
		t.Errorf("role/budget not forwarded: %+v", call.merge)
	}
}

// ── Idempotence ────────────────────────────────────────────────────────────

func TestSubscribe_RepeatIsSuccess(t *testing.T) {
	list := &fakeList{}
	svc := subscribe.NewService(list)
	in := subscribe.NewsletterSignup{Email: "rider@movrr.io"}

	first, err := svc.SubscribeNewsletter(context.Background(), in)
	if err != nil {
		t.Fatalf("first subscribe: %v", err)
	}
	second, err := svc.SubscribeNewsletter(context.Background(), in)
	if err != nil {
		t.Fatalf("second subscribe must also succeed, got %v", err)
	}
	if first.Email != second.Email || second.Status != "subscribed" {
		t.Errorf("second confirmation differs: %+v vs %+v", first, second)
	}
	if len(list.calls) != 2 {
		t.Errorf("expected one upsert per subscribe call, got %d", len(list.calls))
	}
}

// ── Remote failures ────────────────────────────────────────────────────────

func TestSubscribe_RemoteFailurePropagates(t *testing.T) {
	remoteErr := &mailer.RemoteError{Action: "create member", StatusCode: 500}
	svc := subscribe.NewService(&fakeList{err: remoteErr})

	_, err := svc.SubscribeNewsletter(context.Background(), subscribe.NewsletterSignup{Email: "a@b.com"})
	var re *mailer.RemoteError
	if !errors.As(err, &re) {
		t.Fatalf("expected wrapped *mailer.RemoteError, got %v", err)
	}
}
