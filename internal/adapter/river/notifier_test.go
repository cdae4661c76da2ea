package river_test

import (
	"context"
	"database/sql"
	"errors"
	"strings"
	"sync"
	"testing"
	"time"

	goriver "github.com/riverqueue/river"

	_ "modernc.org/sqlite"

	riveradapter "github.com/neomorfeo/devportal/internal/adapter/river"
	"github.com/neomorfeo/devportal/internal/domain"
)

type fakeDeliverer struct {
	mu   sync.Mutex
	sent []domain.Email
	err  error
}

func (d *fakeDeliverer) Deliver(_ context.Context, e domain.Email) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.err != nil {
		return d.err
	}
	d.sent = append(d.sent, e)
	return nil
}

func (d *fakeDeliverer) emails() []domain.Email {
	d.mu.Lock()
	defer d.mu.Unlock()
	return append([]domain.Email(nil), d.sent...)
}

func setupTestDB(t *testing.T) *sql.DB {
	t.Helper()

	dbPath := t.TempDir() + "/river_test.db"
	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		t.Fatalf("opening test db: %v", err)
	}
	db.SetMaxOpenConns(1)
	t.Cleanup(func() { db.Close() })

	if _, err := db.Exec("PRAGMA journal_mode=WAL"); err != nil {
		t.Fatalf("setting WAL: %v", err)
	}

	return db
}

// startClient sets up and starts a River client, returning it with a
// subscription to the given event kinds.
func startClient(t *testing.T, deliverer riveradapter.Deliverer, kinds ...goriver.EventKind) (*riveradapter.Client, <-chan *goriver.Event) {
	t.Helper()
	ctx := context.Background()

	client, err := riveradapter.Setup(ctx, setupTestDB(t), deliverer)
	if err != nil {
		t.Fatalf("river setup: %v", err)
	}

	// Subscribe before starting so we don't miss events.
	events, cancel := client.Subscribe(kinds...)
	t.Cleanup(cancel)

	if err := client.Start(ctx); err != nil {
		t.Fatalf("river start: %v", err)
	}
	t.Cleanup(func() {
		stopCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := client.Stop(stopCtx); err != nil {
			t.Errorf("river stop: %v", err)
		}
	})

	return client, events
}

func waitEvent(t *testing.T, events <-chan *goriver.Event) *goriver.Event {
	t.Helper()
	select {
	case event := <-events:
		return event
	case <-time.After(5 * time.Second):
		t.Fatal("timed out waiting for job event")
		return nil
	}
}

func TestNotifier_Send_DeliversEmail(t *testing.T) {
	deliverer := &fakeDeliverer{}
	client, events := startClient(t, deliverer, goriver.EventKindJobCompleted)
	notifier := riveradapter.NewNotifier(client, "admin@portal.dev")

	email := domain.Email{
		To:       "bob@y.com",
		Subject:  "Invitation to vendor V1",
		FromName: "Developer Portal",
		HTMLBody: "<p>join us</p>",
	}
	if err := notifier.Send(context.Background(), email); err != nil {
		t.Fatalf("Send failed: %v", err)
	}

	event := waitEvent(t, events)
	if event.Job.Kind != "email.send" {
		t.Errorf("job kind = %q, want %q", event.Job.Kind, "email.send")
	}

	sent := deliverer.emails()
	if len(sent) != 1 || sent[0] != email {
		t.Errorf("delivered = %+v, want %+v", sent, email)
	}
}

func TestNotifier_Send_PreservesEncodedArgs(t *testing.T) {
	client, events := startClient(t, &fakeDeliverer{}, goriver.EventKindJobCompleted)
	notifier := riveradapter.NewNotifier(client, "")

	if err := notifier.Send(context.Background(), domain.Email{To: "bob@y.com", Subject: "Removal from vendor V1"}); err != nil {
		t.Fatalf("Send failed: %v", err)
	}

	args := string(waitEvent(t, events).Job.EncodedArgs)
	for _, want := range []string{`"to":"bob@y.com"`, `"subject":"Removal from vendor V1"`} {
		if !strings.Contains(args, want) {
			t.Errorf("encoded args missing %s, got: %s", want, args)
		}
	}
}

func TestNotifier_ApproveVendor_GoesToAdmin(t *testing.T) {
	deliverer := &fakeDeliverer{}
	client, events := startClient(t, deliverer, goriver.EventKindJobCompleted)
	notifier := riveradapter.NewNotifier(client, "admin@portal.dev")

	err := notifier.ApproveVendor(context.Background(), "_v1", "Acme", domain.Contact{Name: "Alice", Email: "alice@x.com"})
	if err != nil {
		t.Fatalf("ApproveVendor failed: %v", err)
	}
	waitEvent(t, events)

	sent := deliverer.emails()
	if len(sent) != 1 {
		t.Fatalf("delivered %d emails, want 1", len(sent))
	}
	if sent[0].To != "admin@portal.dev" {
		t.Errorf("to = %q, want admin", sent[0].To)
	}
	if !strings.Contains(sent[0].HTMLBody, "alice@x.com") {
		t.Errorf("body should name the requester: %s", sent[0].HTMLBody)
	}
}

func TestNotifier_ApproveJoinVendor_GoesToAdmin(t *testing.T) {
	deliverer := &fakeDeliverer{}
	client, events := startClient(t, deliverer, goriver.EventKindJobCompleted)
	notifier := riveradapter.NewNotifier(client, "admin@portal.dev")

	if err := notifier.ApproveJoinVendor(context.Background(), domain.JoinRequest{Email: "bob@y.com", Vendor: "V1"}); err != nil {
		t.Fatalf("ApproveJoinVendor failed: %v", err)
	}
	waitEvent(t, events)

	sent := deliverer.emails()
	if len(sent) != 1 || sent[0].Subject != "bob@y.com asks to join vendor V1" {
		t.Errorf("delivered = %+v", sent)
	}
}

func TestNotifier_AdminNoticeWithoutAdminIsDropped(t *testing.T) {
	deliverer := &fakeDeliverer{}
	client, _ := startClient(t, deliverer, goriver.EventKindJobCompleted)
	notifier := riveradapter.NewNotifier(client, "")

	if err := notifier.ApproveJoinVendor(context.Background(), domain.JoinRequest{Email: "bob@y.com", Vendor: "V1"}); err != nil {
		t.Fatalf("ApproveJoinVendor failed: %v", err)
	}

	res, err := client.JobList(context.Background(), goriver.NewJobListParams())
	if err != nil {
		t.Fatalf("JobList failed: %v", err)
	}
	if len(res.Jobs) != 0 {
		t.Errorf("enqueued %d jobs, want 0", len(res.Jobs))
	}
}

func TestEmailWorker_FailureIsRetried(t *testing.T) {
	deliverer := &fakeDeliverer{err: errors.New("smtp down")}
	client, events := startClient(t, deliverer, goriver.EventKindJobFailed)
	notifier := riveradapter.NewNotifier(client, "")

	if err := notifier.Send(context.Background(), domain.Email{To: "bob@y.com"}); err != nil {
		t.Fatalf("Send failed: %v", err)
	}

	event := waitEvent(t, events)
	if event.Job.Attempt != 1 {
		t.Errorf("attempt = %d, want 1", event.Job.Attempt)
	}
	if event.Job.MaxAttempts != 5 {
		t.Errorf("max attempts = %d, want 5", event.Job.MaxAttempts)
	}
	if len(event.Job.Errors) == 0 || !strings.Contains(event.Job.Errors[0].Error, "smtp down") {
		t.Errorf("job errors = %+v", event.Job.Errors)
	}
}
