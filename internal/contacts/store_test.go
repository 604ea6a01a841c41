package contacts

import (
	"context"
	"errors"
	"reflect"
	"testing"

	"github.com/rs/zerolog"

	"contactbook/internal/model"
)

type fakeAPI struct {
	listResp  model.ContactsResponse
	listErr   error
	created   model.Contact
	createErr error
	updated   model.Contact
	updateErr error
	deleteErr error

	lastCreate   model.CreateContactRequest
	lastUpdateID string
	lastUpdate   model.UpdateContactRequest
	lastDeleteID string
	hook         func()
}

func (f *fakeAPI) ListContacts(context.Context) (model.ContactsResponse, error) {
	if f.hook != nil {
		f.hook()
	}
	return f.listResp, f.listErr
}

func (f *fakeAPI) CreateContact(_ context.Context, req model.CreateContactRequest) (model.Contact, error) {
	f.lastCreate = req
	return f.created, f.createErr
}

func (f *fakeAPI) UpdateContact(_ context.Context, id string, req model.UpdateContactRequest) (model.Contact, error) {
	f.lastUpdateID, f.lastUpdate = id, req
	return f.updated, f.updateErr
}

func (f *fakeAPI) DeleteContact(_ context.Context, id string) error {
	f.lastDeleteID = id
	return f.deleteErr
}

func mockContacts() []model.Contact {
	return []model.Contact{
		{
			ID: "1", Name: "John Doe", Email: "john@example.com", Phone: "123-456-7890",
			Owner: "user123", CreatedAt: "2023-01-01T00:00:00.000Z", UpdatedAt: "2023-01-01T00:00:00.000Z",
			Address: "123 Main St",
		},
		{
			ID: "2", Name: "Jane Smith", Email: "jane@example.com", Phone: "098-765-4321",
			Owner: "user123", CreatedAt: "2023-01-01T00:00:00.000Z", UpdatedAt: "2023-01-01T00:00:00.000Z",
			Address: "456 Oak Ave",
		},
	}
}

func seeded(api API) *Store {
	s := New(api, zerolog.Nop())
	s.contacts = mockContacts()
	return s
}

func strPtr(v string) *string { return &v }

func TestStore_InitialState(t *testing.T) {
	s := New(&fakeAPI{}, zerolog.Nop())
	st := s.State()
	if len(st.Contacts) != 0 || st.Contacts == nil || st.IsLoading || st.Error != "" {
		t.Fatalf("unexpected initial state: %+v", st)
	}
}

func TestStore_FetchSuccess(t *testing.T) {
	api := &fakeAPI{listResp: model.ContactsResponse{Success: true, Data: mockContacts()}}
	s := New(api, zerolog.Nop())
	var during State
	api.hook = func() { during = s.State() }

	s.Fetch(context.Background())

	if !during.IsLoading {
		t.Fatalf("expected loading during fetch")
	}
	st := s.State()
	if !reflect.DeepEqual(st.Contacts, mockContacts()) {
		t.Fatalf("expected server list in order, got %+v", st.Contacts)
	}
	if st.IsLoading || st.Error != "" {
		t.Fatalf("unexpected flags: %+v", st)
	}
}

func TestStore_FetchReplacesWholesale(t *testing.T) {
	only := []model.Contact{{ID: "9", Name: "Solo", Email: "s@example.com", Phone: "1"}}
	s := seeded(&fakeAPI{listResp: model.ContactsResponse{Success: true, Data: only}})

	s.Fetch(context.Background())

	if !reflect.DeepEqual(s.State().Contacts, only) {
		t.Fatalf("expected wholesale replace, got %+v", s.State().Contacts)
	}
}

func TestStore_FetchErrorKeepsCollection(t *testing.T) {
	s := seeded(&fakeAPI{listErr: errors.New("Failed to fetch contacts")})

	s.Fetch(context.Background())

	st := s.State()
	if !reflect.DeepEqual(st.Contacts, mockContacts()) {
		t.Fatalf("expected previous collection kept, got %+v", st.Contacts)
	}
	if st.IsLoading || st.Error != "Failed to fetch contacts" {
		t.Fatalf("unexpected flags: %+v", st)
	}
}

func TestStore_FetchUnsuccessfulEnvelope(t *testing.T) {
	s := New(&fakeAPI{listResp: model.ContactsResponse{Success: false}}, zerolog.Nop())
	s.Fetch(context.Background())
	if got := s.State().Error; got != "Failed to fetch contacts" {
		t.Fatalf("expected fallback, got %q", got)
	}
}

func TestStore_CreateAppends(t *testing.T) {
	newContact := model.Contact{
		ID: "3", Name: "New User", Email: "new@example.com", Phone: "555-555-5555",
		Owner: "user123", CreatedAt: "2023-01-01T00:00:00.000Z", UpdatedAt: "2023-01-01T00:00:00.000Z",
		Address: "789 Pine St",
	}
	api := &fakeAPI{created: newContact}
	s := seeded(api)

	got, err := s.Create(context.Background(), model.CreateContactRequest{
		Name: "New User", Email: "new@example.com", Phone: "555-555-5555", Address: "789 Pine St",
	})
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	if got != newContact {
		t.Fatalf("expected returned record to equal server record, got %+v", got)
	}
	st := s.State()
	if len(st.Contacts) != 3 || st.Contacts[2] != newContact {
		t.Fatalf("expected appended record, got %+v", st.Contacts)
	}
	if api.lastCreate.Address != "789 Pine St" {
		t.Fatalf("unexpected payload %+v", api.lastCreate)
	}
}

func TestStore_CreateFailureReturnsError(t *testing.T) {
	boom := errors.New("Email is invalid")
	s := seeded(&fakeAPI{createErr: boom})

	_, err := s.Create(context.Background(), model.CreateContactRequest{Name: "x"})
	if !errors.Is(err, boom) {
		t.Fatalf("expected error returned, got %v", err)
	}
	st := s.State()
	if st.Error != "Email is invalid" || st.IsLoading || len(st.Contacts) != 2 {
		t.Fatalf("unexpected state: %+v", st)
	}
}

func TestStore_UpdateReplacesInPlace(t *testing.T) {
	updated := model.Contact{ID: "1", Name: "John Updated", Email: "john@example.com", Phone: "123-456-7890"}
	api := &fakeAPI{updated: updated}
	s := seeded(api)

	got, err := s.Update(context.Background(), "1", model.UpdateContactRequest{
		Name:  strPtr("John Updated"),
		Email: strPtr("john@example.com"),
		Phone: strPtr("123-456-7890"),
	})
	if err != nil {
		t.Fatalf("Update: %v", err)
	}
	if got != updated {
		t.Fatalf("unexpected returned record %+v", got)
	}
	st := s.State()
	if len(st.Contacts) != 2 {
		t.Fatalf("expected same length, got %d", len(st.Contacts))
	}
	if st.Contacts[0].Name != "John Updated" {
		t.Fatalf("expected first element updated, got %+v", st.Contacts[0])
	}
	if st.Contacts[1] != mockContacts()[1] {
		t.Fatalf("expected other element untouched, got %+v", st.Contacts[1])
	}
	if api.lastUpdateID != "1" {
		t.Fatalf("unexpected id sent %q", api.lastUpdateID)
	}
}

func TestStore_UpdateKeepsIDWhenServerOmitsIt(t *testing.T) {
	s := seeded(&fakeAPI{updated: model.Contact{Name: "Jane Updated"}})

	if _, err := s.Update(context.Background(), "2", model.UpdateContactRequest{Name: strPtr("Jane Updated")}); err != nil {
		t.Fatalf("Update: %v", err)
	}
	c, ok := s.Get("2")
	if !ok || c.Name != "Jane Updated" {
		t.Fatalf("expected element 2 updated, got %+v ok=%v", c, ok)
	}
}

func TestStore_UpdateFailure(t *testing.T) {
	s := seeded(&fakeAPI{updateErr: errors.New("")})

	if _, err := s.Update(context.Background(), "1", model.UpdateContactRequest{}); err == nil {
		t.Fatalf("expected error")
	}
	st := s.State()
	if st.Error != "Failed to update contact" {
		t.Fatalf("expected fallback message, got %q", st.Error)
	}
	if !reflect.DeepEqual(st.Contacts, mockContacts()) {
		t.Fatalf("collection must not change on failure")
	}
}

func TestStore_Delete(t *testing.T) {
	api := &fakeAPI{}
	s := seeded(api)

	if err := s.Delete(context.Background(), "1"); err != nil {
		t.Fatalf("Delete: %v", err)
	}
	st := s.State()
	if len(st.Contacts) != 1 || st.Contacts[0].ID != "2" {
		t.Fatalf("expected only Jane to remain, got %+v", st.Contacts)
	}
	if api.lastDeleteID != "1" {
		t.Fatalf("unexpected id sent %q", api.lastDeleteID)
	}
}

func TestStore_DeleteFailure(t *testing.T) {
	s := seeded(&fakeAPI{deleteErr: errors.New("Contact not found")})

	if err := s.Delete(context.Background(), "1"); err == nil {
		t.Fatalf("expected error")
	}
	st := s.State()
	if len(st.Contacts) != 2 || st.Error != "Contact not found" {
		t.Fatalf("unexpected state: %+v", st)
	}
}

func TestStore_Get(t *testing.T) {
	empty := New(&fakeAPI{}, zerolog.Nop())
	if _, ok := empty.Get("1"); ok {
		t.Fatalf("expected miss before fetch")
	}

	s := seeded(&fakeAPI{})
	c, ok := s.Get("2")
	if !ok || c.Name != "Jane Smith" {
		t.Fatalf("expected Jane, got %+v ok=%v", c, ok)
	}
	if _, ok := s.Get("404"); ok {
		t.Fatalf("expected miss for unknown id")
	}
}

func TestStore_Search(t *testing.T) {
	s := seeded(&fakeAPI{})

	if got := s.Search("  "); len(got) != 2 {
		t.Fatalf("expected all contacts for empty query, got %d", len(got))
	}
	if got := s.Search("JANE"); len(got) != 1 || got[0].ID != "2" {
		t.Fatalf("expected Jane by name, got %+v", got)
	}
	if got := s.Search("456-78"); len(got) != 1 || got[0].ID != "1" {
		t.Fatalf("expected John by phone, got %+v", got)
	}
	if got := s.Search("nobody"); len(got) != 0 {
		t.Fatalf("expected no match, got %+v", got)
	}
	if len(s.State().Contacts) != 2 {
		t.Fatalf("search must not mutate the collection")
	}
}

func TestStore_Reset(t *testing.T) {
	s := seeded(&fakeAPI{deleteErr: errors.New("x")})
	_ = s.Delete(context.Background(), "1")

	s.Reset()

	st := s.State()
	if len(st.Contacts) != 0 || st.Error != "" || st.IsLoading {
		t.Fatalf("unexpected state after reset: %+v", st)
	}
}

func TestStore_StateIsACopy(t *testing.T) {
	s := seeded(&fakeAPI{})
	st := s.State()
	st.Contacts[0].Name = "mutated"
	if c, _ := s.Get("1"); c.Name != "John Doe" {
		t.Fatalf("State must return a copy")
	}
}
