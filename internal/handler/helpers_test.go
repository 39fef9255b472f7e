package handler

import (
	"bytes"
	"context"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"sync"
	"testing"

	"github.com/Abdurahmanit/wanderlust/internal/listing/domain"
	"github.com/Abdurahmanit/wanderlust/internal/middleware"
	"github.com/Abdurahmanit/wanderlust/internal/platform/logger"
	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

const (
	testSession = "3b241101-e2bb-4255-8caf-4136c566a962"
	testUser    = "665f1c2b9d3e4a0012345678"
)

type mockListingService struct {
	mock.Mock
}

func (m *mockListingService) ListListings(ctx context.Context) ([]*domain.Listing, error) {
	args := m.Called(ctx)
	if v := args.Get(0); v != nil {
		return v.([]*domain.Listing), args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *mockListingService) GetListing(ctx context.Context, id string) (*domain.ListingDetails, error) {
	args := m.Called(ctx, id)
	if v := args.Get(0); v != nil {
		return v.(*domain.ListingDetails), args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *mockListingService) GetListingForEdit(ctx context.Context, id string) (*domain.Listing, error) {
	args := m.Called(ctx, id)
	if v := args.Get(0); v != nil {
		return v.(*domain.Listing), args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *mockListingService) CreateListing(ctx context.Context, ownerID string, in domain.ListingInput, image domain.Image) (*domain.Listing, error) {
	args := m.Called(ctx, ownerID, in, image)
	if v := args.Get(0); v != nil {
		return v.(*domain.Listing), args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *mockListingService) UpdateListing(ctx context.Context, id string, patch domain.ListingPatch, image *domain.Image) (*domain.Listing, error) {
	args := m.Called(ctx, id, patch, image)
	if v := args.Get(0); v != nil {
		return v.(*domain.Listing), args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *mockListingService) DeleteListing(ctx context.Context, id string) error {
	return m.Called(ctx, id).Error(0)
}

func (m *mockListingService) SearchListings(ctx context.Context, query string) ([]*domain.Listing, error) {
	args := m.Called(ctx, query)
	if v := args.Get(0); v != nil {
		return v.([]*domain.Listing), args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *mockListingService) FilterListings(ctx context.Context, segment string) ([]*domain.Listing, error) {
	args := m.Called(ctx, segment)
	if v := args.Get(0); v != nil {
		return v.([]*domain.Listing), args.Error(1)
	}
	return nil, args.Error(1)
}

type memFlashStore struct {
	mu      sync.Mutex
	pending map[string]domain.Flash
}

func newMemFlashStore() *memFlashStore {
	return &memFlashStore{pending: map[string]domain.Flash{}}
}

func (s *memFlashStore) AddFlash(_ context.Context, sessionID string, kind domain.FlashKind, message string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	f := s.pending[sessionID]
	switch kind {
	case domain.FlashSuccess:
		f.Success = append(f.Success, message)
	case domain.FlashError:
		f.Error = append(f.Error, message)
	}
	s.pending[sessionID] = f
	return nil
}

func (s *memFlashStore) PopFlash(_ context.Context, sessionID string) (domain.Flash, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	f := s.pending[sessionID]
	delete(s.pending, sessionID)
	return f, nil
}

func (s *memFlashStore) peek(sessionID string) domain.Flash {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.pending[sessionID]
}

type upload struct {
	name        string
	contentType string
	body        []byte
}

type fakeStorage struct {
	uploads []upload
	removed []string
	err     error
}

func (s *fakeStorage) Upload(_ context.Context, name string, r io.Reader, _ int64, contentType string) (domain.Image, error) {
	if s.err != nil {
		return domain.Image{}, s.err
	}
	body, err := io.ReadAll(r)
	if err != nil {
		return domain.Image{}, err
	}
	s.uploads = append(s.uploads, upload{name: name, contentType: contentType, body: body})
	key := "listings/" + name
	return domain.Image{URL: "http://localhost:9000/wanderlust-listings/" + key, Filename: key}, nil
}

func (s *fakeStorage) Remove(_ context.Context, filename string) error {
	s.removed = append(s.removed, filename)
	return nil
}

type fixture struct {
	service *mockListingService
	storage *fakeStorage
	flash   *memFlashStore
	handler *ListingHandler
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	f := &fixture{
		service: &mockListingService{},
		storage: &fakeStorage{},
		flash:   newMemFlashStore(),
	}
	responder := NewResponder(f.flash, logger.NewNop())
	f.handler = NewListingHandler(f.service, f.storage, responder, "pk.test-token", logger.NewNop())
	t.Cleanup(func() { f.service.AssertExpectations(t) })
	return f
}

// serve routes req through a chi router with a session and, when userID is
// set, an authenticated user.
func serve(h http.HandlerFunc, method, pattern string, req *http.Request, userID string) *httptest.ResponseRecorder {
	r := chi.NewRouter()
	r.Use(func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, req *http.Request) {
			ctx := context.WithValue(req.Context(), middleware.SessionIDCtxKey, testSession)
			if userID != "" {
				ctx = context.WithValue(ctx, middleware.UserIDCtxKey, userID)
			}
			next.ServeHTTP(w, req.WithContext(ctx))
		})
	})
	r.MethodFunc(method, pattern, h)

	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)
	return rec
}

type filePart struct {
	name        string
	contentType string
	body        []byte
}

func multipartRequest(t *testing.T, method, target string, fields map[string]string, file *filePart) *http.Request {
	t.Helper()
	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	for k, v := range fields {
		require.NoError(t, mw.WriteField(k, v))
	}
	if file != nil {
		h := make(map[string][]string)
		h["Content-Disposition"] = []string{`form-data; name="listing[image]"; filename="` + file.name + `"`}
		h["Content-Type"] = []string{file.contentType}
		part, err := mw.CreatePart(h)
		require.NoError(t, err)
		_, err = part.Write(file.body)
		require.NoError(t, err)
	}
	require.NoError(t, mw.Close())

	req := httptest.NewRequest(method, target, &buf)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	return req
}

func formRequest(method, target string, fields map[string]string) *http.Request {
	values := url.Values{}
	for k, v := range fields {
		values.Set(k, v)
	}
	req := httptest.NewRequest(method, target, strings.NewReader(values.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	return req
}

func validFields() map[string]string {
	return map[string]string{
		"listing[title]":       "Cozy Cabin",
		"listing[description]": "Wood stove and a lake view",
		"listing[location]":    "Banff",
		"listing[country]":     "Canada",
		"listing[price]":       "1200",
		"listing[type]":        "mountains",
	}
}
