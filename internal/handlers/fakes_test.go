package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/brocante/apiserver/internal/services"
	"github.com/brocante/apiserver/internal/store"
	"github.com/brocante/apiserver/types"
)

type memUserRepo struct {
	users  map[int64]types.User
	nextID int64
}

func newMemUserRepo() *memUserRepo {
	return &memUserRepo{users: map[int64]types.User{}, nextID: 1}
}

func (m *memUserRepo) GetByID(_ context.Context, id int64) (types.User, error) {
	u, ok := m.users[id]
	if !ok {
		return types.User{}, store.ErrNotFound
	}
	return u, nil
}

func (m *memUserRepo) GetByEmail(_ context.Context, email string) (types.User, error) {
	for _, u := range m.users {
		if u.Email == email {
			return u, nil
		}
	}
	return types.User{}, store.ErrNotFound
}

func (m *memUserRepo) GetByToken(_ context.Context, token string) (types.User, error) {
	for _, u := range m.users {
		if u.Token == token {
			return u, nil
		}
	}
	return types.User{}, store.ErrNotFound
}

func (m *memUserRepo) Create(_ context.Context, user types.User) (types.User, error) {
	user.ID = m.nextID
	m.nextID++
	m.users[user.ID] = user
	return user, nil
}

func (m *memUserRepo) UpdateCredentials(_ context.Context, id int64, hash, salt, token string) error {
	u, ok := m.users[id]
	if !ok {
		return store.ErrNotFound
	}
	u.PasswordHash = hash
	u.PasswordSalt = salt
	u.Token = token
	m.users[id] = u
	return nil
}

func (m *memUserRepo) List(_ context.Context) ([]types.User, error) {
	users := make([]types.User, 0, len(m.users))
	for _, u := range m.users {
		users = append(users, u)
	}
	return users, nil
}

type memOfferRepo struct {
	offers     map[int64]types.Offer
	nextID     int64
	lastParams store.SearchParams
}

func newMemOfferRepo() *memOfferRepo {
	return &memOfferRepo{offers: map[int64]types.Offer{}, nextID: 1}
}

func (m *memOfferRepo) Search(_ context.Context, params store.SearchParams) ([]types.Offer, int, error) {
	m.lastParams = params
	offers := make([]types.Offer, 0, len(m.offers))
	for _, o := range m.offers {
		offers = append(offers, o)
	}
	return offers, len(offers), nil
}

func (m *memOfferRepo) Get(_ context.Context, id int64) (types.Offer, error) {
	o, ok := m.offers[id]
	if !ok {
		return types.Offer{}, store.ErrNotFound
	}
	return o, nil
}

func (m *memOfferRepo) Create(_ context.Context, offer types.Offer) (types.Offer, error) {
	offer.ID = m.nextID
	m.nextID++
	m.offers[offer.ID] = offer
	return offer, nil
}

type memMedia struct {
	uploads []string
	deletes []string
}

func (m *memMedia) Upload(_ context.Context, key string, _ io.Reader, _ int64, contentType string) (types.ImageRef, error) {
	m.uploads = append(m.uploads, key)
	return types.ImageRef{
		URL:         "http://media.local/test-bucket/" + key,
		Bucket:      "test-bucket",
		Key:         key,
		ContentType: contentType,
	}, nil
}

func (m *memMedia) Delete(_ context.Context, key string) error {
	m.deletes = append(m.deletes, key)
	return nil
}

// testAPI wires the handlers the way the server does, over in-memory
// collaborators.
type testAPI struct {
	router *chi.Mux
	users  *memUserRepo
	offers *memOfferRepo
	media  *memMedia
}

func newTestAPI(t *testing.T) *testAPI {
	t.Helper()

	users := newMemUserRepo()
	offers := newMemOfferRepo()
	media := &memMedia{}

	accounts := services.NewAccountService(users, media, zap.NewNop())
	listings := services.NewListingService(offers, media, nil, "", zap.NewNop())
	auth := RequireAuth(accounts)

	r := chi.NewRouter()
	r.Get("/", Welcome)
	r.NotFound(NotFound)
	UserRouter(r, accounts, auth)
	OfferRouter(r, listings, auth)

	return &testAPI{router: r, users: users, offers: offers, media: media}
}

func decodeBody(rec *httptest.ResponseRecorder, v any) error {
	return json.NewDecoder(rec.Body).Decode(v)
}

func (a *testAPI) do(t *testing.T, req *http.Request) *httptest.ResponseRecorder {
	t.Helper()
	rec := httptest.NewRecorder()
	a.router.ServeHTTP(rec, req)
	return rec
}

// signup registers a user through the API and returns its credentials.
func (a *testAPI) signup(t *testing.T, email, username, password string) services.Credentials {
	t.Helper()

	body := `{"email":"` + email + `","username":"` + username + `","password":"` + password + `"}`
	req := httptest.NewRequest(http.MethodPost, "/user/signup", bytes.NewBufferString(body))
	req.Header.Set("Content-Type", "application/json")

	rec := a.do(t, req)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	var creds services.Credentials
	require.NoError(t, decodeBody(rec, &creds))
	return creds
}

// multipartBody builds a multipart form with the given fields and one
// file part.
func multipartBody(t *testing.T, fields map[string]string, fileField, filename, content string) (*bytes.Buffer, string) {
	t.Helper()

	var buf bytes.Buffer
	writer := multipart.NewWriter(&buf)
	for k, v := range fields {
		require.NoError(t, writer.WriteField(k, v))
	}
	if fileField != "" {
		part, err := writer.CreateFormFile(fileField, filename)
		require.NoError(t, err)
		_, err = part.Write([]byte(content))
		require.NoError(t, err)
	}
	require.NoError(t, writer.Close())
	return &buf, writer.FormDataContentType()
}
