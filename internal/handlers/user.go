package handlers

import (
	"encoding/json"
	"errors"
	"mime/multipart"
	"net/http"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/brocante/apiserver/internal/services"
	"github.com/brocante/apiserver/internal/store"
)

const (
	maxMultipartMemory = 32 << 20
	adminSentinel      = "admin"
)

// UserHandler provides the account endpoints: signup, login, password
// rotation, and profile reads.
type UserHandler struct {
	accounts *services.AccountService
}

func NewUserHandler(accounts *services.AccountService) *UserHandler {
	return &UserHandler{accounts: accounts}
}

// UserRouter registers user routes on the given router.
func UserRouter(r chi.Router, accounts *services.AccountService, authMiddleware func(http.Handler) http.Handler) {
	handler := NewUserHandler(accounts)

	r.Post("/user/signup", handler.Signup)
	r.Post("/user/login", handler.Login)
	r.With(authMiddleware).Put("/user/update_password", handler.UpdatePassword)
	r.Get("/user", handler.Profiles)
	r.Get("/user/member/{userID}", handler.Profile)
}

type signupRequest struct {
	Email    string `json:"email"`
	Username string `json:"username"`
	Phone    string `json:"phone"`
	Password string `json:"password"`
}

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type updatePasswordRequest struct {
	PreviousPassword string `json:"previousPassword"`
	NewPassword      string `json:"newPassword"`
}

// Signup creates a new account. The body is either JSON or, when an
// avatar file is attached, multipart form data.
func (h *UserHandler) Signup(w http.ResponseWriter, r *http.Request) {
	input, err := parseSignup(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid request")
		return
	}

	creds, err := h.accounts.Signup(r.Context(), input)
	if err != nil {
		writeError(w, accountStatus(err), err.Error())
		return
	}

	writeJSON(w, http.StatusOK, creds)
}

// Login verifies credentials and returns the stored bearer token.
func (h *UserHandler) Login(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request")
		return
	}

	creds, err := h.accounts.Login(r.Context(), req.Email, req.Password)
	if err != nil {
		writeError(w, accountStatus(err), err.Error())
		return
	}

	writeJSON(w, http.StatusOK, creds)
}

// UpdatePassword rotates the caller's credential material. The token
// issued before this call no longer authenticates afterwards.
func (h *UserHandler) UpdatePassword(w http.ResponseWriter, r *http.Request) {
	identity, err := identityFromContext(r.Context())
	if err != nil {
		writeError(w, http.StatusUnauthorized, "Unauthorized")
		return
	}

	var req updatePasswordRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request")
		return
	}

	if err := h.accounts.UpdatePassword(r.Context(), identity.ID, req.PreviousPassword, req.NewPassword); err != nil {
		writeError(w, accountStatus(err), err.Error())
		return
	}

	writeJSON(w, http.StatusOK, map[string]string{"message": "password updated"})
}

// Profiles serves GET /user: the literal id "admin" returns every
// reduced profile, any other id returns that single profile, and a
// missing id is a bad request.
func (h *UserHandler) Profiles(w http.ResponseWriter, r *http.Request) {
	id := r.URL.Query().Get("id")
	if id == "" {
		writeError(w, http.StatusBadRequest, "id is required")
		return
	}

	if id == adminSentinel {
		profiles, err := h.accounts.Profiles(r.Context())
		if err != nil {
			writeError(w, http.StatusBadRequest, err.Error())
			return
		}
		writeJSON(w, http.StatusOK, profiles)
		return
	}

	userID, err := strconv.ParseInt(id, 10, 64)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid user id")
		return
	}
	h.writeProfile(w, r, userID)
}

// Profile serves GET /user/member/{userID}.
func (h *UserHandler) Profile(w http.ResponseWriter, r *http.Request) {
	userID, err := strconv.ParseInt(chi.URLParam(r, "userID"), 10, 64)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid user id")
		return
	}
	h.writeProfile(w, r, userID)
}

func (h *UserHandler) writeProfile(w http.ResponseWriter, r *http.Request, userID int64) {
	profile, err := h.accounts.Profile(r.Context(), userID)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			// Entity-not-found is an empty payload, not an error.
			writeJSON(w, http.StatusOK, nil)
			return
		}
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, profile)
}

func parseSignup(r *http.Request) (services.SignupInput, error) {
	if !strings.HasPrefix(r.Header.Get("Content-Type"), "multipart/form-data") {
		var req signupRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			return services.SignupInput{}, err
		}
		return services.SignupInput{
			Email:    req.Email,
			Username: req.Username,
			Phone:    req.Phone,
			Password: req.Password,
		}, nil
	}

	if err := r.ParseMultipartForm(maxMultipartMemory); err != nil {
		return services.SignupInput{}, err
	}

	input := services.SignupInput{
		Email:    r.FormValue("email"),
		Username: r.FormValue("username"),
		Phone:    r.FormValue("phone"),
		Password: r.FormValue("password"),
	}

	file, header, err := r.FormFile("avatar")
	switch {
	case err == nil:
		input.Avatar = uploadFile(file, header)
	case errors.Is(err, http.ErrMissingFile):
		// Avatar is optional.
	default:
		return services.SignupInput{}, err
	}

	return input, nil
}

func uploadFile(file multipart.File, header *multipart.FileHeader) *services.UploadFile {
	return &services.UploadFile{
		Filename:    header.Filename,
		ContentType: header.Header.Get("Content-Type"),
		Size:        header.Size,
		Content:     file,
	}
}

func accountStatus(err error) int {
	switch {
	case errors.Is(err, services.ErrEmailTaken):
		return http.StatusConflict
	case errors.Is(err, services.ErrUnknownEmail), errors.Is(err, services.ErrWrongPassword):
		return http.StatusUnauthorized
	default:
		return http.StatusBadRequest
	}
}
