package services

import (
	"context"
	"errors"
	"io"

	"github.com/brocante/apiserver/internal/store"
	"github.com/brocante/apiserver/types"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// UserRepository defines persistence operations for users.
type UserRepository interface {
	GetByID(ctx context.Context, id int64) (types.User, error)
	GetByEmail(ctx context.Context, email string) (types.User, error)
	GetByToken(ctx context.Context, token string) (types.User, error)
	Create(ctx context.Context, user types.User) (types.User, error)
	UpdateCredentials(ctx context.Context, id int64, hash, salt, token string) error
	List(ctx context.Context) ([]types.User, error)
}

// MediaStore is the media-upload collaborator: it persists an uploaded
// file and returns a reference, and can remove an object again when a
// compensating delete is needed.
type MediaStore interface {
	Upload(ctx context.Context, key string, r io.Reader, size int64, contentType string) (types.ImageRef, error)
	Delete(ctx context.Context, key string) error
}

// UploadFile is an inbound multipart file as seen by the services.
type UploadFile struct {
	Filename    string
	ContentType string
	Size        int64
	Content     io.Reader
}

// Credentials is what signup and login hand back to the client.
type Credentials struct {
	ID      int64         `json:"id"`
	Token   string        `json:"token"`
	Account types.Account `json:"account"`
}

// SignupInput carries the signup fields. Avatar is optional.
type SignupInput struct {
	Email    string
	Username string
	Phone    string
	Password string
	Avatar   *UploadFile
}

// AccountService encapsulates account use-cases: signup, login,
// password rotation, identity resolution, and profile reads.
type AccountService struct {
	users UserRepository
	media MediaStore
	log   *zap.Logger
}

func NewAccountService(users UserRepository, media MediaStore, log *zap.Logger) *AccountService {
	return &AccountService{users: users, media: media, log: log}
}

// Signup creates a new user. Email, username, and password are
// required; a duplicate email aborts before any record is created.
func (s *AccountService) Signup(ctx context.Context, in SignupInput) (Credentials, error) {
	if in.Email == "" || in.Username == "" || in.Password == "" {
		return Credentials{}, ErrMissingParameters
	}

	if _, err := s.users.GetByEmail(ctx, in.Email); err == nil {
		return Credentials{}, ErrEmailTaken
	} else if !errors.Is(err, store.ErrNotFound) {
		return Credentials{}, err
	}

	token, err := newCredential()
	if err != nil {
		return Credentials{}, err
	}
	salt, err := newCredential()
	if err != nil {
		return Credentials{}, err
	}

	user := types.User{
		Email: in.Email,
		Account: types.Account{
			Username: in.Username,
			Phone:    in.Phone,
		},
		PasswordHash: hashPassword(in.Password, salt),
		PasswordSalt: salt,
		Token:        token,
	}

	var avatarKey string
	if in.Avatar != nil {
		avatarKey = "avatars/" + uuid.NewString() + "/" + in.Avatar.Filename
		ref, err := s.media.Upload(ctx, avatarKey, in.Avatar.Content, in.Avatar.Size, in.Avatar.ContentType)
		if err != nil {
			return Credentials{}, err
		}
		user.Account.Avatar = &ref
	}

	saved, err := s.users.Create(ctx, user)
	if err != nil {
		if avatarKey != "" {
			if derr := s.media.Delete(ctx, avatarKey); derr != nil {
				s.log.Warn("orphaned avatar object left in media store",
					zap.String("key", avatarKey), zap.Error(derr))
			}
		}
		return Credentials{}, err
	}

	return Credentials{ID: saved.ID, Token: saved.Token, Account: saved.Account}, nil
}

// Login verifies the email/password pair and returns the stored
// credentials. The token is not rotated on login.
func (s *AccountService) Login(ctx context.Context, email, password string) (Credentials, error) {
	user, err := s.users.GetByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return Credentials{}, ErrUnknownEmail
		}
		return Credentials{}, err
	}

	if hashPassword(password, user.PasswordSalt) != user.PasswordHash {
		return Credentials{}, ErrWrongPassword
	}

	return Credentials{ID: user.ID, Token: user.Token, Account: user.Account}, nil
}

// Identify resolves a bearer token to the minimal identity attached to
// request contexts. Unknown tokens map to store.ErrNotFound.
func (s *AccountService) Identify(ctx context.Context, token string) (types.Identity, error) {
	user, err := s.users.GetByToken(ctx, token)
	if err != nil {
		return types.Identity{}, err
	}
	return types.Identity{ID: user.ID, Account: user.Account}, nil
}

// UpdatePassword rotates the salt, hash, and token in one write. Any
// bearer of the previous token is implicitly logged out.
func (s *AccountService) UpdatePassword(ctx context.Context, id int64, previous, next string) error {
	if previous == "" || next == "" {
		return ErrMissingParameters
	}

	user, err := s.users.GetByID(ctx, id)
	if err != nil {
		return err
	}

	if hashPassword(previous, user.PasswordSalt) != user.PasswordHash {
		return ErrWrongPreviousPassword
	}
	if hashPassword(next, user.PasswordSalt) == user.PasswordHash {
		return ErrSamePassword
	}

	salt, err := newCredential()
	if err != nil {
		return err
	}
	token, err := newCredential()
	if err != nil {
		return err
	}

	return s.users.UpdateCredentials(ctx, id, hashPassword(next, salt), salt, token)
}

// Profile returns the reduced public profile for one user.
func (s *AccountService) Profile(ctx context.Context, id int64) (types.Profile, error) {
	user, err := s.users.GetByID(ctx, id)
	if err != nil {
		return types.Profile{}, err
	}
	return types.ProfileOf(user), nil
}

// Profiles returns the reduced public profiles of every user.
func (s *AccountService) Profiles(ctx context.Context) ([]types.Profile, error) {
	users, err := s.users.List(ctx)
	if err != nil {
		return nil, err
	}
	profiles := make([]types.Profile, 0, len(users))
	for _, user := range users {
		profiles = append(profiles, types.ProfileOf(user))
	}
	return profiles, nil
}
