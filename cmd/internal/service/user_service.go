package service

import (
	"context"
	"visuall/cmd/internal/domain/entity"
	"visuall/cmd/internal/forms"
	"visuall/cmd/internal/utils/apierror"

	"github.com/labstack/gommon/log"
)

type UserRepository interface {
	FindByID(id int) (*entity.User, error)
	FindByEmail(email string) (*entity.User, error)
	ExistsByEmail(email string) (bool, error)
	Save(user *entity.User) error
}

type FormValidator interface {
	Struct(form any) error
}

type TokenIssuer interface {
	Issue(userID int, name, email string) (string, error)
}

type SessionReleaser interface {
	Release(userID int)
}

type UserResponse struct {
	ID    int    `json:"id"`
	Nome  string `json:"nome"`
	Email string `json:"email"`
}

type RegisterResponse struct {
	User                 *UserResponse `json:"user"`
	ConfirmationRequired bool          `json:"confirmationRequired"`
}

type LoginResponse struct {
	Token string        `json:"token"`
	User  *UserResponse `json:"user"`
}

type DefaultUserService struct {
	UserRepo UserRepository
	Validate FormValidator
	IDP      IdentityProvider
	Tokens   TokenIssuer
	Sessions SessionReleaser
}

func NewUserService(userRepo UserRepository, validate FormValidator, idp IdentityProvider, tokens TokenIssuer, sessions SessionReleaser) *DefaultUserService {
	return &DefaultUserService{UserRepo: userRepo, Validate: validate, IDP: idp, Tokens: tokens, Sessions: sessions}
}

func (u *DefaultUserService) GetUser(id int) (*UserResponse, apierror.ErrorResponse) {
	user, err := u.UserRepo.FindByID(id)
	if err != nil {
		log.Errorf("failed to find user (%d) by id: %v", id, err)
		return nil, apierror.InternalServerError
	}
	if user == nil {
		return nil, apierror.NotFoundError
	}
	return toUserResponse(user), nil
}

// Register creates the account on the identity provider (as well as in our
// database). With Cognito, a verification code is mailed to the user.
func (u *DefaultUserService) Register(ctx context.Context, req *forms.RegisterForm) (*RegisterResponse, apierror.ErrorResponse) {
	if err := u.Validate.Struct(req); err != nil {
		return nil, apierror.FromValidationError(err)
	}

	found, err := u.UserRepo.ExistsByEmail(req.Email)
	if err != nil {
		log.Errorf("failed to check if user already exists: %v", err)
		return nil, apierror.InternalServerError
	}
	if found {
		return nil, apierror.UserAlreadyExistsError
	}

	identity, revert, apierr := u.IDP.SignUp(ctx, req.Name, req.Email, req.Password)
	if apierr != nil {
		return nil, apierr
	}

	user := &entity.User{
		Subject:       identity.Subject,
		Name:          req.Name,
		Email:         req.Email,
		PasswordHash:  identity.PasswordHash,
		EmailVerified: identity.Confirmed,
	}
	if err := u.UserRepo.Save(user); err != nil {
		revert()
		log.Errorf("failed to create user: %v", err)
		return nil, apierror.InternalServerError
	}

	return &RegisterResponse{User: toUserResponse(user), ConfirmationRequired: !identity.Confirmed}, nil
}

func (u *DefaultUserService) Login(ctx context.Context, req *forms.LoginForm) (*LoginResponse, apierror.ErrorResponse) {
	if err := u.Validate.Struct(req); err != nil {
		return nil, apierror.FromValidationError(err)
	}

	user, err := u.UserRepo.FindByEmail(req.Email)
	if err != nil {
		log.Errorf("failed to fetch user from database: %v", err)
		return nil, apierror.InternalServerError
	}
	if user == nil {
		return nil, apierror.IDPUserNotFoundError
	}

	if apierr := u.IDP.SignIn(ctx, user, req.Password); apierr != nil {
		return nil, apierr
	}

	signed, err := u.Tokens.Issue(user.ID, user.Name, user.Email)
	if err != nil {
		log.Errorf("failed to issue token for user (%d): %v", user.ID, err)
		return nil, apierror.InternalServerError
	}
	return &LoginResponse{Token: signed, User: toUserResponse(user)}, nil
}

// Logout drops the in-memory session of the user and stops its sweeper. The
// token itself stays valid until it expires.
func (u *DefaultUserService) Logout(userID int) apierror.ErrorResponse {
	if userID <= 0 {
		return apierror.InvalidAuthTokenError
	}
	u.Sessions.Release(userID)
	return nil
}

func (u *DefaultUserService) ConfirmSignup(ctx context.Context, req *forms.ConfirmForm) apierror.ErrorResponse {
	if err := u.Validate.Struct(req); err != nil {
		return apierror.FromValidationError(err)
	}

	user, err := u.UserRepo.FindByEmail(req.Email)
	if err != nil {
		log.Errorf("failed to fetch user from database: %v", err)
		return apierror.InternalServerError
	}
	if user == nil {
		return apierror.IDPUserNotFoundError
	}
	if user.EmailVerified {
		return apierror.UserAlreadyConfirmedError
	}

	if apierr := u.IDP.Confirm(ctx, req.Email, req.Code); apierr != nil {
		return apierr
	}

	user.EmailVerified = true
	if err := u.UserRepo.Save(user); err != nil {
		log.Errorf("failed to update user (%d) verified status: %v", user.ID, err)
	}
	return nil
}

func toUserResponse(user *entity.User) *UserResponse {
	return &UserResponse{ID: user.ID, Nome: user.Name, Email: user.Email}
}
