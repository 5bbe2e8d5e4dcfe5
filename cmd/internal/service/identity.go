package service

import (
	"context"
	"errors"
	"visuall/cmd/internal/domain/entity"
	cognitoclient "visuall/cmd/internal/integration/aws/cognito"
	"visuall/cmd/internal/utils/apierror"

	"github.com/aws/smithy-go"
	"github.com/google/uuid"
	"github.com/labstack/gommon/log"
	"golang.org/x/crypto/bcrypt"
)

// Identity is what an identity provider hands back after a signup.
type Identity struct {
	Subject      string
	PasswordHash string
	Confirmed    bool
}

type IdentityProvider interface {
	SignUp(ctx context.Context, name, email, password string) (*Identity, func(), apierror.ErrorResponse)
	SignIn(ctx context.Context, user *entity.User, password string) apierror.ErrorResponse
	Confirm(ctx context.Context, email, code string) apierror.ErrorResponse
}

// LocalIdentityProvider keeps bcrypt hashes in our own database. Accounts
// are confirmed on signup.
type LocalIdentityProvider struct {
	cost int
}

func NewLocalIdentityProvider(cost int) *LocalIdentityProvider {
	if cost < bcrypt.MinCost {
		cost = bcrypt.DefaultCost
	}
	return &LocalIdentityProvider{cost: cost}
}

func (l *LocalIdentityProvider) SignUp(_ context.Context, _, email, password string) (*Identity, func(), apierror.ErrorResponse) {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), l.cost)
	if err != nil {
		if errors.Is(err, bcrypt.ErrPasswordTooLong) {
			return nil, nil, apierror.IDPInvalidPasswordError
		}
		log.Errorf("failed to hash password of user (%s): %v", email, err)
		return nil, nil, apierror.InternalServerError
	}

	identity := &Identity{
		Subject:      uuid.NewString(),
		PasswordHash: string(hash),
		Confirmed:    true,
	}
	return identity, func() {}, nil
}

func (l *LocalIdentityProvider) SignIn(_ context.Context, user *entity.User, password string) apierror.ErrorResponse {
	err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password))
	if err == nil {
		return nil
	}
	if errors.Is(err, bcrypt.ErrMismatchedHashAndPassword) {
		return apierror.IDPCredentialsMismatchError
	}
	log.Errorf("failed to check password of user (%d): %v", user.ID, err)
	return apierror.InternalServerError
}

func (l *LocalIdentityProvider) Confirm(context.Context, string, string) apierror.ErrorResponse {
	return apierror.UserAlreadyConfirmedError
}

// CognitoIdentityProvider delegates credentials to a Cognito user pool;
// nothing secret is stored locally.
type CognitoIdentityProvider struct {
	Cognito cognitoclient.CognitoInterface
}

func NewCognitoIdentityProvider(cogClient cognitoclient.CognitoInterface) *CognitoIdentityProvider {
	return &CognitoIdentityProvider{Cognito: cogClient}
}

func (p *CognitoIdentityProvider) SignUp(ctx context.Context, name, email, password string) (*Identity, func(), apierror.ErrorResponse) {
	cogUser := &cognitoclient.User{Email: email, Password: password, Name: name}
	sub, apierr, revert := handleUserSignup(ctx, p.Cognito, cogUser)
	if apierr != nil {
		return nil, nil, apierr
	}
	return &Identity{Subject: sub}, revert, nil
}

func (p *CognitoIdentityProvider) SignIn(ctx context.Context, user *entity.User, password string) apierror.ErrorResponse {
	credentials := &cognitoclient.UserLogin{Email: user.Email, Password: password}
	_, apierr := handleUserSignin(ctx, p.Cognito, credentials)
	return apierr
}

func (p *CognitoIdentityProvider) Confirm(ctx context.Context, email, code string) apierror.ErrorResponse {
	confirms := &cognitoclient.UserConfirmation{Email: email, Code: code}
	return handleSignupConfirmation(ctx, p.Cognito, confirms)
}

func handleUserSignup(ctx context.Context, cogClient cognitoclient.CognitoInterface, req *cognitoclient.User) (string, apierror.ErrorResponse, func()) {
	revert := func() {
		if err := cogClient.AdminDeleteUser(context.WithoutCancel(ctx), req.Email); err != nil {
			log.Errorf("failed to revert signup of user (%s): %v", req.Email, err)
		}
	}

	sub, err := cogClient.SignUp(ctx, req)
	if err == nil {
		return sub, nil, revert
	}

	var apiErr smithy.APIError
	if errors.As(err, &apiErr) {
		switch apiErr.ErrorCode() {
		case "InvalidPasswordException":
			return "", apierror.IDPInvalidPasswordError, revert
		case "UsernameExistsException":
			return "", apierror.IDPExistingEmailError, revert
		default:
			log.Errorf("signup failed for user (%s): %s - %s", req.Email, apiErr.ErrorCode(), apiErr.ErrorMessage())
			return "", apierror.InternalServerError, revert
		}
	}

	log.Errorf("failed to signup user (%s): %v", req.Email, err)
	return "", apierror.InternalServerError, revert
}

func handleUserSignin(ctx context.Context, cogClient cognitoclient.CognitoInterface, req *cognitoclient.UserLogin) (*cognitoclient.AuthCreate, apierror.ErrorResponse) {
	auth, err := cogClient.SignIn(ctx, req)
	if err == nil {
		return auth, nil
	}

	var apiErr smithy.APIError
	if errors.As(err, &apiErr) {
		switch apiErr.ErrorCode() {
		case "UserNotFoundException":
			return nil, apierror.IDPUserNotFoundError
		case "UserNotConfirmedException":
			return nil, apierror.IDPUserNotConfirmedError
		case "NotAuthorizedException":
			return nil, apierror.IDPCredentialsMismatchError
		default:
			log.Errorf("signin failed for user (%s): %s - %s", req.Email, apiErr.ErrorCode(), apiErr.ErrorMessage())
			return nil, apierror.InternalServerError
		}
	}

	log.Errorf("failed to signin user (%s): %v", req.Email, err)
	return nil, apierror.InternalServerError
}

func handleSignupConfirmation(ctx context.Context, cogClient cognitoclient.CognitoInterface, req *cognitoclient.UserConfirmation) apierror.ErrorResponse {
	err := cogClient.ConfirmAccount(ctx, req)
	if err == nil {
		return nil
	}

	var apiErr smithy.APIError
	if errors.As(err, &apiErr) {
		switch apiErr.ErrorCode() {
		case "CodeMismatchException":
			return apierror.IDPConfirmCodeMismatchError
		case "ExpiredCodeException":
			return apierror.IDPConfirmCodeExpiredError
		case "UserNotFoundException":
			return apierror.IDPUserNotFoundError
		default:
			log.Errorf("confirmation failed for user (%s): %s - %s", req.Email, apiErr.ErrorCode(), apiErr.ErrorMessage())
			return apierror.InternalServerError
		}
	}

	log.Errorf("failed to confirm user (%s): %v", req.Email, err)
	return apierror.InternalServerError
}
