package server

import (
	"net/http"
	"strings"

	"failmarket/pkg/types"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/cognitoidentityprovider"
	ctypes "github.com/aws/aws-sdk-go-v2/service/cognitoidentityprovider/types"
)

type registerInput struct {
	Name     string `json:"name"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

type loginInput struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type loginResponse struct {
	AccessToken string `json:"access_token"`
	ExpiresIn   int32  `json:"expires_in"`
}

func (s *Service) handlePostRegister(w http.ResponseWriter, r *http.Request) {
	var input registerInput
	if err := decodeJSON(r, &input); err != nil {
		s.respondDomainError(w, err)
		return
	}

	email := strings.TrimSpace(input.Email)
	if email == "" || input.Password == "" {
		s.respondError(w, http.StatusBadRequest, "email and password are required")
		return
	}

	signUp := &cognitoidentityprovider.SignUpInput{
		ClientId: aws.String(s.config.CognitoClientID),
		Username: aws.String(email), // use email as username
		Password: aws.String(input.Password),
		UserAttributes: []ctypes.AttributeType{
			{Name: aws.String("email"), Value: aws.String(email)},
			{Name: aws.String("name"), Value: aws.String(strings.TrimSpace(input.Name))},
		},
	}

	if _, err := s.cognitoClient.SignUp(r.Context(), signUp); err != nil {
		s.logger.WithError(err).Error("failed to sign up user")
		s.respondError(w, http.StatusBadRequest, "registration failed")
		return
	}

	s.respond(w, http.StatusOK, "registered", nil)
}

func (s *Service) handlePostLogin(w http.ResponseWriter, r *http.Request) {
	var input loginInput
	if err := decodeJSON(r, &input); err != nil {
		s.respondDomainError(w, err)
		return
	}

	auth := &cognitoidentityprovider.InitiateAuthInput{
		AuthFlow: ctypes.AuthFlowTypeUserPasswordAuth,
		ClientId: aws.String(s.config.CognitoClientID),
		AuthParameters: map[string]string{
			"USERNAME": strings.TrimSpace(input.Email),
			"PASSWORD": input.Password,
		},
	}

	resp, err := s.cognitoClient.InitiateAuth(r.Context(), auth)
	if err != nil {
		// NotAuthorizedException, UserNotConfirmedException, etc.
		s.respondError(w, http.StatusUnauthorized, "invalid credentials")
		return
	}

	if resp.AuthenticationResult == nil || resp.AuthenticationResult.AccessToken == nil {
		s.respondError(w, http.StatusUnauthorized, "login failed")
		return
	}

	accessToken := aws.ToString(resp.AuthenticationResult.AccessToken)
	expiresIn := resp.AuthenticationResult.ExpiresIn

	encryptedToken, err := s.cookie.Encode(accessTokenCookieName, accessToken)
	if err != nil {
		s.logger.WithError(err).Error("failed to encrypt access token")
		s.respondError(w, http.StatusInternalServerError, "login failed")
		return
	}

	http.SetCookie(w, &http.Cookie{
		Name:     accessTokenCookieName,
		Value:    encryptedToken,
		HttpOnly: true,
		Secure:   true,
		SameSite: http.SameSiteLaxMode,
		MaxAge:   int(expiresIn),
		Path:     "/",
	})

	s.respond(w, http.StatusOK, "logged in", loginResponse{
		AccessToken: accessToken,
		ExpiresIn:   expiresIn,
	})
}

func (s *Service) handlePostLogout(w http.ResponseWriter, _ *http.Request) {
	http.SetCookie(w, &http.Cookie{
		Name:     accessTokenCookieName,
		Value:    "",
		HttpOnly: true,
		Secure:   true,
		SameSite: http.SameSiteLaxMode,
		Path:     "/",
		MaxAge:   -1,
	})

	s.respond(w, http.StatusOK, "logged out", nil)
}

// publicUser strips private fields from a profile returned for another user.
func publicUser(user *types.User) map[string]any {
	return map[string]any{
		"user_id":       user.UserID,
		"name":          user.Name,
		"nickname":      user.Nickname,
		"profile_image": user.ProfileImage,
		"created_at":    user.CreatedAt,
		"updated_at":    user.UpdatedAt,
	}
}
