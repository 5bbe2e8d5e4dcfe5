package service

import (
	"visuall/cmd/internal/domain/entity"
	"visuall/cmd/internal/forms"
	"visuall/cmd/internal/utils"
	"visuall/cmd/internal/utils/apierror"

	"github.com/labstack/gommon/log"
)

type ContactRepository interface {
	Save(msg *entity.ContactMessage) error
}

type ContactResponse struct {
	ID        int    `json:"id"`
	Assunto   string `json:"assunto"`
	CreatedAt string `json:"created_at"`
}

type DefaultContactService struct {
	ContactRepo ContactRepository
	Validate    FormValidator
}

func NewContactService(contactRepo ContactRepository, validate FormValidator) *DefaultContactService {
	return &DefaultContactService{ContactRepo: contactRepo, Validate: validate}
}

func (s *DefaultContactService) SendMessage(req *forms.ContactForm) (*ContactResponse, apierror.ErrorResponse) {
	if err := s.Validate.Struct(req); err != nil {
		return nil, apierror.FromValidationError(err)
	}

	phone := req.Phone
	if phone != nil && *phone == "" {
		phone = nil
	}

	msg := &entity.ContactMessage{
		Name:    req.Name,
		Email:   req.Email,
		Phone:   phone,
		Subject: req.Subject,
		Message: req.Message,
	}
	if err := s.ContactRepo.Save(msg); err != nil {
		log.Errorf("failed to store contact message from %s: %v", req.Email, err)
		return nil, apierror.InternalServerError
	}

	return &ContactResponse{
		ID:        msg.ID,
		Assunto:   msg.Subject,
		CreatedAt: utils.FormatEpoch(msg.CreatedAt),
	}, nil
}
