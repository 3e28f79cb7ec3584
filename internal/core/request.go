package core

import (
	"errors"
	"fmt"
	"strings"

	"github.com/go-playground/validator/v10"

	"github.com/vovakirdan/wirechat-relay/internal/store"
)

var validate = validator.New()

// SendRequest is a message event received from a client. The sender is
// never part of it; it comes from the connection's credential.
type SendRequest struct {
	Type        store.AddressingType `validate:"required,oneof=user group"`
	Target      int64                `validate:"gt=0"`
	Content     string               `validate:"required"`
	ContentType store.ContentType    `validate:"omitempty,oneof=text image file sticker"`
	ReferenceID *int64               `validate:"omitempty,gt=0"`
}

func (r *SendRequest) validate() error {
	if err := validate.Struct(r); err != nil {
		var verrs validator.ValidationErrors
		if errors.As(err, &verrs) && len(verrs) > 0 {
			return fmt.Errorf("%s is invalid (%s)", strings.ToLower(verrs[0].Field()), verrs[0].Tag())
		}
		return err
	}
	if strings.TrimSpace(r.Content) == "" {
		return errors.New("content is required")
	}
	return nil
}

func (r *SendRequest) contentType() store.ContentType {
	if r.ContentType == "" {
		return store.ContentText
	}
	return r.ContentType
}
