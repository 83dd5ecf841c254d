package impl

import (
	"strconv"
	"strings"
	"time"

	"restapi/config"
	"restapi/internal/domain/entity"
	domainerrors "restapi/internal/domain/errors"
	"restapi/internal/domain/repository"
	"restapi/internal/domain/service"
	"restapi/internal/util"

	"github.com/pkg/errors"
)

const activationCodeDigits = 6

// userPreparer applies the write-path transform every user goes through before
// it is persisted.
type userPreparer struct {
	hasher        service.PasswordHasher
	secrets       service.SecretGenerator
	activationTTL time.Duration
	phoneRegion   string
}

func newUserPreparer(cfg *config.Config, hasher service.PasswordHasher, secrets service.SecretGenerator) *userPreparer {
	return &userPreparer{
		hasher:        hasher,
		secrets:       secrets,
		activationTTL: cfg.Auth.ActivationTTL,
		phoneRegion:   cfg.Auth.PhoneRegion,
	}
}

// prepareForSave hashes plainPassword when given, normalizes email, and issues
// an activation code to inactive users that have none.
func (p *userPreparer) prepareForSave(user *entity.User, plainPassword string, now time.Time) error {
	user.Email = util.NormalizeEmail(user.Email)

	if plainPassword != "" {
		if len(plainPassword) > entity.MaxPasswordBytes {
			return domainerrors.ErrValidation.WithFieldErrors(domainerrors.FieldError{
				Field:    "password",
				Location: domainerrors.LocationBody,
				Messages: []string{"Password must be at most " + strconv.Itoa(entity.MaxPasswordBytes) + " bytes"},
			})
		}
		hash, err := p.hasher.Hash(plainPassword)
		if err != nil {
			return errors.Wrap(domainerrors.ErrPasswordHashFailed, err.Error())
		}
		user.PasswordHash = hash
	}

	if !user.Active && user.Activation == nil {
		code, err := p.secrets.NumericCode(activationCodeDigits)
		if err != nil {
			return errors.Wrap(err, "failed to generate activation code")
		}
		user.Activation = &entity.TimedToken{Token: code, ExpireAt: now.Add(p.activationTTL)}
	}

	return nil
}

// normalizePhone converts phone to E.164 or fails with a field error.
func (p *userPreparer) normalizePhone(phone string) (string, error) {
	normalized, err := util.NormalizePhone(phone, p.phoneRegion)
	if err == nil {
		return normalized, nil
	}

	// Plain digit strings that are not dialable in the region are kept verbatim.
	if digits := strings.TrimSpace(phone); strings.Trim(digits, "0123456789") == "" {
		return digits, nil
	}

	return "", domainerrors.ErrValidation.WithFieldErrors(domainerrors.FieldError{
		Field:    "phone",
		Location: domainerrors.LocationBody,
		Messages: []string{"Phone is invalid"},
	})
}

// translateWriteError maps unique violations to DuplicateKey naming the field.
func translateWriteError(err error, message string) error {
	if cv, ok := repository.AsConstraintViolation(err); ok {
		return errors.Wrap(domainerrors.NewDuplicateKeyError(cv.Field), message)
	}

	return errors.Wrap(err, message)
}
