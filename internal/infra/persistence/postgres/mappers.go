package postgres

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"

	"restapi/internal/domain/entity"
	"restapi/internal/infra/persistence/model"
)

func toUserDomain(m *model.UserModel) *entity.User {
	if m == nil {
		return nil
	}

	user := &entity.User{
		ID:           m.ID,
		FirstName:    m.FirstName,
		LastName:     m.LastName,
		Email:        m.Email,
		Phone:        derefString(m.Phone),
		PasswordHash: m.Password,
		Role:         entity.RoleOrDefault(m.Role),
		Gender:       m.Gender,
		BirthDate:    m.BirthDate,
		Bio:          m.Bio,
		Image:        m.Image,
		Active:       m.ActiveFlag,
		Verified:     m.VerifiedFlag,
		Deleted:      m.Deleted,
		DeletedAt:    m.DeletedAt,
		DeletedBy:    m.DeletedBy,
		CreatedAt:    m.CreatedAt,
		UpdatedAt:    m.UpdatedAt,
		Activation:   toTimedToken(m.ActivationToken, m.ActivationExpiresAt),
		Reset:        toTimedToken(m.ResetToken, m.ResetExpiresAt),
	}

	for i := range m.Identities {
		user.Identities = append(user.Identities, *toIdentityDomain(&m.Identities[i]))
	}
	for i := range m.Addresses {
		user.Addresses = append(user.Addresses, toAddressDomain(&m.Addresses[i]))
	}

	return user
}

func fromUserDomain(u *entity.User) *model.UserModel {
	m := &model.UserModel{
		ID:           u.ID,
		FirstName:    u.FirstName,
		LastName:     u.LastName,
		Email:        u.Email,
		Phone:        optionalString(u.Phone),
		Password:     u.PasswordHash,
		Role:         u.Role.String(),
		Gender:       u.Gender,
		BirthDate:    u.BirthDate,
		Bio:          u.Bio,
		Image:        u.Image,
		ActiveFlag:   u.Active,
		VerifiedFlag: u.Verified,
		Deleted:      u.Deleted,
		DeletedAt:    u.DeletedAt,
		DeletedBy:    u.DeletedBy,
		CreatedAt:    u.CreatedAt,
		UpdatedAt:    u.UpdatedAt,
	}
	if u.Activation != nil {
		m.ActivationToken = optionalString(u.Activation.Token)
		m.ActivationExpiresAt = &u.Activation.ExpireAt
	}
	if u.Reset != nil {
		m.ResetToken = optionalString(u.Reset.Token)
		m.ResetExpiresAt = &u.Reset.ExpireAt
	}

	return m
}

// userUpdateColumns lists every mutable column so zero values (cleared tokens,
// false flags) are written too.
func userUpdateColumns(m *model.UserModel) map[string]any {
	return map[string]any{
		"first_name":            m.FirstName,
		"last_name":             m.LastName,
		"email":                 m.Email,
		"phone":                 m.Phone,
		"password":              m.Password,
		"role":                  m.Role,
		"gender":                m.Gender,
		"birth_date":            m.BirthDate,
		"bio":                   m.Bio,
		"image":                 m.Image,
		"activation_token":      m.ActivationToken,
		"activation_expires_at": m.ActivationExpiresAt,
		"reset_token":           m.ResetToken,
		"reset_expires_at":      m.ResetExpiresAt,
		"active_flag":           m.ActiveFlag,
		"verified_flag":         m.VerifiedFlag,
		"updated_at":            m.UpdatedAt,
	}
}

func toIdentityDomain(m *model.IdentityModel) *entity.Identity {
	return &entity.Identity{
		ID:          m.ID,
		UserID:      m.UserID,
		Provider:    m.Provider,
		ExternalID:  m.ExternalID,
		AccessToken: m.AccessToken,
		Raw:         map[string]any(m.RawProfile),
		CreatedAt:   m.CreatedAt,
	}
}

func fromIdentityDomain(i *entity.Identity) *model.IdentityModel {
	return &model.IdentityModel{
		ID:          i.ID,
		UserID:      i.UserID,
		Provider:    i.Provider,
		ExternalID:  i.ExternalID,
		AccessToken: i.AccessToken,
		RawProfile:  datatypes.JSONMap(i.Raw),
		CreatedAt:   i.CreatedAt,
	}
}

func toRefreshSessionDomain(m *model.RefreshSessionModel) *entity.RefreshSession {
	return &entity.RefreshSession{
		ID:               m.ID,
		UserID:           m.UserID,
		TokenHash:        m.TokenHash,
		RefreshTokenHash: m.RefreshTokenHash,
		ExpiresAt:        m.ExpiresAt,
		IsActive:         m.IsActive,
		CreatedAt:        m.CreatedAt,
		UpdatedAt:        m.UpdatedAt,
	}
}

func fromRefreshSessionDomain(s *entity.RefreshSession) *model.RefreshSessionModel {
	return &model.RefreshSessionModel{
		ID:               s.ID,
		UserID:           s.UserID,
		TokenHash:        s.TokenHash,
		RefreshTokenHash: s.RefreshTokenHash,
		ExpiresAt:        s.ExpiresAt,
		IsActive:         s.IsActive,
		CreatedAt:        s.CreatedAt,
		UpdatedAt:        s.UpdatedAt,
	}
}

func toAddressDomain(m *model.AddressModel) *entity.Address {
	if m == nil {
		return nil
	}

	return &entity.Address{
		ID:        m.ID,
		UserID:    m.UserID,
		Street:    m.Street,
		Area:      m.Area,
		City:      m.City,
		State:     m.State,
		Landmark:  m.Landmark,
		Pincode:   m.Pincode,
		Latitude:  m.Lat,
		Longitude: m.Long,
		Tag:       m.Tag,
		User:      toUserDomain(m.User),
		Deleted:   m.Deleted,
		CreatedAt: m.CreatedAt,
		UpdatedAt: m.UpdatedAt,
	}
}

func fromAddressDomain(a *entity.Address) *model.AddressModel {
	return &model.AddressModel{
		ID:        a.ID,
		UserID:    a.UserID,
		Street:    a.Street,
		Area:      a.Area,
		City:      a.City,
		State:     a.State,
		Landmark:  a.Landmark,
		Pincode:   a.Pincode,
		Lat:       a.Latitude,
		Long:      a.Longitude,
		Tag:       a.Tag,
		Deleted:   a.Deleted,
		CreatedAt: a.CreatedAt,
		UpdatedAt: a.UpdatedAt,
	}
}

func toActivityDomain(m *model.ActivityModel) *entity.Activity {
	activity := &entity.Activity{
		ID:      m.ID,
		UserID:  m.UserID,
		Label:   m.Activity,
		Message: m.Message,
		Action: entity.ActivityAction{
			Module: m.ActionModule,
		},
		User:      toUserDomain(m.User),
		Deleted:   m.Deleted,
		CreatedAt: m.CreatedAt,
		UpdatedAt: m.UpdatedAt,
	}
	if m.ActionTargetID != nil {
		activity.Action.TargetID = *m.ActionTargetID
	}

	return activity
}

func fromActivityDomain(a *entity.Activity) *model.ActivityModel {
	m := &model.ActivityModel{
		ID:           a.ID,
		UserID:       a.UserID,
		Activity:     a.Label,
		ActionModule: a.Action.Module,
		Message:      a.Message,
		Deleted:      a.Deleted,
		CreatedAt:    a.CreatedAt,
		UpdatedAt:    a.UpdatedAt,
	}
	if a.Action.TargetID != uuid.Nil {
		target := a.Action.TargetID
		m.ActionTargetID = &target
	}

	return m
}

func toTimedToken(token *string, expireAt *time.Time) *entity.TimedToken {
	if token == nil || *token == "" {
		return nil
	}

	timed := &entity.TimedToken{Token: *token}
	if expireAt != nil {
		timed.ExpireAt = *expireAt
	}

	return timed
}

func optionalString(s string) *string {
	if s == "" {
		return nil
	}

	return &s
}

func derefString(s *string) string {
	if s == nil {
		return ""
	}

	return *s
}

// newID returns a time-ordered identifier for new rows.
func newID() uuid.UUID {
	id, err := uuid.NewV7()
	if err != nil {
		return uuid.New()
	}

	return id
}
