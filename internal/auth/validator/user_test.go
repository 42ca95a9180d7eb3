package validator

import (
	"testing"

	"petcare/pkg/logger"
	"petcare/pkg/model"
	"petcare/pkg/validation"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestUserValidator_Username(t *testing.T) {
	v := NewUserValidator(logger.Discard())

	tests := []struct {
		username string
		valid    bool
	}{
		{"drsmith", true},
		{"staff_01", true},
		{"ab", false},
		{"Dr.Smith", false},
		{"with space", false},
		{"a_very_long_username_over_thirty_chars", false},
	}

	for _, tt := range tests {
		t.Run(tt.username, func(t *testing.T) {
			err := v.Validate(&model.User{
				Username:     tt.username,
				Email:        "user@petcare.test",
				PasswordHash: "hash",
				FirstName:    "Test",
				LastName:     "User",
				Role:         model.RoleStaff,
			})
			if tt.valid {
				assert.NoError(t, err)
				return
			}
			require.Error(t, err)

			var validationErrs validation.ValidationErrors
			require.ErrorAs(t, err, &validationErrs)
			assert.Equal(t, "username", validationErrs[0].Field)
		})
	}
}

func TestUserValidator_Profile(t *testing.T) {
	v := NewUserValidator(logger.Discard())

	err := v.ValidateProfile(&model.UserProfileUpdate{FirstName: "Ann", LastName: "Lee", Email: "bad"})
	require.Error(t, err)
	assert.Equal(t, "Email must be a valid email address", validation.Message(err))

	assert.NoError(t, v.ValidateProfile(&model.UserProfileUpdate{FirstName: "Ann", LastName: "Lee", Email: "ann@petcare.test"}))
}
