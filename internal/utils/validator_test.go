// internal/utils/validator_test.go
package utils

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestValidAmount(t *testing.T) {
	assert.True(t, ValidAmount(0))
	assert.True(t, ValidAmount(19.99))
	assert.True(t, ValidAmount(100))

	assert.False(t, ValidAmount(-0.01))
	assert.False(t, ValidAmount(10.999))
}

func TestLineTotal(t *testing.T) {
	assert.InDelta(t, 59.97, LineTotal(3, 19.99), 0.0001)
	assert.InDelta(t, 0, LineTotal(0, 19.99), 0.0001)
	// 0.1+0.2 style float drift must not survive the fixed-point math.
	assert.InDelta(t, 0.30, LineTotal(3, 0.10), 0.0001)
}

func TestMoneyRound(t *testing.T) {
	assert.InDelta(t, 16.99, MoneyRound(16.9915), 0.0001)
	assert.InDelta(t, 17.00, MoneyRound(16.995), 0.0001)
}

func TestValidateStructCustomTags(t *testing.T) {
	type form struct {
		Username string  `validate:"required,username"`
		Password string  `validate:"required,strong_password"`
		Price    float64 `validate:"amount"`
	}

	assert.NoError(t, ValidateStruct(&form{
		Username: "valid_user1",
		Password: "Sup3rSecret!",
		Price:    19.99,
	}))

	assert.Error(t, ValidateStruct(&form{
		Username: "no spaces allowed",
		Password: "Sup3rSecret!",
		Price:    19.99,
	}))
	assert.Error(t, ValidateStruct(&form{
		Username: "valid_user1",
		Password: "alllowercase",
		Price:    19.99,
	}))
	assert.Error(t, ValidateStruct(&form{
		Username: "valid_user1",
		Password: "Sup3rSecret!",
		Price:    19.999,
	}))
}

func TestGetValidationErrors(t *testing.T) {
	type form struct {
		Email string `validate:"required,email"`
	}

	err := ValidateStruct(&form{Email: "not-an-email"})
	errs := GetValidationErrors(err)
	assert.Len(t, errs, 1)
	assert.Equal(t, "email", errs[0].Field)
	assert.Equal(t, "email", errs[0].Tag)
}
