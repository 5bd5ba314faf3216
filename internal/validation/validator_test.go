package validation

import (
	"errors"
	"testing"

	"github.com/GoArmGo/PhotoShare/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type sample struct {
	Text  string   `json:"text" validate:"required,max=10"`
	Rate  int      `json:"rate" validate:"gte=1,lte=5"`
	Tags  []string `json:"tags" validate:"max=2,dive,min=1"`
	Inner string   `json:"-"`
}

func TestValidateStruct_OK(t *testing.T) {
	assert.NoError(t, ValidateStruct(&sample{Text: "hello", Rate: 3, Tags: []string{"a"}}))
}

func TestValidateStruct_CollectsFieldErrors(t *testing.T) {
	err := ValidateStruct(&sample{Text: "", Rate: 9, Tags: []string{"a", "b", "c"}})
	require.Error(t, err)
	assert.True(t, errors.Is(err, domain.ErrValidation))

	var verr *Error
	require.True(t, errors.As(err, &verr))
	require.Len(t, verr.Fields, 3)

	byField := map[string]FieldError{}
	for _, f := range verr.Fields {
		byField[f.Field] = f
	}
	assert.Equal(t, "text is required", byField["text"].Message)
	assert.Equal(t, "rate must be less than or equal to 5", byField["rate"].Message)
	assert.Equal(t, "tags must contain at most 2 items", byField["tags"].Message)
}

func TestValidateStruct_StringLength(t *testing.T) {
	err := ValidateStruct(&sample{Text: "far too long text", Rate: 1})
	require.Error(t, err)
	assert.Equal(t, "text must be at most 10 characters", err.Error())
}

func TestValidateStruct_NonStruct(t *testing.T) {
	err := ValidateStruct("plain string")
	require.Error(t, err)
	assert.True(t, errors.Is(err, domain.ErrValidation))
}
