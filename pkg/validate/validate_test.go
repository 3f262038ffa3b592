package validate_test

import (
	"testing"

	"github.com/Astemirdum/perpustakaan/pkg/validate"
	"github.com/stretchr/testify/require"
)

type signUp struct {
	Username string `json:"username" validate:"required"`
	Password string `json:"password" validate:"required,min=6"`
}

func TestCustomValidator_Validate(t *testing.T) {
	t.Parallel()
	v := validate.NewCustomValidator()

	require.NoError(t, v.Validate(&signUp{Username: "budi", Password: "rahasia"}))
	require.EqualError(t, v.Validate(&signUp{Password: "rahasia"}), "username: must satisfy required")
	require.EqualError(t, v.Validate(&signUp{Username: "budi", Password: "123"}), "password: must satisfy min=6")
}
