package jwt_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/seguimiento-confeccion/pkg/jwt"
)

func TestGenerateParse_Identidad(t *testing.T) {
	id := jwt.Identity{UserID: "u-1", Name: "Ana", Area: "corte", Role: "operador"}
	token, err := jwt.Generate("secreto", "test", 5, id)
	require.NoError(t, err)

	got, err := jwt.Parse("secreto", token)
	require.NoError(t, err)
	assert.Equal(t, id, got)
}

func TestParse_FirmaIncorrecta(t *testing.T) {
	token, err := jwt.Generate("secreto", "test", 5, jwt.Identity{UserID: "u-1"})
	require.NoError(t, err)

	_, err = jwt.Parse("otro", token)
	assert.Error(t, err)
}

func TestParse_Expirado(t *testing.T) {
	token, err := jwt.Generate("secreto", "test", -1, jwt.Identity{UserID: "u-1"})
	require.NoError(t, err)

	_, err = jwt.Parse("secreto", token)
	assert.Error(t, err)
}

func TestGenerate_SinSecret(t *testing.T) {
	_, err := jwt.Generate("", "test", 5, jwt.Identity{UserID: "u-1"})
	assert.Error(t, err)
}
