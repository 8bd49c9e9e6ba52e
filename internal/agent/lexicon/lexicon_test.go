package lexicon

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestFold(t *testing.T) {
	assert.Equal(t, "lacteos y huevos", Fold("Lácteos y Huevos"))
	assert.Equal(t, "azucar", Fold("AZÚCAR"))
	assert.Equal(t, "costeno", Fold("Costeño"))
}

func TestTokens(t *testing.T) {
	assert.Equal(t, []string{"hola", "tienen", "leche", "1l"}, Tokens("¡Hola! ¿Tienen leche 1L?"))
}

func TestTextHas(t *testing.T) {
	txt := NewText("Pago con Yape, no me gusta esperar")

	assert.True(t, txt.Has("no me gusta"))
	assert.True(t, txt.Has("yape"))
	assert.False(t, txt.Has("ya"), "whole words only")
	assert.False(t, txt.Has("me gusta mucho"))
	assert.True(t, txt.HasAny("nada", "esperar"))
	assert.Equal(t, 2, txt.Count([]string{"pago", "esperar", "ya"}))
	assert.True(t, txt.Contains("ya"))
}

func TestTextIs(t *testing.T) {
	assert.True(t, NewText("  Sí! ").Is("sí", "si"))
	assert.True(t, NewText("de acuerdo.").Is("de acuerdo"))
	assert.False(t, NewText("sí, gracias").Is("sí"))
}
