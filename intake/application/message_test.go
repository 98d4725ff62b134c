package application

import (
	"strings"
	"testing"
	"time"

	"lead-gateway/intake/domain"

	"github.com/stretchr/testify/assert"
)

func TestEstimateText(t *testing.T) {
	at := time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC)
	base := estimateText{
		Name:      "Иван\tИванов",
		Phone:     "+79991234567",
		Floors:    2,
		Area:      140,
		Package:   domain.PackageWhite,
		Formatted: "6 916 000 ₽",
		At:        at,
	}

	clean := base.String()
	assert.True(t, strings.HasPrefix(clean, "Новый расчет стоимости «ОДИ»\n"))
	assert.Contains(t, clean, "Имя: Иван Иванов")
	assert.Contains(t, clean, "Этажность: 2")
	assert.Contains(t, clean, "Площадь: 140 м²")
	assert.Contains(t, clean, "Комплектация: Белый ключ")
	assert.Contains(t, clean, "Время: 02.01.2026, 03:04:05")
	assert.NotContains(t, clean, "Причины")

	base.Verdict = domain.Verdict{domain.ReasonFastSubmit, domain.ReasonClientSuspected}
	q := base.String()
	assert.True(t, strings.HasPrefix(q, "⚠️ Карантин"))
	assert.Contains(t, q, "Причины: fast_submit, client_suspected")
}

func TestNormalizeText(t *testing.T) {
	assert.Equal(t, "a b c", normalizeText("  a \n b\t\tc ", 80))
	assert.Equal(t, "абв", normalizeText("абвгд", 3))
}
