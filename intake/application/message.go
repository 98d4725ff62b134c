package application

import (
	"strconv"
	"strings"
	"time"

	"lead-gateway/intake/domain"
)

const timeLayout = "02.01.2006, 15:04:05"

// normalizeText colapsa espaços e corta em max runas.
func normalizeText(value string, max int) string {
	value = strings.Join(strings.Fields(value), " ")
	if r := []rune(value); len(r) > max {
		return string(r[:max])
	}
	return value
}

type estimateText struct {
	Name      string
	Phone     string
	Floors    int
	Area      int64
	Package   domain.PackageType
	Formatted string
	Verdict   domain.Verdict
	At        time.Time
}

func (e estimateText) String() string {
	var lines []string
	if e.Verdict.Quarantined() {
		lines = append(lines, "⚠️ Карантин: подозрительная заявка на расчет")
	} else {
		lines = append(lines, "Новый расчет стоимости «ОДИ»")
	}
	lines = append(lines,
		"Имя: "+normalizeText(e.Name, 80),
		"Телефон: "+e.Phone,
		"Этажность: "+strconv.Itoa(e.Floors),
		"Площадь: "+strconv.FormatInt(e.Area, 10)+" м²",
		"Комплектация: "+PackageLabel(e.Package),
		"Ориентировочная стоимость: "+e.Formatted,
	)
	if e.Verdict.Quarantined() {
		lines = append(lines, "Причины: "+strings.Join(e.Verdict, ", "))
	}
	lines = append(lines, "Время: "+e.At.Format(timeLayout))
	return strings.Join(lines, "\n")
}

func leadText(l domain.Lead, at time.Time) string {
	lines := []string{
		"Новая заявка «ОДИ»",
		"Имя: " + normalizeText(l.Name, 80),
		"Телефон: " + normalizeText(l.Phone, 20),
	}

	if l.ProjectName != "" || l.ProjectID != "" {
		name := l.ProjectName
		if name == "" {
			name = "Без названия"
		}
		id := l.ProjectID
		if id == "" {
			id = "без id"
		}
		lines = append(lines, "Проект: "+normalizeText(name, 120)+" ("+normalizeText(id, 40)+")")
	}
	if l.Message != "" {
		lines = append(lines, "Комментарий: "+normalizeText(l.Message, 500))
	}
	if l.Source != "" {
		lines = append(lines, "Источник: "+normalizeText(l.Source, 80))
	}

	lines = append(lines, "Время: "+at.Format(timeLayout))
	return strings.Join(lines, "\n")
}
