package application

import (
	"math"

	"lead-gateway/intake/domain"

	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

var pricePerM2 = map[domain.PackageType]int64{
	domain.PackageBlack: 25_000,
	domain.PackageGray:  38_000,
	domain.PackageWhite: 52_000,
}

var packageLabels = map[domain.PackageType]string{
	domain.PackageBlack: "Черный ключ",
	domain.PackageGray:  "Серый ключ",
	domain.PackageWhite: "Белый ключ",
}

const twoFloorsFactor = 0.95

var rubles = message.NewPrinter(language.Russian)

func RoundArea(area float64) int64 {
	return int64(math.Round(area))
}

// Estimate calcula o custo aproximado em rublos, arredondado ao milhar.
func Estimate(floors int, area int64, pkg domain.PackageType) int64 {
	price, ok := pricePerM2[pkg]
	if !ok || area <= 0 {
		return 0
	}
	total := float64(area * price)
	if floors == 2 {
		total *= twoFloorsFactor
	}
	return int64(math.Round(total/1000)) * 1000
}

// FormatRubles formata com agrupamento russo de milhares, ex: "3 800 000 ₽".
func FormatRubles(v int64) string {
	return rubles.Sprintf("%d ₽", v)
}

func PackageLabel(pkg domain.PackageType) string {
	if l, ok := packageLabels[pkg]; ok {
		return l
	}
	return string(pkg)
}
