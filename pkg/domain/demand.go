package domain

import (
	"fmt"

	"netalloc/pkg/apperror"
)

// Demand запрос на передачу полосы bandwidth от source к destination.
// Номера узлов с нуля; позиция в списке является индексом запроса.
type Demand struct {
	Source      int     `json:"source" yaml:"source"`
	Destination int     `json:"destination" yaml:"destination"`
	Bandwidth   float64 `json:"bandwidth" yaml:"bandwidth"`
}

// Validate проверяет полосу запроса. Номера узлов здесь не проверяются:
// запрос к несуществующему узлу считается недостижимым, а не ошибкой.
func (d Demand) Validate() error {
	if !IsFinite(d.Bandwidth) {
		return apperror.New(apperror.CodeInvalidBandwidth, "bandwidth must be a finite number")
	}
	if d.Bandwidth <= 0 {
		return apperror.New(apperror.CodeInvalidBandwidth,
			fmt.Sprintf("bandwidth must be positive, got %g", d.Bandwidth))
	}
	return nil
}

// InRange проверяет, что оба конца запроса есть в сети из n узлов
func (d Demand) InRange(n int) bool {
	return d.Source >= 0 && d.Source < n && d.Destination >= 0 && d.Destination < n
}

// String выводит запрос с нумерацией с нуля
func (d Demand) String() string {
	return fmt.Sprintf("%d -> %d (%g)", d.Source, d.Destination, d.Bandwidth)
}

// ValidateDemands проверяет весь список, ошибка указывает на индекс запроса
func ValidateDemands(demands []Demand) error {
	for i, d := range demands {
		if err := d.Validate(); err != nil {
			return apperror.Wrap(err, apperror.CodeInvalidDemand, err.Error()).
				WithField(fmt.Sprintf("demands[%d].bandwidth", i))
		}
	}
	return nil
}

// TotalBandwidth суммарная запрошенная полоса
func TotalBandwidth(demands []Demand) float64 {
	var total float64
	for _, d := range demands {
		total += d.Bandwidth
	}
	return total
}
