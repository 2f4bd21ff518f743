// Package emission maps machine usage to carbon emission.
package emission

import "github.com/goodnatureofminers/carbonledger-backend/internal/carbon/model"

// DefaultCoefficient applies to machines missing from the table. Unknown machines are
// accepted rather than rejected.
const DefaultCoefficient = 1.0

var (
	AerialWorkPlatform model.Machine = "高空作業機"
	Weeder             model.Machine = "除草車"
	LargeSorter        model.Machine = "大分類機"
	SmallSorter        model.Machine = "小分類機"
)

var machines = []model.Machine{AerialWorkPlatform, Weeder, LargeSorter, SmallSorter}

var coefficients = map[model.Machine]float64{
	AerialWorkPlatform: 2.5,
	Weeder:             1.8,
	LargeSorter:        3.0,
	SmallSorter:        2.0,
}

// Coefficient returns the emission coefficient for machine.
func Coefficient(machine model.Machine) float64 {
	if c, ok := coefficients[machine]; ok {
		return c
	}
	return DefaultCoefficient
}

// Calculate returns amount multiplied by the machine's coefficient.
func Calculate(machine model.Machine, amount float64) float64 {
	return amount * Coefficient(machine)
}

// Known reports whether machine has its own coefficient.
func Known(machine model.Machine) bool {
	_, ok := coefficients[machine]
	return ok
}

// Machines lists the machines with a coefficient, in display order.
func Machines() []model.Machine {
	return append([]model.Machine(nil), machines...)
}
