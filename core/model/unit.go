package model

// UnitID identifies a consuming unit. IDs are assigned 1..N within a scenario.
type UnitID int

// Unit represents a consuming entity drawing from the shared generation pool.
type Unit struct {
	ID UnitID
	// Weight is the optimization priority. Higher values are favoured by the
	// weighted optimizer. Must be positive.
	Weight float64
	// Vulnerable marks units entitled to a minimum-service guarantee.
	Vulnerable bool
	// MinServiceFraction is the fraction of a vulnerable unit's total horizon
	// demand that must be served. Only meaningful when Vulnerable is set.
	MinServiceFraction float64
}
