package model

// Extra computes the service fee for an amount: a flat rate per full
// thousand units. Pure so summary and final report always agree.
func Extra(amount, ratePerThousand int64) int64 {
	return amount / 1000 * ratePerThousand
}

// Net returns the amount the customer owes including the fee.
func Net(amount, ratePerThousand int64) int64 {
	return amount + Extra(amount, ratePerThousand)
}
