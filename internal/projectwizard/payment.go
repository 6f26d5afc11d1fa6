package projectwizard

import (
	"fmt"

	"clientkit/internal/domain/project"
)

func (d *Draft) SetContractFile(name string) {
	d.contractFile = name
	d.report()
}

// SetPaymentEnabled toggles payment collection. Disabling it drops the amount.
func (d *Draft) SetPaymentEnabled(enabled bool) {
	d.paymentEnabled = enabled
	if !enabled {
		d.paymentAmount = nil
	}
	d.report()
}

func (d *Draft) SetPaymentAmount(amount float64) error {
	if amount <= 0 {
		return ErrInvalidAmount
	}
	d.paymentAmount = &amount
	d.report()
	return nil
}

func (d *Draft) SetPaymentTiming(t project.PaymentTiming) error {
	if err := t.Validate(); err != nil {
		return fmt.Errorf("%w: %s", ErrInvalidValue, err)
	}
	d.paymentTiming = t
	d.report()
	return nil
}
