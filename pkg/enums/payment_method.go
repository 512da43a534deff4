package enums

import "fmt"

// PaymentMethod describes how a buyer intends to settle an order.
type PaymentMethod string

const (
	PaymentMethodCOD    PaymentMethod = "cod"
	PaymentMethodCard   PaymentMethod = "card"
	PaymentMethodMono   PaymentMethod = "mono"
	PaymentMethodPrivat PaymentMethod = "privat"
	PaymentMethodPumb   PaymentMethod = "pumb"
)

var validPaymentMethods = []PaymentMethod{
	PaymentMethodCOD,
	PaymentMethodCard,
	PaymentMethodMono,
	PaymentMethodPrivat,
	PaymentMethodPumb,
}

// Payment capability bits as encoded by the backend. The same values double
// as the deliveryPayment integer enum on order submission.
const (
	PaymentBitCOD    PaymentMask = 1
	PaymentBitCard   PaymentMask = 2
	PaymentBitMono   PaymentMask = 4
	PaymentBitPrivat PaymentMask = 8
	PaymentBitPumb   PaymentMask = 16
)

// PaymentMaskAll covers every payment method the platform knows about.
const PaymentMaskAll = PaymentBitCOD | PaymentBitCard | PaymentBitMono | PaymentBitPrivat | PaymentBitPumb

// PaymentMask is a bitset of supported payment methods.
type PaymentMask uint32

// Has reports whether the mask includes the given method.
func (m PaymentMask) Has(method PaymentMethod) bool {
	return m&method.Bit() != 0
}

// Methods expands the mask into the methods it covers, in platform order.
func (m PaymentMask) Methods() []PaymentMethod {
	methods := make([]PaymentMethod, 0, len(validPaymentMethods))
	for _, candidate := range validPaymentMethods {
		if m.Has(candidate) {
			methods = append(methods, candidate)
		}
	}
	return methods
}

// String implements fmt.Stringer.
func (p PaymentMethod) String() string {
	return string(p)
}

// IsValid reports whether the value is a known PaymentMethod.
func (p PaymentMethod) IsValid() bool {
	for _, candidate := range validPaymentMethods {
		if candidate == p {
			return true
		}
	}
	return false
}

// Bit returns the capability bit the backend uses for the method.
func (p PaymentMethod) Bit() PaymentMask {
	switch p {
	case PaymentMethodCOD:
		return PaymentBitCOD
	case PaymentMethodCard:
		return PaymentBitCard
	case PaymentMethodMono:
		return PaymentBitMono
	case PaymentMethodPrivat:
		return PaymentBitPrivat
	case PaymentMethodPumb:
		return PaymentBitPumb
	}
	return 0
}

// ServerCode returns the integer the order endpoint expects for the method.
func (p PaymentMethod) ServerCode() int {
	return int(p.Bit())
}

// ParsePaymentMethod converts raw input into a PaymentMethod.
func ParsePaymentMethod(value string) (PaymentMethod, error) {
	for _, candidate := range validPaymentMethods {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid payment method %q", value)
}
