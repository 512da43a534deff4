package enums

import "fmt"

// DeliveryMethod describes how an order reaches the buyer.
type DeliveryMethod string

const (
	DeliveryMethodNova    DeliveryMethod = "nova"
	DeliveryMethodRozetka DeliveryMethod = "rozetka"
	DeliveryMethodSelf    DeliveryMethod = "self"
)

var validDeliveryMethods = []DeliveryMethod{
	DeliveryMethodNova,
	DeliveryMethodRozetka,
	DeliveryMethodSelf,
}

// Delivery capability bits as encoded by the backend.
const (
	DeliveryBitNova    DeliveryMask = 1
	DeliveryBitRozetka DeliveryMask = 2
	DeliveryBitSelf    DeliveryMask = 4
)

// DeliveryMaskAll covers every delivery method the platform knows about.
const DeliveryMaskAll = DeliveryBitNova | DeliveryBitRozetka | DeliveryBitSelf

// DeliveryMask is a bitset of supported delivery methods.
type DeliveryMask uint32

// Has reports whether the mask includes the given method.
func (m DeliveryMask) Has(method DeliveryMethod) bool {
	return m&method.Bit() != 0
}

// Methods expands the mask into the methods it covers, in platform order.
func (m DeliveryMask) Methods() []DeliveryMethod {
	methods := make([]DeliveryMethod, 0, len(validDeliveryMethods))
	for _, candidate := range validDeliveryMethods {
		if m.Has(candidate) {
			methods = append(methods, candidate)
		}
	}
	return methods
}

// String implements fmt.Stringer.
func (d DeliveryMethod) String() string {
	return string(d)
}

// IsValid reports whether the value is a known DeliveryMethod.
func (d DeliveryMethod) IsValid() bool {
	for _, candidate := range validDeliveryMethods {
		if candidate == d {
			return true
		}
	}
	return false
}

// Bit returns the capability bit the backend uses for the method.
func (d DeliveryMethod) Bit() DeliveryMask {
	switch d {
	case DeliveryMethodNova:
		return DeliveryBitNova
	case DeliveryMethodRozetka:
		return DeliveryBitRozetka
	case DeliveryMethodSelf:
		return DeliveryBitSelf
	}
	return 0
}

// ParseDeliveryMethod converts raw input into a DeliveryMethod.
func ParseDeliveryMethod(value string) (DeliveryMethod, error) {
	for _, candidate := range validDeliveryMethods {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid delivery method %q", value)
}
