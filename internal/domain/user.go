package domain

// DefaultAddress is the placeholder the identity subsystem writes before a user
// has picked a shipping address. Checkout refuses to proceed while it is set.
const DefaultAddress = "ADDRESS_NOT_SET"

// User is owned by the identity subsystem. This service reads it and, on
// checkout, decrements WalletMoney.
type User struct {
	ID          string  `bson:"_id,omitempty" json:"_id"`
	Name        string  `bson:"name" json:"name"`
	Email       string  `bson:"email" json:"email"`
	WalletMoney float64 `bson:"walletMoney" json:"walletMoney"`
	Address     string  `bson:"address" json:"address"`
}

func (u *User) HasSetNonDefaultAddress() bool {
	return u.Address != "" && u.Address != DefaultAddress
}
